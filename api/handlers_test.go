/*
handlers_test.go - HTTP tests for the back office and portal handlers

Tests run the full router over the in-memory store:
- order creation and term selection regenerate the schedule
- manual edits detach the term; validation errors map to 400
- portal term selection answers {success, message|error} with status 200
- contract signing, schedule export and the overdue sweep
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/insurance-engine/insurance"
	"github.com/warp/insurance-engine/insurance/store"
	"github.com/warp/insurance-engine/schedule"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var testNow = time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)

type recordingMailer struct {
	sent []insurance.ContractEmail
}

func (m *recordingMailer) SendContract(_ context.Context, msg insurance.ContractEmail) error {
	m.sent = append(m.sent, msg)
	return nil
}

type testServer struct {
	t       *testing.T
	svc     *insurance.Service
	mailer  *recordingMailer
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	mailer := &recordingMailer{}
	svc := insurance.NewService(store.NewTxMemory(), insurance.NewTokenIssuer("test-secret"), log,
		insurance.WithClock(func() time.Time { return testNow }),
		insurance.WithMailer(mailer),
		insurance.WithBaseURL("https://seguros.example"),
	)
	terms, err := insurance.DefaultTerms()
	require.NoError(t, err)
	_, err = svc.SeedTerms(context.Background(), terms)
	require.NoError(t, err)

	return &testServer{t: t, svc: svc, mailer: mailer, handler: NewRouter(NewHandler(svc, log))}
}

func (ts *testServer) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	ts.t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}

// createSplitOrder posts 1200 on the "50% now, 50% in 30 days" preset.
func (ts *testServer) createSplitOrder() OrderDTO {
	ts.t.Helper()
	rec := ts.do(http.MethodPost, "/api/orders", map[string]any{
		"name":            "SO-0042",
		"customer_name":   "Escuela N° 12",
		"customer_email":  "admin@escuela12.edu.ar",
		"total":           1200,
		"order_date":      "2024-01-01",
		"payment_term_id": "3",
	})
	require.Equal(ts.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[OrderDTO](ts.t, rec)
}

func (ts *testServer) accessToken(id string) string {
	ts.t.Helper()
	o, err := ts.svc.GetOrder(context.Background(), schedule.OrderID(id))
	require.NoError(ts.t, err)
	return o.AccessToken
}

// =============================================================================
// PAYMENT TERMS
// =============================================================================

func TestListTerms_Presets(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/terms", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	terms := decode[[]map[string]any](t, rec)
	require.Len(t, terms, 4)
	assert.Equal(t, "1", terms[0]["id"])
	assert.Equal(t, "4", terms[3]["id"])
}

func TestCreateTerm_AssignsNextID(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/terms", map[string]any{
		"name": "30/70",
		"lines": []map[string]any{
			{"sequence": 1, "value": "percent", "value_amount": 30},
			{"sequence": 2, "value": "balance", "nb_days": 60, "delay_type": "days_after_end_of_month"},
		},
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	assert.Equal(t, "5", created["id"])

	rec = ts.do(http.MethodGet, "/api/terms/5", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateTerm_ExistingIDConflict(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/terms", map[string]any{
		"id":    "3",
		"name":  "Redefined",
		"lines": []map[string]any{{"sequence": 1, "value": "balance"}},
	})

	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	rec = ts.do(http.MethodGet, "/api/terms/3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	term := decode[map[string]any](t, rec)
	assert.Len(t, term["lines"], 2)
}

func TestCreateTerm_Invalid(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/terms", map[string]any{
		"name":  "bad",
		"lines": []map[string]any{{"sequence": 1, "value": "percent", "value_amount": 150}},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTerm_NotFound(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/terms/99", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// ORDERS AND SCHEDULE
// =============================================================================

func TestCreateOrder_GeneratesSchedule(t *testing.T) {
	// GIVEN: 1200 on 50% now, balance +30 days at 10% interest
	// WHEN: Creating the order
	// THEN: 600 due 2024-01-01 and 660 due 2024-01-31

	ts := newTestServer(t)

	o := ts.createSplitOrder()

	assert.Equal(t, "3", o.TermID)
	assert.Equal(t, "draft", o.State)
	require.Len(t, o.Installments, 2)
	assertAmount(t, "600", o.Installments[0].Amount)
	assert.Equal(t, "2024-01-01", o.Installments[0].DueDate)
	assertAmount(t, "660", o.Installments[1].Amount)
	assert.Equal(t, "2024-01-31", o.Installments[1].DueDate)
	assertAmount(t, "600", o.Installments[1].BaseAmount)
	assertAmount(t, "60", o.Installments[1].InterestAmount)
	assert.True(t, o.Installments[1].AutoGenerated)
	assertAmount(t, "1260", o.ScheduleTotal)
	assert.Equal(t, "50% now, 50% in 30 days", o.Summary)
}

func TestCreateOrder_BadInput(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"bad date", map[string]any{"total": 100, "order_date": "01/01/2024"}, http.StatusBadRequest},
		{"negative total", map[string]any{"total": -1}, http.StatusBadRequest},
		{"unknown term", map[string]any{"total": 100, "payment_term_id": "42"}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(http.MethodPost, "/api/orders", tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/orders/missing", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Failed to get order", decode[ErrorResponse](t, rec).Error)
}

func TestSetTotal_Regenerates(t *testing.T) {
	ts := newTestServer(t)
	o := ts.createSplitOrder()

	rec := ts.do(http.MethodPut, "/api/orders/"+o.ID+"/total", map[string]any{"total": "1000"})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[OrderDTO](t, rec)
	assertAmount(t, "500", got.Installments[0].Amount)
	assertAmount(t, "550", got.Installments[1].Amount)
}

func TestSelectTerm_ReplacesAndClears(t *testing.T) {
	ts := newTestServer(t)
	o := ts.createSplitOrder()

	rec := ts.do(http.MethodPut, "/api/orders/"+o.ID+"/term", SelectTermRequest{TermID: "2"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[OrderDTO](t, rec)
	require.Len(t, got.Installments, 1)
	assertAmount(t, "1080", got.Installments[0].Amount)

	rec = ts.do(http.MethodPut, "/api/orders/"+o.ID+"/term", SelectTermRequest{})
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := decode[OrderDTO](t, rec)
	assert.Empty(t, cleared.TermID)
	assert.Len(t, cleared.Installments, 1, "clearing the term keeps the schedule")
}

func TestEditInstallment_DetachesTerm(t *testing.T) {
	// GIVEN: A generated schedule
	// WHEN: The second amount is edited by hand
	// THEN: The term is cleared and the reconciliation shows the difference

	ts := newTestServer(t)
	o := ts.createSplitOrder()

	rec := ts.do(http.MethodPut, "/api/orders/"+o.ID+"/installments/2", map[string]any{"amount": "700"},
		ActorHeader, "ana")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[OrderDTO](t, rec)
	assert.Empty(t, got.TermID)
	assert.False(t, got.Installments[1].AutoGenerated)

	rec = ts.do(http.MethodGet, "/api/orders/"+o.ID+"/reconciliation", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	recon := decode[ReconciliationDTO](t, rec)
	assertAmount(t, "1200", recon.Expected)
	assertAmount(t, "1300", recon.Actual)
	assertAmount(t, "100", recon.Diff)
	assert.False(t, recon.Balanced)

	rec = ts.do(http.MethodGet, "/api/orders/"+o.ID+"/audit", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	entries := decode[[]AuditEntryDTO](t, rec)
	var actors []string
	for _, e := range entries {
		if e.Action == string(insurance.AuditTermDetached) {
			actors = append(actors, e.ActorID)
		}
	}
	assert.Equal(t, []string{"ana"}, actors)
}

func TestEditInstallment_NotesKeepTerm(t *testing.T) {
	ts := newTestServer(t)
	o := ts.createSplitOrder()

	rec := ts.do(http.MethodPut, "/api/orders/"+o.ID+"/installments/1", map[string]any{"notes": "transfer"})

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[OrderDTO](t, rec)
	assert.Equal(t, "3", got.TermID)
	assert.Equal(t, "transfer", got.Installments[0].Notes)
}

func TestInstallmentErrors(t *testing.T) {
	ts := newTestServer(t)
	o := ts.createSplitOrder()
	base := "/api/orders/" + o.ID + "/installments"

	rec := ts.do(http.MethodPut, base+"/9", map[string]any{"amount": "1"})
	assert.Equal(t, http.StatusNotFound, rec.Code, "unknown sequence")

	rec = ts.do(http.MethodPut, base+"/abc", map[string]any{"amount": "1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "non numeric sequence")

	rec = ts.do(http.MethodPut, base+"/1", map[string]any{"amount": "0"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "non-positive amount")

	rec = ts.do(http.MethodPost, base, map[string]any{"amount": "100", "due_date": "2024-13-01"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "bad date")

	stored, err := ts.svc.GetOrder(context.Background(), schedule.OrderID(o.ID))
	require.NoError(t, err)
	require.NotNil(t, stored.Term, "rejected changes never reach the store")
}

func TestAddRemoveReplaceInstallments(t *testing.T) {
	ts := newTestServer(t)
	o := ts.createSplitOrder()
	base := "/api/orders/" + o.ID + "/installments"

	rec := ts.do(http.MethodPost, base, map[string]any{"amount": "100", "due_date": "2024-03-01"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	added := decode[OrderDTO](t, rec)
	require.Len(t, added.Installments, 3)
	assert.Equal(t, 3, added.Installments[2].Sequence)
	assert.Empty(t, added.TermID)

	rec = ts.do(http.MethodDelete, base+"/3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[OrderDTO](t, rec).Installments, 2)

	rec = ts.do(http.MethodPut, base, ReplaceInstallmentsRequest{Installments: []InstallmentRequest{
		{Amount: ptr(dec("400"))}, {Amount: ptr(dec("800"))},
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	replaced := decode[OrderDTO](t, rec)
	require.Len(t, replaced.Installments, 2)
	assert.Equal(t, 2, replaced.Installments[1].Sequence)
	assertAmount(t, "800", replaced.Installments[1].Amount)
}

func TestPayInstallment_KeepsTerm(t *testing.T) {
	ts := newTestServer(t)
	o := ts.createSplitOrder()

	rec := ts.do(http.MethodPost, "/api/orders/"+o.ID+"/installments/1/pay", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[OrderDTO](t, rec)
	assert.Equal(t, "paid", got.Installments[0].Status)
	assert.Equal(t, "3", got.TermID)
}

func TestConfirm_LocksSchedule(t *testing.T) {
	ts := newTestServer(t)
	o := ts.createSplitOrder()

	rec := ts.do(http.MethodPost, "/api/orders/"+o.ID+"/confirm", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sale", decode[OrderDTO](t, rec).State)

	rec = ts.do(http.MethodPut, "/api/orders/"+o.ID+"/total", map[string]any{"total": 5})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(http.MethodPost, "/api/orders/"+o.ID+"/confirm", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

// =============================================================================
// REPORTS
// =============================================================================

func TestSummaryAndAdjustment(t *testing.T) {
	ts := newTestServer(t)
	o := ts.createSplitOrder()

	rec := ts.do(http.MethodGet, "/api/orders/"+o.ID+"/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "50% now, 50% in 30 days", decode[SummaryDTO](t, rec).Summary)

	rec = ts.do(http.MethodGet, "/api/orders/"+o.ID+"/adjustment", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	adj := decode[AdjustmentDTO](t, rec)
	assert.Equal(t, insurance.FinancialInterest, adj.Product)
	assertAmount(t, "60", adj.PriceUnit)

	ts.do(http.MethodPut, "/api/orders/"+o.ID+"/term", SelectTermRequest{TermID: "1"})
	rec = ts.do(http.MethodGet, "/api/orders/"+o.ID+"/adjustment", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestExportSchedule(t *testing.T) {
	ts := newTestServer(t)
	o := ts.createSplitOrder()

	rec := ts.do(http.MethodGet, "/api/orders/"+o.ID+"/schedule.xlsx", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "SO-0042-schedule.xlsx")
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	name, err := f.GetCellValue("Schedule", "B1")
	require.NoError(t, err)
	assert.Equal(t, "SO-0042", name)
}

// =============================================================================
// CONTRACT
// =============================================================================

func TestSendContract(t *testing.T) {
	// GIVEN: A draft order whose contract lacks the representative's DNI
	// WHEN: Sending the contract before and after filling it in
	// THEN: First a 400 listing the field, then one email and state "sent"

	ts := newTestServer(t)
	o := ts.createSplitOrder()

	rec := ts.do(http.MethodPost, "/api/orders/"+o.ID+"/contract/email", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"legal representative DNI"}, decode[ErrorResponse](t, rec).Missing)

	contract := o.Contract
	contract.LegalRepresentativeDNI = "20123456"
	rec = ts.do(http.MethodPut, "/api/orders/"+o.ID+"/contract", contract)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(http.MethodPost, "/api/orders/"+o.ID+"/contract/email", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "sent", decode[OrderDTO](t, rec).State)

	require.Len(t, ts.mailer.sent, 1)
	assert.Equal(t, "https://seguros.example/my/contract/"+o.ID+"?access_token="+ts.accessToken(o.ID), ts.mailer.sent[0].URL)

	rec = ts.do(http.MethodGet, "/api/orders/"+o.ID+"/contract/url", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ts.mailer.sent[0].URL, decode[map[string]string](t, rec)["url"])
}

// =============================================================================
// PORTAL
// =============================================================================

func TestPortalPaymentTerm(t *testing.T) {
	ts := newTestServer(t)
	o := ts.createSplitOrder()
	token := ts.accessToken(o.ID)
	path := "/my/orders/" + o.ID + "/payment_term"

	rec := ts.do(http.MethodPost, path, PortalTermRequest{TermID: "abc", AccessToken: token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, insurance.PortalResult{Error: insurance.MsgInvalidTermID}, decode[insurance.PortalResult](t, rec))

	rec = ts.do(http.MethodPost, path+"?access_token=forged", PortalTermRequest{TermID: "2"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, insurance.MsgInvalidToken, decode[insurance.PortalResult](t, rec).Error)

	rec = ts.do(http.MethodPost, path+"?access_token="+token, PortalTermRequest{TermID: "2"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, insurance.PortalResult{Success: true, Message: insurance.MsgTermUpdated}, decode[insurance.PortalResult](t, rec))
}

func TestPortalPreview(t *testing.T) {
	ts := newTestServer(t)
	o := ts.createSplitOrder()
	token := ts.accessToken(o.ID)

	rec := ts.do(http.MethodPost, "/my/orders/"+o.ID+"/installments_preview",
		PortalTermRequest{TermID: "2", AccessToken: token})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	preview := decode[PreviewDTO](t, rec)
	assert.Equal(t, "ARS", preview.Currency)
	require.Len(t, preview.Installments, 1)
	assertAmount(t, "1080", preview.Installments[0].Amount)
	assert.Equal(t, "2024-01-11", preview.Installments[0].DueDate)

	rec = ts.do(http.MethodPost, "/my/orders/"+o.ID+"/installments_preview", PortalTermRequest{TermID: "2"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPortalContractSign(t *testing.T) {
	ts := newTestServer(t)
	o := ts.createSplitOrder()
	token := ts.accessToken(o.ID)
	path := "/my/contract/" + o.ID + "?access_token=" + token

	rec := ts.do(http.MethodPost, "/my/contract/"+o.ID+"/sign?access_token="+token, SignContractRequest{Name: "María"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "signature required")

	rec = ts.do(http.MethodPost, "/my/contract/"+o.ID+"/sign?access_token="+token,
		SignContractRequest{Name: "María", Signature: []byte("png")})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, path, decode[SignContractResponse](t, rec).Redirect)

	rec = ts.do(http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[ContractViewDTO](t, rec)
	assert.True(t, view.Signed)
	assert.Equal(t, "María", view.SignedBy)
	assert.Equal(t, "MIL DOSCIENTOS SESENTA PESOS", view.TotalInWords)
	assert.Len(t, view.Installments, 2)

	rec = ts.do(http.MethodGet, "/my/contract/"+o.ID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// =============================================================================
// OVERDUE
// =============================================================================

func TestSweepOverdue_Endpoint(t *testing.T) {
	ts := newTestServer(t)
	o := ts.createSplitOrder()

	rec := ts.do(http.MethodPost, "/api/admin/overdue?as_of=2024-01-15", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, SweepResponse{AsOf: "2024-01-15", Flagged: 1}, decode[SweepResponse](t, rec))

	got, err := ts.svc.GetOrder(context.Background(), schedule.OrderID(o.ID))
	require.NoError(t, err)
	assert.Equal(t, schedule.StatusOverdue, got.Installments[0].Status)
	assert.Equal(t, schedule.StatusPending, got.Installments[1].Status)

	rec = ts.do(http.MethodPost, "/api/admin/overdue?as_of=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOverdueScheduler(t *testing.T) {
	ts := newTestServer(t)
	ts.createSplitOrder()
	log := logrus.New()
	log.SetOutput(io.Discard)

	_, err := NewOverdueScheduler(ts.svc, "not a cron", log)
	assert.Error(t, err)

	s, err := NewOverdueScheduler(ts.svc, "@daily", log)
	require.NoError(t, err)
	s.today = func() schedule.Date { return schedule.NewDate(2024, time.February, 15) }

	assert.Equal(t, 2, s.RunOnce(context.Background()))
	assert.Equal(t, 0, s.RunOnce(context.Background()), "already flagged")
}

func TestOverdueScheduler_StopWaitsForInitialSweep(t *testing.T) {
	// GIVEN: A scheduler whose first sweep runs on Start
	// WHEN: Stopping right away
	// THEN: Stop returns only after that sweep has saved its changes

	ts := newTestServer(t)
	o := ts.createSplitOrder()
	log := logrus.New()
	log.SetOutput(io.Discard)

	s, err := NewOverdueScheduler(ts.svc, "@daily", log)
	require.NoError(t, err)
	s.today = func() schedule.Date { return schedule.NewDate(2024, time.February, 15) }

	s.Start()
	s.Stop()

	got, err := ts.svc.GetOrder(context.Background(), schedule.OrderID(o.ID))
	require.NoError(t, err)
	assert.Equal(t, schedule.StatusOverdue, got.Installments[0].Status)
	assert.Equal(t, schedule.StatusOverdue, got.Installments[1].Status)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func ptr[T any](v T) *T { return &v }
