/*
handlers.go - HTTP API handlers for the back office

PURPOSE:
  Exposes sale orders and their installment schedules via REST API. Handles
  HTTP request/response and JSON serialization, and delegates every rule to
  insurance.Service.

ENDPOINTS:
  Payment terms:
    GET    /api/terms                          List terms
    POST   /api/terms                          Create term from JSON
    GET    /api/terms/{id}                     Get term

  Orders:
    GET    /api/orders                         List orders
    POST   /api/orders                         Create order (generates schedule)
    GET    /api/orders/{id}                    Get order with installments
    PUT    /api/orders/{id}/total              Change total (regenerates if termed)
    PUT    /api/orders/{id}/term               Select or clear the payment term
    POST   /api/orders/{id}/confirm            Quotation -> sale
    POST   /api/orders/{id}/cancel             Cancel

  Installments (manual edits detach the term):
    POST   /api/orders/{id}/installments       Add
    PUT    /api/orders/{id}/installments       Replace the whole schedule
    PUT    /api/orders/{id}/installments/{seq} Edit
    DELETE /api/orders/{id}/installments/{seq} Remove
    POST   /api/orders/{id}/installments/{seq}/pay

  Reports:
    GET    /api/orders/{id}/reconciliation
    GET    /api/orders/{id}/summary
    GET    /api/orders/{id}/adjustment         204 when none is needed
    GET    /api/orders/{id}/audit
    GET    /api/orders/{id}/schedule.xlsx

  Contract:
    PUT    /api/orders/{id}/contract
    GET    /api/orders/{id}/contract/url
    POST   /api/orders/{id}/contract/email

  Admin:
    POST   /api/admin/overdue?as_of=YYYY-MM-DD Manual overdue sweep

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, schedule mismatch
  - 403: Invalid access token (portal)
  - 404: Order, term or installment not found
  - 409: Order locked by its state, invalid transition
  - 500: Internal errors

SEE ALSO:
  - portal.go: Customer portal handlers
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/warp/insurance-engine/factory"
	"github.com/warp/insurance-engine/insurance"
	"github.com/warp/insurance-engine/report"
	"github.com/warp/insurance-engine/schedule"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *insurance.Service
	Terms   *factory.TermFactory
	Log     *logrus.Logger
}

// NewHandler creates a new handler for the given service.
func NewHandler(svc *insurance.Service, log *logrus.Logger) *Handler {
	return &Handler{
		Service: svc,
		Terms:   factory.NewTermFactory(),
		Log:     log,
	}
}

// =============================================================================
// PAYMENT TERM HANDLERS
// =============================================================================

func (h *Handler) ListTerms(w http.ResponseWriter, r *http.Request) {
	terms, err := h.Service.ListTerms(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to list payment terms", err)
		return
	}

	dtos := make([]factory.PaymentTermJSON, len(terms))
	for i, t := range terms {
		dtos[i] = h.Terms.ToJSON(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetTerm(w http.ResponseWriter, r *http.Request) {
	term, err := h.Service.GetTerm(r.Context(), schedule.TermID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeServiceError(w, "Failed to get payment term", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Terms.ToJSON(term))
}

// CreateTerm creates a payment term. Without an id the next numeric id is
// assigned.
func (h *Handler) CreateTerm(w http.ResponseWriter, r *http.Request) {
	var req factory.PaymentTermJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	term, err := h.Terms.NewTerm(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid payment term", err)
		return
	}

	saved, err := h.Service.CreateTerm(r.Context(), term)
	if err != nil {
		h.writeServiceError(w, "Failed to create payment term", err)
		return
	}
	writeJSON(w, http.StatusCreated, h.Terms.ToJSON(saved))
}

// =============================================================================
// ORDER HANDLERS
// =============================================================================

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Service.ListOrders(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to list orders", err)
		return
	}

	dtos := make([]OrderDTO, len(orders))
	for i, o := range orders {
		dtos[i] = toOrderDTO(o)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.Service.GetOrder(r.Context(), orderID(r))
	if err != nil {
		h.writeServiceError(w, "Failed to get order", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDTO(o))
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	orderDate, err := parseOptionalDate(req.OrderDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid order_date format (use YYYY-MM-DD)", err)
		return
	}

	in := insurance.NewOrderInput{
		Name:          req.Name,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Total:         req.Total,
		OrderDate:     orderDate,
		TermID:        schedule.TermID(req.TermID),
	}
	if req.Contract != nil {
		terms, err := req.Contract.toContractTerms()
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid contract dates (use YYYY-MM-DD)", err)
			return
		}
		in.Contract = &terms
	}

	o, err := h.Service.CreateOrder(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, "Failed to create order", err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderDTO(o))
}

func (h *Handler) SetTotal(w http.ResponseWriter, r *http.Request) {
	var req SetTotalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	h.respondOrder(w, "Failed to change total")(h.Service.SetTotal(r.Context(), orderID(r), req.Total))
}

func (h *Handler) SelectTerm(w http.ResponseWriter, r *http.Request) {
	var req SelectTermRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	h.respondOrder(w, "Failed to select payment term")(h.Service.SelectTerm(r.Context(), orderID(r), schedule.TermID(req.TermID)))
}

func (h *Handler) ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	h.respondOrder(w, "Failed to confirm order")(h.Service.Confirm(r.Context(), orderID(r)))
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	h.respondOrder(w, "Failed to cancel order")(h.Service.Cancel(r.Context(), orderID(r)))
}

// =============================================================================
// INSTALLMENT HANDLERS
// =============================================================================

func (h *Handler) AddInstallment(w http.ResponseWriter, r *http.Request) {
	var req InstallmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	in, err := req.toInstallment()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid due_date format (use YYYY-MM-DD)", err)
		return
	}

	o, err := h.Service.AddInstallment(r.Context(), orderID(r), in)
	if err != nil {
		h.writeServiceError(w, "Failed to add installment", err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderDTO(o))
}

func (h *Handler) ReplaceInstallments(w http.ResponseWriter, r *http.Request) {
	var req ReplaceInstallmentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	list := make([]schedule.Installment, len(req.Installments))
	for i, ir := range req.Installments {
		in, err := ir.toInstallment()
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid due_date format (use YYYY-MM-DD)", err)
			return
		}
		list[i] = in
	}
	h.respondOrder(w, "Failed to replace installments")(h.Service.ReplaceInstallments(r.Context(), orderID(r), list))
}

func (h *Handler) EditInstallment(w http.ResponseWriter, r *http.Request) {
	seq, ok := sequenceParam(w, r)
	if !ok {
		return
	}
	var req InstallmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	edit, err := req.toEdit()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid due_date format (use YYYY-MM-DD)", err)
		return
	}
	h.respondOrder(w, "Failed to edit installment")(h.Service.EditInstallment(r.Context(), orderID(r), seq, edit))
}

func (h *Handler) RemoveInstallment(w http.ResponseWriter, r *http.Request) {
	seq, ok := sequenceParam(w, r)
	if !ok {
		return
	}
	h.respondOrder(w, "Failed to remove installment")(h.Service.RemoveInstallment(r.Context(), orderID(r), seq))
}

func (h *Handler) PayInstallment(w http.ResponseWriter, r *http.Request) {
	seq, ok := sequenceParam(w, r)
	if !ok {
		return
	}
	h.respondOrder(w, "Failed to register payment")(h.Service.PayInstallment(r.Context(), orderID(r), seq))
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

func (h *Handler) GetReconciliation(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Service.Reconcile(r.Context(), orderID(r))
	if err != nil {
		h.writeServiceError(w, "Failed to reconcile order", err)
		return
	}
	writeJSON(w, http.StatusOK, ReconciliationDTO{
		Expected: rec.Expected,
		Actual:   rec.Actual,
		Diff:     rec.Diff,
		Balanced: rec.Balanced(),
	})
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Summary(r.Context(), orderID(r))
	if err != nil {
		h.writeServiceError(w, "Failed to summarize order", err)
		return
	}
	writeJSON(w, http.StatusOK, SummaryDTO{Summary: summary})
}

func (h *Handler) GetAdjustment(w http.ResponseWriter, r *http.Request) {
	adj, err := h.Service.Adjustment(r.Context(), orderID(r))
	if err != nil {
		h.writeServiceError(w, "Failed to compute adjustment", err)
		return
	}
	if adj == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, AdjustmentDTO{
		Product:   adj.Product,
		Label:     adj.Label,
		Quantity:  adj.Quantity,
		PriceUnit: adj.PriceUnit,
	})
}

func (h *Handler) GetAudit(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Service.Audit(r.Context(), orderID(r))
	if err != nil {
		h.writeServiceError(w, "Failed to load audit log", err)
		return
	}

	dtos := make([]AuditEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = AuditEntryDTO{
			ID:        e.ID,
			Timestamp: e.Timestamp.Format(time.RFC3339),
			ActorID:   e.ActorID,
			Action:    string(e.Action),
			Payload:   e.Payload,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ExportSchedule streams the schedule as an xlsx workbook.
func (h *Handler) ExportSchedule(w http.ResponseWriter, r *http.Request) {
	o, err := h.Service.GetOrder(r.Context(), orderID(r))
	if err != nil {
		h.writeServiceError(w, "Failed to get order", err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-schedule.xlsx"`, o.Name))
	if err := report.WriteSchedule(w, o); err != nil {
		h.Log.WithError(err).WithField("order_id", o.ID).Error("schedule export failed")
	}
}

// =============================================================================
// CONTRACT HANDLERS
// =============================================================================

func (h *Handler) UpdateContract(w http.ResponseWriter, r *http.Request) {
	var req ContractDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	terms, err := req.toContractTerms()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid contract dates (use YYYY-MM-DD)", err)
		return
	}
	h.respondOrder(w, "Failed to update contract")(h.Service.UpdateContract(r.Context(), orderID(r), terms))
}

func (h *Handler) GetContractURL(w http.ResponseWriter, r *http.Request) {
	url, err := h.Service.ContractURL(r.Context(), orderID(r))
	if err != nil {
		h.writeServiceError(w, "Failed to build contract link", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *Handler) SendContract(w http.ResponseWriter, r *http.Request) {
	h.respondOrder(w, "Failed to send contract")(h.Service.SendContract(r.Context(), orderID(r)))
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// SweepOverdue flags overdue installments as of ?as_of (default today).
func (h *Handler) SweepOverdue(w http.ResponseWriter, r *http.Request) {
	asOf := schedule.Today()
	if s := r.URL.Query().Get("as_of"); s != "" {
		d, err := schedule.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid as_of format (use YYYY-MM-DD)", err)
			return
		}
		asOf = d
	}

	flagged, err := h.Service.SweepOverdue(r.Context(), asOf)
	if err != nil {
		h.writeServiceError(w, "Overdue sweep failed", err)
		return
	}
	writeJSON(w, http.StatusOK, SweepResponse{AsOf: asOf.String(), Flagged: flagged})
}

// =============================================================================
// HELPERS
// =============================================================================

func orderID(r *http.Request) schedule.OrderID {
	return schedule.OrderID(chi.URLParam(r, "id"))
}

func sequenceParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	seq, err := strconv.Atoi(chi.URLParam(r, "seq"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid installment sequence", err)
		return 0, false
	}
	return seq, true
}

// respondOrder writes the order returned by a service call, or its error.
func (h *Handler) respondOrder(w http.ResponseWriter, message string) func(*insurance.SaleOrder, error) {
	return func(o *insurance.SaleOrder, err error) {
		if err != nil {
			h.writeServiceError(w, message, err)
			return
		}
		writeJSON(w, http.StatusOK, toOrderDTO(o))
	}
}

// writeServiceError maps domain errors to HTTP status codes.
func (h *Handler) writeServiceError(w http.ResponseWriter, message string, err error) {
	var missing *insurance.ContractRequirementsError
	switch {
	case errors.As(err, &missing):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: message, Details: err.Error(), Missing: missing.Missing})
	case insurance.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, insurance.ErrInvalidAccessToken):
		writeError(w, http.StatusForbidden, message, err)
	case errors.Is(err, insurance.ErrOrderLocked), errors.Is(err, insurance.ErrInvalidTransition),
		errors.Is(err, insurance.ErrTermExists):
		writeError(w, http.StatusConflict, message, err)
	case insurance.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		h.Log.WithError(err).Error(message)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
