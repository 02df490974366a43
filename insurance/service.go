/*
service.go - Sale order operations

PURPOSE:
  The single writer of orders. Each operation loads the order, applies one
  schedule lifecycle call, validates the result and saves it back together
  with its audit entries, all inside one store transaction.

SAVE PIPELINE (mutate):
  1. GetOrder inside WithTx
  2. apply the change (may regenerate or detach, see schedule/order.go)
  3. schedule.Validate: positive amounts, reconciliation while a term is set
  4. SaveOrder (installments replaced wholesale) + AppendAudit
  Any error rolls the whole transaction back; the stored order never sees
  a schedule that failed validation.

SEE ALSO:
  - portal.go: customer-facing operations
  - store.go: persistence contract
*/
package insurance

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/warp/insurance-engine/schedule"
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// ContractEmail is the message inviting the customer to sign the contract.
type ContractEmail struct {
	To           string
	CustomerName string
	OrderName    string
	URL          string
	Summary      string
	Total        decimal.Decimal
}

// ContractMailer delivers contract emails.
type ContractMailer interface {
	SendContract(ctx context.Context, msg ContractEmail) error
}

type actorKey struct{}

// WithActor tags ctx with the user performing the operation; audit entries
// record it.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func actorFrom(ctx context.Context) string {
	if a, ok := ctx.Value(actorKey{}).(string); ok {
		return a
	}
	return "system"
}

// =============================================================================
// SERVICE
// =============================================================================

type Service struct {
	store    TxStore
	tokens   *TokenIssuer
	mailer   ContractMailer
	log      *logrus.Logger
	now      func() time.Time
	baseURL  string
	currency schedule.Currency
}

type Option func(*Service)

func WithMailer(m ContractMailer) Option { return func(s *Service) { s.mailer = m } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithBaseURL prefixes portal links sent by email.
func WithBaseURL(u string) Option { return func(s *Service) { s.baseURL = u } }

func WithCurrency(c schedule.Currency) Option { return func(s *Service) { s.currency = c } }

func NewService(store TxStore, tokens *TokenIssuer, log *logrus.Logger, opts ...Option) *Service {
	s := &Service{
		store:    store,
		tokens:   tokens,
		log:      log,
		now:      time.Now,
		currency: schedule.DefaultCurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// =============================================================================
// PAYMENT TERMS
// =============================================================================

// CreateTerm validates and stores a new term. An empty id gets the next free
// numeric id; an id already in use returns ErrTermExists.
func (s *Service) CreateTerm(ctx context.Context, term *schedule.PaymentTerm) (*schedule.PaymentTerm, error) {
	err := s.store.WithTx(ctx, func(st Store) error {
		if term.ID == "" {
			existing, err := st.ListTerms(ctx)
			if err != nil {
				return err
			}
			term.ID = nextTermID(existing)
		} else {
			_, err := st.GetTerm(ctx, term.ID)
			if err == nil {
				return fmt.Errorf("%w: %s", ErrTermExists, term.ID)
			}
			if !errors.Is(err, ErrTermNotFound) {
				return err
			}
		}
		if err := term.Validate(); err != nil {
			return err
		}
		return st.SaveTerm(ctx, term)
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"term_id": term.ID, "lines": len(term.Lines)}).Info("payment term saved")
	return term, nil
}

func nextTermID(terms []*schedule.PaymentTerm) schedule.TermID {
	highest := 0
	for _, t := range terms {
		if n, err := strconv.Atoi(string(t.ID)); err == nil && n > highest {
			highest = n
		}
	}
	return schedule.TermID(strconv.Itoa(highest + 1))
}

func (s *Service) GetTerm(ctx context.Context, id schedule.TermID) (*schedule.PaymentTerm, error) {
	return s.store.GetTerm(ctx, id)
}

func (s *Service) ListTerms(ctx context.Context) ([]*schedule.PaymentTerm, error) {
	return s.store.ListTerms(ctx)
}

// SeedTerms stores the given terms unless a term with the same id exists.
// Returns how many were added.
func (s *Service) SeedTerms(ctx context.Context, terms []*schedule.PaymentTerm) (int, error) {
	added := 0
	err := s.store.WithTx(ctx, func(st Store) error {
		for _, t := range terms {
			_, err := st.GetTerm(ctx, t.ID)
			if err == nil {
				continue
			}
			if !errors.Is(err, ErrTermNotFound) {
				return err
			}
			if err := st.SaveTerm(ctx, t); err != nil {
				return err
			}
			added++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if added > 0 {
		s.log.WithField("count", added).Info("preset payment terms seeded")
	}
	return added, nil
}

// =============================================================================
// ORDERS
// =============================================================================

type NewOrderInput struct {
	Name          string
	CustomerName  string
	CustomerEmail string
	Total         decimal.Decimal
	OrderDate     schedule.Date
	TermID        schedule.TermID // empty for a manual schedule
	Contract      *ContractTerms  // nil for DefaultContractTerms
}

// CreateOrder stores a draft order, generating its schedule when a term is
// given and the total is positive.
func (s *Service) CreateOrder(ctx context.Context, in NewOrderInput) (*SaleOrder, error) {
	if in.Total.IsNegative() {
		return nil, ErrNegativeTotal
	}

	var created *SaleOrder
	err := s.store.WithTx(ctx, func(st Store) error {
		var term *schedule.PaymentTerm
		if in.TermID != "" {
			t, err := st.GetTerm(ctx, in.TermID)
			if err != nil {
				return err
			}
			term = t
		}

		now := s.now()
		orderDate := in.OrderDate
		if orderDate.IsZero() {
			orderDate = schedule.DateOf(now)
		}
		id := schedule.OrderID(uuid.NewString())

		contract := DefaultContractTerms()
		if in.Contract != nil {
			contract = *in.Contract
		}

		token, err := s.tokens.Issue(id, now)
		if err != nil {
			return err
		}

		o := &SaleOrder{
			Order:         *schedule.NewOrder(id, s.currency.Round(in.Total), s.currency, orderDate, term),
			Name:          in.Name,
			State:         StateDraft,
			CustomerName:  in.CustomerName,
			CustomerEmail: in.CustomerEmail,
			AccessToken:   token,
			Contract:      contract,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if o.Name == "" {
			o.Name = "SO-" + string(id)[:8]
		}

		if err := schedule.Validate(&o.Order); err != nil {
			return err
		}
		if err := st.SaveOrder(ctx, o); err != nil {
			return err
		}
		created = o
		return s.appendAudit(ctx, st, o.ID, AuditOrderCreated, map[string]any{
			"total":        o.Total.String(),
			"term_id":      string(in.TermID),
			"installments": len(o.Installments),
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id":     created.ID,
		"total":        created.Total.String(),
		"installments": len(created.Installments),
	}).Info("sale order created")
	return created, nil
}

func (s *Service) GetOrder(ctx context.Context, id schedule.OrderID) (*SaleOrder, error) {
	return s.store.GetOrder(ctx, id)
}

func (s *Service) ListOrders(ctx context.Context) ([]*SaleOrder, error) {
	return s.store.ListOrders(ctx)
}

// =============================================================================
// SCHEDULE LIFECYCLE
// =============================================================================

// SetTotal changes the order total, regenerating when a term is selected.
func (s *Service) SetTotal(ctx context.Context, id schedule.OrderID, total decimal.Decimal) (*SaleOrder, error) {
	if total.IsNegative() {
		return nil, ErrNegativeTotal
	}
	return s.mutateSchedule(ctx, id, func(st Store, o *SaleOrder) ([]pendingAudit, error) {
		if !o.SetTotal(s.currency.Round(total)) {
			return nil, nil
		}
		return []pendingAudit{{AuditScheduleRegenerate, map[string]any{
			"reason": "total_changed", "total": o.Total.String(),
		}}}, nil
	})
}

// SelectTerm attaches the term and regenerates. An empty id detaches.
func (s *Service) SelectTerm(ctx context.Context, id schedule.OrderID, termID schedule.TermID) (*SaleOrder, error) {
	return s.mutateSchedule(ctx, id, func(st Store, o *SaleOrder) ([]pendingAudit, error) {
		if termID == "" {
			if !o.Detach() {
				return nil, nil
			}
			return []pendingAudit{{AuditTermDetached, map[string]any{"reason": "cleared"}}}, nil
		}
		term, err := st.GetTerm(ctx, termID)
		if err != nil {
			return nil, err
		}
		o.SelectTerm(term)
		return []pendingAudit{{AuditTermSelected, map[string]any{
			"term_id": string(term.ID), "installments": len(o.Installments),
		}}}, nil
	})
}

// EditInstallment applies a manual edit, detaching the term unless only
// notes changed.
func (s *Service) EditInstallment(ctx context.Context, id schedule.OrderID, seq int, edit schedule.InstallmentEdit) (*SaleOrder, error) {
	return s.mutateSchedule(ctx, id, func(st Store, o *SaleOrder) ([]pendingAudit, error) {
		detached, err := o.EditInstallment(seq, edit)
		if err != nil {
			return nil, err
		}
		audits := []pendingAudit{{AuditInstallmentEdited, map[string]any{"sequence": seq}}}
		if detached {
			audits = append(audits, pendingAudit{AuditTermDetached, map[string]any{"reason": "manual_edit"}})
		}
		return audits, nil
	})
}

func (s *Service) AddInstallment(ctx context.Context, id schedule.OrderID, in schedule.Installment) (*SaleOrder, error) {
	return s.mutateSchedule(ctx, id, func(st Store, o *SaleOrder) ([]pendingAudit, error) {
		attached := o.Term != nil
		added := o.AddInstallment(in)
		return manualAudits(attached, "manual_add", added.Sequence), nil
	})
}

func (s *Service) RemoveInstallment(ctx context.Context, id schedule.OrderID, seq int) (*SaleOrder, error) {
	return s.mutateSchedule(ctx, id, func(st Store, o *SaleOrder) ([]pendingAudit, error) {
		attached := o.Term != nil
		if err := o.RemoveInstallment(seq); err != nil {
			return nil, err
		}
		return manualAudits(attached, "manual_delete", seq), nil
	})
}

// ReplaceInstallments swaps in a manual schedule.
func (s *Service) ReplaceInstallments(ctx context.Context, id schedule.OrderID, list []schedule.Installment) (*SaleOrder, error) {
	return s.mutateSchedule(ctx, id, func(st Store, o *SaleOrder) ([]pendingAudit, error) {
		attached := o.Term != nil
		o.ReplaceInstallments(list)
		return manualAudits(attached, "manual_replace", len(list)), nil
	})
}

func manualAudits(wasAttached bool, reason string, seq int) []pendingAudit {
	audits := []pendingAudit{{AuditInstallmentEdited, map[string]any{"reason": reason, "sequence": seq}}}
	if wasAttached {
		audits = append(audits, pendingAudit{AuditTermDetached, map[string]any{"reason": reason}})
	}
	return audits
}

// =============================================================================
// PAYMENTS
// =============================================================================

// PayInstallment marks an installment paid. Allowed in any state but cancel.
func (s *Service) PayInstallment(ctx context.Context, id schedule.OrderID, seq int) (*SaleOrder, error) {
	return s.mutate(ctx, id, func(st Store, o *SaleOrder) ([]pendingAudit, error) {
		if o.State == StateCancel {
			return nil, ErrOrderLocked
		}
		if err := o.MarkPaid(seq); err != nil {
			return nil, err
		}
		return []pendingAudit{{AuditInstallmentPaid, map[string]any{"sequence": seq}}}, nil
	})
}

// SweepOverdue flags pending installments due before asOf on every open
// order. Returns the number of installments flagged.
func (s *Service) SweepOverdue(ctx context.Context, asOf schedule.Date) (int, error) {
	flagged := 0
	err := s.store.WithTx(ctx, func(st Store) error {
		orders, err := st.ListOrders(ctx)
		if err != nil {
			return err
		}
		for _, o := range orders {
			if o.State == StateCancel {
				continue
			}
			changed := o.MarkOverdue(asOf)
			if len(changed) == 0 {
				continue
			}
			o.UpdatedAt = s.now()
			if err := st.SaveOrder(ctx, o); err != nil {
				return err
			}
			if err := s.appendAudit(ctx, st, o.ID, AuditInstallmentOverdue, map[string]any{
				"sequences": changed, "as_of": asOf.String(),
			}); err != nil {
				return err
			}
			flagged += len(changed)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.WithFields(logrus.Fields{"as_of": asOf.String(), "flagged": flagged}).Info("overdue sweep finished")
	return flagged, nil
}

// =============================================================================
// READ-ONLY PROJECTIONS
// =============================================================================

func (s *Service) Reconcile(ctx context.Context, id schedule.OrderID) (schedule.Reconciliation, error) {
	o, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return schedule.Reconciliation{}, err
	}
	return schedule.Reconcile(&o.Order), nil
}

func (s *Service) Summary(ctx context.Context, id schedule.OrderID) (string, error) {
	o, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return "", err
	}
	return schedule.Summary(&o.Order), nil
}

// Adjustment returns the invoice financial adjustment, nil when none.
func (s *Service) Adjustment(ctx context.Context, id schedule.OrderID) (*AdjustmentLine, error) {
	o, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return FinancialAdjustment(o), nil
}

func (s *Service) Audit(ctx context.Context, id schedule.OrderID) ([]AuditEntry, error) {
	if _, err := s.store.GetOrder(ctx, id); err != nil {
		return nil, err
	}
	return s.store.QueryAudit(ctx, AuditFilter{OrderID: &id})
}

// =============================================================================
// CONTRACT
// =============================================================================

// UpdateContract replaces the contract fields. Signed contracts are frozen.
func (s *Service) UpdateContract(ctx context.Context, id schedule.OrderID, terms ContractTerms) (*SaleOrder, error) {
	return s.mutate(ctx, id, func(st Store, o *SaleOrder) ([]pendingAudit, error) {
		if o.Signature != nil || o.State == StateCancel {
			return nil, ErrOrderLocked
		}
		o.Contract = terms
		return []pendingAudit{{AuditContractUpdated, map[string]any{"policy_number": terms.PolicyNumber}}}, nil
	})
}

// CheckContractRequirements returns a ContractRequirementsError listing
// every missing field.
func CheckContractRequirements(o *SaleOrder) error {
	if missing := o.Contract.MissingFields(); len(missing) > 0 {
		return &ContractRequirementsError{Missing: missing}
	}
	return nil
}

// ContractURL returns the portal link of the order's contract.
func (s *Service) ContractURL(ctx context.Context, id schedule.OrderID) (string, error) {
	o, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return "", err
	}
	if err := CheckContractRequirements(o); err != nil {
		return "", err
	}
	return s.baseURL + ContractPath(o), nil
}

// ContractPath is the portal path of the contract, token included.
func ContractPath(o *SaleOrder) string {
	return fmt.Sprintf("/my/contract/%s?access_token=%s", o.ID, o.AccessToken)
}

// SendContract emails the contract link and marks a draft order as sent.
// The email goes out before any transaction starts; the state change and
// its audit entry are saved afterwards.
func (s *Service) SendContract(ctx context.Context, id schedule.OrderID) (*SaleOrder, error) {
	if s.mailer == nil {
		return nil, errors.New("no contract mailer configured")
	}

	o, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CheckContractRequirements(o); err != nil {
		return nil, err
	}
	if o.CustomerEmail == "" {
		return nil, ErrNoRecipient
	}

	msg := ContractEmail{
		To:           o.CustomerEmail,
		CustomerName: o.CustomerName,
		OrderName:    o.Name,
		URL:          s.baseURL + ContractPath(o),
		Summary:      schedule.Summary(&o.Order),
		Total:        o.ScheduleTotal(),
	}
	if err := s.mailer.SendContract(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to send contract email: %w", err)
	}

	sent, err := s.mutate(ctx, id, func(st Store, o *SaleOrder) ([]pendingAudit, error) {
		if o.State == StateDraft {
			o.State = StateSent
		}
		return []pendingAudit{{AuditContractSent, map[string]any{"to": msg.To}}}, nil
	})
	if err != nil {
		s.log.WithError(err).WithField("order_id", id).Error("contract email sent but order not updated")
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"order_id": id, "to": msg.To}).Info("contract email sent")
	return sent, nil
}

// =============================================================================
// STATE TRANSITIONS
// =============================================================================

// Confirm turns a quotation into a sale. The schedule must reconcile.
func (s *Service) Confirm(ctx context.Context, id schedule.OrderID) (*SaleOrder, error) {
	return s.mutate(ctx, id, func(st Store, o *SaleOrder) ([]pendingAudit, error) {
		if !o.Modifiable() {
			return nil, ErrInvalidTransition
		}
		now := s.now()
		o.State = StateSale
		o.SignedOn = &now
		return []pendingAudit{{AuditStateChanged, map[string]any{"state": string(StateSale)}}}, nil
	})
}

func (s *Service) Cancel(ctx context.Context, id schedule.OrderID) (*SaleOrder, error) {
	return s.mutate(ctx, id, func(st Store, o *SaleOrder) ([]pendingAudit, error) {
		if o.State == StateCancel {
			return nil, ErrInvalidTransition
		}
		o.State = StateCancel
		return []pendingAudit{{AuditStateChanged, map[string]any{"state": string(StateCancel)}}}, nil
	})
}

// =============================================================================
// SAVE PIPELINE
// =============================================================================

type pendingAudit struct {
	action  AuditAction
	payload map[string]any
}

// mutateSchedule is mutate for schedule changes, which require a draft or
// sent order.
func (s *Service) mutateSchedule(ctx context.Context, id schedule.OrderID, fn func(Store, *SaleOrder) ([]pendingAudit, error)) (*SaleOrder, error) {
	return s.mutate(ctx, id, func(st Store, o *SaleOrder) ([]pendingAudit, error) {
		if !o.Modifiable() {
			return nil, ErrOrderLocked
		}
		return fn(st, o)
	})
}

func (s *Service) mutate(ctx context.Context, id schedule.OrderID, fn func(Store, *SaleOrder) ([]pendingAudit, error)) (*SaleOrder, error) {
	var saved *SaleOrder
	err := s.store.WithTx(ctx, func(st Store) error {
		o, err := st.GetOrder(ctx, id)
		if err != nil {
			return err
		}
		audits, err := fn(st, o)
		if err != nil {
			return err
		}
		if err := schedule.Validate(&o.Order); err != nil {
			return err
		}
		o.UpdatedAt = s.now()
		if err := st.SaveOrder(ctx, o); err != nil {
			return err
		}
		for _, a := range audits {
			if err := s.appendAudit(ctx, st, o.ID, a.action, a.payload); err != nil {
				return err
			}
		}
		saved = o
		return nil
	})
	if err != nil {
		s.log.WithError(err).WithField("order_id", id).Debug("order change rejected")
		return nil, err
	}
	return saved, nil
}

func (s *Service) appendAudit(ctx context.Context, st Store, id schedule.OrderID, action AuditAction, payload map[string]any) error {
	return st.AppendAudit(ctx, AuditEntry{
		ID:        uuid.NewString(),
		Timestamp: s.now(),
		ActorID:   actorFrom(ctx),
		Action:    action,
		OrderID:   id,
		Payload:   payload,
	})
}
