/*
portal.go - Customer-facing operations

PURPOSE:
  What the customer can do from the link in the contract email: choose a
  payment plan, preview a plan before choosing it, read the contract and
  sign it. Every call presents the order's access token.

ERROR STYLE:
  Term selection never fails with an error. Bad input (no term, a
  non-numeric id, a locked order) comes back as a PortalResult with
  Success=false and a message the page shows as-is.
*/
package insurance

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/warp/insurance-engine/schedule"
)

// CustomPlanID keeps the current manual schedule.
const CustomPlanID = "-1"

// Portal messages.
const (
	MsgSelectValidTerm = "Please select a valid payment term"
	MsgCustomPlanKept  = "Custom plan kept"
	MsgInvalidTermID   = "Invalid payment term id"
	MsgOrderNotFound   = "The sale order does not exist"
	MsgInvalidToken    = "Invalid access token"
	MsgOrderLocked     = "The order cannot be modified in its current state"
	MsgTermNotFound    = "The selected payment term does not exist"
	MsgTermUpdated     = "Payment term updated"
)

// PortalResult is the JSON answer of a portal term update.
type PortalResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func portalOK(msg string) PortalResult   { return PortalResult{Success: true, Message: msg} }
func portalFail(msg string) PortalResult { return PortalResult{Success: false, Error: msg} }

// =============================================================================
// TERM SELECTION
// =============================================================================

// PortalUpdateTerm selects a payment term on behalf of the customer.
func (s *Service) PortalUpdateTerm(ctx context.Context, orderID schedule.OrderID, termID, token string) PortalResult {
	if termID == "" {
		return portalFail(MsgSelectValidTerm)
	}
	if termID == CustomPlanID {
		return portalOK(MsgCustomPlanKept)
	}
	if _, err := strconv.Atoi(termID); err != nil {
		return portalFail(MsgInvalidTermID)
	}

	o, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return portalFail(MsgOrderNotFound)
		}
		return portalFail(fmt.Sprintf("Error updating the payment term: %v", err))
	}
	if err := s.tokens.CheckAccess(o, token); err != nil {
		return portalFail(MsgInvalidToken)
	}

	_, err = s.SelectTerm(WithActor(ctx, "portal"), orderID, schedule.TermID(termID))
	switch {
	case err == nil:
		s.log.WithFields(logrus.Fields{"order_id": orderID, "term_id": termID}).Info("payment term selected on portal")
		return portalOK(MsgTermUpdated)
	case errors.Is(err, ErrOrderLocked):
		return portalFail(MsgOrderLocked)
	case errors.Is(err, ErrTermNotFound):
		return portalFail(MsgTermNotFound)
	default:
		return portalFail(fmt.Sprintf("Error updating the payment term: %v", err))
	}
}

// =============================================================================
// PREVIEW
// =============================================================================

type PreviewInstallment struct {
	Amount       decimal.Decimal
	InterestRate decimal.Decimal
	DiscountRate decimal.Decimal
	DueDate      schedule.Date
}

type Preview struct {
	Currency     string
	Installments []PreviewInstallment
}

// PreviewTerm shows what the order would pay under a term without changing
// anything. An empty term id yields an empty preview.
func (s *Service) PreviewTerm(ctx context.Context, orderID schedule.OrderID, termID, token string) (*Preview, error) {
	o, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.CheckAccess(o, token); err != nil {
		return nil, err
	}

	preview := &Preview{Currency: o.Currency.Code, Installments: []PreviewInstallment{}}
	if termID == "" {
		return preview, nil
	}
	term, err := s.store.GetTerm(ctx, schedule.TermID(termID))
	if err != nil {
		return nil, err
	}

	candidate := o.Order.Clone()
	candidate.Term = term
	for _, in := range schedule.Generate(candidate) {
		preview.Installments = append(preview.Installments, PreviewInstallment{
			Amount:       in.Amount,
			InterestRate: in.InterestRate,
			DiscountRate: in.DiscountRate,
			DueDate:      in.DueDate,
		})
	}
	return preview, nil
}

// =============================================================================
// CONTRACT
// =============================================================================

// ContractView is everything the printed contract shows.
type ContractView struct {
	Order         *SaleOrder
	Summary       string
	TotalInWords  string
	SignDate      schedule.Date
	Installments  []schedule.Installment // empty when the table is hidden
	Signed        bool
	SignedBy      string
	ScheduleTotal decimal.Decimal
}

func (s *Service) ViewContract(ctx context.Context, orderID schedule.OrderID, token string) (*ContractView, error) {
	o, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.CheckAccess(o, token); err != nil {
		return nil, err
	}

	total := o.ScheduleTotal()
	if len(o.Installments) == 0 {
		total = o.Total
	}
	view := &ContractView{
		Order:         o,
		Summary:       schedule.Summary(&o.Order),
		TotalInWords:  AmountToWords(total),
		SignDate:      o.ContractSignDate(),
		Installments:  []schedule.Installment{},
		ScheduleTotal: total,
	}
	if o.Contract.ShowPaymentTable {
		view.Installments = o.Installments
	}
	if o.Signature != nil {
		view.Signed = true
		view.SignedBy = o.Signature.SignedBy
	}
	return view, nil
}

// SignContract stores the customer's signature and returns the URL the
// portal should reload.
func (s *Service) SignContract(ctx context.Context, orderID schedule.OrderID, token, name string, signature []byte) (string, error) {
	if len(signature) == 0 {
		return "", ErrSignatureMissing
	}

	var redirect string
	_, err := s.mutate(WithActor(ctx, "portal"), orderID, func(st Store, o *SaleOrder) ([]pendingAudit, error) {
		if err := s.tokens.CheckAccess(o, token); err != nil {
			return nil, err
		}
		if o.State == StateCancel {
			return nil, ErrOrderLocked
		}
		o.Signature = &Signature{
			Image:    append([]byte(nil), signature...),
			SignedBy: name,
			SignedOn: s.now(),
		}
		redirect = ContractPath(o)
		return []pendingAudit{{AuditContractSigned, map[string]any{"signed_by": name}}}, nil
	})
	if err != nil {
		return "", err
	}
	s.log.WithFields(logrus.Fields{"order_id": orderID, "signed_by": name}).Info("contract signed")
	return redirect, nil
}
