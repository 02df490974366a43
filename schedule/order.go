/*
order.go - Order lifecycle and regeneration triggers

PURPOSE:
  The calculator never recomputes behind the caller's back. These methods
  are the explicit lifecycle points at which a schedule is regenerated or
  the term is detached.

TRIGGERS:
  Event                          Effect
  ---------------------------    ------------------------------------
  NewOrder with term, total > 0  generate
  SelectTerm                     generate (or clear when term is nil)
  SetTotal with a term selected  generate
  SetTotal without a term        nothing, manual installments survive
  EditInstallment (amounts)      detach term
  Add/Remove/Replace             detach term
  MarkPaid / MarkOverdue         nothing (status is not a schedule edit)

  Detaching keeps the installments as they are; the order simply stops
  being reconciled against a term.
*/
package schedule

import (
	"github.com/shopspring/decimal"
)

// NewOrder builds an order and generates its schedule when a term is given
// and the total is positive.
func NewOrder(id OrderID, total decimal.Decimal, currency Currency, orderDate Date, term *PaymentTerm) *Order {
	o := &Order{
		ID:           id,
		Total:        total,
		Currency:     currency,
		OrderDate:    orderDate,
		Term:         term,
		Installments: []Installment{},
	}
	if term != nil && total.IsPositive() {
		o.Regenerate()
	}
	return o
}

// Regenerate replaces the installment list with the term's schedule.
func (o *Order) Regenerate() {
	o.Installments = Generate(o)
}

// SelectTerm attaches term and regenerates. A nil term detaches and keeps
// the current installments.
func (o *Order) SelectTerm(term *PaymentTerm) {
	o.Term = term
	if term == nil {
		return
	}
	o.Regenerate()
}

// SetTotal changes the order total. Returns true when the schedule was
// regenerated.
func (o *Order) SetTotal(total decimal.Decimal) bool {
	changed := !o.Total.Equal(total)
	o.Total = total
	if !changed || o.Term == nil {
		return false
	}
	o.Regenerate()
	return true
}

// Detach clears the selected term. Returns true if one was attached.
func (o *Order) Detach() bool {
	attached := o.Term != nil
	o.Term = nil
	return attached
}

// =============================================================================
// MANUAL EDITS - All of these detach the term
// =============================================================================

// InstallmentEdit carries the fields a user changed; nil means unchanged.
type InstallmentEdit struct {
	Amount       *decimal.Decimal
	DueDate      *Date
	InterestRate *decimal.Decimal
	DiscountRate *decimal.Decimal
	Notes        *string
}

// touchesSchedule reports whether the edit changes anything but notes.
func (e InstallmentEdit) touchesSchedule() bool {
	return e.Amount != nil || e.DueDate != nil || e.InterestRate != nil || e.DiscountRate != nil
}

// Installment returns the installment with the given sequence.
func (o *Order) Installment(seq int) (*Installment, error) {
	for i := range o.Installments {
		if o.Installments[i].Sequence == seq {
			return &o.Installments[i], nil
		}
	}
	return nil, ErrInstallmentNotFound
}

// EditInstallment applies a manual edit. Rate changes re-derive the amount
// from the previous base unless the same edit sets the amount explicitly.
// Returns true when the edit detached the term.
func (o *Order) EditInstallment(seq int, e InstallmentEdit) (bool, error) {
	in, err := o.Installment(seq)
	if err != nil {
		return false, err
	}

	if e.InterestRate != nil || e.DiscountRate != nil {
		interest, discount := in.InterestRate, in.DiscountRate
		if e.InterestRate != nil {
			interest = *e.InterestRate
		}
		if e.DiscountRate != nil {
			discount = *e.DiscountRate
		}
		*in = in.WithRates(interest, discount, o.Currency)
	}
	if e.Amount != nil {
		in.Amount = o.Currency.Round(*e.Amount)
	}
	if e.DueDate != nil {
		in.DueDate = *e.DueDate
	}
	if e.Notes != nil {
		in.Notes = *e.Notes
	}

	if !e.touchesSchedule() {
		return false, nil
	}
	in.AutoGenerated = false
	return o.Detach(), nil
}

// AddInstallment appends a manual installment numbered after the last one.
func (o *Order) AddInstallment(in Installment) Installment {
	next := 0
	for _, existing := range o.Installments {
		if existing.Sequence > next {
			next = existing.Sequence
		}
	}
	in.Sequence = next + 1
	in.Amount = o.Currency.Round(in.Amount)
	in.AutoGenerated = false
	if in.Status == "" {
		in.Status = StatusPending
	}
	o.Installments = append(o.Installments, in)
	o.Detach()
	return in
}

// RemoveInstallment deletes the installment with the given sequence.
func (o *Order) RemoveInstallment(seq int) error {
	for i := range o.Installments {
		if o.Installments[i].Sequence == seq {
			o.Installments = append(o.Installments[:i], o.Installments[i+1:]...)
			o.Detach()
			return nil
		}
	}
	return ErrInstallmentNotFound
}

// ReplaceInstallments swaps in a user supplied list, renumbered 1..N.
func (o *Order) ReplaceInstallments(list []Installment) {
	out := make([]Installment, len(list))
	for i, in := range list {
		in.Sequence = i + 1
		in.Amount = o.Currency.Round(in.Amount)
		in.AutoGenerated = false
		if in.Status == "" {
			in.Status = StatusPending
		}
		out[i] = in
	}
	o.Installments = out
	o.Detach()
}

// =============================================================================
// STATUS - Payment tracking, never detaches
// =============================================================================

func (o *Order) MarkPaid(seq int) error {
	in, err := o.Installment(seq)
	if err != nil {
		return err
	}
	in.Status = StatusPaid
	return nil
}

// MarkOverdue flags pending installments due before asOf and returns the
// sequences that changed.
func (o *Order) MarkOverdue(asOf Date) []int {
	var changed []int
	for i := range o.Installments {
		in := &o.Installments[i]
		if in.Status == StatusPending && in.DueDate.Before(asOf) {
			in.Status = StatusOverdue
			changed = append(changed, in.Sequence)
		}
	}
	return changed
}
