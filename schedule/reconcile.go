/*
reconcile.go - Expected-total reconciliation

PURPOSE:
  Installments can be edited by hand, so the persisted list is not trusted
  to match the term. Before an order is saved the allocation pipeline is
  recomputed from the order total and term (never from the installments)
  and compared with the sum of the installment amounts.

RULES:
  - Expected total = sum of round(final) over all allocations
  - No term or total <= 0: expected total is the order total
  - Mismatch beyond Tolerance (0.01) fails validation with both totals
    and the signed difference
  - Checked only at save time and only while a term is attached; a
    detached (manually edited) schedule is not reconciled

SEE ALSO:
  - generator.go: the pipeline being recomputed
  - errors.go: MismatchError, NonPositiveError
*/
package schedule

import "github.com/shopspring/decimal"

// Reconciliation compares the expected total with the persisted one.
type Reconciliation struct {
	Expected decimal.Decimal
	Actual   decimal.Decimal
	Diff     decimal.Decimal // Actual - Expected
}

// Balanced reports whether the difference is within Tolerance.
func (r Reconciliation) Balanced() bool {
	return r.Diff.Abs().LessThanOrEqual(Tolerance)
}

// ExpectedTotal recomputes what the installments should add up to.
func ExpectedTotal(o *Order) decimal.Decimal {
	if o.Term == nil || !o.Total.IsPositive() {
		return o.Total
	}

	expected := decimal.Zero
	for _, a := range Allocate(o.Total, o.Currency, o.Term) {
		expected = expected.Add(a.Final(o.Currency))
	}
	return expected
}

// Reconcile returns the expected and actual totals of the order.
func Reconcile(o *Order) Reconciliation {
	expected := ExpectedTotal(o)
	actual := o.ScheduleTotal()
	return Reconciliation{
		Expected: expected,
		Actual:   actual,
		Diff:     actual.Sub(expected),
	}
}

// Validate runs the save-time checks: every installment positive, then the
// reconciliation when a term is attached.
func Validate(o *Order) error {
	for _, in := range o.Installments {
		if !in.Amount.IsPositive() {
			return &NonPositiveError{Sequence: in.Sequence, Amount: in.Amount}
		}
	}

	if o.Term == nil || len(o.Installments) == 0 {
		return nil
	}

	rec := Reconcile(o)
	if !rec.Balanced() {
		return &MismatchError{Expected: rec.Expected, Actual: rec.Actual, Diff: rec.Diff}
	}
	return nil
}
