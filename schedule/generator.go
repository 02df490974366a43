/*
generator.go - Installment schedule generation

PURPOSE:
  Turns an order total and a payment term into dated installments.

ALGORITHM:
  1. Walk the term lines by ascending sequence, remaining = total
       fixed:   allocate Value,                  remaining -= Value
       percent: allocate round(total * Value%),  remaining -= allocated
       balance: allocate round(remaining)
  2. For each allocation:
       final = round(base * (1 + interest%) * (1 - discount%))
  3. Due date from the line's delay policy (term.go), base date = order date
  4. Number installments 1..N, status pending, auto-generated

  A balance allocation that rounds to zero yields no installment.

EXAMPLE:
  total 1200, [percent 50 @0%, balance @10% +30d], base 2024-01-01
    #1  600.00  2024-01-01
    #2  660.00  2024-01-31

SEE ALSO:
  - reconcile.go: recomputes the same pipeline to validate saved schedules
  - order.go: when generation is triggered
*/
package schedule

import "github.com/shopspring/decimal"

// =============================================================================
// ALLOCATION - Share of the total before interest and discount
// =============================================================================

// Allocation is the base amount one term line takes from the order total.
type Allocation struct {
	Line TermLine
	Base decimal.Decimal
}

// Final applies the line's interest and discount to the base, rounded.
func (a Allocation) Final(r Rounding) decimal.Decimal {
	return r.Round(ApplyRates(a.Base, a.Line.InterestRate, a.Line.DiscountRate))
}

// Allocate splits total across the term's lines in sequence order.
func Allocate(total decimal.Decimal, r Rounding, term *PaymentTerm) []Allocation {
	if term == nil {
		return nil
	}

	remaining := total
	var result []Allocation
	for _, line := range term.SortedLines() {
		switch line.Kind {
		case ValueFixed:
			remaining = remaining.Sub(line.Value)
			result = append(result, Allocation{Line: line, Base: line.Value})
		case ValuePercent:
			share := r.Round(total.Mul(line.Value).Div(hundred))
			remaining = remaining.Sub(share)
			result = append(result, Allocation{Line: line, Base: share})
		case ValueBalance:
			rest := r.Round(remaining)
			if rest.IsZero() {
				continue
			}
			result = append(result, Allocation{Line: line, Base: rest})
		}
	}
	return result
}

// ApplyRates returns base * (1 + interest/100) * (1 - discount/100), unrounded.
func ApplyRates(base, interestRate, discountRate decimal.Decimal) decimal.Decimal {
	return base.Mul(rateFactor(interestRate, discountRate))
}

func rateFactor(interestRate, discountRate decimal.Decimal) decimal.Decimal {
	interest := decimal.NewFromInt(1).Add(interestRate.Div(hundred))
	discount := decimal.NewFromInt(1).Sub(discountRate.Div(hundred))
	return interest.Mul(discount)
}

// =============================================================================
// GENERATION
// =============================================================================

// ScheduleInput holds everything Build needs; nothing is read from a store.
type ScheduleInput struct {
	Total    decimal.Decimal
	Rounding Rounding
	Term     *PaymentTerm
	BaseDate Date
}

// Build produces the installment list for the input. A nil term or a
// non-positive total yields an empty schedule.
func Build(in ScheduleInput) []Installment {
	installments := []Installment{}
	if in.Term == nil || !in.Total.IsPositive() {
		return installments
	}

	for i, a := range Allocate(in.Total, in.Rounding, in.Term) {
		installments = append(installments, Installment{
			Sequence:      i + 1,
			Amount:        a.Final(in.Rounding),
			DueDate:       a.Line.DueDateFrom(in.BaseDate),
			InterestRate:  a.Line.InterestRate,
			DiscountRate:  a.Line.DiscountRate,
			Status:        StatusPending,
			AutoGenerated: true,
		})
	}
	return installments
}

// Generate computes the schedule the order's selected term calls for. The
// order is not modified; see Order.Regenerate for the replacing variant.
func Generate(o *Order) []Installment {
	return Build(ScheduleInput{
		Total:    o.Total,
		Rounding: o.Currency,
		Term:     o.Term,
		BaseDate: o.baseDate(),
	})
}

func (o *Order) baseDate() Date {
	if o.OrderDate.IsZero() {
		return Today()
	}
	return o.OrderDate
}
