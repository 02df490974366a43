package schedule

import "github.com/shopspring/decimal"

// =============================================================================
// DERIVED AMOUNTS - Read-only projections of an installment
// =============================================================================
//
// Amount is authoritative. The base (before interest and discount), the
// interest part and the discount part are recomputed from it on demand:
//
//	base     = amount / ((1 + i/100) * (1 - d/100))     0 if divisor <= 0
//	interest = base * i/100
//	discount = base * (1 + i/100) * d/100

// BaseAmount is the installment amount without interest or discount.
func (in Installment) BaseAmount() decimal.Decimal {
	if in.InterestRate.IsZero() && in.DiscountRate.IsZero() {
		return in.Amount
	}
	f := rateFactor(in.InterestRate, in.DiscountRate)
	if !f.IsPositive() {
		return decimal.Zero
	}
	return in.Amount.Div(f)
}

func (in Installment) InterestAmount() decimal.Decimal {
	return in.BaseAmount().Mul(in.InterestRate).Div(hundred)
}

func (in Installment) DiscountAmount() decimal.Decimal {
	withInterest := in.BaseAmount().Mul(decimal.NewFromInt(1).Add(in.InterestRate.Div(hundred)))
	return withInterest.Mul(in.DiscountRate).Div(hundred)
}

// WithRates changes the rates while holding the base amount constant, and
// re-derives Amount from it. A zero base leaves Amount untouched.
func (in Installment) WithRates(interestRate, discountRate decimal.Decimal, r Rounding) Installment {
	base := in.BaseAmount()
	in.InterestRate = interestRate
	in.DiscountRate = discountRate
	if !base.IsZero() {
		in.Amount = r.Round(ApplyRates(base, interestRate, discountRate))
	}
	return in
}
