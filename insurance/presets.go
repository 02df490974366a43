package insurance

import (
	"fmt"

	"github.com/warp/insurance-engine/factory"
	"github.com/warp/insurance-engine/schedule"
)

// =============================================================================
// PRESET PAYMENT TERMS
// =============================================================================
//
// Terms offered on the portal out of the box. Ids are numeric because the
// portal selects terms by number.

// ImmediateJSON pays everything on the order date.
func ImmediateJSON(id, name string) string {
	return fmt.Sprintf(`{
		"id": %q,
		"name": %q,
		"lines": [
			{"sequence": 1, "value": "balance", "delay_type": "days_after", "nb_days": 0}
		]
	}`, id, name)
}

// CashDiscountJSON pays everything within days with a discount.
func CashDiscountJSON(id, name string, discountPct float64, days int) string {
	return fmt.Sprintf(`{
		"id": %q,
		"name": %q,
		"lines": [
			{"sequence": 1, "value": "balance", "discount_rate": %g, "delay_type": "days_after", "nb_days": %d}
		]
	}`, id, name, discountPct, days)
}

// SplitJSON pays firstPct on the order date and the rest after days with
// interest.
func SplitJSON(id, name string, firstPct, interestPct float64, days int) string {
	return fmt.Sprintf(`{
		"id": %q,
		"name": %q,
		"lines": [
			{"sequence": 1, "value": "percent", "value_amount": %g, "delay_type": "days_after", "nb_days": 0},
			{"sequence": 2, "value": "balance", "interest_rate": %g, "delay_type": "days_after", "nb_days": %d}
		]
	}`, id, name, firstPct, interestPct, days)
}

// MonthlyJSON pays in n installments 30 days apart, starting on the order date,
// each with the same interest. The last installment absorbs rounding.
func MonthlyJSON(id, name string, n int, interestPct float64) string {
	share := 100.0 / float64(n)
	lines := ""
	for i := 1; i <= n; i++ {
		if i > 1 {
			lines += ",\n"
		}
		if i == n {
			lines += fmt.Sprintf(`{"sequence": %d, "value": "balance", "interest_rate": %g, "delay_type": "days_after", "nb_days": %d}`,
				i, interestPct, 30*(i-1))
			continue
		}
		lines += fmt.Sprintf(`{"sequence": %d, "value": "percent", "value_amount": "%.2f", "interest_rate": %g, "delay_type": "days_after", "nb_days": %d}`,
			i, share, interestPct, 30*(i-1))
	}
	return fmt.Sprintf(`{"id": %q, "name": %q, "lines": [%s]}`, id, name, lines)
}

// DefaultTermsJSON is the preset catalogue.
func DefaultTermsJSON() []string {
	return []string{
		ImmediateJSON("1", "Immediate payment"),
		CashDiscountJSON("2", "Cash within 10 days, 10% discount", 10, 10),
		SplitJSON("3", "50% now, 50% in 30 days", 50, 10, 30),
		MonthlyJSON("4", "3 monthly installments", 3, 5),
	}
}

// DefaultTerms parses the preset catalogue.
func DefaultTerms() ([]*schedule.PaymentTerm, error) {
	f := factory.NewTermFactory()
	var terms []*schedule.PaymentTerm
	for _, js := range DefaultTermsJSON() {
		t, err := f.ParseTerm(js)
		if err != nil {
			return nil, fmt.Errorf("preset term: %w", err)
		}
		terms = append(terms, t)
	}
	return terms, nil
}
