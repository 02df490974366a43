package schedule

import (
	"fmt"
	"strings"
)

// SummaryDateLayout is dd/mm/yyyy, the layout used on printed contracts.
const SummaryDateLayout = "02/01/2006"

// Summary describes the payment plan in one line. With a term selected it is
// the term's display name; otherwise the installment count and the due dates
// that are set, followed by the first installment's discount or interest.
func Summary(o *Order) string {
	if o.Term != nil {
		return o.Term.DisplayName()
	}
	if len(o.Installments) == 0 {
		return ""
	}

	dates := make([]string, 0, len(o.Installments))
	for _, in := range o.Installments {
		if in.DueDate.IsZero() {
			continue
		}
		dates = append(dates, in.DueDate.Format(SummaryDateLayout))
	}
	s := fmt.Sprintf("Pays in %d installments (%s)", len(o.Installments), strings.Join(dates, ", "))

	first := o.Installments[0]
	switch {
	case first.DiscountRate.IsPositive():
		s += fmt.Sprintf(" Discount %s%%", first.DiscountRate.String())
	case first.InterestRate.IsPositive():
		s += fmt.Sprintf(" Interest %s%%", first.InterestRate.String())
	}
	return s
}
