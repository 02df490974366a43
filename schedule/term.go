package schedule

import (
	"sort"
)

// =============================================================================
// TERM LINES - Ordering and due-date policy
// =============================================================================

// SortedLines returns the lines in ascending sequence. Lines with equal
// sequence keep their declared order.
func (t *PaymentTerm) SortedLines() []TermLine {
	lines := append([]TermLine(nil), t.Lines...)
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Sequence < lines[j].Sequence
	})
	return lines
}

// DueDateFrom computes when an installment produced by this line is due.
//
//	days_after                    base + Days
//	days_after_end_of_month       last day of base's month + Days
//	days_after_end_of_next_month  last day of the next month + Days
//
// An explicit DueDate wins over all of the above. Unknown delay types
// behave like days_after.
func (l TermLine) DueDateFrom(base Date) Date {
	if l.DueDate != nil && !l.DueDate.IsZero() {
		return *l.DueDate
	}
	switch l.DelayType {
	case DaysAfterEndOfMonth:
		return base.EndOfMonth().AddDays(l.Days)
	case DaysAfterEndOfNextMonth:
		return base.EndOfNextMonth().AddDays(l.Days)
	default:
		return base.AddDays(l.Days)
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate rejects terms the generator cannot handle unambiguously:
//   - no lines, or duplicate sequence numbers
//   - unknown value kind or delay type
//   - negative values, days or interest; percent above 100
//   - discount outside [0, 100)
//   - more than one balance line, or a balance line that is not last
func (t *PaymentTerm) Validate() error {
	if len(t.Lines) == 0 {
		return &TermError{TermID: t.ID, Reason: "at least one line is required"}
	}

	seen := make(map[int]bool, len(t.Lines))
	for _, l := range t.Lines {
		if seen[l.Sequence] {
			return &TermError{TermID: t.ID, Sequence: l.Sequence, Reason: "duplicate sequence"}
		}
		seen[l.Sequence] = true

		switch l.Kind {
		case ValueFixed, ValueBalance:
		case ValuePercent:
			if l.Value.GreaterThan(hundred) {
				return &TermError{TermID: t.ID, Sequence: l.Sequence, Reason: "percent above 100"}
			}
		default:
			return &TermError{TermID: t.ID, Sequence: l.Sequence, Reason: "unknown value kind " + string(l.Kind)}
		}

		switch l.DelayType {
		case "", DaysAfter, DaysAfterEndOfMonth, DaysAfterEndOfNextMonth:
		default:
			return &TermError{TermID: t.ID, Sequence: l.Sequence, Reason: "unknown delay type " + string(l.DelayType)}
		}

		if l.Value.IsNegative() {
			return &TermError{TermID: t.ID, Sequence: l.Sequence, Reason: "value must not be negative"}
		}
		if l.Days < 0 {
			return &TermError{TermID: t.ID, Sequence: l.Sequence, Reason: "days must not be negative"}
		}
		if l.InterestRate.IsNegative() {
			return &TermError{TermID: t.ID, Sequence: l.Sequence, Reason: "interest rate must not be negative"}
		}
		if l.DiscountRate.IsNegative() || l.DiscountRate.GreaterThanOrEqual(hundred) {
			return &TermError{TermID: t.ID, Sequence: l.Sequence, Reason: "discount rate must be in [0, 100)"}
		}
	}

	lines := t.SortedLines()
	for i, l := range lines {
		if l.Kind == ValueBalance && i != len(lines)-1 {
			return &TermError{TermID: t.ID, Sequence: l.Sequence, Reason: "balance line must be the last line"}
		}
	}
	return nil
}
