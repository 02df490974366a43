/*
errors.go - Error types for the schedule calculator

ERROR CATEGORIES:
  1. Term errors - malformed payment terms (rejected before use)
  2. Save validation - installment rules checked when an order is saved
  3. Lookup errors - references to installments that do not exist

USAGE:
  if err := schedule.Validate(order); err != nil {
      var mismatch *schedule.MismatchError
      if errors.As(err, &mismatch) {
          log.Printf("off by %s", mismatch.Diff)
      }
  }
*/
package schedule

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidTerm is returned when a payment term cannot drive a schedule.
	ErrInvalidTerm = errors.New("invalid payment term")

	// ErrScheduleMismatch is returned when installments do not add up to the
	// expected total.
	ErrScheduleMismatch = errors.New("installment total does not match amount due")

	// ErrNonPositiveInstallment is returned for an installment amount <= 0.
	ErrNonPositiveInstallment = errors.New("installment amount must be positive")

	// ErrInstallmentNotFound is returned when a sequence number is unknown.
	ErrInstallmentNotFound = errors.New("installment not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// TermError names the offending line of a payment term.
type TermError struct {
	TermID   TermID
	Sequence int // 0 when the problem is not tied to a line
	Reason   string
}

func (e *TermError) Error() string {
	if e.Sequence == 0 {
		return fmt.Sprintf("payment term %q: %s", e.TermID, e.Reason)
	}
	return fmt.Sprintf("payment term %q line %d: %s", e.TermID, e.Sequence, e.Reason)
}

func (e *TermError) Unwrap() error { return ErrInvalidTerm }

// MismatchError reports both totals and the signed difference
// (Actual - Expected). Positive Diff is an excess, negative a shortfall.
type MismatchError struct {
	Expected decimal.Decimal
	Actual   decimal.Decimal
	Diff     decimal.Decimal
}

func (e *MismatchError) Error() string {
	if e.Diff.IsPositive() {
		return fmt.Sprintf("installment total $%s exceeds the amount due $%s (excess $%s)",
			e.Actual.StringFixed(2), e.Expected.StringFixed(2), e.Diff.StringFixed(2))
	}
	return fmt.Sprintf("installment total $%s is below the amount due $%s (shortfall $%s)",
		e.Actual.StringFixed(2), e.Expected.StringFixed(2), e.Diff.Neg().StringFixed(2))
}

func (e *MismatchError) Unwrap() error { return ErrScheduleMismatch }

// NonPositiveError names the installment whose amount is not above zero.
type NonPositiveError struct {
	Sequence int
	Amount   decimal.Decimal
}

func (e *NonPositiveError) Error() string {
	return fmt.Sprintf("installment #%d must have an amount greater than zero (got %s)",
		e.Sequence, e.Amount.String())
}

func (e *NonPositiveError) Unwrap() error { return ErrNonPositiveInstallment }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsValidationError returns true for errors caused by the caller's data.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidTerm) ||
		errors.Is(err, ErrScheduleMismatch) ||
		errors.Is(err, ErrNonPositiveInstallment)
}
