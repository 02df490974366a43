package insurance

import (
	"errors"
	"fmt"
	"strings"

	"github.com/warp/insurance-engine/schedule"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	ErrOrderNotFound = errors.New("sale order not found")
	ErrTermNotFound  = errors.New("payment term not found")

	// ErrTermExists is returned when a new term reuses an existing id.
	// Stored terms are never redefined; orders re-read them on every change.
	ErrTermExists = errors.New("payment term already exists")

	// ErrOrderLocked is returned when the schedule of a confirmed or
	// cancelled order is changed.
	ErrOrderLocked = errors.New("order cannot be modified in its current state")

	ErrInvalidAccessToken = errors.New("invalid access token")
	ErrSignatureMissing   = errors.New("signature is missing")
	ErrNoRecipient        = errors.New("order has no customer email")
	ErrInvalidTransition  = errors.New("invalid order state transition")
	ErrNegativeTotal      = errors.New("order total must not be negative")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ContractRequirementsError lists every field still missing on the contract.
type ContractRequirementsError struct {
	Missing []string
}

func (e *ContractRequirementsError) Error() string {
	return fmt.Sprintf("to generate the contract the following fields are required: %s",
		strings.Join(e.Missing, ", "))
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true for lookups of unknown orders, terms or
// installments.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrTermNotFound) ||
		errors.Is(err, schedule.ErrInstallmentNotFound)
}

// IsClientError returns true for errors the caller can fix by changing the
// request.
func IsClientError(err error) bool {
	var req *ContractRequirementsError
	return schedule.IsValidationError(err) ||
		errors.As(err, &req) ||
		errors.Is(err, ErrOrderLocked) ||
		errors.Is(err, ErrSignatureMissing) ||
		errors.Is(err, ErrNoRecipient) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrNegativeTotal)
}
