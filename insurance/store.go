/*
store.go - Persistence interface for sale orders, payment terms and audit

PURPOSE:
  Defines the boundary between the service and the database. Orders are
  saved as whole aggregates: the installment list is replaced on every
  SaveOrder, never patched row by row.

KEY INTERFACES:
  Store:   terms, orders (with installments) and the audit log
  TxStore: Store plus WithTx for atomic read-modify-write

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - insurance/store/memory.go: in-memory for tests and dev

EXAMPLE:
  err := store.WithTx(ctx, func(tx insurance.Store) error {
      order, err := tx.GetOrder(ctx, id)
      ...
      return tx.SaveOrder(ctx, order)
  })
*/
package insurance

import (
	"context"
	"time"

	"github.com/warp/insurance-engine/schedule"
)

// =============================================================================
// STORE
// =============================================================================

type Store interface {
	// SaveTerm inserts or replaces a payment term.
	SaveTerm(ctx context.Context, term *schedule.PaymentTerm) error

	// GetTerm returns ErrTermNotFound for unknown ids.
	GetTerm(ctx context.Context, id schedule.TermID) (*schedule.PaymentTerm, error)

	ListTerms(ctx context.Context) ([]*schedule.PaymentTerm, error)

	// SaveOrder inserts or replaces an order and its installments.
	SaveOrder(ctx context.Context, order *SaleOrder) error

	// GetOrder returns ErrOrderNotFound for unknown ids. The selected term
	// is resolved from the stored payment terms.
	GetOrder(ctx context.Context, id schedule.OrderID) (*SaleOrder, error)

	// ListOrders returns orders by creation time.
	ListOrders(ctx context.Context) ([]*SaleOrder, error)

	AppendAudit(ctx context.Context, entry AuditEntry) error
	QueryAudit(ctx context.Context, filter AuditFilter) ([]AuditEntry, error)
}

// TxStore wraps Store with transaction support.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back.
	WithTx(ctx context.Context, fn func(Store) error) error
}

// =============================================================================
// AUDIT LOG - Who changed which order, and how
// =============================================================================

type AuditEntry struct {
	ID        string
	Timestamp time.Time
	ActorID   string
	Action    AuditAction
	OrderID   schedule.OrderID
	Payload   map[string]any
}

type AuditAction string

const (
	AuditOrderCreated       AuditAction = "order_created"
	AuditTermSelected       AuditAction = "term_selected"
	AuditTermDetached       AuditAction = "term_detached"
	AuditScheduleRegenerate AuditAction = "schedule_regenerated"
	AuditInstallmentEdited  AuditAction = "installment_edited"
	AuditInstallmentPaid    AuditAction = "installment_paid"
	AuditInstallmentOverdue AuditAction = "installment_overdue"
	AuditContractUpdated    AuditAction = "contract_updated"
	AuditContractSent       AuditAction = "contract_sent"
	AuditContractSigned     AuditAction = "contract_signed"
	AuditStateChanged       AuditAction = "state_changed"
)

type AuditFilter struct {
	OrderID *schedule.OrderID
	Actions []AuditAction
	From    *time.Time
	To      *time.Time
}

// Matches reports whether e passes the filter.
func (f AuditFilter) Matches(e AuditEntry) bool {
	if f.OrderID != nil && e.OrderID != *f.OrderID {
		return false
	}
	if f.From != nil && e.Timestamp.Before(*f.From) {
		return false
	}
	if f.To != nil && e.Timestamp.After(*f.To) {
		return false
	}
	if len(f.Actions) == 0 {
		return true
	}
	for _, a := range f.Actions {
		if a == e.Action {
			return true
		}
	}
	return false
}
