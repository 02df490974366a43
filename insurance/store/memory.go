// Package store provides in-memory insurance.Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/insurance-engine/insurance"
	"github.com/warp/insurance-engine/schedule"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu     sync.RWMutex
	terms  map[schedule.TermID]*schedule.PaymentTerm
	orders map[schedule.OrderID]*insurance.SaleOrder
	audit  []insurance.AuditEntry
}

func NewMemory() *Memory {
	return &Memory{
		terms:  make(map[schedule.TermID]*schedule.PaymentTerm),
		orders: make(map[schedule.OrderID]*insurance.SaleOrder),
	}
}

func (m *Memory) SaveTerm(_ context.Context, term *schedule.PaymentTerm) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveTermLocked(term)
	return nil
}

func (m *Memory) GetTerm(_ context.Context, id schedule.TermID) (*schedule.PaymentTerm, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getTermLocked(id)
}

func (m *Memory) ListTerms(_ context.Context) ([]*schedule.PaymentTerm, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listTermsLocked(), nil
}

func (m *Memory) SaveOrder(_ context.Context, order *insurance.SaleOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveOrderLocked(order)
	return nil
}

func (m *Memory) GetOrder(_ context.Context, id schedule.OrderID) (*insurance.SaleOrder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getOrderLocked(id)
}

func (m *Memory) ListOrders(_ context.Context) ([]*insurance.SaleOrder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listOrdersLocked(), nil
}

func (m *Memory) AppendAudit(_ context.Context, entry insurance.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audit = append(m.audit, entry)
	return nil
}

func (m *Memory) QueryAudit(_ context.Context, filter insurance.AuditFilter) ([]insurance.AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.queryAuditLocked(filter), nil
}

// =============================================================================
// LOCKED HELPERS - Callers hold mu
// =============================================================================

func (m *Memory) saveTermLocked(term *schedule.PaymentTerm) {
	m.terms[term.ID] = cloneTerm(term)
}

func (m *Memory) getTermLocked(id schedule.TermID) (*schedule.PaymentTerm, error) {
	t, ok := m.terms[id]
	if !ok {
		return nil, insurance.ErrTermNotFound
	}
	return cloneTerm(t), nil
}

func (m *Memory) listTermsLocked() []*schedule.PaymentTerm {
	result := make([]*schedule.PaymentTerm, 0, len(m.terms))
	for _, t := range m.terms {
		result = append(result, cloneTerm(t))
	}
	sort.Slice(result, func(i, j int) bool { return termLess(result[i].ID, result[j].ID) })
	return result
}

func (m *Memory) saveOrderLocked(order *insurance.SaleOrder) {
	m.orders[order.ID] = order.Clone()
}

// getOrderLocked resolves the order's term against the stored terms, the
// way a foreign key would.
func (m *Memory) getOrderLocked(id schedule.OrderID) (*insurance.SaleOrder, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, insurance.ErrOrderNotFound
	}
	c := o.Clone()
	if c.Term != nil {
		if t, ok := m.terms[c.Term.ID]; ok {
			c.Term = cloneTerm(t)
		}
	}
	return c, nil
}

func (m *Memory) listOrdersLocked() []*insurance.SaleOrder {
	result := make([]*insurance.SaleOrder, 0, len(m.orders))
	for id := range m.orders {
		o, _ := m.getOrderLocked(id)
		result = append(result, o)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

func (m *Memory) queryAuditLocked(filter insurance.AuditFilter) []insurance.AuditEntry {
	var result []insurance.AuditEntry
	for _, e := range m.audit {
		if filter.Matches(e) {
			result = append(result, e)
		}
	}
	return result
}

func cloneTerm(t *schedule.PaymentTerm) *schedule.PaymentTerm {
	c := *t
	c.Lines = append([]schedule.TermLine(nil), t.Lines...)
	return &c
}

// termLess orders numeric ids numerically, then everything else by string.
func termLess(a, b schedule.TermID) bool {
	if len(a) != len(b) && isDigits(string(a)) && isDigits(string(b)) {
		return len(a) < len(b)
	}
	return a < b
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// TxMemory wraps Memory with transaction support.
type TxMemory struct {
	*Memory
}

func NewTxMemory() *TxMemory {
	return &TxMemory{Memory: NewMemory()}
}

// WithTx executes fn within a transaction, simulated with a snapshot and a
// restore on error.
func (tm *TxMemory) WithTx(ctx context.Context, fn func(insurance.Store) error) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	snapshot := tm.snapshot()

	if err := fn(&txMemoryView{parent: tm}); err != nil {
		tm.restore(snapshot)
		return err
	}
	return nil
}

type memorySnapshot struct {
	terms  map[schedule.TermID]*schedule.PaymentTerm
	orders map[schedule.OrderID]*insurance.SaleOrder
	audit  []insurance.AuditEntry
}

func (tm *TxMemory) snapshot() memorySnapshot {
	terms := make(map[schedule.TermID]*schedule.PaymentTerm, len(tm.terms))
	for k, v := range tm.terms {
		terms[k] = v
	}
	orders := make(map[schedule.OrderID]*insurance.SaleOrder, len(tm.orders))
	for k, v := range tm.orders {
		orders[k] = v
	}
	return memorySnapshot{
		terms:  terms,
		orders: orders,
		audit:  append([]insurance.AuditEntry(nil), tm.audit...),
	}
}

func (tm *TxMemory) restore(s memorySnapshot) {
	tm.terms = s.terms
	tm.orders = s.orders
	tm.audit = s.audit
}

// txMemoryView runs under the parent's write lock.
type txMemoryView struct {
	parent *TxMemory
}

func (tv *txMemoryView) SaveTerm(_ context.Context, term *schedule.PaymentTerm) error {
	tv.parent.saveTermLocked(term)
	return nil
}

func (tv *txMemoryView) GetTerm(_ context.Context, id schedule.TermID) (*schedule.PaymentTerm, error) {
	return tv.parent.getTermLocked(id)
}

func (tv *txMemoryView) ListTerms(_ context.Context) ([]*schedule.PaymentTerm, error) {
	return tv.parent.listTermsLocked(), nil
}

func (tv *txMemoryView) SaveOrder(_ context.Context, order *insurance.SaleOrder) error {
	tv.parent.saveOrderLocked(order)
	return nil
}

func (tv *txMemoryView) GetOrder(_ context.Context, id schedule.OrderID) (*insurance.SaleOrder, error) {
	return tv.parent.getOrderLocked(id)
}

func (tv *txMemoryView) ListOrders(_ context.Context) ([]*insurance.SaleOrder, error) {
	return tv.parent.listOrdersLocked(), nil
}

func (tv *txMemoryView) AppendAudit(_ context.Context, entry insurance.AuditEntry) error {
	tv.parent.audit = append(tv.parent.audit, entry)
	return nil
}

func (tv *txMemoryView) QueryAudit(_ context.Context, filter insurance.AuditFilter) ([]insurance.AuditEntry, error) {
	return tv.parent.queryAuditLocked(filter), nil
}

var (
	_ insurance.TxStore = (*TxMemory)(nil)
	_ insurance.Store   = (*txMemoryView)(nil)
)
