/*
Package sqlite provides a SQLite-backed implementation of insurance.TxStore.

PURPOSE:
  Persists payment terms, sale orders with their installments, and the
  audit log. The same schema ports to PostgreSQL with minor dialect changes.

KEY TABLES:
  payment_terms: term definitions, stored as the factory JSON (config_json)
  sale_orders:   order header, contract fields (contract_json), signature
  installments:  one row per installment, owned by an order (cascade)
  audit_log:     append-only record of order changes

WHOLESALE REPLACEMENT:
  SaveOrder upserts the order row, then deletes and re-inserts all of its
  installments. Inside WithTx a reader never sees a half-written schedule.

MONEY:
  Amounts and rates are stored as decimal TEXT, never REAL, so values read
  back exactly as written.

CONCURRENCY:
  One connection (required for ":memory:") guarded by a sync.RWMutex.
  WithTx takes the write lock for the whole transaction; the Store handed to
  fn runs its queries on the *sql.Tx without touching the lock.

USAGE:
  store, err := sqlite.New("./data/insurance.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := insurance.NewService(store, tokens, logger)

SEE ALSO:
  - insurance/store.go: interface definitions
  - insurance/store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/insurance-engine/factory"
	"github.com/warp/insurance-engine/insurance"
	"github.com/warp/insurance-engine/schedule"
)

// Store implements insurance.TxStore using SQLite.
type Store struct {
	db    *sql.DB
	mu    sync.RWMutex
	terms *factory.TermFactory
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db, terms: factory.NewTermFactory()}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS payment_terms (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		config_json TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sale_orders (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		state TEXT NOT NULL,
		customer_name TEXT,
		customer_email TEXT,
		access_token TEXT,
		total TEXT NOT NULL,
		currency_code TEXT NOT NULL,
		currency_rounding TEXT NOT NULL,
		order_date TEXT,
		term_id TEXT REFERENCES payment_terms(id),
		signed_on TEXT,
		contract_json TEXT NOT NULL,
		signature BLOB,
		signed_by TEXT,
		contract_signed_on TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sale_orders_created ON sale_orders(created_at, id);

	CREATE TABLE IF NOT EXISTS installments (
		order_id TEXT NOT NULL REFERENCES sale_orders(id) ON DELETE CASCADE,
		sequence INTEGER NOT NULL,
		amount TEXT NOT NULL,
		due_date TEXT,
		interest_rate TEXT NOT NULL,
		discount_rate TEXT NOT NULL,
		status TEXT NOT NULL,
		auto_generated INTEGER NOT NULL DEFAULT 0,
		notes TEXT,
		PRIMARY KEY (order_id, sequence)
	);

	CREATE INDEX IF NOT EXISTS idx_installments_status_due ON installments(status, due_date);

	CREATE TABLE IF NOT EXISTS audit_log (
		id TEXT PRIMARY KEY,
		ts TEXT NOT NULL,
		actor_id TEXT,
		action TEXT NOT NULL,
		order_id TEXT NOT NULL,
		payload_json TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_audit_order_ts ON audit_log(order_id, ts);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PAYMENT TERMS
// =============================================================================

func (s *Store) SaveTerm(ctx context.Context, term *schedule.PaymentTerm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveTerm(ctx, s.db, term)
}

func (s *Store) GetTerm(ctx context.Context, id schedule.TermID) (*schedule.PaymentTerm, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getTerm(ctx, s.db, id)
}

func (s *Store) ListTerms(ctx context.Context) ([]*schedule.PaymentTerm, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listTerms(ctx, s.db)
}

func (s *Store) saveTerm(ctx context.Context, q querier, term *schedule.PaymentTerm) error {
	config, err := s.terms.Marshal(term)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO payment_terms (id, name, config_json, version, created_at, updated_at)
		VALUES (?, ?, ?, 1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			config_json = excluded.config_json,
			version = payment_terms.version + 1,
			updated_at = excluded.updated_at
	`
	now := formatTime(time.Now())
	if _, err := q.ExecContext(ctx, query, string(term.ID), term.Name, config, now, now); err != nil {
		return fmt.Errorf("failed to save payment term: %w", err)
	}
	return nil
}

func (s *Store) getTerm(ctx context.Context, q querier, id schedule.TermID) (*schedule.PaymentTerm, error) {
	var config string
	err := q.QueryRowContext(ctx, "SELECT config_json FROM payment_terms WHERE id = ?", string(id)).Scan(&config)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, insurance.ErrTermNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load payment term: %w", err)
	}
	return s.terms.ParseTerm(config)
}

func (s *Store) listTerms(ctx context.Context, q querier) ([]*schedule.PaymentTerm, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT config_json FROM payment_terms ORDER BY length(id), id")
	if err != nil {
		return nil, fmt.Errorf("failed to list payment terms: %w", err)
	}
	defer rows.Close()

	var configs []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		configs = append(configs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	terms := make([]*schedule.PaymentTerm, 0, len(configs))
	for _, c := range configs {
		t, err := s.terms.ParseTerm(c)
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, nil
}

// =============================================================================
// SALE ORDERS
// =============================================================================

func (s *Store) SaveOrder(ctx context.Context, order *insurance.SaleOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.saveOrder(ctx, tx, order); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) GetOrder(ctx context.Context, id schedule.OrderID) (*insurance.SaleOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getOrder(ctx, s.db, id)
}

func (s *Store) ListOrders(ctx context.Context) ([]*insurance.SaleOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listOrders(ctx, s.db)
}

func (s *Store) saveOrder(ctx context.Context, q querier, o *insurance.SaleOrder) error {
	contractJSON, err := json.Marshal(toContractRecord(o.Contract))
	if err != nil {
		return fmt.Errorf("failed to serialize contract: %w", err)
	}

	var termID sql.NullString
	if o.Term != nil {
		termID = nullString(string(o.Term.ID))
	}
	var signedOn sql.NullString
	if o.SignedOn != nil {
		signedOn = nullString(formatTime(*o.SignedOn))
	}
	var signature []byte
	var signedBy, contractSignedOn sql.NullString
	if o.Signature != nil {
		signature = o.Signature.Image
		signedBy = nullString(o.Signature.SignedBy)
		contractSignedOn = nullString(formatTime(o.Signature.SignedOn))
	}

	query := `
		INSERT INTO sale_orders
		(id, name, state, customer_name, customer_email, access_token, total,
		 currency_code, currency_rounding, order_date, term_id, signed_on,
		 contract_json, signature, signed_by, contract_signed_on, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			state = excluded.state,
			customer_name = excluded.customer_name,
			customer_email = excluded.customer_email,
			access_token = excluded.access_token,
			total = excluded.total,
			currency_code = excluded.currency_code,
			currency_rounding = excluded.currency_rounding,
			order_date = excluded.order_date,
			term_id = excluded.term_id,
			signed_on = excluded.signed_on,
			contract_json = excluded.contract_json,
			signature = excluded.signature,
			signed_by = excluded.signed_by,
			contract_signed_on = excluded.contract_signed_on,
			updated_at = excluded.updated_at
	`
	_, err = q.ExecContext(ctx, query,
		string(o.ID), o.Name, string(o.State), o.CustomerName, o.CustomerEmail, o.AccessToken,
		o.Total.String(), o.Currency.Code, o.Currency.Rounding.String(),
		nullString(o.OrderDate.String()), termID, signedOn,
		string(contractJSON), signature, signedBy, contractSignedOn,
		formatTime(o.CreatedAt), formatTime(o.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}

	if _, err := q.ExecContext(ctx, "DELETE FROM installments WHERE order_id = ?", string(o.ID)); err != nil {
		return fmt.Errorf("failed to clear installments: %w", err)
	}
	for _, in := range o.Installments {
		_, err := q.ExecContext(ctx, `
			INSERT INTO installments
			(order_id, sequence, amount, due_date, interest_rate, discount_rate, status, auto_generated, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			string(o.ID), in.Sequence, in.Amount.String(), nullString(in.DueDate.String()),
			in.InterestRate.String(), in.DiscountRate.String(), string(in.Status), in.AutoGenerated, in.Notes,
		)
		if err != nil {
			return fmt.Errorf("failed to save installment #%d: %w", in.Sequence, err)
		}
	}
	return nil
}

func (s *Store) getOrder(ctx context.Context, q querier, id schedule.OrderID) (*insurance.SaleOrder, error) {
	var (
		o                                        insurance.SaleOrder
		state, total, currencyCode, rounding     string
		customerName, customerEmail, accessToken sql.NullString
		orderDate, termID, signedOn              sql.NullString
		contractJSON                             string
		signature                                []byte
		signedBy, contractSignedOn               sql.NullString
		createdAt, updatedAt                     string
	)
	err := q.QueryRowContext(ctx, `
		SELECT id, name, state, customer_name, customer_email, access_token, total,
		       currency_code, currency_rounding, order_date, term_id, signed_on,
		       contract_json, signature, signed_by, contract_signed_on, created_at, updated_at
		FROM sale_orders WHERE id = ?`, string(id),
	).Scan(&o.ID, &o.Name, &state, &customerName, &customerEmail, &accessToken, &total,
		&currencyCode, &rounding, &orderDate, &termID, &signedOn,
		&contractJSON, &signature, &signedBy, &contractSignedOn, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, insurance.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	o.State = insurance.OrderState(state)
	o.CustomerName = customerName.String
	o.CustomerEmail = customerEmail.String
	o.AccessToken = accessToken.String
	o.Total = parseDecimal(total)
	o.Currency = schedule.Currency{Code: currencyCode, Rounding: parseDecimal(rounding)}
	o.OrderDate = parseDate(orderDate)
	o.CreatedAt = parseTime(createdAt)
	o.UpdatedAt = parseTime(updatedAt)
	if signedOn.Valid {
		t := parseTime(signedOn.String)
		o.SignedOn = &t
	}
	if len(signature) > 0 || signedBy.Valid {
		o.Signature = &insurance.Signature{
			Image:    signature,
			SignedBy: signedBy.String,
			SignedOn: parseTime(contractSignedOn.String),
		}
	}

	var cr contractRecord
	if err := json.Unmarshal([]byte(contractJSON), &cr); err != nil {
		return nil, fmt.Errorf("failed to parse contract: %w", err)
	}
	o.Contract = cr.toContractTerms()

	if termID.Valid {
		term, err := s.getTerm(ctx, q, schedule.TermID(termID.String))
		if err != nil {
			return nil, err
		}
		o.Term = term
	}

	o.Installments, err = s.loadInstallments(ctx, q, o.ID)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Store) loadInstallments(ctx context.Context, q querier, id schedule.OrderID) ([]schedule.Installment, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT sequence, amount, due_date, interest_rate, discount_rate, status, auto_generated, notes
		FROM installments WHERE order_id = ? ORDER BY sequence`, string(id))
	if err != nil {
		return nil, fmt.Errorf("failed to load installments: %w", err)
	}
	defer rows.Close()

	result := []schedule.Installment{}
	for rows.Next() {
		var (
			in                                 schedule.Installment
			amount, interest, discount, status string
			dueDate, notes                     sql.NullString
		)
		if err := rows.Scan(&in.Sequence, &amount, &dueDate, &interest, &discount, &status, &in.AutoGenerated, &notes); err != nil {
			return nil, err
		}
		in.Amount = parseDecimal(amount)
		in.DueDate = parseDate(dueDate)
		in.InterestRate = parseDecimal(interest)
		in.DiscountRate = parseDecimal(discount)
		in.Status = schedule.InstallmentStatus(status)
		in.Notes = notes.String
		result = append(result, in)
	}
	return result, rows.Err()
}

// listOrders collects ids first; the single connection cannot serve nested
// queries while rows are open.
func (s *Store) listOrders(ctx context.Context, q querier) ([]*insurance.SaleOrder, error) {
	rows, err := q.QueryContext(ctx, "SELECT id FROM sale_orders ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	var ids []schedule.OrderID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, schedule.OrderID(id))
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	orders := make([]*insurance.SaleOrder, 0, len(ids))
	for _, id := range ids {
		o, err := s.getOrder(ctx, q, id)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// =============================================================================
// AUDIT LOG
// =============================================================================

func (s *Store) AppendAudit(ctx context.Context, entry insurance.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendAudit(ctx, s.db, entry)
}

func (s *Store) QueryAudit(ctx context.Context, filter insurance.AuditFilter) ([]insurance.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryAudit(ctx, s.db, filter)
}

func (s *Store) appendAudit(ctx context.Context, q querier, e insurance.AuditEntry) error {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Errorf("failed to serialize audit payload: %w", err)
	}
	_, err = q.ExecContext(ctx,
		"INSERT INTO audit_log (id, ts, actor_id, action, order_id, payload_json) VALUES (?, ?, ?, ?, ?, ?)",
		e.ID, formatTime(e.Timestamp), e.ActorID, string(e.Action), string(e.OrderID), string(payload),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("duplicate audit entry %s: %w", e.ID, err)
		}
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

func (s *Store) queryAudit(ctx context.Context, q querier, f insurance.AuditFilter) ([]insurance.AuditEntry, error) {
	var (
		where []string
		args  []any
	)
	if f.OrderID != nil {
		where = append(where, "order_id = ?")
		args = append(args, string(*f.OrderID))
	}
	if f.From != nil {
		where = append(where, "ts >= ?")
		args = append(args, formatTime(*f.From))
	}
	if f.To != nil {
		where = append(where, "ts <= ?")
		args = append(args, formatTime(*f.To))
	}
	if len(f.Actions) > 0 {
		marks := make([]string, len(f.Actions))
		for i, a := range f.Actions {
			marks[i] = "?"
			args = append(args, string(a))
		}
		where = append(where, "action IN ("+strings.Join(marks, ", ")+")")
	}

	query := "SELECT id, ts, actor_id, action, order_id, payload_json FROM audit_log"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY ts, rowid"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var result []insurance.AuditEntry
	for rows.Next() {
		var (
			e                   insurance.AuditEntry
			ts, action, orderID string
			actor, payload      sql.NullString
		)
		if err := rows.Scan(&e.ID, &ts, &actor, &action, &orderID, &payload); err != nil {
			return nil, err
		}
		e.Timestamp = parseTime(ts)
		e.ActorID = actor.String
		e.Action = insurance.AuditAction(action)
		e.OrderID = schedule.OrderID(orderID)
		if payload.Valid && payload.String != "" {
			_ = json.Unmarshal([]byte(payload.String), &e.Payload)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// =============================================================================
// TRANSACTIONAL STORE (insurance.TxStore interface)
// =============================================================================

// WithTx executes a function within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store insurance.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx, parent: s}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

type txStore struct {
	tx     *sql.Tx
	parent *Store
}

func (ts *txStore) SaveTerm(ctx context.Context, term *schedule.PaymentTerm) error {
	return ts.parent.saveTerm(ctx, ts.tx, term)
}

func (ts *txStore) GetTerm(ctx context.Context, id schedule.TermID) (*schedule.PaymentTerm, error) {
	return ts.parent.getTerm(ctx, ts.tx, id)
}

func (ts *txStore) ListTerms(ctx context.Context) ([]*schedule.PaymentTerm, error) {
	return ts.parent.listTerms(ctx, ts.tx)
}

func (ts *txStore) SaveOrder(ctx context.Context, order *insurance.SaleOrder) error {
	return ts.parent.saveOrder(ctx, ts.tx, order)
}

func (ts *txStore) GetOrder(ctx context.Context, id schedule.OrderID) (*insurance.SaleOrder, error) {
	return ts.parent.getOrder(ctx, ts.tx, id)
}

func (ts *txStore) ListOrders(ctx context.Context) ([]*insurance.SaleOrder, error) {
	return ts.parent.listOrders(ctx, ts.tx)
}

func (ts *txStore) AppendAudit(ctx context.Context, entry insurance.AuditEntry) error {
	return ts.parent.appendAudit(ctx, ts.tx, entry)
}

func (ts *txStore) QueryAudit(ctx context.Context, filter insurance.AuditFilter) ([]insurance.AuditEntry, error) {
	return ts.parent.queryAudit(ctx, ts.tx, filter)
}

var (
	_ insurance.TxStore = (*Store)(nil)
	_ insurance.Store   = (*txStore)(nil)
)

// =============================================================================
// CONTRACT RECORD - contract_json column
// =============================================================================

type contractRecord struct {
	PolicyNumber            string          `json:"policy_number"`
	SchoolYear              string          `json:"school_year"`
	Insurer                 string          `json:"insurer"`
	InsuredAmount           decimal.Decimal `json:"insured_amount"`
	EventsLimit             decimal.Decimal `json:"events_limit"`
	InItinereLimit          decimal.Decimal `json:"in_itinere_limit"`
	EventsMaxQuantity       int             `json:"events_max_quantity"`
	InItinereMaxQuantity    int             `json:"in_itinere_max_quantity"`
	Emergencies             bool            `json:"emergencies"`
	StartDate               string          `json:"contract_start_date,omitempty"`
	EndDate                 string          `json:"contract_end_date,omitempty"`
	AssistanceLimit         decimal.Decimal `json:"assistance_limit"`
	InItinerePluralLimit    decimal.Decimal `json:"in_itinere_plural_limit"`
	ShowPaymentTable        bool            `json:"show_payment_table"`
	LegalRepresentativeName string          `json:"legal_representative_name,omitempty"`
	LegalRepresentativeDNI  string          `json:"legal_representative_dni,omitempty"`
}

func toContractRecord(c insurance.ContractTerms) contractRecord {
	return contractRecord{
		PolicyNumber:            c.PolicyNumber,
		SchoolYear:              c.SchoolYear,
		Insurer:                 c.Insurer,
		InsuredAmount:           c.InsuredAmount,
		EventsLimit:             c.EventsLimit,
		InItinereLimit:          c.InItinereLimit,
		EventsMaxQuantity:       c.EventsMaxQuantity,
		InItinereMaxQuantity:    c.InItinereMaxQuantity,
		Emergencies:             c.Emergencies,
		StartDate:               c.StartDate.String(),
		EndDate:                 c.EndDate.String(),
		AssistanceLimit:         c.AssistanceLimit,
		InItinerePluralLimit:    c.InItinerePluralLimit,
		ShowPaymentTable:        c.ShowPaymentTable,
		LegalRepresentativeName: c.LegalRepresentativeName,
		LegalRepresentativeDNI:  c.LegalRepresentativeDNI,
	}
}

func (r contractRecord) toContractTerms() insurance.ContractTerms {
	return insurance.ContractTerms{
		PolicyNumber:            r.PolicyNumber,
		SchoolYear:              r.SchoolYear,
		Insurer:                 r.Insurer,
		InsuredAmount:           r.InsuredAmount,
		EventsLimit:             r.EventsLimit,
		InItinereLimit:          r.InItinereLimit,
		EventsMaxQuantity:       r.EventsMaxQuantity,
		InItinereMaxQuantity:    r.InItinereMaxQuantity,
		Emergencies:             r.Emergencies,
		StartDate:               parseDate(nullString(r.StartDate)),
		EndDate:                 parseDate(nullString(r.EndDate)),
		AssistanceLimit:         r.AssistanceLimit,
		InItinerePluralLimit:    r.InItinerePluralLimit,
		ShowPaymentTable:        r.ShowPaymentTable,
		LegalRepresentativeName: r.LegalRepresentativeName,
		LegalRepresentativeDNI:  r.LegalRepresentativeDNI,
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func parseDate(s sql.NullString) schedule.Date {
	if !s.Valid {
		return schedule.Date{}
	}
	d, _ := schedule.ParseDate(s.String)
	return d
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}
