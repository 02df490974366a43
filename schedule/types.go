/*
Package schedule provides the installment schedule calculator.

PURPOSE:
  Splits an order total into dated installments according to a payment
  term. Each term line allocates a fixed amount, a percentage of the total,
  or the remaining balance, then applies its own interest and discount rate.
  The same pipeline is recomputed at save time to reconcile the persisted
  installments against the amount the customer is expected to pay.

KEY CONCEPTS IN THIS FILE (types.go):
  - Currency: rounding rule shared by every amount on an order
  - PaymentTerm / TermLine: immutable rule set selected on an order
  - Installment: one dated payment, owned by exactly one order
  - Order: total, currency, order date, optional term, installments

DESIGN PRINCIPLES:
  1. Precision: money and rates are decimal.Decimal, never float64
  2. Wholesale replacement: regeneration swaps the installment list
  3. Explicit triggers: callers invoke regeneration at lifecycle points
     (see order.go), nothing recomputes behind their back

USAGE:
  order := schedule.NewOrder("SO-001", schedule.MustDecimal("1200"),
      schedule.DefaultCurrency, schedule.NewDate(2024, time.January, 1), term)
  for _, in := range order.Installments {
      fmt.Println(in.Sequence, in.Amount, in.DueDate)
  }

SEE ALSO:
  - generator.go: allocation + rate pipeline
  - reconcile.go: expected-total reconciliation and save validation
  - derived.go: base/interest/discount projections of an installment
  - summary.go: one-line description of a payment plan
*/
package schedule

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// CURRENCY - Rounding rule for every amount on an order
// =============================================================================

// Rounding rounds a monetary value the way a currency does.
type Rounding interface {
	Round(v decimal.Decimal) decimal.Decimal
}

// Currency rounds to the nearest multiple of its smallest unit, half away
// from zero.
type Currency struct {
	Code     string
	Rounding decimal.Decimal
}

// DefaultCurrency is the peso with cent rounding.
var DefaultCurrency = Currency{Code: "ARS", Rounding: decimal.New(1, -2)}

func (c Currency) Round(v decimal.Decimal) decimal.Decimal {
	if !c.Rounding.IsPositive() {
		return v
	}
	return v.Div(c.Rounding).Round(0).Mul(c.Rounding)
}

var _ Rounding = Currency{}

// Tolerance is the largest difference between two totals still treated as
// equal.
var Tolerance = decimal.New(1, -2)

var hundred = decimal.NewFromInt(100)

func MustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type OrderID string
type TermID string

// =============================================================================
// PAYMENT TERM - Ordered allocation rules
// =============================================================================

// ValueKind says how a term line computes its share of the total.
type ValueKind string

const (
	ValueFixed   ValueKind = "fixed"   // Value is an absolute amount
	ValuePercent ValueKind = "percent" // Value is a percentage of the total
	ValueBalance ValueKind = "balance" // Whatever remains after earlier lines
)

// DelayType says how a term line's due date is derived from the base date.
type DelayType string

const (
	DaysAfter               DelayType = "days_after"
	DaysAfterEndOfMonth     DelayType = "days_after_end_of_month"
	DaysAfterEndOfNextMonth DelayType = "days_after_end_of_next_month"
)

// TermLine is one allocation rule of a payment term.
type TermLine struct {
	Sequence     int
	Kind         ValueKind
	Value        decimal.Decimal
	InterestRate decimal.Decimal // percent
	DiscountRate decimal.Decimal // percent
	DelayType    DelayType
	Days         int

	// DueDate overrides the delay computation when set.
	DueDate *Date
}

// PaymentTerm is a named, ordered set of term lines.
type PaymentTerm struct {
	ID    TermID
	Name  string
	Lines []TermLine
}

func (t *PaymentTerm) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return string(t.ID)
}

// =============================================================================
// INSTALLMENT - One dated payment of an order
// =============================================================================

type InstallmentStatus string

const (
	StatusPending InstallmentStatus = "pending"
	StatusPaid    InstallmentStatus = "paid"
	StatusOverdue InstallmentStatus = "overdue"
)

// Installment is a value object owned by a single Order.
type Installment struct {
	Sequence      int
	Amount        decimal.Decimal
	DueDate       Date
	InterestRate  decimal.Decimal
	DiscountRate  decimal.Decimal
	Status        InstallmentStatus
	AutoGenerated bool
	Notes         string
}

// =============================================================================
// ORDER - Owner of the installment list
// =============================================================================

// Order carries everything the calculator needs from the host sale order.
//
// INVARIANT (checked by Validate at save time):
//
//	Term != nil && len(Installments) > 0  =>  |sum(amount) - expected| <= 0.01
type Order struct {
	ID           OrderID
	Total        decimal.Decimal
	Currency     Currency
	OrderDate    Date
	Term         *PaymentTerm
	Installments []Installment
}

// ScheduleTotal is the sum of the installment amounts.
func (o *Order) ScheduleTotal() decimal.Decimal {
	total := decimal.Zero
	for _, in := range o.Installments {
		total = total.Add(in.Amount)
	}
	return total
}

// Clone returns a deep copy. Terms are shared reference data but are copied
// too so callers may not mutate a stored term through an order.
func (o *Order) Clone() *Order {
	c := *o
	if o.Term != nil {
		t := *o.Term
		t.Lines = append([]TermLine(nil), o.Term.Lines...)
		c.Term = &t
	}
	c.Installments = append([]Installment(nil), o.Installments...)
	return &c
}
