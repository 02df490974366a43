/*
Package insurance provides the sale order extended for insurance-policy
contracts.

PURPOSE:
  Wraps the schedule calculator with everything a school-insurance sale
  needs around it: order lifecycle state, the contract fields printed on the
  policy, the customer's digital signature and the portal access token.

KEY CONCEPTS:
  - SaleOrder: schedule.Order plus contract, signature and lifecycle state
  - ContractTerms: coverage limits printed on the contract
  - Service: the only writer; every mutation validates the schedule and
    appends audit entries inside one store transaction

STATE MACHINE:
  draft --SendContract--> sent --Confirm--> sale
    \__________________________/
                 |
               Cancel --> cancel

  Schedule edits (total, term, installments) are only accepted in draft and
  sent. Payments and overdue tracking work in any state but cancel.

SEE ALSO:
  - schedule/: the calculator
  - service.go: operations
  - portal.go: customer-facing operations behind the access token
*/
package insurance

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/insurance-engine/schedule"
)

// =============================================================================
// ORDER STATE
// =============================================================================

type OrderState string

const (
	StateDraft  OrderState = "draft"
	StateSent   OrderState = "sent"
	StateSale   OrderState = "sale"
	StateCancel OrderState = "cancel"
)

// =============================================================================
// CONTRACT - Fields printed on the insurance contract
// =============================================================================

// ContractTerms holds the coverage of a school accident policy. Limits are
// expressed as fractions of the insured amount.
type ContractTerms struct {
	PolicyNumber         string
	SchoolYear           string
	Insurer              string
	InsuredAmount        decimal.Decimal
	EventsLimit          decimal.Decimal
	InItinereLimit       decimal.Decimal
	EventsMaxQuantity    int
	InItinereMaxQuantity int
	Emergencies          bool
	StartDate            schedule.Date
	EndDate              schedule.Date
	AssistanceLimit      decimal.Decimal
	InItinerePluralLimit decimal.Decimal
	ShowPaymentTable     bool

	LegalRepresentativeName string
	LegalRepresentativeDNI  string
}

const DefaultInsurer = "Mercantil Andina Cia. de Seguros"

// DefaultContractTerms returns the coverage a new order starts with.
func DefaultContractTerms() ContractTerms {
	return ContractTerms{
		Insurer:              DefaultInsurer,
		InsuredAmount:        decimal.Zero,
		EventsLimit:          decimal.RequireFromString("0.100"),
		InItinereLimit:       decimal.RequireFromString("0.010"),
		EventsMaxQuantity:    3,
		InItinereMaxQuantity: 10,
		Emergencies:          true,
		AssistanceLimit:      decimal.RequireFromString("0.5"),
		InItinerePluralLimit: decimal.RequireFromString("0.03"),
		ShowPaymentTable:     true,
	}
}

// MissingFields lists the fields required before a contract can be shown
// to the customer.
func (c ContractTerms) MissingFields() []string {
	var missing []string
	if c.LegalRepresentativeDNI == "" {
		missing = append(missing, "legal representative DNI")
	}
	return missing
}

// Signature is the customer's acceptance of the contract, separate from the
// acceptance of the order itself.
type Signature struct {
	Image    []byte
	SignedBy string
	SignedOn time.Time
}

// =============================================================================
// SALE ORDER
// =============================================================================

// SaleOrder is the persisted aggregate. Installments are owned through the
// embedded schedule.Order and always saved wholesale with the order.
type SaleOrder struct {
	schedule.Order

	Name          string
	State         OrderState
	CustomerName  string
	CustomerEmail string
	AccessToken   string

	// SignedOn is set when the order itself is confirmed.
	SignedOn *time.Time

	Contract  ContractTerms
	Signature *Signature

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Modifiable reports whether the schedule may still be changed.
func (o *SaleOrder) Modifiable() bool {
	return o.State == StateDraft || o.State == StateSent
}

// ContractSignDate is the order confirmation date, else the contract
// signature date, else zero.
func (o *SaleOrder) ContractSignDate() schedule.Date {
	if o.SignedOn != nil {
		return schedule.DateOf(*o.SignedOn)
	}
	if o.Signature != nil && !o.Signature.SignedOn.IsZero() {
		return schedule.DateOf(o.Signature.SignedOn)
	}
	return schedule.Date{}
}

// Clone returns a deep copy safe to hand out of a store.
func (o *SaleOrder) Clone() *SaleOrder {
	c := *o
	c.Order = *o.Order.Clone()
	if o.SignedOn != nil {
		t := *o.SignedOn
		c.SignedOn = &t
	}
	if o.Signature != nil {
		s := *o.Signature
		s.Image = append([]byte(nil), o.Signature.Image...)
		c.Signature = &s
	}
	return &c
}
