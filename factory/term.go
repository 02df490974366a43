/*
Package factory provides JSON to Go payment term conversion.

PURPOSE:
  Converts JSON payment term definitions into schedule.PaymentTerm values,
  and back. The same JSON is used by the back-office API, the preset terms
  seeded at startup and the config_json column of the SQLite store, so a
  term has exactly one serialized shape.

JSON SCHEMA:
  {
    "id": "half-half",
    "name": "50% now, 50% in 30 days",
    "lines": [
      {"sequence": 1, "value": "percent", "value_amount": "50"},
      {"sequence": 2, "value": "balance", "interest_rate": "10",
       "delay_type": "days_after", "nb_days": 30},
      {"sequence": 3, "value": "fixed", "value_amount": "100",
       "due_date": "2024-06-30"}
    ]
  }

  Numbers may be given as JSON numbers or strings. Omitted rates are 0,
  an omitted delay_type is days_after.

USAGE:
  f := factory.NewTermFactory()
  term, err := f.ParseTerm(jsonString)

SEE ALSO:
  - schedule/types.go: PaymentTerm, TermLine
  - insurance/presets.go: preset terms written in this schema
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/insurance-engine/schedule"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PaymentTermJSON is the JSON representation of a payment term.
type PaymentTermJSON struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Lines []TermLineJSON `json:"lines"`
}

// TermLineJSON represents one allocation rule.
type TermLineJSON struct {
	Sequence     int             `json:"sequence"`
	Value        string          `json:"value"` // fixed, percent, balance
	ValueAmount  decimal.Decimal `json:"value_amount"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	DiscountRate decimal.Decimal `json:"discount_rate"`
	DelayType    string          `json:"delay_type,omitempty"`
	Days         int             `json:"nb_days,omitempty"`
	DueDate      string          `json:"due_date,omitempty"` // YYYY-MM-DD
}

// =============================================================================
// TERM FACTORY
// =============================================================================

// TermFactory converts JSON payment terms to Go structs.
type TermFactory struct{}

func NewTermFactory() *TermFactory {
	return &TermFactory{}
}

// ParseTerm parses and validates a JSON payment term.
func (f *TermFactory) ParseTerm(jsonStr string) (*schedule.PaymentTerm, error) {
	var tj PaymentTermJSON
	if err := json.Unmarshal([]byte(jsonStr), &tj); err != nil {
		return nil, fmt.Errorf("failed to parse payment term JSON: %w", err)
	}
	return f.FromJSON(tj)
}

// FromJSON converts PaymentTermJSON to a validated schedule.PaymentTerm.
func (f *TermFactory) FromJSON(tj PaymentTermJSON) (*schedule.PaymentTerm, error) {
	if tj.ID == "" {
		return nil, &schedule.TermError{Reason: "id is required"}
	}
	return f.build(tj)
}

// NewTerm converts a term submitted for creation. The id may be empty, in
// which case the service assigns one.
func (f *TermFactory) NewTerm(tj PaymentTermJSON) (*schedule.PaymentTerm, error) {
	return f.build(tj)
}

func (f *TermFactory) build(tj PaymentTermJSON) (*schedule.PaymentTerm, error) {
	term := &schedule.PaymentTerm{
		ID:   schedule.TermID(tj.ID),
		Name: tj.Name,
	}

	for _, lj := range tj.Lines {
		line := schedule.TermLine{
			Sequence:     lj.Sequence,
			Kind:         schedule.ValueKind(lj.Value),
			Value:        lj.ValueAmount,
			InterestRate: lj.InterestRate,
			DiscountRate: lj.DiscountRate,
			DelayType:    parseDelayType(lj.DelayType),
			Days:         lj.Days,
		}
		if lj.DueDate != "" {
			d, err := schedule.ParseDate(lj.DueDate)
			if err != nil {
				return nil, &schedule.TermError{TermID: term.ID, Sequence: lj.Sequence, Reason: "invalid due_date " + lj.DueDate}
			}
			line.DueDate = &d
		}
		term.Lines = append(term.Lines, line)
	}

	if err := term.Validate(); err != nil {
		return nil, err
	}
	return term, nil
}

// ToJSON converts a PaymentTerm to PaymentTermJSON.
func (f *TermFactory) ToJSON(term *schedule.PaymentTerm) PaymentTermJSON {
	tj := PaymentTermJSON{
		ID:    string(term.ID),
		Name:  term.Name,
		Lines: make([]TermLineJSON, 0, len(term.Lines)),
	}
	for _, l := range term.Lines {
		lj := TermLineJSON{
			Sequence:     l.Sequence,
			Value:        string(l.Kind),
			ValueAmount:  l.Value,
			InterestRate: l.InterestRate,
			DiscountRate: l.DiscountRate,
			DelayType:    string(l.DelayType),
			Days:         l.Days,
		}
		if l.DueDate != nil {
			lj.DueDate = l.DueDate.String()
		}
		tj.Lines = append(tj.Lines, lj)
	}
	return tj
}

// Marshal serializes a term in the schema ParseTerm reads.
func (f *TermFactory) Marshal(term *schedule.PaymentTerm) (string, error) {
	b, err := json.Marshal(f.ToJSON(term))
	if err != nil {
		return "", fmt.Errorf("failed to serialize payment term: %w", err)
	}
	return string(b), nil
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseDelayType(s string) schedule.DelayType {
	if s == "" {
		return schedule.DaysAfter
	}
	return schedule.DelayType(s)
}
