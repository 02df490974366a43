package factory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/insurance-engine/factory"
	"github.com/warp/insurance-engine/schedule"
)

const halfHalfJSON = `{
  "id": "half-half",
  "name": "50% now, 50% in 30 days",
  "lines": [
    {"sequence": 1, "value": "percent", "value_amount": 50},
    {"sequence": 2, "value": "balance", "interest_rate": "10", "delay_type": "days_after", "nb_days": 30}
  ]
}`

func TestParseTerm(t *testing.T) {
	// GIVEN: A two-line term with numeric and string amounts
	// WHEN: Parsing
	// THEN: Lines carry kind, amounts, rates and delay

	term, err := factory.NewTermFactory().ParseTerm(halfHalfJSON)

	require.NoError(t, err)
	assert.Equal(t, schedule.TermID("half-half"), term.ID)
	require.Len(t, term.Lines, 2)
	assert.Equal(t, schedule.ValuePercent, term.Lines[0].Kind)
	assert.True(t, term.Lines[0].Value.Equal(schedule.MustDecimal("50")))
	assert.Equal(t, schedule.DaysAfter, term.Lines[0].DelayType, "omitted delay_type defaults to days_after")
	assert.True(t, term.Lines[1].InterestRate.Equal(schedule.MustDecimal("10")))
	assert.Equal(t, 30, term.Lines[1].Days)
}

func TestParseTerm_FixedDueDate(t *testing.T) {
	term, err := factory.NewTermFactory().ParseTerm(`{"id":"x","lines":[
		{"sequence":1,"value":"balance","due_date":"2024-06-30"}]}`)

	require.NoError(t, err)
	require.NotNil(t, term.Lines[0].DueDate)
	assert.Equal(t, "2024-06-30", term.Lines[0].DueDate.String())
}

func TestParseTerm_Rejects(t *testing.T) {
	tests := map[string]string{
		"malformed json":   `{"id":`,
		"missing id":       `{"lines":[{"sequence":1,"value":"balance"}]}`,
		"no lines":         `{"id":"x","lines":[]}`,
		"bad due date":     `{"id":"x","lines":[{"sequence":1,"value":"balance","due_date":"30/06/2024"}]}`,
		"balance not last": `{"id":"x","lines":[{"sequence":1,"value":"balance"},{"sequence":2,"value":"fixed","value_amount":1}]}`,
		"unknown delay":    `{"id":"x","lines":[{"sequence":1,"value":"balance","delay_type":"weekly"}]}`,
	}

	f := factory.NewTermFactory()
	for name, js := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := f.ParseTerm(js)
			assert.Error(t, err)
		})
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	f := factory.NewTermFactory()
	term, err := f.ParseTerm(halfHalfJSON)
	require.NoError(t, err)

	js, err := f.Marshal(term)
	require.NoError(t, err)
	again, err := f.ParseTerm(js)
	require.NoError(t, err)

	assert.Equal(t, term.Name, again.Name)
	require.Len(t, again.Lines, 2)
	assert.True(t, again.Lines[1].InterestRate.Equal(term.Lines[1].InterestRate))
	assert.Equal(t, term.Lines[1].Days, again.Lines[1].Days)
}

func TestNewTerm_AllowsEmptyID(t *testing.T) {
	f := factory.NewTermFactory()
	tj := factory.PaymentTermJSON{
		Name:  "Single payment",
		Lines: []factory.TermLineJSON{{Sequence: 1, Value: "balance"}},
	}

	term, err := f.NewTerm(tj)
	require.NoError(t, err)
	assert.Empty(t, term.ID)
	assert.Equal(t, schedule.DaysAfter, term.Lines[0].DelayType)

	_, err = f.FromJSON(tj)
	assert.ErrorIs(t, err, schedule.ErrInvalidTerm)
}
