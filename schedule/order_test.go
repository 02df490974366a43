package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/insurance-engine/schedule"
)

// =============================================================================
// TRIGGER POLICY TESTS
// =============================================================================

func TestOrder_SelectTermThenEditDetaches(t *testing.T) {
	// GIVEN: An order with a selected term
	// WHEN: Manually editing an installment amount
	// THEN: The term is cleared and the edit is kept

	order := schedule.NewOrder("SO-1", dec("1200"), schedule.DefaultCurrency, jan1(), halfNowHalfLater())
	amount := dec("700")

	detached, err := order.EditInstallment(1, schedule.InstallmentEdit{Amount: &amount})

	require.NoError(t, err)
	assert.True(t, detached)
	assert.Nil(t, order.Term)
	assertAmount(t, "700", order.Installments[0].Amount)
	assert.False(t, order.Installments[0].AutoGenerated)
}

func TestOrder_NotesEditKeepsTerm(t *testing.T) {
	order := schedule.NewOrder("SO-1", dec("1200"), schedule.DefaultCurrency, jan1(), halfNowHalfLater())
	notes := "call before charging"

	detached, err := order.EditInstallment(1, schedule.InstallmentEdit{Notes: &notes})

	require.NoError(t, err)
	assert.False(t, detached)
	assert.NotNil(t, order.Term)
	assert.Equal(t, notes, order.Installments[0].Notes)
}

func TestOrder_RateEditRederivesAmountFromBase(t *testing.T) {
	// GIVEN: Installment #2 of 660 at 10% interest (base 600)
	// WHEN: Interest changes to 20%
	// THEN: Amount becomes 720 and the term is detached

	order := schedule.NewOrder("SO-1", dec("1200"), schedule.DefaultCurrency, jan1(), halfNowHalfLater())
	rate := dec("20")

	detached, err := order.EditInstallment(2, schedule.InstallmentEdit{InterestRate: &rate})

	require.NoError(t, err)
	assert.True(t, detached)
	assertAmount(t, "720", order.Installments[1].Amount)
	assertAmount(t, "20", order.Installments[1].InterestRate)
}

func TestOrder_TotalChangeRegeneratesWhenTermSelected(t *testing.T) {
	order := schedule.NewOrder("SO-1", dec("1200"), schedule.DefaultCurrency, jan1(), halfNowHalfLater())

	regenerated := order.SetTotal(dec("2000"))

	assert.True(t, regenerated)
	require.Len(t, order.Installments, 2)
	assertAmount(t, "1000", order.Installments[0].Amount)
	assertAmount(t, "1100", order.Installments[1].Amount)
}

func TestOrder_TotalChangeWithoutTermKeepsManualSchedule(t *testing.T) {
	// GIVEN: A manual schedule without a term
	// WHEN: The total changes
	// THEN: The installments survive untouched

	order := &schedule.Order{ID: "SO-2", Total: dec("300"), Currency: schedule.DefaultCurrency}
	order.ReplaceInstallments([]schedule.Installment{
		{Amount: dec("100"), DueDate: jan1()},
		{Amount: dec("200"), DueDate: jan1().AddDays(30)},
	})

	regenerated := order.SetTotal(dec("900"))

	assert.False(t, regenerated)
	require.Len(t, order.Installments, 2)
	assertAmount(t, "100", order.Installments[0].Amount)
}

func TestOrder_SelectTermReplacesManualSchedule(t *testing.T) {
	order := &schedule.Order{ID: "SO-3", Total: dec("1200"), Currency: schedule.DefaultCurrency, OrderDate: jan1()}
	order.AddInstallment(schedule.Installment{Amount: dec("1200"), DueDate: jan1()})

	order.SelectTerm(halfNowHalfLater())

	require.Len(t, order.Installments, 2)
	assert.True(t, order.Installments[0].AutoGenerated)
}

func TestOrder_AddAndRemoveDetach(t *testing.T) {
	order := schedule.NewOrder("SO-1", dec("1200"), schedule.DefaultCurrency, jan1(), halfNowHalfLater())

	added := order.AddInstallment(schedule.Installment{Amount: dec("10.004"), DueDate: jan1().AddDays(60)})

	assert.Equal(t, 3, added.Sequence)
	assertAmount(t, "10", added.Amount)
	assert.Nil(t, order.Term)

	order.SelectTerm(halfNowHalfLater())
	require.NoError(t, order.RemoveInstallment(1))
	assert.Nil(t, order.Term)
	assert.ErrorIs(t, order.RemoveInstallment(99), schedule.ErrInstallmentNotFound)
}

func TestOrder_StatusChangesDoNotDetach(t *testing.T) {
	// GIVEN: An order with a term
	// WHEN: Paying #1 and sweeping overdue after #2's due date
	// THEN: Statuses change and the term stays attached

	order := schedule.NewOrder("SO-1", dec("1200"), schedule.DefaultCurrency, jan1(), halfNowHalfLater())

	require.NoError(t, order.MarkPaid(1))
	changed := order.MarkOverdue(schedule.NewDate(2024, time.February, 15))

	assert.Equal(t, []int{2}, changed)
	assert.Equal(t, schedule.StatusPaid, order.Installments[0].Status)
	assert.Equal(t, schedule.StatusOverdue, order.Installments[1].Status)
	assert.NotNil(t, order.Term)
	assert.NoError(t, schedule.Validate(order))
}

func TestOrder_CloneIsIndependent(t *testing.T) {
	order := schedule.NewOrder("SO-1", dec("1200"), schedule.DefaultCurrency, jan1(), halfNowHalfLater())

	c := order.Clone()
	c.Installments[0].Amount = dec("1")
	c.Term.Lines[0].Value = dec("1")

	assertAmount(t, "600", order.Installments[0].Amount)
	assertAmount(t, "50", order.Term.Lines[0].Value)
}
