package insurance

import (
	"github.com/shopspring/decimal"
	"github.com/warp/insurance-engine/schedule"
)

// =============================================================================
// FINANCIAL ADJUSTMENT - Invoice line for schedule interest or discount
// =============================================================================
//
// The order total is the price of the products. The schedule total adds the
// interest and removes the discounts of the chosen plan. When the two differ
// by more than Tolerance the invoice gets one extra line for the difference:
//
//	diff = schedule total - order total
//	diff > 0  "Financial interest",  price  diff
//	diff < 0  "Financial discount",  price  diff (negative)

const (
	FinancialInterest = "Financial interest"
	FinancialDiscount = "Financial discount"
)

type AdjustmentLine struct {
	Product   string
	Label     string
	Quantity  int
	PriceUnit decimal.Decimal
}

// FinancialAdjustment returns the adjustment line for the order, or nil when
// none is needed. Orders without installments are never adjusted.
func FinancialAdjustment(o *SaleOrder) *AdjustmentLine {
	if len(o.Installments) == 0 {
		return nil
	}
	diff := o.ScheduleTotal().Sub(o.Total)
	if diff.Abs().LessThanOrEqual(schedule.Tolerance) {
		return nil
	}

	product := FinancialInterest
	if diff.IsNegative() {
		product = FinancialDiscount
	}
	return &AdjustmentLine{
		Product:   product,
		Label:     "Financial adjustment: " + product,
		Quantity:  1,
		PriceUnit: diff,
	}
}
