/*
Package report exports sale order schedules as spreadsheets.

LAYOUT (sheet "Schedule"):
  rows 1-4  order header: name, customer, total, payment plan summary
  row 6     column titles
  row 7..   one row per installment, by sequence
  last      totals and the reconciliation difference

Amounts are written as numbers rounded to the order currency, so the sheet
can be summed directly. Derived columns (base, interest, discount) are
computed from each installment's amount and rates.
*/
package report

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/warp/insurance-engine/insurance"
	"github.com/warp/insurance-engine/schedule"
	"github.com/xuri/excelize/v2"
)

const (
	SheetName = "Schedule"

	// HeaderRow is the row of column titles; installments follow it.
	HeaderRow = 6
)

var columns = []string{
	"#", "Due date", "Base", "Interest %", "Interest", "Discount %", "Discount", "Amount", "Status", "Notes",
}

// WriteSchedule renders o as an xlsx workbook to w.
func WriteSchedule(w io.Writer, o *insurance.SaleOrder) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	header := [][2]any{
		{"Order", o.Name},
		{"Customer", o.CustomerName},
		{"Total", o.Total.InexactFloat64()},
		{"Payment plan", schedule.Summary(&o.Order)},
	}
	for i, kv := range header {
		row := i + 1
		if err := setRow(f, row, kv[0], kv[1]); err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetName, cell(1, row), cell(1, row), bold); err != nil {
			return err
		}
	}

	titles := make([]any, len(columns))
	for i, c := range columns {
		titles[i] = c
	}
	if err := setRow(f, HeaderRow, titles...); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, cell(1, HeaderRow), cell(len(columns), HeaderRow), bold); err != nil {
		return err
	}

	round := o.Currency.Round
	row := HeaderRow
	for _, in := range o.Installments {
		row++
		err := setRow(f, row,
			in.Sequence,
			in.DueDate.String(),
			money(round(in.BaseAmount())),
			money(in.InterestRate),
			money(round(in.InterestAmount())),
			money(in.DiscountRate),
			money(round(in.DiscountAmount())),
			money(in.Amount),
			string(in.Status),
			in.Notes,
		)
		if err != nil {
			return err
		}
	}

	rec := schedule.Reconcile(&o.Order)
	row += 2
	if err := setRow(f, row, "Schedule total", nil, nil, nil, nil, nil, nil, money(rec.Actual)); err != nil {
		return err
	}
	if err := setRow(f, row+1, "Difference", nil, nil, nil, nil, nil, nil, money(rec.Diff)); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, cell(1, row), cell(len(columns), row+1), bold); err != nil {
		return err
	}

	if err := f.SetColWidth(SheetName, "A", "A", 16); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "B", "I", 13); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "J", "J", 30); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values ...any) error {
	for i, v := range values {
		if v == nil {
			continue
		}
		if err := f.SetCellValue(SheetName, cell(i+1, row), v); err != nil {
			return err
		}
	}
	return nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
