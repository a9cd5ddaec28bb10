package service

import (
	"fmt"
	"io"

	"sheetpos/internal/ledger"

	"github.com/xuri/excelize/v2"
)

const cashflowSheet = "Cashflow"

var cashflowHeadings = []string{"Date", "Reference", "Description", "Category", "Type", "Amount", "Running Balance"}

// writeCashflowWorkbook renders the ledger as a single-sheet xlsx workbook
// followed by a totals block.
func writeCashflowWorkbook(cf ledger.Cashflow, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", cashflowSheet); err != nil {
		return fmt.Errorf("export: rename sheet: %w", err)
	}

	for i, h := range cashflowHeadings {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("export: header: %w", err)
		}
		if err := f.SetCellValue(cashflowSheet, cell, h); err != nil {
			return fmt.Errorf("export: header: %w", err)
		}
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("export: header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(cashflowHeadings), 1)
	if err != nil {
		return fmt.Errorf("export: header style: %w", err)
	}
	if err := f.SetCellStyle(cashflowSheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("export: header style: %w", err)
	}

	row := 2
	for _, e := range cf.Entries {
		values := []any{
			e.Date, e.Reference, e.Description, e.Category, string(e.Type),
			e.Amount.InexactFloat64(), e.RunningBalance.InexactFloat64(),
		}
		if err := f.SetSheetRow(cashflowSheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return fmt.Errorf("export: row %d: %w", row, err)
		}
		row++
	}

	row++
	totals := [][]any{
		{"Total income", cf.TotalIncome.InexactFloat64()},
		{"Total expense", cf.TotalExpense.InexactFloat64()},
		{"Net", cf.Net.InexactFloat64()},
	}
	for _, t := range totals {
		if err := f.SetSheetRow(cashflowSheet, fmt.Sprintf("E%d", row), &t); err != nil {
			return fmt.Errorf("export: totals: %w", err)
		}
		row++
	}

	widths := []struct {
		from, to string
		width    float64
	}{{"A", "B", 14}, {"C", "C", 36}, {"D", "G", 18}}
	for _, cw := range widths {
		if err := f.SetColWidth(cashflowSheet, cw.from, cw.to, cw.width); err != nil {
			return fmt.Errorf("export: column width %s:%s: %w", cw.from, cw.to, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}
