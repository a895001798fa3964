package render

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	recordsSheet = "Records"
)

var recordHeaders = []string{
	"Row", "Customer", "Email", "Category", "Gross", "Fee", "Bucket",
	"Invoice", "Excluded product", "Excluded gross / fee", "Note",
}

// XLSX renders a workbook with a Summary sheet and a per-record Records sheet
func XLSX(rep Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(recordsSheet); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", "Settlement Reconciliation")
	_ = f.SetCellStyle(summarySheet, "A1", "A1", bold)
	_ = f.SetCellValue(summarySheet, "A3", "Report")
	_ = f.SetCellValue(summarySheet, "B3", rep.ReportPath)
	_ = f.SetCellValue(summarySheet, "A4", "Run")
	_ = f.SetCellValue(summarySheet, "B4", rep.RunID)
	_ = f.SetCellValue(summarySheet, "A5", "Generated")
	_ = f.SetCellValue(summarySheet, "B5", rep.GeneratedAt.Format(time.RFC3339))

	row := 7
	for _, fig := range rep.figureRows() {
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), fig.Label)
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), fig.Value.InexactFloat64())
		_ = f.SetCellStyle(summarySheet, fmt.Sprintf("B%d", row), fmt.Sprintf("B%d", row), money)
		row++
	}

	counts := rep.Result.Totals.Counts
	row++
	for _, c := range []struct {
		label string
		n     int
	}{
		{"Platform records", counts.Unclassified},
		{"Exclusion list records", counts.ExclusionList},
		{"No customer records", counts.NoCustomer},
		{"Suppressed records", counts.Suppressed},
		{"Remote invoice lookups", rep.Result.Lookups.Remote},
		{"Failed invoice lookups", rep.Result.Lookups.Failures},
	} {
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), c.label)
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), c.n)
		row++
	}
	_ = f.SetColWidth(summarySheet, "A", "A", 28)
	_ = f.SetColWidth(summarySheet, "B", "B", 18)

	for i, h := range recordHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(recordsSheet, cell, h)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(recordHeaders), 1)
	_ = f.SetCellStyle(recordsSheet, "A1", lastHeader, bold)

	for i, t := range rep.Result.Trace {
		tr := flattenTrace(t)
		r := i + 2
		values := []interface{}{
			tr.Row, tr.CustomerID, tr.Email, tr.Category,
			tr.Gross.InexactFloat64(), tr.Fee.InexactFloat64(),
			tr.Classification, tr.Invoice, tr.ExcludedAmount, tr.Contributed, tr.Note,
		}
		cell, _ := excelize.CoordinatesToCellName(1, r)
		if err := f.SetSheetRow(recordsSheet, cell, &values); err != nil {
			return nil, err
		}
		_ = f.SetCellStyle(recordsSheet, fmt.Sprintf("E%d", r), fmt.Sprintf("F%d", r), money)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
