package render

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// PDF renders a one-page summary of the figures and bucket counts
func PDF(rep Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Arial", "B", 14)
	pdf.AddPage()

	pdf.Cell(0, 8, "Settlement Reconciliation")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Report: %s", rep.ReportPath)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Run: %s", rep.RunID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", rep.GeneratedAt.Format(time.RFC3339)))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(80, 7, "Figure", "1", 0, "L", false, 0, "")
	pdf.CellFormat(50, 7, "Amount", "1", 0, "R", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, f := range rep.figureRows() {
		pdf.CellFormat(80, 7, f.Label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 7, f.Value.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(6)
	counts := rep.Result.Totals.Counts
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(80, 7, "Records", "1", 0, "L", false, 0, "")
	pdf.CellFormat(50, 7, "Count", "1", 0, "R", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, c := range []struct {
		label string
		n     int
	}{
		{"Platform", counts.Unclassified},
		{"Exclusion list", counts.ExclusionList},
		{"No customer", counts.NoCustomer},
		{"Suppressed", counts.Suppressed},
	} {
		pdf.CellFormat(80, 7, c.label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 7, fmt.Sprintf("%d", c.n), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	if n := len(rep.Result.Coerced); n > 0 {
		pdf.Ln(4)
		pdf.Cell(0, 6, fmt.Sprintf("%d unparsable amount(s) were read as zero.", n))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
