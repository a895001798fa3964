// Package render formats a reconciliation result for people: a console
// table, an XLSX workbook and a PDF summary.
package render

import (
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kevin07696/settlement-reconciler/internal/domain"
	"github.com/kevin07696/settlement-reconciler/internal/services/reconciliation"
)

// Report is one run's result with the context needed to label it
type Report struct {
	RunID       string
	ReportPath  string
	GeneratedAt time.Time
	Result      *reconciliation.Result
}

type figureRow struct {
	Label string
	Value decimal.Decimal
}

// figureRows lists the headline figures rounded to cents, in display order
func (r Report) figureRows() []figureRow {
	f := r.Result.Figures.Rounded()
	return []figureRow{
		{Label: "Gross before fees", Value: f.GrossBeforeFees},
		{Label: "Net balance change", Value: f.NetBalanceChange},
		{Label: "Platform gross sales", Value: f.PlatformGrossSales},
		{Label: "Platform net disbursed", Value: f.PlatformNetDisbursed},
	}
}

// traceRow is a RecordTrace flattened to display strings
type traceRow struct {
	Row            int
	CustomerID     string
	Email          string
	Category       string
	Gross          decimal.Decimal
	Fee            decimal.Decimal
	Classification string
	Invoice        string
	ExcludedAmount string
	Contributed    string
	Note           string
}

func flattenTrace(t reconciliation.RecordTrace) traceRow {
	row := traceRow{
		Row:            t.Record.Row,
		CustomerID:     dash(t.Record.CustomerID),
		Email:          dash(t.Record.CustomerEmail),
		Category:       t.Record.ReportingCategory,
		Gross:          t.Record.Gross,
		Fee:            t.Record.Fee,
		Classification: t.Classification.Label(),
		Invoice:        invoiceStatus(t),
		ExcludedAmount: "-",
		Contributed:    "-",
	}

	if t.HasExcludedProduct {
		row.ExcludedAmount = t.ExcludedProductAmount.StringFixed(2)
	}
	switch t.Classification {
	case domain.ClassificationNoCustomer, domain.ClassificationExclusionList:
		row.Contributed = t.ContributedGross.StringFixed(2) + " / " + t.ContributedFee.StringFixed(2)
	}

	switch {
	case t.ProrationFailed:
		row.Note = "fee not prorated"
	case t.LookupError != "":
		row.Note = "lookup failed: " + t.LookupError
	}
	return row
}

func invoiceStatus(t reconciliation.RecordTrace) string {
	switch {
	case !t.InvoiceLookedUp:
		return "-"
	case t.LookupError != "":
		return "failed"
	case t.InvoiceFound:
		return "found"
	default:
		return "none"
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// WriteFile writes an export, creating parent directories
func WriteFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
