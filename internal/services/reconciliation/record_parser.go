package reconciliation

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kevin07696/settlement-reconciler/internal/domain"
)

// CoercedCell records a numeric cell that could not be parsed and was read as zero.
type CoercedCell struct {
	Row    int
	Column string
	Value  string
}

// ParsedReport is the decoded settlement report
type ParsedReport struct {
	Headers []string
	Records []domain.SettlementRecord
	// Coerced lists every gross/fee cell that defaulted to zero
	Coerced []CoercedCell
}

// maxLineSize bounds a single report line
const maxLineSize = 1 << 20

// ParseRecords decodes a comma-delimited settlement report.
//
// The first non-blank line names the fields; every later non-blank line is one
// record. Lines are decoded independently, so a malformed line never absorbs
// its neighbours: a line the CSV reader rejects, such as one with an
// unterminated quote, is split on commas instead. Cells are trimmed and
// stripped of surrounding quotes, and short rows get empty strings for their
// missing trailing fields. Unparsable gross or fee cells read as zero and are
// listed in ParsedReport.Coerced rather than failing the parse. Input without a
// header line returns domain.ErrMalformedInput.
func ParseRecords(r io.Reader) (*ParsedReport, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var headers []string
	report := &ParsedReport{Records: []domain.SettlementRecord{}}
	row := 0

	for scanner.Scan() {
		fields := splitLine(scanner.Text())
		if isBlankRow(fields) {
			continue
		}

		if headers == nil {
			headers = make([]string, len(fields))
			for i, h := range fields {
				headers[i] = strings.ToLower(cleanCell(h))
			}
			continue
		}

		row++
		values := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(fields) {
				values[h] = cleanCell(fields[i])
			} else {
				values[h] = ""
			}
		}

		report.Records = append(report.Records, domain.SettlementRecord{
			Row:               row,
			CustomerID:        values[domain.ColumnCustomerID],
			CustomerEmail:     values[domain.ColumnCustomerEmail],
			ReportingCategory: values[domain.ColumnReportingCategory],
			Gross:             report.parseAmount(row, domain.ColumnGross, values[domain.ColumnGross]),
			Fee:               report.parseAmount(row, domain.ColumnFee, values[domain.ColumnFee]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, domain.WrapError(domain.ErrorCodeMalformedInput,
			"failed to read settlement report", err).
			WithDetail("row", row+1)
	}

	if headers == nil {
		return nil, domain.ErrMalformedInput
	}
	report.Headers = headers

	return report, nil
}

// splitLine decodes one line as CSV, falling back to a plain comma split
// when the line is not valid CSV.
func splitLine(line string) []string {
	reader := csv.NewReader(strings.NewReader(line))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	fields, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		fields = strings.Split(line, ",")
		for i, f := range fields {
			fields[i] = strings.Trim(strings.TrimSpace(f), `"`)
		}
	}
	return fields
}

// parseAmount reads a decimal cell. Anything unparsable, including an empty
// cell, is zero; non-empty failures are remembered for reporting.
func (p *ParsedReport) parseAmount(row int, column, value string) decimal.Decimal {
	if value == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		p.Coerced = append(p.Coerced, CoercedCell{Row: row, Column: column, Value: value})
		return decimal.Zero
	}
	return d
}

func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

func isBlankRow(fields []string) bool {
	for _, f := range fields {
		if cleanCell(f) != "" {
			return false
		}
	}
	return true
}

// String renders a coerced cell for log output
func (c CoercedCell) String() string {
	return fmt.Sprintf("row %d %s=%q", c.Row, c.Column, c.Value)
}
