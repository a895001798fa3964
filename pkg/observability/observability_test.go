package observability

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSettlementRecord(t *testing.T) {
	before := testutil.ToFloat64(settlementRecordsTotal.WithLabelValues("exclusion_list"))
	RecordSettlementRecord("exclusion_list")
	RecordSettlementRecord("exclusion_list")
	assert.Equal(t, before+2, testutil.ToFloat64(settlementRecordsTotal.WithLabelValues("exclusion_list")))
}

func TestRecordInvoiceLookup(t *testing.T) {
	found := testutil.ToFloat64(invoiceLookupsTotal.WithLabelValues(LookupResultFound))
	cached := testutil.ToFloat64(invoiceLookupsTotal.WithLabelValues(LookupResultCached))

	RecordInvoiceLookup(LookupResultFound, 0.2)
	RecordInvoiceLookup(LookupResultCached, 0)

	assert.Equal(t, found+1, testutil.ToFloat64(invoiceLookupsTotal.WithLabelValues(LookupResultFound)))
	assert.Equal(t, cached+1, testutil.ToFloat64(invoiceLookupsTotal.WithLabelValues(LookupResultCached)))
}

func TestRecordProcessorRequest(t *testing.T) {
	ok := testutil.ToFloat64(processorRequestsTotal.WithLabelValues("/v1/invoices", "200"))
	failed := testutil.ToFloat64(processorRequestsTotal.WithLabelValues("/v1/invoices", "error"))

	RecordProcessorRequest("/v1/invoices", 200, time.Now())
	RecordProcessorRequest("/v1/invoices", 0, time.Now())

	assert.Equal(t, ok+1, testutil.ToFloat64(processorRequestsTotal.WithLabelValues("/v1/invoices", "200")))
	assert.Equal(t, failed+1, testutil.ToFloat64(processorRequestsTotal.WithLabelValues("/v1/invoices", "error")))
}

func TestSetFigure(t *testing.T) {
	SetFigure("platform_gross_sales", 80)
	assert.Equal(t, float64(80), testutil.ToFloat64(reportedFigures.WithLabelValues("platform_gross_sales")))
}

func TestWriteTextfile(t *testing.T) {
	RecordRun(RunStatusSuccess, 1.5)
	RecordCoercedCells(1)

	path := filepath.Join(t.TempDir(), "reconciler.prom")
	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `reconciler_runs_total{status="success"}`)
	assert.Contains(t, string(data), "reconciler_coerced_cells_total")
	assert.NotContains(t, string(data), "go_goroutines")
}
