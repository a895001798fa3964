package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Invoice lookup results
const (
	LookupResultFound    = "found"
	LookupResultNotFound = "not_found"
	LookupResultFailed   = "failed"
	LookupResultCached   = "cached"
)

// Run statuses
const (
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
)

var (
	settlementRecordsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "reconciler_settlement_records_total",
		Help: "Settlement records processed, by classification",
	}, []string{
		"classification", // suppressed, no_customer, exclusion_list, unclassified
	})

	coercedCellsTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "reconciler_coerced_cells_total",
		Help: "Non-empty amount cells that could not be parsed and were read as zero",
	})

	invoiceLookupsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "reconciler_invoice_lookups_total",
		Help: "Invoice lookups, by result",
	}, []string{
		"result", // found, not_found, failed, cached
	})

	invoiceLookupDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "reconciler_invoice_lookup_duration_seconds",
		Help:    "Time to fetch a customer's latest invoice from the processor",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	runsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "reconciler_runs_total",
		Help: "Reconciliation runs, by status",
	}, []string{
		"status", // success, failed
	})

	runDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "reconciler_run_duration_seconds",
		Help:    "End-to-end duration of a reconciliation run",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
	})

	reportedFigures = factory.NewGaugeVec(prometheus.GaugeOpts{
		Name: "reconciler_figure",
		Help: "Last reported figure, in major currency units",
	}, []string{
		"figure", // gross_before_fees, net_balance_change, platform_gross_sales, platform_net_disbursed
	})
)

// RecordSettlementRecord counts one classified record
func RecordSettlementRecord(classification string) {
	settlementRecordsTotal.WithLabelValues(classification).Inc()
}

// RecordCoercedCells counts amount cells read as zero
func RecordCoercedCells(n int) {
	coercedCellsTotal.Add(float64(n))
}

// RecordInvoiceLookup records one lookup. Cache hits carry no duration.
func RecordInvoiceLookup(result string, duration float64) {
	invoiceLookupsTotal.WithLabelValues(result).Inc()
	if result != LookupResultCached {
		invoiceLookupDuration.Observe(duration)
	}
}

// RecordRun records a finished run
func RecordRun(status string, duration float64) {
	runsTotal.WithLabelValues(status).Inc()
	runDuration.Observe(duration)
}

// SetFigure publishes a reported figure
func SetFigure(name string, value float64) {
	reportedFigures.WithLabelValues(name).Set(value)
}
