package reconciliation

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/kevin07696/settlement-reconciler/internal/domain"
	"github.com/kevin07696/settlement-reconciler/internal/domain/ports"
	"github.com/kevin07696/settlement-reconciler/pkg/observability"
)

// Config holds the classification and adjustment rules for a run
type Config struct {
	// ExcludedProductID is the product whose sales never count as platform gross
	ExcludedProductID string
	// ExclusionCustomerIDs are customers whose transactions are split per invoice line
	ExclusionCustomerIDs []string
	// SuppressionMarkers are email substrings of internal accounts; nil means
	// DefaultSuppressionMarkers
	SuppressionMarkers []string
}

// Result is everything one run produces
type Result struct {
	Figures Figures
	Totals  Totals
	Trace   []RecordTrace
	Lookups LookupStats
	// Coerced is set only by ReconcileReport
	Coerced []CoercedCell
}

// Service reconciles a settlement report against the processor's invoices
type Service struct {
	cfg        Config
	classifier *Classifier
	lookup     ports.InvoiceLookup
	logger     ports.Logger
}

// NewService creates a new reconciliation service
func NewService(cfg Config, lookup ports.InvoiceLookup, logger ports.Logger) *Service {
	markers := cfg.SuppressionMarkers
	if markers == nil {
		markers = DefaultSuppressionMarkers
	}
	return &Service{
		cfg:        cfg,
		classifier: NewClassifier(markers, cfg.ExclusionCustomerIDs),
		lookup:     lookup,
		logger:     logger,
	}
}

// ReconcileReport parses a settlement report and reconciles its records
func (s *Service) ReconcileReport(ctx context.Context, r io.Reader) (*Result, error) {
	report, err := ParseRecords(r)
	if err != nil {
		return nil, err
	}

	if len(report.Coerced) > 0 {
		observability.RecordCoercedCells(len(report.Coerced))
		for _, c := range report.Coerced {
			s.logger.Warn("Unparsable amount read as zero",
				ports.Int("row", c.Row),
				ports.String("column", c.Column),
				ports.String("value", c.Value),
			)
		}
	}

	result, err := s.Reconcile(ctx, report.Records)
	if err != nil {
		return nil, err
	}
	result.Coerced = report.Coerced
	return result, nil
}

// Reconcile runs both passes over records and derives the figures.
//
// Lookup failures never abort the run; they degrade the affected record to
// "no invoice" treatment. Only context cancellation returns an error.
func (s *Service) Reconcile(ctx context.Context, records []domain.SettlementRecord) (*Result, error) {
	start := time.Now()
	cache := NewLookupCache(s.lookup)
	agg := &aggregator{
		classifier:        s.classifier,
		excludedProductID: s.cfg.ExcludedProductID,
		lookups:           cache,
		logger:            s.logger,
	}

	s.logger.Info("Reconciliation started",
		ports.Int("records", len(records)),
		ports.Int("exclusion_customers", len(s.cfg.ExclusionCustomerIDs)),
		ports.String("excluded_product_id", s.cfg.ExcludedProductID),
	)

	totals, traces, err := agg.aggregate(ctx, records)
	if err != nil {
		observability.RecordRun(observability.RunStatusFailed, time.Since(start).Seconds())
		return nil, fmt.Errorf("aggregate settlement records: %w", err)
	}

	totals, err = agg.adjustForExcludedProduct(ctx, totals, traces)
	if err != nil {
		observability.RecordRun(observability.RunStatusFailed, time.Since(start).Seconds())
		return nil, fmt.Errorf("adjust for excluded product: %w", err)
	}

	figures := Derive(totals)
	stats := cache.Stats()

	publishFigures(figures)
	observability.RecordRun(observability.RunStatusSuccess, time.Since(start).Seconds())

	s.logger.Info("Reconciliation completed",
		ports.Decimal("gross_before_fees", figures.GrossBeforeFees),
		ports.Decimal("net_balance_change", figures.NetBalanceChange),
		ports.Decimal("platform_gross_sales", figures.PlatformGrossSales),
		ports.Decimal("platform_net_disbursed", figures.PlatformNetDisbursed),
		ports.Int("suppressed", totals.Counts.Suppressed),
		ports.Int("no_customer", totals.Counts.NoCustomer),
		ports.Int("exclusion_list", totals.Counts.ExclusionList),
		ports.Int("platform", totals.Counts.Unclassified),
		ports.Int("lookups_remote", stats.Remote),
		ports.Int("lookups_cached", stats.CacheHits),
		ports.Int("lookups_failed", stats.Failures),
		ports.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	return &Result{
		Figures: figures,
		Totals:  totals,
		Trace:   traces,
		Lookups: stats,
	}, nil
}

func publishFigures(f Figures) {
	observability.SetFigure("gross_before_fees", f.GrossBeforeFees.InexactFloat64())
	observability.SetFigure("net_balance_change", f.NetBalanceChange.InexactFloat64())
	observability.SetFigure("platform_gross_sales", f.PlatformGrossSales.InexactFloat64())
	observability.SetFigure("platform_net_disbursed", f.PlatformNetDisbursed.InexactFloat64())
}
