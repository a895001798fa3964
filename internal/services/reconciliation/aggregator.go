package reconciliation

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/kevin07696/settlement-reconciler/internal/domain"
	"github.com/kevin07696/settlement-reconciler/internal/domain/ports"
	"github.com/kevin07696/settlement-reconciler/pkg/observability"
)

// ClassificationCounts counts records per bucket
type ClassificationCounts struct {
	Suppressed    int
	NoCustomer    int
	ExclusionList int
	Unclassified  int
}

func (c ClassificationCounts) add(cls domain.Classification) ClassificationCounts {
	switch cls {
	case domain.ClassificationSuppressed:
		c.Suppressed++
	case domain.ClassificationNoCustomer:
		c.NoCustomer++
	case domain.ClassificationExclusionList:
		c.ExclusionList++
	case domain.ClassificationUnclassified:
		c.Unclassified++
	}
	return c
}

// Of returns the count for one bucket
func (c ClassificationCounts) Of(cls domain.Classification) int {
	switch cls {
	case domain.ClassificationSuppressed:
		return c.Suppressed
	case domain.ClassificationNoCustomer:
		return c.NoCustomer
	case domain.ClassificationExclusionList:
		return c.ExclusionList
	case domain.ClassificationUnclassified:
		return c.Unclassified
	default:
		return 0
	}
}

// Totals is the accumulator threaded through both passes.
//
// Fee amounts are kept in "cost" sign: the negation of the report's fee
// column, so they add directly into a net figure.
type Totals struct {
	// GrossBeforeFees sums gross over non-suppressed "charge" records
	GrossBeforeFees decimal.Decimal
	// NegativeGross sums every negative gross (refunds, disputes, adjustments)
	NegativeGross decimal.Decimal
	// TotalFee is minus the sum of every non-suppressed fee
	TotalFee decimal.Decimal

	// ExcludedGross and ExcludedFee hold the exclusion-list and no-customer buckets
	ExcludedGross decimal.Decimal
	ExcludedFee   decimal.Decimal

	// AmmoAdjustment sums excluded-product amounts on platform customers' invoices
	AmmoAdjustment decimal.Decimal
	// ExclusionListAmmoGross sums excluded-product lines dropped from the
	// exclusion bucket. Informational; not part of the derivation.
	ExclusionListAmmoGross decimal.Decimal

	Counts ClassificationCounts
}

func (t Totals) withRecord(r domain.SettlementRecord) Totals {
	if r.IsCharge() {
		t.GrossBeforeFees = t.GrossBeforeFees.Add(r.Gross)
	}
	if r.Gross.IsNegative() {
		t.NegativeGross = t.NegativeGross.Add(r.Gross)
	}
	t.TotalFee = t.TotalFee.Sub(r.Fee)
	return t
}

// withExcluded adds to the exclusion bucket; fee is in report sign
func (t Totals) withExcluded(gross, fee decimal.Decimal) Totals {
	t.ExcludedGross = t.ExcludedGross.Add(gross)
	t.ExcludedFee = t.ExcludedFee.Sub(fee)
	return t
}

// RecordTrace explains how one settlement record was treated
type RecordTrace struct {
	Record         domain.SettlementRecord
	Classification domain.Classification

	InvoiceLookedUp bool
	InvoiceFound    bool
	LookupError     string
	ProrationFailed bool
	Allocation      domain.FeeAllocation

	HasExcludedProduct    bool
	ExcludedProductAmount decimal.Decimal

	// ContributedGross and ContributedFee are what the record added to the
	// exclusion bucket; ContributedFee is in cost sign like Totals.ExcludedFee
	ContributedGross decimal.Decimal
	ContributedFee   decimal.Decimal
}

type aggregator struct {
	classifier        *Classifier
	excludedProductID string
	lookups           *LookupCache
	logger            ports.Logger
}

// aggregate is the first pass: classify every record and fill the running
// totals and the exclusion bucket. Platform records are only counted here;
// their figures come from subtraction in Derive.
func (a *aggregator) aggregate(ctx context.Context, records []domain.SettlementRecord) (Totals, []RecordTrace, error) {
	var totals Totals
	traces := make([]RecordTrace, 0, len(records))

	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return Totals{}, nil, err
		}

		cls := a.classifier.Classify(r)
		totals.Counts = totals.Counts.add(cls)
		observability.RecordSettlementRecord(string(cls))
		trace := RecordTrace{Record: r, Classification: cls}

		if cls == domain.ClassificationSuppressed {
			a.logger.Debug("Suppressed internal account",
				ports.Int("row", r.Row),
				ports.String("customer_email", r.CustomerEmail),
			)
			traces = append(traces, trace)
			continue
		}

		totals = totals.withRecord(r)

		switch cls {
		case domain.ClassificationNoCustomer:
			totals, trace = unprorated(totals, trace)
		case domain.ClassificationExclusionList:
			totals, trace = a.exclusionListRecord(ctx, totals, trace)
		}

		traces = append(traces, trace)
	}

	return totals, traces, nil
}

// unprorated puts the whole row into the exclusion bucket
func unprorated(t Totals, trace RecordTrace) (Totals, RecordTrace) {
	r := trace.Record
	trace.ContributedGross = r.Gross
	trace.ContributedFee = r.Fee.Neg()
	return t.withExcluded(r.Gross, r.Fee), trace
}

// exclusionListRecord prorates the row's fee over the customer's latest
// invoice and books every line except the excluded product.
func (a *aggregator) exclusionListRecord(ctx context.Context, t Totals, trace RecordTrace) (Totals, RecordTrace) {
	r := trace.Record
	trace.InvoiceLookedUp = true

	invoice, err := a.lookups.LatestInvoice(ctx, r.CustomerID)
	if err != nil {
		a.logger.Warn("Invoice lookup failed, booking row without proration",
			ports.Int("row", r.Row),
			ports.String("customer_id", r.CustomerID),
			ports.Err(err),
		)
		trace.LookupError = err.Error()
	}
	if invoice == nil {
		return unprorated(t, trace)
	}
	trace.InvoiceFound = true

	allocation, err := AllocateFee(invoice.Lines, r.Fee)
	if err != nil {
		a.logger.Warn("Fee proration undefined, booking row without proration",
			ports.Int("row", r.Row),
			ports.String("customer_id", r.CustomerID),
			ports.String("invoice_id", invoice.ID),
			ports.Err(err),
		)
		trace.ProrationFailed = true
		return unprorated(t, trace)
	}
	trace.Allocation = allocation

	gross, fee := decimal.Zero, decimal.Zero
	for productID, share := range allocation {
		amount := invoice.AmountForProduct(productID)
		if a.isExcludedProduct(productID) {
			trace.HasExcludedProduct = true
			trace.ExcludedProductAmount = trace.ExcludedProductAmount.Add(amount)
			continue
		}
		gross = gross.Add(amount)
		fee = fee.Add(share)
	}

	t.ExclusionListAmmoGross = t.ExclusionListAmmoGross.Add(trace.ExcludedProductAmount)
	trace.ContributedGross = gross
	trace.ContributedFee = fee.Neg()
	return t.withExcluded(gross, fee), trace
}

// adjustForExcludedProduct is the second pass: every platform record's
// customer invoice is checked for the excluded product, whose amount is taken
// out of platform gross. No fee proration happens here.
// With no excluded product configured there is nothing to adjust and no
// lookups are made.
func (a *aggregator) adjustForExcludedProduct(ctx context.Context, t Totals, traces []RecordTrace) (Totals, error) {
	if a.excludedProductID == "" {
		return t, nil
	}
	for i := range traces {
		trace := &traces[i]
		if trace.Classification != domain.ClassificationUnclassified {
			continue
		}
		if err := ctx.Err(); err != nil {
			return Totals{}, err
		}

		r := trace.Record
		trace.InvoiceLookedUp = true
		invoice, err := a.lookups.LatestInvoice(ctx, r.CustomerID)
		if err != nil {
			a.logger.Warn("Invoice lookup failed, no excluded-product adjustment",
				ports.Int("row", r.Row),
				ports.String("customer_id", r.CustomerID),
				ports.Err(err),
			)
			trace.LookupError = err.Error()
			continue
		}
		if invoice == nil {
			continue
		}
		trace.InvoiceFound = true

		if !a.isExcludedProductIn(invoice) {
			continue
		}
		amount := invoice.AmountForProduct(a.excludedProductID)
		trace.HasExcludedProduct = true
		trace.ExcludedProductAmount = amount
		t.AmmoAdjustment = t.AmmoAdjustment.Add(amount)
	}

	return t, nil
}

func (a *aggregator) isExcludedProduct(productID string) bool {
	return a.excludedProductID != "" && productID == a.excludedProductID
}

func (a *aggregator) isExcludedProductIn(invoice *domain.Invoice) bool {
	return a.excludedProductID != "" && invoice.HasProduct(a.excludedProductID)
}
