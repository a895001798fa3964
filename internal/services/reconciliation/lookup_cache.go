package reconciliation

import (
	"context"
	"time"

	"github.com/kevin07696/settlement-reconciler/internal/domain"
	"github.com/kevin07696/settlement-reconciler/internal/domain/ports"
	"github.com/kevin07696/settlement-reconciler/pkg/observability"
)

// LookupStats counts invoice lookups made during one run
type LookupStats struct {
	Requests  int // lookups asked of the cache
	Remote    int // lookups that reached the processor
	CacheHits int
	Failures  int // remote lookups that returned an error
	NotFound  int // remote lookups that found no invoice
}

type lookupEntry struct {
	invoice *domain.Invoice
	err     error
}

// LookupCache memoizes invoice lookups by customer id for a single run.
// Failures are memoized too, so a customer whose lookup failed is not retried
// within the run. Not safe for concurrent use; the passes are sequential.
type LookupCache struct {
	lookup  ports.InvoiceLookup
	entries map[string]lookupEntry
	stats   LookupStats
}

// NewLookupCache wraps lookup with a per-run cache
func NewLookupCache(lookup ports.InvoiceLookup) *LookupCache {
	return &LookupCache{
		lookup:  lookup,
		entries: make(map[string]lookupEntry),
	}
}

// LatestInvoice returns the customer's most recent invoice, calling the
// processor only on the first request for that customer.
func (c *LookupCache) LatestInvoice(ctx context.Context, customerID string) (*domain.Invoice, error) {
	c.stats.Requests++
	if e, ok := c.entries[customerID]; ok {
		c.stats.CacheHits++
		observability.RecordInvoiceLookup(observability.LookupResultCached, 0)
		return e.invoice, e.err
	}

	start := time.Now()
	invoice, err := c.lookup.LatestInvoice(ctx, customerID)
	elapsed := time.Since(start).Seconds()
	c.stats.Remote++

	switch {
	case err != nil:
		c.stats.Failures++
		invoice = nil
		observability.RecordInvoiceLookup(observability.LookupResultFailed, elapsed)
	case invoice == nil:
		c.stats.NotFound++
		observability.RecordInvoiceLookup(observability.LookupResultNotFound, elapsed)
	default:
		observability.RecordInvoiceLookup(observability.LookupResultFound, elapsed)
	}

	c.entries[customerID] = lookupEntry{invoice: invoice, err: err}
	return invoice, err
}

// Stats returns the counters accumulated so far
func (c *LookupCache) Stats() LookupStats {
	return c.stats
}
