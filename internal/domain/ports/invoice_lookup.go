package ports

import (
	"context"

	"github.com/kevin07696/settlement-reconciler/internal/domain"
)

// InvoiceLookup retrieves a customer's most recent invoice from the processor.
//
// A customer with no invoices yields (nil, nil). Any error is treated by the
// reconciliation passes as "no invoice" for that customer; it never aborts a run.
type InvoiceLookup interface {
	LatestInvoice(ctx context.Context, customerID string) (*domain.Invoice, error)
}

// InvoiceLookupFunc adapts a plain function to InvoiceLookup
type InvoiceLookupFunc func(ctx context.Context, customerID string) (*domain.Invoice, error)

// LatestInvoice calls f
func (f InvoiceLookupFunc) LatestInvoice(ctx context.Context, customerID string) (*domain.Invoice, error) {
	return f(ctx, customerID)
}
