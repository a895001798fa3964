package fixtures

import (
	"github.com/kevin07696/settlement-reconciler/internal/domain"
)

// InvoiceBuilder provides fluent API for building test invoices.
type InvoiceBuilder struct {
	invoice *domain.Invoice
}

// NewInvoice creates an invoice with no lines for customerID.
func NewInvoice(customerID string) *InvoiceBuilder {
	return &InvoiceBuilder{
		invoice: &domain.Invoice{
			ID:         "in_" + customerID,
			CustomerID: customerID,
		},
	}
}

func (b *InvoiceBuilder) WithID(id string) *InvoiceBuilder {
	b.invoice.ID = id
	return b
}

// WithLine appends a line; amount is in major units
func (b *InvoiceBuilder) WithLine(productID string, quantity int64, amount string) *InvoiceBuilder {
	b.invoice.Lines = append(b.invoice.Lines, domain.InvoiceLine{
		ProductID: productID,
		Quantity:  quantity,
		Amount:    D(amount),
	})
	return b
}

func (b *InvoiceBuilder) Build() *domain.Invoice {
	return b.invoice
}
