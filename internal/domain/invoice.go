package domain

import (
	"github.com/shopspring/decimal"
)

// InvoiceLine is one line item of a customer's invoice
type InvoiceLine struct {
	ProductID string
	Quantity  int64
	Amount    decimal.Decimal // major currency units
}

// Invoice is the most recent invoice for a customer, as returned by the processor
type Invoice struct {
	ID         string
	CustomerID string
	Lines      []InvoiceLine
}

// TotalQuantity sums quantities over all lines
func (i *Invoice) TotalQuantity() int64 {
	var total int64
	for _, line := range i.Lines {
		total += line.Quantity
	}
	return total
}

// AmountForProduct sums the amounts of every line carrying productID
func (i *Invoice) AmountForProduct(productID string) decimal.Decimal {
	total := decimal.Zero
	for _, line := range i.Lines {
		if line.ProductID == productID {
			total = total.Add(line.Amount)
		}
	}
	return total
}

// HasProduct reports whether any line carries productID
func (i *Invoice) HasProduct(productID string) bool {
	for _, line := range i.Lines {
		if line.ProductID == productID {
			return true
		}
	}
	return false
}

// FeeAllocation maps product id to the share of a fee allocated to it
type FeeAllocation map[string]decimal.Decimal

// Total sums all allocated amounts
func (a FeeAllocation) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range a {
		total = total.Add(v)
	}
	return total
}
