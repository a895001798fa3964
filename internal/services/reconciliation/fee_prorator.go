package reconciliation

import (
	"github.com/shopspring/decimal"

	"github.com/kevin07696/settlement-reconciler/internal/domain"
)

// AllocateFee spreads totalFee across invoice lines in proportion to quantity.
//
// Each line receives totalFee * quantity / totalQuantity; lines sharing a
// product id accumulate into one entry. The allocations sum to totalFee up to
// decimal division precision. When the quantities sum to zero (including an
// invoice with no lines) the share is undefined and domain.ErrDivisionUndefined
// is returned.
func AllocateFee(lines []domain.InvoiceLine, totalFee decimal.Decimal) (domain.FeeAllocation, error) {
	var totalQuantity int64
	for _, line := range lines {
		totalQuantity += line.Quantity
	}
	if totalQuantity <= 0 {
		return nil, domain.NewDomainError(domain.ErrorCodeDivisionUndefined,
			"cannot prorate fee: invoice total quantity is zero").
			WithDetail("lines", len(lines))
	}

	divisor := decimal.NewFromInt(totalQuantity)
	allocation := make(domain.FeeAllocation, len(lines))
	for _, line := range lines {
		share := totalFee.Mul(decimal.NewFromInt(line.Quantity)).Div(divisor)
		allocation[line.ProductID] = allocation[line.ProductID].Add(share)
	}

	return allocation, nil
}
