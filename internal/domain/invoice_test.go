package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestInvoice_Aggregates(t *testing.T) {
	invoice := &Invoice{
		ID: "in_1",
		Lines: []InvoiceLine{
			{ProductID: "prod_A", Quantity: 2, Amount: decimal.RequireFromString("40")},
			{ProductID: "prod_ammo", Quantity: 1, Amount: decimal.RequireFromString("12.50")},
			{ProductID: "prod_A", Quantity: 1, Amount: decimal.RequireFromString("20")},
		},
	}

	assert.Equal(t, int64(4), invoice.TotalQuantity())
	assert.True(t, decimal.RequireFromString("60").Equal(invoice.AmountForProduct("prod_A")))
	assert.True(t, invoice.AmountForProduct("prod_missing").IsZero())
	assert.True(t, invoice.HasProduct("prod_ammo"))
	assert.False(t, invoice.HasProduct("prod_missing"))
}

func TestInvoice_Empty(t *testing.T) {
	invoice := &Invoice{ID: "in_empty"}

	assert.Equal(t, int64(0), invoice.TotalQuantity())
	assert.False(t, invoice.HasProduct(""))
}

func TestFeeAllocation_Total(t *testing.T) {
	alloc := FeeAllocation{
		"prod_A":    decimal.RequireFromString("2.00"),
		"prod_ammo": decimal.RequireFromString("1.00"),
	}
	assert.True(t, decimal.RequireFromString("3").Equal(alloc.Total()))
	assert.True(t, FeeAllocation{}.Total().IsZero())
}

func TestClassification(t *testing.T) {
	for _, c := range AllClassifications {
		assert.True(t, c.IsValid(), c)
		assert.NotEqual(t, string(c), c.Label(), "every bucket has a readable label")
	}
	assert.False(t, Classification("other").IsValid())
	assert.Equal(t, "other", Classification("other").Label())
	assert.Equal(t, "Platform", ClassificationUnclassified.Label())
}

func TestSettlementRecord(t *testing.T) {
	r := SettlementRecord{CustomerID: "cus_1", ReportingCategory: ReportingCategoryCharge}
	assert.True(t, r.HasCustomer())
	assert.True(t, r.IsCharge())

	r = SettlementRecord{ReportingCategory: "refund"}
	assert.False(t, r.HasCustomer())
	assert.False(t, r.IsCharge())
}
