package fixtures

import (
	"github.com/shopspring/decimal"

	"github.com/kevin07696/settlement-reconciler/internal/domain"
)

// SettlementBuilder provides fluent API for building test settlement records.
type SettlementBuilder struct {
	record domain.SettlementRecord
}

// NewSettlement creates a charge of 100.00 with a 3.00 fee for customer cus_default.
func NewSettlement() *SettlementBuilder {
	return &SettlementBuilder{
		record: domain.SettlementRecord{
			Row:               1,
			CustomerID:        "cus_default",
			CustomerEmail:     "buyer@shop.test",
			ReportingCategory: domain.ReportingCategoryCharge,
			Gross:             D("100.00"),
			Fee:               D("3.00"),
		},
	}
}

func (b *SettlementBuilder) WithRow(row int) *SettlementBuilder {
	b.record.Row = row
	return b
}

func (b *SettlementBuilder) WithCustomer(id string) *SettlementBuilder {
	b.record.CustomerID = id
	return b
}

func (b *SettlementBuilder) WithoutCustomer() *SettlementBuilder {
	b.record.CustomerID = ""
	return b
}

func (b *SettlementBuilder) WithEmail(email string) *SettlementBuilder {
	b.record.CustomerEmail = email
	return b
}

func (b *SettlementBuilder) WithCategory(category string) *SettlementBuilder {
	b.record.ReportingCategory = category
	return b
}

func (b *SettlementBuilder) WithGross(gross string) *SettlementBuilder {
	b.record.Gross = D(gross)
	return b
}

func (b *SettlementBuilder) WithFee(fee string) *SettlementBuilder {
	b.record.Fee = D(fee)
	return b
}

// AsRefund makes the record a refund of amount with no fee
func (b *SettlementBuilder) AsRefund(amount string) *SettlementBuilder {
	b.record.ReportingCategory = "refund"
	b.record.Gross = D(amount).Neg()
	b.record.Fee = decimal.Zero
	return b
}

func (b *SettlementBuilder) Build() domain.SettlementRecord {
	return b.record
}
