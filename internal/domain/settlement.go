package domain

import (
	"github.com/shopspring/decimal"
)

// ReportingCategoryCharge is the reporting category of a captured card payment.
const ReportingCategoryCharge = "charge"

// Settlement report column names.
const (
	ColumnCustomerID        = "customer_id"
	ColumnCustomerEmail     = "customer_email"
	ColumnGross             = "gross"
	ColumnFee               = "fee"
	ColumnReportingCategory = "reporting_category"
)

// SettlementRecord is one row of a processor settlement report.
// Gross and Fee are in major currency units exactly as reported; Fee is the
// processor's charge (positive means the processor kept money).
type SettlementRecord struct {
	Row               int // 1-based data row number, header excluded
	CustomerID        string
	CustomerEmail     string
	ReportingCategory string
	Gross             decimal.Decimal
	Fee               decimal.Decimal
}

// HasCustomer reports whether the record is attributed to a customer
func (r SettlementRecord) HasCustomer() bool {
	return r.CustomerID != ""
}

// IsCharge reports whether the record is a captured charge
func (r SettlementRecord) IsCharge() bool {
	return r.ReportingCategory == ReportingCategoryCharge
}
