// Package fixtures provides test data builders and helpers.
package fixtures

import "github.com/shopspring/decimal"

// D parses a decimal literal and panics on bad input; test use only.
func D(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
