package reconciliation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kevin07696/settlement-reconciler/internal/testutil/fixtures"
)

func TestDerive(t *testing.T) {
	totals := Totals{
		GrossBeforeFees: fixtures.D("1000.00"),
		NegativeGross:   fixtures.D("-120.00"),
		TotalFee:        fixtures.D("-31.50"),
		ExcludedGross:   fixtures.D("300.00"),
		ExcludedFee:     fixtures.D("-9.00"),
		AmmoAdjustment:  fixtures.D("75.00"),
	}

	f := Derive(totals)

	assertDecimal(t, "1000.00", f.GrossBeforeFees)
	assertDecimal(t, "848.50", f.NetBalanceChange)
	assertDecimal(t, "625.00", f.PlatformGrossSales)
	assertDecimal(t, "557.50", f.PlatformNetDisbursed)
}

func TestDerive_Empty(t *testing.T) {
	f := Derive(Totals{})

	assert.True(t, f.GrossBeforeFees.IsZero())
	assert.True(t, f.NetBalanceChange.IsZero())
	assert.True(t, f.PlatformGrossSales.IsZero())
	assert.True(t, f.PlatformNetDisbursed.IsZero())
}

func TestDerive_IgnoresInformationalTotals(t *testing.T) {
	base := Totals{GrossBeforeFees: fixtures.D("10")}
	withInfo := base
	withInfo.ExclusionListAmmoGross = fixtures.D("99")
	withInfo.Counts = ClassificationCounts{Suppressed: 4}

	assert.Equal(t, Derive(base), Derive(withInfo))
}

func TestFigures_Rounded(t *testing.T) {
	f := Figures{
		GrossBeforeFees:      fixtures.D("10.005"),
		NetBalanceChange:     fixtures.D("-3.3333333"),
		PlatformGrossSales:   fixtures.D("1"),
		PlatformNetDisbursed: fixtures.D("2.994"),
	}.Rounded()

	assertDecimal(t, "10.01", f.GrossBeforeFees)
	assertDecimal(t, "-3.33", f.NetBalanceChange)
	assertDecimal(t, "1.00", f.PlatformGrossSales)
	assertDecimal(t, "2.99", f.PlatformNetDisbursed)
}
