package reconciliation

import (
	"github.com/shopspring/decimal"
)

// Figures are the four reported results of a reconciliation run.
// Values keep full precision; round only for display.
type Figures struct {
	GrossBeforeFees      decimal.Decimal
	NetBalanceChange     decimal.Decimal
	PlatformGrossSales   decimal.Decimal
	PlatformNetDisbursed decimal.Decimal
}

// Derive computes the figures from final totals:
//
//	netBalanceChange     = grossBeforeFees + negativeGross + totalFee
//	platformGrossSales   = grossBeforeFees - excludedGross - ammoAdjustment
//	platformNetDisbursed = netBalanceChange - excludedGross - excludedFee
func Derive(t Totals) Figures {
	net := t.GrossBeforeFees.Add(t.NegativeGross).Add(t.TotalFee)

	return Figures{
		GrossBeforeFees:      t.GrossBeforeFees,
		NetBalanceChange:     net,
		PlatformGrossSales:   t.GrossBeforeFees.Sub(t.ExcludedGross).Sub(t.AmmoAdjustment),
		PlatformNetDisbursed: net.Sub(t.ExcludedGross).Sub(t.ExcludedFee),
	}
}

// Rounded returns the figures rounded to cents
func (f Figures) Rounded() Figures {
	return Figures{
		GrossBeforeFees:      f.GrossBeforeFees.Round(2),
		NetBalanceChange:     f.NetBalanceChange.Round(2),
		PlatformGrossSales:   f.PlatformGrossSales.Round(2),
		PlatformNetDisbursed: f.PlatformNetDisbursed.Round(2),
	}
}
