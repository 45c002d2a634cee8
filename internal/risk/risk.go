// Package risk applies per-trade spend caps before any route is requested.
package risk

import "github.com/shopspring/decimal"

// Limits caps how much base asset one BUY or DCA may spend. Zero means unlimited.
type Limits struct {
	MaxBasePerTrade decimal.Decimal
}

// NewLimits converts the float config knob into a decimal limit.
func NewLimits(maxBasePerTrade float64) Limits {
	return Limits{MaxBasePerTrade: decimal.NewFromFloat(maxBasePerTrade)}
}

func (l Limits) Allow(quantity decimal.Decimal) bool {
	if !l.MaxBasePerTrade.IsPositive() {
		return true
	}
	return quantity.LessThanOrEqual(l.MaxBasePerTrade)
}
