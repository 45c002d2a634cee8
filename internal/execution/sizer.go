package execution

import (
	"context"

	"github.com/shopspring/decimal"
)

// DefaultDCAFactor is the fraction of the requested or held amount a DCA
// instruction trades.
const DefaultDCAFactor = 0.5

// Sizer turns an instruction into a concrete natural-unit quantity of the
// swap's input asset.
type Sizer struct {
	balances  BalanceResolver
	base      string
	dcaFactor decimal.Decimal
}

// NewSizer builds a sizer. A non-positive factor falls back to DefaultDCAFactor.
func NewSizer(balances BalanceResolver, base string, dcaFactor decimal.Decimal) *Sizer {
	if !dcaFactor.IsPositive() || dcaFactor.GreaterThan(decimalOne) {
		dcaFactor = decimal.NewFromFloat(DefaultDCAFactor)
	}
	return &Sizer{balances: balances, base: base, dcaFactor: dcaFactor}
}

// DCAFactor returns the scale applied to DCA quantities.
func (s *Sizer) DCAFactor() decimal.Decimal { return s.dcaFactor }

// Resolve sizes the input leg. Percentages are applied to the balance of the
// input asset: the target asset for SELL, the base asset for DCA.
func (s *Sizer) Resolve(ctx context.Context, action Action, asset string, amount, percentage *decimal.Decimal) (decimal.Decimal, error) {
	var qty decimal.Decimal
	switch action {
	case Buy:
		if amount == nil {
			return decimal.Zero, newError(KindInvalidAmount, "BUY requires amount", nil)
		}
		qty = *amount
	case Sell, DCA:
		if percentage != nil {
			dir, _ := DirectionFor(action, asset, s.base)
			balance, err := s.balances.Balance(ctx, dir.Input)
			if err != nil {
				return decimal.Zero, newError(KindBalanceQueryFailed, "balance of "+dir.Input, err)
			}
			if !balance.IsPositive() {
				return decimal.Zero, newError(KindInsufficientBalance, "no "+dir.Input+" holdings to size "+string(action), nil)
			}
			qty = balance.Mul(*percentage)
		} else if amount != nil {
			qty = *amount
		} else {
			return decimal.Zero, newError(KindInvalidAmount, string(action)+" requires amount or percentage", nil)
		}
		if action == DCA {
			qty = qty.Mul(s.dcaFactor)
		}
	default:
		return decimal.Zero, newError(KindInvalidInstruction, "nothing to size for "+string(action), nil)
	}

	if !qty.IsPositive() {
		return decimal.Zero, newError(KindInvalidAmount, "resolved quantity "+qty.String()+" is not positive", nil)
	}
	return qty, nil
}
