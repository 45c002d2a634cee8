// Package execution resolves trade instructions into signed, broadcast swaps.
package execution

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Action enumerates the instructions the executor understands.
type Action string

const (
	// Buy spends base asset to acquire the target asset.
	Buy Action = "BUY"
	// Sell converts held target asset back into the base asset.
	Sell Action = "SELL"
	// DCA is a buy scaled down by the dollar-cost-averaging factor.
	DCA Action = "DCA"
	// Hold performs no trade.
	Hold Action = "HOLD"
)

// legacySellPercents are the only SELL_<pct> forms accepted.
var legacySellPercents = map[int]bool{10: true, 25: true, 50: true, 75: true, 100: true}

// ParseAction normalizes an action string. The returned percentage is non-nil
// only for the SELL_<pct> form.
func ParseAction(raw string) (Action, *decimal.Decimal, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	switch Action(s) {
	case Buy, Sell, DCA, Hold:
		return Action(s), nil, true
	}
	suffix, ok := strings.CutPrefix(s, "SELL_")
	if !ok {
		return "", nil, false
	}
	pct, err := strconv.Atoi(suffix)
	if err != nil || !legacySellPercents[pct] {
		return "", nil, false
	}
	frac := decimal.NewFromInt(int64(pct)).Div(decimal.NewFromInt(100))
	return Sell, &frac, true
}

// BalanceRelative reports whether the action may size against current holdings.
func (a Action) BalanceRelative() bool { return a == Sell || a == DCA }

// SpendsBase reports whether the input leg of the swap is the base asset.
func (a Action) SpendsBase() bool { return a == Buy || a == DCA }

// Direction is the derived input/output pair of a swap.
type Direction struct {
	Input  string
	Output string
}

// DirectionFor maps an action onto swap legs. HOLD has no direction.
func DirectionFor(action Action, asset, base string) (Direction, bool) {
	switch action {
	case Buy, DCA:
		return Direction{Input: base, Output: asset}, true
	case Sell:
		return Direction{Input: asset, Output: base}, true
	default:
		return Direction{}, false
	}
}
