package execution

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	hundred    = decimal.NewFromInt(100)
	decimalOne = decimal.NewFromInt(1)
)

const maxBps = 10000

// Instruction is one trade request. Amount is denominated in the input leg's
// natural units: base asset for BUY and DCA, target asset for SELL.
type Instruction struct {
	Action          Action           `json:"action"`
	AssetID         string           `json:"assetId,omitempty"`
	Amount          *decimal.Decimal `json:"amount,omitempty"`
	Percentage      *decimal.Decimal `json:"percentage,omitempty"`
	SlippageBps     *int             `json:"slippageBps,omitempty"`
	SlippagePercent *decimal.Decimal `json:"slippagePercent,omitempty"`
}

// UnmarshalJSON also accepts the "token" and "slippage" field names used by
// earlier callers of the /tx endpoint.
func (in *Instruction) UnmarshalJSON(data []byte) error {
	type plain Instruction
	var aux struct {
		plain
		Token    string           `json:"token"`
		Slippage *decimal.Decimal `json:"slippage"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*in = Instruction(aux.plain)
	if in.AssetID == "" {
		in.AssetID = aux.Token
	}
	if in.SlippagePercent == nil {
		in.SlippagePercent = aux.Slippage
	}
	return nil
}

// normalize validates the instruction without any I/O and returns a copy with
// the action canonicalized and the asset trimmed.
func (in Instruction) normalize(base string) (Instruction, error) {
	action, legacyPct, ok := ParseAction(string(in.Action))
	if !ok {
		return in, newError(KindInvalidInstruction, "unsupported action "+strconv.Quote(string(in.Action)), nil)
	}
	out := in
	out.Action = action
	out.AssetID = strings.TrimSpace(in.AssetID)

	if action == Hold {
		return out, nil
	}
	if out.AssetID == "" {
		return out, newError(KindInvalidInstruction, "assetId is required for "+string(action), nil)
	}
	if out.AssetID == base {
		return out, newError(KindInvalidInstruction, "assetId must differ from the base asset", nil)
	}

	if legacyPct != nil {
		if out.Percentage != nil && !out.Percentage.Equal(*legacyPct) {
			return out, newError(KindInvalidInstruction, "percentage conflicts with "+string(in.Action), nil)
		}
		out.Percentage = legacyPct
	}

	switch action {
	case Buy:
		if out.Amount == nil {
			return out, newError(KindInvalidInstruction, "BUY requires amount", nil)
		}
		out.Percentage = nil
	case Sell, DCA:
		if out.Percentage != nil {
			p := *out.Percentage
			if !p.IsPositive() || p.GreaterThan(decimalOne) {
				return out, newError(KindInvalidInstruction, "percentage must be in (0, 1], got "+p.String(), nil)
			}
		} else if out.Amount == nil {
			return out, newError(KindInvalidInstruction, string(action)+" requires amount or percentage", nil)
		}
	}

	if out.SlippageBps != nil {
		if bps := *out.SlippageBps; bps <= 0 || bps > maxBps {
			return out, newError(KindInvalidInstruction, "slippageBps must be in (0, 10000]", nil)
		}
	} else if out.SlippagePercent != nil {
		p := *out.SlippagePercent
		if !p.IsPositive() || p.GreaterThan(hundred) {
			return out, newError(KindInvalidInstruction, "slippagePercent must be in (0, 100]", nil)
		}
	}
	return out, nil
}

// slippageBps resolves the tolerance, preferring bps over percent.
func (in Instruction) slippageBps(def int) int {
	if in.SlippageBps != nil {
		return *in.SlippageBps
	}
	if in.SlippagePercent != nil {
		if bps := int(in.SlippagePercent.Mul(hundred).Round(0).IntPart()); bps > 0 {
			return bps
		}
		return 1
	}
	return def
}
