package execution

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// ToSmallestUnit converts a natural-unit quantity into the asset's smallest
// indivisible unit, truncating any remainder below one unit.
func ToSmallestUnit(quantity decimal.Decimal, decimals int32) (uint64, error) {
	if decimals < 0 {
		return 0, fmt.Errorf("negative decimals %d", decimals)
	}
	units := quantity.Shift(decimals).Truncate(0)
	if units.Sign() <= 0 {
		return 0, nil
	}
	bi := units.BigInt()
	if !bi.IsUint64() {
		return 0, fmt.Errorf("quantity %s overflows %d-decimal units", quantity, decimals)
	}
	return bi.Uint64(), nil
}

// FromSmallestUnit converts raw units back into natural units.
func FromSmallestUnit(units uint64, decimals int32) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(units), -decimals)
}
