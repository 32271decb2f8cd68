package types

import "github.com/shopspring/decimal"

var centsPerUnit = decimal.NewFromInt(100)

// MinorUnits converts a major-unit amount (euros) into integer cents, rounding half away from zero.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(centsPerUnit).Round(0).IntPart()
}

// FromMinorUnits converts integer cents back into a major-unit amount.
func FromMinorUnits(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
