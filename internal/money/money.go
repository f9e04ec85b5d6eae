// Package money converts decimal currency amounts to integer minor units for
// transport to the KohortPay API.
//
// Amounts are rounded to exactly 2 decimal places (half away from zero, the
// shopspring/decimal Round rule) before scaling, so every price field in a
// checkout session goes through the same rule and minor-unit arithmetic stays
// consistent. Only 2-decimal currencies are supported; there is no
// currency-code-aware scaling.
package money

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ToMinorUnits converts a major-unit amount to integer minor units (cents).
// The amount is rounded to 2 decimal places half away from zero, multiplied
// by 100, and truncated.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Round(2).Mul(hundred).IntPart()
}

// FromMinorUnits converts integer minor units back to a major-unit decimal.
func FromMinorUnits(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(hundred)
}
