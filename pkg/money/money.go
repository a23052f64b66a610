// Package money handles the presentation side of monetary values. The
// pipeline keeps amounts as shopspring decimals end to end; conversion to
// two-decimal display values and formatted currency strings happens here,
// at the boundary, so intermediate sums never lose precision.
package money

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// BRL is the presentation currency for statement reports.
const BRL = "BRL"

// Round2 rounds a decimal amount to two places, half away from zero. Use it
// only when serializing a value for output.
func Round2(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// Float2 returns the two-decimal float representation used in JSON payloads.
func Float2(amount decimal.Decimal) float64 {
	f, _ := Round2(amount).Float64()
	return f
}

// FromDecimal converts a decimal amount to minor units of the given
// currency. Unknown currency codes fall back to BRL.
func FromDecimal(amount decimal.Decimal, currencyCode string) *money.Money {
	currency := money.GetCurrency(currencyCode)
	if currency == nil {
		currency = money.GetCurrency(BRL)
	}
	minor := amount.Mul(decimal.New(1, int32(currency.Fraction))).Round(0).IntPart()
	return money.New(minor, currency.Code)
}

// FormatBRL renders an amount as a fixed "R$x.xx" string for report text.
// go-money's locale display uses grouping separators, which would make the
// report strings vary with amount magnitude, so formatting stays manual.
func FormatBRL(amount decimal.Decimal) string {
	return "R$" + Round2(amount).StringFixed(2)
}
