package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already two places", "10.50", "10.5"},
		{"rounds half up", "10.555", "10.56"},
		{"rounds half up negative", "-10.555", "-10.56"},
		{"truncates long tail", "3.14159", "3.14"},
		{"integer untouched", "42", "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := decimal.RequireFromString(tt.in)
			assert.Equal(t, tt.want, Round2(in).String())
		})
	}
}

func TestFloat2(t *testing.T) {
	assert.InDelta(t, 10.56, Float2(decimal.RequireFromString("10.555")), 1e-9)
	assert.InDelta(t, -0.45, Float2(decimal.RequireFromString("-0.4499")), 1e-9)
	assert.Zero(t, Float2(decimal.Zero))
}

func TestFromDecimal(t *testing.T) {
	m := FromDecimal(decimal.RequireFromString("1234.56"), BRL)
	require.NotNil(t, m)
	assert.Equal(t, int64(123456), m.Amount())
	assert.Equal(t, BRL, m.Currency().Code)
}

func TestFromDecimalUnknownCurrencyFallsBack(t *testing.T) {
	m := FromDecimal(decimal.RequireFromString("10"), "XXX-NOPE")
	require.NotNil(t, m)
	assert.Equal(t, BRL, m.Currency().Code)
}

func TestFormatBRL(t *testing.T) {
	assert.Equal(t, "R$1234.56", FormatBRL(decimal.RequireFromString("1234.555")))
	assert.Equal(t, "R$0.00", FormatBRL(decimal.Zero))
	assert.Equal(t, "R$-320.45", FormatBRL(decimal.RequireFromString("-320.45")))
}
