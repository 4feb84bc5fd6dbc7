package currency

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		code     string
		expected int64
	}{
		{"two decimal currency", "19.99", "usd", 1999},
		{"whole amount", "20", "USD", 2000},
		{"zero decimal currency", "500", "jpy", 500},
		{"zero decimal uppercase", "500", "JPY", 500},
		{"rounds half up", "10.005", "usd", 1001},
		{"rounds down below half", "10.004", "usd", 1000},
		{"sub-cent fraction", "0.011", "eur", 1},
		{"zero", "0", "usd", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)
			assert.Equal(t, tt.expected, MinorUnits(amount, tt.code))
		})
	}
}

func TestExponent(t *testing.T) {
	assert.Equal(t, int32(2), Exponent("usd"))
	assert.Equal(t, int32(2), Exponent("EUR"))
	assert.Equal(t, int32(0), Exponent("jpy"))
	assert.Equal(t, int32(0), Exponent("KRW"))
}
