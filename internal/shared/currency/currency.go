// Package currency converts decimal amounts to the smallest currency unit
// expected by payment providers.
package currency

import (
	"strings"

	"github.com/shopspring/decimal"
)

// zeroDecimal lists ISO 4217 currencies that have no minor unit.
var zeroDecimal = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true,
	"kmf": true, "krw": true, "mga": true, "pyg": true, "rwf": true,
	"ugx": true, "vnd": true, "vuv": true, "xaf": true, "xof": true,
	"xpf": true,
}

// Exponent returns the number of minor-unit digits for a currency code.
func Exponent(code string) int32 {
	if zeroDecimal[strings.ToLower(code)] {
		return 0
	}
	return 2
}

// MinorUnits converts a major-unit decimal amount to minor units, rounding
// half away from zero. 19.99 USD becomes 1999; 500 JPY stays 500.
func MinorUnits(amount decimal.Decimal, code string) int64 {
	exp := Exponent(code)
	return amount.Mul(decimal.New(1, exp)).Round(0).IntPart()
}
