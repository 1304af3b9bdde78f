// Package isk provides fixed-point helpers for ISK amounts.
//
// All monetary values in fleetpay are shopspring decimals quantized to
// 2 fractional digits. Quantization always truncates toward zero so that
// a sum of quantized shares can never exceed the pool it was cut from.
package isk

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Zero is the canonical zero amount.
var Zero = decimal.Zero

// Floor2 truncates d to 2 fractional digits, toward zero.
func Floor2(d decimal.Decimal) decimal.Decimal {
	return d.RoundDown(2)
}

// FromString parses an ISK amount, accepting thousands separators.
func FromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
}

// Format renders an amount with thousands separators and exactly
// 2 fractional digits, e.g. "21,428,571.42".
func Format(d decimal.Decimal) string {
	s := d.StringFixed(2)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}
