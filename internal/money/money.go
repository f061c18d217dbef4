// Package money centralizes monetary arithmetic for the crediário domain.
// All amounts are BRL values held as fixed-precision decimals; raw floats are
// only accepted at the API boundary and converted immediately.
package money

import (
	"github.com/shopspring/decimal"
)

// Places is the number of decimal places kept for every stored amount.
const Places = 2

// Zero is the zero amount.
var Zero = decimal.Zero

// FromFloat converts an API-boundary float into a canonical amount.
func FromFloat(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(Places)
}

// FromCents builds an amount from integer minor units.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -Places)
}

// Cents returns the amount in integer minor units.
func Cents(v decimal.Decimal) int64 {
	return v.Round(Places).Shift(Places).IntPart()
}

// Round normalizes an amount to the canonical two decimal places.
func Round(v decimal.Decimal) decimal.Decimal {
	return v.Round(Places)
}

// SplitEven divides total into n parts rounded to two decimal places.
// The final part absorbs the rounding remainder so the parts always sum to
// total exactly.
func SplitEven(total decimal.Decimal, n int) []decimal.Decimal {
	if n <= 0 {
		return nil
	}

	part := total.Div(decimal.NewFromInt(int64(n))).Round(Places)
	parts := make([]decimal.Decimal, n)

	running := decimal.Zero
	for i := 0; i < n-1; i++ {
		parts[i] = part
		running = running.Add(part)
	}
	parts[n-1] = total.Round(Places).Sub(running)

	return parts
}

// IsNegative reports whether v is below zero.
func IsNegative(v decimal.Decimal) bool {
	return v.IsNegative()
}

// FormatBRL renders an amount the way the contract and reports print it.
func FormatBRL(v decimal.Decimal) string {
	return "R$ " + v.StringFixed(Places)
}
