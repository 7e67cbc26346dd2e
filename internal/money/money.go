// Package money holds the small amount of arithmetic shared by the parser,
// the session layer and the calculator. Amounts travel as float64 in a
// single currency unit; the arithmetic itself is done in decimal so that
// half cents round the same way regardless of binary representation.
// Formatting belongs to callers.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Round rounds an amount to the nearest cent, halves away from zero.
func Round(amount float64) float64 {
	return decimal.NewFromFloat(amount).Round(2).InexactFloat64()
}

// Sum adds amounts and rounds the result to the nearest cent.
func Sum(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	return total.Round(2).InexactFloat64()
}

// Percent returns pct percent of amount, unrounded.
func Percent(amount, pct float64) float64 {
	return percent(amount, pct).InexactFloat64()
}

// PercentRounded returns pct percent of amount rounded to the nearest cent.
func PercentRounded(amount, pct float64) float64 {
	return percent(amount, pct).Round(2).InexactFloat64()
}

func percent(amount, pct float64) decimal.Decimal {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromFloat(pct)).Div(hundred)
}

// Parse reads a base-10 amount such as "12.50", "12." or ".50".
func Parse(s string) (float64, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), ".")
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}
