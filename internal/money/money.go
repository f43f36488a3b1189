// Package money rounds and formats amounts for display.
package money

import "github.com/shopspring/decimal"

// Places is the number of fraction digits amounts are rounded to.
const Places = 2

// Round rounds v half away from zero to two decimal places.
func Round(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(Places).Float64()
	return f
}

// Format renders v with at most two and at least zero fraction digits
// ("200", "10.5", "1234.57").
func Format(v float64) string {
	return decimal.NewFromFloat(v).Round(Places).String()
}

// FormatRate renders a percentage rate the same way ("5", "7.25").
func FormatRate(rate float64) string {
	return decimal.NewFromFloat(rate).String()
}
