// Package money keeps dollar arithmetic on decimals so per-ingredient costs
// sum without float drift.
package money

import "github.com/shopspring/decimal"

// RoundCents rounds a dollar amount to two decimal places.
func RoundCents(amount float64) float64 {
	f, _ := decimal.NewFromFloat(amount).Round(2).Float64()
	return f
}

// Sum adds dollar amounts and rounds the total to cents.
func Sum(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	f, _ := total.Round(2).Float64()
	return f
}

// Format renders a dollar amount as a string with two decimals, e.g. "7.99".
func Format(amount float64) string {
	return decimal.NewFromFloat(amount).Round(2).StringFixed(2)
}
