// Package commission derives the fee a seller owes when an auction closes
// with a winning bid. The arithmetic runs in decimal so that rate multiplies
// do not accumulate float drift before rounding to cents.
package commission

import (
	"github.com/shopspring/decimal"
)

// DefaultRate is the platform commission on the winning bid.
const DefaultRate = 0.05

// Calculator computes commission amounts at a fixed rate.
type Calculator struct {
	rate decimal.Decimal
}

// NewCalculator builds a Calculator. A non-positive rate falls back to
// DefaultRate.
func NewCalculator(rate float64) Calculator {
	if rate <= 0 {
		rate = DefaultRate
	}
	return Calculator{rate: decimal.NewFromFloat(rate)}
}

// Compute returns the commission owed on a winning bid amount, rounded to
// two decimal places.
func (c Calculator) Compute(winningAmount float64) float64 {
	if winningAmount <= 0 {
		return 0
	}
	fee := decimal.NewFromFloat(winningAmount).Mul(c.rate).Round(2)
	out, _ := fee.Float64()
	return out
}
