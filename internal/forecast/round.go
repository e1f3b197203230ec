package forecast

import (
	"math"

	"github.com/shopspring/decimal"
)

// round2 rounds half away from zero at two decimals using the shortest decimal
// representation of v, so 1.005 rounds to 1.01. Non-finite values pass through.
func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// formatAmount renders an amount with exactly two decimals.
func formatAmount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "NaN"
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}
