package lifecycle

import "github.com/shopspring/decimal"

// MaxDueAmount is the largest value numeric(6,2) can hold.
var MaxDueAmount = decimal.RequireFromString("9999.99")

// NormalizeDueAmount clamps negatives to zero, rounds half away from zero to
// cents and caps at MaxDueAmount.
func NormalizeDueAmount(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	d = d.Round(2)
	if d.GreaterThan(MaxDueAmount) {
		return MaxDueAmount
	}
	return d
}
