package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// QUANTITIES - Decimal helpers for percentages and averages
// =============================================================================
// All computed quantities (weights, completion percentages, headcount
// averages) are decimal.Decimal. The engines are display-critical and must
// be bit-identical across runs; float64 accumulation is not.

var (
	// Hundred is the percentage scale factor.
	Hundred = decimal.NewFromInt(100)
)

// Round1 rounds to one decimal place, the precision used for headcount
// averages in weekly and monthly summaries.
func Round1(d decimal.Decimal) decimal.Decimal {
	return d.Round(1)
}

// Ratio returns numerator/denominator*100 clamped to [0, 100].
// Used for the contractual progress line, which by definition never leaves
// the percentage range.
func Ratio(numerator, denominator decimal.Decimal) decimal.Decimal {
	if denominator.IsZero() {
		return decimal.Zero
	}
	pct := numerator.Div(denominator).Mul(Hundred)
	return ClampPercent(pct)
}

// ClampPercent clamps a value to the [0, 100] percentage range.
func ClampPercent(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(Hundred) {
		return Hundred
	}
	return d
}

// DecimalPtr returns a pointer to d. The curve outputs use nil pointers to
// mean "no data for this day", which is distinct from a genuine zero.
func DecimalPtr(d decimal.Decimal) *decimal.Decimal { return &d }
