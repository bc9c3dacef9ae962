package models

import "github.com/shopspring/decimal"

// Common decimal constants used across the engine
var (
	Zero       = decimal.Zero
	One        = decimal.NewFromInt(1)
	Twelve     = decimal.NewFromInt(12)
	Hundred    = decimal.NewFromInt(100)
	DaysInYear = decimal.NewFromInt(365)
)

// Cents rounds a monetary amount to whole cents
func Cents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// NonNegative clamps negative amounts to zero
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return Zero
	}
	return d
}

// Percent converts a percentage (7 for 7%) to a fraction (0.07)
func Percent(pct decimal.Decimal) decimal.Decimal {
	return pct.Div(Hundred)
}

// MonthlyRate converts an annual percentage rate to a monthly fraction
func MonthlyRate(annualPct decimal.Decimal) decimal.Decimal {
	return annualPct.Div(Hundred).Div(Twelve)
}

// Ptr returns a pointer to a copy of d, used for optional amounts
func Ptr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

// Score rounds a float score to two decimals
func Score(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
