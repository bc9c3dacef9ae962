package testutil

import (
	"time"

	"github.com/shopspring/decimal"

	"finplan/internal/models"
)

// Now is the fixed instant used by engine tests
var Now = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

// FixedNow returns a clock that always reports Now
func FixedNow() func() time.Time {
	return func() time.Time { return Now }
}

// MonthsFrom returns the instant a number of average 30.44-day months after from
func MonthsFrom(from time.Time, months float64) time.Time {
	return from.Add(time.Duration(months * 30.44 * 24 * float64(time.Hour)))
}

// D parses a decimal literal and panics on bad input
func D(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// SampleState returns a household with 2,000 of monthly surplus
func SampleState() models.FinancialState {
	return models.FinancialState{
		NetWorth:         D("50000"),
		MonthlyIncome:    D("8000"),
		MonthlyExpenses:  D("6000"),
		MonthlySurplus:   D("2000"),
		LiquidAssets:     D("20000"),
		InvestmentAssets: D("30000"),
		RiskProfile:      6,
	}
}

// SampleGoals returns three goals that together exceed the sample surplus
func SampleGoals() []models.Goal {
	return []models.Goal{
		{
			ID:            "house",
			Category:      models.CategoryRealEstate,
			Name:          "Starter home",
			TargetAmount:  D("400000"),
			CurrentAmount: D("20000"),
			TargetDate:    MonthsFrom(Now, 36),
			Priority:      1,
			Status:        models.GoalActive,
			Parameters:    models.GoalParameters{DownPaymentPercent: models.Ptr(D("20"))},
		},
		{
			ID:            "college",
			Category:      models.CategoryEducation,
			Name:          "College fund",
			TargetAmount:  D("60000"),
			CurrentAmount: D("5000"),
			TargetDate:    MonthsFrom(Now, 60),
			Priority:      2,
			Status:        models.GoalActive,
		},
		{
			ID:            "trip",
			Category:      models.CategoryVacation,
			Name:          "Japan trip",
			TargetAmount:  D("12000"),
			CurrentAmount: D("0"),
			TargetDate:    MonthsFrom(Now, 12),
			Priority:      5,
			Status:        models.GoalActive,
		},
	}
}
