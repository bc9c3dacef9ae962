package finmath

import (
	"github.com/shopspring/decimal"

	"finplan/internal/models"
)

// FundStatus grades an emergency fund
type FundStatus string

const (
	FundAdequate     FundStatus = "ADEQUATE"
	FundPartial      FundStatus = "PARTIAL"
	FundInsufficient FundStatus = "INSUFFICIENT"
)

// minimumCoverMonths is the floor for a PARTIAL fund
const minimumCoverMonths = 3

// RecommendedMonths returns the months of expenses to hold for an income stability tier
func RecommendedMonths(stability models.IncomeStability) int {
	switch stability {
	case models.IncomeStable:
		return 3
	case models.IncomeUncertain:
		return 12
	default:
		return 6
	}
}

// EmergencyFund describes how well savings cover monthly expenses
type EmergencyFund struct {
	CurrentMonthsCovered decimal.Decimal `json:"current_months_covered"`
	RecommendedMonths    int             `json:"recommended_months"`
	RecommendedAmount    decimal.Decimal `json:"recommended_amount"`
	Shortfall            decimal.Decimal `json:"shortfall"`
	Excess               decimal.Decimal `json:"excess"`
	Status               FundStatus      `json:"status"`
	MonthlyGap           decimal.Decimal `json:"monthly_gap"` // saving needed per month to close the shortfall in a year
}

// EmergencyFundAdequacy compares savings against the recommended reserve
func EmergencyFundAdequacy(monthlyExpenses, currentSavings decimal.Decimal, stability models.IncomeStability) (EmergencyFund, error) {
	if !monthlyExpenses.IsPositive() {
		return EmergencyFund{}, inputError(ReasonNonPositiveExpenses, "monthly_expenses", monthlyExpenses)
	}
	if currentSavings.IsNegative() {
		return EmergencyFund{}, inputError(ReasonNegativeSavings, "current_savings", currentSavings)
	}

	months := RecommendedMonths(stability)
	recommended := monthlyExpenses.Mul(decimal.NewFromInt(int64(months)))

	fund := EmergencyFund{
		CurrentMonthsCovered: currentSavings.Div(monthlyExpenses).Round(1),
		RecommendedMonths:    months,
		RecommendedAmount:    models.Cents(recommended),
		Shortfall:            models.Cents(models.NonNegative(recommended.Sub(currentSavings))),
		Excess:               models.Cents(models.NonNegative(currentSavings.Sub(recommended))),
	}

	switch {
	case currentSavings.GreaterThanOrEqual(recommended):
		fund.Status = FundAdequate
	case currentSavings.GreaterThanOrEqual(monthlyExpenses.Mul(decimal.NewFromInt(minimumCoverMonths))):
		fund.Status = FundPartial
	default:
		fund.Status = FundInsufficient
	}

	if fund.Shortfall.IsPositive() {
		fund.MonthlyGap = models.Cents(fund.Shortfall.Div(models.Twelve))
	}
	return fund, nil
}
