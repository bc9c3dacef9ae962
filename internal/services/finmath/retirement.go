package finmath

import (
	"github.com/shopspring/decimal"

	"finplan/internal/models"
)

// SafeWithdrawalRate is the 4% rule, as a percentage
var SafeWithdrawalRate = decimal.NewFromInt(4)

// RetirementOutlook is a deterministic projection of retirement savings
type RetirementOutlook struct {
	YearsToRetirement    int             `json:"years_to_retirement"`
	ProjectedBalance     decimal.Decimal `json:"projected_balance"`
	TotalContributed     decimal.Decimal `json:"total_contributed"`
	InvestmentGains      decimal.Decimal `json:"investment_gains"`
	SafeAnnualWithdrawal decimal.Decimal `json:"safe_annual_withdrawal"`
	SafeMonthlyIncome    decimal.Decimal `json:"safe_monthly_income"`
}

// RetirementProjection compounds current savings and a monthly contribution
// until retirement. A zero expected return uses the 7% default.
// FV = S * (1 + r)^n + C * ((1 + r)^n - 1) / r
func RetirementProjection(currentAge, retirementAge int, currentSavings, monthlyContribution, expectedReturnPct decimal.Decimal) (RetirementOutlook, error) {
	if currentAge <= 0 {
		return RetirementOutlook{}, inputError(ReasonInvalidAge, "current_age", decimal.NewFromInt(int64(currentAge)))
	}
	if retirementAge <= currentAge {
		err := inputError(ReasonAlreadyAtRetirement, "retirement_age", decimal.NewFromInt(int64(retirementAge)))
		err.Minimum = models.Ptr(decimal.NewFromInt(int64(currentAge + 1)))
		return RetirementOutlook{}, err
	}
	if currentSavings.IsNegative() {
		return RetirementOutlook{}, inputError(ReasonNegativeSavings, "current_savings", currentSavings)
	}
	if monthlyContribution.IsNegative() {
		return RetirementOutlook{}, inputError(ReasonNegativeSavings, "monthly_contribution", monthlyContribution)
	}
	if expectedReturnPct.IsZero() {
		expectedReturnPct = DefaultExpectedReturn
	}

	years := retirementAge - currentAge
	months := years * 12

	balance := FutureValue(currentSavings, expectedReturnPct, months).
		Add(FutureValueAnnuity(monthlyContribution, expectedReturnPct, months))
	contributed := currentSavings.Add(monthlyContribution.Mul(decimal.NewFromInt(int64(months))))
	withdrawal := balance.Mul(models.Percent(SafeWithdrawalRate))

	return RetirementOutlook{
		YearsToRetirement:    years,
		ProjectedBalance:     models.Cents(balance),
		TotalContributed:     models.Cents(contributed),
		InvestmentGains:      models.Cents(balance.Sub(contributed)),
		SafeAnnualWithdrawal: models.Cents(withdrawal),
		SafeMonthlyIncome:    models.Cents(withdrawal.Div(models.Twelve)),
	}, nil
}
