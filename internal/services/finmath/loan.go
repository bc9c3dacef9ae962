package finmath

import (
	"math"

	"github.com/shopspring/decimal"

	"finplan/internal/models"
)

// PayoffSummary describes how a loan is retired at a fixed monthly payment
type PayoffSummary struct {
	MonthsToPayoff      int             `json:"months_to_payoff"`
	ExactMonths         decimal.Decimal `json:"exact_months"`
	TotalInterest       decimal.Decimal `json:"total_interest"`
	TotalPaid           decimal.Decimal `json:"total_paid"`
	DailyInterestCost   decimal.Decimal `json:"daily_interest_cost"`
	MonthlyInterestCost decimal.Decimal `json:"monthly_interest_cost"`
}

// PayoffComparison contrasts a minimum and an accelerated payment plan
type PayoffComparison struct {
	Minimum              PayoffSummary   `json:"minimum"`
	Accelerated          PayoffSummary   `json:"accelerated"`
	InterestSaved        decimal.Decimal `json:"interest_saved"`
	MonthsSaved          int             `json:"months_saved"`
	YearsSaved           decimal.Decimal `json:"years_saved"`
	ReturnOnExtraPayment decimal.Decimal `json:"return_on_extra_payment"` // % of the extra money paid in
}

var oneCent = decimal.New(1, -2)

// LoanPayoff computes the payoff timeline of a loan.
// n = -ln(1 - B*r/P) / ln(1 + r), or B/P when the rate is zero
func LoanPayoff(balance, annualRatePct, monthlyPayment decimal.Decimal) (PayoffSummary, error) {
	if !balance.IsPositive() {
		return PayoffSummary{}, inputError(ReasonNonPositiveBalance, "balance", balance)
	}
	if annualRatePct.IsNegative() {
		return PayoffSummary{}, inputError(ReasonNegativeRate, "interest_rate", annualRatePct)
	}
	if !monthlyPayment.IsPositive() {
		return PayoffSummary{}, inputError(ReasonNonPositivePayment, "monthly_payment", monthlyPayment)
	}

	r := models.MonthlyRate(annualRatePct)
	monthlyInterest := balance.Mul(r)

	var exact decimal.Decimal
	if r.IsZero() {
		exact = balance.Div(monthlyPayment)
	} else {
		if monthlyPayment.LessThanOrEqual(monthlyInterest) {
			err := inputError(ReasonInsufficientPayment, "monthly_payment", monthlyPayment)
			err.Minimum = models.Ptr(models.Cents(monthlyInterest).Add(oneCent))
			return PayoffSummary{}, err
		}
		ratio := monthlyInterest.Div(monthlyPayment).InexactFloat64()
		n := -math.Log(1-ratio) / math.Log(1+r.InexactFloat64())
		exact = decimal.NewFromFloat(n)
	}
	exact = exact.Round(4)

	totalPaid := monthlyPayment.Mul(exact)
	return PayoffSummary{
		MonthsToPayoff:      int(exact.Ceil().IntPart()),
		ExactMonths:         exact,
		TotalInterest:       models.Cents(models.NonNegative(totalPaid.Sub(balance))),
		TotalPaid:           models.Cents(totalPaid),
		DailyInterestCost:   models.Cents(balance.Mul(models.Percent(annualRatePct)).Div(models.DaysInYear)),
		MonthlyInterestCost: models.Cents(monthlyInterest),
	}, nil
}

// ComparePayoffStrategies runs LoanPayoff for both payments and reports the difference
func ComparePayoffStrategies(balance, annualRatePct, minPayment, acceleratedPayment decimal.Decimal) (PayoffComparison, error) {
	minimum, err := LoanPayoff(balance, annualRatePct, minPayment)
	if err != nil {
		return PayoffComparison{}, err
	}
	accelerated, err := LoanPayoff(balance, annualRatePct, acceleratedPayment)
	if err != nil {
		return PayoffComparison{}, err
	}

	cmp := PayoffComparison{
		Minimum:       minimum,
		Accelerated:   accelerated,
		InterestSaved: minimum.TotalInterest.Sub(accelerated.TotalInterest),
		MonthsSaved:   minimum.MonthsToPayoff - accelerated.MonthsToPayoff,
	}
	cmp.YearsSaved = decimal.NewFromInt(int64(cmp.MonthsSaved)).Div(models.Twelve).Round(1)

	extra := acceleratedPayment.Sub(minPayment)
	if extra.IsPositive() {
		extraPaid := extra.Mul(accelerated.ExactMonths)
		if extraPaid.IsPositive() {
			cmp.ReturnOnExtraPayment = cmp.InterestSaved.Div(extraPaid).Mul(models.Hundred).Round(2)
		}
	}
	return cmp, nil
}
