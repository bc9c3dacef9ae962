package finmath

import (
	"github.com/shopspring/decimal"

	"finplan/internal/models"
)

// StandardMortgageMonths is the amortization term assumed for a mortgage payment
const StandardMortgageMonths = 360

var principalFloor = decimal.NewFromInt(50)

// Verdict names the better use of extra money
type Verdict string

const (
	VerdictPayMortgage Verdict = "pay_mortgage"
	VerdictInvest      Verdict = "invest"
)

// MortgageStrategy is the outcome of sending the extra payment to the mortgage
type MortgageStrategy struct {
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
	InterestSaved  decimal.Decimal `json:"interest_saved"`
	MonthsSaved    int             `json:"months_saved"`
	PayoffMonths   int             `json:"payoff_months"`
}

// InvestStrategy is the outcome of investing the extra payment instead
type InvestStrategy struct {
	Months         int             `json:"months"`
	Contributed    decimal.Decimal `json:"contributed"`
	FutureValue    decimal.Decimal `json:"future_value"`
	InvestmentGain decimal.Decimal `json:"investment_gain"`
}

// MortgageComparison weighs prepaying a mortgage against investing
type MortgageComparison struct {
	MortgageStrategy MortgageStrategy `json:"mortgage_strategy"`
	InvestStrategy   InvestStrategy   `json:"invest_strategy"`
	Recommendation   Verdict          `json:"recommendation"`
	AdvantageAmount  decimal.Decimal  `json:"advantage_amount"`
}

// MortgageVsInvest compares paying extraPayment toward the mortgage each month
// with investing it at expectedReturnPct. A zero expected return uses the 7% default.
// Both strategies run over the accelerated payoff horizon, so the same amount
// of money is committed either way.
func MortgageVsInvest(balance, annualRatePct, extraPayment, expectedReturnPct decimal.Decimal) (MortgageComparison, error) {
	if !extraPayment.IsPositive() {
		return MortgageComparison{}, inputError(ReasonNonPositivePayment, "extra_payment", extraPayment)
	}
	if !balance.IsPositive() {
		return MortgageComparison{}, inputError(ReasonNonPositiveBalance, "balance", balance)
	}
	if annualRatePct.IsNegative() {
		return MortgageComparison{}, inputError(ReasonNegativeRate, "interest_rate", annualRatePct)
	}
	if expectedReturnPct.IsZero() {
		expectedReturnPct = DefaultExpectedReturn
	}

	payment := AmortizedPayment(balance, annualRatePct, StandardMortgageMonths)
	floor := balance.Mul(models.MonthlyRate(annualRatePct)).Add(principalFloor)
	if payment.LessThan(floor) {
		payment = floor
	}
	payment = models.Cents(payment)

	cmp, err := ComparePayoffStrategies(balance, annualRatePct, payment, payment.Add(extraPayment))
	if err != nil {
		return MortgageComparison{}, err
	}

	months := cmp.Accelerated.MonthsToPayoff
	contributed := extraPayment.Mul(decimal.NewFromInt(int64(months)))
	fv := FutureValueAnnuity(extraPayment, expectedReturnPct, months)
	invest := InvestStrategy{
		Months:         months,
		Contributed:    models.Cents(contributed),
		FutureValue:    models.Cents(fv),
		InvestmentGain: models.Cents(fv.Sub(contributed)),
	}

	result := MortgageComparison{
		MortgageStrategy: MortgageStrategy{
			MonthlyPayment: payment,
			InterestSaved:  cmp.InterestSaved,
			MonthsSaved:    cmp.MonthsSaved,
			PayoffMonths:   months,
		},
		InvestStrategy: invest,
	}
	if invest.InvestmentGain.GreaterThan(cmp.InterestSaved) {
		result.Recommendation = VerdictInvest
		result.AdvantageAmount = invest.InvestmentGain.Sub(cmp.InterestSaved)
	} else {
		result.Recommendation = VerdictPayMortgage
		result.AdvantageAmount = cmp.InterestSaved.Sub(invest.InvestmentGain)
	}
	return result, nil
}
