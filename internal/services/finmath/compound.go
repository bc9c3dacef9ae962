// Package finmath implements the amortization, debt, emergency fund, mortgage
// and retirement math used by the planning engine. All amounts are decimals.
package finmath

import (
	"github.com/shopspring/decimal"

	"finplan/internal/models"
)

// precision bounds the digits kept while compounding so repeated
// multiplication does not grow the decimal without limit
const precision = 16

// DefaultExpectedReturn is the annual return assumed when none is given
var DefaultExpectedReturn = decimal.NewFromInt(7)

// growth returns (1 + rate)^periods
func growth(rate decimal.Decimal, periods int) decimal.Decimal {
	factor := models.One
	base := models.One.Add(rate)
	for i := 0; i < periods; i++ {
		factor = factor.Mul(base).Round(precision)
	}
	return factor
}

// AmortizedPayment returns the level monthly payment that retires balance in months
// P = B * r / (1 - (1 + r)^-n)
func AmortizedPayment(balance, annualRatePct decimal.Decimal, months int) decimal.Decimal {
	if months <= 0 || !balance.IsPositive() {
		return models.Zero
	}
	r := models.MonthlyRate(annualRatePct)
	if !r.IsPositive() {
		return balance.Div(decimal.NewFromInt(int64(months)))
	}
	g := growth(r, months)
	return balance.Mul(r).Mul(g).Div(g.Sub(models.One))
}

// FutureValue compounds a present amount monthly
// FV = PV * (1 + r)^n
func FutureValue(present, annualRatePct decimal.Decimal, months int) decimal.Decimal {
	if months <= 0 {
		return present
	}
	return present.Mul(growth(models.MonthlyRate(annualRatePct), months))
}

// FutureValueAnnuity returns the value of a monthly contribution stream
// FV = PMT * ((1 + r)^n - 1) / r
func FutureValueAnnuity(payment, annualRatePct decimal.Decimal, months int) decimal.Decimal {
	if months <= 0 || payment.IsZero() {
		return models.Zero
	}
	r := models.MonthlyRate(annualRatePct)
	if !r.IsPositive() {
		return payment.Mul(decimal.NewFromInt(int64(months)))
	}
	return payment.Mul(growth(r, months).Sub(models.One)).Div(r)
}
