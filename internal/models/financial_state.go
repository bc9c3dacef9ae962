package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// FinancialState is an immutable snapshot of the user's finances for one analysis
type FinancialState struct {
	NetWorth         decimal.Decimal `json:"net_worth"`
	MonthlyIncome    decimal.Decimal `json:"monthly_income"`
	MonthlyExpenses  decimal.Decimal `json:"monthly_expenses"`
	MonthlySurplus   decimal.Decimal `json:"monthly_surplus"` // income - expenses
	LiquidAssets     decimal.Decimal `json:"liquid_assets"`
	InvestmentAssets decimal.Decimal `json:"investment_assets"`
	RiskProfile      int             `json:"risk_profile"` // 1-10, 0 when unknown
}

// Normalized returns a copy whose surplus is derived from income and expenses
// whenever either of them is supplied.
func (s FinancialState) Normalized() FinancialState {
	if !s.MonthlyIncome.IsZero() || !s.MonthlyExpenses.IsZero() {
		s.MonthlySurplus = s.MonthlyIncome.Sub(s.MonthlyExpenses)
	}
	return s
}

// Validate checks the snapshot for impossible values
func (s FinancialState) Validate() error {
	var errs []error
	check := func(name string, v decimal.Decimal) {
		if v.IsNegative() {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %s", name, v))
		}
	}
	check("monthly income", s.MonthlyIncome)
	check("monthly expenses", s.MonthlyExpenses)
	check("liquid assets", s.LiquidAssets)
	check("investment assets", s.InvestmentAssets)
	if s.RiskProfile < 0 || s.RiskProfile > 10 {
		errs = append(errs, fmt.Errorf("risk profile must be within 1..10, got %d", s.RiskProfile))
	}
	return errors.Join(errs...)
}

// RiskTolerance is the user's stated appetite for risk
type RiskTolerance string

const (
	RiskConservative RiskTolerance = "conservative"
	RiskModerate     RiskTolerance = "moderate"
	RiskAggressive   RiskTolerance = "aggressive"
)

// IncomeStability drives the emergency fund target
type IncomeStability string

const (
	IncomeStable    IncomeStability = "stable"
	IncomeVariable  IncomeStability = "variable"
	IncomeUncertain IncomeStability = "uncertain"
)

// UserPreferences holds planning preferences for one analysis call
type UserPreferences struct {
	RiskTolerance        RiskTolerance   `json:"risk_tolerance"`
	IncomeStability      IncomeStability `json:"income_stability,omitempty"`
	TimeHorizonYears     int             `json:"time_horizon_years,omitempty"`
	PrioritizeDebtPayoff bool            `json:"prioritize_debt_payoff,omitempty"`
}
