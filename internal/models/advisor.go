package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Debt represents a single outstanding debt
type Debt struct {
	Description     string          `json:"description"`
	Balance         decimal.Decimal `json:"balance"`
	InterestRate    decimal.Decimal `json:"interest_rate"` // Annual %, e.g. 19.99
	MinimumPayment  decimal.Decimal `json:"minimum_payment"`
	TermMonths      *int            `json:"term_months,omitempty"`
	RemainingMonths *int            `json:"remaining_months,omitempty"`
	StartDate       *time.Time      `json:"start_date,omitempty"`
}

// MortgageFacts describes the user's mortgage
type MortgageFacts struct {
	Balance         decimal.Decimal `json:"balance"`
	InterestRate    decimal.Decimal `json:"interest_rate"` // Annual %
	MonthlyPayment  decimal.Decimal `json:"monthly_payment"`
	RemainingMonths int             `json:"remaining_months"`
	ExtraPayment    decimal.Decimal `json:"extra_payment"` // Extra monthly capacity, 0 if none
}

// RetirementFacts describes an employer retirement account
type RetirementFacts struct {
	AnnualSalary         decimal.Decimal `json:"annual_salary"`
	ContributionPercent  decimal.Decimal `json:"contribution_percent"`   // % of salary contributed
	EmployerMatchPercent decimal.Decimal `json:"employer_match_percent"` // % of salary the employer matches up to
	EmployerMatchRate    decimal.Decimal `json:"employer_match_rate"`    // % of each matched dollar, e.g. 100 or 50
	CurrentBalance       decimal.Decimal `json:"current_balance"`
	CurrentAge           int             `json:"current_age,omitempty"`
	RetirementAge        int             `json:"retirement_age,omitempty"`
	MarginalTaxRate      decimal.Decimal `json:"marginal_tax_rate"` // %
}

// InvestmentFeeFacts describes the fees paid on an investment portfolio
type InvestmentFeeFacts struct {
	PortfolioValue decimal.Decimal `json:"portfolio_value"`
	ExpenseRatio   decimal.Decimal `json:"expense_ratio"`   // percentage points, e.g. 0.85
	ExpectedReturn decimal.Decimal `json:"expected_return"` // Annual %, 0 for the default
}

// Subscription is a recurring charge
type Subscription struct {
	Name        string          `json:"name"`
	MonthlyCost decimal.Decimal `json:"monthly_cost"`
	LastUsed    *time.Time      `json:"last_used,omitempty"`
}

// SubscriptionFacts lists the user's subscriptions
type SubscriptionFacts struct {
	Items []Subscription `json:"items"`
}

// AdvisorData bundles optional domain facts assembled by the caller.
// Each section is independent; a nil section is simply not analyzed.
type AdvisorData struct {
	Mortgage      *MortgageFacts      `json:"mortgage,omitempty"`
	Retirement    *RetirementFacts    `json:"retirement,omitempty"`
	Investments   *InvestmentFeeFacts `json:"investments,omitempty"`
	Subscriptions *SubscriptionFacts  `json:"subscriptions,omitempty"`
	Debts         []Debt              `json:"debts,omitempty"`
}

// Validate checks the mortgage section
func (m MortgageFacts) Validate() error {
	var errs []error
	if !m.Balance.IsPositive() {
		errs = append(errs, fmt.Errorf("mortgage balance must be positive, got %s", m.Balance))
	}
	if m.InterestRate.IsNegative() {
		errs = append(errs, fmt.Errorf("mortgage rate must not be negative, got %s", m.InterestRate))
	}
	if !m.MonthlyPayment.IsPositive() {
		errs = append(errs, fmt.Errorf("mortgage payment must be positive, got %s", m.MonthlyPayment))
	}
	if m.RemainingMonths < 0 {
		errs = append(errs, fmt.Errorf("mortgage remaining months must not be negative, got %d", m.RemainingMonths))
	}
	if m.ExtraPayment.IsNegative() {
		errs = append(errs, fmt.Errorf("mortgage extra payment must not be negative, got %s", m.ExtraPayment))
	}
	return errors.Join(errs...)
}

// Validate checks the retirement section
func (r RetirementFacts) Validate() error {
	var errs []error
	if !r.AnnualSalary.IsPositive() {
		errs = append(errs, fmt.Errorf("annual salary must be positive, got %s", r.AnnualSalary))
	}
	percents := []struct {
		name  string
		value decimal.Decimal
	}{
		{"contribution percent", r.ContributionPercent},
		{"employer match percent", r.EmployerMatchPercent},
		{"employer match rate", r.EmployerMatchRate},
		{"marginal tax rate", r.MarginalTaxRate},
	}
	for _, p := range percents {
		if p.value.IsNegative() || p.value.GreaterThan(Hundred) {
			errs = append(errs, fmt.Errorf("%s must be within 0..100, got %s", p.name, p.value))
		}
	}
	if r.CurrentBalance.IsNegative() {
		errs = append(errs, fmt.Errorf("retirement balance must not be negative, got %s", r.CurrentBalance))
	}
	if r.CurrentAge < 0 || r.RetirementAge < 0 {
		errs = append(errs, errors.New("ages must not be negative"))
	}
	return errors.Join(errs...)
}

// Validate checks the investment fee section
func (i InvestmentFeeFacts) Validate() error {
	var errs []error
	if !i.PortfolioValue.IsPositive() {
		errs = append(errs, fmt.Errorf("portfolio value must be positive, got %s", i.PortfolioValue))
	}
	if i.ExpenseRatio.IsNegative() {
		errs = append(errs, fmt.Errorf("expense ratio must not be negative, got %s", i.ExpenseRatio))
	}
	return errors.Join(errs...)
}

// Validate checks every subscription
func (s SubscriptionFacts) Validate() error {
	var errs []error
	for i, item := range s.Items {
		if item.Name == "" {
			errs = append(errs, fmt.Errorf("subscription %d has no name", i))
		}
		if item.MonthlyCost.IsNegative() {
			errs = append(errs, fmt.Errorf("subscription %q has a negative cost", item.Name))
		}
	}
	return errors.Join(errs...)
}

// Sanitized returns a copy of the bundle with every invalid section removed,
// along with the problems found. Debts are filtered later by the avalanche.
func (a AdvisorData) Sanitized() (AdvisorData, []error) {
	var problems []error
	out := a
	if a.Mortgage != nil {
		if err := a.Mortgage.Validate(); err != nil {
			problems = append(problems, fmt.Errorf("mortgage: %w", err))
			out.Mortgage = nil
		}
	}
	if a.Retirement != nil {
		if err := a.Retirement.Validate(); err != nil {
			problems = append(problems, fmt.Errorf("retirement: %w", err))
			out.Retirement = nil
		}
	}
	if a.Investments != nil {
		if err := a.Investments.Validate(); err != nil {
			problems = append(problems, fmt.Errorf("investments: %w", err))
			out.Investments = nil
		}
	}
	if a.Subscriptions != nil {
		if err := a.Subscriptions.Validate(); err != nil {
			problems = append(problems, fmt.Errorf("subscriptions: %w", err))
			out.Subscriptions = nil
		}
	}
	return out, problems
}

// Validate reports every invalid section at once
func (a AdvisorData) Validate() error {
	_, problems := a.Sanitized()
	return errors.Join(problems...)
}
