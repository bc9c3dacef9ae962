package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// GoalCategory represents the kind of financial goal
type GoalCategory string

const (
	CategoryRetirement    GoalCategory = "retirement"
	CategoryRealEstate    GoalCategory = "real_estate"
	CategoryEducation     GoalCategory = "education"
	CategoryEmergencyFund GoalCategory = "emergency_fund"
	CategoryDebtPayoff    GoalCategory = "debt_payoff"
	CategoryBusiness      GoalCategory = "business"
	CategoryVacation      GoalCategory = "vacation"
	CategoryInvestment    GoalCategory = "investment"
	CategoryCustom        GoalCategory = "custom"
)

// Categories lists every known goal category
var Categories = []GoalCategory{
	CategoryRetirement,
	CategoryRealEstate,
	CategoryEducation,
	CategoryEmergencyFund,
	CategoryDebtPayoff,
	CategoryBusiness,
	CategoryVacation,
	CategoryInvestment,
	CategoryCustom,
}

// IsValid reports whether c is one of the known categories
func (c GoalCategory) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// GoalStatus represents where a goal is in its lifecycle
type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalPaused    GoalStatus = "paused"
	GoalCompleted GoalStatus = "completed"
	GoalAbandoned GoalStatus = "abandoned"
)

// Priority bounds: 1 is the most important goal, 10 the least
const (
	HighestPriority = 1
	LowestPriority  = 10
)

// GoalParameters holds category-specific settings
type GoalParameters struct {
	DownPaymentPercent    *decimal.Decimal `json:"down_payment_percent,omitempty"`    // real_estate only, e.g. 20
	ExpectedReturnPercent *decimal.Decimal `json:"expected_return_percent,omitempty"` // informational
}

// Goal is a single financial goal supplied by the caller. The engine never mutates it.
type Goal struct {
	ID            string          `json:"id"`
	Category      GoalCategory    `json:"category"`
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	TargetDate    time.Time       `json:"target_date"`
	Priority      int             `json:"priority"` // 1 = highest .. 10 = lowest
	Status        GoalStatus      `json:"status,omitempty"`
	Parameters    GoalParameters  `json:"parameters"`
}

// Validate checks the goal's invariants and reports every violation
func (g Goal) Validate() error {
	var errs []error
	if g.ID == "" {
		errs = append(errs, errors.New("goal id is required"))
	}
	if !g.Category.IsValid() {
		errs = append(errs, fmt.Errorf("unknown goal category %q", g.Category))
	}
	if !g.TargetAmount.IsPositive() {
		errs = append(errs, fmt.Errorf("target amount must be positive, got %s", g.TargetAmount))
	}
	if g.CurrentAmount.IsNegative() {
		errs = append(errs, fmt.Errorf("current amount must not be negative, got %s", g.CurrentAmount))
	}
	if g.Priority < HighestPriority || g.Priority > LowestPriority {
		errs = append(errs, fmt.Errorf("priority must be between %d and %d, got %d", HighestPriority, LowestPriority, g.Priority))
	}
	if g.TargetDate.IsZero() {
		errs = append(errs, errors.New("target date is required"))
	}
	if p := g.Parameters.DownPaymentPercent; p != nil && (p.IsNegative() || p.GreaterThan(Hundred)) {
		errs = append(errs, fmt.Errorf("down payment percent must be within 0..100, got %s", p))
	}
	return errors.Join(errs...)
}

// AmountNeeded returns the capital the goal requires. Real estate goals with a
// configured down payment only need the down payment portion of the target.
func (g Goal) AmountNeeded() decimal.Decimal {
	if g.Category == CategoryRealEstate && g.Parameters.DownPaymentPercent != nil {
		return g.TargetAmount.Mul(*g.Parameters.DownPaymentPercent).Div(Hundred)
	}
	return g.TargetAmount
}

// RemainingNeeded returns the amount still to save, never negative
func (g Goal) RemainingNeeded() decimal.Decimal {
	return NonNegative(g.AmountNeeded().Sub(g.CurrentAmount))
}

// GoalFeasibility is the per-goal entry of an analysis report
type GoalFeasibility struct {
	GoalID          string          `json:"goal_id"`
	Name            string          `json:"name"`
	Category        GoalCategory    `json:"category"`
	Score           float64         `json:"score"` // 0-100
	MonthlyRequired decimal.Decimal `json:"monthly_required"`
	MonthsRemaining decimal.Decimal `json:"months_remaining"`
	AmountNeeded    decimal.Decimal `json:"amount_needed"`
	RiskAligned     bool            `json:"risk_aligned"`
}

// GoalFailure records a goal that could not be analyzed
type GoalFailure struct {
	GoalID string `json:"goal_id"`
	Name   string `json:"name,omitempty"`
	Reason string `json:"reason"`
}
