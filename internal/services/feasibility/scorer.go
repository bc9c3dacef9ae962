// Package feasibility scores how achievable each goal is given the monthly surplus
package feasibility

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"finplan/internal/models"
)

// DaysPerMonth is the average month length used to convert dates into months
var DaysPerMonth = decimal.RequireFromString("30.44")

// NoSurplusScore is returned when there is no surplus to fund any goal
const NoSurplusScore = 10.0

const (
	maxScore     = 100.0
	maxTimeBonus = 20.0
	alignedRange = 2
)

// Category multipliers applied to the time bonus
var riskAdjustments = map[models.GoalCategory]float64{
	models.CategoryRetirement:    0.9,
	models.CategoryRealEstate:    1.0,
	models.CategoryEducation:     1.1,
	models.CategoryEmergencyFund: 1.2,
	models.CategoryBusiness:      0.8,
	models.CategoryVacation:      0.9,
}

// Risk each category calls for, on the 1-10 scale
var requiredRisk = map[models.GoalCategory]int{
	models.CategoryRetirement:    6,
	models.CategoryRealEstate:    4,
	models.CategoryEducation:     3,
	models.CategoryEmergencyFund: 2,
	models.CategoryVacation:      5,
	models.CategoryBusiness:      8,
	models.CategoryInvestment:    7,
}

// ToleranceScore maps a risk tolerance onto the 1-10 scale. Unknown values count as moderate.
func ToleranceScore(t models.RiskTolerance) int {
	switch t {
	case models.RiskConservative:
		return 3
	case models.RiskAggressive:
		return 9
	default:
		return 6
	}
}

// RequiredRisk returns the risk level a goal category calls for
func RequiredRisk(c models.GoalCategory) int {
	if r, ok := requiredRisk[c]; ok {
		return r
	}
	return 5
}

// Scorer computes per-goal monthly requirements and feasibility scores
type Scorer struct {
	now func() time.Time
}

// New creates a scorer reading the time from now; nil uses time.Now
func New(now func() time.Time) *Scorer {
	if now == nil {
		now = time.Now
	}
	return &Scorer{now: now}
}

// Now returns the scorer's current time
func (s *Scorer) Now() time.Time {
	return s.now()
}

// MonthsRemaining returns the months until the goal's target date, at least 1
func (s *Scorer) MonthsRemaining(goal models.Goal) decimal.Decimal {
	days := goal.TargetDate.Sub(s.now()).Hours() / 24
	months := decimal.NewFromFloat(days).Div(DaysPerMonth).Round(4)
	if months.LessThan(models.One) {
		return models.One
	}
	return months
}

// MonthlyRequirement returns what must be saved each month to reach the goal.
// Growth of money already saved is not modeled.
func (s *Scorer) MonthlyRequirement(goal models.Goal, state models.FinancialState) decimal.Decimal {
	return goal.RemainingNeeded().Div(s.MonthsRemaining(goal))
}

// Feasibility scores a goal between 0 and 100
func (s *Scorer) Feasibility(goal models.Goal, state models.FinancialState) float64 {
	surplus := state.MonthlySurplus
	if !surplus.IsPositive() {
		return NoSurplusScore
	}

	required := s.MonthlyRequirement(goal, state)
	base := maxScore
	if required.IsPositive() {
		base = min(maxScore, surplus.Mul(models.Hundred).Div(required).InexactFloat64())
	}

	months := s.MonthsRemaining(goal).InexactFloat64()
	timeBonus := min(maxTimeBonus, months/12*2)

	adjustment, ok := riskAdjustments[goal.Category]
	if !ok {
		adjustment = 1.0
	}

	score := max(0, min(maxScore, base+timeBonus*adjustment))
	return models.Score(decimal.NewFromFloat(score))
}

// RiskAligned reports whether the user's tolerance is within reach of what the goal calls for
func (s *Scorer) RiskAligned(goal models.Goal, tolerance models.RiskTolerance) bool {
	diff := ToleranceScore(tolerance) - RequiredRisk(goal.Category)
	if diff < 0 {
		diff = -diff
	}
	return diff <= alignedRange
}

// Evaluate validates a goal and builds its report entry
func (s *Scorer) Evaluate(goal models.Goal, state models.FinancialState, tolerance models.RiskTolerance) (models.GoalFeasibility, error) {
	if err := goal.Validate(); err != nil {
		return models.GoalFeasibility{}, fmt.Errorf("goal %q: %w", goal.ID, err)
	}

	return models.GoalFeasibility{
		GoalID:          goal.ID,
		Name:            goal.Name,
		Category:        goal.Category,
		Score:           s.Feasibility(goal, state),
		MonthlyRequired: models.Cents(s.MonthlyRequirement(goal, state)),
		MonthsRemaining: s.MonthsRemaining(goal).Round(2),
		AmountNeeded:    models.Cents(goal.AmountNeeded()),
		RiskAligned:     s.RiskAligned(goal, tolerance),
	}, nil
}
