// Package scenarios builds the named optimization strategies offered with every analysis.
// The figures come from a fixed template table rather than the financial state.
package scenarios

import (
	"finplan/internal/models"
)

// Scenario ids
const (
	Balanced     = "balanced"
	Conservative = "conservative"
	Aggressive   = "aggressive"
)

// Template is the fixed definition of a scenario
type Template struct {
	ID              string
	Name            string
	SuccessRate     float64
	RiskScore       float64
	LifestyleImpact float64
	Posture         models.RiskTolerance
	Changes         []models.RequiredChange
}

// Templates lists every scenario in output order
var Templates = []Template{
	{
		ID:              Balanced,
		Name:            "Balanced Optimization",
		SuccessRate:     0.78,
		RiskScore:       6,
		LifestyleImpact: 0.92,
		Posture:         models.RiskModerate,
		Changes: []models.RequiredChange{
			{Kind: models.ChangeTimelineAdjustment, Description: "Move lower-priority target dates out where they collide"},
			{Kind: models.ChangeInvestmentOptimization, Description: "Shift savings into a diversified, low-cost allocation"},
			{Kind: models.ChangeIncomeOptimization, Description: "Capture raises and employer benefits before new spending"},
			{Kind: models.ChangeExpenseOptimization, Description: "Trim recurring expenses by roughly ten percent"},
		},
	},
	{
		ID:              Conservative,
		Name:            "Conservative Approach",
		SuccessRate:     0.68,
		RiskScore:       3,
		LifestyleImpact: 0.95,
		Posture:         models.RiskConservative,
		Changes: []models.RequiredChange{
			{Kind: models.ChangeGoalReduction, Description: "Reduce target amounts to what current savings support"},
			{Kind: models.ChangeTimelineExtension, Description: "Extend goal deadlines to lower monthly requirements"},
			{Kind: models.ChangeSafeInvestments, Description: "Keep savings in high-yield cash and short-term bonds"},
		},
	},
	{
		ID:              Aggressive,
		Name:            "Aggressive Growth",
		SuccessRate:     0.85,
		RiskScore:       9,
		LifestyleImpact: 0.75,
		Posture:         models.RiskAggressive,
		Changes: []models.RequiredChange{
			{Kind: models.ChangeIncomeBoost, Description: "Raise income by twenty percent through promotion or job change"},
			{Kind: models.ChangeHighGrowthInvesting, Description: "Invest surplus in a high-equity portfolio"},
			{Kind: models.ChangeLifestyleCuts, Description: "Cut discretionary spending substantially"},
			{Kind: models.ChangeSideIncome, Description: "Add a side income stream"},
		},
	},
}

// Lookup returns the template with the given id
func Lookup(id string) (Template, bool) {
	for _, t := range Templates {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}

// Scenario materializes the template for a user's risk tolerance
func (t Template) Scenario(tolerance models.RiskTolerance) models.Scenario {
	changes := make([]models.RequiredChange, len(t.Changes))
	copy(changes, t.Changes)
	return models.Scenario{
		ID:                  t.ID,
		Name:                t.Name,
		SuccessRate:         t.SuccessRate,
		RiskScore:           t.RiskScore,
		LifestyleImpact:     t.LifestyleImpact,
		RequiredChanges:     changes,
		IsRecommended:       t.ID == RecommendedID(tolerance),
		PreferenceAlignment: Alignment(t.Posture, tolerance),
	}
}

// RecommendedID picks the aggressive scenario for aggressive users and the balanced one otherwise
func RecommendedID(tolerance models.RiskTolerance) string {
	if tolerance == models.RiskAggressive {
		return Aggressive
	}
	return Balanced
}

func postureLevel(t models.RiskTolerance) int {
	switch t {
	case models.RiskConservative:
		return 0
	case models.RiskAggressive:
		return 2
	default:
		return 1
	}
}

// Alignment is 1 for a matching posture, 0.6 for a neighbouring one and 0.2 for the opposite
func Alignment(posture, tolerance models.RiskTolerance) float64 {
	diff := postureLevel(posture) - postureLevel(tolerance)
	switch diff {
	case 0:
		return 1.0
	case -1, 1:
		return 0.6
	default:
		return 0.2
	}
}

// Generator produces the scenario set for an analysis
type Generator struct{}

// New creates a scenario generator
func New() *Generator {
	return &Generator{}
}

// Generate returns exactly three scenarios with exactly one recommended.
// Goals and state are accepted for a future state-derived model and not read yet.
func (g *Generator) Generate(goals []models.Goal, state models.FinancialState, prefs models.UserPreferences) []models.Scenario {
	out := make([]models.Scenario, 0, len(Templates))
	for _, t := range Templates {
		out = append(out, t.Scenario(prefs.RiskTolerance))
	}
	return out
}
