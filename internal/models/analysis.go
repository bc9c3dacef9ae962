package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConflictType classifies what two or more goals compete for
type ConflictType string

const (
	ConflictCashFlow  ConflictType = "cash_flow"
	ConflictTimeline  ConflictType = "timeline"
	ConflictRisk      ConflictType = "risk"
	ConflictLifestyle ConflictType = "lifestyle"
)

// Severity is the qualitative weight of a conflict
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityModerate Severity = "moderate"
	SeverityMinor    Severity = "minor"
)

// ResolutionKind names the action a resolution option proposes
type ResolutionKind string

const (
	ResolutionDelayGoal      ResolutionKind = "delay_goal"
	ResolutionIncreaseIncome ResolutionKind = "increase_income"
	ResolutionReduceTargets  ResolutionKind = "reduce_targets"
	ResolutionStaggerGoals   ResolutionKind = "stagger_goals"
)

// ResolutionOption is one way of resolving a conflict
type ResolutionOption struct {
	Kind            ResolutionKind  `json:"kind"`
	Description     string          `json:"description"`
	GoalID          string          `json:"goal_id,omitempty"`      // delay_goal only
	DelayMonths     int             `json:"delay_months,omitempty"` // delay_goal only
	Percent         float64         `json:"percent,omitempty"`      // increase_income, reduce_targets
	EstimatedImpact decimal.Decimal `json:"estimated_impact"`       // monthly amount freed or raised
}

// Conflict describes goals that cannot all be met as planned
type Conflict struct {
	ID              string             `json:"id"`
	Type            ConflictType       `json:"type"`
	Severity        Severity           `json:"severity"`
	Description     string             `json:"description"`
	AffectedGoals   []string           `json:"affected_goals"`
	Resolutions     []ResolutionOption `json:"resolutions"`
	ShortfallAmount *decimal.Decimal   `json:"shortfall_amount,omitempty"` // >= 0 when set
}

// GapAnalysis compares what the goals need with the current trajectory
type GapAnalysis struct {
	MonthlyShortfall   decimal.Decimal `json:"monthly_shortfall"` // negative means monthly headroom
	TotalCapitalNeeded decimal.Decimal `json:"total_capital_needed"`
	CurrentTrajectory  decimal.Decimal `json:"current_trajectory"`
	GapAmount          decimal.Decimal `json:"gap_amount"` // >= 0
}

// ChangeKind names a required change of a scenario
type ChangeKind string

const (
	ChangeTimelineAdjustment     ChangeKind = "timeline_adjustment"
	ChangeInvestmentOptimization ChangeKind = "investment_optimization"
	ChangeIncomeOptimization     ChangeKind = "income_optimization"
	ChangeExpenseOptimization    ChangeKind = "expense_optimization"
	ChangeGoalReduction          ChangeKind = "goal_reduction"
	ChangeTimelineExtension      ChangeKind = "timeline_extension"
	ChangeSafeInvestments        ChangeKind = "safe_investments"
	ChangeIncomeBoost            ChangeKind = "income_boost"
	ChangeHighGrowthInvesting    ChangeKind = "high_growth_investing"
	ChangeLifestyleCuts          ChangeKind = "lifestyle_cuts"
	ChangeSideIncome             ChangeKind = "side_income"
)

// RequiredChange is one step a scenario asks of the user
type RequiredChange struct {
	Kind        ChangeKind `json:"kind"`
	Description string     `json:"description"`
}

// Scenario is a named optimization strategy with its tradeoffs
type Scenario struct {
	ID                  string            `json:"id"`
	Name                string            `json:"name"`
	SuccessRate         float64           `json:"success_rate"`     // 0-1
	RiskScore           float64           `json:"risk_score"`       // 0-10
	LifestyleImpact     float64           `json:"lifestyle_impact"` // 0-1
	RequiredChanges     []RequiredChange  `json:"required_changes"`
	IsRecommended       bool              `json:"is_recommended"`
	PreferenceAlignment float64           `json:"preference_alignment"` // 0-1
	Simulation          *SimulationResult `json:"simulation,omitempty"`
}

// HasChange reports whether the scenario requires a change of the given kind
func (s Scenario) HasChange(kind ChangeKind) bool {
	for _, c := range s.RequiredChanges {
		if c.Kind == kind {
			return true
		}
	}
	return false
}

// Percentiles holds the final-value distribution bands
type Percentiles struct {
	P10 decimal.Decimal `json:"p10"`
	P25 decimal.Decimal `json:"p25"`
	P50 decimal.Decimal `json:"p50"`
	P75 decimal.Decimal `json:"p75"`
	P90 decimal.Decimal `json:"p90"`
}

// SimulationResult aggregates a Monte Carlo run
type SimulationResult struct {
	Iterations       int             `json:"iterations"`
	SuccessRate      float64         `json:"success_rate"` // 0-1
	Percentiles      Percentiles     `json:"percentiles"`
	Mean             decimal.Decimal `json:"mean"`
	StdDev           decimal.Decimal `json:"std_dev"`
	SuccessThreshold decimal.Decimal `json:"success_threshold"` // 90% of all goal targets
	RealMedian       decimal.Decimal `json:"real_median"`       // median deflated by simulated inflation
	Distribution     []DistBucket    `json:"distribution,omitempty"`
}

// DistBucket is one histogram bar of simulated final values
type DistBucket struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// ImpactTier grades how much a recommendation matters
type ImpactTier string

const (
	ImpactCritical ImpactTier = "CRITICAL"
	ImpactHigh     ImpactTier = "HIGH"
	ImpactMedium   ImpactTier = "MEDIUM"
	ImpactLow      ImpactTier = "LOW"
)

// PriorityTier buckets a priority score
type PriorityTier string

const (
	PriorityHigh   PriorityTier = "high"
	PriorityMedium PriorityTier = "medium"
	PriorityLow    PriorityTier = "low"
)

// PriorityScore captures impact x urgency / effort
type PriorityScore struct {
	Impact  float64      `json:"impact"`
	Urgency float64      `json:"urgency"`
	Effort  float64      `json:"effort"`
	Score   float64      `json:"score"`
	Tier    PriorityTier `json:"tier"`
}

// Recommendation is a prioritized, dollar-quantified action
type Recommendation struct {
	ID             string          `json:"id"`
	Category       string          `json:"category"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	ImpactTier     ImpactTier      `json:"impact_tier"`
	MonthlySavings decimal.Decimal `json:"monthly_savings"`
	AnnualSavings  decimal.Decimal `json:"annual_savings"`
	SuccessImpact  float64         `json:"success_impact"` // expected lift in success probability, 0-1
	Priority       *PriorityScore  `json:"priority,omitempty"`
	ActionItems    []string        `json:"action_items"`
}

// RecommendationSet groups recommendations by time horizon
type RecommendationSet struct {
	Immediate []Recommendation `json:"immediate"`
	ShortTerm []Recommendation `json:"short_term"`
	LongTerm  []Recommendation `json:"long_term"`
}

// All returns every recommendation in bucket order
func (r RecommendationSet) All() []Recommendation {
	all := make([]Recommendation, 0, len(r.Immediate)+len(r.ShortTerm)+len(r.LongTerm))
	all = append(all, r.Immediate...)
	all = append(all, r.ShortTerm...)
	return append(all, r.LongTerm...)
}

// GoalAnalysisReport is the engine's single output
type GoalAnalysisReport struct {
	GeneratedAt        time.Time         `json:"generated_at"`
	OverallScore       float64           `json:"overall_score"`       // 0-100
	SuccessProbability float64           `json:"success_probability"` // 0-1
	Goals              []GoalFeasibility `json:"goals"`
	Failures           []GoalFailure     `json:"failures,omitempty"`
	Gaps               GapAnalysis       `json:"gaps"`
	Conflicts          []Conflict        `json:"conflicts"`
	Scenarios          []Scenario        `json:"scenarios"`
	Recommendations    RecommendationSet `json:"recommendations"`
	Warnings           []string          `json:"warnings,omitempty"`
}

// AnalysisInput is the full set of inputs for one analysis, as exchanged with
// the storage and HTTP adapters.
type AnalysisInput struct {
	Goals       []Goal          `json:"goals"`
	State       FinancialState  `json:"state"`
	Preferences UserPreferences `json:"preferences"`
	AdvisorData *AdvisorData    `json:"advisor_data,omitempty"`
}
