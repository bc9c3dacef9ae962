// Package intelligence sequences the planning components into a single goal
// analysis report.
package intelligence

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"finplan/internal/logging"
	"finplan/internal/models"
	"finplan/internal/services/conflicts"
	"finplan/internal/services/feasibility"
	"finplan/internal/services/montecarlo"
	"finplan/internal/services/recommend"
	"finplan/internal/services/scenarios"
)

// TrajectoryYears is the horizon of the linear net worth projection
const TrajectoryYears = 20

// Conflict penalties subtracted from the average feasibility score
var severityPenalty = map[models.Severity]float64{
	models.SeverityCritical: 25,
	models.SeverityModerate: 10,
	models.SeverityMinor:    5,
}

// Options configures an orchestrator
type Options struct {
	Now                  func() time.Time
	SimulateScenarios    bool
	SimulationIterations int   // per scenario; zero uses the simulator default
	Seed                 int64 // zero seeds from the clock
	MarketMortgageRate   decimal.Decimal
	Workers              int
	BatchSize            int
}

// Orchestrator owns one instance of every planning component
type Orchestrator struct {
	log        *logrus.Entry
	scorer     *feasibility.Scorer
	detector   *conflicts.Detector
	generator  *scenarios.Generator
	simulator  *montecarlo.Simulator
	engine     *recommend.Engine
	simulate   bool
	iterations int
	seed       int64
}

// New wires the planning components together
func New(log *logrus.Logger, opts Options) *Orchestrator {
	log = logging.OrDiscard(log)
	scorer := feasibility.New(opts.Now)
	return &Orchestrator{
		log:       logging.Component(log, logging.ComponentIntelligence),
		scorer:    scorer,
		detector:  conflicts.New(scorer),
		generator: scenarios.New(),
		simulator: montecarlo.New(log, montecarlo.Options{
			Workers:   opts.Workers,
			BatchSize: opts.BatchSize,
		}),
		engine: recommend.New(log, recommend.Options{
			MarketMortgageRate: opts.MarketMortgageRate,
			Now:                scorer.Now,
		}),
		simulate:   opts.SimulateScenarios,
		iterations: opts.SimulationIterations,
		seed:       opts.Seed,
	}
}

// Simulator exposes the Monte Carlo simulator for direct scenario runs
func (o *Orchestrator) Simulator() *montecarlo.Simulator {
	return o.simulator
}

// Analyze builds the goal analysis report. Goals that fail validation are
// recorded in the report and left out of the rest of the analysis; invalid
// advisor sections are dropped with a warning. The only error is ctx's.
func (o *Orchestrator) Analyze(ctx context.Context, goals []models.Goal, state models.FinancialState, prefs models.UserPreferences, advisor *models.AdvisorData) (*models.GoalAnalysisReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	state = state.Normalized()

	report := &models.GoalAnalysisReport{
		GeneratedAt: o.scorer.Now(),
		Goals:       []models.GoalFeasibility{},
	}
	if err := state.Validate(); err != nil {
		o.log.WithField(logging.FieldError, err).Warn("financial state has invalid values")
		report.Warnings = append(report.Warnings, "financial state: "+err.Error())
	}

	valid := make([]models.Goal, 0, len(goals))
	for _, g := range goals {
		entry, err := o.scorer.Evaluate(g, state, prefs.RiskTolerance)
		if err != nil {
			o.log.WithFields(logrus.Fields{
				logging.FieldGoalID: g.ID,
				logging.FieldError:  err,
			}).Warn("skipping goal")
			report.Failures = append(report.Failures, models.GoalFailure{
				GoalID: g.ID,
				Name:   g.Name,
				Reason: err.Error(),
			})
			continue
		}
		valid = append(valid, g)
		report.Goals = append(report.Goals, entry)
	}

	report.Gaps = o.Gaps(valid, state)

	report.Conflicts = o.detector.Detect(valid, state)
	if report.Conflicts == nil {
		report.Conflicts = []models.Conflict{}
	}

	report.Scenarios = o.generator.Generate(valid, state, prefs)
	if o.simulate {
		if err := o.simulateScenarios(ctx, report.Scenarios, valid, state); err != nil {
			return nil, err
		}
	}

	report.OverallScore = OverallScore(report.Goals, report.Conflicts)
	report.SuccessProbability = successProbability(report)

	var sanitized *models.AdvisorData
	if advisor != nil {
		clean, problems := advisor.Sanitized()
		for _, p := range problems {
			o.log.WithField(logging.FieldError, p).Warn("dropping advisor section")
			report.Warnings = append(report.Warnings, p.Error())
		}
		sanitized = &clean
	}
	report.Recommendations = o.engine.Recommend(valid, state, prefs, report.Conflicts, sanitized)

	o.log.WithFields(logrus.Fields{
		"goals":                 len(report.Goals),
		"failures":              len(report.Failures),
		logging.FieldConflicts:  len(report.Conflicts),
		"overall_score":         report.OverallScore,
		logging.FieldDurationMs: time.Since(start).Milliseconds(),
	}).Info("goal analysis complete")
	return report, nil
}

// Gaps compares what the goals need with a linear projection of net worth
func (o *Orchestrator) Gaps(goals []models.Goal, state models.FinancialState) models.GapAnalysis {
	adjustedTarget := models.Zero
	monthlyNeed := models.Zero
	for _, g := range goals {
		adjustedTarget = adjustedTarget.Add(g.AmountNeeded())
		monthlyNeed = monthlyNeed.Add(o.scorer.MonthlyRequirement(g, state))
	}
	trajectory := state.NetWorth.Add(state.MonthlySurplus.Mul(models.Twelve).Mul(decimal.NewFromInt(TrajectoryYears)))

	return models.GapAnalysis{
		MonthlyShortfall:   models.Cents(monthlyNeed.Sub(state.MonthlySurplus)),
		TotalCapitalNeeded: models.Cents(adjustedTarget),
		CurrentTrajectory:  models.Cents(trajectory),
		GapAmount:          models.Cents(models.NonNegative(adjustedTarget.Sub(trajectory))),
	}
}

// OverallScore averages the goal scores and subtracts the conflict penalty,
// clamped to 0..100. No goals scores 0.
func OverallScore(goals []models.GoalFeasibility, found []models.Conflict) float64 {
	if len(goals) == 0 {
		return 0
	}
	sum := 0.0
	for _, g := range goals {
		sum += g.Score
	}
	score := sum / float64(len(goals))
	for _, c := range found {
		score -= severityPenalty[c.Severity]
	}
	return models.Score(decimal.NewFromFloat(min(100, max(0, score))))
}

// simulateScenarios attaches a Monte Carlo result to every scenario. Each
// scenario draws from a fresh generator with the same seed so their results
// are directly comparable. A failed run leaves its scenario without a result.
func (o *Orchestrator) simulateScenarios(ctx context.Context, list []models.Scenario, goals []models.Goal, state models.FinancialState) error {
	seed := o.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	for i := range list {
		result, err := o.simulator.Simulate(ctx, list[i], goals, state, o.iterations, rand.New(rand.NewSource(seed)))
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return fmt.Errorf("simulate %s: %w", list[i].ID, ctxErr)
			}
			o.log.WithFields(logrus.Fields{
				logging.FieldScenario: list[i].ID,
				logging.FieldError:    err,
			}).Warn("scenario simulation failed")
			continue
		}
		list[i].Simulation = &result
	}
	return nil
}

func successProbability(report *models.GoalAnalysisReport) float64 {
	for _, s := range report.Scenarios {
		if s.IsRecommended && s.Simulation != nil {
			return s.Simulation.SuccessRate
		}
	}
	return report.OverallScore / 100
}
