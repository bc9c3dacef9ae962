// Package conflicts finds goals that compete for the same cash or the same year
package conflicts

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"finplan/internal/models"
	"finplan/internal/services/feasibility"
)

// Tunables for conflict detection
const (
	DelayMonths    = 18
	StaggerYears   = 3
	MaxIncomeRaise = 30.0 // percent
)

var (
	halfSurplus     = decimal.RequireFromString("0.5")
	delayCoverage   = decimal.RequireFromString("0.8")
	downPaymentRate = decimal.RequireFromString("0.2")
	timelineFactor  = decimal.RequireFromString("1.5")
)

// Detector finds cash-flow and timeline conflicts across goals
type Detector struct {
	scorer *feasibility.Scorer
}

// New creates a detector that sizes goals with scorer
func New(scorer *feasibility.Scorer) *Detector {
	return &Detector{scorer: scorer}
}

// Detect returns the cash-flow conflict, if any, followed by timeline conflicts by year
func (d *Detector) Detect(goals []models.Goal, state models.FinancialState) []models.Conflict {
	var out []models.Conflict
	if c := d.CashFlow(goals, state); c != nil {
		out = append(out, *c)
	}
	return append(out, d.Timelines(goals, state)...)
}

// CashFlow checks whether the goals' combined monthly requirement exceeds the surplus
func (d *Detector) CashFlow(goals []models.Goal, state models.FinancialState) *models.Conflict {
	if len(goals) == 0 {
		return nil
	}

	required := make([]decimal.Decimal, len(goals))
	total := models.Zero
	for i, g := range goals {
		required[i] = d.scorer.MonthlyRequirement(g, state)
		total = total.Add(required[i])
	}

	surplus := state.MonthlySurplus
	if total.LessThanOrEqual(surplus) {
		return nil
	}
	shortfall := total.Sub(surplus)

	severity := models.SeverityModerate
	if shortfall.GreaterThan(surplus.Mul(halfSurplus)) {
		severity = models.SeverityCritical
	}

	ids := make([]string, len(goals))
	for i, g := range goals {
		ids[i] = g.ID
	}

	return &models.Conflict{
		ID:       models.StableID("conflict", string(models.ConflictCashFlow)),
		Type:     models.ConflictCashFlow,
		Severity: severity,
		Description: fmt.Sprintf("Goals need %s per month but the surplus is %s, a shortfall of %s",
			models.Cents(total).StringFixed(2), models.Cents(surplus).StringFixed(2), models.Cents(shortfall).StringFixed(2)),
		AffectedGoals:   ids,
		Resolutions:     d.cashFlowResolutions(goals, required, total, shortfall, state),
		ShortfallAmount: models.Ptr(models.Cents(shortfall)),
	}
}

func (d *Detector) cashFlowResolutions(goals []models.Goal, required []decimal.Decimal, total, shortfall decimal.Decimal, state models.FinancialState) []models.ResolutionOption {
	var options []models.ResolutionOption

	// least important goal first
	order := make([]int, len(goals))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return goals[order[a]].Priority > goals[order[b]].Priority
	})
	threshold := shortfall.Mul(delayCoverage)
	for _, i := range order {
		if required[i].LessThan(threshold) {
			continue
		}
		g := goals[i]
		delayed := g
		delayed.TargetDate = g.TargetDate.AddDate(0, DelayMonths, 0)
		freed := required[i].Sub(d.scorer.MonthlyRequirement(delayed, state))
		options = append(options, models.ResolutionOption{
			Kind:            models.ResolutionDelayGoal,
			Description:     fmt.Sprintf("Delay %q by %d months", g.Name, DelayMonths),
			GoalID:          g.ID,
			DelayMonths:     DelayMonths,
			EstimatedImpact: models.Cents(freed),
		})
		break
	}

	if state.MonthlyIncome.IsPositive() {
		raise := shortfall.Div(state.MonthlyIncome).Mul(models.Hundred)
		if raise.LessThanOrEqual(decimal.NewFromFloat(MaxIncomeRaise)) {
			pct := raise.Round(1).InexactFloat64()
			options = append(options, models.ResolutionOption{
				Kind:            models.ResolutionIncreaseIncome,
				Description:     fmt.Sprintf("Increase monthly income by %.1f%%", pct),
				Percent:         pct,
				EstimatedImpact: models.Cents(shortfall),
			})
		}
	}

	if total.IsPositive() {
		reduction := decimal.Min(shortfall, total)
		pct := reduction.Div(total).Mul(models.Hundred).Round(1).InexactFloat64()
		options = append(options, models.ResolutionOption{
			Kind:            models.ResolutionReduceTargets,
			Description:     fmt.Sprintf("Reduce every goal's monthly contribution by %.1f%%", pct),
			Percent:         pct,
			EstimatedImpact: models.Cents(reduction),
		})
	}
	return options
}

// Timelines flags target years where several goals need more cash than can be saved by then
func (d *Detector) Timelines(goals []models.Goal, state models.FinancialState) []models.Conflict {
	byYear := make(map[int][]models.Goal)
	for _, g := range goals {
		byYear[g.TargetDate.Year()] = append(byYear[g.TargetDate.Year()], g)
	}
	years := make([]int, 0, len(byYear))
	for y, group := range byYear {
		if len(group) > 1 {
			years = append(years, y)
		}
	}
	sort.Ints(years)

	currentYear := d.scorer.Now().Year()
	var out []models.Conflict
	for _, year := range years {
		group := byYear[year]
		required := models.Zero
		ids := make([]string, len(group))
		for i, g := range group {
			ids[i] = g.ID
			required = required.Add(cashNeededBy(g))
		}

		available := AvailableBy(state, year, currentYear)
		if required.LessThanOrEqual(available.Mul(timelineFactor)) {
			continue
		}
		shortfall := required.Sub(available)

		out = append(out, models.Conflict{
			ID:       models.StableID("conflict", string(models.ConflictTimeline), strconv.Itoa(year)),
			Type:     models.ConflictTimeline,
			Severity: models.SeverityModerate,
			Description: fmt.Sprintf("%d goals due in %d need %s against roughly %s saved by then",
				len(group), year, models.Cents(required).StringFixed(2), models.Cents(available).StringFixed(2)),
			AffectedGoals: ids,
			Resolutions: []models.ResolutionOption{{
				Kind:            models.ResolutionStaggerGoals,
				Description:     fmt.Sprintf("Stagger these goals across %d years", StaggerYears),
				EstimatedImpact: models.Cents(shortfall.Div(decimal.NewFromInt(StaggerYears * 12))),
			}},
			ShortfallAmount: models.Ptr(models.Cents(shortfall)),
		})
	}
	return out
}

// cashNeededBy is the cash a goal consumes in its target year
func cashNeededBy(g models.Goal) decimal.Decimal {
	if g.Category == models.CategoryRealEstate {
		return g.TargetAmount.Mul(downPaymentRate)
	}
	return g.RemainingNeeded()
}

// AvailableBy linearly estimates savings accumulated by the given year
func AvailableBy(state models.FinancialState, year, currentYear int) decimal.Decimal {
	yearsAway := max(1, year-currentYear)
	return models.NonNegative(state.MonthlySurplus).
		Mul(models.Twelve).
		Mul(decimal.NewFromInt(int64(yearsAway)))
}
