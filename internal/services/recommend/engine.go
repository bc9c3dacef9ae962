// Package recommend turns goals, conflicts and advisor data into a prioritized,
// dollar-quantified action plan.
package recommend

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"finplan/internal/logging"
	"finplan/internal/models"
)

// DefaultMarketMortgageRate is the assumed market rate when none is configured
var DefaultMarketMortgageRate = decimal.RequireFromString("6.5")

// Options configures the engine
type Options struct {
	MarketMortgageRate decimal.Decimal // percent; zero uses the default
	Now                func() time.Time
}

// Engine produces recommendations
type Engine struct {
	log        *logrus.Entry
	marketRate decimal.Decimal
	now        func() time.Time
}

// New creates a recommendation engine
func New(log *logrus.Logger, opts Options) *Engine {
	if !opts.MarketMortgageRate.IsPositive() {
		opts.MarketMortgageRate = DefaultMarketMortgageRate
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{
		log:        logging.Component(logging.OrDiscard(log), logging.ComponentRecommend),
		marketRate: opts.MarketMortgageRate,
		now:        opts.Now,
	}
}

// Horizon is the bucket a recommendation lands in
type Horizon int

const (
	Immediate Horizon = iota
	ShortTerm
	LongTerm
)

// item is a recommendation on its way into a bucket
type item struct {
	horizon Horizon
	rec     models.Recommendation
}

// Recommend builds the three recommendation buckets. Each bucket is ordered by
// priority score, highest first, with the static planning items last.
func (e *Engine) Recommend(goals []models.Goal, state models.FinancialState, prefs models.UserPreferences, conflicts []models.Conflict, advisor *models.AdvisorData) models.RecommendationSet {
	var items []item
	add := func(it *item) {
		if it != nil {
			items = append(items, *it)
		}
	}

	add(budgetOptimization(state, conflicts))
	add(emergencyFund(state))

	if advisor != nil {
		if advisor.Mortgage != nil {
			add(e.mortgage(*advisor.Mortgage))
		}
		if advisor.Retirement != nil {
			add(e.retirement(*advisor.Retirement))
		}
		if advisor.Investments != nil {
			add(investmentFees(*advisor.Investments))
		}
		if len(advisor.Debts) > 0 {
			add(e.debts(advisor.Debts, state, prefs))
		}
		if advisor.Subscriptions != nil {
			add(e.subscriptions(*advisor.Subscriptions))
		}
	}

	var set models.RecommendationSet
	buckets := map[Horizon]*[]models.Recommendation{
		Immediate: &set.Immediate,
		ShortTerm: &set.ShortTerm,
		LongTerm:  &set.LongTerm,
	}
	for _, it := range items {
		b := buckets[it.horizon]
		*b = append(*b, it.rec)
	}
	for _, b := range buckets {
		sortByPriority(*b)
	}

	set.ShortTerm = append(set.ShortTerm, rebalancingReview())
	set.LongTerm = append(set.LongTerm, incomeGrowth(goals))
	if set.Immediate == nil {
		set.Immediate = []models.Recommendation{}
	}

	e.log.WithField("count", len(set.All())).Debug("recommendations built")
	return set
}

// Priority scores impact x urgency / effort, each on a 0-10 scale
func Priority(impact, urgency, effort float64) *models.PriorityScore {
	score := impact * urgency / max(effort, 1)
	tier := models.PriorityLow
	switch {
	case score > 50:
		tier = models.PriorityHigh
	case score > 20:
		tier = models.PriorityMedium
	}
	return &models.PriorityScore{
		Impact:  impact,
		Urgency: urgency,
		Effort:  effort,
		Score:   models.Score(decimal.NewFromFloat(score)),
		Tier:    tier,
	}
}

var (
	highImpactSavings   = decimal.NewFromInt(5000)
	mediumImpactSavings = decimal.NewFromInt(1000)
)

// ImpactFor grades annual savings
func ImpactFor(annual decimal.Decimal) models.ImpactTier {
	switch {
	case annual.GreaterThanOrEqual(highImpactSavings):
		return models.ImpactHigh
	case annual.GreaterThanOrEqual(mediumImpactSavings):
		return models.ImpactMedium
	default:
		return models.ImpactLow
	}
}

// impactScore places an impact tier on the 0-10 priority scale
func impactScore(tier models.ImpactTier) float64 {
	switch tier {
	case models.ImpactCritical:
		return 10
	case models.ImpactHigh:
		return 8
	case models.ImpactMedium:
		return 5
	default:
		return 3
	}
}

func sortByPriority(recs []models.Recommendation) {
	score := func(r models.Recommendation) float64 {
		if r.Priority == nil {
			return 0
		}
		return r.Priority.Score
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return score(recs[i]) > score(recs[j])
	})
}
