// Package montecarlo projects net worth over twenty years under random
// returns, inflation and income growth.
package montecarlo

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"runtime"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"finplan/internal/logging"
	"finplan/internal/models"
)

// ErrNilRandomSource is returned when Simulate is called without a generator
var ErrNilRandomSource = errors.New("montecarlo: random source is required")

const (
	DefaultIterations = 1000
	DefaultBatchSize  = 100
	Years             = 20
)

// Model parameters, as annual fractions
const (
	ReturnMean         = 0.08
	ReturnStdDev       = 0.15
	InflationLow       = 0.02
	InflationHigh      = 0.04
	IncomeGrowthMean   = 0.03
	IncomeGrowthStdDev = 0.02
)

var (
	incomeBoost  = decimal.RequireFromString("1.2")
	successShare = decimal.RequireFromString("0.9")
)

// Options tunes the worker pool
type Options struct {
	Workers   int // defaults to runtime.NumCPU()
	BatchSize int // iterations between cancellation checks
}

// Simulator runs Monte Carlo projections on a pool of workers
type Simulator struct {
	log     *logrus.Entry
	workers int
	batch   int
}

// New creates a simulator
func New(log *logrus.Logger, opts Options) *Simulator {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	return &Simulator{
		log:     logging.Component(logging.OrDiscard(log), logging.ComponentMonteCarlo),
		workers: opts.Workers,
		batch:   opts.BatchSize,
	}
}

// path is the outcome of one iteration
type path struct {
	final decimal.Decimal
	real  decimal.Decimal
}

// Simulate projects the scenario iterations times using rng. Worker seeds are
// drawn from rng up front and each worker owns a contiguous slice of
// iterations, so a seed and worker count always reproduce the same result.
// ctx is checked between batches.
func (s *Simulator) Simulate(ctx context.Context, scenario models.Scenario, goals []models.Goal, state models.FinancialState, iterations int, rng *rand.Rand) (models.SimulationResult, error) {
	if rng == nil {
		return models.SimulationResult{}, ErrNilRandomSource
	}
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	start := time.Now()

	target := models.Zero
	for _, g := range goals {
		target = target.Add(g.TargetAmount)
	}
	threshold := target.Mul(successShare)

	contribution := state.MonthlySurplus.Mul(models.Twelve)
	if scenario.HasChange(models.ChangeIncomeBoost) {
		contribution = contribution.Mul(incomeBoost)
	}

	workers := min(s.workers, iterations)
	seeds := make([]int64, workers)
	for i := range seeds {
		seeds[i] = rng.Int63()
	}

	paths := make([]path, iterations)
	successes := make([]int, workers)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo, hi := span(iterations, workers, w)
		g.Go(func() error {
			local := rand.New(rand.NewSource(seeds[w]))
			for i := lo; i < hi; i += s.batch {
				if err := ctx.Err(); err != nil {
					return err
				}
				for j := i; j < min(i+s.batch, hi); j++ {
					paths[j] = project(local, state.NetWorth, contribution)
					if paths[j].final.GreaterThanOrEqual(threshold) {
						successes[w]++
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.WithFields(logrus.Fields{
			logging.FieldScenario: scenario.ID,
			logging.FieldError:    err,
		}).Debug("simulation cancelled")
		return models.SimulationResult{}, err
	}

	total := 0
	for _, n := range successes {
		total += n
	}

	result := summarize(paths)
	result.Iterations = iterations
	result.SuccessRate = float64(total) / float64(iterations)
	result.SuccessThreshold = models.Cents(threshold)

	s.log.WithFields(logrus.Fields{
		logging.FieldScenario:   scenario.ID,
		logging.FieldIterations: iterations,
		logging.FieldWorkers:    workers,
		logging.FieldDurationMs: time.Since(start).Milliseconds(),
	}).Debug("simulation complete")
	return result, nil
}

// span returns the half-open iteration range owned by worker w
func span(iterations, workers, w int) (int, int) {
	size, extra := iterations/workers, iterations%workers
	lo := w*size + min(w, extra)
	hi := lo + size
	if w < extra {
		hi++
	}
	return lo, hi
}

// project runs one twenty year path
// value = value * (1 + return) + contribution * (1 + incomeGrowth)^year
func project(rng *rand.Rand, start, contribution decimal.Decimal) path {
	annualReturn := rng.NormFloat64()*ReturnStdDev + ReturnMean
	inflation := InflationLow + rng.Float64()*(InflationHigh-InflationLow)
	incomeGrowth := rng.NormFloat64()*IncomeGrowthStdDev + IncomeGrowthMean

	growth := decimal.NewFromFloat(1 + annualReturn)
	value := start
	for year := 0; year < Years; year++ {
		raise := decimal.NewFromFloat(math.Pow(1+incomeGrowth, float64(year)))
		value = value.Mul(growth).Add(contribution.Mul(raise)).Round(2)
	}

	deflator := decimal.NewFromFloat(math.Pow(1+inflation, Years))
	return path{final: value, real: value.Div(deflator)}
}

// summarize computes the distribution statistics of the final values
func summarize(paths []path) models.SimulationResult {
	n := len(paths)
	finals := make([]decimal.Decimal, n)
	reals := make([]decimal.Decimal, n)
	sum := models.Zero
	for i, p := range paths {
		finals[i] = p.final
		reals[i] = p.real
		sum = sum.Add(p.final)
	}
	sortDecimals(finals)
	sortDecimals(reals)

	mean := sum.Div(decimal.NewFromInt(int64(n)))
	variance := 0.0
	for _, v := range finals {
		d := v.Sub(mean).InexactFloat64()
		variance += d * d
	}
	variance /= float64(n)

	return models.SimulationResult{
		Percentiles: models.Percentiles{
			P10: models.Cents(percentile(finals, 10)),
			P25: models.Cents(percentile(finals, 25)),
			P50: models.Cents(percentile(finals, 50)),
			P75: models.Cents(percentile(finals, 75)),
			P90: models.Cents(percentile(finals, 90)),
		},
		Mean:         models.Cents(mean),
		StdDev:       models.Cents(decimal.NewFromFloat(math.Sqrt(variance))),
		RealMedian:   models.Cents(percentile(reals, 50)),
		Distribution: buckets(finals),
	}
}

// percentile uses the nearest-rank index n*p/100 on sorted values
func percentile(sorted []decimal.Decimal, p int) decimal.Decimal {
	i := len(sorted) * p / 100
	if i >= len(sorted) {
		i = len(sorted) - 1
	}
	return sorted[i]
}

func sortDecimals(a []decimal.Decimal) {
	sort.Slice(a, func(i, j int) bool { return a[i].LessThan(a[j]) })
}
