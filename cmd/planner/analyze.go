package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"finplan/internal/config"
	"finplan/internal/logging"
	"finplan/internal/models"
	"finplan/internal/services/scenarios"
	"finplan/internal/services/storage"
)

type analyzeCmd struct {
	*app
	input    string
	profile  string
	simulate bool
	asJSON   bool
}

func (*analyzeCmd) Name() string     { return "analyze" }
func (*analyzeCmd) Synopsis() string { return "analyze goals against a financial state" }
func (*analyzeCmd) Usage() string {
	return `planner analyze (-input <file> | -profile <id>) [-simulate] [-json]

  Scores every goal, detects conflicts between them, builds the three
  strategy scenarios and the recommendation set. The input is a JSON document
  with goals, state, preferences and optional advisor_data. Analyzing a stored
  profile also stores the report next to it.
`
}

func (c *analyzeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.input, "input", "", "JSON file holding the analysis input")
	f.StringVar(&c.profile, "profile", "", "Stored profile to analyze")
	f.BoolVar(&c.simulate, "simulate", false, "Run the Monte Carlo simulation for every scenario")
	f.BoolVar(&c.asJSON, "json", false, "Print the full report as JSON")
}

func (c *analyzeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if (c.input == "") == (c.profile == "") {
		fmt.Fprintln(c.errOut, "exactly one of -input and -profile is required")
		return subcommands.ExitUsageError
	}

	var (
		input models.AnalysisInput
		store *storage.ProfileStore
		err   error
	)
	if c.input != "" {
		if err := readJSON(c.input, &input); err != nil {
			return c.fail(err)
		}
	} else {
		if store, err = c.openStore(); err != nil {
			return c.fail(err)
		}
		if input, err = store.LoadProfile(c.profile); err != nil {
			return c.fail(err)
		}
	}

	report, err := c.planner(c.simulate).Analyze(ctx, input.Goals, input.State, input.Preferences, input.AdvisorData)
	if err != nil {
		return c.fail(err)
	}
	if store != nil {
		if err := store.SaveReport(c.profile, report); err != nil {
			c.log.WithFields(logrus.Fields{
				logging.FieldProfile: c.profile,
				logging.FieldError:   err,
			}).Warn("could not store report")
		}
	}

	if c.asJSON {
		if err := c.writeJSON(report); err != nil {
			return c.fail(err)
		}
		return subcommands.ExitSuccess
	}
	writeReport(c.out, report)
	return subcommands.ExitSuccess
}

func writeReport(w io.Writer, r *models.GoalAnalysisReport) {
	fmt.Fprintf(w, "Overall score:       %.1f/100\n", r.OverallScore)
	fmt.Fprintf(w, "Success probability: %.0f%%\n", r.SuccessProbability*100)
	fmt.Fprintf(w, "Monthly shortfall:   %s (capital needed %s, 20y trajectory %s, gap %s)\n",
		r.Gaps.MonthlyShortfall.StringFixed(2), r.Gaps.TotalCapitalNeeded.StringFixed(2),
		r.Gaps.CurrentTrajectory.StringFixed(2), r.Gaps.GapAmount.StringFixed(2))

	if len(r.Goals) > 0 {
		fmt.Fprintln(w, "\nGoals")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, g := range r.Goals {
			fmt.Fprintf(tw, "  %s\t%s\t%.1f\t%s/mo\n", g.GoalID, g.Name, g.Score, g.MonthlyRequired.StringFixed(2))
		}
		tw.Flush()
	}
	for _, f := range r.Failures {
		fmt.Fprintf(w, "  %s: not analyzed (%s)\n", f.GoalID, f.Reason)
	}

	if len(r.Conflicts) > 0 {
		fmt.Fprintln(w, "\nConflicts")
		for _, c := range r.Conflicts {
			fmt.Fprintf(w, "  [%s] %s\n", c.Severity, c.Description)
		}
	}

	fmt.Fprintln(w, "\nScenarios")
	for _, s := range r.Scenarios {
		mark := " "
		if s.IsRecommended {
			mark = "*"
		}
		line := fmt.Sprintf("  %s %-14s success %.0f%%  risk %.1f", mark, s.ID, s.SuccessRate*100, s.RiskScore)
		if s.Simulation != nil {
			line += fmt.Sprintf("  simulated %.0f%% (median %s)", s.Simulation.SuccessRate*100, s.Simulation.Percentiles.P50.StringFixed(0))
		}
		fmt.Fprintln(w, line)
	}

	buckets := []struct {
		name string
		recs []models.Recommendation
	}{
		{"Immediate", r.Recommendations.Immediate},
		{"Short term", r.Recommendations.ShortTerm},
		{"Long term", r.Recommendations.LongTerm},
	}
	fmt.Fprintln(w, "\nRecommendations")
	for _, b := range buckets {
		if len(b.recs) == 0 {
			continue
		}
		fmt.Fprintf(w, "  %s\n", b.name)
		for _, rec := range b.recs {
			fmt.Fprintf(w, "    [%s] %s", rec.ImpactTier, rec.Title)
			if rec.MonthlySavings.IsPositive() {
				fmt.Fprintf(w, " (%s/mo)", rec.MonthlySavings.StringFixed(2))
			}
			fmt.Fprintln(w)
		}
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "\nWarnings")
		for _, msg := range r.Warnings {
			fmt.Fprintf(w, "  %s\n", msg)
		}
	}
}

type simulateCmd struct {
	*app
	input      string
	scenario   string
	iterations int
	seed       int64
	asJSON     bool
}

func (*simulateCmd) Name() string     { return "simulate" }
func (*simulateCmd) Synopsis() string { return "run the Monte Carlo simulation for one scenario" }
func (*simulateCmd) Usage() string {
	return `planner simulate -input <file> [-scenario balanced|conservative|aggressive] [-iterations n] [-seed s] [-json]

  Simulates 20 years of net worth under the scenario's return assumptions.
  The same seed always gives the same result.
`
}

func (c *simulateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.input, "input", "", "JSON file holding the analysis input")
	f.StringVar(&c.scenario, "scenario", scenarios.Balanced, "Scenario to simulate")
	f.IntVar(&c.iterations, "iterations", 0, "Number of simulated paths (defaults to PLANNER_SIM_ITERATIONS)")
	f.Int64Var(&c.seed, "seed", 0, "Random seed, 0 picks one from the clock")
	f.BoolVar(&c.asJSON, "json", false, "Print the result as JSON")
}

func (c *simulateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.input == "" {
		fmt.Fprintln(c.errOut, "-input is required")
		return subcommands.ExitUsageError
	}
	tmpl, ok := scenarios.Lookup(c.scenario)
	if !ok {
		fmt.Fprintf(c.errOut, "unknown scenario %q\n", c.scenario)
		return subcommands.ExitUsageError
	}
	if c.iterations <= 0 {
		c.iterations = c.cfg.SimulationIterations
	}
	if c.iterations > config.MaxSimulationIterations {
		fmt.Fprintf(c.errOut, "-iterations must be at most %d\n", config.MaxSimulationIterations)
		return subcommands.ExitUsageError
	}
	if c.seed == 0 {
		c.seed = c.cfg.SimulationSeed
	}
	if c.seed == 0 {
		c.seed = time.Now().UnixNano()
	}

	var input models.AnalysisInput
	if err := readJSON(c.input, &input); err != nil {
		return c.fail(err)
	}

	scenario := tmpl.Scenario(input.Preferences.RiskTolerance)
	result, err := c.planner(false).Simulator().Simulate(ctx, scenario, input.Goals, input.State.Normalized(),
		c.iterations, rand.New(rand.NewSource(c.seed)))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return c.fail(errors.New("simulation cancelled"))
		}
		return c.fail(err)
	}

	if c.asJSON {
		err := c.writeJSON(struct {
			Scenario models.Scenario         `json:"scenario"`
			Seed     int64                   `json:"seed"`
			Result   models.SimulationResult `json:"result"`
		}{scenario, c.seed, result})
		if err != nil {
			return c.fail(err)
		}
		return subcommands.ExitSuccess
	}

	p := result.Percentiles
	fmt.Fprintf(c.out, "%s, %d paths, seed %d\n", scenario.Name, result.Iterations, c.seed)
	fmt.Fprintf(c.out, "Success rate: %.1f%% (final net worth >= %s)\n", result.SuccessRate*100, result.SuccessThreshold.StringFixed(2))
	fmt.Fprintf(c.out, "Percentiles:  %s\n", strings.Join([]string{
		"p10 " + p.P10.StringFixed(0),
		"p25 " + p.P25.StringFixed(0),
		"p50 " + p.P50.StringFixed(0),
		"p75 " + p.P75.StringFixed(0),
		"p90 " + p.P90.StringFixed(0),
	}, ", "))
	fmt.Fprintf(c.out, "Mean %s, std dev %s, real median %s\n",
		result.Mean.StringFixed(0), result.StdDev.StringFixed(0), result.RealMedian.StringFixed(0))
	return subcommands.ExitSuccess
}
