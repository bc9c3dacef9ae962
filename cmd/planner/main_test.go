package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus/hooks/test"

	"finplan/internal/config"
	"finplan/internal/models"
	"finplan/internal/services/storage"
	"finplan/internal/testutil"
)

type harness struct {
	app    *app
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.DataDirectory = t.TempDir()
	cfg.SimulationIterations = 200
	cfg.SimulationWorkers = 2

	log, _ := test.NewNullLogger()
	h := &harness{out: &bytes.Buffer{}, errOut: &bytes.Buffer{}}
	h.app = &app{
		cfg:    cfg,
		log:    log,
		out:    h.out,
		errOut: h.errOut,
		prompt: func(string) (string, error) { return "", errNoTerminal },
		now:    testutil.FixedNow(),
	}
	return h
}

// run executes one command line with fresh output buffers
func (h *harness) run(t *testing.T, args ...string) subcommands.ExitStatus {
	t.Helper()

	h.out.Reset()
	h.errOut.Reset()

	fs := flag.NewFlagSet("planner", flag.ContinueOnError)
	c := subcommands.NewCommander(fs, "planner")
	c.Output, c.Error = io.Discard, io.Discard
	h.app.register(c)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	return c.Execute(context.Background())
}

func writeFile(t *testing.T, name string, v any) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, testutil.MustJSON(t, v), 0600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func sampleInput() models.AnalysisInput {
	return models.AnalysisInput{
		Goals:       testutil.SampleGoals(),
		State:       testutil.SampleState(),
		Preferences: models.UserPreferences{RiskTolerance: models.RiskModerate},
	}
}

func TestAnalyzeInputFile(t *testing.T) {
	h := newHarness(t)
	input := writeFile(t, "input.json", sampleInput())

	if got := h.run(t, "analyze", "-input", input); got != subcommands.ExitSuccess {
		t.Fatalf("exit = %v, stderr %q", got, h.errOut)
	}
	out := h.out.String()
	for _, want := range []string{"Overall score:       75.0/100", "Conflicts", "[critical]", "* balanced", "Recommendations"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if got := h.run(t, "analyze", "-input", input, "-json"); got != subcommands.ExitSuccess {
		t.Fatalf("exit = %v", got)
	}
	var report models.GoalAnalysisReport
	if err := json.Unmarshal(h.out.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.OverallScore != 75 || len(report.Scenarios) != 3 {
		t.Errorf("report score %v with %d scenarios", report.OverallScore, len(report.Scenarios))
	}
}

func TestAnalyzeUsage(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name string
		args []string
		want subcommands.ExitStatus
	}{
		{"neither source", []string{"analyze"}, subcommands.ExitUsageError},
		{"both sources", []string{"analyze", "-input", "x.json", "-profile", "p"}, subcommands.ExitUsageError},
		{"missing file", []string{"analyze", "-input", filepath.Join(t.TempDir(), "nope.json")}, subcommands.ExitFailure},
		{"unknown profile", []string{"analyze", "-profile", "nobody"}, subcommands.ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.run(t, tt.args...); got != tt.want {
				t.Errorf("exit = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSimulateSeeded(t *testing.T) {
	h := newHarness(t)
	input := writeFile(t, "input.json", sampleInput())

	args := []string{"simulate", "-input", input, "-scenario", "aggressive", "-iterations", "300", "-seed", "9", "-json"}
	if got := h.run(t, args...); got != subcommands.ExitSuccess {
		t.Fatalf("exit = %v, stderr %q", got, h.errOut)
	}
	first := h.out.String()
	h.run(t, args...)
	if h.out.String() != first {
		t.Error("two runs with the same seed differ")
	}
	if !strings.Contains(first, `"iterations": 300`) || !strings.Contains(first, `"seed": 9`) {
		t.Errorf("unexpected output:\n%s", first)
	}

	if got := h.run(t, "simulate", "-input", input, "-scenario", "yolo"); got != subcommands.ExitUsageError {
		t.Errorf("unknown scenario exit = %v", got)
	}
}

func TestPayoff(t *testing.T) {
	h := newHarness(t)

	if got := h.run(t, "payoff", "-balance", "10000", "-rate", "20", "-payment", "300", "-accelerated", "500"); got != subcommands.ExitSuccess {
		t.Fatalf("exit = %v, stderr %q", got, h.errOut)
	}
	out := h.out.String()
	if !strings.Contains(out, "Paid off in 50 months") || !strings.Contains(out, "Paying 500.00 a month instead") {
		t.Errorf("unexpected output:\n%s", out)
	}

	if got := h.run(t, "payoff", "-balance", "12000", "-rate", "12", "-payment", "120"); got != subcommands.ExitFailure {
		t.Fatalf("exit = %v, want failure", got)
	}
	if !strings.Contains(h.errOut.String(), "minimum is 120.01") {
		t.Errorf("stderr = %q", h.errOut)
	}

	if got := h.run(t, "payoff", "-balance", "abc"); got != subcommands.ExitUsageError {
		t.Errorf("bad decimal exit = %v", got)
	}
}

func TestAvalanche(t *testing.T) {
	h := newHarness(t)
	debts := writeFile(t, "debts.json", []models.Debt{
		{Description: "car", Balance: testutil.D("8000"), InterestRate: testutil.D("5"), MinimumPayment: testutil.D("250")},
		{Description: "visa", Balance: testutil.D("5000"), InterestRate: testutil.D("22"), MinimumPayment: testutil.D("150")},
	})

	if got := h.run(t, "avalanche", "-input", debts); got != subcommands.ExitSuccess {
		t.Fatalf("exit = %v, stderr %q", got, h.errOut)
	}
	out := h.out.String()
	visa, car := strings.Index(out, "visa"), strings.Index(out, "car")
	if visa < 0 || car < 0 || visa > car {
		t.Errorf("visa should come before car:\n%s", out)
	}
}

func TestRetire(t *testing.T) {
	h := newHarness(t)

	if got := h.run(t, "retire", "-age", "35", "-savings", "50000", "-monthly", "1000"); got != subcommands.ExitSuccess {
		t.Fatalf("exit = %v, stderr %q", got, h.errOut)
	}
	if !strings.Contains(h.out.String(), "In 30 years") {
		t.Errorf("unexpected output %q", h.out)
	}

	if got := h.run(t, "retire", "-age", "70"); got != subcommands.ExitFailure {
		t.Errorf("exit = %v, want failure", got)
	}
}

func TestProfileLifecycle(t *testing.T) {
	h := newHarness(t)
	input := writeFile(t, "input.json", sampleInput())

	if got := h.run(t, "profile", "import", input, "alice"); got != subcommands.ExitSuccess {
		t.Fatalf("import exit = %v, stderr %q", got, h.errOut)
	}

	h.run(t, "profile", "list")
	if strings.TrimSpace(h.out.String()) != "alice" {
		t.Errorf("list = %q", h.out)
	}

	h.run(t, "profile", "export", "alice")
	var exported models.AnalysisInput
	if err := json.Unmarshal(h.out.Bytes(), &exported); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if len(exported.Goals) != 3 {
		t.Errorf("exported %d goals", len(exported.Goals))
	}

	if got := h.run(t, "analyze", "-profile", "alice"); got != subcommands.ExitSuccess {
		t.Fatalf("analyze exit = %v, stderr %q", got, h.errOut)
	}
	store, err := storage.New(h.app.cfg.DataDirectory, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := storage.NewProfileStore(store).LoadReport("alice"); err != nil {
		t.Errorf("report was not stored: %v", err)
	}

	if got := h.run(t, "profile", "delete", "alice"); got != subcommands.ExitSuccess {
		t.Errorf("delete exit = %v", got)
	}
	if got := h.run(t, "profile", "export", "alice"); got != subcommands.ExitFailure {
		t.Errorf("export after delete exit = %v", got)
	}
	if got := h.run(t, "profile", "rename", "alice"); got != subcommands.ExitUsageError {
		t.Errorf("unknown action exit = %v", got)
	}
}

func TestProfileImportRejectsInvalidGoal(t *testing.T) {
	h := newHarness(t)
	bad := sampleInput()
	bad.Goals[0].Priority = 42
	input := writeFile(t, "bad.json", bad)

	if got := h.run(t, "profile", "import", input, "bad"); got != subcommands.ExitFailure {
		t.Fatalf("exit = %v, want failure", got)
	}
	if !strings.Contains(h.errOut.String(), "priority") {
		t.Errorf("stderr = %q", h.errOut)
	}
}

func TestEncrypt(t *testing.T) {
	h := newHarness(t)
	input := writeFile(t, "input.json", sampleInput())
	h.run(t, "profile", "import", input, "alice")

	t.Run("no passphrase source", func(t *testing.T) {
		if got := h.run(t, "encrypt"); got != subcommands.ExitFailure {
			t.Errorf("exit = %v, want failure", got)
		}
		if !strings.Contains(h.errOut.String(), "PLANNER_PASSPHRASE") {
			t.Errorf("stderr = %q", h.errOut)
		}
	})

	t.Run("prompt mismatch", func(t *testing.T) {
		answers := []string{"correct horse", "wrong horse"}
		h.app.prompt = func(string) (string, error) {
			a := answers[0]
			answers = answers[1:]
			return a, nil
		}
		defer func() { h.app.prompt = func(string) (string, error) { return "", errNoTerminal } }()

		if got := h.run(t, "encrypt"); got != subcommands.ExitFailure {
			t.Errorf("exit = %v, want failure", got)
		}
	})

	h.app.cfg.Passphrase = "correct horse"
	if got := h.run(t, "encrypt"); got != subcommands.ExitSuccess {
		t.Fatalf("encrypt exit = %v, stderr %q", got, h.errOut)
	}
	if got := h.run(t, "encrypt"); got != subcommands.ExitFailure {
		t.Errorf("second encrypt exit = %v, want failure", got)
	}

	h.run(t, "profile", "list")
	if strings.TrimSpace(h.out.String()) != "alice" {
		t.Errorf("list on encrypted store = %q", h.out)
	}

	h.app.cfg.Passphrase = "wrong horse"
	if got := h.run(t, "profile", "list"); got != subcommands.ExitFailure {
		t.Errorf("wrong passphrase exit = %v", got)
	}
	if !strings.Contains(h.errOut.String(), storage.ErrWrongPassphrase.Error()) {
		t.Errorf("stderr = %q", h.errOut)
	}

	h.app.cfg.Passphrase = "correct horse"
	if got := h.run(t, "encrypt", "-disable"); got != subcommands.ExitSuccess {
		t.Fatalf("disable exit = %v, stderr %q", got, h.errOut)
	}
	h.app.cfg.Passphrase = ""
	h.run(t, "profile", "list")
	if strings.TrimSpace(h.out.String()) != "alice" {
		t.Errorf("list after decrypt = %q", h.out)
	}
}

func TestVersion(t *testing.T) {
	h := newHarness(t)

	h.run(t, "version")
	if !strings.HasPrefix(h.out.String(), "finplan ") {
		t.Errorf("version output = %q", h.out)
	}
}

func TestPassphrasePrecedence(t *testing.T) {
	h := newHarness(t)

	if _, err := h.app.passphrase("x"); !errors.Is(err, errNoTerminal) {
		t.Errorf("err = %v, want errNoTerminal", err)
	}
	h.app.cfg.Passphrase = "from env"
	if got, _ := h.app.passphrase("x"); got != "from env" {
		t.Errorf("passphrase = %q", got)
	}
}
