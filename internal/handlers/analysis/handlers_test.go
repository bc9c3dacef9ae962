package analysis

import (
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"finplan/internal/models"
	"finplan/internal/services/finmath"
	"finplan/internal/services/intelligence"
	"finplan/internal/services/storage"
	"finplan/internal/testutil"
)

func setupServer(t *testing.T, withStore bool) *testutil.TestServer {
	t.Helper()

	planner := intelligence.New(nil, intelligence.Options{Now: testutil.FixedNow(), Workers: 2})
	var profiles *storage.ProfileStore
	if withStore {
		store, err := storage.New(t.TempDir(), nil)
		if err != nil {
			t.Fatalf("Failed to create storage: %v", err)
		}
		profiles = storage.NewProfileStore(store)
	}

	r := chi.NewRouter()
	New(planner, profiles, nil, Options{MaxIterations: 5000}).RegisterRoutes(r)
	return testutil.NewTestServer(t, r)
}

func sampleInput() models.AnalysisInput {
	return models.AnalysisInput{
		Goals:       testutil.SampleGoals(),
		State:       testutil.SampleState(),
		Preferences: models.UserPreferences{RiskTolerance: models.RiskModerate},
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := setupServer(t, false)

	testutil.AssertResponse(t, ts.GET("/api/health")).
		StatusOK().
		ContentTypeJSON().
		Contains(`"status":"ok"`)
}

func TestVersionEndpoint(t *testing.T) {
	ts := setupServer(t, false)

	testutil.AssertResponse(t, ts.GET("/api/version")).
		StatusOK().
		ContentTypeJSON().
		Contains(`"version"`, `"go_version"`)
}

func TestAnalyzeEndpoint(t *testing.T) {
	ts := setupServer(t, false)

	var report models.GoalAnalysisReport
	testutil.AssertResponse(t, ts.POSTJSON("/api/analyze", sampleInput())).
		StatusOK().
		ContentTypeJSON().
		Contains(`"conflicts"`, `"recommendations"`, `"immediate"`).
		JSON(&report)

	if report.OverallScore != 75 {
		t.Errorf("OverallScore = %v, want 75", report.OverallScore)
	}
	if len(report.Scenarios) != 3 {
		t.Errorf("Scenarios = %d, want 3", len(report.Scenarios))
	}
}

func TestAnalyzeMalformedJSON(t *testing.T) {
	ts := setupServer(t, false)

	testutil.AssertResponse(t, ts.POST("/api/analyze", "application/json", strings.NewReader(`{"goals": [`))).
		Status(http.StatusBadRequest).
		ContentTypeJSON().
		Contains(`"reason":"malformed_json"`)
}

func TestPayoffEndpoint(t *testing.T) {
	ts := setupServer(t, false)

	t.Run("comparison", func(t *testing.T) {
		accelerated := testutil.D("500")
		var resp PayoffResponse
		testutil.AssertResponse(t, ts.POSTJSON("/api/loans/payoff", PayoffRequest{
			Balance:            testutil.D("10000"),
			Rate:               testutil.D("20"),
			Payment:            testutil.D("300"),
			AcceleratedPayment: &accelerated,
		})).StatusOK().ContentTypeJSON().JSON(&resp)

		if resp.Payoff.MonthsToPayoff != 50 {
			t.Errorf("MonthsToPayoff = %d, want 50", resp.Payoff.MonthsToPayoff)
		}
		if resp.Comparison == nil || resp.Comparison.MonthsSaved <= 0 || !resp.Comparison.InterestSaved.IsPositive() {
			t.Errorf("Comparison = %+v, want positive savings", resp.Comparison)
		}
	})

	t.Run("insufficient payment", func(t *testing.T) {
		testutil.AssertResponse(t, ts.POSTJSON("/api/loans/payoff", PayoffRequest{
			Balance: testutil.D("12000"),
			Rate:    testutil.D("12"),
			Payment: testutil.D("120"),
		})).
			Status(http.StatusUnprocessableEntity).
			ContentTypeJSON().
			Contains(`"reason":"insufficient_payment"`, `"minimum":"120.01"`)
	})
}

func TestRetirementEndpoint(t *testing.T) {
	ts := setupServer(t, false)

	testutil.AssertResponse(t, ts.POSTJSON("/api/retirement/projection", RetirementRequest{
		CurrentAge:    65,
		RetirementAge: 60,
	})).
		Status(http.StatusUnprocessableEntity).
		Contains(`"reason":"already_at_retirement"`)

	var outlook finmath.RetirementOutlook
	testutil.AssertResponse(t, ts.POSTJSON("/api/retirement/projection", RetirementRequest{
		CurrentAge:          35,
		RetirementAge:       65,
		Savings:             testutil.D("50000"),
		MonthlyContribution: testutil.D("1000"),
	})).StatusOK().JSON(&outlook)
	if outlook.YearsToRetirement != 30 || !outlook.ProjectedBalance.IsPositive() {
		t.Errorf("outlook = %+v", outlook)
	}
}

func TestAvalancheEndpoint(t *testing.T) {
	ts := setupServer(t, false)

	var resp struct {
		Debts []finmath.PrioritizedDebt `json:"debts"`
	}
	testutil.AssertResponse(t, ts.POSTJSON("/api/debts/avalanche", map[string]any{
		"debts": []models.Debt{
			{Description: "car", Balance: testutil.D("8000"), InterestRate: testutil.D("5"), MinimumPayment: testutil.D("250")},
			{Description: "visa", Balance: testutil.D("5000"), InterestRate: testutil.D("22"), MinimumPayment: testutil.D("150")},
			{Description: "empty", Balance: testutil.D("0"), InterestRate: testutil.D("9")},
		},
	})).StatusOK().JSON(&resp)

	if len(resp.Debts) != 2 || resp.Debts[0].Description != "visa" || resp.Debts[0].Priority != 1 {
		t.Errorf("Debts = %+v, want visa first and the empty debt dropped", resp.Debts)
	}

	testutil.AssertResponse(t, ts.POSTJSON("/api/debts/avalanche", map[string]any{})).
		StatusOK().
		Contains(`"debts":[]`)
}

func TestSimulateEndpoint(t *testing.T) {
	ts := setupServer(t, false)
	req := SimulateRequest{
		ScenarioID: "aggressive",
		Goals:      testutil.SampleGoals(),
		State:      testutil.SampleState(),
		Iterations: 300,
		Seed:       42,
	}

	run := func() SimulateResponse {
		var resp SimulateResponse
		testutil.AssertResponse(t, ts.POSTJSON("/api/simulate", req)).StatusOK().JSON(&resp)
		return resp
	}
	a, b := run(), run()
	if a.Result.Iterations != 300 || a.Seed != 42 || a.Scenario.ID != "aggressive" {
		t.Errorf("response = %+v", a)
	}
	if a.Result.SuccessRate != b.Result.SuccessRate || !a.Result.Mean.Equal(b.Result.Mean) {
		t.Errorf("seeded runs differ: %v/%s vs %v/%s", a.Result.SuccessRate, a.Result.Mean, b.Result.SuccessRate, b.Result.Mean)
	}

	req.ScenarioID = "yolo"
	testutil.AssertResponse(t, ts.POSTJSON("/api/simulate", req)).
		Status(http.StatusBadRequest).
		Contains(`"reason":"unknown_scenario"`)

	req.ScenarioID = ""
	req.Iterations = 10_000
	testutil.AssertResponse(t, ts.POSTJSON("/api/simulate", req)).
		Status(http.StatusBadRequest).
		Contains("at most 5000")
}

func TestProfileEndpoints(t *testing.T) {
	ts := setupServer(t, true)

	testutil.AssertResponse(t, ts.GET("/api/profiles")).
		StatusOK().
		Contains(`"profiles":[]`)

	testutil.AssertResponse(t, ts.PUTJSON("/api/profiles/alice", sampleInput())).
		StatusOK().
		Contains(`"id":"alice"`)

	testutil.AssertResponse(t, ts.GET("/api/profiles")).
		StatusOK().
		Contains(`"profiles":["alice"]`)

	var stored models.AnalysisInput
	testutil.AssertResponse(t, ts.GET("/api/profiles/alice")).StatusOK().JSON(&stored)
	if len(stored.Goals) != 3 {
		t.Errorf("stored goals = %d, want 3", len(stored.Goals))
	}

	testutil.AssertResponse(t, ts.GET("/api/profiles/alice/report")).
		Status(http.StatusNotFound)

	var report models.GoalAnalysisReport
	testutil.AssertResponse(t, ts.POST("/api/profiles/alice/analyze", "application/json", nil)).
		StatusOK().
		JSON(&report)
	if report.OverallScore != 75 {
		t.Errorf("OverallScore = %v, want 75", report.OverallScore)
	}

	testutil.AssertResponse(t, ts.GET("/api/profiles/alice/report")).
		StatusOK().
		Contains(`"overall_score":75`)

	testutil.AssertResponse(t, ts.GET("/api/profiles/nobody")).
		Status(http.StatusNotFound).
		Contains(`"reason":"not_found"`)

	testutil.AssertResponse(t, ts.PUTJSON("/api/profiles/bad.id", sampleInput())).
		Status(http.StatusBadRequest).
		Contains(`"reason":"invalid_profile_id"`)
}

func TestProfileEndpointsWithoutStore(t *testing.T) {
	ts := setupServer(t, false)

	testutil.AssertResponse(t, ts.GET("/api/profiles")).
		Status(http.StatusServiceUnavailable)
}
