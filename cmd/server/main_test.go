package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"finplan/internal/config"
	"finplan/internal/models"
	"finplan/internal/services/storage"
	"finplan/internal/testutil"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.DataDirectory = t.TempDir()
	cfg.SimulationIterations = 200
	cfg.SimulationWorkers = 2
	cfg.SimulationSeed = 7
	return cfg
}

// setupTestServer wires the real dependencies against a temporary data directory
func setupTestServer(t *testing.T, cfg *config.Config) (*testutil.TestServer, *test.Hook) {
	t.Helper()

	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	handler, err := SetupDependencies(cfg, log)
	if err != nil {
		t.Fatalf("Failed to setup dependencies: %v", err)
	}
	return testutil.NewTestServer(t, SetupRouter(handler, log)), hook
}

func TestHealthEndpoint(t *testing.T) {
	ts, _ := setupTestServer(t, testConfig(t))

	resp := ts.GET("/api/health")
	testutil.AssertResponse(t, resp).
		StatusOK().
		ContentTypeJSON().
		Contains(`"status":"ok"`)
}

func TestRootRedirect(t *testing.T) {
	ts, _ := setupTestServer(t, testConfig(t))

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := client.Get(ts.BaseURL + "/")
	if err != nil {
		t.Fatalf("GET / failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusTemporaryRedirect {
		t.Errorf("Expected status 307, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/api/health" {
		t.Errorf("Expected redirect to /api/health, got %s", loc)
	}
}

func TestRequestLogging(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	h := middleware.RequestID(requestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/version", nil))

	e := hook.LastEntry()
	if e == nil || e.Message != "request" {
		t.Fatalf("LastEntry = %v, want a request entry", e)
	}
	if e.Data["path"] != "/api/version" || e.Data["status"] != http.StatusTeapot {
		t.Errorf("logged %v", e.Data)
	}
	if id, _ := e.Data["request_id"].(string); id == "" {
		t.Error("request id was not logged")
	}
}

func TestSimulationsFollowConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.SimulateScenarios = true
	ts, _ := setupTestServer(t, cfg)

	var report models.GoalAnalysisReport
	testutil.AssertResponse(t, ts.POSTJSON("/api/analyze", models.AnalysisInput{
		Goals: testutil.SampleGoals(),
		State: testutil.SampleState(),
	})).StatusOK().JSON(&report)

	for _, s := range report.Scenarios {
		if s.Simulation == nil {
			t.Errorf("scenario %s was not simulated", s.ID)
			continue
		}
		if s.Simulation.Iterations != 200 {
			t.Errorf("scenario %s ran %d iterations, want 200", s.ID, s.Simulation.Iterations)
		}
	}
}

func TestEncryptedStoreUnlock(t *testing.T) {
	cfg := testConfig(t)

	store, err := storage.New(cfg.DataDirectory, nil)
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	if err := store.EnableEncryption("correct horse"); err != nil {
		t.Fatalf("EnableEncryption: %v", err)
	}

	t.Run("locked without passphrase", func(t *testing.T) {
		ts, hook := setupTestServer(t, cfg)
		if hook.LastEntry() == nil {
			t.Error("expected a warning about the locked store")
		}
		testutil.AssertResponse(t, ts.PUTJSON("/api/profiles/alice", models.AnalysisInput{})).
			Status(http.StatusLocked)
	})

	t.Run("unlocked with passphrase", func(t *testing.T) {
		cfg.Passphrase = "correct horse"
		ts, _ := setupTestServer(t, cfg)
		testutil.AssertResponse(t, ts.PUTJSON("/api/profiles/alice", models.AnalysisInput{})).
			StatusOK()
	})

	t.Run("wrong passphrase", func(t *testing.T) {
		cfg.Passphrase = "wrong horse"
		log, _ := test.NewNullLogger()
		if _, err := SetupDependencies(cfg, log); err == nil {
			t.Error("expected an error for a wrong passphrase")
		}
	})
}
