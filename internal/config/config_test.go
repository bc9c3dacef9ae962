package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func validConfig() Config {
	return Config{
		ListenAddr:           ":8080",
		DataDirectory:        "./data",
		SimulationIterations: 1000,
		SimulationWorkers:    4,
		SimulationBatchSize:  100,
		MarketMortgageRate:   decimal.RequireFromString("6.5"),
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(c *Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "valid config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:        "empty listen address",
			modify:      func(c *Config) { c.ListenAddr = " " },
			wantErr:     true,
			errorString: "listen address cannot be empty",
		},
		{
			name:        "zero iterations",
			modify:      func(c *Config) { c.SimulationIterations = 0 },
			wantErr:     true,
			errorString: "invalid simulation iterations 0",
		},
		{
			name:        "too many iterations",
			modify:      func(c *Config) { c.SimulationIterations = MaxSimulationIterations + 1 },
			wantErr:     true,
			errorString: "invalid simulation iterations 1000001",
		},
		{
			name:        "no workers",
			modify:      func(c *Config) { c.SimulationWorkers = 0 },
			wantErr:     true,
			errorString: "invalid simulation workers 0",
		},
		{
			name:        "no batch",
			modify:      func(c *Config) { c.SimulationBatchSize = -1 },
			wantErr:     true,
			errorString: "invalid simulation batch size -1",
		},
		{
			name:        "negative market rate",
			modify:      func(c *Config) { c.MarketMortgageRate = decimal.RequireFromString("-1") },
			wantErr:     true,
			errorString: "invalid market mortgage rate -1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(&cfg)
			err := cfg.Validate()

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				if !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errorString)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestConfig_ValidateReportsAllProblems(t *testing.T) {
	cfg := validConfig()
	cfg.ListenAddr = ""
	cfg.SimulationWorkers = 0
	cfg.SimulationBatchSize = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error but got none")
	}
	if got := strings.Count(err.Error(), "\n- "); got != 3 {
		t.Errorf("error lists %d problems, want 3:\n%s", got, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PLANNER_LISTEN_ADDR", "PLANNER_DEBUG", "PLANNER_LOG_LEVEL", "PLANNER_DATA_DIR",
		"PLANNER_SIM_ITERATIONS", "PLANNER_SIM_WORKERS", "PLANNER_SIM_BATCH", "PLANNER_SIM_SEED",
		"PLANNER_SIMULATE_SCENARIOS", "PLANNER_MARKET_MORTGAGE_RATE", "PLANNER_PASSPHRASE",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, want :8080", cfg.ListenAddr)
	}
	if cfg.SimulationIterations != 1000 || cfg.SimulationBatchSize != 100 {
		t.Errorf("simulation = %d/%d, want 1000/100", cfg.SimulationIterations, cfg.SimulationBatchSize)
	}
	if !cfg.MarketMortgageRate.Equal(decimal.RequireFromString("6.5")) {
		t.Errorf("MarketMortgageRate = %s, want 6.5", cfg.MarketMortgageRate)
	}
	if cfg.LogFormat() != "json" {
		t.Errorf("LogFormat = %q, want json", cfg.LogFormat())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoad_Environment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PLANNER_LISTEN_ADDR", ":9090")
	t.Setenv("PLANNER_DEBUG", "true")
	t.Setenv("PLANNER_DATA_DIR", dir)
	t.Setenv("PLANNER_SIM_ITERATIONS", "5000")
	t.Setenv("PLANNER_SIM_WORKERS", "2")
	t.Setenv("PLANNER_SIM_SEED", "42")
	t.Setenv("PLANNER_SIMULATE_SCENARIOS", "1")
	t.Setenv("PLANNER_MARKET_MORTGAGE_RATE", "5.75")
	t.Setenv("PLANNER_PASSPHRASE", "hunter2")

	cfg := Load()
	if cfg.ListenAddr != ":9090" || !cfg.Debug || cfg.LogLevel != "debug" || cfg.LogFormat() != "text" {
		t.Errorf("server settings = %q debug=%v level=%q", cfg.ListenAddr, cfg.Debug, cfg.LogLevel)
	}
	if cfg.DataDirectory != dir {
		t.Errorf("DataDirectory = %q, want %q", cfg.DataDirectory, dir)
	}
	if cfg.SimulationIterations != 5000 || cfg.SimulationWorkers != 2 || cfg.SimulationSeed != 42 || !cfg.SimulateScenarios {
		t.Errorf("simulation settings = %+v", cfg)
	}
	if !cfg.MarketMortgageRate.Equal(decimal.RequireFromString("5.75")) {
		t.Errorf("MarketMortgageRate = %s, want 5.75", cfg.MarketMortgageRate)
	}
	if cfg.Passphrase != "hunter2" {
		t.Errorf("Passphrase not loaded")
	}

	nested := filepath.Join(dir, "a", "b")
	cfg.DataDirectory = nested
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
}

func TestLoad_IgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("PLANNER_SIM_ITERATIONS", "lots")
	t.Setenv("PLANNER_MARKET_MORTGAGE_RATE", "cheap")

	cfg := Load()
	if cfg.SimulationIterations != 1000 {
		t.Errorf("SimulationIterations = %d, want the default", cfg.SimulationIterations)
	}
	if !cfg.MarketMortgageRate.Equal(decimal.RequireFromString("6.5")) {
		t.Errorf("MarketMortgageRate = %s, want the default", cfg.MarketMortgageRate)
	}
}
