package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// MaxSimulationIterations caps the Monte Carlo iterations of a single run
const MaxSimulationIterations = 1_000_000

// Config holds application configuration
type Config struct {
	// Server settings
	ListenAddr string `json:"listen_addr"`
	Debug      bool   `json:"debug"`
	LogLevel   string `json:"log_level"`

	// Profile and report store root
	DataDirectory string `json:"data_directory"`

	// Simulation
	SimulationIterations int   `json:"simulation_iterations"`
	SimulationWorkers    int   `json:"simulation_workers"`
	SimulationBatchSize  int   `json:"simulation_batch_size"`
	SimulationSeed       int64 `json:"simulation_seed"`
	SimulateScenarios    bool  `json:"simulate_scenarios"`

	// Recommendations
	MarketMortgageRate decimal.Decimal `json:"market_mortgage_rate"`

	// Non-interactive passphrase for the encrypted store
	Passphrase string `json:"-"`
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	return &Config{
		ListenAddr:           ":8080",
		LogLevel:             "info",
		DataDirectory:        filepath.Join(wd, "data"),
		SimulationIterations: 1000,
		SimulationWorkers:    runtime.NumCPU(),
		SimulationBatchSize:  100,
		MarketMortgageRate:   decimal.RequireFromString("6.5"),
	}
}

// Load reads configuration from the environment, after seeding it from a
// .env file when one exists.
func Load() *Config {
	_ = godotenv.Load()
	cfg := DefaultConfig()

	cfg.ListenAddr = getEnv("PLANNER_LISTEN_ADDR", cfg.ListenAddr)
	cfg.Debug = getEnvBool("PLANNER_DEBUG", cfg.Debug)
	cfg.LogLevel = getEnv("PLANNER_LOG_LEVEL", cfg.LogLevel)
	if cfg.Debug {
		cfg.LogLevel = "debug"
	}
	cfg.DataDirectory = getEnv("PLANNER_DATA_DIR", cfg.DataDirectory)

	cfg.SimulationIterations = getEnvInt("PLANNER_SIM_ITERATIONS", cfg.SimulationIterations)
	cfg.SimulationWorkers = getEnvInt("PLANNER_SIM_WORKERS", cfg.SimulationWorkers)
	cfg.SimulationBatchSize = getEnvInt("PLANNER_SIM_BATCH", cfg.SimulationBatchSize)
	if seed := os.Getenv("PLANNER_SIM_SEED"); seed != "" {
		if v, err := strconv.ParseInt(seed, 10, 64); err == nil {
			cfg.SimulationSeed = v
		}
	}
	cfg.SimulateScenarios = getEnvBool("PLANNER_SIMULATE_SCENARIOS", cfg.SimulateScenarios)

	if rate := os.Getenv("PLANNER_MARKET_MORTGAGE_RATE"); rate != "" {
		if v, err := decimal.NewFromString(rate); err == nil {
			cfg.MarketMortgageRate = v
		}
	}
	cfg.Passphrase = os.Getenv("PLANNER_PASSPHRASE")

	return cfg
}

// LogFormat is text while debugging and JSON otherwise
func (c *Config) LogFormat() string {
	if c.Debug {
		return "text"
	}
	return "json"
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.ListenAddr) == "" {
		problems = append(problems, "listen address cannot be empty")
	}
	if c.DataDirectory == "" {
		problems = append(problems, "data directory cannot be empty")
	}
	if c.SimulationIterations < 1 || c.SimulationIterations > MaxSimulationIterations {
		problems = append(problems, fmt.Sprintf("invalid simulation iterations %d: must be between 1 and %d",
			c.SimulationIterations, MaxSimulationIterations))
	}
	if c.SimulationWorkers < 1 {
		problems = append(problems, fmt.Sprintf("invalid simulation workers %d: must be at least 1", c.SimulationWorkers))
	}
	if c.SimulationBatchSize < 1 {
		problems = append(problems, fmt.Sprintf("invalid simulation batch size %d: must be at least 1", c.SimulationBatchSize))
	}
	if c.MarketMortgageRate.IsNegative() {
		problems = append(problems, fmt.Sprintf("invalid market mortgage rate %s: must not be negative", c.MarketMortgageRate))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// EnsureDirectories creates the data directory if it doesn't exist
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.DataDirectory, 0700); err != nil {
		return fmt.Errorf("create data directory %s: %w", c.DataDirectory, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultValue
	}
}
