package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"finplan/internal/config"
	"finplan/internal/services/intelligence"
	"finplan/internal/services/storage"
)

// app carries what every command shares
type app struct {
	cfg    *config.Config
	log    *logrus.Logger
	out    io.Writer
	errOut io.Writer
	prompt func(label string) (string, error)
	now    func() time.Time // nil uses the wall clock
}

func (a *app) register(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")

	c.Register(&analyzeCmd{app: a}, "planning")
	c.Register(&simulateCmd{app: a}, "planning")

	c.Register(&payoffCmd{app: a}, "calculators")
	c.Register(&avalancheCmd{app: a}, "calculators")
	c.Register(&retireCmd{app: a}, "calculators")

	c.Register(&profileCmd{app: a}, "profiles")
	c.Register(&encryptCmd{app: a}, "profiles")

	c.Register(&versionCmd{app: a}, "")
}

// fail reports err on the error output
func (a *app) fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(a.errOut, err)
	return subcommands.ExitFailure
}

func (a *app) planner(simulate bool) *intelligence.Orchestrator {
	return intelligence.New(a.log, intelligence.Options{
		Now:                  a.now,
		SimulateScenarios:    simulate || a.cfg.SimulateScenarios,
		SimulationIterations: a.cfg.SimulationIterations,
		Seed:                 a.cfg.SimulationSeed,
		MarketMortgageRate:   a.cfg.MarketMortgageRate,
		Workers:              a.cfg.SimulationWorkers,
		BatchSize:            a.cfg.SimulationBatchSize,
	})
}

// passphrase returns PLANNER_PASSPHRASE, or asks for one
func (a *app) passphrase(label string) (string, error) {
	if a.cfg.Passphrase != "" {
		return a.cfg.Passphrase, nil
	}
	return a.prompt(label)
}

// openStore opens the profile store, unlocking it when encrypted
func (a *app) openStore() (*storage.ProfileStore, error) {
	store, err := storage.New(a.cfg.DataDirectory, a.log)
	if err != nil {
		return nil, err
	}
	if store.IsEncrypted() {
		pass, err := a.passphrase("Passphrase: ")
		if err != nil {
			return nil, err
		}
		if err := store.Unlock(pass); err != nil {
			return nil, err
		}
	}
	return storage.NewProfileStore(store), nil
}

func (a *app) writeJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readJSON(name string, v any) error {
	data, err := os.ReadFile(name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

var errNoTerminal = errors.New("stdin is not a terminal, set PLANNER_PASSPHRASE")

func promptPassphrase(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errNoTerminal
	}
	fmt.Fprint(os.Stderr, label)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read passphrase: %w", err)
	}
	return string(b), nil
}

// decimalFlag is a flag.Value holding a decimal amount
type decimalFlag struct {
	value decimal.Decimal
	set   bool
}

func (d *decimalFlag) String() string {
	if d == nil || !d.set {
		return ""
	}
	return d.value.String()
}

func (d *decimalFlag) Set(s string) error {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	d.value, d.set = v, true
	return nil
}
