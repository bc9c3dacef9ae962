// Command planner runs goal analyses, simulations and the financial
// calculators from the command line, and manages the profile store.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"finplan/internal/config"
	"finplan/internal/logging"
)

func main() {
	cfg := config.Load()
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))

	flag.StringVar(&cfg.DataDirectory, "data", cfg.DataDirectory, "Directory of the profile store")

	a := &app{
		cfg:    cfg,
		log:    logging.New(cfg.LogLevel, "text", os.Stderr),
		out:    os.Stdout,
		errOut: os.Stderr,
		prompt: promptPassphrase,
	}
	a.register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
