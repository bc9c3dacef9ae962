package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"finplan/internal/models"
	"finplan/internal/services/storage"
	"finplan/internal/version"
)

type profileCmd struct {
	*app
}

func (*profileCmd) Name() string     { return "profile" }
func (*profileCmd) Synopsis() string { return "manage stored profiles" }
func (*profileCmd) Usage() string {
	return `planner profile list
planner profile import <file> [<id>]
planner profile export <id>
planner profile delete <id>

  Profiles are analysis inputs kept in the data directory, encrypted when the
  store is. Import validates the document and assigns a random id when none
  is given. Export prints the profile as JSON.
`
}

func (*profileCmd) SetFlags(*flag.FlagSet) {}

func (c *profileCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	action, args := args[0], args[1:]

	want := map[string][2]int{"list": {0, 0}, "import": {1, 2}, "export": {1, 1}, "delete": {1, 1}}
	n, ok := want[action]
	if !ok || len(args) < n[0] || len(args) > n[1] {
		f.Usage()
		return subcommands.ExitUsageError
	}

	store, err := c.openStore()
	if err != nil {
		return c.fail(err)
	}

	switch action {
	case "list":
		ids, err := store.ListProfiles()
		if err != nil {
			return c.fail(err)
		}
		for _, id := range ids {
			fmt.Fprintln(c.out, id)
		}
	case "import":
		var input models.AnalysisInput
		if err := readJSON(args[0], &input); err != nil {
			return c.fail(err)
		}
		for _, g := range input.Goals {
			if err := g.Validate(); err != nil {
				return c.fail(fmt.Errorf("goal %q: %w", g.ID, err))
			}
		}
		id := models.NewID()
		if len(args) == 2 {
			id = args[1]
		}
		if err := store.SaveProfile(id, input); err != nil {
			return c.fail(err)
		}
		fmt.Fprintln(c.out, id)
	case "export":
		input, err := store.LoadProfile(args[0])
		if err != nil {
			return c.fail(err)
		}
		if err := c.writeJSON(input); err != nil {
			return c.fail(err)
		}
	case "delete":
		if err := store.DeleteProfile(args[0]); err != nil {
			return c.fail(err)
		}
	}
	return subcommands.ExitSuccess
}

type encryptCmd struct {
	*app
	disable bool
}

func (*encryptCmd) Name() string     { return "encrypt" }
func (*encryptCmd) Synopsis() string { return "encrypt or decrypt the profile store" }
func (*encryptCmd) Usage() string {
	return `planner encrypt [-disable]

  Encrypts every stored profile and report with a passphrase, or with
  -disable decrypts them again. The passphrase is read from
  PLANNER_PASSPHRASE or asked for on the terminal.
`
}

func (c *encryptCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.disable, "disable", false, "Decrypt the store")
}

func (c *encryptCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, err := storage.New(c.cfg.DataDirectory, c.log)
	if err != nil {
		return c.fail(err)
	}

	if c.disable {
		pass, err := c.passphrase("Passphrase: ")
		if err != nil {
			return c.fail(err)
		}
		if err := store.DisableEncryption(pass); err != nil {
			return c.fail(err)
		}
		fmt.Fprintln(c.out, "Profile store decrypted.")
		return subcommands.ExitSuccess
	}

	if store.IsEncrypted() {
		return c.fail(storage.ErrAlreadyEncrypted)
	}
	pass, err := c.passphrase("New passphrase: ")
	if err != nil {
		return c.fail(err)
	}
	if c.cfg.Passphrase == "" {
		confirm, err := c.prompt("Repeat passphrase: ")
		if err != nil {
			return c.fail(err)
		}
		if confirm != pass {
			return c.fail(errors.New("passphrases do not match"))
		}
	}
	if err := store.EnableEncryption(pass); err != nil {
		return c.fail(err)
	}
	fmt.Fprintln(c.out, "Profile store encrypted.")
	return subcommands.ExitSuccess
}

type versionCmd struct {
	*app
}

func (*versionCmd) Name() string           { return "version" }
func (*versionCmd) Synopsis() string       { return "print the version" }
func (*versionCmd) Usage() string          { return "planner version\n" }
func (*versionCmd) SetFlags(*flag.FlagSet) {}
func (c *versionCmd) Execute(context.Context, *flag.FlagSet, ...interface{}) subcommands.ExitStatus {
	fmt.Fprintln(c.out, version.Get().String())
	return subcommands.ExitSuccess
}
