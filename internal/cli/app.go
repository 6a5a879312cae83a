// Package cli implements the khata command-line tool on top of the ledger service.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/google/subcommands"

	"github.com/khata-ledger/internal/domain/shared"
	"github.com/khata-ledger/internal/khata"
)

// App carries what every command needs. Output goes to Out, diagnostics to Err.
type App struct {
	Service *khata.Service
	Out     io.Writer
	Err     io.Writer
}

// Register adds the khata commands and the builtin help commands to c
func Register(c *subcommands.Commander, app *App) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")

	c.Register(&addContactCmd{app: app}, "contacts")
	c.Register(&contactsCmd{app: app}, "contacts")
	c.Register(&balanceCmd{app: app}, "contacts")
	c.Register(&recordCmd{app: app}, "entries")
	c.Register(&entriesCmd{app: app}, "entries")
	c.Register(&verifyCmd{app: app}, "maintenance")
}

// NewCommander builds a commander over topLevelFlags with every khata command registered
func NewCommander(topLevelFlags *flag.FlagSet, name string, app *App) *subcommands.Commander {
	commander := subcommands.NewCommander(topLevelFlags, name)
	Register(commander, app)
	return commander
}

// Run parses args and executes the selected command
func Run(ctx context.Context, app *App, name string, args []string) subcommands.ExitStatus {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(app.Err)
	if err := fs.Parse(args); err != nil {
		return subcommands.ExitUsageError
	}
	return NewCommander(fs, name, app).Execute(ctx)
}

// fail reports err and picks the exit status: bad input is a usage error, the rest a failure
func (a *App) fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(a.Err, "error:", err)
	if errors.Is(err, shared.ValidationError{}) {
		return subcommands.ExitUsageError
	}
	return subcommands.ExitFailure
}

func (a *App) usage(f *flag.FlagSet, msg string) subcommands.ExitStatus {
	fmt.Fprintln(a.Err, "error:", msg)
	f.SetOutput(a.Err)
	f.PrintDefaults()
	return subcommands.ExitUsageError
}
