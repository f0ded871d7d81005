// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"time"

	"todoboard/internal/config"
	"todoboard/internal/service"
	"todoboard/internal/session"
	"todoboard/internal/tokenstore"
)

// Env is what a command runs against. The dispatcher builds it once per
// invocation.
type Env struct {
	Config  *config.Config
	Service service.Service
	Session *session.Session
	Tokens  tokenstore.Store
	Log     *slog.Logger

	// Now is the clock used for relative dates. Nil means time.Now.
	Now func() time.Time
}

func (e *Env) logger() *slog.Logger {
	if e.Log != nil {
		return e.Log
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command requires an authenticated session.
	// The dispatcher verifies the session before Run.
	NeedsAuth() bool

	// RegisterFlags registers command-specific flags. It also resets any
	// value left over from a previous run.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int
}
