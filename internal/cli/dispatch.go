package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"todoboard/internal/commands"
	"todoboard/internal/config"
	"todoboard/internal/exitcode"
	"todoboard/internal/service"
	"todoboard/internal/session"
	"todoboard/internal/tokenstore"
)

// ServiceFactory creates the resource client for one invocation.
// Used to inject the backend during dispatch.
type ServiceFactory func(cfg *config.Config, tokens tokenstore.Store, logger *slog.Logger) (service.Service, error)

// StoreFactory opens the token store selected by cfg.
type StoreFactory func(cfg *config.Config) (tokenstore.Store, error)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithStdin sets the input read by prompting commands. Defaults to none.
func WithStdin(r io.Reader) Option {
	return func(d *Dispatcher) { d.stdin = r }
}

// WithTokenStore replaces tokenstore.Open.
func WithTokenStore(f StoreFactory) Option {
	return func(d *Dispatcher) { d.stores = f }
}

// WithClock sets the clock commands use for relative dates.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  ServiceFactory
	stores   StoreFactory
	stdin    io.Reader
	now      func() time.Time
}

// NewDispatcher creates a new dispatcher with the given registry and service factory.
func NewDispatcher(registry *commands.Registry, factory ServiceFactory, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		factory:  factory,
		stores:   tokenstore.Open,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> dispatch to "list" command with no args
	if len(args) == 0 {
		return d.dispatch(ctx, "list", nil, out, errOut)
	}

	cmdName := args[0]

	// If first token starts with -, it's an error (flags require a command)
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatch(ctx, cmdName, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	// Create flag set with custom error handling
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	// Common flags
	var (
		configDir string
		apiURL    string
		quiet     bool
		debug     bool
	)
	fs.StringVar(&configDir, "config", "", "")
	fs.StringVar(&apiURL, "api", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	// Register command-specific flags
	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		return flagError(errOut, err)
	}

	// Check if first positional arg starts with - (should have been parsed as flag)
	positionalArgs := fs.Args()
	if len(positionalArgs) > 0 && strings.HasPrefix(positionalArgs[0], "-") {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positionalArgs[0])
		return exitcode.UserError
	}

	cfg, err := config.New(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	if apiURL != "" {
		if err := cfg.SetAPIURL(apiURL); err != nil {
			fmt.Fprintf(errOut, "error: %s\n", err)
			return exitcode.UserError
		}
	}
	cfg.Quiet = quiet
	cfg.Debug = debug
	if d.stdin != nil {
		cfg.Stdin = bufio.NewReader(d.stdin)
	}

	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))

	store, err := d.stores(cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: auth error: open token store: %s\n", err)
		return exitcode.AuthError
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close token store", "error", err)
		}
	}()

	svc, err := d.factory(cfg, store, logger)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %s\n", err)
		return exitcode.BackendError
	}

	sess := session.New(store, svc,
		session.WithLogger(logger),
		session.WithKeepTokenOnNetworkError(cfg.KeepTokenOnNetworkError),
	)

	// Check auth requirements
	if cmd.NeedsAuth() {
		if err := sess.CheckAuth(ctx); err != nil && !service.IsAuthError(err) {
			return commands.Fail(errOut, err)
		}
		if !sess.Authenticated() {
			fmt.Fprintln(errOut, "error: not logged in (run: todoboard login)")
			return exitcode.AuthError
		}
		logger.Debug("session verified", "email", sess.State().User.Email)
	}

	env := &commands.Env{
		Config:  cfg,
		Service: svc,
		Session: sess,
		Tokens:  store,
		Log:     logger,
		Now:     d.now,
	}
	return cmd.Run(ctx, env, positionalArgs, out, errOut)
}

// flagError reports a flag parsing failure.
func flagError(errOut io.Writer, err error) int {
	errStr := err.Error()

	// Check for missing flag value
	if strings.HasPrefix(errStr, "flag needs an argument:") {
		flagName := strings.TrimSpace(strings.TrimPrefix(errStr, "flag needs an argument:"))
		fmt.Fprintf(errOut, "error: flag needs an argument: %s\n", flagName)
		return exitcode.UserError
	}

	// Check for unknown flag
	if strings.HasPrefix(errStr, "flag provided but not defined:") {
		flagName := strings.TrimPrefix(errStr, "flag provided but not defined: ")
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", flagName)
		return exitcode.UserError
	}

	fmt.Fprintf(errOut, "error: %s\n", errStr)
	return exitcode.UserError
}
