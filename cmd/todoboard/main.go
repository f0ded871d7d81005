// Package main is the entry point for the todoboard CLI.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"todoboard/internal/backend/rest"
	"todoboard/internal/cli"
	"todoboard/internal/commands"
	"todoboard/internal/config"
	"todoboard/internal/service"
	"todoboard/internal/tokenstore"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	factory := func(cfg *config.Config, tokens tokenstore.Store, logger *slog.Logger) (service.Service, error) {
		return rest.New(cfg, tokens, logger), nil
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory, cli.WithStdin(os.Stdin))

	// Run and exit with code
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}
