// Package app provides the Herald server application.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/viper"

	"github.com/kart-io/herald/cmd/herald/app/options"
	"github.com/kart-io/herald/pkg/app"
	logopts "github.com/kart-io/herald/pkg/options/logger"
)

const (
	// Name is the name of the application.
	Name = "herald"

	// commandDesc is the description of the command.
	commandDesc = `Herald Service

The RSS content ingestion and LINE push agent service.

This server provides:
  - Feed item ingestion with content-based deduplication
  - Automatic translation of ingested items to Traditional Chinese
  - Bard push agent for summarized news delivery over LINE
  - Lorekeeper Q&A agent with per-user daily quotas
  - LINE webhook handling with signature verification and event dedup`
)

// NewApp creates and returns a new App object with default parameters.
func NewApp() *app.App {
	opts := options.NewServerOptions()
	application := app.NewApp(
		app.WithName(Name),
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithRunFunc(run(opts)),
	)

	return application
}

// run contains the main logic for initializing and running the server.
func run(opts *options.ServerOptions) app.RunFunc {
	return func() error {
		// Load the configuration options
		cfg, err := opts.Config()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		ctx := setupSignalContext()

		// Build the server using the configuration
		server, err := cfg.NewServer(ctx)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		// Reload the logger when the config file changes on disk
		watcher := app.NewWatcher()
		watcher.Subscribe("log", func(v *viper.Viper) error {
			reloaded := logopts.NewOptions()
			if err := v.UnmarshalKey("log", reloaded); err != nil {
				return err
			}
			if err := reloaded.Validate(); err != nil {
				return err
			}
			return reloaded.Init()
		})
		watcher.Start()

		// Run the server with signal context for graceful shutdown
		return server.Run(ctx)
	}
}

// setupSignalContext returns a context that is cancelled on SIGINT or SIGTERM.
func setupSignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		cancel()
		<-c
		os.Exit(1)
	}()
	return ctx
}
