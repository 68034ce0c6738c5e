package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/fixrc/cmd/fixrc/opts"
	"github.com/walteh/fixrc/cmd/fixrc/ui"
	"github.com/walteh/fixrc/pkg/config"
	"github.com/walteh/fixrc/pkg/rules"
	"gitlab.com/tozd/go/errors"
)

var (
	// Flags
	configFile string
	debug      bool
)

// errInit marks failures before any file was considered: bad config or
// a broken rule set. They exit 2, like scope errors.
var errInit = errors.Base("initialization failed")

// newRootOpts creates a new rootOpts with initialized dependencies
func newRootOpts(ctx context.Context) (*opts.RootOpts, error) {
	userLogger := ui.NewUserLogger(ctx)

	cfg, err := config.Load(ctx, configFile)
	if err != nil {
		userLogger.LogValidation(false, "Configuration is invalid", err)
		return nil, errors.Join(errInit, errors.Errorf("loading config: %w", err))
	}

	registry, err := rules.WithCustom(cfg.Patterns)
	if err != nil {
		userLogger.LogValidation(false, "Rule definitions are invalid", err)
		return nil, errors.Join(errInit, errors.Errorf("building rule registry: %w", err))
	}

	return &opts.RootOpts{
		Config:     cfg,
		Registry:   registry,
		UserLogger: userLogger,
	}, nil
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", ".fixrc.hcl", "config file path")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
}

// setupLogging configures zerolog based on flags
func setupLogging() {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(level)
	zerolog.DefaultContextLogger = &logger
}
