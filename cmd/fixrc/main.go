package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/walteh/fixrc/cmd/fixrc/commands"
	"github.com/walteh/fixrc/cmd/fixrc/opts"
	"github.com/walteh/fixrc/pkg/rule"
	"github.com/walteh/fixrc/pkg/scan"
	"gitlab.com/tozd/go/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Root options are filled in PersistentPreRunE, after flag parsing,
	// so --config and --debug take effect.
	rootOpts := &opts.RootOpts{}

	rootCmd := &cobra.Command{
		Use:   "fixrc",
		Short: "A pattern-driven repair pipeline for source trees",
		Long: `fixrc scans a source tree, applies an ordered set of idempotent
repair rules (import paths, handler signatures, naming, cleanup), and
rewrites only the files whose content actually changed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging()
			built, err := newRootOpts(cmd.Context())
			if err != nil {
				return err
			}
			*rootOpts = *built
			return nil
		},
	}

	// Add shared flags
	addRootFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(
		commands.NewRunCmd(rootOpts),
		commands.NewRulesCmd(rootOpts),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, commands.ErrRunFailures) {
			fmt.Fprintln(os.Stderr, "fixrc:", err)
		}
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit status: 2 for scope,
// rule-definition, and configuration problems (nothing was attempted),
// 1 for everything else.
func exitCode(err error) int {
	var scopeErr *scan.ScopeError
	var defErr *rule.DefinitionError
	if errors.As(err, &scopeErr) || errors.As(err, &defErr) || errors.Is(err, errInit) {
		return 2
	}
	return 1
}
