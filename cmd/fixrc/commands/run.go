package commands

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/fixrc/cmd/fixrc/opts"
	"github.com/walteh/fixrc/pkg/report"
	"github.com/walteh/fixrc/pkg/runner"
	"github.com/walteh/fixrc/pkg/scan"
	"gitlab.com/tozd/go/errors"
)

// ErrRunFailures marks a run that completed but recorded transform or
// write failures; the process exits 1 rather than 0.
var ErrRunFailures = errors.Base("run completed with failures")

// NewRunCmd creates the run command
func NewRunCmd(root *opts.RootOpts) *cobra.Command {
	var (
		ruleTags []string
		dryRun   bool
		verbose  bool
		jobs     int
	)

	cmd := &cobra.Command{
		Use:   "run [root]",
		Short: "Scan a source tree and apply the repair pipeline",
		Long: `Run resolves the candidate files under the root, applies every
registered stage's rules in order, writes changed files atomically, and
prints the aggregate report. Re-running over an already repaired tree
modifies nothing.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "run").Logger().WithContext(ctx)

			cfg := root.Config
			scanRoot := cfg.Root
			if len(args) == 1 {
				scanRoot = args[0]
			}
			if jobs == 0 {
				jobs = cfg.Jobs
			}
			if len(ruleTags) == 0 {
				ruleTags = cfg.Rules
			}

			registry, err := root.Registry.FilterTags(ruleTags)
			if err != nil {
				return err
			}

			resolver := &scan.Resolver{
				Root:     scanRoot,
				Includes: cfg.Include,
				Excludes: cfg.Exclude,
			}
			files, err := resolver.Resolve(ctx)
			if err != nil {
				return err
			}

			root.UserLogger.LogRunStart(scanRoot, dryRun)

			pool := &runner.Pool{
				Root:     scanRoot,
				Registry: registry,
				Jobs:     jobs,
				DryRun:   dryRun,
			}
			rep, runErr := pool.Run(ctx, files)

			// The report is printed even after cancellation: every
			// finished file is accounted for.
			report.Format(os.Stdout, rep, verbose)
			root.UserLogger.LogRunFinish(rep.FilesScanned, rep.FilesModified, len(rep.Errors))

			if runErr != nil {
				return errors.Errorf("run interrupted: %w", runErr)
			}
			if rep.HasFailures() {
				return errors.WithStack(ErrRunFailures)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&ruleTags, "rules", nil, "restrict to rules carrying these tags")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute and report the change set without writing")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "include per-rule hit detail")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "worker count (default: number of CPUs)")

	return cmd
}
