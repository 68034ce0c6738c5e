package runner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/walteh/fixrc/pkg/report"
	"github.com/walteh/fixrc/pkg/rule"
	"github.com/walteh/fixrc/pkg/writer"
	"golang.org/x/sync/errgroup"
)

// 🎱 Pool processes files concurrently. Files are independent, so the
// only shared state is the report aggregator; each worker builds its
// result locally and hands it over once.
type Pool struct {
	// Root is the scan root relative paths resolve against.
	Root string
	// Registry is the validated, possibly tag-filtered rule set.
	Registry *rule.Registry
	// Jobs caps concurrent workers; <=0 means GOMAXPROCS.
	Jobs int
	// DryRun computes and reports the change set without writing.
	DryRun bool
}

// Run processes every file and returns the aggregate report. On
// cancellation no new files are scheduled, in-flight files finish, and
// the partial report is still returned alongside the context error.
func (p *Pool) Run(ctx context.Context, files []string) (*report.RunReport, error) {
	logger := zerolog.Ctx(ctx)

	jobs := p.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	run := &Runner{Registry: p.Registry}
	wr := &writer.Writer{BaseDir: p.Root, DryRun: p.DryRun}
	agg := report.NewAggregator(files)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, max(len(files), 1)))

	for _, path := range files {
		path := path
		g.Go(func() error {
			// Stop scheduling on cancellation, let started files finish.
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			agg.Add(p.processFile(gctx, run, wr, path))
			return nil
		})
	}

	err := g.Wait()
	rep := agg.Report()

	logger.Debug().
		Int("scanned", rep.FilesScanned).
		Int("modified", rep.FilesModified).
		Int("errors", len(rep.Errors)).
		Msg("run complete")

	return rep, err
}

// processFile runs the full per-file sequence: read, transform, commit.
// Every failure is recorded in the result, never propagated.
func (p *Pool) processFile(ctx context.Context, run *Runner, wr *writer.Writer, path string) report.FileResult {
	absPath := filepath.Join(p.Root, filepath.FromSlash(path))

	original, err := os.ReadFile(absPath)
	if err != nil {
		return report.FileResult{
			Path:     path,
			RuleHits: map[string]int{},
			Errors: []report.RunError{{
				Path:  path,
				Cause: err.Error(),
			}},
		}
	}

	rec, res := run.Transform(path, original)

	outcome, err := wr.Commit(ctx, path, rec.Original, rec.Current)
	if err != nil {
		res.Errors = append(res.Errors, report.RunError{
			Path:  path,
			Cause: err.Error(),
		})
		res.Dirty = false // nothing actually changed on disk
		return res
	}
	res.Written = outcome == writer.Written

	return res
}
