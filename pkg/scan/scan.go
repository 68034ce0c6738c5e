// Package scan resolves the candidate file set for a run: a stable,
// sorted, deduplicated list of paths strictly inside the scan root.
package scan

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ScopeError reports an invalid root or scope. It is fatal: the run
// aborts before any file is touched.
type ScopeError struct {
	Root string
	Err  error
}

func (e *ScopeError) Error() string {
	return fmt.Sprintf("scope %q: %v", e.Root, e.Err)
}

func (e *ScopeError) Unwrap() error { return e.Err }

// Resolver enumerates candidate files from a root directory.
type Resolver struct {
	// Root is the directory to scan. Must exist.
	Root string
	// Includes are doublestar globs over slash-relative paths.
	// Empty means every file.
	Includes []string
	// Excludes remove matches after includes are applied.
	Excludes []string
}

// Resolve walks the root and returns the selected paths, slash-relative
// to the root, sorted and deduplicated. Symlinks are never candidates:
// a directory target is not a file, an out-of-root target escapes the
// scope, and an in-root target is reached by the walk under its own
// path — selecting the link too would transform the same file twice
// and the atomic rename would replace the link with a regular file.
func (r *Resolver) Resolve(ctx context.Context) ([]string, error) {
	logger := zerolog.Ctx(ctx)

	for _, g := range append(append([]string{}, r.Includes...), r.Excludes...) {
		if !doublestar.ValidatePattern(g) {
			return nil, &ScopeError{Root: r.Root, Err: errors.Errorf("invalid glob %q", g)}
		}
	}

	info, err := os.Stat(r.Root)
	if err != nil {
		return nil, &ScopeError{Root: r.Root, Err: errors.Errorf("stat root: %w", err)}
	}
	if !info.IsDir() {
		return nil, &ScopeError{Root: r.Root, Err: errors.Errorf("root is not a directory")}
	}

	// The resolved root is the containment boundary for symlink checks.
	rootReal, err := filepath.EvalSymlinks(r.Root)
	if err != nil {
		return nil, &ScopeError{Root: r.Root, Err: errors.Errorf("resolving root: %w", err)}
	}

	seen := map[string]bool{}
	var files []string

	walkErr := filepath.WalkDir(r.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.Type()&fs.ModeSymlink != 0 {
			// d.IsDir() reports the link itself, never the target, so
			// the target has to be resolved and stat'ed to tell a
			// directory link from a file link.
			target, err := filepath.EvalSymlinks(path)
			if err != nil {
				logger.Debug().Str("path", path).Err(err).Msg("skipping broken symlink")
				return nil
			}
			info, err := os.Stat(target)
			if err != nil {
				logger.Debug().Str("path", path).Err(err).Msg("skipping unreadable symlink target")
				return nil
			}
			switch {
			case info.IsDir():
				logger.Debug().Str("path", path).Str("target", target).Msg("skipping symlinked directory")
			case !within(rootReal, target):
				logger.Debug().Str("path", path).Str("target", target).Msg("skipping symlink outside root")
			default:
				logger.Debug().Str("path", path).Str("target", target).Msg("skipping symlink alias of in-tree file")
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(r.Root, path)
		if err != nil {
			return errors.Errorf("relativizing %s: %w", path, err)
		}
		rel = filepath.ToSlash(rel)
		if strings.HasPrefix(rel, "../") {
			return errors.Errorf("path %s escapes root", path)
		}

		if !r.selected(rel) || seen[rel] {
			return nil
		}
		seen[rel] = true
		files = append(files, rel)
		return nil
	})
	if walkErr != nil {
		if ctx.Err() != nil {
			return nil, walkErr
		}
		return nil, &ScopeError{Root: r.Root, Err: errors.Errorf("walking root: %w", walkErr)}
	}

	sort.Strings(files)

	logger.Debug().
		Str("root", r.Root).
		Int("files", len(files)).
		Msg("resolved file set")

	return files, nil
}

// selected applies include then exclude globs to a slash-relative path.
func (r *Resolver) selected(rel string) bool {
	if len(r.Includes) > 0 {
		matched := false
		for _, g := range r.Includes {
			if ok, _ := doublestar.Match(g, rel); ok {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, g := range r.Excludes {
		if ok, _ := doublestar.Match(g, rel); ok {
			return false
		}
	}
	return true
}

// within reports whether path is rootReal or inside it.
func within(rootReal, path string) bool {
	rel, err := filepath.Rel(rootReal, path)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, ".."+string(filepath.Separator)) && rel != "..")
}
