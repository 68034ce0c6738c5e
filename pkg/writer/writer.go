// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package writer persists transformed content: byte-compare first,
// then an atomic temp-file-and-rename write only when content differs.
package writer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ❌ WriteError reports a failed write. The original file is always
// preserved; the error is recorded and the batch continues.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// 📊 Outcome is the terminal state of one file.
type Outcome int

const (
	// Skipped: content unchanged, or dry-run. No write, no timestamp change.
	Skipped Outcome = iota
	// Written: content differed and the file was replaced atomically.
	Written
)

func (o Outcome) String() string {
	switch o {
	case Written:
		return "written"
	default:
		return "skipped"
	}
}

// 💾 Writer commits per-file results under a base directory.
type Writer struct {
	// BaseDir is the scan root all relative paths resolve against.
	BaseDir string
	// DryRun computes outcomes without touching the tree.
	DryRun bool
}

// Commit compares original and transformed content and writes only on a
// real difference. The write goes to a temp file in the target's own
// directory and is renamed into place, so a crash mid-write never
// leaves a half-written source file; the temp file is removed on every
// failure path.
func (w *Writer) Commit(ctx context.Context, relPath string, original, transformed []byte) (Outcome, error) {
	logger := zerolog.Ctx(ctx)

	if bytes.Equal(original, transformed) {
		return Skipped, nil
	}
	if w.DryRun {
		logger.Debug().Str("path", relPath).Msg("dry-run: would write")
		return Skipped, nil
	}

	absPath := filepath.Join(w.BaseDir, filepath.FromSlash(relPath))

	// Keep the original permissions on the replacement file.
	mode := os.FileMode(0644)
	if info, err := os.Stat(absPath); err == nil {
		mode = info.Mode().Perm()
	}

	if err := w.writeAtomic(absPath, transformed, mode); err != nil {
		return Skipped, &WriteError{Path: relPath, Err: err}
	}

	logger.Debug().
		Str("path", relPath).
		Int("bytes", len(transformed)).
		Msg("file written")

	return Written, nil
}

func (w *Writer) writeAtomic(absPath string, content []byte, mode os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(absPath), ".fixrc-*.tmp")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	if _, err := tmp.Write(content); err != nil {
		cleanup()
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		cleanup()
		return errors.Errorf("setting temp file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.Errorf("closing temp file: %w", err)
	}

	// Rename is the atomic commit point.
	if err := os.Rename(tmpPath, absPath); err != nil {
		os.Remove(tmpPath)
		return errors.Errorf("renaming temp file: %w", err)
	}
	return nil
}
