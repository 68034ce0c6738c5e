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

// Package rule defines the transformation model: pure, named content
// transforms with a path scope, grouped into ordered stages.
package rule

import (
	"slices"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// ✂️ Edit is a single span replacement in the coordinates of the content
// the rule received. Start and End are byte offsets, End exclusive.
type Edit struct {
	Start int
	End   int
	Text  string
}

// 🎯 Rule is a named, pure, total transform over file content.
// Edits must not perform I/O and must return sorted, non-overlapping
// spans. A rule that has nothing to do returns no edits.
type Rule interface {
	// ID uniquely identifies the rule across the whole registry
	ID() string
	// Tags returns the tags used for CLI rule filtering
	Tags() []string
	// AppliesTo reports whether the rule is in scope for a file path
	// (slash-separated, relative to the scan root)
	AppliesTo(path string) bool
	// Edits computes the span replacements for one file's content
	Edits(path string, content []byte) ([]Edit, error)
}

// Precondition is an optional content gate checked before a rule runs.
type Precondition func(path string, content []byte) bool

// 🔧 meta carries the scope fields shared by all rule kinds
type meta struct {
	id   string
	tags []string
	glob string
	pre  Precondition
}

func (m *meta) ID() string     { return m.id }
func (m *meta) Tags() []string { return m.tags }

func (m *meta) AppliesTo(path string) bool {
	if m.glob == "" {
		return true
	}
	ok, err := doublestar.Match(m.glob, path)
	if err != nil {
		// Globs are validated at registry build time, a bad one
		// cannot reach here through a validated registry.
		return false
	}
	return ok
}

func (m *meta) precondition(path string, content []byte) bool {
	if m.pre == nil {
		return true
	}
	return m.pre(path, content)
}

// Option configures a rule at construction time.
type Option func(*meta)

// WithTags sets the filter tags of a rule.
func WithTags(tags ...string) Option {
	return func(m *meta) { m.tags = tags }
}

// WithPrecondition gates the rule on a content predicate. The rule
// produces no edits for files where the predicate is false.
func WithPrecondition(pre Precondition) Option {
	return func(m *meta) { m.pre = pre }
}

// 🏗️ Apply materializes a set of edits against the content they were
// computed for. Edits are validated: in bounds, sorted, non-overlapping.
func Apply(content []byte, edits []Edit) ([]byte, error) {
	if len(edits) == 0 {
		return content, nil
	}

	sorted := slices.Clone(edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	// Validate before touching anything
	prevEnd := 0
	for _, e := range sorted {
		if e.Start < 0 || e.End < e.Start || e.End > len(content) {
			return nil, errors.Errorf("edit span [%d,%d) out of bounds for %d bytes", e.Start, e.End, len(content))
		}
		if e.Start < prevEnd {
			return nil, errors.Errorf("overlapping edit spans at offset %d", e.Start)
		}
		prevEnd = e.End
	}

	out := make([]byte, 0, len(content))
	pos := 0
	for _, e := range sorted {
		out = append(out, content[pos:e.Start]...)
		out = append(out, e.Text...)
		pos = e.End
	}
	out = append(out, content[pos:]...)
	return out, nil
}

// Changed reports whether applying the edits would alter the content.
// An edit whose replacement equals the span it covers is a no-op.
func Changed(content []byte, edits []Edit) bool {
	for _, e := range edits {
		if e.Start < 0 || e.End > len(content) || e.End < e.Start {
			return true
		}
		if string(content[e.Start:e.End]) != e.Text {
			return true
		}
	}
	return false
}
