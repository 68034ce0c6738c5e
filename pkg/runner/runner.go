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

// Package runner applies every applicable stage and rule to one file's
// content in registry order. A rule failure never aborts the batch, and
// running the full pipeline twice yields the same content as once.
package runner

import (
	"bytes"
	"sort"

	"github.com/walteh/fixrc/pkg/report"
	"github.com/walteh/fixrc/pkg/rule"
	"gitlab.com/tozd/go/errors"
)

// 📄 FileRecord is the evolving state of one file inside the pipeline.
// It is created when the resolver selects the path, mutated only here,
// and discarded once the writer has committed or skipped it.
type FileRecord struct {
	Path           string
	Original       []byte
	Current        []byte
	AppliedRuleIDs []string
	Dirty          bool
}

// 🏃 Runner runs the registry's stages over single files. It performs
// no I/O: content in, content out.
type Runner struct {
	Registry *rule.Registry
}

// region is a span of Current that some rule has already written,
// tracked so a later overlapping rewrite surfaces as a conflict
// instead of silently clobbering the earlier rule's output.
type region struct {
	start  int
	end    int
	ruleID string
}

// Transform runs the full pipeline over one file's content and returns
// the final record plus the per-rule result for the reporter.
func (r *Runner) Transform(path string, original []byte) (*FileRecord, report.FileResult) {
	rec := &FileRecord{
		Path:     path,
		Original: original,
		Current:  original,
	}

	res := report.FileResult{
		Path:     path,
		RuleHits: map[string]int{},
	}

	var written []region

	for _, stage := range r.Registry.Stages() {
		for _, rl := range stage.Rules {
			if !rl.AppliesTo(path) {
				continue
			}

			edits, err := safeEdits(rl, path, rec.Current)
			if err != nil {
				// TransformFailure: keep the content as of the last
				// successful rule and continue with the rest.
				res.Errors = append(res.Errors, report.RunError{
					Path:   path,
					RuleID: rl.ID(),
					Cause:  err.Error(),
				})
				continue
			}

			edits = dropNoops(rec.Current, edits)
			if len(edits) == 0 {
				continue
			}
			sort.SliceStable(edits, func(i, j int) bool { return edits[i].Start < edits[j].Start })

			if conflict, with, at := overlapsWritten(written, edits); conflict {
				res.Conflicts = append(res.Conflicts, report.Conflict{
					Path:        path,
					AppliedRule: with,
					SkippedRule: rl.ID(),
					Offset:      at,
				})
				continue
			}

			next, err := rule.Apply(rec.Current, edits)
			if err != nil {
				res.Errors = append(res.Errors, report.RunError{
					Path:   path,
					RuleID: rl.ID(),
					Cause:  err.Error(),
				})
				continue
			}

			written = shiftRegions(written, edits)
			written = append(written, newRegions(rl.ID(), edits)...)

			rec.Current = next
			rec.AppliedRuleIDs = append(rec.AppliedRuleIDs, rl.ID())
			res.RuleHits[rl.ID()] += len(edits)
		}
	}

	rec.Dirty = !bytes.Equal(rec.Original, rec.Current)
	res.Dirty = rec.Dirty
	res.RuleOrder = rec.AppliedRuleIDs
	return rec, res
}

// safeEdits calls the rule's Edits and converts a panic into an error,
// so a single broken rule cannot take the batch down.
func safeEdits(rl rule.Rule, path string, content []byte) (edits []rule.Edit, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.Errorf("rule panicked: %v", p)
		}
	}()
	return rl.Edits(path, content)
}

// dropNoops removes edits whose replacement equals the span they cover.
// Only real changes count as hits or conflicts.
func dropNoops(content []byte, edits []rule.Edit) []rule.Edit {
	var out []rule.Edit
	for _, e := range edits {
		if e.Start < 0 || e.End < e.Start || e.End > len(content) {
			out = append(out, e) // let Apply report the bounds error
			continue
		}
		if string(content[e.Start:e.End]) == e.Text {
			continue
		}
		out = append(out, e)
	}
	return out
}

// overlapsWritten reports whether any edit rewrites bytes inside a span
// some earlier rule wrote.
func overlapsWritten(written []region, edits []rule.Edit) (bool, string, int) {
	for _, e := range edits {
		for _, reg := range written {
			if e.Start < reg.end && e.End > reg.start {
				return true, reg.ruleID, e.Start
			}
		}
	}
	return false, "", 0
}

// shiftRegions translates tracked regions through a batch of applied
// edits. Applied edits never overlap a tracked region (that would have
// been a conflict), so a plain offset shift is enough.
func shiftRegions(written []region, edits []rule.Edit) []region {
	out := make([]region, 0, len(written))
	for _, reg := range written {
		delta := 0
		for _, e := range edits {
			if e.End <= reg.start {
				delta += len(e.Text) - (e.End - e.Start)
			}
		}
		out = append(out, region{start: reg.start + delta, end: reg.end + delta, ruleID: reg.ruleID})
	}
	return out
}

// newRegions computes the output spans of a batch of sorted edits.
func newRegions(ruleID string, edits []rule.Edit) []region {
	out := make([]region, 0, len(edits))
	delta := 0
	for _, e := range edits {
		start := e.Start + delta
		out = append(out, region{start: start, end: start + len(e.Text), ruleID: ruleID})
		delta += len(e.Text) - (e.End - e.Start)
	}
	return out
}
