// Package report aggregates per-file results into one run report.
// Workers fill local FileResults; the merge happens once, in resolver
// order, so the report is identical regardless of scheduling.
package report

import (
	"sync"
)

// 🧾 RunError is one recorded per-file failure. RuleID is empty for
// write failures.
type RunError struct {
	Path   string
	RuleID string
	Cause  string
}

// ⚔️ Conflict records two rules that wanted overlapping regions of the
// same file with different replacements. The second rule is skipped,
// never silently applied.
type Conflict struct {
	Path        string
	AppliedRule string
	SkippedRule string
	Offset      int
}

// 📄 FileSummary lists the rules that changed one file.
type FileSummary struct {
	Path    string
	RuleIDs []string
}

// 📦 FileResult is the complete outcome for one file, produced by a
// single worker with no shared state.
type FileResult struct {
	Path      string
	Dirty     bool
	Written   bool
	RuleHits  map[string]int
	RuleOrder []string
	Errors    []RunError
	Conflicts []Conflict
}

// 📊 RunReport is the aggregate over the whole run.
type RunReport struct {
	FilesScanned  int
	FilesModified int
	PerRuleHits   map[string]int
	Modified      []FileSummary
	Errors        []RunError
	Conflicts     []Conflict
}

// HasFailures reports whether any transform or write failure was
// recorded. Conflicts are visible but are not failures.
func (r *RunReport) HasFailures() bool {
	return len(r.Errors) > 0
}

// 🧮 Aggregator merges per-worker results into a RunReport. Adds are
// serialized; the hot path stays lock-free because workers only call
// Add once per finished file.
type Aggregator struct {
	mu      sync.Mutex
	results map[string]FileResult
	order   []string
}

// NewAggregator creates an aggregator expecting files in resolver order.
// The order given here, not arrival order, decides the final report.
func NewAggregator(order []string) *Aggregator {
	return &Aggregator{
		results: make(map[string]FileResult, len(order)),
		order:   order,
	}
}

// Add records one file's result.
func (a *Aggregator) Add(res FileResult) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.results[res.Path] = res
}

// Report builds the final run report in resolver order.
func (a *Aggregator) Report() *RunReport {
	a.mu.Lock()
	defer a.mu.Unlock()

	rep := &RunReport{
		FilesScanned: len(a.order),
		PerRuleHits:  map[string]int{},
	}

	for _, path := range a.order {
		res, ok := a.results[path]
		if !ok {
			continue // cancelled before this file was processed
		}
		for id, hits := range res.RuleHits {
			rep.PerRuleHits[id] += hits
		}
		if res.Dirty {
			rep.FilesModified++
			rep.Modified = append(rep.Modified, FileSummary{
				Path:    res.Path,
				RuleIDs: res.RuleOrder,
			})
		}
		rep.Errors = append(rep.Errors, res.Errors...)
		rep.Conflicts = append(rep.Conflicts, res.Conflicts...)
	}

	return rep
}
