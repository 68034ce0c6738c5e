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

package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/fixrc/pkg/rule"
	"gitlab.com/tozd/go/errors"
)

func registryOf(t *testing.T, stages ...rule.Stage) *rule.Registry {
	t.Helper()
	reg, err := rule.NewRegistry(stages...)
	require.NoError(t, err)
	return reg
}

func TestTransformAppliesInOrder(t *testing.T) {
	reg := registryOf(t,
		rule.Stage{Name: "first", Rules: []rule.Rule{
			rule.MustPattern("a-to-b", "", `a`, `b`),
		}},
		rule.Stage{Name: "second", Rules: []rule.Rule{
			// Sees the first stage's output.
			rule.MustPattern("bb-to-c", "", `bb`, `c`),
		}},
	)

	r := &Runner{Registry: reg}
	rec, res := r.Transform("f.ts", []byte("ab"))

	assert.Equal(t, "c", string(rec.Current))
	assert.True(t, rec.Dirty)
	assert.Equal(t, []string{"a-to-b", "bb-to-c"}, res.RuleOrder)
	assert.Equal(t, 1, res.RuleHits["a-to-b"])
	assert.Equal(t, 1, res.RuleHits["bb-to-c"])
	assert.Empty(t, res.Errors)
}

func TestTransformScopeFilter(t *testing.T) {
	reg := registryOf(t, rule.Stage{Name: "s", Rules: []rule.Rule{
		rule.MustPattern("routes-only", "routes/**", `x`, `y`),
	}})

	r := &Runner{Registry: reg}
	rec, res := r.Transform("services/f.ts", []byte("xxx"))

	assert.Equal(t, "xxx", string(rec.Current), "out-of-scope rule never runs")
	assert.False(t, res.Dirty)
}

func TestTransformRuleFailureContinues(t *testing.T) {
	boom := rule.MustStructural("boom", "", func(path string, content []byte) ([]rule.Edit, error) {
		return nil, errors.Errorf("bad content")
	})

	reg := registryOf(t, rule.Stage{Name: "s", Rules: []rule.Rule{
		rule.MustPattern("before", "", `a`, `b`),
		boom,
		rule.MustPattern("after", "", `b`, `c`),
	}})

	r := &Runner{Registry: reg}
	rec, res := r.Transform("f.ts", []byte("a"))

	assert.Equal(t, "c", string(rec.Current), "rules after the failure still run")
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "boom", res.Errors[0].RuleID)
	assert.Contains(t, res.Errors[0].Cause, "bad content")
	assert.Equal(t, []string{"before", "after"}, res.RuleOrder)
}

func TestTransformPanicIsCaptured(t *testing.T) {
	panicky := rule.MustStructural("panicky", "", func(path string, content []byte) ([]rule.Edit, error) {
		panic("oops")
	})

	reg := registryOf(t, rule.Stage{Name: "s", Rules: []rule.Rule{panicky}})

	r := &Runner{Registry: reg}
	rec, res := r.Transform("f.ts", []byte("content"))

	assert.Equal(t, "content", string(rec.Current))
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Cause, "rule panicked")
}

func TestTransformBadEditIsCaptured(t *testing.T) {
	oob := rule.MustStructural("oob", "", func(path string, content []byte) ([]rule.Edit, error) {
		return []rule.Edit{{Start: 0, End: len(content) + 10, Text: "x"}}, nil
	})

	reg := registryOf(t, rule.Stage{Name: "s", Rules: []rule.Rule{oob}})

	r := &Runner{Registry: reg}
	rec, res := r.Transform("f.ts", []byte("content"))

	assert.Equal(t, "content", string(rec.Current), "content survives a malformed edit")
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "oob", res.Errors[0].RuleID)
}

func TestTransformConflictDetection(t *testing.T) {
	reg := registryOf(t, rule.Stage{Name: "s", Rules: []rule.Rule{
		rule.MustPattern("first", "", `foo`, `bar`),
		// Targets the exact bytes the first rule just wrote.
		rule.MustPattern("second", "", `bar`, `qux`),
		// Touches an unrelated span, no conflict.
		rule.MustPattern("third", "", `tail`, `end`),
	}})

	r := &Runner{Registry: reg}
	rec, res := r.Transform("f.ts", []byte("foo tail"))

	assert.Equal(t, "bar end", string(rec.Current), "conflicting rule is skipped, not merged")
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, "first", res.Conflicts[0].AppliedRule)
	assert.Equal(t, "second", res.Conflicts[0].SkippedRule)
	assert.Equal(t, []string{"first", "third"}, res.RuleOrder)
	assert.Empty(t, res.Errors, "a conflict is not a failure")
}

func TestTransformConflictOffsetTracksShifts(t *testing.T) {
	// The first rule grows the file before the region the second rule
	// wrote; the tracked region must shift with it or the third rule's
	// overlap goes undetected.
	reg := registryOf(t, rule.Stage{Name: "s", Rules: []rule.Rule{
		rule.MustPattern("writes-late", "", `zz`, `qq`),
		rule.MustPattern("grows-early", "", `head`, `longer-head`),
		rule.MustPattern("hits-region", "", `qq`, `rr`),
	}})

	r := &Runner{Registry: reg}
	rec, res := r.Transform("f.ts", []byte("head zz"))

	assert.Equal(t, "longer-head qq", string(rec.Current))
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, "writes-late", res.Conflicts[0].AppliedRule)
	assert.Equal(t, "hits-region", res.Conflicts[0].SkippedRule)
}

func TestTransformIdempotent(t *testing.T) {
	reg := registryOf(t, rule.Stage{Name: "s", Rules: []rule.Rule{
		rule.MustPattern("a", "", `foo`, `bar`),
		rule.MustPattern("b", "", `\bbaz\b`, `qux`),
	}})

	r := &Runner{Registry: reg}
	first, firstRes := r.Transform("f.ts", []byte("foo baz foo"))
	require.True(t, first.Dirty)
	require.True(t, firstRes.Dirty)

	second, secondRes := r.Transform("f.ts", first.Current)
	assert.False(t, second.Dirty, "second pass over own output is a no-op")
	assert.Empty(t, secondRes.RuleOrder)
	assert.Equal(t, string(first.Current), string(second.Current))
}

func TestTransformCleanFile(t *testing.T) {
	reg := registryOf(t, rule.Stage{Name: "s", Rules: []rule.Rule{
		rule.MustPattern("a", "", `needle`, `thread`),
	}})

	r := &Runner{Registry: reg}
	rec, res := r.Transform("f.ts", []byte("nothing to do"))

	assert.False(t, rec.Dirty)
	assert.False(t, res.Dirty)
	assert.Empty(t, res.RuleOrder)
	assert.Empty(t, res.RuleHits)
}
