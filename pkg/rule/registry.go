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

package rule

import (
	"fmt"

	"gitlab.com/tozd/go/errors"
)

// ❌ DefinitionError reports a malformed rule or registry at load time.
// It is fatal: nothing runs against the tree with a broken rule set.
type DefinitionError struct {
	RuleID string
	Err    error
}

func (e *DefinitionError) Error() string {
	if e.RuleID == "" {
		return fmt.Sprintf("rule definition: %v", e.Err)
	}
	return fmt.Sprintf("rule definition %q: %v", e.RuleID, e.Err)
}

func (e *DefinitionError) Unwrap() error { return e.Err }

// 📚 Stage is an ordered group of rules. A rule in a later stage may
// assume every earlier stage has already reached a fixpoint on the
// file; rules within one stage run in declaration order, each seeing
// the previous rule's output.
type Stage struct {
	Name  string
	Rules []Rule
}

// 🗂️ Registry is the ordered list of stages. Stage order is the
// declared dependency contract, not an accident of invocation order.
type Registry struct {
	stages []Stage
}

// 🏭 NewRegistry validates and builds a registry.
func NewRegistry(stages ...Stage) (*Registry, error) {
	r := &Registry{stages: stages}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) validate() error {
	if len(r.stages) == 0 {
		return &DefinitionError{Err: errors.Errorf("registry has no stages")}
	}

	stageNames := map[string]bool{}
	ruleIDs := map[string]bool{}
	for _, st := range r.stages {
		if st.Name == "" {
			return &DefinitionError{Err: errors.Errorf("stage name is required")}
		}
		if stageNames[st.Name] {
			return &DefinitionError{Err: errors.Errorf("duplicate stage %q", st.Name)}
		}
		stageNames[st.Name] = true

		if len(st.Rules) == 0 {
			return &DefinitionError{Err: errors.Errorf("stage %q has no rules", st.Name)}
		}
		for _, rl := range st.Rules {
			if rl.ID() == "" {
				return &DefinitionError{Err: errors.Errorf("stage %q contains a rule without an id", st.Name)}
			}
			if ruleIDs[rl.ID()] {
				return &DefinitionError{RuleID: rl.ID(), Err: errors.Errorf("duplicate rule id")}
			}
			ruleIDs[rl.ID()] = true
		}
	}
	return nil
}

// Stages returns the ordered stages.
func (r *Registry) Stages() []Stage { return r.stages }

// Rules returns every rule in execution order.
func (r *Registry) Rules() []Rule {
	var out []Rule
	for _, st := range r.stages {
		out = append(out, st.Rules...)
	}
	return out
}

// RuleIDs returns every rule id in execution order.
func (r *Registry) RuleIDs() []string {
	var out []string
	for _, rl := range r.Rules() {
		out = append(out, rl.ID())
	}
	return out
}

// 🔖 FilterTags narrows the registry to rules carrying any of the given
// tags, preserving stage order. A tag matching no rule at all is a
// definition error rather than a silently empty run.
func (r *Registry) FilterTags(tags []string) (*Registry, error) {
	if len(tags) == 0 {
		return r, nil
	}

	wanted := map[string]bool{}
	for _, t := range tags {
		wanted[t] = true
	}
	seen := map[string]bool{}

	var stages []Stage
	for _, st := range r.stages {
		var kept []Rule
		for _, rl := range st.Rules {
			for _, t := range rl.Tags() {
				if wanted[t] {
					kept = append(kept, rl)
					seen[t] = true
					break
				}
			}
		}
		if len(kept) > 0 {
			stages = append(stages, Stage{Name: st.Name, Rules: kept})
		}
	}

	for _, t := range tags {
		if !seen[t] {
			return nil, &DefinitionError{Err: errors.Errorf("unknown rule tag %q", t)}
		}
	}

	return &Registry{stages: stages}, nil
}
