package rules

import (
	"github.com/walteh/fixrc/pkg/config"
	"github.com/walteh/fixrc/pkg/rule"
)

// WithCustom builds the registry of built-in stages plus one trailing
// "custom" stage holding user-defined substitution rules from the
// config file. Custom rules run after every built-in repair so they
// see normalized content.
func WithCustom(defs []config.PatternDef) (*rule.Registry, error) {
	stages := defaultStages()

	if len(defs) > 0 {
		var rls []rule.Rule
		for _, d := range defs {
			tags := append([]string{"custom"}, d.Tags...)
			r, err := rule.NewPattern(d.ID, d.Files, d.Pattern, d.Replacement, rule.WithTags(tags...))
			if err != nil {
				return nil, err
			}
			rls = append(rls, r)
		}
		stages = append(stages, rule.Stage{Name: "custom", Rules: rls})
	}

	return rule.NewRegistry(stages...)
}
