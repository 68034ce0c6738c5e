package rule

import (
	"regexp"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// 🔍 PatternRule replaces every non-overlapping match of a compiled
// regular expression with an expanded replacement template. Matches
// never cross a line boundary unless the pattern says so explicitly;
// block-scoped rewrites belong in a StructuralRule built on the
// bracket-depth scanner, not in a greedy pattern.
type PatternRule struct {
	meta
	re       *regexp.Regexp
	template string
}

// 🏭 NewPattern compiles a pattern rule. The glob scopes the rule to
// matching file paths ("" means every file). Replacement templates use
// regexp expansion syntax ($1, ${name}).
func NewPattern(id, glob, pattern, replacement string, opts ...Option) (*PatternRule, error) {
	if id == "" {
		return nil, &DefinitionError{RuleID: id, Err: errors.Errorf("rule id is required")}
	}
	if glob != "" {
		if !doublestar.ValidatePattern(glob) {
			return nil, &DefinitionError{RuleID: id, Err: errors.Errorf("invalid file glob %q", glob)}
		}
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &DefinitionError{RuleID: id, Err: errors.Errorf("compiling pattern: %w", err)}
	}

	r := &PatternRule{
		meta:     meta{id: id, glob: glob},
		re:       re,
		template: replacement,
	}
	for _, opt := range opts {
		opt(&r.meta)
	}
	return r, nil
}

// Edits implements Rule. No-op replacements (where the expanded template
// equals the matched text) are dropped, so a pattern whose output still
// matches the pattern stays idempotent instead of re-counting hits.
func (r *PatternRule) Edits(path string, content []byte) ([]Edit, error) {
	if !r.precondition(path, content) {
		return nil, nil
	}

	matches := r.re.FindAllSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return nil, nil
	}

	var edits []Edit
	for _, m := range matches {
		replaced := r.re.Expand(nil, []byte(r.template), content, m)
		if string(replaced) == string(content[m[0]:m[1]]) {
			continue
		}
		edits = append(edits, Edit{Start: m[0], End: m[1], Text: string(replaced)})
	}
	return edits, nil
}

// MustPattern is NewPattern for the built-in rule tables, where a bad
// pattern is a programming error.
func MustPattern(id, glob, pattern, replacement string, opts ...Option) *PatternRule {
	r, err := NewPattern(id, glob, pattern, replacement, opts...)
	if err != nil {
		panic(err)
	}
	return r
}
