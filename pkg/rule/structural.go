package rule

import (
	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// EditFunc computes edits for one file. It must be pure: same input,
// same output, no I/O.
type EditFunc func(path string, content []byte) ([]Edit, error)

// 🧱 StructuralRule is a rewrite expressed as a scan over logical
// lines or brace-balanced blocks, for the cases a single substitution
// pattern cannot express safely (insert-after-last-import, collapse
// duplicates in a list, rename only inside an empty block).
type StructuralRule struct {
	meta
	fn EditFunc
}

// 🏭 NewStructural builds a structural rule from an edit function.
func NewStructural(id, glob string, fn EditFunc, opts ...Option) (*StructuralRule, error) {
	if id == "" {
		return nil, &DefinitionError{RuleID: id, Err: errors.Errorf("rule id is required")}
	}
	if fn == nil {
		return nil, &DefinitionError{RuleID: id, Err: errors.Errorf("edit function is required")}
	}
	if glob != "" && !doublestar.ValidatePattern(glob) {
		return nil, &DefinitionError{RuleID: id, Err: errors.Errorf("invalid file glob %q", glob)}
	}

	r := &StructuralRule{
		meta: meta{id: id, glob: glob},
		fn:   fn,
	}
	for _, opt := range opts {
		opt(&r.meta)
	}
	return r, nil
}

// Edits implements Rule.
func (r *StructuralRule) Edits(path string, content []byte) ([]Edit, error) {
	if !r.precondition(path, content) {
		return nil, nil
	}
	return r.fn(path, content)
}

// MustStructural is NewStructural for the built-in rule tables.
func MustStructural(id, glob string, fn EditFunc, opts ...Option) *StructuralRule {
	r, err := NewStructural(id, glob, fn, opts...)
	if err != nil {
		panic(err)
	}
	return r
}
