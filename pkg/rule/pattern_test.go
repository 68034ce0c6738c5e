package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPattern(t *testing.T) {
	tests := []struct {
		name        string
		id          string
		glob        string
		pattern     string
		wantErr     bool
		errContains string
	}{
		{
			name:    "valid",
			id:      "ok",
			glob:    "**/*.ts",
			pattern: `foo`,
		},
		{
			name:        "missing_id",
			id:          "",
			pattern:     `foo`,
			wantErr:     true,
			errContains: "id is required",
		},
		{
			name:        "bad_regex",
			id:          "bad-re",
			pattern:     `(unclosed`,
			wantErr:     true,
			errContains: "compiling pattern",
		},
		{
			name:        "bad_glob",
			id:          "bad-glob",
			glob:        "routes/[",
			pattern:     `foo`,
			wantErr:     true,
			errContains: "invalid file glob",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewPattern(tt.id, tt.glob, tt.pattern, "bar")
			if tt.wantErr {
				require.Error(t, err)
				var defErr *DefinitionError
				require.ErrorAs(t, err, &defErr, "constructor failures are definition errors")
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, r)
		})
	}
}

func TestPatternEdits(t *testing.T) {
	tests := []struct {
		name        string
		pattern     string
		replacement string
		content     string
		want        string
	}{
		{
			name:        "simple_substitution",
			pattern:     `foo`,
			replacement: `bar`,
			content:     "foo baz foo",
			want:        "bar baz bar",
		},
		{
			name:        "capture_group_expansion",
			pattern:     `from\s+(['"])\./\.\./`,
			replacement: `from ${1}../`,
			content:     `import { a } from './../utils/db';`,
			want:        `import { a } from '../utils/db';`,
		},
		{
			name:        "no_match_no_edits",
			pattern:     `foo`,
			replacement: `bar`,
			content:     "nothing here",
			want:        "nothing here",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := MustPattern("t", "", tt.pattern, tt.replacement)

			edits, err := r.Edits("f.ts", []byte(tt.content))
			require.NoError(t, err)
			got, err := Apply([]byte(tt.content), edits)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))

			// Second pass over the output must be a fixpoint.
			again, err := r.Edits("f.ts", got)
			require.NoError(t, err)
			assert.Empty(t, again, "pattern must be idempotent")
		})
	}
}

func TestPatternDropsNoopMatches(t *testing.T) {
	// The pattern matches its own output; only the no-op expansion keeps
	// it from hitting forever.
	r := MustPattern("t", "", `b(a+)r`, `b${1}r`)
	edits, err := r.Edits("f.ts", []byte("baar"))
	require.NoError(t, err)
	assert.Empty(t, edits, "replacement identical to match is dropped")
}

func TestMustPatternPanics(t *testing.T) {
	assert.Panics(t, func() {
		MustPattern("bad", "", `(unclosed`, "")
	})
}
