package rule

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalancedSpan(t *testing.T) {
	tests := []struct {
		name    string
		content string
		open    int
		want    int
		ok      bool
	}{
		{
			name:    "simple_block",
			content: "{ a }",
			open:    0,
			want:    5,
			ok:      true,
		},
		{
			name:    "nested_blocks",
			content: "{ if (x) { y } }",
			open:    0,
			want:    16,
			ok:      true,
		},
		{
			name:    "brace_in_string_ignored",
			content: "{ const s = '}'; }",
			open:    0,
			want:    18,
			ok:      true,
		},
		{
			name:    "brace_in_template_literal_ignored",
			content: "{ const s = `}`; }",
			open:    0,
			want:    18,
			ok:      true,
		},
		{
			name:    "brace_in_line_comment_ignored",
			content: "{ // }\n}",
			open:    0,
			want:    8,
			ok:      true,
		},
		{
			name:    "brace_in_block_comment_ignored",
			content: "{ /* } */ }",
			open:    0,
			want:    11,
			ok:      true,
		},
		{
			name:    "escaped_quote_in_string",
			content: `{ const s = 'a\'}'; }`,
			open:    0,
			want:    21,
			ok:      true,
		},
		{
			name:    "unclosed_block",
			content: "{ a ",
			open:    0,
			ok:      false,
		},
		{
			name:    "offset_not_a_brace",
			content: "abc",
			open:    0,
			ok:      false,
		},
		{
			name:    "offset_out_of_range",
			content: "{}",
			open:    5,
			ok:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			end, ok := BalancedSpan([]byte(tt.content), tt.open)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, end)
			}
		})
	}
}

func TestLineSpan(t *testing.T) {
	content := []byte("first\nsecond\nthird")

	start, end := LineSpan(content, 0)
	assert.Equal(t, 0, start)
	assert.Equal(t, 6, end, "end includes the newline")

	start, end = LineSpan(content, 8)
	assert.Equal(t, "second\n", string(content[start:end]))

	start, end = LineSpan(content, len(content))
	assert.Equal(t, "third", string(content[start:end]), "last line has no newline")
}

func TestImportInsertOffset(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{
			name:    "no_imports",
			content: "const x = 1;\n",
			want:    0,
		},
		{
			name:    "after_last_import",
			content: "import a from 'a';\nimport b from 'b';\nconst x = 1;\n",
			want:    len("import a from 'a';\nimport b from 'b';\n"),
		},
		{
			name:    "import_is_last_line_without_newline",
			content: "import a from 'a';",
			want:    len("import a from 'a';"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ImportInsertOffset([]byte(tt.content)))
		})
	}
}

func TestIdentifierUsed(t *testing.T) {
	content := []byte("const error = 1; errorCount++; my_error = 2; $error;")

	assert.True(t, IdentifierUsed(content, "error"), "whole-word occurrence")
	assert.False(t, IdentifierUsed(content, "errorC"), "prefix of a longer identifier")
	assert.False(t, IdentifierUsed([]byte("errorCount"), "error"),
		"substring of a longer identifier does not count")
	assert.False(t, IdentifierUsed([]byte("my_error"), "error"),
		"underscore joins identifiers")
	assert.False(t, IdentifierUsed([]byte("$error"), "error"),
		"dollar joins identifiers")
	assert.True(t, IdentifierUsed([]byte("x.error"), "error"), "member access counts")
}

func TestIdentifierUsedIn(t *testing.T) {
	content := []byte("error; { clean } error;")
	open := strings.Index(string(content), "{")
	end, ok := BalancedSpan(content, open)
	require.True(t, ok)

	assert.False(t, IdentifierUsedIn(content, "error", open+1, end-1),
		"occurrences outside the block are invisible")
	assert.True(t, IdentifierUsedIn(content, "clean", open+1, end-1))
}
