package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree materializes a set of relative paths under dir.
func writeTree(t *testing.T, dir string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		abs := filepath.Join(dir, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0755))
		require.NoError(t, os.WriteFile(abs, []byte("content"), 0644))
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		tree     []string
		includes []string
		excludes []string
		want     []string
	}{
		{
			name: "whole_tree_sorted",
			tree: []string{"b.ts", "a.ts", "sub/c.ts"},
			want: []string{"a.ts", "b.ts", "sub/c.ts"},
		},
		{
			name:     "includes_narrow",
			tree:     []string{"routes/u.ts", "services/s.ts", "readme.md"},
			includes: []string{"**/*.ts"},
			want:     []string{"routes/u.ts", "services/s.ts"},
		},
		{
			name:     "excludes_remove_after_includes",
			tree:     []string{"routes/u.ts", "routes/u.test.ts", "services/s.ts"},
			includes: []string{"**/*.ts"},
			excludes: []string{"**/*.test.ts"},
			want:     []string{"routes/u.ts", "services/s.ts"},
		},
		{
			name:     "exclude_directory",
			tree:     []string{"src.ts", "node_modules/dep/index.ts"},
			excludes: []string{"node_modules/**"},
			want:     []string{"src.ts"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeTree(t, root, tt.tree...)

			r := &Resolver{Root: root, Includes: tt.includes, Excludes: tt.excludes}
			got, err := r.Resolve(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveScopeErrors(t *testing.T) {
	t.Run("missing_root", func(t *testing.T) {
		r := &Resolver{Root: filepath.Join(t.TempDir(), "nope")}
		_, err := r.Resolve(context.Background())
		require.Error(t, err)
		var scopeErr *ScopeError
		require.ErrorAs(t, err, &scopeErr)
		assert.Contains(t, scopeErr.Error(), "stat root")
	})

	t.Run("root_is_a_file", func(t *testing.T) {
		root := t.TempDir()
		file := filepath.Join(root, "f.ts")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

		r := &Resolver{Root: file}
		_, err := r.Resolve(context.Background())
		var scopeErr *ScopeError
		require.ErrorAs(t, err, &scopeErr)
		assert.Contains(t, scopeErr.Error(), "not a directory")
	})

	t.Run("invalid_glob", func(t *testing.T) {
		r := &Resolver{Root: t.TempDir(), Includes: []string{"routes/["}}
		_, err := r.Resolve(context.Background())
		var scopeErr *ScopeError
		require.ErrorAs(t, err, &scopeErr)
		assert.Contains(t, scopeErr.Error(), "invalid glob")
	})
}

func TestResolveSymlinks(t *testing.T) {
	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.ts"), []byte("x"), 0644))

	root := t.TempDir()
	writeTree(t, root, "inside.ts", "routes/a.ts")

	// One link of every kind: escaping the root, aliasing an in-tree
	// file, pointing at an in-tree directory, and dangling.
	require.NoError(t, os.Symlink(
		filepath.Join(outside, "secret.ts"),
		filepath.Join(root, "escape.ts")))
	require.NoError(t, os.Symlink(
		filepath.Join(root, "inside.ts"),
		filepath.Join(root, "alias.ts")))
	require.NoError(t, os.Symlink(
		filepath.Join(root, "routes"),
		filepath.Join(root, "routes-link")))
	require.NoError(t, os.Symlink(
		filepath.Join(root, "gone.ts"),
		filepath.Join(root, "broken.ts")))

	r := &Resolver{Root: root}
	got, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"inside.ts", "routes/a.ts"}, got,
		"no symlink is ever a candidate: the targets are reached under their own paths")
}

func TestResolveCancelled(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.ts")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Resolver{Root: root}
	_, err := r.Resolve(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
