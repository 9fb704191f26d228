// pkg/profile/resolve_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: In-memory filesystem
// PURPOSE: Test profile lookup, import traversal and layer merging

package profile

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/punktf/pkg/errors"
	"github.com/arthur-debert/punktf/pkg/filesystem"
	"github.com/arthur-debert/punktf/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const profilesDir = "/src/profiles"

func newTestResolver(t *testing.T, files map[string]string) *Resolver {
	t.Helper()
	fsys := filesystem.NewMemory()
	require.NoError(t, fsys.MkdirAll(profilesDir, 0755))
	for name, content := range files {
		require.NoError(t, fsys.WriteFile(filepath.Join(profilesDir, name), []byte(content), 0644))
	}
	return NewResolver(profilesDir, fsys)
}

func TestResolveTargetPrecedence(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"windows.yaml": "imports: [base]\nvariables:\n  OS: windows\n",
		"base.yaml":    "target: /b\nvariables:\n  OS: generic\n  EDITOR: vi\ndotfiles:\n  - path: .gitconfig\n",
	})

	eff, err := r.Resolve(context.Background(),
		[]Layer{TargetLayer("target_cli_argument", "/a")},
		"windows",
		[]Layer{TargetLayer("target_environment_variable", "/c")},
	)
	require.NoError(t, err)

	assert.Equal(t, "/a", eff.Target)
	assert.Equal(t, "target_cli_argument", eff.TargetFrom)
	assert.Equal(t, []string{"target_cli_argument", "windows", "base", "target_environment_variable"}, eff.Layers)
	assert.Equal(t, "windows", eff.Variables["OS"], "importing profile shadows imported one")
	assert.Equal(t, "vi", eff.Variables["EDITOR"])
	require.Len(t, eff.Dotfiles, 1)
	assert.Equal(t, ".gitconfig", eff.Dotfiles[0].Path)
}

func TestResolveTargetFromImport(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"windows.yaml": "imports: [base]\n",
		"base.yaml":    "target: /b\n",
	})

	eff, err := r.Resolve(context.Background(),
		[]Layer{TargetLayer("target_cli_argument", "")},
		"windows",
		[]Layer{TargetLayer("target_environment_variable", "/c")},
	)
	require.NoError(t, err)
	assert.Equal(t, "/b", eff.Target)
	assert.Equal(t, "base", eff.TargetFrom)
}

func TestResolveNoTarget(t *testing.T) {
	r := newTestResolver(t, map[string]string{"bare.yaml": "dotfiles:\n  - path: a\n"})

	eff, err := r.Resolve(context.Background(), nil, "bare", nil)
	require.NoError(t, err)
	assert.False(t, eff.HasTarget())
}

func TestResolveSiblingImportsPreOrder(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"top.yaml":    "imports: [left, right]\n",
		"left.yaml":   "imports: [shared]\nvariables:\n  SIDE: left\n",
		"right.yaml":  "imports: [shared]\nvariables:\n  SIDE: right\n  ONLY_RIGHT: yes\n",
		"shared.yaml": "variables:\n  SIDE: shared\n  SHARED: yes\n",
	})

	eff, err := r.Resolve(context.Background(), nil, "top", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"top", "left", "shared", "right"}, eff.Layers, "diamond import is layered once")
	assert.Equal(t, "left", eff.Variables["SIDE"])
	assert.Equal(t, "yes", eff.Variables["SHARED"])
	assert.Equal(t, "yes", eff.Variables["ONLY_RIGHT"])
}

func TestResolveCycle(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		chain []string
	}{
		{
			name:  "self_import",
			files: map[string]string{"a.yaml": "imports: [a]\n"},
			chain: []string{"a", "a"},
		},
		{
			name: "three_step",
			files: map[string]string{
				"a.yaml": "imports: [b]\n",
				"b.yaml": "imports: [c]\n",
				"c.yaml": "imports: [a]\n",
			},
			chain: []string{"a", "b", "c", "a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestResolver(t, tt.files)
			_, err := r.Resolve(context.Background(), nil, "a", nil)
			require.Error(t, err)
			assert.True(t, IsCycle(err))
			assert.Equal(t, tt.chain, errors.GetErrorDetails(err)["chain"])
		})
	}
}

func TestResolveNotFound(t *testing.T) {
	r := newTestResolver(t, map[string]string{"windows.yaml": "imports: [missing]\n"})

	_, err := r.Resolve(context.Background(), nil, "nope", nil)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, "nope", errors.GetErrorDetails(err)["profile"])

	_, err = r.Resolve(context.Background(), nil, "windows", nil)
	require.Error(t, err)
	assert.True(t, IsNotFound(err), "a missing import is a not-found failure")
	details := errors.GetErrorDetails(err)
	assert.Equal(t, "missing", details["profile"])
	assert.Equal(t, "windows", details["importedBy"])
}

func TestResolveInvalidImport(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"top.yaml":    "imports: [broken]\n",
		"broken.yaml": "dotfiles:\n  - path: a\n    merge: sometimes\n",
	})

	_, err := r.Resolve(context.Background(), nil, "top", nil)
	require.Error(t, err)
	assert.True(t, IsInvalid(err))
	details := errors.GetErrorDetails(err)
	assert.Equal(t, "broken", details["profile"])
	assert.Equal(t, filepath.Join(profilesDir, "broken.yaml"), details["path"])
}

func TestResolveCancelled(t *testing.T) {
	r := newTestResolver(t, map[string]string{"a.yaml": ""})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Resolve(ctx, nil, "a", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadExtensionOrder(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"multi.yml":  "target: /from-yml\n",
		"multi.toml": "target = \"/from-toml\"\n",
		"only.json":  `{"target": "/from-json", "dotfiles": [{"path": "a", "merge": "overwrite"}]}`,
	})

	layer, err := r.Load("multi")
	require.NoError(t, err)
	assert.Equal(t, "/from-yml", layer.Target)

	layer, err = r.Load("only")
	require.NoError(t, err)
	assert.Equal(t, "/from-json", layer.Target)
	require.Len(t, layer.Dotfiles, 1)
	assert.Equal(t, types.MergeOverwrite, *layer.Dotfiles[0].Merge)
}

func TestLoadRejectsPathNames(t *testing.T) {
	r := newTestResolver(t, nil)
	_, err := r.Load("../etc/passwd")
	require.Error(t, err)
	assert.True(t, IsInvalid(err))
}

func TestList(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"windows.yaml": "",
		"linux.toml":   "",
		"linux.yaml":   "",
		"notes.txt":    "",
		"base.json":    "{}",
	})

	names, err := r.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"base", "linux", "windows"}, names)
}

func TestListMissingDirectory(t *testing.T) {
	r := NewResolver("/nowhere", filesystem.NewMemory())
	names, err := r.List()
	require.NoError(t, err)
	assert.Empty(t, names)
}
