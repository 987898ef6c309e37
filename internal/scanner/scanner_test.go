// scanner_test.go — scope filtering and ignore-rule honoring.
package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/loomrefactor/loom/internal/adapter"
	"github.com/loomrefactor/loom/internal/model"
	"github.com/loomrefactor/loom/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGoPlugin struct{}

func (fakeGoPlugin) Name() string                  { return "go" }
func (fakeGoPlugin) Extensions() []string          { return []string{".go"} }
func (fakeGoPlugin) Priority() int                 { return 1 }
func (fakeGoPlugin) Capabilities() model.Capabilities { return model.Capabilities{} }
func (fakeGoPlugin) Parse(string, []byte, adapter.AdapterConfig) (*model.UnifiedFileModel, error) {
	return nil, nil
}
func (fakeGoPlugin) IsTestFile(string) bool { return false }

func setupTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("# hi"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "vendor"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "vendor", "dep.go"), []byte("package dep"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("vendor/\n"), 0o644))
	return root
}

func TestScanCodeOnly(t *testing.T) {
	root := setupTree(t)
	reg := registry.New()
	reg.Register(fakeGoPlugin{})

	s := New(root, reg)
	files, err := s.Scan(context.Background(), model.DefaultScanScope())
	require.NoError(t, err)

	assert.Contains(t, files, filepath.Join(root, "main.go"))
	assert.NotContains(t, files, filepath.Join(root, "README.md"))
	assert.NotContains(t, files, filepath.Join(root, "vendor", "dep.go"))
}

func TestScanAllIncludesMarkdown(t *testing.T) {
	root := setupTree(t)
	reg := registry.New()
	reg.Register(fakeGoPlugin{})

	s := New(root, reg)
	files, err := s.Scan(context.Background(), model.ScanScope{Kind: model.ScopeAll})
	require.NoError(t, err)

	assert.Contains(t, files, filepath.Join(root, "README.md"))
}

func TestScanCustomScope(t *testing.T) {
	root := setupTree(t)
	reg := registry.New()

	s := New(root, reg)
	scope := model.ScanScope{Kind: model.ScopeCustom, Include: []string{"*.md"}}
	files, err := s.Scan(context.Background(), scope)
	require.NoError(t, err)

	assert.Contains(t, files, filepath.Join(root, "README.md"))
	assert.NotContains(t, files, filepath.Join(root, "main.go"))
}
