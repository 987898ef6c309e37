// adapter_test.go — TypeScript/JavaScript symbol and import extraction.
package typescript

import (
	"testing"

	"github.com/loomrefactor/loom/internal/adapter"
	"github.com/loomrefactor/loom/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `import { Widget } from "legacy/widget";

export class UserService {
  render() {
    return Widget;
  }
}

export function createUser() {}
`

func TestAdapterMetadata(t *testing.T) {
	p := New()
	assert.Equal(t, "typescript", p.Name())
	assert.Len(t, p.Extensions(), 4)
}

func TestAdapterIsTestFile(t *testing.T) {
	p := New()
	assert.True(t, p.IsTestFile("user.test.ts"))
	assert.False(t, p.IsTestFile("user.ts"))
}

func TestParseExtractsSymbolsAndImports(t *testing.T) {
	p := New()
	fm, err := p.Parse("api/user.ts", []byte(sample), adapter.AdapterConfig{})
	require.NoError(t, err)
	assert.Equal(t, "typescript", fm.Language)

	require.Len(t, fm.Imports, 1)
	assert.Equal(t, "legacy/widget", fm.Imports[0].ModulePath)

	var names []string
	for _, s := range fm.Symbols {
		names = append(names, s.Name)
	}
	assert.Contains(t, names, "UserService")
	assert.Contains(t, names, "createUser")
}

func TestJavaScriptLanguageDetection(t *testing.T) {
	p := New()
	fm, err := p.Parse("index.js", []byte("export function hi() {}\n"), adapter.AdapterConfig{})
	require.NoError(t, err)
	assert.Equal(t, "javascript", fm.Language)
}

func TestRewriteImportsForRename(t *testing.T) {
	p := New()
	out, count, err := p.RewriteImportsForRename([]byte(sample), "legacy/widget", "modern/widget", "api/user.ts", "/proj", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Contains(t, string(out), `"modern/widget"`)
}

func TestFindModuleReferences(t *testing.T) {
	p := New()
	refs, err := p.FindModuleReferences([]byte(sample), "legacy/widget", model.DefaultScanScope())
	require.NoError(t, err)
	require.Len(t, refs, 1)
}
