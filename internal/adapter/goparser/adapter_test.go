// adapter_test.go — symbol/import extraction and rename rewrite correctness.
package goparser

import (
	"testing"

	"github.com/loomrefactor/loom/internal/adapter"
	"github.com/loomrefactor/loom/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `package widget

import (
	"fmt"

	"example.com/acme/legacyname"
)

func Render() {
	fmt.Println(legacyname.Label)
}

type Config struct {
	Name string
}
`

func TestParseExtractsSymbolsAndImports(t *testing.T) {
	p := New()
	model_, err := p.Parse("widget.go", []byte(sample), adapter.AdapterConfig{})
	require.NoError(t, err)

	require.Len(t, model_.Imports, 2)
	assert.Equal(t, "example.com/acme/legacyname", model_.Imports[1].ModulePath)

	var names []string
	for _, s := range model_.Symbols {
		names = append(names, s.Name)
	}
	assert.Contains(t, names, "Render")
	assert.Contains(t, names, "Config")
}

func TestRewriteImportsForRename(t *testing.T) {
	p := New()
	out, count, err := p.RewriteImportsForRename([]byte(sample), "example.com/acme/legacyname", "example.com/acme/newname", "widget.go", "/proj", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Contains(t, string(out), `"example.com/acme/newname"`)
	assert.NotContains(t, string(out), `"example.com/acme/legacyname"`)
}

func TestFindModuleReferences(t *testing.T) {
	p := New()
	refs, err := p.FindModuleReferences([]byte(sample), "example.com/acme/legacyname", model.DefaultScanScope())
	require.NoError(t, err)
	require.Len(t, refs, 1)
}

func TestFindInlineReferences(t *testing.T) {
	p := New()
	refs, err := p.FindInlineReferences([]byte(sample), "widget.go", "example.com/acme/legacyname")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "legacyname", refs[0].MatchedText)
}

func TestIsTestFile(t *testing.T) {
	p := New()
	assert.True(t, p.IsTestFile("foo_test.go"))
	assert.False(t, p.IsTestFile("foo.go"))
}
