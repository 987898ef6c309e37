// adapter_test.go — Rust symbol/import extraction and reference finding.
package rust

import (
	"testing"

	"github.com/loomrefactor/loom/internal/adapter"
	"github.com/loomrefactor/loom/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `use std::fmt;
use legacy_crate::widget::Widget;

pub fn render() -> String {
    legacy_crate::widget::Widget::new().to_string()
}

pub struct Config {
    name: String,
}
`

func TestParseExtractsSymbolsAndImports(t *testing.T) {
	p := New()
	fm, err := p.Parse("lib.rs", []byte(sample), adapter.AdapterConfig{})
	require.NoError(t, err)

	var modulePaths []string
	for _, imp := range fm.Imports {
		modulePaths = append(modulePaths, imp.ModulePath)
	}
	assert.Contains(t, modulePaths, "legacy_crate::widget::Widget")

	var names []string
	for _, s := range fm.Symbols {
		names = append(names, s.Name)
	}
	assert.Contains(t, names, "render")
	assert.Contains(t, names, "Config")
}

func TestFindModuleReferences(t *testing.T) {
	p := New()
	refs, err := p.FindModuleReferences([]byte(sample), "legacy_crate", model.DefaultScanScope())
	require.NoError(t, err)
	require.Len(t, refs, 1)
}

func TestFindInlineReferences(t *testing.T) {
	p := New()
	refs, err := p.FindInlineReferences([]byte(sample), "lib.rs", "legacy_crate::widget")
	require.NoError(t, err)
	require.Len(t, refs, 1)
}

func TestIsTestFile(t *testing.T) {
	p := New()
	assert.True(t, p.IsTestFile("widget_test.rs"))
	assert.True(t, p.IsTestFile("crates/foo/tests/it.rs"))
	assert.False(t, p.IsTestFile("widget.rs"))
}
