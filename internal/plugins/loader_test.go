package plugins

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/loomrefactor/loom/internal/model"
)

func TestLoadYAMLPluginAndRunTransform(t *testing.T) {
	tmp := t.TempDir()
	pluginPath := filepath.Join(tmp, "custom.yml")
	content := `transforms:
  - name: swap-license-year
    description: "Bump the copyright year in a header comment"
    extensions: [".go"]
    replace:
      find: "Copyright 2023"
      with: "Copyright 2024"
`
	if err := os.WriteFile(pluginPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write plugin: %v", err)
	}

	set, err := Load([]string{pluginPath})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	transform, ok := set.Lookup("swap-license-year")
	if !ok {
		t.Fatalf("expected transform %q to be loaded", "swap-license-year")
	}
	if transform.Description() != "Bump the copyright year in a header comment" {
		t.Fatalf("description = %q", transform.Description())
	}
	if !transform.Accepts(".go") {
		t.Fatalf("expected transform to accept .go")
	}
	if transform.Accepts(".py") {
		t.Fatalf("expected transform to reject .py")
	}

	file := &model.UnifiedFileModel{
		Path:      "internal/app/main.go",
		Language:  "go",
		Source:    []byte("// Copyright 2023\npackage main\n"),
		LineCount: 2,
	}
	edits, err := transform.Apply(file, nil)
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if len(edits) != 1 {
		t.Fatalf("edits len = %d, want 1", len(edits))
	}
	if edits[0].NewText != "// Copyright 2024\npackage main\n" {
		t.Fatalf("new text = %q", edits[0].NewText)
	}
}

func TestLoadYAMLPluginNoMatchProducesNoEdits(t *testing.T) {
	tmp := t.TempDir()
	pluginPath := filepath.Join(tmp, "custom.yml")
	content := `name: swap-license-year
replace:
  find: "Copyright 2023"
  with: "Copyright 2024"
`
	if err := os.WriteFile(pluginPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write plugin: %v", err)
	}

	set, err := Load([]string{pluginPath})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	transform, ok := set.Lookup("swap-license-year")
	if !ok {
		t.Fatalf("expected transform to load from a single-document plugin file")
	}

	file := &model.UnifiedFileModel{Path: "main.go", Source: []byte("package main\n"), LineCount: 1}
	edits, err := transform.Apply(file, nil)
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if len(edits) != 0 {
		t.Fatalf("expected no edits, got %d", len(edits))
	}
}

func TestLoadRejectsDuplicateTransformNames(t *testing.T) {
	tmp := t.TempDir()
	pluginPath := filepath.Join(tmp, "dup.yml")
	content := `transforms:
  - name: same-name
    replace: {find: "a", with: "b"}
  - name: same-name
    replace: {find: "c", with: "d"}
`
	if err := os.WriteFile(pluginPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write plugin: %v", err)
	}

	_, err := Load([]string{pluginPath})
	if err == nil {
		t.Fatalf("expected duplicate transform name error")
	}
}

func TestLoadRejectsUnsupportedExtension(t *testing.T) {
	tmp := t.TempDir()
	pluginPath := filepath.Join(tmp, "bad.txt")
	if err := os.WriteFile(pluginPath, []byte("whatever"), 0o644); err != nil {
		t.Fatalf("write plugin: %v", err)
	}

	_, err := Load([]string{pluginPath})
	if err == nil {
		t.Fatalf("expected unsupported plugin type error")
	}
}

func TestLoadSkipsBlankPaths(t *testing.T) {
	set, err := Load([]string{"", "   "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(set.Names()) != 0 {
		t.Fatalf("expected no transforms loaded, got %v", set.Names())
	}
}

func TestLoadAtStartInsertsOnlyWhenMissing(t *testing.T) {
	tmp := t.TempDir()
	pluginPath := filepath.Join(tmp, "header.yml")
	content := `name: add-header
replace:
  find: ""
  with: "// managed\n"
  at_start: true
`
	if err := os.WriteFile(pluginPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write plugin: %v", err)
	}
	set, err := Load([]string{pluginPath})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	transform, ok := set.Lookup("add-header")
	if !ok {
		t.Fatalf("expected transform to load")
	}

	withoutHeader := &model.UnifiedFileModel{Path: "x.go", Source: []byte("package main\n")}
	edits, err := transform.Apply(withoutHeader, nil)
	if err != nil || len(edits) != 1 {
		t.Fatalf("expected one insert edit, got %v err %v", edits, err)
	}

	withHeader := &model.UnifiedFileModel{Path: "x.go", Source: []byte("// managed\npackage main\n")}
	edits, err = transform.Apply(withHeader, nil)
	if err != nil || len(edits) != 0 {
		t.Fatalf("expected no edits when header already present, got %v err %v", edits, err)
	}
}
