package planner

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/loomrefactor/loom/internal/model"
)

func TestPlanReorderFallsBackToLSPBlockReorder(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "a.go")
	content := "package a\n\nfunc First() {}\n\nfunc Second() {}\n"
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("write a.go: %v", err)
	}

	p := newGoPlanner(t, root)
	plan, err := p.PlanReorder(ReorderRequest{
		FilePath: file,
		Blocks: []model.EditLocation{
			{Start: model.Position{Line: 2, Column: 0}, End: model.Position{Line: 2, Column: 16}},
			{Start: model.Position{Line: 4, Column: 0}, End: model.Position{Line: 4, Column: 17}},
		},
		NewOrder: []int{1, 0},
		Now:      time.Unix(0, 0).UTC(),
	})
	if err != nil {
		t.Fatalf("PlanReorder() error = %v", err)
	}
	if len(plan.Edits) != 1 {
		t.Fatalf("Edits = %v, want exactly one reorder edit", plan.Edits)
	}
	if plan.Edits[0].Description != "lsp-fallback reorder" {
		t.Fatalf("edit.Description = %q, want lsp-fallback reorder", plan.Edits[0].Description)
	}
	if plan.Summary.AffectedFiles != 1 {
		t.Fatalf("AffectedFiles = %d, want 1", plan.Summary.AffectedFiles)
	}
}

func TestPlanReorderWithoutBlocksIsNotSupported(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "a.go")
	if err := os.WriteFile(file, []byte("package a\n"), 0o644); err != nil {
		t.Fatalf("write a.go: %v", err)
	}

	p := newGoPlanner(t, root)
	_, err := p.PlanReorder(ReorderRequest{
		FilePath: file,
		NewOrder: []int{0, 1},
		Now:      time.Unix(0, 0).UTC(),
	})
	if err == nil {
		t.Fatal("expected an error when no blocks are supplied and the plugin has no reorder code action")
	}
}

func TestPlanReorderUnregisteredExtensionIsNotSupported(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "a.unknownext")
	if err := os.WriteFile(file, []byte("whatever"), 0o644); err != nil {
		t.Fatalf("write a.unknownext: %v", err)
	}

	p := newGoPlanner(t, root)
	_, err := p.PlanReorder(ReorderRequest{
		FilePath: file,
		NewOrder: []int{0},
		Now:      time.Unix(0, 0).UTC(),
	})
	if err == nil {
		t.Fatal("expected an error for a file with no registered plugin")
	}
}
