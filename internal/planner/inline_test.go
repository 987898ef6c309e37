package planner

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/loomrefactor/loom/internal/model"
)

func TestPlanInlineDelegatesToCodeActionProvider(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "a.fake")
	if err := os.WriteFile(file, []byte("body\n"), 0o644); err != nil {
		t.Fatalf("write a.fake: %v", err)
	}

	p := newFakePlanner(t, root)
	plan, err := p.PlanInline(InlineRequest{
		FilePath: file,
		At:       model.Position{Line: 0, Column: 0},
		Now:      time.Unix(0, 0).UTC(),
	})
	if err != nil {
		t.Fatalf("PlanInline() error = %v", err)
	}
	if len(plan.Edits) != 1 || plan.Edits[0].NewText != "inlined" {
		t.Fatalf("Edits = %v, want a single inlined edit", plan.Edits)
	}
	if plan.Metadata.Kind != model.PlanTypeInline {
		t.Fatalf("Metadata.Kind = %q, want %q", plan.Metadata.Kind, model.PlanTypeInline)
	}
}

func TestPlanInlineNoCodeActionProviderIsNotSupported(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "a.go")
	if err := os.WriteFile(file, []byte("package a\n"), 0o644); err != nil {
		t.Fatalf("write a.go: %v", err)
	}

	p := newGoPlanner(t, root)
	_, err := p.PlanInline(InlineRequest{FilePath: file, Now: time.Unix(0, 0).UTC()})
	if err == nil {
		t.Fatal("expected an error since goparser has no CodeActionProvider")
	}
}
