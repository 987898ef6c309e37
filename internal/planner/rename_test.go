package planner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/loomrefactor/loom/internal/adapter/goparser"
	"github.com/loomrefactor/loom/internal/model"
	"github.com/loomrefactor/loom/internal/registry"
)

func newGoPlanner(t *testing.T, root string) *Planner {
	t.Helper()
	reg := registry.New()
	reg.Register(goparser.New())
	return New(root, reg)
}

func TestPlanRenameUpdatesModuleReference(t *testing.T) {
	root := t.TempDir()
	oldPath := filepath.Join(root, "legacyname.go")
	otherPath := filepath.Join(root, "user.go")

	if err := os.WriteFile(oldPath, []byte("package acme\n"), 0o644); err != nil {
		t.Fatalf("write legacyname.go: %v", err)
	}
	oldModule := "example.com/acme/legacyname"
	newModule := "example.com/acme/newname"
	source := fmt.Sprintf("package acme\n\nimport \"%s\"\n", oldModule)
	if err := os.WriteFile(otherPath, []byte(source), 0o644); err != nil {
		t.Fatalf("write user.go: %v", err)
	}

	p := newGoPlanner(t, root)
	plan, err := p.PlanRename(context.Background(), RenameRequest{
		TargetKind:    "file",
		OldPath:       oldPath,
		NewPath:       filepath.Join(root, "newname.go"),
		OldModuleName: oldModule,
		NewModuleName: newModule,
		Now:           time.Unix(0, 0).UTC(),
	})
	if err != nil {
		t.Fatalf("PlanRename() error = %v", err)
	}

	if plan.Summary.AffectedFiles != 1 {
		t.Fatalf("AffectedFiles = %d, want 1", plan.Summary.AffectedFiles)
	}
	if len(plan.Edits) != 1 {
		t.Fatalf("Edits = %v, want exactly one edit", plan.Edits)
	}
	edit := plan.Edits[0]
	if edit.FilePath != otherPath {
		t.Fatalf("edit.FilePath = %q, want %q", edit.FilePath, otherPath)
	}
	if edit.Kind != model.EditUpdateImport {
		t.Fatalf("edit.Kind = %q, want %q", edit.Kind, model.EditUpdateImport)
	}
	if edit.NewText != fmt.Sprintf("\"%s\"", newModule) {
		t.Fatalf("edit.NewText = %q, want it to contain the new module path", edit.NewText)
	}
	if plan.Metadata.EstimatedImpact != model.ImpactLow {
		t.Fatalf("EstimatedImpact = %q, want low for a single touched file", plan.Metadata.EstimatedImpact)
	}
}

func TestPlanRenameNoReferencesProducesNoEdits(t *testing.T) {
	root := t.TempDir()
	oldPath := filepath.Join(root, "legacyname.go")
	if err := os.WriteFile(oldPath, []byte("package acme\n"), 0o644); err != nil {
		t.Fatalf("write legacyname.go: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "unrelated.go"), []byte("package acme\n\nfunc Foo() {}\n"), 0o644); err != nil {
		t.Fatalf("write unrelated.go: %v", err)
	}

	p := newGoPlanner(t, root)
	plan, err := p.PlanRename(context.Background(), RenameRequest{
		TargetKind:    "file",
		OldPath:       oldPath,
		NewPath:       filepath.Join(root, "newname.go"),
		OldModuleName: "example.com/acme/legacyname",
		NewModuleName: "example.com/acme/newname",
		Now:           time.Unix(0, 0).UTC(),
	})
	if err != nil {
		t.Fatalf("PlanRename() error = %v", err)
	}
	if len(plan.Edits) != 0 {
		t.Fatalf("Edits = %v, want none", plan.Edits)
	}
	if plan.Summary.AffectedFiles != 0 {
		t.Fatalf("AffectedFiles = %d, want 0", plan.Summary.AffectedFiles)
	}
}

func TestPlanRenameIsDeterministicallySorted(t *testing.T) {
	root := t.TempDir()
	oldModule := "example.com/acme/legacyname"
	source := fmt.Sprintf("package acme\n\nimport \"%s\"\n", oldModule)
	if err := os.WriteFile(filepath.Join(root, "legacyname.go"), []byte("package acme\n"), 0o644); err != nil {
		t.Fatalf("write legacyname.go: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "a_user.go"), []byte(source), 0o644); err != nil {
		t.Fatalf("write a_user.go: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "z_user.go"), []byte(source), 0o644); err != nil {
		t.Fatalf("write z_user.go: %v", err)
	}

	p := newGoPlanner(t, root)
	plan, err := p.PlanRename(context.Background(), RenameRequest{
		TargetKind:    "file",
		OldPath:       filepath.Join(root, "legacyname.go"),
		NewPath:       filepath.Join(root, "newname.go"),
		OldModuleName: oldModule,
		NewModuleName: "example.com/acme/newname",
		Now:           time.Unix(0, 0).UTC(),
	})
	if err != nil {
		t.Fatalf("PlanRename() error = %v", err)
	}
	if len(plan.Edits) != 2 {
		t.Fatalf("Edits = %v, want 2", plan.Edits)
	}
	if plan.Edits[0].FilePath > plan.Edits[1].FilePath {
		t.Fatalf("edits not sorted by file path: %q before %q", plan.Edits[0].FilePath, plan.Edits[1].FilePath)
	}
}
