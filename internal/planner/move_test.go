package planner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/loomrefactor/loom/internal/model"
)

func TestPlanMoveCrossDirectoryUpdatesReferences(t *testing.T) {
	root := t.TempDir()
	oldPath := filepath.Join(root, "legacyname.go")
	subdir := filepath.Join(root, "sub")
	if err := os.Mkdir(subdir, 0o755); err != nil {
		t.Fatalf("mkdir sub: %v", err)
	}
	newPath := filepath.Join(subdir, "legacyname.go")

	if err := os.WriteFile(oldPath, []byte("package acme\n"), 0o644); err != nil {
		t.Fatalf("write legacyname.go: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "user.go"), []byte("package acme\n\nimport \"legacyname\"\n"), 0o644); err != nil {
		t.Fatalf("write user.go: %v", err)
	}

	p := newGoPlanner(t, root)
	plan, err := p.PlanMove(context.Background(), MoveRequest{
		OldPath: oldPath,
		NewPath: newPath,
		Now:     time.Unix(0, 0).UTC(),
	})
	if err != nil {
		t.Fatalf("PlanMove() error = %v", err)
	}

	if plan.MoveDetails.Class != model.MoveCrossDirectory {
		t.Fatalf("Class = %q, want %q", plan.MoveDetails.Class, model.MoveCrossDirectory)
	}
	if plan.MoveDetails.SourcePath != oldPath || plan.MoveDetails.DestinationPath != newPath {
		t.Fatalf("MoveDetails = %+v, want source=%s destination=%s", plan.MoveDetails, oldPath, newPath)
	}
	if plan.Metadata.Kind != model.PlanTypeMove {
		t.Fatalf("Metadata.Kind = %q, want %q", plan.Metadata.Kind, model.PlanTypeMove)
	}
	if len(plan.Edits) != 1 {
		t.Fatalf("Edits = %v, want exactly one update-import edit", plan.Edits)
	}
	if plan.Edits[0].Kind != model.EditUpdateImport {
		t.Fatalf("edit.Kind = %q, want %q", plan.Edits[0].Kind, model.EditUpdateImport)
	}
}

func TestPlanMoveSimpleRenameClassWhenSameDirectory(t *testing.T) {
	root := t.TempDir()
	oldPath := filepath.Join(root, "legacyname.go")
	newPath := filepath.Join(root, "newname.go")
	if err := os.WriteFile(oldPath, []byte("package acme\n"), 0o644); err != nil {
		t.Fatalf("write legacyname.go: %v", err)
	}

	p := newGoPlanner(t, root)
	plan, err := p.PlanMove(context.Background(), MoveRequest{
		OldPath: oldPath,
		NewPath: newPath,
		Now:     time.Unix(0, 0).UTC(),
	})
	if err != nil {
		t.Fatalf("PlanMove() error = %v", err)
	}
	if plan.MoveDetails.Class != model.MoveSimpleRename {
		t.Fatalf("Class = %q, want %q", plan.MoveDetails.Class, model.MoveSimpleRename)
	}
}
