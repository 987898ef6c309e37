// move.go — MovePlan builder: reuses the rename reference-sweep pipeline
// for import rewriting, then layers on workspace-manifest bookkeeping for
// package-level moves per spec.md §4.2's move-classification algorithm.
package planner

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/loomrefactor/loom/internal/adapter"
	"github.com/loomrefactor/loom/internal/model"
)

// MoveRequest describes a file or directory move.
type MoveRequest struct {
	OldPath string
	NewPath string
	Scope   model.ScanScope
	Now     time.Time
}

// PlanMove classifies the move, reuses PlanRename's reference sweep for
// the import-path rewrite, and — for package-level moves — appends the
// manifest edits a WorkspaceAware plugin reports.
func (p *Planner) PlanMove(ctx context.Context, req MoveRequest) (*model.MovePlan, error) {
	if req.Scope.Kind == "" {
		req.Scope = model.DefaultScanScope()
	}

	targetKind := "file"
	if IsDirectory(req.OldPath) {
		targetKind = "directory"
	}

	workspaceAware := p.workspaceAwarePlugins()
	class, err := Classify(req.OldPath, req.NewPath, workspaceAware)
	if err != nil {
		return nil, fmt.Errorf("classify move: %w", err)
	}

	oldModule := moduleNameFor(p.ProjectRoot, req.OldPath)
	newModule := moduleNameFor(p.ProjectRoot, req.NewPath)

	renamePlan, err := p.PlanRename(ctx, RenameRequest{
		TargetKind:    targetKind,
		OldPath:       req.OldPath,
		NewPath:       req.NewPath,
		OldModuleName: oldModule,
		NewModuleName: newModule,
		Scope:         req.Scope,
		Now:           req.Now,
	})
	if err != nil {
		return nil, err
	}

	base := renamePlan.PlanBase
	base.Metadata.Kind = model.PlanTypeMove
	base.Metadata.IntentArguments = map[string]any{
		"old_path": req.OldPath,
		"new_path": req.NewPath,
		"class":    string(class),
	}

	isPackageMove := class == model.MovePackageRename || class == model.MoveConsolidation
	if isPackageMove {
		wa, plugin := p.workspaceAwareFor(req.OldPath, workspaceAware)
		if wa == nil {
			base.Warnings = append(base.Warnings, model.Warning{
				Code:    "workspace-support-missing",
				Message: fmt.Sprintf("no workspace-aware plugin found for %s; package manifest left unmodified", req.OldPath),
			})
		} else {
			manifestPlan, err := wa.PlanDirectoryMove(req.OldPath, req.NewPath, p.ProjectRoot)
			if err != nil {
				return nil, fmt.Errorf("plan manifest edits for %s move (%s): %w", plugin, req.OldPath, err)
			}
			for _, mu := range manifestPlan.ManifestEdits {
				base.Edits = append(base.Edits, mu.TextEdit)
			}
			sortEdits(base.Edits)
		}
	}

	plan := &model.MovePlan{
		PlanBase: base,
		MoveDetails: model.MoveDetails{
			SourcePath:      req.OldPath,
			DestinationPath: req.NewPath,
			Class:           class,
			Consolidation:   class == model.MoveConsolidation,
		},
	}
	return plan, nil
}

func (p *Planner) workspaceAwarePlugins() []adapter.WorkspaceAware {
	var out []adapter.WorkspaceAware
	for _, plugin := range p.Registry.All() {
		if wa, ok := plugin.(adapter.WorkspaceAware); ok {
			out = append(out, wa)
		}
	}
	return out
}

// workspaceAwareFor picks the first WorkspaceAware plugin, in registry
// name order, whose IsPackage reports dir as a package root; when none
// does, it falls back to the first candidate.
func (p *Planner) workspaceAwareFor(dir string, candidates []adapter.WorkspaceAware) (adapter.WorkspaceAware, string) {
	for _, plugin := range p.Registry.All() {
		wa, ok := plugin.(adapter.WorkspaceAware)
		if !ok {
			continue
		}
		if ok, _ := wa.IsPackage(dir); ok {
			return wa, plugin.Name()
		}
	}
	if len(candidates) > 0 {
		return candidates[0], "unknown"
	}
	return nil, ""
}

// moduleNameFor derives a generic slash-separated module path for path
// relative to projectRoot, stripping the extension. This is the
// reference-matching key PlanRename's ReferenceFinder/ImportRewriter
// calls compare against; concrete plugins are responsible for mapping
// their own language's import syntax onto this same string (e.g. Go's
// module-path-plus-package-dir, Rust's crate-plus-path, a bare relative
// path for TypeScript/Python).
func moduleNameFor(projectRoot, path string) string {
	rel, err := filepath.Rel(projectRoot, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	return rel
}
