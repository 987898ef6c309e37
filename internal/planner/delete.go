// delete.go — DeletePlan builder: finds dependents of the target before
// deleting, warning rather than blocking since deletion intent overrides
// dangling-reference concerns (spec.md §4.2's delete semantics).
package planner

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/loomrefactor/loom/internal/adapter"
	"github.com/loomrefactor/loom/internal/model"
)

// DeleteRequest describes a file or directory deletion.
type DeleteRequest struct {
	Path  string
	Scope model.ScanScope
	Now   time.Time
}

// PlanDelete scans the project for files that import/reference Path and
// surfaces them as warnings, then returns a DeletePlan enumerating every
// file or directory entry actually removed.
func (p *Planner) PlanDelete(ctx context.Context, req DeleteRequest) (*model.DeletePlan, error) {
	if req.Scope.Kind == "" {
		req.Scope = model.DefaultScanScope()
	}

	isDir := IsDirectory(req.Path)
	moduleName := moduleNameFor(p.ProjectRoot, req.Path)

	candidates, err := p.Scanner.Scan(ctx, req.Scope)
	if err != nil {
		return nil, fmt.Errorf("scan project root: %w", err)
	}

	var dependents []string
	for _, candidate := range candidates {
		if withinDir(candidate, req.Path) {
			continue
		}
		plugin, ok := p.Registry.ForPath(candidate)
		if !ok {
			continue
		}
		finder, ok := plugin.(adapter.ReferenceFinder)
		if !ok {
			continue
		}
		data, err := os.ReadFile(candidate)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", candidate, err)
		}
		refs, err := finder.FindModuleReferences(data, moduleName, req.Scope)
		if err != nil {
			return nil, fmt.Errorf("find references in %s: %w", candidate, err)
		}
		if len(refs) > 0 {
			dependents = append(dependents, candidate)
		}
	}

	var deletions []model.Deletion
	if isDir {
		entries, err := p.Scanner.Scan(ctx, model.ScanScope{Kind: model.ScopeAll})
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if withinDir(e, req.Path) {
				deletions = append(deletions, model.Deletion{Path: e, Kind: model.DeletionFile})
			}
		}
		deletions = append(deletions, model.Deletion{Path: req.Path, Kind: model.DeletionDirectory})
	} else {
		deletions = append(deletions, model.Deletion{Path: req.Path, Kind: model.DeletionFile})
	}

	var warnings []model.Warning
	if len(dependents) > 0 {
		warnings = append(warnings, model.Warning{
			Code:       "delete-has-dependents",
			Message:    fmt.Sprintf("%d file(s) still reference %s; deleting will leave dangling imports", len(dependents), req.Path),
			Candidates: dependents,
		})
	}
	if isDir {
		if isPkg, _ := anyIsPackage(req.Path, p.workspaceAwarePlugins()); isPkg {
			warnings = append(warnings, model.Warning{
				Code:    "delete-package",
				Message: fmt.Sprintf("%s is a package root; this plan does not remove it from the workspace member list", req.Path),
			})
		}
	}

	plan := &model.DeletePlan{
		PlanBase: model.PlanBase{
			Summary: model.PlanSummary{
				DeletedFiles: len(deletions),
			},
			Warnings: warnings,
			Metadata: newMetadata(model.PlanTypeDelete, languageOf(p, req.Path), estimateImpact(len(dependents)+len(deletions)), map[string]any{
				"path": req.Path,
			}, req.Now),
		},
		Deletions: deletions,
	}
	return plan, nil
}
