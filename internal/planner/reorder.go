// reorder.go — ReorderPlan builder: tries the governing plugin's
// CodeActionProvider first, falls back to the in-memory LSP-shaped block
// reorder, and reports not-supported rather than guessing.
package planner

import (
	"fmt"
	"os"
	"time"

	"github.com/loomrefactor/loom/internal/adapter"
	"github.com/loomrefactor/loom/internal/lsp"
	"github.com/loomrefactor/loom/internal/model"
)

// ReorderRequest describes a reorder-declarations/parameters/fields intent.
type ReorderRequest struct {
	FilePath string
	At       model.Position
	Blocks   []model.EditLocation
	NewOrder []int
	Now      time.Time
}

// PlanReorder builds a ReorderPlan. It first asks the governing plugin's
// CodeActionProvider for a precise reorder; if the plugin doesn't
// implement one, it falls back to lsp.Client's block-level reorder using
// the caller-supplied block ranges; if neither applies, it returns
// model.ErrNotSupported.
func (p *Planner) PlanReorder(req ReorderRequest) (*model.ReorderPlan, error) {
	plugin, ok := p.Registry.ForPath(req.FilePath)
	if !ok {
		return nil, fmt.Errorf("%w: no plugin registered for %s", model.ErrNotSupported, req.FilePath)
	}

	data, err := os.ReadFile(req.FilePath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", req.FilePath, err)
	}

	var edits []model.TextEdit
	if provider, ok := plugin.(adapter.CodeActionProvider); ok {
		fileModel, err := plugin.Parse(req.FilePath, data, adapter.AdapterConfig{})
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", req.FilePath, err)
		}
		edits, err = provider.PlanReorder(fileModel, req.At, req.NewOrder)
		if err != nil {
			return nil, fmt.Errorf("plan reorder in %s: %w", req.FilePath, err)
		}
	}

	if len(edits) == 0 {
		if len(req.Blocks) == 0 {
			return nil, fmt.Errorf("%w: %s plugin has no reorder code action and no block ranges were supplied for the lsp fallback", model.ErrNotSupported, plugin.Name())
		}
		edits, err = lsp.New().ReorderBlocks(req.FilePath, data, req.Blocks, req.NewOrder)
		if err != nil {
			return nil, err
		}
	}

	sortEdits(edits)
	plan := &model.ReorderPlan{
		PlanBase: model.PlanBase{
			Edits:         edits,
			FileChecksums: map[string]string{req.FilePath: model.Checksum(data)},
			Summary:       model.PlanSummary{AffectedFiles: 1},
			Metadata: newMetadata(model.PlanTypeReorder, plugin.Name(), estimateImpact(1), map[string]any{
				"file_path": req.FilePath,
			}, req.Now),
		},
	}
	return plan, nil
}
