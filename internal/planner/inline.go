// inline.go — InlinePlan builder: substitutes a variable's definition at
// its call sites, delegated to a plugin's CodeActionProvider.
package planner

import (
	"fmt"
	"os"
	"time"

	"github.com/loomrefactor/loom/internal/adapter"
	"github.com/loomrefactor/loom/internal/model"
)

// InlineRequest describes an inline-variable intent.
type InlineRequest struct {
	FilePath string
	At       model.Position
	Now      time.Time
}

// PlanInline builds an InlinePlan by delegating to the governing plugin's
// CodeActionProvider.
func (p *Planner) PlanInline(req InlineRequest) (*model.InlinePlan, error) {
	plugin, ok := p.Registry.ForPath(req.FilePath)
	if !ok {
		return nil, fmt.Errorf("%w: no plugin registered for %s", model.ErrNotSupported, req.FilePath)
	}
	provider, ok := plugin.(adapter.CodeActionProvider)
	if !ok {
		return nil, fmt.Errorf("%w: %s plugin has no CodeActionProvider", model.ErrNotSupported, plugin.Name())
	}

	data, err := os.ReadFile(req.FilePath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", req.FilePath, err)
	}
	fileModel, err := plugin.Parse(req.FilePath, data, adapter.AdapterConfig{})
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", req.FilePath, err)
	}

	edits, err := provider.PlanInlineVariable(fileModel, req.At)
	if err != nil {
		return nil, fmt.Errorf("plan inline variable in %s: %w", req.FilePath, err)
	}

	sortEdits(edits)
	plan := &model.InlinePlan{
		PlanBase: model.PlanBase{
			Edits:         edits,
			FileChecksums: map[string]string{req.FilePath: model.Checksum(data)},
			Summary:       model.PlanSummary{AffectedFiles: 1},
			Metadata: newMetadata(model.PlanTypeInline, plugin.Name(), estimateImpact(1), map[string]any{
				"file_path": req.FilePath,
			}, req.Now),
		},
	}
	return plan, nil
}
