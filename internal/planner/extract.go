// extract.go — ExtractPlan builder: delegates to a plugin's
// CodeActionProvider since extraction needs real AST/scope analysis that
// the planner has no business reimplementing per-language.
package planner

import (
	"fmt"
	"os"
	"time"

	"github.com/loomrefactor/loom/internal/adapter"
	"github.com/loomrefactor/loom/internal/model"
)

// ExtractRequest describes an extract-function or extract-variable intent.
type ExtractRequest struct {
	FilePath  string
	Selection model.EditLocation
	NewName   string
	Kind      string // "function" | "variable"
	Now       time.Time
}

// PlanExtract builds an ExtractPlan by delegating the actual edit
// computation to the governing plugin's CodeActionProvider.
func (p *Planner) PlanExtract(req ExtractRequest) (*model.ExtractPlan, error) {
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

	var edits []model.TextEdit
	switch req.Kind {
	case "variable":
		edits, err = provider.PlanExtractVariable(fileModel, req.Selection, req.NewName)
	default:
		edits, err = provider.PlanExtractFunction(fileModel, req.Selection, req.NewName)
	}
	if err != nil {
		return nil, fmt.Errorf("plan extract %s in %s: %w", req.Kind, req.FilePath, err)
	}

	sortEdits(edits)
	plan := &model.ExtractPlan{
		PlanBase: model.PlanBase{
			Edits:         edits,
			FileChecksums: map[string]string{req.FilePath: model.Checksum(data)},
			Summary:       model.PlanSummary{AffectedFiles: 1},
			Metadata: newMetadata(model.PlanTypeExtract, plugin.Name(), estimateImpact(1), map[string]any{
				"file_path": req.FilePath,
				"new_name":  req.NewName,
				"kind":      req.Kind,
			}, req.Now),
		},
	}
	return plan, nil
}
