// handlers.go — one Handler per tool in the spec.md §6 tool surface,
// decoding each tool's specific argument shape and delegating to
// internal/planner / internal/apply.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/loomrefactor/loom/internal/apply"
	"github.com/loomrefactor/loom/internal/model"
	"github.com/loomrefactor/loom/internal/planner"
	"github.com/loomrefactor/loom/internal/plugins"
)

// target is the {kind, path, selector?} shape shared by rename.plan,
// move.plan, and delete.plan.
type target struct {
	Kind     string `json:"kind"`
	Path     string `json:"path"`
	Selector string `json:"selector,omitempty"`
}

// scanScopeArgs is the wire shape for an options.scope override.
type scanScopeArgs struct {
	Kind    string   `json:"kind,omitempty"`
	Include []string `json:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
}

func (s *scanScopeArgs) toScanScope() model.ScanScope {
	if s == nil {
		return model.DefaultScanScope()
	}
	scope := model.ScanScope{Kind: model.ScanScopeKind(s.Kind), Include: s.Include, Exclude: s.Exclude}
	if scope.Kind == "" {
		scope.Kind = model.ScopeCodeOnly
	}
	return scope
}

type planOptions struct {
	Scope *scanScopeArgs `json:"scope,omitempty"`
}

func (o *planOptions) scope() model.ScanScope {
	if o == nil {
		return model.DefaultScanScope()
	}
	return o.Scope.toScanScope()
}

func moduleName(projectRoot, path string) string {
	rel, err := filepath.Rel(projectRoot, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	return rel
}

// --- rename.plan ---

type renamePlanArgs struct {
	Target  target       `json:"target"`
	NewName string       `json:"new_name"`
	Options *planOptions `json:"options,omitempty"`
}

func handleRenamePlan(ctx context.Context, d *Dispatcher, raw json.RawMessage) (*Envelope, error) {
	var args renamePlanArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if args.Target.Path == "" || args.NewName == "" {
		return nil, fmt.Errorf("%w: rename.plan requires target.path and new_name", model.ErrInvalidRequest)
	}

	targetKind := args.Target.Kind
	if targetKind == "" {
		targetKind = "file"
	}

	req, err := buildRenameRequest(d.ProjectRoot, targetKind, args.Target.Path, args.Target.Selector, args.NewName, args.Options.scope())
	if err != nil {
		return nil, err
	}
	req.Now = nowUTC()

	plan, err := d.Planner.PlanRename(ctx, req)
	if err != nil {
		return nil, err
	}
	return envelopeForEdits("rename.plan", plan.Edits, plan.Summary, plan), nil
}

// buildRenameRequest derives the planner.RenameRequest for a rename.plan
// call. For file/directory renames, new_name is a new basename inside the
// same parent; for a symbol rename the file itself doesn't move and
// selector carries the old symbol name.
func buildRenameRequest(projectRoot, targetKind, path, selector, newName string, scope model.ScanScope) (planner.RenameRequest, error) {
	switch targetKind {
	case "file", "directory":
		newPath := filepath.Join(filepath.Dir(path), newName)
		return planner.RenameRequest{
			TargetKind:    targetKind,
			OldPath:       path,
			NewPath:       newPath,
			OldModuleName: moduleName(projectRoot, path),
			NewModuleName: moduleName(projectRoot, newPath),
			Scope:         scope,
		}, nil
	case "symbol":
		if selector == "" {
			return planner.RenameRequest{}, fmt.Errorf("%w: symbol rename requires target.selector (the current symbol name)", model.ErrInvalidRequest)
		}
		qualifier := moduleName(projectRoot, path)
		return planner.RenameRequest{
			TargetKind:    targetKind,
			OldPath:       path,
			NewPath:       path,
			OldModuleName: qualifier,
			NewModuleName: qualifier,
			OldSymbolName: selector,
			NewSymbolName: newName,
			Scope:         scope,
		}, nil
	default:
		return planner.RenameRequest{}, fmt.Errorf("%w: unknown target.kind %q", model.ErrInvalidRequest, targetKind)
	}
}

// --- move.plan ---

type movePlanArgs struct {
	Target      target       `json:"target"`
	Destination string       `json:"destination"`
	Options     *planOptions `json:"options,omitempty"`
}

func handleMovePlan(ctx context.Context, d *Dispatcher, raw json.RawMessage) (*Envelope, error) {
	var args movePlanArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if args.Target.Path == "" || args.Destination == "" {
		return nil, fmt.Errorf("%w: move.plan requires target.path and destination", model.ErrInvalidRequest)
	}

	req := planner.MoveRequest{
		OldPath: args.Target.Path,
		NewPath: args.Destination,
		Scope:   args.Options.scope(),
		Now:     nowUTC(),
	}
	plan, err := d.Planner.PlanMove(ctx, req)
	if err != nil {
		return nil, err
	}
	return envelopeForEdits("move.plan", plan.Edits, plan.Summary, plan), nil
}

// --- delete.plan ---

type deletePlanArgs struct {
	Target  target       `json:"target"`
	Options *planOptions `json:"options,omitempty"`
}

func handleDeletePlan(ctx context.Context, d *Dispatcher, raw json.RawMessage) (*Envelope, error) {
	var args deletePlanArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if args.Target.Path == "" {
		return nil, fmt.Errorf("%w: delete.plan requires target.path", model.ErrInvalidRequest)
	}

	req := planner.DeleteRequest{
		Path:  args.Target.Path,
		Scope: args.Options.scope(),
		Now:   nowUTC(),
	}
	plan, err := d.Planner.PlanDelete(ctx, req)
	if err != nil {
		return nil, err
	}

	env := &Envelope{
		Status:       StatusSuccess,
		Summary:      planSummary("delete.plan", 0, 0, plan.Summary.DeletedFiles),
		FilesChanged: deletionPaths(plan.Deletions),
		Diagnostics:  diagnosticsFromWarnings(plan.Warnings),
		Changes:      plan,
	}
	return env, nil
}

func deletionPaths(deletions []model.Deletion) []string {
	out := make([]string, 0, len(deletions))
	for _, del := range deletions {
		out = append(out, del.Path)
	}
	return out
}

// --- extract.plan ---

type extractSource struct {
	FilePath    string             `json:"file_path"`
	Range       model.EditLocation `json:"range"`
	Name        string             `json:"name"`
	Destination string             `json:"destination,omitempty"`
}

type extractPlanArgs struct {
	Kind    string        `json:"kind"`
	Source  extractSource `json:"source"`
	Options *planOptions  `json:"options,omitempty"`
}

func handleExtractPlan(_ context.Context, d *Dispatcher, raw json.RawMessage) (*Envelope, error) {
	var args extractPlanArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	switch args.Kind {
	case "function", "variable":
	default:
		return nil, fmt.Errorf("%w: extract.plan kind %q has no plugin-side builder", model.ErrNotSupported, args.Kind)
	}
	if args.Source.FilePath == "" || args.Source.Name == "" {
		return nil, fmt.Errorf("%w: extract.plan requires source.file_path and source.name", model.ErrInvalidRequest)
	}

	req := planner.ExtractRequest{
		FilePath:  args.Source.FilePath,
		Selection: args.Source.Range,
		NewName:   args.Source.Name,
		Kind:      args.Kind,
		Now:       nowUTC(),
	}
	plan, err := d.Planner.PlanExtract(req)
	if err != nil {
		return nil, err
	}
	return envelopeForEdits("extract.plan", plan.Edits, plan.Summary, plan), nil
}

// --- inline ---

type inlineTarget struct {
	FilePath string         `json:"file_path"`
	Position model.Position `json:"position"`
}

type inlineOptions struct {
	DryRun bool `json:"dry_run,omitempty"`
}

type inlineArgs struct {
	Kind    string         `json:"kind"`
	Target  inlineTarget   `json:"target"`
	Options *inlineOptions `json:"options,omitempty"`
}

func handleInline(_ context.Context, d *Dispatcher, raw json.RawMessage) (*Envelope, error) {
	var args inlineArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if args.Kind != "variable" {
		return nil, fmt.Errorf("%w: inline kind %q has no plugin-side builder (only variable is wired)", model.ErrNotSupported, args.Kind)
	}
	if args.Target.FilePath == "" {
		return nil, fmt.Errorf("%w: inline requires target.file_path", model.ErrInvalidRequest)
	}

	req := planner.InlineRequest{
		FilePath: args.Target.FilePath,
		At:       args.Target.Position,
		Now:      nowUTC(),
	}
	plan, err := d.Planner.PlanInline(req)
	if err != nil {
		return nil, err
	}

	status := StatusSuccess
	if args.Options != nil && args.Options.DryRun {
		status = StatusPreview
	}
	env := envelopeForEdits("inline", plan.Edits, plan.Summary, plan)
	env.Status = status
	return env, nil
}

// --- reorder.plan ---

type reorderTarget struct {
	Kind     string         `json:"kind"`
	FilePath string         `json:"file_path"`
	Position model.Position `json:"position"`
}

type reorderPlanOptions struct {
	Blocks []model.EditLocation `json:"blocks,omitempty"`
}

type reorderPlanArgs struct {
	Target   reorderTarget       `json:"target"`
	NewOrder []int               `json:"new_order"`
	Options  *reorderPlanOptions `json:"options,omitempty"`
}

func handleReorderPlan(_ context.Context, d *Dispatcher, raw json.RawMessage) (*Envelope, error) {
	var args reorderPlanArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if args.Target.FilePath == "" || len(args.NewOrder) == 0 {
		return nil, fmt.Errorf("%w: reorder.plan requires target.file_path and new_order", model.ErrInvalidRequest)
	}

	var blocks []model.EditLocation
	if args.Options != nil {
		blocks = args.Options.Blocks
	}

	req := planner.ReorderRequest{
		FilePath: args.Target.FilePath,
		At:       args.Target.Position,
		Blocks:   blocks,
		NewOrder: args.NewOrder,
		Now:      nowUTC(),
	}
	plan, err := d.Planner.PlanReorder(req)
	if err != nil {
		return nil, err
	}
	return envelopeForEdits("reorder.plan", plan.Edits, plan.Summary, plan), nil
}

// --- workspace.apply_edit ---

type applyEditOptions struct {
	DryRun            bool                    `json:"dry_run,omitempty"`
	ValidateChecksums *bool                   `json:"validate_checksums,omitempty"`
	RollbackOnError   *bool                   `json:"rollback_on_error,omitempty"`
	Validation        *applyValidationCommand `json:"validation,omitempty"`
}

type applyValidationCommand struct {
	Args          []string `json:"args"`
	Dir           string   `json:"dir,omitempty"`
	TimeoutSecond int      `json:"timeout_seconds,omitempty"`
}

type applyEditArgs struct {
	Plan    json.RawMessage   `json:"plan"`
	Options *applyEditOptions `json:"options,omitempty"`
}

func handleApplyEdit(ctx context.Context, d *Dispatcher, raw json.RawMessage) (*Envelope, error) {
	var args applyEditArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if len(args.Plan) == 0 {
		return nil, fmt.Errorf("%w: workspace.apply_edit requires plan", model.ErrInvalidRequest)
	}

	plan, err := decodePlan(args.Plan)
	if err != nil {
		return nil, err
	}

	opts := apply.DefaultOptions()
	if args.Options != nil {
		opts.DryRun = args.Options.DryRun
		if args.Options.ValidateChecksums != nil {
			opts.ValidateChecksums = *args.Options.ValidateChecksums
		}
		if args.Options.RollbackOnError != nil {
			opts.RollbackOnError = *args.Options.RollbackOnError
		}
		if args.Options.Validation != nil {
			vc := &apply.ValidationCommand{
				Args: args.Options.Validation.Args,
				Dir:  args.Options.Validation.Dir,
			}
			if args.Options.Validation.TimeoutSecond > 0 {
				vc.Timeout = time.Duration(args.Options.Validation.TimeoutSecond) * time.Second
			}
			opts.Validation = vc
		}
	}

	var result *apply.Result
	err = d.Queue.Do(d.ProjectRoot, func() error {
		var applyErr error
		result, applyErr = d.Executor.Apply(ctx, plan, opts)
		return applyErr
	})
	if err != nil {
		return nil, err
	}

	status := StatusSuccess
	if opts.DryRun {
		status = StatusPreview
	}

	changed := append(append([]string{}, result.AppliedFiles...), result.CreatedFiles...)
	changed = append(changed, result.DeletedFiles...)

	return &Envelope{
		Status:       status,
		Summary:      fmt.Sprintf("applied %s: %d file(s) touched", plan.PlanType(), len(changed)),
		FilesChanged: changed,
		Diagnostics:  diagnosticsFromWarnings(result.Warnings),
		Changes:      result,
	}, nil
}

// --- refactor ---

type refactorArgs struct {
	Action  string          `json:"action"`
	Params  json.RawMessage `json:"params"`
	Options json.RawMessage `json:"options,omitempty"`
}

// handleRefactor wraps extract/inline/transform behind one entry point,
// per spec.md §6's `refactor` convenience tool.
func handleRefactor(ctx context.Context, d *Dispatcher, raw json.RawMessage) (*Envelope, error) {
	var args refactorArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}

	switch args.Action {
	case "extract":
		reassembled, err := reassembleToolArgs(args.Params, args.Options)
		if err != nil {
			return nil, err
		}
		return handleExtractPlan(ctx, d, reassembled)
	case "inline":
		reassembled, err := reassembleToolArgs(args.Params, args.Options)
		if err != nil {
			return nil, err
		}
		return handleInline(ctx, d, reassembled)
	case "transform":
		if err := d.Planner.PlanTransform(string(args.Params)); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: transform is reserved", model.ErrNotImplemented)
	default:
		if t, ok := d.Transforms.Lookup(args.Action); ok {
			return handlePluginTransform(t, args.Params)
		}
		return nil, fmt.Errorf("%w: unknown refactor action %q", model.ErrInvalidRequest, args.Action)
	}
}

// pluginTransformParams is the {file_path, params?} shape a refactor call
// supplies when action names a plugin-loaded transform rather than one of
// the built-in extract/inline/transform actions.
type pluginTransformParams struct {
	FilePath string                 `json:"file_path"`
	Params   map[string]interface{} `json:"params,omitempty"`
}

// handlePluginTransform reads the target file, applies a plugin-loaded
// Transform to it directly (plugin transforms work on raw source, not a
// language plugin's parsed UnifiedFileModel), and returns its edits.
func handlePluginTransform(t plugins.Transform, rawParams json.RawMessage) (*Envelope, error) {
	var params pluginTransformParams
	if err := decodeArgs(rawParams, &params); err != nil {
		return nil, err
	}
	if params.FilePath == "" {
		return nil, fmt.Errorf("%w: refactor params must include file_path for transform %q", model.ErrInvalidRequest, t.Name())
	}
	ext := filepath.Ext(params.FilePath)
	if !t.Accepts(ext) {
		return nil, fmt.Errorf("%w: transform %q does not accept %s files", model.ErrNotSupported, t.Name(), ext)
	}

	data, err := os.ReadFile(params.FilePath)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", model.ErrIO, params.FilePath, err)
	}
	file := &model.UnifiedFileModel{
		Path:      params.FilePath,
		Source:    data,
		LineCount: bytes.Count(data, []byte("\n")) + 1,
	}

	edits, err := t.Apply(file, params.Params)
	if err != nil {
		return nil, fmt.Errorf("%w: transform %q: %v", model.ErrInternal, t.Name(), err)
	}
	return &Envelope{
		Status:       StatusPreview,
		Summary:      fmt.Sprintf("transform %q touches %d file(s)", t.Name(), len(filesChangedFromEdits(edits))),
		FilesChanged: filesChangedFromEdits(edits),
		Changes:      edits,
	}, nil
}

// reassembleToolArgs merges a refactor call's params/options back into the
// flat {..., options} shape the underlying tool handler expects.
func reassembleToolArgs(params, options json.RawMessage) (json.RawMessage, error) {
	var merged map[string]json.RawMessage
	if len(params) > 0 {
		if err := json.Unmarshal(params, &merged); err != nil {
			return nil, fmt.Errorf("%w: refactor params: %v", model.ErrInvalidRequest, err)
		}
	}
	if merged == nil {
		merged = map[string]json.RawMessage{}
	}
	if len(options) > 0 {
		merged["options"] = options
	}
	out, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInternal, err)
	}
	return out, nil
}

// --- shared helpers ---

func diagnosticsFromWarnings(warnings []model.Warning) []Diagnostic {
	out := make([]Diagnostic, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, Diagnostic{Severity: "warning", Message: w.Message})
	}
	return out
}

func envelopeForEdits(tool string, edits []model.TextEdit, summary model.PlanSummary, plan any) *Envelope {
	return &Envelope{
		Status:       StatusSuccess,
		Summary:      planSummary(tool, summary.AffectedFiles, summary.CreatedFiles, summary.DeletedFiles),
		FilesChanged: filesChangedFromEdits(edits),
		Changes:      plan,
	}
}
