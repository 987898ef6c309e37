// rename.go — RenamePlan builder implementing spec.md §4.2 steps 2-9 for
// the reference-sweep and edit-generation portion shared by file,
// directory, and symbol renames. Package-level manifest bookkeeping lives
// in move.go, which this file's MoveClass-aware callers invoke.
package planner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/loomrefactor/loom/internal/adapter"
	"github.com/loomrefactor/loom/internal/model"
)

// RenameRequest describes a rename/move intent, covering files,
// directories, and (when OldSymbolName is set) a bound symbol.
type RenameRequest struct {
	TargetKind    string // "file" | "directory" | "symbol"
	OldPath       string
	NewPath       string
	OldModuleName string
	NewModuleName string
	OldSymbolName string
	NewSymbolName string
	Scope         model.ScanScope
	Now           time.Time
}

// PlanRename runs the candidate scan, reference sweep, and edit generation
// described in spec.md §4.2 steps 2-9 and returns a RenamePlan.
func (p *Planner) PlanRename(ctx context.Context, req RenameRequest) (*model.RenamePlan, error) {
	if req.Scope.Kind == "" {
		req.Scope = model.DefaultScanScope()
	}

	candidates, err := p.Scanner.Scan(ctx, req.Scope)
	if err != nil {
		return nil, fmt.Errorf("scan project root: %w", err)
	}

	excludeDir := ""
	if req.TargetKind == "directory" {
		oldParent := filepath.Dir(req.OldPath)
		newParent := filepath.Dir(req.NewPath)
		if oldParent == newParent {
			// Simple directory rename: files inside the renamed directory
			// use relative imports that don't change (step 4).
			excludeDir = req.OldPath
		}
	}

	var edits []model.TextEdit
	var warnings []model.Warning
	touchedFiles := map[string]bool{}
	checksums := map[string]string{}

	for _, candidate := range candidates {
		if excludeDir != "" && withinDir(candidate, excludeDir) {
			continue
		}
		if req.TargetKind == "directory" && withinDir(candidate, req.NewPath) {
			continue
		}

		fileEdits, warn, err := p.renameEditsForFile(candidate, req)
		if err != nil {
			return nil, err
		}
		if warn != nil {
			warnings = append(warnings, *warn)
		}
		fileEdits = dropNoOps(fileEdits)
		if len(fileEdits) == 0 {
			continue
		}

		data, err := os.ReadFile(candidate)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", candidate, err)
		}
		checksums[candidate] = model.Checksum(data)
		touchedFiles[candidate] = true
		edits = append(edits, fileEdits...)
	}

	edits = dropNoOps(edits)
	sortEdits(edits)

	plan := &model.RenamePlan{
		PlanBase: model.PlanBase{
			Edits:         edits,
			FileChecksums: checksums,
			Summary: model.PlanSummary{
				AffectedFiles: len(touchedFiles),
			},
			Warnings: warnings,
			Metadata: newMetadata(model.PlanTypeRename, languageOf(p, req.OldPath), estimateImpact(len(touchedFiles)), map[string]any{
				"old_path": req.OldPath,
				"new_path": req.NewPath,
			}, req.Now),
		},
	}
	return plan, nil
}

// renameEditsForFile computes the edits one candidate file needs for the
// rename, preferring surgical reference-based edits over a full-file
// fallback rewrite (step 5), plus inline qualifier rewrites (step 6) and
// the conservative non-code string-literal sweep (step 7).
func (p *Planner) renameEditsForFile(path string, req RenameRequest) ([]model.TextEdit, *model.Warning, error) {
	plugin, ok := p.Registry.ForPath(path)
	if !ok {
		return p.nonCodeSweep(path, req)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}

	var edits []model.TextEdit

	if finder, ok := plugin.(adapter.ReferenceFinder); ok {
		refs, err := finder.FindModuleReferences(data, req.OldModuleName, req.Scope)
		if err != nil {
			return nil, nil, fmt.Errorf("find references in %s: %w", path, err)
		}
		refs = dedupReferences(refs, path)
		for _, ref := range refs {
			edits = append(edits, model.TextEdit{
				FilePath:     path,
				Kind:         model.EditUpdateImport,
				Location:     ref.Location,
				OriginalText: ref.MatchedText,
				NewText:      strings.Replace(ref.MatchedText, req.OldModuleName, req.NewModuleName, 1),
				Priority:     10,
				Description:  "update module reference",
			})
		}

		if req.OldSymbolName != "" && req.OldSymbolName != req.NewSymbolName {
			inline, err := finder.FindInlineReferences(data, path, req.OldModuleName)
			if err != nil {
				return nil, nil, fmt.Errorf("find inline references in %s: %w", path, err)
			}
			for _, ref := range dedupReferences(inline, path) {
				edits = append(edits, model.TextEdit{
					FilePath:     path,
					Kind:         model.EditUpdateImport,
					Location:     ref.Location,
					OriginalText: ref.MatchedText,
					NewText:      strings.Replace(ref.MatchedText, req.OldModuleName, req.NewModuleName, 1),
					Priority:     5,
					Description:  "update inline qualified reference",
				})
			}
		}
	}

	if len(edits) == 0 {
		if rewriter, ok := plugin.(adapter.ImportRewriter); ok {
			newContent, count, err := rewriter.RewriteImportsForRename(data, req.OldModuleName, req.NewModuleName, path, p.ProjectRoot, &adapter.RenameInfo{
				OldSymbolName: req.OldSymbolName,
				NewSymbolName: req.NewSymbolName,
			})
			if err != nil {
				return nil, nil, fmt.Errorf("rewrite imports in %s: %w", path, err)
			}
			if count > 0 {
				edits = append(edits, model.TextEdit{
					FilePath: path,
					Kind:     model.EditReplace,
					Location: model.EditLocation{
						Start: model.Position{Line: 0, Column: 0},
						End:   endOfFile(data),
					},
					OriginalText: string(data),
					NewText:      string(newContent),
					Priority:     1,
					Description:  "fallback full-file import rewrite",
				})
			}
		}
	}

	return edits, nil, nil
}

var pathLikeLiteral = regexp.MustCompile(`(?:"|'|` + "`" + `)([^"'` + "`" + `\n]*)(?:"|'|` + "`" + `)`)

// nonCodeSweep implements the conservative string-literal/markdown/config
// path sweep from spec.md §4.2 step 7, for files with no language plugin.
func (p *Planner) nonCodeSweep(path string, req RenameRequest) ([]model.TextEdit, *model.Warning, error) {
	if req.Scope.Kind == model.ScopeCodeOnly {
		return nil, nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}

	oldBase := strings.TrimPrefix(req.OldModuleName, "./")
	newBase := strings.TrimPrefix(req.NewModuleName, "./")
	if oldBase == "" {
		return nil, nil, nil
	}

	var edits []model.TextEdit
	lines := strings.Split(string(data), "\n")
	for lineNo, line := range lines {
		for _, m := range pathLikeLiteral.FindAllStringSubmatchIndex(line, -1) {
			literal := line[m[2]:m[3]]
			if !looksLikePath(literal) {
				continue
			}
			hadDotSlash := strings.HasPrefix(literal, "./")
			bare := strings.TrimPrefix(literal, "./")
			if bare != oldBase && !strings.HasSuffix(bare, "/"+oldBase) {
				continue
			}
			replacement := strings.Replace(bare, oldBase, newBase, 1)
			if hadDotSlash {
				replacement = "./" + replacement
			}
			edits = append(edits, model.TextEdit{
				FilePath: path,
				Kind:     model.EditReplace,
				Location: model.EditLocation{
					Start: model.Position{Line: lineNo, Column: m[2]},
					End:   model.Position{Line: lineNo, Column: m[3]},
				},
				OriginalText: literal,
				NewText:      replacement,
				Priority:     1,
				Description:  "update path-like string literal",
			})
		}
	}
	return edits, nil, nil
}

func looksLikePath(s string) bool {
	if s == "" {
		return false
	}
	if strings.ContainsAny(s, "/\\") {
		return true
	}
	for _, ext := range []string{".go", ".rs", ".ts", ".tsx", ".py", ".java", ".toml", ".yml", ".yaml", ".json", ".md"} {
		if strings.HasSuffix(s, ext) {
			return true
		}
	}
	return false
}

func withinDir(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func dropNoOps(edits []model.TextEdit) []model.TextEdit {
	out := make([]model.TextEdit, 0, len(edits))
	for _, e := range edits {
		if e.IsNoOp() {
			continue
		}
		out = append(out, e)
	}
	return out
}

// sortEdits orders edits within each file by (priority desc, start desc)
// per the invariant in model.TextEdit's doc comment.
func sortEdits(edits []model.TextEdit) {
	sort.SliceStable(edits, func(i, j int) bool {
		a, b := edits[i], edits[j]
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return b.Location.Start.Before(a.Location.Start)
	})
}

func endOfFile(data []byte) model.Position {
	lines := strings.Split(string(data), "\n")
	lastLine := len(lines) - 1
	return model.Position{Line: lastLine, Column: len(lines[lastLine])}
}

func languageOf(p *Planner, path string) string {
	if plugin, ok := p.Registry.ForPath(path); ok {
		return plugin.Name()
	}
	return "unknown"
}
