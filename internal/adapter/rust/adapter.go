// adapter.go — Rust language plugin backed by tree-sitter, with Cargo
// workspace support via pelletier/go-toml for structural reads and
// line-targeted text edits for manifest writes (preserves formatting and
// comments the way a generic TOML re-marshal would not).
package rust

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"

	"github.com/loomrefactor/loom/internal/adapter"
	"github.com/loomrefactor/loom/internal/manifest"
	"github.com/loomrefactor/loom/internal/model"
)

// Plugin implements adapter.LanguagePlugin, adapter.ImportRewriter,
// adapter.ReferenceFinder, and adapter.WorkspaceAware for Rust source.
type Plugin struct{}

// New returns a ready-to-register Rust language plugin.
func New() *Plugin { return &Plugin{} }

func (p *Plugin) Name() string         { return "rust" }
func (p *Plugin) Extensions() []string { return []string{".rs"} }
func (p *Plugin) Priority() int        { return 10 }
func (p *Plugin) IsTestFile(path string) bool {
	return strings.HasSuffix(path, "_test.rs") || strings.Contains(path, "/tests/")
}

func (p *Plugin) Capabilities() model.Capabilities {
	return model.Capabilities{
		GoToDefinition:   true,
		FindReferences:   true,
		ListSymbols:      true,
		RenameSymbol:     true,
		WorkspaceSupport: true,
	}
}

func pos(pt sitter.Point) model.Position {
	return model.Position{Line: int(pt.Row), Column: int(pt.Column)}
}

func loc(n *sitter.Node) model.EditLocation {
	return model.EditLocation{Start: pos(n.StartPoint()), End: pos(n.EndPoint())}
}

func hasPubVisibility(n *sitter.Node) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); c.Type() == "visibility_modifier" {
			return true
		}
	}
	return false
}

func parseTree(source []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(rust.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse rust source: %w", err)
	}
	return tree, nil
}

// Parse walks the Rust syntax tree and extracts use-declarations and
// fn/struct/enum/trait/mod items at every nesting level.
func (p *Plugin) Parse(path string, source []byte, _ adapter.AdapterConfig) (*model.UnifiedFileModel, error) {
	tree, err := parseTree(source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	out := &model.UnifiedFileModel{
		Path:       path,
		Language:   "rust",
		IsTestFile: p.IsTestFile(path),
		Source:     source,
		LineCount:  strings.Count(string(source), "\n") + 1,
	}

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "use_declaration":
			if argNode := n.ChildByFieldName("argument"); argNode != nil {
				usePath := argNode.Content(source)
				out.Imports = append(out.Imports, model.ImportInfo{
					ModulePath: usePath,
					ImportType: model.ImportUseItem,
					Location:   loc(argNode),
				})
			}
		case "function_item":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				out.Symbols = append(out.Symbols, model.Symbol{
					Name:     nameNode.Content(source),
					Kind:     model.SymbolFunction,
					Location: loc(n),
				})
			}
		case "struct_item":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				out.Symbols = append(out.Symbols, model.Symbol{
					Name:     nameNode.Content(source),
					Kind:     model.SymbolStruct,
					Location: loc(n),
				})
			}
		case "enum_item":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				out.Symbols = append(out.Symbols, model.Symbol{
					Name:     nameNode.Content(source),
					Kind:     model.SymbolEnum,
					Location: loc(n),
				})
			}
		case "trait_item":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				out.Symbols = append(out.Symbols, model.Symbol{
					Name:     nameNode.Content(source),
					Kind:     model.SymbolTrait,
					Location: loc(n),
				})
			}
		case "mod_item":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				out.Symbols = append(out.Symbols, model.Symbol{
					Name:     nameNode.Content(source),
					Kind:     model.SymbolModule,
					Location: loc(n),
				})
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(tree.RootNode())
	_ = hasPubVisibility // reserved for a future visibility-aware rename guard

	return out, nil
}

// RewriteImportsForRename is the non-precise fallback: replaces every
// textual occurrence of the old crate/module path that is followed by
// `::`. Callers with a ScanScope should prefer FindModuleReferences.
func (p *Plugin) RewriteImportsForRename(content []byte, oldModulePath, newModulePath, _ string, _ string, _ *adapter.RenameInfo) ([]byte, int, error) {
	old := oldModulePath + "::"
	newPfx := newModulePath + "::"
	count := strings.Count(string(content), old)
	if count == 0 {
		return content, 0, nil
	}
	return []byte(strings.ReplaceAll(string(content), old, newPfx)), count, nil
}

// FindModuleReferences locates every use-declaration path that starts
// with moduleName, at the precise argument-node location.
func (p *Plugin) FindModuleReferences(content []byte, moduleName string, _ model.ScanScope) ([]model.Reference, error) {
	tree, err := parseTree(content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	var refs []model.Reference
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == "use_declaration" {
			if argNode := n.ChildByFieldName("argument"); argNode != nil {
				text := argNode.Content(content)
				if text == moduleName || strings.HasPrefix(text, moduleName+"::") {
					refs = append(refs, model.Reference{Location: loc(argNode), MatchedText: text})
				}
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(tree.RootNode())
	return refs, nil
}

// FindInlineReferences locates fully-qualified paths like
// old_crate::module::func that aren't inside a use_declaration.
func (p *Plugin) FindInlineReferences(content []byte, _ string, oldQualifier string) ([]model.Reference, error) {
	tree, err := parseTree(content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	prefix := oldQualifier + "::"
	var refs []model.Reference
	var insideUse func(n *sitter.Node) bool
	insideUse = func(n *sitter.Node) bool {
		for cur := n; cur != nil; cur = cur.Parent() {
			if cur.Type() == "use_declaration" {
				return true
			}
		}
		return false
	}

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == "scoped_identifier" && !insideUse(n) {
			text := n.Content(content)
			if strings.HasPrefix(text, prefix) {
				refs = append(refs, model.Reference{Location: loc(n), MatchedText: text})
				return
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(tree.RootNode())
	return refs, nil
}

// IsPackage reports whether dir has its own Cargo.toml.
func (p *Plugin) IsPackage(dir string) (bool, error) {
	return manifest.Exists(dir, manifest.KindCargo)
}

func (p *Plugin) PlanDirectoryMove(oldDir, newDir, projectRoot string) (*adapter.MoveManifestPlan, error) {
	return manifest.PlanCargoDirectoryMove(oldDir, newDir, projectRoot)
}

func (p *Plugin) GenerateWorkspaceManifest(members []string, root string) ([]byte, error) {
	return manifest.GenerateCargoWorkspace(members, root)
}

func (p *Plugin) AddWorkspaceMember(data []byte, member string) ([]byte, error) {
	return manifest.AddCargoWorkspaceMember(data, member)
}

func (p *Plugin) RemoveWorkspaceMember(data []byte, member string) ([]byte, error) {
	return manifest.RemoveCargoWorkspaceMember(data, member)
}

func (p *Plugin) ListWorkspaceMembers(data []byte) ([]string, error) {
	return manifest.ListCargoWorkspaceMembers(data)
}

func (p *Plugin) UpdatePackageName(data []byte, newName string) ([]byte, error) {
	return manifest.UpdateCargoPackageName(data, newName)
}

func (p *Plugin) ExecuteConsolidationPostProcessing(sourceDir, targetDir, projectRoot string) (*adapter.ConsolidationResult, error) {
	return manifest.ConsolidateCargoPackages(sourceDir, targetDir, projectRoot)
}

var (
	_ adapter.LanguagePlugin  = (*Plugin)(nil)
	_ adapter.ImportRewriter  = (*Plugin)(nil)
	_ adapter.ReferenceFinder = (*Plugin)(nil)
	_ adapter.WorkspaceAware  = (*Plugin)(nil)
)
