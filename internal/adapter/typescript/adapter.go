// adapter.go — TypeScript/JavaScript language plugin backed by tree-sitter.
package typescript

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/loomrefactor/loom/internal/adapter"
	"github.com/loomrefactor/loom/internal/model"
)

// Plugin implements adapter.LanguagePlugin, adapter.ImportRewriter, and
// adapter.ReferenceFinder for TypeScript, TSX, and JavaScript source.
type Plugin struct{}

// New returns a ready-to-register TypeScript/JavaScript language plugin.
func New() *Plugin { return &Plugin{} }

func (p *Plugin) Name() string         { return "typescript" }
func (p *Plugin) Extensions() []string { return []string{".ts", ".tsx", ".js", ".jsx"} }
func (p *Plugin) Priority() int        { return 10 }

func (p *Plugin) IsTestFile(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	return strings.Contains(name, ".test.") || strings.Contains(name, ".spec.")
}

func (p *Plugin) Capabilities() model.Capabilities {
	return model.Capabilities{
		GoToDefinition:   true,
		FindReferences:   true,
		ListSymbols:      true,
		OrganizeImports:  true,
		RenameSymbol:     true,
		WorkspaceSupport: false,
	}
}

func languageFor(path string) *sitter.Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsx":
		return tsx.GetLanguage()
	case ".js", ".jsx":
		return javascript.GetLanguage()
	default:
		return typescript.GetLanguage()
	}
}

func pos(pt sitter.Point) model.Position {
	return model.Position{Line: int(pt.Row), Column: int(pt.Column)}
}

func loc(n *sitter.Node) model.EditLocation {
	return model.EditLocation{Start: pos(n.StartPoint()), End: pos(n.EndPoint())}
}

func parseTree(path string, source []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(languageFor(path))
	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse typescript/javascript source: %w", err)
	}
	return tree, nil
}

func hasExport(n *sitter.Node) bool {
	parent := n.Parent()
	return parent != nil && parent.Type() == "export_statement"
}

// Parse walks the tree-sitter AST, extracting import_statement sources and
// class/function/interface declarations.
func (p *Plugin) Parse(path string, source []byte, _ adapter.AdapterConfig) (*model.UnifiedFileModel, error) {
	tree, err := parseTree(path, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	language := "typescript"
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".js" || ext == ".jsx" {
		language = "javascript"
	}

	out := &model.UnifiedFileModel{
		Path:       path,
		Language:   language,
		IsTestFile: p.IsTestFile(path),
		Source:     source,
		LineCount:  strings.Count(string(source), "\n") + 1,
	}

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "import_statement":
			if srcNode := n.ChildByFieldName("source"); srcNode != nil {
				modPath := strings.Trim(srcNode.Content(source), `"'`)
				out.Imports = append(out.Imports, model.ImportInfo{
					ModulePath: modPath,
					ImportType: model.ImportESModule,
					Location:   loc(srcNode),
				})
			}
		case "class_declaration":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				out.Symbols = append(out.Symbols, model.Symbol{
					Name: nameNode.Content(source), Kind: model.SymbolClass, Location: loc(n),
				})
			}
		case "function_declaration":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				out.Symbols = append(out.Symbols, model.Symbol{
					Name: nameNode.Content(source), Kind: model.SymbolFunction, Location: loc(n),
				})
			}
		case "interface_declaration":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				out.Symbols = append(out.Symbols, model.Symbol{
					Name: nameNode.Content(source), Kind: model.SymbolInterface, Location: loc(n),
				})
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(tree.RootNode())
	_ = hasExport // reserved for a future public-API-surface filter

	return out, nil
}

// RewriteImportsForRename replaces every quoted import specifier equal to
// oldModulePath. The fallback used when no ScanScope-aware caller consults
// FindModuleReferences first.
func (p *Plugin) RewriteImportsForRename(content []byte, oldModulePath, newModulePath, _ string, _ string, _ *adapter.RenameInfo) ([]byte, int, error) {
	replacements := 0
	text := string(content)
	for _, quote := range []string{`"`, `'`} {
		old := quote + oldModulePath + quote
		newQuoted := quote + newModulePath + quote
		replacements += strings.Count(text, old)
		text = strings.ReplaceAll(text, old, newQuoted)
	}
	return []byte(text), replacements, nil
}

// FindModuleReferences locates every import_statement source string equal
// to moduleName.
func (p *Plugin) FindModuleReferences(content []byte, moduleName string, _ model.ScanScope) ([]model.Reference, error) {
	tree, err := parseTree("dummy.ts", content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	var refs []model.Reference
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == "import_statement" {
			if srcNode := n.ChildByFieldName("source"); srcNode != nil {
				modPath := strings.Trim(srcNode.Content(content), `"'`)
				if modPath == moduleName {
					refs = append(refs, model.Reference{Location: loc(srcNode), MatchedText: srcNode.Content(content)})
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

// FindInlineReferences locates identifier occurrences matching the final
// segment of oldQualifier (a bare-named import/usage of a renamed module).
func (p *Plugin) FindInlineReferences(content []byte, filePath string, oldQualifier string) ([]model.Reference, error) {
	tree, err := parseTree(filePath, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	segs := strings.Split(oldQualifier, "/")
	name := segs[len(segs)-1]

	var refs []model.Reference
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == "identifier" && n.Content(content) == name {
			parent := n.Parent()
			if parent == nil || parent.Type() != "import_statement" {
				refs = append(refs, model.Reference{Location: loc(n), MatchedText: name})
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(tree.RootNode())
	return refs, nil
}

var (
	_ adapter.LanguagePlugin  = (*Plugin)(nil)
	_ adapter.ImportRewriter  = (*Plugin)(nil)
	_ adapter.ReferenceFinder = (*Plugin)(nil)
)
