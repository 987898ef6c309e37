// adapter.go — Python language plugin backed by tree-sitter.
package python

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/loomrefactor/loom/internal/adapter"
	"github.com/loomrefactor/loom/internal/model"
)

// Plugin implements adapter.LanguagePlugin, adapter.ImportRewriter, and
// adapter.ReferenceFinder for Python source.
type Plugin struct{}

// New returns a ready-to-register Python language plugin.
func New() *Plugin { return &Plugin{} }

func (p *Plugin) Name() string         { return "python" }
func (p *Plugin) Extensions() []string { return []string{".py"} }
func (p *Plugin) Priority() int        { return 10 }

func (p *Plugin) IsTestFile(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	return strings.HasPrefix(name, "test_") || strings.HasSuffix(name, "_test.py")
}

func (p *Plugin) Capabilities() model.Capabilities {
	return model.Capabilities{
		GoToDefinition:   true,
		FindReferences:   true,
		ListSymbols:      true,
		RenameSymbol:     true,
		WorkspaceSupport: false,
	}
}

func pos(pt sitter.Point) model.Position {
	return model.Position{Line: int(pt.Row), Column: int(pt.Column)}
}

func loc(n *sitter.Node) model.EditLocation {
	return model.EditLocation{Start: pos(n.StartPoint()), End: pos(n.EndPoint())}
}

func parseTree(source []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse python source: %w", err)
	}
	return tree, nil
}

// Parse walks the tree-sitter AST, extracting import/import-from module
// names and class/function definitions at every nesting level.
func (p *Plugin) Parse(path string, source []byte, _ adapter.AdapterConfig) (*model.UnifiedFileModel, error) {
	tree, err := parseTree(source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	out := &model.UnifiedFileModel{
		Path:       path,
		Language:   "python",
		IsTestFile: p.IsTestFile(path),
		Source:     source,
		LineCount:  strings.Count(string(source), "\n") + 1,
	}

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "import_statement", "import_from_statement":
			importType := model.ImportPythonImport
			if n.Type() == "import_from_statement" {
				importType = model.ImportPythonFrom
			}
			for i := 0; i < int(n.NamedChildCount()); i++ {
				child := n.NamedChild(i)
				if child.Type() == "dotted_name" {
					out.Imports = append(out.Imports, model.ImportInfo{
						ModulePath: child.Content(source),
						ImportType: importType,
						Location:   loc(child),
					})
				}
			}
		case "class_definition":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				out.Symbols = append(out.Symbols, model.Symbol{
					Name: nameNode.Content(source), Kind: model.SymbolClass, Location: loc(n),
				})
			}
		case "function_definition":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				out.Symbols = append(out.Symbols, model.Symbol{
					Name: nameNode.Content(source), Kind: model.SymbolFunction, Location: loc(n),
				})
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(tree.RootNode())

	return out, nil
}

// RewriteImportsForRename replaces every textual occurrence of
// oldModulePath in the file, inside or outside import statements. The
// fallback used when no ScanScope-aware caller consults
// FindModuleReferences first.
func (p *Plugin) RewriteImportsForRename(content []byte, oldModulePath, newModulePath, _ string, _ string, _ *adapter.RenameInfo) ([]byte, int, error) {
	text := string(content)
	count := strings.Count(text, oldModulePath)
	if count == 0 {
		return content, 0, nil
	}
	return []byte(strings.ReplaceAll(text, oldModulePath, newModulePath)), count, nil
}

// FindModuleReferences locates every dotted_name import target equal to
// moduleName.
func (p *Plugin) FindModuleReferences(content []byte, moduleName string, _ model.ScanScope) ([]model.Reference, error) {
	tree, err := parseTree(content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	var refs []model.Reference
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == "import_statement" || n.Type() == "import_from_statement" {
			for i := 0; i < int(n.NamedChildCount()); i++ {
				child := n.NamedChild(i)
				if child.Type() == "dotted_name" && child.Content(content) == moduleName {
					refs = append(refs, model.Reference{Location: loc(child), MatchedText: child.Content(content)})
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

// FindInlineReferences locates attribute/identifier occurrences matching
// the final segment of oldQualifier, outside import statements.
func (p *Plugin) FindInlineReferences(content []byte, _ string, oldQualifier string) ([]model.Reference, error) {
	tree, err := parseTree(content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	segs := strings.Split(oldQualifier, ".")
	name := segs[len(segs)-1]

	var insideImport func(n *sitter.Node) bool
	insideImport = func(n *sitter.Node) bool {
		for cur := n; cur != nil; cur = cur.Parent() {
			if cur.Type() == "import_statement" || cur.Type() == "import_from_statement" {
				return true
			}
		}
		return false
	}

	var refs []model.Reference
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == "identifier" && n.Content(content) == name && !insideImport(n) {
			refs = append(refs, model.Reference{Location: loc(n), MatchedText: name})
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
