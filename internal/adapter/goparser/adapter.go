// adapter.go — Go language plugin backed by the standard library's go/parser.
package goparser

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
	"strings"

	"github.com/loomrefactor/loom/internal/adapter"
	"github.com/loomrefactor/loom/internal/model"
)

// Plugin implements adapter.LanguagePlugin, adapter.ImportRewriter, and
// adapter.ReferenceFinder for Go source using go/parser and go/ast. Go's
// own toolchain is the only AST library in the corpus for this language,
// so there is no third-party dependency to wire in here.
type Plugin struct{}

// New returns a ready-to-register Go language plugin.
func New() *Plugin { return &Plugin{} }

func (p *Plugin) Name() string          { return "go" }
func (p *Plugin) Extensions() []string  { return []string{".go"} }
func (p *Plugin) Priority() int         { return 10 }
func (p *Plugin) IsTestFile(path string) bool {
	return strings.HasSuffix(path, "_test.go")
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

func position(fset *token.FileSet, pos token.Pos) model.Position {
	p := fset.Position(pos)
	return model.Position{Line: p.Line - 1, Column: p.Column - 1}
}

// Parse builds a UnifiedFileModel by walking the file's AST. It never
// retains the fset or AST beyond this call.
func (p *Plugin) Parse(path string, source []byte, _ adapter.AdapterConfig) (*model.UnifiedFileModel, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, source, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("parse go file %s: %w", path, err)
	}

	out := &model.UnifiedFileModel{
		Path:       path,
		Language:   "go",
		IsTestFile: p.IsTestFile(path),
		Source:     source,
		LineCount:  strings.Count(string(source), "\n") + 1,
	}

	for _, imp := range file.Imports {
		modPath, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			modPath = strings.Trim(imp.Path.Value, `"`)
		}
		alias := ""
		if imp.Name != nil {
			alias = imp.Name.Name
		}
		loc := model.EditLocation{Start: position(fset, imp.Pos()), End: position(fset, imp.End())}
		info := model.ImportInfo{
			ModulePath: modPath,
			ImportType: model.ImportGoImport,
			Location:   loc,
		}
		if alias != "" {
			info.NamedImports = []model.NamedImport{{Name: modPath, Alias: alias}}
		}
		out.Imports = append(out.Imports, info)
	}

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			kind := model.SymbolFunction
			if d.Recv != nil {
				kind = model.SymbolMethod
			}
			out.Symbols = append(out.Symbols, model.Symbol{
				Name:     d.Name.Name,
				Kind:     kind,
				Location: model.EditLocation{Start: position(fset, d.Pos()), End: position(fset, d.End())},
				Doc:      d.Doc.Text(),
			})
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				switch s := spec.(type) {
				case *ast.TypeSpec:
					kind := model.SymbolType
					switch s.Type.(type) {
					case *ast.StructType:
						kind = model.SymbolStruct
					case *ast.InterfaceType:
						kind = model.SymbolInterface
					}
					out.Symbols = append(out.Symbols, model.Symbol{
						Name:     s.Name.Name,
						Kind:     kind,
						Location: model.EditLocation{Start: position(fset, s.Pos()), End: position(fset, s.End())},
						Doc:      d.Doc.Text(),
					})
				case *ast.ValueSpec:
					symKind := model.SymbolVariable
					if d.Tok == token.CONST {
						symKind = model.SymbolConstant
					}
					for _, name := range s.Names {
						if name.Name == "_" {
							continue
						}
						out.Symbols = append(out.Symbols, model.Symbol{
							Name:     name.Name,
							Kind:     symKind,
							Location: model.EditLocation{Start: position(fset, name.Pos()), End: position(fset, name.End())},
						})
					}
				}
			}
		}
	}

	return out, nil
}

// RewriteImportsForRename rewrites every quoted import path equal to
// oldModulePath to newModulePath. This is the fallback used when no
// ScanScope-aware caller consults FindModuleReferences first.
func (p *Plugin) RewriteImportsForRename(content []byte, oldModulePath, newModulePath, _ string, _ string, _ *adapter.RenameInfo) ([]byte, int, error) {
	oldQuoted := `"` + oldModulePath + `"`
	newQuoted := `"` + newModulePath + `"`
	count := strings.Count(string(content), oldQuoted)
	if count == 0 {
		return content, 0, nil
	}
	return []byte(strings.ReplaceAll(string(content), oldQuoted, newQuoted)), count, nil
}

// FindModuleReferences locates every import spec whose path equals
// moduleName.
func (p *Plugin) FindModuleReferences(content []byte, moduleName string, _ model.ScanScope) ([]model.Reference, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", content, 0)
	if err != nil {
		return nil, fmt.Errorf("parse go file for references: %w", err)
	}

	var refs []model.Reference
	for _, imp := range file.Imports {
		modPath, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}
		if modPath != moduleName {
			continue
		}
		loc := model.EditLocation{Start: position(fset, imp.Path.Pos()), End: position(fset, imp.Path.End())}
		refs = append(refs, model.Reference{
			Location:    loc,
			MatchedText: imp.Path.Value,
		})
	}
	return refs, nil
}

// FindInlineReferences locates selector expressions whose package
// qualifier matches the final path segment of oldQualifier (e.g. a
// package renamed from "foo" to "bar" imported without an alias).
func (p *Plugin) FindInlineReferences(content []byte, _ string, oldQualifier string) ([]model.Reference, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", content, 0)
	if err != nil {
		return nil, fmt.Errorf("parse go file for inline references: %w", err)
	}

	segs := strings.Split(oldQualifier, "/")
	pkgName := segs[len(segs)-1]

	var refs []model.Reference
	ast.Inspect(file, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		ident, ok := sel.X.(*ast.Ident)
		if !ok || ident.Name != pkgName {
			return true
		}
		refs = append(refs, model.Reference{
			Location:    model.EditLocation{Start: position(fset, ident.Pos()), End: position(fset, ident.End())},
			MatchedText: ident.Name,
		})
		return true
	})
	return refs, nil
}

var (
	_ adapter.LanguagePlugin  = (*Plugin)(nil)
	_ adapter.ImportRewriter  = (*Plugin)(nil)
	_ adapter.ReferenceFinder = (*Plugin)(nil)
)
