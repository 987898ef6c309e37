// file.go — UnifiedFileModel and the language-agnostic parsed symbol/import types.
package model

// UnifiedFileModel represents a parsed file in any supported language, as
// produced by a LanguagePlugin's Parse method. It is derived on demand and
// never cached beyond a single planning call.
type UnifiedFileModel struct {
	Path       string
	Language   string
	IsTestFile bool
	Source     []byte
	LineCount  int
	Imports    []ImportInfo
	Symbols    []Symbol
}

// SymbolKind enumerates the kinds of declarations a plugin can surface.
type SymbolKind string

const (
	SymbolFunction  SymbolKind = "function"
	SymbolMethod    SymbolKind = "method"
	SymbolStruct    SymbolKind = "struct"
	SymbolEnum      SymbolKind = "enum"
	SymbolClass     SymbolKind = "class"
	SymbolModule    SymbolKind = "module"
	SymbolConstant  SymbolKind = "constant"
	SymbolVariable  SymbolKind = "variable"
	SymbolTrait     SymbolKind = "trait"
	SymbolInterface SymbolKind = "interface"
	SymbolType      SymbolKind = "type"
)

// Symbol is a named declaration at a location, derived on demand from file
// content; never cached beyond a single planning call.
type Symbol struct {
	Name     string
	Kind     SymbolKind
	Location EditLocation
	Doc      string
}

// ImportType enumerates the import statement flavors recognized across the
// supported languages.
type ImportType string

const (
	ImportESModule     ImportType = "es-module"
	ImportCommonJS     ImportType = "commonjs"
	ImportDynamic      ImportType = "dynamic"
	ImportAMD          ImportType = "amd"
	ImportTypeOnly     ImportType = "type-only"
	ImportPythonImport ImportType = "python-import"
	ImportPythonFrom   ImportType = "python-from-import"
	ImportUseItem      ImportType = "use-item"
	ImportGoImport     ImportType = "go-import"
	ImportJavaImport   ImportType = "java-import"
)

// NamedImport is one named binding inside an import statement
// (`import { a as b } from "x"`, `from x import a as b`, `use x::{a as b}`).
type NamedImport struct {
	Name     string
	Alias    string
	TypeOnly bool
}

// ImportInfo describes one import/use/require statement found in a file.
type ImportInfo struct {
	ModulePath      string
	ImportType      ImportType
	NamedImports    []NamedImport
	DefaultImport   string
	NamespaceImport string
	TypeOnly        bool
	Location        EditLocation
}

// Reference is a single located occurrence of a module or symbol name, as
// returned by a plugin's FindModuleReferences / FindInlineReferences.
type Reference struct {
	FilePath string
	Location EditLocation
	// MatchedText is the exact source text at Location, so the planner can
	// build the replacement TextEdit without re-deriving it from path munging.
	MatchedText string
}
