// adapter.go — LanguagePlugin interface, optional capability sub-interfaces,
// and AdapterConfig.
package adapter

import "github.com/loomrefactor/loom/internal/model"

// LanguagePlugin defines the required surface every language plugin
// implements. Everything else a plan builder might need (reference
// finding, workspace support, code actions) is an optional interface —
// plan builders type-assert onto the ones they require and degrade to a
// structured "not supported" warning when a plugin doesn't implement one.
type LanguagePlugin interface {
	// Name returns the language name (e.g., "go", "typescript", "python").
	Name() string

	// Extensions returns the file extensions this plugin handles (e.g., [".go"]).
	Extensions() []string

	// Priority breaks ties when more than one plugin claims an extension;
	// the highest priority wins.
	Priority() int

	// Capabilities declares which optional interfaces below this plugin
	// implements, plus any plugin-specific extras.
	Capabilities() model.Capabilities

	// Parse parses a file and returns its UnifiedFileModel. Pure and
	// deterministic for byte-identical input.
	Parse(path string, source []byte, config AdapterConfig) (*model.UnifiedFileModel, error)

	// IsTestFile determines if a file is a test file.
	IsTestFile(path string) bool
}

// AdapterConfig holds configuration for a language plugin.
//
//nolint:revive // AdapterConfig is intentionally explicit at package boundaries.
type AdapterConfig struct {
	IncludeComments bool
	MaxFileSize     int64
	Timeout         int
}

// ImportRewriter is the legacy full-file rewrite fallback, used when no
// ScanScope is given or a ReferenceFinder can't be consulted.
type ImportRewriter interface {
	// RewriteImportsForRename rewrites every import of oldModulePath to
	// newModulePath inside content, from the perspective of a file at
	// thisFilePath under projectRoot. renameInfo carries the optional
	// RenameInfo produced by a symbol rename.
	RewriteImportsForRename(content []byte, oldModulePath, newModulePath, thisFilePath, projectRoot string, renameInfo *RenameInfo) (newContent []byte, changedCount int, err error)
}

// RenameInfo carries extra context a plugin's import rewriter can use to
// produce a more precise rewrite (e.g. the old/new crate name for Rust).
type RenameInfo struct {
	OldSymbolName string
	NewSymbolName string
}

// ReferenceFinder is the precise reference finder used to generate
// surgical edits under a ScanScope, and to locate inline fully-qualified
// paths that aren't import statements.
type ReferenceFinder interface {
	// FindModuleReferences finds every reference to moduleName that an
	// import-rewrite or rename would need to touch, honoring scope.
	FindModuleReferences(content []byte, moduleName string, scope model.ScanScope) ([]model.Reference, error)

	// FindInlineReferences finds fully-qualified paths like
	// old_crate::module::func that are not inside import statements.
	FindInlineReferences(content []byte, filePath, oldQualifier string) ([]model.Reference, error)
}

// CodeActionProvider exposes the optional AST-level refactor entry points.
type CodeActionProvider interface {
	FindDefinition(file *model.UnifiedFileModel, pos model.Position) (*model.Symbol, error)
	FindReferences(file *model.UnifiedFileModel, symbolLoc model.EditLocation) ([]model.Reference, error)
	PlanExtractFunction(file *model.UnifiedFileModel, selection model.EditLocation, newName string) ([]model.TextEdit, error)
	PlanExtractVariable(file *model.UnifiedFileModel, selection model.EditLocation, newName string) ([]model.TextEdit, error)
	PlanInlineVariable(file *model.UnifiedFileModel, at model.Position) ([]model.TextEdit, error)
	PlanReorder(file *model.UnifiedFileModel, at model.Position, newOrder []int) ([]model.TextEdit, error)
}

// WorkspaceAware is the optional workspace-support surface for
// package-aware languages (Cargo workspaces, npm/pnpm workspaces, Python
// namespace packages, Maven multi-module builds).
type WorkspaceAware interface {
	// IsPackage reports whether dir is a package root (has its own manifest).
	IsPackage(dir string) (bool, error)

	// PlanDirectoryMove computes the manifest edits a package rename/move needs.
	PlanDirectoryMove(oldDir, newDir, projectRoot string) (*MoveManifestPlan, error)

	GenerateWorkspaceManifest(members []string, root string) ([]byte, error)
	AddWorkspaceMember(manifest []byte, member string) ([]byte, error)
	RemoveWorkspaceMember(manifest []byte, member string) ([]byte, error)
	ListWorkspaceMembers(manifest []byte) ([]string, error)
	UpdatePackageName(manifest []byte, newName string) ([]byte, error)

	// ExecuteConsolidationPostProcessing reports what consolidating
	// sourceDir into targetDir involves: the source manifest path, the
	// module declaration for the target, and the source's dependency names.
	// The Cargo implementation writes no file: it does not merge manifests,
	// insert the declaration, or change the workspace member list.
	ExecuteConsolidationPostProcessing(sourceDir, targetDir, projectRoot string) (*ConsolidationResult, error)
}

// MoveManifestPlan is the set of manifest edits a package rename/move needs.
type MoveManifestPlan struct {
	ManifestEdits []model.ManifestUpdate
	NewPackageName string
}

// ConsolidationResult reports what ExecuteConsolidationPostProcessing did.
type ConsolidationResult struct {
	RemovedManifestPath string
	ModuleDeclInserted  string
	DependenciesMerged  []string
}
