// context.go — ProjectContext for cross-file analysis state.
package model

// ProjectContext holds cross-file analysis state shared by a single
// planning call. The engine package builds its own engine.ProjectContext;
// nothing in this module constructs this type.
type ProjectContext struct {
	// ProjectRoot is the canonical (symlink-resolved) absolute directory.
	ProjectRoot string

	// Files holds every scanned file's parsed model, keyed by absolute path.
	Files map[string]*UnifiedFileModel

	// DependencyGraph maps a file path to the module paths it imports.
	DependencyGraph map[string][]string

	// ReverseDeps maps a module path to the files that import it.
	ReverseDeps map[string][]string
}

// NewProjectContext returns an empty, initialized context for root.
func NewProjectContext(root string) *ProjectContext {
	return &ProjectContext{
		ProjectRoot:     root,
		Files:           map[string]*UnifiedFileModel{},
		DependencyGraph: map[string][]string{},
		ReverseDeps:     map[string][]string{},
	}
}
