// Package refactorplugin defines the public plugin API for loom transform
// plugins — custom named actions reachable through the "refactor" tool's
// action field when no built-in planner handles it.
package refactorplugin

// UnifiedFileModel is the plugin-facing file model.
type UnifiedFileModel struct {
	Path       string
	Language   string
	IsTestFile bool
	Source     string
	LineCount  int
}

// Position is a 0-based line/column offset into a file's source.
type Position struct {
	Line   int
	Column int
}

// TextEdit is the plugin-facing edit type: a single source-range
// replacement. FilePath is relative to the project root.
type TextEdit struct {
	FilePath string
	Start    Position
	End      Position
	NewText  string
}

// Definition is the required exported symbol type for Go transform
// plugins.
//
// Plugins must export:
//
//	var Transform = refactorplugin.Definition{ ... }
type Definition struct {
	// Name is the action name matched against refactor.action, e.g.
	// "sort-imports" or "add-license-header".
	Name        string
	Description string

	// Extensions restricts which file extensions Apply accepts; empty
	// means any extension.
	Extensions []string

	// Apply computes the edits for one file given the plugin's
	// declared parameters.
	Apply func(file *UnifiedFileModel, params map[string]interface{}) ([]TextEdit, error)
}
