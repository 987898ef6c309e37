package planner

import (
	"github.com/loomrefactor/loom/internal/adapter"
	"github.com/loomrefactor/loom/internal/model"
)

// fakeCodeActionPlugin is a minimal LanguagePlugin + CodeActionProvider
// used to exercise planner code paths no bundled adapter currently
// implements via PlanExtract/PlanInline/PlanReorder's happy path.
type fakeCodeActionPlugin struct{}

func (fakeCodeActionPlugin) Name() string         { return "fake" }
func (fakeCodeActionPlugin) Extensions() []string { return []string{".fake"} }
func (fakeCodeActionPlugin) Priority() int        { return 0 }
func (fakeCodeActionPlugin) Capabilities() model.Capabilities {
	return model.Capabilities{ExtractFunction: true, ExtractVariable: true, InlineVariable: true, CodeActions: true}
}
func (fakeCodeActionPlugin) Parse(path string, source []byte, _ adapter.AdapterConfig) (*model.UnifiedFileModel, error) {
	return &model.UnifiedFileModel{Path: path, Source: source}, nil
}
func (fakeCodeActionPlugin) IsTestFile(path string) bool { return false }

func (fakeCodeActionPlugin) FindDefinition(*model.UnifiedFileModel, model.Position) (*model.Symbol, error) {
	return nil, nil
}
func (fakeCodeActionPlugin) FindReferences(*model.UnifiedFileModel, model.EditLocation) ([]model.Reference, error) {
	return nil, nil
}
func (fakeCodeActionPlugin) PlanExtractFunction(file *model.UnifiedFileModel, selection model.EditLocation, newName string) ([]model.TextEdit, error) {
	return []model.TextEdit{{
		FilePath: file.Path,
		Kind:     model.EditReplace,
		Location: selection,
		NewText:  newName + "()",
	}}, nil
}
func (fakeCodeActionPlugin) PlanExtractVariable(file *model.UnifiedFileModel, selection model.EditLocation, newName string) ([]model.TextEdit, error) {
	return []model.TextEdit{{
		FilePath: file.Path,
		Kind:     model.EditReplace,
		Location: selection,
		NewText:  newName,
	}}, nil
}
func (fakeCodeActionPlugin) PlanInlineVariable(file *model.UnifiedFileModel, at model.Position) ([]model.TextEdit, error) {
	return []model.TextEdit{{
		FilePath: file.Path,
		Kind:     model.EditReplace,
		Location: model.EditLocation{Start: at, End: at},
		NewText:  "inlined",
	}}, nil
}
func (fakeCodeActionPlugin) PlanReorder(file *model.UnifiedFileModel, at model.Position, newOrder []int) ([]model.TextEdit, error) {
	return nil, nil
}

var (
	_ adapter.LanguagePlugin     = fakeCodeActionPlugin{}
	_ adapter.CodeActionProvider = fakeCodeActionPlugin{}
)
