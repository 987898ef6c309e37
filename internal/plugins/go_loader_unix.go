//go:build !windows

package plugins

import (
	"fmt"
	"plugin"
	"strings"

	"github.com/loomrefactor/loom/internal/model"
	plugapi "github.com/loomrefactor/loom/pkg/refactorplugin"
)

func loadGoPluginTransforms(pathValue string) ([]Transform, error) {
	plug, err := plugin.Open(pathValue)
	if err != nil {
		return nil, fmt.Errorf("open plugin %s: %w", pathValue, err)
	}
	sym, err := plug.Lookup("Transform")
	if err != nil {
		return nil, fmt.Errorf("plugin %s missing exported symbol Transform: %w", pathValue, err)
	}

	switch v := sym.(type) {
	case *plugapi.Definition:
		return []Transform{&goPluginTransform{definition: v}}, nil
	default:
		return nil, fmt.Errorf("plugin %s Transform symbol must be *refactorplugin.Definition, got %T", pathValue, sym)
	}
}

type goPluginTransform struct {
	definition *plugapi.Definition
}

func (t *goPluginTransform) Name() string {
	return strings.TrimSpace(t.definition.Name)
}

func (t *goPluginTransform) Description() string {
	desc := strings.TrimSpace(t.definition.Description)
	if desc == "" {
		return "Custom Go transform plugin"
	}
	return desc
}

func (t *goPluginTransform) Accepts(ext string) bool {
	if len(t.definition.Extensions) == 0 {
		return true
	}
	ext = strings.ToLower(ext)
	for _, e := range t.definition.Extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

func (t *goPluginTransform) Apply(file *model.UnifiedFileModel, params map[string]interface{}) ([]model.TextEdit, error) {
	if t.definition.Apply == nil {
		return nil, nil
	}
	fileIn := &plugapi.UnifiedFileModel{
		Path:       file.Path,
		Language:   file.Language,
		IsTestFile: file.IsTestFile,
		Source:     string(file.Source),
		LineCount:  file.LineCount,
	}

	out, err := t.definition.Apply(fileIn, params)
	if err != nil {
		return nil, err
	}
	converted := make([]model.TextEdit, 0, len(out))
	for _, e := range out {
		converted = append(converted, model.TextEdit{
			FilePath: e.FilePath,
			Kind:     model.EditReplace,
			Location: model.EditLocation{
				Start: model.Position{Line: e.Start.Line, Column: e.Start.Column},
				End:   model.Position{Line: e.End.Line, Column: e.End.Column},
			},
			NewText: e.NewText,
		})
	}
	return converted, nil
}
