// loader.go — custom transform plugin loaders (YAML and Go plugins) for
// the "refactor" tool's action field.
package plugins

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/loomrefactor/loom/internal/model"
	"gopkg.in/yaml.v3"
)

// Transform is one named, loadable refactor action. It mirrors the
// CodeActionProvider plan methods a language plugin implements, but is
// supplied externally and keyed by name instead of by file extension.
type Transform interface {
	Name() string
	Description() string
	Accepts(ext string) bool
	Apply(file *model.UnifiedFileModel, params map[string]interface{}) ([]model.TextEdit, error)
}

// Set is a loaded collection of transforms, keyed by name.
type Set struct {
	byName map[string]Transform
}

// Lookup returns the transform registered under name, if any.
func (s *Set) Lookup(name string) (Transform, bool) {
	if s == nil {
		return nil, false
	}
	t, ok := s.byName[name]
	return t, ok
}

// Names returns every loaded transform name, sorted.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.byName))
	for name := range s.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Load loads transform plugins from paths (.yml/.yaml declarative
// find-and-replace transforms, .so compiled Go transforms).
func Load(paths []string) (*Set, error) {
	set := &Set{byName: map[string]Transform{}}

	for _, raw := range paths {
		pathValue := strings.TrimSpace(raw)
		if pathValue == "" {
			continue
		}

		ext := strings.ToLower(filepath.Ext(pathValue))
		var transforms []Transform
		var err error

		switch ext {
		case ".yml", ".yaml":
			transforms, err = loadYAMLTransforms(pathValue)
		case ".so":
			transforms, err = loadGoPluginTransforms(pathValue)
		default:
			err = fmt.Errorf("unsupported plugin type %q for %s", ext, pathValue)
		}
		if err != nil {
			return nil, err
		}

		for _, t := range transforms {
			if _, dup := set.byName[t.Name()]; dup {
				return nil, fmt.Errorf("duplicate transform plugin name %q", t.Name())
			}
			set.byName[t.Name()] = t
		}
	}

	return set, nil
}

type yamlPluginFile struct {
	Transforms []yamlTransform `yaml:"transforms"`
}

type yamlTransform struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Extensions  []string          `yaml:"extensions"`
	Replace     yamlReplaceAction `yaml:"replace"`
}

// yamlReplaceAction is a whole-file literal find/replace — the simplest
// transform shape a declarative plugin can express without embedding
// code. Every match in the file is replaced; Find is a literal
// substring, not a regex, to keep YAML plugins from needing to escape
// regex metacharacters for common cases like adding a header line.
type yamlReplaceAction struct {
	Find    string `yaml:"find"`
	With    string `yaml:"with"`
	AtStart bool   `yaml:"at_start"`
}

func loadYAMLTransforms(pathValue string) ([]Transform, error) {
	data, err := os.ReadFile(pathValue)
	if err != nil {
		return nil, fmt.Errorf("read plugin file %s: %w", pathValue, err)
	}

	var doc yamlPluginFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse plugin yaml %s: %w", pathValue, err)
	}
	if len(doc.Transforms) == 0 {
		var single yamlTransform
		if err := yaml.Unmarshal(data, &single); err == nil && strings.TrimSpace(single.Name) != "" {
			doc.Transforms = []yamlTransform{single}
		}
	}
	if len(doc.Transforms) == 0 {
		return nil, fmt.Errorf("plugin yaml %s has no transforms", pathValue)
	}

	out := make([]Transform, 0, len(doc.Transforms))
	for _, raw := range doc.Transforms {
		t, err := newYAMLTransform(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", pathValue, err)
		}
		out = append(out, t)
	}
	return out, nil
}

type yamlLoadedTransform struct {
	name        string
	description string
	extensions  map[string]bool
	action      yamlReplaceAction
}

func newYAMLTransform(raw yamlTransform) (*yamlLoadedTransform, error) {
	name := strings.TrimSpace(raw.Name)
	if name == "" {
		return nil, fmt.Errorf("transform name is required")
	}
	if !raw.Replace.AtStart && strings.TrimSpace(raw.Replace.Find) == "" {
		return nil, fmt.Errorf("transform %s must define replace.find", name)
	}

	exts := map[string]bool{}
	for _, e := range raw.Extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[e] = true
	}

	desc := strings.TrimSpace(raw.Description)
	if desc == "" {
		desc = "Custom YAML transform"
	}

	return &yamlLoadedTransform{name: name, description: desc, extensions: exts, action: raw.Replace}, nil
}

func (t *yamlLoadedTransform) Name() string        { return t.name }
func (t *yamlLoadedTransform) Description() string { return t.description }

func (t *yamlLoadedTransform) Accepts(ext string) bool {
	if len(t.extensions) == 0 {
		return true
	}
	return t.extensions[strings.ToLower(ext)]
}

func (t *yamlLoadedTransform) Apply(file *model.UnifiedFileModel, _ map[string]interface{}) ([]model.TextEdit, error) {
	if file == nil {
		return nil, nil
	}
	source := string(file.Source)

	if t.action.AtStart {
		if strings.HasPrefix(source, t.action.With) {
			return nil, nil
		}
		return []model.TextEdit{{
			FilePath: file.Path,
			Kind:     model.EditInsert,
			Location: model.EditLocation{Start: model.Position{Line: 0, Column: 0}, End: model.Position{Line: 0, Column: 0}},
			NewText:  t.action.With,
		}}, nil
	}

	if !strings.Contains(source, t.action.Find) {
		return nil, nil
	}
	return []model.TextEdit{{
		FilePath:     file.Path,
		Kind:         model.EditReplace,
		Location:     model.EditLocation{Start: model.Position{Line: 0, Column: 0}, End: model.Position{Line: file.LineCount, Column: 0}},
		OriginalText: source,
		NewText:      strings.ReplaceAll(source, t.action.Find, t.action.With),
	}}, nil
}
