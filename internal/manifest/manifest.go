// manifest.go — workspace manifest support (Cargo.toml, package.json,
// pyproject.toml, pom.xml). Only Cargo manifests are read and edited by
// this package; the other kinds have no member listing or edit support.
//
// Edits are produced as targeted byte-range TextEdits against the original
// manifest text rather than full unmarshal/re-marshal round trips: go-toml's
// v2 API has no formatting-preserving editor (unlike v1's Tree), so a
// generic re-marshal would reformat the whole file and lose comments. A
// regex-targeted edit keeps everything else in the file byte-identical,
// matching the checksum-gated apply invariant.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/loomrefactor/loom/internal/adapter"
	"github.com/loomrefactor/loom/internal/model"
)

// Kind identifies a manifest format.
type Kind string

const (
	KindCargo Kind = "cargo"
	KindNpm   Kind = "npm"
	KindPypi  Kind = "pypi"
	KindMaven Kind = "maven"
)

// Filename returns the canonical manifest filename for kind.
func Filename(kind Kind) string {
	switch kind {
	case KindCargo:
		return "Cargo.toml"
	case KindNpm:
		return "package.json"
	case KindPypi:
		return "pyproject.toml"
	case KindMaven:
		return "pom.xml"
	default:
		return ""
	}
}

// Exists reports whether dir directly contains a manifest of kind.
func Exists(dir string, kind Kind) (bool, error) {
	name := Filename(kind)
	if name == "" {
		return false, fmt.Errorf("unknown manifest kind %q", kind)
	}
	_, err := os.Stat(filepath.Join(dir, name))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat manifest in %s: %w", dir, err)
	}
	return true, nil
}

// cargoManifest is the subset of Cargo.toml structure this package reads
// for workspace-member and package-name bookkeeping.
type cargoManifest struct {
	Package *struct {
		Name string `toml:"name"`
	} `toml:"package"`
	Workspace *struct {
		Members []string `toml:"members"`
	} `toml:"workspace"`
	Dependencies map[string]any `toml:"dependencies"`
}

func parseCargo(data []byte) (*cargoManifest, error) {
	var m cargoManifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse Cargo.toml: %w", err)
	}
	return &m, nil
}

func offsetToPosition(data []byte, offset int) model.Position {
	line, lastNL := 0, -1
	for i := 0; i < offset && i < len(data); i++ {
		if data[i] == '\n' {
			line++
			lastNL = i
		}
	}
	return model.Position{Line: line, Column: offset - lastNL - 1}
}

func byteLoc(data []byte, start, end int) model.EditLocation {
	return model.EditLocation{Start: offsetToPosition(data, start), End: offsetToPosition(data, end)}
}

// ListCargoWorkspaceMembers returns the workspace.members array, or nil if
// the manifest has no [workspace] table.
func ListCargoWorkspaceMembers(data []byte) ([]string, error) {
	m, err := parseCargo(data)
	if err != nil {
		return nil, err
	}
	if m.Workspace == nil {
		return nil, nil
	}
	return m.Workspace.Members, nil
}

var membersArrayRe = regexp.MustCompile(`(?s)members\s*=\s*\[(.*?)\]`)

func joinMembers(members []string) string {
	quoted := make([]string, len(members))
	for i, m := range members {
		quoted[i] = fmt.Sprintf("%q", m)
	}
	return strings.Join(quoted, ", ")
}

// buildMembersEdit locates the members = [...] array and returns a TextEdit
// replacing its inner contents with newMembers, keyed to manifestPath.
func buildMembersEdit(data []byte, manifestPath string, newMembers []string) (model.ManifestUpdate, error) {
	idx := membersArrayRe.FindSubmatchIndex(data)
	if idx == nil {
		return model.ManifestUpdate{}, fmt.Errorf("no workspace.members array found in %s", manifestPath)
	}
	start, end := idx[2], idx[3]
	return model.ManifestUpdate{
		ManifestPath: manifestPath,
		ManifestKind: string(KindCargo),
		TextEdit: model.TextEdit{
			FilePath:     manifestPath,
			Kind:         model.EditReplace,
			Location:     byteLoc(data, start, end),
			OriginalText: string(data[start:end]),
			NewText:      joinMembers(newMembers),
			Description:  "update workspace members",
		},
	}, nil
}

// AddCargoWorkspaceMember returns manifest content with member appended to
// workspace.members if it isn't already present.
func AddCargoWorkspaceMember(data []byte, member string) ([]byte, error) {
	members, err := ListCargoWorkspaceMembers(data)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if m == member {
			return data, nil
		}
	}
	edit, err := buildMembersEdit(data, "", append(append([]string{}, members...), member))
	if err != nil {
		return nil, err
	}
	return applyInline(data, edit.TextEdit), nil
}

// RemoveCargoWorkspaceMember returns manifest content with member removed
// from workspace.members.
func RemoveCargoWorkspaceMember(data []byte, member string) ([]byte, error) {
	members, err := ListCargoWorkspaceMembers(data)
	if err != nil {
		return nil, err
	}
	kept := make([]string, 0, len(members))
	for _, m := range members {
		if m != member {
			kept = append(kept, m)
		}
	}
	edit, err := buildMembersEdit(data, "", kept)
	if err != nil {
		return nil, err
	}
	return applyInline(data, edit.TextEdit), nil
}

var packageNameRe = regexp.MustCompile(`(?m)^\s*name\s*=\s*"([^"]*)"`)

// UpdateCargoPackageName rewrites the first top-level `name = "..."`
// occurrence, which for a single-package manifest is the [package] name.
func UpdateCargoPackageName(data []byte, newName string) ([]byte, error) {
	idx := packageNameRe.FindSubmatchIndex(data)
	if idx == nil {
		return nil, fmt.Errorf("no package name found in manifest")
	}
	start, end := idx[2], idx[3]
	edit := model.TextEdit{
		Kind:         model.EditReplace,
		Location:     byteLoc(data, start, end),
		OriginalText: string(data[start:end]),
		NewText:      newName,
	}
	return applyInline(data, edit), nil
}

// GenerateCargoWorkspace produces a minimal workspace-root Cargo.toml.
func GenerateCargoWorkspace(members []string, _ string) ([]byte, error) {
	var b strings.Builder
	b.WriteString("[workspace]\n")
	b.WriteString("members = [")
	b.WriteString(joinMembers(members))
	b.WriteString("]\n")
	b.WriteString("resolver = \"2\"\n")
	return []byte(b.String()), nil
}

// applyInline applies a single TextEdit to data by locating the first
// literal occurrence of OriginalText. Used for in-memory manifest mutation
// helpers that don't go through the checksum-gated apply executor.
func applyInline(data []byte, edit model.TextEdit) []byte {
	idx := strings.Index(string(data), edit.OriginalText)
	if idx < 0 {
		return data
	}
	out := make([]byte, 0, len(data)-len(edit.OriginalText)+len(edit.NewText))
	out = append(out, data[:idx]...)
	out = append(out, []byte(edit.NewText)...)
	out = append(out, data[idx+len(edit.OriginalText):]...)
	return out
}

// PlanCargoDirectoryMove computes the manifest edits a crate rename/move
// needs: the crate's own package name, the workspace root's member list,
// and any sibling crate's path-dependency pointing at the old location.
func PlanCargoDirectoryMove(oldDir, newDir, projectRoot string) (*adapter.MoveManifestPlan, error) {
	oldManifestPath := filepath.Join(oldDir, "Cargo.toml")
	data, err := os.ReadFile(oldManifestPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", oldManifestPath, err)
	}
	m, err := parseCargo(data)
	if err != nil {
		return nil, err
	}

	newName := filepath.Base(newDir)
	var edits []model.ManifestUpdate

	if m.Package != nil && m.Package.Name != "" && m.Package.Name != newName {
		idx := packageNameRe.FindSubmatchIndex(data)
		if idx != nil {
			start, end := idx[2], idx[3]
			edits = append(edits, model.ManifestUpdate{
				ManifestPath: oldManifestPath,
				ManifestKind: string(KindCargo),
				TextEdit: model.TextEdit{
					FilePath:     oldManifestPath,
					Kind:         model.EditReplace,
					Location:     byteLoc(data, start, end),
					OriginalText: string(data[start:end]),
					NewText:      newName,
					Description:  "rename package",
				},
			})
		}
	}

	rootManifestPath := filepath.Join(projectRoot, "Cargo.toml")
	if rootData, err := os.ReadFile(rootManifestPath); err == nil {
		oldRel, relErr1 := filepath.Rel(projectRoot, oldDir)
		newRel, relErr2 := filepath.Rel(projectRoot, newDir)
		if relErr1 == nil && relErr2 == nil {
			members, err := ListCargoWorkspaceMembers(rootData)
			if err == nil && members != nil {
				updated := make([]string, len(members))
				copy(updated, members)
				for i, mem := range updated {
					if mem == oldRel {
						updated[i] = newRel
					}
				}
				if edit, err := buildMembersEdit(rootData, rootManifestPath, updated); err == nil {
					edits = append(edits, edit)
				}
			}
		}
	}

	edits = append(edits, siblingPathDependencyEdits(projectRoot, oldDir, newDir)...)

	return &adapter.MoveManifestPlan{ManifestEdits: edits, NewPackageName: newName}, nil
}

var pathDepRe = regexp.MustCompile(`path\s*=\s*"([^"]*)"`)

// siblingPathDependencyEdits scans every workspace member's Cargo.toml for
// a path-dependency resolving to oldDir and rewrites it to point at newDir.
func siblingPathDependencyEdits(projectRoot, oldDir, newDir string) []model.ManifestUpdate {
	rootManifestPath := filepath.Join(projectRoot, "Cargo.toml")
	rootData, err := os.ReadFile(rootManifestPath)
	if err != nil {
		return nil
	}
	members, err := ListCargoWorkspaceMembers(rootData)
	if err != nil {
		return nil
	}

	var edits []model.ManifestUpdate
	for _, member := range members {
		memberDir := filepath.Join(projectRoot, member)
		manifestPath := filepath.Join(memberDir, "Cargo.toml")
		data, err := os.ReadFile(manifestPath)
		if err != nil {
			continue
		}
		matches := pathDepRe.FindAllSubmatchIndex(data, -1)
		for _, idx := range matches {
			valStart, valEnd := idx[2], idx[3]
			relValue := string(data[valStart:valEnd])
			resolved := filepath.Clean(filepath.Join(memberDir, relValue))
			if resolved != filepath.Clean(oldDir) {
				continue
			}
			newRel, err := filepath.Rel(memberDir, newDir)
			if err != nil {
				continue
			}
			newRel = filepath.ToSlash(newRel)
			edits = append(edits, model.ManifestUpdate{
				ManifestPath: manifestPath,
				ManifestKind: string(KindCargo),
				TextEdit: model.TextEdit{
					FilePath:     manifestPath,
					Kind:         model.EditReplace,
					Location:     byteLoc(data, valStart, valEnd),
					OriginalText: relValue,
					NewText:      newRel,
					Description:  "update path dependency",
				},
			})
		}
	}
	return edits
}

// ConsolidateCargoPackages reads sourceDir's Cargo.toml and reports the
// source manifest path, the `mod` declaration named after sourceDir, and
// the source's dependency names. It writes no file: the source manifest is
// not deleted, the dependencies are not added to targetDir's manifest, no
// `mod` line is inserted, and the workspace member list is left unchanged.
func ConsolidateCargoPackages(sourceDir, targetDir, _ string) (*adapter.ConsolidationResult, error) {
	sourceManifestPath := filepath.Join(sourceDir, "Cargo.toml")
	sourceData, err := os.ReadFile(sourceManifestPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sourceManifestPath, err)
	}
	sourceManifest, err := parseCargo(sourceData)
	if err != nil {
		return nil, err
	}

	var merged []string
	for dep := range sourceManifest.Dependencies {
		merged = append(merged, dep)
	}

	modName := filepath.Base(sourceDir)
	_ = targetDir
	return &adapter.ConsolidationResult{
		RemovedManifestPath: sourceManifestPath,
		ModuleDeclInserted:  fmt.Sprintf("mod %s;", strings.ReplaceAll(modName, "-", "_")),
		DependenciesMerged:  merged,
	}, nil
}
