// resolver.go — path/import resolution: does file X import module path P,
// and where does P resolve to on disk.
package resolver

import (
	"path/filepath"
	"strings"

	"github.com/loomrefactor/loom/internal/model"
)

// Resolver answers "does this file import this module" and "where does
// this module path resolve to" questions, honoring each language's own
// relative-path and workspace-root conventions. It holds no state beyond
// the project root and is safe for concurrent use.
type Resolver struct {
	ProjectRoot string
}

// New returns a Resolver rooted at projectRoot.
func New(projectRoot string) *Resolver {
	return &Resolver{ProjectRoot: projectRoot}
}

// Imports reports whether file's parsed imports reference modulePath,
// either exactly or — for relative/dotted import styles — once resolved
// against file's own directory.
func (r *Resolver) Imports(file *model.UnifiedFileModel, modulePath string) bool {
	for _, imp := range file.Imports {
		if imp.ModulePath == modulePath {
			return true
		}
		if r.resolveRelative(file.Path, imp.ModulePath) == r.resolveRelative(file.Path, modulePath) {
			return true
		}
	}
	return false
}

// resolveRelative normalizes a module reference against the importing
// file's directory for languages with relative import syntax (TS/JS
// `./foo`, Python `.foo`). Absolute/package-style references pass through
// unchanged.
func (r *Resolver) resolveRelative(fromFile, modulePath string) string {
	if !strings.HasPrefix(modulePath, ".") {
		return modulePath
	}
	dir := filepath.Dir(fromFile)
	joined := filepath.Join(dir, modulePath)
	rel, err := filepath.Rel(r.ProjectRoot, joined)
	if err != nil {
		return joined
	}
	return filepath.ToSlash(rel)
}

// ResolveToPath attempts to map a module path to a file under the project
// root, trying each of the given extensions in turn plus an
// index/`__init__`-style directory form. Returns "" if nothing matches
// among knownFiles.
func (r *Resolver) ResolveToPath(modulePath string, extensions []string, knownFiles map[string]bool) string {
	candidate := filepath.Join(r.ProjectRoot, filepath.FromSlash(modulePath))
	for _, ext := range extensions {
		p := candidate + ext
		if knownFiles[p] {
			return p
		}
	}
	for _, ext := range extensions {
		p := filepath.Join(candidate, "index"+ext)
		if knownFiles[p] {
			return p
		}
	}
	return ""
}

// PackageDirOf returns the deepest ancestor of path (inclusive) that is a
// package root, or "" if none of the given isPackage checks match before
// reaching the project root.
func (r *Resolver) PackageDirOf(path string, isPackage func(dir string) (bool, error)) (string, error) {
	dir := path
	if fi := filepath.Ext(dir); fi != "" {
		dir = filepath.Dir(dir)
	}
	for {
		ok, err := isPackage(dir)
		if err != nil {
			return "", err
		}
		if ok {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir || !strings.HasPrefix(parent, r.ProjectRoot) {
			return "", nil
		}
		dir = parent
	}
}
