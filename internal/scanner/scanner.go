// scanner.go — enumerates candidate files under a project root, honoring
// ScanScope and .gitignore/.loomignore rules, with parallel directory
// walking for large trees.
package scanner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gitignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/errgroup"

	"github.com/loomrefactor/loom/internal/model"
	"github.com/loomrefactor/loom/internal/registry"
)

// nonCodeScopeAllExtensions are the extra file classes ScopeAll includes
// beyond registered language plugins.
var nonCodeScopeAllExtensions = map[string]bool{
	".md":   true,
	".toml": true,
	".yml":  true,
	".yaml": true,
	".json": true,
}

// Scanner enumerates files under a project root.
type Scanner struct {
	ProjectRoot string
	Registry    *registry.Registry
	ignore      *gitignore.GitIgnore
}

// New constructs a Scanner rooted at projectRoot, loading
// .gitignore/.loomignore if present.
func New(projectRoot string, reg *registry.Registry) *Scanner {
	s := &Scanner{ProjectRoot: projectRoot, Registry: reg}
	s.ignore = loadIgnore(projectRoot)
	return s
}

func loadIgnore(root string) *gitignore.GitIgnore {
	var lines []string
	for _, name := range []string{".gitignore", ".loomignore"} {
		data, err := os.ReadFile(filepath.Join(root, name))
		if err != nil {
			continue
		}
		lines = append(lines, strings.Split(string(data), "\n")...)
	}
	lines = append(lines, ".git/")
	return gitignore.CompileIgnoreLines(lines...)
}

// Scan walks the project root and returns every file path matching scope,
// relative-path ignore rules applied. Directory walking itself is
// sequential (os.ReadDir order matters for determinism); per-directory
// fan-out happens one level below the root via errgroup so large trees
// with many top-level directories still parallelize.
func (s *Scanner) Scan(ctx context.Context, scope model.ScanScope) ([]string, error) {
	entries, err := os.ReadDir(s.ProjectRoot)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	var all []string
	g, gctx := errgroup.WithContext(ctx)

	for _, entry := range entries {
		entry := entry
		full := filepath.Join(s.ProjectRoot, entry.Name())
		if s.shouldIgnore(full, entry.IsDir()) {
			continue
		}
		if !entry.IsDir() {
			if s.matches(full, scope) {
				mu.Lock()
				all = append(all, full)
				mu.Unlock()
			}
			continue
		}
		g.Go(func() error {
			found, err := s.walkDir(gctx, full, scope)
			if err != nil {
				return err
			}
			mu.Lock()
			all = append(all, found...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return all, nil
}

func (s *Scanner) walkDir(ctx context.Context, dir string, scope model.ScanScope) ([]string, error) {
	var found []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if s.shouldIgnore(path, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if s.matches(path, scope) {
			found = append(found, path)
		}
		return nil
	})
	return found, err
}

func (s *Scanner) shouldIgnore(path string, isDir bool) bool {
	rel, err := filepath.Rel(s.ProjectRoot, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if isDir {
		rel += "/"
	}
	return s.ignore.MatchesPath(rel)
}

func (s *Scanner) matches(path string, scope model.ScanScope) bool {
	ext := strings.ToLower(filepath.Ext(path))

	switch scope.Kind {
	case model.ScopeCustom:
		included := len(scope.Include) == 0 || matchesGlobs(path, scope.Include)
		excluded := len(scope.Exclude) > 0 && matchesGlobs(path, scope.Exclude)
		return included && !excluded
	case model.ScopeAll:
		if _, ok := s.Registry.ForExtension(ext); ok {
			return true
		}
		return nonCodeScopeAllExtensions[ext] || isManifestFilename(filepath.Base(path))
	default: // ScopeCodeOnly
		_, ok := s.Registry.ForExtension(ext)
		return ok
	}
}

func isManifestFilename(name string) bool {
	switch name {
	case "Cargo.toml", "package.json", "pyproject.toml", "pom.xml":
		return true
	default:
		return false
	}
}

func matchesGlobs(path string, globs []string) bool {
	for _, g := range globs {
		if ok, _ := filepath.Match(g, path); ok {
			return true
		}
		if ok, _ := filepath.Match(g, filepath.Base(path)); ok {
			return true
		}
	}
	return false
}
