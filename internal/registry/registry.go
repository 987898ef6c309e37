// registry.go — Plugin registry mapping file extension to language plugin.
package registry

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/loomrefactor/loom/internal/adapter"
)

// Registry maps a file extension to the language plugins that claim it,
// ordered by descending priority. In-memory plugin registries are
// effectively immutable after startup; hot swaps are not supported.
type Registry struct {
	mu      sync.RWMutex
	byExt   map[string][]adapter.LanguagePlugin
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{byExt: map[string][]adapter.LanguagePlugin{}}
}

// Register adds a plugin for every extension it declares.
func (r *Registry) Register(p adapter.LanguagePlugin) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ext := range p.Extensions() {
		key := normalizeExt(ext)
		r.byExt[key] = append(r.byExt[key], p)
		sort.SliceStable(r.byExt[key], func(i, j int) bool {
			return r.byExt[key][i].Priority() > r.byExt[key][j].Priority()
		})
	}
}

// ForExtension returns the highest-priority plugin registered for ext, if any.
func (r *Registry) ForExtension(ext string) (adapter.LanguagePlugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	plugins := r.byExt[normalizeExt(ext)]
	if len(plugins) == 0 {
		return nil, false
	}
	return plugins[0], true
}

// ForPath returns the highest-priority plugin registered for path's extension.
func (r *Registry) ForPath(path string) (adapter.LanguagePlugin, bool) {
	return r.ForExtension(filepath.Ext(path))
}

// Extensions returns every extension with at least one registered plugin.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// All returns every distinct registered plugin, sorted by name.
func (r *Registry) All() []adapter.LanguagePlugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := map[string]bool{}
	out := make([]adapter.LanguagePlugin, 0)
	for _, plugins := range r.byExt {
		for _, p := range plugins {
			if seen[p.Name()] {
				continue
			}
			seen[p.Name()] = true
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
