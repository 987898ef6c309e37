// context.go — ProjectContext: a whole-project dependency graph built by
// running every registered plugin's ReferenceFinder against every other
// scanned file. PlanDelete/PlanMove only need a target's immediate
// dependents and compute that inline; ProjectContext answers the broader
// "what would change ripple through" question for cmd/loom's impact
// command.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/loomrefactor/loom/internal/adapter"
	"github.com/loomrefactor/loom/internal/model"
	"github.com/loomrefactor/loom/internal/registry"
	"github.com/loomrefactor/loom/internal/scanner"
)

// ProjectContext holds cross-file analysis state for one scan.
type ProjectContext struct {
	Files            map[string]*model.UnifiedFileModel
	DependencyGraph  map[string][]string
	ReverseDeps      map[string][]string
	ModuleBoundaries map[string][]string
	TestSourceMap    map[string][]string
}

// Build scans projectRoot and constructs a ProjectContext: parsed files,
// a module-reference dependency graph in both directions, files grouped
// by containing directory, and source-to-test-file associations.
func Build(ctx context.Context, s *scanner.Scanner, reg *registry.Registry, scope model.ScanScope) (*ProjectContext, error) {
	candidates, err := s.Scan(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("scan project root: %w", err)
	}

	pc := &ProjectContext{
		Files:            map[string]*model.UnifiedFileModel{},
		DependencyGraph:  map[string][]string{},
		ReverseDeps:      map[string][]string{},
		ModuleBoundaries: map[string][]string{},
		TestSourceMap:    map[string][]string{},
	}

	moduleToPath := map[string]string{}
	sourceData := map[string][]byte{}

	for _, candidate := range candidates {
		plugin, ok := reg.ForPath(candidate)
		if !ok {
			continue
		}
		data, err := os.ReadFile(candidate)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", candidate, err)
		}
		sourceData[candidate] = data

		fileModel, err := plugin.Parse(candidate, data, adapter.AdapterConfig{})
		if err != nil {
			continue // unparseable files still count as scanned, just not analyzable
		}
		pc.Files[candidate] = fileModel

		dir := filepath.Dir(candidate)
		pc.ModuleBoundaries[dir] = append(pc.ModuleBoundaries[dir], candidate)

		if plugin.IsTestFile(candidate) {
			if src, ok := testSourceCandidate(candidate); ok {
				pc.TestSourceMap[src] = append(pc.TestSourceMap[src], candidate)
			}
		}

		moduleToPath[moduleNameFor(candidate)] = candidate
	}

	for _, candidate := range candidates {
		plugin, ok := reg.ForPath(candidate)
		if !ok {
			continue
		}
		finder, ok := plugin.(adapter.ReferenceFinder)
		if !ok {
			continue
		}
		data, ok := sourceData[candidate]
		if !ok {
			continue
		}
		for module, target := range moduleToPath {
			if target == candidate {
				continue
			}
			refs, err := finder.FindModuleReferences(data, module, scope)
			if err != nil || len(refs) == 0 {
				continue
			}
			pc.DependencyGraph[candidate] = append(pc.DependencyGraph[candidate], target)
			pc.ReverseDeps[target] = append(pc.ReverseDeps[target], candidate)
		}
	}

	return pc, nil
}

func moduleNameFor(path string) string {
	rel := filepath.ToSlash(path)
	return strings.TrimSuffix(rel, filepath.Ext(rel))
}

// testSourceCandidate derives the likely production file a test file
// covers, following the <name>_test.<ext> convention shared by Go,
// Python, and Rust test layouts.
func testSourceCandidate(testPath string) (string, bool) {
	ext := filepath.Ext(testPath)
	base := strings.TrimSuffix(testPath, ext)
	const suffix = "_test"
	if !strings.HasSuffix(base, suffix) {
		return "", false
	}
	return strings.TrimSuffix(base, suffix) + ext, true
}
