// planner.go — shared planner state: registry, resolver, scanner.
package planner

import (
	"time"

	"github.com/google/uuid"

	"github.com/loomrefactor/loom/internal/model"
	"github.com/loomrefactor/loom/internal/registry"
	"github.com/loomrefactor/loom/internal/resolver"
	"github.com/loomrefactor/loom/internal/scanner"
)

// Planner holds the dependencies every plan builder needs: the plugin
// registry, the file scanner, and the path resolver, all rooted at one
// project.
type Planner struct {
	ProjectRoot string
	Registry    *registry.Registry
	Scanner     *scanner.Scanner
	Resolver    *resolver.Resolver
}

// New constructs a Planner for projectRoot.
func New(projectRoot string, reg *registry.Registry) *Planner {
	return &Planner{
		ProjectRoot: projectRoot,
		Registry:    reg,
		Scanner:     scanner.New(projectRoot, reg),
		Resolver:    resolver.New(projectRoot),
	}
}

// newMetadata builds the PlanMetadata common to every plan variant.
func newMetadata(kind model.PlanType, language string, impact model.ImpactLevel, args map[string]any, now time.Time) model.PlanMetadata {
	return model.PlanMetadata{
		PlanID:          uuid.NewString(),
		PlanVersion:     "1.0",
		Kind:            kind,
		Language:        language,
		EstimatedImpact: impact,
		CreatedAt:       now,
		IntentArguments: args,
	}
}

// estimateImpact derives estimated_impact from touched-file count, per
// spec.md §4.2 step 9.
func estimateImpact(touchedFiles int) model.ImpactLevel {
	switch {
	case touchedFiles <= 1:
		return model.ImpactLow
	case touchedFiles <= 10:
		return model.ImpactMedium
	default:
		return model.ImpactHigh
	}
}

// dedupReferences removes duplicate (file, start, end) triples, per the
// spec's duplicate-reference edge-case policy.
func dedupReferences(refs []model.Reference, filePath string) []model.Reference {
	type key struct {
		file       string
		start, end model.Position
	}
	seen := map[key]bool{}
	var out []model.Reference
	for _, r := range refs {
		k := key{file: filePath, start: r.Location.Start, end: r.Location.End}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}
