// transform.go — TransformPlan is reserved for future arbitrary codemod
// support; no builder exists yet, so PlanTransform always fails.
package planner

import (
	"fmt"

	"github.com/loomrefactor/loom/internal/model"
)

// PlanTransform always returns model.ErrNotImplemented. TransformPlan's
// wire shape is reserved in internal/model but no builder backs it.
func (p *Planner) PlanTransform(_ string) error {
	return fmt.Errorf("%w: transform plans are reserved, no builder is implemented", model.ErrNotImplemented)
}
