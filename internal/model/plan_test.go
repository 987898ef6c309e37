// plan_test.go — tagged-union dispatch and no-op edit invariants.
package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanTypeSwitch(t *testing.T) {
	plans := []Plan{
		&RenamePlan{},
		&MovePlan{},
		&DeletePlan{},
		&ExtractPlan{},
		&InlinePlan{},
		&ReorderPlan{},
	}

	seen := map[PlanType]bool{}
	for _, p := range plans {
		switch v := p.(type) {
		case *RenamePlan:
			assert.Equal(t, PlanTypeRename, v.PlanType())
		case *MovePlan:
			assert.Equal(t, PlanTypeMove, v.PlanType())
		case *DeletePlan:
			assert.Equal(t, PlanTypeDelete, v.PlanType())
		case *ExtractPlan:
			assert.Equal(t, PlanTypeExtract, v.PlanType())
		case *InlinePlan:
			assert.Equal(t, PlanTypeInline, v.PlanType())
		case *ReorderPlan:
			assert.Equal(t, PlanTypeReorder, v.PlanType())
		default:
			t.Fatalf("unhandled plan variant %T", p)
		}
		seen[p.PlanType()] = true
		require.NotNil(t, p.Base())
	}
	assert.Len(t, seen, 6)
}

func TestTextEditIsNoOp(t *testing.T) {
	noop := TextEdit{Kind: EditReplace, OriginalText: "x", NewText: "x"}
	assert.True(t, noop.IsNoOp())

	changed := TextEdit{Kind: EditReplace, OriginalText: "x", NewText: "y"}
	assert.False(t, changed.IsNoOp())

	insert := TextEdit{Kind: EditInsert, OriginalText: "", NewText: "y"}
	assert.False(t, insert.IsNoOp())
}

func TestChecksumIsStableHex(t *testing.T) {
	sum := Checksum([]byte("hello"))
	assert.Len(t, sum, 64)
	assert.Equal(t, sum, Checksum([]byte("hello")))
	assert.NotEqual(t, sum, Checksum([]byte("hello!")))
}

func TestPositionBefore(t *testing.T) {
	a := Position{Line: 1, Column: 5}
	b := Position{Line: 1, Column: 6}
	c := Position{Line: 2, Column: 0}

	assert.True(t, a.Before(b))
	assert.True(t, b.Before(c))
	assert.False(t, b.Before(a))
}
