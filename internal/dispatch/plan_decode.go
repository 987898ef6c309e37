// plan_decode.go — decodes a wire Plan (tagged by metadata.kind) into its
// concrete model.Plan variant for workspace.apply_edit.
package dispatch

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/loomrefactor/loom/internal/model"
)

type planKindProbe struct {
	Metadata struct {
		Kind model.PlanType `json:"kind"`
	} `json:"metadata"`
}

// decodePlan reads raw's metadata.kind discriminator, then decodes raw
// into the matching concrete Plan variant.
func decodePlan(raw json.RawMessage) (model.Plan, error) {
	var probe planKindProbe
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("%w: plan: %v", model.ErrInvalidRequest, err)
	}

	switch probe.Metadata.Kind {
	case model.PlanTypeRename:
		var p model.RenamePlan
		if err := decodeStrict(raw, &p); err != nil {
			return nil, err
		}
		return &p, nil
	case model.PlanTypeMove:
		var p model.MovePlan
		if err := decodeStrict(raw, &p); err != nil {
			return nil, err
		}
		return &p, nil
	case model.PlanTypeDelete:
		var p model.DeletePlan
		if err := decodeStrict(raw, &p); err != nil {
			return nil, err
		}
		return &p, nil
	case model.PlanTypeExtract:
		var p model.ExtractPlan
		if err := decodeStrict(raw, &p); err != nil {
			return nil, err
		}
		return &p, nil
	case model.PlanTypeInline:
		var p model.InlinePlan
		if err := decodeStrict(raw, &p); err != nil {
			return nil, err
		}
		return &p, nil
	case model.PlanTypeReorder:
		var p model.ReorderPlan
		if err := decodeStrict(raw, &p); err != nil {
			return nil, err
		}
		return &p, nil
	default:
		return nil, fmt.Errorf("%w: unknown metadata.kind %q", model.ErrInvalidRequest, probe.Metadata.Kind)
	}
}

func decodeStrict(raw json.RawMessage, dst any) error {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: plan: %v", model.ErrInvalidRequest, err)
	}
	return nil
}
