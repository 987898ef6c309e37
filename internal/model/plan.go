// plan.go — the tagged-union Plan value and its variants.
package model

import "time"

// PlanType is the wire discriminator for a Plan variant.
type PlanType string

const (
	PlanTypeRename  PlanType = "RenamePlan"
	PlanTypeMove    PlanType = "MovePlan"
	PlanTypeDelete  PlanType = "DeletePlan"
	PlanTypeExtract PlanType = "ExtractPlan"
	PlanTypeInline  PlanType = "InlinePlan"
	PlanTypeReorder PlanType = "ReorderPlan"

	// PlanTypeTransform is reserved; TransformPlan builders always fail
	// with ErrNotImplemented rather than returning a value of this type.
	PlanTypeTransform PlanType = "TransformPlan"
)

// ImpactLevel is the planner's coarse estimate of blast radius.
type ImpactLevel string

const (
	ImpactLow    ImpactLevel = "low"
	ImpactMedium ImpactLevel = "medium"
	ImpactHigh   ImpactLevel = "high"
)

// PlanSummary counts the files a plan touches.
type PlanSummary struct {
	AffectedFiles int `json:"affected_files"`
	CreatedFiles  int `json:"created_files"`
	DeletedFiles  int `json:"deleted_files"`
}

// Warning is a structured, non-fatal planning note.
type Warning struct {
	Code       string   `json:"code"`
	Message    string   `json:"message"`
	Candidates []string `json:"candidates,omitempty"`
}

// PlanMetadata is attached to every plan variant.
type PlanMetadata struct {
	PlanID          string         `json:"plan_id"`
	PlanVersion     string         `json:"plan_version"`
	Kind            PlanType       `json:"kind"`
	Language        string         `json:"language"`
	EstimatedImpact ImpactLevel    `json:"estimated_impact"`
	CreatedAt       time.Time      `json:"created_at"`
	IntentArguments map[string]any `json:"intent_arguments,omitempty"`
}

// DeletionKind distinguishes a file delete from a directory delete.
type DeletionKind string

const (
	DeletionFile      DeletionKind = "file"
	DeletionDirectory DeletionKind = "directory"
)

// Deletion is one explicit path-and-kind entry in a DeletePlan.
type Deletion struct {
	Path string       `json:"path"`
	Kind DeletionKind `json:"kind"`
}

// MoveClass classifies a rename/move per the §4.2 algorithm.
type MoveClass string

const (
	MoveSimpleRename      MoveClass = "simple-rename"
	MoveCrossDirectory    MoveClass = "cross-directory-move"
	MovePackageRename     MoveClass = "package-rename"
	MoveConsolidation     MoveClass = "consolidation"
)

// MoveDetails carries source/destination and the consolidation flag used
// to sequence workspace-manifest updates.
type MoveDetails struct {
	SourcePath      string    `json:"source_path"`
	DestinationPath string    `json:"destination_path"`
	Class           MoveClass `json:"class"`
	Consolidation   bool      `json:"consolidation"`
}

// PlanBase is embedded by every concrete plan variant. It carries every
// field the spec requires on "every variant".
type PlanBase struct {
	Edits          []TextEdit         `json:"edits"`
	FileChecksums  map[string]string  `json:"file_checksums"`
	Summary        PlanSummary        `json:"summary"`
	Warnings       []Warning          `json:"warnings,omitempty"`
	Metadata       PlanMetadata       `json:"metadata"`
	Validations    []ValidationRule   `json:"validations,omitempty"`
}

// Plan is the tagged-union interface implemented by every plan variant.
// The apply executor dispatches on PlanType with a single type switch —
// its one match statement.
type Plan interface {
	PlanType() PlanType
	Base() *PlanBase
}

// RenamePlan renames a file, directory, or symbol.
type RenamePlan struct {
	PlanBase
}

func (p *RenamePlan) PlanType() PlanType { return PlanTypeRename }
func (p *RenamePlan) Base() *PlanBase    { return &p.PlanBase }

// MovePlan moves a file or directory, possibly across packages.
type MovePlan struct {
	PlanBase
	MoveDetails MoveDetails `json:"move_details"`
}

func (p *MovePlan) PlanType() PlanType { return PlanTypeMove }
func (p *MovePlan) Base() *PlanBase    { return &p.PlanBase }

// DeletePlan removes files or directories.
type DeletePlan struct {
	PlanBase
	Deletions []Deletion `json:"deletions"`
}

func (p *DeletePlan) PlanType() PlanType { return PlanTypeDelete }
func (p *DeletePlan) Base() *PlanBase    { return &p.PlanBase }

// ExtractPlan lifts a selection into a new function/variable/constant/module.
type ExtractPlan struct {
	PlanBase
}

func (p *ExtractPlan) PlanType() PlanType { return PlanTypeExtract }
func (p *ExtractPlan) Base() *PlanBase    { return &p.PlanBase }

// InlinePlan substitutes a symbol's definition at its call sites.
type InlinePlan struct {
	PlanBase
}

func (p *InlinePlan) PlanType() PlanType { return PlanTypeInline }
func (p *InlinePlan) Base() *PlanBase    { return &p.PlanBase }

// ReorderPlan reorders declarations, parameters, or struct fields.
type ReorderPlan struct {
	PlanBase
}

func (p *ReorderPlan) PlanType() PlanType { return PlanTypeReorder }
func (p *ReorderPlan) Base() *PlanBase    { return &p.PlanBase }
