package reporter

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/loomrefactor/loom/internal/apply"
	"github.com/loomrefactor/loom/internal/model"
)

func samplePlan() model.Plan {
	return &model.RenamePlan{
		PlanBase: model.PlanBase{
			Edits: []model.TextEdit{
				{FilePath: "a.go", Kind: model.EditReplace, Location: model.EditLocation{
					Start: model.Position{Line: 1, Column: 0}, End: model.Position{Line: 1, Column: 5},
				}},
			},
			Summary:  model.PlanSummary{AffectedFiles: 1},
			Warnings: []model.Warning{{Code: "example", Message: "heads up", Candidates: []string{"b.go"}}},
			Metadata: model.PlanMetadata{
				PlanID:          "plan-1",
				Kind:            model.PlanTypeRename,
				EstimatedImpact: model.ImpactLow,
				CreatedAt:       time.Unix(0, 0).UTC(),
			},
		},
	}
}

func TestNewReturnsTextReporterForTextFormat(t *testing.T) {
	r := New("text", &bytes.Buffer{})
	if r.Format() != "text" {
		t.Fatalf("Format() = %q, want text", r.Format())
	}
}

func TestNewDefaultsToJSON(t *testing.T) {
	r := New("unknown", &bytes.Buffer{})
	if r.Format() != "json" {
		t.Fatalf("Format() = %q, want json", r.Format())
	}
}

func TestTextReporterReportPlanIncludesWarningsAndEdits(t *testing.T) {
	var buf bytes.Buffer
	r := New("text", &buf)
	if err := r.ReportPlan(samplePlan()); err != nil {
		t.Fatalf("ReportPlan() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "plan-1") {
		t.Fatalf("expected plan id in output, got %q", out)
	}
	if !strings.Contains(out, "heads up") {
		t.Fatalf("expected warning message in output, got %q", out)
	}
	if !strings.Contains(out, "a.go") {
		t.Fatalf("expected edit file path in output, got %q", out)
	}
}

func TestJSONReporterReportPlanEmitsValidJSON(t *testing.T) {
	var buf bytes.Buffer
	r := New("json", &buf)
	if err := r.ReportPlan(samplePlan()); err != nil {
		t.Fatalf("ReportPlan() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"plan_id": "plan-1"`) {
		t.Fatalf("expected plan_id field in JSON output, got %q", buf.String())
	}
}

func TestTextReporterReportApplyResult(t *testing.T) {
	var buf bytes.Buffer
	r := New("text", &buf)
	result := &apply.Result{
		Success:           true,
		AppliedFiles:      []string{"a.go"},
		RollbackAvailable: true,
		Validation:        &apply.ValidationResult{Command: "go build ./...", Passed: true},
	}
	if err := r.ReportApplyResult(result); err != nil {
		t.Fatalf("ReportApplyResult() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "applied=1") {
		t.Fatalf("expected applied count in output, got %q", out)
	}
	if !strings.Contains(out, "go build ./...") {
		t.Fatalf("expected validation command in output, got %q", out)
	}
}
