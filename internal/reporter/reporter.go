// reporter.go — Reporter interface and its text/JSON implementations,
// used by cmd/loom to print a Plan or apply.Result to stdout.
package reporter

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/loomrefactor/loom/internal/apply"
	"github.com/loomrefactor/loom/internal/model"
)

// Reporter defines the interface for output formatters.
type Reporter interface {
	// Format returns the format name (e.g., "text", "json").
	Format() string

	// ReportPlan prints a single plan.
	ReportPlan(plan model.Plan) error

	// ReportApplyResult prints the outcome of an apply call.
	ReportApplyResult(result *apply.Result) error
}

// New returns the Reporter for format, defaulting to JSON for an unknown
// or empty format name.
func New(format string, w io.Writer) Reporter {
	switch format {
	case "text":
		return &TextReporter{w: w}
	default:
		return &JSONReporter{w: w}
	}
}

// JSONReporter prints machine-readable plan/result JSON, one object per
// call, matching the shape a tool caller already gets from dispatch.
type JSONReporter struct {
	w io.Writer
}

func (r *JSONReporter) Format() string { return "json" }

func (r *JSONReporter) ReportPlan(plan model.Plan) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(plan)
}

func (r *JSONReporter) ReportApplyResult(result *apply.Result) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// TextReporter prints a short human-readable summary: affected file
// counts, warnings, and edit locations, without the full edit payload.
type TextReporter struct {
	w io.Writer
}

func (r *TextReporter) Format() string { return "text" }

func (r *TextReporter) ReportPlan(plan model.Plan) error {
	base := plan.Base()
	if _, err := fmt.Fprintf(r.w, "%s plan %s\n", plan.PlanType(), base.Metadata.PlanID); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(r.w, "  affected=%d created=%d deleted=%d impact=%s\n",
		base.Summary.AffectedFiles, base.Summary.CreatedFiles, base.Summary.DeletedFiles, base.Metadata.EstimatedImpact); err != nil {
		return err
	}
	for _, w := range base.Warnings {
		if _, err := fmt.Fprintf(r.w, "  warning[%s]: %s\n", w.Code, w.Message); err != nil {
			return err
		}
		for _, c := range w.Candidates {
			if _, err := fmt.Fprintf(r.w, "    - %s\n", c); err != nil {
				return err
			}
		}
	}
	for _, e := range base.Edits {
		if _, err := fmt.Fprintf(r.w, "  edit %s %s@%d:%d-%d:%d\n",
			e.Kind, e.FilePath, e.Location.Start.Line, e.Location.Start.Column, e.Location.End.Line, e.Location.End.Column); err != nil {
			return err
		}
	}
	return nil
}

func (r *TextReporter) ReportApplyResult(result *apply.Result) error {
	if _, err := fmt.Fprintf(r.w, "apply: success=%v applied=%d created=%d deleted=%d rollback_available=%v\n",
		result.Success, len(result.AppliedFiles), len(result.CreatedFiles), len(result.DeletedFiles), result.RollbackAvailable); err != nil {
		return err
	}
	for _, w := range result.Warnings {
		if _, err := fmt.Fprintf(r.w, "  warning[%s]: %s\n", w.Code, w.Message); err != nil {
			return err
		}
	}
	if result.Validation != nil {
		if _, err := fmt.Fprintf(r.w, "  validation: %s passed=%v exit=%d\n",
			result.Validation.Command, result.Validation.Passed, result.Validation.ExitCode); err != nil {
			return err
		}
	}
	return nil
}
