// dispatch.go — the tool-name → handler table. One entry per spec.md §6
// tool. Argument decoding uses encoding/json with DisallowUnknownFields,
// grounded in the teacher's internal/server/server.go ingest-handler
// decode pattern (the teacher decodes ArtifactIngestRequest the same way
// before delegating to its store).
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/loomrefactor/loom/internal/apply"
	"github.com/loomrefactor/loom/internal/model"
	"github.com/loomrefactor/loom/internal/planner"
	"github.com/loomrefactor/loom/internal/plugins"
	"github.com/loomrefactor/loom/internal/queue"
	"github.com/loomrefactor/loom/internal/registry"
)

// Envelope is the response envelope for write tools, per spec.md §6.
type Envelope struct {
	Status       string        `json:"status"`
	Summary      string        `json:"summary"`
	FilesChanged []string      `json:"files_changed"`
	Diagnostics  []Diagnostic  `json:"diagnostics,omitempty"`
	Changes      any           `json:"changes"`
}

// Diagnostic is one entry in an Envelope's diagnostics list.
type Diagnostic struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
	FilePath string `json:"file_path,omitempty"`
	Line     int    `json:"line,omitempty"`
}

const (
	StatusPreview = "preview"
	StatusSuccess = "success"
	StatusError   = "error"
)

// Handler processes one decoded tool call and returns its envelope.
type Handler func(ctx context.Context, d *Dispatcher, raw json.RawMessage) (*Envelope, error)

// Dispatcher holds the tool table and the shared planner/executor/queue
// dependencies every handler needs, all rooted at one project.
type Dispatcher struct {
	ProjectRoot string
	Registry    *registry.Registry
	Planner     *planner.Planner
	Executor    *apply.Executor
	Queue       *queue.Queue

	// Transforms holds any plugin-loaded named actions reachable through
	// the "refactor" tool when the action isn't extract/inline/transform.
	// Nil when .loom.yml declares no plugins.
	Transforms *plugins.Set

	table map[string]Handler
}

// New builds a Dispatcher wired to a single project root.
func New(projectRoot string, reg *registry.Registry, exec *apply.Executor, q *queue.Queue) *Dispatcher {
	d := &Dispatcher{
		ProjectRoot: projectRoot,
		Registry:    reg,
		Planner:     planner.New(projectRoot, reg),
		Executor:    exec,
		Queue:       q,
	}
	d.table = map[string]Handler{
		"rename.plan":          handleRenamePlan,
		"move.plan":            handleMovePlan,
		"delete.plan":          handleDeletePlan,
		"extract.plan":         handleExtractPlan,
		"inline":               handleInline,
		"reorder.plan":         handleReorderPlan,
		"workspace.apply_edit": handleApplyEdit,
		"refactor":             handleRefactor,
	}
	return d
}

// WithTransforms attaches a loaded plugin transform set and returns d for
// chaining at construction time.
func (d *Dispatcher) WithTransforms(set *plugins.Set) *Dispatcher {
	d.Transforms = set
	return d
}

// Tools returns the registered tool names, sorted is not guaranteed; call
// order is irrelevant since this only feeds CLI help/HTTP routing tables.
func (d *Dispatcher) Tools() []string {
	names := make([]string, 0, len(d.table))
	for name := range d.table {
		names = append(names, name)
	}
	return names
}

// Dispatch looks up tool in the handler table and invokes it with raw,
// the tool's JSON argument object. An unknown tool name is an
// invalid-request error, not a panic or a silent no-op.
func (d *Dispatcher) Dispatch(ctx context.Context, tool string, raw json.RawMessage) (*Envelope, error) {
	handler, ok := d.table[tool]
	if !ok {
		return nil, fmt.Errorf("%w: unknown tool %q", model.ErrInvalidRequest, tool)
	}
	return handler(ctx, d, raw)
}

// decodeArgs decodes raw into dst, rejecting unknown fields and trailing
// data — the same two-step DisallowUnknownFields() + single-object check
// internal/server/server.go's ingest handler applies before validating
// its own envelope.
func decodeArgs(raw json.RawMessage, dst any) error {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", model.ErrInvalidRequest, err)
	}
	if err := decoder.Decode(&struct{}{}); err == nil {
		return fmt.Errorf("%w: arguments must be a single JSON object", model.ErrInvalidRequest)
	}
	return nil
}

func planSummary(kind string, affected, created, deleted int) string {
	return fmt.Sprintf("%s plan touches %d file(s) (%d created, %d deleted)", kind, affected, created, deleted)
}

func filesChangedFromEdits(edits []model.TextEdit) []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range edits {
		if seen[e.FilePath] {
			continue
		}
		seen[e.FilePath] = true
		out = append(out, e.FilePath)
	}
	return out
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
