// executor.go — the atomic apply executor: checksum-gated staged commit
// with rollback, implementing spec.md §4.4's 9-step algorithm. Grounded
// on stricture's internal/fix/engine.go Plan/Apply shape (Operation list,
// ordered commit, os.Rename for moves), generalized from a flat operation
// list to the tagged-union Plan/TextEdit model and given the staging,
// checksum, and rollback machinery the teacher's fire-and-forget Apply
// never needed.
package apply

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/loomrefactor/loom/internal/adapter"
	"github.com/loomrefactor/loom/internal/diffutil"
	"github.com/loomrefactor/loom/internal/model"
	"github.com/loomrefactor/loom/internal/registry"
)

// diffContextLines is how much unchanged context a dry-run diff preview
// shows around each changed region.
const diffContextLines = 3

// DefaultValidationTimeout matches spec.md §5's 30s default for the
// post-apply validation command.
const DefaultValidationTimeout = 30 * time.Second

// ValidationCommand describes the post-apply validation hook.
type ValidationCommand struct {
	Args    []string
	Dir     string
	Timeout time.Duration
}

// Options controls one Apply call. ValidateChecksums and RollbackOnError
// default to true, matching spec.md §4.4's stated defaults.
type Options struct {
	DryRun            bool
	ValidateChecksums bool
	RollbackOnError   bool
	Validation        *ValidationCommand
}

// DefaultOptions returns the spec-mandated defaults.
func DefaultOptions() Options {
	return Options{ValidateChecksums: true, RollbackOnError: true}
}

// ValidationResult reports the outcome of the post-apply validation hook.
type ValidationResult struct {
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
	Passed   bool
	TimedOut bool
}

// Result is the apply executor's final report, matching spec.md §4.4 step 9.
type Result struct {
	Success           bool
	AppliedFiles      []string
	CreatedFiles      []string
	DeletedFiles      []string
	Warnings          []model.Warning
	Validation        *ValidationResult
	RollbackAvailable bool
	Diffs             map[string]string // path -> unified diff, dry-run only
}

// Executor applies Plan values against ProjectRoot.
type Executor struct {
	ProjectRoot string
	Registry    *registry.Registry
	Logger      *zap.Logger
}

// New constructs an Executor. A nil logger is replaced with a no-op one.
func New(projectRoot string, reg *registry.Registry, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{ProjectRoot: projectRoot, Registry: reg, Logger: logger}
}

type stagedFile struct {
	path            string
	tempPath        string
	originalContent []byte
	newContent      []byte
}

type pendingMove struct {
	oldPath string
	newPath string
}

type pendingDelete struct {
	path string
	kind model.DeletionKind
}

// transaction accumulates staged state for one Apply call so rollback can
// undo exactly what commit did.
type transaction struct {
	staged           []*stagedFile
	moves            []pendingMove
	deletes          []pendingDelete
	deletedSnapshots map[string][]byte
	consolidation    *model.MoveDetails
}

// Apply runs the full plan/checksum/stage/commit/validate/rollback cycle
// for plan. Step numbers in comments below refer to spec.md §4.4.
func (e *Executor) Apply(ctx context.Context, plan model.Plan, opts Options) (*Result, error) {
	txID := uuid.NewString()
	logger := e.Logger.With(zap.String("transaction_id", txID), zap.String("plan_id", plan.Base().Metadata.PlanID))

	// Step 1: deserialize by discriminator / reject unknown variants.
	switch plan.PlanType() {
	case model.PlanTypeRename, model.PlanTypeMove, model.PlanTypeDelete,
		model.PlanTypeExtract, model.PlanTypeInline, model.PlanTypeReorder:
	default:
		return nil, fmt.Errorf("%w: unknown plan type %q", model.ErrInvalidRequest, plan.PlanType())
	}

	base := plan.Base()

	// Step 2: checksum gate.
	if opts.ValidateChecksums {
		if err := e.checksumGate(base.FileChecksums); err != nil {
			return nil, err
		}
	}

	// Step 3: compute operation order (priority desc, start desc within file).
	editsByFile := groupEditsByFile(base.Edits)

	tx := &transaction{deletedSnapshots: map[string][]byte{}}

	// Step 4: stage content edits to sibling temp files.
	for path, edits := range editsByFile {
		original, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		newContent, err := applyEdits(original, edits)
		if err != nil {
			return nil, fmt.Errorf("apply edits to %s: %w", path, err)
		}
		if bytes.Equal(original, newContent) {
			continue
		}
		tmpPath, err := stageTemp(path, newContent)
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", path, err)
		}
		tx.staged = append(tx.staged, &stagedFile{
			path:            path,
			tempPath:        tmpPath,
			originalContent: original,
			newContent:      newContent,
		})
	}

	var moveDetails *model.MoveDetails
	if movePlan, ok := plan.(*model.MovePlan); ok {
		moveDetails = &movePlan.MoveDetails
		tx.moves = append(tx.moves, pendingMove{oldPath: movePlan.MoveDetails.SourcePath, newPath: movePlan.MoveDetails.DestinationPath})
		if movePlan.MoveDetails.Consolidation {
			tx.consolidation = moveDetails
		}
	}
	if deletePlan, ok := plan.(*model.DeletePlan); ok {
		for _, d := range deletePlan.Deletions {
			tx.deletes = append(tx.deletes, pendingDelete{path: d.Path, kind: d.Kind})
		}
	}

	// Step 5: dry-run short-circuit.
	if opts.DryRun {
		diffs := map[string]string{}
		for _, sf := range tx.staged {
			_ = os.Remove(sf.tempPath)
			d, err := diffPreview(sf.path, sf.originalContent, sf.newContent)
			if err == nil && d != "" {
				diffs[sf.path] = d
			}
		}
		return &Result{
			Success:      true,
			AppliedFiles: stagedPaths(tx.staged),
			DeletedFiles: deletionPaths(tx.deletes),
			Diffs:        diffs,
		}, nil
	}

	// Step 6: commit.
	if err := e.commit(tx); err != nil {
		e.rollback(tx, logger)
		return nil, fmt.Errorf("commit failed, rolled back: %w", err)
	}

	result := &Result{
		Success:           true,
		AppliedFiles:      stagedPaths(tx.staged),
		DeletedFiles:      deletionPaths(tx.deletes),
		Warnings:          base.Warnings,
		RollbackAvailable: true,
	}
	if moveDetails != nil {
		result.CreatedFiles = []string{moveDetails.DestinationPath}
	}

	// Step 7: validation hook.
	if opts.Validation != nil {
		vr := e.runValidation(ctx, *opts.Validation)
		result.Validation = vr
		if !vr.Passed && opts.RollbackOnError {
			logger.Warn("validation failed, rolling back", zap.String("command", vr.Command))
			e.rollback(tx, logger)
			result.Success = false
			result.RollbackAvailable = false
			return result, fmt.Errorf("%w: validation command failed", model.ErrValidationFailed)
		}
	}

	logger.Info("apply committed", zap.Int("files_changed", len(result.AppliedFiles)))
	return result, nil
}

func (e *Executor) checksumGate(checksums map[string]string) error {
	for path, want := range checksums {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("%w: read %s: %v", model.ErrPlanStale, path, err)
		}
		if got := model.Checksum(data); got != want {
			return fmt.Errorf("%w: %s changed since the plan was built", model.ErrPlanStale, path)
		}
	}
	return nil
}

func groupEditsByFile(edits []model.TextEdit) map[string][]model.TextEdit {
	byFile := map[string][]model.TextEdit{}
	for _, e := range edits {
		byFile[e.FilePath] = append(byFile[e.FilePath], e)
	}
	for path, es := range byFile {
		sort.SliceStable(es, func(i, j int) bool {
			if es[i].Priority != es[j].Priority {
				return es[i].Priority > es[j].Priority
			}
			return es[j].Location.Start.Before(es[i].Location.Start)
		})
		byFile[path] = es
	}
	return byFile
}

// applyEdits applies edits (already ordered priority desc, start desc) to
// content by replacing each edit's Location span in turn. Processing in
// descending start order means earlier replacements never perturb the
// byte offsets of edits still to come.
func applyEdits(content []byte, edits []model.TextEdit) ([]byte, error) {
	lines := strings.SplitAfter(string(content), "\n")
	for _, e := range edits {
		if e.OriginalText != "" {
			actual := sliceRange(lines, e.Location)
			if actual != e.OriginalText {
				return nil, fmt.Errorf("%w: edit at %s does not match current content", model.ErrPlanStale, e.FilePath)
			}
		}
		lines = replaceRange(lines, e.Location, e.NewText)
	}
	return []byte(strings.Join(lines, "")), nil
}

func sliceRange(lines []string, loc model.EditLocation) string {
	var b strings.Builder
	for i := loc.Start.Line; i <= loc.End.Line && i < len(lines); i++ {
		line := lines[i]
		start, end := 0, len(line)
		if i == loc.Start.Line {
			start = clampCol(loc.Start.Column, len(line))
		}
		if i == loc.End.Line {
			end = clampCol(loc.End.Column, len(line))
		}
		if start <= end && start <= len(line) {
			b.WriteString(line[start:min(end, len(line))])
		}
	}
	return b.String()
}

func replaceRange(lines []string, loc model.EditLocation, newText string) []string {
	if loc.Start.Line >= len(lines) {
		return lines
	}
	endLine := min(loc.End.Line, len(lines)-1)
	startLine := lines[loc.Start.Line]
	endLineText := lines[endLine]

	startCol := clampCol(loc.Start.Column, len(startLine))
	endCol := clampCol(loc.End.Column, len(endLineText))

	prefix := startLine[:startCol]
	suffix := endLineText[min(endCol, len(endLineText)):]

	merged := prefix + newText + suffix
	replacement := strings.SplitAfter(merged, "\n")

	out := make([]string, 0, len(lines)-(endLine-loc.Start.Line)+len(replacement))
	out = append(out, lines[:loc.Start.Line]...)
	out = append(out, replacement...)
	out = append(out, lines[endLine+1:]...)
	return out
}

func clampCol(col, max int) int {
	if col < 0 {
		return 0
	}
	if col > max {
		return max
	}
	return col
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func stageTemp(path string, content []byte) (string, error) {
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, fmt.Sprintf(".loom-stage-%s", uuid.NewString()))
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return "", err
	}
	return tmp, nil
}

// commit performs step 6: atomic temp-rename, then deletes (deepest path
// first) and moves (child-before-parent for source removal is implicit
// since each move is a single os.Rename).
func (e *Executor) commit(tx *transaction) error {
	for _, sf := range tx.staged {
		if err := os.Rename(sf.tempPath, sf.path); err != nil {
			return fmt.Errorf("commit %s: %w", sf.path, err)
		}
	}

	sort.Slice(tx.deletes, func(i, j int) bool {
		return strings.Count(tx.deletes[i].path, string(filepath.Separator)) > strings.Count(tx.deletes[j].path, string(filepath.Separator))
	})
	for _, d := range tx.deletes {
		snapshot, err := snapshotPath(d.path, d.kind)
		if err != nil {
			return fmt.Errorf("snapshot %s before delete: %w", d.path, err)
		}
		for p, content := range snapshot {
			tx.deletedSnapshots[p] = content
		}
		if d.kind == model.DeletionDirectory {
			if err := os.RemoveAll(d.path); err != nil {
				return fmt.Errorf("delete %s: %w", d.path, err)
			}
		} else if err := os.Remove(d.path); err != nil {
			return fmt.Errorf("delete %s: %w", d.path, err)
		}
	}

	for _, m := range tx.moves {
		if err := os.MkdirAll(filepath.Dir(m.newPath), 0o755); err != nil {
			return fmt.Errorf("mkdir for move %s -> %s: %w", m.oldPath, m.newPath, err)
		}
		if err := os.Rename(m.oldPath, m.newPath); err != nil {
			return fmt.Errorf("move %s -> %s: %w", m.oldPath, m.newPath, err)
		}
	}

	if tx.consolidation != nil {
		if err := e.runConsolidationPostProcessing(*tx.consolidation); err != nil {
			return fmt.Errorf("consolidation post-processing: %w", err)
		}
	}
	return nil
}

func (e *Executor) runConsolidationPostProcessing(details model.MoveDetails) error {
	for _, plugin := range e.Registry.All() {
		wa, ok := plugin.(adapter.WorkspaceAware)
		if !ok {
			continue
		}
		if ok, _ := wa.IsPackage(details.DestinationPath); !ok {
			continue
		}
		_, err := wa.ExecuteConsolidationPostProcessing(details.SourcePath, details.DestinationPath, e.ProjectRoot)
		return err
	}
	return fmt.Errorf("%w: no workspace-aware plugin claims %s", model.ErrNotSupported, details.DestinationPath)
}

func snapshotPath(path string, kind model.DeletionKind) (map[string][]byte, error) {
	snapshot := map[string][]byte{}
	if kind == model.DeletionFile {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		snapshot[path] = data
		return snapshot, nil
	}
	err := filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, readErr := os.ReadFile(p)
		if readErr != nil {
			return readErr
		}
		snapshot[p] = data
		return nil
	})
	return snapshot, err
}

// rollback undoes everything commit did, per step 8.
func (e *Executor) rollback(tx *transaction, logger *zap.Logger) {
	var failed []string

	for _, m := range tx.moves {
		if err := os.Rename(m.newPath, m.oldPath); err != nil {
			failed = append(failed, m.newPath)
		}
	}

	for path, content := range tx.deletedSnapshots {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			failed = append(failed, path)
			continue
		}
		if err := os.WriteFile(path, content, 0o644); err != nil {
			failed = append(failed, path)
		}
	}

	for _, sf := range tx.staged {
		if err := os.WriteFile(sf.path, sf.originalContent, 0o644); err != nil {
			failed = append(failed, sf.path)
		}
	}

	if len(failed) > 0 {
		logger.Error("rollback could not restore every path", zap.Strings("paths", failed))
	}
}

func (e *Executor) runValidation(ctx context.Context, v ValidationCommand) *ValidationResult {
	if len(v.Args) == 0 {
		return &ValidationResult{Passed: false, Stderr: "validation command has no arguments"}
	}
	timeout := v.Timeout
	if timeout == 0 {
		timeout = DefaultValidationTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, v.Args[0], v.Args[1:]...)
	cmd.Dir = v.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &ValidationResult{
		Command: strings.Join(v.Args, " "),
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
	}
	if cctx.Err() == context.DeadlineExceeded {
		result.TimedOut = true
		return result
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		result.ExitCode = exitErr.ExitCode()
		return result
	}
	if err != nil {
		result.ExitCode = -1
		return result
	}
	result.ExitCode = 0
	result.Passed = true
	return result
}

func stagedPaths(staged []*stagedFile) []string {
	out := make([]string, 0, len(staged))
	for _, sf := range staged {
		out = append(out, sf.path)
	}
	return out
}

func deletionPaths(deletes []pendingDelete) []string {
	out := make([]string, 0, len(deletes))
	for _, d := range deletes {
		out = append(out, d.path)
	}
	return out
}

func diffPreview(path string, original, newContent []byte) (string, error) {
	return diffutil.Unified(path, original, newContent, diffContextLines)
}
