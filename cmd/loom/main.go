// main.go — loom CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/loomrefactor/loom/internal/adapter/goparser"
	"github.com/loomrefactor/loom/internal/adapter/java"
	"github.com/loomrefactor/loom/internal/adapter/python"
	"github.com/loomrefactor/loom/internal/adapter/rust"
	"github.com/loomrefactor/loom/internal/adapter/typescript"
	"github.com/loomrefactor/loom/internal/apply"
	"github.com/loomrefactor/loom/internal/config"
	"github.com/loomrefactor/loom/internal/dispatch"
	"github.com/loomrefactor/loom/internal/engine"
	"github.com/loomrefactor/loom/internal/logging"
	"github.com/loomrefactor/loom/internal/model"
	"github.com/loomrefactor/loom/internal/plugins"
	"github.com/loomrefactor/loom/internal/queue"
	"github.com/loomrefactor/loom/internal/registry"
	"github.com/loomrefactor/loom/internal/reporter"
	"github.com/loomrefactor/loom/internal/scanner"
)

var version = "0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	switch os.Args[1] {
	case "rename.plan":
		runTool("rename.plan", os.Args[2:])
	case "move.plan":
		runTool("move.plan", os.Args[2:])
	case "delete.plan":
		runTool("delete.plan", os.Args[2:])
	case "extract.plan":
		runTool("extract.plan", os.Args[2:])
	case "inline":
		runTool("inline", os.Args[2:])
	case "reorder.plan":
		runTool("reorder.plan", os.Args[2:])
	case "apply":
		runApply(os.Args[2:])
	case "refactor":
		runTool("refactor", os.Args[2:])
	case "impact":
		runImpact(os.Args[2:])
	case "version":
		fmt.Printf("loom %s\n", version)
	case "-h", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: loom <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  rename.plan    plan a file, directory, or symbol rename")
	fmt.Println("  move.plan      plan a file or directory move")
	fmt.Println("  delete.plan    plan a file or directory deletion")
	fmt.Println("  extract.plan   plan an extract-function/variable refactor")
	fmt.Println("  inline         plan (or dry-run execute) an inline-variable refactor")
	fmt.Println("  reorder.plan   plan a declaration/parameter/field reorder")
	fmt.Println("  apply          apply a plan produced by one of the *.plan commands")
	fmt.Println("  refactor       dispatch an extract/inline/transform action by name")
	fmt.Println("  impact         print the project-wide dependency graph around a file")
	fmt.Println("  version        print the loom version")
	fmt.Println()
	fmt.Println("Every command prints its JSON response envelope to stdout.")
	fmt.Println("Pass --format text to any *.plan, inline, refactor, or apply command")
	fmt.Println("for a human-readable summary instead.")
}

// runTool builds a Dispatcher rooted at --root (default ".") and sends a
// single tool call assembled from the command's flags, printing the
// resulting envelope (or error payload); the envelope is JSON unless
// --format text is given.
func runTool(tool string, args []string) {
	fs := flag.NewFlagSet(tool, flag.ExitOnError)
	root := fs.String("root", ".", "project root")
	path := fs.String("path", "", "target file or directory path")
	kind := fs.String("kind", "", "target kind (file|directory|symbol for plan tools; function|variable|constant for extract/inline)")
	newName := fs.String("new-name", "", "new name (rename.plan, extract.plan)")
	selector := fs.String("selector", "", "current symbol name (symbol rename, inline)")
	destination := fs.String("destination", "", "destination path (move.plan)")
	line := fs.Int("line", 0, "0-based line number (extract.plan/inline/reorder.plan position)")
	column := fs.Int("column", 0, "0-based column offset")
	newOrder := fs.String("new-order", "", "comma-separated new declaration order (reorder.plan), e.g. 2,0,1")
	action := fs.String("action", "", "refactor action: extract|inline|transform")
	scope := fs.String("scope", "", "scan scope: code-only|all|custom")
	dryRun := fs.Bool("dry-run", false, "preview without executing (inline)")
	format := fs.String("format", "json", "output format: json|text")
	fs.Usage = func() {
		fmt.Printf("Usage: loom %s --root DIR [flags]\n", tool)
	}
	_ = fs.Parse(args)

	d := newDispatcher(*root)
	payload := buildToolArgs(tool, toolFlags{
		path: *path, kind: *kind, newName: *newName, selector: *selector,
		destination: *destination, line: *line, column: *column,
		newOrder: *newOrder, action: *action, scope: *scope, dryRun: *dryRun,
	})

	raw, err := json.Marshal(payload)
	if err != nil {
		fatalf("marshal arguments: %v", err)
	}

	env, err := d.Dispatch(context.Background(), tool, raw)
	if err != nil {
		printErrorAndExit(err)
	}
	printEnvelope(env, *format)
}

// printEnvelope prints env as JSON, or, for text format, hands its Changes
// payload to a reporter.Reporter when it's a model.Plan or *apply.Result
// and falls back to the raw envelope otherwise (e.g. refactor's edit list).
func printEnvelope(env *dispatch.Envelope, format string) {
	if format != "text" {
		printJSON(env)
		return
	}
	rep := reporter.New("text", os.Stdout)
	switch changes := env.Changes.(type) {
	case model.Plan:
		if err := rep.ReportPlan(changes); err != nil {
			fatalf("report plan: %v", err)
		}
	case *apply.Result:
		if err := rep.ReportApplyResult(changes); err != nil {
			fatalf("report apply result: %v", err)
		}
	default:
		fmt.Printf("%s: %s\n", env.Status, env.Summary)
		for _, f := range env.FilesChanged {
			fmt.Printf("  changed %s\n", f)
		}
		for _, d := range env.Diagnostics {
			fmt.Printf("  %s: %s\n", d.Severity, d.Message)
		}
	}
}

type toolFlags struct {
	path, kind, newName, selector, destination string
	line, column                               int
	newOrder                                   string
	action                                     string
	scope                                      string
	dryRun                                     bool
}

func buildToolArgs(tool string, f toolFlags) map[string]any {
	opts := map[string]any{}
	if f.scope != "" {
		opts["scope"] = map[string]any{"kind": f.scope}
	}

	switch tool {
	case "rename.plan":
		return map[string]any{
			"target":   map[string]any{"kind": orDefault(f.kind, "file"), "path": f.path, "selector": f.selector},
			"new_name": f.newName,
			"options":  optsOrNil(opts),
		}
	case "move.plan":
		return map[string]any{
			"target":      map[string]any{"kind": orDefault(f.kind, "file"), "path": f.path},
			"destination": f.destination,
			"options":     optsOrNil(opts),
		}
	case "delete.plan":
		return map[string]any{
			"target":  map[string]any{"kind": orDefault(f.kind, "file"), "path": f.path},
			"options": optsOrNil(opts),
		}
	case "extract.plan":
		return map[string]any{
			"kind": orDefault(f.kind, "function"),
			"source": map[string]any{
				"file_path": f.path,
				"name":      f.newName,
				"range":     positionRange(f.line, f.column),
			},
		}
	case "inline":
		inlineOpts := map[string]any{"dry_run": f.dryRun}
		return map[string]any{
			"kind": orDefault(f.kind, "variable"),
			"target": map[string]any{
				"file_path": f.path,
				"position":  map[string]any{"line": f.line, "column": f.column},
			},
			"options": inlineOpts,
		}
	case "reorder.plan":
		return map[string]any{
			"target": map[string]any{
				"kind":      orDefault(f.kind, "declarations"),
				"file_path": f.path,
				"position":  map[string]any{"line": f.line, "column": f.column},
			},
			"new_order": parseIntList(f.newOrder),
		}
	case "refactor":
		return map[string]any{
			"action": f.action,
			"params": map[string]any{
				"file_path": f.path,
				"name":      f.newName,
				"range":     positionRange(f.line, f.column),
				"target":    map[string]any{"file_path": f.path, "position": map[string]any{"line": f.line, "column": f.column}},
			},
			"options": optsOrNil(opts),
		}
	default:
		return map[string]any{}
	}
}

func positionRange(line, column int) map[string]any {
	return map[string]any{
		"start": map[string]any{"line": line, "column": column},
		"end":   map[string]any{"line": line, "column": column},
	}
}

func parseIntList(s string) []int {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			fatalf("invalid --new-order entry %q: %v", p, err)
		}
		out = append(out, n)
	}
	return out
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func optsOrNil(opts map[string]any) map[string]any {
	if len(opts) == 0 {
		return nil
	}
	return opts
}

// runApply reads a plan (as JSON) from --plan-file or stdin and applies
// it through workspace.apply_edit.
func runApply(args []string) {
	fs := flag.NewFlagSet("apply", flag.ExitOnError)
	root := fs.String("root", ".", "project root")
	planFile := fs.String("plan-file", "", "path to a JSON plan produced by a *.plan command's \"changes\" field (defaults to stdin)")
	dryRun := fs.Bool("dry-run", false, "preview without writing")
	validateChecksums := fs.Bool("validate-checksums", true, "fail closed on checksum drift")
	rollbackOnError := fs.Bool("rollback-on-error", true, "roll back on validation failure")
	validationCmd := fs.String("validation-cmd", "", "space-separated post-apply validation command, e.g. \"go build ./...\"")
	format := fs.String("format", "json", "output format: json|text")
	fs.Usage = func() {
		fmt.Println("Usage: loom apply --root DIR [--plan-file FILE] [flags]")
	}
	_ = fs.Parse(args)

	var planData []byte
	var err error
	if *planFile != "" {
		planData, err = os.ReadFile(*planFile)
	} else {
		planData, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		fatalf("read plan: %v", err)
	}

	applyOpts := map[string]any{
		"dry_run":            *dryRun,
		"validate_checksums": *validateChecksums,
		"rollback_on_error":  *rollbackOnError,
	}
	if *validationCmd != "" {
		applyOpts["validation"] = map[string]any{"args": strings.Fields(*validationCmd)}
	}

	var plan json.RawMessage = planData
	raw, err := json.Marshal(map[string]any{"plan": plan, "options": applyOpts})
	if err != nil {
		fatalf("marshal arguments: %v", err)
	}

	d := newDispatcher(*root)
	env, err := d.Dispatch(context.Background(), "workspace.apply_edit", raw)
	if err != nil {
		printErrorAndExit(err)
	}
	printEnvelope(env, *format)
}

// runImpact builds a whole-project dependency graph rooted at --root and
// prints the files that import --path directly.
func runImpact(args []string) {
	fs := flag.NewFlagSet("impact", flag.ExitOnError)
	root := fs.String("root", ".", "project root")
	path := fs.String("path", "", "file to report dependents for")
	scopeKind := fs.String("scope", "", "scan scope: code-only|all|custom")
	fs.Usage = func() {
		fmt.Println("Usage: loom impact --root DIR --path FILE [flags]")
	}
	_ = fs.Parse(args)

	if *path == "" {
		fatalf("--path is required")
	}

	reg := registry.New()
	reg.Register(goparser.New())
	reg.Register(typescript.New())
	reg.Register(python.New())
	reg.Register(rust.New())
	reg.Register(java.New())

	scope := model.DefaultScanScope()
	if *scopeKind != "" {
		scope.Kind = model.ScanScopeKind(*scopeKind)
	}

	s := scanner.New(*root, reg)
	pc, err := engine.Build(context.Background(), s, reg, scope)
	if err != nil {
		fatalf("build dependency graph: %v", err)
	}

	target := *path
	if !filepath.IsAbs(target) {
		target = filepath.Join(*root, target)
	}

	dependents := pc.ReverseDeps[target]
	printJSON(map[string]any{
		"path":            target,
		"dependents":      dependents,
		"dependent_count": len(dependents),
		"depends_on":      pc.DependencyGraph[target],
		"covering_test":   pc.TestSourceMap[target],
		"module_boundary": pc.ModuleBoundaries[filepath.Dir(target)],
	})
}

// newDispatcher builds the dispatcher for a single CLI invocation: a
// fresh registry of every bundled language plugin, any plugins declared
// in .loom.yml, the shared apply executor/queue, and a zap logger.
func newDispatcher(root string) *dispatch.Dispatcher {
	reg := registry.New()
	reg.Register(goparser.New())
	reg.Register(typescript.New())
	reg.Register(python.New())
	reg.Register(rust.New())
	reg.Register(java.New())

	cfg, err := config.Load(filepath.Join(root, ".loom.yml"))
	if err != nil {
		fatalf("load .loom.yml: %v", err)
	}
	transforms, err := plugins.Load(cfg.Plugins)
	if err != nil {
		fatalf("load transform plugins: %v", err)
	}

	logger, err := logging.New(false)
	if err != nil {
		fatalf("init logger: %v", err)
	}

	exec := apply.New(root, reg, logger)
	q := queue.New()
	return dispatch.New(root, reg, exec, q).WithTransforms(transforms)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatalf("encode response: %v", err)
	}
}

func printErrorAndExit(err error) {
	payload := dispatch.ToErrorPayload(err)
	enc := json.NewEncoder(os.Stderr)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
	os.Exit(1)
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", a...)
	os.Exit(1)
}
