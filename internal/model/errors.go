// errors.go — Sentinel errors for loom.
//
// These are the expected failure modes that callers check with errors.Is().
// Every sentinel error corresponds to one taxonomy kind in the dispatcher's
// error payload — not a catch-all.
package model

import "errors"

// Request errors.
var (
	// ErrInvalidRequest is returned when a tool argument is missing, the
	// wrong shape, or an out-of-range range/position.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNotSupported is returned when an operation is valid but no plugin
	// declares the required capability, or a specific variant (e.g.
	// reorder) has no usable code action.
	ErrNotSupported = errors.New("not supported")

	// ErrNotImplemented is returned by reserved plan builders (transform).
	ErrNotImplemented = errors.New("not implemented")
)

// Parsing errors.
var (
	// ErrUnsupportedLanguage marks a file whose extension has no registered
	// plugin. No planner returns it; they report that case as ErrNotSupported.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrParseFailure is returned when a source file cannot be parsed (syntax error).
	ErrParseFailure = errors.New("parse failure")
)

// Apply errors.
var (
	// ErrPlanStale is returned when a checksum in file_checksums no longer
	// matches the file on disk at apply time.
	ErrPlanStale = errors.New("plan stale")

	// ErrIO is returned on file system or subprocess failure.
	ErrIO = errors.New("io error")

	// ErrValidationFailed is returned when the post-apply validation
	// command exits non-zero or times out.
	ErrValidationFailed = errors.New("validation failed")

	// ErrRollbackFailed is fatal: the transaction could neither complete nor
	// cleanly revert. Callers must surface the uncertain-state path list.
	ErrRollbackFailed = errors.New("rollback failed")
)

// Manifest errors.
var (
	// ErrManifestNotFound is returned when no workspace manifest file exists
	// at the expected location.
	ErrManifestNotFound = errors.New("manifest not found")

	// ErrManifestInvalid is returned when a manifest fails to parse or is
	// missing a required field.
	ErrManifestInvalid = errors.New("manifest invalid")
)

// Config errors.
var (
	// ErrConfigInvalid is returned when .loom.yml has invalid YAML or schema.
	ErrConfigInvalid = errors.New("config invalid")
)

// Runtime errors.
var (
	// ErrInternal marks an invariant violation; callers should report it.
	ErrInternal = errors.New("internal error")
)
