// errors.go — translates internal/model's sentinel errors into the
// {code, message, data} error payload shape from spec.md §6/§7.
package dispatch

import (
	"errors"

	"github.com/loomrefactor/loom/internal/model"
)

// ErrorPayload is the wire shape for every dispatch failure.
type ErrorPayload struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// taxonomy orders the sentinels from most to least specific so that a
// wrapped error matching more than one (which shouldn't happen, but isn't
// guarded against by construction) resolves to its narrowest code.
var taxonomy = []struct {
	err  error
	code string
}{
	{model.ErrInvalidRequest, "invalid-request"},
	{model.ErrNotSupported, "not-supported"},
	{model.ErrNotImplemented, "not-supported"},
	{model.ErrUnsupportedLanguage, "parse-error"},
	{model.ErrParseFailure, "parse-error"},
	{model.ErrPlanStale, "plan-stale"},
	{model.ErrIO, "io-error"},
	{model.ErrValidationFailed, "validation-failed"},
	{model.ErrRollbackFailed, "rollback-failed"},
	{model.ErrManifestNotFound, "io-error"},
	{model.ErrManifestInvalid, "invalid-request"},
	{model.ErrConfigInvalid, "invalid-request"},
	{model.ErrInternal, "internal-error"},
}

// ToErrorPayload maps err onto the §7 taxonomy. Errors that don't match
// any known sentinel are reported as internal-error, since an
// unrecognized failure mode is itself an invariant violation worth
// surfacing rather than guessing a taxonomy kind for.
func ToErrorPayload(err error) ErrorPayload {
	if err == nil {
		return ErrorPayload{}
	}
	for _, entry := range taxonomy {
		if errors.Is(err, entry.err) {
			return ErrorPayload{Code: entry.code, Message: err.Error()}
		}
	}
	return ErrorPayload{Code: "internal-error", Message: err.Error()}
}
