// server.go — HTTP surface for loom's tool calls: POST /v1/tools/{tool}
// wraps internal/dispatch.Dispatcher.Dispatch the same way cmd/loom's CLI
// subcommands do, just over the wire instead of over flags.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/loomrefactor/loom/internal/dispatch"
)

const maxRequestBodyBytes = 10 << 20 // 10MB

// App handles the HTTP API for loom-server.
type App struct {
	cfg        Config
	dispatcher *dispatch.Dispatcher
}

// New constructs the production HTTP server.
func New(cfg Config, d *dispatch.Dispatcher) (*http.Server, error) {
	handler, err := NewHandler(cfg, d)
	if err != nil {
		return nil, err
	}
	return &http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}, nil
}

// NewHandler constructs the HTTP handler for tests and local embedding.
func NewHandler(cfg Config, d *dispatch.Dispatcher) (http.Handler, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}

	app := &App{cfg: cfg, dispatcher: d}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", app.handleHealthz)
	mux.HandleFunc("POST /v1/tools/{tool}", app.handleToolCall)
	return mux, nil
}

func validateConfig(cfg Config) error {
	switch cfg.AuthMode {
	case "", "none":
	case "token":
		if strings.TrimSpace(cfg.AuthToken) == "" {
			return fmt.Errorf("LOOM_SERVER_AUTH_MODE=token requires LOOM_SERVER_AUTH_TOKEN")
		}
	default:
		return fmt.Errorf("unsupported auth mode %q", cfg.AuthMode)
	}
	return nil
}

func (a *App) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) handleToolCall(w http.ResponseWriter, r *http.Request) {
	if !a.isAuthorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	tool := r.PathValue("tool")
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

	body, err := decodeRawBody(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dispatch.ErrorPayload{Code: "invalid-request", Message: err.Error()})
		return
	}

	env, err := a.dispatcher.Dispatch(r.Context(), tool, body)
	if err != nil {
		payload := dispatch.ToErrorPayload(err)
		writeJSON(w, httpStatusForErrorCode(payload.Code), payload)
		return
	}
	writeJSON(w, http.StatusOK, env)
}

func decodeRawBody(r *http.Request) (json.RawMessage, error) {
	var raw json.RawMessage
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err == nil {
		return nil, errors.New("request body must contain a single JSON object")
	}
	return raw, nil
}

func httpStatusForErrorCode(code string) int {
	switch code {
	case "invalid-request":
		return http.StatusBadRequest
	case "not-supported", "parse-error", "validation-failed":
		return http.StatusUnprocessableEntity
	case "plan-stale":
		return http.StatusConflict
	case "io-error", "rollback-failed", "internal-error":
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func (a *App) isAuthorized(r *http.Request) bool {
	switch a.cfg.AuthMode {
	case "", "none":
		return true
	case "token":
		auth := strings.TrimSpace(r.Header.Get("Authorization"))
		const prefix = "Bearer "
		if !strings.HasPrefix(auth, prefix) {
			return false
		}
		return strings.TrimSpace(strings.TrimPrefix(auth, prefix)) == a.cfg.AuthToken
	default:
		return false
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":"encode response: %v"}`, err), http.StatusInternalServerError)
	}
}

