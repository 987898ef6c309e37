package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/loomrefactor/loom/internal/adapter/goparser"
	"github.com/loomrefactor/loom/internal/apply"
	"github.com/loomrefactor/loom/internal/dispatch"
	"github.com/loomrefactor/loom/internal/logging"
	"github.com/loomrefactor/loom/internal/queue"
	"github.com/loomrefactor/loom/internal/registry"
)

func newTestDispatcher(t *testing.T, root string) *dispatch.Dispatcher {
	t.Helper()
	reg := registry.New()
	reg.Register(goparser.New())
	exec := apply.New(root, reg, logging.NewNop())
	return dispatch.New(root, reg, exec, queue.New())
}

func TestHealthz(t *testing.T) {
	d := newTestDispatcher(t, t.TempDir())
	handler, err := NewHandler(Config{}, d)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("json decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("expected status=ok, got %q", body["status"])
	}
}

func TestToolCallRenamePlanSucceeds(t *testing.T) {
	root := t.TempDir()
	filePath := filepath.Join(root, "foo.go")
	if err := os.WriteFile(filePath, []byte("package foo\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	d := newTestDispatcher(t, root)
	handler, err := NewHandler(Config{}, d)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	reqBody, err := json.Marshal(map[string]any{
		"target":   map[string]any{"kind": "file", "path": filePath},
		"new_name": "bar.go",
	})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/tools/rename.plan", bytes.NewReader(reqBody))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	var env dispatch.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.Status != dispatch.StatusSuccess {
		t.Fatalf("status = %q, want %q", env.Status, dispatch.StatusSuccess)
	}
}

func TestToolCallUnknownToolReturnsInvalidRequest(t *testing.T) {
	d := newTestDispatcher(t, t.TempDir())
	handler, err := NewHandler(Config{}, d)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/tools/does.not.exist", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}

	var payload dispatch.ErrorPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error payload: %v", err)
	}
	if payload.Code != "invalid-request" {
		t.Fatalf("code = %q, want invalid-request", payload.Code)
	}
}

func TestToolCallRequiresBearerTokenWhenConfigured(t *testing.T) {
	d := newTestDispatcher(t, t.TempDir())
	handler, err := NewHandler(Config{AuthMode: "token", AuthToken: "secret-token"}, d)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	reqNoAuth := httptest.NewRequest(http.MethodPost, "/v1/tools/rename.plan", bytes.NewBufferString(`{}`))
	recNoAuth := httptest.NewRecorder()
	handler.ServeHTTP(recNoAuth, reqNoAuth)
	if recNoAuth.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", recNoAuth.Code)
	}

	reqAuth := httptest.NewRequest(http.MethodPost, "/v1/tools/rename.plan", bytes.NewBufferString(`{}`))
	reqAuth.Header.Set("Authorization", "Bearer secret-token")
	recAuth := httptest.NewRecorder()
	handler.ServeHTTP(recAuth, reqAuth)
	if recAuth.Code == http.StatusUnauthorized {
		t.Fatalf("expected authenticated request to pass the auth gate, got 401")
	}
}

func TestNewHandlerRejectsTokenModeWithoutToken(t *testing.T) {
	d := newTestDispatcher(t, t.TempDir())
	_, err := NewHandler(Config{AuthMode: "token"}, d)
	if err == nil {
		t.Fatal("expected error for token auth without token")
	}
}

func TestNewHandlerRequiresDispatcher(t *testing.T) {
	_, err := NewHandler(Config{}, nil)
	if err == nil {
		t.Fatal("expected error when dispatcher is nil")
	}
}
