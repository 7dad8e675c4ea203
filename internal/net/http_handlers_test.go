package net

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	server "merge-and-wander/server"
	"merge-and-wander/server/internal/grid"
	"merge-and-wander/server/internal/observability"
	"merge-and-wander/server/internal/save"
	"merge-and-wander/server/internal/world"
)

func newHandlerFixture(t *testing.T) (*server.Session, http.Handler) {
	t.Helper()
	session := server.NewSession(server.SessionConfig{
		Rules: world.Rules{
			Seed:              "net-test",
			SpawnProbability:  1,
			InteractionRadius: 3,
			WinTarget:         32,
		},
		Store:  save.NewMemoryStore(),
		Logger: log.New(io.Discard, "", 0),
	})
	t.Cleanup(session.Close)
	handler := NewHTTPHandler(session, HTTPHandlerConfig{Logger: log.New(io.Discard, "", 0)})
	return session, handler
}

func TestHealthEndpoint(t *testing.T) {
	_, handler := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 OK, got %d", resp.Code)
	}
	if body := resp.Body.String(); body != "ok" {
		t.Fatalf("expected body %q, got %q", "ok", body)
	}
}

func TestDiagnosticsIncludesSessionAndTelemetry(t *testing.T) {
	session, handler := newHandlerFixture(t)
	session.HandleCellClick(context.Background(), grid.Cell{})

	req := httptest.NewRequest(http.MethodGet, "/diagnostics", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 OK, got %d", resp.Code)
	}
	if contentType := resp.Header().Get("Content-Type"); contentType != "application/json" {
		t.Fatalf("expected Content-Type application/json, got %q", contentType)
	}

	var payload map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode diagnostics payload: %v", err)
	}
	if payload["status"] != "ok" {
		t.Fatalf("expected status ok, got %v", payload["status"])
	}

	sessionValue, ok := payload["session"].(map[string]any)
	if !ok {
		t.Fatalf("expected session object in diagnostics payload, got %T", payload["session"])
	}
	if held, ok := sessionValue["held"].(float64); !ok || held != 1 {
		t.Fatalf("expected held 1 in diagnostics, got %v", sessionValue["held"])
	}
	if store, ok := sessionValue["store"].(string); !ok || store != "memory" {
		t.Fatalf("expected store name in diagnostics, got %v", sessionValue["store"])
	}

	telemetryValue, ok := payload["telemetry"].(map[string]any)
	if !ok {
		t.Fatalf("expected telemetry object in diagnostics payload, got %T", payload["telemetry"])
	}
	if pickups, ok := telemetryValue["pickups"].(float64); !ok || pickups != 1 {
		t.Fatalf("expected one pickup counted, got %v", telemetryValue["pickups"])
	}
}

func TestWorldResetEndpoint(t *testing.T) {
	session, handler := newHandlerFixture(t)
	session.HandleCellClick(context.Background(), grid.Cell{})
	if st := session.State(); st.Held != 1 {
		t.Fatalf("expected held 1 before reset, got %d", st.Held)
	}

	req := httptest.NewRequest(http.MethodPost, "/world/reset", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 OK, got %d", resp.Code)
	}

	var payload map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode reset payload: %v", err)
	}
	if payload["status"] != "ok" {
		t.Fatalf("expected status ok, got %v", payload["status"])
	}
	rules, ok := payload["rules"].(map[string]any)
	if !ok {
		t.Fatalf("expected rules object in reset payload, got %T", payload["rules"])
	}
	if rules["winTarget"] != float64(32) {
		t.Fatalf("expected win target echoed, got %v", rules["winTarget"])
	}

	if st := session.State(); st.Held != 0 {
		t.Fatalf("expected held 0 after reset, got %d", st.Held)
	}
}

func TestWorldResetRejectsWrongMethod(t *testing.T) {
	_, handler := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/world/reset", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405 Method Not Allowed, got %d", resp.Code)
	}
}

func TestPprofRoutesAreOptIn(t *testing.T) {
	session, _ := newHandlerFixture(t)

	plain := NewHTTPHandler(session, HTTPHandlerConfig{Logger: log.New(io.Discard, "", 0)})
	req := httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
	resp := httptest.NewRecorder()
	plain.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected pprof disabled by default, got %d", resp.Code)
	}

	traced := NewHTTPHandler(session, HTTPHandlerConfig{
		Logger:        log.New(io.Discard, "", 0),
		Observability: observability.Config{EnablePprofTrace: true},
	})
	resp = httptest.NewRecorder()
	traced.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected pprof index when enabled, got %d", resp.Code)
	}
}
