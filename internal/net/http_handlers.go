package net

import (
	"encoding/json"
	"log"
	nethttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	server "merge-and-wander/server"
	"merge-and-wander/server/internal/net/ws"
	"merge-and-wander/server/internal/observability"
)

// HTTPHandlerConfig carries the optional pieces of the HTTP surface.
type HTTPHandlerConfig struct {
	ClientDir     string
	Logger        *log.Logger
	Observability observability.Config
}

// NewHTTPHandler assembles the full HTTP surface: liveness and diagnostics
// probes, the world reset hook, the websocket bridge, and optionally a
// static client directory at the root.
func NewHTTPHandler(session *server.Session, cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	wsHandler := ws.NewHandler(session, ws.HandlerConfig{Logger: logger})

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	r.Get("/diagnostics", func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		payload := struct {
			Status     string `json:"status"`
			ServerTime int64  `json:"serverTime"`
			Session    any    `json:"session"`
			Rules      any    `json:"rules"`
			Telemetry  any    `json:"telemetry"`
			Heartbeat  int64  `json:"heartbeatMillis"`
		}{
			Status:     "ok",
			ServerTime: time.Now().UnixMilli(),
			Session:    session.DiagnosticsSnapshot(),
			Rules:      session.Rules(),
			Telemetry:  session.TelemetrySnapshot(),
			Heartbeat:  server.HeartbeatInterval().Milliseconds(),
		}

		data, err := json.Marshal(payload)
		if err != nil {
			httpError(w, "failed to encode", nethttp.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	r.Post("/world/reset", func(w nethttp.ResponseWriter, req *nethttp.Request) {
		session.Reset(req.Context())

		response := struct {
			Status string `json:"status"`
			Rules  any    `json:"rules"`
		}{
			Status: "ok",
			Rules:  session.Rules(),
		}
		data, err := json.Marshal(response)
		if err != nil {
			httpError(w, "failed to encode", nethttp.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	r.Get("/ws", wsHandler.Handle)

	if cfg.Observability.EnablePprofTrace {
		r.Mount("/debug", middleware.Profiler())
	}

	if cfg.ClientDir != "" {
		r.Handle("/*", nethttp.FileServer(nethttp.Dir(cfg.ClientDir)))
	}

	return r
}

func httpError(w nethttp.ResponseWriter, msg string, code int) {
	nethttp.Error(w, msg, code)
}
