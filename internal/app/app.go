// Package app wires the session, the persistence backend, the logging
// router, and the HTTP surface into a runnable server process.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	server "merge-and-wander/server"
	servernet "merge-and-wander/server/internal/net"
	"merge-and-wander/server/internal/observability"
	"merge-and-wander/server/internal/save"
	"merge-and-wander/server/internal/save/boltstore"
	"merge-and-wander/server/internal/save/sqlitestore"
	"merge-and-wander/server/internal/world"
	"merge-and-wander/server/logging"
	loggingSinks "merge-and-wander/server/logging/sinks"
)

// Config carries process-level settings. Environment variables override
// the zero values; see Run.
type Config struct {
	Addr          string
	ClientDir     string
	Logger        *log.Logger
	Observability observability.Config
}

// Run builds the full stack and serves HTTP until ctx is canceled or the
// listener fails. Cancellation drains in-flight requests before returning.
func Run(ctx context.Context, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	addr := cfg.Addr
	if addr == "" {
		addr = ":8080"
	}
	if raw := os.Getenv("WANDER_ADDR"); raw != "" {
		addr = raw
	}

	router, err := buildLogRouter(logger)
	if err != nil {
		return fmt.Errorf("failed to construct logging router: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			logger.Printf("failed to close logging router: %v", cerr)
		}
	}()

	rules := LoadRules(logger)

	store, err := OpenStore()
	if err != nil {
		return fmt.Errorf("failed to open save store: %w", err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Printf("failed to close save store: %v", cerr)
		}
	}()

	session := server.NewSession(server.SessionConfig{
		Rules:     rules,
		Store:     store,
		SaveKey:   os.Getenv("WANDER_SAVE_KEY"),
		Publisher: router,
		Logger:    logger,
	})
	defer session.Close()

	observabilityCfg := observability.FromEnv(cfg.Observability, logger)

	clientDir := cfg.ClientDir
	if raw := os.Getenv("WANDER_CLIENT_DIR"); raw != "" {
		clientDir = raw
	}

	handler := servernet.NewHTTPHandler(session, servernet.HTTPHandlerConfig{
		ClientDir:     clientDir,
		Logger:        logger,
		Observability: observabilityCfg,
	})

	srv := &http.Server{Addr: addr, Handler: handler}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Printf("server listening on %s (store=%s seed=%q)", addr, store.Name(), rules.Seed)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	}
}

// buildLogRouter assembles the event router: a console sink always, a
// JSON-lines file sink when WANDER_LOG_FILE points somewhere writable.
func buildLogRouter(logger *log.Logger) (*logging.Router, error) {
	cfg := logging.DefaultConfig()
	sinks := []logging.NamedSink{
		{Name: "console", Sink: loggingSinks.NewConsoleSink(os.Stdout, cfg.Console)},
	}
	if path := os.Getenv("WANDER_LOG_FILE"); path != "" {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			logger.Printf("failed to open log file %s: %v", path, err)
		} else {
			cfg.EnabledSinks = append(cfg.EnabledSinks, "json")
			sinks = append(sinks, logging.NamedSink{
				Name: "json",
				Sink: loggingSinks.NewJSON(file, cfg.JSON.FlushInterval),
			})
		}
	}
	return logging.NewRouter(nil, cfg, sinks)
}

// LoadRules builds the world rules: defaults, then the optional YAML
// file, then env overrides. Bad values fall back with a log line rather
// than aborting startup.
func LoadRules(logger *log.Logger) world.Rules {
	rules := world.DefaultRules()
	if path := os.Getenv("WANDER_RULES_FILE"); path != "" {
		loaded, err := world.LoadRulesFile(path)
		if err != nil {
			logger.Printf("ignoring rules file: %v", err)
		} else {
			rules = loaded
		}
	}
	if raw := os.Getenv("WANDER_SEED"); raw != "" {
		rules.Seed = raw
	}
	if raw := os.Getenv("WANDER_WIN_TARGET"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			rules.WinTarget = value
		} else {
			logger.Printf("invalid WANDER_WIN_TARGET=%q: %v", raw, err)
		}
	}
	if raw := os.Getenv("WANDER_RADIUS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			rules.InteractionRadius = value
		} else {
			logger.Printf("invalid WANDER_RADIUS=%q: %v", raw, err)
		}
	}
	if raw := os.Getenv("WANDER_SPAWN_PROBABILITY"); raw != "" {
		if value, err := strconv.ParseFloat(raw, 64); err == nil {
			rules.SpawnProbability = value
		} else {
			logger.Printf("invalid WANDER_SPAWN_PROBABILITY=%q: %v", raw, err)
		}
	}
	return rules.Normalized()
}

// OpenStore picks the persistence backend named by WANDER_STORE: bolt
// (default), sqlite, or memory. Durable stores live under
// WANDER_DATA_DIR, ./data when unset. The caller owns the returned
// store and closes it.
func OpenStore() (save.Store, error) {
	backend := os.Getenv("WANDER_STORE")
	if backend == "" {
		backend = "bolt"
	}

	dataDir := os.Getenv("WANDER_DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	switch backend {
	case "memory":
		return save.NewMemoryStore(), nil
	case "bolt":
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		return boltstore.Open(filepath.Join(dataDir, "wander.db"))
	case "sqlite":
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		return sqlitestore.Open(filepath.Join(dataDir, "wander.sqlite"))
	default:
		return nil, fmt.Errorf("unknown WANDER_STORE %q", backend)
	}
}
