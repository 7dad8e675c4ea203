// Command wander is a playable terminal client. It runs the same
// session the server hosts, rendered with tcell instead of a browser
// map, against the same save stores and rules configuration.
package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	server "merge-and-wander/server"
	"merge-and-wander/server/internal/app"
	"merge-and-wander/server/internal/term"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, closeLogger := newLogger()
	defer closeLogger()

	rules := app.LoadRules(logger)
	store, err := app.OpenStore()
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer store.Close()

	session := server.NewSession(server.SessionConfig{
		Rules:   rules,
		Store:   store,
		SaveKey: os.Getenv("WANDER_SAVE_KEY"),
		Logger:  logger,
	})
	defer session.Close()

	if err := term.Run(ctx, term.Config{Session: session, Logger: logger}); err != nil {
		log.Fatalf("%v", err)
	}
}

// newLogger keeps log output off the screen tcell owns: discarded by
// default, appended to WANDER_LOG_FILE when set.
func newLogger() (*log.Logger, func()) {
	path := os.Getenv("WANDER_LOG_FILE")
	if path == "" {
		return log.New(io.Discard, "", 0), func() {}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return log.New(io.Discard, "", 0), func() {}
	}
	return log.New(file, "", log.LstdFlags), func() { file.Close() }
}
