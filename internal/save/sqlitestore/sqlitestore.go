// Package sqlitestore persists save blobs as plain rows in a SQLite file.
// Blobs stay uncompressed so the save is inspectable with the sqlite3 CLI.
package sqlitestore

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"merge-and-wander/server/internal/save"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS saves (
	key TEXT PRIMARY KEY,
	blob BLOB NOT NULL,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

const upsertSQL = `
INSERT INTO saves (key, blob, updated_at)
VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET
	blob = excluded.blob,
	updated_at = CURRENT_TIMESTAMP;
`

// Store is a durable save.Store backed by one SQLite database file.
type Store struct {
	db *sql.DB
}

var _ save.Store = (*Store)(nil)

// Open opens or creates the database at path and ensures the saves table
// exists. WAL mode keeps readers from blocking the save writer.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite store %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite store %s: %w", path, err)
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create saves table: %w", err)
	}
	return &Store{db: db}, nil
}

// Get returns the blob stored under key.
func (s *Store) Get(key string) ([]byte, bool, error) {
	var blob []byte
	err := s.db.QueryRow("SELECT blob FROM saves WHERE key = ?", key).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read save %q: %w", key, err)
	}
	return blob, true, nil
}

// Set replaces the blob under key in a single upsert.
func (s *Store) Set(key string, blob []byte) error {
	if _, err := s.db.Exec(upsertSQL, key, blob); err != nil {
		return fmt.Errorf("write save %q: %w", key, err)
	}
	return nil
}

// Remove deletes the key. Deleting an absent key succeeds.
func (s *Store) Remove(key string) error {
	if _, err := s.db.Exec("DELETE FROM saves WHERE key = ?", key); err != nil {
		return fmt.Errorf("remove save %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Name identifies the backend.
func (s *Store) Name() string { return "sqlite" }
