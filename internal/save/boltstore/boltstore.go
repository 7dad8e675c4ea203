// Package boltstore persists save blobs in a single bbolt file. Blobs are
// lz4-compressed on the way in and transparently decompressed on the way
// out, so the codec above it only ever sees plain JSON.
package boltstore

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"

	bolt "github.com/coreos/bbolt"
	"github.com/pierrec/lz4/v4"

	"merge-and-wander/server/internal/save"
)

var bucketSaves = []byte("saves")

var bufferPool = sync.Pool{
	New: func() interface{} {
		return new(bytes.Buffer)
	},
}

// Store is a durable save.Store backed by one bbolt database file.
type Store struct {
	db *bolt.DB
}

var _ save.Store = (*Store)(nil)

// Open opens or creates the database at path and ensures the saves bucket
// exists.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt store %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSaves)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create saves bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Get returns the decompressed blob stored under key.
func (s *Store) Get(key string) ([]byte, bool, error) {
	var compressed []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketSaves).Get([]byte(key))
		if raw != nil {
			compressed = make([]byte, len(raw))
			copy(compressed, raw)
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("read save %q: %w", key, err)
	}
	if compressed == nil {
		return nil, false, nil
	}
	blob, err := decompress(compressed)
	if err != nil {
		return nil, false, fmt.Errorf("decompress save %q: %w", key, err)
	}
	return blob, true, nil
}

// Set compresses blob and durably replaces the value under key. The write
// commits in one transaction.
func (s *Store) Set(key string, blob []byte) error {
	compressed := compress(blob)
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSaves).Put([]byte(key), compressed)
	})
	if err != nil {
		return fmt.Errorf("write save %q: %w", key, err)
	}
	return nil
}

// Remove deletes the key. Deleting an absent key succeeds.
func (s *Store) Remove(key string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSaves).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("remove save %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Name identifies the backend.
func (s *Store) Name() string { return "bolt" }

func compress(src []byte) []byte {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)
	zw := lz4.NewWriter(buf)
	zw.Write(src)
	zw.Close()
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out
}

func decompress(src []byte) ([]byte, error) {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)
	zr := lz4.NewReader(bytes.NewReader(src))
	if _, err := io.Copy(buf, zr); err != nil {
		return nil, err
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}
