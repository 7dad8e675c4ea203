package save

// Store is the durable blob layer behind the session. Implementations
// only move opaque bytes; encoding and validation live in the codec.
type Store interface {
	// Get returns the blob stored under key. The boolean reports whether
	// the key existed; absence is not an error.
	Get(key string) ([]byte, bool, error)
	// Set durably replaces the blob under key.
	Set(key string, blob []byte) error
	// Remove deletes the key. Removing an absent key succeeds.
	Remove(key string) error
	// Close releases the underlying resources.
	Close() error
	// Name identifies the backend in logs and diagnostics.
	Name() string
}
