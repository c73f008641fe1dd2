// Package kv persists the tracker's key-value state. Every persisted datum
// is a raw JSON value under a namespaced string key, matching the storage
// contract of the browser-side observer so both sides can share a dump.
//
// Two backends implement the same interface: a single JSON file with atomic
// replace-on-write, and a SQLite database for installations that prefer it.
package kv

import (
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Store is the persisted key-value boundary.
type Store interface {
	// Get returns the raw JSON value for key. The second return is false
	// when the key has never been written.
	Get(key string) ([]byte, bool, error)

	// Set writes the raw JSON value for key, durably before returning.
	Set(key string, value []byte) error

	// Delete removes key. Deleting an absent key is a no-op.
	Delete(key string) error

	// Close releases backend resources.
	Close() error
}

// Open creates the named backend rooted at path.
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendFile, "":
		return OpenFile(path)
	case BackendSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
