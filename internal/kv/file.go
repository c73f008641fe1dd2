package kv

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/logger"
)

// FileStore keeps all keys in one JSON object file. Writes go through a
// temp file and rename so a crash mid-write leaves the previous snapshot
// intact.
type FileStore struct {
	mu     sync.Mutex
	path   string
	values map[string]json.RawMessage
	// lastData is the byte image of the last read or flush, used by Reload
	// to tell external edits apart from this process's own writes.
	lastData []byte
}

// OpenFile opens (or creates) a file-backed store at path.
func OpenFile(path string) (*FileStore, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	s := &FileStore{
		path:   path,
		values: make(map[string]json.RawMessage),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}

	if err := json.Unmarshal(data, &s.values); err != nil {
		// A corrupt file must not block startup. Start empty; the old
		// bytes are kept aside for manual recovery.
		logger.Warn("store file is not valid JSON, starting empty", "path", path, "error", err)
		if backupErr := os.WriteFile(path+".corrupt", data, 0o600); backupErr != nil {
			logger.Error("failed to preserve corrupt store file", "error", backupErr)
		}
		s.values = make(map[string]json.RawMessage)
		return s, nil
	}

	s.lastData = data
	return s, nil
}

// Reload re-reads the backing file if another process changed it. It
// reports whether the contents differed from the last known state; a write
// this store made itself is not a change.
func (s *FileStore) Reload() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to re-read store file: %w", err)
	}

	if bytes.Equal(data, s.lastData) {
		return false, nil
	}

	values := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &values); err != nil {
		// Keep the in-memory state authoritative over a half-written edit.
		return false, fmt.Errorf("store file is not valid JSON: %w", err)
	}

	s.values = values
	s.lastData = data
	return true, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

// Get returns the raw value for key.
func (s *FileStore) Get(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Set stores value under key and flushes the whole file.
func (s *FileStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !json.Valid(value) {
		return fmt.Errorf("value for key %q is not valid JSON", key)
	}

	v := make(json.RawMessage, len(value))
	copy(v, value)
	s.values[key] = v

	return s.flushLocked()
}

// Delete removes key and flushes.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	return s.flushLocked()
}

// flushLocked writes the full map via temp file + rename. Caller holds mu.
func (s *FileStore) flushLocked() error {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temp store file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		if removeErr := os.Remove(tmp); removeErr != nil {
			logger.Error("failed to remove temp store file", "error", removeErr)
		}
		return fmt.Errorf("failed to replace store file: %w", err)
	}

	s.lastData = data
	return nil
}

// Close is a no-op for the file backend; every Set is already durable.
func (s *FileStore) Close() error { return nil }
