package kv

import (
	"os"
	"path/filepath"
	"testing"
)

// openBackends returns one store per backend, each rooted in a temp dir.
func openBackends(t *testing.T) map[string]Store {
	t.Helper()

	dir := t.TempDir()

	file, err := OpenFile(filepath.Join(dir, "state.json"))
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}

	sqlite, err := OpenSQLite(filepath.Join(dir, "state.db"))
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}

	return map[string]Store{"file": file, "sqlite": sqlite}
}

func TestStore_SetGetDelete(t *testing.T) {
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Close()

			if _, ok, err := s.Get("missing"); err != nil || ok {
				t.Errorf("Get(missing) = ok=%v err=%v, want absent", ok, err)
			}

			if err := s.Set("k", []byte(`{"a":1}`)); err != nil {
				t.Fatalf("Set failed: %v", err)
			}

			v, ok, err := s.Get("k")
			if err != nil || !ok {
				t.Fatalf("Get(k) = ok=%v err=%v, want present", ok, err)
			}
			if string(v) != `{"a":1}` {
				t.Errorf("Get(k) = %s, want {\"a\":1}", v)
			}

			if err := s.Set("k", []byte(`true`)); err != nil {
				t.Fatalf("overwrite failed: %v", err)
			}
			v, _, _ = s.Get("k")
			if string(v) != "true" {
				t.Errorf("Get(k) after overwrite = %s, want true", v)
			}

			if err := s.Delete("k"); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if _, ok, _ := s.Get("k"); ok {
				t.Error("key should be gone after Delete")
			}
			if err := s.Delete("k"); err != nil {
				t.Errorf("deleting an absent key should be a no-op, got %v", err)
			}
		})
	}
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set("counts", []byte(`{"2024-06-01":{"2.5 Pro":3}}`)); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()

	v, ok, err := s2.Get("counts")
	if err != nil || !ok {
		t.Fatalf("Get after reopen = ok=%v err=%v", ok, err)
	}
	if string(v) != `{"2024-06-01":{"2.5 Pro":3}}` {
		t.Errorf("Get after reopen = %s", v)
	}
}

func TestFileStore_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("not-json"), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := OpenFile(path)
	if err != nil {
		t.Fatalf("corrupt file must not fail open: %v", err)
	}
	defer s.Close()

	if _, ok, _ := s.Get("anything"); ok {
		t.Error("corrupt file should yield an empty store")
	}

	// The original bytes are preserved for recovery.
	if _, err := os.Stat(path + ".corrupt"); err != nil {
		t.Errorf("corrupt snapshot not preserved: %v", err)
	}
}

func TestFileStore_RejectsInvalidJSON(t *testing.T) {
	s, err := OpenFile(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.Set("k", []byte("{broken")); err == nil {
		t.Error("Set with invalid JSON should fail")
	}
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set("uiVisible", []byte("true")); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s2, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()

	v, ok, err := s2.Get("uiVisible")
	if err != nil || !ok {
		t.Fatalf("Get after reopen = ok=%v err=%v", ok, err)
	}
	if string(v) != "true" {
		t.Errorf("Get after reopen = %s, want true", v)
	}
}

func TestOpen_BackendSelection(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(BackendFile, filepath.Join(dir, "a.json"))
	if err != nil {
		t.Fatalf("Open(file) failed: %v", err)
	}
	s.Close()

	s, err = Open("", filepath.Join(dir, "b.json"))
	if err != nil {
		t.Fatalf("Open(\"\") should default to file backend: %v", err)
	}
	s.Close()

	s, err = Open(BackendSQLite, filepath.Join(dir, "c.db"))
	if err != nil {
		t.Fatalf("Open(sqlite) failed: %v", err)
	}
	s.Close()

	if _, err := Open("redis", "unused"); err == nil {
		t.Error("unknown backend should be rejected")
	}
}
