package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRACKER_DATA_DIR", dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.StoreBackend != "file" {
		t.Errorf("StoreBackend = %q, want file", cfg.StoreBackend)
	}
	if cfg.StorePath != filepath.Join(dir, "usage.json") {
		t.Errorf("StorePath = %q", cfg.StorePath)
	}
	if cfg.EventsPath != filepath.Join(dir, "events.jsonl") {
		t.Errorf("EventsPath = %q", cfg.EventsPath)
	}
	if cfg.Namespace != "geminiTracker" {
		t.Errorf("Namespace = %q, want geminiTracker", cfg.Namespace)
	}
	if cfg.ObserveDelay != 50*time.Millisecond {
		t.Errorf("ObserveDelay = %v, want 50ms", cfg.ObserveDelay)
	}
	if cfg.HistoryDays != 30 {
		t.Errorf("HistoryDays = %d, want 30", cfg.HistoryDays)
	}
	if cfg.AlertThreshold != 0 {
		t.Errorf("AlertThreshold = %d, want 0 (disabled)", cfg.AlertThreshold)
	}
}

func TestLoad_SQLiteBackendDefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRACKER_DATA_DIR", dir)
	t.Setenv("TRACKER_STORE_BACKEND", "sqlite")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.StorePath != filepath.Join(dir, "usage.db") {
		t.Errorf("StorePath = %q, want usage.db under data dir", cfg.StorePath)
	}
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	t.Setenv("TRACKER_DATA_DIR", t.TempDir())
	t.Setenv("TRACKER_STORE_BACKEND", "redis")

	if _, err := Load(); err == nil {
		t.Error("unknown backend should be rejected")
	}
}

func TestLoad_Overrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRACKER_DATA_DIR", dir)
	t.Setenv("TRACKER_NAMESPACE", "myTracker")
	t.Setenv("TRACKER_TIMEZONE", "Asia/Jakarta")
	t.Setenv("TRACKER_OBSERVE_DELAY", "120ms")
	t.Setenv("TRACKER_HISTORY_DAYS", "7")
	t.Setenv("TRACKER_ALERT_THRESHOLD", "100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Namespace != "myTracker" {
		t.Errorf("Namespace = %q", cfg.Namespace)
	}
	if cfg.Timezone != "Asia/Jakarta" {
		t.Errorf("Timezone = %q", cfg.Timezone)
	}
	if cfg.ObserveDelay != 120*time.Millisecond {
		t.Errorf("ObserveDelay = %v", cfg.ObserveDelay)
	}
	if cfg.HistoryDays != 7 {
		t.Errorf("HistoryDays = %d", cfg.HistoryDays)
	}
	if cfg.AlertThreshold != 100 {
		t.Errorf("AlertThreshold = %d", cfg.AlertThreshold)
	}
}

func TestLoad_BareNumberDelayIsMilliseconds(t *testing.T) {
	t.Setenv("TRACKER_DATA_DIR", t.TempDir())
	t.Setenv("TRACKER_OBSERVE_DELAY", "75")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ObserveDelay != 75*time.Millisecond {
		t.Errorf("ObserveDelay = %v, want 75ms", cfg.ObserveDelay)
	}
}

func TestLoad_InvalidHistoryDaysFallsBack(t *testing.T) {
	t.Setenv("TRACKER_DATA_DIR", t.TempDir())
	t.Setenv("TRACKER_HISTORY_DAYS", "-5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HistoryDays != 30 {
		t.Errorf("HistoryDays = %d, want fallback 30", cfg.HistoryDays)
	}
}
