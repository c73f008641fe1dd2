// Package config contains everything related to configuration
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/kv"
)

// Config holds the application configuration.
type Config struct {
	// StoreBackend selects the persistence backend: "file" or "sqlite".
	StoreBackend string
	// StorePath is the key-value store location (JSON file or SQLite db).
	StorePath string
	// EventsPath is the JSONL detection events file written by the
	// browser-side observer.
	EventsPath string
	// RegistryPath optionally overrides the built-in model registry (YAML).
	RegistryPath string
	// Namespace prefixes every persisted key.
	Namespace string
	// Timezone names the fixed reference timezone for day boundaries.
	// Empty means UTC.
	Timezone string
	// ObserveDelay is the pause between a detection event and the label
	// read that commits it.
	ObserveDelay time.Duration
	// HistoryDays is the history chart window.
	HistoryDays int
	// AlertThreshold triggers a desktop notification when a day's total
	// crosses it. Zero disables alerts.
	AlertThreshold int
	// Debug enables debug logging.
	Debug bool
}

// Default values
const (
	defaultNamespace    = "geminiTracker"
	defaultObserveDelay = 50 * time.Millisecond
	defaultHistoryDays  = 30
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	dataDir := getEnvString("TRACKER_DATA_DIR", defaultDataDir())
	backend := getEnvString("TRACKER_STORE_BACKEND", kv.BackendFile)

	defaultStore := filepath.Join(dataDir, "usage.json")
	if backend == kv.BackendSQLite {
		defaultStore = filepath.Join(dataDir, "usage.db")
	}

	cfg := &Config{
		StoreBackend:   backend,
		StorePath:      getEnvString("TRACKER_STORE_PATH", defaultStore),
		EventsPath:     getEnvString("TRACKER_EVENTS_PATH", filepath.Join(dataDir, "events.jsonl")),
		RegistryPath:   getEnvString("TRACKER_REGISTRY_PATH", ""),
		Namespace:      getEnvString("TRACKER_NAMESPACE", defaultNamespace),
		Timezone:       getEnvString("TRACKER_TIMEZONE", ""),
		ObserveDelay:   getEnvDuration("TRACKER_OBSERVE_DELAY", defaultObserveDelay),
		HistoryDays:    getEnvInt("TRACKER_HISTORY_DAYS", defaultHistoryDays),
		AlertThreshold: getEnvInt("TRACKER_ALERT_THRESHOLD", 0),
		Debug:          getEnvBool("TRACKER_DEBUG", false),
	}

	if cfg.StoreBackend != kv.BackendFile && cfg.StoreBackend != kv.BackendSQLite {
		return nil, fmt.Errorf("TRACKER_STORE_BACKEND must be %q or %q, got %q",
			kv.BackendFile, kv.BackendSQLite, cfg.StoreBackend)
	}

	if cfg.HistoryDays < 1 {
		cfg.HistoryDays = defaultHistoryDays
	}

	if err := ensureDir(filepath.Dir(cfg.StorePath)); err != nil {
		return nil, err
	}
	if err := ensureDir(filepath.Dir(cfg.EventsPath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "gemini-usage-tracker", ".env"),
			filepath.Join(home, ".gemini-usage-tracker", ".env"),
		)
	}

	return paths
}

// defaultDataDir returns the default directory for tracker state.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "gemini-usage-tracker")
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the
// default. Accepts values like "50ms", "1s"; bare numbers are milliseconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if ms, err := strconv.Atoi(value); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns the default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
