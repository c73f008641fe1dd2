// Package store owns the persisted per-day usage counters and the panel
// flags. It is the single source of truth: every mutation lands in the
// key-value backend synchronously before any view reflects it, and loading
// self-heals structural damage instead of failing.
package store

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/daykey"
	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/kv"
	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/logger"
)

// Key suffixes under the configured namespace. The full key is
// namespace + suffix, e.g. "geminiTrackerCountsDaily".
const (
	countsSuffix  = "CountsDaily"
	visibleSuffix = "UIVisible"
	devModeSuffix = "DevModeEnabled"
)

// ErrInvalidCount is returned by SetCount when the value is not a
// non-negative integer. The store is left unchanged; the caller re-displays
// the previous value.
var ErrInvalidCount = fmt.Errorf("count must be a non-negative integer")

// Counts maps model identities to usage counts for one day.
type Counts map[string]int

// Anomaly describes one structural defect repaired while loading.
type Anomaly struct {
	Day    string
	Field  string
	Reason string
}

// UsageStore is the daily usage counter store.
type UsageStore struct {
	mu     sync.Mutex
	kv     kv.Store
	ns     string
	counts map[daykey.Key]Counts
	loaded bool
}

// New creates a store over the given key-value backend. Data is loaded
// lazily on first read.
func New(backend kv.Store, namespace string) *UsageStore {
	return &UsageStore{
		kv: backend,
		ns: namespace,
	}
}

// Namespace returns the configured key namespace.
func (s *UsageStore) Namespace() string { return s.ns }

func (s *UsageStore) countsKey() string  { return s.ns + countsSuffix }
func (s *UsageStore) visibleKey() string { return s.ns + visibleSuffix }
func (s *UsageStore) devModeKey() string { return s.ns + devModeSuffix }

// ensureLoadedLocked lazily loads counts from the backend. Caller holds mu.
func (s *UsageStore) ensureLoadedLocked() {
	if s.loaded {
		return
	}
	s.loaded = true

	s.counts = make(map[daykey.Key]Counts)

	raw, ok, err := s.kv.Get(s.countsKey())
	if err != nil {
		logger.Error("failed to read usage counts, starting empty", "error", err)
		return
	}
	if !ok {
		return
	}

	counts, anomalies := decodeCounts(raw)
	s.counts = counts

	for _, a := range anomalies {
		logger.Warn("repaired corrupt usage entry",
			"day", a.Day, "field", a.Field, "reason", a.Reason)
	}
	if len(anomalies) > 0 {
		// Persist the repaired form so the damage is not re-reported on
		// every start.
		s.saveLocked()
	}
}

// decodeCounts parses the persisted two-level mapping, repairing rather
// than rejecting: malformed day values become empty buckets, malformed
// counts become 0, unparseable day keys are dropped. A completely
// unparseable blob yields an empty store.
func decodeCounts(raw []byte) (map[daykey.Key]Counts, []Anomaly) {
	counts := make(map[daykey.Key]Counts)
	var anomalies []Anomaly

	var days map[string]json.RawMessage
	if err := json.Unmarshal(raw, &days); err != nil {
		anomalies = append(anomalies, Anomaly{Field: "root", Reason: err.Error()})
		return counts, anomalies
	}

	for day, rawDay := range days {
		key, err := daykey.Normalize(day)
		if err != nil {
			anomalies = append(anomalies, Anomaly{Day: day, Reason: "not a calendar date"})
			continue
		}

		bucket := make(Counts)

		var rawCounts map[string]json.RawMessage
		if err := json.Unmarshal(rawDay, &rawCounts); err != nil {
			anomalies = append(anomalies, Anomaly{Day: day, Reason: "day value is not an object"})
			counts[key] = bucket
			continue
		}

		for identity, rawCount := range rawCounts {
			var n float64
			if err := json.Unmarshal(rawCount, &n); err != nil || n < 0 || n != math.Trunc(n) {
				anomalies = append(anomalies, Anomaly{Day: day, Field: identity, Reason: "count is not a non-negative integer"})
				bucket[identity] = 0
				continue
			}
			bucket[identity] = int(n)
		}

		counts[key] = bucket
	}

	return counts, anomalies
}

// saveLocked serializes the counts and writes them through the backend.
// Persistence is best-effort: a failed write is logged and the in-memory
// state stays authoritative for the session. Caller holds mu.
func (s *UsageStore) saveLocked() {
	out := make(map[string]Counts, len(s.counts))
	for day, bucket := range s.counts {
		out[string(day)] = bucket
	}

	data, err := json.Marshal(out)
	if err != nil {
		logger.Error("failed to marshal usage counts", "error", err)
		return
	}

	if err := s.kv.Set(s.countsKey(), data); err != nil {
		logger.Error("failed to persist usage counts", "error", err)
	}
}

// GetDay returns the day's counts with every known identity materialized at
// 0 or above; discovered identities stored for that day are preserved.
func (s *UsageStore) GetDay(key daykey.Key, known []string) Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked()

	out := make(Counts, len(known))
	for _, identity := range known {
		out[identity] = 0
	}
	for identity, n := range s.counts[key] {
		out[identity] = n
	}
	return out
}

// Increment adds exactly one to the identity's counter for the day,
// creating buckets as needed, and persists synchronously. It returns the
// new count.
func (s *UsageStore) Increment(key daykey.Key, identity string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked()

	bucket, ok := s.counts[key]
	if !ok {
		bucket = make(Counts)
		s.counts[key] = bucket
	}
	bucket[identity]++

	s.saveLocked()
	return bucket[identity]
}

// SetCount overwrites the identity's counter for the day. Negative values
// are rejected with ErrInvalidCount and leave the store untouched.
func (s *UsageStore) SetCount(key daykey.Key, identity string, value int) error {
	if value < 0 {
		return ErrInvalidCount
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked()

	bucket, ok := s.counts[key]
	if !ok {
		bucket = make(Counts)
		s.counts[key] = bucket
	}
	bucket[identity] = value

	s.saveLocked()
	return nil
}

// ParseCount validates edit-field input as a non-negative integer.
func ParseCount(input string) (int, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 0, ErrInvalidCount
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil || n < 0 {
		return 0, ErrInvalidCount
	}
	return n, nil
}

// ResetDay clears all counts for the given day only and persists. Other
// days are untouched. Confirmation is the caller's responsibility.
func (s *UsageStore) ResetDay(key daykey.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked()

	if _, ok := s.counts[key]; !ok {
		return
	}
	delete(s.counts, key)
	s.saveLocked()
}

// Total returns the sum of all counts for the day.
func (s *UsageStore) Total(key daykey.Key) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked()

	total := 0
	for _, n := range s.counts[key] {
		total += n
	}
	return total
}

// Days returns every day key with at least one stored entry, sorted
// ascending.
func (s *UsageStore) Days() []daykey.Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked()

	days := make([]daykey.Key, 0, len(s.counts))
	for day := range s.counts {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}

// Reload discards the in-memory counts and re-reads the backend. Used when
// the backing file changed externally.
func (s *UsageStore) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = false
	s.ensureLoadedLocked()
}

// Visible reads the persisted panel-visibility flag. Defaults to true.
func (s *UsageStore) Visible() bool {
	return s.boolFlag(s.visibleKey(), true)
}

// SetVisible persists the panel-visibility flag.
func (s *UsageStore) SetVisible(v bool) {
	s.setBoolFlag(s.visibleKey(), v)
}

// DevMode reads the persisted edit-mode flag. Defaults to false.
func (s *UsageStore) DevMode() bool {
	return s.boolFlag(s.devModeKey(), false)
}

// SetDevMode persists the edit-mode flag.
func (s *UsageStore) SetDevMode(v bool) {
	s.setBoolFlag(s.devModeKey(), v)
}

func (s *UsageStore) boolFlag(key string, def bool) bool {
	raw, ok, err := s.kv.Get(key)
	if err != nil {
		logger.Error("failed to read flag", "key", key, "error", err)
		return def
	}
	if !ok {
		return def
	}

	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		logger.Warn("flag is not a boolean, using default", "key", key)
		return def
	}
	return v
}

func (s *UsageStore) setBoolFlag(key string, v bool) {
	data, _ := json.Marshal(v)
	if err := s.kv.Set(key, data); err != nil {
		logger.Error("failed to persist flag", "key", key, "error", err)
	}
}
