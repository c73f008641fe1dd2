// Package daykey derives and validates the calendar-day bucket keys that
// scope all usage counters. Keys are formatted as YYYY-MM-DD in a single
// fixed reference timezone so they sort lexicographically in date order.
package daykey

import (
	"fmt"
	"sync"
	"time"

	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/logger"
)

// Layout is the canonical day key format.
const Layout = "2006-01-02"

// ErrInvalidDayKey is returned when an externally supplied key is not a
// well-formed calendar date.
var ErrInvalidDayKey = fmt.Errorf("invalid day key")

// Key identifies one calendar day in the reference timezone.
type Key string

// String returns the key as a plain string.
func (k Key) String() string { return string(k) }

// Time parses the key back into a midnight timestamp in the given location.
func (k Key) Time(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, string(k), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDayKey, k)
	}
	return t, nil
}

// Clock abstracts time.Now so day boundaries are testable.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time { return time.Now() }

// Keyer computes day keys for "now" in a fixed reference location.
// The zero timezone name means UTC. If the named timezone cannot be
// resolved the keyer degrades to local time rather than failing; the
// discrepancy is logged once.
type Keyer struct {
	clock    Clock
	loc      *time.Location
	degraded bool
	warnOnce sync.Once
}

// NewKeyer builds a Keyer for the named timezone. An empty name selects UTC.
func NewKeyer(clock Clock, timezone string) *Keyer {
	if clock == nil {
		clock = SystemClock{}
	}

	k := &Keyer{clock: clock, loc: time.UTC}
	if timezone == "" {
		return k
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		k.loc = time.Local
		k.degraded = true
		return k
	}
	k.loc = loc
	return k
}

// Location returns the reference location in effect.
func (k *Keyer) Location() *time.Location { return k.loc }

// Degraded reports whether the keyer fell back to local time because the
// configured timezone could not be resolved.
func (k *Keyer) Degraded() bool { return k.degraded }

// Current returns today's key in the reference timezone. It never fails
// and is safe for concurrent use.
func (k *Keyer) Current() Key {
	if k.degraded {
		k.warnOnce.Do(func() {
			logger.Warn("reference timezone unavailable, using local time for day boundaries")
		})
	}
	return Key(k.clock.Now().In(k.loc).Format(Layout))
}

// IsFuture reports whether key denotes a day after today.
func (k *Keyer) IsFuture(key Key) bool {
	return string(key) > string(k.Current())
}

// Normalize validates an externally supplied day key and returns its
// canonical form.
func Normalize(input string) (Key, error) {
	t, err := time.Parse(Layout, input)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDayKey, input)
	}
	// Round-trip guards against inputs Parse tolerates but that are not in
	// canonical zero-padded form.
	canonical := t.Format(Layout)
	if canonical != input {
		return "", fmt.Errorf("%w: %q", ErrInvalidDayKey, input)
	}
	return Key(canonical), nil
}

// Prev returns the key for the preceding calendar day.
func Prev(key Key) Key { return shift(key, -1) }

// Next returns the key for the following calendar day.
func Next(key Key) Key { return shift(key, 1) }

func shift(key Key, days int) Key {
	t, err := key.Time(time.UTC)
	if err != nil {
		return key
	}
	return Key(t.AddDate(0, 0, days).Format(Layout))
}

// LastN returns the n keys ending at end, oldest first.
func LastN(end Key, n int) []Key {
	if n <= 0 {
		return nil
	}
	keys := make([]Key, n)
	k := end
	for i := n - 1; i >= 0; i-- {
		keys[i] = k
		k = Prev(k)
	}
	return keys
}
