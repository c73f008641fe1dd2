// Package trigger converts detection events from the chat surface into
// usage increments. Each event runs an observe-then-commit cycle: wait one
// short observation delay so the surface's own label update can land, read
// the current label, resolve it, record. Events are never coalesced.
package trigger

import (
	"time"

	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/logger"
	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/registry"
)

// Kind discriminates detection events.
type Kind string

const (
	// KindSubmit is a prompt submission; the model identity is resolved
	// from the current label.
	KindSubmit Kind = "submit"
	// KindConfirm is the research confirmation action; it always commits
	// the fixed Deep Research identity and never consults the resolver.
	KindConfirm Kind = "confirm"
	// KindModel carries a label update from the surface's model selector.
	// It records nothing by itself.
	KindModel Kind = "model"
)

// Event is one line of the detection stream.
type Event struct {
	Kind     Kind   `json:"kind"`
	Label    string `json:"label,omitempty"`
	Disabled bool   `json:"disabled,omitempty"`
	TS       string `json:"ts,omitempty"`
}

// LabelSource is the read-only capability "what does the model selector say
// right now". An empty string means the label could not be obtained.
type LabelSource interface {
	CurrentLabel() string
}

// Recorder receives resolved identities for the current day.
type Recorder interface {
	RecordUsage(identity string)
}

// Scheduler abstracts the observation delay so tests can run it
// synchronously.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// TimerScheduler is the production Scheduler backed by time.AfterFunc.
type TimerScheduler struct{}

// AfterFunc schedules f after d.
func (TimerScheduler) AfterFunc(d time.Duration, f func()) { time.AfterFunc(d, f) }

// DefaultObserveDelay is long enough for the surface to finish updating its
// label after a submission, short enough not to visibly lag the counter.
const DefaultObserveDelay = 50 * time.Millisecond

// Engine runs the observe-then-commit protocol.
type Engine struct {
	labels   LabelSource
	resolver *registry.Registry
	recorder Recorder
	sched    Scheduler
	delay    time.Duration
}

// NewEngine builds an engine. A nil scheduler selects real timers; a
// non-positive delay selects the default.
func NewEngine(labels LabelSource, resolver *registry.Registry, recorder Recorder, sched Scheduler, delay time.Duration) *Engine {
	if sched == nil {
		sched = TimerScheduler{}
	}
	if delay <= 0 {
		delay = DefaultObserveDelay
	}
	return &Engine{
		labels:   labels,
		resolver: resolver,
		recorder: recorder,
		sched:    sched,
		delay:    delay,
	}
}

// Fire handles one detection event. Disabled controls do not qualify.
// Rapid successive events each get their own cycle.
func (e *Engine) Fire(ev Event) {
	if ev.Disabled {
		logger.Debug("ignoring event from disabled control", "kind", ev.Kind)
		return
	}

	switch ev.Kind {
	case KindSubmit:
		e.sched.AfterFunc(e.delay, e.commitSubmit)
	case KindConfirm:
		e.recorder.RecordUsage(registry.DeepResearchIdentity)
	case KindModel:
		// Label updates are consumed by the LabelSource, nothing to do.
	default:
		logger.Warn("unknown detection event kind", "kind", ev.Kind)
	}
}

// commitSubmit is the commit phase: read, resolve, record. A missing label
// aborts the cycle without incrementing anything.
func (e *Engine) commitSubmit() {
	label := e.labels.CurrentLabel()

	identity, err := e.resolver.Resolve(label)
	if err != nil {
		logger.Debug("no model label observable, usage not recorded")
		return
	}

	e.recorder.RecordUsage(identity)
}
