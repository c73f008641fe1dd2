// Package services provides service orchestration for the TUI.
package services

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"github.com/gen2brain/beeep"
	"github.com/robfig/cron/v3"

	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/config"
	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/daykey"
	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/kv"
	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/logger"
	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/registry"
	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/store"
	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/trigger"
)

// rolloverSpec fires at midnight in the reference timezone.
const rolloverSpec = "0 0 * * *"

// storeDebounce coalesces bursts of file events from external edits.
const storeDebounce = 100 * time.Millisecond

type (
	// UsageRecordedEvent is emitted after a detection trigger or manual edit
	// incremented a counter.
	UsageRecordedEvent struct {
		Day      daykey.Key
		Identity string
		Count    int
		DayTotal int
	}

	// StoreChangedEvent is emitted when the backing store file was modified
	// outside this process and the counters were reloaded.
	StoreChangedEvent struct{}

	// DayRolloverEvent is emitted when midnight passes in the reference
	// timezone and counters start accruing under a new day key.
	DayRolloverEvent struct {
		Day daykey.Key
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (UsageRecordedEvent) isServiceEvent() {}
func (StoreChangedEvent) isServiceEvent()  {}
func (DayRolloverEvent) isServiceEvent()   {}
func (ErrorEvent) isServiceEvent()         {}

// Manager wires the detection tail, the trigger engine, the usage store and
// the day rollover together, and routes their events to subscribers.
type Manager struct {
	mu          sync.RWMutex
	cfg         *config.Config
	backend     kv.Store
	store       *store.UsageStore
	registry    *registry.Registry
	keyer       *daykey.Keyer
	engine      *trigger.Engine
	tail        *trigger.Tail
	cron        *cron.Cron
	watcher     *fsnotify.Watcher
	eventChan   chan ServiceEvent
	stopChan    chan struct{}
	subscribers []chan<- ServiceEvent
	alertedDays map[daykey.Key]bool
}

// NewManager creates a new service manager.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{
		cfg:         cfg,
		eventChan:   make(chan ServiceEvent, 100),
		stopChan:    make(chan struct{}),
		alertedDays: make(map[daykey.Key]bool),
	}

	var err error
	m.backend, err = kv.Open(cfg.StoreBackend, cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open usage store: %w", err)
	}

	m.store = store.New(m.backend, cfg.Namespace)

	m.registry, err = registry.LoadFile(cfg.RegistryPath)
	if err != nil {
		_ = m.backend.Close()
		return nil, fmt.Errorf("failed to load model registry: %w", err)
	}

	m.keyer = daykey.NewKeyer(daykey.SystemClock{}, cfg.Timezone)

	m.tail, err = trigger.NewTail(cfg.EventsPath)
	if err != nil {
		_ = m.backend.Close()
		return nil, fmt.Errorf("failed to follow events file: %w", err)
	}

	m.engine = trigger.NewEngine(m.tail, m.registry, m, nil, cfg.ObserveDelay)

	m.cron = cron.New(cron.WithLocation(m.keyer.Location()))
	if _, err := m.cron.AddFunc(rolloverSpec, m.rollover); err != nil {
		_ = m.tail.Close()
		_ = m.backend.Close()
		return nil, fmt.Errorf("failed to schedule day rollover: %w", err)
	}
	m.cron.Start()

	if cfg.StoreBackend == kv.BackendFile {
		if err := m.watchStoreFile(); err != nil {
			logger.Warn("store file watching disabled", "error", err)
		}
	}

	go m.routeEvents()

	return m, nil
}

// routeEvents routes detection events into the trigger engine.
func (m *Manager) routeEvents() {
	for {
		select {
		case ev, ok := <-m.tail.Events():
			if !ok {
				return
			}
			m.engine.Fire(ev)

		case <-m.stopChan:
			return
		}
	}
}

// RecordUsage increments the identity's counter for the current day. It is
// the commit half of the trigger engine's observe-then-commit cycle.
func (m *Manager) RecordUsage(identity string) {
	day := m.keyer.Current()
	count := m.store.Increment(day, identity)
	total := m.store.Total(day)

	logger.Debug("usage recorded", "day", day, "identity", identity, "count", count)

	m.broadcast(UsageRecordedEvent{
		Day:      day,
		Identity: identity,
		Count:    count,
		DayTotal: total,
	})

	m.checkAlert(day, total)
}

// checkAlert sends at most one desktop notification per day when the daily
// total crosses the configured threshold.
func (m *Manager) checkAlert(day daykey.Key, total int) {
	if m.cfg.AlertThreshold <= 0 || total < m.cfg.AlertThreshold {
		return
	}

	m.mu.Lock()
	alerted := m.alertedDays[day]
	m.alertedDays[day] = true
	m.mu.Unlock()

	if alerted {
		return
	}

	title := "Gemini usage threshold reached"
	body := fmt.Sprintf("%d prompts recorded on %s", total, day)
	if err := beeep.Notify(title, body, ""); err != nil {
		logger.Warn("failed to send usage alert", "error", err)
	}
}

// rollover announces the new day so views tracking "today" can advance.
func (m *Manager) rollover() {
	day := m.keyer.Current()
	logger.Info("day rollover", "day", day)
	m.broadcast(DayRolloverEvent{Day: day})
}

// watchStoreFile reloads counters when the backing JSON file is edited by
// another process. Events are debounced because editors fire several per
// save.
func (m *Manager) watchStoreFile() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	dir := filepath.Dir(m.cfg.StorePath)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return err
	}
	m.watcher = watcher

	go func() {
		var timer *time.Timer
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != m.cfg.StorePath {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(storeDebounce, func() {
					fs, ok := m.backend.(*kv.FileStore)
					if !ok {
						return
					}
					changed, err := fs.Reload()
					if err != nil {
						m.broadcast(ErrorEvent{Service: "store", Error: err})
						return
					}
					if !changed {
						return
					}
					m.store.Reload()
					m.broadcast(StoreChangedEvent{})
				})

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				m.broadcast(ErrorEvent{Service: "store", Error: err})

			case <-m.stopChan:
				return
			}
		}
	}()

	return nil
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	// Send to main event channel
	select {
	case m.eventChan <- event:
	default:
	}

	// Send to subscribers
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, waitForEvent(ch)
}

// waitForEvent returns a tea.Cmd that waits for the next event.
func waitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return waitForEvent(ch)
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Store returns the usage counter store.
func (m *Manager) Store() *store.UsageStore {
	return m.store
}

// Registry returns the model identity registry.
func (m *Manager) Registry() *registry.Registry {
	return m.registry
}

// Keyer returns the day key source.
func (m *Manager) Keyer() *daykey.Keyer {
	return m.keyer
}

// Config returns the active configuration.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	close(m.stopChan)

	if m.cron != nil {
		m.cron.Stop()
	}

	m.mu.Lock()
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	var errs []error

	if m.watcher != nil {
		if err := m.watcher.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if err := m.tail.Close(); err != nil {
		errs = append(errs, err)
	}

	if err := m.backend.Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
