// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"sync"
	"time"

	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/daykey"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// State is the session-scoped UI state shared between tabs. The selected
// day and the notification list live only for the session; the edit-mode
// and visibility flags mirror their persisted counterparts in the store.
type State struct {
	mu sync.RWMutex

	today       daykey.Key
	selectedDay daykey.Key
	editMode    bool
	visible     bool

	LastUpdated time.Time

	notifications   []Notification
	notificationSeq int
}

// NewState creates session state starting on today's view.
func NewState(today daykey.Key, visible, editMode bool) *State {
	return &State{
		today:       today,
		selectedDay: today,
		visible:     visible,
		editMode:    editMode,
	}
}

// Today returns the current day key.
func (s *State) Today() daykey.Key {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.today
}

// SetToday advances the current day. If the selection was following today
// it moves along, so the view keeps showing the live day after midnight.
func (s *State) SetToday(day daykey.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selectedDay == s.today {
		s.selectedDay = day
	}
	s.today = day
}

// SelectedDay returns the day currently shown.
func (s *State) SelectedDay() daykey.Key {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedDay
}

// SetSelectedDay changes the shown day.
func (s *State) SetSelectedDay(day daykey.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedDay = day
}

// IsOnToday reports whether the selection is on the live day.
func (s *State) IsOnToday() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedDay == s.today
}

// EditMode returns the edit-mode flag.
func (s *State) EditMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.editMode
}

// SetEditMode updates the edit-mode flag.
func (s *State) SetEditMode(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editMode = enabled
}

// Visible returns the panel-visibility flag.
func (s *State) Visible() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visible
}

// SetVisible updates the panel-visibility flag.
func (s *State) SetVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = visible
}

// Touch records that usage data changed.
func (s *State) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastUpdated = time.Now()
}

// TimeSinceUpdate returns the duration since the last data change.
func (s *State) TimeSinceUpdate() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.LastUpdated.IsZero() {
		return 0
	}
	return time.Since(s.LastUpdated)
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := time.Now().Format("20060102150405") + "-" + string(rune('A'+s.notificationSeq%26))

	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	})

	// Keep only the last 10 notifications
	if len(s.notifications) > 10 {
		s.notifications = s.notifications[len(s.notifications)-10:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	return active
}
