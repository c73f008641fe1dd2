package app

import (
	"time"

	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/daykey"
	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/services"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// UsageUpdatedMsg signals that a counter changed, from a detection trigger
// or a manual edit.
type UsageUpdatedMsg struct {
	Day      daykey.Key
	Identity string
	Count    int
	DayTotal int
}

// StoreReloadedMsg signals that counters were reloaded after an external
// change to the backing file.
type StoreReloadedMsg struct{}

// DayRolloverMsg signals that midnight passed in the reference timezone.
type DayRolloverMsg struct {
	Day daykey.Key
}

// EditModeChangedMsg signals that the edit-mode flag flipped.
type EditModeChangedMsg struct {
	Enabled bool
}

// VisibilityChangedMsg signals that the panel visibility flag flipped.
type VisibilityChangedMsg struct {
	Visible bool
}

// DayResetMsg signals that all counters for a day were cleared.
type DayResetMsg struct {
	Day daykey.Key
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}
