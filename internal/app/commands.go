package app

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/daykey"
	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/services"
	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/store"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second
)

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// defaultTickCmd returns a command that sends a TickMsg after the default interval.
func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// switchTabCmd returns a command that activates the given tab.
func switchTabCmd(tab TabID) tea.Cmd {
	return func() tea.Msg {
		return TabSwitchMsg{Tab: tab}
	}
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

// notifySuccessCmd returns a command that adds a success notification.
func notifySuccessCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationSuccess,
			Message:  message,
			Duration: DefaultNotificationDuration,
		}
	}
}

// notifyErrorCmd returns a command that adds an error notification.
func notifyErrorCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationError,
			Message:  message,
			Duration: LongNotificationDuration,
		}
	}
}

// notifyWarningCmd returns a command that adds a warning notification.
func notifyWarningCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationWarning,
			Message:  message,
			Duration: DefaultNotificationDuration,
		}
	}
}

// notifyInfoCmd returns a command that adds an info notification.
func notifyInfoCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationInfo,
			Message:  message,
			Duration: QuickNotificationDuration,
		}
	}
}

// Commands provides a public interface to the command functions. Tabs use
// it to mutate the store without touching persistence directly.
type Commands struct {
	manager *services.Manager
}

// NewCommands creates a new Commands instance.
func NewCommands(mgr *services.Manager) *Commands {
	return &Commands{manager: mgr}
}

// ToggleEditMode flips and persists the edit-mode flag.
func (c *Commands) ToggleEditMode() tea.Cmd {
	return func() tea.Msg {
		st := c.manager.Store()
		enabled := !st.DevMode()
		st.SetDevMode(enabled)
		return EditModeChangedMsg{Enabled: enabled}
	}
}

// ToggleVisibility flips and persists the panel-visibility flag.
func (c *Commands) ToggleVisibility() tea.Cmd {
	return func() tea.Msg {
		st := c.manager.Store()
		visible := !st.Visible()
		st.SetVisible(visible)
		return VisibilityChangedMsg{Visible: visible}
	}
}

// SetCount validates raw edit input and overwrites a counter. Invalid
// input leaves the counter untouched and surfaces an error notification.
func (c *Commands) SetCount(day daykey.Key, identity, raw string) tea.Cmd {
	return func() tea.Msg {
		value, err := store.ParseCount(raw)
		if err != nil {
			return AddNotificationMsg{
				Type:     NotificationError,
				Message:  fmt.Sprintf("Invalid count %q for %s", raw, identity),
				Duration: DefaultNotificationDuration,
			}
		}

		st := c.manager.Store()
		if err := st.SetCount(day, identity, value); err != nil {
			return AddNotificationMsg{
				Type:     NotificationError,
				Message:  err.Error(),
				Duration: DefaultNotificationDuration,
			}
		}

		return UsageUpdatedMsg{
			Day:      day,
			Identity: identity,
			Count:    value,
			DayTotal: st.Total(day),
		}
	}
}

// ResetDay clears every counter for the given day.
func (c *Commands) ResetDay(day daykey.Key) tea.Cmd {
	return func() tea.Msg {
		c.manager.Store().ResetDay(day)
		return DayResetMsg{Day: day}
	}
}

// NotifySuccess returns a command that adds a success notification.
func (c *Commands) NotifySuccess(message string) tea.Cmd {
	return notifySuccessCmd(message)
}

// NotifyError returns a command that adds an error notification.
func (c *Commands) NotifyError(message string) tea.Cmd {
	return notifyErrorCmd(message)
}

// NotifyWarning returns a command that adds a warning notification.
func (c *Commands) NotifyWarning(message string) tea.Cmd {
	return notifyWarningCmd(message)
}

// NotifyInfo returns a command that adds an info notification.
func (c *Commands) NotifyInfo(message string) tea.Cmd {
	return notifyInfoCmd(message)
}
