// Package history provides the history tab: daily usage totals over a
// sliding window, charted per day and per model.
package history

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/app"
	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/daykey"
	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/projection"
	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/services"
)

// windows are the selectable chart ranges, in days.
var windows = []int{7, 14, 30, 90}

// keyMap defines the key bindings specific to the history tab.
type keyMap struct {
	ToggleRange key.Binding
	Refresh     key.Binding
}

// defaultKeyMap returns the default key bindings for the history tab.
func defaultKeyMap() keyMap {
	return keyMap{
		ToggleRange: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle time range"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

// Model represents the history tab state.
type Model struct {
	state    *app.State
	services *services.Manager
	keys     keyMap

	windowIdx int
	days      []daykey.Key
	totals    []float64
	modelSums map[string]int

	width  int
	height int
}

// New creates a new history model. The initial window follows the
// configured history length where it matches a selectable range.
func New(state *app.State, svc *services.Manager) *Model {
	m := &Model{
		state:     state,
		services:  svc,
		keys:      defaultKeyMap(),
		windowIdx: indexOfWindow(svc.Config().HistoryDays),
	}
	m.refresh()
	return m
}

func indexOfWindow(days int) int {
	for i, w := range windows {
		if w == days {
			return i
		}
	}
	// Fall back to the 30-day view for non-standard configurations.
	return 2
}

// Window returns the active range in days.
func (m *Model) Window() int {
	return windows[m.windowIdx]
}

// Init initializes the history tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// refresh recomputes the chart series and the per-model totals.
func (m *Model) refresh() {
	st := m.services.Store()
	end := m.state.Today()

	m.days, m.totals = projection.DailyTotals(st, end, m.Window())

	known := m.services.Registry().Known()
	m.modelSums = make(map[string]int)
	for _, day := range m.days {
		for identity, n := range st.GetDay(day, known) {
			m.modelSums[identity] += n
		}
	}
}

// Update handles messages for the history tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.UsageUpdatedMsg, app.StoreReloadedMsg, app.DayResetMsg, app.DayRolloverMsg:
		m.refresh()

	case app.TabSwitchMsg:
		if msg.Tab == app.TabHistory {
			m.refresh()
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.ToggleRange):
			m.windowIdx = (m.windowIdx + 1) % len(windows)
			m.refresh()
		case key.Matches(msg, m.keys.Refresh):
			m.refresh()
		}
	}

	return m, nil
}

// SetSize sets the available size for the history tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.ToggleRange,
		m.keys.Refresh,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.ToggleRange, m.keys.Refresh},
	}
}
