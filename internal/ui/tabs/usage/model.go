// Package usage provides the daily usage tab: per-model counters for the
// selected day, with day navigation and gated manual editing.
package usage

import (
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/app"
	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/daykey"
	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/projection"
	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/services"
)

// keyMap defines the key bindings specific to the usage tab.
type keyMap struct {
	PrevDay  key.Binding
	NextDay  key.Binding
	Today    key.Binding
	Up       key.Binding
	Down     key.Binding
	EditMode key.Binding
	Edit     key.Binding
	Reset    key.Binding
}

// defaultKeyMap returns the default key bindings for the usage tab.
func defaultKeyMap() keyMap {
	return keyMap{
		PrevDay: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "previous day"),
		),
		NextDay: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "next day"),
		),
		Today: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "jump to today"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous model"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next model"),
		),
		EditMode: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "toggle edit mode"),
		),
		Edit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "edit count"),
		),
		Reset: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reset day"),
		),
	}
}

// Model represents the usage tab state.
type Model struct {
	state    *app.State
	services *services.Manager
	commands *app.Commands
	keys     keyMap

	rows     []projection.Row
	selected int

	input        textinput.Model
	editing      bool
	confirmReset bool

	width  int
	height int
}

// New creates a new usage tab model.
func New(state *app.State, svc *services.Manager, cmds *app.Commands) *Model {
	ti := textinput.New()
	ti.CharLimit = 6
	ti.Width = 8
	ti.Prompt = ""
	ti.Validate = func(s string) error {
		if s == "" {
			return nil
		}
		_, err := strconv.Atoi(s)
		return err
	}

	m := &Model{
		state:    state,
		services: svc,
		commands: cmds,
		keys:     defaultKeyMap(),
		input:    ti,
	}
	m.refresh()
	return m
}

// Init initializes the usage tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// InputActive reports whether the count editor owns the keyboard.
func (m *Model) InputActive() bool {
	return m.editing
}

// refresh recomputes the display rows for the selected day.
func (m *Model) refresh() {
	day := m.state.SelectedDay()
	reg := m.services.Registry()
	counts := m.services.Store().GetDay(day, reg.Known())
	m.rows = projection.Project(counts, reg, m.state.EditMode())

	if m.selected >= len(m.rows) {
		m.selected = max(0, len(m.rows)-1)
	}
}

// Update handles messages for the usage tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.UsageUpdatedMsg, app.StoreReloadedMsg, app.DayResetMsg,
		app.EditModeChangedMsg, app.DayRolloverMsg:
		m.refresh()
		return m, nil

	case app.TabSwitchMsg:
		// Counts may have changed while another tab had the message stream.
		if msg.Tab == app.TabUsage {
			m.refresh()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	if m.editing {
		return m.handleEditingKey(msg)
	}
	if m.confirmReset {
		return m.handleConfirmKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.PrevDay):
		m.selectDay(daykey.Prev(m.state.SelectedDay()))

	case key.Matches(msg, m.keys.NextDay):
		next := daykey.Next(m.state.SelectedDay())
		// Days after today are not navigable.
		if !m.services.Keyer().IsFuture(next) {
			m.selectDay(next)
		}

	case key.Matches(msg, m.keys.Today):
		m.selectDay(m.state.Today())

	case key.Matches(msg, m.keys.Up):
		if len(m.rows) > 0 {
			m.selected = (m.selected - 1 + len(m.rows)) % len(m.rows)
		}

	case key.Matches(msg, m.keys.Down):
		if len(m.rows) > 0 {
			m.selected = (m.selected + 1) % len(m.rows)
		}

	case key.Matches(msg, m.keys.EditMode):
		return m, m.commands.ToggleEditMode()

	case key.Matches(msg, m.keys.Edit):
		if m.state.EditMode() && m.selected < len(m.rows) {
			m.startEditing()
		}

	case key.Matches(msg, m.keys.Reset):
		if m.state.EditMode() {
			m.confirmReset = true
		}
	}

	return m, nil
}

func (m *Model) handleEditingKey(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	switch msg.String() {
	case "enter":
		raw := m.input.Value()
		row := m.rows[m.selected]
		m.stopEditing()
		return m, m.commands.SetCount(m.state.SelectedDay(), row.Identity, raw)

	case "esc":
		// Cancel restores the previous count untouched.
		m.stopEditing()
		return m, nil

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.confirmReset = false
		day := m.state.SelectedDay()
		return m, tea.Batch(
			m.commands.ResetDay(day),
			m.commands.NotifySuccess("Counters reset for "+day.String()),
		)

	case "n", "N", "esc":
		m.confirmReset = false
	}
	return m, nil
}

func (m *Model) selectDay(day daykey.Key) {
	m.state.SetSelectedDay(day)
	m.confirmReset = false
	m.refresh()
}

func (m *Model) startEditing() {
	row := m.rows[m.selected]
	m.input.SetValue(strconv.Itoa(row.Count))
	m.input.CursorEnd()
	m.input.Focus()
	m.editing = true
}

func (m *Model) stopEditing() {
	m.editing = false
	m.input.Blur()
	m.input.SetValue("")
}

// SetSize sets the available size for the usage tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SelectedRow returns the highlighted row, if any.
func (m *Model) SelectedRow() (projection.Row, bool) {
	if m.selected < len(m.rows) {
		return m.rows[m.selected], true
	}
	return projection.Row{}, false
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.PrevDay,
		m.keys.NextDay,
		m.keys.EditMode,
		m.keys.Reset,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.PrevDay, m.keys.NextDay, m.keys.Today},
		{m.keys.Up, m.keys.Down, m.keys.Edit},
		{m.keys.EditMode, m.keys.Reset},
	}
}
