// Package info provides the info tab: build, configuration and registry
// details.
package info

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/app"
	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/services"
)

// Model represents the info tab state.
type Model struct {
	state    *app.State
	services *services.Manager
	width    int
	height   int
}

// New creates a new info model.
func New(state *app.State, svc *services.Manager) *Model {
	return &Model{
		state:    state,
		services: svc,
	}
}

// Init initializes the info tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the info tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	return m, nil
}

// SetSize sets the available size for the info tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return nil
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return nil
}
