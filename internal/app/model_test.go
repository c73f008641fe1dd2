package app

import (
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/services"
)

// stubTab is a minimal Tab used to drive the root model in tests.
type stubTab struct {
	content     string
	inputActive bool
	lastMsg     tea.Msg
}

func (s *stubTab) Init() tea.Cmd { return nil }

func (s *stubTab) Update(msg tea.Msg) (Tab, tea.Cmd) {
	s.lastMsg = msg
	return s, nil
}

func (s *stubTab) View() string                { return s.content }
func (s *stubTab) SetSize(width, height int)   {}
func (s *stubTab) ShortHelp() []key.Binding    { return nil }
func (s *stubTab) FullHelp() [][]key.Binding   { return nil }
func (s *stubTab) InputActive() bool           { return s.inputActive }

func newTestModel(t *testing.T) (*Model, []*stubTab) {
	t.Helper()

	m := NewModel(newTestManager(t))
	tabs := []*stubTab{
		{content: "usage tab"},
		{content: "history tab"},
		{content: "info tab"},
	}
	m.SetTabs([]Tab{tabs[0], tabs[1], tabs[2]})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m, tabs
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestNewModelSeedsStateFromStore(t *testing.T) {
	mgr := newTestManager(t)
	mgr.Store().SetVisible(false)
	mgr.Store().SetDevMode(true)

	m := NewModel(mgr)

	if m.GetState().Visible() {
		t.Error("state should start hidden when the persisted flag is false")
	}
	if !m.GetState().EditMode() {
		t.Error("state should start in edit mode when the persisted flag is true")
	}
	if m.GetState().Today() != mgr.Keyer().Current() {
		t.Errorf("state today = %s, want %s", m.GetState().Today(), mgr.Keyer().Current())
	}
}

// pressKey sends a key and, if it produced a tab switch, delivers the
// resulting TabSwitchMsg the way the runtime would.
func pressKey(t *testing.T, m *Model, s string) {
	t.Helper()
	_, cmd := m.Update(keyMsg(s))
	if cmd == nil {
		return
	}
	msg := resolveMsg(cmd(), func(msg tea.Msg) bool {
		_, ok := msg.(TabSwitchMsg)
		return ok
	})
	if msg != nil {
		m.Update(msg)
	}
}

func TestTabSwitching(t *testing.T) {
	m, _ := newTestModel(t)

	pressKey(t, m, "2")
	if m.GetActiveTab() != TabHistory {
		t.Errorf("after 2: active tab = %v, want History", m.GetActiveTab())
	}

	pressKey(t, m, "tab")
	if m.GetActiveTab() != TabInfo {
		t.Errorf("after tab: active tab = %v, want Info", m.GetActiveTab())
	}

	pressKey(t, m, "tab")
	if m.GetActiveTab() != TabUsage {
		t.Errorf("tab should wrap to Usage, got %v", m.GetActiveTab())
	}

	pressKey(t, m, "shift+tab")
	if m.GetActiveTab() != TabInfo {
		t.Errorf("shift+tab should wrap back to Info, got %v", m.GetActiveTab())
	}
}

func TestTabSwitchReachesActivatedTab(t *testing.T) {
	m, tabs := newTestModel(t)

	pressKey(t, m, "2")

	switched, ok := tabs[1].lastMsg.(TabSwitchMsg)
	if !ok {
		t.Fatalf("activated tab saw %#v, want TabSwitchMsg", tabs[1].lastMsg)
	}
	if switched.Tab != TabHistory {
		t.Errorf("TabSwitchMsg.Tab = %v, want History", switched.Tab)
	}
}

func TestQuitKey(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("q produced no command")
	}
	if !containsQuit(cmd()) {
		t.Error("q should quit the program")
	}
}

// containsQuit follows batched commands looking for tea.Quit's message.
func containsQuit(msg tea.Msg) bool {
	if _, ok := msg.(tea.QuitMsg); ok {
		return true
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, cmd := range batch {
			if cmd != nil && containsQuit(cmd()) {
				return true
			}
		}
	}
	return false
}

func TestHelpToggle(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(keyMsg("?"))
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Error("help overlay not rendered after ?")
	}

	m.Update(keyMsg("esc"))
	if strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Error("esc should close the help overlay")
	}
}

func TestHiddenPanelView(t *testing.T) {
	m, _ := newTestModel(t)

	m.GetState().SetVisible(false)

	view := m.View()
	if !strings.Contains(view, "Tracking continues in the background") {
		t.Errorf("hidden view missing background note:\n%s", view)
	}
	if strings.Contains(view, "usage tab") {
		t.Error("hidden view should not render tab content")
	}
}

func TestVisibilityKeyPersists(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(keyMsg("v"))
	if cmd == nil {
		t.Fatal("v produced no command")
	}
	msg := resolveMsg(cmd(), func(msg tea.Msg) bool {
		_, ok := msg.(VisibilityChangedMsg)
		return ok
	})
	changed, ok := msg.(VisibilityChangedMsg)
	if !ok || changed.Visible {
		t.Fatalf("v produced %#v, want hide", msg)
	}

	m.Update(changed)
	if m.GetState().Visible() {
		t.Error("state not updated from VisibilityChangedMsg")
	}
	if m.GetServices().Store().Visible() {
		t.Error("visibility flag not persisted")
	}
}

// resolveMsg unwraps batches until a message satisfies the predicate.
func resolveMsg(msg tea.Msg, match func(tea.Msg) bool) tea.Msg {
	if match(msg) {
		return msg
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, cmd := range batch {
			if cmd == nil {
				continue
			}
			if found := resolveMsg(cmd(), match); found != nil && match(found) {
				return found
			}
		}
	}
	return nil
}

func TestInputCaptureSuppressesGlobalKeys(t *testing.T) {
	m, tabs := newTestModel(t)
	tabs[0].inputActive = true

	_, cmd := m.Update(keyMsg("q"))
	if cmd != nil && containsQuit(cmd()) {
		t.Error("q must not quit while a text input is focused")
	}

	m.Update(keyMsg("2"))
	if m.GetActiveTab() != TabUsage {
		t.Error("tab switching must be suppressed while a text input is focused")
	}

	_, cmd = m.Update(keyMsg("ctrl+c"))
	if cmd == nil || !containsQuit(cmd()) {
		t.Error("ctrl+c stays global while editing")
	}
}

func TestServiceEventMapping(t *testing.T) {
	m, _ := newTestModel(t)
	day := m.GetServices().Keyer().Current()

	cmd := m.handleServiceEvent(services.UsageRecordedEvent{
		Day: day, Identity: "2.5 Pro", Count: 3, DayTotal: 5,
	})
	if cmd == nil {
		t.Fatal("usage event produced no command")
	}
	updated, ok := cmd().(UsageUpdatedMsg)
	if !ok || updated.Identity != "2.5 Pro" || updated.DayTotal != 5 {
		t.Errorf("usage event mapped to %#v", cmd())
	}

	cmd = m.handleServiceEvent(services.DayRolloverEvent{Day: day})
	if _, ok := cmd().(DayRolloverMsg); !ok {
		t.Errorf("rollover event mapped to %#v", cmd())
	}

	cmd = m.handleServiceEvent(services.ErrorEvent{Service: "watcher", Error: errors.New("boom")})
	notif, ok := resolveMsg(cmd(), func(msg tea.Msg) bool {
		_, ok := msg.(AddNotificationMsg)
		return ok
	}).(AddNotificationMsg)
	if !ok || notif.Type != NotificationError {
		t.Errorf("error event mapped to %#v", cmd())
	}
	if !strings.Contains(notif.Message, "watcher") {
		t.Errorf("error notification missing service name: %q", notif.Message)
	}
}

func TestNotificationLifecycle(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(AddNotificationMsg{Type: NotificationSuccess, Message: "saved", Duration: 0})
	if len(m.GetState().GetNotifications()) != 1 {
		t.Fatal("notification not added")
	}
	if !strings.Contains(m.View(), "saved") {
		t.Error("toast not rendered")
	}

	id := m.GetState().GetNotifications()[0].ID
	m.Update(RemoveNotificationMsg{ID: id})
	if len(m.GetState().GetNotifications()) != 0 {
		t.Error("notification not removed")
	}
}
