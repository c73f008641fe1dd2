package usage

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/app"
	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/config"
	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/daykey"
	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/kv"
	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/services"
)

func newTestTab(t *testing.T) (*Model, *app.State, *services.Manager) {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		StoreBackend: kv.BackendFile,
		StorePath:    filepath.Join(dir, "usage.json"),
		EventsPath:   filepath.Join(dir, "events.jsonl"),
		Namespace:    "geminiTracker",
		ObserveDelay: 10 * time.Millisecond,
		HistoryDays:  30,
	}

	mgr, err := services.NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(func() { _ = mgr.Close() })

	state := app.NewState(mgr.Keyer().Current(), true, false)
	tab := New(state, mgr, app.NewCommands(mgr))
	return tab, state, mgr
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// enterEditMode flips the persisted flag and syncs session state the way
// the root model does.
func enterEditMode(t *testing.T, tab *Model, state *app.State, mgr *services.Manager) {
	t.Helper()
	msg := app.NewCommands(mgr).ToggleEditMode()()
	changed, ok := msg.(app.EditModeChangedMsg)
	if !ok || !changed.Enabled {
		t.Fatalf("ToggleEditMode returned %#v", msg)
	}
	state.SetEditMode(true)
	tab.Update(changed)
}

func TestDayNavigation(t *testing.T) {
	tab, state, _ := newTestTab(t)
	today := state.Today()

	// Forward from today must be rejected.
	tab.Update(keyMsg("l"))
	if state.SelectedDay() != today {
		t.Errorf("navigating into the future moved selection to %s", state.SelectedDay())
	}

	tab.Update(keyMsg("h"))
	if state.SelectedDay() != daykey.Prev(today) {
		t.Errorf("SelectedDay = %s, want yesterday", state.SelectedDay())
	}

	tab.Update(keyMsg("l"))
	if state.SelectedDay() != today {
		t.Errorf("SelectedDay = %s, want today after forward step", state.SelectedDay())
	}

	tab.Update(keyMsg("h"))
	tab.Update(keyMsg("h"))
	tab.Update(keyMsg("t"))
	if state.SelectedDay() != today {
		t.Errorf("t should jump back to today, got %s", state.SelectedDay())
	}
}

func TestEditRequiresEditMode(t *testing.T) {
	tab, _, _ := newTestTab(t)

	tab.Update(keyMsg("enter"))
	if tab.InputActive() {
		t.Fatal("editing must not start while edit mode is off")
	}

	tab.Update(keyMsg("R"))
	if tab.confirmReset {
		t.Fatal("reset confirmation must not appear while edit mode is off")
	}
}

func TestEditCommitWritesCount(t *testing.T) {
	tab, state, mgr := newTestTab(t)
	enterEditMode(t, tab, state, mgr)

	tab.Update(keyMsg("enter"))
	if !tab.InputActive() {
		t.Fatal("enter should start editing in edit mode")
	}

	// The input starts at the current count; type more digits after it.
	tab.Update(keyMsg("4"))
	_, cmd := tab.Update(keyMsg("enter"))
	if cmd == nil {
		t.Fatal("commit should produce a command")
	}

	msg := cmd()
	updated, ok := msg.(app.UsageUpdatedMsg)
	if !ok {
		t.Fatalf("commit produced %#v, want UsageUpdatedMsg", msg)
	}
	if updated.Count != 4 {
		t.Errorf("Count = %d, want 4 (input was \"04\")", updated.Count)
	}

	day := state.SelectedDay()
	counts := mgr.Store().GetDay(day, mgr.Registry().Known())
	if counts[updated.Identity] != 4 {
		t.Errorf("stored count = %d, want 4", counts[updated.Identity])
	}
}

func TestEditCancelLeavesCount(t *testing.T) {
	tab, state, mgr := newTestTab(t)
	day := state.SelectedDay()
	mgr.Store().Increment(day, "2.5 Pro")

	enterEditMode(t, tab, state, mgr)

	tab.Update(keyMsg("enter"))
	tab.Update(keyMsg("9"))
	tab.Update(keyMsg("esc"))

	if tab.InputActive() {
		t.Fatal("esc should stop editing")
	}
	counts := mgr.Store().GetDay(day, mgr.Registry().Known())
	if counts["2.5 Pro"] != 1 {
		t.Errorf("count = %d after cancel, want unchanged 1", counts["2.5 Pro"])
	}
}

func TestInvalidEditRejected(t *testing.T) {
	tab, state, mgr := newTestTab(t)
	enterEditMode(t, tab, state, mgr)

	tab.Update(keyMsg("enter"))
	// Clear the prefilled value so the commit sees empty input.
	tab.input.SetValue("")
	_, cmd := tab.Update(keyMsg("enter"))
	if cmd == nil {
		t.Fatal("commit should produce a command")
	}

	msg := cmd()
	notif, ok := msg.(app.AddNotificationMsg)
	if !ok {
		t.Fatalf("invalid input produced %#v, want error notification", msg)
	}
	if notif.Type != app.NotificationError {
		t.Errorf("notification type = %v, want error", notif.Type)
	}
}

func TestResetDayConfirmFlow(t *testing.T) {
	tab, state, mgr := newTestTab(t)
	day := state.SelectedDay()
	mgr.Store().Increment(day, "2.5 Pro")
	mgr.Store().Increment(daykey.Prev(day), "2.5 Flash")

	enterEditMode(t, tab, state, mgr)

	tab.Update(keyMsg("R"))
	if !tab.confirmReset {
		t.Fatal("R should ask for confirmation")
	}

	tab.Update(keyMsg("n"))
	if tab.confirmReset {
		t.Fatal("n should cancel the confirmation")
	}
	if mgr.Store().Total(day) != 1 {
		t.Error("declined reset must not clear counters")
	}

	tab.Update(keyMsg("R"))
	_, cmd := tab.Update(keyMsg("y"))
	if cmd == nil {
		t.Fatal("confirmed reset should produce a command")
	}
	// Drain the batch: reset plus its notification.
	drainCmd(t, cmd)

	if mgr.Store().Total(day) != 0 {
		t.Errorf("day total = %d after reset, want 0", mgr.Store().Total(day))
	}
	if mgr.Store().Total(daykey.Prev(day)) != 1 {
		t.Error("reset must only clear the selected day")
	}
}

// drainCmd executes a command tree, following batches.
func drainCmd(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			drainCmd(t, c)
		}
	}
}

func TestTabActivationRefreshesRows(t *testing.T) {
	tab, state, mgr := newTestTab(t)

	// Counts change while another tab holds the message stream; the rows
	// cached here go stale.
	mgr.Store().Increment(state.SelectedDay(), "2.5 Pro")
	if len(tab.rows) > 0 && tab.rows[0].Count != 0 {
		t.Fatal("precondition: cached rows should predate the increment")
	}

	tab.Update(app.TabSwitchMsg{Tab: app.TabUsage})

	row, ok := tab.SelectedRow()
	if !ok {
		t.Fatal("no rows after activation")
	}
	if row.Identity != "2.5 Pro" || row.Count != 1 {
		t.Errorf("activated rows = %s/%d, want 2.5 Pro/1", row.Identity, row.Count)
	}

	// A switch to a different tab must not be mistaken for activation.
	mgr.Store().Increment(state.SelectedDay(), "2.5 Pro")
	tab.Update(app.TabSwitchMsg{Tab: app.TabHistory})
	row, _ = tab.SelectedRow()
	if row.Count != 1 {
		t.Errorf("rows refreshed on a foreign tab switch, count = %d", row.Count)
	}
}

func TestViewShowsNoUsageIndicator(t *testing.T) {
	tab, _, mgr := newTestTab(t)

	view := tab.View()
	if !strings.Contains(view, "No usage recorded") {
		t.Error("empty day should show the no-usage indicator")
	}

	mgr.Store().Increment(tab.state.SelectedDay(), "2.5 Pro")
	tab.Update(app.StoreReloadedMsg{})

	view = tab.View()
	if strings.Contains(view, "No usage recorded") {
		t.Error("day with usage must not show the no-usage indicator")
	}
}

func TestViewMarksDiscoveredModels(t *testing.T) {
	tab, state, mgr := newTestTab(t)
	mgr.Store().Increment(state.SelectedDay(), "Nano Banana")
	tab.Update(app.StoreReloadedMsg{})

	view := tab.View()
	if !strings.Contains(view, "Nano Banana") {
		t.Fatal("discovered model missing from view")
	}
	if !strings.Contains(view, "*") {
		t.Error("discovered model should carry a marker")
	}
}
