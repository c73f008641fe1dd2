package projection

import (
	"testing"

	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/daykey"
	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/registry"
	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/store"
)

func testRegistry() *registry.Registry {
	return registry.New([]registry.Entry{
		{Prefix: "2.5 Pro", Identity: "2.5 Pro"},
		{Prefix: "2.5 Flash", Identity: "2.5 Flash"},
	})
}

func TestProject_Ordering(t *testing.T) {
	counts := store.Counts{
		"2.5 Pro":     3,
		"2.5 Flash":   0,
		"Zeta Mode":   1,
		"Alpha Mode":  2,
		"2.0 Unknown": 5,
	}

	rows := Project(counts, testRegistry(), false)

	wantOrder := []string{"2.5 Pro", "2.5 Flash", "2.0 Unknown", "Alpha Mode", "Zeta Mode"}
	if len(rows) != len(wantOrder) {
		t.Fatalf("got %d rows, want %d", len(rows), len(wantOrder))
	}
	for i, want := range wantOrder {
		if rows[i].Identity != want {
			t.Errorf("row %d = %q, want %q", i, rows[i].Identity, want)
		}
	}

	// Known first, discovered after.
	if !rows[0].Known || !rows[1].Known {
		t.Error("registry identities must be marked known")
	}
	if rows[2].Known || rows[3].Known || rows[4].Known {
		t.Error("discovered identities must not be marked known")
	}
}

func TestProject_KnownAlwaysMaterialized(t *testing.T) {
	rows := Project(store.Counts{}, testRegistry(), false)

	if len(rows) != 2 {
		t.Fatalf("got %d rows, want both known identities", len(rows))
	}
	for _, r := range rows {
		if r.Count != 0 {
			t.Errorf("%s = %d, want 0", r.Identity, r.Count)
		}
	}
}

func TestProject_EditModeGate(t *testing.T) {
	counts := store.Counts{"2.5 Pro": 1}

	for _, r := range Project(counts, testRegistry(), false) {
		if r.Editable {
			t.Errorf("%s editable with edit mode off", r.Identity)
		}
	}
	for _, r := range Project(counts, testRegistry(), true) {
		if !r.Editable {
			t.Errorf("%s not editable with edit mode on", r.Identity)
		}
	}
}

func TestNoUsage(t *testing.T) {
	reg := testRegistry()

	if !NoUsage(Project(store.Counts{}, reg, false)) {
		t.Error("empty day should report no usage")
	}
	if NoUsage(Project(store.Counts{"2.5 Pro": 1}, reg, false)) {
		t.Error("day with counts should not report no usage")
	}
	// A discovered identity counts as usage even at 0: its presence means
	// something was recorded for that day.
	if NoUsage(Project(store.Counts{"Nano Banana": 0}, reg, false)) {
		t.Error("day with a discovered identity should not report no usage")
	}
}

type fakeTotaler map[daykey.Key]int

func (f fakeTotaler) Total(key daykey.Key) int { return f[key] }

func TestDailyTotals(t *testing.T) {
	totals := fakeTotaler{
		"2024-06-01": 4,
		"2024-06-03": 2,
	}

	days, series := DailyTotals(totals, "2024-06-03", 3)

	wantDays := []daykey.Key{"2024-06-01", "2024-06-02", "2024-06-03"}
	wantSeries := []float64{4, 0, 2}

	for i := range wantDays {
		if days[i] != wantDays[i] {
			t.Errorf("day %d = %q, want %q", i, days[i], wantDays[i])
		}
		if series[i] != wantSeries[i] {
			t.Errorf("series %d = %v, want %v", i, series[i], wantSeries[i])
		}
	}
}
