// Package projection turns stored counters into the ordered rows the panel
// displays. It performs no persistence: it consumes the usage store and the
// identity registry and produces display data.
package projection

import (
	"sort"

	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/daykey"
	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/registry"
	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/store"
)

// Row is one identity line in the panel.
type Row struct {
	Identity string
	Count    int
	// Known is true for registry identities, false for discovered ones.
	Known bool
	// Editable mirrors the edit-mode gate; the panel must not route edits
	// to the store while false.
	Editable bool
}

// Project orders a day's counts for display: known identities first in
// registry order (always present, 0 when unused), then discovered
// identities alphabetically.
func Project(counts store.Counts, reg *registry.Registry, editMode bool) []Row {
	known := reg.Known()
	rows := make([]Row, 0, len(counts))

	for _, identity := range known {
		rows = append(rows, Row{
			Identity: identity,
			Count:    counts[identity],
			Known:    true,
			Editable: editMode,
		})
	}

	discovered := make([]string, 0)
	for identity := range counts {
		if !reg.IsKnown(identity) {
			discovered = append(discovered, identity)
		}
	}
	sort.Strings(discovered)

	for _, identity := range discovered {
		rows = append(rows, Row{
			Identity: identity,
			Count:    counts[identity],
			Known:    false,
			Editable: editMode,
		})
	}

	return rows
}

// NoUsage reports whether the day has nothing to show beyond zeroed known
// identities: every count is 0 and no discovered identity exists.
func NoUsage(rows []Row) bool {
	for _, r := range rows {
		if r.Count > 0 || !r.Known {
			return false
		}
	}
	return true
}

// Totaler is the slice of the usage store the history series needs.
type Totaler interface {
	Total(key daykey.Key) int
}

// DailyTotals returns the per-day usage totals for the n days ending at
// end, oldest first, as a chart-ready series.
func DailyTotals(t Totaler, end daykey.Key, n int) ([]daykey.Key, []float64) {
	days := daykey.LastN(end, n)
	series := make([]float64, len(days))
	for i, day := range days {
		series[i] = float64(t.Total(day))
	}
	return days, series
}
