package history

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/ui/components"
	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/ui/styles"
)

// View renders the history tab content.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render(fmt.Sprintf("Usage History (last %d days)", m.Window())))
	b.WriteString("\n\n")

	b.WriteString(m.renderTotalsChart())
	b.WriteString("\n\n")
	b.WriteString(m.renderModelBreakdown())
	b.WriteString("\n\n")
	b.WriteString(m.renderSummary())

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m *Model) renderTotalsChart() string {
	if allZero(m.totals) {
		return styles.HelpStyle.Render("No usage recorded in this range.")
	}

	chartWidth := m.width - 16
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 8

	caption := ""
	if len(m.days) > 0 {
		caption = fmt.Sprintf("%s … %s", m.days[0], m.days[len(m.days)-1])
	}

	return components.RenderLineChart(m.totals, chartWidth, chartHeight, caption)
}

func (m *Model) renderModelBreakdown() string {
	if len(m.modelSums) == 0 {
		return ""
	}

	// Known models first in registry order, discovered after, zeroes last.
	known := m.services.Registry().Known()
	var labels []string
	var values []int
	seen := make(map[string]bool)

	for _, identity := range known {
		labels = append(labels, identity)
		values = append(values, m.modelSums[identity])
		seen[identity] = true
	}

	var discovered []string
	for identity := range m.modelSums {
		if !seen[identity] {
			discovered = append(discovered, identity)
		}
	}
	sort.Strings(discovered)
	for _, identity := range discovered {
		labels = append(labels, identity)
		values = append(values, m.modelSums[identity])
	}

	var b strings.Builder
	b.WriteString(styles.SubTitleStyle.Render("Per model"))
	b.WriteString("\n")
	b.WriteString(components.RenderBarChart(values, labels, m.width-8))
	return b.String()
}

func (m *Model) renderSummary() string {
	total := 0.0
	peak := 0.0
	peakIdx := -1
	for i, v := range m.totals {
		total += v
		if v > peak {
			peak = v
			peakIdx = i
		}
	}

	if total == 0 {
		return ""
	}

	avg := total / float64(len(m.totals))
	parts := []string{
		fmt.Sprintf("total %d", int(total)),
		fmt.Sprintf("avg %.1f/day", avg),
	}
	if peakIdx >= 0 {
		parts = append(parts, fmt.Sprintf("peak %d on %s", int(peak), m.days[peakIdx]))
	}

	return styles.HelpStyle.Render(strings.Join(parts, " · "))
}

func allZero(series []float64) bool {
	for _, v := range series {
		if v != 0 {
			return false
		}
	}
	return true
}
