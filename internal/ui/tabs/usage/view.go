package usage

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/projection"
	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/ui/styles"
)

// View renders the usage tab content.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderDayHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderCounters())

	if m.confirmReset {
		b.WriteString("\n\n")
		b.WriteString(styles.WarningTextStyle.Render(
			fmt.Sprintf("Reset all counters for %s? (y/n)", m.state.SelectedDay())))
	}

	b.WriteString("\n\n")
	b.WriteString(m.renderFooter())

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m *Model) renderDayHeader() string {
	day := m.state.SelectedDay()

	label := day.String()
	if m.state.IsOnToday() {
		label += " (today)"
	}

	total := m.services.Store().Total(day)

	header := fmt.Sprintf("◀  %s  ▶", styles.TitleStyle.Render(label))
	totalLine := styles.HelpStyle.Render(fmt.Sprintf("%d prompts total", total))

	return lipgloss.JoinVertical(lipgloss.Left, header, totalLine)
}

func (m *Model) renderCounters() string {
	if projection.NoUsage(m.rows) && !m.state.EditMode() {
		var b strings.Builder
		b.WriteString(m.renderRows())
		b.WriteString("\n\n")
		b.WriteString(styles.HelpStyle.Render("No usage recorded for this day."))
		return b.String()
	}
	return m.renderRows()
}

func (m *Model) renderRows() string {
	if len(m.rows) == 0 {
		return styles.HelpStyle.Render("No models registered.")
	}

	nameWidth := 0
	for _, row := range m.rows {
		if len(row.Identity) > nameWidth {
			nameWidth = len(row.Identity)
		}
	}

	var lines []string
	for i, row := range m.rows {
		lines = append(lines, m.renderRow(i, row, nameWidth))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderRow(i int, row projection.Row, nameWidth int) string {
	cursor := "  "
	if m.state.EditMode() && i == m.selected {
		cursor = styles.SelectedListItemStyle.String()
	}

	nameStyle := styles.KnownModelStyle
	suffix := ""
	if !row.Known {
		nameStyle = styles.DiscoveredModelStyle
		suffix = " *"
	}
	name := nameStyle.Render(fmt.Sprintf("%-*s", nameWidth, row.Identity))

	var count string
	switch {
	case m.editing && i == m.selected:
		count = m.input.View()
	case row.Count == 0:
		count = styles.ZeroCountStyle.Render("0")
	default:
		count = styles.CountStyle.Render(fmt.Sprintf("%d", row.Count))
	}

	return fmt.Sprintf("%s%s  %s%s", cursor, name, count, suffix)
}

func (m *Model) renderFooter() string {
	var parts []string

	if m.state.EditMode() {
		parts = append(parts, styles.WarningTextStyle.Render("EDIT MODE"))
		if m.editing {
			parts = append(parts, styles.HelpStyle.Render("enter save · esc cancel"))
		} else {
			parts = append(parts, styles.HelpStyle.Render("j/k select · enter edit · R reset day · e exit"))
		}
	} else {
		parts = append(parts, styles.HelpStyle.Render("h/l change day · t today · e edit mode"))
	}

	if hasDiscovered(m.rows) {
		parts = append(parts, styles.HelpStyle.Render("* discovered model"))
	}

	return strings.Join(parts, "   ")
}

func hasDiscovered(rows []projection.Row) bool {
	for _, r := range rows {
		if !r.Known {
			return true
		}
	}
	return false
}
