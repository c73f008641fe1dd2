package info

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/ui/styles"
	"github.com/InvictusNavarchus/gemini-model-usage-tracker/internal/version"
)

// View renders the info tab content.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("About"))
	b.WriteString("\n")
	b.WriteString(version.Info())
	b.WriteString("\n\n")

	b.WriteString(m.renderConfig())
	b.WriteString("\n\n")
	b.WriteString(m.renderRegistry())

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m *Model) renderConfig() string {
	cfg := m.services.Config()
	keyer := m.services.Keyer()

	tz := keyer.Location().String()
	if keyer.Degraded() {
		tz += styles.WarningTextStyle.Render(" (configured timezone unavailable, using local)")
	}

	lines := []string{
		styles.SubTitleStyle.Render("Configuration"),
		m.row("Store backend", cfg.StoreBackend),
		m.row("Store path", cfg.StorePath),
		m.row("Events file", cfg.EventsPath),
		m.row("Namespace", cfg.Namespace),
		m.row("Day boundary timezone", tz),
		m.row("Observe delay", cfg.ObserveDelay.String()),
		m.row("History window", fmt.Sprintf("%d days", cfg.HistoryDays)),
	}

	if cfg.AlertThreshold > 0 {
		lines = append(lines, m.row("Alert threshold", fmt.Sprintf("%d prompts/day", cfg.AlertThreshold)))
	} else {
		lines = append(lines, m.row("Alert threshold", "disabled"))
	}
	if cfg.RegistryPath != "" {
		lines = append(lines, m.row("Registry override", cfg.RegistryPath))
	}

	return strings.Join(lines, "\n")
}

func (m *Model) renderRegistry() string {
	known := m.services.Registry().Known()

	lines := []string{styles.SubTitleStyle.Render("Tracked models")}
	for _, identity := range known {
		lines = append(lines, "  "+styles.KnownModelStyle.Render(identity))
	}
	lines = append(lines, "")
	lines = append(lines, styles.HelpStyle.Render(
		"Models outside this list are tracked under their own label when first seen."))

	return strings.Join(lines, "\n")
}

func (m *Model) row(label, value string) string {
	return fmt.Sprintf("  %s %s",
		styles.HelpStyle.Render(fmt.Sprintf("%-22s", label)),
		value)
}
