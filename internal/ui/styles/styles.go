// Package styles defines the visual styling for the application.
package styles

import "github.com/charmbracelet/lipgloss"

// Color definitions for the tracker theme.
var (
	Primary   = lipgloss.Color("39")  // Blue
	Secondary = lipgloss.Color("63")  // Purple
	Warning   = lipgloss.Color("220") // Yellow

	BgDark = lipgloss.Color("235")

	TextPrimary = lipgloss.Color("252")
	TextMuted   = lipgloss.Color("240")
)

// ToastStyle is used for floating notifications.
var ToastStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Primary).
	Padding(0, 1).
	MarginBottom(1)

// TitleStyle is used for main headings.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// SubTitleStyle is used for section headings.
var SubTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Secondary).
	MarginBottom(1)

// HelpStyle is the base style for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// HelpPanelStyle creates the help overlay panel.
var HelpPanelStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(Primary).
	Padding(1, 3).
	Background(BgDark)

// SelectedListItemStyle marks the highlighted counter row.
var SelectedListItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Foreground(Primary).
	Bold(true).
	SetString("> ")

// KnownModelStyle styles identities declared in the registry.
var KnownModelStyle = lipgloss.NewStyle().
	Foreground(TextPrimary)

// DiscoveredModelStyle styles identities first seen at runtime.
var DiscoveredModelStyle = lipgloss.NewStyle().
	Foreground(Warning).
	Italic(true)

// CountStyle styles usage counts.
var CountStyle = lipgloss.NewStyle().
	Foreground(Primary).
	Bold(true)

// ZeroCountStyle styles counters still at zero.
var ZeroCountStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// WarningTextStyle is used for inline warning messages.
var WarningTextStyle = lipgloss.NewStyle().
	Foreground(Warning)
