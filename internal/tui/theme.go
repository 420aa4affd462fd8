package tui

import "charm.land/lipgloss/v2"

// Color palette, deep blue to match the report branding.
var (
	primary = lipgloss.Color("#1E3A8A") // Deep Blue
	accent  = lipgloss.Color("#3B82F6") // Blue
	success = lipgloss.Color("#22C55E") // Green
	warning = lipgloss.Color("#F59E0B") // Amber
	errcol  = lipgloss.Color("#F43F5E") // Rose
	text    = lipgloss.Color("#F8FAFC") // White
	textDim = lipgloss.Color("#94A3B8") // Slate
	border  = lipgloss.Color("#334155") // Slate
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent)

	questionStyle = lipgloss.NewStyle().
			Foreground(text).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(1, 2)

	hintStyle = lipgloss.NewStyle().
			Foreground(textDim).
			Italic(true)

	scoreStyle = lipgloss.NewStyle().
			Foreground(success).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(warning)

	errorStyle = lipgloss.NewStyle().
			Foreground(errcol).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(textDim)
)
