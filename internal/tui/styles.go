package tui

import "github.com/charmbracelet/lipgloss"

// Colors
var (
	colorAccent  = lipgloss.Color("#7AA2F7")
	colorMuted   = lipgloss.Color("#737AA2")
	colorText    = lipgloss.Color("#C0CAF5")
	colorSurface = lipgloss.Color("#24283B")
	colorError   = lipgloss.Color("#F7768E")
	colorActive  = lipgloss.Color("#9ECE6A")
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorSurface).
			Padding(0, 1).
			Bold(true)

	chipStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	activeChipStyle = chipStyle.
			Foreground(colorActive).
			Bold(true)

	searchLabelStyle = lipgloss.NewStyle().Foreground(colorAccent)

	statusStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)

	errorStyle = lipgloss.NewStyle().Foreground(colorError)

	detailStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)
)
