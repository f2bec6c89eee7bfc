package tui

import "github.com/charmbracelet/lipgloss"

// Palette
const (
	Accent = lipgloss.Color("#D33061")
	Info   = lipgloss.Color("#3097C6")
	Muted  = lipgloss.Color("#AEA47A")
	Text   = lipgloss.Color("#F3DBB2")
	Amber  = lipgloss.Color("#CC8B3F")
	Red    = lipgloss.Color("#AC3835")
	Green  = lipgloss.Color("#A6A75D")
	Border = lipgloss.Color("#5C4F4B")
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(Accent).Bold(true)

	textStyle = lipgloss.NewStyle().Foreground(Text)

	hintStyle = lipgloss.NewStyle().Foreground(Muted)

	errorStyle = lipgloss.NewStyle().Foreground(Red).Bold(true)

	successStyle = lipgloss.NewStyle().Foreground(Green).Bold(true)

	recordingStyle = lipgloss.NewStyle().Foreground(Red).Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 1)
)
