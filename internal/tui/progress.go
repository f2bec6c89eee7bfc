package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ProgressBar renders pct as a bar followed by its percentage label. width
// is the total rendered width.
func ProgressBar(pct, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	label := fmt.Sprintf(" %3d%%", pct)
	barWidth := width - len(label)
	if barWidth < 4 {
		barWidth = 4
	}
	filled := barWidth * pct / 100
	empty := barWidth - filled

	bar := lipgloss.NewStyle().Foreground(Green).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(Amber).Render(strings.Repeat("░", empty))
	return bar + textStyle.Render(label)
}
