package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/ui/theme"
)

// minBarCells keeps very narrow bars readable.
const minBarCells = 4

// ProgressBar renders a fraction as a filled track. Percent is a ratio in
// [0, 1]; values outside are clamped.
type ProgressBar struct {
	Label       string
	Percent     float64
	ShowPercent bool
	Width       int
}

func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{Label: label, Percent: clampRatio(percent), ShowPercent: showPercent, Width: width}
}

func clampRatio(r float64) float64 {
	return min(max(r, 0), 1)
}

// Cells returns how many of total cells are filled.
func (p ProgressBar) Cells(total int) int {
	return int(float64(total) * clampRatio(p.Percent))
}

func (p ProgressBar) View() string {
	var prefix, suffix string
	if p.Label != "" {
		prefix = theme.Body.Render(p.Label) + "  "
	}
	if p.ShowPercent {
		suffix = theme.Hint.Italic(false).Render(fmt.Sprintf("  %3d%%", int(clampRatio(p.Percent)*100)))
	}

	track := max(p.Width-lipgloss.Width(prefix)-lipgloss.Width(suffix), minBarCells)
	filled := p.Cells(track)

	return prefix +
		theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", track-filled)) +
		suffix
}
