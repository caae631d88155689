package summary

import (
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/quiz"
	"github.com/abhisek/studyhall/internal/router"
	"github.com/abhisek/studyhall/internal/screen"
	"github.com/abhisek/studyhall/internal/ui/components"
	"github.com/abhisek/studyhall/internal/ui/layout"
	"github.com/abhisek/studyhall/internal/ui/theme"
)

// SummaryScreen displays the report of a completed quiz.
type SummaryScreen struct {
	report  quiz.Report
	restart func() screen.Screen
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen. restart, when non-nil, builds the
// screen that replays the same question set.
func New(report quiz.Report, restart func() screen.Screen) *SummaryScreen {
	return &SummaryScreen{report: report, restart: restart}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Quiz Report"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Enter", Description: "Home"}}
	if s.restart != nil {
		hints = append(hints, layout.KeyHint{Key: "R", Description: "Retake"})
	}
	return hints
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, router.PopCmd
		case "r":
			if s.restart != nil {
				return s, router.ReplaceCmd(s.restart())
			}
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	r := s.report
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)

	var b strings.Builder

	b.WriteString(center.Foreground(theme.Primary).Bold(true).Render("Quiz complete!"))
	b.WriteString("\n\n")
	b.WriteString(center.Foreground(theme.TextDim).Render(r.Subject))
	b.WriteString("\n\n")

	b.WriteString(center.Foreground(performanceColor(r.Percentage)).Bold(true).
		Render(fmt.Sprintf("%s  %s", r.Summary(), r.Performance)))
	b.WriteString("\n\n")

	barWidth := min(width-8, 50)
	bar := components.NewProgressBar("Score", r.Percentage/100, false, barWidth)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n\n")

	if len(r.WeakAreas) == 0 {
		b.WriteString(center.Foreground(theme.Success).Render("No weak areas. Well done!"))
		b.WriteString("\n")
	} else {
		b.WriteString(center.Foreground(theme.Accent).Bold(true).Render("Review these topics"))
		b.WriteString("\n\n")
		for _, area := range r.WeakAreas {
			line := "• " + layout.Truncate(area, max(width-10, 10))
			b.WriteString(center.Foreground(theme.Text).Render(line))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func performanceColor(pct float64) color.Color {
	switch {
	case pct >= 80:
		return theme.Success
	case pct >= 60:
		return theme.Accent
	default:
		return theme.Error
	}
}
