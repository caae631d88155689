package quiz

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	qz "github.com/abhisek/studyhall/internal/quiz"
	"github.com/abhisek/studyhall/internal/ui/components"
	"github.com/abhisek/studyhall/internal/ui/theme"
)

func (s *QuizScreen) View(width, height int) string {
	switch s.snap.State {
	case qz.StateLoading:
		if s.errMsg != "" && !s.starting {
			return renderError(width, height, s.errMsg)
		}
		return s.renderLoading(width, height)
	case qz.StateActive:
		return s.renderQuestion(width)
	case qz.StateComplete:
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render("Press any key to see your report"))
	}
	return s.renderWelcome(width, height)
}

func (s *QuizScreen) renderWelcome(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Mock Test"))
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Render("Answer multiple-choice questions and get a report with"))
	b.WriteString("\n")
	b.WriteString(theme.Body.Render("your score and the topics to revisit."))
	b.WriteString("\n\n")
	b.WriteString("Subject: " + s.input.View())
	b.WriteString("\n\n")
	b.WriteString(theme.Hint.Render("Leave blank for " + qz.DefaultSubject))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		theme.Card.Render(b.String()))
}

func (s *QuizScreen) renderLoading(width, height int) string {
	msg := fmt.Sprintf("%s  Preparing %s questions...", spinnerFrames[s.spinner], s.snap.Subject)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(msg))
}

func renderError(width, height int, msg string) string {
	content := lipgloss.NewStyle().Foreground(theme.Error).Bold(true).Render(msg) +
		"\n\n" + theme.Hint.Render("Press Enter to try again")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (s *QuizScreen) renderQuestion(width int) string {
	snap := s.snap
	q := snap.Question
	if q == nil {
		return ""
	}

	var b strings.Builder

	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render("  " + snap.Subject)
	infoRight := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("Q %d/%d  %s %d",
			snap.Index+1, snap.Total,
			lipgloss.NewStyle().Foreground(theme.Success).Render("✓"),
			snap.Score,
		))

	infoLine := infoLeft
	if pad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4; pad > 0 {
		infoLine += strings.Repeat(" ", pad) + infoRight
	}
	b.WriteString(infoLine)
	b.WriteString("\n")

	progress := float64(snap.Index) / float64(snap.Total)
	if snap.Revealed {
		progress = float64(snap.Index+1) / float64(snap.Total)
	}
	b.WriteString("  " + components.NewProgressBar("", progress, true, width-6).View())
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width-4).
		PaddingLeft(2).
		Foreground(theme.Text).
		Bold(true).
		Render(q.Prompt))
	b.WriteString("\n\n")

	for _, line := range strings.Split(strings.TrimRight(s.choice.View(), "\n"), "\n") {
		b.WriteString("  " + line + "\n")
	}

	if snap.Revealed {
		b.WriteString("\n")
		b.WriteString(renderFeedback(snap, width))
	}

	return b.String()
}

func renderFeedback(snap qz.Snapshot, width int) string {
	q := snap.Question
	var verdict string
	if snap.Correct {
		verdict = theme.Correct.Render("Correct!")
	} else {
		verdict = theme.Incorrect.Render("Incorrect.") + " " +
			theme.Body.Render("The answer is "+q.CorrectOption+".")
	}

	body := verdict
	if q.Explanation != "" {
		body += "\n\n" + lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Width(width-12).
			Render(q.Explanation)
	}
	return lipgloss.NewStyle().MarginLeft(2).Render(theme.Card.Render(body))
}
