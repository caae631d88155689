package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/quiz"
	"github.com/abhisek/studyhall/internal/router"
	"github.com/abhisek/studyhall/internal/screen"
	"github.com/abhisek/studyhall/internal/screens/chat"
	"github.com/abhisek/studyhall/internal/tutor"
	"github.com/abhisek/studyhall/internal/ui/layout"
	"github.com/abhisek/studyhall/internal/ui/theme"
)

type historyLoadedMsg struct {
	Conversations []tutor.Summary
	Reports       []quiz.Report
	Err           error
}

// HistoryScreen lists recent tutor conversations and past quiz reports.
type HistoryScreen struct {
	tutor         *tutor.Engine
	reports       *quiz.ReportLog
	conversations []tutor.Summary
	quizReports   []quiz.Report
	selected      int
	expanded      map[int]bool
	loaded        bool
	errMsg        string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(engine *tutor.Engine, reports *quiz.ReportLog) *HistoryScreen {
	return &HistoryScreen{
		tutor:    engine,
		reports:  reports,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	engine, reports := s.tutor, s.reports
	return func() tea.Msg {
		ctx := context.Background()

		convs, err := engine.History(ctx)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}

		// A missing report log only hides the quiz section.
		var rs []quiz.Report
		if reports != nil {
			rs, _ = reports.List(ctx)
		}
		return historyLoadedMsg{Conversations: convs, Reports: rs}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Open"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) itemCount() int {
	return len(s.conversations) + len(s.quizReports)
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.errMsg = ""
			s.conversations = msg.Conversations
			s.quizReports = msg.Reports
		}
		s.loaded = true
		if s.selected >= s.itemCount() {
			s.selected = 0
		}
		return s, nil

	case screen.ResumedMsg:
		return s, s.Init()

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < s.itemCount()-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			return s, s.open()
		}
	}
	return s, nil
}

// open resumes a conversation or toggles a report's weak areas.
func (s *HistoryScreen) open() tea.Cmd {
	if s.selected < len(s.conversations) {
		engine := s.tutor
		id := s.conversations[s.selected].ID
		return func() tea.Msg {
			engine.ResumeSession(context.Background(), id)
			return router.PushScreenMsg{Screen: chat.New(engine)}
		}
	}
	s.expanded[s.selected] = !s.expanded[s.selected]
	return nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if s.itemCount() == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  Nothing here yet. Take a mock test or ask the tutor!")
	}

	var b strings.Builder
	b.WriteString("\n")

	heading := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)

	if len(s.conversations) > 0 {
		b.WriteString(heading.Render("  Conversations"))
		b.WriteString("\n\n")
		for i, c := range s.conversations {
			line := fmt.Sprintf("%-20s %-10s %3d msgs  %s",
				layout.Truncate(c.Subject, 20), c.Timestamp, c.MessageCount,
				layout.Truncate(c.LastMessage, max(width-52, 10)))
			b.WriteString(s.row(i, line))
		}
		b.WriteString("\n")
	}

	if len(s.quizReports) > 0 {
		b.WriteString(heading.Render("  Quiz reports"))
		b.WriteString("\n\n")
		for j, r := range s.quizReports {
			i := len(s.conversations) + j
			line := fmt.Sprintf("%s  %-20s %s  %s",
				r.CompletedAt.Local().Format("Jan 02, 2006"),
				layout.Truncate(r.Subject, 20), r.Summary(), r.Performance)
			b.WriteString(s.row(i, line))

			if s.expanded[i] {
				b.WriteString(renderWeakAreas(r, width))
			}
		}
	}

	return b.String()
}

func (s *HistoryScreen) row(i int, line string) string {
	prefix := "    "
	style := lipgloss.NewStyle().Foreground(theme.Text)
	if i == s.selected {
		prefix = "  ▸ "
		style = style.Foreground(theme.Primary).Bold(true)
	}
	return style.Render(prefix+line) + "\n"
}

func renderWeakAreas(r quiz.Report, width int) string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true)
	if len(r.WeakAreas) == 0 {
		return dim.Render("        No weak areas") + "\n"
	}
	var b strings.Builder
	for _, area := range r.WeakAreas {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).
			Render("        • "+layout.Truncate(area, max(width-12, 10))))
		b.WriteString("\n")
	}
	return b.String()
}
