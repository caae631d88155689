package tutor

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/router"
	"github.com/abhisek/studyhall/internal/screen"
	"github.com/abhisek/studyhall/internal/screens/chat"
	tut "github.com/abhisek/studyhall/internal/tutor"
	"github.com/abhisek/studyhall/internal/ui/layout"
	"github.com/abhisek/studyhall/internal/ui/theme"
)

const maxRecent = 5

type historyLoadedMsg struct {
	Items []tut.Summary
	Err   error
}

// SubjectScreen picks a subject for a new conversation or reopens a
// recent one.
type SubjectScreen struct {
	engine   *tut.Engine
	subjects []string
	recent   []tut.Summary
	selected int
	errMsg   string
}

var _ screen.Screen = (*SubjectScreen)(nil)
var _ screen.KeyHintProvider = (*SubjectScreen)(nil)

// New creates a SubjectScreen.
func New(engine *tut.Engine) *SubjectScreen {
	return &SubjectScreen{
		engine:   engine,
		subjects: engine.ListSubjects(),
	}
}

func (s *SubjectScreen) Init() tea.Cmd {
	return s.loadHistory()
}

func (s *SubjectScreen) loadHistory() tea.Cmd {
	engine := s.engine
	return func() tea.Msg {
		items, err := engine.History(context.Background())
		return historyLoadedMsg{Items: items, Err: err}
	}
}

func (s *SubjectScreen) Title() string {
	return "AI Tutor"
}

func (s *SubjectScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SubjectScreen) itemCount() int {
	return len(s.subjects) + len(s.recent)
}

func (s *SubjectScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		s.errMsg = ""
		if msg.Err != nil {
			s.errMsg = "Recent conversations are unavailable."
		}
		s.recent = msg.Items
		if len(s.recent) > maxRecent {
			s.recent = s.recent[:maxRecent]
		}
		if s.selected >= s.itemCount() {
			s.selected = 0
		}
		return s, nil

	case screen.ResumedMsg:
		return s, s.loadHistory()

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < s.itemCount()-1 {
				s.selected++
			}
		case "enter":
			return s, s.open()
		}
	}
	return s, nil
}

// open starts or resumes the selected conversation and pushes the chat.
func (s *SubjectScreen) open() tea.Cmd {
	engine := s.engine
	if s.selected < len(s.subjects) {
		subject := s.subjects[s.selected]
		return func() tea.Msg {
			engine.StartSession(context.Background(), subject)
			return router.PushScreenMsg{Screen: chat.New(engine)}
		}
	}
	i := s.selected - len(s.subjects)
	if i >= len(s.recent) {
		return nil
	}
	id := s.recent[i].ID
	return func() tea.Msg {
		engine.ResumeSession(context.Background(), id)
		return router.PushScreenMsg{Screen: chat.New(engine)}
	}
}

func (s *SubjectScreen) View(width, height int) string {
	var b strings.Builder

	b.WriteString(sectionTitle("Choose a subject"))
	for i, subj := range s.subjects {
		b.WriteString(s.line(i, subj))
	}

	b.WriteString("\n")
	b.WriteString(sectionTitle("Recent conversations"))
	switch {
	case s.errMsg != "":
		b.WriteString("    " + lipgloss.NewStyle().Foreground(theme.Error).Render(s.errMsg) + "\n")
	case len(s.recent) == 0:
		b.WriteString("    " + theme.Hint.Render("No conversations yet") + "\n")
	default:
		for i, r := range s.recent {
			label := fmt.Sprintf("%-18s %-10s %s", layout.Truncate(r.Subject, 18), r.Timestamp,
				layout.Truncate(r.LastMessage, max(width-44, 10)))
			b.WriteString(s.line(len(s.subjects)+i, label))
		}
	}

	b.WriteString("\n")
	b.WriteString(sectionTitle("Try asking"))
	for _, q := range tut.InitialSuggestions() {
		b.WriteString("    " + theme.Hint.Render(q) + "\n")
	}

	return b.String()
}

func (s *SubjectScreen) line(i int, label string) string {
	if i == s.selected {
		return theme.Selected.Render("  ▸ "+label) + "\n"
	}
	return theme.Unselected.Render("    "+label) + "\n"
}

func sectionTitle(t string) string {
	return lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("  "+t) + "\n\n"
}
