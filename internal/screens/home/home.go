package home

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/quiz"
	"github.com/abhisek/studyhall/internal/router"
	"github.com/abhisek/studyhall/internal/screen"
	"github.com/abhisek/studyhall/internal/screens/credential"
	"github.com/abhisek/studyhall/internal/screens/history"
	quizscreen "github.com/abhisek/studyhall/internal/screens/quiz"
	tutorscreen "github.com/abhisek/studyhall/internal/screens/tutor"
	"github.com/abhisek/studyhall/internal/screens/welcome"
	"github.com/abhisek/studyhall/internal/textgen"
	"github.com/abhisek/studyhall/internal/tutor"
	"github.com/abhisek/studyhall/internal/ui/components"
	"github.com/abhisek/studyhall/internal/ui/layout"
	"github.com/abhisek/studyhall/internal/ui/theme"
)

// Deps are the engines the screens drive.
type Deps struct {
	Quiz        *quiz.Engine
	Tutor       *tutor.Engine
	Reports     *quiz.ReportLog
	Credentials *textgen.StoreCredentials

	// LLMTimeout bounds loading a generated question set.
	LLMTimeout time.Duration
}

// HomeScreen is the main menu.
type HomeScreen struct {
	menu components.Menu
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps Deps) *HomeScreen {
	push := func(s func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd { return router.PushCmd(s()) }
	}

	items := []components.MenuItem{
		{Label: "Mock Test", Hint: "Timed multiple-choice practice", Action: push(func() screen.Screen {
			return quizscreen.New(deps.Quiz).WithTimeout(deps.LLMTimeout)
		})},
		{Label: "AI Tutor", Hint: "Ask questions by subject", Action: push(func() screen.Screen {
			return tutorscreen.New(deps.Tutor)
		})},
		{Label: "History", Hint: "Past conversations and quiz reports", Action: push(func() screen.Screen {
			return history.New(deps.Tutor, deps.Reports)
		})},
		{Label: "API Key", Hint: "Manage the text generation key", Action: push(func() screen.Screen {
			return credential.New(deps.Credentials)
		})},
		{Label: "Exit", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}

	return &HomeScreen{menu: components.NewMenu(items)}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "1-5", Description: "Jump"},
		{Key: "Enter", Description: "Select"},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	var sections []string

	sections = append(sections, welcome.RenderBanner(width))
	sections = append(sections, theme.Subtitle.Render("Practice with a mock test or ask the AI tutor"))

	menu := theme.Card.Width(44).Render(strings.TrimRight(h.menu.View(), "\n"))
	sections = append(sections, menu)

	content := lipgloss.JoinVertical(lipgloss.Center, strings.Join(sections[:2], "\n\n"), "", sections[2])
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
