// Package welcome is the splash shown at startup. It types out the
// tagline under the banner and then hands over to the home screen.
package welcome

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/router"
	"github.com/abhisek/studyhall/internal/screen"
	"github.com/abhisek/studyhall/internal/ui/theme"
)

const (
	frameRate = 60 * time.Millisecond

	// Frames before the banner shows, and frames the finished splash
	// stays up before moving on.
	bannerDelay = 3
	holdFrames  = 12

	tagline = "Mock tests and an AI tutor in your terminal"
)

const bannerArt = `
 ███████╗████████╗██╗   ██╗██████╗ ██╗   ██╗██╗  ██╗ █████╗ ██╗     ██╗
 ██╔════╝╚══██╔══╝██║   ██║██╔══██╗╚██╗ ██╔╝██║  ██║██╔══██╗██║     ██║
 ███████╗   ██║   ██║   ██║██║  ██║ ╚████╔╝ ███████║███████║██║     ██║
 ╚════██║   ██║   ██║   ██║██║  ██║  ╚██╔╝  ██╔══██║██╔══██║██║     ██║
 ███████║   ██║   ╚██████╔╝██████╔╝   ██║   ██║  ██║██║  ██║███████╗███████╗
 ╚══════╝   ╚═╝    ╚═════╝ ╚═════╝    ╚═╝   ╚═╝  ╚═╝╚═╝  ╚═╝╚══════╝╚══════╝`

// bannerMinWidth is the width of bannerArt plus a margin.
const bannerMinWidth = 76

var bannerStyle = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)

// RenderBanner returns the app banner, spelled out letter by letter on
// terminals too narrow for the block art.
func RenderBanner(width int) string {
	if width < bannerMinWidth {
		return bannerStyle.Render("S T U D Y H A L L")
	}
	return bannerStyle.Render(bannerArt)
}

type frameMsg struct{}

func nextFrame() tea.Cmd {
	return tea.Tick(frameRate, func(time.Time) tea.Msg { return frameMsg{} })
}

// WelcomeScreen replaces itself with next() once the tagline is typed
// out and held, or on any key.
type WelcomeScreen struct {
	next  func() screen.Screen
	frame int
	done  bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

func New(next func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{next: next}
}

func (w *WelcomeScreen) Init() tea.Cmd { return nextFrame() }

func (w *WelcomeScreen) Title() string { return "" }

// typed is how many runes of the tagline are visible.
func (w *WelcomeScreen) typed() int {
	return min(max(w.frame-bannerDelay, 0)*4, len([]rune(tagline)))
}

func (w *WelcomeScreen) lastFrame() int {
	return bannerDelay + (len([]rune(tagline))+3)/4 + holdFrames
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case frameMsg:
		if w.done {
			return w, nil
		}
		w.frame++
		if w.frame >= w.lastFrame() {
			return w, w.finish()
		}
		return w, nextFrame()
	case tea.KeyPressMsg:
		return w, w.finish()
	}
	return w, nil
}

func (w *WelcomeScreen) finish() tea.Cmd {
	if w.done {
		return nil
	}
	w.done = true
	return router.ReplaceCmd(w.next())
}

func (w *WelcomeScreen) View(width, height int) string {
	if w.frame < bannerDelay {
		return ""
	}

	line := string([]rune(tagline)[:w.typed()])
	parts := []string{RenderBanner(width), "", theme.Body.Bold(true).Render(line)}
	if w.typed() == len([]rune(tagline)) {
		parts = append(parts, "", theme.Hint.Render("press any key to continue"))
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, parts...))
}
