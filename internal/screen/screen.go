// Package screen defines what the router stacks and the messages screens
// exchange with the app shell.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyhall/internal/ui/layout"
)

// Screen is one page of the TUI. View renders only the area between the
// header and footer, which the app draws.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View(width, height int) string
	Title() string
}

// KeyHintProvider lets a screen replace the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusMsg sets the text on the right of the header.
type StatusMsg struct {
	Text string
}

// Status returns a command that sets the header status to text.
func Status(text string) tea.Cmd {
	return func() tea.Msg { return StatusMsg{Text: text} }
}

// ResumedMsg tells a screen it is active again because the one above it
// was closed.
type ResumedMsg struct{}
