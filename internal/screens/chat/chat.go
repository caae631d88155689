package chat

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyhall/internal/screen"
	"github.com/abhisek/studyhall/internal/tutor"
	"github.com/abhisek/studyhall/internal/ui/components"
	"github.com/abhisek/studyhall/internal/ui/layout"
)

const pollInterval = 150 * time.Millisecond

// replyDoneMsg is sent when SendMessage returns.
type replyDoneMsg struct {
	Accepted bool
}

// pollMsg re-reads the engine while a reply is pending.
type pollMsg time.Time

// ChatScreen is the conversation view for the engine's active session.
type ChatScreen struct {
	engine     *tutor.Engine
	session    tutor.Session
	active     bool
	pending    bool
	waiting    bool
	input      components.TextInput
	suggestion int // index into session.Suggestions, -1 for none
	frame      int
}

var _ screen.Screen = (*ChatScreen)(nil)
var _ screen.KeyHintProvider = (*ChatScreen)(nil)

// New creates a ChatScreen. The engine must already have an active
// session.
func New(engine *tutor.Engine) *ChatScreen {
	return &ChatScreen{
		engine:     engine,
		input:      components.NewTextInput("Ask a question...", false, 500),
		suggestion: -1,
	}
}

func (c *ChatScreen) Init() tea.Cmd {
	c.refresh()
	return c.input.Init()
}

func (c *ChatScreen) Title() string {
	if c.session.Subject == "" {
		return "AI Tutor"
	}
	return "AI Tutor · " + c.session.Subject
}

func (c *ChatScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "Tab", Description: "Suggestion"},
		{Key: "Esc", Description: "Back"},
	}
}

func (c *ChatScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case replyDoneMsg:
		c.waiting = false
		c.refresh()
		return c, nil

	case pollMsg:
		c.frame++
		c.refresh()
		if c.waiting {
			return c, poll()
		}
		return c, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			return c, c.send()
		case "tab":
			c.cycleSuggestion(1)
			return c, nil
		case "shift+tab":
			c.cycleSuggestion(-1)
			return c, nil
		}
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

// send posts the input, or the highlighted suggestion when the input is
// empty. Nothing is sent while a reply is pending.
func (c *ChatScreen) send() tea.Cmd {
	if c.waiting || c.engine.Pending() {
		return nil
	}
	text := c.input.Trimmed()
	if text == "" && c.suggestion >= 0 && c.suggestion < len(c.session.Suggestions) {
		text = c.session.Suggestions[c.suggestion]
	}
	if text == "" {
		return nil
	}

	c.input.Reset()
	c.suggestion = -1
	c.waiting = true
	engine := c.engine

	return tea.Batch(
		func() tea.Msg {
			return replyDoneMsg{Accepted: engine.SendMessage(context.Background(), text)}
		},
		poll(),
	)
}

func (c *ChatScreen) cycleSuggestion(step int) {
	n := len(c.session.Suggestions)
	if n == 0 {
		return
	}
	c.suggestion = ((c.suggestion+step)%n + n) % n
	c.input.SetValue(c.session.Suggestions[c.suggestion])
}

func (c *ChatScreen) refresh() {
	c.session, c.active = c.engine.Current()
	c.pending = c.engine.Pending()
	if c.suggestion >= len(c.session.Suggestions) {
		c.suggestion = -1
	}
}

func poll() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return pollMsg(t)
	})
}
