// Package credential is the screen for saving the text generation API key.
package credential

import (
	"context"
	"errors"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/router"
	"github.com/abhisek/studyhall/internal/screen"
	"github.com/abhisek/studyhall/internal/textgen"
	"github.com/abhisek/studyhall/internal/ui/components"
	"github.com/abhisek/studyhall/internal/ui/layout"
	"github.com/abhisek/studyhall/internal/ui/theme"
)

type loadedMsg struct {
	Masked string
	Stored bool
	Err    error
}

type savedMsg struct {
	Masked string
	Err    error
}

type clearedMsg struct {
	Err error
}

// CredentialScreen reads an API key into a masked input and saves it.
type CredentialScreen struct {
	creds  *textgen.StoreCredentials
	input  components.TextInput
	masked string
	stored bool
	notice string
	errMsg string
}

var _ screen.Screen = (*CredentialScreen)(nil)
var _ screen.KeyHintProvider = (*CredentialScreen)(nil)

// New creates a new CredentialScreen.
func New(creds *textgen.StoreCredentials) *CredentialScreen {
	return &CredentialScreen{
		creds: creds,
		input: components.NewTextInput("Paste your API key", true, 200),
	}
}

// Status is the header line for the current credential state.
func Status(ctx context.Context, creds *textgen.StoreCredentials) string {
	key, err := creds.APIKey(ctx)
	if err != nil {
		return "No API key"
	}
	return "Key " + textgen.Mask(key)
}

func (s *CredentialScreen) Init() tea.Cmd {
	creds := s.creds
	return tea.Batch(s.input.Init(), func() tea.Msg {
		ctx := context.Background()
		stored, err := creds.Stored(ctx)
		if err != nil {
			return loadedMsg{Err: err}
		}
		key, err := creds.APIKey(ctx)
		if errors.Is(err, textgen.ErrMissingCredential) {
			return loadedMsg{}
		}
		if err != nil {
			return loadedMsg{Err: err}
		}
		return loadedMsg{Masked: textgen.Mask(key), Stored: stored}
	})
}

func (s *CredentialScreen) Title() string {
	return "API Key"
}

func (s *CredentialScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Save"},
		{Key: "Ctrl+X", Description: "Clear saved key"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *CredentialScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.masked = msg.Masked
		s.stored = msg.Stored
		return s, nil

	case savedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.masked = msg.Masked
		s.stored = true
		s.notice = "API key saved."
		s.input.Reset()
		return s, screen.Status("Key " + msg.Masked)

	case clearedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.notice = "Saved key removed."
		s.stored = false
		return s, s.Init()

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, router.PopCmd
		case "enter":
			return s, s.save()
		case "ctrl+x":
			return s, s.clear()
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *CredentialScreen) save() tea.Cmd {
	key := s.input.Trimmed()
	if key == "" {
		s.notice = ""
		s.errMsg = "Enter an API key first."
		return nil
	}
	creds := s.creds
	return func() tea.Msg {
		if err := creds.Save(context.Background(), key); err != nil {
			return savedMsg{Err: err}
		}
		return savedMsg{Masked: textgen.Mask(key)}
	}
}

func (s *CredentialScreen) clear() tea.Cmd {
	creds := s.creds
	return tea.Sequence(func() tea.Msg {
		return clearedMsg{Err: creds.Clear(context.Background())}
	}, func() tea.Msg {
		return screen.StatusMsg{Text: Status(context.Background(), creds)}
	})
}

func (s *CredentialScreen) View(width, height int) string {
	var b strings.Builder

	b.WriteString(theme.Title.Render("Text generation API key"))
	b.WriteString("\n\n")

	switch {
	case s.masked == "":
		b.WriteString(theme.Hint.Render("No key configured. The tutor will answer with a fallback message."))
	case s.stored:
		b.WriteString(theme.Body.Render("Saved key: " + s.masked))
	default:
		b.WriteString(theme.Body.Render("Using configured key: " + s.masked))
	}
	b.WriteString("\n\n")

	b.WriteString(s.input.View())
	b.WriteString("\n\n")

	if s.errMsg != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render(s.errMsg))
	} else if s.notice != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Success).Render(s.notice))
	}

	cardWidth := min(width-4, 70)
	card := theme.Card.Width(cardWidth).Render(b.String())

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(card)
}
