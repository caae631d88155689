package components

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/ui/theme"
)

var choiceLabels = []string{"A", "B", "C", "D", "E", "F"}

// MultiChoice renders a question's options with a movable cursor. The
// chosen answer and the reveal are owned by the caller.
type MultiChoice struct {
	Options  []string
	Cursor   int
	Chosen   string
	Correct  string
	Revealed bool
}

// NewMultiChoice creates a selector over options with the cursor on the
// first one.
func NewMultiChoice(options []string) MultiChoice {
	return MultiChoice{Options: options}
}

// Update moves the cursor with arrows or number keys. It is inert once
// revealed.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Revealed {
		return m, nil
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Options)-1 {
			m.Cursor++
		}
	case "1", "2", "3", "4", "5", "6":
		if i := int(key[0] - '1'); i < len(m.Options) {
			m.Cursor = i
		}
	}

	return m, nil
}

// Current returns the option under the cursor.
func (m MultiChoice) Current() string {
	if m.Cursor < 0 || m.Cursor >= len(m.Options) {
		return ""
	}
	return m.Options[m.Cursor]
}

// View renders the options.
func (m MultiChoice) View() string {
	var s string
	for i, opt := range m.Options {
		label := fmt.Sprint(i + 1)
		if i < len(choiceLabels) {
			label = choiceLabels[i]
		}

		prefix := "  "
		if i == m.Cursor && !m.Revealed {
			prefix = "▸ "
		}
		mark := " "
		if opt == m.Chosen {
			mark = "●"
		}
		line := fmt.Sprintf("%s%s %s)  %s", prefix, mark, label, opt)

		var style lipgloss.Style
		switch {
		case m.Revealed && opt == m.Correct:
			style = theme.Correct
		case m.Revealed && opt == m.Chosen:
			style = theme.Incorrect
		case m.Revealed:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == m.Cursor:
			style = theme.Selected
		case opt == m.Chosen:
			style = lipgloss.NewStyle().Foreground(theme.Accent)
		default:
			style = theme.Unselected
		}
		s += style.Render(line) + "\n"
	}
	return s
}
