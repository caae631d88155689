package chat

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/tutor"
	"github.com/abhisek/studyhall/internal/ui/layout"
	"github.com/abhisek/studyhall/internal/ui/theme"
)

var typingFrames = []string{"   ", ".  ", ".. ", "..."}

func (c *ChatScreen) View(width, height int) string {
	if !c.active {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render("No conversation is open. Press Esc to pick a subject."))
	}

	footer := c.renderSuggestions(width) + "\n\n" + "  " + c.input.View()
	footerHeight := lipgloss.Height(footer)

	transcript := c.renderTranscript(width, max(height-footerHeight-1, 1))
	return transcript + "\n" + footer
}

// renderTranscript renders the newest messages that fit in height.
func (c *ChatScreen) renderTranscript(width, height int) string {
	bubbleWidth := max(width*7/10, 20)

	var blocks []string
	for _, m := range c.session.Messages {
		blocks = append(blocks, renderMessage(m, width, bubbleWidth))
	}
	if c.pending {
		dots := typingFrames[c.frame%len(typingFrames)]
		blocks = append(blocks, "  "+theme.Hint.Render("Tutor is typing"+dots))
	}

	var kept []string
	used := 0
	for i := len(blocks) - 1; i >= 0; i-- {
		h := lipgloss.Height(blocks[i]) + 1
		if used+h > height && len(kept) > 0 {
			break
		}
		kept = append([]string{blocks[i]}, kept...)
		used += h
	}

	out := strings.Join(kept, "\n")
	if pad := height - lipgloss.Height(out); pad > 0 {
		out = strings.Repeat("\n", pad) + out
	}
	return out
}

func renderMessage(m tutor.Message, width, bubbleWidth int) string {
	if m.Sender == tutor.SenderUser {
		bubble := theme.UserBubble.Width(min(lipgloss.Width(m.Text)+2, bubbleWidth)).Render(m.Text)
		stamp := theme.Timestamp.Render(m.Time)
		return lipgloss.PlaceHorizontal(width-2, lipgloss.Right,
			lipgloss.JoinVertical(lipgloss.Right, bubble, stamp))
	}
	bubble := theme.TutorBubble.Width(bubbleWidth).Render(m.Text)
	stamp := theme.Timestamp.Render("Tutor · " + m.Time)
	return lipgloss.NewStyle().MarginLeft(2).Render(
		lipgloss.JoinVertical(lipgloss.Left, bubble, stamp))
}

func (c *ChatScreen) renderSuggestions(width int) string {
	if len(c.session.Suggestions) == 0 {
		return ""
	}
	var chips []string
	for i, s := range c.session.Suggestions {
		style := theme.Chip
		if i == c.suggestion {
			style = theme.ChipActive
		}
		chips = append(chips, style.Render(layout.Truncate(s, 40)))
	}

	row := ""
	var rows []string
	for _, chip := range chips {
		if row != "" && lipgloss.Width(row)+lipgloss.Width(chip)+1 > width-4 {
			rows = append(rows, row)
			row = ""
		}
		if row == "" {
			row = chip
		} else {
			row = lipgloss.JoinHorizontal(lipgloss.Top, row, " ", chip)
		}
	}
	if row != "" {
		rows = append(rows, row)
	}
	return lipgloss.NewStyle().MarginLeft(2).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
