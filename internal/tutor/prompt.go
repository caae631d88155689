package tutor

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// contextWindow is how many earlier messages accompany a new question.
	contextWindow = 5

	maxSuggestions   = 4
	minSuggestionLen = 5
	maxSuggestionLen = 60
)

var numberingPrefix = regexp.MustCompile(`^[0-9.]+\s*`)

func preamble(subject string) string {
	return fmt.Sprintf("You are an expert tutor in %s. Answer the student's question clearly and "+
		"concisely, using short examples where they help. If the question is outside %s, "+
		"answer briefly and steer back to the subject.", subject, subject)
}

// BuildPrompt renders the reply prompt: the preamble, up to the last five
// earlier messages oldest first, then the new question.
func BuildPrompt(subject string, history []Message, text string) string {
	if len(history) > contextWindow {
		history = history[len(history)-contextWindow:]
	}

	var b strings.Builder
	b.WriteString(preamble(subject))
	b.WriteString("\n\n")
	for _, m := range history {
		role := "User"
		if m.Sender == SenderAssistant {
			role = "Tutor"
		}
		fmt.Fprintf(&b, "%s: %s\n\n", role, m.Text)
	}
	fmt.Fprintf(&b, "User: %s\n\nTutor:", text)
	return b.String()
}

// BuildSuggestionPrompt asks for follow-up questions to an exchange.
func BuildSuggestionPrompt(subject, userText, assistantText string) string {
	return fmt.Sprintf("A student studying %s asked:\n%s\n\nThe tutor answered:\n%s\n\n"+
		"Suggest exactly %d short follow-up questions the student might ask next. "+
		"Each must be under %d characters. Put one question per line with no other text.",
		subject, userText, assistantText, maxSuggestions, maxSuggestionLen)
}

// ParseSuggestions extracts follow-up questions from free text. Blank lines
// and leading numbering are dropped, lines outside 6..59 characters are
// discarded, and at most four are kept.
func ParseSuggestions(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = numberingPrefix.ReplaceAllString(line, "")
		n := utf8.RuneCountInString(line)
		if n <= minSuggestionLen || n >= maxSuggestionLen {
			continue
		}
		out = append(out, line)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}
