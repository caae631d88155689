package quiz

import (
	"context"
	"fmt"
	"strings"
)

// OptionCount is the number of choices every question carries.
const OptionCount = 4

// Question is one multiple-choice item. It is not modified once a quiz
// has started.
type Question struct {
	ID            int      `json:"id"`
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectOption string   `json:"correct_option"`
	Explanation   string   `json:"explanation"`
}

// IsCorrect reports whether option is the right answer.
func (q Question) IsCorrect(option string) bool {
	return option == q.CorrectOption
}

// HasOption reports whether option is one of the choices.
func (q Question) HasOption(option string) bool {
	for _, o := range q.Options {
		if o == option {
			return true
		}
	}
	return false
}

// Validate checks the structural rules: a prompt, exactly four distinct
// non-empty options, and a correct option drawn from them.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Prompt) == "" {
		return fmt.Errorf("question %d: prompt is empty", q.ID)
	}
	if len(q.Options) != OptionCount {
		return fmt.Errorf("question %d: expected %d options, got %d", q.ID, OptionCount, len(q.Options))
	}
	seen := make(map[string]bool, len(q.Options))
	for _, o := range q.Options {
		if strings.TrimSpace(o) == "" {
			return fmt.Errorf("question %d: empty option", q.ID)
		}
		if seen[o] {
			return fmt.Errorf("question %d: duplicate option %q", q.ID, o)
		}
		seen[o] = true
	}
	if !seen[q.CorrectOption] {
		return fmt.Errorf("question %d: correct option %q is not among the options", q.ID, q.CorrectOption)
	}
	return nil
}

func (q Question) clone() Question {
	q.Options = append([]string(nil), q.Options...)
	return q
}

// QuestionSource resolves a subject to a question set.
type QuestionSource interface {
	Questions(ctx context.Context, subject string) ([]Question, error)
}

// QuestionLoadError is a failure to fetch the question set. The caller
// may retry Start.
type QuestionLoadError struct {
	Subject string
	Err     error
}

func (e *QuestionLoadError) Error() string {
	return fmt.Sprintf("load questions for %q: %v", e.Subject, e.Err)
}

func (e *QuestionLoadError) Unwrap() error { return e.Err }
