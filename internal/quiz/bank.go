package quiz

import (
	"context"
	"strings"
)

// DefaultSubject is used when the learner skips the subject prompt.
const DefaultSubject = "Computer Science"

// category is a question set selected by keyword.
type category struct {
	name      string
	keywords  []string
	questions []Question
}

// Bank is the built-in QuestionSource. A subject selects the first
// category whose keyword it contains (case-insensitive); anything else
// gets the default category.
type Bank struct {
	categories []category
	fallback   category
}

var _ QuestionSource = (*Bank)(nil)

// NewBank returns the built-in bank.
func NewBank() *Bank {
	return &Bank{
		categories: []category{physicsCategory},
		fallback:   computerScienceCategory,
	}
}

// Questions returns a copy of the matching set. It never fails.
func (b *Bank) Questions(_ context.Context, subject string) ([]Question, error) {
	c := b.resolve(subject)
	out := make([]Question, len(c.questions))
	for i, q := range c.questions {
		out[i] = q.clone()
	}
	return out, nil
}

// Category returns the name of the category subject resolves to.
func (b *Bank) Category(subject string) string {
	return b.resolve(subject).name
}

func (b *Bank) resolve(subject string) category {
	s := strings.ToLower(subject)
	for _, c := range b.categories {
		for _, kw := range c.keywords {
			if strings.Contains(s, kw) {
				return c
			}
		}
	}
	return b.fallback
}

var computerScienceCategory = category{
	name: "cs",
	questions: []Question{
		{
			ID:            1,
			Prompt:        "What is the time complexity of a binary search algorithm?",
			Options:       []string{"O(1)", "O(n)", "O(log n)", "O(n log n)"},
			CorrectOption: "O(log n)",
			Explanation:   "Binary search divides the search interval in half with each comparison, resulting in a logarithmic time complexity.",
		},
		{
			ID:            2,
			Prompt:        "Which of the following data structures is based on LIFO principle?",
			Options:       []string{"Queue", "Stack", "Linked List", "Graph"},
			CorrectOption: "Stack",
			Explanation:   "A stack follows the Last-In-First-Out (LIFO) principle where the last element added is the first one to be removed.",
		},
		{
			ID:     3,
			Prompt: "What is the primary purpose of normalization in database design?",
			Options: []string{
				"To speed up queries",
				"To reduce data redundancy",
				"To increase storage capacity",
				"To improve data visualization",
			},
			CorrectOption: "To reduce data redundancy",
			Explanation:   "Normalization is the process of organizing data to eliminate redundancy and ensure data integrity by dividing large tables into smaller ones.",
		},
		{
			ID:            4,
			Prompt:        "Which of the following is not a valid access modifier in Java?",
			Options:       []string{"public", "private", "protected", "friendly"},
			CorrectOption: "friendly",
			Explanation:   `Java has three access modifiers: public, private, and protected. The default is package-private (no modifier). "friendly" is not a valid access modifier in Java.`,
		},
		{
			ID:            5,
			Prompt:        "What design pattern is used to separate the construction of a complex object from its representation?",
			Options:       []string{"Factory", "Builder", "Singleton", "Adapter"},
			CorrectOption: "Builder",
			Explanation:   "The Builder pattern separates the construction of a complex object from its representation, allowing the same construction process to create different representations.",
		},
	},
}

var physicsCategory = category{
	name:     "physics",
	keywords: []string{"physics"},
	questions: []Question{
		{
			ID:            1,
			Prompt:        "What is the SI unit of force?",
			Options:       []string{"Watt", "Joule", "Newton", "Pascal"},
			CorrectOption: "Newton",
			Explanation:   "Newton (N) is the SI unit of force, defined as the force needed to accelerate a mass of one kilogram at a rate of one meter per second squared.",
		},
		{
			ID:            2,
			Prompt:        "Which of the following is a vector quantity?",
			Options:       []string{"Mass", "Temperature", "Velocity", "Energy"},
			CorrectOption: "Velocity",
			Explanation:   "Velocity is a vector quantity as it has both magnitude (speed) and direction.",
		},
	},
}
