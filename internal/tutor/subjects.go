package tutor

import (
	"fmt"
	"strings"
)

// DefaultSubject labels a resumed session whose subject is unknown.
const DefaultSubject = "General"

var subjects = []string{
	"Operating Systems",
	"Data Structures",
	"Computer Networks",
	"Database Systems",
	"Calculus",
	"Linear Algebra",
}

var subjectSuggestions = map[string][]string{
	"Operating Systems": {
		"Explain process scheduling algorithms",
		"What is virtual memory?",
		"How does paging work?",
		"Difference between mutex and semaphore",
	},
	"Data Structures": {
		"How to implement a balanced binary tree?",
		"Explain hash map collision resolution",
		"Time complexity of sorting algorithms",
		"When should I use a linked list vs array?",
	},
	"Computer Networks": {
		"Explain the TCP/IP protocol stack",
		"How does DNS resolution work?",
		"What is the purpose of subnetting?",
		"Difference between TCP and UDP",
	},
}

var genericSuggestions = []string{
	"What are the key concepts in this subject?",
	"Help me understand a difficult topic",
	"Give me practice problems",
	"Explain the fundamentals",
}

var initialSuggestions = []string{
	"Explain the concept of process scheduling",
	"How to implement a binary search tree?",
	"What are the key database normalization steps?",
	"Help me understand virtual memory",
}

// keywordSuggestions are checked in order against the learner's text.
var keywordSuggestions = []struct {
	keywords    []string
	suggestions []string
}{
	{
		keywords: []string{"algorithm", "sorting"},
		suggestions: []string{
			"Compare quick sort and merge sort",
			"Explain time complexity analysis",
			"How to optimize sorting algorithms?",
			"Real-world applications of sorting",
		},
	},
	{
		keywords: []string{"memory", "allocation"},
		suggestions: []string{
			"How does garbage collection work?",
			"Explain memory leaks and prevention",
			"What is stack vs heap memory?",
			"How does virtual memory work?",
		},
	},
	{
		keywords: []string{"database", "sql"},
		suggestions: []string{
			"What are database indexing strategies?",
			"Explain SQL joins with examples",
			"How to optimize database queries?",
			"NoSQL vs relational databases",
		},
	},
}

// Subjects returns the subject catalog.
func Subjects() []string {
	return append([]string(nil), subjects...)
}

// InitialSuggestions are shown before any subject is picked.
func InitialSuggestions() []string {
	return append([]string(nil), initialSuggestions...)
}

// SubjectSuggestions returns the default follow-ups for subject, or the
// generic set for subjects without their own.
func SubjectSuggestions(subject string) []string {
	if s, ok := subjectSuggestions[subject]; ok {
		return append([]string(nil), s...)
	}
	return append([]string(nil), genericSuggestions...)
}

// KeywordSuggestions returns follow-ups keyed on words in text, or nil.
func KeywordSuggestions(text string) []string {
	lower := strings.ToLower(text)
	for _, k := range keywordSuggestions {
		for _, kw := range k.keywords {
			if strings.Contains(lower, kw) {
				return append([]string(nil), k.suggestions...)
			}
		}
	}
	return nil
}

// Greeting is the assistant's opening line for subject.
func Greeting(subject string) string {
	return fmt.Sprintf("Hello! I'm your AI tutor for %s. How can I help you today?", subject)
}
