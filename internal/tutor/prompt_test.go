package tutor

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestBuildPrompt_Format(t *testing.T) {
	history := []Message{
		{Text: "Hello! I'm your AI tutor for Calculus. How can I help you today?", Sender: SenderAssistant},
		{Text: "What is a limit?", Sender: SenderUser},
	}

	got := BuildPrompt("Calculus", history, "And a derivative?")
	want := preamble("Calculus") + "\n\n" +
		"Tutor: Hello! I'm your AI tutor for Calculus. How can I help you today?\n\n" +
		"User: What is a limit?\n\n" +
		"User: And a derivative?\n\nTutor:"
	if got != want {
		t.Fatalf("prompt mismatch\nwant: %q\ngot:  %q", want, got)
	}
}

func TestBuildPrompt_KeepsLastFive(t *testing.T) {
	var history []Message
	for i := range 8 {
		history = append(history, Message{Text: fmt.Sprintf("m%d", i), Sender: SenderUser})
	}

	got := BuildPrompt("X", history, "new")
	for i := range 3 {
		if strings.Contains(got, fmt.Sprintf("User: m%d\n", i)) {
			t.Fatalf("message m%d should be outside the context window", i)
		}
	}
	for i := 3; i < 8; i++ {
		if !strings.Contains(got, fmt.Sprintf("User: m%d\n", i)) {
			t.Fatalf("message m%d missing from prompt", i)
		}
	}
	if strings.Index(got, "m3") > strings.Index(got, "m7") {
		t.Fatal("context must be oldest first")
	}
}

func TestBuildSuggestionPrompt(t *testing.T) {
	p := BuildSuggestionPrompt("Operating Systems", "What is paging?", "Paging is...")
	for _, want := range []string{"Operating Systems", "What is paging?", "Paging is...", "exactly 4", "under 60 characters"} {
		if !strings.Contains(p, want) {
			t.Errorf("suggestion prompt missing %q", want)
		}
	}
}

func TestParseSuggestions(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "numbered with blank line",
			in:   "1. Why is X?\n\n2. How does Y work?\n3. no",
			want: []string{"Why is X?", "How does Y work?"},
		},
		{
			name: "takes first four",
			in:   "First question?\nSecond question?\nThird question?\nFourth question?\nFifth question?",
			want: []string{"First question?", "Second question?", "Third question?", "Fourth question?"},
		},
		{
			name: "crlf and indentation",
			in:   "  1.  What is a TLB?\r\n  - What is a TLB miss?\r\n",
			want: []string{"What is a TLB?", "- What is a TLB miss?"},
		},
		{
			name: "length bounds are exclusive",
			in:   "abcde\nabcdef\n" + strings.Repeat("a", 59) + "\n" + strings.Repeat("b", 60),
			want: []string{"abcdef", strings.Repeat("a", 59)},
		},
		{
			name: "empty",
			in:   "",
			want: nil,
		},
		{
			name: "only numbering",
			in:   "1.\n2.\n3.",
			want: nil,
		},
		{
			name: "multibyte counted as runes",
			in:   "¿Qué es una función?",
			want: []string{"¿Qué es una función?"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSuggestions(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
			if len(got) > 4 {
				t.Fatalf("more than 4 suggestions: %d", len(got))
			}
			for _, s := range got {
				if n := utf8.RuneCountInString(s); n <= 5 || n >= 60 {
					t.Fatalf("suggestion %q has length %d", s, n)
				}
			}
		})
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2026, 3, 31, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		at   time.Time
		want string
	}{
		{now.Add(-time.Hour), "Today"},
		{time.Date(2026, 3, 31, 0, 1, 0, 0, time.UTC), "Today"},
		{time.Date(2026, 3, 30, 23, 59, 0, 0, time.UTC), "Yesterday"},
		{now.AddDate(0, 0, -2), "2d ago"},
		{now.AddDate(0, 0, -6), "6d ago"},
		{now.AddDate(0, 0, -7), "1w ago"},
		{now.AddDate(0, 0, -20), "2w ago"},
		{now.AddDate(0, 0, -29), "4w ago"},
		{now.AddDate(0, 0, -30), "1m ago"},
		{now.AddDate(0, 0, -95), "3m ago"},
		{now.Add(time.Hour), "Today"},
	}
	for _, tt := range tests {
		if got := RelativeTime(tt.at, now); got != tt.want {
			t.Errorf("RelativeTime(%s) = %q, want %q", tt.at, got, tt.want)
		}
	}
}

func TestKeywordSuggestions(t *testing.T) {
	if got := KeywordSuggestions("Which SORTING algorithm is stable?"); got[0] != "Compare quick sort and merge sort" {
		t.Fatalf("unexpected sorting suggestions: %v", got)
	}
	if got := KeywordSuggestions("what is SQL"); got[1] != "Explain SQL joins with examples" {
		t.Fatalf("unexpected database suggestions: %v", got)
	}
	if got := KeywordSuggestions("hello"); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestInitialSuggestions(t *testing.T) {
	got := InitialSuggestions()
	if len(got) != 4 || got[3] != "Help me understand virtual memory" {
		t.Fatalf("unexpected initial suggestions: %v", got)
	}
}
