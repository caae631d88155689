package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyhall/internal/quiz"
	"github.com/abhisek/studyhall/internal/store"
	"github.com/abhisek/studyhall/internal/textgen"
	"github.com/abhisek/studyhall/internal/tutor"
)

type cannedGenerator struct{}

func (cannedGenerator) Generate(_ context.Context, prompt string, _ textgen.Options) (string, error) {
	if strings.Contains(prompt, "follow-up") {
		return "1. What is a B-tree index?\n2. When is an index not used?", nil
	}
	return "An index speeds up lookups.", nil
}

func testCommand() *cobra.Command {
	c := &cobra.Command{}
	c.SetContext(context.Background())
	return c
}

func TestPlayQuiz(t *testing.T) {
	s := store.NewMemoryStore()
	reports := quiz.NewReportLog(s)
	e := quiz.NewEngine(quiz.NewBank(), reports, nil)

	// One invalid entry, then A for every question.
	in := strings.NewReader("z\n" + strings.Repeat("a\n", 20))
	var out bytes.Buffer
	if err := playQuiz(testCommand(), e, "Physics", in, &out); err != nil {
		t.Fatalf("playQuiz: %v", err)
	}

	text := out.String()
	for _, want := range []string{"Question 1 of", "Enter a letter from A to D.", "Score:", "Performance:"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}

	saved, err := reports.List(context.Background())
	if err != nil || len(saved) != 1 {
		t.Fatalf("expected one saved report, got %d (%v)", len(saved), err)
	}
}

func TestPlayQuiz_EOF(t *testing.T) {
	e := quiz.NewEngine(quiz.NewBank(), nil, nil)
	var out bytes.Buffer
	if err := playQuiz(testCommand(), e, "", strings.NewReader(""), &out); err == nil {
		t.Fatal("expected an error when input ends early")
	}
}

func TestAskTutor(t *testing.T) {
	e := tutor.NewEngine(store.NewMemoryStore(), cannedGenerator{}, nil)
	cmd := testCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := askTutor(cmd, e, "Database Systems", "", "What does an index do?"); err != nil {
		t.Fatalf("askTutor: %v", err)
	}
	text := out.String()
	for _, want := range []string{"[Database Systems]", "An index speeds up lookups.", "Try asking:", "Session: "} {
		if !strings.Contains(text, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, text)
		}
	}
}

func TestAskTutor_Blank(t *testing.T) {
	e := tutor.NewEngine(store.NewMemoryStore(), cannedGenerator{}, nil)
	if err := askTutor(testCommand(), e, "", "", "   "); err == nil {
		t.Fatal("expected an error for a blank question")
	}
}

func TestPrintHistory(t *testing.T) {
	var out bytes.Buffer
	printHistory(&out, nil, nil)
	if !strings.Contains(out.String(), "No history yet.") {
		t.Fatalf("unexpected empty output: %q", out.String())
	}

	out.Reset()
	printHistory(&out,
		[]tutor.Summary{{ID: "abc", Subject: "Physics", Timestamp: "Today", MessageCount: 3, LastMessage: "hi"}},
		[]quiz.Report{{Subject: "Physics", Score: 4, Total: 5, Percentage: 80, Performance: "Excellent!", CompletedAt: time.Now()}},
	)
	text := out.String()
	for _, want := range []string{"Conversations", "abc", "Quiz reports", "4/5 (80.0%)", "Excellent!"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}
}

func TestFormatCost(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.001234, "$0.0012"},
		{0.5, "$0.50"},
		{12.346, "$12.35"},
	}
	for _, tt := range tests {
		if got := formatCost(tt.in); got != tt.want {
			t.Errorf("formatCost(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPrintEvents(t *testing.T) {
	var out bytes.Buffer
	if err := printEvents(&out, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "No LLM events found.") {
		t.Fatalf("expected empty message, got %q", out.String())
	}

	out.Reset()
	events := []store.LLMEvent{{
		ID:        7,
		Timestamp: time.Date(2026, 3, 1, 9, 30, 0, 0, time.Local),
		LLMRequestEventData: store.LLMRequestEventData{
			Purpose: "tutor-reply", Model: "gemini-2.0-flash",
			InputTokens: 120, OutputTokens: 80, LatencyMs: 450,
		},
	}}
	if err := printEvents(&out, events); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"ID", "7", "2026-03-01 09:30:00", "tutor-reply", "gemini-2.0-flash", "450", "✗"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected list to contain %q, got:\n%s", want, out.String())
		}
	}
}

func TestPrintEvent_MissingBodies(t *testing.T) {
	var out bytes.Buffer
	printEvent(&out, &store.LLMEvent{ID: 3, LLMRequestEventData: store.LLMRequestEventData{
		Purpose: "quiz-gen", ErrorMessage: "rate limited", RequestBody: "[user]\nWrite questions\n\n",
	}})
	text := out.String()
	for _, want := range []string{"ID:        3", "Error:     rate limited", "REQUEST", "Write questions", "RESPONSE", "(not captured)"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected view to contain %q, got:\n%s", want, text)
		}
	}
}

func TestPrintUsage(t *testing.T) {
	var out bytes.Buffer
	err := printUsage(&out,
		[]store.PurposeUsage{
			{Purpose: "tutor-reply", Calls: 2, InputTokens: 1_000_000, OutputTokens: 10, AvgLatencyMs: 300},
			{Purpose: "quiz-gen", Calls: 1, InputTokens: 5, OutputTokens: 5},
		},
		[]store.ModelUsage{
			{Model: "gpt-4o-mini", Calls: 2, InputTokens: 1_000_000},
			{Model: "house-model", Calls: 1, InputTokens: 10, OutputTokens: 10},
		},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := out.String()
	for _, want := range []string{"Usage by purpose", "tutor-reply", "TOTAL", "$0.15", "TOTAL (partial)", "Pricing unavailable for: house-model"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected stats to contain %q, got:\n%s", want, text)
		}
	}
}

func TestPrintUsage_Empty(t *testing.T) {
	var out bytes.Buffer
	if err := printUsage(&out, nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "No LLM usage recorded yet.") {
		t.Fatalf("unexpected output %q", out.String())
	}
}
