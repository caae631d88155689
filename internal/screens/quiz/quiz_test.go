package quiz

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	qz "github.com/abhisek/studyhall/internal/quiz"
	"github.com/abhisek/studyhall/internal/router"
)

type fixedSource struct {
	questions []qz.Question
	err       error
}

func (f fixedSource) Questions(context.Context, string) ([]qz.Question, error) {
	return f.questions, f.err
}

func twoQuestions() []qz.Question {
	return []qz.Question{
		{ID: 1, Prompt: "Which structure is LIFO?", Options: []string{"Queue", "Stack", "Heap", "Trie"}, CorrectOption: "Stack", Explanation: "Last in, first out."},
		{ID: 2, Prompt: "Which layer does TCP live in?", Options: []string{"Link", "Network", "Transport", "Session"}, CorrectOption: "Transport"},
	}
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

// startedScreen returns a screen whose quiz has loaded.
func startedScreen(t *testing.T, src fixedSource) *QuizScreen {
	t.Helper()
	s := New(qz.NewEngine(src, nil, nil))
	s.Init()

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected a start command")
	}
	if s.snap.State != qz.StateLoading {
		t.Fatalf("expected loading, got %s", s.snap.State)
	}

	// Run the start command directly; the spinner tick is not needed.
	err := s.engine.Start(context.Background(), "")
	s.Update(quizStartedMsg{Err: err})
	return s
}

func TestQuizScreen_StartsOnDefaultSubject(t *testing.T) {
	s := startedScreen(t, fixedSource{questions: twoQuestions()})

	if s.snap.State != qz.StateActive {
		t.Fatalf("expected active, got %s", s.snap.State)
	}
	if s.snap.Subject != qz.DefaultSubject {
		t.Errorf("expected subject %q, got %q", qz.DefaultSubject, s.snap.Subject)
	}
	if !strings.Contains(s.View(100, 30), "Which structure is LIFO?") {
		t.Error("expected the first question in the view")
	}
}

func TestQuizScreen_AnswerAndAdvance(t *testing.T) {
	s := startedScreen(t, fixedSource{questions: twoQuestions()})

	// Cursor to "Stack" and check.
	s.Update(keyPress('2'))
	s.Update(specialKey(tea.KeyEnter))
	if !s.snap.Revealed || !s.snap.Correct {
		t.Fatalf("expected a correct reveal, got revealed=%v correct=%v", s.snap.Revealed, s.snap.Correct)
	}
	if !strings.Contains(s.View(100, 30), "Last in, first out.") {
		t.Error("expected the explanation after reveal")
	}

	s.Update(specialKey(tea.KeyEnter))
	if s.snap.Index != 1 {
		t.Fatalf("expected question 2, got index %d", s.snap.Index)
	}

	// Select "Link" with space, change to "Transport", then check.
	s.Update(keyPress('1'))
	s.Update(specialKey(tea.KeySpace))
	if s.snap.Selected != "Link" {
		t.Fatalf("expected Link selected, got %q", s.snap.Selected)
	}
	s.Update(keyPress('3'))
	s.Update(specialKey(tea.KeySpace))
	s.Update(specialKey(tea.KeyEnter))
	if !s.snap.Correct {
		t.Fatal("changed selection should be the one scored")
	}

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if s.snap.State != qz.StateComplete {
		t.Fatalf("expected complete, got %s", s.snap.State)
	}
	if cmd == nil {
		t.Fatal("expected the report screen")
	}
	if _, ok := cmd().(router.ReplaceScreenMsg); !ok {
		t.Errorf("expected ReplaceScreenMsg, got %T", cmd())
	}
}

func TestQuizScreen_LoadFailureCanRetry(t *testing.T) {
	s := startedScreen(t, fixedSource{err: errors.New("offline")})

	if s.snap.State != qz.StateLoading {
		t.Fatalf("expected loading after failure, got %s", s.snap.State)
	}
	if !strings.Contains(s.View(100, 30), "Could not load questions") {
		t.Error("expected the load error in the view")
	}

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("Enter should retry")
	}
}

func TestQuizScreen_IgnoresAdvanceBeforeReveal(t *testing.T) {
	s := startedScreen(t, fixedSource{questions: twoQuestions()})
	s.Update(keyPress('n'))
	if s.snap.Index != 0 {
		t.Fatalf("expected to stay on question 1, got index %d", s.snap.Index)
	}
}

type stalledSource struct{}

func (stalledSource) Questions(ctx context.Context, _ string) ([]qz.Question, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestQuizScreen_StartHonorsTimeout(t *testing.T) {
	s := New(qz.NewEngine(stalledSource{}, nil, nil)).WithTimeout(20 * time.Millisecond)
	s.Init()

	msg, ok := startQuiz(s.engine, "", s.timeout)().(quizStartedMsg)
	if !ok {
		t.Fatal("expected quizStartedMsg")
	}
	if !errors.Is(msg.Err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", msg.Err)
	}

	s.Update(msg)
	if s.starting || !strings.Contains(s.View(100, 30), "Could not load questions") {
		t.Error("expected the load error once the timeout fired")
	}
}

func TestQuizScreen_IgnoresSupersededStart(t *testing.T) {
	s := New(qz.NewEngine(fixedSource{questions: twoQuestions()}, nil, nil))
	s.Init()
	s.Update(specialKey(tea.KeyEnter))

	s.Update(quizStartedMsg{Err: qz.ErrSuperseded})
	if !s.starting || s.errMsg != "" {
		t.Fatalf("superseded start must leave the screen loading, got starting=%v err=%q", s.starting, s.errMsg)
	}
}
