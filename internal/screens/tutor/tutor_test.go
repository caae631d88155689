package tutor

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyhall/internal/router"
	"github.com/abhisek/studyhall/internal/screen"
	"github.com/abhisek/studyhall/internal/store"
	"github.com/abhisek/studyhall/internal/textgen"
	tut "github.com/abhisek/studyhall/internal/tutor"
)

type cannedGenerator struct{}

func (cannedGenerator) Generate(context.Context, string, textgen.Options) (string, error) {
	return "A semaphore is a counter guarding a shared resource.", nil
}

func newScreen(t *testing.T) (*SubjectScreen, *tut.Engine) {
	t.Helper()
	engine := tut.NewEngine(store.NewMemoryStore(), cannedGenerator{}, nil)
	return New(engine), engine
}

func load(s *SubjectScreen) {
	s.Update(s.Init()())
}

func TestSubjectScreen_ListsCatalog(t *testing.T) {
	s, _ := newScreen(t)
	load(s)

	view := s.View(100, 30)
	for _, want := range []string{"Operating Systems", "Data Structures", "No conversations yet"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestSubjectScreen_EnterStartsSession(t *testing.T) {
	s, engine := newScreen(t)
	load(s)

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(router.PushScreenMsg); !ok {
		t.Fatal("expected PushScreenMsg")
	}

	sess, ok := engine.Current()
	if !ok {
		t.Fatal("expected an active session")
	}
	if sess.Subject != s.subjects[1] {
		t.Errorf("expected subject %q, got %q", s.subjects[1], sess.Subject)
	}
}

func TestSubjectScreen_ResumeRecent(t *testing.T) {
	s, engine := newScreen(t)
	started := engine.StartSession(context.Background(), "Calculus")
	engine.EndSession()

	s.Update(s.Init()())
	if len(s.recent) != 1 {
		t.Fatalf("expected 1 recent conversation, got %d", len(s.recent))
	}

	for range len(s.subjects) {
		s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	}
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	cmd()

	sess, ok := engine.Current()
	if !ok || sess.ID != started.ID {
		t.Fatalf("expected session %s resumed, got %+v", started.ID, sess)
	}
}

func TestSubjectScreen_ReloadsOnResume(t *testing.T) {
	s, engine := newScreen(t)
	load(s)

	engine.StartSession(context.Background(), "Linear Algebra")
	_, cmd := s.Update(screen.ResumedMsg{})
	if cmd == nil {
		t.Fatal("expected a reload command")
	}
	s.Update(cmd())
	if len(s.recent) != 1 {
		t.Fatalf("expected the new conversation listed, got %d", len(s.recent))
	}
}
