package chat

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyhall/internal/store"
	"github.com/abhisek/studyhall/internal/textgen"
	"github.com/abhisek/studyhall/internal/tutor"
)

type echoGenerator struct{}

func (echoGenerator) Generate(_ context.Context, prompt string, _ textgen.Options) (string, error) {
	if strings.Contains(prompt, "follow-up") {
		return "1. What is a page fault?\n2. How big is a page?", nil
	}
	return "Paging maps virtual pages to physical frames.", nil
}

func newChat(t *testing.T) *ChatScreen {
	t.Helper()
	engine := tutor.NewEngine(store.NewMemoryStore(), echoGenerator{}, nil)
	engine.StartSession(context.Background(), "Operating Systems")
	c := New(engine)
	c.Init()
	return c
}

func typeText(c *ChatScreen, s string) {
	for _, r := range s {
		c.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

func TestChatScreen_ShowsGreeting(t *testing.T) {
	c := newChat(t)
	if c.Title() != "AI Tutor · Operating Systems" {
		t.Errorf("unexpected title %q", c.Title())
	}
	if !strings.Contains(c.View(200, 30), "AI tutor for Operating Systems") {
		t.Error("expected the greeting in the transcript")
	}
}

func TestChatScreen_SendRunsEngine(t *testing.T) {
	c := newChat(t)
	typeText(c, "What is paging?")

	_, cmd := c.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a send command")
	}
	if !c.waiting {
		t.Fatal("expected the screen to wait for the reply")
	}
	if c.input.Value() != "" {
		t.Errorf("expected input cleared, got %q", c.input.Value())
	}

	// Second Enter while waiting is ignored.
	if _, cmd := c.Update(tea.KeyPressMsg{Code: tea.KeyEnter}); cmd != nil {
		t.Error("expected no command while waiting")
	}

	accepted := c.engine.SendMessage(context.Background(), "What is paging?")
	c.Update(replyDoneMsg{Accepted: accepted})

	if c.waiting {
		t.Error("expected waiting cleared")
	}
	if n := len(c.session.Messages); n != 3 {
		t.Fatalf("expected 3 messages, got %d", n)
	}
	if !strings.Contains(c.View(200, 30), "physical frames") {
		t.Error("expected the reply in the transcript")
	}
}

func TestChatScreen_TabCyclesSuggestions(t *testing.T) {
	c := newChat(t)
	first := c.session.Suggestions[0]
	second := c.session.Suggestions[1]

	c.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	if c.input.Value() != first {
		t.Fatalf("expected %q in input, got %q", first, c.input.Value())
	}
	c.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	if c.input.Value() != second {
		t.Fatalf("expected %q in input, got %q", second, c.input.Value())
	}
	c.Update(tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift})
	if c.input.Value() != first {
		t.Fatalf("expected shift+tab back to %q, got %q", first, c.input.Value())
	}
}

func TestChatScreen_EmptyEnterDoesNothing(t *testing.T) {
	c := newChat(t)
	if _, cmd := c.Update(tea.KeyPressMsg{Code: tea.KeyEnter}); cmd != nil {
		t.Error("expected no command for an empty message")
	}
}

func TestChatScreen_NoSession(t *testing.T) {
	engine := tutor.NewEngine(store.NewMemoryStore(), echoGenerator{}, nil)
	c := New(engine)
	c.Init()
	if !strings.Contains(c.View(80, 20), "No conversation is open") {
		t.Error("expected the empty state")
	}
}
