package tutor

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/abhisek/studyhall/internal/llm"
	"github.com/abhisek/studyhall/internal/store"
	"github.com/abhisek/studyhall/internal/textgen"
)

type call struct {
	purpose string
	prompt  string
	opts    textgen.Options
}

// fakeGenerator answers from a queue; an empty queue is a GenerationError.
type fakeGenerator struct {
	mu      sync.Mutex
	replies []string
	errs    []error
	calls   []call
}

func (f *fakeGenerator) push(reply string, err error) *fakeGenerator {
	f.replies = append(f.replies, reply)
	f.errs = append(f.errs, err)
	return f
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, opts textgen.Options) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{purpose: llm.PurposeFrom(ctx), prompt: prompt, opts: opts})
	if len(f.replies) == 0 {
		return "", &textgen.GenerationError{Message: "no reply queued"}
	}
	r, err := f.replies[0], f.errs[0]
	f.replies, f.errs = f.replies[1:], f.errs[1:]
	return r, err
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestEngine(t *testing.T, gen Generator) (*Engine, *store.MemoryStore) {
	t.Helper()
	s := store.NewMemoryStore()
	e := NewEngine(s, gen, nil)
	clock := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
	e.now = func() time.Time { return clock }
	n := 0
	e.newID = func() string {
		n++
		return fmt.Sprintf("sess-%d", n)
	}
	return e, s
}

func TestListSubjects(t *testing.T) {
	e, _ := newTestEngine(t, &fakeGenerator{})
	got := e.ListSubjects()
	if len(got) != 6 || got[0] != "Operating Systems" || got[5] != "Linear Algebra" {
		t.Fatalf("unexpected catalog: %v", got)
	}
	got[0] = "mutated"
	if e.ListSubjects()[0] != "Operating Systems" {
		t.Fatal("catalog must not be mutable through the returned slice")
	}
}

func TestStartSession_SeedsGreetingAndSuggestions(t *testing.T) {
	e, s := newTestEngine(t, &fakeGenerator{})
	ctx := context.Background()

	sess := e.StartSession(ctx, "Operating Systems")
	if len(sess.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sess.Messages))
	}
	m := sess.Messages[0]
	if m.Sender != SenderAssistant || m.Text != "Hello! I'm your AI tutor for Operating Systems. How can I help you today?" {
		t.Fatalf("unexpected greeting: %+v", m)
	}
	if m.Time != "2:30:00 PM" {
		t.Fatalf("unexpected display time %q", m.Time)
	}
	if !reflect.DeepEqual(sess.Suggestions, subjectSuggestions["Operating Systems"]) {
		t.Fatalf("expected OS suggestions, got %v", sess.Suggestions)
	}

	transcript, err := store.GetList[Message](ctx, s, "tutor:session:sess-1")
	if err != nil || len(transcript) != 1 {
		t.Fatalf("expected persisted transcript, got %v (%v)", transcript, err)
	}
	hist, _ := e.History(ctx)
	if len(hist) != 1 || hist[0].ID != "sess-1" || hist[0].MessageCount != 1 || hist[0].Timestamp != "Today" {
		t.Fatalf("unexpected history: %+v", hist)
	}
}

func TestStartSession_UnknownSubjectUsesGenericSuggestions(t *testing.T) {
	e, _ := newTestEngine(t, &fakeGenerator{})
	sess := e.StartSession(context.Background(), "Calculus")
	if !reflect.DeepEqual(sess.Suggestions, genericSuggestions) {
		t.Fatalf("expected generic suggestions, got %v", sess.Suggestions)
	}
}

func TestSendMessage_BlankIsNoOp(t *testing.T) {
	gen := &fakeGenerator{}
	e, _ := newTestEngine(t, gen)
	e.StartSession(context.Background(), "Operating Systems")

	for _, text := range []string{"", "   ", "\n\t"} {
		if e.SendMessage(context.Background(), text) {
			t.Fatalf("expected %q to be rejected", text)
		}
	}
	cur, _ := e.Current()
	if len(cur.Messages) != 1 || gen.callCount() != 0 {
		t.Fatalf("expected no change, got %d messages / %d calls", len(cur.Messages), gen.callCount())
	}
}

func TestSendMessage_WithoutSessionIsNoOp(t *testing.T) {
	gen := &fakeGenerator{}
	e, _ := newTestEngine(t, gen)
	if e.SendMessage(context.Background(), "hello") {
		t.Fatal("expected rejection without an active session")
	}
}

func TestSendMessage_Success(t *testing.T) {
	gen := (&fakeGenerator{}).
		push("Paging splits memory into fixed-size pages.", nil).
		push("1. What is a page fault?\n2. How big is a page?\n\n3. What is a TLB miss?\n4. Why use paging?", nil)
	e, _ := newTestEngine(t, gen)
	ctx := context.Background()
	e.StartSession(ctx, "Operating Systems")

	if !e.SendMessage(ctx, "  Explain paging ") {
		t.Fatal("expected message to be sent")
	}

	cur, _ := e.Current()
	if len(cur.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(cur.Messages))
	}
	if cur.Messages[1].Sender != SenderUser || cur.Messages[1].Text != "Explain paging" {
		t.Fatalf("unexpected user message: %+v", cur.Messages[1])
	}
	if cur.Messages[2].Sender != SenderAssistant || cur.Messages[2].Text != "Paging splits memory into fixed-size pages." {
		t.Fatalf("unexpected reply: %+v", cur.Messages[2])
	}
	want := []string{"What is a page fault?", "How big is a page?", "What is a TLB miss?", "Why use paging?"}
	if !reflect.DeepEqual(cur.Suggestions, want) {
		t.Fatalf("expected %v, got %v", want, cur.Suggestions)
	}

	if len(gen.calls) != 2 {
		t.Fatalf("expected 2 generator calls, got %d", len(gen.calls))
	}
	if gen.calls[0].purpose != PurposeReply || gen.calls[0].opts != replyOptions {
		t.Fatalf("unexpected reply call: %+v", gen.calls[0])
	}
	if gen.calls[1].purpose != PurposeSuggestions || gen.calls[1].opts != suggestionOptions {
		t.Fatalf("unexpected suggestion call: %+v", gen.calls[1])
	}
	if !strings.HasSuffix(gen.calls[0].prompt, "User: Explain paging\n\nTutor:") {
		t.Fatalf("unexpected prompt tail: %q", gen.calls[0].prompt)
	}
}

func TestSendMessage_IDsIncrease(t *testing.T) {
	gen := (&fakeGenerator{}).push("a", nil).push("", nil)
	e, _ := newTestEngine(t, gen)
	e.StartSession(context.Background(), "Calculus")
	e.SendMessage(context.Background(), "q")

	cur, _ := e.Current()
	for i := 1; i < len(cur.Messages); i++ {
		if cur.Messages[i].ID <= cur.Messages[i-1].ID {
			t.Fatalf("message ids not increasing: %d then %d", cur.Messages[i-1].ID, cur.Messages[i].ID)
		}
	}
}

func TestSendMessage_NoCredential(t *testing.T) {
	// Scenario: no API key configured.
	mock := llm.NewMockProvider()
	client := textgen.New(textgen.NewStoreCredentials(store.NewMemoryStore(), ""),
		func(context.Context, string) (llm.Provider, error) { return mock, nil }, nil)
	e, _ := newTestEngine(t, client)
	ctx := context.Background()
	e.StartSession(ctx, "Operating Systems")

	if !e.SendMessage(ctx, "Explain paging") {
		t.Fatal("expected message to be accepted")
	}

	cur, _ := e.Current()
	if len(cur.Messages) != 3 {
		t.Fatalf("expected greeting + user + fallback, got %d", len(cur.Messages))
	}
	last := cur.Messages[2]
	if last.Sender != SenderAssistant || last.Text != FallbackReply {
		t.Fatalf("expected fallback reply, got %+v", last)
	}
	if !strings.Contains(last.Text, "couldn't connect") {
		t.Fatalf("fallback should mention the connection failure: %q", last.Text)
	}
	if !reflect.DeepEqual(cur.Suggestions, subjectSuggestions["Operating Systems"]) {
		t.Fatalf("expected OS defaults, got %v", cur.Suggestions)
	}
	if mock.CallCount() != 0 {
		t.Fatalf("expected no provider call, got %d", mock.CallCount())
	}
}

func TestSendMessage_AlwaysAddsTwoMessages(t *testing.T) {
	gen := (&fakeGenerator{}).
		push("ok", nil).push("", errors.New("suggestions down")).
		push("", &textgen.GenerationError{Message: "boom"})
	e, _ := newTestEngine(t, gen)
	ctx := context.Background()
	e.StartSession(ctx, "Data Structures")

	for i := range 2 {
		before, _ := e.Current()
		e.SendMessage(ctx, fmt.Sprintf("question %d", i))
		after, _ := e.Current()
		if len(after.Messages) != len(before.Messages)+2 {
			t.Fatalf("send %d: expected +2 messages, got %d -> %d", i, len(before.Messages), len(after.Messages))
		}
	}
}

func TestSendMessage_PendingDropsSecondCall(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	gen := &blockingGenerator{entered: entered, release: release}
	e, _ := newTestEngine(t, gen)
	ctx := context.Background()
	e.StartSession(ctx, "Operating Systems")

	done := make(chan bool)
	go func() { done <- e.SendMessage(ctx, "first") }()
	<-entered

	if !e.Pending() {
		t.Fatal("expected pending while generation is in flight")
	}
	cur, _ := e.Current()
	if len(cur.Messages) != 2 || cur.Messages[1].Text != "first" {
		t.Fatalf("expected optimistic user message, got %+v", cur.Messages)
	}

	if e.SendMessage(ctx, "second") {
		t.Fatal("expected second send to be dropped")
	}
	cur, _ = e.Current()
	if len(cur.Messages) != 2 {
		t.Fatalf("second send must not append, got %d messages", len(cur.Messages))
	}

	close(release)
	if !<-done {
		t.Fatal("expected first send to complete")
	}
	if e.Pending() {
		t.Fatal("expected pending to clear")
	}
	if gen.calls() != 2 {
		t.Fatalf("expected reply + suggestions calls only, got %d", gen.calls())
	}
}

type blockingGenerator struct {
	mu      sync.Mutex
	n       int
	entered chan struct{}
	release chan struct{}
}

func (b *blockingGenerator) Generate(ctx context.Context, prompt string, _ textgen.Options) (string, error) {
	b.mu.Lock()
	b.n++
	first := b.n == 1
	b.mu.Unlock()
	if first {
		close(b.entered)
		<-b.release
	}
	return "reply", nil
}

func (b *blockingGenerator) calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.n
}

func TestSuggestions_FallbackOrder(t *testing.T) {
	tests := []struct {
		name     string
		subject  string
		userText string
		response string
		err      error
		want     []string
	}{
		{
			name:     "parsed",
			subject:  "Calculus",
			response: "1. Why is X?\n\n2. How does Y work?\n3. no",
			want:     []string{"Why is X?", "How does Y work?"},
		},
		{
			name:     "keyword when nothing parses",
			subject:  "Calculus",
			userText: "tell me about memory allocation",
			response: "ok\nno",
			want:     keywordSuggestions[1].suggestions,
		},
		{
			name:     "subject when nothing parses and no keyword",
			subject:  "Operating Systems",
			userText: "hmm",
			response: "",
			want:     subjectSuggestions["Operating Systems"],
		},
		{
			name:     "subject on generation failure",
			subject:  "Computer Networks",
			userText: "what about sql",
			err:      &textgen.GenerationError{Message: "down"},
			want:     subjectSuggestions["Computer Networks"],
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := (&fakeGenerator{}).push(tt.response, tt.err)
			e, _ := newTestEngine(t, gen)
			e.StartSession(context.Background(), tt.subject)

			got := e.GenerateSuggestions(context.Background(), tt.userText, "answer")
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestResumeSession(t *testing.T) {
	gen := (&fakeGenerator{}).push("reply", nil).push("1. Follow up one?", nil)
	e, _ := newTestEngine(t, gen)
	ctx := context.Background()

	first := e.StartSession(ctx, "Computer Networks")
	e.SendMessage(ctx, "How does DNS work?")
	e.EndSession()
	if _, ok := e.Current(); ok {
		t.Fatal("expected no active session after EndSession")
	}

	resumed := e.ResumeSession(ctx, first.ID)
	if resumed.Subject != "Computer Networks" || len(resumed.Messages) != 3 {
		t.Fatalf("unexpected resumed session: %+v", resumed)
	}
	if !reflect.DeepEqual(resumed.Suggestions, subjectSuggestions["Computer Networks"]) {
		t.Fatalf("expected subject defaults on resume, got %v", resumed.Suggestions)
	}
}

func TestResumeSession_MissingTranscriptSeedsGreeting(t *testing.T) {
	e, s := newTestEngine(t, &fakeGenerator{})
	ctx := context.Background()

	sess := e.ResumeSession(ctx, "ghost")
	if sess.Subject != DefaultSubject || len(sess.Messages) != 1 || sess.Messages[0].Text != Greeting(DefaultSubject) {
		t.Fatalf("expected seeded greeting, got %+v", sess)
	}

	_ = s.Set(ctx, sessionKey("broken"), []byte("{"))
	sess = e.ResumeSession(ctx, "broken")
	if len(sess.Messages) != 1 {
		t.Fatalf("expected corrupt transcript to be replaced, got %+v", sess.Messages)
	}
}

func TestHistory_CapacityAndRecency(t *testing.T) {
	gen := &fakeGenerator{}
	e, _ := newTestEngine(t, gen)
	ctx := context.Background()

	var ids []string
	for i := range HistoryCapacity + 3 {
		ids = append(ids, e.StartSession(ctx, fmt.Sprintf("Subject %d", i)).ID)
	}

	hist, err := e.History(ctx)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != HistoryCapacity {
		t.Fatalf("expected %d entries, got %d", HistoryCapacity, len(hist))
	}
	if hist[0].ID != ids[len(ids)-1] {
		t.Fatalf("expected newest session first, got %s", hist[0].ID)
	}

	// Touching an older session moves it to the front without duplicating it.
	e.ResumeSession(ctx, ids[5])
	gen.push("reply", nil).push("", nil)
	e.SendMessage(ctx, "back again")

	hist, _ = e.History(ctx)
	if len(hist) != HistoryCapacity || hist[0].ID != ids[5] {
		t.Fatalf("expected %s at front, got %+v", ids[5], hist[0])
	}
	if hist[0].LastMessage != "back again" || hist[0].MessageCount != 3 {
		t.Fatalf("unexpected summary: %+v", hist[0])
	}
	seen := map[string]bool{}
	for i, h := range hist {
		if seen[h.ID] {
			t.Fatalf("duplicate history entry %s", h.ID)
		}
		seen[h.ID] = true
		if i > 0 && h.Seq >= hist[i-1].Seq {
			t.Fatalf("expected strictly decreasing seq, got %d after %d", h.Seq, hist[i-1].Seq)
		}
	}
}

func TestHistory_LabelsRecomputed(t *testing.T) {
	e, _ := newTestEngine(t, &fakeGenerator{})
	ctx := context.Background()
	e.StartSession(ctx, "Calculus")

	start := e.now()
	e.now = func() time.Time { return start.Add(3 * 24 * time.Hour) }

	hist, _ := e.History(ctx)
	if hist[0].Timestamp != "3d ago" {
		t.Fatalf("expected 3d ago, got %q", hist[0].Timestamp)
	}
}

func TestHistory_CorruptListIsReset(t *testing.T) {
	e, s := newTestEngine(t, &fakeGenerator{})
	ctx := context.Background()
	_ = s.Set(ctx, historyKey, []byte("garbage"))

	hist, err := e.History(ctx)
	if err != nil || len(hist) != 0 {
		t.Fatalf("expected empty history, got %v (%v)", hist, err)
	}

	e.StartSession(ctx, "Calculus")
	hist, _ = e.History(ctx)
	if len(hist) != 1 {
		t.Fatalf("expected history to recover, got %d entries", len(hist))
	}
}

func TestClearHistory(t *testing.T) {
	e, s := newTestEngine(t, &fakeGenerator{})
	ctx := context.Background()

	first := e.StartSession(ctx, "Physics")
	e.StartSession(ctx, "Chemistry")

	if err := e.ClearHistory(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	items, err := e.History(ctx)
	if err != nil || len(items) != 0 {
		t.Fatalf("expected empty history, got %d (%v)", len(items), err)
	}
	if _, err := s.Get(ctx, sessionKey(first.ID)); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected transcript deleted, got %v", err)
	}
	if _, ok := e.Current(); !ok {
		t.Fatal("active session should survive ClearHistory")
	}
}

func TestHistory_EvictionDeletesTranscript(t *testing.T) {
	gen := (&fakeGenerator{}).push("Paging maps pages to frames.", nil).push("", nil)
	e, s := newTestEngine(t, gen)
	ctx := context.Background()

	first := e.StartSession(ctx, "Operating Systems")
	e.SendMessage(ctx, "Explain paging")

	ids := []string{first.ID}
	for i := range HistoryCapacity {
		ids = append(ids, e.StartSession(ctx, fmt.Sprintf("Subject %d", i)).ID)
	}

	if _, err := s.Get(ctx, sessionKey(first.ID)); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected evicted transcript deleted, got %v", err)
	}

	// With the transcript gone, resume starts over instead of replaying the
	// old conversation under the default subject.
	resumed := e.ResumeSession(ctx, first.ID)
	if len(resumed.Messages) != 1 || resumed.Messages[0].Text != Greeting(resumed.Subject) {
		t.Fatalf("expected fresh greeting, got %+v", resumed.Messages)
	}
	for _, m := range resumed.Messages {
		if m.Text == "Explain paging" {
			t.Fatalf("stale transcript restored: %+v", resumed.Messages)
		}
	}

	if err := e.ClearHistory(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	for _, id := range ids {
		if _, err := s.Get(ctx, sessionKey(id)); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("expected transcript %s deleted, got %v", id, err)
		}
	}
}

type stalledProvider struct{}

func (stalledProvider) Generate(ctx context.Context, _ llm.Request) (*llm.Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (stalledProvider) ModelID() string { return "stalled" }

func TestSendMessage_StalledProviderFallsBack(t *testing.T) {
	client := textgen.New(textgen.NewStoreCredentials(store.NewMemoryStore(), "key"),
		func(context.Context, string) (llm.Provider, error) { return stalledProvider{}, nil }, nil).
		WithTimeout(20 * time.Millisecond)
	e, _ := newTestEngine(t, client)
	ctx := context.Background()
	e.StartSession(ctx, "Operating Systems")

	done := make(chan bool, 1)
	go func() { done <- e.SendMessage(ctx, "Explain paging") }()
	select {
	case ok := <-done:
		if !ok {
			t.Fatal("expected message to be accepted")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("SendMessage did not return after the timeout")
	}

	if e.Pending() {
		t.Fatal("expected pending to clear")
	}
	cur, _ := e.Current()
	if len(cur.Messages) != 3 || cur.Messages[2].Text != FallbackReply {
		t.Fatalf("expected fallback reply, got %+v", cur.Messages)
	}
	if !e.SendMessage(ctx, "Still there?") {
		t.Fatal("expected later sends to be accepted")
	}
}
