// Package tutor runs subject-scoped AI tutoring conversations: message
// exchange through the text generator, follow-up suggestions, and the
// persisted recent conversations list.
package tutor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/studyhall/internal/llm"
	"github.com/abhisek/studyhall/internal/store"
	"github.com/abhisek/studyhall/internal/textgen"
)

// Purpose labels for the LLM event log.
const (
	PurposeReply       = "tutor-reply"
	PurposeSuggestions = "tutor-suggestions"
)

// FallbackReply is appended when a reply could not be generated.
const FallbackReply = "Sorry, I couldn't connect to the AI service right now. " +
	"Please check your API key and connection, then try again."

var (
	replyOptions      = textgen.Options{Temperature: 0.7, MaxOutputTokens: 1024}
	suggestionOptions = textgen.Options{Temperature: 0.7, MaxOutputTokens: 200}
)

// Generator produces text for a prompt. *textgen.Client satisfies it.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts textgen.Options) (string, error)
}

// Engine manages one active tutoring session at a time. It is safe for
// concurrent use; at most one SendMessage is in flight.
type Engine struct {
	store store.SessionStore
	gen   Generator
	log   *zap.Logger
	now   func() time.Time
	newID func() string

	mu      sync.Mutex
	session *Session
	pending bool
}

// NewEngine creates an Engine with no active session. log may be nil.
func NewEngine(s store.SessionStore, gen Generator, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		store: s,
		gen:   gen,
		log:   log.Named("tutor"),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// ListSubjects returns the subject catalog.
func (e *Engine) ListSubjects() []string {
	return Subjects()
}

// StartSession begins a new conversation on subject, seeded with a
// greeting. It always succeeds; persistence failures are logged.
func (e *Engine) StartSession(ctx context.Context, subject string) Session {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = DefaultSubject
	}

	e.mu.Lock()
	now := e.now()
	s := &Session{
		ID:          e.newID(),
		Subject:     subject,
		Messages:    []Message{e.message(nil, Greeting(subject), SenderAssistant, now)},
		Suggestions: SubjectSuggestions(subject),
	}
	e.session = s
	snap := s.clone()
	e.mu.Unlock()

	e.persist(ctx, snap, snap.Messages[0].Text, now)
	e.log.Debug("session started", zap.String("session", snap.ID), zap.String("subject", subject))
	return snap
}

// ResumeSession reopens a persisted conversation. A missing or unreadable
// transcript is replaced by a fresh greeting. Suggestions are reset to the
// subject defaults.
func (e *Engine) ResumeSession(ctx context.Context, id string) Session {
	subject := DefaultSubject
	if sum, ok := e.findSummary(ctx, id); ok && sum.Subject != "" {
		subject = sum.Subject
	}

	msgs, err := store.GetList[Message](ctx, e.store, sessionKey(id))
	if err != nil {
		e.log.Warn("failed to load transcript", zap.String("session", id), zap.Error(err))
		msgs = nil
	}

	e.mu.Lock()
	now := e.now()
	seeded := len(msgs) == 0
	if seeded {
		msgs = []Message{e.message(nil, Greeting(subject), SenderAssistant, now)}
	}
	s := &Session{
		ID:          id,
		Subject:     subject,
		Messages:    msgs,
		Suggestions: SubjectSuggestions(subject),
	}
	e.session = s
	snap := s.clone()
	e.mu.Unlock()

	if seeded {
		e.persist(ctx, snap, snap.Messages[0].Text, now)
	}
	return snap
}

// SendMessage posts text to the active session and waits for the reply.
// It returns false without doing anything when text is blank, no session
// is active, or another send is still pending.
//
// The user message is visible through Current before the generator is
// called. Exactly one assistant message follows it, either the reply or
// FallbackReply.
func (e *Engine) SendMessage(ctx context.Context, text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	e.mu.Lock()
	if e.session == nil || e.pending {
		e.mu.Unlock()
		return false
	}
	e.pending = true
	s := e.session
	earlier := append([]Message(nil), s.Messages...)
	s.Messages = append(s.Messages, e.message(s.Messages, text, SenderUser, e.now()))
	subject := s.Subject
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.pending = false
		e.mu.Unlock()
	}()

	prompt := BuildPrompt(subject, earlier, text)
	reply, genErr := e.gen.Generate(llm.WithPurpose(ctx, PurposeReply), prompt, replyOptions)
	if genErr != nil {
		e.log.Warn("reply generation failed", zap.String("session", s.ID), zap.Error(genErr))
		reply = FallbackReply
	}

	e.mu.Lock()
	now := e.now()
	s.Messages = append(s.Messages, e.message(s.Messages, reply, SenderAssistant, now))
	if genErr != nil {
		s.Suggestions = SubjectSuggestions(subject)
	}
	snap := s.clone()
	e.mu.Unlock()

	e.persist(ctx, snap, text, now)

	if genErr == nil {
		suggestions := e.suggest(ctx, subject, text, reply)
		e.mu.Lock()
		s.Suggestions = suggestions
		e.mu.Unlock()
	}
	return true
}

// GenerateSuggestions asks for follow-up questions to an exchange in the
// active session's subject. It always returns a usable list, falling back
// to keyword or subject defaults.
func (e *Engine) GenerateSuggestions(ctx context.Context, userText, assistantText string) []string {
	subject := DefaultSubject
	e.mu.Lock()
	if e.session != nil {
		subject = e.session.Subject
	}
	e.mu.Unlock()
	return e.suggest(ctx, subject, userText, assistantText)
}

func (e *Engine) suggest(ctx context.Context, subject, userText, assistantText string) []string {
	prompt := BuildSuggestionPrompt(subject, userText, assistantText)
	text, err := e.gen.Generate(llm.WithPurpose(ctx, PurposeSuggestions), prompt, suggestionOptions)
	if err != nil {
		e.log.Debug("suggestion generation failed", zap.Error(err))
		return SubjectSuggestions(subject)
	}

	if parsed := ParseSuggestions(text); len(parsed) > 0 {
		return parsed
	}
	e.log.Debug("no usable suggestions in response", zap.Error(ErrSuggestionParse))
	if kw := KeywordSuggestions(userText); kw != nil {
		return kw
	}
	return SubjectSuggestions(subject)
}

// ErrSuggestionParse records a response with no usable suggestion lines.
// It never reaches callers.
var ErrSuggestionParse = errors.New("no usable suggestion lines")

// EndSession drops the active session. Persisted history is kept.
func (e *Engine) EndSession() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session = nil
}

// Current returns a snapshot of the active session.
func (e *Engine) Current() (Session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return Session{}, false
	}
	return e.session.clone(), true
}

// Pending reports whether a SendMessage is in flight.
func (e *Engine) Pending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending
}

// message builds the next message for a transcript. IDs are time-based
// but always increase. Caller holds mu.
func (e *Engine) message(prev []Message, text string, sender Sender, at time.Time) Message {
	id := at.UnixMilli()
	if n := len(prev); n > 0 && id <= prev[n-1].ID {
		id = prev[n-1].ID + 1
	}
	return Message{
		ID:     id,
		Text:   text,
		Sender: sender,
		Time:   at.Format(TimeFormat),
	}
}
