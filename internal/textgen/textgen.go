// Package textgen turns a prompt into generated text with a single call to
// the configured LLM provider. Every failure comes back as a
// *GenerationError with a message fit to show a learner.
package textgen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/studyhall/internal/llm"
	"github.com/abhisek/studyhall/internal/store"
)

// Options tunes one generation call.
type Options struct {
	Temperature     float64
	MaxOutputTokens int
}

// ErrMissingCredential means no API key is stored or configured.
var ErrMissingCredential = errors.New("no API key configured")

// GenerationError is any failure to obtain generated text.
type GenerationError struct {
	// Message is human-readable and safe to show in a transcript or UI.
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ProviderFactory builds a provider for an API key.
type ProviderFactory func(ctx context.Context, apiKey string) (llm.Provider, error)

// Client is the text generation collaborator shared by the tutor engine
// and the generated quiz source. The provider is rebuilt only when the
// credential changes.
type Client struct {
	creds   CredentialSource
	factory ProviderFactory
	log     *zap.Logger
	timeout time.Duration

	mu       sync.Mutex
	key      string
	provider llm.Provider
}

// New creates a Client. log may be nil.
func New(creds CredentialSource, factory ProviderFactory, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{creds: creds, factory: factory, log: log.Named("textgen")}
}

// NewFromConfig creates a Client whose providers come from llm.NewProvider
// with the resolved credential injected into cfg. Calls are recorded in
// events when it is non-nil.
func NewFromConfig(cfg llm.Config, creds CredentialSource, events store.EventRepo, log *zap.Logger) *Client {
	factory := func(ctx context.Context, apiKey string) (llm.Provider, error) {
		return llm.NewProvider(ctx, cfg.WithAPIKey(apiKey), events, log)
	}
	if cfg.Provider == llm.ProviderMock {
		creds = staticCredential("mock")
	}
	return New(creds, factory, log).WithTimeout(cfg.Timeout)
}

// WithTimeout bounds every Generate call by d. Zero means no bound beyond
// the caller's context.
func (c *Client) WithTimeout(d time.Duration) *Client {
	c.timeout = d
	return c
}

// Timeout returns the per-call bound set by WithTimeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Generate sends prompt as the sole user message and returns the reply.
// It makes exactly one provider call and never retries.
func (c *Client) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	p, err := c.Provider(ctx)
	if err != nil {
		return "", err
	}

	resp, err := p.Generate(ctx, llm.Request{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens:   opts.MaxOutputTokens,
		Temperature: opts.Temperature,
	})
	if err != nil {
		return "", describe(err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &GenerationError{Message: "The tutor returned an empty answer."}
	}
	return text, nil
}

// Provider resolves the credential and returns a provider for it. It is
// exported for callers that need structured output on the same credential.
func (c *Client) Provider(ctx context.Context) (llm.Provider, error) {
	key, err := c.creds.APIKey(ctx)
	if err != nil {
		if errors.Is(err, ErrMissingCredential) {
			return nil, &GenerationError{
				Message: "No API key is configured. Add one from the API Key screen.",
				Err:     err,
			}
		}
		return nil, &GenerationError{Message: "Could not read the stored API key.", Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.provider != nil && c.key == key {
		return c.provider, nil
	}

	p, err := c.factory(ctx, key)
	if err != nil {
		return nil, &GenerationError{Message: "The AI service is not configured correctly.", Err: err}
	}
	c.log.Debug("provider ready", zap.String("model", p.ModelID()))
	c.key, c.provider = key, p
	return p, nil
}

// describe maps provider errors onto learner-facing messages.
func describe(err error) *GenerationError {
	var (
		rl      *llm.ErrRateLimit
		unauth  *llm.ErrUnauthorized
		invalid *llm.ErrInvalidResponse
		maxTok  *llm.ErrMaxTokensExceeded
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &GenerationError{Message: "The AI service took too long to answer.", Err: err}
	case errors.As(err, &rl):
		return &GenerationError{Message: "The AI service is busy right now. Try again in a moment.", Err: err}
	case errors.As(err, &unauth):
		return &GenerationError{Message: "The AI service rejected the API key.", Err: err}
	case errors.As(err, &invalid):
		return &GenerationError{Message: "The AI service returned no usable answer.", Err: err}
	case errors.As(err, &maxTok):
		return &GenerationError{Message: "The answer was cut short.", Err: err}
	default:
		return &GenerationError{Message: "Could not reach the AI service.", Err: err}
	}
}
