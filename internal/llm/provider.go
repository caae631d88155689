package llm

import (
	"context"
	"encoding/json"
)

// Provider generates one completion per call. Implementations translate
// Request into a vendor API call and normalize errors into the Err* types
// of this package, which is what lets WithRetry decide what to retry.
type Provider interface {
	// Generate returns free text, or JSON that conforms to req.Schema when
	// one is set.
	Generate(ctx context.Context, req Request) (*Response, error)
	ModelID() string
}

// Role is who authored a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

// Request is a vendor-neutral completion request. Zero MaxTokens and
// Temperature mean "provider default".
type Request struct {
	System      string
	Messages    []Message
	Schema      *Schema
	MaxTokens   int
	Temperature float64
}

// Schema asks for structured output. Name must be a short kebab-case
// identifier since some vendors use it as a tool or format name.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Response is a completion. StopReason is "end" or "max_tokens"; Model is
// the model that actually served the call, which can differ from the
// configured alias.
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string
}

// Text returns Content as a plain string. Providers hand back free-text
// answers verbatim, so this is the reply the user should see.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return string(r.Content)
}

// resolveModel maps a friendly model name to a provider model ID. Unknown
// names are taken as model IDs.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
