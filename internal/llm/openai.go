package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// appTitle is sent to OpenRouter so requests are attributed to the app.
const appTitle = "Studyhall"

// openaiModels maps friendly names to OpenAI model IDs.
var openaiModels = map[string]string{
	"gpt-4o":      "gpt-4o",
	"gpt-4o-mini": "gpt-4o-mini",
	"gpt-mini":    "gpt-4.1-mini",
}

// OpenAIProvider talks to the OpenAI chat completions API or a compatible
// gateway such as OpenRouter.
type OpenAIProvider struct {
	client *openai.Client
	model  string
	vendor string
}

// NewOpenAIProvider creates a provider for the OpenAI API. Friendly model
// names are resolved to OpenAI model IDs.
func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai API key is required")
	}
	return newChatProvider(ProviderOpenAI, cfg.APIKey, cfg.BaseURL, resolveModel(cfg.Model, openaiModels), nil), nil
}

// NewOpenRouterProvider creates a provider for OpenRouter. Its model IDs
// are vendor-namespaced ("google/gemini-2.0-flash-exp") and passed through.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openrouter API key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}
	headers := http.Header{"X-Title": []string{appTitle}}
	return newChatProvider(ProviderOpenRouter, cfg.APIKey, baseURL, cfg.Model, headers), nil
}

func newChatProvider(vendor, apiKey, baseURL, model string, headers http.Header) *OpenAIProvider {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if len(headers) > 0 {
		config.HTTPClient = &http.Client{Transport: &headerTransport{headers: headers}}
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(config),
		model:  model,
		vendor: vendor,
	}
}

// headerTransport adds fixed headers to every request.
type headerTransport struct {
	headers http.Header
	next    http.RoundTripper
}

func (t *headerTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	for k, v := range t.headers {
		r.Header[k] = v
	}
	next := t.next
	if next == nil {
		next = http.DefaultTransport
	}
	return next.RoundTrip(r)
}

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	chatReq, err := p.chatRequest(req)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, mapOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("%s returned no choices", p.vendor)}
	}
	choice := resp.Choices[0]

	text := choice.Message.Content
	if strings.TrimSpace(text) == "" {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("%s returned empty content", p.vendor)}
	}
	if choice.FinishReason == openai.FinishReasonLength && req.Schema != nil {
		return nil, &ErrMaxTokensExceeded{Content: json.RawMessage(text)}
	}
	if err := ValidateJSON(req.Schema, []byte(text)); err != nil {
		return nil, err
	}

	model := resp.Model
	if model == "" {
		model = p.model
	}
	return &Response{
		Content: json.RawMessage(text),
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
		Model:      model,
		StopReason: mapOpenAIStopReason(choice.FinishReason),
	}, nil
}

func (p *OpenAIProvider) ModelID() string {
	return p.model
}

// chatRequest converts req. A schema becomes a strict json_schema
// response format.
func (p *OpenAIProvider) chatRequest(req Request) (openai.ChatCompletionRequest, error) {
	var messages []openai.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	chatReq := openai.ChatCompletionRequest{
		Model:               p.model,
		Messages:            messages,
		MaxCompletionTokens: req.MaxTokens,
		Temperature:         float32(req.Temperature),
	}
	if req.Schema == nil {
		return chatReq, nil
	}

	def, err := json.Marshal(req.Schema.Definition)
	if err != nil {
		return chatReq, fmt.Errorf("marshal schema: %w", err)
	}
	chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
			Name:        req.Schema.Name,
			Description: req.Schema.Description,
			Schema:      json.RawMessage(def),
			Strict:      true,
		},
	}
	return chatReq, nil
}

func mapOpenAIStopReason(reason openai.FinishReason) string {
	if reason == openai.FinishReasonLength {
		return "max_tokens"
	}
	return "end"
}

func mapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		return &ErrProviderUnavailable{Err: err}
	}
	switch code := apiErr.HTTPStatusCode; {
	case code == http.StatusTooManyRequests:
		return &ErrRateLimit{Err: err}
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return &ErrUnauthorized{Err: err}
	default:
		return &ErrProviderUnavailable{Err: err}
	}
}
