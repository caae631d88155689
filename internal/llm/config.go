package llm

import (
	"fmt"
	"os"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderGemini     = "gemini"
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "gemini", "openai", "anthropic", "openrouter", "mock"
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig

	// Retry is only applied by callers that opt in (the generated quiz
	// source). Tutor replies are single-shot.
	Retry RetryConfig

	// Timeout bounds a single LLM request. Default: 30s.
	Timeout time.Duration
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey  string
	Model   string // Default: "claude-haiku"
	BaseURL string // Optional. Used by tests and proxies.
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional. Override for compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey  string
	Model   string // Default: "gemini-flash"
	BaseURL string // Optional. Used by tests and proxies.
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "google/gemini-2.0-flash-exp"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderGemini,
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.0-flash-exp",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 30 * time.Second,
	}
}

// WithAPIKey returns a copy of c with key set on the selected provider.
// The stored credential overrides whatever came from the environment.
func (c Config) WithAPIKey(key string) Config {
	switch c.Provider {
	case ProviderAnthropic:
		c.Anthropic.APIKey = key
	case ProviderOpenAI:
		c.OpenAI.APIKey = key
	case ProviderGemini:
		c.Gemini.APIKey = key
	case ProviderOpenRouter:
		c.OpenRouter.APIKey = key
	}
	return c
}

// APIKey returns the key configured for the selected provider.
func (c Config) APIKey() string {
	switch c.Provider {
	case ProviderAnthropic:
		return c.Anthropic.APIKey
	case ProviderOpenAI:
		return c.OpenAI.APIKey
	case ProviderGemini:
		return c.Gemini.APIKey
	case ProviderOpenRouter:
		return c.OpenRouter.APIKey
	}
	return ""
}

// DiscoverAPIKey checks the vendors' standard API key env vars in priority
// order (Gemini, OpenAI, Anthropic, OpenRouter). It switches the provider to
// the first vendor whose key is found. Returns false if none are set.
func (c Config) DiscoverAPIKey() (Config, bool) {
	candidates := []struct {
		provider string
		env      string
	}{
		{ProviderGemini, "GEMINI_API_KEY"},
		{ProviderOpenAI, "OPENAI_API_KEY"},
		{ProviderAnthropic, "ANTHROPIC_API_KEY"},
		{ProviderOpenRouter, "OPENROUTER_API_KEY"},
	}
	for _, p := range candidates {
		if k := os.Getenv(p.env); k != "" {
			c.Provider = p.provider
			return c.WithAPIKey(k), true
		}
	}
	return c, false
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderAnthropic, ProviderOpenAI, ProviderGemini, ProviderOpenRouter:
		if c.APIKey() == "" {
			return fmt.Errorf("an API key is required for the %s provider", c.Provider)
		}
	case ProviderMock:
		// No API key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
