// Package config loads studyhall settings from an optional YAML file, a
// .env file and STUDYHALL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/abhisek/studyhall/internal/llm"
	"github.com/abhisek/studyhall/internal/store"
)

// EnvPrefix namespaces every environment variable.
const EnvPrefix = "STUDYHALL"

// Quiz question sources.
const (
	QuizSourceBank = "bank"
	QuizSourceLLM  = "llm"
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env    string `mapstructure:"env"` // local or production
	Log    Log    `mapstructure:"log"`
	Store  Store  `mapstructure:"store"`
	LLM    LLM    `mapstructure:"llm"`
	Server Server `mapstructure:"server"`
	Quiz   Quiz   `mapstructure:"quiz"`
}

// Log configures the zap logger.
type Log struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"` // empty logs to stderr
}

// Store selects and configures the persistence backend.
type Store struct {
	Driver string `mapstructure:"driver"` // sqlite, postgres, redis or memory
	DSN    string `mapstructure:"dsn"`
	Redis  Redis  `mapstructure:"redis"`
}

// Redis holds the redis backend settings.
type Redis struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// LLM configures the text generation provider.
type LLM struct {
	Provider   string        `mapstructure:"provider"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Gemini     Vendor        `mapstructure:"gemini"`
	OpenAI     Vendor        `mapstructure:"openai"`
	Anthropic  Vendor        `mapstructure:"anthropic"`
	OpenRouter Vendor        `mapstructure:"openrouter"`
	Retry      Retry         `mapstructure:"retry"`
}

// Vendor holds one provider's settings.
type Vendor struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// Retry configures retries for generated quiz questions.
type Retry struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	InitialWait time.Duration `mapstructure:"initial_wait"`
	MaxWait     time.Duration `mapstructure:"max_wait"`
	Multiplier  float64       `mapstructure:"multiplier"`
}

// Server configures the HTTP API.
type Server struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Quiz configures the mock test.
type Quiz struct {
	Source        string `mapstructure:"source"` // bank or llm
	QuestionCount int    `mapstructure:"question_count"`
}

// Load reads configuration. configFile may be empty, in which case
// studyhall.yaml is looked up in the working directory and the user config
// directory; a missing file is not an error.
func Load(configFile string) (*Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("studyhall")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := userConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees env values for keys viper already knows.
	for _, key := range []string{
		"llm.gemini.api_key", "llm.openai.api_key", "llm.anthropic.api_key", "llm.openrouter.api_key",
		"llm.gemini.base_url", "llm.openai.base_url", "llm.anthropic.base_url", "llm.openrouter.base_url",
		"store.redis.password",
	} {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := llm.DefaultConfig()

	v.SetDefault("env", "local")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	v.SetDefault("store.driver", store.DriverSQLite)
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.prefix", "studyhall:")
	v.SetDefault("store.redis.ttl", "0s")

	v.SetDefault("llm.provider", d.Provider)
	v.SetDefault("llm.timeout", d.Timeout)
	v.SetDefault("llm.gemini.model", d.Gemini.Model)
	v.SetDefault("llm.openai.model", d.OpenAI.Model)
	v.SetDefault("llm.anthropic.model", d.Anthropic.Model)
	v.SetDefault("llm.openrouter.model", d.OpenRouter.Model)
	v.SetDefault("llm.retry.max_attempts", d.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", d.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", d.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", d.Retry.Multiplier)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	v.SetDefault("quiz.source", QuizSourceBank)
	v.SetDefault("quiz.question_count", 5)
}

// Validate rejects settings that cannot work.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case store.DriverSQLite, store.DriverPostgres, store.DriverRedis, store.DriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Store.Driver == store.DriverPostgres && c.Store.DSN == "" {
		return fmt.Errorf("store.dsn is required for the postgres driver")
	}
	switch c.Quiz.Source {
	case QuizSourceBank, QuizSourceLLM:
	default:
		return fmt.Errorf("unknown quiz source %q", c.Quiz.Source)
	}
	if c.Quiz.QuestionCount < 1 {
		return fmt.Errorf("quiz.question_count must be at least 1")
	}
	return nil
}

// LLMConfig maps the llm section onto the provider configuration. When no
// key is configured for the selected provider, the vendors' standard
// environment variables are checked.
func (c *Config) LLMConfig() llm.Config {
	out := llm.DefaultConfig()
	out.Provider = c.LLM.Provider
	if c.LLM.Timeout > 0 {
		out.Timeout = c.LLM.Timeout
	}
	out.Gemini = llm.GeminiConfig{APIKey: c.LLM.Gemini.APIKey, Model: c.LLM.Gemini.Model, BaseURL: c.LLM.Gemini.BaseURL}
	out.OpenAI = llm.OpenAIConfig{APIKey: c.LLM.OpenAI.APIKey, Model: c.LLM.OpenAI.Model, BaseURL: c.LLM.OpenAI.BaseURL}
	out.Anthropic = llm.AnthropicConfig{APIKey: c.LLM.Anthropic.APIKey, Model: c.LLM.Anthropic.Model, BaseURL: c.LLM.Anthropic.BaseURL}
	out.OpenRouter = llm.OpenRouterConfig{APIKey: c.LLM.OpenRouter.APIKey, Model: c.LLM.OpenRouter.Model, BaseURL: c.LLM.OpenRouter.BaseURL}
	out.Retry = llm.RetryConfig{
		MaxAttempts: c.LLM.Retry.MaxAttempts,
		InitialWait: c.LLM.Retry.InitialWait,
		MaxWait:     c.LLM.Retry.MaxWait,
		Multiplier:  c.LLM.Retry.Multiplier,
	}

	if out.Provider != llm.ProviderMock && out.APIKey() == "" {
		if discovered, ok := out.DiscoverAPIKey(); ok {
			return discovered
		}
	}
	return out
}

// StoreOptions maps the store section onto store.Options. dbOverride, when
// set, replaces the DSN (the --db flag).
func (c *Config) StoreOptions(dbOverride string) store.Options {
	opts := store.Options{
		Driver: c.Store.Driver,
		DSN:    c.Store.DSN,
		Redis: store.RedisOptions{
			Addr:     c.Store.Redis.Addr,
			Password: c.Store.Redis.Password,
			DB:       c.Store.Redis.DB,
			Prefix:   c.Store.Redis.Prefix,
			TTL:      c.Store.Redis.TTL,
		},
	}
	if dbOverride != "" {
		opts.DSN = dbOverride
	}
	return opts
}

// StateDir returns the directory for logs: $XDG_STATE_HOME/studyhall or
// ~/.local/state/studyhall.
func StateDir() (string, error) {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "studyhall"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "state", "studyhall"), nil
}

func userConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "studyhall"), nil
}
