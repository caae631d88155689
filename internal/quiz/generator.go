package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/studyhall/internal/llm"
)

// PurposeQuizGen labels generation calls in the LLM event log.
const PurposeQuizGen = "quiz-gen"

// ProviderSource hands out a provider bound to the current credential.
// *textgen.Client satisfies it.
type ProviderSource interface {
	Provider(ctx context.Context) (llm.Provider, error)
}

// GeneratorConfig controls the Generator.
type GeneratorConfig struct {
	// QuestionCount is how many questions to ask for. Default: 5.
	QuestionCount int

	// MaxTokens is the token budget for the response.
	MaxTokens int

	// Temperature controls output randomness (0.0-1.0).
	Temperature float64

	// Retry applies to transient provider failures.
	Retry llm.RetryConfig

	// MaxAttempts bounds regenerations after a structurally invalid set.
	MaxAttempts int

	// Timeout bounds each generation attempt, transient retries included.
	// Zero means no bound beyond the caller's context.
	Timeout time.Duration
}

// DefaultGeneratorConfig returns recommended defaults.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		QuestionCount: 5,
		MaxTokens:     2048,
		Temperature:   0.7,
		Retry:         llm.DefaultConfig().Retry,
		MaxAttempts:   2,
	}
}

// Generator is a QuestionSource that asks the LLM for a question set.
type Generator struct {
	providers ProviderSource
	config    GeneratorConfig
	log       *zap.Logger
}

var _ QuestionSource = (*Generator)(nil)

// NewGenerator creates a Generator. log may be nil.
func NewGenerator(providers ProviderSource, cfg GeneratorConfig, log *zap.Logger) *Generator {
	if cfg.QuestionCount <= 0 {
		cfg.QuestionCount = 5
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{providers: providers, config: cfg, log: log.Named("quiz-gen")}
}

// questionSetOutput is the raw LLM response before validation.
type questionSetOutput struct {
	Questions []questionOutput `json:"questions"`
}

type questionOutput struct {
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectOption string   `json:"correct_option"`
	Explanation   string   `json:"explanation"`
}

// Questions generates a fresh set for subject.
func (g *Generator) Questions(ctx context.Context, subject string) ([]Question, error) {
	base, err := g.providers.Provider(ctx)
	if err != nil {
		return nil, err
	}
	p := llm.WithRetry(base, g.config.Retry)
	ctx = llm.WithPurpose(ctx, PurposeQuizGen)

	var lastErr error
	for attempt := range g.config.MaxAttempts {
		qs, err := g.generate(ctx, p, subject)
		if err == nil {
			return qs, nil
		}
		lastErr = err

		var invalid *invalidSetError
		if !errors.As(err, &invalid) {
			return nil, err
		}
		g.log.Warn("generated question set rejected",
			zap.String("subject", subject),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}
	return nil, lastErr
}

func (g *Generator) generate(ctx context.Context, p llm.Provider, subject string) ([]Question, error) {
	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	resp, err := p.Generate(ctx, llm.Request{
		System: generatorSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildGeneratorMessage(subject, g.config.QuestionCount)},
		},
		Schema:      QuestionSetSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var raw questionSetOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, &invalidSetError{Err: fmt.Errorf("parse response: %w", err)}
	}
	if len(raw.Questions) == 0 {
		return nil, &invalidSetError{Err: errors.New("no questions in response")}
	}

	qs := make([]Question, 0, len(raw.Questions))
	for i, r := range raw.Questions {
		q := Question{
			ID:            i + 1,
			Prompt:        strings.TrimSpace(r.Prompt),
			Options:       r.Options,
			CorrectOption: r.CorrectOption,
			Explanation:   strings.TrimSpace(r.Explanation),
		}
		if err := q.Validate(); err != nil {
			return nil, &invalidSetError{Err: err}
		}
		qs = append(qs, q)
	}
	return qs, nil
}

// invalidSetError marks a response that parsed but broke the question rules.
// Regenerating is likely to fix it.
type invalidSetError struct {
	Err error
}

func (e *invalidSetError) Error() string {
	return fmt.Sprintf("invalid question set: %v", e.Err)
}

func (e *invalidSetError) Unwrap() error { return e.Err }

const generatorSystemPrompt = `You are an examiner writing a short multiple-choice mock test.

Rules:
- Write questions for the given subject, at an introductory university level.
- Each question has exactly 4 distinct options and exactly one correct option.
- correct_option must repeat the text of the correct option exactly.
- Distractors should be plausible, not jokes.
- The explanation says in one or two sentences why the correct option is right.
- Do not repeat a question within the set.`

func buildGeneratorMessage(subject string, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Subject: %s\n", subject)
	fmt.Fprintf(&b, "Number of questions: %d\n", count)
	return b.String()
}

// QuestionSetSchema defines the JSON schema for generated question sets.
var QuestionSetSchema = &llm.Schema{
	Name:        "quiz-questions",
	Description: "A set of multiple-choice questions with explanations",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"prompt": map[string]any{
							"type":        "string",
							"description": "The question shown to the learner",
						},
						"options": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Exactly 4 distinct answer options",
						},
						"correct_option": map[string]any{
							"type":        "string",
							"description": "The text of the correct option, copied exactly",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "Why the correct option is right",
						},
					},
					"required":             []any{"prompt", "options", "correct_option", "explanation"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}
