package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/studyhall/internal/llm"
)

type fixedProvider struct {
	p   llm.Provider
	err error
}

func (f fixedProvider) Provider(context.Context) (llm.Provider, error) {
	return f.p, f.err
}

func testGeneratorConfig() GeneratorConfig {
	cfg := DefaultGeneratorConfig()
	cfg.QuestionCount = 2
	cfg.Retry = llm.RetryConfig{
		MaxAttempts: 2,
		InitialWait: time.Millisecond,
		MaxWait:     time.Millisecond,
		Multiplier:  1,
	}
	return cfg
}

func questionSetJSON(t *testing.T, qs ...questionOutput) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(questionSetOutput{Questions: qs})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return raw
}

var goodQuestion = questionOutput{
	Prompt:        "Which scheduling algorithm can starve long jobs?",
	Options:       []string{"FCFS", "SJF", "Round Robin", "FIFO"},
	CorrectOption: "SJF",
	Explanation:   "Shortest-job-first keeps picking short jobs.",
}

func TestGenerator_HappyPath(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: questionSetJSON(t, goodQuestion, goodQuestion)})
	g := NewGenerator(fixedProvider{p: mock}, testGeneratorConfig(), nil)

	qs, err := g.Questions(context.Background(), "Operating Systems")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != 2 || qs[0].ID != 1 || qs[1].ID != 2 {
		t.Fatalf("expected two numbered questions, got %+v", qs)
	}

	req, _ := mock.LastCall()
	if req.Schema != QuestionSetSchema {
		t.Fatal("expected the question set schema on the request")
	}
	if !strings.Contains(req.Messages[0].Content, "Subject: Operating Systems") ||
		!strings.Contains(req.Messages[0].Content, "Number of questions: 2") {
		t.Fatalf("unexpected user message: %q", req.Messages[0].Content)
	}
}

func TestGenerator_RegeneratesInvalidSet(t *testing.T) {
	bad := goodQuestion
	bad.CorrectOption = "Lottery"
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: questionSetJSON(t, bad)},
		llm.MockResponse{Content: questionSetJSON(t, goodQuestion)},
	)
	g := NewGenerator(fixedProvider{p: mock}, testGeneratorConfig(), nil)

	qs, err := g.Questions(context.Background(), "os")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != 1 || mock.CallCount() != 2 {
		t.Fatalf("expected one question after 2 calls, got %d questions / %d calls", len(qs), mock.CallCount())
	}
}

func TestGenerator_GivesUpAfterMaxAttempts(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: questionSetJSON(t)},
		llm.MockResponse{Content: questionSetJSON(t)},
		llm.MockResponse{Content: questionSetJSON(t, goodQuestion)},
	)
	g := NewGenerator(fixedProvider{p: mock}, testGeneratorConfig(), nil)

	if _, err := g.Questions(context.Background(), "os"); err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount())
	}
}

func TestGenerator_RetriesTransientErrors(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockError(&llm.ErrProviderUnavailable{Err: errors.New("503")}),
		llm.MockResponse{Content: questionSetJSON(t, goodQuestion)},
	)
	g := NewGenerator(fixedProvider{p: mock}, testGeneratorConfig(), nil)

	if _, err := g.Questions(context.Background(), "os"); err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
}

func TestGenerator_ProviderErrorBecomesLoadError(t *testing.T) {
	g := NewGenerator(fixedProvider{err: errors.New("no API key")}, testGeneratorConfig(), nil)
	e := NewEngine(g, nil, nil)

	err := e.Start(context.Background(), "os")
	var qle *QuestionLoadError
	if !errors.As(err, &qle) {
		t.Fatalf("expected QuestionLoadError, got %v", err)
	}
	if e.Snapshot().State != StateLoading {
		t.Fatalf("expected loading state, got %s", e.Snapshot().State)
	}
}

type stalledProvider struct{}

func (stalledProvider) Generate(ctx context.Context, _ llm.Request) (*llm.Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (stalledProvider) ModelID() string { return "stalled" }

func TestGenerator_TimeoutBoundsAttempt(t *testing.T) {
	cfg := testGeneratorConfig()
	cfg.Timeout = 20 * time.Millisecond
	e := NewEngine(NewGenerator(fixedProvider{p: stalledProvider{}}, cfg, nil), nil, nil)

	err := e.Start(context.Background(), "os")
	var qle *QuestionLoadError
	if !errors.As(err, &qle) {
		t.Fatalf("expected QuestionLoadError, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded in chain, got %v", err)
	}
}
