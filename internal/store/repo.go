package store

import (
	"context"
	"sort"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	Purpose string    // exact purpose match (empty = any)
	From    time.Time // timestamp >= From
}

func (o QueryOpts) match(e LLMEvent) bool {
	if o.Purpose != "" && e.Purpose != o.Purpose {
		return false
	}
	if !o.From.IsZero() && e.Timestamp.Before(o.From) {
		return false
	}
	return true
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	Purpose      string `json:"purpose"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	LatencyMs    int64  `json:"latency_ms"`
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message,omitempty"`
	RequestBody  string `json:"request_body,omitempty"`
	ResponseBody string `json:"response_body,omitempty"`
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int       `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	LLMRequestEventData
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns matching events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns the event with the given ID, or nil if absent.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)
}

// PurposeUsage aggregates token usage for one purpose label.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates token usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// LLMUsageByPurpose aggregates every recorded event by purpose, busiest first.
func LLMUsageByPurpose(ctx context.Context, repo EventRepo) ([]PurposeUsage, error) {
	events, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		return nil, err
	}

	byPurpose := make(map[string]*PurposeUsage)
	var totalLatency = make(map[string]int64)
	for _, e := range events {
		u, ok := byPurpose[e.Purpose]
		if !ok {
			u = &PurposeUsage{Purpose: e.Purpose}
			byPurpose[e.Purpose] = u
		}
		u.Calls++
		u.InputTokens += e.InputTokens
		u.OutputTokens += e.OutputTokens
		totalLatency[e.Purpose] += e.LatencyMs
	}

	out := make([]PurposeUsage, 0, len(byPurpose))
	for p, u := range byPurpose {
		u.AvgLatencyMs = totalLatency[p] / int64(u.Calls)
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Calls != out[j].Calls {
			return out[i].Calls > out[j].Calls
		}
		return out[i].Purpose < out[j].Purpose
	})
	return out, nil
}

// LLMUsageByModel aggregates every recorded event by model, busiest first.
func LLMUsageByModel(ctx context.Context, repo EventRepo) ([]ModelUsage, error) {
	events, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		return nil, err
	}

	byModel := make(map[string]*ModelUsage)
	for _, e := range events {
		u, ok := byModel[e.Model]
		if !ok {
			u = &ModelUsage{Model: e.Model}
			byModel[e.Model] = u
		}
		u.Calls++
		u.InputTokens += e.InputTokens
		u.OutputTokens += e.OutputTokens
	}

	out := make([]ModelUsage, 0, len(byModel))
	for _, u := range byModel {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Calls != out[j].Calls {
			return out[i].Calls > out[j].Calls
		}
		return out[i].Model < out[j].Model
	})
	return out, nil
}

// filterEvents sorts events newest first and applies opts. Used by the
// backends that cannot filter server-side.
func filterEvents(events []LLMEvent, opts QueryOpts) []LLMEvent {
	sort.Slice(events, func(i, j int) bool { return events[i].ID > events[j].ID })

	out := make([]LLMEvent, 0, len(events))
	for _, e := range events {
		if !opts.match(e) {
			continue
		}
		out = append(out, e)
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
	}
	return out
}
