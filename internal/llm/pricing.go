package llm

import (
	"sort"
	"strings"

	"github.com/abhisek/studyhall/internal/store"
)

// ModelCost is USD per million tokens.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost returns the USD cost of one call.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)*c.InputPerMTok/1_000_000 +
		float64(outputTokens)*c.OutputPerMTok/1_000_000
}

// modelPrices is matched by longest prefix, so dated snapshots and
// -preview or -exp variants price as their family.
var modelPrices = map[string]ModelCost{
	"gemini-1.5-flash":      {0.075, 0.3},
	"gemini-1.5-pro":        {1.25, 5},
	"gemini-2.0-flash":      {0.1, 0.4},
	"gemini-2.0-flash-lite": {0.075, 0.3},
	"gemini-2.5-flash":      {0.3, 2.5},
	"gemini-2.5-flash-lite": {0.1, 0.4},
	"gemini-2.5-pro":        {1.25, 10},
	"gemini-flash-latest":   {0.3, 2.5},

	"gpt-3.5-turbo": {0.5, 1.5},
	"gpt-4":         {30, 60},
	"gpt-4-turbo":   {10, 30},
	"gpt-4.1":       {2, 8},
	"gpt-4.1-mini":  {0.4, 1.6},
	"gpt-4.1-nano":  {0.1, 0.4},
	"gpt-4o":        {2.5, 10},
	"gpt-4o-mini":   {0.15, 0.6},
	"gpt-5":         {1.25, 10},
	"gpt-5-mini":    {0.25, 2},
	"gpt-5-nano":    {0.05, 0.4},
	"o3-mini":       {1.1, 4.4},
	"o4-mini":       {1.1, 4.4},

	"claude-3-haiku":    {0.25, 1.25},
	"claude-3-5-haiku":  {0.8, 4},
	"claude-3-5-sonnet": {3, 15},
	"claude-3-7-sonnet": {3, 15},
	"claude-haiku-4-5":  {1, 5},
	"claude-sonnet-4":   {3, 15},
	"claude-opus-4":     {15, 75},
	"claude-opus-4-5":   {5, 25},
}

// LookupCost returns pricing for a model ID, or nil if unknown. Gateway IDs
// such as "google/gemini-2.0-flash-exp" are matched on the part after the
// vendor prefix.
func LookupCost(modelID string) *ModelCost {
	id := strings.ToLower(modelID)
	if i := strings.LastIndex(id, "/"); i >= 0 {
		id = id[i+1:]
	}

	best := ""
	for prefix := range modelPrices {
		if strings.HasPrefix(id, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return nil
	}
	c := modelPrices[best]
	return &c
}

// EstimateCost totals the cost of usage. Models without pricing are
// skipped and returned sorted in unknown.
func EstimateCost(usage []store.ModelUsage) (total float64, unknown []string) {
	for _, u := range usage {
		c := LookupCost(u.Model)
		if c == nil {
			unknown = append(unknown, u.Model)
			continue
		}
		total += c.Cost(u.InputTokens, u.OutputTokens)
	}
	sort.Strings(unknown)
	return total, unknown
}
