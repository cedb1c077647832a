package llm

import "strings"

// ModelCost is the list price of a model in USD per million tokens.
type ModelCost struct {
	Input  float64
	Output float64
}

// Cost prices a number of input and output tokens.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return (float64(inputTokens)*c.Input + float64(outputTokens)*c.Output) / 1e6
}

// LookupCost returns the price for modelID or nil when it is unknown.
// Dated and preview variants resolve to their family, so
// "gemini-2.5-flash-preview-09-2025" is priced as "gemini-2.5-flash".
// The longest matching family wins.
func LookupCost(modelID string) *ModelCost {
	id := strings.TrimPrefix(strings.ToLower(modelID), "models/")
	if i := strings.LastIndexByte(id, '/'); i >= 0 {
		id = id[i+1:] // openrouter ids carry a vendor prefix
	}

	var (
		best  string
		found ModelCost
	)
	for family, c := range modelCosts {
		if strings.HasPrefix(id, family) && len(family) > len(best) {
			best, found = family, c
		}
	}
	if best == "" {
		return nil
	}
	return &found
}

// modelCosts lists the families modulajar is configured with. Prices were
// taken from the vendors' public price lists in early 2026.
var modelCosts = map[string]ModelCost{
	"gemini-1.5-flash":      {0.075, 0.3},
	"gemini-1.5-pro":        {1.25, 5},
	"gemini-2.0-flash":      {0.1, 0.4},
	"gemini-2.0-flash-lite": {0.075, 0.3},
	"gemini-2.5-flash":      {0.3, 2.5},
	"gemini-2.5-flash-lite": {0.1, 0.4},
	"gemini-2.5-pro":        {1.25, 10},
	"gemini-3-flash":        {0.5, 3},
	"gemini-3-pro":          {2, 12},

	"claude-3-5-haiku": {0.8, 4},
	"claude-haiku-4-5": {1, 5},
	"claude-sonnet-4":  {3, 15},
	"claude-opus-4":    {15, 75},
	"claude-opus-4-5":  {5, 25},

	"gpt-4o":       {2.5, 10},
	"gpt-4o-mini":  {0.15, 0.6},
	"gpt-4.1":      {2, 8},
	"gpt-4.1-mini": {0.4, 1.6},
	"gpt-4.1-nano": {0.1, 0.4},
	"gpt-5":        {1.25, 10},
	"gpt-5-mini":   {0.25, 2},
	"gpt-5-nano":   {0.05, 0.4},
}
