package llm

import (
	"strings"
)

// ModelCost is USD per million tokens.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost returns the USD cost of a call.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return (float64(inputTokens)*c.InputPerMTok + float64(outputTokens)*c.OutputPerMTok) / 1_000_000
}

// LookupCost returns the price of model on provider, or nil when unknown.
// Dated snapshots ("claude-haiku-4-5-20251001") and OpenRouter's
// vendor-prefixed IDs ("openai/gpt-4o-mini") resolve to their family
// entry by longest prefix. Local Ollama models are free.
func LookupCost(provider, model string) *ModelCost {
	if provider == ProviderOllama {
		return &ModelCost{}
	}
	table, ok := modelCosts[provider]
	if provider == ProviderOpenRouter {
		vendor, name, found := strings.Cut(model, "/")
		if !found {
			return nil
		}
		table, ok = modelCosts[openRouterVendors[vendor]]
		model = name
	}
	if !ok {
		return nil
	}

	var best string
	for id := range table {
		if strings.HasPrefix(model, id) && len(id) > len(best) {
			best = id
		}
	}
	if best == "" {
		return nil
	}
	c := table[best]
	return &c
}

var openRouterVendors = map[string]string{
	"anthropic": ProviderAnthropic,
	"openai":    ProviderOpenAI,
	"google":    ProviderGemini,
}

// modelCosts holds list prices per provider and model family, from the
// providers' pricing pages as of 2026-02.
var modelCosts = map[string]map[string]ModelCost{
	ProviderAnthropic: {
		"claude-3-5-haiku":  {0.8, 4},
		"claude-3-haiku":    {0.25, 1.25},
		"claude-haiku-4-5":  {1, 5},
		"claude-sonnet-4":   {3, 15},
		"claude-3-7-sonnet": {3, 15},
		"claude-opus-4":     {15, 75},
		"claude-opus-4-5":   {5, 25},
	},
	ProviderOpenAI: {
		"gpt-4o":       {2.5, 10},
		"gpt-4o-mini":  {0.15, 0.6},
		"gpt-4.1":      {2, 8},
		"gpt-4.1-mini": {0.4, 1.6},
		"gpt-4.1-nano": {0.1, 0.4},
		"gpt-5":        {1.25, 10},
		"gpt-5-mini":   {0.25, 2},
		"gpt-5-nano":   {0.05, 0.4},
		"o4-mini":      {1.1, 4.4},
	},
	ProviderGemini: {
		"gemini-2.0-flash":      {0.1, 0.4},
		"gemini-2.0-flash-lite": {0.075, 0.3},
		"gemini-2.5-flash":      {0.3, 2.5},
		"gemini-2.5-flash-lite": {0.1, 0.4},
		"gemini-2.5-pro":        {1.25, 10},
	},
	ProviderGroq: {
		"llama-3.1-8b-instant":    {0.05, 0.08},
		"llama-3.3-70b-versatile": {0.59, 0.79},
		"openai/gpt-oss-20b":      {0.1, 0.5},
		"openai/gpt-oss-120b":     {0.15, 0.75},
	},
}
