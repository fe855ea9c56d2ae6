package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupCost(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		model    string
		want     *ModelCost
	}{
		{"exact", ProviderOpenAI, "gpt-4o", &ModelCost{2.5, 10}},
		{"longest prefix wins", ProviderOpenAI, "gpt-4o-mini-2024-07-18", &ModelCost{0.15, 0.6}},
		{"dated snapshot", ProviderAnthropic, "claude-haiku-4-5-20251001", &ModelCost{1, 5}},
		{"opus 4.5 is not opus 4", ProviderAnthropic, "claude-opus-4-5-20251101", &ModelCost{5, 25}},
		{"groq", ProviderGroq, "llama-3.1-8b-instant", &ModelCost{0.05, 0.08}},
		{"openrouter vendor prefix", ProviderOpenRouter, "google/gemini-2.5-flash", &ModelCost{0.3, 2.5}},
		{"ollama is free", ProviderOllama, "llama3.1", &ModelCost{}},
		{"unknown model", ProviderOpenAI, "davinci-002", nil},
		{"openrouter unknown vendor", ProviderOpenRouter, "meta-llama/llama-3-8b", nil},
		{"openrouter without vendor", ProviderOpenRouter, "gpt-4o", nil},
		{"unknown provider", "watsonx", "granite", nil},
		{"mock", ProviderMock, "mock", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LookupCost(tt.provider, tt.model)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestModelCost_Cost(t *testing.T) {
	c := ModelCost{InputPerMTok: 3, OutputPerMTok: 15}
	assert.InDelta(t, 0.0105, c.Cost(1000, 500), 1e-12)
	assert.Zero(t, ModelCost{}.Cost(1_000_000, 1_000_000))
}
