package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_Mock(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: ProviderMock}, &fakeRecorder{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MockProvider{}, p, "mock is never wrapped")
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Provider: ProviderAnthropic}, nil, nil)
	assert.ErrorContains(t, err, "ANTHROPIC_API_KEY")

	_, err = NewProvider(context.Background(), Config{Provider: "bogus"}, nil, nil)
	assert.ErrorContains(t, err, "unknown LLM provider")
}

func TestNewProvider_Backends(t *testing.T) {
	tests := []struct {
		provider string
		want     any
		model    string
	}{
		{ProviderAnthropic, &AnthropicProvider{}, "claude-haiku-4-5-20251001"},
		{ProviderOpenAI, &OpenAIProvider{}, "gpt-4o-mini"},
		{ProviderOpenRouter, &OpenAIProvider{}, "google/gemini-2.0-flash-exp"},
		{ProviderGroq, &OpenAIProvider{}, "llama-3.1-8b-instant"},
		{ProviderOllama, &OllamaProvider{}, "llama3.1"},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Select(tt.provider, "", "key", "")

			p, err := NewProvider(context.Background(), cfg, nil, nil)
			require.NoError(t, err)
			assert.IsType(t, tt.want, p)
			assert.Equal(t, tt.model, p.ModelID())
		})
	}
}

func TestNewProvider_Middleware(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Select(ProviderOpenAI, "", "sk-test", "")

	p, err := NewProvider(context.Background(), cfg, &fakeRecorder{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &LoggingProvider{}, p)

	cfg.Retry.MaxAttempts = 3
	p, err = NewProvider(context.Background(), cfg, &fakeRecorder{}, nil)
	require.NoError(t, err)
	require.IsType(t, &RetryProvider{}, p)
	assert.IsType(t, &LoggingProvider{}, p.(*RetryProvider).inner, "every attempt is audited")
	assert.Equal(t, "gpt-4o-mini", p.ModelID())
}
