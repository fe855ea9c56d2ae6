package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// constructors builds the bare provider for each name.
var constructors = map[string]func(ctx context.Context, cfg Config) (Provider, error){
	ProviderAnthropic: func(_ context.Context, cfg Config) (Provider, error) {
		return NewAnthropicProvider(cfg.Anthropic)
	},
	ProviderOpenAI: func(_ context.Context, cfg Config) (Provider, error) {
		return NewOpenAIProvider(cfg.OpenAI)
	},
	ProviderGemini: func(ctx context.Context, cfg Config) (Provider, error) {
		return NewGeminiProvider(ctx, cfg.Gemini)
	},
	ProviderOpenRouter: func(_ context.Context, cfg Config) (Provider, error) {
		return NewOpenRouterProvider(cfg.OpenRouter)
	},
	ProviderGroq: func(_ context.Context, cfg Config) (Provider, error) {
		return NewGroqProvider(cfg.Groq)
	},
	ProviderOllama: func(_ context.Context, cfg Config) (Provider, error) {
		return NewOllamaProvider(cfg.Ollama)
	},
	ProviderMock: func(context.Context, Config) (Provider, error) {
		return NewMockProvider(), nil
	},
}

// NewProvider builds the configured provider and wraps it as
//
//	caller -> retry -> audit log -> provider
//
// so every attempt is recorded. The audit layer is skipped when recorder
// is nil and the retry layer when only one attempt is configured.
func NewProvider(ctx context.Context, cfg Config, recorder EventRecorder, log *zap.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	build, ok := constructors[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}

	p, err := build(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}
	if cfg.Provider == ProviderMock {
		return p, nil
	}

	if recorder != nil {
		p = WithLogging(p, cfg.Provider, recorder, log)
	}
	if cfg.Retry.MaxAttempts > 1 {
		p = WithRetry(p, cfg.Retry)
	}
	return p, nil
}
