package llm

import (
	"fmt"
	"os"
	"time"
)

// Provider names accepted by NewProvider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderGroq       = "groq"
	ProviderOllama     = "ollama"
	ProviderMock       = "mock"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use. One of the Provider*
	// constants.
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Groq       GroqConfig
	Ollama     OllamaConfig
	Retry      RetryConfig

	// Timeout is the maximum duration for a single diagnosis request
	// (including retries). Default: 20s.
	Timeout time.Duration
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey  string
	Model   string // Default: "claude-haiku"
	BaseURL string // Optional, for proxies.
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional. Override for compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey  string
	Model   string // Default: "gemini-flash"
	BaseURL string // Optional, for proxies.
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "google/gemini-2.0-flash-exp"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// GroqConfig holds Groq-specific configuration.
type GroqConfig struct {
	APIKey  string
	Model   string // Default: "llama-8b"
	BaseURL string // Default: "https://api.groq.com/openai/v1"
}

// OllamaConfig holds configuration for a local Ollama server.
type OllamaConfig struct {
	Model   string // Default: "llama3.1"
	BaseURL string // Default: "http://localhost:11434"
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults. Diagnosis makes a
// single bounded attempt per request, so retries are off by default.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderAnthropic,
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.0-flash-exp",
		},
		Groq: GroqConfig{
			Model: "llama-8b",
		},
		Ollama: OllamaConfig{
			Model: "llama3.1",
		},
		Retry: RetryConfig{
			MaxAttempts: 1,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     5 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 20 * time.Second,
	}
}

// apiKeyEnv lists the standard API key variable per provider, in
// discovery priority order.
var apiKeyEnv = []struct {
	provider string
	env      string
}{
	{ProviderGemini, "GEMINI_API_KEY"},
	{ProviderOpenAI, "OPENAI_API_KEY"},
	{ProviderAnthropic, "ANTHROPIC_API_KEY"},
	{ProviderOpenRouter, "OPENROUTER_API_KEY"},
	{ProviderGroq, "GROQ_API_KEY"},
}

// APIKeyFromEnv returns the standard API key environment variable value for
// provider, or "".
func APIKeyFromEnv(provider string) string {
	for _, k := range apiKeyEnv {
		if k.provider == provider {
			return os.Getenv(k.env)
		}
	}
	return ""
}

// DiscoverConfig checks standard API key env vars in priority order
// (Gemini → OpenAI → Anthropic → OpenRouter → Groq) and returns a Config
// for the first provider whose key is found. Returns (Config{}, false) if
// none found.
func DiscoverConfig() (Config, bool) {
	for _, k := range apiKeyEnv {
		if key := os.Getenv(k.env); key != "" {
			cfg := DefaultConfig()
			cfg.Select(k.provider, "", key, "")
			return cfg, true
		}
	}
	return Config{}, false
}

// Select sets the provider and applies the non-empty model, API key and
// base URL to that provider's section.
func (c *Config) Select(provider, model, apiKey, baseURL string) {
	c.Provider = provider
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	switch provider {
	case ProviderAnthropic:
		set(&c.Anthropic.Model, model)
		set(&c.Anthropic.APIKey, apiKey)
		set(&c.Anthropic.BaseURL, baseURL)
	case ProviderOpenAI:
		set(&c.OpenAI.Model, model)
		set(&c.OpenAI.APIKey, apiKey)
		set(&c.OpenAI.BaseURL, baseURL)
	case ProviderGemini:
		set(&c.Gemini.Model, model)
		set(&c.Gemini.APIKey, apiKey)
		set(&c.Gemini.BaseURL, baseURL)
	case ProviderOpenRouter:
		set(&c.OpenRouter.Model, model)
		set(&c.OpenRouter.APIKey, apiKey)
		set(&c.OpenRouter.BaseURL, baseURL)
	case ProviderGroq:
		set(&c.Groq.Model, model)
		set(&c.Groq.APIKey, apiKey)
		set(&c.Groq.BaseURL, baseURL)
	case ProviderOllama:
		set(&c.Ollama.Model, model)
		set(&c.Ollama.BaseURL, baseURL)
	}
}

// Model returns the configured model name of the selected provider.
func (c Config) Model() string {
	switch c.Provider {
	case ProviderAnthropic:
		return c.Anthropic.Model
	case ProviderOpenAI:
		return c.OpenAI.Model
	case ProviderGemini:
		return c.Gemini.Model
	case ProviderOpenRouter:
		return c.OpenRouter.Model
	case ProviderGroq:
		return c.Groq.Model
	case ProviderOllama:
		return c.Ollama.Model
	case ProviderMock:
		return "mock"
	}
	return ""
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderAnthropic:
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini provider")
		}
	case ProviderOpenRouter:
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("OPENROUTER_API_KEY is required for the openrouter provider")
		}
	case ProviderGroq:
		if c.Groq.APIKey == "" {
			return fmt.Errorf("GROQ_API_KEY is required for the groq provider")
		}
	case ProviderOllama:
		if c.Ollama.Model == "" {
			return fmt.Errorf("a model is required for the ollama provider")
		}
	case ProviderMock:
		// No API key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
