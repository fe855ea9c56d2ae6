package llm

import (
	"fmt"
	"net/http"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// NewOpenRouterProvider targets OpenRouter's OpenAI-compatible API. Models
// are named vendor/model, e.g. "google/gemini-2.0-flash-exp", and are sent
// unchanged. Requests are attributed to gitguy through the X-Title and
// HTTP-Referer headers OpenRouter uses for app rankings.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}
	headers := http.Header{}
	headers.Set("X-Title", "gitguy")
	headers.Set("HTTP-Referer", "https://github.com/gitguy/gitguy")

	return newChatProvider(cfg.APIKey, baseURL, cfg.Model, headers), nil
}
