package llm

import "fmt"

const defaultGroqBaseURL = "https://api.groq.com/openai/v1"

// NewGroqProvider targets Groq's OpenAI-compatible API. Groq models answer
// in JSON mode; schema conformance is checked locally after the call.
func NewGroqProvider(cfg GroqConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("groq API key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGroqBaseURL
	}

	p := newChatProvider(cfg.APIKey, baseURL, resolveModel(ProviderGroq, cfg.Model), nil)
	p.jsonObject = true
	return p, nil
}
