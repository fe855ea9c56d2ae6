package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

const defaultOllamaURL = "http://localhost:11434"

// OllamaProvider runs diagnosis against a local Ollama server through
// langchaingo, so no error text leaves the machine. Ollama is asked for
// JSON output and the answer is checked against the schema locally.
type OllamaProvider struct {
	llm   *ollama.LLM
	model string
}

// NewOllamaProvider creates a provider for a local Ollama model.
func NewOllamaProvider(cfg OllamaConfig) (*OllamaProvider, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("ollama model is required")
	}
	serverURL := cfg.BaseURL
	if serverURL == "" {
		serverURL = defaultOllamaURL
	}

	client, err := ollama.New(
		ollama.WithModel(cfg.Model),
		ollama.WithServerURL(serverURL),
		ollama.WithFormat("json"),
	)
	if err != nil {
		return nil, fmt.Errorf("create Ollama client: %w", err)
	}
	return &OllamaProvider{llm: client, model: cfg.Model}, nil
}

func (p *OllamaProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	opts := []llms.CallOption{llms.WithMaxTokens(req.MaxTokens)}
	if req.Temperature > 0 {
		opts = append(opts, llms.WithTemperature(req.Temperature))
	}

	result, err := p.llm.GenerateContent(ctx, ollamaMessages(req), opts...)
	if err != nil {
		return nil, mapOllamaError(err)
	}
	if len(result.Choices) == 0 {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("no choices in Ollama response")}
	}

	choice := result.Choices[0]
	usage := Usage{
		InputTokens:  intValueOr0(choice.GenerationInfo["PromptTokens"]),
		OutputTokens: intValueOr0(choice.GenerationInfo["CompletionTokens"]),
	}
	stop := StopEnd
	if choice.StopReason == "length" {
		stop = StopMaxTokens
	}
	return complete(req, choice.Content, usage, p.model, stop)
}

func (p *OllamaProvider) ModelID() string {
	return p.model
}

func ollamaMessages(req Request) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, req.System))
	}
	for _, m := range req.Messages {
		role := llms.ChatMessageTypeHuman
		if m.Role == RoleAssistant {
			role = llms.ChatMessageTypeAI
		}
		messages = append(messages, llms.TextParts(role, m.Content))
	}
	return messages
}

func intValueOr0(v any) int {
	n, _ := intValue(v)
	return int(n)
}

// mapOllamaError classifies langchaingo errors, which carry no status
// code. A refused connection usually means the server is not running.
func mapOllamaError(err error) error {
	if cerr := mapContextError(err); cerr != nil {
		return cerr
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &ErrTimeout{Err: err}
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "too many requests"):
		return &ErrRateLimit{Err: err}
	case strings.Contains(msg, "connection refused"):
		return &ErrProviderUnavailable{Err: fmt.Errorf("is `ollama serve` running? %w", err)}
	}
	return &ErrProviderUnavailable{Err: err}
}
