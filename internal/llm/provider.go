// Package llm talks to hosted and local language models on behalf of the
// diagnosis engine. Every backend is reduced to one call: send a system
// prompt plus the error text, get back a JSON object.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
)

// Provider sends a single diagnosis prompt to a model.
type Provider interface {
	// Generate returns the model's answer. When req.Schema is set the
	// answer has already been checked against it; a non-conforming answer
	// comes back as *ErrInvalidResponse carrying the raw content.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the concrete model identifier requests are sent to.
	ModelID() string
}

// Request is one prompt.
type Request struct {
	System   string
	Messages []Message

	// Schema, when set, asks the backend for structured output and makes
	// the provider validate the answer locally.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

// Message is one conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// UserMessage is shorthand for a single user turn.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Schema is a named JSON Schema. Name doubles as the structured-output
// name for backends that need one and as the compile cache key.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Normalized stop reasons.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// Response is a model answer.
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string
}

// Usage is the token count of one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// complete turns raw model text into a Response. Every backend funnels
// through here so truncation and schema checks behave the same regardless
// of which API produced the text.
func complete(req Request, text string, usage Usage, model, stop string) (*Response, error) {
	content := json.RawMessage(unfence(text))
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}
	if stop == "" {
		stop = StopEnd
	}

	// A truncated object cannot satisfy the schema, and retrying with the
	// same token limit would truncate again.
	if stop == StopMaxTokens {
		return nil, &ErrMaxTokensExceeded{Content: content}
	}
	if err := validateResponse(req.Schema, content); err != nil {
		return nil, err
	}

	return &Response{
		Content:    content,
		Usage:      usage,
		Model:      model,
		StopReason: stop,
	}, nil
}

// unfence strips surrounding whitespace and a single enclosing Markdown
// code fence. JSON-mode models still wrap answers in ```json now and then.
func unfence(text string) []byte {
	b := bytes.TrimSpace([]byte(text))
	if !bytes.HasPrefix(b, []byte("```")) || !bytes.HasSuffix(b, []byte("```")) || len(b) < 6 {
		return b
	}
	inner := b[3 : len(b)-3]
	if nl := bytes.IndexByte(inner, '\n'); nl >= 0 && !bytes.ContainsAny(inner[:nl], "{[\"") {
		inner = inner[nl+1:]
	}
	return bytes.TrimSpace(inner)
}
