package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// chatRequest is the part of a Chat Completions request the tests inspect.
type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	ResponseFormat *struct {
		Type       string `json:"type"`
		JSONSchema *struct {
			Name   string `json:"name"`
			Strict bool   `json:"strict"`
		} `json:"json_schema"`
	} `json:"response_format"`
}

// chatServer answers every Chat Completions call with content and records
// the last request and its headers.
type chatServer struct {
	content string
	finish  string
	status  int

	got    chatRequest
	header http.Header
	calls  int
}

func (s *chatServer) start(t *testing.T) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls++
		s.header = r.Header.Clone()
		json.NewDecoder(r.Body).Decode(&s.got)

		w.Header().Set("Content-Type", "application/json")
		if s.status != 0 {
			w.WriteHeader(s.status)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"type": "error", "message": http.StatusText(s.status)},
			})
			return
		}
		finish := s.finish
		if finish == "" {
			finish = "stop"
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1234567890,
			"model":   s.got.Model,
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": s.content},
				"finish_reason": finish,
			}},
			"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
		})
	}))
	t.Cleanup(server.Close)
	return server.URL + "/v1"
}

const chatAnswer = `{"summary":"Credentials were rejected.","severity":"High"}`

func diagnosisRequest() Request {
	return Request{
		System:    "You diagnose git errors.",
		Messages:  []Message{UserMessage("fatal: Authentication failed for '<url>'")},
		Schema:    testSchema(),
		MaxTokens: 256,
	}
}

func TestOpenAIProvider_StrictSchema(t *testing.T) {
	srv := &chatServer{content: chatAnswer}
	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "sk-test", Model: "gpt-mini", BaseURL: srv.start(t)})
	if err != nil {
		t.Fatalf("new openai provider: %v", err)
	}

	resp, err := p.Generate(context.Background(), diagnosisRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if srv.got.Model != "gpt-4o-mini" {
		t.Errorf("model alias not resolved, sent %q", srv.got.Model)
	}
	if len(srv.got.Messages) != 2 || srv.got.Messages[0].Role != "system" {
		t.Errorf("expected system then user message, got %+v", srv.got.Messages)
	}
	rf := srv.got.ResponseFormat
	if rf == nil || rf.Type != "json_schema" || rf.JSONSchema == nil || !rf.JSONSchema.Strict || rf.JSONSchema.Name != "test-diagnosis" {
		t.Errorf("expected a strict json_schema response format, got %+v", rf)
	}
	if resp.Usage.InputTokens != 40 || resp.Usage.OutputTokens != 25 {
		t.Errorf("unexpected usage: %+v", resp.Usage)
	}
	if string(resp.Content) != chatAnswer {
		t.Errorf("content = %s", resp.Content)
	}
}

func TestOpenAIProvider_Truncated(t *testing.T) {
	srv := &chatServer{content: `{"summary":"Cred`, finish: "length"}
	p, _ := NewOpenAIProvider(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.start(t)})

	_, err := p.Generate(context.Background(), diagnosisRequest())
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) {
		t.Fatalf("expected ErrMaxTokensExceeded, got: %T (%v)", err, err)
	}
}

func TestOpenAIProvider_Errors(t *testing.T) {
	tests := []struct {
		status int
		check  func(error) bool
	}{
		{http.StatusTooManyRequests, func(err error) bool { var e *ErrRateLimit; return errors.As(err, &e) }},
		{http.StatusInternalServerError, func(err error) bool { var e *ErrProviderUnavailable; return errors.As(err, &e) && e.StatusCode == 500 }},
		{http.StatusUnauthorized, func(err error) bool { var e *ErrProviderUnavailable; return errors.As(err, &e) && !retryable(err) }},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := &chatServer{status: tt.status}
			p, _ := NewOpenAIProvider(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.start(t)})

			_, err := p.Generate(context.Background(), diagnosisRequest())
			if !tt.check(err) {
				t.Fatalf("unexpected error mapping: %T (%v)", err, err)
			}
		})
	}
}

func TestGroqProvider_JSONObjectMode(t *testing.T) {
	srv := &chatServer{content: "```json\n" + chatAnswer + "\n```"}
	p, err := NewGroqProvider(GroqConfig{APIKey: "gsk-test", Model: "llama-8b", BaseURL: srv.start(t)})
	if err != nil {
		t.Fatalf("new groq provider: %v", err)
	}

	resp, err := p.Generate(context.Background(), diagnosisRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if srv.got.Model != "llama-3.1-8b-instant" {
		t.Errorf("model alias not resolved, sent %q", srv.got.Model)
	}
	if srv.got.ResponseFormat == nil || srv.got.ResponseFormat.Type != "json_object" {
		t.Errorf("expected json_object response format, got %+v", srv.got.ResponseFormat)
	}
	if string(resp.Content) != chatAnswer {
		t.Errorf("fenced answer not unwrapped: %s", resp.Content)
	}
}

func TestGroqProvider_ValidatesLocally(t *testing.T) {
	srv := &chatServer{content: `{"summary":"missing severity"}`}
	p, _ := NewGroqProvider(GroqConfig{APIKey: "gsk-test", BaseURL: srv.start(t)})

	_, err := p.Generate(context.Background(), diagnosisRequest())
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got: %T (%v)", err, err)
	}
}

func TestOpenRouterProvider_Headers(t *testing.T) {
	srv := &chatServer{content: chatAnswer}
	p, err := NewOpenRouterProvider(OpenRouterConfig{
		APIKey:  "sk-or-test",
		Model:   "anthropic/claude-3-haiku",
		BaseURL: srv.start(t),
	})
	if err != nil {
		t.Fatalf("new openrouter provider: %v", err)
	}
	if _, err := p.Generate(context.Background(), diagnosisRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if srv.got.Model != "anthropic/claude-3-haiku" {
		t.Errorf("vendor model should pass through, sent %q", srv.got.Model)
	}
	if srv.header.Get("X-Title") != "gitguy" {
		t.Errorf("X-Title = %q", srv.header.Get("X-Title"))
	}
	if srv.header.Get("Authorization") != "Bearer sk-or-test" {
		t.Errorf("Authorization = %q", srv.header.Get("Authorization"))
	}
}

func TestCompatibleProviders_RequireKey(t *testing.T) {
	if _, err := NewOpenAIProvider(OpenAIConfig{}); err == nil {
		t.Error("openai: expected error for empty API key")
	}
	if _, err := NewGroqProvider(GroqConfig{}); err == nil {
		t.Error("groq: expected error for empty API key")
	}
	if _, err := NewOpenRouterProvider(OpenRouterConfig{Model: "google/gemini-2.0-flash-exp"}); err == nil {
		t.Error("openrouter: expected error for empty API key")
	}
}
