package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestOllamaProvider(t *testing.T, handler http.HandlerFunc) *OllamaProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := NewOllamaProvider(OllamaConfig{Model: "llama3.1", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new ollama provider: %v", err)
	}
	return p
}

func TestOllamaProvider_HappyPath(t *testing.T) {
	var gotPath, gotFormat string
	handler := func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		var body struct {
			Format string `json:"format"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		gotFormat = body.Format

		w.Header().Set("Content-Type", "application/x-ndjson")
		json.NewEncoder(w).Encode(map[string]any{
			"model": "llama3.1",
			"message": map[string]any{
				"role":    "assistant",
				"content": "```json\n{\"summary\":\"Remote hung up.\",\"severity\":\"Medium\"}\n```",
			},
			"done":              true,
			"prompt_eval_count": 30,
			"eval_count":        15,
		})
	}

	p := newTestOllamaProvider(t, handler)
	resp, err := p.Generate(context.Background(), Request{
		System:    "You diagnose git errors.",
		Messages:  []Message{UserMessage("fatal: the remote end hung up unexpectedly")},
		Schema:    testSchema(),
		MaxTokens: 256,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/api/chat" {
		t.Fatalf("expected /api/chat, got %q", gotPath)
	}
	if gotFormat != "json" {
		t.Fatalf("expected json format, got %q", gotFormat)
	}
	if resp.Usage.InputTokens != 30 || resp.Usage.OutputTokens != 15 {
		t.Fatalf("unexpected usage: %+v", resp.Usage)
	}
	if resp.Model != "llama3.1" {
		t.Fatalf("expected model 'llama3.1', got %q", resp.Model)
	}
	if string(resp.Content) != `{"summary":"Remote hung up.","severity":"Medium"}` {
		t.Fatalf("fenced answer not unwrapped: %s", resp.Content)
	}
}

func TestOllamaProvider_ServerError(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{"error": "model not loaded"})
	}

	p := newTestOllamaProvider(t, handler)
	_, err := p.Generate(context.Background(), Request{
		Messages: []Message{UserMessage("test")},
	})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T (%v)", err, err)
	}
}

func TestOllamaProvider_RequiresModel(t *testing.T) {
	if _, err := NewOllamaProvider(OllamaConfig{}); err == nil {
		t.Fatal("expected error for empty model")
	}
}

func TestMapOllamaError(t *testing.T) {
	refused := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connect: connection refused")}
	var unavail *ErrProviderUnavailable
	if err := mapOllamaError(refused); !errors.As(err, &unavail) || !strings.Contains(err.Error(), "ollama serve") {
		t.Errorf("refused connection = %v, want a hint to start the server", err)
	}

	var rl *ErrRateLimit
	if err := mapOllamaError(errors.New("429 Too Many Requests")); !errors.As(err, &rl) {
		t.Errorf("expected ErrRateLimit, got %T", err)
	}

	var te *ErrTimeout
	if err := mapOllamaError(context.DeadlineExceeded); !errors.As(err, &te) {
		t.Errorf("expected ErrTimeout, got %T", err)
	}
}

func TestIntValue(t *testing.T) {
	for v, want := range map[any]int{3: 3, int64(4): 4, float64(5): 5, "6": 0} {
		if got := intValueOr0(v); got != want {
			t.Errorf("intValueOr0(%v) = %d, want %d", v, got, want)
		}
	}
	if got := intValueOr0(nil); got != 0 {
		t.Errorf("intValueOr0(nil) = %d, want 0", got)
	}
}
