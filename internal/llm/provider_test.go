package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestComplete(t *testing.T) {
	valid := `{"summary":"Credentials were rejected.","severity":"High"}`

	t.Run("accepts a conforming answer", func(t *testing.T) {
		resp, err := complete(Request{Schema: testSchema()}, valid, Usage{InputTokens: 10, OutputTokens: 4}, "m", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Usage.TotalTokens != 14 {
			t.Errorf("total tokens = %d, want 14", resp.Usage.TotalTokens)
		}
		if resp.StopReason != StopEnd {
			t.Errorf("stop reason = %q, want %q", resp.StopReason, StopEnd)
		}
		if resp.Model != "m" {
			t.Errorf("model = %q, want m", resp.Model)
		}
	})

	t.Run("strips a code fence", func(t *testing.T) {
		resp, err := complete(Request{Schema: testSchema()}, "```json\n"+valid+"\n```\n", Usage{}, "m", StopEnd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(resp.Content) != valid {
			t.Errorf("content = %s, want %s", resp.Content, valid)
		}
	})

	t.Run("truncation wins over validation", func(t *testing.T) {
		_, err := complete(Request{Schema: testSchema()}, `{"summary":"Credentials were`, Usage{}, "m", StopMaxTokens)
		var maxTok *ErrMaxTokensExceeded
		if !errors.As(err, &maxTok) {
			t.Fatalf("expected ErrMaxTokensExceeded, got %T (%v)", err, err)
		}
		if string(maxTok.Content) != `{"summary":"Credentials were` {
			t.Errorf("partial content = %s", maxTok.Content)
		}
	})

	t.Run("rejects a non-conforming answer", func(t *testing.T) {
		_, err := complete(Request{Schema: testSchema()}, `{"summary":"x"}`, Usage{}, "m", StopEnd)
		var inv *ErrInvalidResponse
		if !errors.As(err, &inv) {
			t.Fatalf("expected ErrInvalidResponse, got %T (%v)", err, err)
		}
	})

	t.Run("no schema passes text through", func(t *testing.T) {
		resp, err := complete(Request{}, "  plain words  ", Usage{}, "m", StopEnd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(resp.Content) != "plain words" {
			t.Errorf("content = %q", resp.Content)
		}
	})
}

func TestUnfence(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"\n  {\"a\":1}\n", `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"```{\"a\":1}```", `{"a":1}`},
		{"Here you go:\n```json\n{\"a\":1}\n```", "Here you go:\n```json\n{\"a\":1}\n```"},
		{"```", "```"},
	}
	for _, tt := range tests {
		if got := string(unfence(tt.in)); got != tt.want {
			t.Errorf("unfence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMockProvider_ReplaysInOrder(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Content: json.RawMessage(`{"b":2}`)},
	)

	first, err := mock.Generate(context.Background(), Request{Messages: []Message{UserMessage("first")}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(first.Content) != `{"a":1}` || first.Usage.InputTokens != 10 || first.StopReason != StopEnd {
		t.Fatalf("unexpected first response: %+v", first)
	}

	second, err := mock.Generate(context.Background(), Request{Messages: []Message{UserMessage("second")}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(second.Content) != `{"b":2}` {
		t.Fatalf("expected {\"b\":2}, got %s", second.Content)
	}

	_, err = mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable once the script is exhausted, got %T", err)
	}

	if mock.CallCount() != 3 || mock.Calls[1].Messages[0].Content != "second" {
		t.Fatalf("calls not recorded: %+v", mock.Calls)
	}
}

func TestMockProvider_ReturnsScriptedError(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrRateLimit{}})

	_, err := mock.Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T", err)
	}
}

func TestMockProvider_Strict(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"summary":"no severity"}`)},
		MockResponse{Content: json.RawMessage(`{"summary":"cut`), StopReason: StopMaxTokens},
	)
	mock.Strict = true

	_, err := mock.Generate(context.Background(), Request{Schema: testSchema()})
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got: %T (%v)", err, err)
	}
	if string(inv.Content) != `{"summary":"no severity"}` {
		t.Fatalf("expected offending content to be kept, got %s", inv.Content)
	}

	_, err = mock.Generate(context.Background(), Request{Schema: testSchema()})
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) {
		t.Fatalf("expected ErrMaxTokensExceeded, got: %T (%v)", err, err)
	}
}

func TestMockProvider_DelayHonorsDeadline(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{}`), Delay: time.Second},
	)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := mock.Generate(ctx, Request{})
	var te *ErrTimeout
	if !errors.As(err, &te) {
		t.Fatalf("expected ErrTimeout, got: %T (%v)", err, err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("expected ErrTimeout to unwrap to context.DeadlineExceeded")
	}
}

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}
	if id := RequestIDFrom(ctx); id != "" {
		t.Fatalf("expected empty request id, got %q", id)
	}

	ctx = WithRequestID(WithPurpose(ctx, "error-diagnosis"), "req-1")
	if p := PurposeFrom(ctx); p != "error-diagnosis" {
		t.Fatalf("expected 'error-diagnosis', got %q", p)
	}
	if id := RequestIDFrom(ctx); id != "req-1" {
		t.Fatalf("expected 'req-1', got %q", id)
	}
}
