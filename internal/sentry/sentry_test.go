package sentry

import (
	"context"
	"errors"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitguy/gitguy/internal/diagnosis"
)

func TestScrubPII(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"linux home", "open /home/alice/repo/.git/index.lock", "open /home/[user]/repo/.git/index.lock"},
		{"mac home", "/Users/bob/src", "/Users/[user]/src"},
		{"github token", "token ghp_abcdefghijklmnop rejected", "token ghp_[REDACTED] rejected"},
		{"api key", "api_key=abcdef1234567890", "api_key=[REDACTED]"},
		{"email", "Author: alice@example.com", "Author: [email]"},
		{"url credentials", "https://alice:pw@github.com/o/r.git", "https://[REDACTED]@github.com/o/r.git"},
		{"nothing to scrub", "fatal: not a git repository", "fatal: not a git repository"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scrubPII(tt.in))
		})
	}
}

func TestBeforeSend(t *testing.T) {
	t.Run("drops expected exits", func(t *testing.T) {
		ev := &sentry.Event{}
		hint := &sentry.EventHint{OriginalException: context.Canceled}
		assert.Nil(t, beforeSend(ev, hint))
		assert.Nil(t, beforeSend(&sentry.Event{Message: "signal: interrupt"}, nil))
	})

	t.Run("scrubs kept events", func(t *testing.T) {
		ev := &sentry.Event{
			Message: "failed in /home/alice/x",
			Tags:    map[string]string{"remote": "https://u:p@github.com/o/r"},
			Extra:   map[string]any{"author": "alice@example.com", "n": 3},
			Breadcrumbs: []*sentry.Breadcrumb{
				{Message: "open /Users/bob/repo"},
			},
			Exception: []sentry.Exception{{
				Value: "pushing as bob@example.com",
				Stacktrace: &sentry.Stacktrace{Frames: []sentry.Frame{
					{AbsPath: "/home/alice/go/src/main.go", Filename: "main.go"},
				}},
			}},
		}
		hint := &sentry.EventHint{OriginalException: errors.New("store: disk full")}

		out := beforeSend(ev, hint)
		require.NotNil(t, out)
		assert.Equal(t, "failed in /home/[user]/x", out.Message)
		assert.Equal(t, "https://[REDACTED]@github.com/o/r", out.Tags["remote"])
		assert.Equal(t, "[email]", out.Extra["author"])
		assert.Equal(t, 3, out.Extra["n"])
		assert.Equal(t, "open /Users/[user]/repo", out.Breadcrumbs[0].Message)
		assert.Equal(t, "pushing as [email]", out.Exception[0].Value)
		assert.Equal(t, "/home/[user]/go/src/main.go", out.Exception[0].Stacktrace.Frames[0].AbsPath)
	})
}

func TestInit_DisabledWithoutDSN(t *testing.T) {
	t.Setenv("SENTRY_DSN", "")
	cleanup := Init(Options{Version: "test"})
	require.NotNil(t, cleanup)
	cleanup()
}

func TestInit_OptOut(t *testing.T) {
	t.Setenv("DO_NOT_TRACK", "1")
	cleanup := Init(Options{DSN: "https://key@o0.ingest.sentry.io/0", Version: "test"})
	require.NotNil(t, cleanup)
	cleanup()
	assert.Nil(t, sentry.CurrentHub().Client())
}

func TestFallbackObserver(t *testing.T) {
	var o diagnosis.Observer = FallbackObserver{}
	assert.NotPanics(t, func() {
		o.ObserveFallback(context.Background(), diagnosis.FallbackEvent{
			RequestID: "req-1",
			Reason:    diagnosis.ReasonTimeout,
			Err:       context.DeadlineExceeded,
		})
	})
}

func TestCaptureError_Nil(t *testing.T) {
	assert.NotPanics(t, func() { CaptureError(nil) })
}
