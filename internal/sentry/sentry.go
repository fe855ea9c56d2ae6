// Package sentry reports gitguy failures to Sentry when a DSN is
// configured. Every function is a no-op until Init succeeds.
package sentry

import (
	"context"
	"net/http"
	"os"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/gitguy/gitguy/internal/diagnosis"
)

const (
	flushTimeout      = 2 * time.Second
	httpClientTimeout = 10 * time.Second
	maxBreadcrumbs    = 20
)

var (
	// /home/username, /Users/username, C:\Users\username
	homePathPattern = regexp.MustCompile(`(?i)(/home/|/Users/|C:\\Users\\)([^/\\:]+)`)
	apiKeyPattern   = regexp.MustCompile(`(?i)(sk-ant-api\d+-|sk-|gh[pousr]_|api[_-]?key[=:]\s*)([A-Za-z0-9_-]{10,})`)
	emailPattern    = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	urlUserPattern  = regexp.MustCompile(`(?i)(https?://)[^/\s@]+@`)
)

// ignored lists error substrings that are expected CLI exits.
var ignored = []string{
	"context canceled",
	"interrupt",
	"terminated",
	"broken pipe",
}

// Options configures Init.
type Options struct {
	DSN         string
	Environment string
	Version     string
}

// Init initializes the Sentry SDK. It respects DO_NOT_TRACK and
// GITGUY_NO_TELEMETRY, and SENTRY_DSN overrides opts.DSN. It returns a
// cleanup function that flushes buffered events.
func Init(opts Options) func() {
	if os.Getenv("DO_NOT_TRACK") == "1" || os.Getenv("GITGUY_NO_TELEMETRY") == "1" {
		return func() {}
	}
	dsn := os.Getenv("SENTRY_DSN")
	if dsn == "" {
		dsn = opts.DSN
	}
	if dsn == "" {
		return func() {}
	}
	env := opts.Environment
	if env == "" {
		env = "production"
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Release:          "gitguy@" + opts.Version,
		Environment:      env,
		ServerName:       runtime.GOOS + "-" + runtime.GOARCH,
		AttachStacktrace: true,
		SampleRate:       1.0,
		MaxBreadcrumbs:   maxBreadcrumbs,
		HTTPClient:       &http.Client{Timeout: httpClientTimeout},
		BeforeSend:       beforeSend,
		BeforeBreadcrumb: func(b *sentry.Breadcrumb, _ *sentry.BreadcrumbHint) *sentry.Breadcrumb {
			b.Message = scrubPII(b.Message)
			return b
		},
	})
	if err != nil {
		return func() {}
	}
	return func() { sentry.Flush(flushTimeout) }
}

func beforeSend(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
	if hint != nil && hint.OriginalException != nil && isIgnored(hint.OriginalException.Error()) {
		return nil
	}
	if event.Message != "" && isIgnored(event.Message) {
		return nil
	}
	scrubEvent(event)
	return event
}

func isIgnored(msg string) bool {
	msg = strings.ToLower(msg)
	for _, s := range ignored {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// CaptureError reports err. Safe to call when Sentry is not configured.
func CaptureError(err error) {
	if err == nil {
		return
	}
	sentry.CaptureException(err)
}

// RecoverAndPanic reports a panic, flushes, then re-panics. Defer it
// before the cleanup returned by Init.
func RecoverAndPanic() {
	if r := recover(); r != nil {
		sentry.CurrentHub().RecoverWithContext(context.Background(), r)
		sentry.Flush(flushTimeout)
		panic(r)
	}
}

// AddBreadcrumb adds context for debugging.
func AddBreadcrumb(category, message string, data map[string]any) {
	sentry.AddBreadcrumb(&sentry.Breadcrumb{
		Category:  category,
		Message:   message,
		Data:      data,
		Level:     sentry.LevelInfo,
		Timestamp: time.Now(),
	})
}

// SetTag sets a tag for filtering errors. Values are scrubbed first.
func SetTag(key, value string) {
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag(key, scrubPII(value))
	})
}

// FallbackObserver records model fallbacks as breadcrumbs so a later
// captured error shows which requests degraded and why.
type FallbackObserver struct{}

func (FallbackObserver) ObserveFallback(_ context.Context, ev diagnosis.FallbackEvent) {
	data := map[string]any{
		"request_id": ev.RequestID,
		"reason":     ev.Reason,
	}
	msg := "model diagnosis fell back to pattern matcher"
	if ev.Err != nil {
		msg += ": " + ev.Err.Error()
	}
	AddBreadcrumb("diagnosis", msg, data)
}

var _ diagnosis.Observer = FallbackObserver{}

func scrubPII(s string) string {
	s = homePathPattern.ReplaceAllString(s, "${1}[user]")
	s = urlUserPattern.ReplaceAllString(s, "${1}[REDACTED]@")
	s = apiKeyPattern.ReplaceAllString(s, "${1}[REDACTED]")
	s = emailPattern.ReplaceAllString(s, "[email]")
	return s
}

func scrubEvent(event *sentry.Event) {
	event.Message = scrubPII(event.Message)

	for i := range event.Exception {
		event.Exception[i].Value = scrubPII(event.Exception[i].Value)
		if event.Exception[i].Stacktrace != nil {
			for j := range event.Exception[i].Stacktrace.Frames {
				frame := &event.Exception[i].Stacktrace.Frames[j]
				frame.AbsPath = scrubPII(frame.AbsPath)
				frame.Filename = scrubPII(frame.Filename)
			}
		}
	}
	for i := range event.Breadcrumbs {
		event.Breadcrumbs[i].Message = scrubPII(event.Breadcrumbs[i].Message)
	}
	for key, value := range event.Extra {
		if str, ok := value.(string); ok {
			event.Extra[key] = scrubPII(str)
		}
	}
	for key, value := range event.Tags {
		event.Tags[key] = scrubPII(value)
	}
}
