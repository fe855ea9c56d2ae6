package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/gitguy/gitguy/internal/router"
	"github.com/gitguy/gitguy/internal/store"
)

// mockEventRepo implements store.EventRepo for testing.
type mockEventRepo struct {
	requests []store.LLMRequestEvent
	err      error
	lastOpts store.QueryOpts
}

func (m *mockEventRepo) AppendLLMRequest(_ context.Context, _ store.LLMRequestEventData) error {
	return nil
}
func (m *mockEventRepo) ListLLMRequests(_ context.Context, opts store.QueryOpts) ([]store.LLMRequestEvent, error) {
	m.lastOpts = opts
	return m.requests, m.err
}
func (m *mockEventRepo) GetLLMRequest(_ context.Context, _ int64) (*store.LLMRequestEvent, error) {
	return nil, store.ErrNotFound
}
func (m *mockEventRepo) UsageStats(_ context.Context, _ store.QueryOpts) ([]store.UsageStat, error) {
	return nil, nil
}
func (m *mockEventRepo) Prune(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func testRequests() []store.LLMRequestEvent {
	ts := time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC)
	return []store.LLMRequestEvent{
		{Sequence: 2, Timestamp: ts, LLMRequestEventData: store.LLMRequestEventData{
			RequestID: "req-2", Provider: "anthropic", Model: "claude-haiku", Purpose: "diagnose",
			InputTokens: 420, OutputTokens: 180, LatencyMs: 950, Success: true,
			ResponseBody: `{"category": "Network"}`,
		}},
		{Sequence: 1, Timestamp: ts.Add(-time.Hour), LLMRequestEventData: store.LLMRequestEventData{
			RequestID: "req-1", Provider: "openai", Model: "gpt-4o-mini", Purpose: "diagnose",
			LatencyMs: 20000, ErrorMessage: "context deadline exceeded",
		}},
	}
}

func load(t *testing.T, s *HistoryScreen) {
	t.Helper()
	cmd := s.Init()
	if cmd == nil {
		t.Fatal("expected a load command")
	}
	s.Update(cmd())
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func TestHistoryScreen_Loads(t *testing.T) {
	repo := &mockEventRepo{requests: testRequests()}
	s := New(repo)

	if view := s.View(100, 20); !strings.Contains(view, "Loading") {
		t.Errorf("view before load = %q", view)
	}

	load(t, s)
	if repo.lastOpts.Limit != pageSize {
		t.Errorf("Limit = %d, want %d", repo.lastOpts.Limit, pageSize)
	}

	view := s.View(120, 20)
	for _, want := range []string{
		"2 most recent requests · 1 failed",
		"anthropic/claude-haiku", "420→180", "950ms",
		"openai/gpt-4o-mini", "20.0s", "✗",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestHistoryScreen_Empty(t *testing.T) {
	s := New(&mockEventRepo{})
	load(t, s)
	if view := s.View(100, 20); !strings.Contains(view, "No LLM requests yet") {
		t.Errorf("view = %q", view)
	}
}

func TestHistoryScreen_Error(t *testing.T) {
	s := New(&mockEventRepo{err: errors.New("database is locked")})
	load(t, s)
	if view := s.View(100, 20); !strings.Contains(view, "database is locked") {
		t.Errorf("view = %q", view)
	}
}

func TestHistoryScreen_Navigation(t *testing.T) {
	s := New(&mockEventRepo{requests: testRequests()})
	load(t, s)

	s.Update(specialKey(tea.KeyDown))
	s.Update(specialKey(tea.KeyDown))
	if s.cursor != 1 {
		t.Errorf("cursor = %d, want it clamped at 1", s.cursor)
	}
	s.Update(keyPress('k'))
	s.Update(keyPress('k'))
	if s.cursor != 0 {
		t.Errorf("cursor = %d, want it clamped at 0", s.cursor)
	}
}

func TestHistoryScreen_FailedOnly(t *testing.T) {
	s := New(&mockEventRepo{requests: testRequests()})
	load(t, s)

	s.Update(keyPress('f'))
	view := s.View(120, 20)
	if strings.Contains(view, "anthropic/claude-haiku") {
		t.Error("successful requests should be hidden")
	}
	if !strings.Contains(view, "openai/gpt-4o-mini") || !strings.Contains(view, "showing failures") {
		t.Errorf("view = %q", view)
	}
	if hints := s.KeyHints(); hints[2].Description != "Show all" {
		t.Errorf("filter hint = %q", hints[2].Description)
	}

	s.Update(keyPress('f'))
	if !strings.Contains(s.View(120, 20), "anthropic/claude-haiku") {
		t.Error("second f should show everything again")
	}
}

func TestHistoryScreen_Reload(t *testing.T) {
	repo := &mockEventRepo{}
	s := New(repo)
	load(t, s)

	repo.requests = testRequests()
	_, cmd := s.Update(keyPress('r'))
	if cmd == nil {
		t.Fatal("expected a reload")
	}
	s.Update(cmd())
	if len(s.events) != 2 {
		t.Errorf("got %d events after reload, want 2", len(s.events))
	}
}

func TestHistoryScreen_ScrollsToCursor(t *testing.T) {
	var many []store.LLMRequestEvent
	for i := range 30 {
		many = append(many, store.LLMRequestEvent{Sequence: int64(30 - i), LLMRequestEventData: store.LLMRequestEventData{
			Provider: "groq", Model: fmt.Sprintf("model-%02d", i), Success: true,
		}})
	}
	s := New(&mockEventRepo{requests: many})
	load(t, s)

	for range 25 {
		s.Update(keyPress('j'))
	}
	view := s.View(120, 10)
	if !strings.Contains(view, "model-25") {
		t.Error("cursor row should be visible")
	}
	if strings.Contains(view, "model-00") {
		t.Error("first row should have scrolled away")
	}
}

func TestHistoryScreen_OpenRequest(t *testing.T) {
	s := New(&mockEventRepo{requests: testRequests()})
	load(t, s)
	s.Update(keyPress('j'))

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected the request to open")
	}
	nav, ok := cmd().(router.NavigateMsg)
	if !ok {
		t.Fatal("expected a navigation message")
	}
	req, ok := nav.Target().(*requestScreen)
	if !ok {
		t.Fatalf("target = %T", nav.Target())
	}
	if req.Title() != "#1" {
		t.Errorf("title = %q, want #1", req.Title())
	}

	view := req.View(100, 30)
	for _, want := range []string{"openai/gpt-4o-mini", "failed", "req-1", "Error", "context deadline exceeded"} {
		if !strings.Contains(view, want) {
			t.Errorf("request view missing %q", want)
		}
	}
	if strings.Contains(view, "Response") {
		t.Error("empty sections should be left out")
	}
}

func TestRequestScreen_Scrolls(t *testing.T) {
	ev := testRequests()[0]
	ev.RequestBody = strings.Repeat("line\n", 40) + "last line"
	r := newRequestScreen(ev)

	if strings.Contains(r.View(80, 10), "last line") {
		t.Fatal("the end should not fit at first")
	}
	r.Update(specialKey(tea.KeyPgDown))
	r.Update(specialKey(tea.KeyPgDown))
	r.Update(specialKey(tea.KeyPgDown))
	r.Update(specialKey(tea.KeyPgDown))
	r.Update(specialKey(tea.KeyPgDown))
	if !strings.Contains(r.View(80, 10), "last line") {
		t.Error("paging down should reach the end")
	}

	r.Update(keyPress('g'))
	if r.offset != 0 {
		t.Errorf("offset = %d after g, want 0", r.offset)
	}
	if _, cmd := r.Update(specialKey(tea.KeyEscape)); cmd == nil {
		t.Error("expected esc to go back")
	}
}

func TestHistoryScreen_EscPops(t *testing.T) {
	s := New(&mockEventRepo{})
	_, cmd := s.Update(specialKey(tea.KeyEscape))
	if cmd == nil {
		t.Fatal("expected a pop command")
	}
	if nav, ok := cmd().(router.NavigateMsg); !ok || !nav.IsPop() {
		t.Error("expected a pop")
	}
}

func TestLatency(t *testing.T) {
	if got := latency(950); got != "950ms" {
		t.Errorf("latency(950) = %q", got)
	}
	if got := latency(20000); got != "20.0s" {
		t.Errorf("latency(20000) = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 20); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate(strings.Repeat("a", 30), 12); got != strings.Repeat("a", 11)+"…" {
		t.Errorf("truncate = %q", got)
	}
}
