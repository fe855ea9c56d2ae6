package patterns

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/gitguy/gitguy/internal/diagnosis"
	"github.com/gitguy/gitguy/internal/router"
	"github.com/gitguy/gitguy/internal/screen"
)

const testDB = `
version: v1.0.0
patterns:
  - id: net-timeout
    signature: "connection timed out"
    category: Network
    severity: Medium
    summary: "Connection to the remote timed out"
    causes: ["network outage"]
    solutions: ["retry later"]
  - id: net-dns
    signature: "could not resolve host"
    category: Network
    severity: Medium
    summary: "Host name could not be resolved"
    causes: ["DNS failure"]
    solutions: ["check DNS"]
  - id: auth-failed
    signature: "authentication failed"
    category: Authentication
    severity: High
    summary: "Authentication failed"
    causes: ["expired token"]
    solutions: ["create a new token"]
    commands: ["gh auth login"]
    prevention: "Use a credential helper"
`

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func testScreen(t *testing.T) *PatternsScreen {
	t.Helper()
	db, err := diagnosis.LoadDatabase([]byte(testDB))
	if err != nil {
		t.Fatalf("LoadDatabase: %v", err)
	}
	return New(diagnosis.NewMatcher(db))
}

func current(s *PatternsScreen) string {
	return s.rows[s.cursor].entry.ID
}

func TestPatternsScreen_GroupsByCategory(t *testing.T) {
	s := testScreen(t)

	// Network header, 2 patterns, Authentication header, 1 pattern.
	if len(s.rows) != 5 {
		t.Fatalf("rows = %d, want 5", len(s.rows))
	}
	if s.rows[0].kind != rowCategoryHeader || s.rows[0].category != diagnosis.CategoryNetwork {
		t.Errorf("first row = %+v, want Network header", s.rows[0])
	}
	if got := current(s); got != "net-timeout" {
		t.Errorf("cursor on %q, want net-timeout", got)
	}
}

func TestPatternsScreen_Navigation(t *testing.T) {
	s := testScreen(t)

	s.Update(specialKey(tea.KeyDown))
	if got := current(s); got != "net-dns" {
		t.Errorf("after down: %q, want net-dns", got)
	}

	// Skips the Authentication header.
	s.Update(specialKey(tea.KeyDown))
	if got := current(s); got != "auth-failed" {
		t.Errorf("after second down: %q, want auth-failed", got)
	}

	s.Update(specialKey(tea.KeyDown))
	if got := current(s); got != "auth-failed" {
		t.Errorf("down past the end moved the cursor to %q", got)
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift})
	if got := current(s); got != "net-timeout" {
		t.Errorf("after shift+tab: %q, want net-timeout", got)
	}

	s.Update(specialKey(tea.KeyTab))
	if got := current(s); got != "auth-failed" {
		t.Errorf("after tab: %q, want auth-failed", got)
	}
}

func TestPatternsScreen_Filter(t *testing.T) {
	s := testScreen(t)

	var scr screen.Screen = s
	scr, _ = scr.Update(keyPress('/'))
	ps := scr.(*PatternsScreen)
	if !ps.CapturingInput() {
		t.Fatal("expected filter mode after /")
	}

	for _, r := range "dns" {
		ps.Update(keyPress(r))
	}
	if got := ps.filter.Value(); got != "dns" {
		t.Fatalf("filter = %q, want dns", got)
	}
	if len(ps.rows) != 2 {
		t.Fatalf("rows = %d, want header plus one pattern", len(ps.rows))
	}
	if got := current(ps); got != "net-dns" {
		t.Errorf("cursor on %q, want net-dns", got)
	}

	// Enter keeps the filter, Esc in filter mode clears it.
	ps.Update(specialKey(tea.KeyEnter))
	if ps.CapturingInput() {
		t.Error("expected filter mode to end on enter")
	}
	if len(ps.rows) != 2 {
		t.Error("enter should keep the filter applied")
	}

	ps.Update(keyPress('/'))
	ps.Update(specialKey(tea.KeyEscape))
	if ps.filter.Value() != "" || len(ps.rows) != 5 {
		t.Errorf("esc should clear the filter, rows = %d", len(ps.rows))
	}
}

func TestPatternsScreen_FilterNoMatches(t *testing.T) {
	s := testScreen(t)
	s.Update(keyPress('/'))
	for _, r := range "zzzz" {
		s.Update(keyPress(r))
	}
	if len(s.rows) != 0 {
		t.Fatalf("rows = %d, want 0", len(s.rows))
	}
	if view := s.View(80, 20); !strings.Contains(view, "No patterns match") {
		t.Errorf("view = %q", view)
	}
	// Enter with nothing selected is a no-op.
	s.Update(specialKey(tea.KeyEnter))
	if _, cmd := s.Update(specialKey(tea.KeyEnter)); cmd != nil {
		t.Error("expected no command without a selection")
	}
}

func TestPatternsScreen_SelectOpensDetail(t *testing.T) {
	s := testScreen(t)
	s.Update(specialKey(tea.KeyTab))

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected a push command")
	}
	nav, ok := cmd().(router.NavigateMsg)
	if !ok {
		t.Fatal("expected a navigation message")
	}
	detail := nav.Target().(*PatternDetailScreen)
	if detail.Title() != "auth-failed" {
		t.Errorf("detail title = %q", detail.Title())
	}

	view := detail.View(100, 40)
	for _, want := range []string{"Authentication failed", "authentication failed", "$ gh auth login", "Use a credential helper"} {
		if !strings.Contains(view, want) {
			t.Errorf("detail view missing %q", want)
		}
	}
}

func TestPatternsScreen_ViewScrolls(t *testing.T) {
	s := testScreen(t)
	s.Update(specialKey(tea.KeyTab))

	view := s.View(100, 2)
	if !strings.Contains(view, "auth-failed") {
		t.Errorf("cursor row not visible in a short view: %q", view)
	}
}

func TestPatternsScreen_QuitPops(t *testing.T) {
	s := testScreen(t)
	_, cmd := s.Update(keyPress('q'))
	if cmd == nil {
		t.Fatal("expected a pop command")
	}
	if nav, ok := cmd().(router.NavigateMsg); !ok || !nav.IsPop() {
		t.Error("expected a pop")
	}
}
