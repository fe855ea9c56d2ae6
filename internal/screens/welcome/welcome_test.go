package welcome

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/gitguy/gitguy/internal/router"
	"github.com/gitguy/gitguy/internal/screen"
)

type menuStub struct{}

func (s *menuStub) Init() tea.Cmd                          { return nil }
func (s *menuStub) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *menuStub) View(int, int) string                   { return "menu" }
func (s *menuStub) Title() string                          { return "Home" }

func newCounted() (*WelcomeScreen, *int) {
	built := 0
	return New(func() screen.Screen {
		built++
		return &menuStub{}
	}), &built
}

func advance(w *WelcomeScreen, frames int) tea.Cmd {
	var cmd tea.Cmd
	for range frames {
		_, cmd = w.Update(frameMsg{})
	}
	return cmd
}

func expectReplace(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	nav, ok := cmd().(router.NavigateMsg)
	if !ok || nav.Target() == nil {
		t.Fatalf("expected a replace, got %T", cmd())
	}
	if _, ok := nav.Target().(*menuStub); !ok {
		t.Errorf("target = %T, want the menu", nav.Target())
	}
}

func TestGraphGrows(t *testing.T) {
	tests := []struct {
		n        int
		contains []string
		absent   []string
	}{
		{1, []string{"●"}, []string{"───", "╲", "main"}},
		{3, []string{"●───●───●"}, []string{"╲"}},
		{5, []string{"╲", "●───●"}, []string{"main"}},
		{7, []string{"───╱", "main", "feature"}, nil},
		{50, []string{"main", "feature"}, nil},
	}
	for _, tt := range tests {
		g := graph(tt.n)
		for _, s := range tt.contains {
			if !strings.Contains(g, s) {
				t.Errorf("graph(%d) missing %q:\n%s", tt.n, s, g)
			}
		}
		for _, s := range tt.absent {
			if strings.Contains(g, s) {
				t.Errorf("graph(%d) should not contain %q yet:\n%s", tt.n, s, g)
			}
		}
	}
}

func TestBannerAppearsLate(t *testing.T) {
	w, _ := newCounted()
	if strings.Contains(w.View(100, 30), tagline) {
		t.Error("tagline should not show on the first frame")
	}
	advance(w, bannerFrame)
	if !strings.Contains(w.View(100, 30), tagline) {
		t.Error("tagline should show once the banner frame is reached")
	}
}

func TestKeySkipsAhead(t *testing.T) {
	w, built := newCounted()
	advance(w, 2)

	_, cmd := w.Update(tea.KeyPressMsg{Code: ' ', Text: " "})
	expectReplace(t, cmd)

	if _, cmd := w.Update(tea.KeyPressMsg{Code: 'x', Text: "x"}); cmd != nil {
		t.Error("a second key should do nothing")
	}
	if *built != 1 {
		t.Errorf("menu built %d times, want 1", *built)
	}
}

func TestFinishesOnItsOwn(t *testing.T) {
	w, built := newCounted()
	if w.Init() == nil {
		t.Fatal("expected the first frame to be scheduled")
	}

	if cmd := advance(w, lastFrame-1); cmd == nil {
		t.Fatal("expected another frame before the end")
	}
	expectReplace(t, advance(w, 1))

	if cmd := advance(w, 1); cmd != nil {
		t.Error("frames after the end should not schedule more")
	}
	if *built != 1 {
		t.Errorf("menu built %d times, want 1", *built)
	}
}

func TestNarrowBanner(t *testing.T) {
	if !strings.Contains(banner(40), bannerNarrow) {
		t.Error("narrow terminals should get the plain banner")
	}
	if strings.Contains(banner(120), bannerNarrow) {
		t.Error("wide terminals should get the block banner")
	}
}
