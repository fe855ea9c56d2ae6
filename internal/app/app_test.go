package app

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/gitguy/gitguy/internal/diagnosis"
	"github.com/gitguy/gitguy/internal/router"
	"github.com/gitguy/gitguy/internal/screens/home"
	"github.com/gitguy/gitguy/internal/screens/troubleshoot"
	"github.com/gitguy/gitguy/internal/screens/welcome"
)

func testDeps() Deps {
	return Deps{Service: diagnosis.NewService(nil, nil), SkipIntro: true}
}

func TestNewAppModel_StartsOnWelcome(t *testing.T) {
	deps := testDeps()
	deps.SkipIntro = false
	m := newAppModel(deps)
	if _, ok := m.router.Active().(*welcome.WelcomeScreen); !ok {
		t.Errorf("active = %T, want welcome screen", m.router.Active())
	}
}

func TestNewAppModel_SkipIntro(t *testing.T) {
	m := newAppModel(testDeps())
	if _, ok := m.router.Active().(*home.HomeScreen); !ok {
		t.Errorf("active = %T, want home screen", m.router.Active())
	}
}

func TestStatusLine(t *testing.T) {
	deps := testDeps()
	if got := statusLine(deps); !strings.HasPrefix(got, "offline · patterns v") {
		t.Errorf("statusLine = %q", got)
	}
	deps.Model = "anthropic/claude-haiku"
	if got := statusLine(deps); !strings.HasPrefix(got, "anthropic/claude-haiku") {
		t.Errorf("statusLine = %q", got)
	}
}

func TestAppModel_EscPopsScreen(t *testing.T) {
	m := newAppModel(testDeps())
	m.router.Update(router.Push(troubleshoot.New(diagnosis.NewService(nil, nil)))())

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("expected a pop command")
	}
	if nav, ok := cmd().(router.NavigateMsg); !ok || !nav.IsPop() {
		t.Error("expected a pop")
	}
}

func TestAppModel_EscForwardedWhileCapturing(t *testing.T) {
	m := newAppModel(testDeps())
	ts := troubleshoot.New(diagnosis.NewService(nil, nil))
	m.router.Update(router.Push(ts)())
	for _, r := range "fatal" {
		m.router.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}

	if !ts.CapturingInput() {
		t.Fatal("expected the editor to hold typed text")
	}
	m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.router.Depth() != 2 {
		t.Errorf("depth = %d, want the troubleshoot screen to stay", m.router.Depth())
	}
	if hints := ts.KeyHints(); len(hints) == 0 || hints[0].Key != "Y" {
		t.Errorf("expected discard confirmation hints, got %+v", hints)
	}
}

func TestAppModel_FooterUsesScreenHints(t *testing.T) {
	m := newAppModel(testDeps())
	m.router.Update(router.Push(troubleshoot.New(diagnosis.NewService(nil, nil)))())

	hints := m.footerHints()
	if hints[0].Key != "Ctrl+S" {
		t.Errorf("first hint = %+v, want the troubleshoot hints", hints[0])
	}
	if hints[len(hints)-1].Key != "Ctrl+C" {
		t.Error("expected Ctrl+C to be appended")
	}
}

func TestAppModel_View(t *testing.T) {
	m := newAppModel(testDeps())
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	v := updated.(AppModel).View()
	if !v.AltScreen {
		t.Error("expected alt screen")
	}
}

func TestAppModel_CtrlGReturnsHome(t *testing.T) {
	m := newAppModel(testDeps())
	if _, cmd := m.Update(tea.KeyPressMsg{Code: 'g', Mod: tea.ModCtrl}); cmd != nil {
		t.Error("ctrl+g on the root screen should do nothing")
	}

	m.router.Update(router.Push(troubleshoot.New(diagnosis.NewService(nil, nil)))())
	m.router.Update(router.Push(troubleshoot.New(diagnosis.NewService(nil, nil)))())
	if hints := m.footerHints(); hints[len(hints)-2].Key != "Ctrl+G" {
		t.Errorf("expected a home hint on deep screens, got %+v", hints)
	}

	_, cmd := m.Update(tea.KeyPressMsg{Code: 'g', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Fatal("expected a home command")
	}
	m.router.Update(cmd())
	if m.router.Depth() != 1 {
		t.Errorf("depth = %d, want 1", m.router.Depth())
	}
	if _, ok := m.router.Active().(*home.HomeScreen); !ok {
		t.Errorf("active = %T, want home screen", m.router.Active())
	}
}

func TestAppModel_ViewShowsTrail(t *testing.T) {
	m := newAppModel(testDeps())
	m.router.Update(router.Push(troubleshoot.New(diagnosis.NewService(nil, nil)))())
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	v := updated.(AppModel).View()
	if !strings.Contains(v.Content, "Home › Troubleshoot") {
		t.Error("expected the navigation trail in the header")
	}
}
