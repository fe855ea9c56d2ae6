// Package app is the root Bubble Tea model of the interactive UI.
package app

import (
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/gitguy/gitguy/internal/diagnosis"
	"github.com/gitguy/gitguy/internal/router"
	"github.com/gitguy/gitguy/internal/screen"
	"github.com/gitguy/gitguy/internal/screens/home"
	"github.com/gitguy/gitguy/internal/screens/welcome"
	"github.com/gitguy/gitguy/internal/store"
	"github.com/gitguy/gitguy/internal/ui/layout"
)

// Deps are the services the interactive UI runs on.
type Deps struct {
	Service *diagnosis.Service
	// Events is the LLM audit log; nil when the store could not be opened.
	Events store.EventRepo
	// Model is "provider/model", or empty when running offline.
	Model string
	// SkipIntro starts on the home menu instead of the welcome animation.
	SkipIntro bool
}

// AppModel owns the screen stack and draws the frame around it.
type AppModel struct {
	router *router.Router
	status string
	width  int
	height int
}

var quitHint = layout.KeyHint{Key: "Ctrl+C", Description: "Quit"}

func newAppModel(deps Deps) AppModel {
	var root screen.Screen = home.New(home.Options{
		Service: deps.Service,
		Events:  deps.Events,
		Model:   deps.Model,
	})
	if !deps.SkipIntro {
		menu := root
		root = welcome.New(func() screen.Screen { return menu })
	}

	return AppModel{
		router: router.New(root),
		status: statusLine(deps),
	}
}

func statusLine(deps Deps) string {
	model := deps.Model
	if model == "" {
		model = "offline"
	}
	return fmt.Sprintf("%s · patterns %s", model, deps.Service.Matcher().Database().Version())
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyPressMsg:
		if cmd, handled := m.globalKey(msg.String()); handled {
			return m, cmd
		}
	}
	return m, m.router.Update(msg)
}

// globalKey handles the keys that work on every screen. Screens that
// are capturing input see Esc themselves.
func (m AppModel) globalKey(key string) (tea.Cmd, bool) {
	switch key {
	case "ctrl+c":
		return tea.Quit, true
	case "ctrl+g":
		return router.Home(), m.router.Depth() > 1
	case "esc":
		if c, ok := m.router.Active().(screen.InputCapturer); ok && c.CapturingInput() {
			return nil, false
		}
		return router.Pop(), true
	}
	return nil, false
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}

	frame := layout.Frame{
		Trail:  m.router.Trail(),
		Status: m.status,
		Hints:  m.footerHints(),
	}
	v.SetContent(frame.Render(m.width, m.height, m.router.View))
	return v
}

// footerHints prefers the active screen's own hints. Quit is always last.
func (m AppModel) footerHints() []layout.KeyHint {
	var hints []layout.KeyHint
	if p, ok := m.router.Active().(screen.KeyHintProvider); ok {
		hints = append(hints, p.KeyHints()...)
	}
	if len(hints) == 0 {
		if m.router.Depth() > 1 {
			hints = []layout.KeyHint{{Key: "Esc", Description: "Back"}}
		} else {
			hints = []layout.KeyHint{
				{Key: "↑↓", Description: "Navigate"},
				{Key: "Enter", Description: "Select"},
			}
		}
	}
	if m.router.Depth() > 2 {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+G", Description: "Home"})
	}
	return append(hints, quitHint)
}

// Run starts the interactive UI and blocks until it exits.
func Run(deps Deps) error {
	if _, err := tea.NewProgram(newAppModel(deps)).Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	return nil
}
