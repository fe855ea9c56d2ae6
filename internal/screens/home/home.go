// Package home is the main menu of the TUI.
package home

import (
	"context"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/gitguy/gitguy/internal/diagnosis"
	"github.com/gitguy/gitguy/internal/router"
	"github.com/gitguy/gitguy/internal/screen"
	"github.com/gitguy/gitguy/internal/screens/history"
	"github.com/gitguy/gitguy/internal/screens/patterns"
	"github.com/gitguy/gitguy/internal/screens/troubleshoot"
	"github.com/gitguy/gitguy/internal/store"
	"github.com/gitguy/gitguy/internal/ui/components"
	"github.com/gitguy/gitguy/internal/ui/layout"
)

// Options are the dependencies shared by the screens reachable from home.
type Options struct {
	Service *diagnosis.Service
	// Events is the LLM audit log. Nil disables the history entry.
	Events store.EventRepo
	// Model names the configured model; empty means offline.
	Model string
}

// usage summarizes today's LLM calls.
type usage struct {
	calls  int
	failed int
	tokens int
}

type usageMsg struct {
	usage usage
	err   error
}

// HomeScreen is the main menu. It shows the model in use, the pattern
// database and today's LLM usage, refreshed whenever the menu comes back
// into view.
type HomeScreen struct {
	opts  Options
	menu  components.Menu
	today *usage
	now   func() time.Time
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates the home menu.
func New(opts Options) *HomeScreen {
	h := &HomeScreen{opts: opts, now: time.Now}
	h.menu = components.NewMenu([]components.MenuItem{
		{Label: "TROUBLESHOOT", Hotkey: "t", Action: func() tea.Cmd {
			return router.Push(troubleshoot.New(opts.Service))
		}},
		{Label: "PATTERN LIBRARY", Hotkey: "p", Action: func() tea.Cmd {
			return router.Push(patterns.New(opts.Service.Matcher()))
		}},
		{Label: "LLM HISTORY", Hotkey: "h", Disabled: opts.Events == nil, Action: func() tea.Cmd {
			return router.Push(history.New(opts.Events))
		}},
		{Label: "QUIT", Hotkey: "q", Action: func() tea.Cmd {
			return tea.Quit
		}},
	})
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.loadUsage()
}

// loadUsage aggregates today's audit log across providers.
func (h *HomeScreen) loadUsage() tea.Cmd {
	events := h.opts.Events
	if events == nil {
		return nil
	}
	y, m, d := h.now().Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, h.now().Location())

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		stats, err := events.UsageStats(ctx, store.QueryOpts{From: midnight})
		if err != nil {
			return usageMsg{err: err}
		}
		var u usage
		for _, st := range stats {
			u.calls += st.Requests
			u.failed += st.Failures
			u.tokens += st.InputTokens + st.OutputTokens
		}
		return usageMsg{usage: u}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case usageMsg:
		// A failed refresh keeps the last figures.
		if msg.err == nil {
			h.today = &msg.usage
		}
		return h, nil
	case screen.ResumedMsg:
		return h, h.loadUsage()
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	// height excludes the header and footer rows.
	compact := layout.IsCompactHeight(height+6) || layout.IsCompactWidth(width)
	cw := contentWidth(width)
	db := h.opts.Service.Matcher().Database()

	sections := []string{
		renderTitle(cw, compact),
		renderStatus(status{
			model:    h.opts.Model,
			patterns: db.Len(),
			version:  db.Version(),
			today:    h.today,
		}, cw, compact),
	}
	if notice := h.notice(); notice != "" {
		sections = append(sections, renderNotice(notice, cw))
	}
	sections = append(sections, renderMenu(h.menu, cw, compact))

	return renderCabinet(strings.Join(sections, "\n\n"), width, height)
}

// notice explains reduced functionality, if any.
func (h *HomeScreen) notice() string {
	switch {
	case h.opts.Model == "" && h.opts.Events == nil:
		return "⚠ Offline, audit log unavailable: diagnoses come from the pattern database"
	case h.opts.Model == "":
		return "⚠ No LLM configured: diagnoses come from the pattern database (see gitguy --help)"
	case h.opts.Events == nil:
		return "⚠ Audit log unavailable: check store.path in your config"
	}
	return ""
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "t/p/h/q", Description: "Jump"},
	}
}

func (h *HomeScreen) Title() string {
	return "Home"
}
