// Package history browses the LLM audit log.
package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/gitguy/gitguy/internal/router"
	"github.com/gitguy/gitguy/internal/screen"
	"github.com/gitguy/gitguy/internal/store"
	"github.com/gitguy/gitguy/internal/ui/layout"
	"github.com/gitguy/gitguy/internal/ui/theme"
)

const pageSize = 50

type loadedMsg struct {
	events []store.LLMRequestEvent
	err    error
}

// HistoryScreen lists the most recent LLM requests, newest first. Enter
// opens one in full.
type HistoryScreen struct {
	repo       store.EventRepo
	events     []store.LLMRequestEvent
	loading    bool
	err        error
	failedOnly bool
	cursor     int
	top        int
}

var (
	_ screen.Screen          = (*HistoryScreen)(nil)
	_ screen.KeyHintProvider = (*HistoryScreen)(nil)
)

// New creates the history screen over repo.
func New(repo store.EventRepo) *HistoryScreen {
	return &HistoryScreen{repo: repo, loading: true}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return s.load()
}

func (s *HistoryScreen) load() tea.Cmd {
	repo := s.repo
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		events, err := repo.ListLLMRequests(ctx, store.QueryOpts{Limit: pageSize})
		return loadedMsg{events: events, err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "LLM History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	filter := "Failed only"
	if s.failedOnly {
		filter = "Show all"
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open"},
		{Key: "f", Description: filter},
		{Key: "r", Description: "Reload"},
		{Key: "Esc", Description: "Back"},
	}
}

// visible applies the failure filter.
func (s *HistoryScreen) visible() []store.LLMRequestEvent {
	if !s.failedOnly {
		return s.events
	}
	var failed []store.LLMRequestEvent
	for _, ev := range s.events {
		if !ev.Success {
			failed = append(failed, ev)
		}
	}
	return failed
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.loading = false
		s.events, s.err = msg.events, msg.err
		s.cursor = min(s.cursor, max(len(s.visible())-1, 0))
		return s, nil
	case tea.KeyPressMsg:
		return s, s.handleKey(msg.String())
	}
	return s, nil
}

func (s *HistoryScreen) handleKey(key string) tea.Cmd {
	rows := s.visible()
	switch key {
	case "esc":
		return router.Pop()
	case "up", "k":
		s.cursor = max(s.cursor-1, 0)
	case "down", "j":
		s.cursor = max(min(s.cursor+1, len(rows)-1), 0)
	case "f":
		s.failedOnly = !s.failedOnly
		s.cursor, s.top = 0, 0
	case "r":
		s.loading = true
		return s.load()
	case "enter":
		if s.cursor < len(rows) {
			return router.Push(newRequestScreen(rows[s.cursor]))
		}
	}
	return nil
}

func (s *HistoryScreen) View(width, height int) string {
	notice := func(text string, c lipgloss.Style) string {
		return c.Width(width).Align(lipgloss.Center).Render("\n\n" + text)
	}
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	switch {
	case s.loading && s.events == nil:
		return notice("Loading history...", dim)
	case s.err != nil:
		return notice("Error: "+s.err.Error(), lipgloss.NewStyle().Foreground(theme.Error))
	case len(s.events) == 0:
		return notice("No LLM requests yet. Diagnose an error first!", dim.Italic(true))
	}

	rows := s.visible()
	var b strings.Builder
	b.WriteString(dim.Render(s.summary()) + "\n\n")
	if len(rows) == 0 {
		b.WriteString(dim.Italic(true).Render("No failed requests."))
		return b.String()
	}

	space := max(height-2, 1)
	if s.cursor < s.top {
		s.top = s.cursor
	} else if s.cursor >= s.top+space {
		s.top = s.cursor - space + 1
	}

	for i := s.top; i < len(rows) && i < s.top+space; i++ {
		b.WriteString(renderRow(rows[i], i == s.cursor, width))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *HistoryScreen) summary() string {
	failed := 0
	for _, ev := range s.events {
		if !ev.Success {
			failed++
		}
	}
	line := fmt.Sprintf("%d most recent requests · %d failed", len(s.events), failed)
	if s.failedOnly {
		line += " · showing failures"
	}
	return line
}

func renderRow(ev store.LLMRequestEvent, selected bool, width int) string {
	mark := lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
	if !ev.Success {
		mark = lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
	}

	cursor := "  "
	style := lipgloss.NewStyle().Foreground(theme.Text)
	if selected {
		cursor = "> "
		style = style.Foreground(theme.Primary).Bold(true)
	}

	text := fmt.Sprintf("%s%s  %-32s %-16s %5d→%-5d tok %7s ",
		cursor,
		ev.Timestamp.Local().Format("Jan 02 15:04"),
		truncate(ev.Provider+"/"+ev.Model, 32),
		truncate(ev.Purpose, 16),
		ev.InputTokens, ev.OutputTokens,
		latency(ev.LatencyMs),
	)
	return style.Render(truncate(text, width-2)) + mark
}

// latency formats milliseconds, switching to seconds from one second up.
func latency(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	return fmt.Sprintf("%.1fs", float64(ms)/1000)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:max(n-1, 0)]) + "…"
}
