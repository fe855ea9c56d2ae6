package history

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/gitguy/gitguy/internal/router"
	"github.com/gitguy/gitguy/internal/screen"
	"github.com/gitguy/gitguy/internal/store"
	"github.com/gitguy/gitguy/internal/ui/layout"
	"github.com/gitguy/gitguy/internal/ui/theme"
)

// requestScreen shows one audit log entry with its full prompt and
// answer, scrolled line by line.
type requestScreen struct {
	ev     store.LLMRequestEvent
	offset int
	lines  []string
	width  int
}

var _ screen.Screen = (*requestScreen)(nil)

func newRequestScreen(ev store.LLMRequestEvent) *requestScreen {
	return &requestScreen{ev: ev}
}

func (r *requestScreen) Init() tea.Cmd { return nil }

func (r *requestScreen) Title() string {
	return fmt.Sprintf("#%d", r.ev.Sequence)
}

func (r *requestScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "PgUp/PgDn", Description: "Page"},
		{Key: "Esc", Description: "Back"},
	}
}

func (r *requestScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return r, nil
	}
	switch key.String() {
	case "esc", "q":
		return r, router.Pop()
	case "up", "k":
		r.offset--
	case "down", "j":
		r.offset++
	case "pgup":
		r.offset -= 10
	case "pgdown", "space":
		r.offset += 10
	case "home", "g":
		r.offset = 0
	}
	r.offset = max(r.offset, 0)
	return r, nil
}

// body lays the entry out for width, caching until the width changes.
func (r *requestScreen) body(width int) []string {
	if r.lines != nil && r.width == width {
		return r.lines
	}
	head := theme.Heading
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	wrap := lipgloss.NewStyle().Width(max(width-4, 20))

	ev := r.ev
	status := lipgloss.NewStyle().Foreground(theme.Success).Render("succeeded")
	if !ev.Success {
		status = lipgloss.NewStyle().Foreground(theme.Error).Render("failed")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", head.Render(ev.Provider+"/"+ev.Model), status)
	fmt.Fprintln(&b, dim.Render(fmt.Sprintf("%s · %s · request %s",
		ev.Timestamp.Local().Format("2006-01-02 15:04:05"), ev.Purpose, ev.RequestID)))
	fmt.Fprintln(&b, dim.Render(fmt.Sprintf("%d input + %d output tokens · %s",
		ev.InputTokens, ev.OutputTokens, latency(ev.LatencyMs))))

	section := func(title, text string) {
		if strings.TrimSpace(text) == "" {
			return
		}
		fmt.Fprintf(&b, "\n%s\n%s\n", head.Render(title), wrap.Render(text))
	}
	section("Error", ev.ErrorMessage)
	section("Request", ev.RequestBody)
	section("Response", ev.ResponseBody)

	r.lines = strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	r.width = width
	return r.lines
}

func (r *requestScreen) View(width, height int) string {
	lines := r.body(width)
	r.offset = min(r.offset, max(len(lines)-height, 0))
	end := min(r.offset+height, len(lines))
	return lipgloss.NewStyle().Padding(0, 2).Render(strings.Join(lines[r.offset:end], "\n"))
}
