// Package welcome is the splash shown when the TUI starts.
package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/gitguy/gitguy/internal/router"
	"github.com/gitguy/gitguy/internal/screen"
	"github.com/gitguy/gitguy/internal/ui/theme"
)

const frameRate = 100 * time.Millisecond

// Frame numbers of the animation: the branch graph grows one commit per
// frame, then the banner appears, then the splash hands over.
const (
	bannerFrame = 9
	lastFrame   = 20
)

const bannerArt = `  ██████╗ ██╗████████╗ ██████╗ ██╗   ██╗██╗   ██╗
 ██╔════╝ ██║╚══██╔══╝██╔════╝ ██║   ██║╚██╗ ██╔╝
 ██║  ███╗██║   ██║   ██║  ███╗██║   ██║ ╚████╔╝
 ██║   ██║██║   ██║   ██║   ██║██║   ██║  ╚██╔╝
 ╚██████╔╝██║   ██║   ╚██████╔╝╚██████╔╝   ██║
  ╚═════╝ ╚═╝   ╚═╝    ╚═════╝  ╚═════╝    ╚═╝`

const bannerNarrow = "G I T G U Y"

const tagline = "Paste a Git error. Get a fix."

type frameMsg struct{}

// WelcomeScreen animates a growing branch graph and the banner, then
// replaces itself with the screen built by next. Any key skips ahead.
type WelcomeScreen struct {
	next  func() screen.Screen
	frame int
	done  bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates the splash. next is called once, when it ends.
func New(next func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{next: next}
}

func nextFrame() tea.Cmd {
	return tea.Tick(frameRate, func(time.Time) tea.Msg { return frameMsg{} })
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return nextFrame()
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case frameMsg:
		if w.done {
			return w, nil
		}
		w.frame++
		if w.frame >= lastFrame {
			return w, w.finish()
		}
		return w, nextFrame()
	case tea.KeyPressMsg:
		return w, w.finish()
	}
	return w, nil
}

func (w *WelcomeScreen) finish() tea.Cmd {
	if w.done {
		return nil
	}
	w.done = true
	return router.Replace(w.next())
}

// graph draws the first n commits of a main branch with a feature
// branch forking off and merging back.
func graph(n int) string {
	main := []string{"●", "───●", "───●", "───────●"}
	feature := []string{"╲", "●───●", "───╱"}

	var top, bottom strings.Builder
	top.WriteString("  ")
	bottom.WriteString("       ")
	for i := 0; i < n && i < len(main)+len(feature); i++ {
		switch {
		case i < 3:
			top.WriteString(main[i])
		case i < 6:
			bottom.WriteString(feature[i-3])
		default:
			top.WriteString(main[3])
		}
	}
	if n >= 7 {
		top.WriteString("  main")
		bottom.WriteString("  feature")
	}
	return strings.TrimRight(top.String()+"\n"+bottom.String(), " \n")
}

func banner(width int) string {
	style := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	if width < lipgloss.Width(bannerArt)+2 {
		return style.Render(bannerNarrow)
	}
	return style.Render(bannerArt)
}

func (w *WelcomeScreen) View(width, height int) string {
	parts := []string{
		lipgloss.NewStyle().Foreground(theme.Secondary).Render(graph(w.frame + 1)),
	}
	if w.frame >= bannerFrame {
		parts = append(parts,
			"",
			banner(width),
			"",
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(tagline),
			"",
			lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render("press any key"),
		)
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(parts, "\n"))
}

// Title is empty so the header shows no trail during the splash.
func (w *WelcomeScreen) Title() string {
	return ""
}
