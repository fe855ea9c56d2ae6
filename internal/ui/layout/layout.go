// Package layout draws the chrome around the active screen: a header
// with the navigation trail and a footer with key hints.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/gitguy/gitguy/internal/ui/theme"
)

// Smallest terminal the UI will draw into.
const (
	MinWidth  = 72
	MinHeight = 20
)

// Below these sizes screens switch to their compact rendering.
const (
	compactWidth  = 100
	compactHeight = 30
)

const (
	trailSep = " › "
	hintSep  = "   "
)

// KeyHint is one "key description" pair in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// IsCompactWidth reports whether width calls for compact rendering.
func IsCompactWidth(width int) bool { return width < compactWidth }

// IsCompactHeight reports whether height calls for compact rendering.
func IsCompactHeight(height int) bool { return height < compactHeight }

// Frame is what the app draws around the active screen.
type Frame struct {
	// Trail holds screen titles from the root to the active screen.
	Trail  []string
	Status string
	Hints  []KeyHint
}

// Render draws the frame at the given size. body receives the space
// left between header and footer.
func (f Frame) Render(width, height int, body func(w, h int) string) string {
	if width < MinWidth || height < MinHeight {
		return tooSmall(width, height)
	}

	header := f.header(width)
	footer := f.footer(width)
	bodyHeight := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)

	content := lipgloss.NewStyle().
		Width(width).
		Height(bodyHeight).
		MaxHeight(bodyHeight).
		Render(body(width, bodyHeight))

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func tooSmall(width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.Text).
		Render(fmt.Sprintf("gitguy needs at least %d×%d\n(now %d×%d)", MinWidth, MinHeight, width, height))
}

func (f Frame) header(width int) string {
	inner := width - 4
	brand := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("gitguy")
	status := lipgloss.NewStyle().Foreground(theme.Accent).Render(f.Status)

	room := inner - lipgloss.Width(brand) - lipgloss.Width(status) - 4
	trail := lipgloss.NewStyle().Foreground(theme.Text).Render(fitTrail(f.Trail, room))

	gap := max(inner-lipgloss.Width(brand)-lipgloss.Width(trail)-lipgloss.Width(status)-2, 1)
	line := brand + "  " + trail + strings.Repeat(" ", gap) + status

	return bar().Render(line)
}

func (f Frame) footer(width int) string {
	keyStyle := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	parts := make([]string, 0, len(f.Hints))
	for _, h := range fitHints(f.Hints, width-4) {
		parts = append(parts, keyStyle.Render(h.Key)+" "+descStyle.Render(h.Description))
	}
	line := strings.Join(parts, hintSep)
	return bar().Render(line + strings.Repeat(" ", max(width-4-lipgloss.Width(line), 0)))
}

func bar() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)
}

// fitTrail joins titles with separators, dropping from the root side
// until the result fits in room cells. An elided prefix shows as "…".
func fitTrail(trail []string, room int) string {
	for i := range trail {
		s := strings.Join(trail[i:], trailSep)
		if i > 0 {
			s = "…" + trailSep + s
		}
		if lipgloss.Width(s) <= room {
			return s
		}
	}
	if len(trail) == 0 || room <= 0 {
		return ""
	}
	last := []rune(trail[len(trail)-1])
	if len(last) > room {
		last = append(last[:max(room-1, 0)], '…')
	}
	return string(last)
}

// fitHints keeps hints in order while they fit in room cells. The last
// hint (quit) is always kept.
func fitHints(hints []KeyHint, room int) []KeyHint {
	if len(hints) == 0 {
		return nil
	}
	width := func(h KeyHint) int {
		return lipgloss.Width(h.Key) + 1 + lipgloss.Width(h.Description)
	}

	last := hints[len(hints)-1]
	used := width(last)
	var kept []KeyHint
	for _, h := range hints[:len(hints)-1] {
		w := width(h) + len(hintSep)
		if used+w > room {
			break
		}
		used += w
		kept = append(kept, h)
	}
	return append(kept, last)
}
