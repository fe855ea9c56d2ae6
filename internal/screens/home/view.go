package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/gitguy/gitguy/internal/ui/components"
	"github.com/gitguy/gitguy/internal/ui/theme"
)

const banner = `       _ _                     
  __ _(_) |_ __ _ _  _ _  _ 
 / _' | |  _/ _' | || | || |
 \__, |_|\__\__, |\_,_|\_, |
 |___/      |___/      |__/ `

const bannerCompact = "g i t g u y"

// buttonWidth is the fixed width of a menu button.
const buttonWidth = 24

// contentWidth is the shared inner width every section aligns to.
func contentWidth(frameWidth int) int {
	return min(max(frameWidth-6, 20), 64)
}

func centered(cw int, s string) string {
	return lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(s)
}

func renderTitle(cw int, compact bool) string {
	text := banner
	if compact {
		text = bannerCompact
	}
	return centered(cw, lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(text))
}

// status is what the bar under the title reports.
type status struct {
	model    string
	patterns int
	version  string
	today    *usage
}

func renderStatus(s status, cw int, compact bool) string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	modelStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	dbStyle := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
	usageStyle := lipgloss.NewStyle().Foreground(theme.Text)

	model := dim.Render("⚡ OFFLINE")
	if s.model != "" {
		model = modelStyle.Render("⚡ " + s.model)
	}

	parts := []string{model}
	if compact {
		parts = append(parts, dbStyle.Render(fmt.Sprintf("◆%d", s.patterns)))
		if s.today != nil {
			parts = append(parts, usageStyle.Render(fmt.Sprintf("▲%d", s.today.calls)))
		}
	} else {
		parts = append(parts, dbStyle.Render(fmt.Sprintf("◆ %d patterns %s", s.patterns, s.version)))
		if s.today != nil {
			line := fmt.Sprintf("▲ %d today", s.today.calls)
			if s.today.failed > 0 {
				line += fmt.Sprintf(", %d failed", s.today.failed)
			}
			parts = append(parts, usageStyle.Render(line))
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw-2).
		Align(lipgloss.Center).
		Render(strings.Join(parts, "  "))
}

func renderNotice(text string, cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Accent).
		Width(cw).
		Align(lipgloss.Center).
		Render(text)
}

// renderMenu draws bordered buttons, or plain lines when compact.
func renderMenu(m components.Menu, cw int, compact bool) string {
	hot := lipgloss.NewStyle().Foreground(theme.TextDim)
	lines := make([]string, 0, len(m.Items))
	for i, item := range m.Items {
		label := item.Label
		if item.Hotkey != "" {
			label += " " + hot.Render(item.Hotkey)
		}

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case item.Disabled:
			style = style.Foreground(theme.TextDim).Strikethrough(true)
			label = item.Label
		case i == m.Selected:
			style = style.Foreground(theme.BgDark).Background(theme.Primary).Bold(true)
			label = "▸ " + item.Label
		}

		if compact {
			lines = append(lines, style.Render(" "+label+" "))
			continue
		}
		border := theme.Border
		if i == m.Selected && !item.Disabled {
			border = theme.Primary
		}
		lines = append(lines, style.
			Width(buttonWidth).
			Align(lipgloss.Center).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Render(label))
	}
	return centered(cw, strings.Join(lines, "\n"))
}

// renderCabinet wraps the menu in a double border and centers it.
func renderCabinet(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width-2).
		Height(height-2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}
