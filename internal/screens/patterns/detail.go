package patterns

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/gitguy/gitguy/internal/diagnosis"
	"github.com/gitguy/gitguy/internal/screen"
	"github.com/gitguy/gitguy/internal/ui/layout"
	"github.com/gitguy/gitguy/internal/ui/theme"
)

// PatternDetailScreen shows every field of a single pattern.
type PatternDetailScreen struct {
	entry diagnosis.PatternEntry
}

var _ screen.Screen = (*PatternDetailScreen)(nil)
var _ screen.KeyHintProvider = (*PatternDetailScreen)(nil)

func newPatternDetail(e diagnosis.PatternEntry) *PatternDetailScreen {
	return &PatternDetailScreen{entry: e}
}

func (d *PatternDetailScreen) Init() tea.Cmd { return nil }
func (d *PatternDetailScreen) Title() string { return d.entry.ID }

func (d *PatternDetailScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	return d, nil
}

func (d *PatternDetailScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Esc", Description: "Back"},
	}
}

func (d *PatternDetailScreen) View(width, height int) string {
	e := d.entry
	contentWidth := width - 8
	if contentWidth > 76 {
		contentWidth = 76
	}

	var b strings.Builder

	sevStyle := lipgloss.NewStyle().Foreground(theme.SeverityColor(int(e.Severity))).Bold(true)
	b.WriteString(lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true).
		Render("  " + e.Summary))
	b.WriteString("\n")
	b.WriteString("  " + sevStyle.Render(strings.ToUpper(e.Severity.String())) +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render("  "+string(e.Category)))
	b.WriteString("\n\n")

	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)
	valStyle := lipgloss.NewStyle().Foreground(theme.Text)

	kind := "substring"
	if e.Regex {
		kind = "regex"
	}
	b.WriteString(dimStyle.Render("  ID:         ") + valStyle.Render(e.ID) + "\n")
	b.WriteString(dimStyle.Render("  Signature:  ") + valStyle.Render(e.Signature) + dimStyle.Render(" ("+kind+")") + "\n")
	b.WriteString("\n")

	section := func(title string, items []string, numbered bool) {
		if len(items) == 0 {
			return
		}
		b.WriteString(lipgloss.NewStyle().
			Foreground(theme.Secondary).
			Bold(true).
			Render("  " + title))
		b.WriteString("\n")
		for i, item := range items {
			marker := "•"
			if numbered {
				marker = fmt.Sprintf("%d.", i+1)
			}
			b.WriteString(lipgloss.NewStyle().
				Width(contentWidth).
				Foreground(theme.Text).
				PaddingLeft(2).
				Render(marker + " " + item))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	section("Likely Causes", e.Causes, false)
	section("How To Fix", e.Solutions, true)

	if len(e.Commands) > 0 {
		b.WriteString(lipgloss.NewStyle().
			Foreground(theme.Secondary).
			Bold(true).
			Render("  Commands"))
		b.WriteString("\n")
		for _, c := range e.Commands {
			b.WriteString(theme.Command.Render("  $ " + c))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if e.Prevention != "" {
		section("Prevention", []string{e.Prevention}, false)
	}
	section("References", e.References, false)

	return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Top,
		"\n"+b.String())
}
