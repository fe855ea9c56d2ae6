package troubleshoot

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/gitguy/gitguy/internal/diagnosis"
	"github.com/gitguy/gitguy/internal/ui/theme"
)

// renderEditor renders the paste area.
func (s *TroubleshootScreen) renderEditor(width, height int) string {
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render("  What went wrong?"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render("  Paste the full output of the failing git or gh command."))
	b.WriteString("\n\n")

	// Leave room for the title lines and the notice line.
	s.editor.SetSize(width-4, height-6)
	b.WriteString(lipgloss.NewStyle().PaddingLeft(2).Render(s.editor.View()))
	b.WriteString("\n")

	switch {
	case s.errMsg != "":
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render("  " + s.errMsg))
	case s.notice != "":
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Render("  " + s.notice))
	}

	return b.String()
}

// renderRunning renders the spinner while the diagnosis runs.
func (s *TroubleshootScreen) renderRunning(width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.Text).
		Render(s.spinner.View() + " Diagnosing...")
}

// renderResult renders the diagnosis in a scrollable viewport.
func (s *TroubleshootScreen) renderResult(width, height int) string {
	footer := lipgloss.NewStyle().Foreground(theme.TextDim).
		Render(fmt.Sprintf("  %s in %s", sourceLabel(s.record), s.elapsed.Round(10*time.Millisecond)))
	if s.notice != "" {
		footer = lipgloss.NewStyle().Foreground(theme.Accent).Render("  " + s.notice)
	}

	s.viewport.SetWidth(width)
	s.viewport.SetHeight(height - 1)
	s.viewport.SetContent(renderRecord(s.record, width))

	return s.viewport.View() + "\n" + footer
}

func sourceLabel(rec *diagnosis.Record) string {
	if rec.Source == diagnosis.SourceModel {
		return "Diagnosed by the model"
	}
	if rec.PatternID != "" {
		return "Matched pattern " + rec.PatternID
	}
	return "No known pattern matched"
}

// renderRecord lays out a diagnosis record for the terminal.
func renderRecord(rec *diagnosis.Record, width int) string {
	contentWidth := width - 6
	if contentWidth > 90 {
		contentWidth = 90
	}
	if contentWidth < 20 {
		contentWidth = 20
	}

	var b strings.Builder

	sevStyle := lipgloss.NewStyle().
		Foreground(theme.BgDark).
		Background(theme.SeverityColor(int(rec.Severity))).
		Bold(true).
		Padding(0, 1)
	b.WriteString("  " + sevStyle.Render(strings.ToUpper(rec.Severity.String())) + " " +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(string(rec.Category)))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(contentWidth).
		PaddingLeft(2).
		Foreground(theme.Text).
		Bold(true).
		Render(rec.Summary))
	b.WriteString("\n\n")

	list := func(title string, items []string, numbered bool) {
		if len(items) == 0 {
			return
		}
		b.WriteString(theme.Heading.Render("  " + title))
		b.WriteString("\n")
		for i, item := range items {
			marker := "•"
			if numbered {
				marker = fmt.Sprintf("%d.", i+1)
			}
			b.WriteString(lipgloss.NewStyle().
				Width(contentWidth).
				PaddingLeft(4).
				Foreground(theme.Text).
				Render(marker + " " + item))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	list("Likely causes", rec.Causes, false)
	list("How to fix", rec.Solutions, true)

	if len(rec.Commands) > 0 {
		b.WriteString(theme.Heading.Render("  Commands"))
		b.WriteString("\n")
		for _, c := range rec.Commands {
			b.WriteString(theme.Command.Render("    $ " + c))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if rec.Prevention != "" {
		list("Prevention", []string{rec.Prevention}, false)
	}
	list("References", rec.References, false)

	return b.String()
}

// renderDiscardConfirm asks before throwing away pasted text.
func renderDiscardConfirm(width, height int) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Accent).
		Padding(1, 3).
		Render(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).
			Render("Discard the pasted error?") + "\n\n" +
			lipgloss.NewStyle().Foreground(theme.TextDim).Render("[Y] Discard   [N] Keep editing"))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
