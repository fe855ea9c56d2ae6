// Package theme holds the TUI palette and the few shared styles.
package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Palette for dark terminals, built around Git's orange.
var (
	Primary   = lipgloss.Color("#F05133")
	Secondary = lipgloss.Color("#14B8A6")
	Accent    = lipgloss.Color("#F59E0B")
	Success   = lipgloss.Color("#22C55E")
	Error     = lipgloss.Color("#F43F5E")
	Text      = lipgloss.Color("#F8FAFC")
	TextDim   = lipgloss.Color("#94A3B8")
	BgDark    = lipgloss.Color("#0F172A")
	BgCard    = lipgloss.Color("#1E293B")
	Border    = lipgloss.Color("#334155")
)

// severities runs from Low to Critical.
var severities = [...]color.Color{
	lipgloss.Color("#22C55E"),
	lipgloss.Color("#EAB308"),
	lipgloss.Color("#F97316"),
	lipgloss.Color("#EF4444"),
}

var (
	// Heading titles a section of a diagnosis or pattern.
	Heading = lipgloss.NewStyle().Foreground(Secondary).Bold(true)
	// Command renders a shell command the user can run.
	Command = lipgloss.NewStyle().Foreground(Success)
	// Card frames a block of related details.
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
)

// SeverityColor maps a severity rank (1 = Low .. 4 = Critical) to its
// color. Other ranks render dim.
func SeverityColor(rank int) color.Color {
	if rank < 1 || rank > len(severities) {
		return TextDim
	}
	return severities[rank-1]
}
