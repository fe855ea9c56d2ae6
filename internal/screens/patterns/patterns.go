// Package patterns implements the pattern library browser.
package patterns

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/sahilm/fuzzy"

	"github.com/gitguy/gitguy/internal/diagnosis"
	"github.com/gitguy/gitguy/internal/router"
	"github.com/gitguy/gitguy/internal/screen"
	"github.com/gitguy/gitguy/internal/ui/components"
	"github.com/gitguy/gitguy/internal/ui/layout"
	"github.com/gitguy/gitguy/internal/ui/theme"
)

type rowKind int

const (
	rowCategoryHeader rowKind = iota
	rowPattern
)

type row struct {
	kind     rowKind
	category diagnosis.Category
	entry    *diagnosis.PatternEntry
}

// PatternsScreen lists the pattern database grouped by category.
type PatternsScreen struct {
	entries      []diagnosis.PatternEntry
	rows         []row
	cursor       int
	scrollOffset int
	filter       components.FilterInput
}

var _ screen.Screen = (*PatternsScreen)(nil)
var _ screen.KeyHintProvider = (*PatternsScreen)(nil)
var _ screen.InputCapturer = (*PatternsScreen)(nil)

// New creates a new PatternsScreen over the matcher's database.
func New(m *diagnosis.Matcher) *PatternsScreen {
	s := &PatternsScreen{
		entries: m.Database().Entries(),
		filter:  components.NewFilterInput("filter patterns"),
	}
	s.rebuild()
	return s
}

func (s *PatternsScreen) Init() tea.Cmd {
	return nil
}

func (s *PatternsScreen) Title() string {
	return "Pattern Library"
}

// KeyHints returns the key binding hints for the footer.
func (s *PatternsScreen) KeyHints() []layout.KeyHint {
	if s.filter.Focused() {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Apply"},
			{Key: "Esc", Description: "Clear"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Tab", Description: "Category"},
		{Key: "/", Description: "Filter"},
		{Key: "Enter", Description: "Details"},
		{Key: "Esc", Description: "Back"},
	}
}

// CapturingInput reports whether the filter field has focus.
func (s *PatternsScreen) CapturingInput() bool {
	return s.filter.Focused()
}

func (s *PatternsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if s.filter.Focused() {
			var cmd tea.Cmd
			s.filter, cmd = s.filter.Update(msg)
			return s, cmd
		}
		return s, nil
	}

	if s.filter.Focused() {
		switch key.String() {
		case "esc":
			s.filter.Reset()
			s.rebuild()
			return s, nil
		case "enter":
			s.filter.Blur()
			return s, nil
		case "up":
			s.moveCursor(-1)
			return s, nil
		case "down":
			s.moveCursor(1)
			return s, nil
		}
		var cmd tea.Cmd
		s.filter, cmd = s.filter.Update(msg)
		s.rebuild()
		return s, cmd
	}

	switch key.String() {
	case "up", "k":
		s.moveCursor(-1)
	case "down", "j":
		s.moveCursor(1)
	case "tab":
		s.nextCategory()
	case "shift+tab":
		s.prevCategory()
	case "/":
		return s, s.filter.Focus()
	case "enter":
		return s, s.selectPattern()
	case "q":
		return s, router.Pop()
	}
	return s, nil
}

func (s *PatternsScreen) View(width, height int) string {
	var lines []string
	if s.filter.Active() {
		lines = append(lines, "  "+s.filter.View(s.patternCount()))
		height--
	}

	if len(s.rows) == 0 {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(theme.TextDim).Italic(true).
			Render("\n  No patterns match."))
		return strings.Join(lines, "\n")
	}

	// Ensure cursor is visible within the scroll window
	s.adjustScroll(height)

	visible := 0
	for i, r := range s.rows {
		if i < s.scrollOffset {
			continue
		}
		if visible >= height {
			break
		}

		switch r.kind {
		case rowCategoryHeader:
			lines = append(lines, renderCategoryHeader(r.category, width))
		case rowPattern:
			lines = append(lines, renderPatternRow(r, i == s.cursor, width))
		}
		visible++
	}

	return strings.Join(lines, "\n")
}

// patternCount is the number of patterns left after filtering.
func (s *PatternsScreen) patternCount() int {
	n := 0
	for _, r := range s.rows {
		if r.kind == rowPattern {
			n++
		}
	}
	return n
}

// rebuild recomputes rows from the current filter. Matching is fuzzy over
// the ID, summary and signature of each entry.
func (s *PatternsScreen) rebuild() {
	shown := s.entries
	if q := strings.TrimSpace(s.filter.Value()); q != "" {
		haystack := make([]string, len(s.entries))
		for i, e := range s.entries {
			haystack[i] = e.ID + " " + e.Summary + " " + e.Signature
		}
		matches := fuzzy.Find(q, haystack)
		keep := make(map[int]bool, len(matches))
		for _, m := range matches {
			keep[m.Index] = true
		}
		shown = nil
		for i, e := range s.entries {
			if keep[i] {
				shown = append(shown, e)
			}
		}
	}

	s.rows = s.rows[:0]
	for _, cat := range diagnosis.Categories {
		header := false
		for i := range shown {
			if shown[i].Category != cat {
				continue
			}
			if !header {
				s.rows = append(s.rows, row{kind: rowCategoryHeader, category: cat})
				header = true
			}
			s.rows = append(s.rows, row{kind: rowPattern, category: cat, entry: &shown[i]})
		}
	}

	s.cursor = 0
	s.scrollOffset = 0
	for i, r := range s.rows {
		if r.kind == rowPattern {
			s.cursor = i
			break
		}
	}
}

// moveCursor moves the cursor by delta, skipping category headers.
func (s *PatternsScreen) moveCursor(delta int) {
	next := s.cursor + delta
	for next >= 0 && next < len(s.rows) {
		if s.rows[next].kind == rowPattern {
			s.cursor = next
			return
		}
		next += delta
	}
}

// nextCategory jumps the cursor to the first pattern in the next category.
func (s *PatternsScreen) nextCategory() {
	if len(s.rows) == 0 {
		return
	}
	current := s.rows[s.cursor].category
	for i := s.cursor + 1; i < len(s.rows); i++ {
		if s.rows[i].kind == rowPattern && s.rows[i].category != current {
			s.cursor = i
			return
		}
	}
}

// prevCategory jumps the cursor to the first pattern in the previous
// category.
func (s *PatternsScreen) prevCategory() {
	if len(s.rows) == 0 {
		return
	}
	current := s.rows[s.cursor].category

	prevStart := -1
	var prev diagnosis.Category
	for i := s.cursor - 1; i >= 0; i-- {
		if s.rows[i].kind == rowPattern && s.rows[i].category != current {
			prev = s.rows[i].category
			prevStart = i
			break
		}
	}
	if prevStart < 0 {
		return
	}

	for i := prevStart; i >= 0; i-- {
		if s.rows[i].kind != rowPattern || s.rows[i].category != prev {
			s.cursor = i + 1
			return
		}
	}
}

// adjustScroll ensures the cursor is visible within the viewport.
func (s *PatternsScreen) adjustScroll(height int) {
	if height <= 0 {
		return
	}
	// Also show the category header above the cursor if possible
	headerRow := s.cursor
	for headerRow > 0 && s.rows[headerRow-1].kind == rowCategoryHeader {
		headerRow--
	}

	if headerRow < s.scrollOffset {
		s.scrollOffset = headerRow
	}
	if s.cursor >= s.scrollOffset+height {
		s.scrollOffset = s.cursor - height + 1
	}
}

// selectPattern opens the detail screen for the current pattern.
func (s *PatternsScreen) selectPattern() tea.Cmd {
	if len(s.rows) == 0 {
		return nil
	}
	r := s.rows[s.cursor]
	if r.kind != rowPattern || r.entry == nil {
		return nil
	}
	return router.Push(newPatternDetail(*r.entry))
}

func renderCategoryHeader(cat diagnosis.Category, width int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Width(width).
		PaddingLeft(2).
		Render(strings.ToUpper(string(cat)))
}

// renderPatternRow renders a single pattern row.
func renderPatternRow(r row, selected bool, width int) string {
	e := r.entry

	padding := 4 // left indent
	iconWidth := 3
	idWidth := 24
	sevWidth := 9
	spacing := 4
	summaryWidth := width - padding - iconWidth - idWidth - sevWidth - spacing
	if summaryWidth < 10 {
		summaryWidth = 10
	}

	summary := []rune(e.Summary)
	if len(summary) > summaryWidth {
		summary = append(summary[:summaryWidth-1], '…')
	}
	id := []rune(e.ID)
	if len(id) > idWidth {
		id = append(id[:idWidth-1], '…')
	}

	idStyle := lipgloss.NewStyle().Foreground(theme.TextDim)
	summaryStyle := lipgloss.NewStyle().Foreground(theme.Text)
	sevStyle := lipgloss.NewStyle().Foreground(theme.SeverityColor(int(e.Severity)))
	if selected {
		idStyle = idStyle.Foreground(theme.Primary)
		summaryStyle = summaryStyle.Foreground(theme.Primary).Bold(true)
	}

	cursor := "  "
	if selected {
		cursor = "▸ "
	}

	return fmt.Sprintf("  %s%s %s  %s  %s",
		cursor,
		sevStyle.Render("●"),
		idStyle.Render(fmt.Sprintf("%-*s", idWidth, string(id))),
		summaryStyle.Render(fmt.Sprintf("%-*s", summaryWidth, string(summary))),
		sevStyle.Render(fmt.Sprintf("%8s", e.Severity)),
	)
}
