package components

import (
	"fmt"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/gitguy/gitguy/internal/ui/theme"
)

const filterLimit = 64

// FilterInput is the "/"-prompted query field above a list. It takes
// keys only while focused.
type FilterInput struct {
	model textinput.Model
}

// NewFilterInput creates a blurred, empty filter.
func NewFilterInput(placeholder string) FilterInput {
	m := textinput.New()
	m.Placeholder = placeholder
	m.Prompt = "/ "
	m.CharLimit = filterLimit
	return FilterInput{model: m}
}

// Focus starts editing and returns the cursor blink command.
func (f *FilterInput) Focus() tea.Cmd { return f.model.Focus() }

// Blur stops editing and keeps the query.
func (f *FilterInput) Blur() { f.model.Blur() }

// Focused reports whether the filter is taking keys.
func (f FilterInput) Focused() bool { return f.model.Focused() }

// Reset blurs the filter and clears the query.
func (f *FilterInput) Reset() {
	f.model.Blur()
	f.model.SetValue("")
}

// Active reports whether the filter should be shown: it is being edited
// or holds a query.
func (f FilterInput) Active() bool {
	return f.model.Focused() || f.model.Value() != ""
}

func (f FilterInput) Update(msg tea.Msg) (FilterInput, tea.Cmd) {
	var cmd tea.Cmd
	f.model, cmd = f.model.Update(msg)
	return f, cmd
}

// Value returns the query.
func (f FilterInput) Value() string { return f.model.Value() }

// View renders the field followed by the number of matches.
func (f FilterInput) View(matches int) string {
	count := lipgloss.NewStyle().Foreground(theme.TextDim)
	noun := "matches"
	if matches == 1 {
		noun = "match"
	}
	return lipgloss.NewStyle().Foreground(theme.Text).Render(f.model.View()) +
		count.Render(fmt.Sprintf("  %d %s", matches, noun))
}
