package components

import (
	"strings"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"

	"github.com/gitguy/gitguy/internal/ui/theme"
)

// maxErrorTextLen caps pasted error output.
const maxErrorTextLen = 16 * 1024

// TextArea is a multi-line input for pasted error output.
type TextArea struct {
	Model textarea.Model
}

// NewTextArea creates a focused text area.
func NewTextArea(placeholder string) TextArea {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.CharLimit = maxErrorTextLen
	ta.Focus()
	return TextArea{Model: ta}
}

// Init returns the initial command.
func (t TextArea) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update handles messages.
func (t TextArea) Update(msg tea.Msg) (TextArea, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// SetSize fits the text area inside a bordered box of the given size.
func (t *TextArea) SetSize(width, height int) {
	t.Model.SetWidth(max(width-4, 10))
	t.Model.SetHeight(max(height-2, 3))
}

// View renders the text area in a card.
func (t TextArea) View() string {
	return theme.Card.
		BorderForeground(theme.Primary).
		Render(t.Model.View())
}

// Value returns the current text.
func (t TextArea) Value() string {
	return t.Model.Value()
}

// Empty reports whether the text area holds only whitespace.
func (t TextArea) Empty() bool {
	return strings.TrimSpace(t.Model.Value()) == ""
}

// Reset clears the text.
func (t *TextArea) Reset() {
	t.Model.Reset()
}

// SetValue replaces the text.
func (t *TextArea) SetValue(s string) {
	t.Model.SetValue(s)
}

// Focus focuses the text area.
func (t *TextArea) Focus() tea.Cmd {
	return t.Model.Focus()
}

// Blur removes focus.
func (t *TextArea) Blur() {
	t.Model.Blur()
}
