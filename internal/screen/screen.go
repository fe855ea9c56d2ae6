// Package screen defines the contract between the router and the
// individual TUI screens.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/gitguy/gitguy/internal/ui/layout"
)

// Screen is one page of the TUI. View receives the space left between
// the header and the footer.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View(width, height int) string
	// Title names the screen in the header trail.
	Title() string
}

// KeyHintProvider lets a screen replace the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// InputCapturer is implemented by screens with an editable field. While
// CapturingInput is true, Esc goes to the screen rather than the router.
type InputCapturer interface {
	CapturingInput() bool
}

// ResumedMsg is delivered to a screen when the screens above it are
// popped and it becomes active again.
type ResumedMsg struct{}
