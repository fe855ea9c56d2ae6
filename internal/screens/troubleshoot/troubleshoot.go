// Package troubleshoot implements the paste-and-diagnose screen.
package troubleshoot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"

	"github.com/gitguy/gitguy/internal/diagnosis"
	"github.com/gitguy/gitguy/internal/router"
	"github.com/gitguy/gitguy/internal/screen"
	"github.com/gitguy/gitguy/internal/ui/components"
	"github.com/gitguy/gitguy/internal/ui/layout"
)

type phase int

const (
	phaseEditing phase = iota
	phaseRunning
	phaseResult
)

// TroubleshootScreen lets the user paste error text and shows the
// diagnosis for it.
type TroubleshootScreen struct {
	service *diagnosis.Service
	phase   phase

	editor   components.TextArea
	spinner  spinner.Model
	viewport viewport.Model

	record  *diagnosis.Record
	elapsed time.Duration

	showingDiscardConfirm bool
	notice                string
	errMsg                string

	readClipboard  func() (string, error)
	writeClipboard func(string) error
}

var _ screen.Screen = (*TroubleshootScreen)(nil)
var _ screen.KeyHintProvider = (*TroubleshootScreen)(nil)
var _ screen.InputCapturer = (*TroubleshootScreen)(nil)

// New creates a new TroubleshootScreen backed by service.
func New(service *diagnosis.Service) *TroubleshootScreen {
	return &TroubleshootScreen{
		service:        service,
		editor:         components.NewTextArea("Paste the Git or GitHub error output here..."),
		spinner:        spinner.New(spinner.WithSpinner(spinner.MiniDot)),
		viewport:       viewport.New(),
		readClipboard:  clipboard.ReadAll,
		writeClipboard: clipboard.WriteAll,
	}
}

func (s *TroubleshootScreen) Init() tea.Cmd {
	return s.editor.Focus()
}

func (s *TroubleshootScreen) Title() string {
	return "Troubleshoot"
}

// CapturingInput keeps Esc on this screen while the editor has text, so it
// can ask before discarding it.
func (s *TroubleshootScreen) CapturingInput() bool {
	return s.phase == phaseEditing && (!s.editor.Empty() || s.showingDiscardConfirm)
}

func (s *TroubleshootScreen) KeyHints() []layout.KeyHint {
	if s.showingDiscardConfirm {
		return []layout.KeyHint{
			{Key: "Y", Description: "Discard"},
			{Key: "N", Description: "Keep editing"},
		}
	}
	switch s.phase {
	case phaseRunning:
		return nil
	case phaseResult:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Scroll"},
			{Key: "C", Description: "Copy commands"},
			{Key: "E", Description: "Edit"},
			{Key: "N", Description: "New"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "Ctrl+S", Description: "Diagnose"},
		{Key: "Ctrl+V", Description: "Paste"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *TroubleshootScreen) View(width, height int) string {
	if s.showingDiscardConfirm {
		return renderDiscardConfirm(width, height)
	}
	switch s.phase {
	case phaseRunning:
		return s.renderRunning(width, height)
	case phaseResult:
		return s.renderResult(width, height)
	}
	return s.renderEditor(width, height)
}

func (s *TroubleshootScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case diagnosisDoneMsg:
		return s.handleDone(msg)

	case pastedMsg:
		if msg.Err != nil {
			s.notice = "Clipboard unavailable: " + msg.Err.Error()
			return s, nil
		}
		s.editor.SetValue(s.editor.Value() + msg.Text)
		return s, nil

	case copiedMsg:
		if msg.Err != nil {
			s.notice = "Clipboard unavailable: " + msg.Err.Error()
		} else {
			s.notice = fmt.Sprintf("Copied %d command(s) to the clipboard", msg.Count)
		}
		return s, nil

	case spinner.TickMsg:
		if s.phase != phaseRunning {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	switch s.phase {
	case phaseEditing:
		var cmd tea.Cmd
		s.editor, cmd = s.editor.Update(msg)
		return s, cmd
	case phaseResult:
		var cmd tea.Cmd
		s.viewport, cmd = s.viewport.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *TroubleshootScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	s.notice = ""
	s.errMsg = ""

	if s.showingDiscardConfirm {
		switch key {
		case "y", "Y":
			s.showingDiscardConfirm = false
			s.editor.Reset()
			return s, router.Pop()
		case "n", "N", "esc":
			s.showingDiscardConfirm = false
		}
		return s, nil
	}

	switch s.phase {
	case phaseEditing:
		switch key {
		case "ctrl+s", "ctrl+d":
			return s, s.submit()
		case "ctrl+v":
			return s, s.paste()
		case "esc":
			if !s.editor.Empty() {
				s.showingDiscardConfirm = true
				return s, nil
			}
			return s, router.Pop()
		}
		var cmd tea.Cmd
		s.editor, cmd = s.editor.Update(msg)
		return s, cmd

	case phaseRunning:
		return s, nil

	case phaseResult:
		switch key {
		case "n":
			s.editor.Reset()
			s.record = nil
			s.phase = phaseEditing
			return s, s.editor.Focus()
		case "e":
			s.record = nil
			s.phase = phaseEditing
			return s, s.editor.Focus()
		case "c":
			return s, s.copyCommands()
		}
		var cmd tea.Cmd
		s.viewport, cmd = s.viewport.Update(msg)
		return s, cmd
	}
	return s, nil
}

// submit starts the diagnosis in the background. Empty input is still
// submitted; the engine answers it with guidance.
func (s *TroubleshootScreen) submit() tea.Cmd {
	s.phase = phaseRunning
	s.editor.Blur()

	text := s.editor.Value()
	svc := s.service
	diagnose := func() tea.Msg {
		start := time.Now()
		rec := svc.Diagnose(context.Background(), text)
		return diagnosisDoneMsg{Record: rec, Elapsed: time.Since(start)}
	}
	return tea.Batch(diagnose, s.spinner.Tick)
}

func (s *TroubleshootScreen) handleDone(msg diagnosisDoneMsg) (screen.Screen, tea.Cmd) {
	if msg.Record == nil {
		s.errMsg = "no diagnosis was produced"
		s.phase = phaseEditing
		return s, s.editor.Focus()
	}
	s.record = msg.Record
	s.elapsed = msg.Elapsed
	s.phase = phaseResult
	s.viewport.GotoTop()
	return s, nil
}

func (s *TroubleshootScreen) paste() tea.Cmd {
	read := s.readClipboard
	return func() tea.Msg {
		text, err := read()
		return pastedMsg{Text: text, Err: err}
	}
}

func (s *TroubleshootScreen) copyCommands() tea.Cmd {
	if s.record == nil || len(s.record.Commands) == 0 {
		s.notice = "No commands to copy"
		return nil
	}
	cmds := strings.Join(s.record.Commands, "\n")
	n := len(s.record.Commands)
	write := s.writeClipboard
	return func() tea.Msg {
		return copiedMsg{Count: n, Err: write(cmds)}
	}
}
