package troubleshoot

import (
	"time"

	"github.com/gitguy/gitguy/internal/diagnosis"
)

// diagnosisDoneMsg is sent when the engine has produced a record.
type diagnosisDoneMsg struct {
	Record  *diagnosis.Record
	Elapsed time.Duration
}

// pastedMsg carries clipboard contents for the editor.
type pastedMsg struct {
	Text string
	Err  error
}

// copiedMsg confirms the fix commands were written to the clipboard.
type copiedMsg struct {
	Count int
	Err   error
}
