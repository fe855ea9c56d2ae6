// Package router keeps the stack of screens the TUI navigates through.
// Screens never touch the stack directly; they return the commands
// built by Push, Pop, Replace and Home.
package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/gitguy/gitguy/internal/screen"
)

type op int

const (
	opPush op = iota
	opPop
	opReplace
	opHome
)

// NavigateMsg asks the router to change the stack. Build it with the
// command constructors below.
type NavigateMsg struct {
	op     op
	screen screen.Screen
}

// IsPop reports whether the message leaves the current screen for the
// one beneath it.
func (m NavigateMsg) IsPop() bool {
	return m.op == opPop
}

// Target is the screen being opened, or nil for Pop and Home.
func (m NavigateMsg) Target() screen.Screen {
	return m.screen
}

func navigate(o op, s screen.Screen) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{op: o, screen: s}
	}
}

// Push opens s on top of the current screen.
func Push(s screen.Screen) tea.Cmd { return navigate(opPush, s) }

// Pop returns to the previous screen.
func Pop() tea.Cmd { return navigate(opPop, nil) }

// Replace swaps the current screen for s, e.g. the splash for the menu.
func Replace(s screen.Screen) tea.Cmd { return navigate(opReplace, s) }

// Home unwinds the stack back to its first screen.
func Home() tea.Cmd { return navigate(opHome, nil) }

// Router owns the screen stack. The bottom screen is never popped.
type Router struct {
	stack []screen.Screen
}

// New creates a Router showing root.
func New(root screen.Screen) *Router {
	return &Router{stack: []screen.Screen{root}}
}

// Active returns the screen on top of the stack.
func (r *Router) Active() screen.Screen {
	return r.stack[len(r.stack)-1]
}

// Depth returns the number of screens on the stack.
func (r *Router) Depth() int {
	return len(r.stack)
}

// Trail returns the titles from the bottom of the stack to the top.
func (r *Router) Trail() []string {
	titles := make([]string, len(r.stack))
	for i, s := range r.stack {
		titles[i] = s.Title()
	}
	return titles
}

// Update applies navigation messages and forwards everything else to
// the active screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	nav, ok := msg.(NavigateMsg)
	if !ok {
		return r.forward(msg)
	}

	switch nav.op {
	case opPush:
		r.stack = append(r.stack, nav.screen)
		return nav.screen.Init()
	case opReplace:
		r.stack[len(r.stack)-1] = nav.screen
		return nav.screen.Init()
	case opPop:
		if len(r.stack) == 1 {
			return nil
		}
		r.stack = r.stack[:len(r.stack)-1]
		return r.forward(screen.ResumedMsg{})
	case opHome:
		if len(r.stack) == 1 {
			return nil
		}
		clear(r.stack[1:])
		r.stack = r.stack[:1]
		return r.forward(screen.ResumedMsg{})
	}
	return nil
}

func (r *Router) forward(msg tea.Msg) tea.Cmd {
	updated, cmd := r.Active().Update(msg)
	r.stack[len(r.stack)-1] = updated
	return cmd
}

// View renders the active screen.
func (r *Router) View(width, height int) string {
	return r.Active().View(width, height)
}
