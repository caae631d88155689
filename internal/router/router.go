// Package router keeps the stack of screens the app navigates through.
// Screens never touch the stack directly; they return one of the *Msg
// values below and the app feeds it to Router.Update.
package router

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyhall/internal/screen"
)

// PushScreenMsg opens Screen on top of the current one.
type PushScreenMsg struct {
	Screen screen.Screen
}

// PopScreenMsg closes the current screen.
type PopScreenMsg struct{}

// ReplaceScreenMsg swaps the current screen for Screen, e.g. the splash
// handing over to home or a finished quiz handing over to its summary.
type ReplaceScreenMsg struct {
	Screen screen.Screen
}

// PopToRootMsg closes every screen above the bottom one.
type PopToRootMsg struct{}

func PushCmd(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return PushScreenMsg{Screen: s} }
}

func PopCmd() tea.Msg { return PopScreenMsg{} }

func ReplaceCmd(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return ReplaceScreenMsg{Screen: s} }
}

func resumed() tea.Msg { return screen.ResumedMsg{} }

// Router is a non-empty stack of screens; the last element is active.
type Router struct {
	stack []screen.Screen
}

func New(initial screen.Screen) *Router {
	return &Router{stack: []screen.Screen{initial}}
}

// Push opens s and returns its Init command.
func (r *Router) Push(s screen.Screen) tea.Cmd {
	r.stack = append(r.stack, s)
	return s.Init()
}

// Pop closes the active screen. The screen underneath receives a
// screen.ResumedMsg so it can refresh. The bottom screen is never popped.
func (r *Router) Pop() tea.Cmd {
	if len(r.stack) < 2 {
		return nil
	}
	r.stack[len(r.stack)-1] = nil
	r.stack = r.stack[:len(r.stack)-1]
	return resumed
}

// Replace swaps the active screen for s and returns its Init command.
func (r *Router) Replace(s screen.Screen) tea.Cmd {
	r.stack[len(r.stack)-1] = s
	return s.Init()
}

// PopToRoot closes every screen above the bottom one.
func (r *Router) PopToRoot() tea.Cmd {
	if len(r.stack) < 2 {
		return nil
	}
	clear(r.stack[1:])
	r.stack = r.stack[:1]
	return resumed
}

func (r *Router) Active() screen.Screen {
	return r.stack[len(r.stack)-1]
}

func (r *Router) Depth() int {
	return len(r.stack)
}

// Breadcrumb joins the titles of the open screens, bottom first.
func (r *Router) Breadcrumb(sep string) string {
	titles := make([]string, len(r.stack))
	for i, s := range r.stack {
		titles[i] = s.Title()
	}
	return strings.Join(titles, sep)
}

// Update applies navigation messages and forwards everything else to the
// active screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PushScreenMsg:
		return r.Push(msg.Screen)
	case PopScreenMsg:
		return r.Pop()
	case ReplaceScreenMsg:
		return r.Replace(msg.Screen)
	case PopToRootMsg:
		return r.PopToRoot()
	}

	next, cmd := r.Active().Update(msg)
	r.stack[len(r.stack)-1] = next
	return cmd
}

func (r *Router) View(width, height int) string {
	return r.Active().View(width, height)
}
