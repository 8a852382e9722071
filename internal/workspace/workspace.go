// Package workspace implements the per-tag focus ring.
//
// A workspace keeps its clients in three parts: the clients before the
// focused one, the focused client itself, and the clients after it. Moving
// focus forward takes the head of after and pushes the old focus onto the
// tail of before; moving backward is the mirror image.
package workspace

import (
	"slices"

	"github.com/1broseidon/tagwm/internal/client"
	"github.com/1broseidon/tagwm/internal/geom"
	"github.com/1broseidon/tagwm/internal/platform"
	"github.com/1broseidon/tagwm/internal/tiling"
)

// Direction of a focus shift.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) opposite() Direction {
	if d == Forward {
		return Backward
	}
	return Forward
}

// Workspace is the focus ring of one tag.
type Workspace struct {
	Tag         client.Tag
	Description string
	Layout      tiling.Layout
	// Rect is the monitor area the workspace is laid out on.
	Rect geom.Rect

	display platform.Display
	before  []*client.Client
	current *client.Client
	after   []*client.Client
}

// Snapshot is a copy of the ring's window order.
type Snapshot struct {
	Before  []platform.Window `json:"before"`
	Current platform.Window   `json:"current,omitempty"`
	After   []platform.Window `json:"after"`
}

// New creates an empty workspace.
func New(display platform.Display, tag client.Tag, layout tiling.Layout, area geom.Rect) *Workspace {
	return &Workspace{
		Tag:     tag,
		Layout:  layout,
		Rect:    area,
		display: display,
	}
}

// Current returns the focused client or nil.
func (w *Workspace) Current() *client.Client {
	return w.current
}

func (w *Workspace) Len() int {
	n := len(w.before) + len(w.after)
	if w.current != nil {
		n++
	}
	return n
}

// ShiftFocus moves focus one step. It reports false when there is nothing in
// that direction.
func (w *Workspace) ShiftFocus(dir Direction) bool {
	var next *client.Client
	switch dir {
	case Forward:
		if len(w.after) == 0 {
			return false
		}
		next = w.after[0]
		w.after = w.after[1:]
		if w.current != nil {
			w.before = append(w.before, w.current)
		}
	case Backward:
		if len(w.before) == 0 {
			return false
		}
		next = w.before[len(w.before)-1]
		w.before = w.before[:len(w.before)-1]
		if w.current != nil {
			w.after = slices.Insert(w.after, 0, w.current)
		}
	}

	if prev := w.current; prev != nil {
		prev.Focus(false)
		prev.GrabButtons(false)
	}
	w.current = next
	next.Focus(true)
	next.GrabButtons(true)
	return true
}

// CircleFocus shifts focus in dir, wrapping around to the far end of the ring
// when there is nothing left in that direction.
func (w *Workspace) CircleFocus(dir Direction) {
	if !w.ShiftFocus(dir) {
		for w.ShiftFocus(dir.opposite()) {
		}
	}
	w.Restack()
}

// NewClient inserts c and focuses it. With atFocus the client goes right
// where the focus is and the old focus moves one step forward; otherwise it
// goes to the front of the ring and every other client ends up after it.
func (w *Workspace) NewClient(c *client.Client, atFocus bool) {
	if atFocus {
		w.before = append(w.before, c)
		w.ShiftFocus(Backward)
		return
	}
	w.before = slices.Insert(w.before, 0, c)
	for len(w.before) > 0 {
		w.ShiftFocus(Backward)
	}
}

// DetachCurrent removes and returns the focused client, moving focus to its
// successor if it has one and to its predecessor otherwise.
func (w *Workspace) DetachCurrent() *client.Client {
	if w.current == nil {
		return nil
	}
	switch {
	case len(w.after) > 0:
		w.ShiftFocus(Forward)
		c := w.before[len(w.before)-1]
		w.before = w.before[:len(w.before)-1]
		return c
	case len(w.before) > 0:
		w.ShiftFocus(Backward)
		c := w.after[0]
		w.after = w.after[1:]
		return c
	default:
		c := w.current
		w.current = nil
		return c
	}
}

// RemoveClient takes c out of the ring wherever it is. Clients are compared
// by window.
func (w *Workspace) RemoveClient(c *client.Client) bool {
	if i := indexOf(w.before, c.Window()); i >= 0 {
		w.before = slices.Delete(w.before, i, i+1)
		return true
	}
	if i := indexOf(w.after, c.Window()); i >= 0 {
		w.after = slices.Delete(w.after, i, i+1)
		return true
	}
	if w.current != nil && w.current.Window() == c.Window() {
		w.DetachCurrent()
		return true
	}
	return false
}

// SetFocus rotates the ring until c is focused.
func (w *Workspace) SetFocus(c *client.Client) {
	if w.current != nil && w.current.Window() == c.Window() {
		c.Focus(true)
		c.GrabButtons(true)
		return
	}
	if i := indexOf(w.before, c.Window()); i >= 0 {
		for n := len(w.before) - i; n > 0; n-- {
			w.ShiftFocus(Backward)
		}
		return
	}
	if i := indexOf(w.after, c.Window()); i >= 0 {
		for n := i + 1; n > 0; n-- {
			w.ShiftFocus(Forward)
		}
	}
}

// Restack puts the tiled clients at the bottom of the stack with the focused
// one on top of them. Nothing happens while a floating client has focus.
func (w *Workspace) Restack() {
	if w.current == nil || w.current.IsFloating() {
		return
	}
	w.current.LowerWindow()
	prev := w.current
	for _, c := range slices.Concat(w.before, w.after) {
		if c.IsFloating() {
			continue
		}
		w.display.StackBelow(c.Window(), prev.Window())
		prev = c
	}
	w.display.Sync()
	w.display.DiscardEnterEvents()
}

// Zoom moves the focused client to the front of the ring.
func (w *Workspace) Zoom() {
	if c := w.DetachCurrent(); c != nil {
		w.NewClient(c, false)
	}
}

// SelectClients returns the clients matching pred in ring order.
func (w *Workspace) SelectClients(pred func(*client.Client) bool) []*client.Client {
	var out []*client.Client
	for _, c := range w.Clients() {
		if pred(c) {
			out = append(out, c)
		}
	}
	return out
}

// Clients returns every client in ring order: before, focused, after.
func (w *Workspace) Clients() []*client.Client {
	out := make([]*client.Client, 0, w.Len())
	out = append(out, w.before...)
	if w.current != nil {
		out = append(out, w.current)
	}
	return append(out, w.after...)
}

// ClientByWindow finds a client, checking the focused one first.
func (w *Workspace) ClientByWindow(win platform.Window) *client.Client {
	if w.current != nil && w.current.Window() == win {
		return w.current
	}
	if i := indexOf(w.before, win); i >= 0 {
		return w.before[i]
	}
	if i := indexOf(w.after, win); i >= 0 {
		return w.after[i]
	}
	return nil
}

func (w *Workspace) Show(visible bool) {
	for _, c := range w.Clients() {
		c.Show(visible)
	}
}

// Clear drops every client without touching the windows.
func (w *Workspace) Clear() {
	w.before = nil
	w.current = nil
	w.after = nil
}

// KillClient detaches the focused client and asks it to close.
func (w *Workspace) KillClient() *client.Client {
	c := w.DetachCurrent()
	if c != nil {
		c.Kill()
	}
	return c
}

// Placements runs the workspace layout over its clients.
func (w *Workspace) Placements(area geom.Rect) []tiling.Placement {
	return w.Layout.Arrange(w.Clients(), area)
}

func (w *Workspace) Snapshot() Snapshot {
	s := Snapshot{
		Before: windows(w.before),
		After:  windows(w.after),
	}
	if w.current != nil {
		s.Current = w.current.Window()
	}
	return s
}

func indexOf(clients []*client.Client, win platform.Window) int {
	return slices.IndexFunc(clients, func(c *client.Client) bool {
		return c.Window() == win
	})
}

func windows(clients []*client.Client) []platform.Window {
	out := make([]platform.Window, len(clients))
	for i, c := range clients {
		out[i] = c.Window()
	}
	return out
}
