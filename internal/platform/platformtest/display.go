// Package platformtest provides an in-memory platform.Display for tests.
package platformtest

import (
	"fmt"

	"github.com/1broseidon/tagwm/internal/geom"
	"github.com/1broseidon/tagwm/internal/platform"
)

// Window is the fake state of one window.
type Window struct {
	Title            string
	Class            string
	Types            []string
	States           []string
	Protocols        []string
	Sent             []string
	Geometry         geom.Rect
	OverrideRedirect bool
	Border           int
	BorderColor      uint32
	WMState          platform.WMState
	Mapped           bool
	Killed           bool
	ButtonsGrabbed   bool
	InputSelected    bool
	Notified         []geom.Rect
}

// Display records everything the manager asks of the window system.
type Display struct {
	Width  int
	Height int
	// HeadRects overrides the single full-screen head.
	HeadRects []geom.Rect

	Windows        map[platform.Window]*Window
	Stack          []platform.Window
	Focused        platform.Window
	Active         platform.Window
	ClientList     []platform.Window
	DesktopNames   []string
	CurrentDesktop int
	Pointer        platform.Pointer
	PointerGrabbed bool
	PointerCursor  platform.Cursor
	Warps          []platform.Pointer
	Keys           []string
	BadKeys        map[string]bool
	KeymapRefresh  int
	Atoms          map[uint32]string
	Passthrough    []platform.ConfigureRequest
	Syncs          int
	Calls          []string
	Closed         bool

	events chan platform.Event
}

var _ platform.Display = (*Display)(nil)

// New returns a fake display with a single head of the given size.
func New(width, height int) *Display {
	return &Display{
		Width:   width,
		Height:  height,
		Windows: make(map[platform.Window]*Window),
		BadKeys: make(map[string]bool),
		Atoms:   make(map[uint32]string),
		events:  make(chan platform.Event, 256),
	}
}

// AddWindow registers a window the fake knows about, unmapped.
func (d *Display) AddWindow(id platform.Window, title, class string) *Window {
	w := &Window{
		Title:    title,
		Class:    class,
		Geometry: geom.New(0, 0, 100, 100),
	}
	d.Windows[id] = w
	return w
}

// Push queues an event for Events().
func (d *Display) Push(ev platform.Event) {
	d.events <- ev
}

// StackIndex returns the position of w in the stack, bottom first, or -1.
func (d *Display) StackIndex(w platform.Window) int {
	for i, s := range d.Stack {
		if s == w {
			return i
		}
	}
	return -1
}

func (d *Display) record(format string, args ...any) {
	d.Calls = append(d.Calls, fmt.Sprintf(format, args...))
}

func (d *Display) win(w platform.Window) *Window {
	return d.Windows[w]
}

func (d *Display) removeFromStack(w platform.Window) {
	if i := d.StackIndex(w); i >= 0 {
		d.Stack = append(d.Stack[:i], d.Stack[i+1:]...)
	}
}

func (d *Display) Root() platform.Window { return 1 }

func (d *Display) ScreenSize() (int, int) { return d.Width, d.Height }

func (d *Display) Heads() []geom.Rect {
	if len(d.HeadRects) > 0 {
		return append([]geom.Rect(nil), d.HeadRects...)
	}
	return []geom.Rect{geom.New(0, 0, d.Width, d.Height)}
}

func (d *Display) AtomName(atom uint32) string { return d.Atoms[atom] }

func (d *Display) Attributes(w platform.Window) (platform.Attributes, bool) {
	win := d.win(w)
	if win == nil {
		return platform.Attributes{}, false
	}
	return platform.Attributes{Geometry: win.Geometry, OverrideRedirect: win.OverrideRedirect}, true
}

func (d *Display) Title(w platform.Window) (string, bool) {
	win := d.win(w)
	if win == nil || win.Title == "" {
		return "", false
	}
	return win.Title, true
}

func (d *Display) Class(w platform.Window) (string, bool) {
	win := d.win(w)
	if win == nil || win.Class == "" {
		return "", false
	}
	return win.Class, true
}

func (d *Display) WindowTypes(w platform.Window) []string {
	if win := d.win(w); win != nil {
		return win.Types
	}
	return nil
}

func (d *Display) WindowStates(w platform.Window) []string {
	if win := d.win(w); win != nil {
		return win.States
	}
	return nil
}

func (d *Display) SetWindowStates(w platform.Window, states []string) {
	d.record("SetWindowStates 0x%x %v", w, states)
	if win := d.win(w); win != nil {
		win.States = append([]string(nil), states...)
	}
}

func (d *Display) Protocols(w platform.Window) []string {
	if win := d.win(w); win != nil {
		return win.Protocols
	}
	return nil
}

func (d *Display) SendProtocol(w platform.Window, protocol string) {
	d.record("SendProtocol 0x%x %s", w, protocol)
	if win := d.win(w); win != nil {
		win.Sent = append(win.Sent, protocol)
	}
}

func (d *Display) SetWMState(w platform.Window, state platform.WMState) {
	if win := d.win(w); win != nil {
		win.WMState = state
	}
}

func (d *Display) MoveResize(w platform.Window, r geom.Rect) {
	d.record("MoveResize 0x%x %s", w, r)
	if win := d.win(w); win != nil {
		win.Geometry = r
	}
}

func (d *Display) Move(w platform.Window, x, y int) {
	d.record("Move 0x%x %d,%d", w, x, y)
	if win := d.win(w); win != nil {
		win.Geometry.X = x
		win.Geometry.Y = y
	}
}

func (d *Display) SetBorderWidth(w platform.Window, width int) {
	if win := d.win(w); win != nil {
		win.Border = width
	}
}

func (d *Display) SetBorderColor(w platform.Window, color uint32) {
	if win := d.win(w); win != nil {
		win.BorderColor = color
	}
}

func (d *Display) Raise(w platform.Window) {
	d.removeFromStack(w)
	d.Stack = append(d.Stack, w)
}

func (d *Display) Lower(w platform.Window) {
	d.removeFromStack(w)
	d.Stack = append([]platform.Window{w}, d.Stack...)
}

func (d *Display) StackBelow(w, sibling platform.Window) {
	d.removeFromStack(w)
	i := d.StackIndex(sibling)
	if i < 0 {
		d.Stack = append([]platform.Window{w}, d.Stack...)
		return
	}
	d.Stack = append(d.Stack[:i], append([]platform.Window{w}, d.Stack[i:]...)...)
}

func (d *Display) SendConfigureNotify(w platform.Window, r geom.Rect, border int) {
	if win := d.win(w); win != nil {
		win.Notified = append(win.Notified, r)
	}
}

func (d *Display) ConfigurePassthrough(ev platform.ConfigureRequest, mask uint16) {
	ev.ValueMask = mask
	d.Passthrough = append(d.Passthrough, ev)
}

func (d *Display) SetInputFocus(w platform.Window) { d.Focused = w }

func (d *Display) SetActiveWindow(w platform.Window) { d.Active = w }

func (d *Display) GrabButtons(w platform.Window) {
	if win := d.win(w); win != nil {
		win.ButtonsGrabbed = true
	}
}

func (d *Display) UngrabButtons(w platform.Window) {
	if win := d.win(w); win != nil {
		win.ButtonsGrabbed = false
	}
}

func (d *Display) MapWindow(w platform.Window) {
	if win := d.win(w); win != nil {
		win.Mapped = true
	}
	if d.StackIndex(w) < 0 {
		d.Stack = append(d.Stack, w)
	}
}

func (d *Display) SelectClientInput(w platform.Window) {
	if win := d.win(w); win != nil {
		win.InputSelected = true
	}
}

func (d *Display) Kill(w platform.Window) {
	d.record("Kill 0x%x", w)
	if win := d.win(w); win != nil {
		win.Killed = true
	}
}

func (d *Display) SetClientList(windows []platform.Window) {
	d.ClientList = append([]platform.Window(nil), windows...)
}

func (d *Display) SetDesktops(names []string, current int) {
	d.DesktopNames = append([]string(nil), names...)
	d.CurrentDesktop = current
}

func (d *Display) GrabPointer(cursor platform.Cursor) bool {
	d.PointerGrabbed = true
	d.PointerCursor = cursor
	return true
}

func (d *Display) UngrabPointer() { d.PointerGrabbed = false }

func (d *Display) QueryPointer() (platform.Pointer, bool) { return d.Pointer, true }

func (d *Display) WarpPointer(w platform.Window, x, y int) {
	d.Warps = append(d.Warps, platform.Pointer{X: x, Y: y})
	d.Pointer = platform.Pointer{X: x, Y: y}
	if win := d.win(w); win != nil {
		d.Pointer = platform.Pointer{X: win.Geometry.X + x, Y: win.Geometry.Y + y}
	}
}

func (d *Display) GrabKeys(bindings []string) []error {
	d.Keys = d.Keys[:0]
	var errs []error
	for _, b := range bindings {
		if d.BadKeys[b] {
			errs = append(errs, fmt.Errorf("could not find a valid keycode in %q", b))
			continue
		}
		d.Keys = append(d.Keys, b)
	}
	return errs
}

func (d *Display) RefreshKeymap() { d.KeymapRefresh++ }

func (d *Display) Sync() { d.Syncs++ }

func (d *Display) DiscardEnterEvents() { d.Syncs++ }

func (d *Display) Events() <-chan platform.Event { return d.events }

func (d *Display) Close() { d.Closed = true }
