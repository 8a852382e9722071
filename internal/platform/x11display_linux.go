//go:build linux

package platform

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/1broseidon/tagwm/internal/geom"
	"github.com/1broseidon/tagwm/internal/hotkeys"
	"github.com/1broseidon/tagwm/internal/x11"
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// eventBuffer bounds how far the reader goroutine runs ahead of the manager.
const eventBuffer = 64

// X11Options configures an X11Display.
type X11Options struct {
	// Display names the X server; empty means $DISPLAY.
	Display string
	// Name is advertised through _NET_SUPPORTING_WM_CHECK.
	Name   string
	Logger *slog.Logger
}

// X11Display is the X11 implementation of Display. Requests are sent from
// the manager goroutine; a reader goroutine translates server events.
type X11Display struct {
	conn    *x11.Connection
	keys    *hotkeys.Grabber
	cursors x11.Cursors
	logger  *slog.Logger

	buttonMods uint16

	// discardEnter holds the sequence of the last DiscardEnterEvents sync,
	// with bit 16 set when one is pending.
	discardEnter atomic.Uint32

	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
}

var _ Display = (*X11Display)(nil)

// NewX11Display connects to the X server and takes over window management
// on its default screen.
func NewX11Display(opts X11Options) (*X11Display, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := x11.NewConnectionDisplay(opts.Display)
	if err != nil {
		return nil, err
	}
	if err := conn.BecomeManager(); err != nil {
		conn.Close()
		return nil, err
	}
	if err := conn.SetupEWMH(opts.Name); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to set up EWMH: %w", err)
	}

	d := &X11Display{
		conn:       conn,
		keys:       hotkeys.NewGrabber(conn.XUtil, conn.Root),
		cursors:    conn.LoadCursors(),
		logger:     logger,
		buttonMods: Mod4,
		events:     make(chan Event, eventBuffer),
		done:       make(chan struct{}),
	}
	go d.readEvents()
	return d, nil
}

// SetButtonModifier sets the modifier under which Button1 and Button3 are
// grabbed on focused windows for moving and resizing.
func (d *X11Display) SetButtonModifier(mask uint16) {
	d.buttonMods = mask
}

func (d *X11Display) Root() Window { return Window(d.conn.Root) }

func (d *X11Display) ScreenSize() (int, int) {
	reply, err := xproto.GetGeometry(d.conn.Conn(), xproto.Drawable(d.conn.Root)).Reply()
	if err != nil {
		return d.conn.ScreenSize()
	}
	return int(reply.Width), int(reply.Height)
}

func (d *X11Display) Heads() []geom.Rect {
	mons := d.conn.Monitors()
	heads := make([]geom.Rect, 0, len(mons))
	for _, m := range mons {
		heads = append(heads, geom.New(m.X, m.Y, m.Width, m.Height))
	}
	return heads
}

func (d *X11Display) AtomName(atom uint32) string {
	return d.conn.AtomName(xproto.Atom(atom))
}

func (d *X11Display) Attributes(w Window) (Attributes, bool) {
	attrs, err := d.conn.Attributes(xproto.Window(w))
	if err != nil {
		return Attributes{}, false
	}
	return Attributes{
		Geometry:         geom.New(attrs.X, attrs.Y, attrs.Width, attrs.Height),
		OverrideRedirect: attrs.OverrideRedirect,
	}, true
}

func (d *X11Display) Title(w Window) (string, bool) {
	title, err := d.conn.Title(xproto.Window(w))
	return title, err == nil
}

func (d *X11Display) Class(w Window) (string, bool) {
	class, err := d.conn.Class(xproto.Window(w))
	return class, err == nil
}

func (d *X11Display) WindowTypes(w Window) []string {
	return d.conn.WindowTypes(xproto.Window(w))
}

func (d *X11Display) WindowStates(w Window) []string {
	return d.conn.WindowStates(xproto.Window(w))
}

func (d *X11Display) SetWindowStates(w Window, states []string) {
	if err := d.conn.SetWindowStates(xproto.Window(w), states); err != nil {
		d.logger.Debug("failed to set window state", "window", w, "error", err)
	}
}

func (d *X11Display) Protocols(w Window) []string {
	return d.conn.Protocols(xproto.Window(w))
}

func (d *X11Display) SendProtocol(w Window, protocol string) {
	if err := d.conn.SendProtocol(xproto.Window(w), protocol); err != nil {
		d.logger.Debug("failed to send protocol", "window", w, "protocol", protocol, "error", err)
	}
}

func (d *X11Display) SetWMState(w Window, state WMState) {
	if err := d.conn.SetWMState(xproto.Window(w), uint(state)); err != nil {
		d.logger.Debug("failed to set WM_STATE", "window", w, "error", err)
	}
}

func (d *X11Display) MoveResize(w Window, r geom.Rect) {
	d.conn.MoveResizeWindow(xproto.Window(w), r.X, r.Y, r.Width, r.Height)
}

func (d *X11Display) Move(w Window, x, y int) {
	d.conn.MoveWindow(xproto.Window(w), x, y)
}

func (d *X11Display) SetBorderWidth(w Window, width int) {
	d.conn.SetBorderWidth(xproto.Window(w), width)
}

func (d *X11Display) SetBorderColor(w Window, color uint32) {
	d.conn.SetBorderColor(xproto.Window(w), color)
}

func (d *X11Display) Raise(w Window) {
	d.conn.Stack(xproto.Window(w), xproto.StackModeAbove)
}

func (d *X11Display) Lower(w Window) {
	d.conn.Stack(xproto.Window(w), xproto.StackModeBelow)
}

func (d *X11Display) StackBelow(w, sibling Window) {
	d.conn.StackBelow(xproto.Window(w), xproto.Window(sibling))
}

func (d *X11Display) SendConfigureNotify(w Window, r geom.Rect, border int) {
	d.conn.SendConfigureNotify(xproto.Window(w), r.X, r.Y, r.Width, r.Height, border)
}

// ConfigurePassthrough applies the masked fields of a configure request
// unchanged.
func (d *X11Display) ConfigurePassthrough(ev ConfigureRequest, mask uint16) {
	mask &= ev.ValueMask
	values := make([]uint32, 0, 7)
	if mask&ConfigX != 0 {
		values = append(values, uint32(int32(ev.X)))
	}
	if mask&ConfigY != 0 {
		values = append(values, uint32(int32(ev.Y)))
	}
	if mask&ConfigWidth != 0 {
		values = append(values, uint32(ev.Width))
	}
	if mask&ConfigHeight != 0 {
		values = append(values, uint32(ev.Height))
	}
	if mask&ConfigBorderWidth != 0 {
		values = append(values, uint32(ev.Border))
	}
	if mask&ConfigSibling != 0 {
		values = append(values, uint32(ev.Sibling))
	}
	if mask&ConfigStackMode != 0 {
		values = append(values, uint32(ev.StackMode))
	}
	d.conn.Configure(xproto.Window(ev.Window), mask, values)
}

func (d *X11Display) SetInputFocus(w Window) {
	d.conn.SetInputFocus(xproto.Window(w))
}

func (d *X11Display) SetActiveWindow(w Window) {
	if err := d.conn.SetActiveWindow(xproto.Window(w)); err != nil {
		d.logger.Debug("failed to set active window", "window", w, "error", err)
	}
}

// GrabButtons makes any click on w reach the manager first.
func (d *X11Display) GrabButtons(w Window) {
	d.conn.GrabAnyButton(xproto.Window(w))
}

// UngrabButtons leaves only the move and resize grabs on w.
func (d *X11Display) UngrabButtons(w Window) {
	d.conn.GrabModButtons(xproto.Window(w), d.buttonMods, Button1, Button3)
}

func (d *X11Display) MapWindow(w Window) {
	d.conn.MapWindow(xproto.Window(w))
}

func (d *X11Display) SelectClientInput(w Window) {
	d.conn.SelectInput(xproto.Window(w), x11.ClientEventMask)
}

func (d *X11Display) Kill(w Window) {
	d.conn.KillClient(xproto.Window(w))
}

func (d *X11Display) SetClientList(windows []Window) {
	ids := make([]xproto.Window, len(windows))
	for i, w := range windows {
		ids[i] = xproto.Window(w)
	}
	if err := d.conn.SetClientList(ids); err != nil {
		d.logger.Debug("failed to set client list", "error", err)
	}
}

func (d *X11Display) SetDesktops(names []string, current int) {
	if err := d.conn.PublishDesktops(names, current); err != nil {
		d.logger.Debug("failed to publish desktops", "error", err)
	}
}

func (d *X11Display) GrabPointer(cursor Cursor) bool {
	c := d.cursors.Normal
	switch cursor {
	case CursorMove:
		c = d.cursors.Move
	case CursorResize:
		c = d.cursors.Resize
	}
	return d.conn.GrabPointer(c)
}

func (d *X11Display) UngrabPointer() {
	d.conn.UngrabPointer()
}

func (d *X11Display) QueryPointer() (Pointer, bool) {
	x, y, ok := d.conn.QueryPointer()
	return Pointer{X: x, Y: y}, ok
}

func (d *X11Display) WarpPointer(w Window, x, y int) {
	d.conn.WarpPointer(xproto.Window(w), x, y)
}

func (d *X11Display) GrabKeys(bindings []string) []error {
	return d.keys.GrabAll(bindings)
}

func (d *X11Display) RefreshKeymap() {
	d.keys.RefreshKeymap()
}

func (d *X11Display) Sync() {
	d.conn.Sync()
}

// DiscardEnterEvents drops every EnterNotify generated before this call.
func (d *X11Display) DiscardEnterEvents() {
	if seq, ok := d.conn.Sync(); ok {
		d.discardEnter.Store(uint32(seq) | 1<<16)
	}
}

func (d *X11Display) Events() <-chan Event {
	return d.events
}

func (d *X11Display) Close() {
	d.closeOnce.Do(func() {
		close(d.done)
		d.conn.Close()
	})
}

// readEvents forwards translated server events until the connection closes.
func (d *X11Display) readEvents() {
	defer close(d.events)
	for {
		ev, xerr := d.conn.NextEvent()
		if ev == nil && xerr == nil {
			return
		}
		var out Event
		if xerr != nil {
			info := x11.DecodeError(xerr)
			out = ProtocolError{
				Code:     info.Code,
				Major:    info.Major,
				BadValue: info.BadValue,
				Sequence: info.Sequence,
			}
		} else if out = d.translate(ev); out == nil {
			continue
		}
		select {
		case d.events <- out:
		case <-d.done:
			return
		}
	}
}

func (d *X11Display) translate(ev xgb.Event) Event {
	root := d.conn.Root
	switch e := ev.(type) {
	case xproto.ButtonPressEvent:
		// Release a click frozen by the click-to-focus grab.
		d.conn.ReplayPointer()
		return ButtonPress{
			Window: Window(e.Event),
			State:  e.State,
			Button: uint8(e.Detail),
			RootX:  int(e.RootX),
			RootY:  int(e.RootY),
			Time:   uint32(e.Time),
		}
	case xproto.ButtonReleaseEvent:
		return ButtonRelease{Window: Window(e.Event), Button: uint8(e.Detail), Time: uint32(e.Time)}
	case xproto.MotionNotifyEvent:
		return MotionNotify{Window: Window(e.Event), RootX: int(e.RootX), RootY: int(e.RootY), Time: uint32(e.Time)}
	case xproto.ClientMessageEvent:
		msg := ClientMessage{Window: Window(e.Window), Type: d.conn.AtomName(e.Type)}
		if e.Format == 32 {
			copy(msg.Data[:], e.Data.Data32)
		}
		return msg
	case xproto.ConfigureRequestEvent:
		return ConfigureRequest{
			Window:    Window(e.Window),
			Sibling:   Window(e.Sibling),
			X:         int(e.X),
			Y:         int(e.Y),
			Width:     int(e.Width),
			Height:    int(e.Height),
			Border:    int(e.BorderWidth),
			StackMode: e.StackMode,
			ValueMask: e.ValueMask,
		}
	case xproto.ConfigureNotifyEvent:
		if e.Window != root {
			return nil
		}
		return ConfigureNotify{Window: Window(e.Window), X: int(e.X), Y: int(e.Y), Width: int(e.Width), Height: int(e.Height)}
	case xproto.DestroyNotifyEvent:
		return DestroyNotify{Window: Window(e.Window)}
	case xproto.EnterNotifyEvent:
		if d.staleEnter(e.Sequence) {
			return nil
		}
		return EnterNotify{Window: Window(e.Event)}
	case xproto.ExposeEvent:
		return Expose{Window: Window(e.Window), Count: int(e.Count)}
	case xproto.FocusInEvent:
		return FocusIn{Window: Window(e.Event)}
	case xproto.KeyPressEvent:
		binding, _ := d.keys.Resolve(e.State, uint8(e.Detail))
		return KeyPress{
			Window:  Window(e.Event),
			State:   e.State,
			Keycode: uint8(e.Detail),
			Binding: binding,
			Time:    uint32(e.Time),
		}
	case xproto.MappingNotifyEvent:
		return MappingNotify{Request: e.Request}
	case xproto.MapRequestEvent:
		return MapRequest{Window: Window(e.Window)}
	case xproto.PropertyNotifyEvent:
		return PropertyNotify{
			Window:  Window(e.Window),
			Atom:    d.conn.AtomName(e.Atom),
			Deleted: e.State == xproto.PropertyDelete,
		}
	case xproto.UnmapNotifyEvent:
		// The send-event bit is not exposed by xgb, so ICCCM withdrawal
		// notices arrive as ordinary unmaps.
		return UnmapNotify{Window: Window(e.Window)}
	}
	return nil
}

// staleEnter reports whether an EnterNotify with sequence seq predates the
// last DiscardEnterEvents.
func (d *X11Display) staleEnter(seq uint16) bool {
	mark := d.discardEnter.Load()
	if mark&(1<<16) == 0 {
		return false
	}
	if int16(seq-uint16(mark)) <= 0 {
		return true
	}
	d.discardEnter.CompareAndSwap(mark, 0)
	return false
}
