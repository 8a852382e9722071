package x11

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// ErrOtherManager is returned by BecomeManager when another client already
// redirects the root window's substructure.
var ErrOtherManager = errors.New("another window manager is already running")

// rootEventMask is what a window manager listens for on the root window.
const rootEventMask = xproto.EventMaskSubstructureRedirect |
	xproto.EventMaskSubstructureNotify |
	xproto.EventMaskStructureNotify |
	xproto.EventMaskButtonPress |
	xproto.EventMaskEnterWindow |
	xproto.EventMaskLeaveWindow |
	xproto.EventMaskPropertyChange

// ClientEventMask is selected on every managed window.
const ClientEventMask = xproto.EventMaskEnterWindow |
	xproto.EventMaskFocusChange |
	xproto.EventMaskPropertyChange

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	// check is the _NET_SUPPORTING_WM_CHECK child window.
	check xproto.Window
	atoms *Atoms
}

// NewConnection connects to the display named by $DISPLAY.
func NewConnection() (*Connection, error) {
	return NewConnectionDisplay("")
}

// NewConnectionDisplay connects to the named display, or $DISPLAY when the
// name is empty.
func NewConnectionDisplay(display string) (*Connection, error) {
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	c := &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}
	if c.atoms, err = c.InternAtoms(); err != nil {
		xu.Conn().Close()
		return nil, err
	}
	return c, nil
}

// Conn returns the raw protocol connection.
func (c *Connection) Conn() *xgb.Conn {
	return c.XUtil.Conn()
}

// BecomeManager selects substructure redirection on the root window. Only
// one client may hold it.
func (c *Connection) BecomeManager() error {
	err := xproto.ChangeWindowAttributesChecked(c.Conn(), c.Root,
		xproto.CwEventMask, []uint32{rootEventMask}).Check()
	if err == nil {
		return nil
	}
	if _, ok := err.(xproto.AccessError); ok {
		return ErrOtherManager
	}
	return fmt.Errorf("failed to select root events: %w", err)
}

// ScreenSize returns the root window size in pixels.
func (c *Connection) ScreenSize() (int, int) {
	s := c.XUtil.Screen()
	return int(s.WidthInPixels), int(s.HeightInPixels)
}

// NextEvent blocks for the next event or asynchronous error. Both are nil
// once the connection is closed.
func (c *Connection) NextEvent() (xgb.Event, xgb.Error) {
	return c.Conn().WaitForEvent()
}

// Sync waits until the server has processed every request sent so far and
// returns the sequence number of the round trip.
func (c *Connection) Sync() (uint16, bool) {
	reply, err := xproto.GetInputFocus(c.Conn()).Reply()
	if err != nil {
		return 0, false
	}
	return reply.Sequence, true
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	if c.check != 0 {
		xproto.DestroyWindow(c.Conn(), c.check)
	}
	c.XUtil.Conn().Close()
}
