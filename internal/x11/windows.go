package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// WindowAttributes is what the manager needs to decide whether to manage a
// window.
type WindowAttributes struct {
	X, Y, Width, Height int
	OverrideRedirect    bool
}

// Attributes reads the override-redirect flag and the geometry of a window.
func (c *Connection) Attributes(win xproto.Window) (WindowAttributes, error) {
	attrCookie := xproto.GetWindowAttributes(c.Conn(), win)
	geomCookie := xproto.GetGeometry(c.Conn(), xproto.Drawable(win))
	attrs, err := attrCookie.Reply()
	if err != nil {
		return WindowAttributes{}, err
	}
	geom, err := geomCookie.Reply()
	if err != nil {
		return WindowAttributes{}, err
	}
	return WindowAttributes{
		X:                int(geom.X),
		Y:                int(geom.Y),
		Width:            int(geom.Width),
		Height:           int(geom.Height),
		OverrideRedirect: attrs.OverrideRedirect,
	}, nil
}

// Title prefers _NET_WM_NAME and falls back to WM_NAME.
func (c *Connection) Title(win xproto.Window) (string, error) {
	if name, err := ewmh.WmNameGet(c.XUtil, win); err == nil && name != "" {
		return name, nil
	}
	return icccm.WmNameGet(c.XUtil, win)
}

// Class returns the class part of WM_CLASS.
func (c *Connection) Class(win xproto.Window) (string, error) {
	class, err := icccm.WmClassGet(c.XUtil, win)
	if err != nil {
		return "", err
	}
	return class.Class, nil
}

func (c *Connection) WindowTypes(win xproto.Window) []string {
	types, _ := ewmh.WmWindowTypeGet(c.XUtil, win)
	return types
}

func (c *Connection) WindowStates(win xproto.Window) []string {
	states, _ := ewmh.WmStateGet(c.XUtil, win)
	return states
}

func (c *Connection) SetWindowStates(win xproto.Window, states []string) error {
	return ewmh.WmStateSet(c.XUtil, win, states)
}

func (c *Connection) Protocols(win xproto.Window) []string {
	protocols, _ := icccm.WmProtocolsGet(c.XUtil, win)
	return protocols
}

// SendProtocol delivers a WM_PROTOCOLS client message such as
// WM_DELETE_WINDOW.
func (c *Connection) SendProtocol(win xproto.Window, protocol string) error {
	wmProtocols, err := c.atom("WM_PROTOCOLS")
	if err != nil {
		return err
	}
	atom, err := c.atom(protocol)
	if err != nil {
		return err
	}
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   wmProtocols,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{uint32(atom), xproto.TimeCurrentTime, 0, 0, 0}),
	}
	xproto.SendEvent(c.Conn(), false, win, xproto.EventMaskNoEvent, string(ev.Bytes()))
	return nil
}

// SetWMState writes the ICCCM WM_STATE property.
func (c *Connection) SetWMState(win xproto.Window, state uint) error {
	return icccm.WmStateSet(c.XUtil, win, &icccm.WmState{State: state})
}

// MoveResizeWindow configures position and size. Unlike xwindow it does
// not track geometry, the manager owns that.
func (c *Connection) MoveResizeWindow(win xproto.Window, x, y, width, height int) {
	xproto.ConfigureWindow(c.Conn(), win,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{uint32(int32(x)), uint32(int32(y)), uint32(max(width, 1)), uint32(max(height, 1))})
}

func (c *Connection) MoveWindow(win xproto.Window, x, y int) {
	xproto.ConfigureWindow(c.Conn(), win, xproto.ConfigWindowX|xproto.ConfigWindowY,
		[]uint32{uint32(int32(x)), uint32(int32(y))})
}

func (c *Connection) SetBorderWidth(win xproto.Window, width int) {
	xproto.ConfigureWindow(c.Conn(), win, xproto.ConfigWindowBorderWidth, []uint32{uint32(width)})
}

func (c *Connection) SetBorderColor(win xproto.Window, pixel uint32) {
	xproto.ChangeWindowAttributes(c.Conn(), win, xproto.CwBorderPixel, []uint32{pixel})
}

// Stack restacks win with one of the xproto.StackMode values.
func (c *Connection) Stack(win xproto.Window, mode byte) {
	xproto.ConfigureWindow(c.Conn(), win, xproto.ConfigWindowStackMode, []uint32{uint32(mode)})
}

// StackBelow places win directly below sibling.
func (c *Connection) StackBelow(win, sibling xproto.Window) {
	xproto.ConfigureWindow(c.Conn(), win,
		xproto.ConfigWindowSibling|xproto.ConfigWindowStackMode,
		[]uint32{uint32(sibling), uint32(xproto.StackModeBelow)})
}

// Configure forwards a raw configure with values ordered as the mask bits.
func (c *Connection) Configure(win xproto.Window, mask uint16, values []uint32) {
	xproto.ConfigureWindow(c.Conn(), win, mask, values)
}

// SendConfigureNotify tells a client its geometry without moving it, as
// ICCCM requires when a configure request is refused.
func (c *Connection) SendConfigureNotify(win xproto.Window, x, y, width, height, border int) {
	ev := xproto.ConfigureNotifyEvent{
		Event:        win,
		Window:       win,
		AboveSibling: xproto.WindowNone,
		X:            int16(x),
		Y:            int16(y),
		Width:        uint16(width),
		Height:       uint16(height),
		BorderWidth:  uint16(border),
	}
	xproto.SendEvent(c.Conn(), false, win, xproto.EventMaskStructureNotify, string(ev.Bytes()))
}

func (c *Connection) SetInputFocus(win xproto.Window) {
	xproto.SetInputFocus(c.Conn(), xproto.InputFocusPointerRoot, win, xproto.TimeCurrentTime)
}

func (c *Connection) MapWindow(win xproto.Window) {
	xproto.MapWindow(c.Conn(), win)
}

// SelectInput replaces the event mask the manager selects on win.
func (c *Connection) SelectInput(win xproto.Window, mask uint32) {
	xproto.ChangeWindowAttributes(c.Conn(), win, xproto.CwEventMask, []uint32{mask})
}

// KillClient forcefully disconnects the client owning win.
func (c *Connection) KillClient(win xproto.Window) {
	xproto.KillClient(c.Conn(), uint32(win))
}
