package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xcursor"
	"github.com/BurntSushi/xgbutil/xevent"
)

const pointerGrabMask = xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease |
	xproto.EventMaskPointerMotion

const buttonMask = xproto.EventMaskButtonPress | xproto.EventMaskButtonRelease

// Cursors holds the glyph cursors used for the root window and for grabs.
type Cursors struct {
	Normal xproto.Cursor
	Move   xproto.Cursor
	Resize xproto.Cursor
}

// LoadCursors creates the cursor-font cursors and sets the normal one on
// the root window.
func (c *Connection) LoadCursors() Cursors {
	var cur Cursors
	cur.Normal, _ = xcursor.CreateCursor(c.XUtil, xcursor.LeftPtr)
	cur.Move, _ = xcursor.CreateCursor(c.XUtil, xcursor.Fleur)
	cur.Resize, _ = xcursor.CreateCursor(c.XUtil, xcursor.Sizing)
	if cur.Normal != 0 {
		xproto.ChangeWindowAttributes(c.Conn(), c.Root, xproto.CwCursor, []uint32{uint32(cur.Normal)})
	}
	return cur
}

// GrabPointer grabs the pointer on the root window for a drag.
func (c *Connection) GrabPointer(cursor xproto.Cursor) bool {
	reply, err := xproto.GrabPointer(c.Conn(), false, c.Root, pointerGrabMask,
		xproto.GrabModeAsync, xproto.GrabModeAsync, xproto.WindowNone, cursor,
		xproto.TimeCurrentTime).Reply()
	return err == nil && reply.Status == xproto.GrabStatusSuccess
}

func (c *Connection) UngrabPointer() {
	xproto.UngrabPointer(c.Conn(), xproto.TimeCurrentTime)
}

// QueryPointer returns the pointer position relative to the root window.
func (c *Connection) QueryPointer() (int, int, bool) {
	reply, err := xproto.QueryPointer(c.Conn(), c.Root).Reply()
	if err != nil {
		return 0, 0, false
	}
	return int(reply.RootX), int(reply.RootY), true
}

// WarpPointer moves the pointer to x, y relative to win.
func (c *Connection) WarpPointer(win xproto.Window, x, y int) {
	xproto.WarpPointer(c.Conn(), xproto.WindowNone, win, 0, 0, 0, 0, int16(x), int16(y))
}

// GrabAnyButton grabs every button synchronously so the first click on an
// unfocused window reaches the manager before the client.
func (c *Connection) GrabAnyButton(win xproto.Window) {
	c.UngrabButtons(win)
	xproto.GrabButton(c.Conn(), false, win, buttonMask,
		xproto.GrabModeSync, xproto.GrabModeAsync, xproto.WindowNone, xproto.CursorNone,
		xproto.ButtonIndexAny, xproto.ModMaskAny)
}

// GrabModButtons grabs the given buttons under mods, repeated for every
// lock-modifier combination.
func (c *Connection) GrabModButtons(win xproto.Window, mods uint16, buttons ...byte) {
	c.UngrabButtons(win)
	for _, b := range buttons {
		for _, ignore := range xevent.IgnoreMods {
			xproto.GrabButton(c.Conn(), false, win, buttonMask,
				xproto.GrabModeAsync, xproto.GrabModeAsync, xproto.WindowNone, xproto.CursorNone,
				b, mods|ignore)
		}
	}
}

func (c *Connection) UngrabButtons(win xproto.Window) {
	xproto.UngrabButton(c.Conn(), xproto.ButtonIndexAny, win, xproto.ModMaskAny)
}

// ReplayPointer releases a synchronously grabbed click to the client.
func (c *Connection) ReplayPointer() {
	xproto.AllowEvents(c.Conn(), xproto.AllowReplayPointer, xproto.TimeCurrentTime)
}
