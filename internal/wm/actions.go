package wm

import (
	"github.com/1broseidon/tagwm/internal/client"
	"github.com/1broseidon/tagwm/internal/geom"
	"github.com/1broseidon/tagwm/internal/workspace"
)

// minExpandSize is the smallest width or height ExpandWidth and ExpandHeight
// will leave a window with.
const minExpandSize = 10

// ToggleMaximize flips the maximized flag of the focused client.
func (m *Manager) ToggleMaximize() {
	if m.currentTag == client.TagOverview {
		return
	}
	c := m.CurrentFocused()
	if c == nil {
		return
	}
	c.SetMaximized(!c.IsMaximized())
	m.arrangeWindows()
}

// ToggleFloating moves the focused client between the tiled and floating sets.
func (m *Manager) ToggleFloating() {
	if m.currentTag == client.TagOverview {
		return
	}
	c := m.CurrentFocused()
	if c == nil || c.IsFullscreen() {
		return
	}
	c.SetFloating(!c.IsFloating())
	m.arrangeWindows()
}

// SetFullscreen enters or leaves fullscreen for c. The bounds are the monitor
// of the client's workspace.
func (m *Manager) SetFullscreen(c *client.Client, enable bool) {
	bounds := m.screenRect()
	if ws, ok := m.workspaces[c.Tag()]; ok {
		bounds = ws.Rect
	}
	c.SetFullscreen(bounds, enable)
	if !enable {
		m.arrangeWindows()
	}
}

// SetFocusIndex focuses the i-th client of the current ring. A negative index
// selects the last client.
func (m *Manager) SetFocusIndex(i int) {
	clients := m.CurrentClients()
	if i < 0 {
		i = len(clients) - 1
	}
	if i < 0 || i >= len(clients) {
		return
	}
	m.SetFocus(clients[i])
}

// SetFocus focuses c in the current workspace and restacks.
func (m *Manager) SetFocus(c *client.Client) {
	ws := m.CurrentWorkspace()
	previous := ws.Current()
	ws.SetFocus(c)
	ws.Restack()
	if previous != nil && previous != c && ws.Current() == c {
		m.pushBack(previous)
	}
	m.dumpStatus()
}

// ShiftFocus circles focus forward for a positive inc and backward otherwise.
func (m *Manager) ShiftFocus(inc int) {
	dir := workspace.Forward
	if inc <= 0 {
		dir = workspace.Backward
	}
	m.CurrentWorkspace().CircleFocus(dir)
	m.dumpStatus()
}

// KillClient detaches the focused client and asks it to close.
func (m *Manager) KillClient() {
	c := m.CurrentWorkspace().KillClient()
	if c == nil {
		return
	}
	if m.currentTag == client.TagOverview {
		if ws, ok := m.workspaces[c.Tag()]; ok {
			ws.RemoveClient(c)
		}
	}
	m.logger.Debug("killed client", "window", windowID(c.Window()), "title", c.Title())
	m.updateClientList()
	m.arrangeWindows()
	m.dumpStatus()
}

// ShiftWindow moves the focused floating client by dx, dy, keeping it inside
// the screen.
func (m *Manager) ShiftWindow(dx, dy int) {
	c := m.CurrentFocused()
	if c == nil || !c.IsFloating() || c.IsFullscreen() {
		return
	}
	r := c.Rect()
	x := clamp(r.X+dx, 0, m.screenWidth-r.Width)
	y := clamp(r.Y+dy, 0, m.screenHeight-r.Height)
	c.MoveWindow(x, y, true)
	m.display.Sync()
}

// ExpandWidth grows or shrinks the focused floating client.
func (m *Manager) ExpandWidth(delta int) {
	c := m.CurrentFocused()
	if c == nil || !c.IsFloating() || c.IsFullscreen() {
		return
	}
	r := c.Rect()
	r.Width = min(r.Width+delta, m.screenWidth)
	if r.Width < minExpandSize {
		return
	}
	c.Resize(r, false)
}

// ExpandHeight grows or shrinks the focused floating client.
func (m *Manager) ExpandHeight(delta int) {
	c := m.CurrentFocused()
	if c == nil || !c.IsFloating() || c.IsFullscreen() {
		return
	}
	r := c.Rect()
	r.Height = min(r.Height+delta, m.screenHeight)
	if r.Height < minExpandSize {
		return
	}
	c.Resize(r, false)
}

// Zoom moves the focused client to the front of its ring. In the overview it
// jumps to the focused client's tag instead.
func (m *Manager) Zoom() {
	if m.currentTag == client.TagOverview {
		c := m.CurrentFocused()
		if c == nil {
			return
		}
		m.SelectTag(c.Tag())
		m.SetFocus(c)
		return
	}
	m.CurrentWorkspace().Zoom()
	m.arrangeWindows()
	m.dumpStatus()
}

// activate handles a focus request from a client or an IPC caller.
func (m *Manager) activate(c *client.Client) {
	if m.currentTag != client.TagOverview && c.Tag() != m.currentTag {
		m.SelectTag(c.Tag())
	}
	m.SetFocus(c)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return v
}

// usableRect is the area left for clients once the bar and borders are
// taken off.
func (m *Manager) usableRect(area geom.Rect) geom.Rect {
	bar := m.cfg.BarHeight
	bw := m.theme.BorderWidth
	return geom.New(area.X, area.Y+bar, area.Width-2*bw, area.Height-bar-2*bw)
}
