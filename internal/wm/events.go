package wm

import (
	"fmt"
	"slices"

	"github.com/1broseidon/tagwm/internal/client"
	"github.com/1broseidon/tagwm/internal/platform"
)

const (
	atomWMState       = "_NET_WM_STATE"
	atomActiveWindow  = "_NET_ACTIVE_WINDOW"
	atomWMName        = "WM_NAME"
	atomNetWMName     = "_NET_WM_NAME"
	atomNormalHints   = "WM_NORMAL_HINTS"
	atomWMWindowType  = "_NET_WM_WINDOW_TYPE"
	wmStateRemove     = 0
	wmStateAdd        = 1
	wmStateToggle     = 2
	geometryValueMask = platform.ConfigX | platform.ConfigY | platform.ConfigWidth | platform.ConfigHeight
)

// HandleEvent dispatches one display event. Only fatal protocol errors and
// a closed display are returned; everything else is handled or logged.
func (m *Manager) HandleEvent(ev platform.Event) error {
	switch e := ev.(type) {
	case platform.ButtonPress:
		return m.onButtonPress(e)
	case platform.ClientMessage:
		m.onClientMessage(e)
	case platform.ConfigureRequest:
		m.onConfigureRequest(e)
	case platform.ConfigureNotify:
		m.onConfigureNotify(e)
	case platform.DestroyNotify:
		if c := m.lookup(e.Window); c != nil {
			m.logger.Debug("window destroyed", "window", windowID(e.Window), "title", c.Title())
			m.unmanage(c, true)
		}
	case platform.FocusIn:
		m.onFocusIn(e)
	case platform.KeyPress:
		m.onKeyPress(e)
	case platform.MappingNotify:
		m.onMappingNotify(e)
	case platform.MapRequest:
		m.onMapRequest(e)
	case platform.PropertyNotify:
		m.onPropertyNotify(e)
	case platform.UnmapNotify:
		m.onUnmapNotify(e)
	case platform.ProtocolError:
		if e.Transient() {
			m.logger.Debug("ignoring protocol error", "error", e.Error())
			return nil
		}
		m.logger.Error("fatal protocol error", "error", e.Error())
		return fmt.Errorf("%w: %v", ErrFatalProtocol, e)
	case platform.EnterNotify, platform.Expose, platform.MotionNotify, platform.ButtonRelease:
	}
	return nil
}

func (m *Manager) onButtonPress(e platform.ButtonPress) error {
	ws := m.CurrentWorkspace()
	c := ws.ClientByWindow(e.Window)
	if c == nil {
		return nil
	}
	ws.SetFocus(c)
	ws.Restack()
	m.dumpStatus()

	if e.State&m.modMask == 0 {
		return nil
	}
	switch e.Button {
	case platform.Button1:
		return m.MoveMouse(c)
	case platform.Button3:
		return m.ResizeMouse(c)
	}
	return nil
}

func (m *Manager) onClientMessage(e platform.ClientMessage) {
	c := m.ClientByWindow(e.Window)
	if c == nil {
		return
	}
	m.logger.Debug("client message",
		"window", windowID(e.Window),
		"type", e.Type,
		"data", fmt.Sprint(e.Data[:3]))

	switch e.Type {
	case atomWMState:
		props := []string{m.display.AtomName(e.Data[1]), m.display.AtomName(e.Data[2])}
		if slices.Contains(props, platform.StateFullscreen) {
			enable := e.Data[0] == wmStateAdd || (e.Data[0] == wmStateToggle && !c.IsFullscreen())
			if enable != c.IsFullscreen() {
				m.SetFullscreen(c, enable)
			}
		}
		if slices.Contains(props, platform.StateModal) {
			c.SetFloating(true)
			m.arrangeWindows()
		}
	case atomActiveWindow:
		m.activate(c)
	}
}

func (m *Manager) onConfigureRequest(e platform.ConfigureRequest) {
	defer m.display.Sync()

	c := m.ClientByWindow(e.Window)
	if c == nil {
		m.display.ConfigurePassthrough(e, e.ValueMask)
		return
	}
	switch {
	case m.currentTag == client.TagOverview:
		m.display.ConfigurePassthrough(e, e.ValueMask&^geometryValueMask)
	case c.IsFloating() && !c.IsFullscreen() && (c.IsSticky() || c.Tag() == m.currentTag):
		r := c.Rect()
		if e.ValueMask&platform.ConfigX != 0 {
			r.X = e.X
		}
		if e.ValueMask&platform.ConfigY != 0 {
			r.Y = e.Y
		}
		if e.ValueMask&platform.ConfigWidth != 0 {
			r.Width = e.Width
		}
		if e.ValueMask&platform.ConfigHeight != 0 {
			r.Height = e.Height
		}
		c.Resize(r, false)
	default:
		c.Configure()
		c.Show(c.Tag() == m.currentTag)
	}
}

func (m *Manager) onConfigureNotify(e platform.ConfigureNotify) {
	if e.Window != m.display.Root() {
		return
	}
	if e.Width == m.screenWidth && e.Height == m.screenHeight {
		return
	}
	m.logger.Info("screen resized", "width", e.Width, "height", e.Height)
	m.screenWidth = e.Width
	m.screenHeight = e.Height
	m.refreshMonitors()
	m.arrangeWindows()
}

// onFocusIn pulls focus back to the focused client when another window
// took it.
func (m *Manager) onFocusIn(e platform.FocusIn) {
	c := m.CurrentFocused()
	if c == nil || c.Window() == e.Window {
		return
	}
	ws := m.CurrentWorkspace()
	if !c.IsFloating() {
		ws.Restack()
	}
	ws.SetFocus(c)
	m.dumpStatus()
}

func (m *Manager) onKeyPress(e platform.KeyPress) {
	kb, ok := m.bindings[e.Binding]
	if !ok {
		m.logger.Debug("unbound key", "binding", e.Binding, "keycode", e.Keycode, "state", e.State)
		return
	}
	if err := m.exec(kb.Command, kb.Args); err != nil {
		m.logger.Warn("failed to run command", "key", kb.Key, "command", string(kb.Command), "error", err)
	}
}

func (m *Manager) onMappingNotify(e platform.MappingNotify) {
	m.display.RefreshKeymap()
	if e.Request == platform.MappingKeyboard || e.Request == platform.MappingModifier {
		m.grabKeys()
	}
}

func (m *Manager) onMapRequest(e platform.MapRequest) {
	attrs, ok := m.display.Attributes(e.Window)
	if !ok || attrs.OverrideRedirect {
		return
	}
	if m.lookup(e.Window) != nil {
		return
	}
	m.manage(e.Window, attrs)
}

func (m *Manager) onPropertyNotify(e platform.PropertyNotify) {
	c := m.ClientByWindow(e.Window)
	if c == nil {
		return
	}
	switch e.Atom {
	case atomWMName, atomNetWMName:
		c.UpdateTitle()
		m.dumpStatus()
	case atomNormalHints:
		// Overview geometry is temporary, so size hints are ignored there.
		if m.currentTag != client.TagOverview {
			c.Invalidate()
			c.Show(c.Tag() == m.currentTag)
		}
	case atomWMWindowType:
		m.updateWindowType(c)
	}
}

func (m *Manager) onUnmapNotify(e platform.UnmapNotify) {
	c := m.lookup(e.Window)
	if c == nil {
		return
	}
	if e.Synthetic {
		c.SetState(platform.WithdrawnState)
	} else {
		m.unmanage(c, false)
	}
	m.dumpStatus()
}
