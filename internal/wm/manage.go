package wm

import (
	"slices"

	"github.com/1broseidon/tagwm/internal/client"
	"github.com/1broseidon/tagwm/internal/platform"
)

// manage starts managing a newly mapped window. New windows land on the
// current tag, or on the default tag while the overview is shown.
func (m *Manager) manage(w platform.Window, attrs platform.Attributes) {
	tag := m.currentTag
	if tag == client.TagOverview {
		tag = m.defaultTag
	}
	c := client.New(m.display, m.theme, w, tag)
	c.UpdateTitle()
	g := attrs.Geometry
	c.SetSize(g.X, g.Y, g.Width, g.Height)
	c.SaveWindowSize()

	m.logger.Debug("managing window",
		"window", windowID(w),
		"title", c.Title(),
		"class", c.Class(),
		"tag", tag.String())

	if !slices.Contains(m.display.WindowTypes(w), platform.TypeDock) {
		c.SetBorder(m.theme.BorderWidth)
		c.Focus(false)
	}
	m.updateWindowType(c)
	m.display.SelectClientInput(w)
	c.GrabButtons(false)
	m.display.MapWindow(w)

	m.applyRules(c)

	if c.IsDock() {
		m.special = append(m.special, c)
		m.dumpStatus()
		return
	}
	m.workspaces[c.Tag()].NewClient(c, c.IsFloating())
	m.updateClientList()
	m.arrangeWindows()
	if c.Tag() != m.currentTag {
		// NewClient focused a window that is now off-screen.
		if cur := m.CurrentFocused(); cur != nil {
			m.CurrentWorkspace().SetFocus(cur)
		}
	}
	m.dumpStatus()
}

// applyRules runs every matching rule in order.
func (m *Manager) applyRules(c *client.Client) {
	dialog := c.IsDialog()
	for _, rule := range m.cfg.Rules {
		if !rule.Match.Matches(c.Class(), c.Title(), dialog) {
			continue
		}
		if rule.Floating != nil {
			c.SetFloating(*rule.Floating)
		}
		if rule.Sticky != nil {
			c.SetSticky(*rule.Sticky)
		}
		if rule.Tag != "" {
			if tag := client.Tag(rule.Tag[0]); m.workspaces[tag] != nil && tag != client.TagOverview {
				c.SetTag(tag)
			}
		}
		if rule.Weight != nil {
			c.SetWeight(*rule.Weight)
		}
		for k, v := range rule.Extras {
			c.PutExtra(k, v)
		}
	}
	// Sticky clients always live on the tag being shown.
	if c.IsSticky() && m.currentTag != client.TagOverview {
		c.SetTag(m.currentTag)
	}
}

// updateWindowType applies the EWMH state and type hints of c.
func (m *Manager) updateWindowType(c *client.Client) {
	for _, state := range m.display.WindowStates(c.Window()) {
		switch state {
		case platform.StateFullscreen:
			if !c.IsFullscreen() {
				m.logger.Debug("window requested fullscreen", "window", windowID(c.Window()))
				m.SetFullscreen(c, true)
			}
		case platform.StateAbove:
			c.SetAbove(true)
		case platform.StateModal:
			c.SetFloating(true)
		}
	}
	if slices.Contains(m.display.WindowTypes(c.Window()), platform.TypeDock) {
		m.logger.Debug("found dock window", "window", windowID(c.Window()), "title", c.Title())
		c.SetDock(true)
	}
}

// unmanage forgets c. The window gets the withdrawn state unless it was
// destroyed.
func (m *Manager) unmanage(c *client.Client, destroyed bool) {
	if !destroyed {
		c.SetState(platform.WithdrawnState)
	}
	if m.currentTag == client.TagOverview {
		m.workspaces[client.TagOverview].RemoveClient(c)
	}
	if ws, ok := m.workspaces[c.Tag()]; ok {
		ws.RemoveClient(c)
	}
	m.backStack = slices.DeleteFunc(m.backStack, func(b *client.Client) bool {
		return b.Window() == c.Window()
	})
	m.special = slices.DeleteFunc(m.special, func(s *client.Client) bool {
		return s.Window() == c.Window()
	})
	m.logger.Debug("unmanaged window", "window", windowID(c.Window()), "destroyed", destroyed)
	m.updateClientList()
	m.arrangeWindows()
	m.dumpStatus()
}
