package wm

import (
	"github.com/1broseidon/tagwm/internal/client"
)

// SelectTag makes tag the current workspace. Sticky clients follow the
// switch. Selecting the overview remembers the tag it was entered from so
// leaving it returns there.
func (m *Manager) SelectTag(tag client.Tag) {
	if _, ok := m.workspaces[tag]; !ok {
		m.logger.Warn("failed to select tag", "tag", tag.String(), "error", "no such workspace")
		return
	}
	previous := m.CurrentFocused()

	if tag == client.TagOverview {
		if m.currentTag != client.TagOverview {
			m.lastTag = m.currentTag
		}
		m.currentTag = tag
	} else {
		source := m.currentTag
		if source == client.TagOverview {
			m.workspaces[client.TagOverview].Clear()
			source = m.lastTag
		}
		var sticky []*client.Client
		if src, ok := m.workspaces[source]; ok && source != tag {
			sticky = src.SelectClients((*client.Client).IsSticky)
			for _, c := range sticky {
				src.RemoveClient(c)
			}
		}
		m.currentTag = tag
		m.lastTag = tag
		dst := m.workspaces[tag]
		for _, c := range sticky {
			c.SetTag(tag)
			dst.NewClient(c, true)
		}
	}

	m.display.SetInputFocus(m.display.Root())
	m.arrangeWindows()
	focused := m.CurrentFocused()
	if focused != nil {
		ws := m.CurrentWorkspace()
		ws.SetFocus(focused)
		ws.Restack()
	}
	if previous != nil && previous != focused {
		m.pushBack(previous)
	}
	m.publishDesktops()
	m.logger.Debug("tag selected", "tag", tag.String(), "clients", m.CurrentWorkspace().Len())
	m.dumpStatus()
}

// AddTag moves the focused client to tag and follows it there. It does
// nothing in the overview.
func (m *Manager) AddTag(tag client.Tag) {
	if m.currentTag == client.TagOverview {
		return
	}
	dst, ok := m.workspaces[tag]
	if !ok || tag == client.TagOverview {
		m.logger.Warn("failed to move client", "tag", tag.String(), "error", "no such workspace")
		return
	}
	if c := m.CurrentWorkspace().DetachCurrent(); c != nil {
		c.SetTag(tag)
		dst.NewClient(c, false)
	}
	m.SelectTag(tag)
}

// ToggleOverview enters the overview, or leaves it for the tag it was
// entered from.
func (m *Manager) ToggleOverview() {
	if m.currentTag == client.TagOverview {
		m.SelectTag(m.lastTag)
		return
	}
	m.SelectTag(client.TagOverview)
}

// ToggleBack focuses the most recent client on the back-stack that is still
// managed, switching tags when needed.
func (m *Manager) ToggleBack() {
	var target *client.Client
	for len(m.backStack) > 0 {
		c := m.backStack[len(m.backStack)-1]
		m.backStack = m.backStack[:len(m.backStack)-1]
		if m.ClientByWindow(c.Window()) != nil {
			target = c
			break
		}
	}
	if target == nil {
		return
	}
	previous := m.CurrentFocused()
	if target.Tag() != m.currentTag {
		m.SelectTag(target.Tag())
	}
	m.CurrentWorkspace().SetFocus(target)
	m.CurrentWorkspace().Restack()
	if previous != nil && previous != target {
		m.pushBack(previous)
	}
	m.dumpStatus()
}
