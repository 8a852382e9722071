package wm

import (
	"sort"

	"github.com/1broseidon/tagwm/internal/client"
)

// arrangeWindows lays out the current workspace. Other workspaces are moved
// off-screen, except in the overview, which is rebuilt from every client and
// placed with temporary resizes.
func (m *Manager) arrangeWindows() {
	overview := m.currentTag == client.TagOverview
	if !overview {
		for _, tag := range m.realTags() {
			if tag != m.currentTag {
				m.workspaces[tag].Show(false)
			}
		}
	}

	ws := m.CurrentWorkspace()
	if overview {
		clients := m.AllClients()
		sort.SliceStable(clients, func(i, j int) bool {
			return clients[i].Tag() > clients[j].Tag()
		})
		ws.Clear()
		for _, c := range clients {
			if !c.IsSticky() {
				ws.NewClient(c, false)
			}
		}
	}

	usable := m.usableRect(ws.Rect)
	for _, p := range ws.Placements(usable) {
		if overview {
			p.Client.Resize(p.Rect, true)
			continue
		}
		r := p.Rect
		if p.Client.IsMaximized() {
			r = usable
		}
		p.Client.Resize(r, false)
	}

	if !overview {
		for _, c := range ws.SelectClients((*client.Client).IsFloating) {
			// Fullscreen geometry is re-applied without saving, so oldRect
			// keeps the pre-fullscreen rect for the restore.
			c.Resize(c.Rect(), c.IsFullscreen())
			c.RaiseWindow()
		}
	}
	ws.Restack()
	// Restack lowers the tiled ring, so these go last.
	for _, c := range ws.Clients() {
		if c.IsFullscreen() || c.IsAbove() {
			c.RaiseWindow()
		}
	}
}
