package wm

import (
	"context"
	"fmt"
	"time"

	"github.com/1broseidon/tagwm/internal/client"
	"github.com/1broseidon/tagwm/internal/config"
	"github.com/1broseidon/tagwm/internal/geom"
	"github.com/1broseidon/tagwm/internal/workspace"
)

// ClientInfo describes one managed client.
type ClientInfo struct {
	Window     string            `json:"window"`
	Tag        string            `json:"tag"`
	Title      string            `json:"title"`
	Class      string            `json:"class"`
	UserTag    string            `json:"user_tag,omitempty"`
	Focused    bool              `json:"focused"`
	Floating   bool              `json:"floating"`
	Sticky     bool              `json:"sticky"`
	Maximized  bool              `json:"maximized"`
	Fullscreen bool              `json:"fullscreen"`
	Above      bool              `json:"above,omitempty"`
	Weight     int               `json:"weight"`
	Rect       geom.Rect         `json:"rect"`
	Extras     map[string]string `json:"extras,omitempty"`
}

// TagInfo describes one configured tag.
type TagInfo struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Layout      string    `json:"layout"`
	Clients     int       `json:"clients"`
	Current     bool      `json:"current"`
	Rect        geom.Rect `json:"rect"`
}

// Status is a summary of the manager.
type Status struct {
	SessionID     string `json:"session_id"`
	CurrentTag    string `json:"current_tag"`
	FocusedWindow string `json:"focused_window,omitempty"`
	FocusedTitle  string `json:"focused_title,omitempty"`
	Clients       int    `json:"clients"`
	Docks         int    `json:"docks"`
	Uptime        string `json:"uptime"`
	Screen        string `json:"screen"`
}

// WorkspaceDump is the ring of one workspace.
type WorkspaceDump struct {
	Tag         string             `json:"tag"`
	Description string             `json:"description,omitempty"`
	Layout      string             `json:"layout"`
	Rect        geom.Rect          `json:"rect"`
	Ring        workspace.Snapshot `json:"ring"`
}

// Dump is the complete manager state.
type Dump struct {
	Status     Status          `json:"status"`
	Workspaces []WorkspaceDump `json:"workspaces"`
	Clients    []ClientInfo    `json:"clients"`
	Docks      []string        `json:"docks,omitempty"`
	BackStack  []string        `json:"back_stack,omitempty"`
}

// Status returns a summary of the manager state.
func (m *Manager) Status(ctx context.Context) (Status, error) {
	var s Status
	err := m.Do(ctx, func() { s = m.status() })
	return s, err
}

// Clients lists every managed client.
func (m *Manager) Clients(ctx context.Context) ([]ClientInfo, error) {
	var out []ClientInfo
	err := m.Do(ctx, func() { out = m.clientInfos() })
	return out, err
}

// Tags lists the configured tags in configuration order.
func (m *Manager) Tags(ctx context.Context) ([]TagInfo, error) {
	var out []TagInfo
	err := m.Do(ctx, func() { out = m.tagInfos() })
	return out, err
}

// Dump returns the complete manager state.
func (m *Manager) Dump(ctx context.Context) (Dump, error) {
	var d Dump
	err := m.Do(ctx, func() { d = m.dump() })
	return d, err
}

// Exec runs a command as if its key had been pressed.
func (m *Manager) Exec(ctx context.Context, cmd config.Command, args []string) error {
	if err := cmd.ValidateArgs(args); err != nil {
		return err
	}
	var execErr error
	if err := m.Do(ctx, func() { execErr = m.exec(cmd, args) }); err != nil {
		return err
	}
	return execErr
}

// Reload re-reads and applies the configuration.
func (m *Manager) Reload(ctx context.Context) error {
	var reloadErr error
	if err := m.Do(ctx, func() { reloadErr = m.reload() }); err != nil {
		return err
	}
	return reloadErr
}

func (m *Manager) status() Status {
	s := Status{
		SessionID:  m.sessionID,
		CurrentTag: m.currentTag.String(),
		Clients:    len(m.AllClients()),
		Docks:      len(m.special),
		Uptime:     time.Since(m.started).Round(time.Second).String(),
		Screen:     fmt.Sprintf("%dx%d", m.screenWidth, m.screenHeight),
	}
	if c := m.CurrentFocused(); c != nil {
		s.FocusedWindow = windowID(c.Window())
		s.FocusedTitle = c.Title()
	}
	return s
}

func (m *Manager) clientInfos() []ClientInfo {
	focused := m.CurrentFocused()
	clients := m.AllClients()
	client.Rank(clients)
	out := make([]ClientInfo, 0, len(clients))
	for _, c := range clients {
		userTag, _ := c.Extra(extraUserTag)
		out = append(out, ClientInfo{
			Window:     windowID(c.Window()),
			Tag:        c.Tag().String(),
			Title:      c.Title(),
			Class:      c.Class(),
			UserTag:    userTag,
			Focused:    c == focused,
			Floating:   c.IsFloating(),
			Sticky:     c.IsSticky(),
			Maximized:  c.IsMaximized(),
			Fullscreen: c.IsFullscreen(),
			Above:      c.IsAbove(),
			Weight:     c.Weight(),
			Rect:       c.Rect(),
			Extras:     c.Extras(),
		})
	}
	return out
}

func (m *Manager) tagInfos() []TagInfo {
	out := make([]TagInfo, 0, len(m.tagOrder))
	for _, tag := range m.tagOrder {
		ws := m.workspaces[tag]
		out = append(out, TagInfo{
			Name:        tag.String(),
			Description: ws.Description,
			Layout:      ws.Layout.String(),
			Clients:     ws.Len(),
			Current:     tag == m.currentTag,
			Rect:        ws.Rect,
		})
	}
	return out
}

func (m *Manager) dump() Dump {
	d := Dump{
		Status:  m.status(),
		Clients: m.clientInfos(),
	}
	tags := append([]client.Tag{client.TagOverview}, m.realTags()...)
	for _, tag := range tags {
		ws := m.workspaces[tag]
		d.Workspaces = append(d.Workspaces, WorkspaceDump{
			Tag:         tag.String(),
			Description: ws.Description,
			Layout:      ws.Layout.String(),
			Rect:        ws.Rect,
			Ring:        ws.Snapshot(),
		})
	}
	for _, c := range m.special {
		d.Docks = append(d.Docks, windowID(c.Window()))
	}
	for _, c := range m.backStack {
		d.BackStack = append(d.BackStack, windowID(c.Window()))
	}
	return d
}
