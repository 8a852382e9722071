// Package statusbar renders window manager state for an external bar.
package statusbar

import (
	"github.com/1broseidon/tagwm/internal/client"
)

// ClientState is one client of the current workspace, in ring order.
type ClientState struct {
	Tag     client.Tag
	Title   string
	Focused bool
}

// State is what a Logger renders after every change.
type State struct {
	Current      client.Tag
	ClientTags   []client.Tag
	Descriptions map[client.Tag]string
	Clients      []ClientState
}

// Logger receives a state dump after every change. Implementations must not
// block the manager and must swallow their own write errors.
type Logger interface {
	Dump(State)
	Close() error
}

// Dummy discards every dump.
type Dummy struct{}

func (Dummy) Dump(State) {}

func (Dummy) Close() error { return nil }
