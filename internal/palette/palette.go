// Package palette drives dmenu-like pickers for the interactive commands.
package palette

import (
	"fmt"
	"os/exec"
	"strings"
)

// Item is a single selectable entry in a palette menu.
type Item struct {
	Label    string // Display text
	Info     string // Hidden data returned on selection, e.g. a window id
	Meta     string // Hidden search keywords (rofi meta field)
	IsHeader bool   // Non-selectable section header (bold)
	IsActive bool   // Highlighted as current/active (rofi active row)
}

// Capabilities describes what features a backend supports.
type Capabilities struct {
	Markup        bool // Supports pango markup in labels
	NonSelectable bool // Supports non-selectable rows (headers)
	IndexOutput   bool // Can output selection index (not just text)
	RowStates     bool // Supports active row highlighting
}

// Backend shows a palette to the user.
type Backend interface {
	// Show displays items and returns the one the user picked.
	Show(prompt string, items []Item) (Item, error)

	// Ask reads a line of free text. An empty answer is ErrCancelled.
	Ask(prompt string) (string, error)

	Capabilities() Capabilities
}

// AutoDetect selects the first available backend in priority order.
func AutoDetect(extraArgs []string) (Backend, error) {
	name, err := DetectBackend()
	if err != nil {
		return nil, err
	}
	return NewBackend(name, extraArgs)
}

// NewBackend creates a backend by name. extraArgs are appended to every
// invocation, e.g. dmenu font or colour flags.
//
// Supported names: auto, rofi, dmenu, fuzzel, wofi.
func NewBackend(name string, extraArgs []string) (Backend, error) {
	var b *dmenuLikeBackend
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return AutoDetect(extraArgs)
	case "rofi":
		b = newRofiBackend()
	case "dmenu":
		b = newDmenuBackend()
	case "fuzzel":
		b = newFuzzelBackend()
	case "wofi":
		b = newWofiBackend()
	default:
		return nil, fmt.Errorf("unknown palette backend: %q (expected: auto, rofi, dmenu, fuzzel, wofi)", name)
	}
	if _, err := exec.LookPath(b.command); err != nil {
		return nil, fmt.Errorf("palette backend %q not found in PATH", b.command)
	}
	b.extraArgs = append([]string(nil), extraArgs...)
	return b, nil
}
