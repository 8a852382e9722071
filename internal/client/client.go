// Package client holds the per-window state of managed windows.
package client

import (
	"slices"
	"sort"

	"github.com/1broseidon/tagwm/internal/geom"
	"github.com/1broseidon/tagwm/internal/platform"
)

// Tag names a workspace. Tags are single characters such as '1'.
type Tag byte

// TagOverview is the pseudo-tag of the overview workspace.
const TagOverview Tag = 0

func (t Tag) String() string {
	if t == TagOverview {
		return "overview"
	}
	return string(rune(t))
}

const (
	fallbackName  = "broken"
	fallbackTitle = "Unknown"
)

// Theme is the border styling shared by every client. The manager owns it
// and updates it in place on reload.
type Theme struct {
	BorderWidth  int
	FocusedColor uint32
	NormalColor  uint32
}

// Client is a managed top-level window. Clients are shared by pointer between
// the workspace rings, the dock list and the manager.
type Client struct {
	display platform.Display
	theme   *Theme
	window  platform.Window

	tag   Tag
	title string
	class string

	floating    bool
	wasFloating bool
	sticky      bool
	maximized   bool
	fullscreen  bool
	dock        bool
	above       bool

	rect      geom.Rect
	oldRect   geom.Rect
	border    int
	oldBorder int
	weight    int

	extras map[string]string
}

// New creates a client for window on tag. The window class is read once here.
func New(display platform.Display, theme *Theme, window platform.Window, tag Tag) *Client {
	c := &Client{
		display: display,
		theme:   theme,
		window:  window,
		tag:     tag,
		title:   fallbackName,
		class:   fallbackName,
		rect:    geom.Unplaced,
		oldRect: geom.Unplaced,
		weight:  -1,
		extras:  make(map[string]string),
	}
	if class, ok := display.Class(window); ok {
		c.class = class
	}
	return c
}

func (c *Client) Window() platform.Window { return c.window }

func (c *Client) Tag() Tag { return c.tag }

func (c *Client) SetTag(t Tag) { c.tag = t }

func (c *Client) Title() string { return c.title }

// UpdateTitle re-reads the window title.
func (c *Client) UpdateTitle() {
	if title, ok := c.display.Title(c.window); ok {
		c.title = title
		return
	}
	c.title = fallbackTitle
}

func (c *Client) Class() string { return c.class }

func (c *Client) Weight() int { return c.weight }

func (c *Client) SetWeight(w int) { c.weight = w }

func (c *Client) IsFloating() bool { return c.floating }

// SetFloating sets the floating flag and remembers the previous value so
// leaving fullscreen can restore it.
func (c *Client) SetFloating(floating bool) {
	c.wasFloating = c.floating
	c.floating = floating
}

func (c *Client) IsSticky() bool { return c.sticky }

func (c *Client) SetSticky(sticky bool) { c.sticky = sticky }

func (c *Client) IsMaximized() bool { return c.maximized }

func (c *Client) SetMaximized(maximized bool) { c.maximized = maximized }

func (c *Client) IsDock() bool { return c.dock }

func (c *Client) SetDock(dock bool) { c.dock = dock }

func (c *Client) IsAbove() bool { return c.above }

func (c *Client) SetAbove(above bool) { c.above = above }

func (c *Client) IsFullscreen() bool { return c.fullscreen }

// IsDialog queries the window type on every call.
func (c *Client) IsDialog() bool {
	return slices.Contains(c.display.WindowTypes(c.window), platform.TypeDialog)
}

// SetFullscreen puts the window into fullscreen over bounds, or restores the
// geometry and floating state it had before.
func (c *Client) SetFullscreen(bounds geom.Rect, enable bool) {
	if enable {
		c.display.SetWindowStates(c.window, []string{platform.StateFullscreen})
		c.fullscreen = true
		c.SetFloating(true)
		c.oldBorder = c.border
		c.SetBorder(0)
		c.Resize(bounds, false)
		c.RaiseWindow()
		return
	}
	c.display.SetWindowStates(c.window, nil)
	c.SetFloating(c.wasFloating)
	c.fullscreen = false
	c.SetBorder(c.oldBorder)
	c.Resize(c.oldRect, false)
}

func (c *Client) Rect() geom.Rect { return c.rect }

func (c *Client) OldRect() geom.Rect { return c.oldRect }

// SetSize sets the baseline geometry without touching the window.
func (c *Client) SetSize(x, y, width, height int) {
	c.rect = geom.New(x, y, width, height)
}

// SaveWindowSize snapshots the current geometry.
func (c *Client) SaveWindowSize() {
	c.oldRect = c.rect
}

// Resize configures the window to r. A temporary resize leaves the stored
// geometry alone.
func (c *Client) Resize(r geom.Rect, temporary bool) {
	if !temporary {
		c.SaveWindowSize()
		c.rect = r
	}
	c.display.MoveResize(c.window, r)
}

// MoveWindow moves the window, optionally making the position the new baseline.
func (c *Client) MoveWindow(x, y int, save bool) {
	if save {
		c.SaveWindowSize()
		c.rect.X = x
		c.rect.Y = y
	}
	c.display.Move(c.window, x, y)
}

// Show moves the window back to its geometry, or parks it off-screen to the
// left. Hidden windows stay mapped.
func (c *Client) Show(visible bool) {
	if visible {
		c.display.Move(c.window, c.rect.X, c.rect.Y)
		c.Invalidate()
		return
	}
	c.display.Move(c.window, -10*c.rect.Width, c.rect.Y)
}

// Invalidate forces the client to redraw by nudging its width.
func (c *Client) Invalidate() {
	saved := c.oldRect
	r := c.rect
	r.Width++
	c.Resize(r, false)
	r.Width--
	c.Resize(r, false)
	c.oldRect = saved
}

func (c *Client) RaiseWindow() { c.display.Raise(c.window) }

func (c *Client) LowerWindow() { c.display.Lower(c.window) }

// Border returns the border width.
func (c *Client) Border() int { return c.border }

func (c *Client) SetBorder(width int) {
	c.border = width
	c.display.SetBorderWidth(c.window, width)
}

// Configure sends a synthetic ConfigureNotify with the stored geometry.
func (c *Client) Configure() {
	c.display.SendConfigureNotify(c.window, c.rect, c.border)
}

func (c *Client) SetState(state platform.WMState) {
	c.display.SetWMState(c.window, state)
}

// SendProtocol delivers a WM_PROTOCOLS message if the window advertises the
// protocol, and reports whether it did.
func (c *Client) SendProtocol(protocol string) bool {
	if !slices.Contains(c.display.Protocols(c.window), protocol) {
		return false
	}
	c.display.SendProtocol(c.window, protocol)
	return true
}

// GrabButtons installs click-to-focus grabs on unfocused windows.
func (c *Client) GrabButtons(focused bool) {
	c.display.UngrabButtons(c.window)
	if !focused {
		c.display.GrabButtons(c.window)
	}
}

func (c *Client) Focus(focused bool) {
	if !focused {
		c.display.SetBorderColor(c.window, c.theme.NormalColor)
		return
	}
	c.display.SetBorderColor(c.window, c.theme.FocusedColor)
	c.display.SetActiveWindow(c.window)
	c.display.SetInputFocus(c.window)
	c.SendProtocol(platform.ProtocolTakeFocus)
}

// Kill asks the client to close, or kills its connection if it does not
// support WM_DELETE_WINDOW.
func (c *Client) Kill() {
	if !c.SendProtocol(platform.ProtocolDelete) {
		c.display.Kill(c.window)
	}
}

func (c *Client) Extra(key string) (string, bool) {
	v, ok := c.extras[key]
	return v, ok
}

func (c *Client) PutExtra(key, value string) {
	c.extras[key] = value
}

// Extras returns a copy of the extras map.
func (c *Client) Extras() map[string]string {
	out := make(map[string]string, len(c.extras))
	for k, v := range c.extras {
		out[k] = v
	}
	return out
}

// Rank orders clients by sticky, tag, floating and descending weight.
func Rank(clients []*Client) {
	sort.SliceStable(clients, func(i, j int) bool {
		a, b := clients[i], clients[j]
		if a.sticky != b.sticky {
			return !a.sticky
		}
		if a.tag != b.tag {
			return a.tag < b.tag
		}
		if a.floating != b.floating {
			return !a.floating
		}
		return a.weight > b.weight
	})
}
