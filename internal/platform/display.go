package platform

import "github.com/1broseidon/tagwm/internal/geom"

// Window is a window-system neutral window identifier.
type Window uint32

// None is the null window.
const None Window = 0

// EWMH window states and types the manager reacts to.
const (
	StateFullscreen = "_NET_WM_STATE_FULLSCREEN"
	StateAbove      = "_NET_WM_STATE_ABOVE"
	StateModal      = "_NET_WM_STATE_MODAL"

	TypeDock   = "_NET_WM_WINDOW_TYPE_DOCK"
	TypeDialog = "_NET_WM_WINDOW_TYPE_DIALOG"

	ProtocolDelete    = "WM_DELETE_WINDOW"
	ProtocolTakeFocus = "WM_TAKE_FOCUS"
)

// WMState is the ICCCM WM_STATE value.
type WMState int

const (
	WithdrawnState WMState = 0
	NormalState    WMState = 1
	IconicState    WMState = 3
)

// Cursor selects the pointer shape used while the pointer is grabbed.
type Cursor int

const (
	CursorNormal Cursor = iota
	CursorMove
	CursorResize
)

// Attributes is the subset of window attributes read on map requests.
type Attributes struct {
	Geometry         geom.Rect
	OverrideRedirect bool
}

// Pointer describes the pointer position relative to the root window.
type Pointer struct {
	X, Y int
}

// Display is everything the window manager core needs from the window system.
// All calls are best-effort: failures are reported asynchronously as
// ProtocolError events and never returned to the caller.
type Display interface {
	Root() Window
	ScreenSize() (width, height int)
	// Heads returns the monitor rectangles in output order.
	Heads() []geom.Rect
	AtomName(atom uint32) string

	Attributes(w Window) (Attributes, bool)
	Title(w Window) (string, bool)
	Class(w Window) (string, bool)
	WindowTypes(w Window) []string
	WindowStates(w Window) []string
	SetWindowStates(w Window, states []string)
	Protocols(w Window) []string
	SendProtocol(w Window, protocol string)
	SetWMState(w Window, state WMState)

	MoveResize(w Window, r geom.Rect)
	Move(w Window, x, y int)
	SetBorderWidth(w Window, width int)
	SetBorderColor(w Window, color uint32)
	Raise(w Window)
	Lower(w Window)
	StackBelow(w, sibling Window)
	SendConfigureNotify(w Window, r geom.Rect, border int)
	ConfigurePassthrough(ev ConfigureRequest, mask uint16)

	SetInputFocus(w Window)
	SetActiveWindow(w Window)
	GrabButtons(w Window)
	UngrabButtons(w Window)
	MapWindow(w Window)
	SelectClientInput(w Window)
	Kill(w Window)

	SetClientList(windows []Window)
	SetDesktops(names []string, current int)

	GrabPointer(cursor Cursor) bool
	UngrabPointer()
	QueryPointer() (Pointer, bool)
	WarpPointer(w Window, x, y int)

	// GrabKeys replaces every key grab on the root window. Bindings that
	// cannot be resolved to a keycode are returned as errors.
	GrabKeys(bindings []string) []error
	RefreshKeymap()

	Sync()
	DiscardEnterEvents()
	Events() <-chan Event
	Close()
}
