package platform

// Event is a window-system event delivered to the manager.
type Event interface {
	event()
}

// ConfigureRequest value mask bits.
const (
	ConfigX           uint16 = 1 << 0
	ConfigY           uint16 = 1 << 1
	ConfigWidth       uint16 = 1 << 2
	ConfigHeight      uint16 = 1 << 3
	ConfigBorderWidth uint16 = 1 << 4
	ConfigSibling     uint16 = 1 << 5
	ConfigStackMode   uint16 = 1 << 6
)

// Modifier masks as carried in key and button state.
const (
	ModShift   uint16 = 1 << 0
	ModLock    uint16 = 1 << 1
	ModControl uint16 = 1 << 2
	Mod1       uint16 = 1 << 3
	Mod2       uint16 = 1 << 4
	Mod3       uint16 = 1 << 5
	Mod4       uint16 = 1 << 6
	Mod5       uint16 = 1 << 7
)

// Pointer buttons.
const (
	Button1 uint8 = 1
	Button2 uint8 = 2
	Button3 uint8 = 3
)

// MappingNotify request kinds.
const (
	MappingModifier uint8 = 0
	MappingKeyboard uint8 = 1
	MappingPointer  uint8 = 2
)

type ButtonPress struct {
	Window Window
	State  uint16
	Button uint8
	RootX  int
	RootY  int
	Time   uint32
}

type ButtonRelease struct {
	Window Window
	Button uint8
	Time   uint32
}

type MotionNotify struct {
	Window Window
	RootX  int
	RootY  int
	Time   uint32
}

// ClientMessage carries the message type by name and the raw 32-bit data.
type ClientMessage struct {
	Window Window
	Type   string
	Data   [5]uint32
}

type ConfigureRequest struct {
	Window    Window
	Sibling   Window
	X         int
	Y         int
	Width     int
	Height    int
	Border    int
	StackMode uint8
	ValueMask uint16
}

type ConfigureNotify struct {
	Window Window
	X      int
	Y      int
	Width  int
	Height int
}

type DestroyNotify struct {
	Window Window
}

type EnterNotify struct {
	Window Window
}

type Expose struct {
	Window Window
	Count  int
}

type FocusIn struct {
	Window Window
}

// KeyPress carries the raw key state plus the configured binding it resolved
// to, if any.
type KeyPress struct {
	Window  Window
	State   uint16
	Keycode uint8
	Binding string
	Time    uint32
}

type MappingNotify struct {
	Request uint8
}

type MapRequest struct {
	Window Window
}

type PropertyNotify struct {
	Window  Window
	Atom    string
	Deleted bool
}

type UnmapNotify struct {
	Window    Window
	Synthetic bool
}

func (ButtonPress) event()      {}
func (ButtonRelease) event()    {}
func (MotionNotify) event()     {}
func (ClientMessage) event()    {}
func (ConfigureRequest) event() {}
func (ConfigureNotify) event()  {}
func (DestroyNotify) event()    {}
func (EnterNotify) event()      {}
func (Expose) event()           {}
func (FocusIn) event()          {}
func (KeyPress) event()         {}
func (MappingNotify) event()    {}
func (MapRequest) event()       {}
func (PropertyNotify) event()   {}
func (UnmapNotify) event()      {}
func (ProtocolError) event()    {}
