package platform

import "fmt"

// Core protocol request opcodes that show up in ignorable errors.
const (
	OpConfigureWindow   uint8 = 12
	OpGrabButton        uint8 = 28
	OpGrabKey           uint8 = 33
	OpSetInputFocus     uint8 = 42
	OpCopyArea          uint8 = 62
	OpPolySegment       uint8 = 66
	OpPolyFillRectangle uint8 = 70
	OpPolyText8         uint8 = 74
)

// ProtocolError is an asynchronous error reported by the window system.
// Code is the error name without the "Bad" prefix, e.g. "Window" or "Match".
type ProtocolError struct {
	Code     string
	Major    uint8
	BadValue uint32
	Sequence uint16
}

type ignoredError struct {
	code  string
	major uint8
}

var ignoredErrors = []ignoredError{
	{"Match", OpSetInputFocus},
	{"Drawable", OpPolyText8},
	{"Drawable", OpPolyFillRectangle},
	{"Drawable", OpPolySegment},
	{"Match", OpConfigureWindow},
	{"Access", OpGrabButton},
	{"Access", OpGrabKey},
	{"Drawable", OpCopyArea},
}

// Transient reports whether the error is an expected race with a client
// (windows that vanished, focus on unmapped windows, contested grabs) and can
// be ignored.
func (e ProtocolError) Transient() bool {
	if e.Code == "Window" {
		return true
	}
	for _, ig := range ignoredErrors {
		if ig.code == e.Code && ig.major == e.Major {
			return true
		}
	}
	return false
}

func (e ProtocolError) Error() string {
	return fmt.Sprintf("Bad%s error: request %d, resource 0x%x, sequence %d", e.Code, e.Major, e.BadValue, e.Sequence)
}
