package x11

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// ErrorInfo is the decoded form of a core protocol error.
type ErrorInfo struct {
	// Code is the error name without the "Bad" prefix.
	Code     string
	Major    uint8
	BadValue uint32
	Sequence uint16
}

// DecodeError extracts the error name and failing request from a core
// protocol error. Extension errors decode with an empty Code.
func DecodeError(err xgb.Error) ErrorInfo {
	info := ErrorInfo{BadValue: err.BadId(), Sequence: err.SequenceId()}
	switch e := err.(type) {
	case xproto.RequestError:
		info.Code, info.Major = "Request", e.MajorOpcode
	case xproto.ValueError:
		info.Code, info.Major = "Value", e.MajorOpcode
	case xproto.WindowError:
		info.Code, info.Major = "Window", e.MajorOpcode
	case xproto.PixmapError:
		info.Code, info.Major = "Pixmap", e.MajorOpcode
	case xproto.AtomError:
		info.Code, info.Major = "Atom", e.MajorOpcode
	case xproto.CursorError:
		info.Code, info.Major = "Cursor", e.MajorOpcode
	case xproto.FontError:
		info.Code, info.Major = "Font", e.MajorOpcode
	case xproto.MatchError:
		info.Code, info.Major = "Match", e.MajorOpcode
	case xproto.DrawableError:
		info.Code, info.Major = "Drawable", e.MajorOpcode
	case xproto.AccessError:
		info.Code, info.Major = "Access", e.MajorOpcode
	case xproto.AllocError:
		info.Code, info.Major = "Alloc", e.MajorOpcode
	case xproto.ColormapError:
		info.Code, info.Major = "Colormap", e.MajorOpcode
	case xproto.GContextError:
		info.Code, info.Major = "GContext", e.MajorOpcode
	case xproto.IDChoiceError:
		info.Code, info.Major = "IDChoice", e.MajorOpcode
	case xproto.NameError:
		info.Code, info.Major = "Name", e.MajorOpcode
	case xproto.LengthError:
		info.Code, info.Major = "Length", e.MajorOpcode
	case xproto.ImplementationError:
		info.Code, info.Major = "Implementation", e.MajorOpcode
	}
	return info
}
