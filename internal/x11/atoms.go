package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xprop"
)

// atomNames are interned at start-up; they cover every property and
// message type the manager reacts to.
var atomNames = []string{
	"WM_PROTOCOLS",
	"WM_DELETE_WINDOW",
	"WM_TAKE_FOCUS",
	"WM_STATE",
	"WM_NAME",
	"WM_NORMAL_HINTS",
	"_NET_WM_NAME",
	"_NET_WM_STATE",
	"_NET_WM_STATE_FULLSCREEN",
	"_NET_WM_STATE_ABOVE",
	"_NET_WM_STATE_MODAL",
	"_NET_WM_WINDOW_TYPE",
	"_NET_WM_WINDOW_TYPE_DOCK",
	"_NET_WM_WINDOW_TYPE_DIALOG",
	"_NET_ACTIVE_WINDOW",
	"_NET_CLIENT_LIST",
	"UTF8_STRING",
}

// Atoms is a two-way table of interned atoms.
type Atoms struct {
	byName map[string]xproto.Atom
	byID   map[xproto.Atom]string
}

// InternAtoms interns every name in one batch of requests.
func (c *Connection) InternAtoms() (*Atoms, error) {
	cookies := make([]xproto.InternAtomCookie, len(atomNames))
	for i, name := range atomNames {
		cookies[i] = xproto.InternAtom(c.Conn(), false, uint16(len(name)), name)
	}
	a := &Atoms{
		byName: make(map[string]xproto.Atom, len(atomNames)),
		byID:   make(map[xproto.Atom]string, len(atomNames)),
	}
	for i, cookie := range cookies {
		reply, err := cookie.Reply()
		if err != nil {
			return nil, fmt.Errorf("failed to intern %s: %w", atomNames[i], err)
		}
		a.byName[atomNames[i]] = reply.Atom
		a.byID[reply.Atom] = atomNames[i]
	}
	return a, nil
}

// Atom returns the interned atom for name.
func (a *Atoms) Atom(name string) (xproto.Atom, bool) {
	atom, ok := a.byName[name]
	return atom, ok
}

// Name returns the name of an interned atom.
func (a *Atoms) Name(atom xproto.Atom) (string, bool) {
	name, ok := a.byID[atom]
	return name, ok
}

// AtomName resolves an atom id from the interned table, falling back to a
// server round trip through xprop's cache.
func (c *Connection) AtomName(atom xproto.Atom) string {
	if c.atoms != nil {
		if name, ok := c.atoms.Name(atom); ok {
			return name
		}
	}
	name, err := xprop.AtomName(c.XUtil, atom)
	if err != nil {
		return ""
	}
	return name
}

// atom returns the interned atom for name, interning it on a miss.
func (c *Connection) atom(name string) (xproto.Atom, error) {
	if c.atoms != nil {
		if atom, ok := c.atoms.Atom(name); ok {
			return atom, nil
		}
	}
	return xprop.Atm(c.XUtil, name)
}
