package hotkeys

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Grabber owns the key grabs on the root window.
type Grabber struct {
	xu       *xgbutil.XUtil
	root     xproto.Window
	registry *Registry
}

// NewGrabber loads the keyboard mapping and prepares the lock-modifier
// combinations every grab is repeated for.
func NewGrabber(xu *xgbutil.XUtil, root xproto.Window) *Grabber {
	keybind.Initialize(xu)
	g := &Grabber{xu: xu, root: root, registry: NewRegistry()}
	g.configureIgnoreMods()
	return g
}

// Registry exposes the binding table for lookups.
func (g *Grabber) Registry() *Registry {
	return g.registry
}

// GrabAll replaces every grab with the given bindings, which use xgbutil
// syntax such as "Mod4-Shift-Return". Bindings without a keycode on the
// current keyboard are skipped and reported.
func (g *Grabber) GrabAll(bindings []string) []error {
	xproto.UngrabKey(g.xu.Conn(), xproto.GrabAny, g.root, xproto.ModMaskAny)
	g.registry.Reset()

	var errs []error
	for _, b := range bindings {
		mods, codes, err := keybind.ParseString(g.xu, b)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to parse key %q: %w", b, err))
			continue
		}
		raw := make([]uint8, 0, len(codes))
		for _, code := range codes {
			keybind.Grab(g.xu, g.root, mods, code)
			raw = append(raw, uint8(code))
		}
		g.registry.Bind(b, mods, raw)
	}
	return errs
}

// RefreshKeymap re-reads the keyboard and modifier maps after a
// MappingNotify.
func (g *Grabber) RefreshKeymap() {
	keyMap, modMap := keybind.MapsGet(g.xu)
	keybind.KeyMapSet(g.xu, keyMap)
	keybind.ModMapSet(g.xu, modMap)
	g.configureIgnoreMods()
}

// Resolve maps a key press to its binding string.
func (g *Grabber) Resolve(state uint16, keycode uint8) (string, bool) {
	return g.registry.Lookup(state, keycode)
}

func (g *Grabber) configureIgnoreMods() {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(g.xu, "Num_Lock")
	scrollLock := modMaskForKeysym(g.xu, "Scroll_Lock")

	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	xevent.IgnoreMods = lockCombinations(base)
	g.registry.SetIgnoreMods(base)
}

// lockCombinations returns 0 plus every non-empty OR of the given masks.
func lockCombinations(base []uint16) []uint16 {
	unique := make(map[uint16]struct{})
	ignore := []uint16{0}
	unique[0] = struct{}{}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		if _, ok := unique[mask]; ok {
			continue
		}
		unique[mask] = struct{}{}
		ignore = append(ignore, mask)
	}
	return ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
