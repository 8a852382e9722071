// Package hotkeys resolves key presses on the root window to configured
// binding strings.
package hotkeys

import "sync"

// buttonMasks are the pointer button bits carried in key event state.
const buttonMasks uint16 = 0xff00

// Combo is a grabbed key: modifier mask plus keycode.
type Combo struct {
	Mods    uint16
	Keycode uint8
}

// Registry maps combos to the binding string they were grabbed for. One
// binding can own several combos when its keysym is on more than one key.
type Registry struct {
	mu     sync.RWMutex
	combos map[Combo]string
	ignore []uint16
}

func NewRegistry() *Registry {
	return &Registry{combos: make(map[Combo]string)}
}

// Bind records every keycode of binding under mods. Later bindings for the
// same combo replace earlier ones.
func (r *Registry) Bind(binding string, mods uint16, keycodes []uint8) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, code := range keycodes {
		r.combos[Combo{Mods: mods, Keycode: code}] = binding
	}
}

// Reset drops every binding.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.combos = make(map[Combo]string)
}

// SetIgnoreMods sets the lock modifiers stripped from event state before lookup.
func (r *Registry) SetIgnoreMods(masks []uint16) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ignore = append([]uint16(nil), masks...)
}

// Lookup returns the binding grabbed for a key press.
func (r *Registry) Lookup(state uint16, keycode uint8) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	binding, ok := r.combos[Combo{Mods: CleanMask(state, r.ignore), Keycode: keycode}]
	return binding, ok
}

// Len returns the number of grabbed combos.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.combos)
}

// CleanMask removes pointer button bits and every ignored lock modifier
// from state.
func CleanMask(state uint16, ignore []uint16) uint16 {
	state &^= buttonMasks
	for _, m := range ignore {
		state &^= m
	}
	return state
}
