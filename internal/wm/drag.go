package wm

import (
	"time"

	"github.com/1broseidon/tagwm/internal/client"
	"github.com/1broseidon/tagwm/internal/geom"
	"github.com/1broseidon/tagwm/internal/platform"
)

// dragInterval is the minimum event-time gap between two motion samples,
// in milliseconds.
const dragInterval = 1000 / 60

// MoveMouse lets the user drag c with the pointer until the button is
// released. Only floating clients move.
func (m *Manager) MoveMouse(c *client.Client) error {
	if c.IsFullscreen() {
		return nil
	}
	if !m.display.GrabPointer(platform.CursorMove) {
		m.logger.Debug("failed to grab pointer", "window", windowID(c.Window()))
		return nil
	}
	start, ok := m.display.QueryPointer()
	if !ok {
		m.display.UngrabPointer()
		return nil
	}
	rect := c.Rect()
	deferred, err := m.drag(func(e platform.MotionNotify) {
		if c.IsFloating() {
			c.MoveWindow(rect.X+e.RootX-start.X, rect.Y+e.RootY-start.Y, true)
		}
	})
	m.display.UngrabPointer()
	m.display.DiscardEnterEvents()
	if err != nil {
		return err
	}
	return m.replay(deferred)
}

// ResizeMouse lets the user resize c from its bottom-right corner until the
// button is released. Only floating clients resize.
func (m *Manager) ResizeMouse(c *client.Client) error {
	if c.IsFullscreen() {
		return nil
	}
	if !m.display.GrabPointer(platform.CursorResize) {
		m.logger.Debug("failed to grab pointer", "window", windowID(c.Window()))
		return nil
	}
	bw := m.theme.BorderWidth
	rect := c.Rect()
	m.display.WarpPointer(c.Window(), rect.Width+bw-1, rect.Height+bw-1)
	m.display.Sync()

	deferred, err := m.drag(func(e platform.MotionNotify) {
		width := max(e.RootX-2*bw-rect.X+1, 1)
		height := max(e.RootY-2*bw-rect.Y+1, 1)
		if c.IsFloating() {
			c.Resize(geom.New(rect.X, rect.Y, width, height), false)
		}
	})

	r := c.Rect()
	m.display.WarpPointer(c.Window(), r.Width+bw-1, r.Height+bw-1)
	m.display.UngrabPointer()
	m.display.DiscardEnterEvents()
	if err != nil {
		return err
	}
	return m.replay(deferred)
}

// drag runs a nested event loop until the pointer button is released or the
// drag timeout passes. Expose, map and configure requests and protocol
// errors are handled in place, motion goes to onMotion and other pointer
// events are dropped. Everything else is returned for replay once the
// pointer is released.
func (m *Manager) drag(onMotion func(platform.MotionNotify)) ([]platform.Event, error) {
	timeout := time.NewTimer(m.dragTimeout)
	defer timeout.Stop()

	var deferred []platform.Event
	var last uint32
	events := m.display.Events()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return deferred, errDisplayClosed
			}
			switch e := ev.(type) {
			case platform.Expose, platform.MapRequest, platform.ConfigureRequest, platform.ProtocolError:
				if err := m.HandleEvent(ev); err != nil {
					return deferred, err
				}
			case platform.MotionNotify:
				if e.Time-last < dragInterval {
					continue
				}
				last = e.Time
				onMotion(e)
			case platform.ButtonRelease:
				return deferred, nil
			case platform.ButtonPress, platform.EnterNotify:
			default:
				deferred = append(deferred, ev)
			}
		case <-timeout.C:
			m.logger.Warn("drag timed out waiting for button release", "timeout", m.dragTimeout)
			return deferred, nil
		}
	}
}

func (m *Manager) replay(events []platform.Event) error {
	for _, ev := range events {
		if err := m.HandleEvent(ev); err != nil {
			return err
		}
	}
	return nil
}
