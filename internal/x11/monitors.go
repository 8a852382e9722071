package x11

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xinerama"
	xineramautil "github.com/BurntSushi/xgbutil/xinerama"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

// GetMonitors retrieves all active monitors using XRandR, sorted left to
// right and then top to bottom.
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Skip disabled CRTCs
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}
		// Mirrored outputs share an origin; keep the first.
		if hasOrigin(monitors, int(info.X), int(info.Y)) {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(c.Conn(), info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   name,
			X:      int(info.X),
			Y:      int(info.Y),
			Width:  int(info.Width),
			Height: int(info.Height),
		})
	}
	sortMonitors(monitors)
	return monitors, nil
}

// GetXineramaMonitors is the fallback for servers without RandR 1.2.
func (c *Connection) GetXineramaMonitors() ([]Monitor, error) {
	if err := xinerama.Init(c.Conn()); err != nil {
		return nil, fmt.Errorf("xinerama init failed: %w", err)
	}
	heads, err := xineramautil.PhysicalHeads(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to query xinerama screens: %w", err)
	}
	monitors := make([]Monitor, 0, len(heads))
	for i, h := range heads {
		x, y, w, hh := h.Pieces()
		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   fmt.Sprintf("Xinerama%d", i),
			X:      x,
			Y:      y,
			Width:  w,
			Height: hh,
		})
	}
	sortMonitors(monitors)
	return monitors, nil
}

// Monitors tries RandR, then Xinerama, then falls back to one monitor
// covering the whole root window.
func (c *Connection) Monitors() []Monitor {
	if mons, err := c.GetMonitors(); err == nil && len(mons) > 0 {
		return mons
	}
	if mons, err := c.GetXineramaMonitors(); err == nil && len(mons) > 0 {
		return mons
	}
	w, h := c.ScreenSize()
	return []Monitor{{Name: "screen", Width: w, Height: h}}
}

func hasOrigin(monitors []Monitor, x, y int) bool {
	for _, m := range monitors {
		if m.X == x && m.Y == y {
			return true
		}
	}
	return false
}

func sortMonitors(monitors []Monitor) {
	sort.SliceStable(monitors, func(i, j int) bool {
		if monitors[i].X != monitors[j].X {
			return monitors[i].X < monitors[j].X
		}
		return monitors[i].Y < monitors[j].Y
	})
}
