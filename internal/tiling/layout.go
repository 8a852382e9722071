package tiling

import (
	"fmt"
	"sort"
	"strings"

	"github.com/1broseidon/tagwm/internal/client"
	"github.com/1broseidon/tagwm/internal/geom"
)

// Kind selects a layout algorithm.
type Kind int

const (
	KindTile Kind = iota
	KindFullScreen
	KindOverview
	KindMasterStack
)

// Params are the gutters a layout leaves between windows.
type Params struct {
	BorderWidth   int
	OverviewInset int
}

// Layout is a stateless placement strategy. MasterStack delegates the stack
// area to Inner, which defaults to FullScreen.
type Layout struct {
	Kind   Kind
	Inner  *Layout
	Params Params
}

// Placement pairs a client with the rectangle the layout assigned to it.
type Placement struct {
	Client *client.Client
	Rect   geom.Rect
}

func Tile(p Params) Layout { return Layout{Kind: KindTile, Params: p} }

func FullScreen(p Params) Layout { return Layout{Kind: KindFullScreen, Params: p} }

func Overview(p Params) Layout { return Layout{Kind: KindOverview, Params: p} }

// MasterStack gives the first client a third of the area and lays the rest
// out with inner.
func MasterStack(p Params, inner Layout) Layout {
	return Layout{Kind: KindMasterStack, Inner: &inner, Params: p}
}

// ParseLayout understands tile, fullscreen, overview, master-stack and
// master-stack:<inner>.
func ParseLayout(s string, p Params) (Layout, error) {
	name, inner, hasInner := strings.Cut(strings.TrimSpace(strings.ToLower(s)), ":")
	switch name {
	case "", "tile":
		if hasInner {
			break
		}
		return Tile(p), nil
	case "fullscreen":
		if hasInner {
			break
		}
		return FullScreen(p), nil
	case "overview":
		if hasInner {
			break
		}
		return Overview(p), nil
	case "master-stack":
		if !hasInner {
			return MasterStack(p, FullScreen(p)), nil
		}
		in, err := ParseLayout(inner, p)
		if err != nil {
			return Layout{}, err
		}
		return MasterStack(p, in), nil
	}
	return Layout{}, fmt.Errorf("unknown layout %q", s)
}

func (l Layout) String() string {
	switch l.Kind {
	case KindTile:
		return "tile"
	case KindFullScreen:
		return "fullscreen"
	case KindOverview:
		return "overview"
	case KindMasterStack:
		return "master-stack:" + l.inner().String()
	}
	return fmt.Sprintf("layout(%d)", int(l.Kind))
}

func (l Layout) inner() Layout {
	if l.Inner == nil {
		return FullScreen(l.Params)
	}
	return *l.Inner
}

// Arrange assigns a rectangle inside area to every client the layout
// manages. The overview places every non-sticky client; the other layouts
// skip floating clients. Placements keep the input order.
func (l Layout) Arrange(clients []*client.Client, area geom.Rect) []Placement {
	pool := make([]*client.Client, 0, len(clients))
	for _, c := range clients {
		if l.Kind == KindOverview {
			if !c.IsSticky() {
				pool = append(pool, c)
			}
			continue
		}
		if !c.IsFloating() {
			pool = append(pool, c)
		}
	}

	rects := l.Rects(len(pool), area)
	placements := make([]Placement, len(pool))
	for i, c := range pool {
		placements[i] = Placement{Client: c, Rect: rects[i]}
	}
	return placements
}

// Rects computes n rectangles inside area.
func (l Layout) Rects(n int, area geom.Rect) []geom.Rect {
	if n <= 0 {
		return nil
	}
	switch l.Kind {
	case KindFullScreen:
		return fullScreenRects(n, area)
	case KindOverview:
		return overviewRects(n, area, l.Params.OverviewInset)
	case KindMasterStack:
		return l.masterStackRects(n, area)
	default:
		return tileRects(n, area, l.Params.BorderWidth)
	}
}

// tileRects repeatedly halves the most recently produced rectangle,
// alternating between side-by-side and stacked cuts. A cut that would leave
// no room yields the unsplit rectangle twice.
func tileRects(n int, area geom.Rect, bw int) []geom.Rect {
	rects := []geom.Rect{area}
	sideBySide := true
	for len(rects) < n {
		r := rects[len(rects)-1]
		rects = rects[:len(rects)-1]

		var first, second geom.Rect
		var degenerate bool
		if sideBySide {
			first = geom.New(r.X, r.Y, r.Width/2-bw, r.Height)
			second = geom.New(r.X+r.Width/2+bw, r.Y, r.Width/2-bw, r.Height)
			degenerate = first.Width <= 0
		} else {
			first = geom.New(r.X, r.Y, r.Width, r.Height/2-bw)
			second = geom.New(r.X, r.Y+r.Height/2+bw, r.Width, r.Height/2-bw)
			degenerate = second.Height <= 0
		}
		if degenerate {
			first, second = r, r
		}
		rects = append(rects, first, second)
		sideBySide = !sideBySide
	}
	return rects
}

func fullScreenRects(n int, area geom.Rect) []geom.Rect {
	rects := make([]geom.Rect, n)
	for i := range rects {
		rects[i] = area
	}
	return rects
}

// overviewRects splits every rectangle each round until there are at least
// n, keeping them in reading order, then returns the first n.
func overviewRects(n int, area geom.Rect, inset int) []geom.Rect {
	rects := []geom.Rect{area}
	sideBySide := true
	for len(rects) < n {
		next := make([]geom.Rect, 0, 2*len(rects))
		for _, r := range rects {
			if sideBySide {
				next = append(next,
					geom.New(r.X, r.Y, r.Width/2-inset, r.Height-inset),
					geom.New(r.X+r.Width/2+inset, r.Y, r.Width/2-inset, r.Height-inset))
			} else {
				next = append(next,
					geom.New(r.X, r.Y, r.Width-inset, r.Height/2-inset),
					geom.New(r.X, r.Y+r.Height/2+inset, r.Width-inset, r.Height/2-inset))
			}
		}
		sort.SliceStable(next, func(i, j int) bool {
			if next[i].Y != next[j].Y {
				return next[i].Y < next[j].Y
			}
			return next[i].X < next[j].X
		})
		rects = next
		sideBySide = !sideBySide
	}
	return rects[:n]
}

func (l Layout) masterStackRects(n int, area geom.Rect) []geom.Rect {
	if n == 1 {
		return []geom.Rect{area}
	}
	bw := l.Params.BorderWidth
	master := geom.New(area.X, area.Y, area.Width/3-bw, area.Height)
	rest := geom.New(master.X+master.Width+bw, area.Y, area.Width-master.Width-bw, area.Height)
	return append([]geom.Rect{master}, l.inner().Rects(n-1, rest)...)
}
