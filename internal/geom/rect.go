package geom

import "fmt"

// Rect represents a window position and size in root coordinates
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Unplaced is the geometry of a client that has never been placed.
var Unplaced = Rect{X: -1, Y: -1, Width: -1, Height: -1}

// New builds a Rect from its components.
func New(x, y, width, height int) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// Intersects reports whether any corner of either rectangle lies inside the
// other. Rectangles that cross without containing a corner are not detected.
func (r Rect) Intersects(other Rect) bool {
	for _, p := range r.corners() {
		if other.ContainsPoint(p[0], p[1]) {
			return true
		}
	}
	for _, p := range other.corners() {
		if r.ContainsPoint(p[0], p[1]) {
			return true
		}
	}
	return false
}

// ContainsPoint reports whether (x, y) lies within the rectangle. Both the
// near and far edges are inclusive.
func (r Rect) ContainsPoint(x, y int) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// Area returns Width*Height, or 0 for degenerate rectangles.
func (r Rect) Area() int {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return r.Width * r.Height
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() (int, int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

func (r Rect) corners() [4][2]int {
	return [4][2]int{
		{r.X, r.Y},
		{r.X + r.Width, r.Y},
		{r.X, r.Y + r.Height},
		{r.X + r.Width, r.Y + r.Height},
	}
}
