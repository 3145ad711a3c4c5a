package geometry

import (
	"fmt"

	"github.com/GriffinCanCode/WebOS/internal/shared/types"
)

// Minimum window dimensions
const (
	MinWidth  = 200
	MinHeight = 120
)

// Direction names a resize handle
type Direction string

const (
	Top         Direction = "top"
	Bottom      Direction = "bottom"
	Left        Direction = "left"
	Right       Direction = "right"
	TopLeft     Direction = "top-left"
	TopRight    Direction = "top-right"
	BottomLeft  Direction = "bottom-left"
	BottomRight Direction = "bottom-right"
)

// Directions lists every resize handle
var Directions = []Direction{Top, Bottom, Left, Right, TopLeft, TopRight, BottomLeft, BottomRight}

type edges struct {
	left, right, top, bottom bool
}

func (d Direction) edges() edges {
	switch d {
	case Top:
		return edges{top: true}
	case Bottom:
		return edges{bottom: true}
	case Left:
		return edges{left: true}
	case Right:
		return edges{right: true}
	case TopLeft:
		return edges{top: true, left: true}
	case TopRight:
		return edges{top: true, right: true}
	case BottomLeft:
		return edges{bottom: true, left: true}
	case BottomRight:
		return edges{bottom: true, right: true}
	}
	return edges{}
}

// Valid reports whether d is one of the eight handles
func (d Direction) Valid() bool {
	return d.edges() != edges{}
}

// ParseDirection validates a handle name
func ParseDirection(s string) (Direction, error) {
	d := Direction(s)
	if !d.Valid() {
		return "", fmt.Errorf("unknown resize direction %q", s)
	}
	return d, nil
}

// Point is a pointer location in desktop coordinates
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Sub returns p - q
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Bounds is the area windows are kept inside
type Bounds struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Right returns the right edge
func (b Bounds) Right() int { return b.X + b.Width }

// Bottom returns the bottom edge
func (b Bounds) Bottom() int { return b.Y + b.Height }

// Resize applies a pointer delta to the handle's edges of start. Edges
// opposite an active left or top handle stay put. The result is never
// smaller than MinWidth x MinHeight. With bounds, moving edges stop at the
// bounds and the position is clamped so the window fits when it can.
func Resize(dir Direction, delta Point, start types.Rect, bounds *Bounds) types.Rect {
	e := dir.edges()

	left, top := start.X, start.Y
	right, bottom := start.X+start.Width, start.Y+start.Height

	if e.left {
		left += delta.X
		if bounds != nil {
			left = max(left, bounds.X)
		}
		left = min(left, right-MinWidth)
	}
	if e.right {
		right += delta.X
		if bounds != nil {
			right = min(right, bounds.Right())
		}
		right = max(right, left+MinWidth)
	}
	if e.top {
		top += delta.Y
		if bounds != nil {
			top = max(top, bounds.Y)
		}
		top = min(top, bottom-MinHeight)
	}
	if e.bottom {
		bottom += delta.Y
		if bounds != nil {
			bottom = min(bottom, bounds.Bottom())
		}
		bottom = max(bottom, top+MinHeight)
	}

	out := types.Rect{
		X:      left,
		Y:      top,
		Width:  max(right-left, MinWidth),
		Height: max(bottom-top, MinHeight),
	}
	if bounds != nil {
		out.X = clamp(out.X, bounds.X, bounds.Right()-out.Width)
		out.Y = clamp(out.Y, bounds.Y, bounds.Bottom()-out.Height)
	}
	return out
}

// Drag places a window of the given size at pointer minus offset, clamped
// into bounds when given.
func Drag(pointer, offset Point, size types.Size, bounds *Bounds) types.Position {
	pos := types.Position{X: pointer.X - offset.X, Y: pointer.Y - offset.Y}
	if bounds != nil {
		pos.X = clamp(pos.X, bounds.X, bounds.Right()-size.Width)
		pos.Y = clamp(pos.Y, bounds.Y, bounds.Bottom()-size.Height)
	}
	return pos
}

// clamp limits v to [lo, hi]; lo wins when the range is empty
func clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
