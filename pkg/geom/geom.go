// Package geom provides the rectangle types exchanged between relative
// rectangles and host components.
//
// [Rect] carries the float64 result of resolving a relative rectangle.
// [Bounds] carries the integer bounds a host component actually occupies.
// A resolved Rect becomes host Bounds through [Rect.SmallestIntegerContainer].
package geom

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/relayout/pkg/errors"
)

// Rect is a rectangle with float64 coordinates.
// X and Y are the top-left corner; Width and Height are dimensions.
type Rect struct {
	X      float64 `json:"x" toml:"x"`
	Y      float64 `json:"y" toml:"y"`
	Width  float64 `json:"width" toml:"width"`
	Height float64 `json:"height" toml:"height"`
}

// NewRect creates a new Rect with the given position and dimensions.
func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// IsEmpty returns true if the rectangle has zero or negative area.
func (r Rect) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// ApproxEqual reports whether every field of r is within tol of o.
func (r Rect) ApproxEqual(o Rect, tol float64) bool {
	return math.Abs(r.X-o.X) <= tol &&
		math.Abs(r.Y-o.Y) <= tol &&
		math.Abs(r.Width-o.Width) <= tol &&
		math.Abs(r.Height-o.Height) <= tol
}

// MaxCoordinate is the largest magnitude an integer edge can take. Edges
// beyond it, infinities included, are clamped; NaN becomes 0.
const MaxCoordinate = 1 << 61

// SmallestIntegerContainer returns the smallest integer bounds that fully
// contain r: left and top are floored, right and bottom are ceiled.
func (r Rect) SmallestIntegerContainer() Bounds {
	x := clampEdge(math.Floor(r.X))
	y := clampEdge(math.Floor(r.Y))
	right := clampEdge(math.Ceil(r.Right()))
	bottom := clampEdge(math.Ceil(r.Bottom()))
	return Bounds{X: x, Y: y, Width: max(0, right-x), Height: max(0, bottom-y)}
}

func clampEdge(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Max(-MaxCoordinate, math.Min(MaxCoordinate, v)))
}

// String returns "x, y, width, height".
func (r Rect) String() string {
	return fmt.Sprintf("%g, %g, %g, %g", r.X, r.Y, r.Width, r.Height)
}

// Bounds is a rectangle with integer coordinates, as occupied by a
// host component.
type Bounds struct {
	X      int `json:"x" toml:"x"`
	Y      int `json:"y" toml:"y"`
	Width  int `json:"width" toml:"width"`
	Height int `json:"height" toml:"height"`
}

// NewBounds creates new Bounds with the given position and dimensions.
func NewBounds(x, y, width, height int) Bounds {
	return Bounds{X: x, Y: y, Width: width, Height: height}
}

// Right returns the x-coordinate of the right edge (exclusive).
func (b Bounds) Right() int { return b.X + b.Width }

// Bottom returns the y-coordinate of the bottom edge (exclusive).
func (b Bounds) Bottom() int { return b.Y + b.Height }

// IsEmpty returns true if the bounds have zero or negative area.
func (b Bounds) IsEmpty() bool { return b.Width <= 0 || b.Height <= 0 }

// ToRect converts b to float coordinates.
func (b Bounds) ToRect() Rect {
	return Rect{X: float64(b.X), Y: float64(b.Y), Width: float64(b.Width), Height: float64(b.Height)}
}

// Translate returns new Bounds moved by (dx, dy).
func (b Bounds) Translate(dx, dy int) Bounds {
	return Bounds{X: b.X + dx, Y: b.Y + dy, Width: b.Width, Height: b.Height}
}

// String returns "x, y, width, height".
func (b Bounds) String() string {
	return fmt.Sprintf("%d, %d, %d, %d", b.X, b.Y, b.Width, b.Height)
}

// ParseBounds parses "x, y, width, height" with integer fields.
func ParseBounds(s string) (Bounds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Bounds{}, errors.New(errors.ErrCodeInvalidInput, "bounds %q: want x, y, width, height", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Bounds{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "bounds %q", s)
		}
		v[i] = n
	}
	if v[2] < 0 || v[3] < 0 {
		return Bounds{}, errors.New(errors.ErrCodeInvalidInput, "bounds %q: negative size", s)
	}
	return NewBounds(v[0], v[1], v[2], v[3]), nil
}
