package relative

import (
	"math"
	"strings"

	"github.com/matzehuels/relayout/pkg/errors"
	"github.com/matzehuels/relayout/pkg/expr"
	"github.com/matzehuels/relayout/pkg/geom"
)

// Rectangle is a rectangle whose four edges are coordinates.
// Edges are not required to be ordered; Resolve clamps negative extents.
type Rectangle struct {
	Left, Top, Right, Bottom Coordinate
}

// NewRectangle builds a rectangle from four edges.
func NewRectangle(left, top, right, bottom Coordinate) Rectangle {
	return Rectangle{Left: left, Top: top, Right: right, Bottom: bottom}
}

// FromRect builds a rectangle at r whose right and bottom edges stay
// anchored to its own left and top: "left + width" and "top + height".
func FromRect(r geom.Rect) Rectangle {
	return Rectangle{
		Left:   NewCoordinate(r.X),
		Top:    NewCoordinate(r.Y),
		Right:  CoordinateFromExpr(expr.Add(expr.SymbolRef("left"), expr.Number(r.Width))),
		Bottom: CoordinateFromExpr(expr.Add(expr.SymbolRef("top"), expr.Number(r.Height))),
	}
}

// ParseRectangle parses "<left>, <top>, <right>, <bottom>". Commas inside
// parentheses belong to the enclosing field.
func ParseRectangle(text string) (Rectangle, error) {
	fields := splitFields(text)
	if len(fields) != 4 {
		return Rectangle{}, errors.New(errors.ErrCodeInvalidRectangle,
			"expected 4 comma-separated edges, got %d in %q", len(fields), text)
	}
	var edges [4]Coordinate
	for i, f := range fields {
		c, err := ParseCoordinate(f)
		if err != nil {
			return Rectangle{}, errors.Wrap(errors.ErrCodeInvalidRectangle, err, "%s edge", edgeNames[i])
		}
		edges[i] = c
	}
	return NewRectangle(edges[0], edges[1], edges[2], edges[3]), nil
}

// MustParseRectangle is like ParseRectangle but panics on error.
func MustParseRectangle(text string) Rectangle {
	r, err := ParseRectangle(text)
	if err != nil {
		panic(err)
	}
	return r
}

var edgeNames = [4]string{"left", "top", "right", "bottom"}

func splitFields(text string) []string {
	var fields []string
	depth, start := 0, 0
	for i, ch := range text {
		switch ch {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				fields = append(fields, strings.TrimSpace(text[start:i]))
				start = i + 1
			}
		}
	}
	return append(fields, strings.TrimSpace(text[start:]))
}

// String renders the edges in left, top, right, bottom order.
func (r Rectangle) String() string {
	return strings.Join([]string{
		r.Left.String(), r.Top.String(), r.Right.String(), r.Bottom.String(),
	}, ", ")
}

// Equal reports structural equality of all four edges.
func (r Rectangle) Equal(o Rectangle) bool {
	return r.Left.Equal(o.Left) && r.Top.Equal(o.Top) &&
		r.Right.Equal(o.Right) && r.Bottom.Equal(o.Bottom)
}

// IsDynamic reports whether any edge refers outside the rectangle, so its
// resolved position can change without the rectangle itself changing.
func (r Rectangle) IsDynamic() bool {
	return r.Left.IsDynamic() || r.Top.IsDynamic() ||
		r.Right.IsDynamic() || r.Bottom.IsDynamic()
}

// Resolve evaluates the edges in scope, or in a fresh local scope when
// scope is nil. Width and height are clamped at zero.
func (r *Rectangle) Resolve(scope expr.Scope) (geom.Rect, error) {
	if scope == nil {
		scope = NewLocalScope(r, nil)
	}
	var v [4]float64
	for i, c := range r.edges() {
		x, err := c.Resolve(scope)
		if err != nil {
			return geom.Rect{}, edgeError(i, err)
		}
		v[i] = x
	}
	left, top, right, bottom := v[0], v[1], v[2], v[3]
	return geom.NewRect(left, top, math.Max(0, right-left), math.Max(0, bottom-top)), nil
}

// MoveToAbsolute rewrites the edges so the rectangle resolves to b in scope,
// or in a fresh local scope when scope is nil. Edges are moved left, right,
// top, bottom, so right and bottom see the updated left and top.
func (r *Rectangle) MoveToAbsolute(b geom.Rect, scope expr.Scope) error {
	if scope == nil {
		scope = NewLocalScope(r, nil)
	}
	moves := []struct {
		edge   int
		c      *Coordinate
		target float64
	}{
		{0, &r.Left, b.X},
		{2, &r.Right, b.Right()},
		{1, &r.Top, b.Y},
		{3, &r.Bottom, b.Bottom()},
	}
	for _, m := range moves {
		if err := m.c.MoveToAbsolute(m.target, scope); err != nil {
			return edgeError(m.edge, err)
		}
	}
	return nil
}

// RenameSymbol rewrites every reference to old in all four edges.
func (r *Rectangle) RenameSymbol(old expr.Symbol, newName string, scope expr.Scope) {
	for _, c := range r.edgePtrs() {
		c.RenameSymbol(old, newName, scope)
	}
}

func (r *Rectangle) edges() [4]Coordinate {
	return [4]Coordinate{r.Left, r.Top, r.Right, r.Bottom}
}

func (r *Rectangle) edgePtrs() [4]*Coordinate {
	return [4]*Coordinate{&r.Left, &r.Top, &r.Right, &r.Bottom}
}

// edgeError labels err with the edge it came from, keeping its code.
func edgeError(edge int, err error) error {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	return errors.Wrap(code, err, "%s edge", edgeNames[edge])
}
