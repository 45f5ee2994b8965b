package relative

import (
	"github.com/matzehuels/relayout/pkg/expr"
)

// Coordinate is one edge of a rectangle, held as an expression.
// The zero value is the literal 0.
type Coordinate struct {
	term expr.Expr
}

// NewCoordinate returns a coordinate fixed at v.
func NewCoordinate(v float64) Coordinate {
	return Coordinate{term: expr.Number(v)}
}

// CoordinateFromExpr wraps an existing expression.
func CoordinateFromExpr(e expr.Expr) Coordinate {
	return Coordinate{term: e}
}

// ParseCoordinate parses a single edge expression.
func ParseCoordinate(text string) (Coordinate, error) {
	e, err := expr.Parse(text)
	if err != nil {
		return Coordinate{}, err
	}
	return Coordinate{term: e}, nil
}

// Expression returns the held expression.
func (c Coordinate) Expression() expr.Expr { return c.term }

// Resolve evaluates the coordinate in scope. A nil scope means the
// coordinate has no external dependencies.
func (c Coordinate) Resolve(scope expr.Scope) (float64, error) {
	return c.term.Evaluate(scope)
}

// MoveToAbsolute rewrites the expression so it evaluates to target in
// scope. A literal is replaced outright; otherwise the constant term that
// controls the result is re-solved, keeping symbolic references intact.
func (c *Coordinate) MoveToAbsolute(target float64, scope expr.Scope) error {
	if c.term.IsConstant() {
		c.term = expr.Number(target)
		return nil
	}
	adjusted, err := c.term.AdjustedToGiveNewResult(target, scope)
	if err != nil {
		return err
	}
	c.term = adjusted
	return nil
}

// RenameSymbol rewrites references to old as newName.
func (c *Coordinate) RenameSymbol(old expr.Symbol, newName string, scope expr.Scope) {
	c.term = c.term.WithRenamedSymbol(old, newName, scope)
}

// IsDynamic reports whether the coordinate depends on anything other than
// its own rectangle's edges.
func (c Coordinate) IsDynamic() bool {
	return DependsOnExternalSymbols(c.term)
}

// Equal reports structural equality of the expressions.
func (c Coordinate) Equal(o Coordinate) bool {
	return c.term.Equal(o.term)
}

// String returns the expression's canonical text.
func (c Coordinate) String() string {
	return c.term.String()
}
