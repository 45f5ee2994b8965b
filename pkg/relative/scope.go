package relative

import "github.com/matzehuels/relayout/pkg/expr"

// LocalScope resolves a rectangle's own edge names to the rectangle's raw
// edge expressions and delegates every other lookup to an outer scope.
//
// It reads the rectangle on every lookup, so it always sees the current
// edges; build one per call rather than keeping it around.
type LocalScope struct {
	rect  *Rectangle
	outer expr.Scope
}

// NewLocalScope binds a scope to rect. A nil outer scope falls back to
// [expr.BaseScope].
func NewLocalScope(rect *Rectangle, outer expr.Scope) *LocalScope {
	if outer == nil {
		outer = expr.BaseScope{}
	}
	return &LocalScope{rect: rect, outer: outer}
}

// UID returns the outer scope's UID, so self-aliases and the outer scope's
// own edge symbols are the same symbols for cycle detection and renaming.
func (s *LocalScope) UID() string { return s.outer.UID() }

// SymbolValue returns the edge expression for x, y, left, right, top and
// bottom, and asks the outer scope for anything else.
func (s *LocalScope) SymbolValue(name string) (expr.Expr, error) {
	switch name {
	case "x", "left":
		return s.rect.Left.Expression(), nil
	case "y", "top":
		return s.rect.Top.Expression(), nil
	case "right":
		return s.rect.Right.Expression(), nil
	case "bottom":
		return s.rect.Bottom.Expression(), nil
	}
	return s.outer.SymbolValue(name)
}

func (s *LocalScope) RelativeScope(name string) (expr.Scope, error) {
	return s.outer.RelativeScope(name)
}

func (s *LocalScope) EvaluateFunction(name string, args []float64) (float64, error) {
	return s.outer.EvaluateFunction(name, args)
}

var _ expr.Scope = (*LocalScope)(nil)
