package component

import (
	"github.com/matzehuels/relayout/pkg/errors"
	"github.com/matzehuels/relayout/pkg/expr"
)

// Scope resolves symbols against a component's current bounds.
//
// Bare symbols left, right, top, bottom, x, y, width and height evaluate to
// the component's bounds. A dotted prefix "parent" reaches the parent's
// scope and any other prefix names a sibling.
type Scope struct {
	expr.BaseScope
	c *Component
}

// NewScope returns the scope of c.
func NewScope(c *Component) *Scope {
	return &Scope{c: c}
}

// Component returns the component the scope reads from.
func (s *Scope) Component() *Component { return s.c }

// UID identifies the component.
func (s *Scope) UID() string { return "component:" + s.c.uid }

// SymbolValue returns the named edge or extent as a constant.
func (s *Scope) SymbolValue(name string) (expr.Expr, error) {
	b := s.c.bounds
	switch name {
	case "x", "left":
		return expr.Number(float64(b.X)), nil
	case "y", "top":
		return expr.Number(float64(b.Y)), nil
	case "right":
		return expr.Number(float64(b.Right())), nil
	case "bottom":
		return expr.Number(float64(b.Bottom())), nil
	case "width":
		return expr.Number(float64(b.Width)), nil
	case "height":
		return expr.Number(float64(b.Height)), nil
	}
	return s.BaseScope.SymbolValue(name)
}

// RelativeScope returns the parent's or a sibling's scope.
func (s *Scope) RelativeScope(name string) (expr.Scope, error) {
	if name == "parent" {
		if s.c.parent == nil {
			return nil, errors.New(errors.ErrCodeUnresolvedSymbol, "%q has no parent", s.c.name)
		}
		return NewScope(s.c.parent), nil
	}
	if sib := s.c.FindSibling(name); sib != nil {
		return NewScope(sib), nil
	}
	return nil, errors.New(errors.ErrCodeUnresolvedSymbol, "%q has no sibling named %q", s.c.name, name)
}

// Of returns the component behind a scope, if the scope belongs to one.
func Of(s expr.Scope) (*Component, bool) {
	switch v := s.(type) {
	case *Scope:
		return v.c, true
	case *DependencyFinder:
		return Of(v.inner)
	}
	return nil, false
}

// DependencyFinder wraps a scope and records every component reached
// through a dotted reference while an expression is evaluated in it.
type DependencyFinder struct {
	inner expr.Scope
	found *[]*Component
}

// NewDependencyFinder wraps inner.
func NewDependencyFinder(inner expr.Scope) *DependencyFinder {
	return &DependencyFinder{inner: inner, found: new([]*Component)}
}

// Found returns the recorded components in first-reached order, without
// duplicates.
func (f *DependencyFinder) Found() []*Component { return *f.found }

func (f *DependencyFinder) UID() string { return f.inner.UID() }

func (f *DependencyFinder) SymbolValue(name string) (expr.Expr, error) {
	return f.inner.SymbolValue(name)
}

func (f *DependencyFinder) EvaluateFunction(name string, args []float64) (float64, error) {
	return f.inner.EvaluateFunction(name, args)
}

func (f *DependencyFinder) RelativeScope(name string) (expr.Scope, error) {
	s, err := f.inner.RelativeScope(name)
	if err != nil {
		return nil, err
	}
	if c, ok := Of(s); ok {
		f.record(c)
	}
	return &DependencyFinder{inner: s, found: f.found}, nil
}

func (f *DependencyFinder) record(c *Component) {
	for _, existing := range *f.found {
		if existing == c {
			return
		}
	}
	*f.found = append(*f.found, c)
}

var (
	_ expr.Scope = (*Scope)(nil)
	_ expr.Scope = (*DependencyFinder)(nil)
)
