package expr

import "github.com/google/cel-go/common/ast"

// WithRenamedSymbol returns a copy of e in which every reference to old is
// replaced by newName.
//
// A bare identifier matches when it is evaluated in a scope whose UID is
// old.ScopeUID. The field of a dotted reference "a.b" matches when the
// relative scope named by "a" has that UID. Matching is by whole name only,
// so renaming "a" leaves "abc" untouched. A nil scope behaves as
// [BaseScope].
func (e Expr) WithRenamedSymbol(old Symbol, newName string, scope Scope) Expr {
	if scope == nil {
		scope = BaseScope{}
	}
	if e.node == nil {
		return e
	}
	return Expr{node: rename(e.node, old, newName, scope)}
}

func rename(n ast.Expr, old Symbol, newName string, scope Scope) ast.Expr {
	switch n.Kind() {
	case ast.IdentKind:
		if n.AsIdent() == old.Name && scope.UID() == old.ScopeUID {
			return factory.NewIdent(nextID(), newName)
		}
		return n

	case ast.SelectKind:
		sel := n.AsSelect()
		field := sel.FieldName()
		if field == old.Name {
			// The prefix must be resolved under its original spelling.
			if inner, err := relativeScope(sel.Operand(), scope); err == nil && inner.UID() == old.ScopeUID {
				field = newName
			}
		}
		operand := rename(sel.Operand(), old, newName, scope)
		if operand == sel.Operand() && field == sel.FieldName() {
			return n
		}
		return factory.NewSelect(nextID(), operand, field)

	case ast.CallKind:
		c := n.AsCall()
		changed := false
		args := make([]ast.Expr, len(c.Args()))
		for i, arg := range c.Args() {
			args[i] = rename(arg, old, newName, scope)
			changed = changed || args[i] != arg
		}
		if !changed {
			return n
		}
		return factory.NewCall(nextID(), c.FunctionName(), args...)

	default:
		return n
	}
}
