package expr

import (
	"github.com/google/cel-go/common/ast"
	"github.com/google/cel-go/common/operators"

	"github.com/matzehuels/relayout/pkg/errors"
)

// maxEvalDepth bounds symbol recursion for scopes that hand out fresh
// UIDs on every lookup and would otherwise evade cycle detection.
const maxEvalDepth = 256

// Evaluate computes the numeric value of e in scope. A nil scope evaluates
// against [BaseScope], so only constants and built-in functions resolve.
func (e Expr) Evaluate(scope Scope) (float64, error) {
	if scope == nil {
		scope = BaseScope{}
	}
	ev := evaluator{}
	return ev.eval(e.ast(), scope)
}

// evaluator tracks the symbols currently being resolved.
type evaluator struct {
	stack []Symbol
}

func (ev *evaluator) eval(n ast.Expr, scope Scope) (float64, error) {
	switch n.Kind() {
	case ast.LiteralKind:
		v, ok := literalValue(n.AsLiteral())
		if !ok {
			return 0, errors.New(errors.ErrCodeInvalidExpression, "non-numeric literal %v", n.AsLiteral())
		}
		return v, nil

	case ast.IdentKind:
		return ev.symbol(n.AsIdent(), scope)

	case ast.SelectKind:
		sel := n.AsSelect()
		inner, err := relativeScope(sel.Operand(), scope)
		if err != nil {
			return 0, err
		}
		return ev.symbol(sel.FieldName(), inner)

	case ast.CallKind:
		return ev.call(n.AsCall(), scope)

	default:
		return 0, errors.New(errors.ErrCodeInvalidExpression, "cannot evaluate %q", Expr{node: n}.String())
	}
}

func (ev *evaluator) symbol(name string, scope Scope) (float64, error) {
	sym := Symbol{ScopeUID: scope.UID(), Name: name}
	for _, s := range ev.stack {
		if s == sym {
			return 0, errors.New(errors.ErrCodeCyclicReference, "symbol %q refers to itself", name)
		}
	}
	if len(ev.stack) >= maxEvalDepth {
		return 0, errors.New(errors.ErrCodeCyclicReference, "symbol %q nests deeper than %d levels", name, maxEvalDepth)
	}

	value, err := scope.SymbolValue(name)
	if err != nil {
		return 0, err
	}

	ev.stack = append(ev.stack, sym)
	defer func() { ev.stack = ev.stack[:len(ev.stack)-1] }()
	return ev.eval(value.ast(), scope)
}

func (ev *evaluator) call(c ast.CallExpr, scope Scope) (float64, error) {
	args := make([]float64, len(c.Args()))
	for i, arg := range c.Args() {
		v, err := ev.eval(arg, scope)
		if err != nil {
			return 0, err
		}
		args[i] = v
	}

	switch c.FunctionName() {
	case operators.Add:
		return args[0] + args[1], nil
	case operators.Subtract:
		return args[0] - args[1], nil
	case operators.Multiply:
		return args[0] * args[1], nil
	case operators.Divide:
		if args[1] == 0 {
			return 0, nil
		}
		return args[0] / args[1], nil
	case operators.Negate:
		return -args[0], nil
	default:
		return scope.EvaluateFunction(c.FunctionName(), args)
	}
}

// relativeScope resolves the prefix of a dotted reference to a scope.
// "a" resolves through scope.RelativeScope("a"); "a.b" resolves "a" first
// and then asks it for "b".
func relativeScope(n ast.Expr, scope Scope) (Scope, error) {
	switch n.Kind() {
	case ast.IdentKind:
		return scope.RelativeScope(n.AsIdent())
	case ast.SelectKind:
		sel := n.AsSelect()
		outer, err := relativeScope(sel.Operand(), scope)
		if err != nil {
			return nil, err
		}
		return outer.RelativeScope(sel.FieldName())
	default:
		return nil, errors.New(errors.ErrCodeInvalidExpression, "%q does not name a scope", Expr{node: n}.String())
	}
}

// VisitRelativeScopes calls fn for every scope reached through a dotted
// reference in e, outermost prefix first. Prefixes that cannot be resolved
// are reported as an error after the walk; fn still sees every scope that
// did resolve.
func (e Expr) VisitRelativeScopes(scope Scope, fn func(Scope)) error {
	if scope == nil {
		scope = BaseScope{}
	}
	var firstErr error
	var walk func(n ast.Expr)
	walk = func(n ast.Expr) {
		switch n.Kind() {
		case ast.SelectKind:
			sel := n.AsSelect()
			if sel.Operand().Kind() == ast.SelectKind {
				walk(sel.Operand())
			}
			inner, err := relativeScope(sel.Operand(), scope)
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			fn(inner)
		case ast.CallKind:
			for _, arg := range n.AsCall().Args() {
				walk(arg)
			}
		}
	}
	walk(e.ast())
	return firstErr
}

// Symbols returns the distinct bare identifiers referenced by e, in order
// of first appearance. Fields of dotted references are not included.
func (e Expr) Symbols() []string {
	var out []string
	seen := map[string]bool{}
	var walk func(n ast.Expr)
	walk = func(n ast.Expr) {
		switch n.Kind() {
		case ast.IdentKind:
			if name := n.AsIdent(); !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		case ast.SelectKind:
			walk(n.AsSelect().Operand())
		case ast.CallKind:
			for _, arg := range n.AsCall().Args() {
				walk(arg)
			}
		}
	}
	walk(e.ast())
	return out
}
