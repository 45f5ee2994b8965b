package expr

import (
	"math"

	"github.com/google/cel-go/common/ast"
	"github.com/google/cel-go/common/operators"
)

// AdjustedToGiveNewResult returns a variant of e that evaluates to target in
// scope, changing as little of its structure as possible.
//
//   - A bare constant is replaced by target.
//   - Otherwise the first adjustable constant term is re-solved. Terms are
//     searched through +, -, unary minus, * and the dividend of /; function
//     arguments and dotted references are never touched. "left + 100" moved
//     to 250 with left = 50 becomes "left + 200".
//   - An expression without such a constant gets an offset appended:
//     "sidebar.right" becomes "sidebar.right + 12".
//
// A resulting negative offset is folded into the operator, so the output is
// "sym - 5" rather than "sym + -5".
//
// When changing the constant by 1 does not change the result, the
// expression is replaced by target. This includes magnitudes beyond 2^53,
// where float64 absorbs the step: "left + 10" moved to 1e17 loses its
// reference to left.
func (e Expr) AdjustedToGiveNewResult(target float64, scope Scope) (Expr, error) {
	if scope == nil {
		scope = BaseScope{}
	}
	root := e.ast()
	if _, ok := constantOf(root); ok {
		return Number(target), nil
	}

	path, c0, ok := findTermToAdjust(root)
	if !ok {
		current, err := e.Evaluate(scope)
		if err != nil {
			return Expr{}, err
		}
		return OffsetFrom(e, target-current), nil
	}

	at := func(c float64) (float64, error) {
		return Expr{node: replaceAt(root, path, c)}.Evaluate(scope)
	}
	f0, err := at(c0)
	if err != nil {
		return Expr{}, err
	}
	f1, err := at(c0 + 1)
	if err != nil {
		return Expr{}, err
	}

	// Every searchable path is affine in the chosen constant.
	slope := f1 - f0
	if slope == 0 || math.IsNaN(slope) || math.IsInf(slope, 0) {
		return Number(target), nil
	}
	c := c0 + (target-f0)/slope
	return Expr{node: replaceAt(root, path, roundNoise(c))}, nil
}

// findTermToAdjust returns the argument path to the constant that should be
// re-solved. Direct constant operands win over deeper ones.
func findTermToAdjust(n ast.Expr) ([]int, float64, bool) {
	if n.Kind() != ast.CallKind {
		return nil, 0, false
	}
	c := n.AsCall()
	fn := c.FunctionName()
	var candidates []int
	switch fn {
	case operators.Add, operators.Subtract, operators.Multiply:
		candidates = []int{0, 1}
	case operators.Negate, operators.Divide:
		candidates = []int{0}
	default:
		return nil, 0, false
	}

	args := c.Args()
	for _, i := range candidates {
		if args[i].Kind() == ast.LiteralKind {
			if v, ok := literalValue(args[i].AsLiteral()); ok {
				return []int{i}, v, true
			}
		}
	}
	for _, i := range candidates {
		if sub, v, ok := findTermToAdjust(args[i]); ok {
			return append([]int{i}, sub...), v, true
		}
	}
	return nil, 0, false
}

// replaceAt rebuilds n with the literal at path set to v.
func replaceAt(n ast.Expr, path []int, v float64) ast.Expr {
	if len(path) == 0 {
		return newNumber(v)
	}
	c := n.AsCall()
	fn := c.FunctionName()
	args := append([]ast.Expr(nil), c.Args()...)
	i := path[0]

	if len(path) == 1 && i == 1 && v < 0 && (fn == operators.Add || fn == operators.Subtract) {
		flipped := operators.Subtract
		if fn == operators.Subtract {
			flipped = operators.Add
		}
		args[1] = newNumber(-v)
		return factory.NewCall(nextID(), flipped, args...)
	}

	args[i] = replaceAt(args[i], path[1:], v)
	return factory.NewCall(nextID(), fn, args...)
}

// roundNoise snaps values within 1e-9 of an integer, so that solving
// against integral bounds yields integral offsets.
func roundNoise(v float64) float64 {
	if r := math.Round(v); math.Abs(v-r) < 1e-9 {
		return r
	}
	return v
}
