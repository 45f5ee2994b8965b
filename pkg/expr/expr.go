package expr

import (
	"math"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/google/cel-go/common/ast"
	"github.com/google/cel-go/common/operators"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/parser"
)

// Kind classifies the root node of an expression.
type Kind int

const (
	// KindConstant is a numeric literal.
	KindConstant Kind = iota
	// KindSymbol is a bare identifier.
	KindSymbol
	// KindOperator is an arithmetic operator or the "." member access.
	KindOperator
	// KindFunction is a global function call such as max(a, b).
	KindFunction
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindConstant:
		return "constant"
	case KindSymbol:
		return "symbol"
	case KindOperator:
		return "operator"
	case KindFunction:
		return "function"
	default:
		return "unknown"
	}
}

// Operator names returned by [Expr.Name].
const (
	OpAdd      = "+"
	OpSubtract = "-"
	OpMultiply = "*"
	OpDivide   = "/"
	OpNegate   = "-"
	OpDot      = "."
)

var (
	factory = ast.NewExprFactory()
	lastID  atomic.Int64
)

func nextID() int64 { return lastID.Add(1) }

// Expr is an immutable expression tree. The zero value is the constant 0.
type Expr struct {
	node ast.Expr
}

// Number returns a constant expression.
// Integral values are stored as integers so they render without a
// trailing ".0".
func Number(v float64) Expr {
	return Expr{node: newNumber(v)}
}

// SymbolRef returns an expression referencing the named symbol.
func SymbolRef(name string) Expr {
	return Expr{node: factory.NewIdent(nextID(), name)}
}

// Member returns the dotted member access "scope.field".
func Member(scope Expr, field string) Expr {
	return Expr{node: factory.NewSelect(nextID(), scope.ast(), field)}
}

// Add returns a + b.
func Add(a, b Expr) Expr {
	return Expr{node: factory.NewCall(nextID(), operators.Add, a.ast(), b.ast())}
}

// Sub returns a - b.
func Sub(a, b Expr) Expr {
	return Expr{node: factory.NewCall(nextID(), operators.Subtract, a.ast(), b.ast())}
}

// Mul returns a * b.
func Mul(a, b Expr) Expr {
	return Expr{node: factory.NewCall(nextID(), operators.Multiply, a.ast(), b.ast())}
}

// Div returns a / b.
func Div(a, b Expr) Expr {
	return Expr{node: factory.NewCall(nextID(), operators.Divide, a.ast(), b.ast())}
}

// Neg returns -a.
func Neg(a Expr) Expr {
	return Expr{node: factory.NewCall(nextID(), operators.Negate, a.ast())}
}

// Call returns the global function call name(args...).
func Call(name string, args ...Expr) Expr {
	nodes := make([]ast.Expr, len(args))
	for i, a := range args {
		nodes[i] = a.ast()
	}
	return Expr{node: factory.NewCall(nextID(), name, nodes...)}
}

// OffsetFrom returns "sym + offset", or "sym - |offset|" when offset is
// negative, or just sym when offset is zero.
func OffsetFrom(sym Expr, offset float64) Expr {
	switch {
	case offset == 0:
		return sym
	case offset < 0:
		return Sub(sym, Number(-offset))
	default:
		return Add(sym, Number(offset))
	}
}

// ast returns the underlying node, materialising the zero value as 0.
func (e Expr) ast() ast.Expr {
	if e.node == nil {
		return newNumber(0)
	}
	return e.node
}

// Kind returns the kind of the root node.
func (e Expr) Kind() Kind {
	return kindOf(e.node)
}

func kindOf(n ast.Expr) Kind {
	if n == nil {
		return KindConstant
	}
	switch n.Kind() {
	case ast.IdentKind:
		return KindSymbol
	case ast.SelectKind:
		return KindOperator
	case ast.CallKind:
		if _, ok := arithmetic[n.AsCall().FunctionName()]; ok {
			return KindOperator
		}
		return KindFunction
	default:
		return KindConstant
	}
}

// arithmetic maps the CEL operator function names accepted by this package
// to their display names.
var arithmetic = map[string]string{
	operators.Add:      OpAdd,
	operators.Subtract: OpSubtract,
	operators.Multiply: OpMultiply,
	operators.Divide:   OpDivide,
	operators.Negate:   OpNegate,
}

// Name returns the symbol name, operator name or function name of the root
// node. Constants have no name.
func (e Expr) Name() string {
	n := e.node
	if n == nil {
		return ""
	}
	switch n.Kind() {
	case ast.IdentKind:
		return n.AsIdent()
	case ast.SelectKind:
		return OpDot
	case ast.CallKind:
		fn := n.AsCall().FunctionName()
		if op, ok := arithmetic[fn]; ok {
			return op
		}
		return fn
	default:
		return ""
	}
}

// NumInputs returns the number of operands of the root node.
// A member access "a.b" has two inputs: the scope expression and the field
// as a symbol.
func (e Expr) NumInputs() int {
	n := e.node
	if n == nil {
		return 0
	}
	switch n.Kind() {
	case ast.SelectKind:
		return 2
	case ast.CallKind:
		return len(n.AsCall().Args())
	default:
		return 0
	}
}

// Input returns operand i of the root node. It panics if i is out of range.
func (e Expr) Input(i int) Expr {
	n := e.node
	switch {
	case n != nil && n.Kind() == ast.SelectKind:
		sel := n.AsSelect()
		switch i {
		case 0:
			return Expr{node: sel.Operand()}
		case 1:
			return SymbolRef(sel.FieldName())
		}
	case n != nil && n.Kind() == ast.CallKind:
		args := n.AsCall().Args()
		if i >= 0 && i < len(args) {
			return Expr{node: args[i]}
		}
	}
	panic("expr: input index out of range")
}

// Value returns the numeric value of a constant expression.
// It returns false for any other kind.
func (e Expr) Value() (float64, bool) {
	if e.node == nil {
		return 0, true
	}
	if e.node.Kind() != ast.LiteralKind {
		return 0, false
	}
	return literalValue(e.node.AsLiteral())
}

// IsConstant reports whether e is a bare numeric literal.
func (e Expr) IsConstant() bool {
	_, ok := e.Value()
	return ok
}

// String returns the canonical text form of e.
func (e Expr) String() string {
	s, err := parser.Unparse(printable(e.ast()), nil)
	if err != nil {
		return "<invalid: " + err.Error() + ">"
	}
	return s
}

// Equal reports whether e and other are structurally identical.
// Numeric literals compare by value, so 100 and 100.0 are equal, and a
// negated literal equals the corresponding negative literal.
func (e Expr) Equal(other Expr) bool {
	return equalNodes(e.ast(), other.ast())
}

func equalNodes(a, b ast.Expr) bool {
	if av, ok := constantOf(a); ok {
		bv, ok := constantOf(b)
		return ok && av == bv
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case ast.IdentKind:
		return a.AsIdent() == b.AsIdent()
	case ast.SelectKind:
		as, bs := a.AsSelect(), b.AsSelect()
		return as.FieldName() == bs.FieldName() && equalNodes(as.Operand(), bs.Operand())
	case ast.CallKind:
		ac, bc := a.AsCall(), b.AsCall()
		if ac.FunctionName() != bc.FunctionName() || len(ac.Args()) != len(bc.Args()) {
			return false
		}
		for i := range ac.Args() {
			if !equalNodes(ac.Args()[i], bc.Args()[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// constantOf folds literals and negated literals to a number.
func constantOf(n ast.Expr) (float64, bool) {
	switch n.Kind() {
	case ast.LiteralKind:
		return literalValue(n.AsLiteral())
	case ast.CallKind:
		c := n.AsCall()
		if c.FunctionName() == operators.Negate && len(c.Args()) == 1 {
			if v, ok := constantOf(c.Args()[0]); ok {
				return -v, true
			}
		}
	}
	return 0, false
}

func literalValue(v ref.Val) (float64, bool) {
	switch v := v.(type) {
	case types.Int:
		return float64(v), true
	case types.Uint:
		return float64(v), true
	case types.Double:
		return float64(v), true
	default:
		return 0, false
	}
}

// maxInt bounds the integral values stored as CEL ints; larger magnitudes
// keep their float representation.
const maxInt = 1 << 63

func newNumber(v float64) ast.Expr {
	if v == math.Trunc(v) && math.Abs(v) < maxInt {
		return factory.NewLiteral(nextID(), types.Int(int64(v)))
	}
	return factory.NewLiteral(nextID(), types.Double(v))
}

// formatDouble renders v so that the parser reads it back as the same
// double: "1e+300" and "0.5" stay as they are, "3" becomes "3.0".
func formatDouble(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEIN") {
		s += ".0"
	}
	return s
}

// printable rewrites double literals in exponent form into identifiers
// carrying their text. The unparser would otherwise append ".0" after the
// exponent, which does not parse.
func printable(n ast.Expr) ast.Expr {
	switch n.Kind() {
	case ast.LiteralKind:
		d, ok := n.AsLiteral().(types.Double)
		if !ok {
			return n
		}
		s := formatDouble(float64(d))
		if strings.Contains(s, ".") {
			return n
		}
		return factory.NewIdent(n.ID(), s)
	case ast.SelectKind:
		sel := n.AsSelect()
		operand := printable(sel.Operand())
		if operand == sel.Operand() {
			return n
		}
		return factory.NewSelect(n.ID(), operand, sel.FieldName())
	case ast.CallKind:
		c := n.AsCall()
		args := make([]ast.Expr, len(c.Args()))
		changed := false
		for i, a := range c.Args() {
			args[i] = printable(a)
			changed = changed || args[i] != a
		}
		if !changed {
			return n
		}
		if c.IsMemberFunction() {
			return factory.NewMemberCall(n.ID(), c.FunctionName(), c.Target(), args...)
		}
		return factory.NewCall(n.ID(), c.FunctionName(), args...)
	default:
		return n
	}
}
