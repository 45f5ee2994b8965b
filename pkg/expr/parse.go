package expr

import (
	"regexp"
	"strings"

	"github.com/google/cel-go/common"
	"github.com/google/cel-go/common/ast"
	"github.com/google/cel-go/common/operators"
	"github.com/google/cel-go/parser"

	"github.com/matzehuels/relayout/pkg/errors"
)

// celParser is shared; cel-go parsers are safe for concurrent use.
// No macros are registered, so has()/all()/exists() stay plain calls and
// are then rejected as unknown functions during evaluation.
var celParser = mustNewParser()

func mustNewParser() *parser.Parser {
	p, err := parser.NewParser()
	if err != nil {
		panic(err)
	}
	return p
}

var functionNameRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Parse parses text into an expression.
//
// Only numeric expressions are accepted: number literals, identifiers,
// dotted member access, + - * /, unary minus, parentheses and global
// function calls. Anything else (strings, booleans, comparisons, lists,
// method calls) is rejected with INVALID_EXPRESSION.
func Parse(text string) (Expr, error) {
	src := strings.TrimSpace(text)
	if src == "" {
		return Expr{}, errors.New(errors.ErrCodeInvalidExpression, "empty expression")
	}

	tree, iss := celParser.Parse(common.NewTextSource(src))
	if iss != nil && len(iss.GetErrors()) > 0 {
		return Expr{}, errors.New(errors.ErrCodeInvalidExpression, "parse %q: %s", src, iss.ToDisplayString())
	}
	if tree == nil || tree.Expr() == nil {
		return Expr{}, errors.New(errors.ErrCodeInvalidExpression, "parse %q: no expression", src)
	}
	if err := checkNumeric(tree.Expr()); err != nil {
		return Expr{}, errors.Wrap(errors.ErrCodeInvalidExpression, err, "parse %q", src)
	}
	return Expr{node: tree.Expr()}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level variables.
func MustParse(text string) Expr {
	e, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return e
}

// checkNumeric rejects every node outside the numeric subset.
func checkNumeric(n ast.Expr) error {
	switch n.Kind() {
	case ast.LiteralKind:
		if _, ok := literalValue(n.AsLiteral()); !ok {
			return errors.New(errors.ErrCodeInvalidExpression, "unsupported literal %v", n.AsLiteral())
		}
		return nil
	case ast.IdentKind:
		return nil
	case ast.SelectKind:
		sel := n.AsSelect()
		if sel.IsTestOnly() {
			return errors.New(errors.ErrCodeInvalidExpression, "presence tests are not supported")
		}
		op := sel.Operand()
		if op.Kind() != ast.IdentKind && op.Kind() != ast.SelectKind {
			return errors.New(errors.ErrCodeInvalidExpression, "member access must follow a name, got %q", Expr{node: op}.String())
		}
		return checkNumeric(op)
	case ast.CallKind:
		c := n.AsCall()
		if c.IsMemberFunction() {
			return errors.New(errors.ErrCodeInvalidExpression, "method calls are not supported: %s", c.FunctionName())
		}
		fn := c.FunctionName()
		if _, ok := arithmetic[fn]; ok {
			if len(c.Args()) != operators.Arity(fn) {
				return errors.New(errors.ErrCodeInvalidExpression, "operator %s expects %d operands", fn, operators.Arity(fn))
			}
		} else if _, isOp := operators.FindReverse(fn); isOp || !functionNameRegex.MatchString(fn) {
			return errors.New(errors.ErrCodeInvalidExpression, "unsupported operator %s", fn)
		}
		for _, arg := range c.Args() {
			if err := checkNumeric(arg); err != nil {
				return err
			}
		}
		return nil
	default:
		return errors.New(errors.ErrCodeInvalidExpression, "unsupported expression kind %v", n.Kind())
	}
}
