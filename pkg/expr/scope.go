package expr

import (
	"math"

	"github.com/matzehuels/relayout/pkg/errors"
)

// Symbol identifies a symbol as seen from a particular scope.
// Two references to the same name only denote the same symbol when they are
// resolved in scopes with the same UID.
type Symbol struct {
	ScopeUID string
	Name     string
}

// Scope resolves symbols, relative scopes and functions during evaluation.
type Scope interface {
	// UID identifies the scope for symbol renaming and cycle detection.
	UID() string

	// SymbolValue returns the expression a symbol stands for.
	SymbolValue(name string) (Expr, error)

	// RelativeScope returns the scope reached through the dotted prefix
	// name, as in "name.field".
	RelativeScope(name string) (Scope, error)

	// EvaluateFunction applies a named function to evaluated arguments.
	EvaluateFunction(name string, args []float64) (float64, error)
}

// BaseScope knows no symbols and no relative scopes, and provides the
// built-in functions min, max and abs. Embed it to inherit those defaults.
type BaseScope struct{}

// UID returns the empty scope identifier.
func (BaseScope) UID() string { return "" }

// SymbolValue always fails with UNRESOLVED_SYMBOL.
func (BaseScope) SymbolValue(name string) (Expr, error) {
	return Expr{}, errors.New(errors.ErrCodeUnresolvedSymbol, "unknown symbol %q", name)
}

// RelativeScope always fails with UNRESOLVED_SYMBOL.
func (BaseScope) RelativeScope(name string) (Scope, error) {
	return nil, errors.New(errors.ErrCodeUnresolvedSymbol, "unknown scope %q", name)
}

// EvaluateFunction implements min, max and abs.
func (BaseScope) EvaluateFunction(name string, args []float64) (float64, error) {
	switch name {
	case "min", "max":
		if len(args) == 0 {
			return 0, errors.New(errors.ErrCodeInvalidExpression, "%s() needs at least one argument", name)
		}
		v := args[0]
		for _, a := range args[1:] {
			if name == "min" {
				v = math.Min(v, a)
			} else {
				v = math.Max(v, a)
			}
		}
		return v, nil
	case "abs":
		if len(args) != 1 {
			return 0, errors.New(errors.ErrCodeInvalidExpression, "abs() takes exactly one argument")
		}
		return math.Abs(args[0]), nil
	default:
		return 0, errors.New(errors.ErrCodeUnresolvedSymbol, "unknown function %q", name)
	}
}

var _ Scope = BaseScope{}
