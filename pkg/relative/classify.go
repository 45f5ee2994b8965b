package relative

import "github.com/matzehuels/relayout/pkg/expr"

// selfAliases are the names a rectangle's local scope resolves to its own
// edges.
var selfAliases = map[string]bool{
	"x": true, "y": true,
	"left": true, "right": true, "top": true, "bottom": true,
}

// IsSelfAlias reports whether name refers to one of a rectangle's own edges.
func IsSelfAlias(name string) bool { return selfAliases[name] }

// DependsOnExternalSymbols reports whether e refers to anything outside its
// own rectangle: a dotted member access anywhere in the tree, or a symbol
// that is not a self-alias.
func DependsOnExternalSymbols(e expr.Expr) bool {
	switch e.Kind() {
	case expr.KindConstant:
		return false
	case expr.KindSymbol:
		return !selfAliases[e.Name()]
	}
	if e.Name() == expr.OpDot {
		return true
	}
	for i := range e.NumInputs() {
		if DependsOnExternalSymbols(e.Input(i)) {
			return true
		}
	}
	return false
}
