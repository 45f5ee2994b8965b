// Package expr is the expression engine behind relative coordinates.
//
// Expressions are small arithmetic formulas over named symbols:
//
//	10
//	left + 100
//	sidebar.right + 8
//	max(parent.width / 2, 320)
//
// Parsing and canonical rendering are delegated to the CEL parser and
// unparser from github.com/google/cel-go; only the numeric subset of the
// grammar is accepted (number literals, identifiers, dotted member access,
// + - * /, unary minus and global function calls). Evaluation is done here,
// against a [Scope] that maps symbol names to further expressions.
//
// # Symbols and Scopes
//
// A bare identifier is looked up with [Scope.SymbolValue]. The returned
// expression is evaluated recursively in the same scope, so "right" may be
// defined in terms of "left". A dotted reference "a.b" first asks the scope
// for the relative scope named "a" ([Scope.RelativeScope]) and then looks up
// "b" inside it.
//
// Evaluation fails with UNRESOLVED_SYMBOL when a name cannot be found and
// with CYCLIC_REFERENCE when a symbol is revisited while it is still being
// resolved (see package github.com/matzehuels/relayout/pkg/errors).
//
// # Structural Operations
//
// [Expr.WithRenamedSymbol] rewrites symbol references structurally, so that
// renaming "a" never touches "abc". [Expr.AdjustedToGiveNewResult] solves
// for a constant term so that the expression evaluates to a target value;
// this is what lets a dragged edge keep its relative anchoring.
package expr
