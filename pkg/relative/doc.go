// Package relative describes rectangles whose edges are expressions.
//
// A [Rectangle] holds four [Coordinate]s (left, top, right, bottom). Each
// coordinate is an expression that may refer to the rectangle's own edges
// (x, y, left, right, top, bottom), to sibling components by name
// ("nav.right + 8"), or to the parent ("parent.width - 20").
//
// # Resolution and inverse moves
//
// [Rectangle.Resolve] evaluates the edges and clamps negative extents to
// zero. [Rectangle.MoveToAbsolute] is its inverse: it rewrites each edge so
// the rectangle resolves to a given position while keeping its references,
// so moving an edge defined as "nav.right + 10" changes the 10.
//
// # Static and dynamic rectangles
//
// A rectangle that refers only to literals and its own edges is static and
// is resolved once. Anything else is dynamic: [Rectangle.ApplyToComponent]
// attaches a [Positioner] that re-resolves whenever a referenced component
// moves, and that writes external moves of its host back into the edges.
//
// # Text form
//
//	<left>, <top>, <right>, <bottom>
//
// [ParseRectangle] and [Rectangle.String] round-trip this form.
package relative
