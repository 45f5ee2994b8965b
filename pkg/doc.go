// Package pkg provides the libraries behind relayout, a resolver for layouts
// whose component edges are written as expressions.
//
// # Overview
//
// A layout is a tree of components under a canvas. Each component carries a
// rectangle of four coordinates (left, top, right, bottom), and each
// coordinate is an expression such as "sidebar.right + 16" or
// "parent.width / 2". Resolving a layout evaluates every expression against
// the component tree, rounds the result outward to integer bounds, and keeps
// dependents up to date when the components they refer to move.
//
// The packages are organized by layer:
//
//  1. [expr] - Expression trees: parsing, evaluation, inversion, renaming
//  2. [component] - The component tree and the scopes expressions resolve in
//  3. [relative] - Coordinates, rectangles and the positioner that applies them
//  4. [layout] - Documents turned into resolved trees, plus editing operations
//  5. [render/boxes], [render/nodelink] - SVG and Graphviz output
//  6. [server] - The HTTP API
//
// # Data Flow
//
//	layout document (TOML, YAML, JSON)
//	         ↓
//	    [layoutfile] package (decode + validate)
//	         ↓
//	    [layout] package (build the tree, apply every rectangle)
//	         ↓
//	    [relative] package (positioners resolve and watch dependencies)
//	         ↓
//	    resolved bounds, SVG boxes, dependency graphs
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/relayout/pkg/layout"
//	    "github.com/matzehuels/relayout/pkg/layoutfile"
//	    "github.com/matzehuels/relayout/pkg/render/boxes"
//	)
//
//	f, _ := layoutfile.Load("page.toml")
//	l, _ := layout.Build(f, layout.Options{})
//	for _, e := range l.Entries() {
//	    fmt.Println(e.Name, e.Bounds)
//	}
//	svg := boxes.RenderSVG(l, boxes.WithLabels())
//
// Moving a component keeps its references:
//
//	_ = l.Move("sidebar", geom.NewBounds(0, 0, 300, 600))
//	// "sidebar.right + 16" on content is unchanged; content follows.
//
// # Infrastructure
//
// [cache] stores resolved entries and renders in a file, Redis or MongoDB
// backend. [config] reads relayout.toml. [errors] defines the error codes
// every package reports. [observability] exposes hooks for layout, cache
// and HTTP events.
//
// # Testing
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/relative/...   # Specific package
//	go test -run Example ./...   # Examples only
//
// [expr]: https://pkg.go.dev/github.com/matzehuels/relayout/pkg/expr
// [component]: https://pkg.go.dev/github.com/matzehuels/relayout/pkg/component
// [relative]: https://pkg.go.dev/github.com/matzehuels/relayout/pkg/relative
// [layout]: https://pkg.go.dev/github.com/matzehuels/relayout/pkg/layout
// [layoutfile]: https://pkg.go.dev/github.com/matzehuels/relayout/pkg/layoutfile
// [render/boxes]: https://pkg.go.dev/github.com/matzehuels/relayout/pkg/render/boxes
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/relayout/pkg/render/nodelink
// [server]: https://pkg.go.dev/github.com/matzehuels/relayout/pkg/server
// [cache]: https://pkg.go.dev/github.com/matzehuels/relayout/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/relayout/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/relayout/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/relayout/pkg/observability
package pkg
