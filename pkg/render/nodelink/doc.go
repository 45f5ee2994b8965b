// Package nodelink renders a layout's component dependencies as a
// node-link diagram.
//
// # Usage
//
// Convert a layout to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(l, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # DOT Format
//
// Every component is a node and the canvas is drawn as a 3D box. An edge
// A -> B labelled "left,right" means A's left and right edges are written
// in terms of B. With [Options.Containment] the component tree is drawn as
// dashed, arrowless edges.
//
// The generated DOT uses left-to-right layout (rankdir=LR), so components
// that nothing depends on end up on the left.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
