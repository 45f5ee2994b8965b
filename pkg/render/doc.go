// Package render groups the visual outputs of a resolved layout.
//
// # Overview
//
//   - [boxes] draws every component at its resolved bounds as an SVG
//     wireframe, nested as in the component tree.
//   - [nodelink] draws which component edges depend on which components,
//     as a Graphviz node-link diagram.
//
//	svg := boxes.RenderSVG(l, boxes.WithLabels())
//
//	dot := nodelink.ToDOT(l, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [boxes]: github.com/matzehuels/relayout/pkg/render/boxes
// [nodelink]: github.com/matzehuels/relayout/pkg/render/nodelink
package render
