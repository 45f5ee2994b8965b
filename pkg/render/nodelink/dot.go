package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/relayout/pkg/layout"
	"github.com/matzehuels/relayout/pkg/layoutfile"
)

// Options configures dependency diagram rendering.
type Options struct {
	// Detailed adds each component's rectangle and bounds to its label.
	// When false, only the name is shown.
	Detailed bool

	// Containment draws dashed parent-to-child edges in addition to the
	// dependency edges.
	Containment bool
}

// ToDOT converts the dependencies of l to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
//
// An edge A -> B means a rectangle edge of A refers to B. Edges between the
// same pair are merged and labelled with the referring sides. Static
// components are drawn with a grey fill.
func ToDOT(l *layout.Layout, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=10, fontcolor=\"#666666\"];\n")
	buf.WriteString("\n")

	root := l.Root()
	fmt.Fprintf(&buf, "  %q [label=%q, shape=box3d];\n", root.Name(), fmtCanvasLabel(root.Bounds().Width, root.Bounds().Height, opts.Detailed))
	for _, e := range l.Entries() {
		fmt.Fprintf(&buf, "  %q [%s];\n", e.Name, strings.Join(fmtAttrs(e, opts.Detailed), ", "))
	}

	if opts.Containment {
		buf.WriteString("\n")
		for _, e := range l.Entries() {
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed, arrowhead=none, color=\"#bbbbbb\"];\n", e.Parent, e.Name)
		}
	}

	buf.WriteString("\n")
	for _, e := range mergeEdges(l.Dependencies()) {
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.from, e.to, strings.Join(e.sides, ","))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtCanvasLabel(w, h int, detailed bool) string {
	if !detailed {
		return layoutfile.RootName
	}
	return fmt.Sprintf("%s\n%dx%d", layoutfile.RootName, w, h)
}

func fmtAttrs(e layout.Entry, detailed bool) []string {
	label := e.Name
	if detailed {
		label = e.Name + "\n" + e.Rect + "\n" + e.Bounds.String()
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if !e.Dynamic {
		attrs = append(attrs, "fillcolor=lightgrey")
	}
	return attrs
}

type mergedEdge struct {
	from, to string
	sides    []string
}

// mergeEdges collapses edges with the same endpoints, keeping first-seen
// order.
func mergeEdges(edges []layout.Edge) []mergedEdge {
	var out []mergedEdge
	index := map[[2]string]int{}
	for _, e := range edges {
		key := [2]string{e.From, e.To}
		if i, ok := index[key]; ok {
			out[i].sides = append(out[i].sides, e.Side)
			continue
		}
		index[key] = len(out)
		out = append(out, mergedEdge{from: e.From, to: e.To, sides: []string{e.Side}})
	}
	return out
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
