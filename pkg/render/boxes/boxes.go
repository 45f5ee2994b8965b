// Package boxes renders the resolved bounds of a layout as an SVG
// wireframe: one box per component, nested as in the component tree.
//
//	svg := boxes.RenderSVG(l, boxes.WithLabels(), boxes.WithRects())
package boxes

import (
	"bytes"
	"fmt"

	svg "github.com/ajstarks/svgo"

	"github.com/matzehuels/relayout/pkg/component"
	"github.com/matzehuels/relayout/pkg/layout"
)

// palette fills dynamic boxes by nesting depth.
var palette = []string{"#e3f2fd", "#e8f5e9", "#fff3e0", "#f3e5f5", "#e0f7fa"}

const (
	staticFill  = "#eeeeee"
	strokeColor = "#455a64"
	canvasFill  = "#fafafa"
)

// Option configures SVG rendering.
type Option func(*renderer)

type renderer struct {
	labels  bool
	rects   bool
	padding int
}

// WithLabels draws each component's name in its top-left corner.
func WithLabels() Option { return func(r *renderer) { r.labels = true } }

// WithRects draws each component's rectangle text under its name.
func WithRects() Option { return func(r *renderer) { r.rects = true } }

// WithPadding adds a margin around the canvas.
func WithPadding(p int) Option {
	return func(r *renderer) {
		if p >= 0 {
			r.padding = p
		}
	}
}

// RenderSVG draws l's canvas and every component at its current bounds.
// Components are drawn parents first so children stay visible.
func RenderSVG(l *layout.Layout, opts ...Option) []byte {
	r := renderer{padding: 8}
	for _, opt := range opts {
		opt(&r)
	}

	root := l.Root().Bounds()
	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(root.Width+2*r.padding, root.Height+2*r.padding)
	canvas.Gtransform(fmt.Sprintf("translate(%d,%d)", r.padding, r.padding))
	canvas.Rect(0, 0, root.Width, root.Height, fmt.Sprintf("fill:%s;stroke:%s;stroke-dasharray:4,4", canvasFill, strokeColor))

	l.Root().Walk(func(c *component.Component) bool {
		if c == l.Root() {
			return true
		}
		r.drawComponent(canvas, l, c)
		return true
	})

	canvas.Gend()
	canvas.End()
	return buf.Bytes()
}

func (r renderer) drawComponent(canvas *svg.SVG, l *layout.Layout, c *component.Component) {
	b := l.Absolute(c)
	rect := l.Rectangle(c)

	fill := staticFill
	if rect.IsDynamic() {
		fill = palette[(depth(c)-1)%len(palette)]
	}

	canvas.Gid("box-" + c.Name())
	canvas.Title(c.Path() + ": " + rect.String())
	canvas.Rect(b.X, b.Y, b.Width, b.Height, fmt.Sprintf("fill:%s;fill-opacity:0.85;stroke:%s;stroke-width:1", fill, strokeColor))
	if r.labels {
		canvas.Text(b.X+4, b.Y+14, c.Name(), "font-family:sans-serif;font-size:12px;fill:#263238")
	}
	if r.rects {
		canvas.Text(b.X+4, b.Y+28, rect.String(), "font-family:monospace;font-size:10px;fill:#607d8b")
	}
	canvas.Gend()
}

// depth is 1 for children of the canvas.
func depth(c *component.Component) int {
	d := 0
	for p := c.Parent(); p != nil; p = p.Parent() {
		d++
	}
	return d
}
