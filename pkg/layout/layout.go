// Package layout builds a live component tree from a layout document and
// exposes the operations the CLI and API run on it.
package layout

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/relayout/pkg/component"
	"github.com/matzehuels/relayout/pkg/errors"
	"github.com/matzehuels/relayout/pkg/expr"
	"github.com/matzehuels/relayout/pkg/geom"
	"github.com/matzehuels/relayout/pkg/layoutfile"
	"github.com/matzehuels/relayout/pkg/relative"
)

// Options configures Build.
type Options struct {
	// MaxApplyAttempts bounds positioner retries. Zero uses the default.
	MaxApplyAttempts int

	// Logger receives positioner debug output. Nil discards it.
	Logger *log.Logger
}

// Layout is a canvas with components bound to their rectangles.
type Layout struct {
	root   *component.Component
	order  []*component.Component
	static map[*component.Component]relative.Rectangle
	opts   []relative.Option
}

// Entry is one component's current state.
type Entry struct {
	Name    string      `json:"name"`
	Parent  string      `json:"parent"`
	Rect    string      `json:"rect"`
	Bounds  geom.Bounds `json:"bounds"`
	Dynamic bool        `json:"dynamic"`
}

// Build creates the tree declared by f and applies every rectangle in
// declaration order.
func Build(f *layoutfile.File, opts Options) (*Layout, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	l := &Layout{
		root:   component.NewWithBounds(layoutfile.RootName, geom.NewBounds(0, 0, f.Canvas.Width, f.Canvas.Height)),
		static: map[*component.Component]relative.Rectangle{},
	}
	if opts.MaxApplyAttempts > 0 {
		l.opts = append(l.opts, relative.WithMaxAttempts(opts.MaxApplyAttempts))
	}
	if opts.Logger != nil {
		l.opts = append(l.opts, relative.WithLogger(opts.Logger))
	}

	rects := make([]relative.Rectangle, len(f.Components))
	for i, decl := range f.Components {
		parent := l.root
		if decl.Parent != "" && decl.Parent != layoutfile.RootName {
			parent = l.Component(decl.Parent)
		}
		c := component.New(decl.Name)
		parent.AddChild(c)
		l.order = append(l.order, c)

		r, err := relative.ParseRectangle(decl.Bounds)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidLayout, err, "component %q", decl.Name)
		}
		rects[i] = r
	}

	for i, c := range l.order {
		if err := l.apply(c, rects[i]); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (l *Layout) apply(c *component.Component, r relative.Rectangle) error {
	if r.IsDynamic() {
		delete(l.static, c)
	} else {
		l.static[c] = r
	}
	if err := r.ApplyToComponent(c, l.opts...); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidLayout, err, "component %q", c.Name())
	}
	return nil
}

// Root returns the canvas.
func (l *Layout) Root() *component.Component { return l.root }

// Components returns the components in declaration order.
func (l *Layout) Components() []*component.Component { return l.order }

// Component returns the component with the given name, or nil.
func (l *Layout) Component(name string) *component.Component {
	for _, c := range l.order {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

func (l *Layout) mustComponent(name string) (*component.Component, error) {
	if c := l.Component(name); c != nil {
		return c, nil
	}
	return nil, errors.New(errors.ErrCodeNotFound, "no component named %q", name)
}

// Rectangle returns the current rectangle of c.
func (l *Layout) Rectangle(c *component.Component) relative.Rectangle {
	if p, ok := c.Positioner().(*relative.Positioner); ok {
		return p.Rectangle()
	}
	return l.static[c]
}

// Entries reports every component's rectangle and bounds.
func (l *Layout) Entries() []Entry {
	out := make([]Entry, len(l.order))
	for i, c := range l.order {
		r := l.Rectangle(c)
		out[i] = Entry{
			Name:    c.Name(),
			Parent:  c.Parent().Name(),
			Rect:    r.String(),
			Bounds:  c.Bounds(),
			Dynamic: r.IsDynamic(),
		}
	}
	return out
}

// Absolute returns c's bounds in canvas coordinates.
func (l *Layout) Absolute(c *component.Component) geom.Bounds {
	b := c.Bounds()
	for p := c.Parent(); p != nil && p != l.root; p = p.Parent() {
		b = b.Translate(p.Bounds().X, p.Bounds().Y)
	}
	return b
}

// Move imposes new bounds on a component from outside, as a drag would.
// A dynamic component's positioner writes the move back into its
// rectangle. A static component's rectangle is moved directly and
// reapplied. Either way, dependents follow.
func (l *Layout) Move(name string, b geom.Bounds) error {
	c, err := l.mustComponent(name)
	if err != nil {
		return err
	}
	if c.Positioner() != nil {
		return c.SetBounds(b)
	}
	r := l.static[c]
	if err := r.MoveToAbsolute(b.ToRect(), nil); err != nil {
		return errors.Wrap(errors.GetCode(err), err, "move %q", name)
	}
	return l.apply(c, r)
}

// Resize changes the canvas size.
func (l *Layout) Resize(width, height int) error {
	return l.root.SetBounds(geom.NewBounds(0, 0, width, height))
}

// SetRectangle replaces a component's rectangle.
func (l *Layout) SetRectangle(name string, r relative.Rectangle) error {
	c, err := l.mustComponent(name)
	if err != nil {
		return err
	}
	return l.apply(c, r)
}

// Rename renames a component and rewrites every reference to it: bare
// references from its siblings and dotted references from anywhere.
func (l *Layout) Rename(oldName, newName string) error {
	c, err := l.mustComponent(oldName)
	if err != nil {
		return err
	}
	if err := errors.ValidateComponentName(newName); err != nil {
		return err
	}
	if newName == layoutfile.RootName || l.Component(newName) != nil {
		return errors.New(errors.ErrCodeInvalidInput, "a component named %q already exists", newName)
	}

	// References to c resolve in the scope of any child of c's parent.
	var symbols []expr.Symbol
	for _, sib := range c.Parent().Children() {
		symbols = append(symbols, expr.Symbol{ScopeUID: component.NewScope(sib).UID(), Name: oldName})
	}

	rects := make([]relative.Rectangle, len(l.order))
	for i, x := range l.order {
		r := l.Rectangle(x)
		for _, sym := range symbols {
			r.RenameSymbol(sym, newName, relative.NewLocalScope(&r, component.NewScope(x)))
		}
		rects[i] = r
	}

	c.SetName(newName)
	for i, x := range l.order {
		if rects[i].Equal(l.Rectangle(x)) {
			continue
		}
		if err := l.apply(x, rects[i]); err != nil {
			return err
		}
	}
	return nil
}

// Edge is a dependency of one component's rectangle on another component.
type Edge struct {
	From string // component whose rectangle holds the reference
	To   string // referenced component
	Side string // edge of From that holds the reference
}

// Dependencies lists, per component edge, the components it refers to
// through dotted references. Unresolvable references are skipped.
func (l *Layout) Dependencies() []Edge {
	var out []Edge
	sides := [4]string{"left", "top", "right", "bottom"}
	for _, c := range l.order {
		r := l.Rectangle(c)
		scope := relative.NewLocalScope(&r, component.NewScope(c))
		for i, coord := range [4]relative.Coordinate{r.Left, r.Top, r.Right, r.Bottom} {
			seen := map[*component.Component]bool{}
			_ = coord.Expression().VisitRelativeScopes(scope, func(s expr.Scope) {
				dep, ok := component.Of(s)
				if !ok || seen[dep] {
					return
				}
				seen[dep] = true
				out = append(out, Edge{From: c.Name(), To: dep.Name(), Side: sides[i]})
			})
		}
	}
	return out
}

// File returns a layout document describing the current state.
func (l *Layout) File() *layoutfile.File {
	b := l.root.Bounds()
	f := &layoutfile.File{Canvas: layoutfile.Canvas{Width: b.Width, Height: b.Height}}
	for _, c := range l.order {
		parent := ""
		if p := c.Parent(); p != l.root {
			parent = p.Name()
		}
		f.Components = append(f.Components, layoutfile.Component{
			Name:   c.Name(),
			Parent: parent,
			Bounds: l.Rectangle(c).String(),
		})
	}
	return f
}

// Classification reports, per edge, whether a component's rectangle refers
// to anything outside itself.
type Classification struct {
	Name    string `json:"name"`
	Rect    string `json:"rect"`
	Dynamic bool   `json:"dynamic"`
	Left    bool   `json:"left"`
	Top     bool   `json:"top"`
	Right   bool   `json:"right"`
	Bottom  bool   `json:"bottom"`
}

// Classify inspects the rectangles of f without resolving them, so it also
// works on layouts whose references cannot be resolved.
func Classify(f *layoutfile.File) ([]Classification, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	out := make([]Classification, len(f.Components))
	for i, decl := range f.Components {
		r, err := relative.ParseRectangle(decl.Bounds)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidLayout, err, "component %q", decl.Name)
		}
		out[i] = Classification{
			Name:    decl.Name,
			Rect:    r.String(),
			Dynamic: r.IsDynamic(),
			Left:    r.Left.IsDynamic(),
			Top:     r.Top.IsDynamic(),
			Right:   r.Right.IsDynamic(),
			Bottom:  r.Bottom.IsDynamic(),
		}
	}
	return out, nil
}
