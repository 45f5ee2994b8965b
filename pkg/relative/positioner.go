package relative

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/relayout/pkg/component"
	"github.com/matzehuels/relayout/pkg/errors"
	"github.com/matzehuels/relayout/pkg/geom"
	"github.com/matzehuels/relayout/pkg/observability"
)

// DefaultMaxApplyAttempts bounds how often Apply re-resolves before giving
// up. Four covers one dependency hop per edge.
const DefaultMaxApplyAttempts = 4

// Positioner keeps a component's bounds equal to a dynamic rectangle.
//
// It re-resolves whenever a component its edges refer to changes bounds,
// and when the host's bounds are changed from outside it moves the
// rectangle's edges to match before re-applying.
type Positioner struct {
	host        *component.Component
	rect        Rectangle
	maxAttempts int
	logger      *log.Logger

	watching []*component.Component
	depth    int
	detached bool
}

// Option configures a Positioner.
type Option func(*Positioner)

// WithMaxAttempts sets the apply retry bound. Values below 1 are ignored.
func WithMaxAttempts(n int) Option {
	return func(p *Positioner) {
		if n >= 1 {
			p.maxAttempts = n
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(p *Positioner) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPositioner creates a positioner for host owning a copy of rect.
// It is not attached; see [Rectangle.ApplyToComponent].
func NewPositioner(host *component.Component, rect Rectangle, opts ...Option) *Positioner {
	p := &Positioner{
		host:        host,
		rect:        rect,
		maxAttempts: DefaultMaxApplyAttempts,
		logger:      log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Host returns the component being positioned.
func (p *Positioner) Host() *component.Component { return p.host }

// Rectangle returns a copy of the owned rectangle.
func (p *Positioner) Rectangle() Rectangle { return p.rect }

// IsUsingRectangle reports whether the owned rectangle is structurally equal
// to r.
func (p *Positioner) IsUsingRectangle(r Rectangle) bool { return p.rect.Equal(r) }

// Watching returns the components whose bounds changes trigger Apply.
func (p *Positioner) Watching() []*component.Component { return p.watching }

// Apply resolves the rectangle against the host's surroundings and writes
// the result to the host, repeating while the write changes what the
// rectangle resolves to. It fails with RECURSIVE_LAYOUT if the bounds have
// not settled within the attempt bound, or if Apply re-enters itself more
// deeply than that bound.
func (p *Positioner) Apply() error {
	if p.detached {
		return nil
	}
	name := p.host.Path()
	if p.depth >= p.maxAttempts {
		err := errors.New(errors.ErrCodeRecursiveLayout, "%q re-entered layout %d times", name, p.depth)
		observability.Layout().OnApply(name, p.depth, err)
		return err
	}
	p.depth++
	defer func() { p.depth-- }()

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		b, err := p.resolve()
		if err != nil {
			err = errors.Wrap(errors.GetCode(err), err, "apply %q", name)
			observability.Layout().OnApply(name, attempt, err)
			return err
		}
		if b == p.host.Bounds() {
			p.logger.Debug("layout settled", "component", name, "bounds", b, "attempts", attempt)
			observability.Layout().OnApply(name, attempt, nil)
			return nil
		}
		p.logger.Debug("layout applied", "component", name, "bounds", b, "attempt", attempt)
		if err := p.host.WriteBounds(b); err != nil {
			observability.Layout().OnApply(name, attempt, err)
			return err
		}
		if p.detached {
			return nil
		}
	}

	err := errors.New(errors.ErrCodeRecursiveLayout,
		"%q did not settle after %d attempts; its rectangle %q refers to itself", name, p.maxAttempts, p.rect.String())
	observability.Layout().OnApply(name, p.maxAttempts, err)
	return err
}

// resolve evaluates the rectangle and refreshes the listener registrations
// from the components the evaluation reached.
func (p *Positioner) resolve() (geom.Bounds, error) {
	start := time.Now()
	finder := component.NewDependencyFinder(component.NewScope(p.host))
	r, err := p.rect.Resolve(NewLocalScope(&p.rect, finder))
	p.watch(finder.Found())
	observability.Layout().OnResolve(p.host.Path(), time.Since(start), err)
	if err != nil {
		return geom.Bounds{}, err
	}
	return r.SmallestIntegerContainer(), nil
}

// ApplyNewBounds handles a bounds change imposed on the host from outside:
// the rectangle's edges are moved so they resolve to b, then Apply runs so
// that dependents see the change.
func (p *Positioner) ApplyNewBounds(b geom.Bounds) error {
	if b == p.host.Bounds() {
		return nil
	}
	name := p.host.Path()
	err := p.rect.MoveToAbsolute(b.ToRect(), NewLocalScope(&p.rect, component.NewScope(p.host)))
	observability.Layout().OnInverse(name, err)
	if err != nil {
		return errors.Wrap(errors.GetCode(err), err, "move %q", name)
	}
	p.logger.Debug("rectangle moved", "component", name, "bounds", b, "rect", p.rect.String())
	return p.Apply()
}

// ComponentBoundsChanged re-applies when a watched component changes.
func (p *Positioner) ComponentBoundsChanged(*component.Component) error {
	return p.Apply()
}

// Detach unregisters from every watched component. A detached positioner
// ignores further triggers.
func (p *Positioner) Detach() {
	p.watch(nil)
	p.detached = true
}

func (p *Positioner) watch(found []*component.Component) {
	keep := make([]*component.Component, 0, len(found))
	for _, c := range found {
		if c != p.host {
			keep = append(keep, c)
		}
	}
	for _, c := range p.watching {
		if !slices.Contains(keep, c) {
			c.RemoveBoundsListener(p)
		}
	}
	for _, c := range keep {
		c.AddBoundsListener(p)
	}
	p.watching = keep
}

// ApplyToComponent binds r to c.
//
// A static rectangle is resolved once and written to c, detaching any
// positioner c had. A dynamic rectangle gets a Positioner that is attached
// to c and applied immediately, unless c's current positioner already uses
// an equal rectangle.
func (r Rectangle) ApplyToComponent(c *component.Component, opts ...Option) error {
	if !r.IsDynamic() {
		c.SetPositioner(nil)
		resolved, err := r.Resolve(nil)
		if err != nil {
			return errors.Wrap(errors.GetCode(err), err, "apply %q", c.Path())
		}
		return c.WriteBounds(resolved.SmallestIntegerContainer())
	}

	if existing, ok := c.Positioner().(*Positioner); ok && existing.IsUsingRectangle(r) {
		return nil
	}
	p := NewPositioner(c, r, opts...)
	c.SetPositioner(p)
	return p.Apply()
}

var (
	_ component.Positioner     = (*Positioner)(nil)
	_ component.BoundsListener = (*Positioner)(nil)
)
