// Package component provides the host element tree that relative
// rectangles are applied to.
//
// A [Component] has a name, integer bounds, a parent and children, and a
// single-owner positioner slot. Bounds can change in two ways:
//
//   - [Component.SetBounds] is the external setter (a drag, a resize, an
//     API call). When a positioner is attached it is routed to the
//     positioner, which back-propagates the new bounds into its symbolic
//     definition.
//   - [Component.WriteBounds] is the positioner-side setter; it writes
//     directly.
//
// Either way, registered [BoundsListener]s are notified after the bounds
// actually change. Positioners register themselves as listeners on the
// components their expressions depend on.
package component

import (
	stderrors "errors"
	"slices"

	"github.com/google/uuid"

	"github.com/matzehuels/relayout/pkg/errors"
	"github.com/matzehuels/relayout/pkg/geom"
)

// Positioner keeps a component's bounds consistent with some definition.
type Positioner interface {
	// ApplyNewBounds handles an externally imposed bounds change.
	ApplyNewBounds(b geom.Bounds) error

	// Detach releases every registration the positioner holds. It is called
	// when the positioner is replaced or its component is removed.
	Detach()
}

// BoundsListener is notified after a component's bounds change.
type BoundsListener interface {
	ComponentBoundsChanged(c *Component) error
}

// Component is a named rectangle in a tree.
type Component struct {
	uid      string
	name     string
	bounds   geom.Bounds
	parent   *Component
	children []*Component

	positioner Positioner
	listeners  []BoundsListener
}

// New creates a detached component with empty bounds.
func New(name string) *Component {
	return &Component{uid: uuid.NewString(), name: name}
}

// NewWithBounds creates a detached component with the given bounds.
func NewWithBounds(name string, b geom.Bounds) *Component {
	c := New(name)
	c.bounds = b
	return c
}

// UID returns the component's unique identifier.
func (c *Component) UID() string { return c.uid }

// Name returns the component's name.
func (c *Component) Name() string { return c.name }

// SetName renames the component. Expressions that refer to it by name are
// not rewritten; see layout.Layout.Rename.
func (c *Component) SetName(name string) { c.name = name }

// Parent returns the parent component, or nil for a root.
func (c *Component) Parent() *Component { return c.parent }

// Children returns the direct children in insertion order.
func (c *Component) Children() []*Component { return c.children }

// Root returns the top of the tree c belongs to.
func (c *Component) Root() *Component {
	r := c
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// AddChild appends child, detaching it from any previous parent.
func (c *Component) AddChild(child *Component) {
	if child.parent != nil {
		child.parent.removeChild(child)
	}
	child.parent = c
	c.children = append(c.children, child)
}

func (c *Component) removeChild(child *Component) {
	if i := slices.Index(c.children, child); i >= 0 {
		c.children = slices.Delete(c.children, i, i+1)
	}
	child.parent = nil
}

// Remove detaches c from its parent and destroys its positioner, and does the
// same for every descendant.
func (c *Component) Remove() {
	c.Walk(func(d *Component) bool {
		d.SetPositioner(nil)
		return true
	})
	if c.parent != nil {
		c.parent.removeChild(c)
	}
}

// FindChild returns the direct child with the given name.
func (c *Component) FindChild(name string) *Component {
	for _, ch := range c.children {
		if ch.name == name {
			return ch
		}
	}
	return nil
}

// FindSibling returns the component with the given name that shares c's
// parent. A root has no siblings.
func (c *Component) FindSibling(name string) *Component {
	if c.parent == nil {
		return nil
	}
	return c.parent.FindChild(name)
}

// Find returns the first component named name in c's subtree, depth first.
func (c *Component) Find(name string) *Component {
	var found *Component
	c.Walk(func(d *Component) bool {
		if d.name == name {
			found = d
			return false
		}
		return true
	})
	return found
}

// Walk visits c and its descendants depth first until fn returns false.
func (c *Component) Walk(fn func(*Component) bool) bool {
	if !fn(c) {
		return false
	}
	for _, ch := range c.children {
		if !ch.Walk(fn) {
			return false
		}
	}
	return true
}

// Path returns the slash-separated names from the root to c.
func (c *Component) Path() string {
	if c.parent == nil {
		return c.name
	}
	return c.parent.Path() + "/" + c.name
}

// Bounds returns the current bounds.
func (c *Component) Bounds() geom.Bounds { return c.bounds }

// SetBounds changes the bounds from outside the layout system. With a
// positioner attached the change is routed through it so the symbolic
// definition follows; otherwise the bounds are written directly.
func (c *Component) SetBounds(b geom.Bounds) error {
	if c.positioner != nil {
		return c.positioner.ApplyNewBounds(b)
	}
	return c.WriteBounds(b)
}

// WriteBounds stores b and notifies listeners if it differs from the
// current bounds. Listener errors are joined and returned.
func (c *Component) WriteBounds(b geom.Bounds) error {
	if b == c.bounds {
		return nil
	}
	c.bounds = b

	var errs []error
	for _, l := range slices.Clone(c.listeners) {
		if err := l.ComponentBoundsChanged(c); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

// Positioner returns the attached positioner, if any.
func (c *Component) Positioner() Positioner { return c.positioner }

// SetPositioner attaches p, detaching and discarding any previous
// positioner. A nil p leaves the component without one.
func (c *Component) SetPositioner(p Positioner) {
	if c.positioner == p {
		return
	}
	old := c.positioner
	c.positioner = p
	if old != nil {
		old.Detach()
	}
}

// AddBoundsListener registers l. Registering the same listener twice has no
// effect.
func (c *Component) AddBoundsListener(l BoundsListener) {
	if !slices.Contains(c.listeners, l) {
		c.listeners = append(c.listeners, l)
	}
}

// RemoveBoundsListener unregisters l.
func (c *Component) RemoveBoundsListener(l BoundsListener) {
	if i := slices.Index(c.listeners, l); i >= 0 {
		c.listeners = slices.Delete(c.listeners, i, i+1)
	}
}

// NumBoundsListeners returns the number of registered listeners.
func (c *Component) NumBoundsListeners() int { return len(c.listeners) }

// Lookup follows a chain of child names down from c.
func (c *Component) Lookup(path []string) (*Component, error) {
	cur := c
	for _, name := range path {
		next := cur.FindChild(name)
		if next == nil {
			return nil, errors.New(errors.ErrCodeNotFound, "component %q not found under %q", name, cur.Path())
		}
		cur = next
	}
	return cur, nil
}
