package component

import (
	stderrors "errors"
	"testing"

	"github.com/matzehuels/relayout/pkg/errors"
	"github.com/matzehuels/relayout/pkg/expr"
	"github.com/matzehuels/relayout/pkg/geom"
)

// tree builds canvas{nav, main{title}}.
func tree() (root, nav, main, title *Component) {
	root = NewWithBounds("canvas", geom.NewBounds(0, 0, 800, 600))
	nav = NewWithBounds("nav", geom.NewBounds(0, 0, 200, 600))
	main = NewWithBounds("main", geom.NewBounds(200, 0, 600, 600))
	title = NewWithBounds("title", geom.NewBounds(200, 0, 600, 40))
	root.AddChild(nav)
	root.AddChild(main)
	main.AddChild(title)
	return
}

type recordingListener struct {
	seen []geom.Bounds
	err  error
}

func (l *recordingListener) ComponentBoundsChanged(c *Component) error {
	l.seen = append(l.seen, c.Bounds())
	return l.err
}

type fakePositioner struct {
	applied  []geom.Bounds
	detached bool
}

func (p *fakePositioner) ApplyNewBounds(b geom.Bounds) error {
	p.applied = append(p.applied, b)
	return nil
}

func (p *fakePositioner) Detach() { p.detached = true }

func TestTree(t *testing.T) {
	root, nav, main, title := tree()

	if title.Root() != root {
		t.Error("Root() should reach the canvas")
	}
	if got, want := title.Path(), "canvas/main/title"; got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
	if nav.FindSibling("main") != main {
		t.Error("FindSibling(main) from nav")
	}
	if nav.FindSibling("title") != nil {
		t.Error("title is not a sibling of nav")
	}
	if root.FindSibling("nav") != nil {
		t.Error("a root has no siblings")
	}
	if root.Find("title") != title {
		t.Error("Find(title)")
	}
	got, err := root.Lookup([]string{"main", "title"})
	if err != nil || got != title {
		t.Errorf("Lookup(main/title) = %v, %v", got, err)
	}
	if _, err := root.Lookup([]string{"nope"}); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Lookup(nope) error = %v, want %v", err, errors.ErrCodeNotFound)
	}
}

func TestAddChildReparents(t *testing.T) {
	root, nav, main, title := tree()

	nav.AddChild(title)
	if title.Parent() != nav {
		t.Error("title should move under nav")
	}
	if len(main.Children()) != 0 {
		t.Errorf("main still has %d children", len(main.Children()))
	}
	if len(root.Children()) != 2 {
		t.Errorf("root has %d children, want 2", len(root.Children()))
	}
}

func TestWriteBoundsNotifies(t *testing.T) {
	_, nav, _, _ := tree()
	l := &recordingListener{}
	nav.AddBoundsListener(l)
	nav.AddBoundsListener(l)

	if err := nav.WriteBounds(nav.Bounds()); err != nil {
		t.Fatalf("WriteBounds(same): %v", err)
	}
	if len(l.seen) != 0 {
		t.Errorf("unchanged bounds notified %d times", len(l.seen))
	}

	next := geom.NewBounds(0, 0, 250, 600)
	if err := nav.WriteBounds(next); err != nil {
		t.Fatalf("WriteBounds: %v", err)
	}
	if len(l.seen) != 1 || l.seen[0] != next {
		t.Errorf("listener saw %v, want [%v]", l.seen, next)
	}

	nav.RemoveBoundsListener(l)
	_ = nav.WriteBounds(geom.NewBounds(0, 0, 10, 10))
	if len(l.seen) != 1 {
		t.Error("removed listener was notified")
	}
}

func TestWriteBoundsJoinsErrors(t *testing.T) {
	_, nav, _, _ := tree()
	errA := stderrors.New("a failed")
	errB := stderrors.New("b failed")
	nav.AddBoundsListener(&recordingListener{err: errA})
	nav.AddBoundsListener(&recordingListener{})
	nav.AddBoundsListener(&recordingListener{err: errB})

	err := nav.WriteBounds(geom.NewBounds(1, 1, 1, 1))
	if !stderrors.Is(err, errA) || !stderrors.Is(err, errB) {
		t.Errorf("WriteBounds error = %v, want both listener errors", err)
	}
}

func TestSetBoundsRouting(t *testing.T) {
	_, nav, _, _ := tree()
	l := &recordingListener{}
	nav.AddBoundsListener(l)

	p := &fakePositioner{}
	nav.SetPositioner(p)

	b := geom.NewBounds(5, 5, 5, 5)
	if err := nav.SetBounds(b); err != nil {
		t.Fatalf("SetBounds: %v", err)
	}
	if len(p.applied) != 1 || p.applied[0] != b {
		t.Errorf("positioner got %v, want [%v]", p.applied, b)
	}
	if nav.Bounds() == b || len(l.seen) != 0 {
		t.Error("SetBounds with a positioner should not write directly")
	}

	nav.SetPositioner(nil)
	if !p.detached {
		t.Error("replacing the positioner should detach the old one")
	}
	if err := nav.SetBounds(b); err != nil {
		t.Fatalf("SetBounds: %v", err)
	}
	if nav.Bounds() != b {
		t.Errorf("Bounds() = %v, want %v", nav.Bounds(), b)
	}
}

func TestSetPositionerSameIsNoop(t *testing.T) {
	_, nav, _, _ := tree()
	p := &fakePositioner{}
	nav.SetPositioner(p)
	nav.SetPositioner(p)
	if p.detached {
		t.Error("re-setting the same positioner should not detach it")
	}
}

func TestRemoveDetachesSubtree(t *testing.T) {
	root, _, main, title := tree()
	pm, pt := &fakePositioner{}, &fakePositioner{}
	main.SetPositioner(pm)
	title.SetPositioner(pt)

	main.Remove()
	if !pm.detached || !pt.detached {
		t.Error("Remove should detach positioners in the subtree")
	}
	if main.Parent() != nil || root.FindChild("main") != nil {
		t.Error("Remove should unlink from the parent")
	}
}

func TestScopeSymbols(t *testing.T) {
	_, _, main, _ := tree()
	s := NewScope(main)

	tests := map[string]float64{
		"x": 200, "left": 200, "y": 0, "top": 0,
		"right": 800, "bottom": 600, "width": 600, "height": 600,
	}
	for name, want := range tests {
		got, err := expr.SymbolRef(name).Evaluate(s)
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if got != want {
			t.Errorf("%s = %v, want %v", name, got, want)
		}
	}

	if _, err := expr.SymbolRef("depth").Evaluate(s); !errors.Is(err, errors.ErrCodeUnresolvedSymbol) {
		t.Errorf("depth error = %v, want %v", err, errors.ErrCodeUnresolvedSymbol)
	}
}

func TestScopeRelative(t *testing.T) {
	root, _, main, title := tree()

	tests := []struct {
		from *Component
		text string
		want float64
	}{
		{main, "nav.right", 200},
		{main, "parent.width", 800},
		{title, "parent.left", 200},
		{title, "parent.parent.height", 600},
		{title, "parent.nav.width", 200},
	}

	for _, tt := range tests {
		got, err := expr.MustParse(tt.text).Evaluate(NewScope(tt.from))
		if err != nil {
			t.Errorf("%s from %s: %v", tt.text, tt.from.Name(), err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s from %s = %v, want %v", tt.text, tt.from.Name(), got, tt.want)
		}
	}

	// title is a child of main, not a sibling.
	if _, err := expr.MustParse("title.height").Evaluate(NewScope(main)); !errors.Is(err, errors.ErrCodeUnresolvedSymbol) {
		t.Errorf("title.height error = %v, want %v", err, errors.ErrCodeUnresolvedSymbol)
	}
	if _, err := expr.MustParse("parent.width").Evaluate(NewScope(root)); !errors.Is(err, errors.ErrCodeUnresolvedSymbol) {
		t.Errorf("root parent error = %v, want %v", err, errors.ErrCodeUnresolvedSymbol)
	}
}

func TestDependencyFinder(t *testing.T) {
	root, nav, _, title := tree()
	f := NewDependencyFinder(NewScope(title))

	if _, err := expr.MustParse("parent.nav.right + parent.left + parent.parent.width").Evaluate(f); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	found := f.Found()
	main := title.Parent()
	if len(found) != 3 || found[0] != main || found[1] != nav || found[2] != root {
		t.Errorf("Found() = %d components, want [main nav canvas]", len(found))
	}
	if f.UID() != NewScope(title).UID() {
		t.Error("finder should share the wrapped scope's UID")
	}
	if c, ok := Of(f); !ok || c != title {
		t.Error("Of(finder) should reach the wrapped component")
	}
}
