package layout

import (
	"testing"

	"github.com/matzehuels/relayout/pkg/errors"
	"github.com/matzehuels/relayout/pkg/geom"
	"github.com/matzehuels/relayout/pkg/layoutfile"
)

func sample() *layoutfile.File {
	return &layoutfile.File{
		Canvas: layoutfile.Canvas{Width: 800, Height: 600},
		Components: []layoutfile.Component{
			{Name: "sidebar", Bounds: "0, 0, 240, parent.height"},
			{Name: "content", Bounds: "sidebar.right + 16, 0, parent.width, parent.height"},
			{Name: "title", Parent: "content", Bounds: "0, 0, parent.width, 40"},
			{Name: "logo", Bounds: "10, 10, left + 32, top + 32"},
		},
	}
}

func build(t *testing.T) *Layout {
	t.Helper()
	l, err := Build(sample(), Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return l
}

func bounds(l *Layout, name string) geom.Bounds {
	return l.Component(name).Bounds()
}

func TestBuild(t *testing.T) {
	l := build(t)

	want := map[string]geom.Bounds{
		"sidebar": geom.NewBounds(0, 0, 240, 600),
		"content": geom.NewBounds(256, 0, 544, 600),
		"title":   geom.NewBounds(0, 0, 544, 40),
		"logo":    geom.NewBounds(10, 10, 32, 32),
	}
	for name, b := range want {
		if got := bounds(l, name); got != b {
			t.Errorf("%s = %v, want %v", name, got, b)
		}
	}

	entries := l.Entries()
	if len(entries) != 4 {
		t.Fatalf("len(Entries) = %d, want 4", len(entries))
	}
	if entries[2].Parent != "content" || !entries[2].Dynamic {
		t.Errorf("title entry = %+v", entries[2])
	}
	if entries[3].Dynamic {
		t.Error("logo should be static")
	}
}

func TestAbsolute(t *testing.T) {
	l := build(t)
	if got, want := l.Absolute(l.Component("title")), geom.NewBounds(256, 0, 544, 40); got != want {
		t.Errorf("Absolute(title) = %v, want %v", got, want)
	}
	if got, want := l.Absolute(l.Component("logo")), geom.NewBounds(10, 10, 32, 32); got != want {
		t.Errorf("Absolute(logo) = %v, want %v", got, want)
	}
}

func TestBuildForwardReference(t *testing.T) {
	f := &layoutfile.File{
		Canvas: layoutfile.Canvas{Width: 100, Height: 100},
		Components: []layoutfile.Component{
			{Name: "a", Bounds: "b.right, 0, parent.width, 10"},
			{Name: "b", Bounds: "0, 0, 30, 10"},
		},
	}
	l, err := Build(f, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got, want := bounds(l, "a"), geom.NewBounds(30, 0, 70, 10); got != want {
		t.Errorf("a = %v, want %v", got, want)
	}
}

func TestBuildErrors(t *testing.T) {
	f := sample()
	f.Components[1].Bounds = "ghost.right, 0, 10, 10"
	_, err := Build(f, Options{})
	if !errors.Is(err, errors.ErrCodeInvalidLayout) || !errors.Is(err, errors.ErrCodeUnresolvedSymbol) {
		t.Errorf("Build error = %v, want INVALID_LAYOUT wrapping UNRESOLVED_SYMBOL", err)
	}

	f = sample()
	f.Components[3].Bounds = "0, 0, width + 1, 10"
	_, err = Build(f, Options{MaxApplyAttempts: 2})
	if !errors.Is(err, errors.ErrCodeRecursiveLayout) {
		t.Errorf("Build error = %v, want %v", err, errors.ErrCodeRecursiveLayout)
	}
}

func TestMoveDynamic(t *testing.T) {
	l := build(t)

	if err := l.Move("sidebar", geom.NewBounds(0, 0, 300, 600)); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if got, want := l.Rectangle(l.Component("sidebar")).String(), "0, 0, 300, parent.height"; got != want {
		t.Errorf("sidebar rect = %q, want %q", got, want)
	}
	if got, want := bounds(l, "content"), geom.NewBounds(316, 0, 484, 600); got != want {
		t.Errorf("content = %v, want %v", got, want)
	}
	if got, want := bounds(l, "title"), geom.NewBounds(0, 0, 484, 40); got != want {
		t.Errorf("title = %v, want %v", got, want)
	}

	if err := l.Move("content", geom.NewBounds(320, 10, 480, 590)); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if got, want := l.Rectangle(l.Component("content")).String(), "sidebar.right + 20, 10, parent.width, parent.height"; got != want {
		t.Errorf("content rect = %q, want %q", got, want)
	}
}

func TestMoveStatic(t *testing.T) {
	l := build(t)

	if err := l.Move("logo", geom.NewBounds(20, 30, 64, 64)); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if got, want := l.Rectangle(l.Component("logo")).String(), "20, 30, left + 64, top + 64"; got != want {
		t.Errorf("logo rect = %q, want %q", got, want)
	}
	if got, want := bounds(l, "logo"), geom.NewBounds(20, 30, 64, 64); got != want {
		t.Errorf("logo = %v, want %v", got, want)
	}

	if err := l.Move("ghost", geom.Bounds{}); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Move(ghost) error = %v, want %v", err, errors.ErrCodeNotFound)
	}
}

func TestResize(t *testing.T) {
	l := build(t)
	if err := l.Resize(1000, 700); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if got, want := bounds(l, "content"), geom.NewBounds(256, 0, 744, 700); got != want {
		t.Errorf("content = %v, want %v", got, want)
	}
	if got, want := bounds(l, "title"), geom.NewBounds(0, 0, 744, 40); got != want {
		t.Errorf("title = %v, want %v", got, want)
	}
}

func TestRename(t *testing.T) {
	l := build(t)

	if err := l.Rename("sidebar", "nav"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if l.Component("sidebar") != nil || l.Component("nav") == nil {
		t.Fatal("component was not renamed")
	}
	if got, want := l.Rectangle(l.Component("content")).String(), "nav.right + 16, 0, parent.width, parent.height"; got != want {
		t.Errorf("content rect = %q, want %q", got, want)
	}

	// The renamed reference still tracks its target.
	if err := l.Move("nav", geom.NewBounds(0, 0, 100, 600)); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if got, want := bounds(l, "content"), geom.NewBounds(116, 0, 684, 600); got != want {
		t.Errorf("content = %v, want %v", got, want)
	}
}

func TestRenameErrors(t *testing.T) {
	l := build(t)
	tests := []struct {
		old, new string
		code     errors.Code
	}{
		{"ghost", "x2", errors.ErrCodeNotFound},
		{"sidebar", "content", errors.ErrCodeInvalidInput},
		{"sidebar", "canvas", errors.ErrCodeInvalidInput},
		{"sidebar", "width", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		if err := l.Rename(tt.old, tt.new); !errors.Is(err, tt.code) {
			t.Errorf("Rename(%s, %s) error = %v, want %v", tt.old, tt.new, err, tt.code)
		}
	}
}

func TestDependencies(t *testing.T) {
	l := build(t)
	got := l.Dependencies()
	want := []Edge{
		{From: "sidebar", To: "canvas", Side: "bottom"},
		{From: "content", To: "sidebar", Side: "left"},
		{From: "content", To: "canvas", Side: "right"},
		{From: "content", To: "canvas", Side: "bottom"},
		{From: "title", To: "content", Side: "right"},
	}
	if len(got) != len(want) {
		t.Fatalf("Dependencies() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Dependencies()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestFileRoundTrip(t *testing.T) {
	l := build(t)
	if err := l.Move("sidebar", geom.NewBounds(0, 0, 200, 600)); err != nil {
		t.Fatalf("Move: %v", err)
	}

	f := l.File()
	if f.Components[0].Bounds != "0, 0, 200, parent.height" {
		t.Errorf("sidebar bounds = %q", f.Components[0].Bounds)
	}
	if f.Components[2].Parent != "content" || f.Components[0].Parent != "" {
		t.Errorf("parents = %q, %q", f.Components[2].Parent, f.Components[0].Parent)
	}

	again, err := Build(f, Options{})
	if err != nil {
		t.Fatalf("Build(File()): %v", err)
	}
	for _, c := range l.Components() {
		if got, want := bounds(again, c.Name()), c.Bounds(); got != want {
			t.Errorf("%s = %v, want %v", c.Name(), got, want)
		}
	}
}

func TestFileRoundTripLargeBounds(t *testing.T) {
	l := build(t)
	if err := l.Move("logo", geom.NewBounds(1e17, 0, 10, 10)); err != nil {
		t.Fatalf("Move: %v", err)
	}

	again, err := Build(l.File(), Options{})
	if err != nil {
		t.Fatalf("Build(File()): %v", err)
	}
	if got, want := bounds(again, "logo"), bounds(l, "logo"); got != want {
		t.Errorf("logo = %v, want %v", got, want)
	}
}

func TestClassify(t *testing.T) {
	f := sample()
	f.Components = append(f.Components, layoutfile.Component{Name: "ghost", Bounds: "missing.right, 0, 10, 10"})

	got, err := Classify(f)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	want := []Classification{
		{Name: "sidebar", Rect: "0, 0, 240, parent.height", Dynamic: true, Bottom: true},
		{Name: "content", Rect: "sidebar.right + 16, 0, parent.width, parent.height", Dynamic: true, Left: true, Right: true, Bottom: true},
		{Name: "title", Rect: "0, 0, parent.width, 40", Dynamic: true, Right: true},
		{Name: "logo", Rect: "10, 10, left + 32, top + 32"},
		{Name: "ghost", Rect: "missing.right, 0, 10, 10", Dynamic: true, Left: true},
	}
	if len(got) != len(want) {
		t.Fatalf("len(Classify) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Classify()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}

	f.Components = append(f.Components, layoutfile.Component{Name: "bad", Bounds: "1, 2"})
	if _, err := Classify(f); !errors.Is(err, errors.ErrCodeInvalidLayout) {
		t.Errorf("Classify(bad) error = %v, want %s", err, errors.ErrCodeInvalidLayout)
	}
}
