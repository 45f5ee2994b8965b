package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/relayout/pkg/errors"
	"github.com/matzehuels/relayout/pkg/geom"
	"github.com/matzehuels/relayout/pkg/layout"
	"github.com/matzehuels/relayout/pkg/layoutfile"
)

const sampleLayout = `[canvas]
width = 800
height = 600

[[component]]
name = "nav"
bounds = "0, 0, 200, parent.height"

[[component]]
name = "main"
bounds = "nav.right + 10, 0, parent.width, parent.height"
`

// writeSample writes sampleLayout into a fresh directory and returns its path.
func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.toml")
	if err := os.WriteFile(path, []byte(sampleLayout), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestCLI(t *testing.T) (*CLI, context.Context) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	prev := out
	out = io.Discard
	t.Cleanup(func() { out = prev })

	c := New(&bytes.Buffer{}, log.InfoLevel)
	return c, withLogger(context.Background(), c.Logger)
}

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		explicit, output, input string
		want                    layoutfile.Format
	}{
		{"", "", "page.toml", layoutfile.FormatTOML},
		{"", "-", "page.yaml", layoutfile.FormatYAML},
		{"", "out.json", "page.toml", layoutfile.FormatJSON},
		{"yml", "out.json", "page.toml", layoutfile.FormatYAML},
	}
	for _, tt := range tests {
		got, err := outputFormat(tt.explicit, tt.output, tt.input)
		if err != nil {
			t.Fatalf("outputFormat(%q, %q, %q): %v", tt.explicit, tt.output, tt.input, err)
		}
		if got != tt.want {
			t.Errorf("outputFormat(%q, %q, %q) = %q, want %q", tt.explicit, tt.output, tt.input, got, tt.want)
		}
	}

	if _, err := outputFormat("xml", "", "page.toml"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("outputFormat(xml) error = %v, want %s", err, errors.ErrCodeInvalidFormat)
	}
}

func TestLoadLayout(t *testing.T) {
	path := writeSample(t)

	f, hash, err := loadLayout(path)
	if err != nil {
		t.Fatalf("loadLayout: %v", err)
	}
	if len(f.Components) != 2 {
		t.Errorf("components = %d, want 2", len(f.Components))
	}
	if hash == "" {
		t.Error("hash is empty")
	}

	_, again, _ := loadLayout(path)
	if again != hash {
		t.Errorf("hash changed between loads: %q != %q", again, hash)
	}

	_, _, err = loadLayout(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing layout error = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
}

func TestRunResolve(t *testing.T) {
	c, ctx := newTestCLI(t)
	path := writeSample(t)

	if err := c.runResolve(ctx, path, resolveOpts{}); err != nil {
		t.Fatalf("runResolve: %v", err)
	}
	// The second run is served from the file cache.
	if err := c.runResolve(ctx, path, resolveOpts{json: true}); err != nil {
		t.Fatalf("runResolve (cached): %v", err)
	}

	broken := filepath.Join(t.TempDir(), "broken.toml")
	data := strings.Replace(sampleLayout, "nav.right", "ghost.right", 1)
	if err := os.WriteFile(broken, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := c.runResolve(ctx, broken, resolveOpts{noCache: true}); !errors.Is(err, errors.ErrCodeUnresolvedSymbol) {
		t.Errorf("runResolve(broken) error = %v, want %s", err, errors.ErrCodeUnresolvedSymbol)
	}
}

func TestRunMove(t *testing.T) {
	c, ctx := newTestCLI(t)
	path := writeSample(t)

	if err := c.runMove(ctx, path, "nav", geom.NewBounds(0, 0, 300, 600), rewriteOpts{inPlace: true}); err != nil {
		t.Fatalf("runMove: %v", err)
	}

	f, err := layoutfile.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := f.Components[0].Bounds; got != "0, 0, 300, parent.height" {
		t.Errorf("nav bounds = %q, want %q", got, "0, 0, 300, parent.height")
	}
	if got := f.Components[1].Bounds; got != "nav.right + 10, 0, parent.width, parent.height" {
		t.Errorf("main bounds = %q, want references kept", got)
	}

	err = c.runMove(ctx, path, "ghost", geom.NewBounds(0, 0, 1, 1), rewriteOpts{inPlace: true})
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("runMove(ghost) error = %v, want %s", err, errors.ErrCodeNotFound)
	}
}

func TestRunRename(t *testing.T) {
	c, ctx := newTestCLI(t)
	path := writeSample(t)
	out := filepath.Join(t.TempDir(), "renamed.json")

	if err := c.runRename(ctx, path, "nav", "sidebar", rewriteOpts{output: out}); err != nil {
		t.Fatalf("runRename: %v", err)
	}

	f, err := layoutfile.Load(out)
	if err != nil {
		t.Fatal(err)
	}
	if f.Components[0].Name != "sidebar" {
		t.Errorf("name = %q, want sidebar", f.Components[0].Name)
	}
	if got := f.Components[1].Bounds; !strings.HasPrefix(got, "sidebar.right") {
		t.Errorf("main bounds = %q, want reference renamed", got)
	}

	// The input is untouched when writing elsewhere.
	orig, _, _ := loadLayout(path)
	if orig.Components[0].Name != "nav" {
		t.Errorf("input was rewritten: %q", orig.Components[0].Name)
	}
}

func TestTables(t *testing.T) {
	f, _, err := loadLayout(writeSample(t))
	if err != nil {
		t.Fatal(err)
	}
	l, err := layout.Build(f, layout.Options{})
	if err != nil {
		t.Fatal(err)
	}

	out := entriesTable(l.Entries())
	for _, want := range []string{"nav", "main", "590", "dynamic"} {
		if !strings.Contains(out, want) {
			t.Errorf("entriesTable missing %q:\n%s", want, out)
		}
	}

	classes, err := layout.Classify(f)
	if err != nil {
		t.Fatal(err)
	}
	out = classificationTable(classes)
	if !strings.Contains(out, "main") {
		t.Errorf("classificationTable missing main:\n%s", out)
	}
}

func TestComponentArgs(t *testing.T) {
	path := writeSample(t)

	names, _ := componentArgs(nil, []string{path}, "ma")
	if len(names) != 1 || names[0] != "main" {
		t.Errorf("componentArgs = %v, want [main]", names)
	}

	exts, _ := componentArgs(nil, nil, "")
	if len(exts) != len(layoutExts) {
		t.Errorf("componentArgs with no args = %v, want layout extensions", exts)
	}
}
