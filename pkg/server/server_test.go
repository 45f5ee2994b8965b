package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/matzehuels/relayout/pkg/cache"
	"github.com/matzehuels/relayout/pkg/geom"
	"github.com/matzehuels/relayout/pkg/layoutfile"
)

const sampleLayout = `{
	"canvas": {"width": 800, "height": 600},
	"component": [
		{"name": "nav", "bounds": "0, 0, 200, parent.height"},
		{"name": "main", "bounds": "nav.right + 10, 0, parent.width, parent.height"},
		{"name": "badge", "bounds": "5, 5, 20, 20"}
	]
}`

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	s := New(opts)
	t.Cleanup(func() { s.Close() })
	return s
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return v
}

func TestResolve(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s := newTestServer(t, Options{Cache: c})

	body := `{"layout": ` + sampleLayout + `}`
	rec := do(t, s, http.MethodPost, "/v1/resolve", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	resp := decodeBody[ResolveResponse](t, rec)
	if resp.Cached {
		t.Error("first resolve reported cached")
	}
	want := map[string]geom.Bounds{
		"nav":   geom.NewBounds(0, 0, 200, 600),
		"main":  geom.NewBounds(210, 0, 590, 600),
		"badge": geom.NewBounds(5, 5, 15, 15),
	}
	for _, e := range resp.Components {
		if e.Bounds != want[e.Name] {
			t.Errorf("%s = %v, want %v", e.Name, e.Bounds, want[e.Name])
		}
	}

	again := decodeBody[ResolveResponse](t, do(t, s, http.MethodPost, "/v1/resolve", body))
	if !again.Cached {
		t.Error("second resolve was not served from cache")
	}
	if len(again.Components) != 3 {
		t.Errorf("cached components = %d, want 3", len(again.Components))
	}
}

func TestResolveErrors(t *testing.T) {
	s := newTestServer(t, Options{})

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"malformed json", `{"layout": `, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown field", `{"layuot": {}}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad rectangle", `{"layout": {"canvas": {"width": 1, "height": 1}, "component": [{"name": "a", "bounds": "1, 2"}]}}`, http.StatusUnprocessableEntity, "INVALID_LAYOUT"},
		{"unresolved", `{"layout": {"canvas": {"width": 1, "height": 1}, "component": [{"name": "a", "bounds": "ghost.right, 0, 1, 1"}]}}`, http.StatusUnprocessableEntity, "INVALID_LAYOUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/v1/resolve", tt.body)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			resp := decodeBody[ErrorResponse](t, rec)
			if resp.Code != tt.code {
				t.Errorf("code = %q, want %q", resp.Code, tt.code)
			}
			if resp.Error == "" {
				t.Error("empty error message")
			}
		})
	}
}

func TestClassify(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := do(t, s, http.MethodPost, "/v1/classify", `{"layout": `+sampleLayout+`}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[ClassifyResponse](t, rec)
	if len(resp.Components) != 3 {
		t.Fatalf("components = %d, want 3", len(resp.Components))
	}
	main := resp.Components[1]
	if !main.Dynamic || !main.Left || main.Top || !main.Right || !main.Bottom {
		t.Errorf("main = %+v", main)
	}
	if resp.Components[2].Dynamic {
		t.Errorf("badge = %+v, want static", resp.Components[2])
	}
}

func TestMove(t *testing.T) {
	s := newTestServer(t, Options{})
	body := `{"layout": ` + sampleLayout + `, "component": "nav", "bounds": {"x": 0, "y": 0, "width": 300, "height": 600}}`
	rec := do(t, s, http.MethodPost, "/v1/move", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[LayoutResponse](t, rec)
	if got := resp.Layout.Components[0].Bounds; got != "0, 0, 300, parent.height" {
		t.Errorf("nav bounds = %q, want %q", got, "0, 0, 300, parent.height")
	}
	if got := resp.Components[1].Bounds; got != geom.NewBounds(310, 0, 490, 600) {
		t.Errorf("main = %v, want dependent to follow", got)
	}

	rec = do(t, s, http.MethodPost, "/v1/move", `{"layout": `+sampleLayout+`, "component": "ghost", "bounds": {"x": 0, "y": 0, "width": 1, "height": 1}}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown component status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestRename(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := do(t, s, http.MethodPost, "/v1/rename", `{"layout": `+sampleLayout+`, "old": "nav", "new": "sidebar"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[LayoutResponse](t, rec)
	if resp.Layout.Components[0].Name != "sidebar" {
		t.Errorf("renamed component = %q", resp.Layout.Components[0].Name)
	}
	if got := resp.Layout.Components[1].Bounds; got != "sidebar.right + 10, 0, parent.width, parent.height" {
		t.Errorf("main bounds = %q", got)
	}
}

func TestRenderBoxes(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := do(t, s, http.MethodPost, "/v1/render/boxes", `{"layout": `+sampleLayout+`, "labels": true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`id="box-main"`)) {
		t.Error("SVG missing main box")
	}
}

func TestRenderGraph(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := do(t, s, http.MethodPost, "/v1/render/graph", `{"layout": `+sampleLayout+`, "format": "dot"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"main" -> "nav"`) {
		t.Errorf("DOT missing dependency edge:\n%s", rec.Body.String())
	}

	rec = do(t, s, http.MethodPost, "/v1/render/graph", `{"layout": `+sampleLayout+`, "format": "png"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("png status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestStoredLayout(t *testing.T) {
	dir := t.TempDir()
	f, err := layoutfile.Decode([]byte(sampleLayout), layoutfile.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "site"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := layoutfile.Save(filepath.Join(dir, "site", "home.toml"), f); err != nil {
		t.Fatal(err)
	}
	s := newTestServer(t, Options{LayoutDir: dir})

	rec := do(t, s, http.MethodGet, "/v1/layouts/site/home.toml", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if resp := decodeBody[ResolveResponse](t, rec); len(resp.Components) != 3 {
		t.Errorf("components = %d, want 3", len(resp.Components))
	}

	tests := []struct {
		path   string
		status int
	}{
		{"/v1/layouts/site/missing.toml", http.StatusNotFound},
		{"/v1/layouts/site/home..toml", http.StatusBadRequest},
	}
	for _, tt := range tests {
		if rec := do(t, s, http.MethodGet, tt.path, ""); rec.Code != tt.status {
			t.Errorf("GET %s status = %d, want %d", tt.path, rec.Code, tt.status)
		}
	}

	noDir := newTestServer(t, Options{})
	if rec := do(t, noDir, http.MethodGet, "/v1/layouts/site/home.toml", ""); rec.Code != http.StatusNotFound {
		t.Errorf("without layout dir status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := do(t, s, http.MethodGet, "/healthz", "")
	if _, err := uuid.Parse(rec.Header().Get(RequestIDHeader)); err != nil {
		t.Errorf("generated request id %q is not a UUID", rec.Header().Get(RequestIDHeader))
	}

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != id {
		t.Errorf("request id = %q, want %q", got, id)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got == "not-a-uuid" {
		t.Error("malformed request id was echoed back")
	}
}

func TestStatusFor(t *testing.T) {
	rec := do(t, newTestServer(t, Options{}), http.MethodGet, "/nowhere", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown route status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
