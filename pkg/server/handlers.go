package server

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/relayout/pkg/cache"
	"github.com/matzehuels/relayout/pkg/errors"
	"github.com/matzehuels/relayout/pkg/geom"
	"github.com/matzehuels/relayout/pkg/layout"
	"github.com/matzehuels/relayout/pkg/layoutfile"
	"github.com/matzehuels/relayout/pkg/render/boxes"
	"github.com/matzehuels/relayout/pkg/render/nodelink"
)

const maxBodyBytes = 1 << 20

// Request bodies
type (
	LayoutRequest struct {
		Layout layoutfile.File `json:"layout"`
	}

	MoveRequest struct {
		Layout    layoutfile.File `json:"layout"`
		Component string          `json:"component"`
		Bounds    geom.Bounds     `json:"bounds"`
	}

	RenameRequest struct {
		Layout layoutfile.File `json:"layout"`
		Old    string          `json:"old"`
		New    string          `json:"new"`
	}

	RenderBoxesRequest struct {
		Layout layoutfile.File `json:"layout"`
		Labels bool            `json:"labels"`
	}

	RenderGraphRequest struct {
		Layout   layoutfile.File `json:"layout"`
		Format   string          `json:"format"` // "svg" (default) or "dot"
		Detailed bool            `json:"detailed"`
	}
)

// Response bodies
type (
	ResolveResponse struct {
		Components []layout.Entry `json:"components"`
		Cached     bool           `json:"cached"`
	}

	ClassifyResponse struct {
		Components []layout.Classification `json:"components"`
	}

	LayoutResponse struct {
		Layout     *layoutfile.File `json:"layout"`
		Components []layout.Entry   `json:"components"`
	}

	ErrorResponse struct {
		Error string `json:"error"`
		Code  string `json:"code,omitempty"`
	}
)

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req LayoutRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	entries, cached, err := s.resolve(r.Context(), &req.Layout)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ResolveResponse{Components: entries, Cached: cached})
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req LayoutRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	classes, err := layout.Classify(&req.Layout)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ClassifyResponse{Components: classes})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Bounds.Width < 0 || req.Bounds.Height < 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "bounds %v: negative size", req.Bounds))
		return
	}
	l, err := layout.Build(&req.Layout, s.build)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := l.Move(req.Component, req.Bounds); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LayoutResponse{Layout: l.File(), Components: l.Entries()})
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	l, err := layout.Build(&req.Layout, s.build)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := l.Rename(req.Old, req.New); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LayoutResponse{Layout: l.File(), Components: l.Entries()})
}

func (s *Server) handleRenderBoxes(w http.ResponseWriter, r *http.Request) {
	var req RenderBoxesRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	key := s.keyer.RenderKey(layoutHash(&req.Layout), cache.RenderKeyOpts{Kind: "boxes", Format: "svg", Labels: req.Labels})
	out, err := s.cached(r.Context(), key, func() ([]byte, error) {
		l, err := layout.Build(&req.Layout, s.build)
		if err != nil {
			return nil, err
		}
		var opts []boxes.Option
		if req.Labels {
			opts = append(opts, boxes.WithLabels())
		}
		return boxes.RenderSVG(l, opts...), nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeBytes(w, "image/svg+xml", out)
}

func (s *Server) handleRenderGraph(w http.ResponseWriter, r *http.Request) {
	var req RenderGraphRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	format := req.Format
	if format == "" {
		format = "svg"
	}
	if format != "svg" && format != "dot" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidFormat, "unsupported graph format %q (want svg or dot)", format))
		return
	}

	key := s.keyer.RenderKey(layoutHash(&req.Layout), cache.RenderKeyOpts{Kind: "graph", Format: format, Detailed: req.Detailed})
	out, err := s.cached(r.Context(), key, func() ([]byte, error) {
		l, err := layout.Build(&req.Layout, s.build)
		if err != nil {
			return nil, err
		}
		dot := nodelink.ToDOT(l, nodelink.Options{Detailed: req.Detailed})
		if format == "dot" {
			return []byte(dot), nil
		}
		svg, err := nodelink.RenderSVG(r.Context(), dot)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render graph")
		}
		return svg, nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	contentType := "image/svg+xml"
	if format == "dot" {
		contentType = "text/vnd.graphviz"
	}
	writeBytes(w, contentType, out)
}

func (s *Server) handleStoredLayout(w http.ResponseWriter, r *http.Request) {
	if s.layoutDir == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "no layout directory is configured"))
		return
	}
	path := chi.URLParam(r, "*")
	if err := errors.ValidatePath(path); err != nil {
		s.writeError(w, r, err)
		return
	}
	f, err := layoutfile.Load(filepath.Join(s.layoutDir, filepath.FromSlash(path)))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	entries, cached, err := s.resolve(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ResolveResponse{Components: entries, Cached: cached})
}

// resolve builds f and returns its entries, going through the cache.
func (s *Server) resolve(ctx context.Context, f *layoutfile.File) ([]layout.Entry, bool, error) {
	key := s.keyer.ResolveKey(layoutHash(f), cache.ResolveKeyOpts{MaxAttempts: s.build.MaxApplyAttempts})
	if data, ok := s.lookup(ctx, key); ok {
		var entries []layout.Entry
		if err := json.Unmarshal(data, &entries); err == nil {
			return entries, true, nil
		}
	}

	l, err := layout.Build(f, s.build)
	if err != nil {
		return nil, false, err
	}
	entries := l.Entries()
	if data, err := json.Marshal(entries); err == nil {
		s.store(ctx, key, data)
	}
	return entries, false, nil
}

// cached returns the entry at key, or computes and stores it.
func (s *Server) cached(ctx context.Context, key string, compute func() ([]byte, error)) ([]byte, error) {
	if data, ok := s.lookup(ctx, key); ok {
		return data, nil
	}
	data, err := compute()
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, data)
	return data, nil
}

// lookup treats cache failures as misses.
func (s *Server) lookup(ctx context.Context, key string) ([]byte, bool) {
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cache read failed", "key", key, "err", err)
		return nil, false
	}
	return data, ok
}

func (s *Server) store(ctx context.Context, key string, data []byte) {
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.logger.Warn("cache write failed", "key", key, "err", err)
	}
}

// layoutHash identifies a layout by the hash of its JSON form.
func layoutHash(f *layoutfile.File) string {
	data, _ := json.Marshal(f)
	return cache.Hash(data)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

// writeJSON writes data as JSON with proper headers.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeBytes(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "id", RequestID(r.Context()), "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, ErrorResponse{Error: errors.UserMessage(err), Code: string(errors.GetCode(err))})
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidPath, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeInvalidExpression, errors.ErrCodeInvalidRectangle, errors.ErrCodeInvalidLayout,
		errors.ErrCodeUnresolvedSymbol, errors.ErrCodeCyclicReference, errors.ErrCodeRecursiveLayout:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
