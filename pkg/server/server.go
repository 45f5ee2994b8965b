// Package server exposes layout resolution over HTTP.
//
// Every endpoint takes a JSON body carrying a layout document in the same
// shape as a JSON layout file:
//
//	POST /v1/resolve       {"layout": {...}}                      -> resolved bounds
//	POST /v1/classify      {"layout": {...}}                      -> static/dynamic edges
//	POST /v1/move          {"layout": {...}, "component", "bounds"} -> rewritten layout
//	POST /v1/rename        {"layout": {...}, "old", "new"}          -> rewritten layout
//	POST /v1/render/boxes  {"layout": {...}, "labels"}              -> SVG
//	POST /v1/render/graph  {"layout": {...}, "format"}              -> SVG or DOT
//	GET  /v1/layouts/{path}                                         -> resolved bounds of a stored layout
//
// Errors are returned as {"error": "...", "code": "..."} with a status
// derived from the error code.
package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/relayout/pkg/buildinfo"
	"github.com/matzehuels/relayout/pkg/cache"
	"github.com/matzehuels/relayout/pkg/layout"
)

// APIPrefix is the path prefix of every versioned endpoint.
const APIPrefix = "/v1"

// Options configures a Server.
type Options struct {
	// Cache stores resolved and rendered results. Nil disables caching.
	Cache cache.Cache

	// TTL is the expiry of cache entries. Zero never expires.
	TTL time.Duration

	// MaxApplyAttempts bounds positioner retries. Zero uses the default.
	MaxApplyAttempts int

	// LayoutDir is the directory GET /v1/layouts serves from. Empty
	// disables the endpoint.
	LayoutDir string

	// Logger receives request logs. Nil discards them.
	Logger *log.Logger
}

// Server handles the HTTP API.
type Server struct {
	cache     cache.Cache
	keyer     cache.Keyer
	ttl       time.Duration
	build     layout.Options
	layoutDir string
	logger    *log.Logger
	router    chi.Router
}

// New creates a server and registers its routes.
func New(opts Options) *Server {
	c := opts.Cache
	if c == nil {
		c = cache.NewNullCache()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		cache:     cache.NewInstrumented(c),
		keyer:     cache.NewScopedKeyer(nil, "api:"),
		ttl:       opts.TTL,
		build:     layout.Options{MaxApplyAttempts: opts.MaxApplyAttempts, Logger: logger},
		layoutDir: opts.LayoutDir,
		logger:    logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
	})

	r.Route(APIPrefix, func(r chi.Router) {
		r.Post("/resolve", s.handleResolve)
		r.Post("/classify", s.handleClassify)
		r.Post("/move", s.handleMove)
		r.Post("/rename", s.handleRename)
		r.Post("/render/boxes", s.handleRenderBoxes)
		r.Post("/render/graph", s.handleRenderGraph)
		r.Get("/layouts/*", s.handleStoredLayout)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}

// Close releases the cache.
func (s *Server) Close() error {
	return s.cache.Close()
}
