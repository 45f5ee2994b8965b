package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/relayout/pkg/cache"
	"github.com/matzehuels/relayout/pkg/server"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		layoutDir string
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve layout resolution over HTTP.

Endpoints:
  POST /v1/resolve         resolved bounds of a layout
  POST /v1/classify        static/dynamic edges of a layout
  POST /v1/move            move a component and rewrite the layout
  POST /v1/rename          rename a component and its references
  POST /v1/render/boxes    SVG of the resolved boxes
  POST /v1/render/graph    dependency graph as SVG or DOT
  GET  /v1/layouts/{path}  resolved bounds of a layout under --layout-dir

The cache backend comes from the settings file; point several servers at
the same redis or mongo backend to share results.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.cfg.Server.Addr
			}
			if !cmd.Flags().Changed("layout-dir") {
				layoutDir = c.cfg.Server.LayoutDir
			}
			return c.runServe(cmd.Context(), addr, layoutDir, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&layoutDir, "layout-dir", "", "directory served by GET /v1/layouts")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, layoutDir string, noCache bool) error {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	if rc, ok := store.(*cache.RedisCache); ok {
		if err := rc.Ping(ctx); err != nil {
			printWarning("redis is unreachable, requests will not be cached until it is: %v", err)
		}
	}

	backend := c.cfg.Cache.Backend
	if noCache {
		backend = "none"
	}
	printKeyValue("Address", addr)
	printKeyValue("Cache", backend)
	if layoutDir != "" {
		printKeyValue("Layouts", layoutDir)
	}

	s := server.New(server.Options{
		Cache:            store,
		TTL:              c.cfg.Cache.TTL,
		MaxApplyAttempts: c.cfg.MaxApplyAttempts,
		LayoutDir:        layoutDir,
		Logger:           loggerFromContext(ctx),
	})
	defer s.Close()

	return s.ListenAndServe(ctx, addr)
}
