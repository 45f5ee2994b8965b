package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/relayout/pkg/cache"
	"github.com/matzehuels/relayout/pkg/render/boxes"
)

const defaultPadding = 8 // margin around the canvas in rendered SVGs

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string // output file, "-" for stdout
	labels  bool   // draw component names
	rects   bool   // draw rectangle text under names
	padding int    // margin around the canvas
	noCache bool   // bypass the result cache
}

// renderCommand creates the render command for drawing resolved boxes.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{labels: true, padding: defaultPadding}

	cmd := &cobra.Command{
		Use:   "render [layout]",
		Short: "Render the resolved boxes of a layout to SVG",
		Long: `Resolve a layout and draw every component at its bounds as an SVG wireframe.
Dynamic components are tinted by nesting depth, static ones are grey.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: layoutArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>.svg)")
	cmd.Flags().BoolVar(&opts.labels, "labels", opts.labels, "draw component names")
	cmd.Flags().BoolVar(&opts.rects, "rects", false, "draw each component's rectangle")
	cmd.Flags().IntVar(&opts.padding, "padding", opts.padding, "margin around the canvas")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	prog := newProgress(loggerFromContext(ctx))

	f, hash, err := loadLayout(input)
	if err != nil {
		return err
	}

	store, err := c.newCache(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer store.Close()

	key := cache.NewDefaultKeyer().RenderKey(hash, cache.RenderKeyOpts{
		Kind:     "boxes",
		Format:   "svg",
		Labels:   opts.labels,
		Detailed: opts.rects,
		Padding:  opts.padding,
	})
	svg, cached, err := c.cachedRender(ctx, store, key, func() ([]byte, error) {
		l, err := c.buildLayout(f)
		if err != nil {
			return nil, err
		}
		renderOpts := []boxes.Option{boxes.WithPadding(opts.padding)}
		if opts.labels {
			renderOpts = append(renderOpts, boxes.WithLabels())
		}
		if opts.rects {
			renderOpts = append(renderOpts, boxes.WithRects())
		}
		return boxes.RenderSVG(l, renderOpts...), nil
	})
	if err != nil {
		return err
	}
	prog.done("Rendered boxes")

	output := opts.output
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".svg"
	}
	if err := writeOutput(output, svg); err != nil {
		return err
	}
	if output != "-" {
		printSuccess("Render complete")
		printFile(output)
		printStats(len(f.Components), 0, cached)
	}
	return nil
}

// cachedRender returns the artifact at key, or computes and stores it.
// Cache failures are logged and treated as misses.
func (c *CLI) cachedRender(ctx context.Context, store cache.Cache, key string, compute func() ([]byte, error)) ([]byte, bool, error) {
	logger := loggerFromContext(ctx)
	store = cache.NewInstrumented(store)

	data, ok, err := store.Get(ctx, key)
	if err != nil {
		logger.Warn("cache read failed", "err", err)
	}
	if ok {
		return data, true, nil
	}

	data, err = compute()
	if err != nil {
		return nil, false, err
	}
	if err := store.Set(ctx, key, data, c.cfg.Cache.TTL); err != nil {
		logger.Warn("cache write failed", "err", err)
	}
	return data, false, nil
}
