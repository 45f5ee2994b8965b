package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/relayout/pkg/cache"
	"github.com/matzehuels/relayout/pkg/render/nodelink"
)

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	output      string // output file, "-" for stdout
	format      string // "svg" or "dot"
	detailed    bool   // rectangles and bounds in node labels
	containment bool   // draw parent-child edges
	noCache     bool   // bypass the result cache
}

// validGraphFormats is the set of supported graph output formats.
var validGraphFormats = map[string]bool{"svg": true, "dot": true}

// graphCommand creates the graph command for drawing component dependencies.
func (c *CLI) graphCommand() *cobra.Command {
	opts := graphOpts{format: "svg"}

	cmd := &cobra.Command{
		Use:   "graph [layout]",
		Short: "Draw which components each rectangle depends on",
		Long: `Draw the dependency graph of a layout: an edge A -> B labelled "left,right"
means A's left and right edges are written in terms of B.

SVG output is rendered in-process with Graphviz; DOT output can be fed to
external Graphviz tools.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: layoutArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validGraphFormats[opts.format] {
				return fmt.Errorf("invalid format: %s (must be 'svg' or 'dot')", opts.format)
			}
			return c.runGraph(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>.deps.<format>)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg (default), dot")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show rectangles and bounds in nodes")
	cmd.Flags().BoolVar(&opts.containment, "containment", false, "draw parent-child edges")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, input string, opts graphOpts) error {
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
		Kind:     "graph",
		Format:   opts.format,
		Labels:   opts.containment,
		Detailed: opts.detailed,
	})

	spinner := newSpinnerWithContext(ctx, "Resolving layout...")
	spinner.Start()
	deps := 0
	out, cached, err := c.cachedRender(ctx, store, key, func() ([]byte, error) {
		l, err := c.buildLayout(f)
		if err != nil {
			return nil, err
		}
		deps = len(l.Dependencies())
		dot := nodelink.ToDOT(l, nodelink.Options{Detailed: opts.detailed, Containment: opts.containment})
		if opts.format == "dot" {
			return []byte(dot), nil
		}
		spinner.SetMessage("Rendering dependency graph...")
		return nodelink.RenderSVG(ctx, dot)
	})
	if err != nil {
		spinner.StopWithError("Graph rendering failed")
		return err
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}

	output := opts.output
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".deps." + opts.format
	}
	if err := writeOutput(output, out); err != nil {
		return err
	}
	if output != "-" {
		printSuccess("Graph complete")
		printFile(output)
		printStats(len(f.Components), deps, cached)
		if opts.format == "dot" {
			printNewline()
			printNextStep("Render", "dot -Tpng "+output)
		}
	}
	return nil
}
