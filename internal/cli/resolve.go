package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/relayout/pkg/cache"
	"github.com/matzehuels/relayout/pkg/layout"
)

// resolveOpts holds the command-line flags for the resolve command.
type resolveOpts struct {
	json    bool // print entries as JSON
	noCache bool // bypass the result cache
	width   int  // canvas width override, 0 keeps the file's
	height  int  // canvas height override, 0 keeps the file's
}

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	var opts resolveOpts

	cmd := &cobra.Command{
		Use:   "resolve [layout]",
		Short: "Print the resolved bounds of every component",
		Long: `Resolve every rectangle of a layout file and print the integer bounds each
component ends up with, relative to its parent.

Results are cached by the hash of the layout file.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: layoutArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runResolve(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.json, "json", false, "print JSON instead of a table")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().IntVar(&opts.width, "width", 0, "override the canvas width")
	cmd.Flags().IntVar(&opts.height, "height", 0, "override the canvas height")

	return cmd
}

func (c *CLI) runResolve(ctx context.Context, input string, opts resolveOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	f, hash, err := loadLayout(input)
	if err != nil {
		return err
	}
	if opts.width > 0 || opts.height > 0 {
		if opts.width > 0 {
			f.Canvas.Width = opts.width
		}
		if opts.height > 0 {
			f.Canvas.Height = opts.height
		}
		hash = cache.Hash(fmt.Appendf(nil, "%s %dx%d", hash, f.Canvas.Width, f.Canvas.Height))
	}

	store, err := c.newCache(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer store.Close()
	store = cache.NewInstrumented(store)

	key := cache.NewDefaultKeyer().ResolveKey(hash, cache.ResolveKeyOpts{MaxAttempts: c.cfg.MaxApplyAttempts})
	entries, cached := cachedEntries(ctx, store, key)
	deps := 0
	if !cached {
		l, err := c.buildLayout(f)
		if err != nil {
			return err
		}
		entries = l.Entries()
		deps = len(l.Dependencies())
		if data, err := json.Marshal(entries); err == nil {
			if err := store.Set(ctx, key, data, c.cfg.Cache.TTL); err != nil {
				logger.Warn("cache write failed", "err", err)
			}
		}
	}
	prog.done(fmt.Sprintf("Resolved %d components", len(entries)))

	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	fmt.Fprintln(out, entriesTable(entries))
	printStats(len(entries), deps, cached)
	return nil
}

// cachedEntries treats unreadable or undecodable entries as misses.
func cachedEntries(ctx context.Context, store cache.Cache, key string) ([]layout.Entry, bool) {
	data, ok, err := store.Get(ctx, key)
	if err != nil {
		loggerFromContext(ctx).Warn("cache read failed", "err", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var entries []layout.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

// entriesTable renders entries as a bordered table.
func entriesTable(entries []layout.Entry) string {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		kind := "static"
		if e.Dynamic {
			kind = "dynamic"
		}
		b := e.Bounds
		rows[i] = []string{e.Name, e.Parent, fmt.Sprint(b.X), fmt.Sprint(b.Y), fmt.Sprint(b.Width), fmt.Sprint(b.Height), kind, e.Rect}
	}

	return newTable(rows, func(row, col int) lipgloss.Style {
		switch col {
		case 2, 3, 4, 5:
			return styleNumber
		case 0, 6:
			if entries[row].Dynamic {
				return styleDynamic
			}
			return styleStatic
		default:
			return styleRect
		}
	}, "Component", "Parent", "X", "Y", "W", "H", "Kind", "Rectangle").String()
}
