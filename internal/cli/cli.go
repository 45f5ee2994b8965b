package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/relayout/pkg/buildinfo"
	"github.com/matzehuels/relayout/pkg/cache"
	"github.com/matzehuels/relayout/pkg/config"
	"github.com/matzehuels/relayout/pkg/errors"
	"github.com/matzehuels/relayout/pkg/layout"
	"github.com/matzehuels/relayout/pkg/layoutfile"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "relayout"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "relayout resolves layouts written as relative rectangles",
		Long:         `relayout resolves layouts whose component edges are expressions over the canvas, the parent and sibling components, keeps them consistent as components move, and renders the result.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			registerLogHooks(c.Logger)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "settings file (default: $XDG_CONFIG_HOME/relayout/relayout.toml)")

	// Register all subcommands
	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.classifyCommand())
	root.AddCommand(c.moveCommand())
	root.AddCommand(c.renameCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads settings. The configured log level applies unless
// --verbose already lowered it.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	if c.Logger.GetLevel() == LogInfo {
		if lvl, err := cfg.LogLevel(); err == nil {
			c.SetLogLevel(lvl)
		}
	}
	return nil
}

// =============================================================================
// Layout Helpers
// =============================================================================

// loadLayout reads the layout at path and returns it with the hash of its
// contents.
func loadLayout(path string) (*layoutfile.File, string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, "", errors.New(errors.ErrCodeFileNotFound, "layout %s not found", path)
	}
	if err != nil {
		return nil, "", fmt.Errorf("read layout %s: %w", path, err)
	}
	f, err := layoutfile.Decode(data, layoutfile.FormatFromPath(path))
	if err != nil {
		return nil, "", fmt.Errorf("load layout %s: %w", path, err)
	}
	return f, cache.Hash(data), nil
}

// buildLayout applies the settings' retry ceiling and the CLI logger.
func (c *CLI) buildLayout(f *layoutfile.File) (*layout.Layout, error) {
	return layout.Build(f, layout.Options{
		MaxApplyAttempts: c.cfg.MaxApplyAttempts,
		Logger:           c.Logger,
	})
}

// writeLayout encodes f in format and writes it to output, or to stdout
// when output is empty or "-".
func writeLayout(f *layoutfile.File, format layoutfile.Format, output string) error {
	data, err := layoutfile.Encode(f, format)
	if err != nil {
		return err
	}
	return writeOutput(output, data)
}

func writeOutput(output string, data []byte) error {
	if output == "" || output == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}
	return nil
}

// outputFormat picks the format for a rewritten layout: explicit, then the
// output's extension, then the input's.
func outputFormat(explicit, output, input string) (layoutfile.Format, error) {
	if explicit != "" {
		return layoutfile.ParseFormat(explicit)
	}
	if output != "" && output != "-" {
		return layoutfile.FormatFromPath(output), nil
	}
	return layoutfile.FormatFromPath(input), nil
}

// =============================================================================
// Cache Factory
// =============================================================================

// newCache opens the configured backend.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(c.cfg.Cache.RedisURL)
		if err != nil {
			return nil, err
		}
		return rc, nil
	case config.BackendMongo:
		mc, err := cache.NewMongoCache(ctx, c.cfg.Cache.MongoURI)
		if err != nil {
			return nil, err
		}
		return mc, nil
	default:
		dir, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/relayout/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
