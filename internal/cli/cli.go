package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/bookthickness/pkg/cache"
	"github.com/matzehuels/bookthickness/pkg/config"
	"github.com/matzehuels/bookthickness/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "bookthickness"

	// badgerSubdir holds the badger backend under the cache directory.
	badgerSubdir = "badger"
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
	Config config.Config

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache that
// logs to logger.
func (c *CLI) newRunner(ctx context.Context, noCache bool, logger *log.Logger) (*pipeline.Runner, error) {
	cc, err := c.openCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if c.Config.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.Config.Cache.Prefix)
	}
	r := pipeline.NewRunner(cc, keyer, logger)
	if ttl := c.Config.Cache.TTL.Duration; ttl > 0 {
		r.TTL = ttl
	}
	return r, nil
}

func (c *CLI) openCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	backend := cache.Backend(c.Config.Cache.Backend)
	if noCache {
		backend = cache.BackendNone
	}
	location, err := c.cacheLocation(backend)
	if err != nil {
		c.Logger.Debug("no cache directory, caching disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.Open(ctx, backend, location)
}

// cacheLocation resolves where backend keeps its data.
func (c *CLI) cacheLocation(backend cache.Backend) (string, error) {
	switch backend {
	case cache.BackendRedis:
		return c.Config.Cache.URL, nil
	case cache.BackendNone:
		return "", nil
	}
	dir := c.Config.Cache.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return "", err
		}
		dir = d
	}
	if backend == cache.BackendBadger {
		dir = filepath.Join(dir, badgerSubdir)
	}
	return dir, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/bookthickness/).
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

// =============================================================================
// Options Helpers
// =============================================================================

// searchFlags are the solver flags shared by thickness and embed.
type searchFlags struct {
	startPages  int
	maxPages    int
	workers     int
	maxFrontier int
	engine      string
	timeout     time.Duration
	noCache     bool
	refresh     bool
}

func (f *searchFlags) register(cmd *cobra.Command, withPageRange bool) {
	if withPageRange {
		cmd.Flags().IntVar(&f.startPages, "start-pages", 0, "first page count to try (default from config, 1)")
		cmd.Flags().IntVar(&f.maxPages, "max-pages", 0, "give up above this page count (0: ⌈V/2⌉)")
	}
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "search goroutines per level (default from config, 1)")
	cmd.Flags().IntVar(&f.maxFrontier, "max-frontier", 0, "fail when a search level grows wider than this (0: unbounded)")
	cmd.Flags().StringVar(&f.engine, "engine", "", "trial engine: search (default), sat")
	_ = cmd.RegisterFlagCompletionFunc("engine", completeEngines)
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "abort after this long (0: config or none)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "neither read nor write the result cache")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute and overwrite a cached result")
}

// options merges flags over the configured search defaults. Flag values of
// zero leave the configured value in place.
func (c *CLI) options(f *searchFlags) pipeline.Options {
	s := c.Config.Search
	opts := pipeline.Options{
		StartPages:  s.StartPages,
		MaxPages:    s.MaxPages,
		Workers:     s.Workers,
		MaxFrontier: s.MaxFrontier,
		Engine:      s.Engine,
		Refresh:     f.refresh,
	}
	if f.startPages != 0 {
		opts.StartPages = f.startPages
	}
	if f.maxPages != 0 {
		opts.MaxPages = f.maxPages
	}
	if f.workers != 0 {
		opts.Workers = f.workers
	}
	if f.maxFrontier != 0 {
		opts.MaxFrontier = f.maxFrontier
	}
	if f.engine != "" {
		opts.Engine = f.engine
	}
	return opts
}

// withTimeout applies the flag timeout, else the configured one.
func (c *CLI) withTimeout(ctx context.Context, f *searchFlags) (context.Context, context.CancelFunc) {
	d := f.timeout
	if d == 0 {
		d = c.Config.Search.Timeout.Duration
	}
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
