package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bookthickness/pkg/book"
	"github.com/matzehuels/bookthickness/pkg/cache"
	"github.com/matzehuels/bookthickness/pkg/graph"
	"github.com/matzehuels/bookthickness/pkg/spine"
)

// Runner executes queries with caching. It holds no per-query state and is
// safe for concurrent use.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer uses
// the DefaultKeyer and a nil logger uses log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger, TTL: DefaultTTL}
}

// GraphHash is the cache identity of g.
func GraphHash(g *graph.Graph) (string, error) {
	data, err := graph.Marshal(g)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}

// Thickness computes the book thickness of g.
func (r *Runner) Thickness(ctx context.Context, g *graph.Graph, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	hash, err := GraphHash(g)
	if err != nil {
		return nil, fmt.Errorf("hash graph: %w", err)
	}
	key := r.Keyer.ThicknessKey(hash, opts.thicknessKey())

	if res, ok := r.lookup(ctx, key, opts); ok {
		r.Logger.Info("thickness from cache", "pages", res.Embedding.Pages, "graph", short(hash))
		return res, nil
	}

	opts.Progress = r.logProgress(opts.Progress)
	solver, err := opts.Solver()
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("computing thickness",
		"vertices", g.Order(),
		"edges", g.Size(),
		"engine", opts.Engine,
		"workers", opts.Workers)

	br, err := solver.Solve(ctx, g)
	if err != nil {
		return nil, fmt.Errorf("thickness: %w", err)
	}
	res := newResult(br, hash)
	if res.Found {
		r.Logger.Info("computed thickness",
			"pages", res.Embedding.Pages,
			"spines", res.Stats.SpinesTested,
			"states", res.Stats.Explored,
			"duration", res.Stats.Duration)
		r.store(ctx, key, res)
	} else {
		r.Logger.Info("no embedding within page limit", "max_pages", opts.MaxPages)
	}
	return res, nil
}

// Embed decides whether g embeds in opts.Pages pages on one of opts.Spines
// (every canonical spine when empty).
func (r *Runner) Embed(ctx context.Context, g *graph.Graph, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	hash, err := GraphHash(g)
	if err != nil {
		return nil, fmt.Errorf("hash graph: %w", err)
	}
	key := r.Keyer.EmbeddingKey(hash, opts.embeddingKey())

	if res, ok := r.lookup(ctx, key, opts); ok {
		r.Logger.Info("embedding from cache", "found", res.Found, "graph", short(hash))
		return res, nil
	}

	opts.Progress = r.logProgress(opts.Progress)
	solver, err := opts.Solver()
	if err != nil {
		return nil, err
	}
	br, err := solver.FindForSpines(ctx, g, opts.Pages, opts.Spines)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	res := newResult(br, hash)
	r.Logger.Info("decided embedding",
		"pages", opts.Pages,
		"found", res.Found,
		"spines", res.Stats.SpinesTested,
		"duration", res.Stats.Duration)
	r.store(ctx, key, res)
	return res, nil
}

// Spines returns the canonical spines of n vertices, or only their count
// when list is false.
func (r *Runner) Spines(n int, list bool) ([]spine.Spine, int) {
	seq, total := spine.Sequence(n)
	if !list {
		return nil, total
	}
	out := make([]spine.Spine, 0, total)
	for s := range seq {
		out = append(out, s)
	}
	return out, total
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

type cachedResult struct {
	Found     bool            `json:"found"`
	Embedding *book.Embedding `json:"embedding,omitempty"`
	Stats     book.Stats      `json:"stats"`
	GraphHash string          `json:"graph_hash"`
}

func (r *Runner) lookup(ctx context.Context, key string, opts Options) (*Result, bool) {
	if opts.Refresh {
		return nil, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "error", err)
		return nil, false
	}
	if !hit {
		return nil, false
	}
	var c cachedResult
	if err := json.Unmarshal(data, &c); err != nil || (c.Found && c.Embedding == nil) {
		r.Logger.Debug("discarding unreadable cache entry", "key", key)
		return nil, false
	}
	res := &Result{Found: c.Found, Embedding: c.Embedding, Stats: c.Stats, GraphHash: c.GraphHash, CacheHit: true}
	if c.Found {
		res.Status = book.Found
	}
	return res, true
}

func (r *Runner) store(ctx context.Context, key string, res *Result) {
	data, err := json.Marshal(cachedResult{Found: res.Found, Embedding: res.Embedding, Stats: res.Stats, GraphHash: res.GraphHash})
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		r.Logger.Warn("cache write failed", "error", err)
	}
}

// logProgress logs the start of each page count at debug level and chains
// to next.
func (r *Runner) logProgress(next func(book.Progress)) func(book.Progress) {
	return func(p book.Progress) {
		if p.Tested == 1 {
			r.Logger.Debug("trying page count", "pages", p.Pages, "spines", p.Total)
		}
		if next != nil {
			next(p)
		}
	}
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
