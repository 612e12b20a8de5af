// Package pipeline runs thickness queries with caching, for the CLI and the
// HTTP API alike.
//
// A query goes through three steps: validate the options, look the answer up
// in the cache, and otherwise run a [book.Solver] and store the result. The
// Runner owns the cache and logger; options are per call.
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Thickness(ctx, g, pipeline.Options{Workers: 4})
//	fmt.Println(res.Embedding.Pages, res.CacheHit)
package pipeline

import (
	"fmt"
	"time"

	"github.com/matzehuels/bookthickness/pkg/book"
	"github.com/matzehuels/bookthickness/pkg/book/sat"
	"github.com/matzehuels/bookthickness/pkg/cache"
	"github.com/matzehuels/bookthickness/pkg/errors"
	"github.com/matzehuels/bookthickness/pkg/spine"
)

// DefaultTTL is how long results stay cached when the runner has no TTL.
const DefaultTTL = 30 * 24 * time.Hour

// Options configures one query.
type Options struct {
	StartPages  int    `json:"start_pages,omitempty"`
	MaxPages    int    `json:"max_pages,omitempty"`
	Workers     int    `json:"workers,omitempty"`
	MaxFrontier int    `json:"max_frontier,omitempty"`
	Engine      string `json:"engine,omitempty"`

	// Pages and Spines apply to Embed only.
	Pages  int           `json:"pages,omitempty"`
	Spines []spine.Spine `json:"spines,omitempty"`

	// Refresh skips the cache lookup; the fresh result is still stored.
	Refresh bool `json:"refresh,omitempty"`

	// Progress is forwarded to the solver.
	Progress func(book.Progress) `json:"-"`
}

// Validate checks option ranges and fills defaults.
func (o *Options) Validate() error {
	if o.StartPages < 0 || o.MaxPages < 0 || o.Workers < 0 || o.MaxFrontier < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "numeric options must not be negative")
	}
	if o.StartPages == 0 {
		o.StartPages = 1
	}
	if o.MaxPages > 0 && o.MaxPages < o.StartPages {
		return errors.New(errors.ErrCodeInvalidPages, "max pages %d is below start pages %d", o.MaxPages, o.StartPages)
	}
	engine, err := book.ParseEngine(o.Engine)
	if err != nil {
		return err
	}
	o.Engine = string(engine)
	return nil
}

// Solver builds the solver described by o.
func (o Options) Solver() (*book.Solver, error) {
	d, err := NewDecider(book.Engine(o.Engine), book.SearchOptions{Workers: o.Workers, MaxFrontier: o.MaxFrontier})
	if err != nil {
		return nil, err
	}
	return book.NewSolver(book.Options{
		StartPages: o.StartPages,
		MaxPages:   o.MaxPages,
		Decider:    d,
		Progress:   o.Progress,
	}), nil
}

func (o Options) thicknessKey() cache.ThicknessKeyOpts {
	return cache.ThicknessKeyOpts{StartPages: o.StartPages, MaxPages: o.MaxPages, Engine: o.Engine}
}

func (o Options) embeddingKey() cache.EmbeddingKeyOpts {
	keys := make([]string, len(o.Spines))
	for i, s := range o.Spines {
		keys[i] = s.Key()
	}
	return cache.EmbeddingKeyOpts{Pages: o.Pages, Spines: keys, Engine: o.Engine}
}

// NewDecider returns the trial engine named by engine.
func NewDecider(engine book.Engine, opts book.SearchOptions) (book.Decider, error) {
	switch engine {
	case book.EngineSearch, "":
		return book.SearchDecider{Options: opts}, nil
	case book.EngineSAT:
		return sat.New(), nil
	}
	return nil, fmt.Errorf("engine: %w", errors.New(errors.ErrCodeUnsupported, "engine %q", engine))
}

// Result is the outcome of a query.
type Result struct {
	Status    book.Status     `json:"-"`
	Found     bool            `json:"found"`
	Embedding *book.Embedding `json:"embedding,omitempty"`
	Stats     book.Stats      `json:"stats"`
	GraphHash string          `json:"graph_hash"`
	CacheHit  bool            `json:"cache_hit"`
}

func newResult(r book.Result, graphHash string) *Result {
	return &Result{
		Status:    r.Status,
		Found:     r.Found(),
		Embedding: r.Embedding,
		Stats:     r.Stats,
		GraphHash: graphHash,
	}
}
