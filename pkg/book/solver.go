package book

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/matzehuels/bookthickness/pkg/errors"
	"github.com/matzehuels/bookthickness/pkg/graph"
	"github.com/matzehuels/bookthickness/pkg/observability"
	"github.com/matzehuels/bookthickness/pkg/spine"
)

// Engine names a trial decision procedure.
type Engine string

const (
	// EngineSearch is the level-order frontier search of this package.
	EngineSearch Engine = "search"
	// EngineSAT encodes each trial as a SAT instance (package book/sat).
	EngineSAT Engine = "sat"
)

// Engines lists the supported engines.
var Engines = []Engine{EngineSearch, EngineSAT}

// ParseEngine validates an engine name. The empty string selects EngineSearch.
func ParseEngine(name string) (Engine, error) {
	if name == "" {
		return EngineSearch, nil
	}
	e := Engine(name)
	if !slices.Contains(Engines, e) {
		return "", errors.New(errors.ErrCodeInvalidInput, "unknown engine %q (want one of %v)", name, Engines)
	}
	return e, nil
}

// Decider decides one (spine, page count) trial. It returns a nil embedding
// when the trial is infeasible.
type Decider interface {
	Decide(ctx context.Context, g *graph.Graph, s spine.Spine, pages int) (*Embedding, TrialStats, error)
}

// SearchDecider decides trials with [Search].
type SearchDecider struct {
	Options SearchOptions
}

// Decide seeds a state, places the free edges and runs the search.
func (d SearchDecider) Decide(ctx context.Context, g *graph.Graph, s spine.Spine, pages int) (*Embedding, TrialStats, error) {
	root, err := NewState(pages, g, s)
	if err != nil {
		return nil, TrialStats{}, err
	}
	if err := root.PlaceFreeEdges(); err != nil {
		return nil, TrialStats{}, err
	}
	st, stats, err := Search(ctx, root, d.Options)
	if err != nil || st == nil {
		return nil, stats, err
	}
	return st.Embedding(), stats, nil
}

// Status tags the outcome of a query.
type Status int

const (
	NotFound Status = iota
	Found
)

func (s Status) String() string {
	if s == Found {
		return "found"
	}
	return "not found"
}

// Stats aggregates the work of a query over all trials.
type Stats struct {
	SpinesTested int           `json:"spines_tested"`
	PagesTried   int           `json:"pages_tried"`
	Explored     int           `json:"states_explored"`
	Pruned       int           `json:"states_pruned"`
	MaxFrontier  int           `json:"max_frontier"`
	Duration     time.Duration `json:"duration_ns"`
}

func (s *Stats) addTrial(t TrialStats) {
	s.SpinesTested++
	s.Explored += t.Explored
	s.Pruned += t.Pruned
	s.MaxFrontier = max(s.MaxFrontier, t.MaxFrontier)
}

// Result is the tagged outcome of a query. Embedding is set iff Status is
// Found.
type Result struct {
	Status    Status
	Embedding *Embedding
	Stats     Stats
}

// Found reports whether the query produced an embedding.
func (r Result) Found() bool { return r.Status == Found }

// Progress is reported after every trial.
type Progress struct {
	Pages  int         // page count being tried
	Tested int         // spines tested at this page count, including this one
	Total  int         // canonical spines at this page count
	Spine  spine.Spine // spine of the trial just finished
	Found  bool        // whether the trial succeeded
}

// Options configures a Solver.
type Options struct {
	// StartPages is the first page count tried. Defaults to 1.
	StartPages int

	// MaxPages is the last page count tried. Zero uses [PageBound] of the
	// graph order, which always suffices for a simple graph.
	MaxPages int

	// Search options used by the default decider.
	Workers     int
	MaxFrontier int

	// Decider overrides the trial engine. Nil uses a SearchDecider.
	Decider Decider

	// Progress, when set, is called synchronously after every trial.
	Progress func(Progress)
}

// Solver computes book thickness and fixed page count embeddings.
// A Solver is safe for concurrent use if its Decider and Progress are.
type Solver struct {
	opts    Options
	decider Decider
}

// NewSolver creates a solver, applying defaults to opts.
func NewSolver(opts Options) *Solver {
	if opts.StartPages < 1 {
		opts.StartPages = 1
	}
	d := opts.Decider
	if d == nil {
		d = SearchDecider{Options: SearchOptions{Workers: opts.Workers, MaxFrontier: opts.MaxFrontier}}
	}
	return &Solver{opts: opts, decider: d}
}

// Options returns the effective options.
func (s *Solver) Options() Options { return s.opts }

// PageBound returns max(1, ceil(v/2)), an upper bound on the book thickness
// of any simple graph on v vertices.
func PageBound(v int) int {
	return max(1, (v+1)/2)
}

// FindThickness returns a minimum page embedding of g.
//
// Page counts are tried in increasing order from StartPages, and every
// canonical spine is tried at a page count before the next one, so the first
// embedding found uses the minimum number of pages at or above StartPages.
func (s *Solver) FindThickness(ctx context.Context, g *graph.Graph) (*Embedding, error) {
	res, err := s.Solve(ctx, g)
	if err != nil {
		return nil, err
	}
	if !res.Found() {
		return nil, errors.New(errors.ErrCodeNotFound, "no embedding within %d pages", s.opts.MaxPages)
	}
	return res.Embedding, nil
}

// Solve is FindThickness returning the tagged result with statistics.
//
// If MaxPages was set explicitly and no page count up to it admits an
// embedding, the result is NotFound. Exhausting the default bound cannot
// happen for a correct engine and is reported as INTERNAL_ERROR.
func (s *Solver) Solve(ctx context.Context, g *graph.Graph) (Result, error) {
	if g == nil {
		return Result{}, errors.New(errors.ErrCodeInvalidInput, "graph is nil")
	}
	start := time.Now()
	hooks := observability.Search()
	hooks.OnSearchStart(ctx, g.Order(), g.Size())

	res, err := s.solve(ctx, g)
	res.Stats.Duration = time.Since(start)

	pages := 0
	if res.Found() {
		pages = res.Embedding.Pages
	}
	hooks.OnSearchComplete(ctx, pages, res.Stats.Duration, err)
	return res, err
}

func (s *Solver) solve(ctx context.Context, g *graph.Graph) (Result, error) {
	bound := s.opts.MaxPages
	if bound <= 0 {
		bound = PageBound(g.Order())
	}
	last := max(bound, s.opts.StartPages)

	var res Result
	seq, total := spine.Sequence(g.Order())
	for pages := s.opts.StartPages; pages <= last; pages++ {
		emb, err := s.level(ctx, g, pages, seq, total, &res.Stats)
		if err != nil {
			return res, err
		}
		if emb != nil {
			res.Status = Found
			res.Embedding = emb
			return res, nil
		}
	}
	if s.opts.MaxPages > 0 {
		return res, nil
	}
	return res, errors.New(errors.ErrCodeInternal,
		"no embedding of a %d vertex graph within %d pages", g.Order(), last)
}

// FindForSpines decides whether g embeds in pages pages on one of spines.
// If spines is empty every canonical spine is tried.
func (s *Solver) FindForSpines(ctx context.Context, g *graph.Graph, pages int, spines []spine.Spine) (Result, error) {
	if g == nil {
		return Result{}, errors.New(errors.ErrCodeInvalidInput, "graph is nil")
	}
	if pages < 1 {
		return Result{}, errors.New(errors.ErrCodeInvalidPages, "page count must be at least 1, got %d", pages)
	}
	for _, sp := range spines {
		if err := spine.Validate(sp, g.Order()); err != nil {
			return Result{}, err
		}
	}

	start := time.Now()
	var (
		seq   iter.Seq[spine.Spine]
		total int
		res   Result
	)
	if len(spines) == 0 {
		seq, total = spine.Sequence(g.Order())
	} else {
		seq, total = slices.Values(spines), len(spines)
	}
	emb, err := s.level(ctx, g, pages, seq, total, &res.Stats)
	res.Stats.Duration = time.Since(start)
	if err != nil {
		return res, err
	}
	if emb != nil {
		res.Status = Found
		res.Embedding = emb
	}
	return res, nil
}

// level tries every spine of seq at one page count and returns the first
// embedding found, or nil.
func (s *Solver) level(ctx context.Context, g *graph.Graph, pages int, seq iter.Seq[spine.Spine], total int, stats *Stats) (*Embedding, error) {
	hooks := observability.Search()
	hooks.OnPagesStart(ctx, pages, total)
	started := time.Now()
	stats.PagesTried++

	var (
		found  *Embedding
		err    error
		tested int
	)
	for sp := range seq {
		if cerr := ctx.Err(); cerr != nil {
			err = errors.Interrupted(cerr, "thickness search at %d pages", pages)
			break
		}
		emb, ts, derr := s.decider.Decide(ctx, g, sp, pages)
		tested++
		stats.addTrial(ts)
		hooks.OnTrialComplete(ctx, pages, emb != nil, ts.Explored)
		if s.opts.Progress != nil {
			s.opts.Progress(Progress{Pages: pages, Tested: tested, Total: total, Spine: sp, Found: emb != nil})
		}
		if derr != nil {
			err = derr
			break
		}
		if emb != nil {
			if verr := Verify(g, emb); verr != nil {
				err = errors.Wrap(errors.ErrCodeInternal, verr, "engine returned an invalid embedding on spine %s", sp)
				break
			}
			found = emb
			break
		}
	}
	hooks.OnPagesComplete(ctx, pages, found != nil, time.Since(started))
	if err != nil {
		return nil, fmt.Errorf("%d pages: %w", pages, err)
	}
	return found, nil
}
