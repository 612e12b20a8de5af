package book

import (
	"context"
	"math"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/bookthickness/pkg/errors"
)

// minChunk is the smallest per-worker share of a level worth a goroutine.
const minChunk = 16

// ctxCheckInterval is how many frontier entries are expanded between context
// checks inside one level.
const ctxCheckInterval = 256

// SearchOptions configures one trial search.
type SearchOptions struct {
	// Workers partitions each level across this many goroutines. Values
	// below 2 run sequentially. The result does not depend on Workers.
	Workers int

	// MaxFrontier caps the width of a level. Zero means unlimited.
	MaxFrontier int
}

// TrialStats counts the work done by one trial.
type TrialStats struct {
	Explored    int `json:"explored"`
	Pruned      int `json:"pruned"`
	MaxFrontier int `json:"max_frontier"`
	Levels      int `json:"levels"`
}

func (s *TrialStats) add(o TrialStats) {
	s.Explored += o.Explored
	s.Pruned += o.Pruned
}

// branch is a frontier entry: a parent pointer and the Delta that turns the
// parent state into this one. The root branch has no parent and no delta.
type branch struct {
	parent *branch
	delta  Delta
	depth  int
}

// state rebuilds the state of b by replaying deltas onto a clone of root.
func (b *branch) state(root *State) (*State, error) {
	chain := make([]*branch, 0, b.depth)
	for n := b; n.parent != nil; n = n.parent {
		chain = append(chain, n)
	}
	st := root.Clone()
	for i := len(chain) - 1; i >= 0; i-- {
		if err := st.Apply(chain[i].delta); err != nil {
			return nil, err
		}
	}
	return st, nil
}

// Search runs a level-order search for a completion of root.
//
// Each level is scanned in order. A complete state ends the search, an
// impossible one is pruned, and any other state branches on its first
// remaining edge, one child per available page in ascending page order. The
// children form the next level. Search returns the first complete state found
// in that order, or a nil state when the frontier empties, meaning the trial
// has no embedding.
//
// root is not modified.
func Search(ctx context.Context, root *State, opts SearchOptions) (*State, TrialStats, error) {
	var stats TrialStats
	frontier := []*branch{{}}

	for len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, stats, errors.Interrupted(err, "search interrupted at level %d", stats.Levels)
		}
		if opts.MaxFrontier > 0 && len(frontier) > opts.MaxFrontier {
			return nil, stats, errors.New(errors.ErrCodeResourceExhausted,
				"frontier of %d states exceeds limit %d", len(frontier), opts.MaxFrontier)
		}
		stats.MaxFrontier = max(stats.MaxFrontier, len(frontier))
		stats.Levels++

		var (
			lvl levelResult
			err error
		)
		if opts.Workers > 1 && len(frontier) >= opts.Workers*minChunk {
			lvl, err = expandParallel(ctx, root, frontier, opts.Workers)
		} else {
			lvl, err = expand(ctx, root, frontier, nil)
		}
		stats.add(lvl.stats)
		if err != nil {
			return nil, stats, errors.Interrupted(err, "search interrupted at level %d", stats.Levels)
		}
		if lvl.found != nil {
			return lvl.found, stats, nil
		}
		frontier = lvl.children
	}
	return nil, stats, nil
}

type levelResult struct {
	found    *State
	children []*branch
	stats    TrialStats
}

// expand processes level in order. stop, when non-nil, is polled between
// entries and ends the scan early when it returns true.
func expand(ctx context.Context, root *State, level []*branch, stop func() bool) (levelResult, error) {
	var r levelResult
	for i, b := range level {
		if i%ctxCheckInterval == 0 && i > 0 {
			if err := ctx.Err(); err != nil {
				return r, err
			}
		}
		if stop != nil && stop() {
			return r, nil
		}

		st, err := b.state(root)
		if err != nil {
			return r, err
		}
		r.stats.Explored++
		if st.Complete() {
			r.found = st
			return r, nil
		}
		if !st.Possible() {
			r.stats.Pruned++
			continue
		}

		e, _ := st.NextEdge()
		pages := st.AvailablePages(e)
		for j, p := range pages {
			child := st
			if j < len(pages)-1 {
				child = st.Clone()
			}
			d, err := child.Place(e, p)
			if err != nil {
				return r, err
			}
			r.children = append(r.children, &branch{parent: b, delta: d, depth: b.depth + 1})
		}
	}
	return r, nil
}

// expandParallel splits level into contiguous chunks, one per worker, and
// merges the chunk results in frontier order. A chunk stops once an earlier
// chunk has found a complete state, since nothing it finds can win.
func expandParallel(ctx context.Context, root *State, level []*branch, workers int) (levelResult, error) {
	size := (len(level) + workers - 1) / workers
	var chunks [][]*branch
	for lo := 0; lo < len(level); lo += size {
		chunks = append(chunks, level[lo:min(lo+size, len(level))])
	}

	var best atomic.Int64
	best.Store(math.MaxInt64)
	results := make([]levelResult, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	for c, chunk := range chunks {
		g.Go(func() error {
			r, err := expand(gctx, root, chunk, func() bool { return best.Load() < int64(c) })
			if err != nil {
				return err
			}
			results[c] = r
			if r.found != nil {
				for {
					cur := best.Load()
					if int64(c) >= cur || best.CompareAndSwap(cur, int64(c)) {
						break
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return levelResult{}, err
	}

	var merged levelResult
	for _, r := range results {
		merged.stats.add(r.stats)
		if r.found != nil {
			merged.found = r.found
			return merged, nil
		}
		merged.children = append(merged.children, r.children...)
	}
	return merged, nil
}
