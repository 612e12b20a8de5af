// Package sat decides fixed (spine, page count) trials with a SAT solver.
//
// Each trial is encoded as a CNF instance over one variable per (edge, page):
// every edge needs a page, and two edges that cross on the spine cannot share
// one. The instance is solved with gini. The engine is independent of the
// frontier search in package book and is used to cross-check it.
package sat

import (
	"context"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"

	"github.com/matzehuels/bookthickness/pkg/book"
	"github.com/matzehuels/bookthickness/pkg/errors"
	"github.com/matzehuels/bookthickness/pkg/graph"
	"github.com/matzehuels/bookthickness/pkg/spine"
)

// Decider implements book.Decider with gini.
type Decider struct{}

// New returns a SAT decider.
func New() Decider { return Decider{} }

var _ book.Decider = Decider{}

// Decide encodes and solves one trial. The returned stats count one explored
// state per clause added.
func (Decider) Decide(ctx context.Context, g *graph.Graph, s spine.Spine, pages int) (*book.Embedding, book.TrialStats, error) {
	if pages < 1 {
		return nil, book.TrialStats{}, errors.New(errors.ErrCodeInvalidPages, "page count must be at least 1, got %d", pages)
	}
	if err := spine.Validate(s, g.Order()); err != nil {
		return nil, book.TrialStats{}, err
	}
	if err := ctx.Err(); err != nil {
		return nil, book.TrialStats{}, errors.Interrupted(err, "sat trial on spine %s", s)
	}

	enc := encode(g, s, pages)
	stats := book.TrialStats{Explored: enc.clauses}
	if enc.g.Solve() != 1 {
		return nil, stats, nil
	}
	return enc.decode(), stats, nil
}

type encoding struct {
	g       *gini.Gini
	graph   *graph.Graph
	spine   spine.Spine
	pages   int
	clauses int
}

// lit returns the literal "edge i is on page p".
func (e *encoding) lit(i, p int) z.Lit {
	return z.Var(i*e.pages + p).Pos()
}

func (e *encoding) clause(lits ...z.Lit) {
	for _, m := range lits {
		e.g.Add(m)
	}
	e.g.Add(z.LitNull)
	e.clauses++
}

func encode(g *graph.Graph, s spine.Spine, pages int) *encoding {
	enc := &encoding{g: gini.New(), graph: g, spine: s, pages: pages}
	edges := g.Edges()
	pos := s.Positions()

	for i := range edges {
		lits := make([]z.Lit, 0, pages)
		for p := 1; p <= pages; p++ {
			lits = append(lits, enc.lit(i, p))
		}
		enc.clause(lits...)
	}

	for i, a := range edges {
		for j := i + 1; j < len(edges); j++ {
			if !book.Crosses(pos, a, edges[j]) {
				continue
			}
			for p := 1; p <= pages; p++ {
				enc.clause(enc.lit(i, p).Not(), enc.lit(j, p).Not())
			}
		}
	}

	// Pages are interchangeable; pin the first edge to page 1.
	if len(edges) > 0 {
		enc.clause(enc.lit(0, 1))
	}
	return enc
}

// decode reads a satisfying assignment, taking the lowest true page of each
// edge.
func (e *encoding) decode() *book.Embedding {
	emb := &book.Embedding{Spine: append(spine.Spine(nil), e.spine...), Pages: e.pages}
	for i, edge := range e.graph.Edges() {
		for p := 1; p <= e.pages; p++ {
			if e.g.Value(e.lit(i, p)) {
				emb.Assignment = append(emb.Assignment, book.Placement{Edge: edge, Page: p})
				break
			}
		}
	}
	return emb
}
