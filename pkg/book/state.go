package book

import (
	"slices"

	"github.com/soniakeys/bits"

	"github.com/matzehuels/bookthickness/pkg/errors"
	"github.com/matzehuels/bookthickness/pkg/graph"
	"github.com/matzehuels/bookthickness/pkg/spine"
)

// Slot is an (edge, page) placement candidate.
type Slot struct {
	Edge graph.Edge
	Page int
}

// Delta is what one placement adds to a state: the placement itself and the
// slots its blocking rule removed. Search branches store only their Delta
// and a parent pointer; [State.Apply] replays a Delta onto the parent state.
type Delta struct {
	Placement Placement
	blocked   []int
}

// Blocked returns the slots removed by the blocking rule of this placement,
// excluding the (edge, *) slots of the placed edge itself.
func (d Delta) Blocked(st *State) []Slot {
	out := make([]Slot, len(d.blocked))
	for i, idx := range d.blocked {
		out[i] = st.trial.slotOf(idx)
	}
	return out
}

// trial holds the read-only data shared by every state of one
// (spine, page count) trial.
type trial struct {
	g     *graph.Graph
	spine spine.Spine
	pos   []int
	pages int
	n     int
}

func (t *trial) pair(u, v int) int {
	if u > v {
		u, v = v, u
	}
	return (u-1)*t.n + (v - 1)
}

func (t *trial) slot(u, v, page int) int {
	return t.pair(u, v)*t.pages + (page - 1)
}

func (t *trial) slotOf(idx int) Slot {
	page := idx%t.pages + 1
	p := idx / t.pages
	return Slot{Edge: graph.Edge{U: p/t.n + 1, V: p%t.n + 1}, Page: page}
}

// State is the mutable search state of one (spine, page count) trial.
//
// It tracks the placed edges in placement order, the edges still to place,
// and the set of (edge, page) slots that are still permitted. A slot leaves
// the available set the moment its edge is placed or a placed edge on the
// same page would cross it, so an available slot never crosses a placed edge.
//
// A State is not safe for concurrent use; branches of the search each own a
// [State.Clone].
type State struct {
	trial     *trial
	available bits.Bits // slot index -> 1 if still permitted
	remaining bits.Bits // edge index -> 1 if not yet placed
	placed    []Placement
}

// NewState seeds a trial: every vertex pair u < v on the spine is available
// on every page 1..pages, and every edge of g remains to be placed.
func NewState(pages int, g *graph.Graph, s spine.Spine) (*State, error) {
	if pages < 1 {
		return nil, errors.New(errors.ErrCodeInvalidPages, "page count must be at least 1, got %d", pages)
	}
	if err := spine.Validate(s, g.Order()); err != nil {
		return nil, err
	}

	n := g.Order()
	t := &trial{g: g, spine: slices.Clone(s), pos: s.Positions(), pages: pages, n: n}
	st := &State{
		trial:     t,
		available: bits.New(max(n*n*pages, 1)),
		remaining: bits.New(max(g.Size(), 1)),
		placed:    make([]Placement, 0, g.Size()),
	}
	for u := 1; u <= n; u++ {
		for v := u + 1; v <= n; v++ {
			for p := 1; p <= pages; p++ {
				st.available.SetBit(t.slot(u, v, p), 1)
			}
		}
	}
	for i := range g.Size() {
		st.remaining.SetBit(i, 1)
	}
	return st, nil
}

// Pages returns the page count of the trial.
func (st *State) Pages() int { return st.trial.pages }

// Spine returns the spine of the trial.
func (st *State) Spine() spine.Spine { return slices.Clone(st.trial.spine) }

// Available reports whether e may still be placed on page.
func (st *State) Available(e graph.Edge, page int) bool {
	e = graph.NewEdge(e.U, e.V)
	if page < 1 || page > st.trial.pages || !st.onSpine(e) {
		return false
	}
	return st.available.Bit(st.trial.slot(e.U, e.V, page)) == 1
}

// AvailablePages returns the pages e may still be placed on, ascending.
func (st *State) AvailablePages(e graph.Edge) []int {
	var out []int
	for p := 1; p <= st.trial.pages; p++ {
		if st.Available(e, p) {
			out = append(out, p)
		}
	}
	return out
}

// PlaceFreeEdges places every edge joining two spine-adjacent vertices,
// including the pair formed by the first and last positions, on page 1.
// Such an edge cannot cross any other edge.
func (st *State) PlaceFreeEdges() error {
	s := st.trial.spine
	n := len(s)
	if n < 2 {
		return nil
	}
	for k := range n {
		e := graph.NewEdge(s[k], s[(k+1)%n])
		i := st.trial.g.Index(e)
		if i < 0 || st.remaining.Bit(i) == 0 {
			continue
		}
		if _, err := st.Place(e, 1); err != nil {
			return err
		}
	}
	return nil
}

// Place fixes e on page and applies the blocking rule.
//
// The edge moves from the remaining set to the placed list and all of its
// slots leave the available set. Then, with s < l the spine positions of the
// endpoints, every pair joining a vertex strictly between s and l to a vertex
// outside [s, l] would cross e, so its slot on this page is removed. Other
// pages are unaffected.
//
// Place requires (e, page) to be available and e to be remaining. A
// violation means the caller is broken, not that the trial failed, and is
// reported as an INTERNAL_ERROR that must abort the search.
func (st *State) Place(e graph.Edge, page int) (Delta, error) {
	e = graph.NewEdge(e.U, e.V)
	idx, err := st.checkPlaceable(e, page)
	if err != nil {
		return Delta{}, err
	}

	d := Delta{Placement: Placement{Edge: e, Page: page}}
	st.fix(idx, d.Placement)

	t := st.trial
	lo, hi := t.pos[e.U], t.pos[e.V]
	if lo > hi {
		lo, hi = hi, lo
	}
	for i := lo + 1; i < hi; i++ {
		inner := t.spine[i]
		for j := range t.n {
			if j >= lo && j <= hi {
				continue
			}
			slot := t.slot(inner, t.spine[j], page)
			if st.available.Bit(slot) == 1 {
				st.available.SetBit(slot, 0)
				d.blocked = append(d.blocked, slot)
			}
		}
	}
	return d, nil
}

// Apply replays a Delta produced by Place on an equivalent state. It checks
// the same preconditions as Place but does not recompute the blocking rule.
func (st *State) Apply(d Delta) error {
	e := d.Placement.Edge
	idx, err := st.checkPlaceable(e, d.Placement.Page)
	if err != nil {
		return err
	}
	st.fix(idx, d.Placement)
	for _, slot := range d.blocked {
		st.available.SetBit(slot, 0)
	}
	return nil
}

func (st *State) checkPlaceable(e graph.Edge, page int) (int, error) {
	idx := st.trial.g.Index(e)
	if idx < 0 {
		return -1, errors.New(errors.ErrCodeInternal, "place %s: not an edge of the graph", e)
	}
	if st.remaining.Bit(idx) == 0 {
		return -1, errors.New(errors.ErrCodeInternal, "place %s: edge already placed", e)
	}
	if !st.Available(e, page) {
		return -1, errors.New(errors.ErrCodeInternal, "place %s on page %d: slot not available", e, page)
	}
	return idx, nil
}

// fix moves edge idx to the placed list and clears all of its slots.
func (st *State) fix(idx int, p Placement) {
	st.remaining.SetBit(idx, 0)
	st.placed = append(st.placed, p)
	for q := 1; q <= st.trial.pages; q++ {
		st.available.SetBit(st.trial.slot(p.Edge.U, p.Edge.V, q), 0)
	}
}

// Possible reports whether every remaining edge still has an available page.
// A false result means the state can be pruned.
func (st *State) Possible() bool {
	for i := range st.trial.g.Size() {
		if st.remaining.Bit(i) == 0 {
			continue
		}
		e := st.trial.g.Edge(i)
		free := false
		for p := 1; p <= st.trial.pages; p++ {
			if st.available.Bit(st.trial.slot(e.U, e.V, p)) == 1 {
				free = true
				break
			}
		}
		if !free {
			return false
		}
	}
	return true
}

// Complete reports whether every edge has been placed.
func (st *State) Complete() bool {
	return len(st.placed) == st.trial.g.Size()
}

// NextEdge returns the first remaining edge in graph edge order.
func (st *State) NextEdge() (graph.Edge, bool) {
	for i := range st.trial.g.Size() {
		if st.remaining.Bit(i) == 1 {
			return st.trial.g.Edge(i), true
		}
	}
	return graph.Edge{}, false
}

// Remaining returns the edges not yet placed, in graph edge order.
func (st *State) Remaining() []graph.Edge {
	var out []graph.Edge
	for i := range st.trial.g.Size() {
		if st.remaining.Bit(i) == 1 {
			out = append(out, st.trial.g.Edge(i))
		}
	}
	return out
}

// Placements returns the placed edges in placement order.
func (st *State) Placements() []Placement {
	return slices.Clone(st.placed)
}

// AvailableCount returns the number of available slots over all vertex pairs.
func (st *State) AvailableCount() int {
	c := 0
	for _, w := range st.available.Bits {
		c += popcount(w)
	}
	return c
}

// Clone returns an independent copy. The trial data is shared read-only.
func (st *State) Clone() *State {
	return &State{
		trial:     st.trial,
		available: cloneBits(st.available),
		remaining: cloneBits(st.remaining),
		placed:    slices.Clone(st.placed),
	}
}

// Embedding converts a complete state into an Embedding.
func (st *State) Embedding() *Embedding {
	return &Embedding{
		Spine:      slices.Clone(st.trial.spine),
		Pages:      st.trial.pages,
		Assignment: slices.Clone(st.placed),
	}
}

func (st *State) onSpine(e graph.Edge) bool {
	return e.U >= 1 && e.V <= st.trial.n && e.U < e.V
}

func cloneBits(b bits.Bits) bits.Bits {
	c := bits.New(b.Num)
	copy(c.Bits, b.Bits)
	return c
}

func popcount(w uint64) int {
	c := 0
	for w != 0 {
		w &= w - 1
		c++
	}
	return c
}
