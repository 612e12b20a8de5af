package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/bookthickness/pkg/errors"
)

// Edge is an undirected edge normalized so that U < V.
type Edge struct {
	U, V int
}

// NewEdge returns the normalized edge between a and b.
func NewEdge(a, b int) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{U: a, V: b}
}

// String formats the edge as "(u, v)".
func (e Edge) String() string {
	return fmt.Sprintf("(%d, %d)", e.U, e.V)
}

// Other returns the endpoint of e that is not x.
func (e Edge) Other(x int) int {
	if e.U == x {
		return e.V
	}
	return e.U
}

// Graph is a finite simple graph on the vertices 1..Order().
// A Graph is immutable after construction and safe for concurrent reads.
type Graph struct {
	order int
	edges []Edge
	index map[Edge]int
}

// Build validates raw pairs and returns the normalized graph.
//
// Each pair must contain exactly two positive integers. Self loops are
// dropped and duplicate edges (in either orientation) collapse to the first
// occurrence, matching how simple graphs are usually written down by hand.
func Build(pairs [][]int) (*Graph, error) {
	edges := make([]Edge, 0, len(pairs))
	for i, p := range pairs {
		if len(p) != 2 {
			return nil, errors.New(errors.ErrCodeInvalidEdge, "edge %d: want 2 vertices, got %d", i, len(p))
		}
		if p[0] < 1 || p[1] < 1 {
			return nil, errors.New(errors.ErrCodeInvalidEdge, "edge %d: vertices must be positive integers, got %v", i, p)
		}
		edges = append(edges, Edge{U: p[0], V: p[1]})
	}
	return FromEdges(edges)
}

// FromEdges builds a graph from already-typed edges. Orientation, loops and
// duplicates are handled as in [Build].
func FromEdges(edges []Edge) (*Graph, error) {
	g := &Graph{index: make(map[Edge]int, len(edges))}
	for _, e := range edges {
		if e.U < 1 || e.V < 1 {
			return nil, errors.New(errors.ErrCodeInvalidEdge, "edge %s: vertices must be positive integers", e)
		}
		if e.U == e.V {
			continue
		}
		n := NewEdge(e.U, e.V)
		if _, ok := g.index[n]; ok {
			continue
		}
		g.index[n] = len(g.edges)
		g.edges = append(g.edges, n)
		g.order = max(g.order, n.V)
	}
	return g, nil
}

// MustBuild is like [Build] but panics on invalid input.
// It is intended for tests and package-level fixtures.
func MustBuild(pairs [][]int) *Graph {
	g, err := Build(pairs)
	if err != nil {
		panic(err)
	}
	return g
}

// Order returns V, the number of vertices.
func (g *Graph) Order() int { return g.order }

// Size returns the number of edges.
func (g *Graph) Size() int { return len(g.edges) }

// Edges returns a copy of the edge list in normalized input order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// Edge returns the i-th edge.
func (g *Graph) Edge(i int) Edge { return g.edges[i] }

// Index returns the position of e in the edge list, or -1 if e is not an edge.
// The edge is normalized before lookup.
func (g *Graph) Index(e Edge) int {
	if i, ok := g.index[NewEdge(e.U, e.V)]; ok {
		return i
	}
	return -1
}

// HasEdge reports whether a and b are adjacent.
func (g *Graph) HasEdge(a, b int) bool {
	_, ok := g.index[NewEdge(a, b)]
	return ok
}

// Vertices returns [1, 2, ..., V].
func (g *Graph) Vertices() []int {
	vs := make([]int, g.order)
	for i := range vs {
		vs[i] = i + 1
	}
	return vs
}

// Degree returns the number of edges incident to v.
func (g *Graph) Degree(v int) int {
	d := 0
	for _, e := range g.edges {
		if e.U == v || e.V == v {
			d++
		}
	}
	return d
}

// Pairs returns the edges as raw [u, v] pairs, the inverse of [Build].
func (g *Graph) Pairs() [][]int {
	out := make([][]int, len(g.edges))
	for i, e := range g.edges {
		out[i] = []int{e.U, e.V}
	}
	return out
}

// String renders the graph in set notation, e.g.
//
//	G = (V, E), |V| = 3, |E| = 2
//	V = {1, 2, 3}
//	E = {{1, 2}, {2, 3}}
func (g *Graph) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "G = (V, E), |V| = %d, |E| = %d\n", g.order, len(g.edges))
	vs := make([]string, g.order)
	for i := range vs {
		vs[i] = fmt.Sprint(i + 1)
	}
	fmt.Fprintf(&b, "V = {%s}\n", strings.Join(vs, ", "))
	es := make([]string, len(g.edges))
	for i, e := range g.edges {
		es[i] = fmt.Sprintf("{%d, %d}", e.U, e.V)
	}
	fmt.Fprintf(&b, "E = {%s}", strings.Join(es, ", "))
	return b.String()
}
