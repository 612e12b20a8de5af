package graph

import "github.com/matzehuels/bookthickness/pkg/errors"

// Complete returns K_n with edges in lexicographic order.
func Complete(n int) (*Graph, error) {
	if n < 2 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "complete graph needs at least 2 vertices, got %d", n)
	}
	edges := make([]Edge, 0, n*(n-1)/2)
	for u := 1; u <= n; u++ {
		for v := u + 1; v <= n; v++ {
			edges = append(edges, Edge{U: u, V: v})
		}
	}
	return FromEdges(edges)
}

// CompleteBipartite returns K_{n,m} with parts {1..n} and {n+1..n+m}.
func CompleteBipartite(n, m int) (*Graph, error) {
	if n < 1 || m < 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "complete bipartite graph needs non-empty parts, got %d,%d", n, m)
	}
	edges := make([]Edge, 0, n*m)
	for u := 1; u <= n; u++ {
		for v := n + 1; v <= n+m; v++ {
			edges = append(edges, Edge{U: u, V: v})
		}
	}
	return FromEdges(edges)
}

// Cycle returns C_n: 1-2-...-n-1.
func Cycle(n int) (*Graph, error) {
	if n < 3 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "cycle needs at least 3 vertices, got %d", n)
	}
	edges := make([]Edge, 0, n)
	for i := 1; i < n; i++ {
		edges = append(edges, Edge{U: i, V: i + 1})
	}
	edges = append(edges, Edge{U: 1, V: n})
	return FromEdges(edges)
}

// Path returns P_n: 1-2-...-n.
func Path(n int) (*Graph, error) {
	if n < 2 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "path needs at least 2 vertices, got %d", n)
	}
	edges := make([]Edge, 0, n-1)
	for i := 1; i < n; i++ {
		edges = append(edges, Edge{U: i, V: i + 1})
	}
	return FromEdges(edges)
}
