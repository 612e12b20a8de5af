// Package book computes book embeddings and the book thickness of graphs.
//
// A book embedding places the vertices on a circular spine and assigns every
// edge to a page so that no two edges on the same page cross. Two edges cross
// when their spine intervals interleave. The book thickness is the smallest
// page count over all spines for which an embedding exists.
//
// # Trials
//
// A trial fixes a spine and a page count. [NewState] seeds the trial with
// every (edge, page) slot available; [State.PlaceFreeEdges] puts the edges
// whose endpoints are adjacent on the spine onto page 1; [Search] then
// explores placements level by level, removing the slots each placement
// would cross, until every edge is placed or the frontier empties.
//
// # Thickness
//
// [Solver.FindThickness] runs trials for page counts 1, 2, ... and for every
// canonical spine of package spine at each count. Because a page count is
// exhausted before the next one is tried, the first embedding found is
// minimal:
//
//	g, _ := graph.Complete(6)
//	emb, err := book.NewSolver(book.Options{}).FindThickness(ctx, g)
//	// emb.Pages == 3
//
// The trial engine is pluggable through [Decider]; package book/sat provides a
// SAT based one.
package book
