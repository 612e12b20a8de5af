// Package graph provides the simple undirected graphs whose book thickness is
// computed by package book.
//
// A [Graph] has vertices 1..V, where V is the highest label used by any edge,
// and a deduplicated list of normalized edges ([Edge] with U < V). Isolated
// vertices below V are part of the graph even though no edge mentions them.
//
// # Construction
//
//   - [Build]: validate and normalize raw integer pairs
//   - [Parse]: read an edge expression such as "1-2-3-4, 4-1"
//   - [Complete], [CompleteBipartite], [Cycle], [Path]: standard families
//   - [ReadFile], [Read]: decode the JSON wire format
//
// Edge order is the first-seen order of the input after normalization. The
// search engine picks the next edge to place in this order, so two graphs with
// the same edge set but different input order explore different trees.
//
// # Wire Format
//
//	{"edges": [[1, 2], [2, 3], [1, 3]]}
//
// Validation failures are returned as *errors.Error values with codes
// INVALID_EDGE or INVALID_INPUT.
package graph
