// Package pkg holds the libraries behind the bookthickness CLI and server.
//
// # Overview
//
// A book embedding of a graph places its vertices on a circular spine and its
// edges on pages so that no two edges on one page cross. The book thickness
// is the fewest pages any spine order allows. The packages build on each
// other:
//
//  1. [graph] parses and stores simple undirected graphs on vertices 1..n
//  2. [spine] enumerates vertex orders up to rotation and reflection
//  3. [book] holds the embedding state, the level-order search and the solver
//  4. [book/sat] decides single trials with a SAT solver instead
//  5. [pipeline] adds caching ([cache]) around solver calls
//  6. [render] draws embeddings as text tables, DOT or SVG
//
// # Data flow
//
//	edge list / JSON file
//	         ↓
//	    [graph] package (validate, normalize)
//	         ↓
//	    [pipeline] package (cache lookup)
//	         ↓
//	    [book] package (spines × pages search)
//	         ↓
//	    [render] package (table, DOT, SVG)
//
// # Quick start
//
//	g, _ := graph.Parse("1-2, 1-3, 1-4, 2-3, 2-4, 3-4")
//	emb, err := book.NewSolver(book.Options{}).FindThickness(ctx, g)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(emb)
//
// Errors carry codes from [errors] so callers can tell invalid input from
// timeouts and internal failures.
package pkg
