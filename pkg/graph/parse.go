package graph

import (
	"github.com/alecthomas/participle/v2"

	"github.com/matzehuels/bookthickness/pkg/errors"
)

// edgeExpr is the grammar for edge expressions: comma or semicolon separated
// runs, each run a chain of vertices joined by "-".
//
//	1-2-3-4, 4-1; 5-6
type edgeExpr struct {
	Runs []*edgeRun `( @@ ( ( "," | ";" ) @@ )* )?`
}

type edgeRun struct {
	Start int   `@Int`
	Next  []int `( "-" @Int )*`
}

var edgeParser = participle.MustBuild[edgeExpr]()

// Parse reads an edge expression and builds the graph it describes.
//
// A run "a-b-c" contributes the edges (a,b) and (b,c). A run with a single
// vertex contributes nothing but still raises the vertex count, so "1-2, 5"
// is a path on two vertices plus isolated vertices 3, 4 and 5.
func Parse(expr string) (*Graph, error) {
	ast, err := edgeParser.ParseString("", expr)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse edge expression %q", expr)
	}

	var edges []Edge
	order := 0
	for _, run := range ast.Runs {
		prev := run.Start
		if prev < 1 {
			return nil, errors.New(errors.ErrCodeInvalidEdge, "vertex %d: vertices must be positive integers", prev)
		}
		order = max(order, prev)
		for _, v := range run.Next {
			if v < 1 {
				return nil, errors.New(errors.ErrCodeInvalidEdge, "vertex %d: vertices must be positive integers", v)
			}
			edges = append(edges, Edge{U: prev, V: v})
			order = max(order, v)
			prev = v
		}
	}

	g, err := FromEdges(edges)
	if err != nil {
		return nil, err
	}
	g.order = max(g.order, order)
	return g, nil
}
