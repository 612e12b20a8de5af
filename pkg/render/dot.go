package render

import (
	"bytes"
	"fmt"
	"math"

	"github.com/matzehuels/bookthickness/pkg/book"
)

// pageColors cycles for books with more pages than entries.
var pageColors = []string{
	"#1f77b4", "#d62728", "#2ca02c", "#ff7f0e",
	"#9467bd", "#8c564b", "#e377c2", "#17becf",
}

// PageColor returns the edge color used for page (1-based).
func PageColor(page int) string {
	return pageColors[(page-1)%len(pageColors)]
}

// ToDOT converts emb to an undirected DOT graph for the neato engine.
// Vertices are pinned clockwise on a circle starting at the top, in spine
// order; edges carry their page as color and tooltip.
func ToDOT(emb *book.Embedding, opts Options) string {
	r := opts.Radius
	if r <= 0 {
		r = 2
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=false;\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", opts.Title)
	}
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=12, width=0.35, fixedsize=true];\n")
	buf.WriteString("  edge [penwidth=2];\n\n")

	n := len(emb.Spine)
	for i, v := range emb.Spine {
		angle := math.Pi/2 - 2*math.Pi*float64(i)/float64(max(n, 1))
		x, y := r*math.Cos(angle), r*math.Sin(angle)
		fmt.Fprintf(&buf, "  \"%d\" [pos=\"%.3f,%.3f!\"];\n", v, x, y)
	}

	buf.WriteString("\n")
	for _, p := range emb.Assignment {
		fmt.Fprintf(&buf, "  \"%d\" -- \"%d\" [color=%q, tooltip=\"page %d\"];\n",
			p.Edge.U, p.Edge.V, PageColor(p.Page), p.Page)
	}
	buf.WriteString("}\n")
	return buf.String()
}
