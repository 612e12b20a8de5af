// Package render turns book embeddings into text, JSON, Graphviz DOT and SVG.
//
// The DOT output pins the spine vertices on a circle in spine order and
// colors each edge by its page, so every page's edges are visibly
// non-crossing chords. SVG is produced from that DOT with the embedded
// Graphviz of github.com/goccy/go-graphviz; no external binary is needed.
//
//	dot := render.ToDOT(emb, render.Options{})
//	svg, err := render.RenderSVG(ctx, dot)
package render
