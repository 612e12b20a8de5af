package book

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/matzehuels/bookthickness/pkg/errors"
	"github.com/matzehuels/bookthickness/pkg/graph"
	"github.com/matzehuels/bookthickness/pkg/spine"
)

// Placement assigns one edge to a page.
type Placement struct {
	Edge graph.Edge
	Page int
}

type placementJSON struct {
	Edge [2]int `json:"edge"`
	Page int    `json:"page"`
}

func (p Placement) MarshalJSON() ([]byte, error) {
	return json.Marshal(placementJSON{Edge: [2]int{p.Edge.U, p.Edge.V}, Page: p.Page})
}

func (p *Placement) UnmarshalJSON(data []byte) error {
	var raw placementJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Edge = graph.NewEdge(raw.Edge[0], raw.Edge[1])
	p.Page = raw.Page
	return nil
}

func (p Placement) String() string {
	return fmt.Sprintf("%s@%d", p.Edge, p.Page)
}

// Embedding is a book embedding: a spine together with a page for every
// edge such that no two edges on the same page cross.
type Embedding struct {
	Spine      spine.Spine `json:"spine"`
	Pages      int         `json:"pages"`
	Assignment []Placement `json:"assignment"`
}

// Page returns the page of e, or 0 if e is not assigned.
func (emb *Embedding) Page(e graph.Edge) int {
	e = graph.NewEdge(e.U, e.V)
	for _, p := range emb.Assignment {
		if p.Edge == e {
			return p.Page
		}
	}
	return 0
}

// PageEdges returns the edges assigned to page, in assignment order.
func (emb *Embedding) PageEdges(page int) []graph.Edge {
	var out []graph.Edge
	for _, p := range emb.Assignment {
		if p.Page == page {
			out = append(out, p.Edge)
		}
	}
	return out
}

// UsedPages returns the number of distinct pages that carry at least one edge.
func (emb *Embedding) UsedPages() int {
	seen := make(map[int]bool)
	for _, p := range emb.Assignment {
		seen[p.Page] = true
	}
	return len(seen)
}

// Sorted returns a copy whose assignment is ordered by edge.
func (emb *Embedding) Sorted() *Embedding {
	out := &Embedding{Spine: slices.Clone(emb.Spine), Pages: emb.Pages, Assignment: slices.Clone(emb.Assignment)}
	slices.SortFunc(out.Assignment, func(a, b Placement) int {
		if a.Edge.U != b.Edge.U {
			return a.Edge.U - b.Edge.U
		}
		return a.Edge.V - b.Edge.V
	})
	return out
}

func (emb *Embedding) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "spine %s, %d pages\n", emb.Spine, emb.Pages)
	for page := 1; page <= emb.Pages; page++ {
		edges := emb.PageEdges(page)
		parts := make([]string, len(edges))
		for i, e := range edges {
			parts[i] = e.String()
		}
		fmt.Fprintf(&b, "  page %d: %s\n", page, strings.Join(parts, " "))
	}
	return b.String()
}

// Crosses reports whether a and b cross when drawn on the same page over
// spine positions pos. Edges sharing an endpoint never cross.
func Crosses(pos []int, a, b graph.Edge) bool {
	p1, p2 := pos[a.U], pos[a.V]
	if p1 > p2 {
		p1, p2 = p2, p1
	}
	q1, q2 := pos[b.U], pos[b.V]
	if q1 > q2 {
		q1, q2 = q2, q1
	}
	return (p1 < q1 && q1 < p2 && p2 < q2) || (q1 < p1 && p1 < q2 && q2 < p2)
}

// Verify checks that emb is a valid embedding of g: the spine is a
// permutation of the vertices, every edge appears exactly once on a page in
// 1..Pages, and no two edges on the same page cross.
func Verify(g *graph.Graph, emb *Embedding) error {
	if emb == nil {
		return errors.New(errors.ErrCodeInvalidInput, "embedding is nil")
	}
	if err := spine.Validate(emb.Spine, g.Order()); err != nil {
		return err
	}
	if emb.Pages < 1 {
		return errors.New(errors.ErrCodeInvalidPages, "page count must be at least 1, got %d", emb.Pages)
	}

	seen := make(map[graph.Edge]bool, len(emb.Assignment))
	for _, p := range emb.Assignment {
		e := graph.NewEdge(p.Edge.U, p.Edge.V)
		if !g.HasEdge(e.U, e.V) {
			return errors.New(errors.ErrCodeInvalidInput, "assignment contains %s, which is not an edge of the graph", e)
		}
		if seen[e] {
			return errors.New(errors.ErrCodeInvalidInput, "edge %s assigned more than once", e)
		}
		if p.Page < 1 || p.Page > emb.Pages {
			return errors.New(errors.ErrCodeInvalidPages, "edge %s on page %d, want 1..%d", e, p.Page, emb.Pages)
		}
		seen[e] = true
	}
	if len(seen) != g.Size() {
		return errors.New(errors.ErrCodeInvalidInput, "embedding assigns %d of %d edges", len(seen), g.Size())
	}

	pos := emb.Spine.Positions()
	for i, a := range emb.Assignment {
		for _, b := range emb.Assignment[i+1:] {
			if a.Page == b.Page && Crosses(pos, a.Edge, b.Edge) {
				return errors.New(errors.ErrCodeInvalidInput, "edges %s and %s cross on page %d", a.Edge, b.Edge, a.Page)
			}
		}
	}
	return nil
}

// Marshal encodes emb as indented JSON.
func Marshal(emb *Embedding) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(emb, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes emb as indented JSON to w.
func Write(emb *Embedding, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(emb)
}

// Read decodes an embedding from r.
func Read(r io.Reader) (*Embedding, error) {
	var emb Embedding
	if err := json.NewDecoder(r).Decode(&emb); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode embedding")
	}
	return &emb, nil
}

// ReadFile decodes an embedding from the JSON file at path.
func ReadFile(path string) (*Embedding, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "embedding file not found: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return Read(f)
}

// WriteFile encodes emb as JSON to path.
func WriteFile(emb *Embedding, path string) error {
	data, err := Marshal(emb)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
