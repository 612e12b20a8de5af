package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/bookthickness/pkg/errors"
)

// File is the JSON wire format of a graph.
//
// Vertices is optional; when it exceeds the highest edge label the extra
// vertices are isolated.
type File struct {
	Vertices int     `json:"vertices,omitempty"`
	Edges    [][]int `json:"edges"`
}

// ToFile converts g to its wire format.
func ToFile(g *Graph) File {
	f := File{Edges: g.Pairs()}
	if g.order > g.maxLabel() {
		f.Vertices = g.order
	}
	return f
}

// FromFile validates a decoded wire graph.
func FromFile(f File) (*Graph, error) {
	g, err := Build(f.Edges)
	if err != nil {
		return nil, err
	}
	return g.WithOrder(f.Vertices)
}

// WithOrder returns a copy of g with at least n vertices.
// Lowering the order below the highest edge label is an error.
func (g *Graph) WithOrder(n int) (*Graph, error) {
	if n < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "vertex count must not be negative, got %d", n)
	}
	if n != 0 && n < g.maxLabel() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "vertex count %d is below the highest edge label %d", n, g.maxLabel())
	}
	out := &Graph{order: max(g.order, n), edges: g.edges, index: g.index}
	return out, nil
}

func (g *Graph) maxLabel() int {
	m := 0
	for _, e := range g.edges {
		m = max(m, e.V)
	}
	return m
}

// Marshal converts a graph to indented JSON bytes.
func Marshal(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write writes g as JSON to w.
func Write(g *Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ToFile(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes g to a JSON file created with 0644 permissions.
func WriteFile(g *Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(g, f)
}

// Read decodes a JSON graph from r.
func Read(r io.Reader) (*Graph, error) {
	var f File
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode graph")
	}
	return FromFile(f)
}

// ReadFile reads a JSON graph file.
func ReadFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "graph file %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	g, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return g, nil
}
