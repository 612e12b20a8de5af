package render

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/bookthickness/pkg/book"
	"github.com/matzehuels/bookthickness/pkg/errors"
	"github.com/matzehuels/bookthickness/pkg/graph"
	"github.com/matzehuels/bookthickness/pkg/spine"
)

func k4() *book.Embedding {
	return &book.Embedding{
		Spine: spine.Spine{1, 2, 3, 4},
		Pages: 2,
		Assignment: []book.Placement{
			{Edge: graph.Edge{U: 1, V: 2}, Page: 1},
			{Edge: graph.Edge{U: 2, V: 3}, Page: 1},
			{Edge: graph.Edge{U: 3, V: 4}, Page: 1},
			{Edge: graph.Edge{U: 1, V: 4}, Page: 1},
			{Edge: graph.Edge{U: 1, V: 3}, Page: 1},
			{Edge: graph.Edge{U: 2, V: 4}, Page: 2},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for _, f := range Formats {
		got, err := ParseFormat(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	got, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, got)

	_, err = ParseFormat("png")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}

func TestText(t *testing.T) {
	out := Text(k4(), Options{Title: "K4"})
	assert.True(t, strings.HasPrefix(out, "K4\nspine: [1 2 3 4]\npages: 2\n"), out)
	assert.Contains(t, out, "1-2 2-3 3-4 1-4 1-3")
	assert.Contains(t, out, "2-4")
	assert.Contains(t, out, "PAGE")
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(k4(), Options{Title: "K4"})

	assert.True(t, strings.HasPrefix(dot, "graph G {\n"))
	assert.Contains(t, dot, "layout=neato;")
	assert.Contains(t, dot, `label="K4";`)
	assert.Contains(t, dot, `"1" [pos="0.000,2.000!"];`)
	assert.Regexp(t, `"3" \[pos="-?0\.000,-2\.000!"\];`, dot)
	assert.Contains(t, dot, `"2" -- "4" [color="`+PageColor(2)+`", tooltip="page 2"];`)
	assert.Equal(t, 6, strings.Count(dot, " -- "))
}

func TestPageColorCycles(t *testing.T) {
	assert.Equal(t, PageColor(1), PageColor(len(pageColors)+1))
	assert.NotEqual(t, PageColor(1), PageColor(2))
}

func TestRenderJSON(t *testing.T) {
	data, err := Render(context.Background(), k4(), FormatJSON, Options{})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.EqualValues(t, 2, decoded["pages"])
}

func TestRenderSVG(t *testing.T) {
	data, err := Render(context.Background(), k4(), FormatSVG, Options{})
	require.NoError(t, err)
	svg := string(data)
	assert.Contains(t, svg, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `)
	assert.Contains(t, svg, "</svg>")
}

func TestRenderRejects(t *testing.T) {
	_, err := Render(context.Background(), nil, FormatText, Options{})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	_, err = Render(context.Background(), k4(), Format("pdf"), Options{})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="116pt" viewBox="0.00 0.00 62.00 116.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	assert.Equal(t, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 62.00 116.00" width="62" height="116"><g/></svg>`, out)

	assert.Equal(t, "<svg></svg>", string(normalizeViewBox([]byte("<svg></svg>"))))
}
