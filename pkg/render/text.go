package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/bookthickness/pkg/book"
)

// Text renders emb as a summary line and a page table.
func Text(emb *book.Embedding, opts Options) string {
	var b strings.Builder
	if opts.Title != "" {
		b.WriteString(opts.Title)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "spine: %s\npages: %d\n", emb.Spine, emb.Pages)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("PAGE", "EDGES", "COUNT")
	for page := 1; page <= emb.Pages; page++ {
		edges := emb.PageEdges(page)
		parts := make([]string, len(edges))
		for i, e := range edges {
			parts[i] = fmt.Sprintf("%d-%d", e.U, e.V)
		}
		t.Row(strconv.Itoa(page), strings.Join(parts, " "), strconv.Itoa(len(edges)))
	}
	b.WriteString(t.String())
	b.WriteByte('\n')
	return b.String()
}
