package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bookthickness/pkg/errors"
	"github.com/matzehuels/bookthickness/pkg/graph"
	"github.com/matzehuels/bookthickness/pkg/spine"
)

// graphFlags select where the input graph comes from. Exactly one source
// is allowed: a file argument ("-" for stdin), --expr, --complete,
// --bipartite, --cycle or --path.
type graphFlags struct {
	expr      string
	complete  int
	bipartite string
	cycle     int
	path      int
}

func (f *graphFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.expr, "expr", "e", "", `edge expression, e.g. "1-2-3-1, 3-4"`)
	cmd.Flags().IntVar(&f.complete, "complete", 0, "use the complete graph K_n")
	cmd.Flags().StringVar(&f.bipartite, "bipartite", "", "use the complete bipartite graph K_{n,m}, given as n,m")
	cmd.Flags().IntVar(&f.cycle, "cycle", 0, "use the cycle C_n")
	cmd.Flags().IntVar(&f.path, "path", 0, "use the path on n vertices")
}

// load builds the graph from args and flags, reading stdin from in.
func (f *graphFlags) load(args []string, in io.Reader) (*graph.Graph, string, error) {
	sources := 0
	for _, set := range []bool{len(args) > 0, f.expr != "", f.complete > 0, f.bipartite != "", f.cycle > 0, f.path > 0} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return nil, "", errors.New(errors.ErrCodeInvalidInput, "give exactly one graph: a file, --expr, --complete, --bipartite, --cycle or --path")
	}

	switch {
	case len(args) > 0 && args[0] == "-":
		g, err := graph.Read(in)
		return g, "stdin", err
	case len(args) > 0:
		g, err := graph.ReadFile(args[0])
		return g, args[0], err
	case f.expr != "":
		g, err := graph.Parse(f.expr)
		return g, f.expr, err
	case f.complete > 0:
		g, err := graph.Complete(f.complete)
		return g, fmt.Sprintf("K%d", f.complete), err
	case f.cycle > 0:
		g, err := graph.Cycle(f.cycle)
		return g, fmt.Sprintf("C%d", f.cycle), err
	case f.path > 0:
		g, err := graph.Path(f.path)
		return g, fmt.Sprintf("P%d", f.path), err
	}

	n, m, err := parsePair(f.bipartite)
	if err != nil {
		return nil, "", err
	}
	g, err := graph.CompleteBipartite(n, m)
	return g, fmt.Sprintf("K%d,%d", n, m), err
}

func parsePair(s string) (int, int, error) {
	a, b, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, errors.New(errors.ErrCodeInvalidInput, "want n,m, got %q", s)
	}
	n, err1 := strconv.Atoi(strings.TrimSpace(a))
	m, err2 := strconv.Atoi(strings.TrimSpace(b))
	if err1 != nil || err2 != nil {
		return 0, 0, errors.New(errors.ErrCodeInvalidInput, "want two integers n,m, got %q", s)
	}
	return n, m, nil
}

// parseSpines parses repeated --spine values like "1,3,2,4".
func parseSpines(values []string) ([]spine.Spine, error) {
	out := make([]spine.Spine, 0, len(values))
	for _, v := range values {
		s, err := spine.Parse(v)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// writeOutput writes data to path, or to w when path is empty.
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		if _, err := w.Write(data); err != nil {
			return err
		}
		if len(data) > 0 && data[len(data)-1] != '\n' {
			_, err := io.WriteString(w, "\n")
			return err
		}
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printFile(path)
	return nil
}
