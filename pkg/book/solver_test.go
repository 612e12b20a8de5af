package book

import (
	"context"
	"reflect"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/bookthickness/pkg/errors"
	"github.com/matzehuels/bookthickness/pkg/graph"
	"github.com/matzehuels/bookthickness/pkg/observability"
	"github.com/matzehuels/bookthickness/pkg/spine"
)

func TestFindThicknessKnownGraphs(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*graph.Graph, error)
		want  int
	}{
		{"empty", func() (*graph.Graph, error) { return graph.Build(nil) }, 1},
		{"single edge", func() (*graph.Graph, error) { return graph.Build([][]int{{1, 2}}) }, 1},
		{"isolated vertex", func() (*graph.Graph, error) { return graph.Parse("1-2, 4") }, 1},
		{"path", func() (*graph.Graph, error) { return graph.Path(4) }, 1},
		{"triangle", func() (*graph.Graph, error) { return graph.Complete(3) }, 1},
		{"cycle", func() (*graph.Graph, error) { return graph.Cycle(7) }, 1},
		{"K4", func() (*graph.Graph, error) { return graph.Complete(4) }, 2},
		{"K2,3", func() (*graph.Graph, error) { return graph.CompleteBipartite(2, 3) }, 2},
		{"K5", func() (*graph.Graph, error) { return graph.Complete(5) }, 3},
		{"K6", func() (*graph.Graph, error) { return graph.Complete(6) }, 3},
		{"K3,3", func() (*graph.Graph, error) { return graph.CompleteBipartite(3, 3) }, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := tt.build()
			if err != nil {
				t.Fatal(err)
			}

			emb, err := NewSolver(Options{}).FindThickness(context.Background(), g)
			if err != nil {
				t.Fatalf("FindThickness() error = %v", err)
			}
			if emb.Pages != tt.want {
				t.Errorf("FindThickness() = %d pages, want %d", emb.Pages, tt.want)
			}
			if len(emb.Assignment) != g.Size() {
				t.Errorf("%d edges assigned, want %d", len(emb.Assignment), g.Size())
			}
			if err := Verify(g, emb); err != nil {
				t.Errorf("Verify() error = %v", err)
			}
		})
	}
}

func TestSolveStats(t *testing.T) {
	res, err := NewSolver(Options{}).Solve(context.Background(), complete(t, 4))
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if !res.Found() || res.Status != Found {
		t.Fatalf("Solve() status = %v, want found", res.Status)
	}

	// Three canonical spines fail at one page, the first succeeds at two.
	if res.Stats.SpinesTested != 4 || res.Stats.PagesTried != 2 {
		t.Errorf("tested %d spines over %d page counts, want 4 over 2", res.Stats.SpinesTested, res.Stats.PagesTried)
	}
	if res.Stats.Explored <= 0 || res.Stats.Duration <= 0 {
		t.Errorf("stats = %+v, want explored states and a duration", res.Stats)
	}
}

func TestSolveSparseGraphOnMoreVertices(t *testing.T) {
	// The first spine already holds the edge, so the solver's cost is the
	// enumeration of eight vertex spines.
	g := graph.MustBuild([][]int{{1, 8}})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := NewSolver(Options{}).Solve(ctx, g)
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if !res.Found() || res.Embedding.Pages != 1 {
		t.Fatalf("Solve() = %+v, want a 1 page embedding", res)
	}
	if res.Stats.SpinesTested != 1 {
		t.Errorf("SpinesTested = %d, want 1", res.Stats.SpinesTested)
	}
	if !slices.Equal(res.Embedding.Spine, spine.Spine(spine.Seq(8))) {
		t.Errorf("spine = %v, want %v", res.Embedding.Spine, spine.Seq(8))
	}
}

func TestFindThicknessStartPagesAboveBound(t *testing.T) {
	emb, err := NewSolver(Options{StartPages: 5}).FindThickness(context.Background(), complete(t, 6))
	if err != nil {
		t.Fatalf("FindThickness() error = %v", err)
	}
	if emb.Pages != 5 || emb.UsedPages() > 5 {
		t.Errorf("Pages = %d, UsedPages = %d; want 5 and at most 5", emb.Pages, emb.UsedPages())
	}
}

func TestSolveExplicitMaxPages(t *testing.T) {
	s := NewSolver(Options{MaxPages: 2})

	res, err := s.Solve(context.Background(), complete(t, 6))
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if res.Found() || res.Status != NotFound || res.Embedding != nil {
		t.Errorf("Solve() = %+v, want not found", res)
	}

	_, err = s.FindThickness(context.Background(), complete(t, 6))
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("FindThickness() error = %v, want NOT_FOUND", err)
	}
}

func TestSolveNilGraph(t *testing.T) {
	_, err := NewSolver(Options{}).Solve(context.Background(), nil)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Solve(nil) error = %v, want INVALID_INPUT", err)
	}
}

func TestFindForSpines(t *testing.T) {
	g := complete(t, 6)
	s := NewSolver(Options{})
	ctx := context.Background()

	res, err := s.FindForSpines(ctx, g, 2, []spine.Spine{spine.Seq(6)})
	if err != nil {
		t.Fatalf("FindForSpines() error = %v", err)
	}
	if res.Status != NotFound || res.Stats.SpinesTested != 1 {
		t.Errorf("2 pages: status %v after %d spines, want not found after 1", res.Status, res.Stats.SpinesTested)
	}

	res, err = s.FindForSpines(ctx, g, 3, []spine.Spine{spine.Seq(6)})
	if err != nil {
		t.Fatalf("FindForSpines() error = %v", err)
	}
	if !res.Found() {
		t.Fatal("K6 does not embed in 3 pages on [1 2 3 4 5 6]")
	}
	if !slices.Equal(res.Embedding.Spine, spine.Spine(spine.Seq(6))) || res.Embedding.Pages != 3 {
		t.Errorf("embedding on %v with %d pages", res.Embedding.Spine, res.Embedding.Pages)
	}
	if err := Verify(g, res.Embedding); err != nil {
		t.Errorf("Verify() error = %v", err)
	}
}

func TestFindForSpinesAllCanonical(t *testing.T) {
	res, err := NewSolver(Options{}).FindForSpines(context.Background(), complete(t, 5), 2, nil)
	if err != nil {
		t.Fatalf("FindForSpines() error = %v", err)
	}
	if res.Found() {
		t.Error("K5 embedded in 2 pages")
	}
	if res.Stats.SpinesTested != spine.Count(5) {
		t.Errorf("SpinesTested = %d, want %d", res.Stats.SpinesTested, spine.Count(5))
	}
}

func TestFindForSpinesValidation(t *testing.T) {
	g := complete(t, 4)
	s := NewSolver(Options{})
	ctx := context.Background()

	if _, err := s.FindForSpines(ctx, g, 0, nil); !errors.Is(err, errors.ErrCodeInvalidPages) {
		t.Errorf("0 pages: error = %v, want INVALID_PAGES", err)
	}

	for _, bad := range []spine.Spine{{1, 2, 3}, {1, 2, 3, 3}, {1, 2, 3, 5}, {1, 2, 3, 4, 5}} {
		_, err := s.FindForSpines(ctx, g, 2, []spine.Spine{spine.Seq(4), bad})
		if !errors.Is(err, errors.ErrCodeInvalidSpine) {
			t.Errorf("spine %v: error = %v, want INVALID_SPINE", bad, err)
		}
	}
}

func TestAtMostOneEdgeEmbedsInOnePageOnAnySpine(t *testing.T) {
	s := NewSolver(Options{})
	for _, expr := range []string{"5", "2-4, 5", "1-4"} {
		g, err := graph.Parse(expr)
		if err != nil {
			t.Fatal(err)
		}

		perms := spine.NewPermutations(g.Order())
		for perms.Next() {
			res, err := s.FindForSpines(context.Background(), g, 1, []spine.Spine{perms.Value()})
			if err != nil {
				t.Fatalf("%q on %s: error = %v", expr, perms.Value(), err)
			}
			if !res.Found() {
				t.Errorf("%q does not embed in 1 page on %s", expr, perms.Value())
			}
		}
	}
}

func TestTriangleEmbedsInOnePageOnEverySpine(t *testing.T) {
	s := NewSolver(Options{})
	g := complete(t, 3)
	perms := spine.NewPermutations(3)
	for perms.Next() {
		res, err := s.FindForSpines(context.Background(), g, 1, []spine.Spine{perms.Value()})
		if err != nil {
			t.Fatalf("triangle on %s: error = %v", perms.Value(), err)
		}
		if !res.Found() {
			t.Errorf("triangle does not embed in 1 page on %s", perms.Value())
		}
	}
}

func TestMonotoneInPages(t *testing.T) {
	g := complete(t, 5)
	ctx := context.Background()
	s := NewSolver(Options{})

	for _, sp := range spine.Enumerate(5) {
		prev := false
		for pages := 1; pages <= 4; pages++ {
			res, err := s.FindForSpines(ctx, g, pages, []spine.Spine{sp})
			if err != nil {
				t.Fatalf("spine %s, %d pages: error = %v", sp, pages, err)
			}
			if prev && !res.Found() {
				t.Errorf("spine %s embeds in %d pages but not %d", sp, pages-1, pages)
			}
			prev = res.Found()
		}
		if !prev {
			t.Errorf("spine %s does not embed K5 in 4 pages", sp)
		}
	}
}

func TestProgressCallback(t *testing.T) {
	var events []Progress
	s := NewSolver(Options{Progress: func(p Progress) { events = append(events, p) }})

	if _, err := s.FindThickness(context.Background(), complete(t, 4)); err != nil {
		t.Fatalf("FindThickness() error = %v", err)
	}

	if len(events) != 4 {
		t.Fatalf("got %d progress events, want 4", len(events))
	}
	for i, ev := range events[:3] {
		if ev.Pages != 1 || ev.Tested != i+1 || ev.Total != 3 || ev.Found {
			t.Errorf("event %d = %+v", i, ev)
		}
	}
	want := Progress{Pages: 2, Tested: 1, Total: 3, Spine: spine.Spine{1, 2, 3, 4}, Found: true}
	if !reflect.DeepEqual(events[3], want) {
		t.Errorf("last event = %+v, want %+v", events[3], want)
	}
}

func TestSolveCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSolver(Options{}).Solve(ctx, complete(t, 6))
	if !errors.Is(err, errors.ErrCodeCanceled) {
		t.Errorf("Solve() error = %v, want CANCELED", err)
	}
}

func TestSolveTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	_, err := NewSolver(Options{}).Solve(ctx, complete(t, 6))
	if !errors.Is(err, errors.ErrCodeTimeout) {
		t.Errorf("Solve() error = %v, want TIMEOUT", err)
	}
}

type brokenDecider struct{}

func (brokenDecider) Decide(_ context.Context, g *graph.Graph, s spine.Spine, pages int) (*Embedding, TrialStats, error) {
	emb := &Embedding{Spine: s, Pages: pages}
	for _, e := range g.Edges() {
		emb.Assignment = append(emb.Assignment, Placement{Edge: e, Page: 1})
	}
	return emb, TrialStats{}, nil
}

func TestSolveRejectsInvalidEngineOutput(t *testing.T) {
	_, err := NewSolver(Options{Decider: brokenDecider{}}).Solve(context.Background(), complete(t, 4))
	if !errors.Is(err, errors.ErrCodeInternal) {
		t.Errorf("Solve() error = %v, want INTERNAL_ERROR", err)
	}
}

func TestParseEngine(t *testing.T) {
	tests := []struct {
		in      string
		want    Engine
		wantErr bool
	}{
		{"", EngineSearch, false},
		{"sat", EngineSAT, false},
		{"dfs", "", true},
	}

	for _, tt := range tests {
		got, err := ParseEngine(tt.in)
		if tt.wantErr {
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("ParseEngine(%q) error = %v, want INVALID_INPUT", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseEngine(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestPageBound(t *testing.T) {
	for v, want := range map[int]int{0: 1, 1: 1, 2: 1, 3: 2, 6: 3, 7: 4} {
		if got := PageBound(v); got != want {
			t.Errorf("PageBound(%d) = %d, want %d", v, got, want)
		}
	}
}

type recordingHooks struct {
	observability.NoopSearchHooks
	mu     sync.Mutex
	starts []int
	trials int
	pages  int
}

func (h *recordingHooks) OnPagesStart(_ context.Context, pages, _ int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.starts = append(h.starts, pages)
}

func (h *recordingHooks) OnTrialComplete(context.Context, int, bool, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.trials++
}

func (h *recordingHooks) OnSearchComplete(_ context.Context, pages int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pages = pages
}

func TestSolverEmitsHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetSearchHooks(h)
	defer observability.Reset()

	if _, err := NewSolver(Options{}).FindThickness(context.Background(), complete(t, 4)); err != nil {
		t.Fatalf("FindThickness() error = %v", err)
	}

	if !slices.Equal(h.starts, []int{1, 2}) || h.trials != 4 || h.pages != 2 {
		t.Errorf("hooks saw starts %v, %d trials, %d pages; want [1 2], 4, 2", h.starts, h.trials, h.pages)
	}
}
