package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/bookthickness/pkg/book"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// searchSpinner draws a one-line status for a running thickness search: the
// title, the page count being tried, and how many of its spines are done.
// It stops drawing when its context ends.
type searchSpinner struct {
	title string

	mu    sync.Mutex
	last  book.Progress
	seen  bool
	width int

	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
	once    sync.Once
}

func newSearchSpinner(ctx context.Context, title string) *searchSpinner {
	ctx, cancel := context.WithCancel(ctx)
	return &searchSpinner{
		title:   title,
		ctx:     ctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
}

// Start begins drawing on statusOut.
func (s *searchSpinner) Start() {
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

// Update records the latest progress event. Safe to call from the solver.
func (s *searchSpinner) Update(p book.Progress) {
	s.mu.Lock()
	s.last, s.seen = p, true
	s.mu.Unlock()
}

// Stop ends the animation and clears the line. Calling it again is a no-op.
func (s *searchSpinner) Stop() {
	s.once.Do(func() {
		s.cancel()
		<-s.stopped
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.width > 0 {
			fmt.Fprintf(statusOut, "\r%s\r", strings.Repeat(" ", s.width))
		}
	})
}

func (s *searchSpinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.status()
	s.width = max(s.width, len(msg)+4)
	fmt.Fprintf(statusOut, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(msg))
}

func (s *searchSpinner) status() string {
	if !s.seen {
		return s.title
	}
	p := s.last
	pct := 0
	if p.Total > 0 {
		pct = p.Tested * 100 / p.Total
	}
	return fmt.Sprintf("%s: %d %s, %d/%d spines (%d%%)",
		s.title, p.Pages, plural(p.Pages, "page", "pages"), p.Tested, p.Total, pct)
}
