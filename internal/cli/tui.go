package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/bookthickness/pkg/book"
	"github.com/matzehuels/bookthickness/pkg/pipeline"
)

var (
	barFullStyle  = lipgloss.NewStyle().Foreground(colorCyan)
	barEmptyStyle = lipgloss.NewStyle().Foreground(colorDim)
	levelStyle    = lipgloss.NewStyle().Foreground(colorGray)
)

const (
	barWidth         = 32
	progressInterval = 50 * time.Millisecond
)

// =============================================================================
// SearchModel - live view of a running thickness search
// =============================================================================

type progressMsg book.Progress

type searchDoneMsg struct {
	res *pipeline.Result
	err error
}

type tickMsg time.Time

// levelLine records a page count that has been fully decided.
type levelLine struct {
	pages int
	total int
	found bool
}

// SearchModel is the bubbletea model shown by --tui.
type SearchModel struct {
	Title    string
	Current  book.Progress
	Levels   []levelLine
	Started  time.Time
	Now      time.Time
	Result   *pipeline.Result
	Err      error
	Stopping bool

	cancel context.CancelFunc
}

// NewSearchModel creates a model; cancel is called when the user quits.
func NewSearchModel(title string, cancel context.CancelFunc) SearchModel {
	now := time.Now()
	return SearchModel{Title: title, Started: now, Now: now, cancel: cancel}
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m SearchModel) Init() tea.Cmd {
	return tick()
}

func (m SearchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if !m.Stopping {
				m.Stopping = true
				if m.cancel != nil {
					m.cancel()
				}
			}
		}
	case progressMsg:
		p := book.Progress(msg)
		if m.Current.Pages != 0 && p.Pages != m.Current.Pages {
			m.Levels = append(m.Levels, levelLine{pages: m.Current.Pages, total: m.Current.Total})
		}
		m.Current = p
		if p.Found {
			m.Levels = append(m.Levels, levelLine{pages: p.Pages, total: p.Tested, found: true})
		}
	case searchDoneMsg:
		m.Result, m.Err = msg.res, msg.err
		return m, tea.Quit
	case tickMsg:
		m.Now = time.Time(msg)
		return m, tick()
	}
	return m, nil
}

func (m SearchModel) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n\n")

	for _, l := range m.Levels {
		if l.found {
			b.WriteString(StyleSuccess.Render(fmt.Sprintf("  %s %d pages: embedding after %d spines", iconSuccess, l.pages, l.total)))
		} else {
			b.WriteString(levelStyle.Render(fmt.Sprintf("  %s %d pages: none of %d spines", iconError, l.pages, l.total)))
		}
		b.WriteString("\n")
	}

	if p := m.Current; p.Total > 0 && !p.Found && m.Result == nil {
		b.WriteString(fmt.Sprintf("  %s %s %s\n",
			StyleNumber.Render(fmt.Sprintf("%d pages", p.Pages)),
			renderBar(p.Tested, p.Total),
			StyleDim.Render(fmt.Sprintf("%d/%d spines", p.Tested, p.Total))))
		b.WriteString("  " + StyleDim.Render("spine "+p.Spine.String()) + "\n")
	}

	b.WriteString("\n")
	elapsed := m.Now.Sub(m.Started).Round(100 * time.Millisecond)
	status := "q to stop"
	if m.Stopping {
		status = "stopping..."
	}
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %s · %s", elapsed, status)))
	b.WriteString("\n")
	return b.String()
}

func renderBar(done, total int) string {
	if total <= 0 {
		return ""
	}
	filled := min(barWidth, done*barWidth/total)
	return barFullStyle.Render(strings.Repeat("█", filled)) + barEmptyStyle.Render(strings.Repeat("░", barWidth-filled))
}

// =============================================================================
// Runner glue
// =============================================================================

// queryFunc runs one pipeline query with the given progress callback.
type queryFunc func(ctx context.Context, progress func(book.Progress)) (*pipeline.Result, error)

// runWithTUI runs query under a SearchModel and returns its result once the
// query has returned, even if the program exits early.
func runWithTUI(ctx context.Context, title string, query queryFunc) (*pipeline.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewSearchModel(title, cancel), tea.WithOutput(statusOut), tea.WithContext(ctx))

	resc := make(chan searchDoneMsg, 1)
	go func() {
		res, err := query(ctx, throttle(func(pr book.Progress) { p.Send(progressMsg(pr)) }))
		resc <- searchDoneMsg{res: res, err: err}
		p.Send(searchDoneMsg{res: res, err: err})
	}()

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		cancel()
		<-resc
		return nil, fmt.Errorf("progress view: %w", err)
	}
	cancel()
	done := <-resc
	return done.res, done.err
}

// runWithSpinner shows a spinner that follows the search progress.
func runWithSpinner(ctx context.Context, title string, query queryFunc) (*pipeline.Result, error) {
	sp := newSearchSpinner(ctx, title)
	sp.Start()
	defer sp.Stop()

	return query(ctx, throttle(sp.Update))
}

// throttle forwards the first and last event of each page count, found
// events, and otherwise at most one event per progressInterval.
func throttle(next func(book.Progress)) func(book.Progress) {
	var last time.Time
	return func(p book.Progress) {
		now := time.Now()
		if p.Tested == 1 || p.Tested == p.Total || p.Found || now.Sub(last) >= progressInterval {
			last = now
			next(p)
		}
	}
}
