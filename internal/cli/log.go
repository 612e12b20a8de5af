// Package cli implements the bookthickness command-line interface.
//
// Commands compute book thickness (thickness), decide a fixed page count on
// chosen spines (embed), list canonical spines (spines), render saved
// embeddings (render), serve the HTTP API (serve) and manage the result
// cache (cache). The CLI is built using cobra; logs go to stderr through
// charmbracelet/log while results go to stdout.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which
// includes per-page-count progress from the pipeline runner. The [log] level
// in the config file applies otherwise.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// parseLevel maps a config level name to a log level.
func parseLevel(name string) (log.Level, error) {
	if name == "" {
		return log.InfoLevel, nil
	}
	return log.ParseLevel(name)
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "thickness 3 (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
