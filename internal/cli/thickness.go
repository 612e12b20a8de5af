package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/bookthickness/pkg/book"
	"github.com/matzehuels/bookthickness/pkg/errors"
	"github.com/matzehuels/bookthickness/pkg/pipeline"
	"github.com/matzehuels/bookthickness/pkg/render"
)

// outputFlags control how a found embedding is written.
type outputFlags struct {
	format string
	output string
	tui    bool
}

func (f *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.format, "format", "f", "text", "output format: text, json, dot, svg")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "write the embedding to this file instead of stdout")
	cmd.Flags().BoolVar(&f.tui, "tui", false, "show an interactive progress view")
}

func (c *CLI) thicknessCommand() *cobra.Command {
	var (
		gf graphFlags
		sf searchFlags
		of outputFlags
	)

	cmd := &cobra.Command{
		Use:   "thickness [graph.json|-]",
		Short: "Compute the book thickness of a graph",
		Long: `Compute the fewest pages any spine order allows.

Page counts are tried from --start-pages upwards; at each count every
canonical spine is tried before the count is raised, so the first embedding
found is minimal.`,
		Example: `  bookthickness thickness --complete 6
  bookthickness thickness -e "1-2-3-4-1, 1-3, 2-4" -f svg -o k4.svg
  bookthickness thickness graph.json --engine sat --workers 4`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := render.ParseFormat(of.format)
			if err != nil {
				return err
			}
			g, name, err := gf.load(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			ctx, cancel := c.withTimeout(cmd.Context(), &sf)
			defer cancel()

			runner, err := c.newRunner(ctx, sf.noCache, c.queryLogger(of.tui))
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := c.options(&sf)
			prog := newProgress(c.Logger)
			res, err := c.run(ctx, of.tui, "thickness of "+name, func(ctx context.Context, p func(book.Progress)) (*pipeline.Result, error) {
				opts.Progress = p
				return runner.Thickness(ctx, g, opts)
			})
			if err != nil {
				return err
			}
			if !res.Found {
				return errors.New(errors.ErrCodeNotFound, "%s has no embedding within %d pages", name, opts.MaxPages)
			}

			prog.done(fmt.Sprintf("thickness %d", res.Embedding.Pages))
			printSuccess("%s has book thickness %s", name, StyleNumber.Render(fmt.Sprint(res.Embedding.Pages)))
			printStats(g.Order(), g.Size(), res.CacheHit)
			if !res.CacheHit {
				printDetail("%d spines tested, %d states explored", res.Stats.SpinesTested, res.Stats.Explored)
			}
			return c.emit(cmd, res, format, of.output, name)
		},
	}

	gf.register(cmd)
	sf.register(cmd, true)
	of.register(cmd)
	return cmd
}

// run executes query with the progress display matching the flags: the TUI,
// plain debug logs under --verbose, or a spinner.
func (c *CLI) run(ctx context.Context, tui bool, title string, query queryFunc) (*pipeline.Result, error) {
	switch {
	case tui:
		return runWithTUI(ctx, title, query)
	case c.verbose:
		return query(ctx, nil)
	}
	return runWithSpinner(ctx, title, query)
}

// queryLogger keeps the runner's info lines out of the spinner and TUI.
func (c *CLI) queryLogger(tui bool) *log.Logger {
	if c.verbose && !tui {
		return c.Logger
	}
	return newLogger(statusOut, log.WarnLevel)
}

// emit renders res.Embedding in format and writes it to path or stdout.
func (c *CLI) emit(cmd *cobra.Command, res *pipeline.Result, format render.Format, path, title string) error {
	data, err := render.Render(cmd.Context(), res.Embedding, format, render.Options{Title: title})
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), path, data)
}
