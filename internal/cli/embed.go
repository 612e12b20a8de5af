package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bookthickness/pkg/book"
	"github.com/matzehuels/bookthickness/pkg/pipeline"
	"github.com/matzehuels/bookthickness/pkg/render"
)

func (c *CLI) embedCommand() *cobra.Command {
	var (
		gf     graphFlags
		sf     searchFlags
		of     outputFlags
		pages  int
		spines []string
	)

	cmd := &cobra.Command{
		Use:   "embed [graph.json|-] --pages k",
		Short: "Decide whether a graph embeds in k pages",
		Long: `Decide whether the graph has a k-page book embedding on one of the given
spines, or on any canonical spine when no --spine is given.

Exits with status 0 either way; the answer is printed and, when an
embedding exists, written in --format.`,
		Example: `  bookthickness embed --complete 6 --pages 2
  bookthickness embed -e "1-3, 2-4" --pages 1 --spine 1,2,3,4 --spine 1,3,2,4`,
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
			list, err := parseSpines(spines)
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
			opts.Pages = pages
			opts.Spines = list
			title := fmt.Sprintf("%s in %d pages", name, pages)
			res, err := c.run(ctx, of.tui, title, func(ctx context.Context, p func(book.Progress)) (*pipeline.Result, error) {
				opts.Progress = p
				return runner.Embed(ctx, g, opts)
			})
			if err != nil {
				return err
			}

			searched := "every canonical spine"
			if len(list) > 0 {
				searched = fmt.Sprintf("%d given spines", len(list))
			}
			if !res.Found {
				printWarning("%s has no %d-page embedding on %s", name, pages, searched)
				printStats(g.Order(), g.Size(), res.CacheHit)
				if len(list) > 0 {
					printNextStep("Try all spines", "bookthickness embed ... --pages "+fmt.Sprint(pages))
				}
				return nil
			}
			printSuccess("%s embeds in %s pages on spine %s", name, StyleNumber.Render(fmt.Sprint(pages)), res.Embedding.Spine)
			printStats(g.Order(), g.Size(), res.CacheHit)
			return c.emit(cmd, res, format, of.output, name)
		},
	}

	gf.register(cmd)
	sf.register(cmd, false)
	of.register(cmd)
	cmd.Flags().IntVarP(&pages, "pages", "k", 0, "page count to decide (required)")
	cmd.Flags().StringArrayVar(&spines, "spine", nil, "spine to try, e.g. 1,3,2,4 (repeatable)")
	_ = cmd.MarkFlagRequired("pages")
	return cmd
}
