package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bookthickness/pkg/book"
	"github.com/matzehuels/bookthickness/pkg/graph"
	"github.com/matzehuels/bookthickness/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	format string  // output format: text, json, dot, svg
	output string  // output file path, stdout when empty
	title  string  // label above the drawing
	radius float64 // spine circle radius in inches
	verify string  // graph file the embedding must match
}

// renderCommand renders an embedding saved with `thickness -f json`.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [embedding.json|-]",
		Short: "Render a saved embedding as text, DOT or SVG",
		Example: `  bookthickness thickness --complete 5 -f json -o k5.json
  bookthickness render k5.json -f svg -o k5.svg
  bookthickness render k5.json --verify k5-graph.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := render.ParseFormat(opts.format)
			if err != nil {
				return err
			}

			var emb *book.Embedding
			if args[0] == "-" {
				emb, err = book.Read(cmd.InOrStdin())
			} else {
				emb, err = book.ReadFile(args[0])
			}
			if err != nil {
				return err
			}

			if opts.verify != "" {
				g, err := graph.ReadFile(opts.verify)
				if err != nil {
					return err
				}
				if err := book.Verify(g, emb); err != nil {
					return err
				}
				printSuccess("embedding is valid for %s", opts.verify)
			}

			title := opts.title
			if title == "" && args[0] != "-" {
				title = strings.TrimSuffix(args[0], ".json")
			}
			data, err := render.Render(cmd.Context(), emb, format, render.Options{Title: title, Radius: opts.radius})
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, data)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "output format: text, json, dot, svg")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&opts.title, "title", "", "title shown above the drawing (default: file name)")
	cmd.Flags().Float64Var(&opts.radius, "radius", 0, "spine circle radius in inches (default 2)")
	cmd.Flags().StringVar(&opts.verify, "verify", "", "check the embedding against this graph file first")
	return cmd
}
