package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bookthickness/pkg/errors"
	"github.com/matzehuels/bookthickness/pkg/spine"
)

func (c *CLI) spinesCommand() *cobra.Command {
	var countOnly bool

	cmd := &cobra.Command{
		Use:   "spines n",
		Short: "List the canonical spines of n vertices",
		Long: `List one spine per class of vertex orders equal up to rotation and
reflection. There are (n-1)!/2 such classes for n >= 3.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 {
				return errors.New(errors.ErrCodeInvalidInput, "vertex count must be a non-negative integer, got %q", args[0])
			}
			if n > spine.MaxCountable {
				return errors.New(errors.ErrCodeInvalidInput, "at most %d vertices are supported, got %d", spine.MaxCountable, n)
			}

			out := cmd.OutOrStdout()
			if countOnly {
				fmt.Fprintln(out, spine.Count(n))
				return nil
			}
			seq, total := spine.Sequence(n)
			for s := range seq {
				fmt.Fprintln(out, s.Key())
			}
			printInfo("%s canonical spines on %d vertices", StyleNumber.Render(strconv.Itoa(total)), n)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&countOnly, "count", "c", false, "print only the number of spines")
	return cmd
}
