package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/bookthickness/pkg/book"
	"github.com/matzehuels/bookthickness/pkg/render"
)

func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Print a completion script for the given shell. Besides commands and flags
the scripts complete --engine (search, sat) and --format (text, json, dot, svg).

  $ source <(bookthickness completion bash)
  $ bookthickness completion zsh > "${fpath[1]}/_bookthickness"
  $ bookthickness completion fish > ~/.config/fish/completions/bookthickness.fish
  PS> bookthickness completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}

// completeEngines completes --engine values.
func completeEngines(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	names := make([]string, len(book.Engines))
	for i, e := range book.Engines {
		names[i] = string(e)
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// completeFormats completes --format values.
func completeFormats(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	names := make([]string, len(render.Formats))
	for i, f := range render.Formats {
		names[i] = string(f)
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
