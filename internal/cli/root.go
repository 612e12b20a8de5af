package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/bookthickness/pkg/buildinfo"
	"github.com/matzehuels/bookthickness/pkg/config"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// The persistent pre-run loads the configuration (--config, else the XDG
// default) and applies its log level; --verbose always wins.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "bookthickness computes the book thickness of graphs",
		Long: `bookthickness finds the fewest pages a graph needs in a book embedding:
vertices on a circular spine, edges on pages, no two edges on a page crossing.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/bookthickness/config.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.thicknessCommand())
	root.AddCommand(c.embedCommand())
	root.AddCommand(c.spinesCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// skipConfig marks commands that must run without a readable config file.
const skipConfig = "skip-config"

func (c *CLI) setup(cmd *cobra.Command) error {
	if cmd.Annotations[skipConfig] != "" {
		return nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg

	level := LogInfo
	if lvl, err := parseLevel(cfg.Log.Level); err == nil {
		level = lvl
	}
	if c.verbose {
		level = LogDebug
	}
	c.SetLogLevel(level)
	return nil
}
