package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bookthickness/internal/api"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve thickness queries over HTTP with Prometheus metrics on /metrics.

The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.Config
			if addr == "" {
				addr = cfg.Server.Addr
			}

			metrics := api.NewMetrics()
			metrics.Install()

			runner, err := c.newRunner(ctx, noCache, c.Logger)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv := api.New(runner, c.Logger, api.Options{
				RequestTimeout: cfg.Server.RequestTimeout.Duration,
				MaxVertices:    cfg.Server.MaxVertices,
				Defaults:       c.options(&searchFlags{}),
				Metrics:        metrics,
			})
			printInfo("serving on %s", StyleValue.Render(addr))
			printKeyValue("cache", cfg.Cache.Backend)
			printKeyValue("engine", cfg.Search.Engine)
			printKeyValue("max vertices", fmt.Sprint(cfg.Server.MaxVertices))
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "serve without a result cache")
	return cmd
}
