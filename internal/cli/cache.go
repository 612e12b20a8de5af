package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bookthickness/pkg/cache"
	"github.com/matzehuels/bookthickness/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the result cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached results",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend := cache.Backend(c.Config.Cache.Backend)
			dir, err := c.cacheLocation(backend)
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}

			switch backend {
			case cache.BackendFile, "":
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					printInfo("Cache is empty")
					return nil
				}
				fc, err := cache.NewFileCache(dir)
				if err != nil {
					return err
				}
				n, err := fc.Clear()
				if err != nil {
					return err
				}
				printSuccess("Cleared %d cached entries", n)
			case cache.BackendBadger:
				bc, err := cache.NewBadgerCache(dir)
				if err != nil {
					return err
				}
				defer bc.Close()
				if err := bc.Clear(); err != nil {
					return err
				}
				printSuccess("Dropped all badger entries")
			case cache.BackendNone:
				printInfo("Caching is disabled")
				return nil
			default:
				return errors.New(errors.ErrCodeUnsupported, "clearing the %s backend is not supported; entries expire after %s", backend, c.Config.Cache.TTL)
			}
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache location",
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := c.cacheLocation(cache.Backend(c.Config.Cache.Backend))
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), loc)
			return nil
		},
	}
}
