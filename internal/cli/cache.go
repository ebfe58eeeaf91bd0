package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/matzehuels/repolens/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the fingerprint and score cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cacheStatsCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var expired bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached entries from the configured backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			backend, err := cache.Open(cmd.Context(), cfg.CacheOptions())
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer backend.Close()

			var n int
			if sq, ok := backend.(*cache.SQLiteCache); ok && expired {
				n, err = sq.Clear(cmd.Context(), true)
			} else {
				n, err = cache.Clear(cmd.Context(), backend)
			}
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess("Cleared %d cached entries", n)
			printDetail("Backend: %s", backendLocation(cfg.CacheOptions()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&expired, "expired", false, "only remove expired entries (sqlite backend)")
	return cmd
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache lives",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), backendLocation(cfg.CacheOptions()))
			return nil
		},
	}
}

// cacheStatsCommand creates the "cache stats" subcommand.
func (c *CLI) cacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count cached entries per category (sqlite backend)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			backend, err := cache.Open(cmd.Context(), cfg.CacheOptions())
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer backend.Close()

			sq, ok := backend.(*cache.SQLiteCache)
			if !ok {
				return fmt.Errorf("stats are only available for the %s backend", cache.BackendSQLite)
			}
			counts, err := sq.Count(cmd.Context())
			if err != nil {
				return err
			}
			if len(counts) == 0 {
				printInfo("Cache is empty")
				return nil
			}

			categories := make([]string, 0, len(counts))
			for cat := range counts {
				categories = append(categories, cat)
			}
			sort.Strings(categories)
			for _, cat := range categories {
				printKeyValue(cat, fmt.Sprint(counts[cat]))
			}
			return nil
		},
	}
}

// backendLocation describes opts for display. Connection strings are shown
// without credentials.
func backendLocation(opts cache.Options) string {
	switch opts.Backend {
	case cache.BackendRedis, cache.BackendMongo:
		return opts.Backend + " " + redactURL(opts.URL)
	case cache.BackendMemory, cache.BackendNone:
		return opts.Backend
	default:
		return opts.Path
	}
}
