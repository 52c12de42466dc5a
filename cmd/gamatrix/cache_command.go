package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gamatrix/internal/reconcile"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or refresh the IGDB metadata cache",
	}

	cacheCmd.AddCommand(newCacheShowCommand(ctx))
	cacheCmd.AddCommand(newCacheRefreshCommand(ctx))

	return cacheCmd
}

func newCacheShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show cache location and entry counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cache, err := ctx.openCache()
			if err != nil {
				return err
			}
			defer cache.Close()

			var resolved, absent int
			for _, key := range cache.Keys() {
				entry, _ := cache.Game(key)
				if entry.IGDBID == 0 {
					absent++
				} else {
					resolved++
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Cache file:  %s\n", cfg.Paths.CachePath)
			fmt.Fprintf(out, "Entries:     %d\n", cache.GameCount())
			fmt.Fprintf(out, "Resolved:    %d\n", resolved)
			fmt.Fprintf(out, "Not on IGDB: %d\n", absent)
			return nil
		},
	}
}

// newCacheRefreshCommand warms the cache by classifying every title in
// every configured library, re-attempting entries with incomplete data.
func newCacheRefreshCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Fetch metadata for every owned game",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := reconcile.Options{
				UserIDs:             ctx.allUserIDs(),
				IncludeSinglePlayer: true,
				KeepUnclassified:    true,
				AllGames:            true,
				RefreshCache:        true,
			}
			if len(opts.UserIDs) == 0 {
				return fmt.Errorf("no users configured")
			}

			result, failures, err := runComparison(cmd, ctx, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Classified %d games\n", len(result.Games))
			if failures > 0 {
				fmt.Fprintf(out, "%d lookups failed; run refresh again to retry\n", failures)
			}
			return nil
		},
	}
}
