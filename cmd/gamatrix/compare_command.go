package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"gamatrix/internal/reconcile"
)

func newCompareCommand(ctx *commandContext) *cobra.Command {
	var opts reconcile.Options
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare game libraries between users",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(opts.UserIDs) == 0 {
				if !opts.AllGames {
					return fmt.Errorf("--users is required (or use --all-games for everyone)")
				}
				opts.UserIDs = ctx.allUserIDs()
			}

			result, failures, err := runComparison(cmd, ctx, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(result)
			}

			renderComparison(out, result, stdoutIsTerminal())
			if failures > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(),
					"warning: %d IGDB lookups failed; results may be incomplete\n", failures)
			}
			return nil
		},
	}

	cmd.Flags().Int64SliceVarP(&opts.UserIDs, "users", "u", nil, "GOG user IDs to compare")
	cmd.Flags().BoolVarP(&opts.IncludeSinglePlayer, "include-single-player", "s", false, "Include single-player games")
	cmd.Flags().BoolVarP(&opts.InstalledOnly, "installed-only", "I", false, "Only count games that are installed")
	cmd.Flags().BoolVarP(&opts.Exclusive, "exclusive", "x", false, "Exclude games owned by users outside the comparison")
	cmd.Flags().BoolVarP(&opts.AllGames, "all-games", "a", false, "List every owned game instead of the intersection")
	cmd.Flags().StringSliceVarP(&opts.ExcludePlatforms, "exclude-platform", "p", nil, "Storefronts to ignore (e.g. steam, epic)")
	cmd.Flags().BoolVar(&opts.KeepUnclassified, "keep-unclassified", false, "Keep titles whose player count never resolved")
	cmd.Flags().BoolVar(&opts.RefreshCache, "refresh", false, "Re-attempt cache entries with incomplete metadata")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")

	return cmd
}

func runComparison(cmd *cobra.Command, ctx *commandContext, opts reconcile.Options) (*reconcile.Result, int, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, 0, err
	}

	cache, err := ctx.openCache()
	if err != nil {
		return nil, 0, err
	}
	defer cache.Close()

	client, err := ctx.metadataClient(cmd.Context(), cache, opts.RefreshCache)
	if err != nil {
		return nil, 0, err
	}

	scanIDs := opts.UserIDs
	if opts.Exclusive {
		scanIDs = ctx.allUserIDs()
	}
	libs, closeLibs, err := ctx.openLibraries(cmd.Context(), scanIDs)
	if err != nil {
		return nil, 0, err
	}
	defer closeLibs()

	engine := reconcile.New(cfg, client, ctx.logger())
	result, err := engine.Run(cmd.Context(), opts, libs)
	if err != nil {
		return nil, 0, err
	}

	if err := cache.Save(); err != nil {
		return nil, 0, fmt.Errorf("save metadata cache: %w", err)
	}
	return result, client.FailureCount(), nil
}

func renderComparison(out io.Writer, result *reconcile.Result, fancy bool) {
	fmt.Fprintln(out, result.Caption)
	if len(result.Games) == 0 {
		return
	}

	rows := make([][]string, 0, len(result.Games))
	for _, g := range result.Games {
		rows = append(rows, []string{g.Title, platformsLabel(g), playersLabel(g), g.Comment})
	}

	if fancy {
		fmt.Fprintln(out, renderTable(
			[]string{"Title", "Platforms", "Players", "Comment"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft}))
		return
	}
	for _, row := range rows {
		fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", row[0], row[1], row[2], row[3])
	}
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
