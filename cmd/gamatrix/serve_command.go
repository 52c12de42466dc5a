package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"gamatrix/internal/reconcile"
	"gamatrix/internal/server"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string
	var offline bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the comparison HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if bind != "" {
				cfg.Server.Bind = bind
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var engine *reconcile.Engine
			var saver server.CacheSaver
			if offline {
				engine = reconcile.New(cfg, nil, ctx.logger())
			} else {
				cache, err := ctx.openCache()
				if err != nil {
					return err
				}
				defer cache.Close()

				client, err := ctx.metadataClient(runCtx, cache, false)
				if err != nil {
					return err
				}
				engine = reconcile.New(cfg, client, ctx.logger())
				saver = cache
			}

			srv := server.New(cfg, engine, saver, ctx.logger())
			return srv.Run(runCtx)
		},
	}

	cmd.Flags().StringVarP(&bind, "bind", "b", "", "Listen address (overrides the config)")
	cmd.Flags().BoolVar(&offline, "offline", false, "Serve without IGDB lookups; titles classify from overrides only")

	return cmd
}
