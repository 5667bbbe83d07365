package main

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/yairfalse/cfs/internal/browse"
	"github.com/yairfalse/cfs/internal/telemetry"
)

func newBrowseCmd(a *app) *cobra.Command {
	var (
		addr string
		open bool
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Open a local page for searching resources",
		Long: `Load every resource file into memory and serve a search page.

The files are read once at startup; restart the server to see the result
of a newer sync. Metrics are served on /metrics.`,
		Example: `  cfs browse
  cfs browse --open=false --addr localhost:8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			flags := cmd.Flags()
			if !flags.Changed("addr") {
				addr = a.cfg.Browse.Addr
			}
			if !flags.Changed("open") {
				open = a.cfg.OpenBrowser()
			}

			docs, err := a.tree().Load(ctx)
			if err != nil {
				return err
			}
			index := browse.NewIndex(docs)
			log.Info().Int("resources", index.Len()).Msg("resources loaded")

			provider, err := telemetry.NewProvider(ctx, "cfs")
			if err != nil {
				return err
			}
			defer func() {
				if err := provider.Shutdown(context.Background()); err != nil {
					log.Debug().Err(err).Msg("shutdown telemetry")
				}
			}()
			metrics, err := telemetry.NewMetrics(provider.Meter())
			if err != nil {
				return err
			}

			opts := []browse.Option{
				browse.WithMetrics(metrics),
				browse.WithMetricsHandler(provider.Handler()),
				browse.WithOutput(cmd.OutOrStdout()),
			}
			if !open {
				opts = append(opts, browse.WithOpen(nil))
			}
			return browse.NewServer(index, opts...).Serve(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:3000", "Address to listen on")
	cmd.Flags().BoolVar(&open, "open", true, "Open the page in the default browser")
	return cmd
}
