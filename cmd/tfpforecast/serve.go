package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sartorproj/tfpforecast/server"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the forecasting HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			table, err := a.openDataset(ctx)
			if err != nil {
				return err
			}

			srv := server.New(table, a.engine(), server.Options{
				Server:      a.cfg.Server,
				Output:      a.cfg.Output,
				Concurrency: a.cfg.Fit.Concurrency,
				Logger:      a.logger,
			})
			return srv.Run(ctx)
		},
	}
}
