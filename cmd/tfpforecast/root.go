package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sartorproj/tfpforecast/config"
	"github.com/sartorproj/tfpforecast/dataset"
	"github.com/sartorproj/tfpforecast/forecast"
	"github.com/sartorproj/tfpforecast/logging"
)

// app carries the state shared by every subcommand.
type app struct {
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
	closer     io.Closer
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "tfpforecast",
		Short:         "Forecast agricultural total factor productivity by country",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.closer != nil {
				return a.closer.Close()
			}
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to a YAML config file (default $TFP_CONFIG)")

	root.AddCommand(
		newCountriesCmd(a),
		newForecastCmd(a),
		newDiagnoseCmd(a),
		newChartCmd(a),
		newImportCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	logger, closer, err := logging.New(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a.cfg, a.logger, a.closer = cfg, logger, closer
	cmd.SetContext(logging.EnsureRunID(cmd.Context()))
	return nil
}

func (a *app) datasetOptions() dataset.Options {
	return dataset.Options{
		Source:    a.cfg.Dataset.Source,
		URL:       a.cfg.Dataset.URL,
		CachePath: a.cfg.Dataset.CachePath,
		DBPath:    a.cfg.Dataset.DBPath,
		Timeout:   a.cfg.Dataset.Timeout,
	}
}

func (a *app) openDataset(ctx context.Context) (*dataset.Table, error) {
	opts := a.datasetOptions()
	a.logger.DebugContext(ctx, "opening dataset", "source", opts.Source)

	table, err := dataset.Open(ctx, opts)
	if err != nil {
		return nil, err
	}
	a.logger.InfoContext(ctx, "dataset loaded", "rows", table.Len(), "countries", len(table.Countries()))
	return table, nil
}

func (a *app) engine() *forecast.Engine {
	e := forecast.NewEngine()
	e.Timeout = a.cfg.Fit.Timeout
	e.MaxIterations = a.cfg.Fit.MaxIterations
	return e
}

func (a *app) orchestrator(data forecast.Dataset, opts ...forecast.Option) *forecast.Orchestrator {
	opts = append([]forecast.Option{
		forecast.WithConcurrency(a.cfg.Fit.Concurrency),
		forecast.WithLogger(a.logger),
	}, opts...)
	return forecast.NewOrchestrator(data, a.engine(), opts...)
}
