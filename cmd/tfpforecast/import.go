package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sartorproj/tfpforecast/dataset"
)

func newImportCmd(a *app) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Download the CSV dataset and store it in SQLite",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			opts := a.datasetOptions()
			opts.Source = dataset.SourceCSV
			table, err := dataset.Open(ctx, opts)
			if err != nil {
				return err
			}

			if dbPath == "" {
				dbPath = a.cfg.Dataset.DBPath
			}
			store, err := dataset.OpenStore(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Save(ctx, table); err != nil {
				return err
			}

			a.logger.InfoContext(ctx, "dataset imported", "path", dbPath, "rows", table.Len())
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d rows for %d countries into %s\n",
				table.Len(), len(table.Countries()), dbPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database file (default from config)")
	return cmd
}
