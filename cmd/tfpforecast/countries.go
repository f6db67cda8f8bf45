package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCountriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "countries",
		Short: "List the countries available for forecasting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table, err := a.openDataset(cmd.Context())
			if err != nil {
				return err
			}
			for _, c := range table.Countries() {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		},
	}
}
