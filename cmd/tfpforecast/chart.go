package main

import (
	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"

	"github.com/sartorproj/tfpforecast/render"
)

func newChartCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "chart COUNTRY...",
		Short: "Draw the total agricultural output of countries",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			table, err := a.openDataset(ctx)
			if err != nil {
				return err
			}

			p, err := render.CountryChart(table, args, render.Options{})
			if err != nil {
				return err
			}
			w := vg.Length(a.cfg.Output.ChartWidth) * vg.Inch
			h := vg.Length(a.cfg.Output.ChartHeight) * vg.Inch
			if err := render.Save(p, output, w, h); err != nil {
				return err
			}
			a.logger.InfoContext(ctx, "chart written", "path", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "output.png", "chart file (.png, .svg, .pdf)")
	return cmd
}
