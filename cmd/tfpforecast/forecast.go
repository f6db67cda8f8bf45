package main

import (
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"

	"github.com/sartorproj/tfpforecast/export"
	"github.com/sartorproj/tfpforecast/forecast"
	"github.com/sartorproj/tfpforecast/render"
)

func newForecastCmd(a *app) *cobra.Command {
	var chartPath, xlsxPath, csvPath string

	cmd := &cobra.Command{
		Use:   "forecast COUNTRY...",
		Short: "Forecast tfp for up to three countries",
		Long: `Fits an ARIMA(20,2,2) model to each country's tfp history and projects it
31 years past the last observation. Unknown countries are skipped; the
command fails if none is known.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			table, err := a.openDataset(ctx)
			if err != nil {
				return err
			}

			results, err := a.orchestrator(table).Run(ctx, args)
			if err != nil {
				return err
			}

			printForecast(cmd, results)

			if chartPath != "" {
				p, err := render.ForecastChart(results, render.Options{})
				if err != nil {
					return err
				}
				w := vg.Length(a.cfg.Output.ChartWidth) * vg.Inch
				h := vg.Length(a.cfg.Output.ChartHeight) * vg.Inch
				if err := render.Save(p, chartPath, w, h); err != nil {
					return err
				}
				a.logger.InfoContext(ctx, "chart written", "path", chartPath)
			}
			if xlsxPath != "" {
				if err := export.SaveWorkbook(results, xlsxPath); err != nil {
					return err
				}
				a.logger.InfoContext(ctx, "workbook written", "path", xlsxPath)
			}
			if csvPath != "" {
				if err := writeCSV(csvPath, results); err != nil {
					return err
				}
				a.logger.InfoContext(ctx, "csv written", "path", csvPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&chartPath, "chart", "", "write the forecast chart to this file (.png, .svg, .pdf)")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "write an Excel workbook to this file")
	cmd.Flags().StringVar(&csvPath, "csv", "", "write historical and forecast values as CSV")
	return cmd
}

// printForecast writes one row per forecast year with a column per country.
func printForecast(cmd *cobra.Command, results []forecast.Result) {
	header := []string{"Year"}
	years := map[int][]string{}
	var order []int

	for i, r := range results {
		header = append(header, r.Country)
		for j, year := range r.Forecast.Periods {
			if _, ok := years[year]; !ok {
				years[year] = make([]string, len(results))
				order = append(order, year)
			}
			years[year][i] = strconv.FormatFloat(r.Forecast.Values[j], 'f', 4, 64)
		}
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader(header)
	for _, year := range sortedInts(order) {
		table.Append(append([]string{strconv.Itoa(year)}, years[year]...))
	}
	table.Render()
}

func writeCSV(path string, results []forecast.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.CSV(f, results); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func sortedInts(values []int) []int {
	out := slices.Clone(values)
	slices.Sort(out)
	return out
}
