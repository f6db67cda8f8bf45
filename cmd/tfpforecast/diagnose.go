package main

import (
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/sartorproj/tfpforecast/dataset"
	"github.com/sartorproj/tfpforecast/forecast"
	"github.com/sartorproj/tfpforecast/stats"
	"github.com/sartorproj/tfpforecast/timeseries"
)

func newDiagnoseCmd(a *app) *cobra.Command {
	var (
		lags        int
		trendWindow int
		input       string
		saveSeries string
	)

	cmd := &cobra.Command{
		Use:   "diagnose COUNTRY",
		Short: "Show correlograms, stationarity tests and the fitted model for one country",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			country := args[0]

			series, err := a.diagnosedSeries(cmd, country, input)
			if err != nil {
				return err
			}
			if saveSeries != "" {
				if err := timeseries.SaveCSV(series, saveSeries, dataset.TFPColumn); err != nil {
					return err
				}
			}
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "%s: %d observations", country, series.Len())
			if series.Len() > 0 {
				last, _ := series.LastPeriod()
				fmt.Fprintf(out, " (%d-%d)", series.Periods[0], last)
			}
			fmt.Fprintln(out)

			printCorrelogram(out, series, lags)
			printStationarity(out, series)
			printDecomposition(out, series, trendWindow)

			model, err := a.engine().Fit(ctx, series)
			if err != nil {
				return err
			}
			s := model.Summary()

			fmt.Fprintf(out, "\n%s\n", s.Order)
			t := tablewriter.NewWriter(out)
			t.SetHeader([]string{"Statistic", "Value"})
			t.Append([]string{"Observations", strconv.Itoa(s.NObs)})
			t.Append([]string{"Log likelihood", formatFloat(s.LogLik)})
			t.Append([]string{"AIC", formatFloat(s.AIC)})
			t.Append([]string{"AICc", formatFloat(s.AICc)})
			t.Append([]string{"BIC", formatFloat(s.BIC)})
			t.Append([]string{"Residual variance", formatFloat(s.Variance)})
			t.Append([]string{"Iterations", strconv.Itoa(s.Stats.Iterations)})
			t.Append([]string{"Status", s.Stats.Status})
			if s.LjungBox != nil {
				t.Append([]string{fmt.Sprintf("Ljung-Box Q(%d)", s.LjungBox.Lags), formatFloat(s.LjungBox.Statistic)})
				t.Append([]string{"Ljung-Box p-value", formatFloat(s.LjungBox.PValue)})
			}
			t.Render()

			for _, w := range s.Warnings {
				fmt.Fprintln(out, "warning:", w)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&lags, "lags", 20, "number of correlogram lags")
	cmd.Flags().IntVar(&trendWindow, "trend-window", 5, "years in the centred moving average of the trend decomposition")
	cmd.Flags().StringVar(&input, "input", "", "read the country's tfp series from this CSV file instead of the dataset")
	cmd.Flags().StringVar(&saveSeries, "save-series", "", "write the diagnosed series as Year,tfp CSV")
	return cmd
}

// diagnosedSeries reads the tfp series of country from the dataset, or from
// a long-format CSV file when input is set.
func (a *app) diagnosedSeries(cmd *cobra.Command, country, input string) (*timeseries.Series, error) {
	if input != "" {
		opts := timeseries.DefaultCSVOptions()
		opts.PeriodColumn = dataset.YearColumn
		opts.ValueColumn = dataset.TFPColumn
		opts.IDColumn, opts.IDFilter = dataset.EntityColumn, country
		return timeseries.LoadCSV(input, opts)
	}

	table, err := a.openDataset(cmd.Context())
	if err != nil {
		return nil, err
	}
	if !table.HasCountry(country) {
		return nil, &forecast.Error{Kind: forecast.ErrUnknownCountries, Known: table.Countries()}
	}
	return forecast.Extract(country, table), nil
}

func printCorrelogram(out io.Writer, series *timeseries.Series, lags int) {
	diff := series.DiffN(forecast.TFPDiffOrder)
	if diff.Len() <= lags+1 {
		return
	}

	acf, pacf := stats.Correlogram(diff, lags)
	if acf == nil || pacf == nil {
		return
	}
	fmt.Fprintf(out, "\nCorrelogram of the series differenced %d times (bound ±%.3f)\n",
		forecast.TFPDiffOrder, acf.ConfBounds)
	acfMarks, pacfMarks := acf.SignificantLags(), pacf.SignificantLags()
	t := tablewriter.NewWriter(out)
	t.SetHeader([]string{"Lag", "ACF", "", "PACF", ""})
	for k := 1; k <= lags && k < len(acf.Values) && k < len(pacf.Values); k++ {
		t.Append([]string{
			strconv.Itoa(k),
			formatFloat(acf.Values[k]), mark(acfMarks, k),
			formatFloat(pacf.Values[k]), mark(pacfMarks, k),
		})
	}
	t.Render()
}

func printStationarity(out io.Writer, series *timeseries.Series) {
	fmt.Fprintln(out, "\nStationarity")
	t := tablewriter.NewWriter(out)
	t.SetHeader([]string{"Test", "Statistic", "p-value", "Stationary"})
	if adf := stats.ADF(series, 0); adf != nil {
		t.Append([]string{"ADF", formatFloat(adf.Statistic), formatFloat(adf.PValue), strconv.FormatBool(adf.IsStationary)})
	}
	if kpss := stats.KPSS(series, "c", 0); kpss != nil {
		t.Append([]string{"KPSS", formatFloat(kpss.Statistic), formatFloat(kpss.PValue), strconv.FormatBool(kpss.IsStationary)})
	}
	t.Render()

	fmt.Fprintf(out, "Suggested differencing: %d\n", stats.NDiffs(series, 2, "kpss"))
}

func printDecomposition(out io.Writer, series *timeseries.Series, window int) {
	d := stats.Decompose(series, window, 0)
	if d == nil {
		return
	}
	fmt.Fprintf(out, "\nDecomposition (%d-year centred moving average, %d-%d)\n",
		d.Window, d.Trend.Periods[0], d.Trend.Periods[d.Trend.Len()-1])
	t := tablewriter.NewWriter(out)
	t.SetHeader([]string{"Statistic", "Value"})
	t.Append([]string{"Trend strength", formatFloat(d.TrendStrength())})
	t.Append([]string{"Trend change", formatFloat(d.Trend.Values[d.Trend.Len()-1] - d.Trend.Values[0])})
	t.Append([]string{"Remainder std", formatFloat(d.RemainderStd())})
	t.Render()
}

// mark flags lags outside the confidence bounds.
func mark(significant []int, lag int) string {
	if slices.Contains(significant, lag) {
		return "*"
	}
	return ""
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
