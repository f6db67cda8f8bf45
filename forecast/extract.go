package forecast

import (
	"github.com/sartorproj/tfpforecast/dataset"
	"github.com/sartorproj/tfpforecast/timeseries"
)

// Dataset is the read-only view of the country table used for forecasting.
// *dataset.Table implements it.
type Dataset interface {
	Countries() []string
	HasCountry(name string) bool
	Rows(country string) []dataset.Row
}

// Extract returns the (year, tfp) series of country ordered by year.
// Years without a tfp value are skipped and gaps are kept as they are. An
// unknown country, or one with repeated years, yields an empty series. The
// dataset is never modified.
func Extract(country string, data Dataset) *timeseries.Series {
	var points []timeseries.Point
	for _, r := range data.Rows(country) {
		if v, ok := r.TFP(); ok {
			points = append(points, timeseries.Point{Period: r.Year, Value: v})
		}
	}

	series, err := timeseries.FromPoints(country, points)
	if err != nil {
		return &timeseries.Series{Periods: []int{}, Values: []float64{}, Name: country}
	}
	return series
}
