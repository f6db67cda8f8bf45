package stats

import (
	"github.com/sartorproj/tfpforecast/timeseries"
)

// NDiffs returns the number of first differences, at most maxD (default 2),
// after which the series passes a stationarity test. testType is "kpss"
// (default) or "adf". Differencing stops early once fewer than ten
// observations would remain.
func NDiffs(series *timeseries.Series, maxD int, testType string) int {
	if maxD <= 0 {
		maxD = 2
	}

	stationary := func(s *timeseries.Series) bool {
		r := KPSS(s, "c", 0)
		return r != nil && r.IsStationary
	}
	if testType == "adf" {
		stationary = func(s *timeseries.Series) bool {
			r := ADF(s, 0)
			return r != nil && r.IsStationary
		}
	}

	current := series
	for d := range maxD {
		if stationary(current) {
			return d
		}
		if current = current.Diff(); current.Len() < 10 {
			return d
		}
	}
	return maxD
}
