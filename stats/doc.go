// Package stats provides the diagnostics used to justify and check ARIMA fits.
//
// # Stationarity Tests
//
//	// Augmented Dickey-Fuller, H0: unit root (non-stationary)
//	adf := stats.ADF(series, 0)
//
//	// KPSS, H0: stationary
//	kpss := stats.KPSS(series, "c", 0)
//
//	// Number of first differences needed
//	d := stats.NDiffs(series, 2, "kpss")
//
// # Autocorrelation
//
//	acf, pacf := stats.Correlogram(series, 20)
//	lags := pacf.SignificantLags()
//
// # Residual Diagnostics
//
//	lb := stats.LjungBox(residuals, 10, p+q)
//	if !lb.Rejected(0.05) {
//	    // No residual autocorrelation left
//	}
//
// Regressions are solved with gonum/mat via OLS; chi-squared tail
// probabilities come from gonum/stat/distuv.
package stats
