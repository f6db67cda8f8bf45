// Package stats provides statistical tests and functions for time series analysis.
package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/tfpforecast/timeseries"
)

// ACF calculates the Autocorrelation Function for the given series.
// Returns ACF values for lags 0 to maxLag, or nil for a constant series.
func ACF(series *timeseries.Series, maxLag int) []float64 {
	return ACFValues(series.Values, maxLag)
}

// ACFValues is ACF over a raw value slice.
func ACFValues(values []float64, maxLag int) []float64 {
	n := len(values)
	maxLag = min(maxLag, n-1)
	if maxLag < 0 {
		return nil
	}

	dev := make([]float64, n)
	copy(dev, values)
	floats.AddConst(-stat.Mean(values, nil), dev)

	c0 := floats.Dot(dev, dev)
	if c0 == 0 {
		return nil
	}

	acf := make([]float64, maxLag+1)
	for k := range acf {
		acf[k] = floats.Dot(dev[k:], dev[:n-k]) / c0
	}
	return acf
}

// PACF calculates the Partial Autocorrelation Function with the
// Durbin-Levinson recursion. Index 0 is always 1; lags 1 to maxLag follow.
func PACF(series *timeseries.Series, maxLag int) []float64 {
	maxLag = min(maxLag, series.Len()-1)
	if maxLag < 1 {
		return nil
	}

	r := ACF(series, maxLag)
	if r == nil {
		return nil
	}

	pacf := make([]float64, maxLag+1)
	pacf[0] = 1

	// phi holds the AR(k) coefficients phi_{k,1..k} at 0..k-1.
	phi := []float64{r[1]}
	pacf[1] = r[1]
	for k := 2; k <= maxLag; k++ {
		num, den := r[k], 1.0
		for j, c := range phi {
			num -= c * r[k-j-1]
			den -= c * r[j+1]
		}
		if den == 0 {
			break
		}

		kk := num / den
		next := make([]float64, k)
		for j := range phi {
			next[j] = phi[j] - kk*phi[k-j-2]
		}
		next[k-1] = kk

		phi = next
		pacf[k] = kk
	}

	return pacf
}

// CorrelogramResult holds ACF or PACF values with 95% confidence bounds.
type CorrelogramResult struct {
	Values     []float64
	ConfBounds float64 // +-1.96/sqrt(n)
}

// Correlogram calculates ACF and PACF with confidence bounds.
func Correlogram(series *timeseries.Series, maxLag int) (acf, pacf *CorrelogramResult) {
	bound := 1.96 / math.Sqrt(float64(series.Len()))
	if v := ACF(series, maxLag); v != nil {
		acf = &CorrelogramResult{Values: v, ConfBounds: bound}
	}
	if v := PACF(series, maxLag); v != nil {
		pacf = &CorrelogramResult{Values: v, ConfBounds: bound}
	}
	return acf, pacf
}

// SignificantLags returns the lags (excluding 0) whose value exceeds the bounds.
func (r *CorrelogramResult) SignificantLags() []int {
	var significant []int
	for i := 1; i < len(r.Values); i++ {
		if math.Abs(r.Values[i]) > r.ConfBounds {
			significant = append(significant, i)
		}
	}
	return significant
}
