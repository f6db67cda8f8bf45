package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/tfpforecast/timeseries"
)

// Decomposition is an additive split of a series into trend, seasonal and
// remainder parts. The components cover only the periods where the centred
// moving average is defined, so the first and last window/2 observations
// are dropped.
type Decomposition struct {
	Trend     *timeseries.Series
	Seasonal  *timeseries.Series
	Remainder *timeseries.Series
	Window    int
	Period    int
}

// Decompose performs classical additive decomposition. The trend is a
// centred moving average over window observations (a 2xwindow average when
// window is even). When period > 1 the seasonal part is the mean detrended
// value at each position of the cycle, centred to sum to zero; annual data
// passes period <= 1 and gets a zero seasonal part.
//
// Returns nil when the series is too short to leave at least two trend
// values or one full cycle.
func Decompose(series *timeseries.Series, window, period int) *Decomposition {
	n := series.Len()
	if window < 2 {
		window = 2
	}
	half := window / 2
	if n-2*half < 2 || (period > 1 && n-2*half < period) {
		return nil
	}

	trend := centredAverage(series.Values, window)

	seasonal := make([]float64, n)
	if period > 1 {
		sums := make([]float64, period)
		counts := make([]int, period)
		for i := half; i < n-half; i++ {
			sums[i%period] += series.Values[i] - trend[i]
			counts[i%period]++
		}
		pattern := make([]float64, period)
		for k := range pattern {
			if counts[k] > 0 {
				pattern[k] = sums[k] / float64(counts[k])
			}
		}
		mean := stat.Mean(pattern, nil)
		for i := range seasonal {
			seasonal[i] = pattern[i%period] - mean
		}
	}

	lo, hi := half, n-half
	d := &Decomposition{Window: window, Period: max(period, 1)}
	periods := series.Periods[lo:hi]
	remainder := make([]float64, hi-lo)
	for i := lo; i < hi; i++ {
		remainder[i-lo] = series.Values[i] - trend[i] - seasonal[i]
	}
	d.Trend = component(series.Name+"_trend", periods, trend[lo:hi])
	d.Seasonal = component(series.Name+"_seasonal", periods, seasonal[lo:hi])
	d.Remainder = component(series.Name+"_remainder", periods, remainder)
	return d
}

func component(name string, periods []int, values []float64) *timeseries.Series {
	p := make([]int, len(periods))
	copy(p, periods)
	v := make([]float64, len(values))
	copy(v, values)
	return &timeseries.Series{Periods: p, Values: v, Name: name}
}

// centredAverage returns the centred moving average of values. Positions
// closer than window/2 to either end are NaN.
func centredAverage(values []float64, window int) []float64 {
	n := len(values)
	half := window / 2
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	for i := half; i < n-half; i++ {
		if window%2 == 1 {
			out[i] = stat.Mean(values[i-half:i+half+1], nil)
			continue
		}
		sum := 0.5*values[i-half] + 0.5*values[i+half]
		for j := i - half + 1; j < i+half; j++ {
			sum += values[j]
		}
		out[i] = sum / float64(window)
	}
	return out
}

// TrendStrength is max(0, 1 - Var(R)/Var(T+R)). Values near one mean the
// series is dominated by its trend.
func (d *Decomposition) TrendStrength() float64 {
	return strength(d.Trend.Values, d.Remainder.Values)
}

// SeasonalStrength is max(0, 1 - Var(R)/Var(S+R)). It is zero for annual
// decompositions.
func (d *Decomposition) SeasonalStrength() float64 {
	if d.Period <= 1 {
		return 0
	}
	return strength(d.Seasonal.Values, d.Remainder.Values)
}

// RemainderStd is the standard deviation of the remainder.
func (d *Decomposition) RemainderStd() float64 {
	if d.Remainder.Len() < 2 {
		return 0
	}
	return stat.StdDev(d.Remainder.Values, nil)
}

func strength(part, remainder []float64) float64 {
	if len(remainder) < 2 {
		return 0
	}
	combined := make([]float64, len(remainder))
	for i := range combined {
		combined[i] = part[i] + remainder[i]
	}
	total := stat.Variance(combined, nil)
	if total == 0 {
		return 0
	}
	return math.Max(0, 1-stat.Variance(remainder, nil)/total)
}
