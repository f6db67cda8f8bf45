package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/tfpforecast/timeseries"
)

// criticalTable maps test statistics to tail probabilities. Entries are
// sorted by increasing statistic.
type criticalTable []struct {
	stat  float64
	p     float64
	label string
}

// pValue interpolates linearly between entries and clamps at both ends.
func (c criticalTable) pValue(x float64) float64 {
	if x <= c[0].stat {
		return c[0].p
	}
	for i := 1; i < len(c); i++ {
		if x <= c[i].stat {
			lo, hi := c[i-1], c[i]
			w := (x - lo.stat) / (hi.stat - lo.stat)
			return lo.p + w*(hi.p-lo.p)
		}
	}
	return c[len(c)-1].p
}

// levels returns the labelled critical values.
func (c criticalTable) levels() map[string]float64 {
	out := make(map[string]float64)
	for _, e := range c {
		if e.label != "" {
			out[e.label] = e.stat
		}
	}
	return out
}

// MacKinnon asymptotic values for the ADF regression with a constant.
var adfTable = criticalTable{
	{-3.96, 0.001, ""},
	{-3.43, 0.01, "1%"},
	{-2.86, 0.05, "5%"},
	{-2.57, 0.10, "10%"},
	{-1.94, 0.25, ""},
	{-1.62, 0.50, ""},
	{0.92, 0.99, ""},
}

// Kwiatkowski et al. (1992), table 1.
var (
	kpssLevelTable = criticalTable{
		{0.347, 0.10, "10%"},
		{0.463, 0.05, "5%"},
		{0.574, 0.025, ""},
		{0.739, 0.01, "1%"},
	}
	kpssTrendTable = criticalTable{
		{0.119, 0.10, "10%"},
		{0.146, 0.05, "5%"},
		{0.176, 0.025, ""},
		{0.216, 0.01, "1%"},
	}
)

// ADFResult represents the result of an Augmented Dickey-Fuller test.
type ADFResult struct {
	Statistic    float64
	PValue       float64
	Lags         int
	NObs         int
	CriticalVals map[string]float64 // Critical values at 1%, 5%, 10%
	IsStationary bool
}

// ADF performs the Augmented Dickey-Fuller test for a unit root.
// The null hypothesis is that the series has a unit root (is non-stationary).
// A maxLag of zero selects floor((n-1)^(1/3)) lags. Returns nil when the
// series is too short or the regression is singular.
func ADF(series *timeseries.Series, maxLag int) *ADFResult {
	n := series.Len()
	if n < 10 {
		return nil
	}

	lags := maxLag
	if lags <= 0 {
		lags = int(math.Floor(math.Cbrt(float64(n - 1))))
	}
	lags = min(lags, n-2)

	rows := n - lags - 1
	if rows < 10 {
		return nil
	}

	// dy_t = a + b*y_{t-1} + sum_j g_j*dy_{t-j}
	dy := series.Diff().Values
	x := mat.NewDense(rows, 2+lags, nil)
	y := make([]float64, rows)
	for r := range y {
		t := r + lags
		y[r] = dy[t]
		x.Set(r, 0, 1)
		x.Set(r, 1, series.Values[t])
		for j := 1; j <= lags; j++ {
			x.Set(r, 1+j, dy[t-j])
		}
	}

	fit, err := OLS(x, y)
	if err != nil || fit.StdErrors[1] == 0 {
		return nil
	}

	tau := fit.Coeffs[1] / fit.StdErrors[1]
	p := adfTable.pValue(tau)

	return &ADFResult{
		Statistic:    tau,
		PValue:       p,
		Lags:         lags,
		NObs:         rows,
		CriticalVals: adfTable.levels(),
		IsStationary: p < 0.05,
	}
}

// KPSSResult represents the result of a KPSS test.
type KPSSResult struct {
	Statistic    float64
	PValue       float64
	Lags         int
	CriticalVals map[string]float64
	IsStationary bool
}

// KPSS performs the Kwiatkowski-Phillips-Schmidt-Shin test for stationarity.
// The null hypothesis is that the series is stationary. regression is "c"
// (level) or "ct" (trend). An nlags of zero selects ceil(12*(n/100)^(1/4)).
func KPSS(series *timeseries.Series, regression string, nlags int) *KPSSResult {
	n := series.Len()
	if n < 10 {
		return nil
	}

	lags := nlags
	if lags <= 0 {
		lags = int(math.Ceil(12 * math.Pow(float64(n)/100, 0.25)))
	}

	resid := make([]float64, n)
	table := kpssLevelTable
	if regression == "ct" {
		table = kpssTrendTable
		trend := make([]float64, n)
		for i := range trend {
			trend[i] = float64(i)
		}
		alpha, beta := stat.LinearRegression(trend, series.Values, nil, false)
		for i, v := range series.Values {
			resid[i] = v - alpha - beta*trend[i]
		}
	} else {
		copy(resid, series.Values)
		floats.AddConst(-series.Mean(), resid)
	}

	lrv := longRunVariance(resid, lags)
	if lrv <= 0 {
		lrv = 1e-10
	}

	partial := make([]float64, n)
	floats.CumSum(partial, resid)
	eta := floats.Dot(partial, partial)
	statistic := eta / (float64(n) * float64(n) * lrv)

	p := table.pValue(statistic)
	return &KPSSResult{
		Statistic:    statistic,
		PValue:       p,
		Lags:         lags,
		CriticalVals: table.levels(),
		IsStationary: p >= 0.05,
	}
}

// longRunVariance is the Newey-West estimate with Bartlett weights.
func longRunVariance(resid []float64, lags int) float64 {
	n := len(resid)
	v := floats.Dot(resid, resid) / float64(n)
	for l := 1; l <= lags && l < n; l++ {
		cov := floats.Dot(resid[l:], resid[:n-l]) / float64(n)
		v += 2 * (1 - float64(l)/float64(lags+1)) * cov
	}
	return v
}
