package stats

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/tfpforecast/timeseries"
)

// noise returns a reproducible uniform sequence on [-1, 1).
func noise(n int) []float64 {
	out := make([]float64, n)
	state := uint32(12345)
	for i := range out {
		state = state*1664525 + 1013904223
		out[i] = float64(state>>8)/float64(1<<23) - 1
	}
	return out
}

// ar1 generates a deterministic AR(1) sequence around zero.
func ar1(n int, phi float64) []float64 {
	e := noise(n)
	values := make([]float64, n)
	for i := 1; i < n; i++ {
		values[i] = phi*values[i-1] + e[i]
	}
	return values
}

func randomWalk(n int) []float64 {
	values := make([]float64, n)
	e := noise(n)
	values[0] = 100
	for i := 1; i < n; i++ {
		values[i] = values[i-1] + 1 + e[i]/4
	}
	return values
}

func TestACF(t *testing.T) {
	acf := ACF(timeseries.New(ar1(200, 0.7)), 10)
	if acf == nil {
		t.Fatal("ACF returned nil")
	}
	if len(acf) != 11 {
		t.Errorf("Expected 11 ACF values, got %d", len(acf))
	}
	if math.Abs(acf[0]-1) > 1e-10 {
		t.Errorf("ACF at lag 0 should be 1, got %f", acf[0])
	}
	if acf[1] <= 0 {
		t.Errorf("Expected positive lag-1 autocorrelation, got %f", acf[1])
	}
}

func TestACFConstant(t *testing.T) {
	if ACF(timeseries.New([]float64{3, 3, 3, 3}), 2) != nil {
		t.Error("Expected nil ACF for a constant series")
	}
}

func TestPACF(t *testing.T) {
	pacf := PACF(timeseries.New(ar1(200, 0.7)), 5)
	if pacf == nil {
		t.Fatal("PACF returned nil")
	}
	if pacf[0] != 1 {
		t.Errorf("PACF at lag 0 should be 1, got %f", pacf[0])
	}
	// AR(1): lag 1 dominates later lags
	for k := 2; k < len(pacf); k++ {
		if math.Abs(pacf[k]) >= math.Abs(pacf[1]) {
			t.Errorf("PACF lag %d (%f) should be smaller than lag 1 (%f)", k, pacf[k], pacf[1])
		}
	}
}

func TestCorrelogram(t *testing.T) {
	series := timeseries.New(ar1(100, 0.8))
	acf, pacf := Correlogram(series, 10)
	if acf == nil || pacf == nil {
		t.Fatal("Correlogram returned nil")
	}
	if math.Abs(acf.ConfBounds-1.96/10) > 1e-10 {
		t.Errorf("Expected bound %f, got %f", 1.96/10, acf.ConfBounds)
	}
	lags := acf.SignificantLags()
	if len(lags) == 0 || lags[0] != 1 {
		t.Errorf("Expected lag 1 to be significant, got %v", lags)
	}
}

func TestOLS(t *testing.T) {
	// y = 2 + 3x exactly, plus a small alternating term
	n := 20
	x := mat.NewDense(n, 2, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x.Set(i, 0, 1)
		x.Set(i, 1, float64(i))
		y[i] = 2 + 3*float64(i) + 0.01*float64(i%2*2-1)
	}

	fit, err := OLS(x, y)
	if err != nil {
		t.Fatalf("OLS failed: %v", err)
	}
	if math.Abs(fit.Coeffs[0]-2) > 0.05 || math.Abs(fit.Coeffs[1]-3) > 0.01 {
		t.Errorf("Unexpected coefficients: %v", fit.Coeffs)
	}
	if len(fit.Residuals) != n {
		t.Errorf("Expected %d residuals, got %d", n, len(fit.Residuals))
	}
}

func TestOLSSingular(t *testing.T) {
	x := mat.NewDense(5, 2, []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1})
	if _, err := OLS(x, []float64{1, 2, 3, 4, 5}); err == nil {
		t.Error("Expected error for collinear regressors")
	}
}

func TestADF(t *testing.T) {
	stationary := ADF(timeseries.New(ar1(200, 0.3)), 0)
	if stationary == nil {
		t.Fatal("ADF returned nil")
	}
	if !stationary.IsStationary {
		t.Errorf("Expected AR(0.3) to be stationary, p=%f", stationary.PValue)
	}

	walk := ADF(timeseries.New(randomWalk(200)), 0)
	if walk == nil {
		t.Fatal("ADF returned nil for random walk")
	}
	t.Logf("Random walk ADF: stat=%f p=%f", walk.Statistic, walk.PValue)

	if ADF(timeseries.New([]float64{1, 2, 3}), 0) != nil {
		t.Error("Expected nil for short series")
	}
}

func TestKPSS(t *testing.T) {
	stationary := KPSS(timeseries.New(ar1(200, 0.3)), "c", 0)
	if stationary == nil {
		t.Fatal("KPSS returned nil")
	}
	if !stationary.IsStationary {
		t.Errorf("Expected stationary, stat=%f", stationary.Statistic)
	}

	trending := KPSS(timeseries.New(randomWalk(200)), "c", 0)
	if trending == nil {
		t.Fatal("KPSS returned nil for trend")
	}
	if trending.IsStationary {
		t.Errorf("Expected trending series to be non-stationary, stat=%f", trending.Statistic)
	}

	ct := KPSS(timeseries.New(randomWalk(200)), "ct", 0)
	if ct == nil || ct.CriticalVals["5%"] != 0.146 {
		t.Errorf("Expected trend critical values, got %+v", ct)
	}
}

func TestNDiffs(t *testing.T) {
	if d := NDiffs(timeseries.New(ar1(200, 0.3)), 2, "kpss"); d != 0 {
		t.Errorf("Expected 0 differences for stationary data, got %d", d)
	}
	if d := NDiffs(timeseries.New(randomWalk(200)), 2, "kpss"); d < 1 {
		t.Errorf("Expected at least 1 difference for trending data, got %d", d)
	}
}

func TestLjungBox(t *testing.T) {
	// Alternating residuals are strongly autocorrelated
	residuals := make([]float64, 100)
	for i := range residuals {
		residuals[i] = float64(i%2*2 - 1)
	}

	lb := LjungBox(residuals, 10, 0)
	if lb == nil {
		t.Fatal("LjungBox returned nil")
	}
	if lb.PValue > 0.01 {
		t.Errorf("Expected tiny p-value for alternating residuals, got %f", lb.PValue)
	}
	if lb.DOF != 10 {
		t.Errorf("Expected 10 DOF, got %d", lb.DOF)
	}

	if LjungBox(residuals[:5], 10, 0) != nil {
		t.Error("Expected nil for short residuals")
	}
	if lb := LjungBox(residuals, 10, 12); lb == nil || lb.DOF != 1 {
		t.Errorf("Expected DOF floor of 1, got %+v", lb)
	}
}

func TestCriticalTablePValue(t *testing.T) {
	tests := []struct {
		stat float64
		want float64
	}{
		{0.1, 0.10},
		{0.347, 0.10},
		{0.405, 0.075},
		{0.463, 0.05},
		{2.0, 0.01},
	}
	for _, tt := range tests {
		if got := kpssLevelTable.pValue(tt.stat); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("pValue(%v) = %v, want %v", tt.stat, got, tt.want)
		}
	}

	levels := adfTable.levels()
	if len(levels) != 3 || levels["5%"] != -2.86 {
		t.Errorf("Unexpected ADF critical values %v", levels)
	}
}

func TestLjungBoxRejected(t *testing.T) {
	lb := LjungBox(noise(200), 10, 0)
	if lb == nil {
		t.Fatal("LjungBox returned nil")
	}
	if lb.Rejected(0.01) {
		t.Errorf("White noise should not be rejected, p=%f", lb.PValue)
	}
}

func TestDecomposeSeasonal(t *testing.T) {
	pattern := []float64{1, -1, 2, -2}
	values := make([]float64, 40)
	for i := range values {
		values[i] = 2 + 0.5*float64(i) + pattern[i%4]
	}

	d := Decompose(timeseries.New(values), 4, 4)
	if d == nil {
		t.Fatal("Decompose returned nil")
	}
	if d.Trend.Len() != 36 || d.Trend.Periods[0] != 2 {
		t.Fatalf("Expected 36 trend values from period 2, got %d from %v", d.Trend.Len(), d.Trend.Periods)
	}
	for i, p := range d.Trend.Periods {
		if math.Abs(d.Trend.Values[i]-(2+0.5*float64(p))) > 1e-9 {
			t.Errorf("Trend at %d = %f, want %f", p, d.Trend.Values[i], 2+0.5*float64(p))
		}
		if math.Abs(d.Seasonal.Values[i]-pattern[p%4]) > 1e-9 {
			t.Errorf("Seasonal at %d = %f, want %f", p, d.Seasonal.Values[i], pattern[p%4])
		}
		if math.Abs(d.Remainder.Values[i]) > 1e-9 {
			t.Errorf("Remainder at %d = %f, want 0", p, d.Remainder.Values[i])
		}
	}
	if d.TrendStrength() < 0.999 || d.SeasonalStrength() < 0.999 {
		t.Errorf("Expected strengths near 1, got trend %f seasonal %f", d.TrendStrength(), d.SeasonalStrength())
	}
}

func TestDecomposeAnnual(t *testing.T) {
	e := noise(59)
	periods := make([]int, 59)
	values := make([]float64, 59)
	for i := range values {
		periods[i] = 1961 + i
		values[i] = 0.5 + 1.3*float64(i)/58 + 0.02*e[i]
	}
	series, err := timeseries.NewWithPeriods(periods, values)
	if err != nil {
		t.Fatal(err)
	}

	d := Decompose(series, 5, 0)
	if d == nil {
		t.Fatal("Decompose returned nil")
	}
	if d.Remainder.Len() != 55 || d.Remainder.Periods[0] != 1963 || d.Remainder.Periods[54] != 2017 {
		t.Fatalf("Unexpected remainder span %v", d.Remainder.Periods)
	}
	for _, v := range d.Seasonal.Values {
		if v != 0 {
			t.Fatalf("Expected zero seasonal part for annual data, got %f", v)
		}
	}
	if d.SeasonalStrength() != 0 {
		t.Errorf("Expected zero seasonal strength, got %f", d.SeasonalStrength())
	}
	if s := d.TrendStrength(); s < 0.9 || s > 1 {
		t.Errorf("Expected trend strength in [0.9, 1], got %f", s)
	}
	if std := d.RemainderStd(); std <= 0 || std > 0.02 {
		t.Errorf("Expected small positive remainder std, got %f", std)
	}

	if Decompose(timeseries.New([]float64{1, 2, 3}), 5, 0) != nil {
		t.Error("Expected nil for a series shorter than the window")
	}
}
