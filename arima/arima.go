// Package arima implements ARIMA (AutoRegressive Integrated Moving Average) models.
package arima

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/sartorproj/tfpforecast/stats"
	"github.com/sartorproj/tfpforecast/timeseries"
)

var (
	// ErrInsufficientData is returned when the series is too short, contains
	// non-finite values, or carries no variation after differencing.
	ErrInsufficientData = errors.New("insufficient data for the model order")

	// ErrFittingFailure is returned when parameter estimation does not converge.
	ErrFittingFailure = errors.New("parameter estimation did not converge")

	// ErrNotFitted is returned when a fitted model is required.
	ErrNotFitted = errors.New("model must be fitted before prediction")

	// ErrInvalidOrder is returned for negative orders.
	ErrInvalidOrder = errors.New("invalid model order")
)

// penalty replaces non-finite objective values.
const penalty = 1e100

// maxRestarts bounds the Nelder-Mead restarts from the best point found.
const maxRestarts = 3

// Order represents ARIMA model order (p, d, q).
type Order struct {
	P int // AR order (number of autoregressive terms)
	D int // Differencing order
	Q int // MA order (number of moving average terms)
}

// String formats the order as ARIMA(p,d,q).
func (o Order) String() string {
	return fmt.Sprintf("ARIMA(%d,%d,%d)", o.P, o.D, o.Q)
}

// Validate reports an error for negative components.
func (o Order) Validate() error {
	if o.P < 0 || o.D < 0 || o.Q < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidOrder, o)
	}
	return nil
}

// MinObservations returns the shortest series the order can be fitted to.
func (o Order) MinObservations() int {
	return o.P + o.D + o.Q + 10
}

// FitStats describes how the optimizer finished.
type FitStats struct {
	Iterations  int
	Evaluations int
	Status      string
}

// Model represents an ARIMA model.
type Model struct {
	Order     Order
	ARCoeffs  []float64 // AR coefficients (phi)
	MACoeffs  []float64 // MA coefficients (theta)
	Intercept float64   // Mean of the differenced series; zero when D > 0
	Variance  float64   // Residual variance
	AIC       float64
	AICc      float64 // Corrected AIC for small sample sizes
	BIC       float64
	LogLik    float64
	Stats     FitStats

	// MaxIterations caps optimizer iterations per Nelder-Mead run. Zero means
	// no cap: the fit stops on convergence or when the context is done.
	MaxIterations int

	fitted     bool
	data       *timeseries.Series
	diffData   *timeseries.Series
	residuals  []float64
	fittedVals []float64
	warnings   []string
}

// New creates a new ARIMA model with the specified order.
func New(p, d, q int) *Model {
	return NewWithOrder(Order{P: p, D: d, Q: q})
}

// NewWithOrder creates a new ARIMA model from an Order.
func NewWithOrder(order Order) *Model {
	return &Model{
		Order:    order,
		ARCoeffs: make([]float64, max(order.P, 0)),
		MACoeffs: make([]float64, max(order.Q, 0)),
	}
}

// Fit fits the ARIMA model to the given time series data.
func (m *Model) Fit(series *timeseries.Series) error {
	return m.FitContext(context.Background(), series)
}

// FitContext fits the model, abandoning the optimizer when ctx is done.
//
// The series is differenced D times inside the fit. Starting values come from
// the Hannan-Rissanen regressions and are refined by minimizing the conditional
// sum of squares with Nelder-Mead. The search runs over partial
// autocorrelations, so the AR part is always stationary and the MA part
// always invertible. Numerical warnings raised along the way are collected on
// the model instead of being reported.
func (m *Model) FitContext(ctx context.Context, series *timeseries.Series) error {
	m.fitted = false
	m.warnings = nil

	if err := m.Order.Validate(); err != nil {
		return err
	}
	if series == nil || series.Len() < m.Order.MinObservations() {
		n := 0
		if series != nil {
			n = series.Len()
		}
		return fmt.Errorf("%w: %s needs %d observations, got %d",
			ErrInsufficientData, m.Order, m.Order.MinObservations(), n)
	}
	if !series.IsFinite() {
		return fmt.Errorf("%w: series contains non-finite values", ErrInsufficientData)
	}

	diffSeries := series.DiffN(m.Order.D)
	scale := math.Max(1, math.Max(math.Abs(series.Min()), math.Abs(series.Max())))
	if diffSeries.Std() <= 1e-10*scale {
		return fmt.Errorf("%w: series is constant after %d differences", ErrInsufficientData, m.Order.D)
	}

	m.data = series.Copy()
	m.diffData = diffSeries
	m.Intercept = 0
	if m.Order.D == 0 {
		m.Intercept = diffSeries.Mean()
	}

	z := m.centered()
	params, err := m.estimate(ctx, z, m.initialEstimates(z))
	if err != nil {
		return err
	}

	p := m.Order.P
	m.ARCoeffs = append([]float64(nil), params[:p]...)
	m.MACoeffs = append([]float64(nil), params[p:]...)

	m.residuals = make([]float64, len(z))
	m.css(z, params, m.residuals)
	m.fittedVals = make([]float64, len(z))
	for t, v := range diffSeries.Values {
		m.fittedVals[t] = v - m.residuals[t]
	}

	m.calculateIC()
	m.checkRoots()

	m.fitted = true
	return nil
}

// Warnings returns the numerical warnings collected during the last fit.
func (m *Model) Warnings() []string {
	return append([]string(nil), m.warnings...)
}

func (m *Model) warn(format string, args ...any) {
	m.warnings = append(m.warnings, fmt.Sprintf(format, args...))
}

// centered returns the differenced values minus the intercept.
func (m *Model) centered() []float64 {
	z := make([]float64, m.diffData.Len())
	for i, v := range m.diffData.Values {
		z[i] = v - m.Intercept
	}
	return z
}

// css fills e with conditional residuals and returns their sum of squares.
// Residuals before index P are zero.
func (m *Model) css(z, params, e []float64) float64 {
	p, q := m.Order.P, m.Order.Q
	ar, ma := params[:p], params[p:p+q]

	sse := 0.0
	for t := range z {
		if t < p {
			e[t] = 0
			continue
		}
		pred := 0.0
		for i := 0; i < p; i++ {
			pred += ar[i] * z[t-i-1]
		}
		for j := 0; j < q && t-j-1 >= 0; j++ {
			pred += ma[j] * e[t-j-1]
		}
		e[t] = z[t] - pred
		sse += e[t] * e[t]
	}
	return sse
}

// initialEstimates runs the Hannan-Rissanen regressions: a long
// autoregression for innovation estimates, then a regression of z on its own
// lags and the lagged innovations.
func (m *Model) initialEstimates(z []float64) []float64 {
	p, q := m.Order.P, m.Order.Q
	x0 := make([]float64, p+q)
	if p+q == 0 {
		return x0
	}

	n := len(z)
	long := min(max(p, q), (n-1)/2)
	if long < 1 {
		m.warn("initial estimates: series too short for a long autoregression, starting from zero")
		return x0
	}

	phiLong, innovations, err := autoregress(z, long)
	if err != nil {
		m.warn("initial estimates: long autoregression failed (%v), starting from zero", err)
		return x0
	}
	copy(x0[:p], phiLong)

	if q > 0 {
		start := max(p, q)
		rows := n - start
		if rows <= p+q {
			m.warn("initial estimates: %d rows for %d regressors, using long autoregression", rows, p+q)
		} else {
			x := mat.NewDense(rows, p+q, nil)
			y := make([]float64, rows)
			for r := 0; r < rows; r++ {
				t := start + r
				y[r] = z[t]
				for i := 0; i < p; i++ {
					x.Set(r, i, z[t-i-1])
				}
				for j := 0; j < q; j++ {
					x.Set(r, p+j, innovations[t-j-1])
				}
			}
			if fit, err := stats.OLS(x, y); err != nil {
				m.warn("initial estimates: innovation regression failed (%v), using long autoregression", err)
			} else {
				copy(x0, fit.Coeffs)
			}
		}
	}

	// Start inside the stationary and invertible region.
	if shrinkRoots(x0[:p]) {
		m.warn("initial estimates: non-stationary AR start, shrinking roots")
	}
	if ma := negate(x0[p:]); shrinkRoots(ma) {
		m.warn("initial estimates: non-invertible MA start, shrinking roots")
		copy(x0[p:], negate(ma))
	}
	if e := make([]float64, n); !isFinite(m.css(z, x0, e)) {
		m.warn("initial estimates: non-finite residuals, starting from zero")
		clear(x0)
	}

	return x0
}

// autoregress fits an AR(k) by least squares and returns the coefficients and
// the residuals, zero before index k.
func autoregress(z []float64, k int) ([]float64, []float64, error) {
	n := len(z)
	rows := n - k
	if rows <= k {
		return nil, nil, stats.ErrSingular
	}

	x := mat.NewDense(rows, k, nil)
	y := make([]float64, rows)
	for r := 0; r < rows; r++ {
		t := k + r
		y[r] = z[t]
		for i := 0; i < k; i++ {
			x.Set(r, i, z[t-i-1])
		}
	}

	fit, err := stats.OLS(x, y)
	if err != nil {
		return nil, nil, err
	}

	residuals := make([]float64, n)
	copy(residuals[k:], fit.Residuals)
	return fit.Coeffs, residuals, nil
}

// estimate minimizes the conditional mean squared error from x0 and returns
// the fitted AR and MA coefficients.
func (m *Model) estimate(ctx context.Context, z, x0 []float64) ([]float64, error) {
	if len(x0) == 0 {
		return x0, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFittingFailure, err)
	}

	p := m.Order.P
	count := float64(len(z) - p)
	e := make([]float64, len(z))
	params := make([]float64, len(x0))
	problem := optimize.Problem{
		Func: func(u []float64) float64 {
			m.constrain(params, u)
			v := m.css(z, params, e) / count
			if !isFinite(v) {
				return penalty
			}
			return v
		},
	}

	u := append(unconstrain(x0[:p]), unconstrain(negate(x0[p:]))...)
	m.Stats = FitStats{}

	var best *optimize.Result
	for run := 0; run <= maxRestarts; run++ {
		result, err := optimize.Minimize(problem, u, m.settings(ctx, len(u)), &optimize.NelderMead{})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("%w: %w", ErrFittingFailure, ctxErr)
			}
			return nil, fmt.Errorf("%w: %v", ErrFittingFailure, err)
		}

		m.Stats.Iterations += result.Stats.MajorIterations
		m.Stats.Evaluations += result.Stats.FuncEvaluations
		m.Stats.Status = result.Status.String()

		switch result.Status {
		case optimize.Success, optimize.FunctionConvergence, optimize.MethodConverge,
			optimize.GradientThreshold, optimize.StepConvergence, optimize.FunctionThreshold:
		default:
			return nil, fmt.Errorf("%w: optimizer stopped with %s after %d iterations",
				ErrFittingFailure, result.Status, m.Stats.Iterations)
		}

		improved := best == nil || best.F-result.F > 1e-8*math.Abs(best.F)+1e-14
		if best == nil || result.F < best.F {
			best = result
		}
		if !improved {
			break
		}
		u = best.X
	}

	if best.F >= penalty || !isFinite(best.F) {
		return nil, fmt.Errorf("%w: no finite solution", ErrFittingFailure)
	}

	out := make([]float64, len(x0))
	m.constrain(out, best.X)
	return out, nil
}

// settings stops a Nelder-Mead run once the objective stalls, at the
// iteration cap if one is set, or at the context deadline.
func (m *Model) settings(ctx context.Context, dim int) *optimize.Settings {
	settings := &optimize.Settings{
		MajorIterations: max(m.MaxIterations, 0),
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-12,
			Relative:   1e-6,
			Iterations: max(100, 20*dim),
		},
		Recorder: contextRecorder{ctx: ctx},
	}
	if deadline, ok := ctx.Deadline(); ok {
		settings.Runtime = max(time.Until(deadline), time.Millisecond)
	}
	return settings
}

// constrain maps the unconstrained vector u onto AR and MA coefficients.
func (m *Model) constrain(dst, u []float64) {
	p := m.Order.P
	copy(dst[:p], stationary(u[:p]))
	for j, v := range stationary(u[p:]) {
		dst[p+j] = -v
	}
}

// stationary maps unconstrained values to the coefficients of a stationary
// autoregression. Each value becomes a partial autocorrelation in (-1, 1)
// and the Durbin-Levinson recursion builds the coefficients from them.
func stationary(u []float64) []float64 {
	phi := make([]float64, len(u))
	prev := make([]float64, len(u))
	for k, v := range u {
		r := v / math.Sqrt(1+v*v)
		copy(prev, phi[:k])
		for i := 0; i < k; i++ {
			phi[i] = prev[i] - r*prev[k-1-i]
		}
		phi[k] = r
	}
	return phi
}

// unconstrain inverts stationary for coefficients of a stationary
// autoregression.
func unconstrain(phi []float64) []float64 {
	cur := append([]float64(nil), phi...)
	u := make([]float64, len(phi))
	for k := len(phi) - 1; k >= 0; k-- {
		r := math.Max(-0.999, math.Min(0.999, cur[k]))
		u[k] = r / math.Sqrt(1-r*r)

		next := make([]float64, k)
		for i := range next {
			next[i] = (cur[i] + r*cur[k-1-i]) / (1 - r*r)
		}
		cur = next
	}
	return u
}

// shrinkRoots scales c in place so that every root of
// 1 - c[0]L - ... - c[k-1]L^k lies outside the unit circle, and reports
// whether it had to.
func shrinkRoots(c []float64) bool {
	r := maxRootModulus(c)
	if r < 0.99 {
		return false
	}
	if math.IsInf(r, 0) || math.IsNaN(r) {
		clear(c)
		return true
	}
	scale, f := 0.95/r, 1.0
	for i := range c {
		f *= scale
		c[i] *= f
	}
	return true
}

// contextRecorder stops the optimizer once ctx is done.
type contextRecorder struct {
	ctx context.Context
}

func (r contextRecorder) Init() error {
	return r.ctx.Err()
}

func (r contextRecorder) Record(*optimize.Location, optimize.Operation, *optimize.Stats) error {
	return r.ctx.Err()
}

// calculateIC calculates the variance, log-likelihood, AIC, AICc, and BIC
// from the conditional residuals.
func (m *Model) calculateIC() {
	resid := m.residuals[m.Order.P:]
	n := len(resid)
	k := m.Order.P + m.Order.Q + 1 // AR + MA + variance

	sse := 0.0
	for _, r := range resid {
		sse += r * r
	}

	if n > k {
		m.Variance = sse / float64(n-k)
	} else {
		m.Variance = sse / float64(n)
	}

	sigma2 := sse / float64(n)
	if sigma2 > 0 {
		m.LogLik = -float64(n) / 2 * (math.Log(2*math.Pi*sigma2) + 1)
	} else {
		m.LogLik = math.Inf(-1)
	}

	kf := float64(k)
	nf := float64(n)
	m.AIC = -2*m.LogLik + 2*kf
	if nf-kf-1 > 0 {
		m.AICc = m.AIC + 2*kf*(kf+1)/(nf-kf-1)
	} else {
		m.AICc = math.Inf(1)
	}
	m.BIC = -2*m.LogLik + kf*math.Log(nf)
}

// checkRoots records warnings for non-stationary AR or non-invertible MA estimates.
func (m *Model) checkRoots() {
	if r := maxRootModulus(m.ARCoeffs); r >= 1 {
		m.warn("non-stationary AR parameters (largest root modulus %.4f)", r)
	}
	if r := maxRootModulus(negate(m.MACoeffs)); r >= 1 {
		m.warn("non-invertible MA parameters (largest root modulus %.4f)", r)
	}
}

// maxRootModulus returns the largest eigenvalue modulus of the companion
// matrix of 1 - c[0]L - ... - c[k-1]L^k. Values below one mean all roots lie
// outside the unit circle.
func maxRootModulus(c []float64) float64 {
	k := len(c)
	if k == 0 {
		return 0
	}

	companion := mat.NewDense(k, k, nil)
	for j, v := range c {
		companion.Set(0, j, v)
	}
	for i := 1; i < k; i++ {
		companion.Set(i, i-1, 1)
	}

	var eig mat.Eigen
	if !eig.Factorize(companion, mat.EigenNone) {
		return math.Inf(1)
	}
	largest := 0.0
	for _, v := range eig.Values(nil) {
		largest = math.Max(largest, cmplx.Abs(v))
	}
	return largest
}

// Predict generates forecasts for the specified number of steps ahead on the
// original scale of the fitted series.
func (m *Model) Predict(steps int) ([]float64, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}
	if steps < 1 {
		return nil, fmt.Errorf("steps must be at least 1, got %d", steps)
	}

	p, q := m.Order.P, m.Order.Q
	z := m.centered()
	n := len(z)

	ext := make([]float64, n+steps)
	copy(ext, z)
	for h := 0; h < steps; h++ {
		t := n + h
		pred := 0.0
		for i := 0; i < p; i++ {
			pred += m.ARCoeffs[i] * ext[t-i-1]
		}
		// Future innovations have zero expectation.
		for j := 0; j < q; j++ {
			if k := t - j - 1; k < n {
				pred += m.MACoeffs[j] * m.residuals[k]
			}
		}
		ext[t] = pred
	}

	forecasts := make([]float64, steps)
	for h := range forecasts {
		forecasts[h] = ext[n+h] + m.Intercept
	}

	return m.integrate(forecasts), nil
}

// integrate undoes differencing, one level at a time, anchored on the last
// observation of each intermediate differenced series.
func (m *Model) integrate(forecasts []float64) []float64 {
	result := make([]float64, len(forecasts))
	copy(result, forecasts)

	for k := m.Order.D - 1; k >= 0; k-- {
		level := m.data.DiffN(k)
		last := level.Values[level.Len()-1]
		for h := range result {
			last += result[h]
			result[h] = last
		}
	}

	return result
}

// Residuals returns the conditional residuals, one per differenced
// observation after the first P.
func (m *Model) Residuals() []float64 {
	if !m.fitted {
		return nil
	}
	return append([]float64(nil), m.residuals[m.Order.P:]...)
}

// FittedValues returns the in-sample one-step predictions on the differenced scale.
func (m *Model) FittedValues() []float64 {
	if !m.fitted {
		return nil
	}
	return append([]float64(nil), m.fittedVals...)
}

// Summary describes a fitted model.
type Summary struct {
	Order     Order
	ARCoeffs  []float64
	MACoeffs  []float64
	Intercept float64
	Variance  float64
	AIC       float64
	AICc      float64 // Corrected AIC
	BIC       float64
	LogLik    float64
	NObs      int
	Stats     FitStats
	LjungBox  *stats.LjungBoxResult
	Warnings  []string
}

// ljungBoxLags tests at least 10 lags and always more than the ARMA terms.
func (m *Model) ljungBoxLags() int {
	return max(10, m.Order.P+m.Order.Q+5)
}

// Summary returns a summary of the fitted model.
func (m *Model) Summary() *Summary {
	if !m.fitted {
		return nil
	}

	return &Summary{
		Order:     m.Order,
		ARCoeffs:  append([]float64(nil), m.ARCoeffs...),
		MACoeffs:  append([]float64(nil), m.MACoeffs...),
		Intercept: m.Intercept,
		Variance:  m.Variance,
		AIC:       m.AIC,
		AICc:      m.AICc,
		BIC:       m.BIC,
		LogLik:    m.LogLik,
		NObs:      m.data.Len(),
		Stats:     m.Stats,
		LjungBox:  stats.LjungBox(m.Residuals(), m.ljungBoxLags(), m.Order.P+m.Order.Q),
		Warnings:  m.Warnings(),
	}
}

func negate(c []float64) []float64 {
	out := make([]float64, len(c))
	for i, v := range c {
		out[i] = -v
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
