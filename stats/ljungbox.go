package stats

import (
	"gonum.org/v1/gonum/stat/distuv"
)

// LjungBoxResult represents the result of a Ljung-Box test.
type LjungBoxResult struct {
	Statistic float64
	PValue    float64
	Lags      int
	DOF       int // Degrees of freedom
}

// Rejected reports whether residual autocorrelation is significant at alpha.
func (r *LjungBoxResult) Rejected(alpha float64) bool {
	return r.PValue < alpha
}

// LjungBox tests residuals for autocorrelation up to the given lag.
// fitdf is the number of estimated ARMA parameters (p + q); the chi-squared
// reference keeps at least one degree of freedom. Returns nil for fewer than
// ten residuals.
func LjungBox(residuals []float64, lags, fitdf int) *LjungBoxResult {
	n := len(residuals)
	if n < 10 || lags < 1 {
		return nil
	}
	lags = min(lags, n-1)

	r := ACFValues(residuals, lags)
	if r == nil {
		return nil
	}

	nf := float64(n)
	var q float64
	for k, rk := range r[1:] {
		q += rk * rk / (nf - float64(k+1))
	}
	q *= nf * (nf + 2)

	dof := max(lags-fitdf, 1)
	return &LjungBoxResult{
		Statistic: q,
		PValue:    distuv.ChiSquared{K: float64(dof)}.Survival(q),
		Lags:      lags,
		DOF:       dof,
	}
}
