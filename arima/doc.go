// Package arima implements AutoRegressive Integrated Moving Average (ARIMA) models.
//
// An ARIMA(p,d,q) model combines:
//   - AR(p): AutoRegressive component with p lags
//   - I(d): Integration (differencing) of order d
//   - MA(q): Moving Average component with q lags
//
// # Basic Usage
//
// Create and fit an ARIMA model:
//
//	model := arima.New(20, 2, 2)
//
//	// Differencing happens inside Fit
//	if err := model.FitContext(ctx, series); err != nil {
//	    if errors.Is(err, arima.ErrInsufficientData) {
//	        // series too short or degenerate
//	    }
//	    return err
//	}
//
//	// Forecasts on the original scale
//	forecasts, _ := model.Predict(31)
//
// # Estimation
//
// Starting values come from the Hannan-Rissanen regressions (a long
// autoregression supplies innovation estimates, then the series is regressed
// on its own lags and the lagged innovations). The conditional sum of squares
// is then minimized with gonum's Nelder-Mead. The optimizer stopping on an
// iteration, evaluation, or runtime limit is reported as ErrFittingFailure,
// as is a cancelled context. Fits are deterministic: the same series always
// yields the same parameters.
//
// # Warnings
//
// Numerical warnings (non-stationary AR estimates, fallback starting values)
// are collected on the model and never printed:
//
//	for _, w := range model.Warnings() {
//	    logger.Debug("fit warning", "warning", w)
//	}
//
// # Residual Analysis
//
//	summary := model.Summary()
//	fmt.Printf("AIC: %.2f, Ljung-Box p: %.3f\n", summary.AIC, summary.LjungBox.PValue)
package arima
