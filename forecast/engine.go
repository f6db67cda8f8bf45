package forecast

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sartorproj/tfpforecast/arima"
	"github.com/sartorproj/tfpforecast/timeseries"
)

// Model order used for every country. The values were chosen empirically
// from the correlograms of the historical tfp series and are not tuned per
// series. See OrderPolicy for per-series selection.
const (
	TFPAROrder   = 20
	TFPDiffOrder = 2
	TFPMAOrder   = 2
)

// TFPOrder is ARIMA(20,2,2).
var TFPOrder = arima.Order{P: TFPAROrder, D: TFPDiffOrder, Q: TFPMAOrder}

// Horizon is the number of years forecast past the last observation.
const Horizon = 31

// OrderPolicy chooses the model order for a series.
type OrderPolicy interface {
	Order(series *timeseries.Series) arima.Order
}

// FixedOrder returns the same order for every series.
type FixedOrder arima.Order

// Order implements OrderPolicy.
func (f FixedOrder) Order(*timeseries.Series) arima.Order {
	return arima.Order(f)
}

// MinObservations returns the shortest series that can be fitted with order.
func MinObservations(order arima.Order) int {
	return order.MinObservations()
}

// Engine fits a model to one series and projects it forward.
// The zero value forecasts Horizon years with TFPOrder and no time limit.
type Engine struct {
	Policy        OrderPolicy   // Defaults to FixedOrder(TFPOrder)
	Horizon       int           // Defaults to Horizon
	Timeout       time.Duration // Time budget per fit, zero for none
	MaxIterations int           // Optimizer iteration cap, zero for the model default
}

// NewEngine returns an Engine for ARIMA(20,2,2) with a 31-year horizon.
func NewEngine() *Engine {
	return &Engine{Policy: FixedOrder(TFPOrder), Horizon: Horizon}
}

func (e *Engine) order(series *timeseries.Series) arima.Order {
	if e.Policy == nil {
		return TFPOrder
	}
	return e.Policy.Order(series)
}

func (e *Engine) horizon() int {
	if e.Horizon <= 0 {
		return Horizon
	}
	return e.Horizon
}

// Fit validates series and fits a model to it. Differencing happens inside
// the model. Numerical warnings stay on the returned model.
func (e *Engine) Fit(ctx context.Context, series *timeseries.Series) (*arima.Model, error) {
	country := series.Name
	order := e.order(series)

	if n, need := series.Len(), MinObservations(order); n < need {
		return nil, newError(ErrInsufficientData, country,
			fmt.Errorf("%d observations, %s needs at least %d", n, order, need))
	}

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	model := arima.NewWithOrder(order)
	model.MaxIterations = e.MaxIterations
	if err := model.FitContext(ctx, series); err != nil {
		switch {
		case errors.Is(err, arima.ErrInsufficientData):
			return model, newError(ErrInsufficientData, country, err)
		case errors.Is(err, context.DeadlineExceeded):
			return model, newError(ErrFittingFailure, country, fmt.Errorf("time budget of %s exceeded: %w", e.Timeout, err))
		default:
			return model, newError(ErrFittingFailure, country, err)
		}
	}

	return model, nil
}

// Forecast fits series and returns the next Horizon values as a series whose
// periods run from the last observed year plus one.
func (e *Engine) Forecast(ctx context.Context, series *timeseries.Series) (*timeseries.Series, error) {
	out, _, err := e.forecast(ctx, series)
	return out, err
}

func (e *Engine) forecast(ctx context.Context, series *timeseries.Series) (*timeseries.Series, *arima.Model, error) {
	model, err := e.Fit(ctx, series)
	if err != nil {
		return nil, model, err
	}

	values, err := model.Predict(e.horizon())
	if err != nil {
		return nil, model, newError(ErrFittingFailure, series.Name, err)
	}
	for _, v := range values {
		if !finite(v) {
			return nil, model, newError(ErrFittingFailure, series.Name, errors.New("forecast is not finite"))
		}
	}

	return series.Extend(series.Name, values), model, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
