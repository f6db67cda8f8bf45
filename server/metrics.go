package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sartorproj/tfpforecast/forecast"
)

// Metrics holds the forecasting metrics in a private registry.
type Metrics struct {
	registry *prometheus.Registry
	fits     *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetrics registers the forecasting and Go runtime collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tfp_forecast_fits_total",
			Help: "Model fits by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tfp_forecast_fit_duration_seconds",
			Help:    "Time spent fitting and forecasting one country.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
	}
	m.registry.MustRegister(m.fits, m.duration, collectors.NewGoCollector())
	return m
}

// Observe records one fit. It matches forecast.FitObserver.
func (m *Metrics) Observe(_ string, elapsed time.Duration, err error) {
	m.fits.WithLabelValues(outcome(err)).Inc()
	m.duration.Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, forecast.ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, forecast.ErrFittingFailure):
		return "fitting_failure"
	default:
		return "error"
	}
}
