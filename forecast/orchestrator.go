package forecast

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/sartorproj/tfpforecast/timeseries"
)

// MaxCountries is the largest selection Run accepts.
const MaxCountries = 3

// Result is the forecast of one country.
type Result struct {
	Country    string
	Historical *timeseries.Series
	Forecast   *timeseries.Series
}

// Points returns the historical and forecast (year, value) pairs.
func (r Result) Points() (historical, forecast []timeseries.Point) {
	return r.Historical.Points(), r.Forecast.Points()
}

// FitObserver is told the outcome of every fit.
type FitObserver func(country string, elapsed time.Duration, err error)

// Orchestrator validates a country selection and forecasts each country.
type Orchestrator struct {
	data        Dataset
	engine      *Engine
	concurrency int
	logger      *slog.Logger
	observer    FitObserver
	validate    *validator.Validate
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithConcurrency fits up to n countries at once. Results keep input order.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver registers fn to be called after each fit.
func WithObserver(fn FitObserver) Option {
	return func(o *Orchestrator) {
		o.observer = fn
	}
}

// selection is the validated shape of a Run request.
type selection struct {
	Countries []string `validate:"dive,notblank"`
}

// NewOrchestrator returns an Orchestrator over data. A nil engine uses NewEngine.
func NewOrchestrator(data Dataset, engine *Engine, opts ...Option) *Orchestrator {
	if engine == nil {
		engine = NewEngine()
	}

	v := validator.New()
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	o := &Orchestrator{
		data:        data,
		engine:      engine,
		concurrency: 1,
		logger:      slog.New(slog.DiscardHandler),
		validate:    v,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run forecasts every known country in countries.
//
// Checks happen in this order: every name must be non-blank
// (ErrInvalidArgument); at most MaxCountries names may be requested, counted
// before unknown names are dropped (ErrTooManyCountries); at least one name
// must be a known country (ErrUnknownCountries, listing the known ones).
// The count limit comes before the known-country filter, so four unknown
// names fail with ErrTooManyCountries, not ErrUnknownCountries.
// Results follow the input order. The first failing country, in input
// order, fails the whole run.
func (o *Orchestrator) Run(ctx context.Context, countries []string) ([]Result, error) {
	if err := o.validate.Struct(selection{Countries: countries}); err != nil {
		return nil, newError(ErrInvalidArgument, "", err)
	}
	if len(countries) > MaxCountries {
		return nil, newError(ErrTooManyCountries, "",
			fmt.Errorf("requested %d countries, at most %d are allowed", len(countries), MaxCountries))
	}

	var selected []string
	for _, c := range countries {
		if o.data.HasCountry(c) {
			selected = append(selected, c)
		} else {
			o.logger.DebugContext(ctx, "skipping unknown country", "country", c)
		}
	}
	if len(selected) == 0 {
		return nil, &Error{Kind: ErrUnknownCountries, Known: o.data.Countries()}
	}

	results := make([]Result, len(selected))
	errs := make([]error, len(selected))

	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for i, country := range selected {
		g.Go(func() error {
			results[i], errs[i] = o.forecastCountry(ctx, country)
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (o *Orchestrator) forecastCountry(ctx context.Context, country string) (Result, error) {
	historical := Extract(country, o.data)
	o.logger.DebugContext(ctx, "fitting country",
		"country", country,
		"observations", historical.Len(),
		"order", o.engine.order(historical).String())

	start := time.Now()
	projected, model, err := o.engine.forecast(ctx, historical)
	elapsed := time.Since(start)

	if model != nil {
		for _, w := range model.Warnings() {
			o.logger.DebugContext(ctx, "fit warning", "country", country, "warning", w)
		}
	}
	if o.observer != nil {
		o.observer(country, elapsed, err)
	}
	if err != nil {
		o.logger.DebugContext(ctx, "fit failed", "country", country, "error", err, "duration", elapsed)
		return Result{}, err
	}

	o.logger.DebugContext(ctx, "fit finished",
		"country", country,
		"duration", elapsed,
		"iterations", model.Stats.Iterations)
	return Result{Country: country, Historical: historical, Forecast: projected}, nil
}
