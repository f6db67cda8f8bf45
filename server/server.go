// Package server exposes country listing and forecasting over HTTP.
package server

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"gonum.org/v1/plot/vg"

	"github.com/sartorproj/tfpforecast/config"
	"github.com/sartorproj/tfpforecast/export"
	"github.com/sartorproj/tfpforecast/forecast"
	"github.com/sartorproj/tfpforecast/logging"
	"github.com/sartorproj/tfpforecast/render"
	"github.com/sartorproj/tfpforecast/timeseries"
)

// RunIDHeader carries the run id of each request.
const RunIDHeader = "X-Run-ID"

// Options configures a Server.
type Options struct {
	Server      config.ServerConfig
	Output      config.OutputConfig
	Concurrency int
	Logger      *slog.Logger
}

// Server is the HTTP front end of the forecaster.
type Server struct {
	app     *fiber.App
	data    forecast.Dataset
	engine  *forecast.Engine
	opts    Options
	logger  *slog.Logger
	metrics *Metrics
}

// New builds the server and its routes.
func New(data forecast.Dataset, engine *forecast.Engine, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		data:    data,
		engine:  engine,
		opts:    opts,
		logger:  logger.With("component", "server"),
		metrics: NewMetrics(),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "tfpforecast",
		ReadTimeout:           opts.Server.ReadTimeout,
		WriteTimeout:          opts.Server.WriteTimeout,
		DisableStartupMessage: true,
	})
	s.app.Use(s.requestLogger)

	s.app.Get("/healthz", s.health)
	s.app.Get("/countries", s.countries)
	s.app.Post("/forecast", s.forecast)
	s.app.Get("/metrics", adaptor.HTTPHandler(s.metrics.Handler()))

	return s
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run listens on the configured address until ctx is done, then shuts down.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(s.opts.Server.Addr())
	}()
	s.logger.InfoContext(ctx, "server listening", "addr", s.opts.Server.Addr())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.InfoContext(ctx, "server shutting down")
		return s.app.ShutdownWithTimeout(s.opts.Server.ShutdownTimeout)
	}
}

func (s *Server) requestLogger(c *fiber.Ctx) error {
	runID := c.Get(RunIDHeader)
	if runID == "" {
		runID = logging.NewRunID()
	}
	ctx := logging.WithRunID(c.UserContext(), runID)
	c.SetUserContext(ctx)
	c.Set(RunIDHeader, runID)

	start := time.Now()
	err := c.Next()
	s.logger.InfoContext(ctx, "request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"duration", time.Since(start))
	return err
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) countries(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"countries": s.data.Countries()})
}

// forecastRequest is the POST /forecast body.
type forecastRequest struct {
	Countries *[]string `json:"countries"`
}

type pointJSON struct {
	Year int     `json:"year"`
	TFP  float64 `json:"tfp"`
}

type resultJSON struct {
	Country    string      `json:"country"`
	Historical []pointJSON `json:"historical"`
	Forecast   []pointJSON `json:"forecast"`
}

// forecast runs the orchestrator. The format query parameter selects json
// (default), csv, xlsx or png output.
func (s *Server) forecast(c *fiber.Ctx) error {
	var req forecastRequest
	if err := c.BodyParser(&req); err != nil || req.Countries == nil {
		return s.fail(c, &forecast.Error{
			Kind: forecast.ErrInvalidArgument,
			Err:  errors.New(`body must be {"countries": [string, ...]}`),
		})
	}

	orch := forecast.NewOrchestrator(s.data, s.engine,
		forecast.WithConcurrency(s.opts.Concurrency),
		forecast.WithLogger(s.logger),
		forecast.WithObserver(s.metrics.Observe))

	results, err := orch.Run(c.UserContext(), *req.Countries)
	if err != nil {
		return s.fail(c, err)
	}

	switch c.Query("format", "json") {
	case "csv":
		var buf bytes.Buffer
		if err := export.CSV(&buf, results); err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, "text/csv")
		return c.Send(buf.Bytes())

	case "xlsx":
		var buf bytes.Buffer
		if err := export.WriteWorkbook(results, &buf); err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		return c.Send(buf.Bytes())

	case "png":
		p, err := render.ForecastChart(results, render.Options{})
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		width := vg.Length(s.opts.Output.ChartWidth) * vg.Inch
		height := vg.Length(s.opts.Output.ChartHeight) * vg.Inch
		if err := render.WriteTo(p, &buf, "png", width, height); err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, "image/png")
		return c.Send(buf.Bytes())

	case "json":
		out := make([]resultJSON, len(results))
		for i, r := range results {
			hist, proj := r.Points()
			out[i] = resultJSON{Country: r.Country, Historical: toJSON(hist), Forecast: toJSON(proj)}
		}
		return c.JSON(fiber.Map{"results": out})

	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid_argument",
			"message": "format must be json, csv, xlsx or png",
		})
	}
}

// fail maps forecasting errors onto HTTP statuses.
func (s *Server) fail(c *fiber.Ctx, err error) error {
	status, kind := fiber.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, forecast.ErrInvalidArgument):
		status, kind = fiber.StatusBadRequest, "invalid_argument"
	case errors.Is(err, forecast.ErrTooManyCountries):
		status, kind = fiber.StatusBadRequest, "too_many_countries"
	case errors.Is(err, forecast.ErrUnknownCountries):
		status, kind = fiber.StatusNotFound, "unknown_countries"
	case errors.Is(err, forecast.ErrInsufficientData):
		status, kind = fiber.StatusUnprocessableEntity, "insufficient_data"
	case errors.Is(err, forecast.ErrFittingFailure):
		status, kind = fiber.StatusInternalServerError, "fitting_failure"
	}

	body := fiber.Map{"error": kind, "message": err.Error()}
	var fe *forecast.Error
	if errors.As(err, &fe) && fe.Kind == forecast.ErrUnknownCountries {
		body["known_countries"] = fe.Known
	}

	s.logger.WarnContext(c.UserContext(), "forecast request failed", "status", status, "error", err)
	return c.Status(status).JSON(body)
}

func toJSON(points []timeseries.Point) []pointJSON {
	out := make([]pointJSON, len(points))
	for i, p := range points {
		out[i] = pointJSON{Year: p.Period, TFP: p.Value}
	}
	return out
}
