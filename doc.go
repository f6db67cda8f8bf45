// Package tfpforecast forecasts agricultural total factor productivity (TFP)
// per country.
//
// Historical TFP comes from the Our World in Data copy of the USDA
// agricultural productivity dataset. Each requested country's series is
// fitted with an ARIMA(20,2,2) model and projected 31 years past its last
// observation.
//
// # Quick Start
//
//	table, _ := dataset.Open(ctx, dataset.Options{CachePath: "downloads/data.csv"})
//	orch := forecast.NewOrchestrator(table, forecast.NewEngine())
//	results, err := orch.Run(ctx, []string{"France", "Chile"})
//
// # Packages
//
//   - timeseries: year-indexed series and differencing
//   - stats: correlograms, stationarity and residual tests
//   - arima: ARIMA(p,d,q) estimation and prediction
//   - dataset: download, parsing and SQLite storage of the dataset
//   - forecast: series extraction, the forecast engine and the orchestrator
//   - render: forecast and output charts
//   - export: Excel and CSV export of forecasts
//   - config, logging: application configuration and structured logs
//   - server: HTTP API with Prometheus metrics
//
// The tfpforecast command in cmd/tfpforecast wires these together.
//
// # References
//
//   - Hyndman, R.J., & Athanasopoulos, G. (2021). Forecasting: Principles and Practice
//   - Box, G. E. P., & Jenkins, G. M. (1976). Time Series Analysis: Forecasting and Control
package tfpforecast
