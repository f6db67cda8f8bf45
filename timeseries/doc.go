// Package timeseries provides annual time series data structures and utilities.
//
// A Series holds one value per integer period (a year) in strictly increasing
// order. Gaps between periods are allowed and are not interpolated.
//
// # Creating a Series
//
// Create a series from explicit periods:
//
//	series, err := timeseries.NewWithPeriods(
//	    []int{2015, 2016, 2017},
//	    []float64{1.02, 1.05, 1.09},
//	)
//
// Or from unordered points:
//
//	series, err := timeseries.FromPoints("France", points)
//
// # Loading from CSV
//
// Load one entity's column from a long-format CSV:
//
//	opts := timeseries.DefaultCSVOptions()
//	opts.IDColumn, opts.IDFilter = "Entity", "France"
//	opts.ValueColumn = "tfp"
//	series, err := timeseries.LoadCSV("data.csv", opts)
//
// # Transformations
//
//	diff := series.Diff()     // First difference
//	diff2 := series.DiffN(2)  // Second difference
//	next := series.Extend("France (forecast)", values) // Continue after the last period
package timeseries
