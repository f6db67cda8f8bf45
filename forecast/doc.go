// Package forecast projects the agricultural total factor productivity (tfp)
// index of up to three countries 31 years ahead.
//
// Each country's (year, tfp) series is extracted from the dataset, fitted
// with an ARIMA(20,2,2) model and forecast for the years following its last
// observation. The order is fixed (see TFPOrder); an OrderPolicy can replace
// it without changing the API.
//
//	orch := forecast.NewOrchestrator(table, forecast.NewEngine(),
//	    forecast.WithLogger(logger))
//	results, err := orch.Run(ctx, []string{"France", "Chile"})
//	switch {
//	case errors.Is(err, forecast.ErrUnknownCountries):
//	    var fe *forecast.Error
//	    errors.As(err, &fe)
//	    fmt.Println("known:", fe.Known)
//	case err != nil:
//	    return err
//	}
//
// Nothing is cached: every run refits from the dataset, and the same input
// always yields the same forecast. The package never prints; fit warnings and
// progress go to the optional logger at debug level.
package forecast
