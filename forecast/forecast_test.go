package forecast

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/tfpforecast/dataset"
	"github.com/sartorproj/tfpforecast/timeseries"
)

// tfpPath returns an uneven productivity path from start to end with
// reproducible noise.
func tfpPath(n int, start, end, phase float64) []float64 {
	state := uint32(7 + 1000*phase)
	values := make([]float64, n)
	for i := range values {
		state = state*1664525 + 1013904223
		shock := float64(state>>8)/float64(1<<23) - 1

		x := float64(i) / float64(n-1)
		values[i] = start + (end-start)*math.Pow(x, 1.3) +
			0.02*math.Sin(float64(i)/2+phase) + 0.01*shock
	}
	return values
}

func rowsFor(country string, firstYear int, values []float64) []dataset.Row {
	rows := make([]dataset.Row, len(values))
	for i, v := range values {
		rows[i] = dataset.Row{
			Entity: country,
			Year:   firstYear + i,
			Values: map[string]float64{dataset.TFPColumn: v},
		}
	}
	return rows
}

func testTable(t *testing.T) *dataset.Table {
	t.Helper()

	var rows []dataset.Row
	rows = append(rows, rowsFor("France", 1961, tfpPath(59, 0.5, 1.8, 0))...)
	rows = append(rows, rowsFor("Chile", 1961, tfpPath(59, 0.4, 1.5, 1))...)
	rows = append(rows, rowsFor("Tuvalu", 1990, tfpPath(20, 0.8, 1.0, 2))...)
	// A country without any tfp values.
	rows = append(rows, dataset.Row{Entity: "Nauru", Year: 2000, Values: map[string]float64{"land_quantity": 1}})

	table, err := dataset.NewTable([]string{dataset.TFPColumn, "land_quantity"}, rows)
	require.NoError(t, err)
	return table
}

func TestExtract(t *testing.T) {
	table := testTable(t)

	series := Extract("France", table)
	assert.Equal(t, "France", series.Name)
	assert.Equal(t, 59, series.Len())
	assert.Equal(t, 1961, series.Periods[0])
	assert.Equal(t, 2019, series.Periods[58])
	assert.InDelta(t, 0.5, series.Values[0], 0.05)

	assert.Equal(t, 0, Extract("Atlantis", table).Len())
	assert.Equal(t, 0, Extract("Nauru", table).Len())

	// Modifying the series leaves the table untouched.
	series.Values[0] = 42
	again := Extract("France", table)
	assert.NotEqual(t, 42.0, again.Values[0])
}

func TestExtractSkipsMissing(t *testing.T) {
	rows := rowsFor("Peru", 2000, []float64{1, 2, 3})
	delete(rows[1].Values, dataset.TFPColumn)
	table, err := dataset.NewTable([]string{dataset.TFPColumn}, rows)
	require.NoError(t, err)

	series := Extract("Peru", table)
	assert.Equal(t, []int{2000, 2002}, series.Periods)
	assert.Equal(t, []float64{1, 3}, series.Values)
}

func TestTFPOrder(t *testing.T) {
	assert.Equal(t, 20, TFPOrder.P)
	assert.Equal(t, 2, TFPOrder.D)
	assert.Equal(t, 2, TFPOrder.Q)
	assert.Equal(t, 34, MinObservations(TFPOrder))
	assert.Equal(t, TFPOrder, FixedOrder(TFPOrder).Order(nil))
}

func TestEngineForecastFrance(t *testing.T) {
	series := Extract("France", testTable(t))

	out, err := NewEngine().Forecast(context.Background(), series)
	require.NoError(t, err)

	require.Equal(t, Horizon, out.Len())
	assert.Equal(t, 2020, out.Periods[0])
	assert.Equal(t, 2050, out.Periods[Horizon-1])
	for i := 1; i < out.Len(); i++ {
		assert.Equal(t, out.Periods[i-1]+1, out.Periods[i])
	}
	for _, v := range out.Values {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
	}
	assert.Equal(t, "France", out.Name)
}

func TestEngineDeterministic(t *testing.T) {
	series := Extract("Chile", testTable(t))
	engine := NewEngine()

	first, err := engine.Forecast(context.Background(), series)
	require.NoError(t, err)
	second, err := engine.Forecast(context.Background(), series.Copy())
	require.NoError(t, err)

	assert.Equal(t, first.Values, second.Values)
	assert.Equal(t, first.Periods, second.Periods)
}

func TestEngineInsufficientData(t *testing.T) {
	engine := NewEngine()
	full := Extract("France", testTable(t))
	need := MinObservations(TFPOrder)
	oneShort, err := timeseries.NewWithPeriods(full.Periods[:need-1], full.Values[:need-1])
	require.NoError(t, err)

	tests := []struct {
		name   string
		series *timeseries.Series
	}{
		{name: "empty", series: &timeseries.Series{Name: "Nauru"}},
		{name: "one below minimum", series: oneShort},
		{name: "short", series: Extract("Tuvalu", testTable(t))},
		{name: "straight line", series: timeseries.New(func() []float64 {
			v := make([]float64, 50)
			for i := range v {
				v[i] = float64(i)
			}
			return v
		}())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Forecast(context.Background(), tt.series)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInsufficientData)
			assert.NotErrorIs(t, err, ErrFittingFailure)
		})
	}
}

func TestEngineFittingFailure(t *testing.T) {
	series := Extract("France", testTable(t))

	engine := NewEngine()
	engine.MaxIterations = 1
	_, err := engine.Forecast(context.Background(), series)
	assert.ErrorIs(t, err, ErrFittingFailure)

	var fe *Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "France", fe.Country)
}

func TestEngineTimeBudget(t *testing.T) {
	series := Extract("France", testTable(t))

	engine := NewEngine()
	engine.Timeout = time.Nanosecond
	_, err := engine.Forecast(context.Background(), series)
	assert.ErrorIs(t, err, ErrFittingFailure)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestEngineFit(t *testing.T) {
	series := Extract("France", testTable(t))

	model, err := NewEngine().Fit(context.Background(), series)
	require.NoError(t, err)
	summary := model.Summary()
	require.NotNil(t, summary)
	assert.Equal(t, TFPOrder, summary.Order)
	assert.Equal(t, 59, summary.NObs)
}

func TestOrchestratorFiltersUnknown(t *testing.T) {
	orch := NewOrchestrator(testTable(t), nil)

	results, err := orch.Run(context.Background(), []string{"France", "Atlantis"})
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, "France", r.Country)
	assert.Equal(t, 59, r.Historical.Len())
	assert.Equal(t, Horizon, r.Forecast.Len())
	assert.Equal(t, 2020, r.Forecast.Periods[0])
	assert.Equal(t, 2050, r.Forecast.Periods[Horizon-1])

	historical, projected := r.Points()
	assert.Len(t, historical, 59)
	assert.Len(t, projected, Horizon)
}

func TestOrchestratorKeepsInputOrder(t *testing.T) {
	table := testTable(t)
	countries := []string{"Chile", "Atlantis", "France"}

	for _, n := range []int{1, 3} {
		results, err := NewOrchestrator(table, nil, WithConcurrency(n)).Run(context.Background(), countries)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "Chile", results[0].Country)
		assert.Equal(t, "France", results[1].Country)
	}
}

func TestOrchestratorTooManyCountries(t *testing.T) {
	orch := NewOrchestrator(testTable(t), nil)

	tests := [][]string{
		{"France", "Chile", "Tuvalu", "Nauru"},
		{"Atlantis", "Lemuria", "Mu", "Hyperborea"},
		{"France", "Atlantis", "Atlantis", "Mu", "Chile"},
	}
	for _, countries := range tests {
		_, err := orch.Run(context.Background(), countries)
		assert.ErrorIs(t, err, ErrTooManyCountries, "%v", countries)
	}
}

func TestOrchestratorUnknownCountries(t *testing.T) {
	table := testTable(t)
	orch := NewOrchestrator(table, nil)

	for _, countries := range [][]string{{"Atlantis"}, {"Atlantis", "Mu"}, {}, nil} {
		_, err := orch.Run(context.Background(), countries)
		require.ErrorIs(t, err, ErrUnknownCountries)

		var fe *Error
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, table.Countries(), fe.Known)
		for _, c := range table.Countries() {
			assert.Contains(t, err.Error(), c)
		}
	}
}

func TestOrchestratorInvalidArgument(t *testing.T) {
	orch := NewOrchestrator(testTable(t), nil)

	for _, countries := range [][]string{{""}, {"France", "  "}, {"", "a", "b", "c"}} {
		_, err := orch.Run(context.Background(), countries)
		assert.ErrorIs(t, err, ErrInvalidArgument, "%q", countries)
	}
}

func TestOrchestratorPropagatesFailures(t *testing.T) {
	orch := NewOrchestrator(testTable(t), nil)

	_, err := orch.Run(context.Background(), []string{"France", "Tuvalu"})
	assert.ErrorIs(t, err, ErrInsufficientData)

	var fe *Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "Tuvalu", fe.Country)
}

func TestOrchestratorObserver(t *testing.T) {
	var seen []string
	orch := NewOrchestrator(testTable(t), nil, WithObserver(func(country string, _ time.Duration, err error) {
		assert.NoError(t, err)
		seen = append(seen, country)
	}))

	_, err := orch.Run(context.Background(), []string{"France"})
	require.NoError(t, err)
	assert.Equal(t, []string{"France"}, seen)
}

func TestEngineForecastsSeededSeries(t *testing.T) {
	engine := NewEngine()

	for seed := uint32(1); seed <= 10; seed++ {
		state := seed
		values := make([]float64, 59)
		for i := range values {
			state = state*1664525 + 1013904223
			shock := float64(state>>8)/float64(1<<23) - 1
			x := float64(i) / 58
			values[i] = 0.5 + 1.3*x + 0.05*math.Sin(float64(i)/3+float64(seed)) + 0.03*shock
		}
		series, err := timeseries.FromPoints("Country", pointsFrom(1961, values))
		require.NoError(t, err)

		projected, model, err := engine.forecast(context.Background(), series)
		require.NoError(t, err, "seed %d", seed)
		assert.Equal(t, Horizon, projected.Len(), "seed %d", seed)
		assert.Equal(t, 2020, projected.Periods[0], "seed %d", seed)
		assert.Equal(t, 2050, projected.Periods[Horizon-1], "seed %d", seed)
		assert.Empty(t, rootWarnings(model.Warnings()), "seed %d", seed)
	}
}

func pointsFrom(firstYear int, values []float64) []timeseries.Point {
	points := make([]timeseries.Point, len(values))
	for i, v := range values {
		points[i] = timeseries.Point{Period: firstYear + i, Value: v}
	}
	return points
}

// rootWarnings keeps the warnings about non-stationary or non-invertible estimates.
func rootWarnings(warnings []string) []string {
	var out []string
	for _, w := range warnings {
		if strings.Contains(w, "non-stationary AR parameters") || strings.Contains(w, "non-invertible MA parameters") {
			out = append(out, w)
		}
	}
	return out
}
