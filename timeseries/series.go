// Package timeseries provides core time series data structures and operations.
package timeseries

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrLengthMismatch is returned when periods and values differ in length.
var ErrLengthMismatch = errors.New("periods and values must have the same length")

// ErrUnordered is returned when periods are not strictly increasing.
var ErrUnordered = errors.New("periods must be strictly increasing")

// Point is a single (period, value) observation.
type Point struct {
	Period int
	Value  float64
}

// Series represents an annual time series: one value per integer period (year).
type Series struct {
	Periods []int
	Values  []float64
	Name    string
}

// New creates a series from values with periods 0..n-1.
func New(values []float64) *Series {
	periods := make([]int, len(values))
	for i := range periods {
		periods[i] = i
	}
	return &Series{
		Periods: periods,
		Values:  values,
	}
}

// NewWithPeriods creates a series with explicit periods.
// Periods must be strictly increasing.
func NewWithPeriods(periods []int, values []float64) (*Series, error) {
	if len(periods) != len(values) {
		return nil, ErrLengthMismatch
	}
	for i := 1; i < len(periods); i++ {
		if periods[i] <= periods[i-1] {
			return nil, ErrUnordered
		}
	}
	return &Series{
		Periods: periods,
		Values:  values,
	}, nil
}

// FromPoints builds a series from points, sorting them by period.
// Duplicate periods are rejected.
func FromPoints(name string, points []Point) (*Series, error) {
	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Period < sorted[j].Period })

	periods := make([]int, len(sorted))
	values := make([]float64, len(sorted))
	for i, p := range sorted {
		periods[i] = p.Period
		values[i] = p.Value
	}

	s, err := NewWithPeriods(periods, values)
	if err != nil {
		return nil, err
	}
	s.Name = name
	return s, nil
}

// Len returns the length of the series.
func (s *Series) Len() int {
	return len(s.Values)
}

// Points returns the series as (period, value) pairs.
func (s *Series) Points() []Point {
	points := make([]Point, len(s.Values))
	for i, v := range s.Values {
		points[i] = Point{Period: s.Periods[i], Value: v}
	}
	return points
}

// LastPeriod returns the final period of the series, or false when empty.
func (s *Series) LastPeriod() (int, bool) {
	if len(s.Periods) == 0 {
		return 0, false
	}
	return s.Periods[len(s.Periods)-1], true
}

// Mean calculates the arithmetic mean of the series.
func (s *Series) Mean() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	return stat.Mean(s.Values, nil)
}

// Variance calculates the sample variance of the series.
func (s *Series) Variance() float64 {
	if len(s.Values) < 2 {
		return 0
	}
	return stat.Variance(s.Values, nil)
}

// Std calculates the standard deviation of the series.
func (s *Series) Std() float64 {
	return math.Sqrt(s.Variance())
}

// Min returns the minimum value in the series.
func (s *Series) Min() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	return floats.Min(s.Values)
}

// Max returns the maximum value in the series.
func (s *Series) Max() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	return floats.Max(s.Values)
}

// IsFinite reports whether every value is a finite number.
func (s *Series) IsFinite() bool {
	for _, v := range s.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Diff calculates the first difference of the series (d=1).
func (s *Series) Diff() *Series {
	return s.DiffN(1)
}

// DiffN applies first differencing n times.
// The result has n fewer observations and keeps the trailing periods.
func (s *Series) DiffN(n int) *Series {
	if n <= 0 {
		return s.Copy()
	}
	if len(s.Values) <= n {
		return &Series{Periods: []int{}, Values: []float64{}, Name: s.Name + "_diff"}
	}

	values := make([]float64, len(s.Values))
	copy(values, s.Values)
	for k := 0; k < n; k++ {
		for i := 0; i < len(values)-1; i++ {
			values[i] = values[i+1] - values[i]
		}
		values = values[:len(values)-1]
	}

	periods := make([]int, len(values))
	copy(periods, s.Periods[n:])

	return &Series{
		Periods: periods,
		Values:  values,
		Name:    s.Name + "_diff",
	}
}

// Copy creates a deep copy of the series.
func (s *Series) Copy() *Series {
	values := make([]float64, len(s.Values))
	copy(values, s.Values)

	periods := make([]int, len(s.Periods))
	copy(periods, s.Periods)

	return &Series{
		Periods: periods,
		Values:  values,
		Name:    s.Name,
	}
}

// Extend returns a series that continues s for len(values) consecutive periods
// after its last period.
func (s *Series) Extend(name string, values []float64) *Series {
	start := 0
	if last, ok := s.LastPeriod(); ok {
		start = last + 1
	}

	periods := make([]int, len(values))
	for i := range periods {
		periods[i] = start + i
	}

	out := make([]float64, len(values))
	copy(out, values)

	return &Series{
		Periods: periods,
		Values:  out,
		Name:    name,
	}
}
