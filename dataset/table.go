package dataset

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"sort"
	"strings"
)

// Column names of the OWID agricultural productivity dataset.
const (
	EntityColumn = "Entity"
	YearColumn   = "Year"
	TFPColumn    = "tfp"
)

// ErrDuplicateRow is returned when an entity has two rows for the same year.
var ErrDuplicateRow = errors.New("duplicate entity and year")

// Row is one (entity, year) record with its numeric measures.
// A missing cell is absent from Values.
type Row struct {
	Entity string
	Year   int
	Values map[string]float64
}

// Value returns the measure in column and whether it is present.
func (r Row) Value(column string) (float64, bool) {
	v, ok := r.Values[column]
	return v, ok
}

// TFP returns the total factor productivity index of the row.
func (r Row) TFP() (float64, bool) {
	return r.Value(TFPColumn)
}

// TotalOutput sums the "_output_" measures of the row.
func (r Row) TotalOutput() float64 {
	total := 0.0
	for column, v := range r.Values {
		if strings.Contains(column, "_output_") {
			total += v
		}
	}
	return total
}

func (r Row) clone() Row {
	r.Values = maps.Clone(r.Values)
	return r
}

// Table is an immutable set of rows keyed by (entity, year).
// Accessors return copies, so callers can never modify the table.
type Table struct {
	columns   []string
	byEntity  map[string][]Row
	countries []string
	n         int
}

// NewTable builds a table from rows. Columns lists the measure columns in
// source order. Duplicate (entity, year) pairs are rejected.
func NewTable(columns []string, rows []Row) (*Table, error) {
	t := &Table{
		columns:  slices.Clone(columns),
		byEntity: make(map[string][]Row),
	}

	seen := make(map[string]map[int]bool)
	for _, r := range rows {
		if r.Entity == "" {
			return nil, fmt.Errorf("row for year %d has no entity", r.Year)
		}
		if seen[r.Entity] == nil {
			seen[r.Entity] = make(map[int]bool)
		}
		if seen[r.Entity][r.Year] {
			return nil, fmt.Errorf("%w: %s %d", ErrDuplicateRow, r.Entity, r.Year)
		}
		seen[r.Entity][r.Year] = true

		for column, v := range r.Values {
			if math.IsNaN(v) {
				return nil, fmt.Errorf("%s %d: column %s is NaN", r.Entity, r.Year, column)
			}
		}
		t.byEntity[r.Entity] = append(t.byEntity[r.Entity], r.clone())
		t.n++
	}

	for entity, entityRows := range t.byEntity {
		sort.Slice(entityRows, func(i, j int) bool { return entityRows[i].Year < entityRows[j].Year })
		t.countries = append(t.countries, entity)
	}
	sort.Strings(t.countries)

	return t, nil
}

// Countries returns the distinct entity names in ascending order.
func (t *Table) Countries() []string {
	return slices.Clone(t.countries)
}

// HasCountry reports whether the table has rows for name.
func (t *Table) HasCountry(name string) bool {
	_, ok := t.byEntity[name]
	return ok
}

// Rows returns the rows of country sorted by year, or nil when unknown.
func (t *Table) Rows(country string) []Row {
	src := t.byEntity[country]
	if src == nil {
		return nil
	}
	out := make([]Row, len(src))
	for i, r := range src {
		out[i] = r.clone()
	}
	return out
}

// All returns every row ordered by entity, then year.
func (t *Table) All() []Row {
	out := make([]Row, 0, t.n)
	for _, country := range t.countries {
		out = append(out, t.Rows(country)...)
	}
	return out
}

// Columns returns the measure column names.
func (t *Table) Columns() []string {
	return slices.Clone(t.columns)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return t.n
}
