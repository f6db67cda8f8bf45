package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("required column missing")

// LoadCSV parses the dataset from r. The header must contain Entity and Year;
// every other column is read as a numeric measure, with empty, NA and
// non-numeric cells treated as missing. Aggregate entities are dropped.
func LoadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	entityIdx, yearIdx := -1, -1
	measures := make(map[int]string)
	var columns []string
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		switch h {
		case EntityColumn:
			entityIdx = i
		case YearColumn:
			yearIdx = i
		default:
			measures[i] = h
			columns = append(columns, h)
		}
	}
	if entityIdx == -1 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, EntityColumn)
	}
	if yearIdx == -1 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, YearColumn)
	}

	var rows []Row
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		entity := strings.TrimSpace(record[entityIdx])
		if entity == "" || IsAggregate(entity) {
			continue
		}
		year, err := strconv.Atoi(strings.TrimSpace(record[yearIdx]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid year %q", line, record[yearIdx])
		}

		values := make(map[string]float64)
		for i, column := range measures {
			if v, ok := parseCell(record[i]); ok {
				values[column] = v
			}
		}
		rows = append(rows, Row{Entity: entity, Year: year, Values: values})
	}

	return NewTable(columns, rows)
}

// LoadCSVFile parses the dataset file at path.
func LoadCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return LoadCSV(f)
}

func parseCell(cell string) (float64, bool) {
	cell = strings.TrimSpace(cell)
	switch cell {
	case "", "NA", "NaN", "nan", "null":
		return 0, false
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
