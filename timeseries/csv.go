package timeseries

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// CSVOptions holds options for CSV loading.
type CSVOptions struct {
	PeriodColumn string // Column name for periods (default: "Year")
	ValueColumn  string // Column name for values (default: "value")
	IDColumn     string // Column name for series ID (optional, for filtering)
	IDFilter     string // Value to filter by ID column
	Delimiter    rune   // Field delimiter (default: ',')
}

// DefaultCSVOptions returns default options for CSV loading.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		PeriodColumn: "Year",
		ValueColumn:  "value",
		Delimiter:    ',',
	}
}

// LoadCSV loads a series from a CSV file.
func LoadCSV(filename string, opts *CSVOptions) (*Series, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadCSVFromReader(file, opts)
}

// LoadCSVFromReader loads a series from an io.Reader.
// Rows with empty or non-numeric values are skipped.
func LoadCSVFromReader(r io.Reader, opts *CSVOptions) (*Series, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	reader := csv.NewReader(r)
	reader.Comma = opts.Delimiter
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	periodIdx, valueIdx, idIdx := -1, -1, -1
	for i, h := range header {
		h = strings.TrimSpace(strings.Trim(h, "\""))
		switch {
		case h == opts.PeriodColumn:
			periodIdx = i
		case h == opts.ValueColumn:
			valueIdx = i
		case opts.IDColumn != "" && h == opts.IDColumn:
			idIdx = i
		}
	}
	if periodIdx == -1 || valueIdx == -1 {
		return nil, fmt.Errorf("columns %q and %q are required", opts.PeriodColumn, opts.ValueColumn)
	}

	var points []Point
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if opts.IDFilter != "" && idIdx >= 0 && idIdx < len(record) {
			if strings.TrimSpace(record[idIdx]) != opts.IDFilter {
				continue
			}
		}
		if periodIdx >= len(record) || valueIdx >= len(record) {
			continue
		}

		period, err := strconv.Atoi(strings.TrimSpace(record[periodIdx]))
		if err != nil {
			continue
		}
		valStr := strings.TrimSpace(record[valueIdx])
		if valStr == "" || valStr == "NA" || valStr == "NaN" || valStr == "null" {
			continue
		}
		val, err := strconv.ParseFloat(valStr, 64)
		if err != nil {
			continue
		}
		points = append(points, Point{Period: period, Value: val})
	}

	if len(points) == 0 {
		return nil, errors.New("no valid data found in CSV")
	}

	return FromPoints(opts.IDFilter, points)
}

// WriteCSV writes the series as "period,value" rows with a header.
func WriteCSV(w io.Writer, series *Series, valueColumn string) error {
	if valueColumn == "" {
		valueColumn = "value"
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Year", valueColumn}); err != nil {
		return err
	}
	for i, v := range series.Values {
		row := []string{
			strconv.Itoa(series.Periods[i]),
			strconv.FormatFloat(v, 'f', -1, 64),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// SaveCSV saves a series to a CSV file.
func SaveCSV(series *Series, filename, valueColumn string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteCSV(file, series, valueColumn)
}
