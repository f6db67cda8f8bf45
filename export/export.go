// Package export writes forecast results to spreadsheets and CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/sartorproj/tfpforecast/forecast"
)

// SummarySheet is the first sheet of every workbook.
const SummarySheet = "Summary"

// Row kinds in exported data.
const (
	KindHistorical = "historical"
	KindForecast   = "forecast"
)

// Workbook builds a workbook with a Summary sheet and one sheet per country
// listing Year, TFP and Kind.
func Workbook(results []forecast.Result) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, err
	}

	headers := []string{"Country", "Last Year", "Last TFP", "Forecast Year", "Forecast TFP"}
	if err := writeHeader(f, SummarySheet, headers, 16); err != nil {
		return nil, err
	}

	used := map[string]bool{SummarySheet: true}
	for i, r := range results {
		row := i + 2
		cells := []any{r.Country, "", "", "", ""}
		if n := r.Historical.Len(); n > 0 {
			cells[1], cells[2] = r.Historical.Periods[n-1], r.Historical.Values[n-1]
		}
		if n := r.Forecast.Len(); n > 0 {
			cells[3], cells[4] = r.Forecast.Periods[n-1], r.Forecast.Values[n-1]
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(SummarySheet, cell, &cells); err != nil {
			return nil, err
		}

		if err := countrySheet(f, sheetName(r.Country, used), r); err != nil {
			return nil, fmt.Errorf("%s: %w", r.Country, err)
		}
	}

	return f, nil
}

// SaveWorkbook writes the workbook for results to path.
func SaveWorkbook(results []forecast.Result, path string) error {
	f, err := Workbook(results)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

// WriteWorkbook writes the workbook for results to w.
func WriteWorkbook(results []forecast.Result, w io.Writer) error {
	f, err := Workbook(results)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteTo(w)
	return err
}

func countrySheet(f *excelize.File, sheet string, r forecast.Result) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := writeHeader(f, sheet, []string{"Year", "TFP", "Kind"}, 14); err != nil {
		return err
	}

	row := 2
	for _, part := range []struct {
		kind   string
		values []float64
		years  []int
	}{
		{KindHistorical, r.Historical.Values, r.Historical.Periods},
		{KindForecast, r.Forecast.Values, r.Forecast.Periods},
	} {
		for i, v := range part.values {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetSheetRow(sheet, cell, &[]any{part.years[i], v, part.kind}); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, width float64) error {
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return err
		}
	}
	return nil
}

// sheetName makes a valid, unused sheet name from country.
func sheetName(country string, used map[string]bool) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, country)
	if name == "" {
		name = "Country"
	}
	if r := []rune(name); len(r) > 28 {
		name = string(r[:28])
	}

	candidate := name
	for i := 2; used[candidate]; i++ {
		candidate = name + " " + strconv.Itoa(i)
	}
	used[candidate] = true
	return candidate
}

// CSV writes results in long format: country,year,tfp,kind.
func CSV(w io.Writer, results []forecast.Result) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"country", "year", "tfp", "kind"}); err != nil {
		return err
	}

	for _, r := range results {
		hist, proj := r.Points()
		for _, p := range hist {
			if err := writer.Write(csvRow(r.Country, p.Period, p.Value, KindHistorical)); err != nil {
				return err
			}
		}
		for _, p := range proj {
			if err := writer.Write(csvRow(r.Country, p.Period, p.Value, KindForecast)); err != nil {
				return err
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

func csvRow(country string, year int, value float64, kind string) []string {
	return []string{country, strconv.Itoa(year), strconv.FormatFloat(value, 'f', -1, 64), kind}
}
