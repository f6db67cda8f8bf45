package export

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sartorproj/tfpforecast/forecast"
	"github.com/sartorproj/tfpforecast/timeseries"
)

func result(t *testing.T, country string) forecast.Result {
	t.Helper()
	hist, err := timeseries.NewWithPeriods([]int{2018, 2019}, []float64{1.5, 1.75})
	require.NoError(t, err)
	return forecast.Result{
		Country:    country,
		Historical: hist,
		Forecast:   hist.Extend(country, []float64{2, 2.25}),
	}
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, []forecast.Result{result(t, "France")}))

	want := strings.Join([]string{
		"country,year,tfp,kind",
		"France,2018,1.5,historical",
		"France,2019,1.75,historical",
		"France,2020,2,forecast",
		"France,2021,2.25,forecast",
	}, "\n") + "\n"
	assert.Equal(t, want, buf.String())
}

func TestSaveWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forecast.xlsx")
	results := []forecast.Result{result(t, "France"), result(t, "Bolivia (Plurinational State of)")}
	require.NoError(t, SaveWorkbook(results, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	require.Len(t, sheets, 3)
	assert.Equal(t, SummarySheet, sheets[0])
	assert.Equal(t, "France", sheets[1])
	assert.LessOrEqual(t, len([]rune(sheets[2])), 31)

	rows, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"France", "2019", "1.75", "2021", "2.25"}, rows[1])

	rows, err = f.GetRows("France")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"Year", "TFP", "Kind"}, rows[0])
	assert.Equal(t, []string{"2020", "2", "forecast"}, rows[3])
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook([]forecast.Result{result(t, "Chile")}, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{SummarySheet, "Chile"}, f.GetSheetList())
}

func TestSheetName(t *testing.T) {
	used := map[string]bool{SummarySheet: true}
	assert.Equal(t, "a_b", sheetName("a/b", used))
	assert.Equal(t, "a_b 2", sheetName("a/b", used))
	assert.Equal(t, "Summary 2", sheetName("Summary", used))
	assert.Len(t, []rune(sheetName(strings.Repeat("x", 40), used)), 28)
}
