package dataset

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Entity,Year,tfp,crop_output_quantity,animal_output_quantity,land_quantity
France,1962,0.52,10,5,100
France,1961,0.5,9,4,100
World,1961,1,1000,800,9000
Chile,1961,0.4,3,2,
Chile,1962,NA,3.5,2.5,40
Western Europe,1961,0.9,50,40,300
`

func TestLoadCSV(t *testing.T) {
	table, err := LoadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"Chile", "France"}, table.Countries())
	assert.Equal(t, 4, table.Len())
	assert.Equal(t, []string{"tfp", "crop_output_quantity", "animal_output_quantity", "land_quantity"}, table.Columns())
	assert.True(t, table.HasCountry("France"))
	assert.False(t, table.HasCountry("World"))

	rows := table.Rows("France")
	require.Len(t, rows, 2)
	assert.Equal(t, 1961, rows[0].Year)
	assert.Equal(t, 1962, rows[1].Year)

	tfp, ok := rows[0].TFP()
	assert.True(t, ok)
	assert.Equal(t, 0.5, tfp)
	assert.Equal(t, 13.0, rows[0].TotalOutput())

	chile := table.Rows("Chile")
	_, ok = chile[1].TFP()
	assert.False(t, ok, "NA is missing")
	_, ok = chile[0].Value("land_quantity")
	assert.False(t, ok, "empty cell is missing")
}

func TestLoadCSVErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "missing entity", input: "Country,Year,tfp\nFrance,1961,0.5\n", wantErr: ErrMissingColumn},
		{name: "missing year", input: "Entity,tfp\nFrance,0.5\n", wantErr: ErrMissingColumn},
		{name: "duplicate row", input: "Entity,Year,tfp\nFrance,1961,0.5\nFrance,1961,0.6\n", wantErr: ErrDuplicateRow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCSV(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := LoadCSV(strings.NewReader("Entity,Year,tfp\nFrance,sixty,0.5\n"))
	assert.Error(t, err)
}

func TestTotalOutput(t *testing.T) {
	r := Row{Values: map[string]float64{
		"crop_output_quantity":   2,
		"animal_output_quantity": 3,
		"land_quantity":          100,
		"tfp":                    1.1,
	}}
	assert.Equal(t, 5.0, r.TotalOutput())
}

func TestTableIsImmutable(t *testing.T) {
	table, err := LoadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	rows := table.Rows("France")
	rows[0].Values["tfp"] = 99
	rows[0].Year = 1900

	countries := table.Countries()
	countries[0] = "Atlantis"

	again := table.Rows("France")
	tfp, _ := again[0].TFP()
	assert.Equal(t, 0.5, tfp)
	assert.Equal(t, 1961, again[0].Year)
	assert.Equal(t, "Chile", table.Countries()[0])
	assert.Nil(t, table.Rows("Atlantis"))
}

func TestIsAggregate(t *testing.T) {
	assert.True(t, IsAggregate("World"))
	assert.True(t, IsAggregate("Sub-Saharan Africa"))
	assert.False(t, IsAggregate("France"))
}

func TestFetch(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "downloads", "data.csv")

	downloaded, err := Fetch(context.Background(), srv.Client(), srv.URL, path)
	require.NoError(t, err)
	assert.True(t, downloaded)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sampleCSV, string(data))

	downloaded, err = Fetch(context.Background(), srv.Client(), srv.URL, path)
	require.NoError(t, err)
	assert.False(t, downloaded, "cached file is reused")
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")

	_, err := Fetch(context.Background(), srv.Client(), srv.URL, path)
	assert.ErrorIs(t, err, ErrDownload)
	assert.NoFileExists(t, path)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no temporary files left behind")
}

func TestStoreRoundTrip(t *testing.T) {
	table, err := LoadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	store, err := OpenStore(filepath.Join(t.TempDir(), "tfp.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, table))
	// Saving again replaces rather than duplicates.
	require.NoError(t, store.Save(ctx, table))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, table.Len(), loaded.Len())
	assert.Equal(t, table.Columns(), loaded.Columns())
	assert.Equal(t, table.All(), loaded.All())
}

func TestOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	dir := t.TempDir()
	ctx := context.Background()

	table, err := Open(ctx, Options{
		Source:    SourceCSV,
		URL:       srv.URL,
		CachePath: filepath.Join(dir, "data.csv"),
		Client:    srv.Client(),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Chile", "France"}, table.Countries())

	dbPath := filepath.Join(dir, "tfp.db")
	store, err := OpenStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, table))
	require.NoError(t, store.Close())

	fromDB, err := Open(ctx, Options{Source: SourceSQLite, DBPath: dbPath})
	require.NoError(t, err)
	assert.Equal(t, table.Countries(), fromDB.Countries())

	_, err = Open(ctx, Options{Source: "parquet"})
	assert.Error(t, err)
}
