package dataset

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Source kinds accepted by Open.
const (
	SourceCSV    = "csv"
	SourceSQLite = "sqlite"
)

// Options selects and locates the dataset.
type Options struct {
	Source    string        // SourceCSV or SourceSQLite
	URL       string        // Download location for SourceCSV
	CachePath string        // Local CSV file for SourceCSV
	DBPath    string        // Database file for SourceSQLite
	Timeout   time.Duration // Download timeout
	Client    *http.Client
}

// Open returns the dataset described by opts. For SourceCSV the file is
// downloaded into CachePath on first use and parsed on every call.
func Open(ctx context.Context, opts Options) (*Table, error) {
	switch opts.Source {
	case SourceCSV, "":
		url := opts.URL
		if url == "" {
			url = DefaultURL
		}
		if opts.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
			defer cancel()
		}
		if _, err := Fetch(ctx, opts.Client, url, opts.CachePath); err != nil {
			return nil, err
		}
		return LoadCSVFile(opts.CachePath)

	case SourceSQLite:
		store, err := OpenStore(opts.DBPath)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.Load(ctx)

	default:
		return nil, fmt.Errorf("unknown dataset source %q", opts.Source)
	}
}
