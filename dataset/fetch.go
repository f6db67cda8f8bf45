package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// DefaultURL is the OWID copy of the USDA agricultural total factor productivity dataset.
const DefaultURL = "https://raw.githubusercontent.com/owid/owid-datasets/master/datasets/" +
	"Agricultural%20total%20factor%20productivity%20(USDA)/" +
	"Agricultural%20total%20factor%20productivity%20(USDA).csv"

// ErrDownload is returned when the dataset cannot be downloaded.
var ErrDownload = errors.New("dataset download failed")

// Fetch downloads url to path unless path already exists. The file is
// written to a temporary name and renamed into place, so an interrupted
// download never leaves a partial dataset behind. Nothing is retried.
func Fetch(ctx context.Context, client *http.Client, url, path string) (downloaded bool, err error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, err
	}

	if client == nil {
		client = http.DefaultClient
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("create cache directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrDownload, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("%w: status %d", ErrDownload, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return false, err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return false, fmt.Errorf("%w: %w", ErrDownload, err)
	}
	if err := tmp.Close(); err != nil {
		return false, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return false, err
	}

	return true, nil
}
