// Package fetcher loads Courier report text from stdin, local files, XLSX
// workbooks and HTTP URLs.
package fetcher

import (
	"context"
	"io"
)

// Fetcher defines the interface for downloading remote reports.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}
