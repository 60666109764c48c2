package fetcher

import (
	"context"
	"io"
)

// Fetcher defines the interface for downloading remote documents.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// HeadContentType performs a HEAD request and returns the Content-Type header value.
	HeadContentType(ctx context.Context, url string) (string, error)
}
