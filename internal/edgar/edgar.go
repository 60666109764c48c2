// Package edgar walks SEC EDGAR filing indexes and extracts insider
// transaction data from Form 4 ownership documents.
package edgar

import (
	"context"
	"strings"
	"time"

	"github.com/sells-group/insider-sync/internal/fetcher"
)

// Config carries the scraper's knobs. Everything is explicit; nothing is
// read from ambient state.
type Config struct {
	BaseURL          string        // scheme and host, e.g. https://www.sec.gov
	AttachmentSuffix string        // candidate attachment suffix, e.g. ".xml"
	FilingType       string        // EDGAR filing type, e.g. "4"
	PageSize         int           // filings per index page
	RowDelay         time.Duration // pause after each processed index row
}

// Client scrapes EDGAR through a Fetcher.
type Client struct {
	fetcher fetcher.Fetcher
	cfg     Config

	ciks map[string]string // ticker -> zero-padded CIK, cached per process
}

// New creates a Client. Zero-value config fields fall back to the standard
// EDGAR values.
func New(f fetcher.Fetcher, cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.sec.gov"
	}
	if cfg.AttachmentSuffix == "" {
		cfg.AttachmentSuffix = ".xml"
	}
	if cfg.FilingType == "" {
		cfg.FilingType = "4"
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	if cfg.RowDelay == 0 {
		cfg.RowDelay = 500 * time.Millisecond
	}
	return &Client{fetcher: f, cfg: cfg, ciks: make(map[string]string)}
}

// resolveURL makes a document link absolute. Index and detail pages link
// root-relative; anything already absolute passes through.
func (c *Client) resolveURL(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return c.cfg.BaseURL + href
}

// pause sleeps the configured row delay, returning early when the context
// is cancelled.
func (c *Client) pause(ctx context.Context) {
	t := time.NewTimer(c.cfg.RowDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
