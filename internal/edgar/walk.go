package edgar

import (
	"context"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/insider-sync/internal/model"
)

// ScrapeFilings walks the filings index at indexURL, row by row, and
// returns one Filing per row that leads to a parseable ownership document.
// Rows are processed strictly in sequence with the configured delay after
// each processed row. Only the index page itself is fatal; any failure on
// an individual row logs and skips that row.
func (c *Client) ScrapeFilings(ctx context.Context, indexURL string) ([]model.Filing, error) {
	body, err := c.fetcher.Download(ctx, indexURL)
	if err != nil {
		zap.L().Error("index page fetch failed",
			zap.String("url", indexURL),
			zap.Error(err),
		)
		return nil, eris.Wrapf(err, "edgar: fetch index %s", indexURL)
	}
	doc, err := goquery.NewDocumentFromReader(body)
	_ = body.Close()
	if err != nil {
		zap.L().Error("index page parse failed",
			zap.String("url", indexURL),
			zap.Error(err),
		)
		return nil, eris.Wrapf(err, "edgar: parse index %s", indexURL)
	}

	var filings []model.Filing
	doc.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if ctx.Err() != nil {
			return false
		}

		href := firstArchivesHref(row)
		if href == "" {
			return true
		}

		detailURL := c.resolveURL(href)
		zap.L().Info("processing filing", zap.String("url", detailURL))

		if filing, ok := c.scrapeFilingDetail(ctx, detailURL); ok {
			filings = append(filings, *filing)
		}

		c.pause(ctx)
		return true
	})

	zap.L().Info("index walk complete",
		zap.String("url", indexURL),
		zap.Int("filings", len(filings)),
	)
	return filings, nil
}

// firstArchivesHref returns the target of the row's first link into the
// filing archives, or empty when the row has none.
func firstArchivesHref(row *goquery.Selection) string {
	var href string
	row.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		h, _ := a.Attr("href")
		if strings.Contains(h, "Archives") {
			href = h
			return false
		}
		return true
	})
	return href
}

// scrapeFilingDetail fetches one filing detail page, locates its XML
// attachment, and parses the ownership document.
func (c *Client) scrapeFilingDetail(ctx context.Context, detailURL string) (*model.Filing, bool) {
	body, err := c.fetcher.Download(ctx, detailURL)
	if err != nil {
		zap.L().Warn("detail page fetch failed",
			zap.String("url", detailURL),
			zap.Error(err),
		)
		return nil, false
	}
	xmlLink, ok := c.LocateAttachment(ctx, body)
	_ = body.Close()
	if !ok {
		zap.L().Warn("no xml attachment found", zap.String("url", detailURL))
		return nil, false
	}

	xmlBody, err := c.fetcher.Download(ctx, xmlLink)
	if err != nil {
		zap.L().Warn("attachment fetch failed",
			zap.String("url", xmlLink),
			zap.Error(err),
		)
		return nil, false
	}
	content, err := io.ReadAll(xmlBody)
	_ = xmlBody.Close()
	if err != nil {
		zap.L().Warn("attachment read failed",
			zap.String("url", xmlLink),
			zap.Error(err),
		)
		return nil, false
	}

	return c.ParseForm4(content, detailURL, xmlLink)
}
