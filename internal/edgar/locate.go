package edgar

import (
	"context"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// LocateAttachment scans a filing detail page for the structured-data
// attachment. Candidate links keep document order; a candidate qualifies by
// suffix and is accepted once a header probe reports an XML content type.
// The first accepted candidate wins. A failed probe skips to the next
// candidate.
func (c *Client) LocateAttachment(ctx context.Context, page io.Reader) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(page)
	if err != nil {
		zap.L().Warn("detail page parse failed", zap.Error(err))
		return "", false
	}

	suffix := strings.ToLower(c.cfg.AttachmentSuffix)
	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if !strings.HasSuffix(strings.ToLower(href), suffix) {
			return true
		}

		candidate := c.resolveURL(href)
		contentType, err := c.fetcher.HeadContentType(ctx, candidate)
		if err != nil {
			zap.L().Warn("attachment probe failed",
				zap.String("url", candidate),
				zap.Error(err),
			)
			return true
		}
		if strings.Contains(strings.ToLower(contentType), "xml") {
			found = candidate
			return false
		}
		return true
	})

	return found, found != ""
}
