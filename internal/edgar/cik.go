package edgar

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/insider-sync/internal/fetcher"
)

// tickerEntry is one row of the EDGAR company_tickers.json mapping file.
type tickerEntry struct {
	CIK    int    `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// ResolveCIK maps a ticker symbol to its zero-padded ten digit CIK using
// the EDGAR company tickers file. Lookups are case-insensitive and cached
// for the life of the client.
func (c *Client) ResolveCIK(ctx context.Context, ticker string) (string, error) {
	key := strings.ToUpper(strings.TrimSpace(ticker))
	if key == "" {
		return "", eris.New("edgar: empty ticker")
	}
	if cik, ok := c.ciks[key]; ok {
		return cik, nil
	}

	mapURL := c.cfg.BaseURL + "/files/company_tickers.json"
	body, err := c.fetcher.Download(ctx, mapURL)
	if err != nil {
		return "", eris.Wrap(err, "edgar: fetch company tickers")
	}
	defer body.Close()

	entries, err := fetcher.DecodeJSONObject[map[string]tickerEntry](body)
	if err != nil {
		return "", eris.Wrap(err, "edgar: parse company tickers")
	}

	for _, e := range *entries {
		c.ciks[strings.ToUpper(e.Ticker)] = fmt.Sprintf("%010d", e.CIK)
	}

	cik, ok := c.ciks[key]
	if !ok {
		return "", eris.Errorf("edgar: no CIK found for ticker %s", key)
	}
	zap.L().Debug("resolved ticker",
		zap.String("ticker", key),
		zap.String("cik", cik),
	)
	return cik, nil
}

// IndexURL builds the filings index URL for a resolved CIK.
func (c *Client) IndexURL(cik string) string {
	return fmt.Sprintf(
		"%s/cgi-bin/browse-edgar?action=getcompany&CIK=%s&type=%s&dateb=&owner=exclude&count=%d&search_text=",
		c.cfg.BaseURL, cik, c.cfg.FilingType, c.cfg.PageSize,
	)
}
