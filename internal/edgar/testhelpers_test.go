package edgar

import (
	"sync"
	"time"

	"github.com/sells-group/insider-sync/internal/fetcher"
)

// newTestClient returns a Client pointed at a test server base URL, with a
// row delay short enough to keep walks fast.
func newTestClient(baseURL string) *Client {
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent: "test-agent",
		Timeout:   5 * time.Second,
	})
	return New(f, Config{
		BaseURL:          baseURL,
		AttachmentSuffix: ".xml",
		FilingType:       "4",
		PageSize:         100,
		RowDelay:         time.Millisecond,
	})
}

// requestLog records requests in arrival order.
type requestLog struct {
	mu   sync.Mutex
	reqs []string
}

func (l *requestLog) add(method, path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reqs = append(l.reqs, method+" "+path)
}

func (l *requestLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.reqs...)
}
