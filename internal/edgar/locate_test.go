package edgar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contentTypeHandler(ct string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", ct)
		w.WriteHeader(http.StatusOK)
	}
}

func TestLocateAttachment_FirstProbedXMLWins(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/docs/first.xml", contentTypeHandler("text/html"))
	mux.HandleFunc("/docs/second.xml", contentTypeHandler("application/xml"))
	mux.HandleFunc("/docs/third.xml", contentTypeHandler("application/xml"))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	page := `<html><body>
		<a href="/docs/readme.txt">readme</a>
		<a href="/docs/first.xml">first</a>
		<a href="/docs/second.xml">second</a>
		<a href="/docs/third.xml">third</a>
	</body></html>`

	c := newTestClient(srv.URL)
	link, ok := c.LocateAttachment(context.Background(), strings.NewReader(page))
	require.True(t, ok)
	assert.Equal(t, srv.URL+"/docs/second.xml", link)
}

func TestLocateAttachment_SuffixMatchIsCaseInsensitive(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/docs/FORM4.XML", contentTypeHandler("text/xml"))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	page := `<a href="/docs/FORM4.XML">doc</a>`

	c := newTestClient(srv.URL)
	link, ok := c.LocateAttachment(context.Background(), strings.NewReader(page))
	require.True(t, ok)
	assert.Equal(t, srv.URL+"/docs/FORM4.XML", link)
}

func TestLocateAttachment_ContentTypeMatchIsCaseInsensitive(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/docs/form4.xml", contentTypeHandler("Application/XML; charset=UTF-8"))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	page := `<a href="/docs/form4.xml">doc</a>`

	c := newTestClient(srv.URL)
	_, ok := c.LocateAttachment(context.Background(), strings.NewReader(page))
	assert.True(t, ok)
}

func TestLocateAttachment_NoCandidates(t *testing.T) {
	c := newTestClient("http://example.invalid")
	page := `<a href="/docs/readme.txt">readme</a><a href="/docs/page.htm">page</a>`

	link, ok := c.LocateAttachment(context.Background(), strings.NewReader(page))
	assert.False(t, ok)
	assert.Empty(t, link)
}

func TestLocateAttachment_AllProbesMiss(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/docs/a.xml", contentTypeHandler("text/plain"))
	mux.HandleFunc("/docs/b.xml", contentTypeHandler("text/html"))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	page := `<a href="/docs/a.xml">a</a><a href="/docs/b.xml">b</a>`

	c := newTestClient(srv.URL)
	_, ok := c.LocateAttachment(context.Background(), strings.NewReader(page))
	assert.False(t, ok)
}

func TestLocateAttachment_ProbeFailureSkipsCandidate(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/docs/ok.xml", contentTypeHandler("application/xml"))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	page := `<a href="` + deadURL + `/gone.xml">gone</a><a href="/docs/ok.xml">ok</a>`

	c := newTestClient(srv.URL)
	link, ok := c.LocateAttachment(context.Background(), strings.NewReader(page))
	require.True(t, ok)
	assert.Equal(t, srv.URL+"/docs/ok.xml", link)
}
