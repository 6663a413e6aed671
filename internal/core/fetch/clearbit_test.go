package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/logolens/logolens/internal/core"
)

func TestClearbitFetcherFetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/acme.com", r.URL.Path)
		require.Equal(t, "128", r.URL.Query().Get("size"))
		w.Write([]byte("logo-bytes")) // nolint:errcheck
	}))
	defer ts.Close()

	fetcher := &ClearbitFetcher{
		Client:  &Client{HTTPClient: ts.Client(), RetryDelay: time.Millisecond},
		BaseURL: ts.URL,
		Size:    128,
	}

	body, err := fetcher.Fetch(context.Background(), "acme.com")
	require.NoError(t, err)
	require.Equal(t, []byte("logo-bytes"), body)
	require.Equal(t, core.SourceClearbit, fetcher.Source())
}

func TestClearbitFetcherNoLogo(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	fetcher := &ClearbitFetcher{
		Client:  &Client{HTTPClient: ts.Client(), RetryDelay: time.Millisecond},
		BaseURL: ts.URL,
	}

	body, err := fetcher.Fetch(context.Background(), "unknown.example")
	require.NoError(t, err)
	require.Nil(t, body)
}

func TestClearbitFetcherRequiresDomain(t *testing.T) {
	fetcher := &ClearbitFetcher{Client: &Client{}}
	_, err := fetcher.Fetch(context.Background(), "")
	require.Error(t, err)
}
