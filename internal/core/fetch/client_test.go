package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testClient(ts *httptest.Server) *Client {
	return &Client{
		HTTPClient: ts.Client(),
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
	}
}

func TestClientGetSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte("payload")) // nolint:errcheck
	}))
	defer ts.Close()

	body, status, err := testClient(ts).Get(context.Background(), ts.URL)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, []byte("payload"), body)
}

func TestClientGetRetriesServerErrors(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok")) // nolint:errcheck
	}))
	defer ts.Close()

	body, status, err := testClient(ts).Get(context.Background(), ts.URL)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, []byte("ok"), body)
	require.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestClientGetDoesNotRetryNotFound(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	body, status, err := testClient(ts).Get(context.Background(), ts.URL)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, status)
	require.Nil(t, body)
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestClientGetExhaustsRetries(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	_, _, err := testClient(ts).Get(context.Background(), ts.URL)
	require.Error(t, err)
	require.Contains(t, err.Error(), "4 attempts")
	require.EqualValues(t, 4, atomic.LoadInt32(&calls))
}

func TestClientGetHonorsContextCancellation(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := testClient(ts)
	client.RetryDelay = time.Minute
	_, _, err := client.Get(ctx, ts.URL)
	require.Error(t, err)
}

func TestClientGetWaitsOnLimiter(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok")) // nolint:errcheck
	}))
	defer ts.Close()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewLimiter(1)
	limiter.Clock = func() time.Time { return now }

	client := testClient(ts)
	client.Limiter = limiter

	_, _, err := client.Get(context.Background(), ts.URL)
	require.NoError(t, err)

	// Second call would exceed the window; a canceled context surfaces
	// instead of sleeping for the remainder.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = client.Get(ctx, ts.URL)
	require.ErrorIs(t, err, context.Canceled)
}
