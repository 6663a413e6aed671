// Package fetch provides the rate-limited HTTP client and the network
// logo sources layered on top of it.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultUserAgent = "logolens/1.0"

// Client is the shared fetch primitive for all network sources. It
// applies the fixed-window rate limit once per logical Get, then
// retries transient failures (5xx and network errors) with linear
// backoff. A 4xx response is not a fault; it is returned with a nil
// body so callers can treat it as "source has no logo".
type Client struct {
	HTTPClient *http.Client
	Limiter    *Limiter
	MaxRetries int
	RetryDelay time.Duration
	UserAgent  string
}

// Get fetches rawURL and returns the response body and status code.
// The returned body is nil for any non-2xx status.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, int, error) {
	if c == nil {
		return nil, 0, fmt.Errorf("fetch client is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, 0, err
		}
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	retries := c.MaxRetries
	if retries < 0 {
		retries = 0
	}
	delay := c.RetryDelay
	if delay <= 0 {
		delay = time.Second
	}

	var lastErr error
	for attempt := 1; attempt <= retries+1; attempt++ {
		if attempt > 1 {
			backoff := delay * time.Duration(attempt-1)
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, 0, ctx.Err()
			case <-timer.C:
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, 0, err
		}
		userAgent := c.UserAgent
		if userAgent == "" {
			userAgent = defaultUserAgent
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			body, err := io.ReadAll(resp.Body)
			resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body
			if err != nil {
				lastErr = err
				continue
			}
			return body, resp.StatusCode, nil
		case resp.StatusCode >= 500:
			io.Copy(io.Discard, resp.Body) // nolint:errcheck // drain for connection reuse
			resp.Body.Close()              // nolint:errcheck
			lastErr = fmt.Errorf("server error %d from %s", resp.StatusCode, rawURL)
			continue
		default:
			// 4xx means the source has nothing for this domain.
			io.Copy(io.Discard, resp.Body) // nolint:errcheck // drain for connection reuse
			resp.Body.Close()              // nolint:errcheck
			return nil, resp.StatusCode, nil
		}
	}

	return nil, 0, fmt.Errorf("request failed after %d attempts: %w", retries+1, lastErr)
}
