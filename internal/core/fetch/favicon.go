package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/logolens/logolens/internal/core"
)

const (
	defaultDuckDuckGoURL = "https://icons.duckduckgo.com/ip3"
	defaultGoogleURL     = "https://www.google.com/s2/favicons"
)

// FaviconFetcher queries the DuckDuckGo and Google favicon services
// opportunistically and keeps the larger payload as a quality proxy.
// Source reports which provider won the most recent fetch, so a
// FaviconFetcher must not be shared across goroutines.
type FaviconFetcher struct {
	Client        *Client
	DuckDuckGoURL string
	GoogleURL     string

	lastWinner core.Source
}

// Fetch returns the larger of the two providers' favicon payloads for
// domain, or nil when neither has one.
func (f *FaviconFetcher) Fetch(ctx context.Context, domain string) ([]byte, error) {
	if f == nil || f.Client == nil {
		return nil, errors.New("favicon fetcher is not configured")
	}
	if domain == "" {
		return nil, errors.New("domain is required")
	}

	ddgBase := f.DuckDuckGoURL
	if ddgBase == "" {
		ddgBase = defaultDuckDuckGoURL
	}
	googleBase := f.GoogleURL
	if googleBase == "" {
		googleBase = defaultGoogleURL
	}

	var best []byte
	var winner core.Source
	var lastErr error

	ddgURL := fmt.Sprintf("%s/%s.ico", ddgBase, url.PathEscape(domain))
	if body, _, err := f.Client.Get(ctx, ddgURL); err != nil {
		lastErr = err
	} else if len(body) > len(best) {
		best = body
		winner = core.SourceDuckDuckGo
	}

	googleURL := fmt.Sprintf("%s?domain=%s", googleBase, url.QueryEscape(domain))
	if body, _, err := f.Client.Get(ctx, googleURL); err != nil {
		lastErr = err
	} else if len(body) > len(best) {
		best = body
		winner = core.SourceGoogle
	}

	if len(best) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, nil
	}

	f.lastWinner = winner
	return best, nil
}

// Source reports the provider that won the most recent Fetch, or
// DuckDuckGo before any fetch has happened.
func (f *FaviconFetcher) Source() core.Source {
	if f == nil || f.lastWinner == "" {
		return core.SourceDuckDuckGo
	}
	return f.lastWinner
}
