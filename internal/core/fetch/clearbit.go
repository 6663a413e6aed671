package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/logolens/logolens/internal/core"
)

const defaultClearbitBaseURL = "https://logo.clearbit.com"

// ClearbitFetcher queries the Clearbit logo API, the primary source in
// the fallback order. Clearbit serves logos at a requested pixel size
// and answers 404 for unknown domains.
type ClearbitFetcher struct {
	Client  *Client
	BaseURL string
	Size    int
}

// Fetch returns the Clearbit logo bytes for domain, or nil when the
// API has no logo for it.
func (f *ClearbitFetcher) Fetch(ctx context.Context, domain string) ([]byte, error) {
	if f == nil || f.Client == nil {
		return nil, errors.New("clearbit fetcher is not configured")
	}
	if domain == "" {
		return nil, errors.New("domain is required")
	}

	base := f.BaseURL
	if base == "" {
		base = defaultClearbitBaseURL
	}
	size := f.Size
	if size <= 0 {
		size = 256
	}

	endpoint := fmt.Sprintf("%s/%s?size=%d", base, url.PathEscape(domain), size)
	body, _, err := f.Client.Get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, nil
	}
	return body, nil
}

// Source identifies this fetcher in outcome records.
func (f *ClearbitFetcher) Source() core.Source {
	return core.SourceClearbit
}
