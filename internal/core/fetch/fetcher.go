package fetch

import (
	"context"

	"github.com/logolens/logolens/internal/core"
)

// Fetcher is one origin of logo bytes. Network fetchers return nil
// bytes with a nil error when the source simply has no logo for the
// domain; an error means the source itself failed. Fetchers perform no
// fallback logic themselves.
type Fetcher interface {
	Fetch(ctx context.Context, domain string) ([]byte, error)
	Source() core.Source
}
