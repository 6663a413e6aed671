package fetch

import (
	"context"
	"errors"

	"github.com/logolens/logolens/internal/core"
	"github.com/logolens/logolens/internal/core/render"
)

// SyntheticFetcher renders a placeholder logo from the entity's display
// name. Unlike the network fetchers it is fed the name, not a domain,
// and never returns nil bytes for a non-empty name.
type SyntheticFetcher struct {
	Renderer *render.Renderer
}

// Fetch renders a logo for displayName.
func (f *SyntheticFetcher) Fetch(ctx context.Context, displayName string) ([]byte, error) {
	if f == nil || f.Renderer == nil {
		return nil, errors.New("synthetic fetcher is not configured")
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	return f.Renderer.Render(displayName)
}

// Source identifies this fetcher in outcome records.
func (f *SyntheticFetcher) Source() core.Source {
	return core.SourceSynthetic
}
