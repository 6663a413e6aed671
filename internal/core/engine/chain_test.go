package engine

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/logolens/logolens/internal/core"
	"github.com/logolens/logolens/internal/core/fetch"
	"github.com/logolens/logolens/internal/core/imaging"
	"github.com/logolens/logolens/internal/core/render"
)

type stubFetcher struct {
	source core.Source
	data   []byte
	err    error
	calls  int64
}

func (s *stubFetcher) Fetch(ctx context.Context, domain string) ([]byte, error) {
	atomic.AddInt64(&s.calls, 1)
	return s.data, s.err
}

func (s *stubFetcher) Source() core.Source { return s.source }

func (s *stubFetcher) callCount() int64 { return atomic.LoadInt64(&s.calls) }

// cancellingFetcher cancels the run context from inside Fetch, as if
// the user interrupted while the entity was in flight.
type cancellingFetcher struct {
	stubFetcher
	cancel context.CancelFunc
}

func (c *cancellingFetcher) Fetch(ctx context.Context, domain string) ([]byte, error) {
	c.cancel()
	return c.stubFetcher.Fetch(ctx, domain)
}

type stubCache struct {
	domains map[string]bool
}

func (s *stubCache) Contains(domain string) bool { return s.domains[domain] }

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 30, G: 60, B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testChain(t *testing.T, network ...fetch.Fetcher) *Chain {
	t.Helper()
	return &Chain{
		Network: network,
		Synthetic: &fetch.SyntheticFetcher{
			Renderer: &render.Renderer{Size: 64, Rand: rand.New(rand.NewSource(1))},
		},
		Standardizer: &imaging.Standardizer{OutputSize: 64, MinSourceSize: 24},
		OutputFolder: t.TempDir(),
	}
}

func TestAcquireFallsThroughToIconSource(t *testing.T) {
	primary := &stubFetcher{source: core.SourceClearbit, data: pngBytes(t, 10, 10)}
	icon := &stubFetcher{source: core.SourceDuckDuckGo, data: pngBytes(t, 64, 64)}

	chain := testChain(t, primary, icon)
	outcome := chain.Acquire(context.Background(), core.EntityRecord{
		ID: "1", DisplayName: "Acme Corp", PrimaryURL: "acme.com",
	})

	require.True(t, outcome.Success)
	require.Equal(t, core.SourceDuckDuckGo, outcome.Source)
	require.Equal(t, "acme.com", outcome.Domain)
	require.False(t, outcome.DomainFailed)
	require.FileExists(t, filepath.Join(chain.OutputFolder, "1.png"))
	require.EqualValues(t, 1, primary.callCount())
	require.EqualValues(t, 1, icon.callCount())
}

func TestAcquireMissingDisplayNameFailsImmediately(t *testing.T) {
	primary := &stubFetcher{source: core.SourceClearbit, data: pngBytes(t, 64, 64)}

	chain := testChain(t, primary)
	outcome := chain.Acquire(context.Background(), core.EntityRecord{
		ID: "2", DisplayName: "", PrimaryURL: "x.com",
	})

	require.False(t, outcome.Success)
	require.Equal(t, core.SourceFailed, outcome.Source)
	require.Contains(t, outcome.ErrorReason, "display name")
	require.Zero(t, primary.callCount())
}

func TestAcquireSyntheticWhenAllNetworkSourcesFail(t *testing.T) {
	primary := &stubFetcher{source: core.SourceClearbit}
	icon := &stubFetcher{source: core.SourceGoogle}

	chain := testChain(t, primary, icon)
	outcome := chain.Acquire(context.Background(), core.EntityRecord{
		ID: "3", DisplayName: "Acme Corp", PrimaryURL: "acme.com",
	})

	require.True(t, outcome.Success)
	require.Equal(t, core.SourceSynthetic, outcome.Source)
	require.True(t, outcome.DomainFailed)
	require.FileExists(t, filepath.Join(chain.OutputFolder, "3.png"))
}

func TestAcquireSkipsNetworkForCachedFailedDomain(t *testing.T) {
	primary := &stubFetcher{source: core.SourceClearbit, data: pngBytes(t, 64, 64)}

	chain := testChain(t, primary)
	chain.Failed = &stubCache{domains: map[string]bool{"acme.com": true}}

	outcome := chain.Acquire(context.Background(), core.EntityRecord{
		ID: "4", DisplayName: "Acme Corp", PrimaryURL: "acme.com",
	})

	require.True(t, outcome.Success)
	require.Equal(t, core.SourceSynthetic, outcome.Source)
	require.False(t, outcome.DomainFailed)
	require.Zero(t, primary.callCount())
}

func TestAcquireSkipsNetworkForExcludedDomain(t *testing.T) {
	primary := &stubFetcher{source: core.SourceClearbit, data: pngBytes(t, 64, 64)}

	chain := testChain(t, primary)
	outcome := chain.Acquire(context.Background(), core.EntityRecord{
		ID: "5", DisplayName: "Some Person", PrimaryURL: "linkedin.com/in/some-person",
	})

	require.True(t, outcome.Success)
	require.Equal(t, core.SourceSynthetic, outcome.Source)
	require.Zero(t, primary.callCount())
}

func TestAcquireSecondaryURLWhenPrimaryUnresolvable(t *testing.T) {
	primary := &stubFetcher{source: core.SourceClearbit, data: pngBytes(t, 64, 64)}

	chain := testChain(t, primary)
	outcome := chain.Acquire(context.Background(), core.EntityRecord{
		ID: "6", DisplayName: "Acme Corp", PrimaryURL: "not a url", SecondaryURL: "acme.org",
	})

	require.True(t, outcome.Success)
	require.Equal(t, core.SourceClearbit, outcome.Source)
	require.Equal(t, "acme.org", outcome.Domain)
}

func TestAcquireKnownDomainFromDisplayName(t *testing.T) {
	primary := &stubFetcher{source: core.SourceClearbit, data: pngBytes(t, 64, 64)}

	chain := testChain(t, primary)
	outcome := chain.Acquire(context.Background(), core.EntityRecord{
		ID: "7", DisplayName: "Princeton University",
	})

	require.True(t, outcome.Success)
	require.Equal(t, "princeton.edu", outcome.Domain)
}

func TestAcquireCancelledMidEntityReturnsNoOutcome(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	first := &cancellingFetcher{
		stubFetcher: stubFetcher{source: core.SourceClearbit},
		cancel:      cancel,
	}
	second := &stubFetcher{source: core.SourceDuckDuckGo, data: pngBytes(t, 64, 64)}

	chain := testChain(t, first, second)
	outcome := chain.Acquire(ctx, core.EntityRecord{
		ID: "9", DisplayName: "Acme Corp", PrimaryURL: "acme.com",
	})

	require.Nil(t, outcome)
	require.Zero(t, second.callCount())
	require.NoFileExists(t, filepath.Join(chain.OutputFolder, "9.png"))
}

func TestAcquireCancelledBeforeSyntheticReturnsNoOutcome(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	chain := testChain(t)
	outcome := chain.Acquire(ctx, core.EntityRecord{ID: "10", DisplayName: "Acme Corp"})
	require.Nil(t, outcome)
}

func TestAcquireNoDomainGoesStraightToSynthetic(t *testing.T) {
	primary := &stubFetcher{source: core.SourceClearbit, data: pngBytes(t, 64, 64)}

	chain := testChain(t, primary)
	outcome := chain.Acquire(context.Background(), core.EntityRecord{
		ID: "8", DisplayName: "Totally Unknown LLC",
	})

	require.True(t, outcome.Success)
	require.Equal(t, core.SourceSynthetic, outcome.Source)
	require.Empty(t, outcome.Domain)
	require.False(t, outcome.DomainFailed)
	require.Zero(t, primary.callCount())
}
