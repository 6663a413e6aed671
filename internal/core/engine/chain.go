// Package engine orchestrates logo acquisition: the per-entity source
// fallback chain and the batch coordinator that drives it.
package engine

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	"github.com/logolens/logolens/internal/core"
	"github.com/logolens/logolens/internal/core/fetch"
	"github.com/logolens/logolens/internal/core/imaging"
	"github.com/logolens/logolens/internal/core/resolver"
)

// DomainCache is the read-only failed-domain snapshot a chain consults
// before spending network calls on a domain.
type DomainCache interface {
	Contains(domain string) bool
}

// Chain tries logo sources in priority order for one entity and stops
// at the first standardizable image. Each worker owns its own Chain
// with its own HTTP clients and limiters; a Chain must not be shared
// across goroutines.
type Chain struct {
	Network      []fetch.Fetcher
	Synthetic    *fetch.SyntheticFetcher
	Standardizer *imaging.Standardizer
	OutputFolder string
	Failed       DomainCache
	Logger       *logging.Logger
	Clock        func() time.Time
}

// Acquire resolves a domain for entity, walks the network sources, and
// falls back to the synthetic renderer. Source failures never abort the
// entity, only a missing display name or a disk failure during the
// synthetic save does. A nil return means the context was cancelled
// mid-entity; the entity reached no terminal state and must stay
// unprocessed so a resumed run picks it up again.
func (c *Chain) Acquire(ctx context.Context, entity core.EntityRecord) *core.AcquisitionOutcome {
	if ctx == nil {
		ctx = context.Background()
	}

	name := strings.TrimSpace(entity.DisplayName)
	if name == "" {
		return c.failed(entity, "", "missing display name", false)
	}
	if ctx.Err() != nil {
		return nil
	}

	outputPath := filepath.Join(c.OutputFolder, entity.ID+".png")
	domain := c.resolveDomain(entity)

	domainFailed := false
	if domain != "" && !c.skipNetwork(domain) {
		for _, fetcher := range c.Network {
			if ctx.Err() != nil {
				return nil
			}

			data, err := fetcher.Fetch(ctx, domain)
			if err != nil {
				c.debug("source failed", zap.String("entity", entity.ID),
					zap.String("domain", domain), zap.String("source", string(fetcher.Source())),
					zap.Error(err))
				continue
			}
			if len(data) == 0 {
				continue
			}

			if err := c.Standardizer.Standardize(data, outputPath); err != nil {
				c.debug("image rejected", zap.String("entity", entity.ID),
					zap.String("source", string(fetcher.Source())), zap.Error(err))
				continue
			}

			return &core.AcquisitionOutcome{
				EntityID:    entity.ID,
				Success:     true,
				Source:      fetcher.Source(),
				OutputPath:  outputPath,
				Domain:      domain,
				CompletedAt: c.now(),
			}
		}
		// Every network source came up empty for this domain; the
		// coordinator merges it into the shared cache after the batch.
		domainFailed = true
	}

	data, err := c.Synthetic.Fetch(ctx, name)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return c.failed(entity, domain, "synthetic render: "+err.Error(), domainFailed)
	}
	if err := c.Standardizer.Standardize(data, outputPath); err != nil {
		return c.failed(entity, domain, "synthetic save: "+err.Error(), domainFailed)
	}

	return &core.AcquisitionOutcome{
		EntityID:     entity.ID,
		Success:      true,
		Source:       core.SourceSynthetic,
		OutputPath:   outputPath,
		Domain:       domain,
		DomainFailed: domainFailed,
		CompletedAt:  c.now(),
	}
}

// resolveDomain prefers the primary URL, then the secondary, then a
// name-based guess for well-known institutions.
func (c *Chain) resolveDomain(entity core.EntityRecord) string {
	if domain, ok := resolver.Resolve(entity.PrimaryURL); ok {
		return domain
	}
	if domain, ok := resolver.Resolve(entity.SecondaryURL); ok {
		return domain
	}
	if domain, ok := resolver.KnownDomain(entity.DisplayName); ok {
		return domain
	}
	return ""
}

// skipNetwork reports whether the domain should bypass network sources
// entirely: deny-listed platforms and cached known failures.
func (c *Chain) skipNetwork(domain string) bool {
	if resolver.Excluded(domain) {
		return true
	}
	return c.Failed != nil && c.Failed.Contains(domain)
}

func (c *Chain) failed(entity core.EntityRecord, domain, reason string, domainFailed bool) *core.AcquisitionOutcome {
	return &core.AcquisitionOutcome{
		EntityID:     entity.ID,
		Success:      false,
		Source:       core.SourceFailed,
		ErrorReason:  reason,
		Domain:       domain,
		DomainFailed: domainFailed,
		CompletedAt:  c.now(),
	}
}

func (c *Chain) debug(msg string, fields ...zap.Field) {
	if c == nil || c.Logger == nil {
		return
	}
	c.Logger.Debug(msg, fields...)
}

func (c *Chain) now() time.Time {
	if c != nil && c.Clock != nil {
		return c.Clock()
	}
	return time.Now().UTC()
}
