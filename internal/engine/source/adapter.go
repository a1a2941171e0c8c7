// Package source implements the generic marketplace adapter. Each adapter is
// driven entirely by an ExtractionRule, so adding a marketplace means adding a
// catalog entry.
package source

import (
	"context"
	"strings"
	"time"

	"github.com/law-makers/pricewatch/internal/engine"
	"github.com/law-makers/pricewatch/internal/engine/extract"
	"github.com/law-makers/pricewatch/internal/engine/price"
	"github.com/law-makers/pricewatch/internal/reqctx"
	"github.com/law-makers/pricewatch/pkg/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options are deployment-wide knobs shared by every adapter
type Options struct {
	// Cap is the maximum number of listings per source
	Cap int
	// Band is the inclusive price range a listing must fall in
	Band price.Band
	// StrictBrand applies the brand relevance check to every source
	StrictBrand bool
	// EscapeQuery percent-encodes search terms instead of the naive '+' join
	EscapeQuery bool
	// WaitOverride replaces every rule's wait timeout when > 0
	WaitOverride time.Duration
}

// DefaultOptions returns the reference behaviour: cap 3, default band
func DefaultOptions() Options {
	return Options{Cap: 3, Band: price.DefaultBand}
}

// Adapter fetches and filters listings for one marketplace
type Adapter struct {
	rule     models.ExtractionRule
	compiled *extract.Rule
	renderer engine.Renderer
	opts     Options
}

// NewAdapter compiles rule and binds it to renderer
func NewAdapter(rule models.ExtractionRule, renderer engine.Renderer, opts Options) (*Adapter, error) {
	compiled, err := extract.Compile(rule)
	if err != nil {
		return nil, err
	}
	if opts.Cap <= 0 {
		opts.Cap = DefaultOptions().Cap
	}
	if opts.Band == (price.Band{}) {
		opts.Band = price.DefaultBand
	}
	return &Adapter{
		rule:     rule,
		compiled: compiled,
		renderer: renderer,
		opts:     opts,
	}, nil
}

// Source returns the marketplace this adapter serves
func (a *Adapter) Source() models.Source {
	return a.rule.Source
}

// Rule returns the adapter's extraction rule
func (a *Adapter) Rule() models.ExtractionRule {
	return a.rule
}

// Fetch runs render, extract and filter for q. It never returns an error:
// failures are reported through the result's status.
func (a *Adapter) Fetch(ctx context.Context, q models.Query) models.SourceResult {
	start := time.Now()
	result := models.SourceResult{
		Source:      a.rule.Source,
		DisplayName: a.rule.DisplayName,
		Listings:    []models.Listing{},
	}

	logger := log.With().
		Str("request_id", reqctx.GetRequestContext(ctx).RequestID).
		Str("source", string(a.rule.Source)).
		Logger()

	timeout := a.rule.WaitTimeout
	if a.opts.WaitOverride > 0 {
		timeout = a.opts.WaitOverride
	}

	target := BuildURL(a.rule.URLTemplate, q.Category, q.Brand, a.opts.EscapeQuery)
	result.URL = target
	logger.Debug().Str("url", target).Dur("timeout", timeout).Msg("Rendering search page")

	page, err := a.renderer.Render(ctx, engine.RenderRequest{
		URL:          target,
		WaitSelector: a.rule.WaitSelector,
		Timeout:      timeout,
	})
	if err != nil {
		return a.fail(result, start, err, logger, target)
	}

	candidates, err := extract.Extract(page, a.compiled)
	if err != nil {
		return a.fail(result, start, err, logger, target)
	}

	brand := strings.ToLower(q.Brand)
	filterBrand := a.rule.BrandFilter || a.opts.StrictBrand

	for _, c := range candidates {
		p, err := price.Normalize(c.PriceText)
		if err != nil {
			logger.Debug().Str("name", c.Name).Str("price", c.PriceText).Msg("Skipping candidate: malformed price")
			continue
		}
		if !a.opts.Band.Contains(p) {
			logger.Debug().Str("name", c.Name).Int("price", p).Msg("Skipping candidate: outside price band")
			continue
		}
		if filterBrand && !strings.Contains(strings.ToLower(c.Name), brand) {
			logger.Debug().Str("name", c.Name).Msg("Skipping candidate: brand mismatch")
			continue
		}

		logger.Debug().Str("name", c.Name).Int("price", p).Msg("Listing accepted")
		result.Listings = append(result.Listings, models.Listing{
			Source:       a.rule.Source,
			Name:         c.Name,
			Price:        p,
			DisplayPrice: c.Currency + c.PriceText,
		})
		if len(result.Listings) >= a.opts.Cap {
			break
		}
	}

	result.Elapsed = time.Since(start)
	if len(result.Listings) == 0 {
		result.Status = models.StatusNoMatches
	} else {
		result.Status = models.StatusOK
	}

	logger.Info().
		Int("candidates", len(candidates)).
		Int("listings", len(result.Listings)).
		Str("status", string(result.Status)).
		Int64("elapsed_ms", result.Elapsed.Milliseconds()).
		Msg("Source completed")

	return result
}

// fail records err as the source's error status. Partial listings are dropped.
func (a *Adapter) fail(result models.SourceResult, start time.Time, err error, logger zerolog.Logger, target string) models.SourceResult {
	result.Listings = []models.Listing{}
	result.Status = models.StatusError
	result.Error = err.Error()
	result.Elapsed = time.Since(start)

	logger.Warn().
		Err(err).
		Str("code", string(engine.CodeOf(err))).
		Str("url", target).
		Int64("elapsed_ms", result.Elapsed.Milliseconds()).
		Msg("Source failed")

	return result
}
