// Package aggregate fans a query out to every marketplace adapter and
// collects the results in catalog order.
package aggregate

import (
	"context"
	"sync"
	"time"

	"github.com/law-makers/pricewatch/internal/engine"
	"github.com/law-makers/pricewatch/internal/engine/source"
	"github.com/law-makers/pricewatch/internal/reqctx"
	"github.com/law-makers/pricewatch/pkg/models"
	"github.com/rs/zerolog/log"
)

// Fetcher is one marketplace adapter as seen by the aggregator
type Fetcher interface {
	Source() models.Source
	Fetch(ctx context.Context, q models.Query) models.SourceResult
}

// Option configures an Aggregator
type Option func(*Aggregator)

// WithParallelism bounds how many adapters run at once. The default runs all
// of them together.
func WithParallelism(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.parallel = n
		}
	}
}

// WithOnResult registers fn to be called once per finished source. Calls are
// serialized but arrive in completion order.
func WithOnResult(fn func(models.SourceResult)) Option {
	return func(a *Aggregator) {
		a.onResult = fn
	}
}

// Aggregator runs every adapter for a query concurrently
type Aggregator struct {
	fetchers []Fetcher
	parallel int
	onResult func(models.SourceResult)
}

// New creates an Aggregator over fetchers; their order is the result order
func New(fetchers []Fetcher, opts ...Option) *Aggregator {
	a := &Aggregator{
		fetchers: fetchers,
		parallel: len(fetchers),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.parallel <= 0 {
		a.parallel = 1
	}
	return a
}

// FromCatalog builds one adapter per rule, all sharing renderer
func FromCatalog(rules []models.ExtractionRule, renderer engine.Renderer, sourceOpts source.Options, opts ...Option) (*Aggregator, error) {
	fetchers := make([]Fetcher, 0, len(rules))
	for _, rule := range rules {
		adapter, err := source.NewAdapter(rule, renderer, sourceOpts)
		if err != nil {
			return nil, err
		}
		fetchers = append(fetchers, adapter)
	}
	return New(fetchers, opts...), nil
}

// Sources returns the adapters' sources in result order
func (a *Aggregator) Sources() []models.Source {
	out := make([]models.Source, len(a.fetchers))
	for i, f := range a.fetchers {
		out[i] = f.Source()
	}
	return out
}

// Search validates the query and runs every adapter, returning after all of
// them finish. Per-source failures are reported in the response. Cancelling
// ctx does not stop adapters already running; each one is bounded by its own
// wait timeout.
func (a *Aggregator) Search(ctx context.Context, category, brand string) (*models.SearchResponse, error) {
	q, err := models.NewQuery(category, brand)
	if err != nil {
		return nil, engine.NewEngineError(engine.ErrCodeInvalidQuery, "category and brand are required", err).
			WithDetail("category", category).
			WithDetail("brand", brand)
	}

	if !reqctx.HasRequestContext(ctx) {
		ctx = reqctx.WithRequestContext(ctx)
	}
	requestID := reqctx.GetRequestContext(ctx).RequestID
	runCtx := context.WithoutCancel(ctx)

	log.Info().
		Str("request_id", requestID).
		Str("category", q.Category).
		Str("brand", q.Brand).
		Int("sources", len(a.fetchers)).
		Msg("Search started")

	start := time.Now()
	results := make([]models.SourceResult, len(a.fetchers))

	var (
		wg     sync.WaitGroup
		hookMu sync.Mutex
	)
	sem := make(chan struct{}, a.parallel)

	for i, f := range a.fetchers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res := f.Fetch(runCtx, q)
			results[i] = res

			if a.onResult != nil {
				hookMu.Lock()
				a.onResult(res)
				hookMu.Unlock()
			}
		}()
	}
	wg.Wait()

	resp := &models.SearchResponse{
		RequestID: requestID,
		Query:     q,
		Results:   results,
		FetchedAt: start,
		Duration:  time.Since(start),
	}

	log.Info().
		Str("request_id", requestID).
		Int("listings", resp.TotalListings()).
		Bool("has_errors", resp.HasErrors()).
		Int64("elapsed_ms", resp.Duration.Milliseconds()).
		Msg("Search completed")

	return resp, nil
}
