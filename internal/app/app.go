// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/law-makers/pricewatch/internal/cache"
	"github.com/law-makers/pricewatch/internal/config"
	"github.com/law-makers/pricewatch/internal/engine"
	"github.com/law-makers/pricewatch/internal/engine/aggregate"
	"github.com/law-makers/pricewatch/internal/engine/source"
	"github.com/law-makers/pricewatch/internal/render"
	"github.com/law-makers/pricewatch/internal/reqctx"
	"github.com/law-makers/pricewatch/internal/utils/headers"
	"github.com/law-makers/pricewatch/pkg/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Version is set at build time
var Version = "dev"

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared by the CLI commands and the HTTP
// server. Use Close to release the browser.
type Application struct {
	Config   *config.Config
	Logger   *zerolog.Logger
	Cache    *cache.MemoryCache
	Renderer engine.Renderer
	Catalog  []models.ExtractionRule

	sourceOpts source.Options
	startTime  time.Time
}

// ConfigureLogging sets the global zerolog level and writer from cfg.
// Info logs are hidden unless verbose, matching the CLI's quiet default.
func ConfigureLogging(cfg *config.Config) zerolog.Logger {
	level := zerolog.ErrorLevel
	switch cfg.LogLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(level)

	var w io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	if cfg.JSONLog {
		w = os.Stderr
	}

	log.Logger = log.Output(w).With().Timestamp().Logger()
	return log.Logger
}

// New creates an Application with the renderer chosen by cfg.
func New(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := ConfigureLogging(cfg)

	catalog, err := LoadCatalog(cfg)
	if err != nil {
		return nil, err
	}

	backend, err := render.ParseBackend(cfg.Renderer)
	if err != nil {
		return nil, err
	}

	// A User-Agent passed with -H wins over --user-agent
	extraHeaders, userAgent := headers.WithoutUserAgent(cfg.Headers)
	if userAgent == "" {
		userAgent = cfg.UserAgent
	}

	renderer, err := render.New(render.Config{
		Backend:    backend,
		Headless:   cfg.Headless,
		ChromePath: cfg.ChromePath,
		UserAgent:  userAgent,
		Proxies:    cfg.Proxies,
		Headers:    extraHeaders,
		Stealth:    cfg.Stealth,
		PoolSize:   cfg.PoolSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start renderer: %w", err)
	}

	logger.Debug().
		Str("renderer", renderer.Name()).
		Int("pool_size", cfg.PoolSize).
		Int("sources", len(catalog)).
		Msg("Renderer initialized")

	return NewWithRenderer(cfg, renderer, catalog), nil
}

// NewWithRenderer assembles an Application around an existing renderer and
// catalog. It takes ownership of renderer.
func NewWithRenderer(cfg *config.Config, renderer engine.Renderer, catalog []models.ExtractionRule) *Application {
	logger := log.Logger

	return &Application{
		Config:   cfg,
		Logger:   &logger,
		Cache:    cache.NewMemoryCache(cfg.CacheMaxSizeBytes),
		Renderer: renderer,
		Catalog:  catalog,
		sourceOpts: source.Options{
			Cap:          cfg.Cap,
			StrictBrand:  cfg.StrictBrand,
			EscapeQuery:  cfg.EscapeQuery,
			WaitOverride: cfg.WaitOverride,
		},
		startTime: time.Now(),
	}
}

// LoadCatalog returns the rules file named by cfg, or the built-in catalog,
// narrowed to cfg.Only.
func LoadCatalog(cfg *config.Config) ([]models.ExtractionRule, error) {
	catalog := source.DefaultCatalog()
	if cfg.RulesPath != "" {
		loaded, err := source.LoadCatalog(cfg.RulesPath)
		if err != nil {
			return nil, err
		}
		catalog = loaded
	}
	return source.Filter(catalog, cfg.Only)
}

// Aggregator builds an aggregator over the catalog. opts can attach per-call
// hooks such as a progress callback.
func (a *Application) Aggregator(opts ...aggregate.Option) (*aggregate.Aggregator, error) {
	opts = append([]aggregate.Option{aggregate.WithParallelism(a.Config.Parallel)}, opts...)
	return aggregate.FromCatalog(a.Catalog, a.Renderer, a.sourceOpts, opts...)
}

// Search runs a query, serving it from cache when a fresh error-free result
// exists. Only responses where no source failed are cached.
func (a *Application) Search(ctx context.Context, category, brand string, opts ...aggregate.Option) (*models.SearchResponse, error) {
	return a.search(ctx, category, brand, true, opts)
}

// SearchFresh always queries the marketplaces, then refreshes the cache entry.
func (a *Application) SearchFresh(ctx context.Context, category, brand string, opts ...aggregate.Option) (*models.SearchResponse, error) {
	return a.search(ctx, category, brand, false, opts)
}

func (a *Application) search(ctx context.Context, category, brand string, useCache bool, opts []aggregate.Option) (*models.SearchResponse, error) {
	q, err := models.NewQuery(category, brand)
	if err != nil {
		return nil, engine.NewEngineError(engine.ErrCodeInvalidQuery, "category and brand are required", err)
	}

	key := q.Key()
	if useCache {
		if cached, ok := a.Cache.Get(key); ok {
			hit := *cached
			hit.Cached = true
			return &hit, nil
		}
	}

	agg, err := a.Aggregator(opts...)
	if err != nil {
		return nil, reqctx.NewRequestError(ctx, err)
	}

	resp, err := agg.Search(ctx, q.Category, q.Brand)
	if err != nil {
		return nil, err
	}

	if !resp.HasErrors() && a.Config.CacheTTL > 0 {
		a.Cache.Set(key, resp, a.Config.CacheTTL)
	}
	return resp, nil
}

// Close releases the renderer and stops the cache.
func (a *Application) Close() error {
	a.Logger.Debug().Msg("Shutting down application")

	var err error
	if a.Renderer != nil {
		if cerr := a.Renderer.Close(); cerr != nil {
			a.Logger.Warn().Err(cerr).Msg("Error closing renderer")
			err = cerr
		}
	}
	if a.Cache != nil {
		a.Cache.Close()
	}

	a.Logger.Debug().Dur("uptime", a.Uptime()).Msg("Application shutdown complete")
	return err
}

// StartTime returns when the application was created.
func (a *Application) StartTime() time.Time {
	return a.startTime
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
