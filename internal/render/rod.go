package render

import (
	"context"
	"errors"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/law-makers/pricewatch/internal/engine"
	urlutil "github.com/law-makers/pricewatch/internal/utils/url"
	"github.com/rs/zerolog/log"
)

// RodRenderer renders pages with go-rod. One browser is launched up front and
// every render runs in its own incognito context on it.
type RodRenderer struct {
	cfg      Config
	launcher *launcher.Launcher
	browser  *rod.Browser
	sem      chan struct{}
}

// NewRodRenderer launches a browser for cfg. Only the first configured proxy
// is used since rod applies it at launch.
func NewRodRenderer(cfg Config) (*RodRenderer, error) {
	cfg = cfg.clone()
	if cfg.ChromePath == "" {
		cfg.ChromePath = FindChrome()
	}

	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(true).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-dev-shm-usage").
		Set("window-size", cfg.windowSize())
	if cfg.ChromePath != "" {
		l = l.Bin(cfg.ChromePath)
	}
	if len(cfg.Proxies) > 0 {
		l = l.Proxy(cfg.Proxies[0])
		log.Debug().Str("proxy", urlutil.RedactProxy(cfg.Proxies[0])).Msg("Launching rod browser through proxy")
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, engine.NewEngineError(engine.ErrCodeBrowserUnavailable, "failed to launch browser", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, engine.NewEngineError(engine.ErrCodeBrowserUnavailable, "failed to connect to browser", err)
	}

	size := cfg.PoolSize
	if size <= 0 {
		size = 3
	}

	log.Info().Int("pool_size", size).Msg("Rod browser ready")

	return &RodRenderer{
		cfg:      cfg,
		launcher: l,
		browser:  browser,
		sem:      make(chan struct{}, size),
	}, nil
}

// Name returns the backend name
func (r *RodRenderer) Name() string {
	return string(BackendRod)
}

// Render loads req.URL in a fresh incognito context and returns the document
// once req.WaitSelector is present.
func (r *RodRenderer) Render(ctx context.Context, req engine.RenderRequest) (string, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, req.Timeout)
	defer cancel()

	select {
	case r.sem <- struct{}{}:
		defer func() { <-r.sem }()
	case <-ctx.Done():
		return "", engine.NewEngineError(engine.ErrCodeRenderTimeout, "timed out waiting for a browser session", ctx.Err())
	}

	incognito, err := r.browser.Incognito()
	if err != nil {
		return "", engine.NewEngineError(engine.ErrCodeBrowserUnavailable, "failed to open incognito context", err)
	}
	defer incognito.Close()

	pg, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", engine.NewEngineError(engine.ErrCodeBrowserUnavailable, "failed to open page", err)
	}
	defer pg.Close()

	if err := r.prepare(pg); err != nil {
		return "", classify(err, ctx, req)
	}

	p := pg.Context(ctx)
	if err := p.Navigate(req.URL); err != nil {
		return "", classify(err, ctx, req)
	}
	if _, err := p.Element(req.WaitSelector); err != nil {
		return "", classify(err, ctx, req)
	}
	html, err := p.HTML()
	if err != nil {
		return "", classify(err, ctx, req)
	}

	log.Debug().
		Str("renderer", r.Name()).
		Str("url", req.URL).
		Int("bytes", len(html)).
		Int64("elapsed_ms", time.Since(start).Milliseconds()).
		Msg("Page rendered")

	return html, nil
}

// prepare applies stealth, user agent and headers before the first navigation
func (r *RodRenderer) prepare(pg *rod.Page) error {
	if r.cfg.Stealth {
		if _, err := pg.EvalOnNewDocument(stealth.JS); err != nil {
			return err
		}
	}
	if r.cfg.UserAgent != "" {
		if err := pg.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: r.cfg.UserAgent}); err != nil {
			return err
		}
	}
	if len(r.cfg.Headers) > 0 {
		dict := make([]string, 0, len(r.cfg.Headers)*2)
		for k, v := range r.cfg.Headers {
			dict = append(dict, k, v)
		}
		if _, err := pg.SetExtraHeaders(dict); err != nil {
			return err
		}
	}
	return nil
}

// Close disconnects and kills the browser
func (r *RodRenderer) Close() error {
	err := r.browser.Close()
	r.launcher.Kill()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
