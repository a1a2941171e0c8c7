package render

import (
	"context"
	"errors"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/go-rod/stealth"
	"github.com/law-makers/pricewatch/internal/engine"
	"github.com/law-makers/pricewatch/internal/proxy"
	urlutil "github.com/law-makers/pricewatch/internal/utils/url"
	"github.com/rs/zerolog/log"
)

// ChromeRenderer renders pages with chromedp. With a pool size above zero all
// sessions share one browser process; otherwise each render launches and
// tears down its own browser.
type ChromeRenderer struct {
	cfg     Config
	pool    *SessionPool
	proxies *proxy.Rotator
}

// NewChromeRenderer creates a chromedp renderer from cfg
func NewChromeRenderer(cfg Config) (*ChromeRenderer, error) {
	cfg = cfg.clone()
	if cfg.ChromePath == "" {
		cfg.ChromePath = FindChrome()
	}

	r := &ChromeRenderer{
		cfg:     cfg,
		proxies: proxy.NewRotator(cfg.Proxies, 0),
	}

	if cfg.PoolSize > 0 {
		pool, err := NewSessionPool(cfg, cfg.PoolSize)
		if err != nil {
			return nil, err
		}
		r.pool = pool
	}

	return r, nil
}

// Name returns the backend name
func (r *ChromeRenderer) Name() string {
	return string(BackendChromedp)
}

// Render loads req.URL in a fresh session and returns the document once
// req.WaitSelector is present. Acquisition, navigation and the wait all share
// req.Timeout.
func (r *ChromeRenderer) Render(ctx context.Context, req engine.RenderRequest) (string, error) {
	start := time.Now()
	deadline := start.Add(req.Timeout)

	acquireCtx, cancelAcquire := context.WithDeadline(ctx, deadline)
	defer cancelAcquire()

	proxyAddr := r.proxies.Next()
	tabCtx, closeSession, err := r.openSession(acquireCtx, proxyAddr)
	if err != nil {
		return "", err
	}
	defer closeSession()

	runCtx, cancel := context.WithDeadline(tabCtx, deadline)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var html string
	err = chromedp.Run(runCtx, r.tasks(req, &html)...)
	if err != nil {
		err = classify(err, runCtx, req)
		if !errors.Is(err, engine.ErrRenderTimeout) {
			r.proxies.MarkFailed(proxyAddr)
		}
		return "", err
	}
	r.proxies.MarkHealthy(proxyAddr)

	log.Debug().
		Str("renderer", r.Name()).
		Str("url", req.URL).
		Int("bytes", len(html)).
		Int64("elapsed_ms", time.Since(start).Milliseconds()).
		Msg("Page rendered")

	return html, nil
}

// openSession returns a tab context and the func that disposes it
func (r *ChromeRenderer) openSession(ctx context.Context, proxyAddr string) (context.Context, func(), error) {
	if r.pool != nil {
		sess, err := r.pool.Acquire(ctx, proxyAddr)
		if err != nil {
			return nil, nil, err
		}
		return sess.Ctx, sess.Release, nil
	}

	if proxyAddr != "" {
		log.Debug().Str("proxy", urlutil.RedactProxy(proxyAddr)).Msg("Launching browser through proxy")
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocatorOptions(r.cfg, proxyAddr)...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, quietLogging()...)
	return tabCtx, func() {
		tabCancel()
		allocCancel()
	}, nil
}

func (r *ChromeRenderer) tasks(req engine.RenderRequest, html *string) []chromedp.Action {
	tasks := []chromedp.Action{network.Enable()}

	if len(r.cfg.Headers) > 0 {
		h := make(network.Headers, len(r.cfg.Headers))
		for k, v := range r.cfg.Headers {
			h[k] = v
		}
		tasks = append(tasks, network.SetExtraHTTPHeaders(h))
	}

	if r.cfg.Stealth {
		tasks = append(tasks, chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(stealth.JS).Do(ctx)
			return err
		}))
	}

	return append(tasks,
		chromedp.Navigate(req.URL),
		chromedp.WaitReady(req.WaitSelector, chromedp.ByQuery),
		chromedp.OuterHTML("html", html, chromedp.ByQuery),
	)
}

// Close shuts down the shared browser, if any
func (r *ChromeRenderer) Close() error {
	if r.pool != nil {
		return r.pool.Close()
	}
	return nil
}

// allocatorOptions builds the Chrome launch flags for cfg
func allocatorOptions(cfg Config, proxyAddr string) []chromedp.ExecAllocatorOption {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-breakpad", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-hang-monitor", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("log-level", "3"),
		chromedp.Flag("window-size", cfg.windowSize()),
	}

	if cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ChromePath))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	if cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", "new"))
	} else {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if proxyAddr != "" {
		opts = append(opts, chromedp.ProxyServer(proxyAddr))
	}

	return opts
}

// quietLogging drops chromedp's own log output; failures surface as errors
func quietLogging() []chromedp.ContextOption {
	discard := func(string, ...interface{}) {}
	return []chromedp.ContextOption{
		chromedp.WithLogf(discard),
		chromedp.WithErrorf(discard),
	}
}

// classify maps a browser failure to the engine taxonomy. A missed deadline
// becomes ErrRenderTimeout whatever the backend reported.
func classify(err error, runCtx context.Context, req engine.RenderRequest) error {
	var engineErr *engine.EngineError
	if errors.As(err, &engineErr) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return engine.NewEngineError(engine.ErrCodeRenderTimeout,
			"timed out waiting for "+req.WaitSelector, err).
			WithDetail("url", req.URL).
			WithDetail("timeout", req.Timeout.String())
	}
	if errors.Is(err, context.Canceled) {
		return engine.NewEngineError(engine.ErrCodeRenderTimeout, "render cancelled", err).
			WithDetail("url", req.URL)
	}

	return engine.NewEngineError(engine.ErrCodeNavigation, "failed to render "+urlutil.Host(req.URL), err).
		WithDetail("url", req.URL)
}
