package render

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/law-makers/pricewatch/internal/engine"
	"github.com/rs/zerolog/log"
)

// tabOpener creates an isolated browsing context routed through proxy
type tabOpener func(proxy string) (context.Context, context.CancelFunc)

// SessionPool hands out isolated sessions on one shared browser process.
// Every session is a fresh incognito browser context that is disposed on
// release, so no cookies or navigation state leak between searches. At most
// Size sessions are live at once.
type SessionPool struct {
	size    int
	sem     chan struct{}
	open    tabOpener
	release func()

	mu     sync.Mutex
	closed bool
}

// Session is one isolated browser context leased from a SessionPool
type Session struct {
	Ctx   context.Context
	Proxy string

	cancel context.CancelFunc
	pool   *SessionPool
	once   sync.Once
}

// NewSessionPool launches the shared browser and returns a pool of size sessions
func NewSessionPool(cfg Config, size int) (*SessionPool, error) {
	cfg = cfg.clone()
	if size <= 0 {
		size = 1
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocatorOptions(cfg, "")...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx, quietLogging()...)

	// An empty Run starts the browser so sessions can open browser contexts on it
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, engine.NewEngineError(engine.ErrCodeBrowserUnavailable, "failed to start browser", err)
	}

	open := func(proxy string) (context.Context, context.CancelFunc) {
		opt := chromedp.WithNewBrowserContext()
		if proxy != "" {
			opt = chromedp.WithNewBrowserContext(func(p *target.CreateBrowserContextParams) *target.CreateBrowserContextParams {
				return p.WithProxyServer(proxy)
			})
		}
		return chromedp.NewContext(browserCtx, opt)
	}

	pool := newSessionPool(size, open, func() {
		browserCancel()
		allocCancel()
	})

	log.Info().Int("pool_size", size).Msg("Browser session pool ready")
	return pool, nil
}

func newSessionPool(size int, open tabOpener, release func()) *SessionPool {
	return &SessionPool{
		size:    size,
		sem:     make(chan struct{}, size),
		open:    open,
		release: release,
	}
}

// Acquire waits for a free slot and opens a new session. The wait is bounded
// by ctx; running out of time yields an error matching ErrRenderTimeout.
func (sp *SessionPool) Acquire(ctx context.Context, proxy string) (*Session, error) {
	select {
	case sp.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, engine.NewEngineError(engine.ErrCodeRenderTimeout, "timed out waiting for a browser session", ctx.Err())
	}

	sp.mu.Lock()
	closed := sp.closed
	sp.mu.Unlock()
	if closed {
		<-sp.sem
		return nil, engine.NewEngineError(engine.ErrCodeBrowserUnavailable, "browser session pool is closed", nil)
	}

	tabCtx, cancel := sp.open(proxy)
	log.Debug().Int("in_use", len(sp.sem)).Msg("Browser session acquired")

	return &Session{Ctx: tabCtx, Proxy: proxy, cancel: cancel, pool: sp}, nil
}

// Release disposes the session's browser context and frees its slot.
// Calling it more than once is safe.
func (s *Session) Release() {
	s.once.Do(func() {
		s.cancel()
		<-s.pool.sem
		log.Debug().Int("in_use", len(s.pool.sem)).Msg("Browser session released")
	})
}

// Close shuts down the shared browser. Live sessions die with it.
func (sp *SessionPool) Close() error {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	if sp.closed {
		return nil
	}
	sp.closed = true
	if sp.release != nil {
		sp.release()
	}
	log.Debug().Msg("Browser session pool closed")
	return nil
}

// Size returns the pool size
func (sp *SessionPool) Size() int {
	return sp.size
}

// InUse returns the number of sessions currently leased
func (sp *SessionPool) InUse() int {
	return len(sp.sem)
}

func (sp *SessionPool) String() string {
	return fmt.Sprintf("SessionPool(%d/%d)", sp.InUse(), sp.size)
}
