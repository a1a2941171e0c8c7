package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// FakePage is a canned render outcome for FakeRenderer
type FakePage struct {
	HTML  string
	Err   error
	Delay time.Duration
	// Hang blocks until the request timeout or ctx ends, then fails with ErrRenderTimeout
	Hang bool
}

// FakeRenderer serves canned pages keyed by URL substring, for tests that must
// not start a browser.
type FakeRenderer struct {
	mu    sync.Mutex
	pages map[string]FakePage
	calls []RenderRequest
}

// NewFakeRenderer returns a renderer with no pages registered
func NewFakeRenderer() *FakeRenderer {
	return &FakeRenderer{pages: make(map[string]FakePage)}
}

// Handle registers page for any URL containing match
func (f *FakeRenderer) Handle(match string, page FakePage) *FakeRenderer {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[match] = page
	return f
}

// Calls returns the requests seen so far
func (f *FakeRenderer) Calls() []RenderRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RenderRequest, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *FakeRenderer) Render(ctx context.Context, req RenderRequest) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	var (
		page  FakePage
		found bool
	)
	for match, p := range f.pages {
		if strings.Contains(req.URL, match) {
			page, found = p, true
			break
		}
	}
	f.mu.Unlock()

	if !found {
		return "", NewEngineError(ErrCodeNavigation, fmt.Sprintf("no fake page for %s", req.URL), nil)
	}

	if page.Hang {
		timer := time.NewTimer(req.Timeout)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
		}
		return "", NewEngineError(ErrCodeRenderTimeout, "timed out waiting for "+req.WaitSelector, nil)
	}

	if page.Delay > 0 {
		select {
		case <-time.After(page.Delay):
		case <-ctx.Done():
			return "", NewEngineError(ErrCodeRenderTimeout, "render cancelled", ctx.Err())
		}
	}
	return page.HTML, page.Err
}

func (f *FakeRenderer) Name() string { return "fake" }

func (f *FakeRenderer) Close() error { return nil }
