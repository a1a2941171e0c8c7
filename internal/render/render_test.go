package render

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/law-makers/pricewatch/internal/engine"
)

func TestParseBackend(t *testing.T) {
	tests := []struct {
		in      string
		want    Backend
		wantErr bool
	}{
		{"", BackendChromedp, false},
		{"chromedp", BackendChromedp, false},
		{" ROD ", BackendRod, false},
		{"playwright", "", true},
	}
	for _, tt := range tests {
		got, err := ParseBackend(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseBackend(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestConfigClone(t *testing.T) {
	cfg := Config{
		Proxies: []string{"http://a:1"},
		Headers: map[string]string{"Accept": "text/html"},
	}
	c := cfg.clone()
	cfg.Proxies[0] = "changed"
	cfg.Headers["Accept"] = "changed"

	if c.Proxies[0] != "http://a:1" || c.Headers["Accept"] != "text/html" {
		t.Error("clone shares state with the original config")
	}
	if c.windowSize() != "1920,1080" {
		t.Errorf("default window size = %s", c.windowSize())
	}
}

func TestClassify(t *testing.T) {
	req := engine.RenderRequest{URL: "https://www.amazon.in/s?k=laptop", WaitSelector: "div.s-main-slot", Timeout: time.Second}

	expired, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	if err := classify(errors.New("waiting for selector"), expired, req); !errors.Is(err, engine.ErrRenderTimeout) {
		t.Errorf("expected timeout after deadline, got %v", err)
	}

	live := context.Background()
	err := classify(errors.New("net::ERR_NAME_NOT_RESOLVED"), live, req)
	if !errors.Is(err, engine.ErrNavigation) {
		t.Errorf("expected navigation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "www.amazon.in") {
		t.Errorf("navigation error should name the host: %v", err)
	}

	coded := engine.NewEngineError(engine.ErrCodeBrowserUnavailable, "gone", nil)
	if got := classify(coded, expired, req); got != error(coded) {
		t.Errorf("coded errors must pass through, got %v", got)
	}
}

func TestAllocatorOptions(t *testing.T) {
	base := len(allocatorOptions(Config{Headless: true}.clone(), ""))
	full := len(allocatorOptions(Config{
		Headless:   true,
		ChromePath: "/usr/bin/chromium",
		UserAgent:  "Bot/1.0",
	}.clone(), "http://proxy:3128"))

	if full != base+3 {
		t.Errorf("expected 3 extra options for path, user agent and proxy, got %d", full-base)
	}
}

func requireChrome(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	if FindChrome() == "" {
		t.Skip("Chrome not available")
	}
}

func delayedListingServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, `<!DOCTYPE html><html><body>
<div id="root">loading</div>
<script>
setTimeout(function () {
  document.getElementById("root").innerHTML =
    '<div class="card"><span class="name">Acme %s</span><span class="price">45,000</span></div>';
}, 200);
</script>
</body></html>`, r.Header.Get("X-Test"))
	}))
}

func TestBrowserRenderers(t *testing.T) {
	requireChrome(t)

	srv := delayedListingServer()
	defer srv.Close()

	backends := []struct {
		name string
		cfg  Config
	}{
		{"chromedp pooled", Config{Backend: BackendChromedp, PoolSize: 1}},
		{"chromedp standalone", Config{Backend: BackendChromedp}},
		{"rod", Config{Backend: BackendRod, PoolSize: 1}},
	}

	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			cfg := b.cfg
			cfg.Headless = true
			cfg.Stealth = true
			cfg.Headers = map[string]string{"X-Test": "Laptop"}

			r, err := New(cfg)
			if err != nil {
				t.Skipf("browser unavailable: %v", err)
			}
			defer r.Close()

			html, err := r.Render(context.Background(), engine.RenderRequest{
				URL:          srv.URL,
				WaitSelector: "div.card",
				Timeout:      15 * time.Second,
			})
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			if !strings.Contains(html, "Acme Laptop") {
				t.Errorf("rendered page missing injected listing: %s", html)
			}

			_, err = r.Render(context.Background(), engine.RenderRequest{
				URL:          srv.URL,
				WaitSelector: "div.never-appears",
				Timeout:      time.Second,
			})
			if !errors.Is(err, engine.ErrRenderTimeout) {
				t.Errorf("expected ErrRenderTimeout, got %v", err)
			}
		})
	}
}
