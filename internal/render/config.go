// Package render provides the headless browser backends behind engine.Renderer.
package render

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/law-makers/pricewatch/internal/engine"
)

// Backend names a rendering implementation
type Backend string

const (
	BackendChromedp Backend = "chromedp"
	BackendRod      Backend = "rod"
)

// Config is the browser configuration shared by every session of a renderer.
// It is copied on construction and never modified afterwards.
type Config struct {
	Backend    Backend
	Headless   bool
	ChromePath string
	UserAgent  string
	// Proxies are rotated across sessions; empty means direct connections
	Proxies []string
	// Headers are sent with every request a session makes
	Headers map[string]string
	// Stealth injects the go-rod/stealth evasion script before navigation
	Stealth bool
	// PoolSize bounds concurrent sessions; 0 launches a browser per session
	PoolSize     int
	WindowWidth  int
	WindowHeight int
}

func (c Config) clone() Config {
	c.Proxies = slices.Clone(c.Proxies)
	c.Headers = maps.Clone(c.Headers)
	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		c.WindowWidth, c.WindowHeight = 1920, 1080
	}
	return c
}

func (c Config) windowSize() string {
	return fmt.Sprintf("%d,%d", c.WindowWidth, c.WindowHeight)
}

// ParseBackend maps a flag value to a Backend
func ParseBackend(s string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(s))) {
	case "", BackendChromedp:
		return BackendChromedp, nil
	case BackendRod:
		return BackendRod, nil
	default:
		return "", fmt.Errorf("unknown renderer %q (want chromedp or rod)", s)
	}
}

// New builds the renderer selected by cfg.Backend
func New(cfg Config) (engine.Renderer, error) {
	switch cfg.Backend {
	case "", BackendChromedp:
		return NewChromeRenderer(cfg)
	case BackendRod:
		return NewRodRenderer(cfg)
	default:
		return nil, fmt.Errorf("unknown renderer %q", cfg.Backend)
	}
}
