package config

import (
	"fmt"

	urlutil "github.com/law-makers/pricewatch/internal/utils/url"
)

func validate(c *Config) error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	switch c.Renderer {
	case "chromedp", "rod":
	default:
		return fmt.Errorf("unknown renderer %q (want chromedp or rod)", c.Renderer)
	}
	if c.PoolSize < 0 || c.PoolSize > DefaultMaxBrowserPoolSize {
		return fmt.Errorf("browser pool size must be between 0 and %d", DefaultMaxBrowserPoolSize)
	}
	if c.Cap <= 0 {
		return fmt.Errorf("cap must be > 0")
	}
	if c.Parallel < 0 {
		return fmt.Errorf("parallel must be >= 0")
	}
	if c.WaitOverride < 0 {
		return fmt.Errorf("wait override must be >= 0")
	}
	for _, p := range c.Proxies {
		if err := urlutil.ValidateProxyURL(p); err != nil {
			return err
		}
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache ttl must be >= 0")
	}
	if c.CacheMaxSizeBytes <= 0 {
		return fmt.Errorf("cache max size must be > 0")
	}
	if c.APIRateLimitRPS <= 0 || c.APIRateLimitBurst <= 0 {
		return fmt.Errorf("api rate limit must be > 0")
	}
	return nil
}
