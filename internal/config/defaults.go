package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel           = "info"
	DefaultJSONLog            = false
	DefaultUserAgent          = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	DefaultRenderer           = "chromedp"
	DefaultBrowserHeadless    = true
	DefaultBrowserPoolSize    = 3
	DefaultMaxBrowserPoolSize = 10
	DefaultCap                = 3
	DefaultCacheTTL           = 10 * time.Minute
	DefaultCacheMaxSizeBytes  = 8 * 1024 * 1024
	DefaultAddr               = ":8080"
	DefaultAPIRateLimitRPS    = 0.5
	DefaultAPIRateLimitBurst  = 3
	DefaultEnvFile            = ".env"
	EnvPrefix                 = "PRICEWATCH_"
)
