package config

import (
	"github.com/spf13/cobra"
)

// RegisterFlags registers the global CLI flags on the root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	pf := cmd.PersistentFlags()
	pf.BoolP("verbose", "v", false, "Enable debug logging")
	pf.BoolP("quiet", "q", false, "Suppress all output except errors")
	pf.Bool("json", false, "Output in JSON format only")
	pf.String("proxy", "", "Comma-separated HTTP/SOCKS5 proxies rotated across sessions")
	pf.String("user-agent", "", "Custom user agent string")
	pf.String("config", "", "Path to a JSON extraction rules file (replaces the built-in catalog)")
	pf.String("renderer", DefaultRenderer, "Browser backend: chromedp or rod")
	pf.Bool("headful", false, "Show the browser window")
	pf.Bool("stealth", false, "Inject bot-detection evasion scripts")
	pf.Int("cap", DefaultCap, "Maximum listings per source")
	pf.Bool("strict-brand", false, "Apply the brand filter to every source")
	pf.Int("parallel", 0, "Maximum sources fetched at once (0 = all)")
	pf.Int("pool-size", DefaultBrowserPoolSize, "Concurrent browser sessions (0 = one browser per session)")
	pf.Duration("wait", 0, "Override every source's wait timeout (e.g. 25s)")
	pf.StringArrayP("header", "H", nil, "Extra request header \"Key: Value\" (repeatable)")
	pf.String("only", "", "Comma-separated subset of sources to query")
	pf.Bool("escape-query", false, "Percent-encode search terms in URLs")
}

// RegisterServeFlags registers flags used only by the HTTP server
func RegisterServeFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("addr", DefaultAddr, "Listen address")
	f.StringSlice("cors-origin", nil, "Allowed CORS origins (default any)")
	f.Float64("rate-limit", DefaultAPIRateLimitRPS, "Searches per second allowed per client IP")
	f.Duration("cache-ttl", DefaultCacheTTL, "How long successful searches are cached")
}
