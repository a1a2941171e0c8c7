package urlutil

import (
	"fmt"
	"net/url"
)

// ValidateURL checks that urlStr is an absolute http(s) URL with a host
func ValidateURL(urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: must be http or https, got %s", parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("invalid URL: missing host")
	}

	return nil
}

// ValidateProxyURL checks a browser proxy address. Chrome accepts http,
// https, socks4 and socks5 proxies.
func ValidateProxyURL(proxyStr string) error {
	parsed, err := url.Parse(proxyStr)
	if err != nil {
		return fmt.Errorf("invalid proxy URL: %w", err)
	}

	switch parsed.Scheme {
	case "http", "https", "socks4", "socks5":
	default:
		return fmt.Errorf("invalid proxy scheme %q: must be http, https, socks4 or socks5", parsed.Scheme)
	}

	if parsed.Hostname() == "" {
		return fmt.Errorf("invalid proxy URL: missing host")
	}

	return nil
}

// RedactProxy hides proxy credentials for logging
func RedactProxy(proxyStr string) string {
	parsed, err := url.Parse(proxyStr)
	if err != nil || parsed.User == nil {
		return proxyStr
	}
	parsed.User = url.User("***")
	return parsed.String()
}

// Host returns the host part of urlStr, or urlStr itself when it cannot be parsed
func Host(urlStr string) string {
	parsed, err := url.Parse(urlStr)
	if err != nil || parsed.Host == "" {
		return urlStr
	}
	return parsed.Host
}
