// Package headers handles the extra HTTP headers sent with every render.
package headers

import (
	"fmt"
	"net/http"
	"strings"
)

// Parse converts "Key: Value" strings into a header map with canonical keys.
// An entry without a colon or with an empty key is an error.
func Parse(h []string) (map[string]string, error) {
	m := make(map[string]string, len(h))
	for _, hdr := range h {
		key, value, ok := strings.Cut(hdr, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid header %q: expected \"Key: Value\"", hdr)
		}
		m[http.CanonicalHeaderKey(key)] = strings.TrimSpace(value)
	}
	return m, nil
}

// Merge returns base overlaid with extra. Neither input is modified.
func Merge(base, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[http.CanonicalHeaderKey(k)] = v
	}
	for k, v := range extra {
		out[http.CanonicalHeaderKey(k)] = v
	}
	return out
}

// WithoutUserAgent splits a User-Agent entry out of h. Browsers take the user
// agent through a dedicated override rather than the extra header set.
func WithoutUserAgent(h map[string]string) (map[string]string, string) {
	out := make(map[string]string, len(h))
	var ua string
	for k, v := range h {
		if http.CanonicalHeaderKey(k) == "User-Agent" {
			ua = v
			continue
		}
		out[k] = v
	}
	return out, ua
}
