// Package proxy rotates browser proxies across render sessions.
package proxy

import (
	"sync"
	"time"
)

// DefaultCooldown is how long a failed proxy is skipped
const DefaultCooldown = 5 * time.Minute

// Rotator hands out proxies round-robin, skipping ones that failed recently
type Rotator struct {
	mu       sync.Mutex
	proxies  []string
	index    int
	failed   map[string]time.Time
	cooldown time.Duration
	now      func() time.Time
}

// NewRotator creates a Rotator over proxies. A non-positive cooldown means DefaultCooldown.
func NewRotator(proxies []string, cooldown time.Duration) *Rotator {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	list := make([]string, len(proxies))
	copy(list, proxies)
	return &Rotator{
		proxies:  list,
		failed:   make(map[string]time.Time),
		cooldown: cooldown,
		now:      time.Now,
	}
}

// Len returns the number of configured proxies
func (r *Rotator) Len() int {
	return len(r.proxies)
}

// Next returns the next healthy proxy, or "" when none are configured.
// If every proxy is cooling down, the one that failed longest ago is returned.
func (r *Rotator) Next() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.proxies) == 0 {
		return ""
	}

	now := r.now()
	oldest := ""
	var oldestAt time.Time

	for range r.proxies {
		p := r.proxies[r.index]
		r.index = (r.index + 1) % len(r.proxies)

		failedAt, ok := r.failed[p]
		if !ok {
			return p
		}
		if now.Sub(failedAt) >= r.cooldown {
			delete(r.failed, p)
			return p
		}
		if oldest == "" || failedAt.Before(oldestAt) {
			oldest, oldestAt = p, failedAt
		}
	}
	return oldest
}

// MarkFailed puts proxy into cooldown
func (r *Rotator) MarkFailed(proxy string) {
	if proxy == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed[proxy] = r.now()
}

// MarkHealthy clears the failure status of proxy
func (r *Rotator) MarkHealthy(proxy string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.failed, proxy)
}
