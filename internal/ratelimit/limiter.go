// Package ratelimit throttles inbound API clients with per-key token buckets.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// KeyedLimiter keeps one token bucket per key (client IP for the API).
// Buckets idle for longer than the idle window are dropped by Sweep.
type KeyedLimiter struct {
	mu       sync.Mutex
	limiters map[string]*keyedEntry
	perKey   rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time
}

type keyedEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewKeyedLimiter creates a limiter allowing requestsPerSecond per key
func NewKeyedLimiter(requestsPerSecond float64, burst int) *KeyedLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1.0
	}
	if burst <= 0 {
		burst = 5
	}

	return &KeyedLimiter{
		limiters: make(map[string]*keyedEntry),
		perKey:   rate.Limit(requestsPerSecond),
		burst:    burst,
		idle:     10 * time.Minute,
		now:      time.Now,
	}
}

// Allow reports whether a request for key may proceed now
func (kl *KeyedLimiter) Allow(key string) bool {
	return kl.get(key).AllowN(kl.now(), 1)
}

// RetryAfter returns how long key must wait for its next token
func (kl *KeyedLimiter) RetryAfter(key string) time.Duration {
	r := kl.get(key).ReserveN(kl.now(), 1)
	defer r.CancelAt(kl.now())
	if !r.OK() {
		return time.Second
	}
	return r.DelayFrom(kl.now())
}

// Len returns the number of tracked keys
func (kl *KeyedLimiter) Len() int {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	return len(kl.limiters)
}

// Sweep drops buckets that have not been used within the idle window
func (kl *KeyedLimiter) Sweep() int {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	cutoff := kl.now().Add(-kl.idle)
	removed := 0
	for key, e := range kl.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(kl.limiters, key)
			removed++
		}
	}
	return removed
}

func (kl *KeyedLimiter) get(key string) *rate.Limiter {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	e, ok := kl.limiters[key]
	if !ok {
		e = &keyedEntry{limiter: rate.NewLimiter(kl.perKey, kl.burst)}
		kl.limiters[key] = e
	}
	e.lastSeen = kl.now()
	return e.limiter
}
