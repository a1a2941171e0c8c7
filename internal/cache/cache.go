// Package cache keeps recent search responses in memory.
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/law-makers/pricewatch/pkg/models"
	"github.com/rs/zerolog/log"
)

// Cache defines the interface for search response caching.
type Cache interface {
	// Get retrieves a cached response by key.
	Get(key string) (*models.SearchResponse, bool)

	// Set stores a response with the specified TTL, replacing any existing entry.
	Set(key string, resp *models.SearchResponse, ttl time.Duration) error

	// Delete removes a cached response by key. Missing keys are not an error.
	Delete(key string) error

	// Clear removes all cached responses.
	Clear() error

	// Close stops background work.
	Close()
}

type cacheEntry struct {
	Data      *models.SearchResponse
	ExpiresAt time.Time
	Key       string
	Size      int64
}

// Stats is a point-in-time view of cache usage
type Stats struct {
	Entries   int     `json:"entries"`
	SizeBytes int64   `json:"size_bytes"`
	MaxBytes  int64   `json:"max_bytes"`
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	HitRate   float64 `json:"hit_rate"`
}

// MemoryCache implements in-memory response caching with LRU eviction
type MemoryCache struct {
	store   map[string]*list.Element
	lruList *list.List
	mu      sync.Mutex
	maxSize int64
	size    int64
	ctx     context.Context
	cancel  context.CancelFunc
	hits    uint64
	misses  uint64
	now     func() time.Time
}

// DefaultTTL applies when Set is called with a non-positive ttl
const DefaultTTL = 5 * time.Minute

// NewMemoryCache creates a new in-memory cache bounded by maxSizeBytes
func NewMemoryCache(maxSizeBytes int64) *MemoryCache {
	if maxSizeBytes <= 0 {
		maxSizeBytes = 8 * 1024 * 1024
	}

	ctx, cancel := context.WithCancel(context.Background())

	cache := &MemoryCache{
		store:   make(map[string]*list.Element),
		lruList: list.New(),
		maxSize: maxSizeBytes,
		ctx:     ctx,
		cancel:  cancel,
		now:     time.Now,
	}

	go cache.cleanupExpired(time.Minute)

	return cache
}

// Get retrieves a cached response and marks it most recently used
func (mc *MemoryCache) Get(key string) (*models.SearchResponse, bool) {
	mc.mu.Lock()
	element, exists := mc.store[key]
	if !exists {
		mc.misses++
		mc.mu.Unlock()
		return nil, false
	}

	entry := element.Value.(*cacheEntry)
	if mc.now().After(entry.ExpiresAt) {
		mc.removeElement(element)
		mc.misses++
		mc.mu.Unlock()
		return nil, false
	}

	mc.lruList.MoveToFront(element)
	mc.hits++
	mc.mu.Unlock()

	log.Debug().Str("key", key).Msg("Cache hit")
	return entry.Data, true
}

// Set stores a response in cache with TTL
func (mc *MemoryCache) Set(key string, resp *models.SearchResponse, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	entry := &cacheEntry{
		Data:      resp,
		ExpiresAt: mc.now().Add(ttl),
		Key:       key,
		Size:      estimateSize(resp),
	}

	if element, exists := mc.store[key]; exists {
		mc.size -= element.Value.(*cacheEntry).Size
		element.Value = entry
		mc.lruList.MoveToFront(element)
		mc.size += entry.Size
	} else {
		for mc.size+entry.Size > mc.maxSize && mc.lruList.Len() > 0 {
			mc.evictLRU()
		}
		mc.store[key] = mc.lruList.PushFront(entry)
		mc.size += entry.Size
	}

	log.Debug().
		Str("key", key).
		Dur("ttl", ttl).
		Int64("size_bytes", entry.Size).
		Msg("Cached response")

	return nil
}

// Delete removes a cached response
func (mc *MemoryCache) Delete(key string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if element, exists := mc.store[key]; exists {
		mc.removeElement(element)
	}
	return nil
}

// Clear removes all cached responses
func (mc *MemoryCache) Clear() error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.store = make(map[string]*list.Element)
	mc.lruList = list.New()
	mc.size = 0
	mc.hits = 0
	mc.misses = 0
	return nil
}

// Close stops the background cleanup goroutine
func (mc *MemoryCache) Close() {
	mc.cancel()
}

// Stats returns cache statistics including hit rate
func (mc *MemoryCache) Stats() Stats {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	s := Stats{
		Entries:   mc.lruList.Len(),
		SizeBytes: mc.size,
		MaxBytes:  mc.maxSize,
		Hits:      mc.hits,
		Misses:    mc.misses,
	}
	if total := mc.hits + mc.misses; total > 0 {
		s.HitRate = float64(mc.hits) / float64(total) * 100
	}
	return s
}

// must be called with lock held
func (mc *MemoryCache) removeElement(element *list.Element) {
	entry := element.Value.(*cacheEntry)
	mc.lruList.Remove(element)
	delete(mc.store, entry.Key)
	mc.size -= entry.Size
}

// must be called with lock held
func (mc *MemoryCache) evictLRU() {
	element := mc.lruList.Back()
	if element == nil {
		return
	}
	key := element.Value.(*cacheEntry).Key
	mc.removeElement(element)
	log.Debug().Str("key", key).Msg("Evicted from cache (LRU)")
}

func (mc *MemoryCache) cleanupExpired(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mc.mu.Lock()
			now := mc.now()
			var next *list.Element
			for element := mc.lruList.Front(); element != nil; element = next {
				next = element.Next()
				if now.After(element.Value.(*cacheEntry).ExpiresAt) {
					mc.removeElement(element)
				}
			}
			mc.mu.Unlock()
		case <-mc.ctx.Done():
			return
		}
	}
}

// estimateSize approximates the memory held by resp from its text fields
func estimateSize(resp *models.SearchResponse) int64 {
	size := int64(512 + len(resp.RequestID) + len(resp.Query.Category) + len(resp.Query.Brand))
	for _, r := range resp.Results {
		size += int64(128 + len(r.DisplayName) + len(r.Error))
		for _, l := range r.Listings {
			size += int64(64 + len(l.Name) + len(l.DisplayPrice))
		}
	}
	return size
}
