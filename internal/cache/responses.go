// Package cache provides a time-limited response cache.
package cache

import (
	"strings"
	"sync"
	"time"
)

// DefaultMaxSize bounds the cache when no size is configured.
const DefaultMaxSize = 256

// ResponseCache stores rendered responses keyed by normalized input,
// bounded by TTL and entry count.
type ResponseCache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	maxSize int
}

type entry struct {
	value   string
	written int64 // unix milliseconds
}

// Options configures the cache.
type Options struct {
	// TTL bounds entry lifetime; zero or negative means no expiry
	TTL time.Duration

	// MaxSize bounds entry count; zero or negative selects DefaultMaxSize
	MaxSize int
}

// NewResponseCache creates an empty response cache.
func NewResponseCache(opts Options) *ResponseCache {
	ttl := opts.TTL
	if ttl < 0 {
		ttl = 0
	}
	maxSize := opts.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	return &ResponseCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get returns the cached response for key if present and unexpired.
func (c *ResponseCache) Get(key string) (string, bool) {
	return c.GetAt(key, time.Now())
}

// GetAt looks up with an explicit timestamp (for testing).
func (c *ResponseCache) GetAt(key string, now time.Time) (string, bool) {
	if key == "" {
		return "", false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.ttl > 0 && now.UnixMilli()-e.written >= c.ttl.Milliseconds() {
		delete(c.entries, key)
		return "", false
	}
	return e.value, true
}

// Put stores a response under key, stamped with the current time.
func (c *ResponseCache) Put(key, value string) {
	c.PutAt(key, value, time.Now())
}

// PutAt stores with an explicit timestamp (for testing).
func (c *ResponseCache) PutAt(key, value string, now time.Time) {
	if key == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	nowUnix := now.UnixMilli()
	c.entries[key] = entry{value: value, written: nowUnix}
	c.prune(nowUnix)
}

// prune removes expired and excess entries.
func (c *ResponseCache) prune(nowUnix int64) {
	if c.ttl > 0 {
		cutoff := nowUnix - c.ttl.Milliseconds()
		for key, e := range c.entries {
			if e.written < cutoff {
				delete(c.entries, key)
			}
		}
	}

	// Enforce max size (remove oldest)
	for len(c.entries) > c.maxSize {
		var oldestKey string
		var oldestTs int64 = int64(^uint64(0) >> 1) // max int64
		for k, e := range c.entries {
			if e.written < oldestTs {
				oldestTs = e.written
				oldestKey = k
			}
		}
		if oldestKey == "" {
			break
		}
		delete(c.entries, oldestKey)
	}
}

// Clear removes all entries.
func (c *ResponseCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Size returns the current number of entries.
func (c *ResponseCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// NormalizeKey folds case and collapses whitespace so near-identical
// inputs share a cache slot.
func NormalizeKey(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
