// Olist Analytics - E-commerce Analytics Dashboard
// Copyright 2026 BDepanfilis
// SPDX-License-Identifier: MIT
// https://github.com/BDepanfilis/olist-analytics-public

// Package cache provides a thread-safe in-memory TTL cache used to memoize
// mart query results for a bounded freshness window.
package cache

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// cleanupInterval is how often the background sweep removes expired entries.
const cleanupInterval = 5 * time.Minute

// Entry represents a cached item with expiration.
type Entry struct {
	Data      interface{}
	ExpiresAt time.Time
}

// Stats tracks cache performance counters. The zero value is ready to use.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// Cache provides a thread-safe in-memory cache with TTL support.
//
// Query results are stored under keys derived from the substituted SQL text
// and parameters (see GenerateKey), so two calls for the same analytical
// question within the freshness window share one execution.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	ttl     time.Duration

	statsMu sync.Mutex
	stats   Stats
}

// New creates a cache with the given default TTL and starts a background
// cleanup goroutine that sweeps expired entries every 5 minutes. The
// goroutine runs for the cache lifetime; callers are expected to create one
// cache per process.
func New(ttl time.Duration) *Cache {
	c := &Cache{
		entries: make(map[string]Entry),
		ttl:     ttl,
		stats:   Stats{LastCleanup: time.Now()},
	}

	go c.cleanupLoop()

	return c
}

// Get retrieves a value from the cache by key. Expired entries are removed
// on access and counted as misses.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		c.recordMiss()
		return nil, false
	}

	if time.Now().After(entry.ExpiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		c.recordMiss()
		c.recordEviction()
		return nil, false
	}

	c.recordHit()
	return entry.Data, true
}

// Set stores a value in the cache with the default TTL.
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value in the cache with a custom TTL.
func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = Entry{
		Data:      value,
		ExpiresAt: time.Now().Add(ttl),
	}
	total := int64(len(c.entries))
	c.mu.Unlock()

	c.statsMu.Lock()
	c.stats.TotalKeys = total
	c.statsMu.Unlock()
}

// Delete removes a specific cache entry by key. Safe to call with keys that
// do not exist.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()

	c.recordEviction()
}

// Clear removes all entries from the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]Entry)
	c.mu.Unlock()

	c.statsMu.Lock()
	c.stats.TotalKeys = 0
	c.statsMu.Unlock()
}

// GetStats returns a snapshot of the cache counters.
func (c *Cache) GetStats() Stats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.stats
}

// HitRate returns the cache hit rate as a percentage.
func (c *Cache) HitRate() float64 {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()

	total := c.stats.Hits + c.stats.Misses
	if total == 0 {
		return 0
	}
	return float64(c.stats.Hits) / float64(total) * 100
}

// cleanupLoop periodically removes expired entries.
func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.cleanup()
	}
}

// cleanup removes all expired entries and refreshes TotalKeys.
func (c *Cache) cleanup() {
	now := time.Now()
	evicted := int64(0)

	c.mu.Lock()
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			evicted++
		}
	}
	total := int64(len(c.entries))
	c.mu.Unlock()

	c.statsMu.Lock()
	c.stats.Evictions += evicted
	c.stats.TotalKeys = total
	c.stats.LastCleanup = now
	c.statsMu.Unlock()
}

func (c *Cache) recordHit() {
	c.statsMu.Lock()
	c.stats.Hits++
	c.statsMu.Unlock()
}

func (c *Cache) recordMiss() {
	c.statsMu.Lock()
	c.stats.Misses++
	c.statsMu.Unlock()
}

func (c *Cache) recordEviction() {
	c.statsMu.Lock()
	c.stats.Evictions++
	c.statsMu.Unlock()
}

// GenerateKey builds a compact deterministic cache key from a method name
// and its parameters. Parameters are serialized to JSON and hashed so large
// SQL texts do not blow up the key space.
func GenerateKey(method string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		// Fallback to a simple string key
		return fmt.Sprintf("%s:%v", method, params)
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", method, hash[:16])
}
