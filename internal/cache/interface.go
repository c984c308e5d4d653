// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package cache provides high-performance data structures for caching and deduplication.
package cache

import "time"

// Cacher defines the interface for cache implementations. Cache
// (in-process TTL) and RedisCache (shared, multi-instance) both
// implement it, so internal/recoservice's Typed wrapper and the rest of
// the Cache Layer (§4.2) never see which backend is behind them.
//
// Usage:
//
//	var c Cacher = NewCacher(CacheConfig{Type: CacheTypeTTL, TTL: cache.TTLRecommendation})
//
//	c.Set("key", value)
//	if val, ok := c.Get("key"); ok {
//	    // Use cached value
//	}
type Cacher interface {
	// Get retrieves a value from the cache.
	// Returns the value and true if found and not expired.
	Get(key string) (interface{}, bool)

	// Set stores a value in the cache with the default TTL.
	Set(key string, value interface{})

	// SetWithTTL stores a value with a custom TTL.
	SetWithTTL(key string, value interface{}, ttl time.Duration)

	// Delete removes a value from the cache.
	Delete(key string)

	// Clear removes all entries from the cache.
	Clear()

	// GetStats returns cache statistics.
	GetStats() Stats

	// HitRate returns the cache hit rate as a percentage.
	HitRate() float64
}

// CacheType represents the type of cache to create.
type CacheType string

const (
	// CacheTypeTTL is the in-process TTL-based cache (default). Every
	// instance of the recommendation core keeps its own copy.
	CacheTypeTTL CacheType = "ttl"

	// CacheTypeRedis is the shared, redis.Cmdable-backed cache used
	// when cfg.Redis.Enabled is set (§4.2's second backend), so cache
	// state survives a restart and is shared across instances.
	CacheTypeRedis CacheType = "redis"
)

// CacheConfig holds configuration for creating a cache.
type CacheConfig struct {
	// Type selects the backend (ttl or redis).
	Type CacheType

	// TTL is the default time-to-live for cache entries.
	TTL time.Duration

	// Redis carries the connection settings for CacheTypeRedis; unused
	// by CacheTypeTTL.
	Redis RedisConfig
}

// NewCacher creates a cache based on the configuration. This factory
// lets cmd/server/main.go switch backends purely from cfg.Redis.Enabled
// without the rest of the recommendation core knowing the difference.
func NewCacher(cfg CacheConfig) Cacher {
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}

	switch cfg.Type {
	case CacheTypeRedis:
		rcfg := cfg.Redis
		if rcfg.TTL <= 0 {
			rcfg.TTL = cfg.TTL
		}
		return NewRedis(rcfg)
	default:
		return New(cfg.TTL)
	}
}

// NewTTL creates a new TTL-based cache (same as New).
// Convenience function for explicit cache type selection.
func NewTTL(ttl time.Duration) Cacher {
	return New(ttl)
}

// Verify interface implementations at compile time
var (
	_ Cacher = (*Cache)(nil)
	_ Cacher = (*RedisCache)(nil)
)
