// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

/*
Package cache provides thread-safe in-memory caching with TTL support,
backing the recommendation engine's Cache Layer (§4.2).

This package implements the cache that sits in front of the Vector Store:
recommendation lists, similar-entity lists, trending lists, user profiles,
and entity feature vectors, reducing store load and keeping read latency
low for repeat requests.

# Overview

The cache provides:
  - Thread-safe concurrent access (sync.RWMutex)
  - Time-to-live (TTL) expiration for automatic cleanup
  - Simple key-value storage with any value type (interface{})
  - Lazy expiration checking (on Get operations)
  - A Redis-backed second implementation (CacheTypeRedis) for
    multi-instance deployments that need to share cache state
  - A generic Typed[T] wrapper for compile-time-safe access to a single
    value type, built on top of either backend

# Key Families

Per §4.2's key-family table, each with its own TTL:
  - User recommendation lists: 10 minutes (UserRecommendationsKey)
  - Similar-entity lists: 10 minutes (SimilarEntitiesKey)
  - Trending lists: 2 hours (TrendingKey)
  - User preference-vector profiles: 15 minutes (ProfileKey)
  - Entity feature vectors: 2 hours (EntityFeaturesKey)

# Cache Structure

The TTL cache stores items with metadata:

	type Entry struct {
	    Data      interface{} // Cached value (any type)
	    ExpiresAt time.Time   // Expiration instant
	}

# Usage Example

Backend selection via config:

	c := cache.NewCacher(cache.CacheConfig{
	    Type: cache.CacheTypeTTL,
	    TTL:  cache.TTLRecommendation,
	})

	key := cache.UserRecommendationsKey(tenantID, userID, algorithm, count)
	if value, ok := c.Get(key); ok {
	    resp := value.(apitypes.RecommendationResponse)
	    // serve cached response
	}
	c.SetWithTTL(key, resp, cache.TTLRecommendation)

Typed wrapper, used by internal/recoservice to avoid type assertions:

	typed := cache.NewTyped[apitypes.RecommendationResponse](c)
	if resp, ok := typed.Get(key); ok {
	    return &resp, nil
	}
	typed.Put(key, resp, cache.TTLRecommendation)

# Cache Invalidation

The cache supports two invalidation strategies:

 1. TTL-based expiration (automatic):
    - Items expire after the configured TTL
    - Checked lazily during Get operations
    - New also starts a background goroutine that sweeps expired
      entries every 5 minutes

 2. Manual invalidation:
    - Delete(key) removes a specific entry
    - InvalidatePrefix(ctx, prefix) removes every key sharing a prefix,
      e.g. RecommendationPrefix(tenantID, userID) covers all of one
      user's cached recommendation lists
    - Clear() removes all entries

Example: drop one user's cached recommendation lists

	typed.InvalidatePrefix(ctx, cache.RecommendationPrefix(tenantID, userID))

Nothing in this repository calls Delete or InvalidatePrefix when an
interaction is recorded or a profile is rebuilt; a cached recommendation
list is replaced only after its TTL runs out.

# Thread Safety

All cache methods are thread-safe using sync.RWMutex:
  - Get: Acquires read lock (concurrent reads allowed)
  - Set/SetWithTTL: Acquires write lock (exclusive access)
  - Delete/Clear: Acquires write lock (exclusive access)

Multiple goroutines, including concurrent requests across tenants, can
safely access the cache.

# Cache Hit Rate

GetStats and HitRate report each backend's own in-struct counters. They
are separate from the Prometheus CacheHitsTotal/CacheMissesTotal counters
in internal/metrics, which this package does not update:

	stats := c.GetStats()
	hitRate := c.HitRate()

# Backends

  - TTL (cache.go): an in-process map with per-item expiration, the
    default backend for all five key families.
  - Redis (redis.go): a redis.Cmdable-backed Cacher for multi-instance
    deployments that need to share cache state across processes.
    Selected via CacheConfig{Type: CacheTypeRedis} when cfg.Redis.Enabled
    is set.

# See Also

  - internal/recoservice: the primary consumer of the Typed wrapper
  - internal/vectorstore: the store this cache sits in front of
  - github.com/redis/go-redis/v9: underlying client for redis.go
*/
package cache
