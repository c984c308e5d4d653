// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the Redis-backed Cacher used in multi-process
// deployments (§4.2's second backend).
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration // default TTL for Set (no explicit TTL)
}

// RedisCache is a Cacher backed by github.com/redis/go-redis/v9. Values
// are JSON-encoded (github.com/goccy/go-json, the retrieved stack's JSON
// library) since redis.Client only stores strings/bytes. A cache fault —
// connection error or a value that fails to decode — is always reported
// as a miss, never an error: per §4.2, the cache can never fail the
// enclosing request.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration

	hits   int64
	misses int64
}

// NewRedis constructs a RedisCache from cfg.
func NewRedis(cfg RedisConfig) *RedisCache {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		ttl:    ttl,
	}
}

func (r *RedisCache) Get(key string) (interface{}, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		atomic.AddInt64(&r.misses, 1)
		return nil, false
	}
	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		atomic.AddInt64(&r.misses, 1)
		return nil, false
	}
	atomic.AddInt64(&r.hits, 1)
	return value, true
}

func (r *RedisCache) Set(key string, value interface{}) {
	r.SetWithTTL(key, value, r.ttl)
}

func (r *RedisCache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = r.client.Set(ctx, key, raw, ttl).Err()
}

func (r *RedisCache) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = r.client.Del(ctx, key).Err()
}

func (r *RedisCache) Clear() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = r.client.FlushDB(ctx).Err()
}

func (r *RedisCache) GetStats() Stats {
	return Stats{Hits: atomic.LoadInt64(&r.hits), Misses: atomic.LoadInt64(&r.misses)}
}

func (r *RedisCache) HitRate() float64 {
	hits := atomic.LoadInt64(&r.hits)
	misses := atomic.LoadInt64(&r.misses)
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// InvalidatePrefix removes every key starting with prefix via SCAN, never
// KEYS — KEYS blocks the whole Redis instance on a large keyspace.
func (r *RedisCache) InvalidatePrefix(ctx context.Context, prefix string) error {
	iter := r.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) >= 500 {
			if err := r.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return r.client.Del(ctx, batch...).Err()
	}
	return nil
}
