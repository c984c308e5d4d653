// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package cache

import (
	"context"
	"encoding/json"
	"time"
)

// PrefixInvalidator is implemented by cache backends that can remove every
// key sharing a prefix in one call — the invalidate_prefix operation of
// §4.2. The in-process Cacher implementations satisfy it by scanning their
// own key set; the Redis backend (redis.go) uses SCAN.
type PrefixInvalidator interface {
	InvalidatePrefix(ctx context.Context, prefix string) error
}

// Typed adapts a Cacher (or a PrefixInvalidator-capable backend) to the
// generic get[T]/put[T]/invalidate/invalidate_prefix contract of §4.2,
// without every caller re-asserting interface{} back to its concrete type.
type Typed[T any] struct {
	backend Cacher
}

// NewTyped wraps backend for values of type T.
func NewTyped[T any](backend Cacher) Typed[T] {
	return Typed[T]{backend: backend}
}

// Get returns the cached value for key and true, or the zero value and
// false on a miss — including a miss caused by a stored value that is
// neither a T nor JSON-convertible to T, which is treated as a cache fault
// rather than a panic (§4.2: cache faults are surfaced as a miss, never as
// a failed request).
func (t Typed[T]) Get(key string) (T, bool) {
	var zero T
	raw, ok := t.backend.Get(key)
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	if ok {
		return v, true
	}
	// The Redis backend returns JSON-decoded generic values (maps, slices,
	// float64s); convert those to T through a JSON round trip.
	b, err := json.Marshal(raw)
	if err != nil {
		return zero, false
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return zero, false
	}
	return v, true
}

// Put stores value under key with the given TTL.
func (t Typed[T]) Put(key string, value T, ttl time.Duration) {
	t.backend.SetWithTTL(key, value, ttl)
}

// Invalidate removes one key.
func (t Typed[T]) Invalidate(key string) {
	t.backend.Delete(key)
}

// InvalidatePrefix removes every key sharing prefix, if the backend
// supports it. Both built-in backends (the in-process Cache and
// RedisCache) implement PrefixInvalidator; for any other backend this is
// a no-op that returns nil.
func (t Typed[T]) InvalidatePrefix(ctx context.Context, prefix string) error {
	if pi, ok := t.backend.(PrefixInvalidator); ok {
		return pi.InvalidatePrefix(ctx, prefix)
	}
	return nil
}
