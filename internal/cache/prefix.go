// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package cache

import (
	"context"
	"strings"
)

// InvalidatePrefix removes every entry whose key starts with prefix,
// satisfying PrefixInvalidator for the in-process cache. It is an O(n)
// scan of the current key set, acceptable at this cache's size — the
// Redis backend's SCAN-based version is the one multi-process deployments
// use in practice.
func (c *Cache) InvalidatePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	var removed int64
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			removed++
		}
	}
	c.mu.Unlock()

	c.stats.mu.Lock()
	c.stats.Evictions += removed
	c.stats.mu.Unlock()
	return nil
}
