// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package cache

import (
	"fmt"
	"time"
)

// Key-family TTLs from §4.2's table.
const (
	TTLRecommendation = 10 * time.Minute
	TTLTrending       = 2 * time.Hour
	TTLProfile        = 15 * time.Minute
	TTLEntityFeatures = 2 * time.Hour
)

// Key builders — every key is prefixed with {tenant_id}: per §4.2.

// UserRecommendationsKey builds the rec:user:{user_id}:{algo}:{count} key.
func UserRecommendationsKey(tenantID, userID, algo string, count int) string {
	return fmt.Sprintf("%s:rec:user:%s:%s:%d", tenantID, userID, algo, count)
}

// SimilarEntitiesKey builds the rec:entity:{entity_id}:{entity_type}:{count} key.
func SimilarEntitiesKey(tenantID, entityID, entityType string, count int) string {
	return fmt.Sprintf("%s:rec:entity:%s:%s:%d", tenantID, entityID, entityType, count)
}

// TrendingKey builds the trending:{entity_type|"*"}:{count} key.
func TrendingKey(tenantID, entityType string, count int) string {
	if entityType == "" {
		entityType = "*"
	}
	return fmt.Sprintf("%s:trending:%s:%d", tenantID, entityType, count)
}

// ProfileKey builds the profile:{user_id} key.
func ProfileKey(tenantID, userID string) string {
	return fmt.Sprintf("%s:profile:%s", tenantID, userID)
}

// EntityFeaturesKey builds the entity_features:{entity_id}:{entity_type} key.
func EntityFeaturesKey(tenantID, entityID, entityType string) string {
	return fmt.Sprintf("%s:entity_features:%s:%s", tenantID, entityID, entityType)
}

// RecommendationPrefix returns the invalidate_prefix target for every
// cached recommendation list belonging to a user, across algorithms/counts.
func RecommendationPrefix(tenantID, userID string) string {
	return fmt.Sprintf("%s:rec:user:%s:", tenantID, userID)
}
