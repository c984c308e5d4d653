// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package vectorstore

import "github.com/corvidrec/corvid/internal/domain"

// FindSimilarEntities returns up to k entities whose feature vectors are
// most cosine-similar to query, optionally filtered by entity type and
// excluding a caller-supplied id set — the find_similar_entities operation
// of §4.3. Results are sorted by similarity descending, ties broken by
// entity id ascending for determinism.
func (s *Store) FindSimilarEntities(tenantID string, query domain.Vector, k int, minSimilarity float64, excludeIDs map[string]bool, entityTypeFilter string) []domain.ScoredEntity {
	idx := s.entityIndexFor(tenantID)

	// Over-fetch since the type filter and minSimilarity cut may remove
	// candidates the index already ranked ahead of acceptable ones.
	fetch := k * 4
	if fetch < k+20 {
		fetch = k + 20
	}
	raw := idx.Search(query, fetch, "")

	out := make([]domain.ScoredEntity, 0, k)
	for _, c := range raw {
		if len(out) >= k {
			break
		}
		if c.score < minSimilarity {
			continue
		}
		id, entityType := splitEntityKey(c.id)
		if entityTypeFilter != "" && entityType != entityTypeFilter {
			continue
		}
		if excludeIDs != nil && excludeIDs[c.id] {
			continue
		}
		out = append(out, domain.ScoredEntity{EntityID: id, EntityType: entityType, Score: c.score})
	}
	return out
}

// FindSimilarUsers returns up to k users whose preference vectors are most
// cosine-similar to query, optionally excluding one user (typically the
// querying user itself) — the find_similar_users operation of §4.3.
func (s *Store) FindSimilarUsers(tenantID string, query domain.Vector, k int, minSimilarity float64, excludeUser string) []domain.ScoredEntity {
	idx := s.userIndexFor(tenantID)

	fetch := k * 4
	if fetch < k+20 {
		fetch = k + 20
	}
	raw := idx.Search(query, fetch, excludeUser)

	out := make([]domain.ScoredEntity, 0, k)
	for _, c := range raw {
		if len(out) >= k {
			break
		}
		if c.score < minSimilarity {
			continue
		}
		out = append(out, domain.ScoredEntity{EntityID: c.id, Score: c.score})
	}
	return out
}
