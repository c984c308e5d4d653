// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package collaborative implements the Collaborative Engine (§4.4):
// user-based recommendation by aggregating the recent interactions of
// similar users, weighted by user similarity and interaction weight.
package collaborative

import (
	"context"
	"sort"

	"github.com/corvidrec/corvid/internal/domain"
)

// neighborFetch is k_neighbors from §4.4 step 2: the number of similar
// users consulted per request.
const neighborFetch = 50

// minNeighborSimilarity is §4.4 step 2's min_similarity floor: a
// candidate neighbor below this cosine similarity contributes no signal
// and is excluded from FindSimilarUsers' results.
const minNeighborSimilarity = 0.1

// recentWindow bounds how far back into each neighbor's history this
// engine looks, per §4.4's "recent M=100 interactions" aggregation window.
const recentWindow = 100

// Store is the subset of the Vector Store this engine depends on.
type Store interface {
	FindSimilarUsers(tenantID string, query domain.Vector, k int, minSimilarity float64, excludeUser string) []domain.ScoredEntity
	RecentInteractions(ctx context.Context, tenantID, userID string, limit int) ([]domain.Interaction, error)
	InteractedEntityIDs(ctx context.Context, tenantID, userID string) (map[string]bool, error)
}

// Engine is the Collaborative Engine.
type Engine struct {
	store Store
}

// New constructs a collaborative Engine over store.
func New(store Store) *Engine {
	return &Engine{store: store}
}

// Name identifies this engine in the Hybrid Engine's per-algorithm fusion
// and in response metadata.
func (e *Engine) Name() string { return "collaborative" }

// Recommend scores entities for userID by aggregating the recent
// interactions of its most similar users, weighted by (user similarity ×
// interaction weight) and summed per entity. Already-interacted entities
// are excluded. Callers are responsible for the cold-start check (§4.4:
// users with fewer than 5 interactions, or no profile, never reach this
// engine — the Recommendation Service routes them to trending instead).
func (e *Engine) Recommend(ctx context.Context, tenantID, userID string, preference domain.Vector, count int) ([]domain.ScoredEntity, error) {
	neighbors := e.store.FindSimilarUsers(tenantID, preference, neighborFetch, minNeighborSimilarity, userID)
	if len(neighbors) == 0 {
		return nil, nil
	}

	exclude, err := e.store.InteractedEntityIDs(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	type entityKey struct{ id, entityType string }
	scores := make(map[entityKey]float64)
	for _, neighbor := range neighbors {
		interactions, err := e.store.RecentInteractions(ctx, tenantID, neighbor.EntityID, recentWindow)
		if err != nil {
			return nil, err
		}
		for _, in := range interactions {
			if exclude[in.EntityID+"\x1f"+in.EntityType] {
				continue
			}
			scores[entityKey{in.EntityID, in.EntityType}] += neighbor.Score * in.Weight
		}
	}

	out := make([]domain.ScoredEntity, 0, len(scores))
	for key, score := range scores {
		out = append(out, domain.ScoredEntity{EntityID: key.id, EntityType: key.entityType, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].EntityID < out[j].EntityID
	})
	if len(out) > count {
		out = out[:count]
	}
	return out, nil
}
