// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package contentbased implements the Content-Based Engine (§4.5): nearest
// neighbors of either a seed entity's feature vector or a user's
// preference vector, via the Vector Store's find_similar_entities.
package contentbased

import (
	"context"

	"github.com/corvidrec/corvid/internal/domain"
)

// Store is the subset of the Vector Store this engine depends on.
type Store interface {
	FindSimilarEntities(tenantID string, query domain.Vector, k int, minSimilarity float64, excludeIDs map[string]bool, entityTypeFilter string) []domain.ScoredEntity
	GetEntity(ctx context.Context, tenantID, id, entityType string) (*domain.Entity, error)
	InteractedEntityIDs(ctx context.Context, tenantID, userID string) (map[string]bool, error)
}

// Engine is the Content-Based Engine.
type Engine struct {
	store Store
}

// New constructs a contentbased Engine over store.
func New(store Store) *Engine {
	return &Engine{store: store}
}

// Name identifies this engine in the Hybrid Engine's per-algorithm fusion
// and in response metadata.
func (e *Engine) Name() string { return "content_based" }

// RecommendForEntity is the entity-seeded mode (§4.5): looks up seedID's
// feature vector and returns its nearest neighbors, excluding the seed
// itself.
func (e *Engine) RecommendForEntity(ctx context.Context, tenantID, seedID, seedType string, count int) ([]domain.ScoredEntity, error) {
	seed, err := e.store.GetEntity(ctx, tenantID, seedID, seedType)
	if err != nil {
		return nil, err
	}
	exclude := map[string]bool{seedID + "\x1f" + seedType: true}
	return e.store.FindSimilarEntities(tenantID, seed.Vector, count, 0, exclude, ""), nil
}

// RecommendForUser is the user-seeded mode (§4.5): looks up userID's
// preference vector and returns its nearest entity neighbors, excluding
// everything the user has already interacted with.
func (e *Engine) RecommendForUser(ctx context.Context, tenantID, userID string, preference domain.Vector, count int) ([]domain.ScoredEntity, error) {
	exclude, err := e.store.InteractedEntityIDs(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	return e.store.FindSimilarEntities(tenantID, preference, count, 0, exclude, ""), nil
}
