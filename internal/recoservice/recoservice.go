// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package recoservice implements the Recommendation Service (§4.7): the
// single entry point for ranking requests. It validates the request,
// routes to an engine by the request's algorithm field, consults the
// cache, calls the engine(s), writes the result back to the cache (when
// non-empty and not cold start), and assembles the §6 response shape.
package recoservice

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/corvidrec/corvid/internal/apierr"
	"github.com/corvidrec/corvid/internal/apitypes"
	"github.com/corvidrec/corvid/internal/cache"
	"github.com/corvidrec/corvid/internal/domain"
	"github.com/corvidrec/corvid/internal/validation"
)

// weightSumTolerance is §3's |w_c + w_b - 1| <= 0.001 invariant for a
// validated hybrid request carrying explicit per-request weights.
const weightSumTolerance = 0.001

// ProfileStore resolves a user's preference vector and cold-start status.
type ProfileStore interface {
	GetUserProfile(ctx context.Context, tenantID, userID string) (*domain.UserProfile, error)
}

// EntityStore resolves an entity's attributes for response assembly.
type EntityStore interface {
	GetEntity(ctx context.Context, tenantID, id, entityType string) (*domain.Entity, error)
}

// CollaborativeEngine is the narrow interface to §4.4.
type CollaborativeEngine interface {
	Recommend(ctx context.Context, tenantID, userID string, preference domain.Vector, count int) ([]domain.ScoredEntity, error)
}

// ContentBasedEngine is the narrow interface to §4.5.
type ContentBasedEngine interface {
	RecommendForEntity(ctx context.Context, tenantID, seedID, seedType string, count int) ([]domain.ScoredEntity, error)
	RecommendForUser(ctx context.Context, tenantID, userID string, preference domain.Vector, count int) ([]domain.ScoredEntity, error)
}

// HybridEngine is the narrow interface to §4.6.
type HybridEngine interface {
	Recommend(ctx context.Context, tenantID, userID string, preference domain.Vector, count int) ([]domain.ScoredEntity, error)

	// RecommendWithWeights overrides the engine's construction-time
	// fusion weights with the request's explicit per-request weights,
	// already validated by validateHybridWeights.
	RecommendWithWeights(ctx context.Context, tenantID, userID string, preference domain.Vector, count int, collaborativeWeight, contentBasedWeight float64) ([]domain.ScoredEntity, error)
}

// TrendingSource is the cold-start fallback and the trending endpoint's
// backing source.
type TrendingSource interface {
	Get(ctx context.Context, tenantID, entityType string, count int) ([]domain.TrendingEntry, error)
}

// Service is the Recommendation Service orchestrator.
type Service struct {
	profiles   ProfileStore
	entities   EntityStore
	collab     CollaborativeEngine
	content    ContentBasedEngine
	hybrid     HybridEngine
	trending   TrendingSource
	recCache   cache.Typed[apitypes.RecommendationResponse]
	logger     zerolog.Logger
}

// New constructs the Recommendation Service.
func New(profiles ProfileStore, entities EntityStore, collab CollaborativeEngine, content ContentBasedEngine, hybrid HybridEngine, trending TrendingSource, recCache cache.Typed[apitypes.RecommendationResponse], logger zerolog.Logger) *Service {
	return &Service{
		profiles: profiles,
		entities: entities,
		collab:   collab,
		content:  content,
		hybrid:   hybrid,
		trending: trending,
		recCache: recCache,
		logger:   logger.With().Str("component", "recoservice").Logger(),
	}
}

// RecommendForUser serves GET /recommendations/user/{user_id} (§4.7, §6).
// algorithm selects the engine per the routing table; an empty algorithm
// defaults to hybrid.
func (s *Service) RecommendForUser(ctx context.Context, tenantID string, req apitypes.UserRecommendationRequest) (*apitypes.RecommendationResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	algorithm := req.Algorithm
	if algorithm == "" {
		algorithm = "hybrid"
	}
	if algorithm == "collaborative" && req.UserID == "" {
		return nil, apierr.New(apierr.KindInvalidRequest, "collaborative requires user_id")
	}
	hasWeights, err := validateHybridWeights(req.CollaborativeWeight, req.ContentBasedWeight)
	if err != nil {
		return nil, err
	}

	count := req.Count
	key := cache.UserRecommendationsKey(tenantID, req.UserID, algorithm, count)
	if cached, ok := s.recCache.Get(key); ok {
		return &cached, nil
	}

	profile, err := s.profiles.GetUserProfile(ctx, tenantID, req.UserID)
	if err != nil {
		return nil, err
	}

	if profile.ColdStart() {
		return s.coldStartResponse(ctx, tenantID, req.EntityType, algorithm, count, key)
	}

	var scored []domain.ScoredEntity
	switch algorithm {
	case "collaborative":
		scored, err = s.collab.Recommend(ctx, tenantID, req.UserID, profile.PreferenceVector, count)
	case "content_based":
		scored, err = s.content.RecommendForUser(ctx, tenantID, req.UserID, profile.PreferenceVector, count)
	default:
		if hasWeights {
			scored, err = s.hybrid.RecommendWithWeights(ctx, tenantID, req.UserID, profile.PreferenceVector, count, req.CollaborativeWeight, req.ContentBasedWeight)
		} else {
			scored, err = s.hybrid.Recommend(ctx, tenantID, req.UserID, profile.PreferenceVector, count)
		}
	}
	if err != nil {
		return nil, err
	}

	if len(scored) < count {
		topUp, topUpErr := s.trending.Get(ctx, tenantID, req.EntityType, count-len(scored))
		if topUpErr == nil && len(topUp) > 0 {
			scored = append(scored, trendingAsScored(topUp, scored)...)
			return s.assemble(ctx, tenantID, scored, algorithm, true, key, false)
		}
	}

	return s.assemble(ctx, tenantID, scored, algorithm, false, key, true)
}

// RecommendForEntity serves GET /recommendations/entity/{entity_id}:
// content-based, entity-seeded mode.
func (s *Service) RecommendForEntity(ctx context.Context, tenantID string, req apitypes.EntityRecommendationRequest) (*apitypes.RecommendationResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	count := req.Count
	key := cache.SimilarEntitiesKey(tenantID, req.EntityID, req.EntityType, count)
	if cached, ok := s.recCache.Get(key); ok {
		return &cached, nil
	}

	scored, err := s.content.RecommendForEntity(ctx, tenantID, req.EntityID, req.EntityType, count)
	if err != nil {
		return nil, err
	}
	return s.assemble(ctx, tenantID, scored, "content_based", false, key, true)
}

// RecommendTrending serves GET /recommendations/trending.
func (s *Service) RecommendTrending(ctx context.Context, tenantID string, req apitypes.TrendingRequest) (*apitypes.RecommendationResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	count := req.Count
	key := cache.TrendingKey(tenantID, req.EntityType, count)
	if cached, ok := s.recCache.Get(key); ok {
		return &cached, nil
	}

	entries, err := s.trending.Get(ctx, tenantID, req.EntityType, count)
	if err != nil {
		return nil, err
	}
	scored := make([]domain.ScoredEntity, len(entries))
	for i, e := range entries {
		scored[i] = domain.ScoredEntity{EntityID: e.EntityID, EntityType: e.EntityType, Score: e.Score}
	}
	return s.assemble(ctx, tenantID, scored, "trending", false, key, true)
}

func (s *Service) coldStartResponse(ctx context.Context, tenantID, entityType, algorithm string, count int, key string) (*apitypes.RecommendationResponse, error) {
	entries, err := s.trending.Get(ctx, tenantID, entityType, count)
	if err != nil {
		return nil, err
	}
	scored := make([]domain.ScoredEntity, len(entries))
	for i, e := range entries {
		scored[i] = domain.ScoredEntity{EntityID: e.EntityID, EntityType: e.EntityType, Score: e.Score}
	}
	// Cold-start results are never written back to the recommendation
	// cache — per §4.7, only a non-cold-start, non-empty result qualifies.
	return s.assemble(ctx, tenantID, scored, algorithm, true, key, false)
}

func (s *Service) assemble(ctx context.Context, tenantID string, scored []domain.ScoredEntity, algorithm string, coldStart bool, cacheKey string, writeBack bool) (*apitypes.RecommendationResponse, error) {
	recs := make([]apitypes.RecommendedEntity, 0, len(scored))
	for _, sc := range scored {
		var attrs domain.AttributeMap
		if entity, err := s.entities.GetEntity(ctx, tenantID, sc.EntityID, sc.EntityType); err == nil && entity != nil {
			attrs = entity.Attrs
		}
		recs = append(recs, apitypes.EntityFromDomain(sc, attrs))
	}

	resp := apitypes.RecommendationResponse{
		Recommendations: recs,
		Algorithm:       algorithm,
		ColdStart:       coldStart,
		GeneratedAt:     time.Now().UTC(),
	}

	if writeBack && len(recs) > 0 && !coldStart {
		s.recCache.Put(cacheKey, resp, cache.TTLRecommendation)
	}
	return &resp, nil
}

// trendingAsScored converts trending top-up entries to ScoredEntity,
// skipping anything already present in existing.
func trendingAsScored(entries []domain.TrendingEntry, existing []domain.ScoredEntity) []domain.ScoredEntity {
	seen := make(map[string]bool, len(existing))
	for _, e := range existing {
		seen[e.EntityID+"\x1f"+e.EntityType] = true
	}
	out := make([]domain.ScoredEntity, 0, len(entries))
	for _, e := range entries {
		if seen[e.EntityID+"\x1f"+e.EntityType] {
			continue
		}
		out = append(out, domain.ScoredEntity{EntityID: e.EntityID, EntityType: e.EntityType, Score: e.Score})
	}
	return out
}

func validateRequest(req interface{}) error {
	if ve := validation.ValidateStruct(req); ve != nil {
		return ve.ToAPIErr()
	}
	return nil
}

// validateHybridWeights reports whether the caller supplied explicit
// per-request hybrid weights, and enforces §3's invariant that a
// supplied pair must sum to 1 within weightSumTolerance. Each weight
// individually passing the apitypes min=0,max=1 tag is not sufficient —
// e.g. (0.7, 0.4) passes that tag but violates the sum invariant and
// must be rejected here.
func validateHybridWeights(collaborativeWeight, contentBasedWeight float64) (hasWeights bool, err error) {
	if collaborativeWeight == 0 && contentBasedWeight == 0 {
		return false, nil
	}
	if math.Abs(collaborativeWeight+contentBasedWeight-1) > weightSumTolerance {
		return false, apierr.New(apierr.KindInvalidRequest, fmt.Sprintf(
			"collaborative_weight + content_based_weight must sum to 1 (within %.3f), got %.3f + %.3f",
			weightSumTolerance, collaborativeWeight, contentBasedWeight))
	}
	return true, nil
}
