// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package hybrid implements the Hybrid Engine (§4.6): concurrent over-fetch
// from the Collaborative and Content-Based engines, per-list min-max score
// normalization, weighted fusion, and a similarity-cap diversity filter.
// The concurrent fan-out is grounded on the retrieved stack's
// runAlgorithmPredictions (internal/recommend/engine.go): one goroutine per
// source engine, joined with a sync.WaitGroup. The diversity filter is
// adapted from internal/recommend/reranking/mmr.go's Maximal Marginal
// Relevance reranker, trimmed from its score-blend rule (parameterized by
// lambda) to §4.6 step 4's hard similarity-cap accept/reject rule.
package hybrid

import (
	"context"
	"sort"
	"sync"

	"github.com/corvidrec/corvid/internal/domain"
)

// DefaultDiversityCap is the cosine-similarity threshold above which a
// candidate is rejected as too similar to an already-accepted one, unless
// fewer than count/2 have been accepted yet (§4.6 step 4).
const DefaultDiversityCap = 0.92

// Weights is the configurable (w_c, w_b) pair from §4.6, validated by the
// caller to satisfy §3's weight-sum invariant.
type Weights struct {
	Collaborative float64
	ContentBased  float64
}

// VectorLookup resolves the feature/preference vector of a candidate
// entity, needed by the diversity filter's pairwise similarity check.
type VectorLookup interface {
	GetEntity(ctx context.Context, tenantID, id, entityType string) (*domain.Entity, error)
}

// CollaborativeSource is the narrow interface the Hybrid Engine needs from
// the Collaborative Engine.
type CollaborativeSource interface {
	Recommend(ctx context.Context, tenantID, userID string, preference domain.Vector, count int) ([]domain.ScoredEntity, error)
}

// ContentBasedSource is the narrow interface the Hybrid Engine needs from
// the Content-Based Engine.
type ContentBasedSource interface {
	RecommendForUser(ctx context.Context, tenantID, userID string, preference domain.Vector, count int) ([]domain.ScoredEntity, error)
}

// Engine is the Hybrid Engine.
type Engine struct {
	collab       CollaborativeSource
	content      ContentBasedSource
	vectors      VectorLookup
	weights      Weights
	diversityCap float64
}

// New constructs a hybrid Engine. diversityCap <= 0 uses DefaultDiversityCap.
func New(collab CollaborativeSource, content ContentBasedSource, vectors VectorLookup, weights Weights, diversityCap float64) *Engine {
	if diversityCap <= 0 {
		diversityCap = DefaultDiversityCap
	}
	return &Engine{collab: collab, content: content, vectors: vectors, weights: weights, diversityCap: diversityCap}
}

// Name identifies this engine in response metadata.
func (e *Engine) Name() string { return "hybrid" }

type sourceResult struct {
	entities []domain.ScoredEntity
	err      error
}

// Recommend runs both source engines concurrently, fuses their scores, and
// applies diversity filtering, per §4.6's five steps, using the weights
// the Engine was constructed with.
func (e *Engine) Recommend(ctx context.Context, tenantID, userID string, preference domain.Vector, count int) ([]domain.ScoredEntity, error) {
	return e.recommend(ctx, tenantID, userID, preference, count, e.weights)
}

// RecommendWithWeights is Recommend with a per-call override of the
// fusion weights, used when the caller has validated explicit
// per-request collaborative/content-based weights against §3's
// weight-sum invariant.
func (e *Engine) RecommendWithWeights(ctx context.Context, tenantID, userID string, preference domain.Vector, count int, collaborativeWeight, contentBasedWeight float64) ([]domain.ScoredEntity, error) {
	return e.recommend(ctx, tenantID, userID, preference, count, Weights{Collaborative: collaborativeWeight, ContentBased: contentBasedWeight})
}

func (e *Engine) recommend(ctx context.Context, tenantID, userID string, preference domain.Vector, count int, weights Weights) ([]domain.ScoredEntity, error) {
	overfetch := count * 2

	var collabResult, contentResult sourceResult
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		entities, err := e.collab.Recommend(ctx, tenantID, userID, preference, overfetch)
		collabResult = sourceResult{entities: entities, err: err}
	}()
	go func() {
		defer wg.Done()
		entities, err := e.content.RecommendForUser(ctx, tenantID, userID, preference, overfetch)
		contentResult = sourceResult{entities: entities, err: err}
	}()
	wg.Wait()

	if collabResult.err != nil {
		return nil, collabResult.err
	}
	if contentResult.err != nil {
		return nil, contentResult.err
	}

	fused := fuseScores(collabResult.entities, contentResult.entities, weights)
	sort.Slice(fused, func(i, j int) bool {
		if fused[i].Score != fused[j].Score {
			return fused[i].Score > fused[j].Score
		}
		return fused[i].EntityID < fused[j].EntityID
	})

	diversified := e.applyDiversityFilter(ctx, tenantID, fused, count)
	sort.Slice(diversified, func(i, j int) bool {
		if diversified[i].Score != diversified[j].Score {
			return diversified[i].Score > diversified[j].Score
		}
		return diversified[i].EntityID < diversified[j].EntityID
	})
	if len(diversified) > count {
		diversified = diversified[:count]
	}
	return diversified, nil
}

// fuseScores implements §4.6 steps 2-3: per-list min-max normalization
// then weighted sum, with a missing-side contribution of zero.
func fuseScores(collab, content []domain.ScoredEntity, w Weights) []domain.ScoredEntity {
	collabNorm := minMaxNormalize(collab)
	contentNorm := minMaxNormalize(content)

	type entityKey struct{ id, entityType string }
	combined := make(map[entityKey]float64)
	for key, score := range collabNorm {
		combined[key] = w.Collaborative * score
	}
	for key, score := range contentNorm {
		combined[key] += w.ContentBased * score
	}

	out := make([]domain.ScoredEntity, 0, len(combined))
	for key, score := range combined {
		out = append(out, domain.ScoredEntity{EntityID: key.id, EntityType: key.entityType, Score: score})
	}
	return out
}

type fuseKey = struct{ id, entityType string }

func minMaxNormalize(items []domain.ScoredEntity) map[fuseKey]float64 {
	out := make(map[fuseKey]float64, len(items))
	if len(items) == 0 {
		return out
	}
	minScore, maxScore := items[0].Score, items[0].Score
	for _, it := range items {
		if it.Score < minScore {
			minScore = it.Score
		}
		if it.Score > maxScore {
			maxScore = it.Score
		}
	}
	spread := maxScore - minScore
	for _, it := range items {
		key := fuseKey{it.EntityID, it.EntityType}
		if spread == 0 {
			out[key] = 1 // a single-valued list carries full relevance, not zero
			continue
		}
		out[key] = (it.Score - minScore) / spread
	}
	return out
}

// applyDiversityFilter implements §4.6 step 4: iterate the sorted,
// fused list; reject a candidate whose cosine similarity to any
// already-accepted candidate exceeds diversityCap, unless fewer than
// count/2 have been accepted yet.
func (e *Engine) applyDiversityFilter(ctx context.Context, tenantID string, sorted []domain.ScoredEntity, count int) []domain.ScoredEntity {
	minAccepted := count / 2
	accepted := make([]domain.ScoredEntity, 0, count)
	acceptedVectors := make([]domain.Vector, 0, count)

	for _, candidate := range sorted {
		if len(accepted) >= count {
			break
		}
		vec, err := e.vectorFor(ctx, tenantID, candidate)
		if err != nil {
			continue
		}
		if len(accepted) >= minAccepted && tooSimilarToAny(vec, acceptedVectors, e.diversityCap) {
			continue
		}
		accepted = append(accepted, candidate)
		acceptedVectors = append(acceptedVectors, vec)
	}
	return accepted
}

func (e *Engine) vectorFor(ctx context.Context, tenantID string, candidate domain.ScoredEntity) (domain.Vector, error) {
	entity, err := e.vectors.GetEntity(ctx, tenantID, candidate.EntityID, candidate.EntityType)
	if err != nil {
		return nil, err
	}
	return entity.Vector, nil
}

func tooSimilarToAny(v domain.Vector, accepted []domain.Vector, cap float64) bool {
	for _, a := range accepted {
		if domain.CosineSimilarity(v, a) > cap {
			return true
		}
	}
	return false
}
