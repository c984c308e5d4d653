// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package hybrid

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidrec/corvid/internal/domain"
)

type fakeCollab struct {
	out []domain.ScoredEntity
	err error
}

func (f *fakeCollab) Recommend(ctx context.Context, tenantID, userID string, preference domain.Vector, count int) ([]domain.ScoredEntity, error) {
	return f.out, f.err
}

type fakeContent struct {
	out []domain.ScoredEntity
	err error
}

func (f *fakeContent) RecommendForUser(ctx context.Context, tenantID, userID string, preference domain.Vector, count int) ([]domain.ScoredEntity, error) {
	return f.out, f.err
}

type fakeVectors struct {
	entities map[string]*domain.Entity
}

func (f *fakeVectors) GetEntity(ctx context.Context, tenantID, id, entityType string) (*domain.Entity, error) {
	return f.entities[id+"\x1f"+entityType], nil
}

func vecEntity(id, entityType string, v domain.Vector) *domain.Entity {
	return &domain.Entity{ID: id, Type: entityType, Vector: v}
}

func TestRecommendFusesBothSources(t *testing.T) {
	collab := &fakeCollab{out: []domain.ScoredEntity{
		{EntityID: "a", EntityType: "movie", Score: 1.0},
		{EntityID: "b", EntityType: "movie", Score: 0.0},
	}}
	content := &fakeContent{out: []domain.ScoredEntity{
		{EntityID: "a", EntityType: "movie", Score: 0.0},
		{EntityID: "b", EntityType: "movie", Score: 1.0},
	}}
	vectors := &fakeVectors{entities: map[string]*domain.Entity{
		"a\x1fmovie": vecEntity("a", "movie", domain.Vector{1, 0}),
		"b\x1fmovie": vecEntity("b", "movie", domain.Vector{0, 1}),
	}}
	e := New(collab, content, vectors, Weights{Collaborative: 0.5, ContentBased: 0.5}, 0)

	out, err := e.Recommend(context.Background(), "t1", "u1", domain.Vector{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, out, 2)
	// both a and b fuse to 0.5 each; tie-break by entity id ascending.
	assert.Equal(t, "a", out[0].EntityID)
	assert.Equal(t, "b", out[1].EntityID)
	assert.InDelta(t, 0.5, out[0].Score, 1e-9)
}

func TestRecommendPropagatesCollabError(t *testing.T) {
	collab := &fakeCollab{err: assert.AnError}
	content := &fakeContent{}
	vectors := &fakeVectors{entities: map[string]*domain.Entity{}}
	e := New(collab, content, vectors, Weights{Collaborative: 0.5, ContentBased: 0.5}, 0)

	_, err := e.Recommend(context.Background(), "t1", "u1", domain.Vector{1, 0}, 2)
	require.Error(t, err)
}

func TestRecommendMissingSideContributesZero(t *testing.T) {
	collab := &fakeCollab{out: []domain.ScoredEntity{{EntityID: "a", EntityType: "movie", Score: 1.0}}}
	content := &fakeContent{}
	vectors := &fakeVectors{entities: map[string]*domain.Entity{
		"a\x1fmovie": vecEntity("a", "movie", domain.Vector{1, 0}),
	}}
	e := New(collab, content, vectors, Weights{Collaborative: 0.6, ContentBased: 0.4}, 0)

	out, err := e.Recommend(context.Background(), "t1", "u1", domain.Vector{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.InDelta(t, 0.6, out[0].Score, 1e-9)
}

func TestDiversityFilterRejectsTooSimilarPastMinimum(t *testing.T) {
	// Four candidates, descending score. a and b are near-identical vectors
	// (similarity above the cap); count/2 = 2 must still be accepted before
	// the cap is enforced, so only c gets filtered out for duplicating b.
	collab := &fakeCollab{out: []domain.ScoredEntity{
		{EntityID: "a", EntityType: "movie", Score: 4},
		{EntityID: "b", EntityType: "movie", Score: 3},
		{EntityID: "c", EntityType: "movie", Score: 2},
		{EntityID: "d", EntityType: "movie", Score: 1},
	}}
	content := &fakeContent{}
	vectors := &fakeVectors{entities: map[string]*domain.Entity{
		"a\x1fmovie": vecEntity("a", "movie", domain.Vector{1, 0}),
		"b\x1fmovie": vecEntity("b", "movie", domain.Vector{1, 0.01}),
		"c\x1fmovie": vecEntity("c", "movie", domain.Vector{1, 0.01}),
		"d\x1fmovie": vecEntity("d", "movie", domain.Vector{0, 1}),
	}}
	e := New(collab, content, vectors, Weights{Collaborative: 1, ContentBased: 0}, 0.92)

	out, err := e.Recommend(context.Background(), "t1", "u1", domain.Vector{1, 0}, 4)
	require.NoError(t, err)
	ids := make([]string, len(out))
	for i, s := range out {
		ids[i] = s.EntityID
	}
	assert.NotContains(t, ids, "c")
	assert.Contains(t, ids, "a")
	assert.Contains(t, ids, "b")
	assert.Contains(t, ids, "d")
}

func TestRecommendRespectsCount(t *testing.T) {
	collab := &fakeCollab{out: []domain.ScoredEntity{
		{EntityID: "a", EntityType: "movie", Score: 3},
		{EntityID: "b", EntityType: "movie", Score: 2},
		{EntityID: "c", EntityType: "movie", Score: 1},
	}}
	content := &fakeContent{}
	vectors := &fakeVectors{entities: map[string]*domain.Entity{
		"a\x1fmovie": vecEntity("a", "movie", domain.Vector{1, 0}),
		"b\x1fmovie": vecEntity("b", "movie", domain.Vector{0, 1}),
		"c\x1fmovie": vecEntity("c", "movie", domain.Vector{0, -1}),
	}}
	e := New(collab, content, vectors, Weights{Collaborative: 1, ContentBased: 0}, 0.92)

	out, err := e.Recommend(context.Background(), "t1", "u1", domain.Vector{1, 0}, 1)
	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, "a", out[0].EntityID)
}

func TestRecommendWithWeightsOverridesConstructionWeights(t *testing.T) {
	collab := &fakeCollab{out: []domain.ScoredEntity{
		{EntityID: "a", EntityType: "movie", Score: 1.0},
	}}
	content := &fakeContent{out: []domain.ScoredEntity{
		{EntityID: "b", EntityType: "movie", Score: 1.0},
	}}
	vectors := &fakeVectors{entities: map[string]*domain.Entity{
		"a\x1fmovie": vecEntity("a", "movie", domain.Vector{1, 0}),
		"b\x1fmovie": vecEntity("b", "movie", domain.Vector{0, 1}),
	}}
	// Constructed with collaborative-only weights...
	e := New(collab, content, vectors, Weights{Collaborative: 1, ContentBased: 0}, 0)

	// ...but the call asks for content-based-only, per §8's (0,1) boundary.
	out, err := e.RecommendWithWeights(context.Background(), "t1", "u1", domain.Vector{1, 0}, 1, 0, 1)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "b", out[0].EntityID)
}
