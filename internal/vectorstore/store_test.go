// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package vectorstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidrec/corvid/internal/apierr"
	"github.com/corvidrec/corvid/internal/domain"
)

// testDBMutex serializes DuckDB CGO connection creation across tests, the
// way the retrieved stack's database_test.go setupTestDB does.
var testDBMutex sync.Mutex

func newTestStore(t *testing.T) *Store {
	t.Helper()
	testDBMutex.Lock()
	defer testDBMutex.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := Open(ctx, Config{Path: ":memory:", MaxMemory: "1GB", SmallTenant: 1000})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPutAndGetEntity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	e := &domain.Entity{
		TenantID: "t1", ID: "e1", Type: "movie",
		Attrs:  domain.AttributeMap{"genre": domain.StringValue("scifi")},
		Vector: domain.Vector{1, 0, 0},
	}
	require.NoError(t, s.PutEntity(ctx, e))

	got, err := s.GetEntity(ctx, "t1", "e1", "movie")
	require.NoError(t, err)
	assert.Equal(t, "e1", got.ID)
	assert.Equal(t, domain.AttrString, got.Attrs["genre"].Kind)
	assert.Equal(t, "scifi", got.Attrs["genre"].Str)
}

func TestGetEntityNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetEntity(context.Background(), "t1", "missing", "movie")
	require.Error(t, err)
	assert.True(t, apierr.Is(err, apierr.KindEntityNotFound))
}

func TestDeleteEntityRemovesFromIndex(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	e := &domain.Entity{TenantID: "t1", ID: "e1", Type: "movie", Vector: domain.Vector{1, 0}}
	require.NoError(t, s.PutEntity(ctx, e))
	require.NoError(t, s.DeleteEntity(ctx, "t1", "e1", "movie"))

	_, err := s.GetEntity(ctx, "t1", "e1", "movie")
	assert.True(t, apierr.Is(err, apierr.KindEntityNotFound))

	results := s.FindSimilarEntities("t1", domain.Vector{1, 0}, 5, -1, nil, "")
	assert.Empty(t, results)
}

func TestInteractionDedupeWithin60Seconds(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	i1 := &domain.Interaction{
		TenantID: "t1", UserID: "u1", EntityID: "e1", EntityType: "movie",
		Type: domain.InteractionType{Kind: domain.InteractionView}, Weight: 1, Timestamp: base,
	}
	i2 := &domain.Interaction{
		TenantID: "t1", UserID: "u1", EntityID: "e1", EntityType: "movie",
		Type: domain.InteractionType{Kind: domain.InteractionView}, Weight: 1, Timestamp: base.Add(30 * time.Second),
	}
	require.NoError(t, s.InsertInteraction(ctx, i1))
	require.NoError(t, s.InsertInteraction(ctx, i2))

	recent, err := s.RecentInteractions(ctx, "t1", "u1", 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1, "interaction inside the 60s dedupe window must be accepted as a no-op")
}

func TestFindSimilarEntitiesRanksByCosine(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutEntity(ctx, &domain.Entity{TenantID: "t1", ID: "a", Type: "movie", Vector: domain.Vector{1, 0}}))
	require.NoError(t, s.PutEntity(ctx, &domain.Entity{TenantID: "t1", ID: "b", Type: "movie", Vector: domain.Vector{0.9, 0.1}}))
	require.NoError(t, s.PutEntity(ctx, &domain.Entity{TenantID: "t1", ID: "c", Type: "movie", Vector: domain.Vector{0, 1}}))

	results := s.FindSimilarEntities("t1", domain.Vector{1, 0}, 2, -1, nil, "")
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].EntityID)
	assert.Equal(t, "b", results[1].EntityID)
}

func TestFindSimilarEntitiesFiltersByType(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.PutEntity(ctx, &domain.Entity{TenantID: "t1", ID: "a", Type: "movie", Vector: domain.Vector{1, 0}}))
	require.NoError(t, s.PutEntity(ctx, &domain.Entity{TenantID: "t1", ID: "b", Type: "show", Vector: domain.Vector{1, 0}}))

	results := s.FindSimilarEntities("t1", domain.Vector{1, 0}, 5, -1, nil, "show")
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].EntityID)
}

func TestTenantParamsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, err := s.GetTenantParams(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 1.0, p.InteractionWeights["view"])

	p.ObserveNumeric("year", 2021)
	require.NoError(t, s.PutTenantParams(ctx, p))

	p2, err := s.GetTenantParams(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 2021.0, p2.NumericBounds["year"].Max)
}

func TestTrendingRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	entries := []domain.TrendingEntry{{EntityID: "a", Score: 1.0}, {EntityID: "b", Score: 0.5}}
	require.NoError(t, s.PutTrending(ctx, "t1", "movie", entries))

	got, err := s.GetTrending(ctx, "t1", "movie", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].EntityID)
}
