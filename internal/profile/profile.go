// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package profile implements Preference Vector Recompute (§4.10): fetch
// a user's recent interactions, join each to its entity's feature
// vector, compute the weighted-sum preference vector, and upsert the
// user profile. Recompute is serialized per user via a striped mutex —
// grounded on the consistent-hash server selection in
// infrastructure/performance/LoadBalancerComponents.go (hash/fnv,
// hash % bucket-count) — and coalesced via singleflight so concurrent
// recomputes for the same user collapse into one run.
package profile

import (
	"context"
	"hash/fnv"

	"golang.org/x/sync/singleflight"

	"github.com/corvidrec/corvid/internal/domain"
)

// RecentInteractionLimit bounds how far back a recompute looks, per
// §4.10's "up to the 1,000 most recent interactions".
const RecentInteractionLimit = 1000

// stripeCount is the number of per-user mutex stripes that fnv hashes of
// the (tenant, user) key are spread across.
const stripeCount = 256

// Store is the subset of the Vector Store this package depends on.
type Store interface {
	RecentInteractions(ctx context.Context, tenantID, userID string, limit int) ([]domain.Interaction, error)
	GetEntity(ctx context.Context, tenantID, id, entityType string) (*domain.Entity, error)
	PutUserProfile(ctx context.Context, profile *domain.UserProfile) error
}

// Recomputer recomputes user preference vectors, serialized per user.
type Recomputer struct {
	store   Store
	stripes [stripeCount]chan struct{}
	group   singleflight.Group
}

// New constructs a Recomputer over store.
func New(store Store) *Recomputer {
	r := &Recomputer{store: store}
	for i := range r.stripes {
		r.stripes[i] = make(chan struct{}, 1)
	}
	return r
}

func stripeFor(tenantID, userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(tenantID))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % stripeCount)
}

// Recompute recomputes and persists the preference vector for
// (tenantID, userID). Concurrent calls for the same user coalesce into
// a single underlying run via singleflight; the per-stripe channel then
// serializes that run against the Vector Store write so two recomputes
// for the same user never race on the upsert (§4.10).
func (r *Recomputer) Recompute(ctx context.Context, tenantID, userID string) (*domain.UserProfile, error) {
	key := tenantID + "\x1f" + userID
	result, err, _ := r.group.Do(key, func() (any, error) {
		return r.recomputeLocked(ctx, tenantID, userID)
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.UserProfile), nil
}

func (r *Recomputer) recomputeLocked(ctx context.Context, tenantID, userID string) (*domain.UserProfile, error) {
	stripe := r.stripes[stripeFor(tenantID, userID)]
	stripe <- struct{}{}
	defer func() { <-stripe }()

	interactions, err := r.store.RecentInteractions(ctx, tenantID, userID, RecentInteractionLimit)
	if err != nil {
		return nil, err
	}

	profile := &domain.UserProfile{TenantID: tenantID, UserID: userID}
	if len(interactions) == 0 {
		if err := r.store.PutUserProfile(ctx, profile); err != nil {
			return nil, err
		}
		return profile, nil
	}

	var dimension int
	weighted := domain.Vector(nil)
	var weightSum float64
	var last = interactions[0].Timestamp

	for _, in := range interactions {
		entity, err := r.store.GetEntity(ctx, tenantID, in.EntityID, in.EntityType)
		if err != nil || entity == nil {
			continue
		}
		if weighted == nil {
			dimension = len(entity.Vector)
			weighted = make(domain.Vector, dimension)
		}
		for i, v := range entity.Vector {
			if i >= dimension {
				break
			}
			weighted[i] += in.Weight * v
		}
		weightSum += in.Weight
		if in.Timestamp.After(last) {
			last = in.Timestamp
		}
	}

	if weighted != nil && weightSum != 0 {
		for i := range weighted {
			weighted[i] /= weightSum
		}
	}

	profile.PreferenceVector = weighted.Normalized()
	profile.InteractionCount = len(interactions)
	profile.LastInteractionAt = last

	if err := r.store.PutUserProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
