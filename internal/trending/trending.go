// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package trending computes the Trending record (§3, §4.11): for a
// tenant and optional entity type, the entities with the highest summed
// interaction weight over a trailing window, normalized to [0,1] by the
// window maximum. It is the cold-start fallback source for the
// Collaborative and Content-Based engines and backs the trending
// endpoint directly.
//
// Grounded on internal/recommend/algorithms/popularity.go's scoring
// shape (sum interaction confidence per item, sort descending), adapted
// from its in-process item-score map to a Vector Store-backed per-tenant
// recompute that persists its output for cache and cold-start reads.
package trending

import (
	"context"
	"sort"
	"time"

	"github.com/corvidrec/corvid/internal/domain"
)

// DefaultWindow is the trailing window over which interaction weights
// are summed, per §3's trending record definition (W = 7 days).
const DefaultWindow = 7 * 24 * time.Hour

// DefaultMaxEntries bounds how many entries a single recompute persists
// per (tenant, entity type) cell.
const DefaultMaxEntries = 200

// Store is the subset of the Vector Store the trending producer depends
// on.
type Store interface {
	InteractionCountsSince(ctx context.Context, tenantID, entityType string, since time.Time) (map[string]float64, error)
	PutTrending(ctx context.Context, tenantID, entityType string, entries []domain.TrendingEntry) error
	GetTrending(ctx context.Context, tenantID, entityType string, k int) ([]domain.TrendingEntry, error)
}

// Config tunes the trending producer.
type Config struct {
	Window     time.Duration
	MaxEntries int
}

// DefaultConfig returns the §3/§4.11 defaults.
func DefaultConfig() Config {
	return Config{Window: DefaultWindow, MaxEntries: DefaultMaxEntries}
}

// Producer recomputes and serves trending lists.
type Producer struct {
	store Store
	cfg   Config
}

// New constructs a Producer over store. A zero cfg.Window or
// cfg.MaxEntries falls back to the package defaults.
func New(store Store, cfg Config) *Producer {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}
	return &Producer{store: store, cfg: cfg}
}

// Recompute sums interaction weights for (tenantID, entityType) since
// now - window, normalizes by the window maximum, sorts descending with
// entity_id ascending as a deterministic tie-break, truncates to
// MaxEntries, persists the result, and returns it.
func (p *Producer) Recompute(ctx context.Context, tenantID, entityType string, now time.Time) ([]domain.TrendingEntry, error) {
	counts, err := p.store.InteractionCountsSince(ctx, tenantID, entityType, now.Add(-p.cfg.Window))
	if err != nil {
		return nil, err
	}
	if len(counts) == 0 {
		if err := p.store.PutTrending(ctx, tenantID, entityType, nil); err != nil {
			return nil, err
		}
		return nil, nil
	}

	var maxScore float64
	for _, total := range counts {
		if total > maxScore {
			maxScore = total
		}
	}

	entries := make([]domain.TrendingEntry, 0, len(counts))
	for entityID, total := range counts {
		score := 0.0
		if maxScore > 0 {
			score = total / maxScore
		}
		entries = append(entries, domain.TrendingEntry{EntityID: entityID, EntityType: entityType, Score: score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].EntityID < entries[j].EntityID
	})
	if len(entries) > p.cfg.MaxEntries {
		entries = entries[:p.cfg.MaxEntries]
	}

	if err := p.store.PutTrending(ctx, tenantID, entityType, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Get returns up to count persisted trending entries for (tenantID,
// entityType) — the cold-start fallback read path for §4.4/§4.5 and the
// trending endpoint.
func (p *Producer) Get(ctx context.Context, tenantID, entityType string, count int) ([]domain.TrendingEntry, error) {
	return p.store.GetTrending(ctx, tenantID, entityType, count)
}
