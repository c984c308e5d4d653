// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package registry resolves an interaction type to its weight (§4.8): a
// per-tenant map of type name to default weight, with a global fallback of
// 1.0 for anything unregistered. It holds no persistent state of its own —
// callers seed it from the TenantParams.InteractionWeights the Vector Store
// persists.
package registry

import "github.com/corvidrec/corvid/internal/domain"

// defaultWeights are the global defaults from §4.8's table, used whenever a
// tenant has no override for a given type name.
var defaultWeights = map[string]float64{
	"view":        1.0,
	"click":       1.5,
	"add_to_cart": 3.0,
	"like":        2.0,
	"purchase":    5.0,
}

// fallbackWeight is returned for any type name neither overridden by the
// tenant nor present in defaultWeights (§9's Open Question: resolved as
// per-tenant-override-with-global-fallback, see DESIGN.md).
const fallbackWeight = 1.0

// Registry resolves weights for one tenant's interaction types.
type Registry struct {
	overrides map[string]float64
}

// New constructs a Registry from a tenant's override map (may be nil).
func New(overrides map[string]float64) *Registry {
	return &Registry{overrides: overrides}
}

// Weight returns the weight to record for t. A rating(v) interaction always
// resolves to its own rating value regardless of registry contents, per
// §4.8's table. All other kinds check the tenant override first, then the
// global default, then fall back to 1.0.
func (r *Registry) Weight(t domain.InteractionType) float64 {
	if t.Kind == domain.InteractionRating {
		return t.RatingValue
	}

	name := t.Name()
	if r != nil {
		if w, ok := r.overrides[name]; ok {
			return w
		}
	}
	if w, ok := defaultWeights[name]; ok {
		return w
	}
	return fallbackWeight
}

// Defaults returns a copy of the global default weight table, used to seed
// a new tenant's TenantParams.InteractionWeights.
func Defaults() map[string]float64 {
	out := make(map[string]float64, len(defaultWeights))
	for k, v := range defaultWeights {
		out[k] = v
	}
	return out
}
