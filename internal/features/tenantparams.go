// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package features projects an entity's attribute map into a fixed-length
// vector in the domain's feature space (§4.1). The projection is
// deterministic and stateless given a TenantParams snapshot: identical
// attribute maps and parameters yield byte-identical vectors. The extractor
// performs no I/O itself — TenantParams is loaded and saved by the Vector
// Store (§3B). Nothing in this repository calls ObserveNumeric or
// ObserveDocument outside tests, so stored bounds and document counts stay
// as first created unless a caller widens them and saves the result.
package features

import (
	"math"
)

// Range is a running [Min, Max] bound observed for one numeric attribute key
// within a tenant. It only ever widens.
type Range struct {
	Min float64
	Max float64
}

// Widen returns the smallest Range covering both r and an observed value x.
func (r Range) Widen(x float64) Range {
	out := r
	if x < out.Min {
		out.Min = x
	}
	if x > out.Max {
		out.Max = x
	}
	return out
}

// scale maps x into [0,1] against r, clamping out-of-range values. A
// degenerate range (Min == Max) maps every value to 0.5, since there is no
// observed spread to normalize against yet.
func (r Range) scale(x float64) float64 {
	if r.Max <= r.Min {
		return 0.5
	}
	v := (x - r.Min) / (r.Max - r.Min)
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// TenantParams is the small per-tenant parameter struct the Feature
// Extractor reads (§3B): running numeric bounds for min-max scaling, and
// rolling document-frequency counts for list/text IDF weighting. It is
// owned and persisted by the Vector Store; the extractor treats it as a
// read-only snapshot and never mutates it in place.
type TenantParams struct {
	TenantID           string
	Dimension          int
	NumericBounds      map[string]Range
	TokenDocFreq       map[string]int64
	TokenDocCount      int64
	InteractionWeights map[string]float64
}

// NewTenantParams returns an empty TenantParams for tenant at the given
// vector dimension.
func NewTenantParams(tenantID string, dimension int) *TenantParams {
	return &TenantParams{
		TenantID:           tenantID,
		Dimension:          dimension,
		NumericBounds:      make(map[string]Range),
		TokenDocFreq:       make(map[string]int64),
		InteractionWeights: make(map[string]float64),
	}
}

// ObserveNumeric widens the running bound for key to cover x. This is a
// pure value transform, not a store write; the widened bound is persisted
// only when p is passed to the Vector Store's PutTenantParams.
func (p *TenantParams) ObserveNumeric(key string, x float64) {
	p.NumericBounds[key] = p.NumericBounds[key].Widen(x)
}

// ObserveDocument rolls the per-tenant document-frequency counters forward
// by one document carrying the given distinct tokens.
func (p *TenantParams) ObserveDocument(tokens []string) {
	p.TokenDocCount++
	seen := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		if seen[tok] {
			continue
		}
		seen[tok] = true
		p.TokenDocFreq[tok]++
	}
}

// idf returns the inverse-document-frequency weight for tok per §4.1:
// log((doc_count+1)/(doc_freq+1)).
func (p *TenantParams) idf(tok string) float64 {
	df := p.TokenDocFreq[tok]
	return math.Log(float64(p.TokenDocCount+1) / float64(df+1))
}
