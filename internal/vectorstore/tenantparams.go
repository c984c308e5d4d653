// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/corvidrec/corvid/internal/apierr"
	"github.com/corvidrec/corvid/internal/domain"
	"github.com/corvidrec/corvid/internal/features"
	"github.com/corvidrec/corvid/internal/registry"
)

// GetTenantParams reads a tenant's running feature-extraction and
// interaction-weight parameters (§3B), creating a fresh row seeded with
// the global interaction-weight defaults if none exists yet.
func (s *Store) GetTenantParams(ctx context.Context, tenantID string) (*features.TenantParams, error) {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	row := s.conn.QueryRowContext(ctx, `
		SELECT dimension, numeric_bounds, token_doc_freq, token_doc_count, interaction_weights
		FROM tenant_params WHERE tenant_id = ?`, tenantID)

	var dimension int
	var boundsJSON, freqJSON, weightsJSON string
	var docCount int64
	err := row.Scan(&dimension, &boundsJSON, &freqJSON, &docCount, &weightsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		p := features.NewTenantParams(tenantID, domain.Dimension)
		p.InteractionWeights = registry.Defaults()
		if putErr := s.PutTenantParams(ctx, p); putErr != nil {
			return nil, putErr
		}
		return p, nil
	}
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStorageError, "could not read tenant params", err)
	}

	p := features.NewTenantParams(tenantID, dimension)
	p.TokenDocCount = docCount
	if err := json.Unmarshal([]byte(boundsJSON), &p.NumericBounds); err != nil {
		return nil, apierr.Wrap(apierr.KindInternalError, "could not decode tenant numeric bounds", err)
	}
	if err := json.Unmarshal([]byte(freqJSON), &p.TokenDocFreq); err != nil {
		return nil, apierr.Wrap(apierr.KindInternalError, "could not decode tenant token frequencies", err)
	}
	if err := json.Unmarshal([]byte(weightsJSON), &p.InteractionWeights); err != nil {
		return nil, apierr.Wrap(apierr.KindInternalError, "could not decode tenant interaction weights", err)
	}
	return p, nil
}

// PutTenantParams persists a widened TenantParams snapshot.
func (s *Store) PutTenantParams(ctx context.Context, p *features.TenantParams) error {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	bounds, err := json.Marshal(p.NumericBounds)
	if err != nil {
		return apierr.Wrap(apierr.KindInternalError, "could not encode tenant numeric bounds", err)
	}
	freq, err := json.Marshal(p.TokenDocFreq)
	if err != nil {
		return apierr.Wrap(apierr.KindInternalError, "could not encode tenant token frequencies", err)
	}
	weights, err := json.Marshal(p.InteractionWeights)
	if err != nil {
		return apierr.Wrap(apierr.KindInternalError, "could not encode tenant interaction weights", err)
	}

	return withRetry(ctx, defaultRetry, func() error {
		_, execErr := s.conn.ExecContext(ctx, `
			INSERT INTO tenant_params (tenant_id, dimension, numeric_bounds, token_doc_freq, token_doc_count, interaction_weights)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (tenant_id) DO UPDATE SET
				dimension = excluded.dimension,
				numeric_bounds = excluded.numeric_bounds,
				token_doc_freq = excluded.token_doc_freq,
				token_doc_count = excluded.token_doc_count,
				interaction_weights = excluded.interaction_weights
		`, p.TenantID, p.Dimension, string(bounds), string(freq), p.TokenDocCount, string(weights))
		if execErr != nil {
			return apierr.Wrap(apierr.KindStorageError, "could not save tenant params", execErr)
		}
		return nil
	})
}
