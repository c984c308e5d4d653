// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package vectorstore

import (
	"context"
	"time"

	"github.com/corvidrec/corvid/internal/apierr"
)

// ListTenants returns every distinct tenant ID with at least one user
// profile, entity, or tenant-params row — the Model Updater's (§4.11)
// scope for full profile rebuild and trending recompute.
func (s *Store) ListTenants(ctx context.Context) ([]string, error) {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	rows, err := s.conn.QueryContext(ctx, `
		SELECT tenant_id FROM tenant_params
		UNION
		SELECT DISTINCT tenant_id FROM entities
		UNION
		SELECT DISTINCT tenant_id FROM user_profiles`)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStorageError, "could not list tenants", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var tenantID string
		if err := rows.Scan(&tenantID); err != nil {
			return nil, apierr.Wrap(apierr.KindStorageError, "could not decode tenant row", err)
		}
		out = append(out, tenantID)
	}
	return out, rows.Err()
}

// ListUsers returns every distinct user ID that has recorded at least one
// interaction for tenantID — candidates for a full preference-vector
// rebuild, since a user with no interactions has nothing to recompute.
func (s *Store) ListUsers(ctx context.Context, tenantID string) ([]string, error) {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	rows, err := s.conn.QueryContext(ctx,
		`SELECT DISTINCT user_id FROM interactions WHERE tenant_id = ?`, tenantID)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStorageError, "could not list users", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, apierr.Wrap(apierr.KindStorageError, "could not decode user row", err)
		}
		out = append(out, userID)
	}
	return out, rows.Err()
}

// ListUsersSince returns every distinct user ID that recorded at least one
// interaction for tenantID at or after since — the Model Updater's (§4.11)
// incremental-refresh loop uses this to scope its 10-second tick to users
// with new activity rather than recomputing every profile on every tick.
func (s *Store) ListUsersSince(ctx context.Context, tenantID string, since time.Time) ([]string, error) {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	rows, err := s.conn.QueryContext(ctx,
		`SELECT DISTINCT user_id FROM interactions WHERE tenant_id = ? AND recorded_at >= ?`, tenantID, since)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStorageError, "could not list users since", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, apierr.Wrap(apierr.KindStorageError, "could not decode user-since row", err)
		}
		out = append(out, userID)
	}
	return out, rows.Err()
}

// ListEntityTypes returns every distinct entity type entities have been
// recorded under for tenantID — the Trending producer (§4.11) recomputes
// one ranked list per entity type.
func (s *Store) ListEntityTypes(ctx context.Context, tenantID string) ([]string, error) {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	rows, err := s.conn.QueryContext(ctx,
		`SELECT DISTINCT entity_type FROM entities WHERE tenant_id = ?`, tenantID)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStorageError, "could not list entity types", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var entityType string
		if err := rows.Scan(&entityType); err != nil {
			return nil, apierr.Wrap(apierr.KindStorageError, "could not decode entity type row", err)
		}
		out = append(out, entityType)
	}
	return out, rows.Err()
}
