// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package vectorstore

import (
	"context"
	"time"

	"github.com/corvidrec/corvid/internal/apierr"
	"github.com/corvidrec/corvid/internal/domain"
)

// InteractionCountsSince returns, for a tenant and entity type (empty
// string means "all types"), the sum of interaction weights each entity
// received since since — the raw signal (§3's trending record: "sum of
// interaction weights over a trailing W-day window") the Trending
// producer (§4.11) normalizes into a TrendingEntry list.
func (s *Store) InteractionCountsSince(ctx context.Context, tenantID, entityType string, since time.Time) (map[string]float64, error) {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	query := `SELECT entity_id, SUM(weight) FROM interactions WHERE tenant_id = ? AND recorded_at >= ?`
	args := []any{tenantID, since}
	if entityType != "" {
		query += ` AND entity_type = ?`
		args = append(args, entityType)
	}
	query += ` GROUP BY entity_id`

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStorageError, "could not compute trending interaction counts", err)
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var entityID string
		var total float64
		if err := rows.Scan(&entityID, &total); err != nil {
			return nil, apierr.Wrap(apierr.KindStorageError, "could not decode trending count row", err)
		}
		out[entityID] = total
	}
	return out, rows.Err()
}

// PutTrending replaces the stored trending list for (tenant, entity type)
// with entries, atomically from the caller's perspective.
func (s *Store) PutTrending(ctx context.Context, tenantID, entityType string, entries []domain.TrendingEntry) error {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	return withRetry(ctx, defaultRetry, func() error {
		tx, err := s.conn.BeginTx(ctx, nil)
		if err != nil {
			return apierr.Wrap(apierr.KindStorageError, "could not begin trending update", err)
		}
		defer tx.Rollback() //nolint:errcheck

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM trending_entries WHERE tenant_id = ? AND entity_type = ?`, tenantID, entityType); err != nil {
			return apierr.Wrap(apierr.KindStorageError, "could not clear trending entries", err)
		}

		now := time.Now().UTC()
		for _, e := range entries {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO trending_entries (tenant_id, entity_type, entity_id, score, computed_at)
				VALUES (?, ?, ?, ?, ?)`, tenantID, entityType, e.EntityID, e.Score, now); err != nil {
				return apierr.Wrap(apierr.KindStorageError, "could not insert trending entry", err)
			}
		}
		if err := tx.Commit(); err != nil {
			return apierr.Wrap(apierr.KindStorageError, "could not commit trending update", err)
		}
		return nil
	})
}

// GetTrending returns up to k trending entries for (tenant, entity type),
// sorted by score descending — the cold-start fallback source for §4.4/§4.5
// and the payload of the trending:{type}:{count} cache key family.
func (s *Store) GetTrending(ctx context.Context, tenantID, entityType string, k int) ([]domain.TrendingEntry, error) {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	rows, err := s.conn.QueryContext(ctx, `
		SELECT entity_id, score FROM trending_entries
		WHERE tenant_id = ? AND entity_type = ?
		ORDER BY score DESC
		LIMIT ?`, tenantID, entityType, k)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStorageError, "could not read trending entries", err)
	}
	defer rows.Close()

	var out []domain.TrendingEntry
	for rows.Next() {
		var entityID string
		var score float64
		if err := rows.Scan(&entityID, &score); err != nil {
			return nil, apierr.Wrap(apierr.KindStorageError, "could not decode trending entry row", err)
		}
		out = append(out, domain.TrendingEntry{EntityID: entityID, EntityType: entityType, Score: score})
	}
	return out, rows.Err()
}
