// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package vectorstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/corvidrec/corvid/internal/apierr"
	"github.com/corvidrec/corvid/internal/domain"
)

// PutUserProfile upserts a user's preference vector snapshot and refreshes
// the tenant's user-similarity index.
func (s *Store) PutUserProfile(ctx context.Context, p *domain.UserProfile) error {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	err := withRetry(ctx, defaultRetry, func() error {
		_, execErr := s.conn.ExecContext(ctx, `
			INSERT INTO user_profiles (tenant_id, user_id, preference_vector, interaction_count, last_interaction_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (tenant_id, user_id) DO UPDATE SET
				preference_vector = excluded.preference_vector,
				interaction_count = excluded.interaction_count,
				last_interaction_at = excluded.last_interaction_at
		`, p.TenantID, p.UserID, []float64(p.PreferenceVector), p.InteractionCount, p.LastInteractionAt)
		return execErr
	})
	if err != nil {
		return apierr.Wrap(apierr.KindStorageError, "could not save user profile", err)
	}

	s.userIndexFor(p.TenantID).Upsert(p.UserID, p.PreferenceVector)
	return nil
}

// GetUserProfile reads one user's profile, or nil (no error) if the user
// has never interacted — callers treat a nil profile as cold-start.
func (s *Store) GetUserProfile(ctx context.Context, tenantID, userID string) (*domain.UserProfile, error) {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	row := s.conn.QueryRowContext(ctx, `
		SELECT preference_vector, interaction_count, last_interaction_at
		FROM user_profiles WHERE tenant_id = ? AND user_id = ?`, tenantID, userID)

	var vec []float64
	var count int64
	var lastAt sql.NullTime
	if err := row.Scan(&vec, &count, &lastAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apierr.Wrap(apierr.KindStorageError, "could not read user profile", err)
	}

	p := &domain.UserProfile{
		TenantID: tenantID, UserID: userID,
		PreferenceVector: vec, InteractionCount: int(count),
	}
	if lastAt.Valid {
		p.LastInteractionAt = lastAt.Time
	}
	return p, nil
}

// DeleteUserProfile removes a user's profile snapshot.
func (s *Store) DeleteUserProfile(ctx context.Context, tenantID, userID string) error {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	_, err := s.conn.ExecContext(ctx,
		`DELETE FROM user_profiles WHERE tenant_id = ? AND user_id = ?`, tenantID, userID)
	if err != nil {
		return apierr.Wrap(apierr.KindStorageError, "could not delete user profile", err)
	}
	s.userIndexFor(tenantID).Delete(userID)
	return nil
}

func (s *Store) userIndexFor(tenantID string) *hnswIndex {
	s.userIdxMu.Lock()
	defer s.userIdxMu.Unlock()
	idx, ok := s.userIdx[tenantID]
	if !ok {
		idx = newHNSWIndex(s.cfg.SmallTenant)
		s.userIdx[tenantID] = idx
	}
	return idx
}

// warmIndexes loads every existing entity and user-profile vector into the
// in-memory HNSW indexes on startup, so similarity search works immediately
// rather than only after the first write.
func (s *Store) warmIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	entityRows, err := s.conn.QueryContext(ctx, `SELECT tenant_id, id, entity_type, vector FROM entities`)
	if err != nil {
		return apierr.Wrap(apierr.KindStorageError, "could not warm entity index", err)
	}
	defer entityRows.Close()
	for entityRows.Next() {
		var tenantID, id, entityType string
		var vec []float64
		if err := entityRows.Scan(&tenantID, &id, &entityType, &vec); err != nil {
			return apierr.Wrap(apierr.KindStorageError, "could not decode entity row while warming index", err)
		}
		s.entityIndexFor(tenantID).Upsert(entityKey(id, entityType), vec)
	}
	if err := entityRows.Err(); err != nil {
		return apierr.Wrap(apierr.KindStorageError, "could not finish warming entity index", err)
	}

	userRows, err := s.conn.QueryContext(ctx, `SELECT tenant_id, user_id, preference_vector FROM user_profiles`)
	if err != nil {
		return apierr.Wrap(apierr.KindStorageError, "could not warm user index", err)
	}
	defer userRows.Close()
	for userRows.Next() {
		var tenantID, userID string
		var vec []float64
		if err := userRows.Scan(&tenantID, &userID, &vec); err != nil {
			return apierr.Wrap(apierr.KindStorageError, "could not decode user profile row while warming index", err)
		}
		s.userIndexFor(tenantID).Upsert(userID, vec)
	}
	return userRows.Err()
}
