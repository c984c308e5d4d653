// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/corvidrec/corvid/internal/apierr"
	"github.com/corvidrec/corvid/internal/domain"
)

// InsertInteraction appends one interaction, enforcing the 60-second
// dedupe window on (tenant, user, entity, type): a duplicate arriving
// inside the window is accepted as a no-op and recorded in the dedupe
// audit log, the way the retrieved stack's crud_dedupe.go records
// discarded events rather than silently dropping them.
//
// Dedupe is atomic at the database level (INSERT ... ON CONFLICT DO
// NOTHING against the unique index on the dedupe tuple), so two
// concurrent inserts for the same window can never both persist. The
// in-process LRU (s.dedupeCache) is a fast-path check ahead of that: it
// can't itself prevent a race (it is advisory, not transactional), but
// it keeps hot duplicate bursts from round-tripping to DuckDB at all.
func (s *Store) InsertInteraction(ctx context.Context, i *domain.Interaction) error {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	tenant, user, _, typeName, bucket := i.DedupeKey()
	dedupeKey := strings.Join([]string{tenant, user, i.EntityID, typeName, strconv.FormatInt(bucket, 10)}, "\x1f")

	if s.dedupeCache.IsDuplicate(dedupeKey) {
		return s.recordDedupeDiscard(ctx, tenant, user, i.EntityID, typeName, bucket)
	}

	var metaJSON *string
	if len(i.Metadata) > 0 {
		b, err := json.Marshal(i.Metadata)
		if err != nil {
			return apierr.Wrap(apierr.KindInternalError, "could not encode interaction metadata", err)
		}
		s := string(b)
		metaJSON = &s
	}

	var ratingValue *float64
	if i.Type.Kind == domain.InteractionRating {
		ratingValue = &i.Type.RatingValue
	}

	return withRetry(ctx, defaultRetry, func() error {
		res, execErr := s.conn.ExecContext(ctx, `
			INSERT INTO interactions (tenant_id, user_id, entity_id, entity_type, interaction_type,
				rating_value, weight, dedupe_bucket, metadata_json, recorded_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (tenant_id, user_id, entity_id, interaction_type, dedupe_bucket) DO NOTHING`,
			tenant, user, i.EntityID, i.EntityType, typeName, ratingValue, i.Weight, bucket, metaJSON, i.Timestamp)
		if execErr != nil {
			return apierr.Wrap(apierr.KindStorageError, "could not save interaction", execErr)
		}
		if rows, err := res.RowsAffected(); err == nil && rows == 0 {
			return s.recordDedupeDiscard(ctx, tenant, user, i.EntityID, typeName, bucket)
		}
		return nil
	})
}

func (s *Store) recordDedupeDiscard(ctx context.Context, tenant, user, entityID, typeName string, bucket int64) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO interaction_dedupe_audit (id, tenant_id, user_id, entity_id, interaction_type, dedupe_bucket)
		VALUES (?, ?, ?, ?, ?, ?)`, uuid.New().String(), tenant, user, entityID, typeName, bucket)
	if err != nil {
		return apierr.Wrap(apierr.KindStorageError, "could not record interaction dedupe audit entry", err)
	}
	return nil
}

// RecentInteractions returns up to limit of a user's most recent
// interactions, newest first — used by the Collaborative Engine's
// neighbor aggregation (§4.4) and the profile recompute's weighted sum
// (§4.10).
func (s *Store) RecentInteractions(ctx context.Context, tenantID, userID string, limit int) ([]domain.Interaction, error) {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	rows, err := s.conn.QueryContext(ctx, `
		SELECT entity_id, entity_type, interaction_type, rating_value, weight, recorded_at
		FROM interactions
		WHERE tenant_id = ? AND user_id = ?
		ORDER BY recorded_at DESC
		LIMIT ?`, tenantID, userID, limit)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStorageError, "could not scan interactions", err)
	}
	defer rows.Close()

	var out []domain.Interaction
	for rows.Next() {
		var entityID, entityType, typeName string
		var ratingValue sql.NullFloat64
		var weight float64
		var recordedAt time.Time
		if err := rows.Scan(&entityID, &entityType, &typeName, &ratingValue, &weight, &recordedAt); err != nil {
			return nil, apierr.Wrap(apierr.KindStorageError, "could not decode interaction row", err)
		}
		out = append(out, domain.Interaction{
			TenantID: tenantID, UserID: userID, EntityID: entityID, EntityType: entityType,
			Type:      typeFromStorage(typeName, ratingValue),
			Weight:    weight,
			Timestamp: recordedAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, apierr.Wrap(apierr.KindStorageError, "could not finish scanning interactions", err)
	}
	return out, nil
}

// InteractedEntityIDs returns the distinct (entity_id, entity_type) pairs a
// user has ever interacted with, for exclusion from recommendation output.
func (s *Store) InteractedEntityIDs(ctx context.Context, tenantID, userID string) (map[string]bool, error) {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	rows, err := s.conn.QueryContext(ctx, `
		SELECT DISTINCT entity_id, entity_type FROM interactions
		WHERE tenant_id = ? AND user_id = ?`, tenantID, userID)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStorageError, "could not load interacted entities", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var id, typ string
		if err := rows.Scan(&id, &typ); err != nil {
			return nil, apierr.Wrap(apierr.KindStorageError, "could not decode interacted entity row", err)
		}
		out[entityKey(id, typ)] = true
	}
	return out, rows.Err()
}

func typeFromStorage(name string, rating sql.NullFloat64) domain.InteractionType {
	if rating.Valid {
		return domain.InteractionType{Kind: domain.InteractionRating, RatingValue: rating.Float64}
	}
	switch name {
	case "view":
		return domain.InteractionType{Kind: domain.InteractionView}
	case "click":
		return domain.InteractionType{Kind: domain.InteractionClick}
	case "add_to_cart":
		return domain.InteractionType{Kind: domain.InteractionAddToCart}
	case "purchase":
		return domain.InteractionType{Kind: domain.InteractionPurchase}
	case "like":
		return domain.InteractionType{Kind: domain.InteractionLike}
	default:
		return domain.InteractionType{Kind: domain.InteractionCustom, CustomName: name}
	}
}
