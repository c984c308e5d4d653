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
	"time"

	"github.com/corvidrec/corvid/internal/apierr"
	"github.com/corvidrec/corvid/internal/domain"
)

// jsonAttrValue is the on-disk encoding of one AttributeValue: flat enough to
// round-trip through encoding/json without a custom MarshalJSON on
// AttributeValue, since Kind already discriminates the payload.
type jsonAttrValue struct {
	Kind   domain.AttributeKind     `json:"kind"`
	Str    string                   `json:"str,omitempty"`
	Num    float64                  `json:"num,omitempty"`
	Bool   bool                     `json:"bool,omitempty"`
	List   []string                 `json:"list,omitempty"`
	Nested map[string]jsonAttrValue `json:"nested,omitempty"`
}

func toJSONAttrs(m domain.AttributeMap) map[string]jsonAttrValue {
	out := make(map[string]jsonAttrValue, len(m))
	for k, v := range m {
		out[k] = jsonAttrValue{
			Kind: v.Kind, Str: v.Str, Num: v.Num, Bool: v.Bool, List: v.List,
			Nested: toJSONAttrs(domain.AttributeMap(v.Nested)),
		}
	}
	return out
}

func fromJSONAttrs(m map[string]jsonAttrValue) domain.AttributeMap {
	out := make(domain.AttributeMap, len(m))
	for k, v := range m {
		out[k] = domain.AttributeValue{
			Kind: v.Kind, Str: v.Str, Num: v.Num, Bool: v.Bool, List: v.List,
			Nested: fromJSONAttrs(v.Nested),
		}
	}
	return out
}

// PutEntity inserts or replaces the entity, keyed by (tenant, id, type),
// and refreshes the tenant's in-memory similarity index.
func (s *Store) PutEntity(ctx context.Context, e *domain.Entity) error {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	attrsJSON, err := json.Marshal(toJSONAttrs(e.Attrs))
	if err != nil {
		return apierr.Wrap(apierr.KindInternalError, "could not encode entity attributes", err)
	}
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	err = withRetry(ctx, defaultRetry, func() error {
		_, execErr := s.conn.ExecContext(ctx, `
			INSERT INTO entities (tenant_id, id, entity_type, attrs_json, vector, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (tenant_id, id, entity_type) DO UPDATE SET
				attrs_json = excluded.attrs_json,
				vector = excluded.vector,
				updated_at = excluded.updated_at
		`, e.TenantID, e.ID, e.Type, string(attrsJSON), []float64(e.Vector), e.CreatedAt, e.UpdatedAt)
		return execErr
	})
	if err != nil {
		return apierr.Wrap(apierr.KindStorageError, "could not save entity", err)
	}

	s.entityIndexFor(e.TenantID).Upsert(entityKey(e.ID, e.Type), e.Vector)
	return nil
}

// GetEntity reads one entity by its compound key, or returns a
// KindEntityNotFound error if it doesn't exist.
func (s *Store) GetEntity(ctx context.Context, tenantID, id, entityType string) (*domain.Entity, error) {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	row := s.conn.QueryRowContext(ctx, `
		SELECT attrs_json, vector, created_at, updated_at FROM entities
		WHERE tenant_id = ? AND id = ? AND entity_type = ?`, tenantID, id, entityType)

	var attrsJSON string
	var vec []float64
	var createdAt, updatedAt time.Time
	if err := row.Scan(&attrsJSON, &vec, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierr.New(apierr.KindEntityNotFound, "entity not found")
		}
		return nil, apierr.Wrap(apierr.KindStorageError, "could not read entity", err)
	}

	var raw map[string]jsonAttrValue
	if err := json.Unmarshal([]byte(attrsJSON), &raw); err != nil {
		return nil, apierr.Wrap(apierr.KindInternalError, "could not decode entity attributes", err)
	}

	return &domain.Entity{
		TenantID: tenantID, ID: id, Type: entityType,
		Attrs: fromJSONAttrs(raw), Vector: vec,
		CreatedAt: createdAt, UpdatedAt: updatedAt,
	}, nil
}

// DeleteEntity removes an entity and its index entry.
func (s *Store) DeleteEntity(ctx context.Context, tenantID, id, entityType string) error {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	res, err := s.conn.ExecContext(ctx,
		`DELETE FROM entities WHERE tenant_id = ? AND id = ? AND entity_type = ?`, tenantID, id, entityType)
	if err != nil {
		return apierr.Wrap(apierr.KindStorageError, "could not delete entity", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apierr.New(apierr.KindEntityNotFound, "entity not found")
	}
	s.entityIndexFor(tenantID).Delete(entityKey(id, entityType))
	return nil
}

func (s *Store) entityIndexFor(tenantID string) *hnswIndex {
	s.entityIdxMu.Lock()
	defer s.entityIdxMu.Unlock()
	idx, ok := s.entityIdx[tenantID]
	if !ok {
		idx = newHNSWIndex(s.cfg.SmallTenant)
		s.entityIdx[tenantID] = idx
	}
	return idx
}
