// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package vectorstore

import (
	"context"

	"github.com/corvidrec/corvid/internal/apierr"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS entities (
		tenant_id   VARCHAR NOT NULL,
		id          VARCHAR NOT NULL,
		entity_type VARCHAR NOT NULL,
		attrs_json  VARCHAR NOT NULL,
		vector      DOUBLE[],
		created_at  TIMESTAMP NOT NULL DEFAULT current_timestamp,
		updated_at  TIMESTAMP NOT NULL DEFAULT current_timestamp,
		PRIMARY KEY (tenant_id, id, entity_type)
	)`,
	`CREATE TABLE IF NOT EXISTS interactions (
		tenant_id        VARCHAR NOT NULL,
		user_id          VARCHAR NOT NULL,
		entity_id        VARCHAR NOT NULL,
		entity_type      VARCHAR NOT NULL,
		interaction_type VARCHAR NOT NULL,
		rating_value     DOUBLE,
		weight           DOUBLE NOT NULL,
		dedupe_bucket    BIGINT NOT NULL,
		metadata_json    VARCHAR,
		recorded_at      TIMESTAMP NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_interactions_dedupe
		ON interactions (tenant_id, user_id, entity_id, interaction_type, dedupe_bucket)`,
	`CREATE INDEX IF NOT EXISTS idx_interactions_user
		ON interactions (tenant_id, user_id, recorded_at)`,
	`CREATE TABLE IF NOT EXISTS user_profiles (
		tenant_id            VARCHAR NOT NULL,
		user_id              VARCHAR NOT NULL,
		preference_vector    DOUBLE[],
		interaction_count    BIGINT NOT NULL DEFAULT 0,
		last_interaction_at  TIMESTAMP,
		PRIMARY KEY (tenant_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS tenant_params (
		tenant_id        VARCHAR NOT NULL PRIMARY KEY,
		dimension        INTEGER NOT NULL,
		numeric_bounds   VARCHAR NOT NULL,
		token_doc_freq   VARCHAR NOT NULL,
		token_doc_count  BIGINT NOT NULL DEFAULT 0,
		interaction_weights VARCHAR NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS trending_entries (
		tenant_id   VARCHAR NOT NULL,
		entity_type VARCHAR NOT NULL,
		entity_id   VARCHAR NOT NULL,
		score       DOUBLE NOT NULL,
		computed_at TIMESTAMP NOT NULL,
		PRIMARY KEY (tenant_id, entity_type, entity_id)
	)`,
	`CREATE TABLE IF NOT EXISTS interaction_dedupe_audit (
		id               VARCHAR NOT NULL PRIMARY KEY,
		tenant_id        VARCHAR NOT NULL,
		user_id          VARCHAR NOT NULL,
		entity_id        VARCHAR NOT NULL,
		interaction_type VARCHAR NOT NULL,
		dedupe_bucket    BIGINT NOT NULL,
		discarded_at     TIMESTAMP NOT NULL DEFAULT current_timestamp
	)`,
}

// createSchema applies every CREATE TABLE/INDEX statement, idempotently.
func (s *Store) createSchema(ctx context.Context) error {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()
	for _, stmt := range schemaStatements {
		if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
			return apierr.Wrap(apierr.KindStorageError, "could not initialize vector store schema", err)
		}
	}
	return nil
}
