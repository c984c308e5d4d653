// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

/*
Package metrics provides Prometheus metrics collection and export for
the recommendation engine.

# Available Metrics

Recommendation Service:
  - recommendation_requests_total{algorithm,cold_start,outcome}
  - recommendation_request_duration_seconds{algorithm}

Interaction Service:
  - interactions_recorded_total{interaction_type,outcome}
  - interaction_bulk_import_size

Cache Layer (§4.2), labeled by key family (user_recommendations,
similar_entities, trending, profile, entity_features):
  - recommendation_cache_hits_total{key_family}
  - recommendation_cache_misses_total{key_family}

Vector Store (§4.3):
  - vectorstore_query_duration_seconds{operation}
  - vectorstore_query_errors_total{operation}
  - vectorstore_retries_total{operation}

Model Updater (§4.11):
  - updater_tick_duration_seconds{loop}
  - updater_ticks_total{loop,outcome}
  - updater_tenant_ready{tenant_id}

# Metrics Endpoint

Metrics are exposed at /metrics in Prometheus text format by the
promhttp handler wired in cmd/server.
*/
package metrics
