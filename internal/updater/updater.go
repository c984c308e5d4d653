// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package updater implements the Model Updater (§4.11): three scheduled
// background loops — incremental profile refresh, full profile rebuild,
// and trending recompute — each a suture.Service, grounded on the
// retrieved stack's internal/supervisor/services/recommend_service.go
// ticker-loop pattern. A tick that fails does not poison the next one;
// three consecutive tick failures for a tenant flip that tenant's
// readiness to unavailable.
package updater

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/corvidrec/corvid/internal/domain"
	"github.com/corvidrec/corvid/internal/metrics"
)

// Store is the subset of the Vector Store the Model Updater depends on.
type Store interface {
	ListTenants(ctx context.Context) ([]string, error)
	ListUsers(ctx context.Context, tenantID string) ([]string, error)
	ListUsersSince(ctx context.Context, tenantID string, since time.Time) ([]string, error)
	ListEntityTypes(ctx context.Context, tenantID string) ([]string, error)
}

// Recomputer recomputes and persists one user's preference vector.
type Recomputer interface {
	Recompute(ctx context.Context, tenantID, userID string) (*domain.UserProfile, error)
}

// TrendingProducer recomputes and persists one (tenant, entity type)'s
// trending list.
type TrendingProducer interface {
	Recompute(ctx context.Context, tenantID, entityType string, now time.Time) ([]domain.TrendingEntry, error)
}

// readiness tracks consecutive tick failures per tenant, flipping to
// unavailable after Threshold in a row (§4.11 Failure semantics).
type readiness struct {
	mu        sync.Mutex
	failures  map[string]int
	threshold int
}

func newReadiness(threshold int) *readiness {
	if threshold <= 0 {
		threshold = 3
	}
	return &readiness{failures: make(map[string]int), threshold: threshold}
}

// record updates the consecutive-failure count for tenantID and reflects
// the resulting readiness in the metrics gauge.
func (r *readiness) record(tenantID string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err == nil {
		r.failures[tenantID] = 0
		metrics.SetTenantReady(tenantID, true)
		return
	}

	r.failures[tenantID]++
	if r.failures[tenantID] >= r.threshold {
		metrics.SetTenantReady(tenantID, false)
	}
}

// IncrementalRefreshService recomputes preference vectors every tick for
// users with interactions recorded since the previous tick — a backstop
// for §4.9's per-interaction 5-second scheduler, catching anything missed
// across a process restart or a dropped timer.
type IncrementalRefreshService struct {
	store      Store
	recomputer Recomputer
	interval   time.Duration
	logger     zerolog.Logger
	ready      *readiness
	lastTick   time.Time
}

// NewIncrementalRefreshService constructs the incremental-refresh loop.
func NewIncrementalRefreshService(store Store, recomputer Recomputer, interval time.Duration, readinessThreshold int, logger zerolog.Logger) *IncrementalRefreshService {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &IncrementalRefreshService{
		store:      store,
		recomputer: recomputer,
		interval:   interval,
		logger:     logger.With().Str("loop", "incremental_refresh").Logger(),
		ready:      newReadiness(readinessThreshold),
		lastTick:   time.Now(),
	}
}

// Serve implements suture.Service.
func (s *IncrementalRefreshService) Serve(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.interval).Msg("incremental refresh loop starting")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("incremental refresh loop shutting down")
			return ctx.Err()
		case now := <-ticker.C:
			s.tick(ctx, now)
		}
	}
}

func (s *IncrementalRefreshService) tick(ctx context.Context, now time.Time) {
	since := s.lastTick
	s.lastTick = now
	start := time.Now()

	tenants, err := s.store.ListTenants(ctx)
	if err != nil {
		metrics.RecordUpdaterTick("incremental_refresh", time.Since(start), err)
		s.logger.Warn().Err(err).Msg("could not list tenants for incremental refresh")
		return
	}

	var tickErr error
	for _, tenantID := range tenants {
		users, err := s.store.ListUsersSince(ctx, tenantID, since)
		if err != nil {
			tickErr = err
			s.ready.record(tenantID, err)
			s.logger.Warn().Err(err).Str("tenant_id", tenantID).Msg("could not list recently active users")
			continue
		}
		var tenantErr error
		for _, userID := range users {
			if _, err := s.recomputer.Recompute(ctx, tenantID, userID); err != nil {
				tenantErr = err
				s.logger.Warn().Err(err).Str("tenant_id", tenantID).Str("user_id", userID).Msg("incremental recompute failed")
			}
		}
		s.ready.record(tenantID, tenantErr)
		if tenantErr != nil {
			tickErr = tenantErr
		}
	}

	metrics.RecordUpdaterTick("incremental_refresh", time.Since(start), tickErr)
}

// String returns the service name for logging.
func (s *IncrementalRefreshService) String() string { return "incremental-refresh-service" }

// FullRebuildService recomputes every user's preference vector, tenant
// by tenant, once per interval. Skippable entirely via config.
type FullRebuildService struct {
	store      Store
	recomputer Recomputer
	interval   time.Duration
	enabled    bool
	logger     zerolog.Logger
	ready      *readiness
}

// NewFullRebuildService constructs the full-rebuild loop.
func NewFullRebuildService(store Store, recomputer Recomputer, interval time.Duration, enabled bool, readinessThreshold int, logger zerolog.Logger) *FullRebuildService {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &FullRebuildService{
		store:      store,
		recomputer: recomputer,
		interval:   interval,
		enabled:    enabled,
		logger:     logger.With().Str("loop", "full_rebuild").Logger(),
		ready:      newReadiness(readinessThreshold),
	}
}

// Serve implements suture.Service.
func (s *FullRebuildService) Serve(ctx context.Context) error {
	if !s.enabled {
		s.logger.Info().Msg("full rebuild loop disabled by config")
		<-ctx.Done()
		return ctx.Err()
	}

	s.logger.Info().Dur("interval", s.interval).Msg("full rebuild loop starting")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("full rebuild loop shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *FullRebuildService) tick(ctx context.Context) {
	start := time.Now()

	tenants, err := s.store.ListTenants(ctx)
	if err != nil {
		metrics.RecordUpdaterTick("full_rebuild", time.Since(start), err)
		s.logger.Warn().Err(err).Msg("could not list tenants for full rebuild")
		return
	}

	var tickErr error
	for _, tenantID := range tenants {
		users, err := s.store.ListUsers(ctx, tenantID)
		if err != nil {
			tickErr = err
			s.ready.record(tenantID, err)
			s.logger.Warn().Err(err).Str("tenant_id", tenantID).Msg("could not list users for full rebuild")
			continue
		}
		var tenantErr error
		for _, userID := range users {
			if _, err := s.recomputer.Recompute(ctx, tenantID, userID); err != nil {
				tenantErr = err
				s.logger.Warn().Err(err).Str("tenant_id", tenantID).Str("user_id", userID).Msg("full rebuild recompute failed")
			}
		}
		s.ready.record(tenantID, tenantErr)
		if tenantErr != nil {
			tickErr = tenantErr
		}
	}

	metrics.RecordUpdaterTick("full_rebuild", time.Since(start), tickErr)
}

// String returns the service name for logging.
func (s *FullRebuildService) String() string { return "full-rebuild-service" }

// TrendingRecomputeService recomputes and persists the trending list for
// every (tenant, entity type) cell once per interval.
type TrendingRecomputeService struct {
	store    Store
	producer TrendingProducer
	interval time.Duration
	logger   zerolog.Logger
	ready    *readiness
}

// NewTrendingRecomputeService constructs the trending-recompute loop.
func NewTrendingRecomputeService(store Store, producer TrendingProducer, interval time.Duration, readinessThreshold int, logger zerolog.Logger) *TrendingRecomputeService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &TrendingRecomputeService{
		store:    store,
		producer: producer,
		interval: interval,
		logger:   logger.With().Str("loop", "trending_recompute").Logger(),
		ready:    newReadiness(readinessThreshold),
	}
}

// Serve implements suture.Service.
func (s *TrendingRecomputeService) Serve(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.interval).Msg("trending recompute loop starting")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("trending recompute loop shutting down")
			return ctx.Err()
		case now := <-ticker.C:
			s.tick(ctx, now)
		}
	}
}

func (s *TrendingRecomputeService) tick(ctx context.Context, now time.Time) {
	start := time.Now()

	tenants, err := s.store.ListTenants(ctx)
	if err != nil {
		metrics.RecordUpdaterTick("trending_recompute", time.Since(start), err)
		s.logger.Warn().Err(err).Msg("could not list tenants for trending recompute")
		return
	}

	var tickErr error
	for _, tenantID := range tenants {
		entityTypes, err := s.store.ListEntityTypes(ctx, tenantID)
		if err != nil {
			tickErr = err
			s.ready.record(tenantID, err)
			s.logger.Warn().Err(err).Str("tenant_id", tenantID).Msg("could not list entity types for trending recompute")
			continue
		}
		var tenantErr error
		// entity_type="" is the cross-type aggregate cell: cold-start
		// (recoservice.coldStartResponse) and the trending endpoint both
		// default entity_type to "" when the caller doesn't scope the
		// request, so it must stay warm alongside every concrete type.
		for _, entityType := range append([]string{""}, entityTypes...) {
			if _, err := s.producer.Recompute(ctx, tenantID, entityType, now); err != nil {
				tenantErr = err
				s.logger.Warn().Err(err).Str("tenant_id", tenantID).Str("entity_type", entityType).Msg("trending recompute failed")
			}
		}
		s.ready.record(tenantID, tenantErr)
		if tenantErr != nil {
			tickErr = tenantErr
		}
	}

	metrics.RecordUpdaterTick("trending_recompute", time.Since(start), tickErr)
}

// String returns the service name for logging.
func (s *TrendingRecomputeService) String() string { return "trending-recompute-service" }
