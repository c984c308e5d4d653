// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package interaction implements the Interaction Service (§4.9): resolve
// an interaction's weight via the Interaction-Type Registry (§4.8),
// submit it to the Vector Store, and schedule an asynchronous
// preference-vector recompute that is guaranteed to run within
// RecomputeDelay of acknowledgement, coalescing recomputes for the same
// user that arrive within that window.
package interaction

import (
	"context"
	"sync"
	"time"

	"github.com/corvidrec/corvid/internal/apierr"
	"github.com/corvidrec/corvid/internal/apitypes"
	"github.com/corvidrec/corvid/internal/domain"
	"github.com/corvidrec/corvid/internal/features"
	"github.com/corvidrec/corvid/internal/registry"
)

// RecomputeDelay bounds how long after acknowledgement the scheduled
// preference-vector recompute is guaranteed to run (§4.9).
const RecomputeDelay = 5 * time.Second

// BulkImportMaxRecords is the per-call cap on bulk import (§4.9).
const BulkImportMaxRecords = 100_000

// BulkImportBatchSize is the batch size bulk import processes in.
const BulkImportBatchSize = 1_000

// Store is the subset of the Vector Store this service depends on.
type Store interface {
	InsertInteraction(ctx context.Context, i *domain.Interaction) error
	GetTenantParams(ctx context.Context, tenantID string) (*features.TenantParams, error)
}

// Recomputer is the subset of the Preference Vector Recompute package
// this service schedules against.
type Recomputer interface {
	Recompute(ctx context.Context, tenantID, userID string) (*domain.UserProfile, error)
}

// Service is the Interaction Service.
type Service struct {
	store      Store
	recomputer Recomputer

	mu      sync.Mutex
	pending map[string]*time.Timer
	delay   time.Duration
}

// New constructs a Service over store and recomputer.
func New(store Store, recomputer Recomputer) *Service {
	return &Service{
		store:      store,
		recomputer: recomputer,
		pending:    make(map[string]*time.Timer),
		delay:      RecomputeDelay,
	}
}

// Record resolves i's weight via the tenant's Interaction-Type Registry,
// submits it to the Vector Store (dedup enforced there), and schedules
// an asynchronous preference-vector recompute for the user.
func (s *Service) Record(ctx context.Context, i domain.Interaction) error {
	weight, err := s.resolveWeight(ctx, i.TenantID, i.Type)
	if err != nil {
		return err
	}
	i.Weight = weight

	if err := s.store.InsertInteraction(ctx, &i); err != nil {
		return err
	}

	s.scheduleRecompute(i.TenantID, i.UserID)
	return nil
}

func (s *Service) resolveWeight(ctx context.Context, tenantID string, t domain.InteractionType) (float64, error) {
	params, err := s.store.GetTenantParams(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	var overrides map[string]float64
	if params != nil {
		overrides = params.InteractionWeights
	}
	return registry.New(overrides).Weight(t), nil
}

// scheduleRecompute ensures a recompute for (tenantID, userID) fires
// within s.delay. A recompute already scheduled for this user absorbs
// this call — when it eventually runs it re-reads the Vector Store, so
// it picks up every interaction recorded before it fires.
func (s *Service) scheduleRecompute(tenantID, userID string) {
	key := tenantID + "\x1f" + userID

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, scheduled := s.pending[key]; scheduled {
		return
	}

	s.pending[key] = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		delete(s.pending, key)
		s.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), s.delay)
		defer cancel()
		_, _ = s.recomputer.Recompute(ctx, tenantID, userID)
	})
}

// BulkImport accepts up to BulkImportMaxRecords interactions, processes
// them in batches of BulkImportBatchSize, and never aborts the batch on
// a per-row failure.
func (s *Service) BulkImport(ctx context.Context, tenantID string, records []domain.Interaction) (*apitypes.BulkImportResult, error) {
	if len(records) > BulkImportMaxRecords {
		return nil, apierr.New(apierr.KindInvalidRequest, "bulk import exceeds maximum of 100,000 records per call")
	}

	result := &apitypes.BulkImportResult{Total: len(records)}
	usersToRecompute := make(map[string]bool)

	for start := 0; start < len(records); start += BulkImportBatchSize {
		end := start + BulkImportBatchSize
		if end > len(records) {
			end = len(records)
		}
		for _, rec := range records[start:end] {
			rec.TenantID = tenantID
			weight, err := s.resolveWeight(ctx, tenantID, rec.Type)
			if err != nil {
				result.FailedItems = append(result.FailedItems, apitypes.BulkFailedItem{UserID: rec.UserID, EntityID: rec.EntityID, Error: err.Error()})
				continue
			}
			rec.Weight = weight

			if err := s.store.InsertInteraction(ctx, &rec); err != nil {
				result.FailedItems = append(result.FailedItems, apitypes.BulkFailedItem{UserID: rec.UserID, EntityID: rec.EntityID, Error: err.Error()})
				continue
			}
			result.Succeeded++
			usersToRecompute[tenantID+"\x1f"+rec.UserID] = true
		}
	}

	for key := range usersToRecompute {
		tenant, user := splitKey(key)
		s.scheduleRecompute(tenant, user)
	}

	switch {
	case result.Succeeded == result.Total:
		result.Status = "completed"
	case result.Succeeded == 0:
		result.Status = "failed"
	default:
		result.Status = "partially_completed"
	}
	return result, nil
}

func splitKey(key string) (tenant, user string) {
	for i := 0; i < len(key); i++ {
		if key[i] == '\x1f' {
			return key[:i], key[i+1:]
		}
	}
	return key, ""
}
