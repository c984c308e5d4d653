// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

/*
Package supervisor provides process supervision for the recommendation core
using suture v4.

# Overview

A root supervisor holds one child, "background", which runs the Model
Updater's three loops (§4.11) — incremental profile refresh, full profile
rebuild, trending recompute:

	RootSupervisor ("corvid")
	└── BackgroundSupervisor ("background-layer")
	    ├── IncrementalRefreshService
	    ├── FullRebuildService
	    └── TrendingRecomputeService

Isolating them in their own supervisor means a loop that panics repeatedly
backs off independently, without affecting the others or taking the
process down.

# Usage Example

	logger := slog.Default()
	config := supervisor.DefaultTreeConfig()

	tree, err := supervisor.NewSupervisorTree(logger, config)
	if err != nil {
	    log.Fatal(err)
	}

	tree.AddBackgroundService(updater.NewIncrementalRefreshService(...))
	tree.AddBackgroundService(updater.NewFullRebuildService(...))
	tree.AddBackgroundService(updater.NewTrendingRecomputeService(...))

	ctx := context.Background()
	if err := tree.Serve(ctx); err != nil {
	    log.Printf("supervisor stopped: %v", err)
	}

# Failure Handling

The supervisor uses a failure counter with exponential decay:

 1. Each service failure increments the counter
 2. The counter decays exponentially over FailureDecay seconds
 3. When the counter exceeds FailureThreshold, the supervisor enters backoff
 4. During backoff, restarts are delayed by FailureBackoff

# Service Interface

Every service implements suture.Service:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Returning nil means the service stopped cleanly and will not be
restarted; returning an error means it crashed and will be restarted;
context cancellation means shutdown was requested and Serve should
return promptly.
*/
package supervisor
