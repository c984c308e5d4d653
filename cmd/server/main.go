// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package main is the entry point for the recommendation engine core.
//
// # Application Architecture
//
// main initializes components in the following order:
//
//  1. Configuration: load settings from defaults, config file, and
//     environment variables (Koanf v2)
//  2. Logging: configure the global zerolog logger
//  3. Vector Store: open the embedded DuckDB-backed store (§4.3)
//  4. Engines: wire the Collaborative, Content-Based, Hybrid, and
//     Trending producers (§4.4-§4.6, §4.11)
//  5. Cache Layer: construct the in-process or Redis-backed cache (§4.2)
//  6. Recommendation Service: the single read-path entry point (§4.7)
//  7. Interaction Service: the single write-path entry point (§4.9)
//  8. Model Updater: the three background loops, under a suture
//     supervisor tree (§4.11)
//  9. Readiness/metrics: a minimal net/http server exposing /health,
//     /ready, and /metrics
//
// The HTTP handlers that route external requests into the
// RecommendationService and InteractionService are the embedding
// service's responsibility; this core exposes Go APIs, not routes, per
// §6.
package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/corvidrec/corvid/internal/apitypes"
	"github.com/corvidrec/corvid/internal/cache"
	"github.com/corvidrec/corvid/internal/config"
	"github.com/corvidrec/corvid/internal/engine/collaborative"
	"github.com/corvidrec/corvid/internal/engine/contentbased"
	"github.com/corvidrec/corvid/internal/engine/hybrid"
	"github.com/corvidrec/corvid/internal/interaction"
	"github.com/corvidrec/corvid/internal/logging"
	"github.com/corvidrec/corvid/internal/profile"
	"github.com/corvidrec/corvid/internal/recoservice"
	"github.com/corvidrec/corvid/internal/supervisor"
	"github.com/corvidrec/corvid/internal/trending"
	"github.com/corvidrec/corvid/internal/updater"
	"github.com/corvidrec/corvid/internal/vectorstore"
)

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("could not load configuration")
	}
	if err := cfg.Validate(); err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}

	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	log := logging.Logger().With().Str("service", "corvid").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := vectorstore.Open(ctx, vectorstore.Config{
		Path:        cfg.Database.Path,
		MaxMemory:   cfg.Database.MaxMemory,
		Threads:     cfg.Database.Threads,
		SmallTenant: cfg.Database.SmallTenant,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("could not open vector store")
	}
	defer store.Close()

	trendingProducer := trending.New(store, trending.Config{
		Window:     cfg.Trending.Window,
		MaxEntries: cfg.Trending.MaxEntries,
	})

	collabEngine := collaborative.New(store)
	contentEngine := contentbased.New(store)
	hybridEngine := hybrid.New(collabEngine, contentEngine, store, hybrid.Weights{
		Collaborative: cfg.Engine.HybridCollaborativeWeight,
		ContentBased:  cfg.Engine.HybridContentBasedWeight,
	}, cfg.Engine.HybridDiversityCap)

	cacheCfg := cache.CacheConfig{Type: cache.CacheTypeTTL, TTL: cfg.Cache.RecommendationTTL}
	if cfg.Redis.Enabled {
		cacheCfg = cache.CacheConfig{
			Type: cache.CacheTypeRedis,
			TTL:  cfg.Cache.RecommendationTTL,
			Redis: cache.RedisConfig{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
				TTL:      cfg.Redis.TTL,
			},
		}
	}
	recCache := cache.NewTyped[apitypes.RecommendationResponse](cache.NewCacher(cacheCfg))
	recoSvc := recoservice.New(store, store, collabEngine, contentEngine, hybridEngine, trendingProducer, recCache, log)
	_ = recoSvc // held by the embedding service's HTTP layer, out of scope here

	recomputer := profile.New(store)
	interactionSvc := interaction.New(store, recomputer)
	_ = interactionSvc // held by the embedding service's HTTP layer, out of scope here

	slogLogger := logging.NewSlogLoggerWithLevel(cfg.Logging.Level)
	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("could not build supervisor tree")
	}

	tree.AddBackgroundService(updater.NewIncrementalRefreshService(
		store, recomputer, cfg.Updater.IncrementalRefreshInterval, cfg.Updater.ReadinessFailureThreshold, log))
	tree.AddBackgroundService(updater.NewFullRebuildService(
		store, recomputer, cfg.Updater.FullRebuildInterval, cfg.Updater.FullRebuildEnabled, cfg.Updater.ReadinessFailureThreshold, log))
	tree.AddBackgroundService(updater.NewTrendingRecomputeService(
		store, trendingProducer, cfg.Updater.TrendingRecomputeInterval, cfg.Updater.ReadinessFailureThreshold, log))

	errCh := tree.ServeBackground(ctx)

	healthSrv := newHealthServer(cfg.Metrics.Addr, store)
	go func() {
		if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health/metrics server stopped unexpectedly")
		}
	}()

	log.Info().Str("addr", cfg.Metrics.Addr).Msg("corvid recommendation core started")

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("supervisor tree stopped with error")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("health server did not shut down cleanly")
	}
}
