// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package config holds the typed, koanf-backed configuration surface for
// the recommendation engine: storage, cache, engine tuning, and the
// Model Updater's background schedule.
package config

import (
	"time"
)

// Config is the root configuration object, assembled by LoadWithKoanf
// from defaults, an optional config file, and environment variables, in
// that priority order.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Redis    RedisConfig    `koanf:"redis"`
	Cache    CacheConfig    `koanf:"cache"`
	Features FeaturesConfig `koanf:"features"`
	Registry RegistryConfig `koanf:"registry"`
	Engine   EngineConfig   `koanf:"engine"`
	Trending TrendingConfig `koanf:"trending"`
	Updater  UpdaterConfig  `koanf:"updater"`
	Logging  LoggingConfig  `koanf:"logging"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

// ServerConfig holds the recommendation API's listen settings.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// DatabaseConfig configures the DuckDB-backed Vector Store (§4.3).
type DatabaseConfig struct {
	Path        string `koanf:"path"`
	MaxMemory   string `koanf:"max_memory"`
	Threads     int    `koanf:"threads"`
	SmallTenant int    `koanf:"small_tenant"`
}

// RedisConfig configures the optional Redis cache backend (§4.2).
type RedisConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	TTL      time.Duration `koanf:"ttl"`
}

// CacheConfig holds the per-key-family TTLs for the Cache Layer (§4.2).
type CacheConfig struct {
	RecommendationTTL  time.Duration `koanf:"recommendation_ttl"`
	SimilarEntitiesTTL time.Duration `koanf:"similar_entities_ttl"`
	TrendingTTL        time.Duration `koanf:"trending_ttl"`
	ProfileTTL         time.Duration `koanf:"profile_ttl"`
	EntityFeaturesTTL  time.Duration `koanf:"entity_features_ttl"`
}

// FeaturesConfig tunes the Feature Extractor (§4.1).
type FeaturesConfig struct {
	Dimension int `koanf:"dimension"`
}

// RegistryConfig tunes the Interaction-Type Registry (§4.8): global
// default weight overrides, layered under any per-tenant overrides
// supplied at request time.
type RegistryConfig struct {
	DefaultWeights map[string]float64 `koanf:"default_weights"`
}

// EngineConfig tunes the recommendation engines (§4.4-§4.6).
type EngineConfig struct {
	MinInteractionsForPersonalization int     `koanf:"min_interactions_for_personalization"`
	HybridCollaborativeWeight         float64 `koanf:"hybrid_collaborative_weight"`
	HybridContentBasedWeight          float64 `koanf:"hybrid_content_based_weight"`
	HybridDiversityCap                float64 `koanf:"hybrid_diversity_cap"`
	DefaultCount                      int     `koanf:"default_count"`
	MaxCount                          int     `koanf:"max_count"`
}

// TrendingConfig tunes the Trending producer (§4.11, §3).
type TrendingConfig struct {
	Window     time.Duration `koanf:"window"`
	MaxEntries int           `koanf:"max_entries"`
}

// UpdaterConfig tunes the Model Updater's background loop intervals
// (§4.11).
type UpdaterConfig struct {
	IncrementalRefreshInterval time.Duration `koanf:"incremental_refresh_interval"`
	FullRebuildInterval        time.Duration `koanf:"full_rebuild_interval"`
	FullRebuildEnabled         bool          `koanf:"full_rebuild_enabled"`
	TrendingRecomputeInterval  time.Duration `koanf:"trending_recompute_interval"`
	ReadinessFailureThreshold  int           `koanf:"readiness_failure_threshold"`
}

// LoggingConfig configures the zerolog base logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// MetricsConfig configures the Prometheus metrics exporter.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// defaultConfig returns a Config populated with the §1A/§4 defaults
// named throughout SPEC_FULL.md. These are applied first, then
// overridden by config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Path:        "/data/corvid.duckdb",
			MaxMemory:   "2GB",
			Threads:     0,
			SmallTenant: 1000,
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "127.0.0.1:6379",
			DB:      0,
			TTL:     15 * time.Minute,
		},
		Cache: CacheConfig{
			RecommendationTTL:  10 * time.Minute,
			SimilarEntitiesTTL: 10 * time.Minute,
			TrendingTTL:        2 * time.Hour,
			ProfileTTL:         15 * time.Minute,
			EntityFeaturesTTL:  2 * time.Hour,
		},
		Features: FeaturesConfig{
			Dimension: 512,
		},
		Registry: RegistryConfig{
			DefaultWeights: map[string]float64{
				"view":        1.0,
				"click":       1.5,
				"add_to_cart": 3.0,
				"like":        2.0,
				"purchase":    5.0,
			},
		},
		Engine: EngineConfig{
			MinInteractionsForPersonalization: 5,
			HybridCollaborativeWeight:         0.5,
			HybridContentBasedWeight:          0.5,
			HybridDiversityCap:                0.92,
			DefaultCount:                      20,
			MaxCount:                          100,
		},
		Trending: TrendingConfig{
			Window:     7 * 24 * time.Hour,
			MaxEntries: 200,
		},
		Updater: UpdaterConfig{
			IncrementalRefreshInterval: 10 * time.Second,
			FullRebuildInterval:        24 * time.Hour,
			FullRebuildEnabled:         true,
			TrendingRecomputeInterval:  1 * time.Hour,
			ReadinessFailureThreshold:  3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    "0.0.0.0:9090",
		},
	}
}
