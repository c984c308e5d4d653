// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

/*
Package config provides centralized configuration management for the
recommendation engine.

# Configuration Sources

LoadWithKoanf layers three sources, lowest to highest priority:
  - struct defaults (defaultConfig)
  - an optional YAML config file (config.yaml, or CONFIG_PATH)
  - environment variables (see envMappings in koanf.go)

# Configuration Structure

  - ServerConfig: API listen address
  - DatabaseConfig: DuckDB-backed Vector Store connection and tuning
  - RedisConfig: optional Redis cache backend
  - CacheConfig: per-key-family cache TTLs
  - FeaturesConfig: Feature Extractor vector dimension
  - RegistryConfig: default interaction-type weights
  - EngineConfig: personalization threshold, hybrid fusion weights and
    diversity cap, result count bounds
  - TrendingConfig: trailing window and persisted entry cap
  - UpdaterConfig: Model Updater background loop intervals
  - LoggingConfig: zerolog level and format
  - MetricsConfig: Prometheus exporter address

# Usage

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    log.Fatal().Err(err).Msg("failed to load config")
	}

# Thread Safety

The Config struct is immutable after LoadWithKoanf returns, making it
safe for concurrent access from multiple goroutines without
synchronization.
*/
package config
