// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/corvid/config.yaml",
	"/etc/corvid/config.yml",
}

// ConfigPathEnvVar overrides the config file search with an explicit path.
const ConfigPathEnvVar = "CONFIG_PATH"

// LoadWithKoanf assembles a Config from three layers, in ascending
// priority: struct defaults, an optional YAML config file, then
// environment variables.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first config file found, checking
// ConfigPathEnvVar before DefaultConfigPaths.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envMappings maps legacy-style uppercase environment variable names to
// their koanf dotted path.
var envMappings = map[string]string{
	"http_host": "server.host",
	"http_port": "server.port",

	"duckdb_path":         "database.path",
	"duckdb_max_memory":   "database.max_memory",
	"duckdb_threads":      "database.threads",
	"duckdb_small_tenant": "database.small_tenant",

	"redis_enabled":  "redis.enabled",
	"redis_addr":     "redis.addr",
	"redis_password": "redis.password",
	"redis_db":       "redis.db",
	"redis_ttl":      "redis.ttl",

	"cache_recommendation_ttl":   "cache.recommendation_ttl",
	"cache_similar_entities_ttl": "cache.similar_entities_ttl",
	"cache_trending_ttl":         "cache.trending_ttl",
	"cache_profile_ttl":          "cache.profile_ttl",
	"cache_entity_features_ttl":  "cache.entity_features_ttl",

	"features_dimension": "features.dimension",

	"engine_min_interactions_for_personalization": "engine.min_interactions_for_personalization",
	"engine_hybrid_collaborative_weight":          "engine.hybrid_collaborative_weight",
	"engine_hybrid_content_based_weight":          "engine.hybrid_content_based_weight",
	"engine_hybrid_diversity_cap":                 "engine.hybrid_diversity_cap",
	"engine_default_count":                        "engine.default_count",
	"engine_max_count":                            "engine.max_count",

	"trending_window":      "trending.window",
	"trending_max_entries": "trending.max_entries",

	"updater_incremental_refresh_interval": "updater.incremental_refresh_interval",
	"updater_full_rebuild_interval":        "updater.full_rebuild_interval",
	"updater_trending_recompute_interval":  "updater.trending_recompute_interval",
	"updater_readiness_failure_threshold":  "updater.readiness_failure_threshold",

	"log_level":  "logging.level",
	"log_format": "logging.format",

	"metrics_enabled": "metrics.enabled",
	"metrics_addr":    "metrics.addr",
}

// envTransformFunc transforms uppercase-with-underscore environment
// variable names (e.g. DUCKDB_PATH) into koanf dotted config paths
// (database.path). Unmapped names are skipped so unrelated environment
// variables don't pollute the config tree.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)
	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}
