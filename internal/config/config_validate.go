// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package config

import (
	"fmt"
)

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateRedis(); err != nil {
		return err
	}
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateTrending(); err != nil {
		return err
	}
	if err := c.validateUpdater(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("database.threads must be >= 0 (0 means runtime.NumCPU())")
	}
	if c.Database.SmallTenant < 1 {
		return fmt.Errorf("database.small_tenant must be >= 1")
	}
	return nil
}

func (c *Config) validateRedis() error {
	if !c.Redis.Enabled {
		return nil
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when redis.enabled=true")
	}
	if c.Redis.TTL <= 0 {
		return fmt.Errorf("redis.ttl must be positive")
	}
	return nil
}

func (c *Config) validateEngine() error {
	if c.Engine.MinInteractionsForPersonalization < 0 {
		return fmt.Errorf("engine.min_interactions_for_personalization must be >= 0")
	}
	if c.Engine.HybridCollaborativeWeight < 0 || c.Engine.HybridContentBasedWeight < 0 {
		return fmt.Errorf("engine hybrid weights must be non-negative")
	}
	if c.Engine.HybridDiversityCap <= 0 || c.Engine.HybridDiversityCap > 1 {
		return fmt.Errorf("engine.hybrid_diversity_cap must be in (0, 1]")
	}
	if c.Engine.DefaultCount <= 0 {
		return fmt.Errorf("engine.default_count must be positive")
	}
	if c.Engine.MaxCount < c.Engine.DefaultCount {
		return fmt.Errorf("engine.max_count must be >= engine.default_count")
	}
	return nil
}

func (c *Config) validateTrending() error {
	if c.Trending.Window <= 0 {
		return fmt.Errorf("trending.window must be positive")
	}
	if c.Trending.MaxEntries <= 0 {
		return fmt.Errorf("trending.max_entries must be positive")
	}
	return nil
}

func (c *Config) validateUpdater() error {
	if c.Updater.IncrementalRefreshInterval <= 0 {
		return fmt.Errorf("updater.incremental_refresh_interval must be positive")
	}
	if c.Updater.FullRebuildInterval <= 0 {
		return fmt.Errorf("updater.full_rebuild_interval must be positive")
	}
	if c.Updater.TrendingRecomputeInterval <= 0 {
		return fmt.Errorf("updater.trending_recompute_interval must be positive")
	}
	if c.Updater.ReadinessFailureThreshold < 1 {
		return fmt.Errorf("updater.readiness_failure_threshold must be >= 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be one of json, console (got %q)", c.Logging.Format)
	}
	return nil
}
