// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package vectorstore is the recommendation core's system of record (§4.3):
// CRUD for entities, interactions, and user profiles, plus an approximate
// nearest-neighbor index over their feature/preference vectors. It is
// backed by DuckDB (github.com/duckdb/duckdb-go/v2), generalized from the
// retrieved stack's analytics-oriented internal/database package into a
// row store for this domain — connection setup, retry-with-backoff, and the
// ensureContext timeout guard are adapted directly from it.
package vectorstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/corvidrec/corvid/internal/apierr"
	"github.com/corvidrec/corvid/internal/cache"
	"github.com/corvidrec/corvid/internal/logging"
)

// dedupeCacheCapacity bounds the in-process fast-path duplicate check;
// sized for a single small-to-mid tenant's 60s interaction burst rather
// than the whole install's history.
const dedupeCacheCapacity = 50000

// Config controls the embedded DuckDB connection.
type Config struct {
	Path        string
	MaxMemory   string
	Threads     int
	SmallTenant int // cardinality below which similarity search uses the exact linear fallback instead of HNSW
}

// DefaultConfig returns sane local-development defaults.
func DefaultConfig() Config {
	return Config{
		Path:        "recommend.duckdb",
		MaxMemory:   "2GB",
		Threads:     0,
		SmallTenant: 1000,
	}
}

// Store is the Vector Store: a DuckDB connection plus an in-memory HNSW
// index per tenant, kept consistent with the row tables on every insert
// and update.
type Store struct {
	conn *sql.DB
	cfg  Config

	entityIdxMu sync.Mutex
	entityIdx   map[string]*hnswIndex // tenant_id -> entity index

	userIdxMu sync.Mutex
	userIdx   map[string]*hnswIndex // tenant_id -> user-profile index

	dedupeCache *cache.LRUCache // fast-path check ahead of the DB-level dedupe constraint
}

// Open connects to the embedded DuckDB database at cfg.Path, creating the
// schema if it does not already exist, and warms the HNSW indexes from the
// rows already on disk.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Path == "" {
		cfg = DefaultConfig()
	}
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, apierr.Wrap(apierr.KindStorageError, "could not create database directory", err)
		}
	}

	maxMemory := cfg.MaxMemory
	if maxMemory == "" {
		maxMemory = "2GB"
	}
	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, threads, maxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStorageError, "could not open vector store", err)
	}
	conn.SetMaxOpenConns(threads)

	s := &Store{
		conn:        conn,
		cfg:         cfg,
		entityIdx:   make(map[string]*hnswIndex),
		userIdx:     make(map[string]*hnswIndex),
		dedupeCache: cache.NewLRUCache(dedupeCacheCapacity, 60*time.Second),
	}

	if err := s.createSchema(ctx); err != nil {
		closeQuietly(conn)
		return nil, err
	}
	if err := s.warmIndexes(ctx); err != nil {
		closeQuietly(conn)
		return nil, err
	}
	return s, nil
}

// Close flushes and closes the underlying connection.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := s.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		logging.Warn().Err(err).Msg("vectorstore: checkpoint before close failed")
	}
	return s.conn.Close()
}

// Ping checks the connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// ensureContext guarantees every query has a deadline, the retrieved
// stack's database_utils.go pattern, generalized to this store.
func (s *Store) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), 30*time.Second)
	}
	if _, ok := ctx.Deadline(); !ok {
		return context.WithTimeout(ctx, 30*time.Second)
	}
	return ctx, func() {}
}

// retryConfig is the backoff policy for transient write conflicts, per
// §4.3's implementation notes: base 50ms, factor 2, max 3 attempts (the
// first try plus MaxRetries retries).
type retryConfig struct {
	BaseDelay   time.Duration
	BackoffMult float64
	MaxRetries  int
}

var defaultRetry = retryConfig{BaseDelay: 50 * time.Millisecond, BackoffMult: 2, MaxRetries: 2}

// withRetry runs fn, retrying transient DuckDB write-conflict errors with
// exponential backoff, adapted from the retrieved stack's execWithRetry.
func withRetry(ctx context.Context, cfg retryConfig, fn func() error) error {
	delay := cfg.BaseDelay
	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return apierr.Wrap(apierr.KindTimeout, "vector store operation canceled", ctx.Err())
			}
			delay = time.Duration(float64(delay) * cfg.BackoffMult)
		}
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isRetryable(err) {
			return err
		}
	}
	return apierr.Wrap(apierr.KindStorageError, "vector store write failed after retries", lastErr)
}

func isRetryable(err error) bool {
	msg := err.Error()
	for _, s := range []string{"conflict", "locked", "busy", "timeout"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func closeQuietly(conn *sql.DB) {
	_ = conn.Close()
}
