// Olist Analytics - E-commerce Analytics Dashboard
// Copyright 2026 BDepanfilis
// SPDX-License-Identifier: MIT
// https://github.com/BDepanfilis/olist-analytics-public

// Package database provides the cached DuckDB connection, the
// schema-tolerant query executor, and the typed mart analytics used by the
// dashboard API.
//
// One DB is constructed at process start and injected into every component
// that issues queries; it owns the single long-lived connection handle and
// the in-memory result cache. The handle is shared by all requests and never
// reopened; DuckDB serializes access on a single handle, so this layer adds
// no locking of its own.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/BDepanfilis/olist-analytics-public/internal/cache"
	"github.com/BDepanfilis/olist-analytics-public/internal/config"
	"github.com/BDepanfilis/olist-analytics-public/internal/logging"
)

// defaultQueryTimeout bounds queries whose caller supplied no deadline.
const defaultQueryTimeout = 30 * time.Second

// DB wraps the DuckDB connection and provides mart query methods.
type DB struct {
	conn   *sql.DB
	schema string
	cache  *cache.Cache
	ttl    time.Duration
}

// New opens the analytical database and fixes the session time zone to UTC.
// The caller must have run acquisition first; New assumes the file exists.
//
// The returned DB is the process-wide handle: construct it once in main and
// pass it down. Close is only called on shutdown.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}
	maxMemory := cfg.MaxMemory
	if maxMemory == "" {
		maxMemory = "2GB"
	}
	ttl := cfg.QueryTTL
	if ttl <= 0 {
		ttl = 300 * time.Second
	}

	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s",
		cfg.Path, numThreads, maxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One shared handle for the process lifetime.
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Fixed session setting: all date arithmetic in the marts assumes UTC.
	if _, err := conn.ExecContext(pingCtx, "SET TimeZone = 'UTC'"); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to set session time zone: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Str("schema", cfg.Schema).
		Int("threads", numThreads).
		Msg("Database opened")

	return &DB{
		conn:   conn,
		schema: cfg.Schema,
		cache:  cache.New(ttl),
		ttl:    ttl,
	}, nil
}

// Schema returns the configured mart schema name.
func (db *DB) Schema() string {
	return db.schema
}

// Close releases the connection handle. Called once on shutdown.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping verifies the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// CacheStats exposes result-cache counters for the health endpoint.
func (db *DB) CacheStats() cache.Stats {
	return db.cache.GetStats()
}

// ensureContext attaches the default query timeout when the caller supplied
// no deadline.
func (db *DB) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

func closeQuietly(c *sql.DB) {
	if err := c.Close(); err != nil {
		logging.Warn().Err(err).Msg("Error closing database connection")
	}
}
