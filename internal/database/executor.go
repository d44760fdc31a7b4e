// Olist Analytics - E-commerce Analytics Dashboard
// Copyright 2026 BDepanfilis
// SPDX-License-Identifier: MIT
// https://github.com/BDepanfilis/olist-analytics-public

package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BDepanfilis/olist-analytics-public/internal/cache"
	"github.com/BDepanfilis/olist-analytics-public/internal/logging"
	"github.com/BDepanfilis/olist-analytics-public/internal/metrics"
)

// ErrQuery wraps any single-query execution failure. Standalone callers
// surface it as an inline empty state for one chart; the fallback resolver
// treats it as "try the next template".
var ErrQuery = errors.New("query failed")

// schemaPlaceholder is replaced with the configured mart schema before
// execution. Plain string substitution: the schema name is trusted operator
// configuration, not user input.
const schemaPlaceholder = "{schema}"

// ResultSet is a generic tabular query result: ordered columns, ordered
// rows. Cached instances are shared between callers and must be treated as
// read-only.
type ResultSet struct {
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

// Empty reports whether the result holds no rows.
func (rs *ResultSet) Empty() bool {
	return rs == nil || len(rs.Rows) == 0
}

// runKey is the memoization key material: the substituted query text plus
// the ordered parameters.
type runKey struct {
	SQL    string        `json:"sql"`
	Params []interface{} `json:"params"`
}

// Run executes a query template against the cached connection. The
// {schema} placeholder is substituted first; results are memoized under the
// (substituted SQL, params) key for the configured TTL. Execution errors
// propagate wrapped in ErrQuery and are never memoized.
//
// question is a short stable label ("sales_kpis", "retention") used for
// metrics only; it does not participate in the cache key.
func (db *DB) Run(ctx context.Context, question, template string, params ...interface{}) (*ResultSet, error) {
	sqlText := strings.ReplaceAll(template, schemaPlaceholder, db.schema)
	key := cache.GenerateKey("run", runKey{SQL: sqlText, Params: params})

	if cached, found := db.cache.Get(key); found {
		metrics.ResultCacheHits.Inc()
		if rs, ok := cached.(*ResultSet); ok {
			return rs, nil
		}
	}
	metrics.ResultCacheMisses.Inc()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rs, err := db.collect(ctx, sqlText, params...)
	metrics.QueryDuration.WithLabelValues(question).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.QueryErrors.WithLabelValues(question).Inc()
		return nil, fmt.Errorf("%w: %s: %v", ErrQuery, question, err)
	}

	db.cache.Set(key, rs)
	return rs, nil
}

// collect runs the substituted SQL and gathers all rows.
func (db *DB) collect(ctx context.Context, sqlText string, params ...interface{}) (*ResultSet, error) {
	rows, err := db.conn.QueryContext(ctx, sqlText, params...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			logging.Warn().Err(cerr).Msg("Failed to close result rows")
		}
	}()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	rs := &ResultSet{Columns: cols}
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		rs.Rows = append(rs.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rs, nil
}

// ResolveFirst runs the templates in preference order and returns the first
// result that is both successful and non-empty. Execution errors and empty
// results both mean "try the next variant"; when every variant is exhausted
// it returns an explicit empty ResultSet, never an error, so callers render
// a no-data state instead of failing the dashboard.
//
// The ordering tolerates mart schema drift: deployments built from different
// mart versions name columns and tables differently, and the first variant
// that actually holds rows wins.
func (db *DB) ResolveFirst(ctx context.Context, question string, templates ...string) *ResultSet {
	for i, template := range templates {
		rs, err := db.Run(ctx, question, template)
		if err != nil {
			logging.Debug().
				Err(err).
				Str("question", question).
				Int("variant", i).
				Msg("Query variant failed, trying next")
			continue
		}
		if rs.Empty() {
			continue
		}
		metrics.FallbackDepth.Observe(float64(i))
		return rs
	}

	metrics.FallbackExhausted.Inc()
	logging.Debug().Str("question", question).Int("variants", len(templates)).
		Msg("All query variants empty or failing")
	return &ResultSet{}
}
