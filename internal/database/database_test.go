// Olist Analytics - E-commerce Analytics Dashboard
// Copyright 2026 BDepanfilis
// SPDX-License-Identifier: MIT
// https://github.com/BDepanfilis/olist-analytics-public

package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/BDepanfilis/olist-analytics-public/internal/config"
)

// newTestDB opens a throwaway DuckDB file seeded with small mart fixtures.
// mart_customer_cohorts and mart_cohorts are intentionally absent so the
// cohort-size fallback chain gets exercised, and mart_retention_monthly uses
// the retention_rate column convention.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Path:     filepath.Join(t.TempDir(), "test.duckdb"),
		Schema:   "analytics_marts",
		QueryTTL: 200 * time.Millisecond,
	}

	db, err := New(cfg)
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("closing test database: %v", err)
		}
	})

	stmts := []string{
		`CREATE SCHEMA analytics_marts`,

		`CREATE TABLE analytics_marts.mart_sales_daily (
			order_date DATE, paid_revenue DOUBLE, orders BIGINT)`,
		`INSERT INTO analytics_marts.mart_sales_daily VALUES
			(DATE '2018-08-27', 100.0, 1),
			(DATE '2018-08-28', 200.0, 2),
			(DATE '2018-08-29', 300.0, 3)`,

		`CREATE TABLE analytics_marts.mart_ltv_customer_monthly (
			cohort_month DATE, months_since_cohort INTEGER, customer_id VARCHAR,
			cohort_size INTEGER, avg_cumulative_ltv DOUBLE, cumulative_ltv DOUBLE)`,
		`INSERT INTO analytics_marts.mart_ltv_customer_monthly VALUES
			(DATE '2018-01-01', 0, 'c1', 2, 50.0, 50.0),
			(DATE '2018-01-01', 0, 'c2', 2, 70.0, 70.0),
			(DATE '2018-01-01', 1, 'c1', 2, 90.0, 90.0),
			(DATE '2018-02-01', 0, 'c3', 1, 40.0, 40.0)`,

		`CREATE TABLE analytics_marts.mart_retention_monthly (
			cohort_month DATE, months_since_cohort INTEGER, retention_rate DOUBLE)`,
		`INSERT INTO analytics_marts.mart_retention_monthly VALUES
			(DATE '2018-01-01', 0, 1.0),
			(DATE '2018-01-01', 1, 0.25)`,

		`CREATE TABLE analytics_marts.mart_returns_quality_daily (
			order_date DATE, returns BIGINT, avg_review_score DOUBLE)`,
		`INSERT INTO analytics_marts.mart_returns_quality_daily VALUES
			(DATE '2018-08-28', 4, 4.2)`,

		`CREATE TABLE analytics_marts.mart_returns_quality_monthly (
			order_month DATE, returns BIGINT)`,
		`INSERT INTO analytics_marts.mart_returns_quality_monthly VALUES
			(DATE '2018-08-01', 30)`,

		`CREATE TABLE analytics_marts.mart_marketing_roi (
			day DATE, gross_revenue DOUBLE, spend DOUBLE)`,
		`INSERT INTO analytics_marts.mart_marketing_roi VALUES
			(DATE '2018-08-27', 500.0, 100.0),
			(DATE '2018-08-28', 300.0, 0.0)`,
	}
	for _, stmt := range stmts {
		if _, err := db.conn.Exec(stmt); err != nil {
			t.Fatalf("seeding fixture %q: %v", stmt[:40], err)
		}
	}

	return db
}

func TestSessionTimeZoneIsUTC(t *testing.T) {
	db := newTestDB(t)

	rs, err := db.collect(context.Background(), "SELECT current_setting('TimeZone')")
	if err != nil {
		t.Fatalf("reading session setting: %v", err)
	}
	if rs.Empty() || asString(rs.Rows[0][0]) != "UTC" {
		t.Errorf("expected session TimeZone UTC, got %v", rs.Rows)
	}
}

func TestRunMemoization(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	const q = `SELECT COUNT(*) FROM {schema}.mart_sales_daily WHERE orders >= ?`

	if _, err := db.Run(ctx, "test", q, 1); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := db.Run(ctx, "test", q, 1); err != nil {
		t.Fatalf("second run: %v", err)
	}

	stats := db.CacheStats()
	if stats.Hits != 1 {
		t.Errorf("expected 1 cache hit for identical template+params, got %d", stats.Hits)
	}

	// Different params must not share a cache entry.
	if _, err := db.Run(ctx, "test", q, 2); err != nil {
		t.Fatalf("third run: %v", err)
	}
	if stats = db.CacheStats(); stats.Hits != 1 {
		t.Errorf("expected different params to miss, hits = %d", stats.Hits)
	}
}

func TestRunRefreshesAfterTTL(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	const q = `SELECT COUNT(*) FROM {schema}.mart_sales_daily`

	if _, err := db.Run(ctx, "test", q); err != nil {
		t.Fatal(err)
	}

	time.Sleep(250 * time.Millisecond) // past the 200ms test TTL

	if _, err := db.Run(ctx, "test", q); err != nil {
		t.Fatal(err)
	}

	if stats := db.CacheStats(); stats.Hits != 0 {
		t.Errorf("expected expired entry to re-execute, hits = %d", stats.Hits)
	}
}

func TestRunErrorsNotMemoized(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	const bad = `SELECT nope FROM {schema}.mart_does_not_exist`

	for i := 0; i < 2; i++ {
		if _, err := db.Run(ctx, "test", bad); !errors.Is(err, ErrQuery) {
			t.Fatalf("run %d: expected ErrQuery, got %v", i, err)
		}
	}

	if stats := db.CacheStats(); stats.TotalKeys != 0 {
		t.Errorf("expected no cached entries after failures, got %d keys", stats.TotalKeys)
	}
}

func TestResolveFirstPrefersFirstNonEmpty(t *testing.T) {
	db := newTestDB(t)

	rs := db.ResolveFirst(context.Background(), "test",
		`SELECT x FROM {schema}.missing_table`,                          // errors
		`SELECT order_date FROM {schema}.mart_sales_daily WHERE 1 = 0`,  // empty
		`SELECT order_date FROM {schema}.mart_sales_daily ORDER BY 1`,   // 3 rows
		`SELECT order_month FROM {schema}.mart_returns_quality_monthly`, // must not matter
	)

	if len(rs.Rows) != 3 {
		t.Fatalf("expected the 3-row variant to win, got %d rows", len(rs.Rows))
	}
	if rs.Columns[0] != "order_date" {
		t.Errorf("expected order_date column, got %v", rs.Columns)
	}
}

func TestResolveFirstExhaustedReturnsEmpty(t *testing.T) {
	db := newTestDB(t)

	rs := db.ResolveFirst(context.Background(), "test",
		`SELECT x FROM {schema}.missing_a`,
		`SELECT x FROM {schema}.missing_b`,
	)

	if rs == nil {
		t.Fatal("expected an explicit empty result, got nil")
	}
	if !rs.Empty() {
		t.Errorf("expected empty result, got %d rows", len(rs.Rows))
	}
}

func TestSalesKPIs(t *testing.T) {
	db := newTestDB(t)

	kpis, err := db.SalesKPIs(context.Background())
	if err != nil {
		t.Fatalf("SalesKPIs: %v", err)
	}

	if kpis.PaidRevenue != 600 {
		t.Errorf("paid_revenue = %v, want 600", kpis.PaidRevenue)
	}
	if kpis.Orders != 6 {
		t.Errorf("orders = %v, want 6", kpis.Orders)
	}
	if kpis.AOV != 100 {
		t.Errorf("aov = %v, want 100", kpis.AOV)
	}
}

func TestRevenueOrdersDaily(t *testing.T) {
	db := newTestDB(t)

	points, err := db.RevenueOrdersDaily(context.Background())
	if err != nil {
		t.Fatalf("RevenueOrdersDaily: %v", err)
	}

	if len(points) != 3 {
		t.Fatalf("expected 3 days, got %d", len(points))
	}
	if points[0].OrderDate.After(points[2].OrderDate) {
		t.Error("expected ascending date order")
	}
	if points[2].PaidRevenue != 300 || points[2].Orders != 3 {
		t.Errorf("last day = %+v", points[2])
	}
}

func TestCohortSizesFallsBackToLTVMart(t *testing.T) {
	db := newTestDB(t)

	// Neither mart_customer_cohorts nor mart_cohorts exists in the fixture,
	// so the distinct-customer variant over the LTV mart must win.
	sizes := db.CohortSizes(context.Background())

	if len(sizes) != 2 {
		t.Fatalf("expected 2 cohorts, got %d", len(sizes))
	}
	if sizes[0].CohortSize != 2 {
		t.Errorf("January cohort size = %d, want 2 distinct customers", sizes[0].CohortSize)
	}
	if sizes[1].CohortSize != 1 {
		t.Errorf("February cohort size = %d, want 1", sizes[1].CohortSize)
	}
}

func TestLTVSummaryAndSeries(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	summary, err := db.LTVSummary(ctx)
	if err != nil {
		t.Fatalf("LTVSummary: %v", err)
	}
	if summary.MaxMonth != 1 || summary.Rows != 4 {
		t.Errorf("summary = %+v", summary)
	}

	monthly, err := db.LTVMonthly(ctx)
	if err != nil {
		t.Fatalf("LTVMonthly: %v", err)
	}
	if len(monthly) != 4 {
		t.Errorf("expected 4 LTV points, got %d", len(monthly))
	}

	first, err := db.LTVFirstMonth(ctx)
	if err != nil {
		t.Fatalf("LTVFirstMonth: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 cohorts, got %d", len(first))
	}
	if first[0].LTV != 60 { // (50 + 70) / 2
		t.Errorf("January month-0 LTV = %v, want 60", first[0].LTV)
	}
}

func TestRetentionHeatmapRateVariant(t *testing.T) {
	db := newTestDB(t)

	// The fixture only has retention_rate, so the second variant must win.
	cells := db.RetentionHeatmap(context.Background())

	if len(cells) != 2 {
		t.Fatalf("expected 2 cells, got %d", len(cells))
	}
	if cells[1].Retention != 0.25 {
		t.Errorf("month-1 retention = %v, want 0.25", cells[1].Retention)
	}
}

func TestReturnsSeries(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	daily, err := db.ReturnsDaily(ctx)
	if err != nil {
		t.Fatalf("ReturnsDaily: %v", err)
	}
	if len(daily) != 1 || daily[0].Returns != 4 || daily[0].AvgReviewScore != 4.2 {
		t.Errorf("daily = %+v", daily)
	}

	monthly, err := db.ReturnsMonthly(ctx)
	if err != nil {
		t.Fatalf("ReturnsMonthly: %v", err)
	}
	if len(monthly) != 1 || monthly[0].Returns != 30 {
		t.Errorf("monthly = %+v", monthly)
	}
}

func TestMarketingROASSkipsZeroSpend(t *testing.T) {
	db := newTestDB(t)

	points, err := db.MarketingROAS(context.Background())
	if err != nil {
		t.Fatalf("MarketingROAS: %v", err)
	}

	if len(points) != 1 {
		t.Fatalf("expected only the positive-spend day, got %d points", len(points))
	}
	if points[0].ROAS != 5 { // 500 / 100
		t.Errorf("roas = %v, want 5", points[0].ROAS)
	}
}

func TestMarketingSeries(t *testing.T) {
	db := newTestDB(t)

	points, err := db.MarketingSeries(context.Background())
	if err != nil {
		t.Fatalf("MarketingSeries: %v", err)
	}

	// Two days, two metrics each.
	if len(points) != 4 {
		t.Fatalf("expected 4 samples, got %d", len(points))
	}
	if points[0].Metric != "gross_revenue" {
		t.Errorf("expected metric ordering within day, got %q", points[0].Metric)
	}
}

func TestHasTable(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	ok, err := db.HasTable(ctx, "mart_sales_daily")
	if err != nil {
		t.Fatalf("HasTable: %v", err)
	}
	if !ok {
		t.Error("expected mart_sales_daily to exist")
	}

	ok, err = db.HasTable(ctx, "mart_customer_cohorts")
	if err != nil {
		t.Fatalf("HasTable: %v", err)
	}
	if ok {
		t.Error("expected mart_customer_cohorts to be absent")
	}
}

func TestMartAvailability(t *testing.T) {
	db := newTestDB(t)

	availability := db.MartAvailability(context.Background())

	if !availability["mart_sales_daily"] {
		t.Error("expected mart_sales_daily available")
	}
	if availability["mart_cohorts"] {
		t.Error("expected mart_cohorts unavailable")
	}
}
