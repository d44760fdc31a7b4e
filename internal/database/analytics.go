// Olist Analytics - E-commerce Analytics Dashboard
// Copyright 2026 BDepanfilis
// SPDX-License-Identifier: MIT
// https://github.com/BDepanfilis/olist-analytics-public

package database

import (
	"context"

	"github.com/BDepanfilis/olist-analytics-public/internal/models"
)

// Typed mart analytics. Each method runs one template (or a fallback list)
// through the memoizing executor and maps the generic rows into API types.

// SalesKPIs returns the trailing-window headline figures. NULL aggregates
// (empty mart) come back as zeros, matching the dashboard's fill-with-zero
// rendering.
func (db *DB) SalesKPIs(ctx context.Context) (*models.SalesKPIs, error) {
	rs, err := db.Run(ctx, "sales_kpis", querySalesKPIs)
	if err != nil {
		return nil, err
	}

	kpis := &models.SalesKPIs{WindowDays: 180}
	if !rs.Empty() {
		row := rs.Rows[0]
		kpis.PaidRevenue = asFloat(row[0])
		kpis.Orders = asInt(row[1])
		kpis.AOV = asFloat(row[2])
	}
	return kpis, nil
}

// RevenueOrdersDaily returns the trailing-window daily revenue and orders
// series.
func (db *DB) RevenueOrdersDaily(ctx context.Context) ([]models.RevenueOrdersPoint, error) {
	rs, err := db.Run(ctx, "revenue_orders_daily", queryRevenueOrdersDaily)
	if err != nil {
		return nil, err
	}

	points := make([]models.RevenueOrdersPoint, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		points = append(points, models.RevenueOrdersPoint{
			OrderDate:   asTime(row[0]),
			PaidRevenue: asFloat(row[1]),
			Orders:      asInt(row[2]),
		})
	}
	return points, nil
}

// CohortSizes returns new customers per cohort month, tolerating five mart
// shapes. An empty slice means no variant matched; callers render a no-data
// state.
func (db *DB) CohortSizes(ctx context.Context) []models.CohortSize {
	rs := db.ResolveFirst(ctx, "cohort_sizes",
		queryCohortSizeCustomerCohorts,
		queryCohortSizeCohorts,
		queryCohortSizeCohortsNew,
		queryCohortSizeFromLTVDistinct,
		queryCohortSizeFromLTVColumn,
	)

	sizes := make([]models.CohortSize, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		sizes = append(sizes, models.CohortSize{
			CohortMonth: asTime(row[0]),
			CohortSize:  asInt(row[1]),
		})
	}
	return sizes
}

// LTVSummary describes the LTV mart's month range, used to pick between the
// monthly series and the month-0 fallback.
func (db *DB) LTVSummary(ctx context.Context) (*models.LTVSummary, error) {
	rs, err := db.Run(ctx, "ltv_summary", queryLTVSummary)
	if err != nil {
		return nil, err
	}

	summary := &models.LTVSummary{}
	if !rs.Empty() {
		row := rs.Rows[0]
		summary.MinMonth = asInt(row[0])
		summary.MaxMonth = asInt(row[1])
		summary.Rows = asInt(row[2])
	}
	return summary, nil
}

// LTVMonthly returns cumulative LTV per cohort for months 0..36.
func (db *DB) LTVMonthly(ctx context.Context) ([]models.LTVPoint, error) {
	rs, err := db.Run(ctx, "ltv_monthly", queryLTVMonthly)
	if err != nil {
		return nil, err
	}

	points := make([]models.LTVPoint, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		points = append(points, models.LTVPoint{
			CohortMonth:       asTime(row[0]),
			MonthsSinceCohort: asInt(row[1]),
			AvgCumulativeLTV:  asFloat(row[2]),
		})
	}
	return points, nil
}

// LTVFirstMonth returns average month-0 LTV per cohort, the fallback series
// for marts that carry no months beyond 0.
func (db *DB) LTVFirstMonth(ctx context.Context) ([]models.FirstMonthLTV, error) {
	rs, err := db.Run(ctx, "ltv_first_month", queryLTVFirstMonth)
	if err != nil {
		return nil, err
	}

	points := make([]models.FirstMonthLTV, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		points = append(points, models.FirstMonthLTV{
			CohortMonth: asTime(row[0]),
			LTV:         asFloat(row[1]),
		})
	}
	return points, nil
}

// RetentionHeatmap returns cohort retention cells, tolerating both
// column-name conventions of mart_retention_monthly.
func (db *DB) RetentionHeatmap(ctx context.Context) []models.RetentionCell {
	rs := db.ResolveFirst(ctx, "retention",
		queryRetentionColRetention,
		queryRetentionColRate,
	)

	cells := make([]models.RetentionCell, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		cells = append(cells, models.RetentionCell{
			CohortMonth:       asTime(row[0]),
			MonthsSinceCohort: asInt(row[1]),
			Retention:         asFloat(row[2]),
		})
	}
	return cells
}

// ReturnsDaily returns daily returns volume and review quality.
func (db *DB) ReturnsDaily(ctx context.Context) ([]models.ReturnsDailyPoint, error) {
	rs, err := db.Run(ctx, "returns_daily", queryReturnsDaily)
	if err != nil {
		return nil, err
	}

	points := make([]models.ReturnsDailyPoint, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		points = append(points, models.ReturnsDailyPoint{
			OrderDate:      asTime(row[0]),
			Returns:        asInt(row[1]),
			AvgReviewScore: asFloat(row[2]),
		})
	}
	return points, nil
}

// ReturnsMonthly returns monthly returns volume.
func (db *DB) ReturnsMonthly(ctx context.Context) ([]models.ReturnsMonthlyPoint, error) {
	rs, err := db.Run(ctx, "returns_monthly", queryReturnsMonthly)
	if err != nil {
		return nil, err
	}

	points := make([]models.ReturnsMonthlyPoint, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		points = append(points, models.ReturnsMonthlyPoint{
			OrderMonth: asTime(row[0]),
			Returns:    asInt(row[1]),
		})
	}
	return points, nil
}

// MarketingROAS returns return-on-spend per day, for days with positive
// spend.
func (db *DB) MarketingROAS(ctx context.Context) ([]models.ROASPoint, error) {
	rs, err := db.Run(ctx, "marketing_roas", queryMarketingROAS)
	if err != nil {
		return nil, err
	}

	points := make([]models.ROASPoint, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		points = append(points, models.ROASPoint{
			Day:  asTime(row[0]),
			ROAS: asFloat(row[1]),
		})
	}
	return points, nil
}

// MarketingSeries returns the long-format spend vs gross revenue series.
func (db *DB) MarketingSeries(ctx context.Context) ([]models.MarketingSeriesPoint, error) {
	rs, err := db.Run(ctx, "marketing_series", queryMarketingSeries)
	if err != nil {
		return nil, err
	}

	points := make([]models.MarketingSeriesPoint, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		points = append(points, models.MarketingSeriesPoint{
			Day:    asTime(row[0]),
			Metric: asString(row[1]),
			Value:  asFloat(row[2]),
		})
	}
	return points, nil
}

// HasTable reports whether a table exists in the configured mart schema.
// Uncached: it backs the health endpoint, which should see schema changes
// immediately.
func (db *DB) HasTable(ctx context.Context, table string) (bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rs, err := db.collect(ctx, queryHasTable, db.schema, table)
	if err != nil {
		return false, err
	}
	return !rs.Empty(), nil
}

// MartAvailability reports which of the consumed marts exist.
func (db *DB) MartAvailability(ctx context.Context) map[string]bool {
	availability := make(map[string]bool, len(martTables))
	for _, table := range martTables {
		ok, err := db.HasTable(ctx, table)
		if err != nil {
			availability[table] = false
			continue
		}
		availability[table] = ok
	}
	return availability
}
