// Olist Analytics - E-commerce Analytics Dashboard
// Copyright 2026 BDepanfilis
// SPDX-License-Identifier: MIT
// https://github.com/BDepanfilis/olist-analytics-public

package models

import "time"

// SalesKPIs holds the trailing-window headline figures from mart_sales_daily.
// The window is anchored on the latest order_date present in the mart, not on
// wall-clock time, so a stale database still shows a full window.
type SalesKPIs struct {
	PaidRevenue float64 `json:"paid_revenue"`
	Orders      int64   `json:"orders"`
	// AOV is average order value; zero when the window holds no orders.
	AOV float64 `json:"aov"`
	// WindowDays is the trailing window length the figures cover.
	WindowDays int `json:"window_days"`
}

// RevenueOrdersPoint is one day of the revenue/orders series.
type RevenueOrdersPoint struct {
	OrderDate   time.Time `json:"order_date"`
	PaidRevenue float64   `json:"paid_revenue"`
	Orders      int64     `json:"orders"`
}

// CohortSize is the number of new customers whose first order falls in
// CohortMonth.
type CohortSize struct {
	CohortMonth time.Time `json:"cohort_month"`
	CohortSize  int64     `json:"cohort_size"`
}

// LTVSummary describes the shape of the LTV mart, used to decide between the
// full monthly series and the month-0-only fallback.
type LTVSummary struct {
	MinMonth int64 `json:"min_month"`
	MaxMonth int64 `json:"max_month"`
	Rows     int64 `json:"rows"`
}

// LTVPoint is cumulative revenue per cohort as a function of months since
// acquisition.
type LTVPoint struct {
	CohortMonth       time.Time `json:"cohort_month"`
	MonthsSinceCohort int64     `json:"months_since_cohort"`
	AvgCumulativeLTV  float64   `json:"avg_cumulative_ltv"`
}

// FirstMonthLTV is the month-0 average LTV per cohort, served when the marts
// carry no months beyond 0.
type FirstMonthLTV struct {
	CohortMonth time.Time `json:"cohort_month"`
	LTV         float64   `json:"m0_ltv"`
}

// RetentionCell is one cell of the cohort retention heatmap.
type RetentionCell struct {
	CohortMonth       time.Time `json:"cohort_month"`
	MonthsSinceCohort int64     `json:"months_since_cohort"`
	Retention         float64   `json:"retention"`
}

// ReturnsDailyPoint is one day of returns volume and review quality.
type ReturnsDailyPoint struct {
	OrderDate      time.Time `json:"order_date"`
	Returns        int64     `json:"returns"`
	AvgReviewScore float64   `json:"avg_review_score"`
}

// ReturnsMonthlyPoint is one month of returns volume.
type ReturnsMonthlyPoint struct {
	OrderMonth time.Time `json:"order_month"`
	Returns    int64     `json:"returns"`
}

// ROASPoint is return on marketing spend for one day; only days with
// positive spend are emitted.
type ROASPoint struct {
	Day  time.Time `json:"day"`
	ROAS float64   `json:"roas"`
}

// MarketingSeriesPoint is one (day, metric) sample of the spend-vs-revenue
// series. Metric is "gross_revenue" or "spend".
type MarketingSeriesPoint struct {
	Day    time.Time `json:"day"`
	Metric string    `json:"metric"`
	Value  float64   `json:"value"`
}
