// Olist Analytics - E-commerce Analytics Dashboard
// Copyright 2026 BDepanfilis
// SPDX-License-Identifier: MIT
// https://github.com/BDepanfilis/olist-analytics-public

package database

// Mart query catalog. Every template is read-only, schema-qualified via the
// {schema} placeholder, and anchored on the latest date present in the mart
// rather than wall-clock time, so a stale snapshot still renders a full
// window.

// trailingWindowDays is the KPI and series window.
const trailingWindowDays = "180"

// Headline KPIs over the trailing window of mart_sales_daily.
const querySalesKPIs = `
WITH cutoff AS (
  SELECT MAX(order_date) AS max_date
  FROM {schema}.mart_sales_daily
),
windowed AS (
  SELECT *
  FROM {schema}.mart_sales_daily
  WHERE order_date > (SELECT max_date - INTERVAL ` + trailingWindowDays + ` DAY FROM cutoff)
)
SELECT
  SUM(paid_revenue)                                   AS paid_revenue,
  SUM(orders)                                         AS orders,
  CASE WHEN SUM(orders) = 0 THEN NULL
       ELSE SUM(paid_revenue) * 1.0 / SUM(orders)
  END                                                 AS aov
FROM windowed;
`

// Daily revenue and orders over the trailing window.
const queryRevenueOrdersDaily = `
WITH bounds AS (
  SELECT
    max(order_date) - INTERVAL ` + trailingWindowDays + ` DAY AS start_day,
    max(order_date)                     AS end_day
  FROM {schema}.mart_sales_daily
)
SELECT
  order_date,
  SUM(paid_revenue) AS paid_revenue,
  SUM(orders)       AS orders
FROM {schema}.mart_sales_daily, bounds
WHERE order_date >= bounds.start_day
  AND order_date <= bounds.end_day
GROUP BY 1
ORDER BY 1;
`

// Cohort sizing. Mart builds differ on where cohort sizes live and what the
// column is called, so variants run most-specific first; the resolver takes
// the first one that returns rows.
const (
	queryCohortSizeCustomerCohorts = `
SELECT cohort_month, cohort_size
FROM {schema}.mart_customer_cohorts
ORDER BY cohort_month;
`

	queryCohortSizeCohorts = `
SELECT cohort_month, cohort_size
FROM {schema}.mart_cohorts
ORDER BY cohort_month;
`

	queryCohortSizeCohortsNew = `
SELECT cohort_month, new_customers AS cohort_size
FROM {schema}.mart_cohorts
ORDER BY cohort_month;
`

	queryCohortSizeFromLTVDistinct = `
SELECT cohort_month, COUNT(DISTINCT customer_id) AS cohort_size
FROM {schema}.mart_ltv_customer_monthly
WHERE months_since_cohort = 0
GROUP BY 1
ORDER BY 1;
`

	queryCohortSizeFromLTVColumn = `
SELECT cohort_month, MAX(cohort_size) AS cohort_size
FROM {schema}.mart_ltv_customer_monthly
GROUP BY 1
ORDER BY 1;
`
)

// LTV mart shape summary; decides between the monthly series and the
// month-0-only fallback.
const queryLTVSummary = `
SELECT
  MIN(months_since_cohort) AS min_m,
  MAX(months_since_cohort) AS max_m,
  COUNT(*)                 AS rows
FROM {schema}.mart_ltv_customer_monthly;
`

// Monthly cumulative LTV, preferring avg_cumulative_ltv when present.
const queryLTVMonthly = `
SELECT
  cohort_month,
  months_since_cohort,
  COALESCE(avg_cumulative_ltv, cumulative_ltv) AS avg_cumulative_ltv
FROM {schema}.mart_ltv_customer_monthly
WHERE months_since_cohort BETWEEN 0 AND 36
ORDER BY cohort_month, months_since_cohort;
`

// Month-0 only: first-month LTV per cohort.
const queryLTVFirstMonth = `
SELECT
  cohort_month,
  AVG(COALESCE(avg_cumulative_ltv, cumulative_ltv)) AS m0_ltv
FROM {schema}.mart_ltv_customer_monthly
WHERE months_since_cohort = 0
GROUP BY 1
ORDER BY cohort_month;
`

// Retention heatmap, two column-name conventions.
const (
	queryRetentionColRetention = `
SELECT
  cohort_month,
  months_since_cohort,
  retention
FROM {schema}.mart_retention_monthly
WHERE months_since_cohort BETWEEN 0 AND 36
ORDER BY cohort_month, months_since_cohort;
`

	queryRetentionColRate = `
SELECT
  cohort_month,
  months_since_cohort,
  retention_rate AS retention
FROM {schema}.mart_retention_monthly
WHERE months_since_cohort BETWEEN 0 AND 36
ORDER BY cohort_month, months_since_cohort;
`
)

// Returns and review quality.
const queryReturnsDaily = `
SELECT
  order_date,
  returns,
  avg_review_score
FROM {schema}.mart_returns_quality_daily
ORDER BY order_date;
`

const queryReturnsMonthly = `
SELECT
  order_month,
  returns
FROM {schema}.mart_returns_quality_monthly
ORDER BY order_month;
`

// Marketing: ROAS only where spend is positive.
const queryMarketingROAS = `
WITH base AS (
  SELECT day,
         SUM(gross_revenue) AS gross_revenue,
         SUM(spend)         AS spend
  FROM {schema}.mart_marketing_roi
  GROUP BY 1
)
SELECT
  day,
  CASE WHEN spend > 0 THEN gross_revenue * 1.0 / spend END AS roas
FROM base
WHERE spend > 0
ORDER BY day;
`

// Marketing: spend vs gross revenue as a long-format series.
const queryMarketingSeries = `
SELECT day, 'gross_revenue' AS metric, SUM(gross_revenue) AS value
FROM {schema}.mart_marketing_roi
GROUP BY 1
UNION ALL
SELECT day, 'spend' AS metric, SUM(spend) AS value
FROM {schema}.mart_marketing_roi
GROUP BY 1
ORDER BY day, metric;
`

// Existence probe for the health endpoint.
const queryHasTable = `
SELECT 1 FROM information_schema.tables WHERE table_schema = ? AND table_name = ?;
`

// martTables are the marts the dashboard consumes, reported by the health
// endpoint.
var martTables = []string{
	"mart_sales_daily",
	"mart_customer_cohorts",
	"mart_cohorts",
	"mart_ltv_customer_monthly",
	"mart_retention_monthly",
	"mart_returns_quality_daily",
	"mart_returns_quality_monthly",
	"mart_marketing_roi",
}
