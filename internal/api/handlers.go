// Olist Analytics - E-commerce Analytics Dashboard
// Copyright 2026 BDepanfilis
// SPDX-License-Identifier: MIT
// https://github.com/BDepanfilis/olist-analytics-public

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/BDepanfilis/olist-analytics-public/internal/cache"
	"github.com/BDepanfilis/olist-analytics-public/internal/models"
)

// AnalyticsSource is the data surface the handlers depend on. The database
// package satisfies it; tests substitute a stub.
type AnalyticsSource interface {
	SalesKPIs(ctx context.Context) (*models.SalesKPIs, error)
	RevenueOrdersDaily(ctx context.Context) ([]models.RevenueOrdersPoint, error)
	CohortSizes(ctx context.Context) []models.CohortSize
	LTVSummary(ctx context.Context) (*models.LTVSummary, error)
	LTVMonthly(ctx context.Context) ([]models.LTVPoint, error)
	LTVFirstMonth(ctx context.Context) ([]models.FirstMonthLTV, error)
	RetentionHeatmap(ctx context.Context) []models.RetentionCell
	ReturnsDaily(ctx context.Context) ([]models.ReturnsDailyPoint, error)
	ReturnsMonthly(ctx context.Context) ([]models.ReturnsMonthlyPoint, error)
	MarketingROAS(ctx context.Context) ([]models.ROASPoint, error)
	MarketingSeries(ctx context.Context) ([]models.MarketingSeriesPoint, error)
	MartAvailability(ctx context.Context) map[string]bool

	Ping(ctx context.Context) error
	Schema() string
	CacheStats() cache.Stats
}

// Handler serves the analytics endpoints.
type Handler struct {
	source  AnalyticsSource
	started time.Time
}

// NewHandler creates a handler over the given analytics source.
func NewHandler(source AnalyticsSource) *Handler {
	return &Handler{
		source:  source,
		started: time.Now(),
	}
}

// OverviewKPIs serves the headline sales KPIs for the trailing window.
func (h *Handler) OverviewKPIs(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	kpis, err := h.source.SalesKPIs(r.Context())
	if err != nil {
		rw.QueryError(err)
		return
	}
	rw.Success(kpis)
}

// OverviewRevenueOrders serves the daily revenue and order series.
func (h *Handler) OverviewRevenueOrders(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	points, err := h.source.RevenueOrdersDaily(r.Context())
	if err != nil {
		rw.QueryError(err)
		return
	}
	rw.Success(points)
}

// CohortSizes serves customers per acquisition cohort. The source resolves
// across mart variants internally; an empty list means no cohort mart is
// available in this database build.
func (h *Handler) CohortSizes(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	rw.Success(h.source.CohortSizes(r.Context()))
}

// ltvResponse pairs the LTV shape summary with the monthly series so the
// dashboard can decide between the curve and the month-0 fallback in one
// round trip.
type ltvResponse struct {
	Summary *models.LTVSummary `json:"summary"`
	Points  []models.LTVPoint  `json:"points"`
}

// CohortLTV serves cumulative LTV per cohort month.
func (h *Handler) CohortLTV(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	ctx := r.Context()

	summary, err := h.source.LTVSummary(ctx)
	if err != nil {
		rw.QueryError(err)
		return
	}

	points, err := h.source.LTVMonthly(ctx)
	if err != nil {
		rw.QueryError(err)
		return
	}

	rw.Success(ltvResponse{Summary: summary, Points: points})
}

// CohortLTVFirstMonth serves month-0 LTV per cohort, the fallback view when
// the LTV mart carries a single month.
func (h *Handler) CohortLTVFirstMonth(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	points, err := h.source.LTVFirstMonth(r.Context())
	if err != nil {
		rw.QueryError(err)
		return
	}
	rw.Success(points)
}

// CohortRetention serves the retention heatmap cells.
func (h *Handler) CohortRetention(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	rw.Success(h.source.RetentionHeatmap(r.Context()))
}

// ReturnsDaily serves daily return counts with average review scores.
func (h *Handler) ReturnsDaily(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	points, err := h.source.ReturnsDaily(r.Context())
	if err != nil {
		rw.QueryError(err)
		return
	}
	rw.Success(points)
}

// ReturnsMonthly serves monthly return counts.
func (h *Handler) ReturnsMonthly(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	points, err := h.source.ReturnsMonthly(r.Context())
	if err != nil {
		rw.QueryError(err)
		return
	}
	rw.Success(points)
}

// MarketingROAS serves return-on-ad-spend for days with positive spend.
func (h *Handler) MarketingROAS(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	points, err := h.source.MarketingROAS(r.Context())
	if err != nil {
		rw.QueryError(err)
		return
	}
	rw.Success(points)
}

// MarketingSeries serves the long-form revenue vs spend series.
func (h *Handler) MarketingSeries(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	points, err := h.source.MarketingSeries(r.Context())
	if err != nil {
		rw.QueryError(err)
		return
	}
	rw.Success(points)
}

// healthResponse reports database reachability, cache effectiveness, and
// which marts the connected database actually carries.
type healthResponse struct {
	Status        string          `json:"status"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	Database      healthDatabase  `json:"database"`
	Cache         healthCache     `json:"cache"`
	Marts         map[string]bool `json:"marts"`
}

type healthDatabase struct {
	Reachable bool   `json:"reachable"`
	Schema    string `json:"schema"`
	Error     string `json:"error,omitempty"`
}

type healthCache struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	TotalKeys int64   `json:"total_keys"`
	HitRate   float64 `json:"hit_rate"`
}

// Health serves the service health summary. Returns 503 when the database
// is unreachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	ctx := r.Context()

	resp := healthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		Database: healthDatabase{
			Reachable: true,
			Schema:    h.source.Schema(),
		},
	}

	if err := h.source.Ping(ctx); err != nil {
		resp.Status = "degraded"
		resp.Database.Reachable = false
		resp.Database.Error = err.Error()
		rw.ErrorWithDetails(http.StatusServiceUnavailable, models.ErrCodeService,
			"database unreachable", map[string]interface{}{"health": resp})
		return
	}

	stats := h.source.CacheStats()
	resp.Cache = healthCache{
		Hits:      stats.Hits,
		Misses:    stats.Misses,
		TotalKeys: stats.TotalKeys,
		HitRate:   hitRate(stats),
	}
	resp.Marts = h.source.MartAvailability(ctx)

	rw.Success(resp)
}

func hitRate(stats cache.Stats) float64 {
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0
	}
	return float64(stats.Hits) / float64(total)
}
