// Olist Analytics - E-commerce Analytics Dashboard
// Copyright 2026 BDepanfilis
// SPDX-License-Identifier: MIT
// https://github.com/BDepanfilis/olist-analytics-public

package api

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultStaticDir is where the dashboard's static assets live relative to
// the working directory.
const DefaultStaticDir = "web/static"

// Router assembles the HTTP handler tree.
type Router struct {
	handler    *Handler
	middleware *Middleware
	staticDir  string
}

// NewRouter creates a router serving the given analytics source.
func NewRouter(source AnalyticsSource, mwConfig *MiddlewareConfig, staticDir string) *Router {
	if staticDir == "" {
		staticDir = DefaultStaticDir
	}
	return &Router{
		handler:    NewHandler(source),
		middleware: NewMiddleware(mwConfig),
		staticDir:  staticDir,
	}
}

// Setup wires all routes and middleware and returns the root handler.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.middleware.CORS()) // global so OPTIONS preflight is handled

	// Health is rate limited separately from the data endpoints so
	// monitoring probes never compete with dashboard traffic.
	r.With(SecurityHeaders()).Get("/api/v1/health", router.handler.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.middleware.RateLimit())
		r.Use(SecurityHeaders())
		r.Use(PrometheusMetrics())

		r.Route("/overview", func(r chi.Router) {
			r.Get("/kpis", router.handler.OverviewKPIs)
			r.Get("/revenue-orders", router.handler.OverviewRevenueOrders)
		})

		r.Route("/cohorts", func(r chi.Router) {
			r.Get("/sizes", router.handler.CohortSizes)
			r.Get("/ltv", router.handler.CohortLTV)
			r.Get("/ltv-first-month", router.handler.CohortLTVFirstMonth)
			r.Get("/retention", router.handler.CohortRetention)
		})

		r.Route("/returns", func(r chi.Router) {
			r.Get("/daily", router.handler.ReturnsDaily)
			r.Get("/monthly", router.handler.ReturnsMonthly)
		})

		r.Route("/marketing", func(r chi.Router) {
			r.Get("/roas", router.handler.MarketingROAS)
			r.Get("/series", router.handler.MarketingSeries)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	// Dashboard static assets. The SPA index is served for the root path;
	// everything else comes straight off disk.
	if _, err := os.Stat(router.staticDir); err == nil {
		fs := http.FileServer(http.Dir(router.staticDir))
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			http.ServeFile(w, req, filepath.Join(router.staticDir, "index.html"))
		})
		r.Handle("/static/*", http.StripPrefix("/static/", fs))
	}

	return r
}
