// Olist Analytics - E-commerce Analytics Dashboard
// Copyright 2026 BDepanfilis
// SPDX-License-Identifier: MIT
// https://github.com/BDepanfilis/olist-analytics-public

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/BDepanfilis/olist-analytics-public/internal/logging"
	"github.com/BDepanfilis/olist-analytics-public/internal/metrics"
)

// MiddlewareConfig holds the knobs for the router's middleware stack.
type MiddlewareConfig struct {
	CORSAllowedOrigins []string
	CORSMaxAge         int // seconds

	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// DefaultMiddlewareConfig returns a secure default configuration. CORS
// origins default to empty so deployments must opt in explicitly.
func DefaultMiddlewareConfig() *MiddlewareConfig {
	return &MiddlewareConfig{
		CORSAllowedOrigins: []string{},
		CORSMaxAge:         86400,
		RateLimitRequests:  300,
		RateLimitWindow:    time.Minute,
	}
}

// Middleware provides the router's middleware factories, backed by the
// go-chi ecosystem implementations.
type Middleware struct {
	config *MiddlewareConfig
	cors   func(http.Handler) http.Handler
}

// NewMiddleware creates a middleware factory with the given configuration.
func NewMiddleware(config *MiddlewareConfig) *Middleware {
	if config == nil {
		config = DefaultMiddlewareConfig()
	}

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins: config.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         config.CORSMaxAge,
	})

	return &Middleware{
		config: config,
		cors:   corsHandler,
	}
}

// CORS returns the CORS middleware. Must be global so it handles OPTIONS
// preflight before routing.
func (m *Middleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimit returns an IP-keyed rate limiter for the data endpoints.
func (m *Middleware) RateLimit() func(http.Handler) http.Handler {
	return httprate.Limit(
		m.config.RateLimitRequests,
		m.config.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
	)
}

// RequestIDWithLogging attaches a request ID to the response header and the
// logging context. Wraps chi's RequestID middleware so downstream code sees
// a consistent ID whether the client supplied one or not.
func RequestIDWithLogging() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		chiRequestID := chimiddleware.RequestID(next)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = logging.GenerateRequestID()
				r.Header.Set("X-Request-ID", requestID)
			}

			w.Header().Set("X-Request-ID", requestID)
			ctx := logging.ContextWithRequestID(r.Context(), requestID)
			chiRequestID.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SecurityHeaders adds standard hardening headers to API responses.
// HSTS is added only when the request arrived over TLS, directly or behind
// a terminating proxy.
func SecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// PrometheusMetrics records request duration by route pattern, method and
// status code.
func PrometheusMetrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(wrapped, r)

			path := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					path = pattern
				}
			}

			metrics.HTTPRequestDuration.WithLabelValues(
				path,
				r.Method,
				strconv.Itoa(wrapped.Status()),
			).Observe(time.Since(start).Seconds())
		})
	}
}
