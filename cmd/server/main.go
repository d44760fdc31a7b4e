// Olist Analytics - E-commerce Analytics Dashboard
// Copyright 2026 BDepanfilis
// SPDX-License-Identifier: MIT
// https://github.com/BDepanfilis/olist-analytics-public

// Package main is the entry point for the Olist analytics server.
//
// The server exposes dashboards over a prebuilt DuckDB database of Olist
// e-commerce marts. Startup order:
//
//  1. Configuration: layered via Koanf v2 (defaults, secrets file, env vars)
//  2. Logging: zerolog, JSON or console format
//  3. Acquisition: fetch the database from a GitHub release or direct URL
//     when it is missing or undersized
//  4. Database: open DuckDB read-write with a pinned UTC session
//  5. HTTP server: Chi router serving the JSON API, Prometheus metrics,
//     and the static dashboard
//
// # Configuration
//
// Provide the database location and acquisition coordinates via secrets.yaml
// (or CONFIG_PATH) or environment variables:
//
//	export DB_PATH=olist.duckdb
//	export DB_SCHEMA=analytics_marts
//	export GH_OWNER=you GH_REPO=olist-data GH_ASSET=olist.duckdb
//	export GH_TOKEN=ghp_...            # private repos
//	export DB_DOWNLOAD_URL=https://...  # fallback when no release is set
//	./olist-analytics
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the listener stops accepting
// connections, in-flight requests get 10 seconds to drain, then the database
// handle is closed.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BDepanfilis/olist-analytics-public/internal/acquire"
	"github.com/BDepanfilis/olist-analytics-public/internal/api"
	"github.com/BDepanfilis/olist-analytics-public/internal/config"
	"github.com/BDepanfilis/olist-analytics-public/internal/database"
	"github.com/BDepanfilis/olist-analytics-public/internal/logging"
	"github.com/BDepanfilis/olist-analytics-public/internal/release"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load(nil)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("schema", cfg.Database.Schema).
		Msg("Configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Make sure the database file exists before opening it. Fetches from
	// the configured GitHub release or direct URL when it is missing.
	ensurer := acquire.NewEnsurer(cfg, release.NewClient())
	if err := ensurer.Ensure(ctx); err != nil {
		logging.Fatal().Err(err).Msg("Database acquisition failed")
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	router := api.NewRouter(db, &api.MiddlewareConfig{
		CORSAllowedOrigins: cfg.API.CORSOrigins,
		CORSMaxAge:         86400,
		RateLimitRequests:  cfg.API.RateLimitReqs,
		RateLimitWindow:    cfg.API.RateLimitWindow,
	}, api.DefaultStaticDir)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		serverErr <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server error")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown incomplete, forcing close")
		_ = server.Close()
	}

	logging.Info().Msg("Application stopped gracefully")
}
