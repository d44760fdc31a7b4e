// Olist Analytics - E-commerce Analytics Dashboard
// Copyright 2026 BDepanfilis
// SPDX-License-Identifier: MIT
// https://github.com/BDepanfilis/olist-analytics-public

// Package config provides layered configuration management for the dashboard
// server using Koanf v2.
//
// Configuration Loading Order (lowest to highest priority):
//  1. Defaults: Built-in sensible defaults for all settings
//  2. Secrets/Config File: Optional YAML file (secrets.yaml / config.yaml)
//     with db/gh/download namespaces, the deployment-platform secrets layer
//  3. Environment Variables: DB_PATH, DB_SCHEMA, GH_OWNER, GH_REPO, GH_TAG,
//     GH_ASSET, GH_TOKEN, DB_DOWNLOAD_URL, HTTP_PORT, LOG_LEVEL, ...
//  4. Explicit Overrides: Runtime overrides passed by the caller (flags,
//     tests) always win
//
// The resolved Config is immutable after Load() and safe for concurrent
// read access from multiple goroutines.
package config

import (
	"time"
)

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig `koanf:"db"`
	GitHub   GitHubConfig   `koanf:"gh"`
	Download DownloadConfig `koanf:"download"`
	Server   ServerConfig   `koanf:"server"`
	API      APIConfig      `koanf:"api"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// DatabaseConfig holds the analytical database location settings.
//
// Environment Variables:
//   - DB_PATH: Path to the DuckDB file (default: olist.duckdb)
//   - DB_SCHEMA: Schema holding the mart tables (default: analytics_marts)
type DatabaseConfig struct {
	Path string `koanf:"path" validate:"required"`
	// Schema is the mart schema name. It is trusted operator configuration,
	// substituted into query templates without SQL escaping.
	Schema string `koanf:"schema" validate:"required"`
	// QueryTTL is the freshness window for memoized query results.
	QueryTTL time.Duration `koanf:"query_ttl"`
	// MaxMemory is passed to DuckDB as a memory ceiling (e.g. "2GB").
	MaxMemory string `koanf:"max_memory"`
	// Threads is the DuckDB thread count; 0 means runtime.NumCPU().
	Threads int `koanf:"threads" validate:"min=0"`
}

// GitHubConfig holds the release-asset acquisition settings for downloading
// the database from a (typically private) GitHub release on first run.
//
// Environment Variables:
//   - GH_OWNER: Repository owner
//   - GH_REPO: Repository name
//   - GH_TAG: Release tag, or "latest" (default: latest)
//   - GH_ASSET: Asset file name (default: olist.duckdb)
//   - GH_TOKEN: Token with access to the release
type GitHubConfig struct {
	Owner string `koanf:"owner"`
	Repo  string `koanf:"repo"`
	Tag   string `koanf:"tag"`
	Asset string `koanf:"asset"`
	Token string `koanf:"token"`
}

// DownloadConfig holds the direct-URL fallback for database acquisition.
//
// Environment Variables:
//   - DB_DOWNLOAD_URL: Pre-signed URL returning the raw database bytes
type DownloadConfig struct {
	URL string `koanf:"url" validate:"omitempty,url"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout time.Duration `koanf:"timeout"`
}

// APIConfig holds API behavior settings.
type APIConfig struct {
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs" validate:"min=1"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error fatal panic disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Overrides carries explicit runtime overrides. Non-empty fields are applied
// as the highest-priority configuration layer, beating environment values
// and the secrets file.
type Overrides struct {
	DatabasePath string
	Schema       string
}

// defaultConfig returns a Config with all default values. These are applied
// first and overridden by the config file, environment, and overrides.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:      "olist.duckdb",
			Schema:    "analytics_marts",
			QueryTTL:  300 * time.Second,
			MaxMemory: "2GB",
			Threads:   0, // 0 = use runtime.NumCPU()
		},
		GitHub: GitHubConfig{
			Owner: "",
			Repo:  "",
			Tag:   "latest",
			Asset: "olist.duckdb",
			Token: "",
		},
		Download: DownloadConfig{
			URL: "",
		},
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8517,
			Timeout: 30 * time.Second,
		},
		API: APIConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   300,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}
