// Olist Analytics - E-commerce Analytics Dashboard
// Copyright 2026 BDepanfilis
// SPDX-License-Identifier: MIT
// https://github.com/BDepanfilis/olist-analytics-public

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found will be used. secrets.yaml comes first so
// a deployment-platform secrets mount wins over a checked-in config file.
var DefaultConfigPaths = []string{
	"secrets.yaml",
	"config.yaml",
	"config.yml",
	"/etc/olist-analytics/secrets.yaml",
	"/etc/olist-analytics/config.yaml",
}

// ConfigPathEnvVar is the environment variable that can override the config
// file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in values
//  2. Config/Secrets file: optional YAML (if one exists)
//  3. Environment variables
//  4. Explicit overrides (nil for none)
//
// The first present value at the highest layer wins.
func Load(overrides *Overrides) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config/secrets file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables
	// Transform environment variable names to koanf paths:
	// DB_PATH -> db.path, GH_OWNER -> gh.owner
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Env vars arrive as strings; split known slice fields on commas.
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// Layer 4: explicit runtime overrides always win
	if overrides != nil {
		if overrides.DatabasePath != "" {
			cfg.Database.Path = overrides.DatabasePath
		}
		if overrides.Schema != "" {
			cfg.Database.Schema = overrides.Schema
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path of the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envVarPaths maps recognized environment variables to koanf config paths.
// Variables not listed here are ignored rather than merged, so unrelated
// process environment never leaks into the configuration.
var envVarPaths = map[string]string{
	"DB_PATH":         "db.path",
	"DB_SCHEMA":       "db.schema",
	"DB_QUERY_TTL":    "db.query_ttl",
	"DB_MAX_MEMORY":   "db.max_memory",
	"DB_THREADS":      "db.threads",
	"GH_OWNER":        "gh.owner",
	"GH_REPO":         "gh.repo",
	"GH_TAG":          "gh.tag",
	"GH_ASSET":        "gh.asset",
	"GH_TOKEN":        "gh.token",
	"DB_DOWNLOAD_URL": "download.url",
	"HTTP_HOST":       "server.host",
	"HTTP_PORT":       "server.port",
	"HTTP_TIMEOUT":    "server.timeout",
	"CORS_ORIGINS":    "api.cors_origins",
	"LOG_LEVEL":       "logging.level",
	"LOG_FORMAT":      "logging.format",
	"LOG_CALLER":      "logging.caller",
}

// envTransformFunc maps environment variable names to koanf config paths.
// Returning an empty string tells the env provider to skip the variable.
func envTransformFunc(key string) string {
	return envVarPaths[strings.ToUpper(key)]
}

// sliceConfigPaths defines which config paths should be parsed as
// comma-separated slices when they arrive as plain strings from env vars.
var sliceConfigPaths = []string{
	"api.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from the YAML file or defaults), nothing to do.
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}
