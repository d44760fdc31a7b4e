// Olist Analytics - E-commerce Analytics Dashboard
// Copyright 2026 BDepanfilis
// SPDX-License-Identifier: MIT
// https://github.com/BDepanfilis/olist-analytics-public

// Package acquire decides where the analytical database lives on disk and
// makes sure it is there before the first query runs.
//
// The locator resolves the database path and mart schema from configuration;
// the orchestrator composes the locator with download strategies (GitHub
// release asset first, direct URL second) and runs acquisition exactly once
// per process.
package acquire

import (
	"os"
	"path/filepath"
)

// MinDatabaseSize is the presence threshold in bytes. A file at or below
// this size is treated as a failed or placeholder download, not a database.
const MinDatabaseSize = 1024

// Location is the resolved on-disk database location. Immutable once
// resolved; the schema name qualifies every mart query.
type Location struct {
	Path   string
	Schema string
}

// Locate resolves the database location from configuration. Precedence
// (explicit override > environment > secrets file > default) is handled by
// the config layering; this stays a pure function of the snapshot. The path
// is made absolute when possible so log lines and error messages are
// unambiguous.
func Locate(path, schema string) Location {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return Location{Path: path, Schema: schema}
}

// IsPresent reports whether a valid-looking database exists at the location:
// the file exists and its size exceeds MinDatabaseSize. The size floor guards
// against a previously-failed, truncated, or placeholder download being
// mistaken for a usable database.
func IsPresent(loc Location) bool {
	info, err := os.Stat(loc.Path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Size() > MinDatabaseSize
}
