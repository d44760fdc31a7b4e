// Olist Analytics - E-commerce Analytics Dashboard
// Copyright 2026 BDepanfilis
// SPDX-License-Identifier: MIT
// https://github.com/BDepanfilis/olist-analytics-public

package database

import (
	"strconv"
	"time"
)

// Value coercion for generic ResultSet rows. The driver's concrete types
// vary with the mart column types (DATE vs TIMESTAMP, INTEGER vs BIGINT vs
// DOUBLE, NULL aggregates), so the typed analytics mappers normalize through
// these helpers instead of type-asserting a single shape.

// asTime coerces a scanned value to time.Time; zero time for NULL or
// unexpected types.
func asTime(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		// DATE occasionally arrives as text (e.g. "2017-09-01").
		if parsed, err := time.Parse("2006-01-02", t); err == nil {
			return parsed
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// asFloat coerces a scanned value to float64; 0 for NULL.
func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case int:
		return float64(n)
	case uint64:
		return float64(n)
	case string:
		if parsed, err := strconv.ParseFloat(n, 64); err == nil {
			return parsed
		}
	}
	return 0
}

// asString coerces a scanned value to string; empty for NULL.
func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// asInt coerces a scanned value to int64; 0 for NULL.
func asInt(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case int16:
		return int64(n)
	case int8:
		return int64(n)
	case int:
		return int64(n)
	case uint64:
		return int64(n)
	case uint32:
		return int64(n)
	case float64:
		return int64(n)
	case float32:
		return int64(n)
	case string:
		if parsed, err := strconv.ParseInt(n, 10, 64); err == nil {
			return parsed
		}
	}
	return 0
}
