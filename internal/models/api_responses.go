// Olist Analytics - E-commerce Analytics Dashboard
// Copyright 2026 BDepanfilis
// SPDX-License-Identifier: MIT
// https://github.com/BDepanfilis/olist-analytics-public

// Package models defines the API response envelope and the analytics result
// types shared by the database and api packages.
package models

import "time"

// APIResponse is the envelope for all API responses. Status is "success" or
// "error"; Data carries the payload and Error is set only on failure.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability. QueryTimeMS is 0
// and Cached is true when the payload came from the result cache.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// Error codes for API responses.
const (
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeQuery      = "QUERY_ERROR"
	ErrCodeService    = "SERVICE_ERROR"
	ErrCodeNotFound   = "NOT_FOUND"
)

// APIError represents a structured error payload.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
