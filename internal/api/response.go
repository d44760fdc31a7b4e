// Olist Analytics - E-commerce Analytics Dashboard
// Copyright 2026 BDepanfilis
// SPDX-License-Identifier: MIT
// https://github.com/BDepanfilis/olist-analytics-public

// Package api provides the HTTP surface of the dashboard: routing,
// middleware and JSON response handling.
package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/BDepanfilis/olist-analytics-public/internal/logging"
	"github.com/BDepanfilis/olist-analytics-public/internal/models"
)

// ResponseWriter writes responses in the standard envelope. It tracks the
// handler start time so query_time_ms reflects actual processing time.
type ResponseWriter struct {
	w         http.ResponseWriter
	r         *http.Request
	startTime time.Time
}

// NewResponseWriter creates a response writer for the given request.
func NewResponseWriter(w http.ResponseWriter, r *http.Request) *ResponseWriter {
	return &ResponseWriter{
		w:         w,
		r:         r,
		startTime: time.Now(),
	}
}

// Success writes a 200 response with the payload in the envelope.
func (rw *ResponseWriter) Success(data interface{}) {
	response := models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(rw.startTime).Milliseconds(),
		},
	}
	rw.writeJSON(http.StatusOK, response)
}

// Error writes an error response with the given status code.
func (rw *ResponseWriter) Error(statusCode int, code, message string) {
	rw.ErrorWithDetails(statusCode, code, message, nil)
}

// ErrorWithDetails writes an error response with additional details.
func (rw *ResponseWriter) ErrorWithDetails(statusCode int, code, message string, details map[string]interface{}) {
	response := models.APIResponse{
		Status: "error",
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(rw.startTime).Milliseconds(),
		},
	}
	rw.writeJSON(statusCode, response)
}

// BadRequest writes a 400 validation error.
func (rw *ResponseWriter) BadRequest(message string) {
	rw.Error(http.StatusBadRequest, models.ErrCodeValidation, message)
}

// NotFound writes a 404 error.
func (rw *ResponseWriter) NotFound(message string) {
	rw.Error(http.StatusNotFound, models.ErrCodeNotFound, message)
}

// QueryError writes a 500 for a failed analytics query.
func (rw *ResponseWriter) QueryError(err error) {
	logging.CtxErr(rw.r.Context(), err).
		Str("path", rw.r.URL.Path).
		Msg("analytics query failed")
	rw.Error(http.StatusInternalServerError, models.ErrCodeQuery, "analytics query failed")
}

// ServiceUnavailable writes a 503 error.
func (rw *ResponseWriter) ServiceUnavailable(message string) {
	rw.Error(http.StatusServiceUnavailable, models.ErrCodeService, message)
}

func (rw *ResponseWriter) writeJSON(statusCode int, response models.APIResponse) {
	rw.w.Header().Set("Content-Type", "application/json")
	rw.w.WriteHeader(statusCode)

	if err := json.NewEncoder(rw.w).Encode(response); err != nil {
		logging.CtxErr(rw.r.Context(), err).
			Str("path", rw.r.URL.Path).
			Msg("failed to encode response")
	}
}
