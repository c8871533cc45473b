// Cocktail Cache - AI Bartender and Cabinet Analytics
// Copyright 2026 darth-dodo
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/darth-dodo/cocktail-cache

// Package models defines shared API response types.
package models

import "time"

// APIResponse is the standardized envelope used by all HTTP endpoints.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
type Metadata struct {
	Timestamp    time.Time `json:"timestamp"`
	ElapsedMS    int64     `json:"elapsed_ms,omitempty"`
	GenerationMS int64     `json:"generation_ms,omitempty"`
}

// APIError represents an error response with structured details.
//
// Error codes used by the pipeline API:
//   - VALIDATION_ERROR: malformed or empty required input
//   - NOT_FOUND: unknown session, unknown item, or zero feasible drinks
//   - GENERATION_FAILED: the generative capability errored or timed out
//   - RATE_LIMIT_EXCEEDED: the global generation quota is exhausted
//   - CONFLICT: a pipeline run is already in flight for the session
//   - INTERNAL_ERROR: unclassified failure
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
