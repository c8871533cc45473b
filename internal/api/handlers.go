// Cocktail Cache - AI Bartender and Cabinet Analytics
// Copyright 2026 darth-dodo
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/darth-dodo/cocktail-cache

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/darth-dodo/cocktail-cache/internal/catalog"
	"github.com/darth-dodo/cocktail-cache/internal/generate"
	"github.com/darth-dodo/cocktail-cache/internal/logging"
	"github.com/darth-dodo/cocktail-cache/internal/pipeline"
	"github.com/darth-dodo/cocktail-cache/internal/ratelimit"
	"github.com/darth-dodo/cocktail-cache/internal/session"
)

// Handler holds dependencies for all HTTP handlers.
type Handler struct {
	orchestrator *pipeline.Orchestrator
	catalog      *catalog.Catalog
	store        *session.Store
	startTime    time.Time
	version      string
}

// NewHandler creates a handler with the given dependencies.
func NewHandler(orch *pipeline.Orchestrator, cat *catalog.Catalog, store *session.Store, version string) *Handler {
	return &Handler{
		orchestrator: orch,
		catalog:      cat,
		store:        store,
		startTime:    time.Now(),
		version:      version,
	}
}

// StartPipelineRequest is the body for POST /api/v1/pipeline.
type StartPipelineRequest struct {
	Resources []string `json:"resources" validate:"omitempty,dive,resource_id"`
	Mood      string   `json:"mood,omitempty" validate:"omitempty,max=500"`
	Skill     string   `json:"skill,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
	Variant   string   `json:"variant,omitempty" validate:"omitempty,oneof=standard alternate"`
}

// ContinuePipelineRequest is the body for POST /api/v1/pipeline/{sessionID}/continue.
type ContinuePipelineRequest struct {
	Action string `json:"action" validate:"required,oneof=another made"`
	ItemID string `json:"item_id,omitempty" validate:"omitempty,resource_id"`
}

// StartPipeline runs the full recommendation pipeline for a new session.
//
// Method: POST
// Path: /api/v1/pipeline
//
// Response:
//   - 200: Pipeline completed, recommendation in data
//   - 400: Malformed body or empty cabinet
//   - 404: No feasible drinks for the cabinet
//   - 429: Global generation quota exhausted
//   - 502: Generation failed or timed out
func (h *Handler) StartPipeline(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req StartPipelineRequest
	if apiErr := decodeBody(r, &req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	result, err := h.orchestrator.Start(r.Context(), req.Resources, session.Preferences{
		Mood:    req.Mood,
		Skill:   req.Skill,
		Variant: req.Variant,
	})
	if err != nil {
		h.respondPipelineError(w, err)
		return
	}

	respondData(w, http.StatusOK, result, start)
}

// ContinuePipeline resumes an existing session with a follow-up action.
//
// Method: POST
// Path: /api/v1/pipeline/{sessionID}/continue
//
// Actions:
//   - "another": reject the current drink and rerun the pipeline
//   - "made": record the drink as made, no generation
//
// Response:
//   - 200: Action applied
//   - 400: Unknown action or malformed body
//   - 404: Unknown session or item
//   - 409: A run is already in flight for this session
//   - 429: Global generation quota exhausted
//   - 502: Generation failed or timed out
func (h *Handler) ContinuePipeline(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Session ID required", nil)
		return
	}

	var req ContinuePipelineRequest
	if apiErr := decodeBody(r, &req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	result, err := h.orchestrator.Continue(r.Context(), sessionID, req.Action, req.ItemID)
	if err != nil {
		h.respondPipelineError(w, err)
		return
	}

	respondData(w, http.StatusOK, result, start)
}

// GetSession returns the current state of a session.
//
// Method: GET
// Path: /api/v1/sessions/{sessionID}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	sessionID := chi.URLParam(r, "sessionID")
	summary, err := h.orchestrator.GetSession(r.Context(), sessionID)
	if err != nil {
		h.respondPipelineError(w, err)
		return
	}

	respondData(w, http.StatusOK, summary, start)
}

// EndSession deletes a session. Idempotent.
//
// Method: DELETE
// Path: /api/v1/sessions/{sessionID}
func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	sessionID := chi.URLParam(r, "sessionID")
	if err := h.orchestrator.EndSession(r.Context(), sessionID); err != nil {
		h.respondPipelineError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]interface{}{"ended": true}, start)
}

// Catalog returns the full drink catalog.
//
// Method: GET
// Path: /api/v1/catalog
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondData(w, http.StatusOK, map[string]interface{}{
		"items":     h.catalog.Items(),
		"resources": h.catalog.Resources(),
	}, start)
}

// HealthLive is the liveness probe. Always returns 200 while the process
// is serving requests.
//
// Method: GET
// Path: /api/v1/health/live
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, map[string]interface{}{"status": "alive"}, time.Now())
}

// HealthReady is the readiness probe. Reports catalog size, active session
// count and uptime.
//
// Method: GET
// Path: /api/v1/health/ready
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.catalog == nil || h.catalog.Len() == 0 {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_ERROR", "Catalog not loaded", nil)
		return
	}

	respondData(w, http.StatusOK, map[string]interface{}{
		"status":          "ready",
		"version":         h.version,
		"catalog_items":   h.catalog.Len(),
		"active_sessions": h.store.Len(),
		"uptime_seconds":  int64(time.Since(h.startTime).Seconds()),
	}, start)
}

// respondPipelineError maps the pipeline error taxonomy onto HTTP statuses
// and the API error codes documented on models.APIError.
func (h *Handler) respondPipelineError(w http.ResponseWriter, err error) {
	var validationErr *pipeline.ValidationError
	var notFoundErr *pipeline.NotFoundError
	var genErr *generate.GenerationError

	switch {
	case errors.As(err, &validationErr):
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", validationErr.Error(), nil)
	case errors.As(err, &notFoundErr):
		respondError(w, http.StatusNotFound, "NOT_FOUND", notFoundErr.Error(), nil)
	case errors.Is(err, session.ErrRunInFlight):
		respondError(w, http.StatusConflict, "CONFLICT", "A pipeline run is already in flight for this session", nil)
	case errors.Is(err, ratelimit.ErrRateLimited):
		respondError(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Generation quota exhausted, retry later", nil)
	case errors.As(err, &genErr):
		respondError(w, http.StatusBadGateway, "GENERATION_FAILED", "Drink generation failed: "+genErr.SubStage, err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		respondError(w, http.StatusBadGateway, "GENERATION_FAILED", "Pipeline deadline exceeded", err)
	default:
		logging.Error().Err(err).Msg("Unclassified pipeline error")
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", err)
	}
}
