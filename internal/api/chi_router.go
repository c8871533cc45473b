// Cocktail Cache - AI Bartender and Cabinet Analytics
// Copyright 2026 darth-dodo
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/darth-dodo/cocktail-cache

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router wires handlers and middleware into the HTTP routing table.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router from a handler and middleware factory.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		chiMiddleware: mw,
	}
}

// SetupChi configures all HTTP routes using the Chi router.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Global middleware stack, applied to all routes in order.
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	// Health endpoints with permissive rate limiting for monitoring.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// Pipeline endpoints. These call the generative capability, so the
	// per-client HTTP limit here is the first gate and the global
	// generation quota inside the pipeline is the second.
	r.Route("/api/v1/pipeline", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(PrometheusMetrics())

		r.Post("/", router.handler.StartPipeline)
		r.Post("/{sessionID}/continue", router.handler.ContinuePipeline)
	})

	// Session endpoints.
	r.Route("/api/v1/sessions", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(PrometheusMetrics())

		r.Get("/{sessionID}", router.handler.GetSession)
		r.Delete("/{sessionID}", router.handler.EndSession)
	})

	// Catalog is read-only static data.
	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(PrometheusMetrics())

		r.Get("/", router.handler.Catalog)
	})

	// Observability.
	r.Handle("/metrics", promhttp.Handler())

	return r
}
