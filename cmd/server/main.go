// Cocktail Cache - AI Bartender and Cabinet Analytics
// Copyright 2026 darth-dodo
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/darth-dodo/cocktail-cache

// Cocktail Cache server.
//
// Starts the drink recommendation service: loads the catalog, wires the
// matching engine, session store, rate limiter and generative capability
// into the pipeline orchestrator, and serves the HTTP API under a suture
// supervision tree.
//
// # Configuration
//
// Configuration is layered: built-in defaults, an optional YAML config file
// (CONFIG_PATH or ./config.yaml), then environment variables. See the
// config package for the full variable list. The generative provider needs
// ANTHROPIC_API_KEY unless GENERATION_PROVIDER=static.
//
// # Usage
//
//	GENERATION_PROVIDER=static ./cocktail-cache      # no API key needed
//	ANTHROPIC_API_KEY=sk-... ./cocktail-cache        # Claude-backed
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/darth-dodo/cocktail-cache/internal/api"
	"github.com/darth-dodo/cocktail-cache/internal/catalog"
	"github.com/darth-dodo/cocktail-cache/internal/config"
	"github.com/darth-dodo/cocktail-cache/internal/generate"
	"github.com/darth-dodo/cocktail-cache/internal/logging"
	"github.com/darth-dodo/cocktail-cache/internal/pipeline"
	"github.com/darth-dodo/cocktail-cache/internal/ratelimit"
	"github.com/darth-dodo/cocktail-cache/internal/session"
	"github.com/darth-dodo/cocktail-cache/internal/supervisor"
	"github.com/darth-dodo/cocktail-cache/internal/supervisor/services"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("provider", cfg.Generation.Provider).
		Str("mode", cfg.Generation.Mode).
		Msg("Starting Cocktail Cache")

	// Catalog. Empty path loads the embedded default catalog.
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load drink catalog")
	}
	logging.Info().Int("items", cat.Len()).Msg("Catalog loaded")

	// Session store with TTL sweeping.
	store := session.NewStore(session.SystemClock{}, cfg.Session.TTL)

	// Global generation quota.
	limiter, err := ratelimit.New(ratelimit.Config{
		ExpensiveCalls:  cfg.RateLimit.ExpensiveCalls,
		ExpensiveWindow: cfg.RateLimit.ExpensiveWindow,
		CheapCalls:      cfg.RateLimit.CheapCalls,
		CheapWindow:     cfg.RateLimit.CheapWindow,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create rate limiter")
	}

	// Generative capability.
	gen, err := newGenerator(cfg.Generation)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create generator")
	}

	// Pipeline orchestrator.
	orch, err := pipeline.New(cat, store, gen, limiter, pipeline.Config{
		Mode:         cfg.Generation.Mode,
		PhaseTimeout: cfg.Generation.PhaseTimeout,
	}, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create pipeline orchestrator")
	}

	// HTTP routing.
	handler := api.NewHandler(orch, cat, store, version)
	router := api.NewRouter(handler, api.NewChiMiddleware(&api.ChiMiddlewareConfig{
		CORSAllowedOrigins:   cfg.Server.CORSOrigins,
		CORSAllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		CORSAllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
		CORSAllowCredentials: false,
		CORSMaxAge:           86400,
		RateLimitRequests:    cfg.Server.RateLimitReqs,
		RateLimitWindow:      cfg.Server.RateLimitWindow,
	}))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  2 * cfg.Server.Timeout,
	}

	// Supervision tree: maintenance layer (session sweeper) and API layer
	// (HTTP server) restart independently on failure.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddMaintenanceService(session.NewSweeper(store, cfg.Session.SweepInterval, logging.Logger()))
	logging.Info().Dur("interval", cfg.Session.SweepInterval).Msg("Session sweeper service added")

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Signal handling.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain until the supervisor has fully stopped.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Application stopped gracefully")
}

// newGenerator selects the generative backend from config.
func newGenerator(cfg config.GenerationConfig) (generate.Generator, error) {
	switch cfg.Provider {
	case "static":
		return generate.NewStaticGenerator(), nil
	case "anthropic":
		return generate.NewClaudeGenerator(generate.ClaudeConfig{
			APIKey:                  cfg.APIKey,
			Model:                   cfg.Model,
			MaxTokens:               cfg.MaxTokens,
			Persona:                 cfg.Persona,
			BreakerTimeout:          cfg.BreakerCooldown,
			BreakerFailureThreshold: uint32(cfg.BreakerThreshold),
		})
	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.Provider)
	}
}
