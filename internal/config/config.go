// Cocktail Cache - AI Bartender and Cabinet Analytics
// Copyright 2026 darth-dodo
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/darth-dodo/cocktail-cache

package config

import (
	"time"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML config file, and environment variables (highest priority).
//
// Configuration Categories:
//
//  1. Server: HTTP listener settings (port, host, timeouts, CORS).
//  2. Catalog: Drink catalog source (embedded by default, file override).
//  3. Session: In-memory session store lifecycle (TTL, sweep interval).
//  4. RateLimit: Global two-tier quota for generation calls.
//  5. Generation: Generative provider, model, mode and circuit breaker.
//  6. Logging: Log level and output format.
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Catalog    CatalogConfig    `koanf:"catalog"`
	Session    SessionConfig    `koanf:"session"`
	RateLimit  RateLimitConfig  `koanf:"rate_limit"`
	Generation GenerationConfig `koanf:"generation"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_PORT: Listen port (default: 8097)
//   - HTTP_HOST: Bind address (default: 0.0.0.0)
//   - HTTP_TIMEOUT: Read/write timeout (default: 60s)
//   - CORS_ORIGINS: Comma-separated allowed origins (default: *)
//   - API_RATE_LIMIT_REQUESTS / API_RATE_LIMIT_WINDOW: Per-client HTTP
//     request throttle, distinct from the generation quota
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// CatalogConfig selects the drink catalog source. With an empty Path the
// embedded catalog ships with the binary; a path points at an external
// JSON file with the same schema.
type CatalogConfig struct {
	Path string `koanf:"path"`
}

// SessionConfig holds session store lifecycle settings.
//
// Environment Variables:
//   - SESSION_TTL: Idle lifetime before a session is swept (default: 1h)
//   - SESSION_SWEEP_INTERVAL: Sweep cadence (default: 5s)
type SessionConfig struct {
	TTL           time.Duration `koanf:"ttl"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// RateLimitConfig holds the global generation quota shared by all
// sessions. Expensive covers full pipeline runs; cheap covers lightweight
// single calls.
type RateLimitConfig struct {
	ExpensiveCalls  int           `koanf:"expensive_calls"`
	ExpensiveWindow time.Duration `koanf:"expensive_window"`
	CheapCalls      int           `koanf:"cheap_calls"`
	CheapWindow     time.Duration `koanf:"cheap_window"`
}

// GenerationConfig holds the generative capability settings.
//
// Provider selects the backing implementation:
//   - "anthropic": Claude via the official SDK (requires ANTHROPIC_API_KEY)
//   - "static": deterministic templated output, no network calls
//
// Mode selects the pipeline shape: "full" runs recipe and shopping
// sub-stages in parallel, "fast" runs the recipe alone.
type GenerationConfig struct {
	Provider         string        `koanf:"provider"`
	Mode             string        `koanf:"mode"`
	APIKey           string        `koanf:"api_key"`
	Model            string        `koanf:"model"`
	MaxTokens        int           `koanf:"max_tokens"`
	Persona          string        `koanf:"persona"`
	PhaseTimeout     time.Duration `koanf:"phase_timeout"`
	BreakerThreshold int           `koanf:"breaker_threshold"`
	BreakerCooldown  time.Duration `koanf:"breaker_cooldown"`
}

// LoggingConfig holds logging settings.
//
// Environment Variables:
//   - LOG_LEVEL: debug, info, warn, error (default: info)
//   - LOG_FORMAT: json or console (default: json)
//   - LOG_CALLER: Include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}
