// Cocktail Cache - AI Bartender and Cabinet Analytics
// Copyright 2026 darth-dodo
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/darth-dodo/cocktail-cache

package config

import (
	"fmt"
)

// Validate checks the full configuration and returns the first problem
// found. Called by LoadWithKoanf after all layers are merged.
func (c *Config) Validate() error {
	if err := c.Server.validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Session.validate(); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	if err := c.RateLimit.validate(); err != nil {
		return fmt.Errorf("rate_limit: %w", err)
	}
	if err := c.Generation.validate(); err != nil {
		return fmt.Errorf("generation: %w", err)
	}
	if err := c.Logging.validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive, got %s", c.ShutdownTimeout)
	}
	if c.RateLimitReqs < 1 {
		return fmt.Errorf("rate_limit_reqs must be at least 1, got %d", c.RateLimitReqs)
	}
	if c.RateLimitWindow <= 0 {
		return fmt.Errorf("rate_limit_window must be positive, got %s", c.RateLimitWindow)
	}
	return nil
}

func (c *SessionConfig) validate() error {
	if c.TTL <= 0 {
		return fmt.Errorf("ttl must be positive, got %s", c.TTL)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("sweep_interval must be positive, got %s", c.SweepInterval)
	}
	if c.SweepInterval > c.TTL {
		return fmt.Errorf("sweep_interval %s exceeds ttl %s", c.SweepInterval, c.TTL)
	}
	return nil
}

func (c *RateLimitConfig) validate() error {
	if c.ExpensiveCalls < 1 {
		return fmt.Errorf("expensive_calls must be at least 1, got %d", c.ExpensiveCalls)
	}
	if c.ExpensiveWindow <= 0 {
		return fmt.Errorf("expensive_window must be positive, got %s", c.ExpensiveWindow)
	}
	if c.CheapCalls < 1 {
		return fmt.Errorf("cheap_calls must be at least 1, got %d", c.CheapCalls)
	}
	if c.CheapWindow <= 0 {
		return fmt.Errorf("cheap_window must be positive, got %s", c.CheapWindow)
	}
	return nil
}

func (c *GenerationConfig) validate() error {
	switch c.Provider {
	case "anthropic", "static":
	default:
		return fmt.Errorf("provider must be anthropic or static, got %q", c.Provider)
	}
	switch c.Mode {
	case "full", "fast":
	default:
		return fmt.Errorf("mode must be full or fast, got %q", c.Mode)
	}
	if c.MaxTokens < 1 {
		return fmt.Errorf("max_tokens must be at least 1, got %d", c.MaxTokens)
	}
	if c.PhaseTimeout <= 0 {
		return fmt.Errorf("phase_timeout must be positive, got %s", c.PhaseTimeout)
	}
	if c.BreakerThreshold < 1 {
		return fmt.Errorf("breaker_threshold must be at least 1, got %d", c.BreakerThreshold)
	}
	if c.BreakerCooldown <= 0 {
		return fmt.Errorf("breaker_cooldown must be positive, got %s", c.BreakerCooldown)
	}
	return nil
}

func (c *LoggingConfig) validate() error {
	switch c.Level {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return fmt.Errorf("unknown log level %q", c.Level)
	}
	switch c.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log format must be json or console, got %q", c.Format)
	}
	return nil
}
