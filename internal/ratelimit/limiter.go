// Cocktail Cache - AI Bartender and Cabinet Analytics
// Copyright 2026 darth-dodo
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/darth-dodo/cocktail-cache

// Package ratelimit implements the global tiered limiter guarding the
// generative capability.
//
// The limiter protects a shared quota, not per-client fairness: it is
// deliberately not keyed on caller identity, so no per-user tracking exists.
// The default policy blocks the caller until capacity frees; Allow offers a
// fail-fast variant.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/darth-dodo/cocktail-cache/internal/metrics"
)

// ErrRateLimited indicates the global quota is exhausted (fail-fast path).
var ErrRateLimited = errors.New("rate limit exceeded")

// Tier selects which quota a call draws from.
type Tier int

const (
	// TierCheap covers lightweight deterministic-adjacent calls.
	TierCheap Tier = iota

	// TierExpensive covers full generation pipeline calls.
	TierExpensive
)

// String returns the tier's metric label.
func (t Tier) String() string {
	if t == TierExpensive {
		return "expensive"
	}
	return "cheap"
}

// Config sizes the two quota tiers as calls-per-window.
type Config struct {
	ExpensiveCalls  int
	ExpensiveWindow time.Duration
	CheapCalls      int
	CheapWindow     time.Duration
}

// DefaultConfig returns production defaults: 10 generation runs per minute
// and 60 cheap calls per minute.
func DefaultConfig() Config {
	return Config{
		ExpensiveCalls:  10,
		ExpensiveWindow: time.Minute,
		CheapCalls:      60,
		CheapWindow:     time.Minute,
	}
}

// Validate checks the configuration for usable values.
func (c Config) Validate() error {
	if c.ExpensiveCalls <= 0 || c.CheapCalls <= 0 {
		return fmt.Errorf("rate limit call counts must be positive")
	}
	if c.ExpensiveWindow <= 0 || c.CheapWindow <= 0 {
		return fmt.Errorf("rate limit windows must be positive")
	}
	return nil
}

// Limiter is the global two-tier limiter. Safe for concurrent use.
type Limiter struct {
	expensive *rate.Limiter
	cheap     *rate.Limiter
}

// New creates a limiter from the config. Each tier refills continuously at
// calls/window with a burst of the full window allowance.
func New(cfg Config) (*Limiter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rate limit config: %w", err)
	}

	return &Limiter{
		expensive: rate.NewLimiter(rate.Every(cfg.ExpensiveWindow/time.Duration(cfg.ExpensiveCalls)), cfg.ExpensiveCalls),
		cheap:     rate.NewLimiter(rate.Every(cfg.CheapWindow/time.Duration(cfg.CheapCalls)), cfg.CheapCalls),
	}, nil
}

// Wait blocks until the tier has capacity or the context is done. This is
// the default policy for quota protection.
func (l *Limiter) Wait(ctx context.Context, tier Tier) error {
	start := time.Now()
	err := l.limiter(tier).Wait(ctx)
	metrics.RateLimitWaitSeconds.WithLabelValues(tier.String()).Observe(time.Since(start).Seconds())
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("rate limiter wait: %w", ctx.Err())
		}
		// Wait refuses when the required delay would exceed the context
		// deadline; surface that as quota exhaustion.
		metrics.RateLimitRejectedTotal.WithLabelValues(tier.String()).Inc()
		return fmt.Errorf("rate limiter wait: %w", ErrRateLimited)
	}
	return nil
}

// Allow is the fail-fast variant: it consumes a token if one is available,
// otherwise returns ErrRateLimited immediately.
func (l *Limiter) Allow(tier Tier) error {
	if !l.limiter(tier).Allow() {
		metrics.RateLimitRejectedTotal.WithLabelValues(tier.String()).Inc()
		return ErrRateLimited
	}
	return nil
}

func (l *Limiter) limiter(tier Tier) *rate.Limiter {
	if tier == TierExpensive {
		return l.expensive
	}
	return l.cheap
}
