// Cocktail Cache - AI Bartender and Cabinet Analytics
// Copyright 2026 darth-dodo
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/darth-dodo/cocktail-cache

package session

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper periodically evicts expired sessions from the store. It runs as a
// supervised service under the maintenance supervisor.
//
// Sweeping is best-effort maintenance: a session may legitimately be touched
// a moment before the sweep deletes it, so "session not found" afterwards is
// an expected condition for callers, not an error in the sweeper.
type Sweeper struct {
	store    *Store
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewSweeper creates a sweeper for the store with the given sweep interval.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSweeper(store *Store, interval time.Duration, logger zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Sweeper{
		store:    store,
		interval: interval,
		logger:   logger.With().Str("service", "session-sweeper").Logger(),
		name:     "session-sweeper",
	}
}

// Serve implements the suture.Service interface.
func (s *Sweeper) Serve(ctx context.Context) error {
	s.logger.Info().
		Dur("interval", s.interval).
		Dur("ttl", s.store.TTL()).
		Msg("session sweeper starting")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("session sweeper shutting down")
			return ctx.Err()

		case <-ticker.C:
			if deleted := s.store.SweepExpired(); deleted > 0 {
				s.logger.Debug().
					Int("deleted", deleted).
					Int("remaining", s.store.Len()).
					Msg("swept expired sessions")
			}
		}
	}
}

// String returns the service name for supervisor logging.
func (s *Sweeper) String() string {
	return s.name
}
