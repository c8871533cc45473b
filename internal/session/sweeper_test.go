// Cocktail Cache - AI Bartender and Cabinet Analytics
// Copyright 2026 darth-dodo
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/darth-dodo/cocktail-cache

package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSweeper_EvictsExpiredSessions(t *testing.T) {
	clock := NewFakeClock(time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))
	store := NewStore(clock, 30*time.Minute)
	sess := store.Create(nil, Preferences{})

	clock.Advance(31 * time.Minute)

	sweeper := NewSweeper(store, 5*time.Millisecond, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sweeper.Serve(ctx) }()

	deadline := time.After(time.Second)
	for {
		if _, err := store.Get(sess.ID); errors.Is(err, ErrNotFound) {
			break
		}
		select {
		case <-deadline:
			t.Fatal("sweeper never evicted the expired session")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want the context error", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve() did not return after cancellation")
	}
}

func TestSweeper_String(t *testing.T) {
	sweeper := NewSweeper(NewStore(nil, 0), 0, zerolog.Nop())
	if sweeper.String() != "session-sweeper" {
		t.Errorf("String() = %q, want session-sweeper", sweeper.String())
	}
}
