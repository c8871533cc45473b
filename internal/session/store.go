// Cocktail Cache - AI Bartender and Cabinet Analytics
// Copyright 2026 darth-dodo
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/darth-dodo/cocktail-cache

package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/darth-dodo/cocktail-cache/internal/metrics"
)

// Sentinel errors surfaced to callers. A missing session is an expected
// user-facing condition (the sweeper may have evicted it), not a crash.
var (
	// ErrNotFound indicates the session id is unknown or already swept.
	ErrNotFound = errors.New("session not found")

	// ErrRunInFlight indicates a pipeline run is already executing for
	// the session. Stage transitions are not merge-safe under concurrent
	// writers, so a second run is rejected as a conflict.
	ErrRunInFlight = errors.New("pipeline run already in flight for session")
)

// Store is the single-process in-memory session store. All mutation flows
// through Update; Get returns defensive copies.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	clock    Clock
	ttl      time.Duration
}

// NewStore creates a store with the given clock and session TTL.
func NewStore(clock Clock, ttl time.Duration) *Store {
	if clock == nil {
		clock = SystemClock{}
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{
		sessions: make(map[string]*Session),
		clock:    clock,
		ttl:      ttl,
	}
}

// Create allocates a new session with a generated id.
func (st *Store) Create(resources []string, prefs Preferences) *Session {
	now := st.clock.Now()
	sess := &Session{
		ID:           uuid.New().String(),
		CreatedAt:    now,
		LastActiveAt: now,
		Resources:    append([]string(nil), resources...),
		Preferences:  prefs,
		Pipeline:     PipelineState{Stage: StageReceivedInput},
	}

	st.mu.Lock()
	st.sessions[sess.ID] = sess
	metrics.SessionsActive.Set(float64(len(st.sessions)))
	st.mu.Unlock()

	return sess.clone()
}

// Get returns a copy of the session, or ErrNotFound.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	sess, ok := st.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess.clone(), nil
}

// Update applies the mutator to the session under the store lock and bumps
// LastActiveAt. This is the only mutation path; the mutator must not block.
func (st *Store) Update(id string, mutate func(*Session) error) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, ok := st.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if err := mutate(sess); err != nil {
		return err
	}
	sess.LastActiveAt = st.clock.Now()
	return nil
}

// Touch bumps LastActiveAt without other mutation.
func (st *Store) Touch(id string) error {
	return st.Update(id, func(*Session) error { return nil })
}

// Delete removes the session. Deleting an unknown id is a no-op.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	metrics.SessionsActive.Set(float64(len(st.sessions)))
	st.mu.Unlock()
}

// List returns the ids of all live sessions.
func (st *Store) List() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()

	ids := make([]string, 0, len(st.sessions))
	for id := range st.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// AcquireRun claims the session's single pipeline slot. Returns
// ErrRunInFlight when a run is already executing, ErrNotFound for unknown
// sessions. Callers must pair with ReleaseRun.
func (st *Store) AcquireRun(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, ok := st.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if sess.inflight {
		return ErrRunInFlight
	}
	sess.inflight = true
	return nil
}

// ReleaseRun frees the session's pipeline slot. Safe on swept sessions.
func (st *Store) ReleaseRun(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if sess, ok := st.sessions[id]; ok {
		sess.inflight = false
	}
}

// SweepExpired deletes sessions idle strictly longer than the TTL and
// returns the number deleted. A session whose age equals the TTL exactly
// survives; it is evicted on the next sweep after one more idle tick.
func (st *Store) SweepExpired() int {
	now := st.clock.Now()

	st.mu.Lock()
	defer st.mu.Unlock()

	deleted := 0
	for id, sess := range st.sessions {
		if now.Sub(sess.LastActiveAt) > st.ttl {
			delete(st.sessions, id)
			deleted++
		}
	}
	if deleted > 0 {
		metrics.SessionsSweptTotal.Add(float64(deleted))
		metrics.SessionsActive.Set(float64(len(st.sessions)))
	}
	return deleted
}

// TTL returns the configured session time-to-live.
func (st *Store) TTL() time.Duration {
	return st.ttl
}
