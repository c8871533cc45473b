// Cocktail Cache - AI Bartender and Cabinet Analytics
// Copyright 2026 darth-dodo
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/darth-dodo/cocktail-cache

package session

import (
	"errors"
	"testing"
	"time"
)

func newTestStore(t *testing.T, ttl time.Duration) (*Store, *FakeClock) {
	t.Helper()
	clock := NewFakeClock(time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))
	return NewStore(clock, ttl), clock
}

func TestStore_CreateAndGet(t *testing.T) {
	store, clock := newTestStore(t, time.Hour)

	sess := store.Create([]string{"gin", "lime"}, Preferences{Skill: "beginner"})
	if sess.ID == "" {
		t.Fatal("Create() returned empty id")
	}
	if !sess.CreatedAt.Equal(clock.Now()) || !sess.LastActiveAt.Equal(clock.Now()) {
		t.Error("timestamps not taken from the injected clock")
	}
	if sess.Pipeline.Stage != StageReceivedInput {
		t.Errorf("new session stage = %s, want received_input", sess.Pipeline.Stage)
	}

	got, err := store.Get(sess.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Preferences.Skill != "beginner" || len(got.Resources) != 2 {
		t.Errorf("Get() = %+v, want stored resources and preferences", got)
	}

	if _, err := store.Get("no-such-session"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	sess := store.Create([]string{"gin"}, Preferences{})

	got, err := store.Get(sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	got.Resources[0] = "tampered"
	got.RejectedIDs = append(got.RejectedIDs, "escaped")
	got.Pipeline.Stage = StageFailed

	fresh, err := store.Get(sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.Resources[0] != "gin" || len(fresh.RejectedIDs) != 0 || fresh.Pipeline.Stage != StageReceivedInput {
		t.Error("mutating a Get() result leaked back into the store")
	}
}

func TestStore_Update(t *testing.T) {
	store, clock := newTestStore(t, time.Hour)
	sess := store.Create(nil, Preferences{})
	created := clock.Now()

	clock.Advance(10 * time.Minute)
	err := store.Update(sess.ID, func(s *Session) error {
		s.Reject("manhattan")
		return s.Pipeline.Advance(StageAnalyzed)
	})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	got, _ := store.Get(sess.ID)
	if got.Pipeline.Stage != StageAnalyzed {
		t.Errorf("stage = %s, want analyzed", got.Pipeline.Stage)
	}
	if len(got.RejectedIDs) != 1 || got.RejectedIDs[0] != "manhattan" {
		t.Errorf("RejectedIDs = %v, want [manhattan]", got.RejectedIDs)
	}
	if !got.LastActiveAt.After(created) {
		t.Error("Update() did not bump LastActiveAt")
	}

	// A mutator error aborts the update without the activity bump.
	boom := errors.New("boom")
	clock.Advance(time.Minute)
	if err := store.Update(sess.ID, func(*Session) error { return boom }); !errors.Is(err, boom) {
		t.Errorf("Update() error = %v, want the mutator's error", err)
	}
	after, _ := store.Get(sess.ID)
	if !after.LastActiveAt.Equal(got.LastActiveAt) {
		t.Error("failed Update() bumped LastActiveAt")
	}

	if err := store.Update("no-such-session", func(*Session) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestStore_SweepExpired(t *testing.T) {
	ttl := 30 * time.Minute
	store, clock := newTestStore(t, ttl)

	old := store.Create(nil, Preferences{})
	clock.Advance(10 * time.Minute)
	fresh := store.Create(nil, Preferences{})

	// old is now 10 minutes idle, fresh just created; nothing expires.
	if n := store.SweepExpired(); n != 0 {
		t.Errorf("SweepExpired() = %d, want 0", n)
	}

	// Advance so old sits exactly at the TTL boundary. Equal does not
	// exceed, so it must survive.
	clock.Advance(ttl - 10*time.Minute)
	if n := store.SweepExpired(); n != 0 {
		t.Errorf("SweepExpired() at exact TTL = %d, want 0", n)
	}
	if _, err := store.Get(old.ID); err != nil {
		t.Error("session at exact TTL boundary was swept")
	}

	// One nanosecond past TTL evicts old but not fresh.
	clock.Advance(time.Nanosecond)
	if n := store.SweepExpired(); n != 1 {
		t.Errorf("SweepExpired() past TTL = %d, want 1", n)
	}
	if _, err := store.Get(old.ID); !errors.Is(err, ErrNotFound) {
		t.Error("expired session still present after sweep")
	}
	if _, err := store.Get(fresh.ID); err != nil {
		t.Error("unexpired session was swept")
	}
}

func TestStore_SweepSparesActiveSessions(t *testing.T) {
	ttl := 30 * time.Minute
	store, clock := newTestStore(t, ttl)
	sess := store.Create(nil, Preferences{})

	// Keep touching just before expiry; the session must never be swept.
	for i := 0; i < 3; i++ {
		clock.Advance(ttl)
		if err := store.Touch(sess.ID); err != nil {
			t.Fatalf("Touch() error: %v", err)
		}
		if n := store.SweepExpired(); n != 0 {
			t.Fatalf("sweep %d evicted an active session", i)
		}
	}
}

func TestStore_AcquireRun(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	sess := store.Create(nil, Preferences{})

	if err := store.AcquireRun(sess.ID); err != nil {
		t.Fatalf("AcquireRun() error: %v", err)
	}
	if err := store.AcquireRun(sess.ID); !errors.Is(err, ErrRunInFlight) {
		t.Errorf("second AcquireRun() error = %v, want ErrRunInFlight", err)
	}

	store.ReleaseRun(sess.ID)
	if err := store.AcquireRun(sess.ID); err != nil {
		t.Errorf("AcquireRun() after release error: %v", err)
	}

	if err := store.AcquireRun("no-such-session"); !errors.Is(err, ErrNotFound) {
		t.Errorf("AcquireRun(unknown) error = %v, want ErrNotFound", err)
	}
	// Releasing a swept or unknown session must not panic.
	store.ReleaseRun("no-such-session")
}

func TestStore_Delete(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	sess := store.Create(nil, Preferences{})

	store.Delete(sess.ID)
	if _, err := store.Get(sess.ID); !errors.Is(err, ErrNotFound) {
		t.Error("session still present after Delete()")
	}
	if store.Len() != 0 {
		t.Errorf("Len() = %d after delete, want 0", store.Len())
	}

	// Idempotent.
	store.Delete(sess.ID)
}

func TestPipelineState_Advance(t *testing.T) {
	tests := []struct {
		name    string
		from    Stage
		to      Stage
		wantErr bool
	}{
		{"forward one step", StageReceivedInput, StageAnalyzed, false},
		{"forward skipping stages", StageReceivedInput, StageGenerating, false},
		{"to failed from any stage", StageSelected, StageFailed, false},
		{"same stage", StageAnalyzed, StageAnalyzed, true},
		{"backwards", StageSelected, StageAnalyzed, true},
		{"out of complete", StageComplete, StageFailed, true},
		{"out of failed", StageFailed, StageComplete, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &PipelineState{Stage: tt.from}
			err := p.Advance(tt.to)
			if (err != nil) != tt.wantErr {
				t.Errorf("Advance(%s -> %s) error = %v, wantErr %v", tt.from, tt.to, err, tt.wantErr)
			}
			if err == nil && p.Stage != tt.to {
				t.Errorf("stage after Advance = %s, want %s", p.Stage, tt.to)
			}
		})
	}
}

func TestSession_Reject(t *testing.T) {
	sess := &Session{}
	sess.Reject("manhattan")
	sess.Reject("negroni")
	sess.Reject("manhattan")

	if len(sess.RejectedIDs) != 2 {
		t.Errorf("RejectedIDs = %v, duplicates should collapse", sess.RejectedIDs)
	}
	rejected := sess.Rejected()
	if _, ok := rejected["manhattan"]; !ok {
		t.Error("Rejected() set missing manhattan")
	}
	if _, ok := rejected["negroni"]; !ok {
		t.Error("Rejected() set missing negroni")
	}
}

func TestStage_Strings(t *testing.T) {
	tests := []struct {
		stage Stage
		want  string
	}{
		{StageReceivedInput, "received_input"},
		{StageAnalyzed, "analyzed"},
		{StageSelected, "selected"},
		{StageGenerating, "generating"},
		{StageComplete, "complete"},
		{StageFailed, "failed"},
	}
	for _, tt := range tests {
		if got := tt.stage.String(); got != tt.want {
			t.Errorf("Stage(%d).String() = %q, want %q", int(tt.stage), got, tt.want)
		}
		data, err := tt.stage.MarshalJSON()
		if err != nil || string(data) != `"`+tt.want+`"` {
			t.Errorf("MarshalJSON() = %s, %v", data, err)
		}
	}
}
