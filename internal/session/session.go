// Cocktail Cache - AI Bartender and Cabinet Analytics
// Copyright 2026 darth-dodo
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/darth-dodo/cocktail-cache

// Package session holds per-user pipeline state with a TTL-bound lifecycle.
//
// Sessions live in a single-process in-memory store. All mutation goes
// through Store.Update, and the store enforces at most one in-flight
// pipeline run per session via an explicit acquire/release guard.
package session

import (
	"fmt"
	"time"
)

// Stage is the pipeline progress marker. Stages only advance forward;
// StageFailed is terminal.
type Stage int

const (
	StageReceivedInput Stage = iota
	StageAnalyzed
	StageSelected
	StageGenerating
	StageComplete
	StageFailed
)

// String returns the wire name of the stage.
func (s Stage) String() string {
	switch s {
	case StageReceivedInput:
		return "received_input"
	case StageAnalyzed:
		return "analyzed"
	case StageSelected:
		return "selected"
	case StageGenerating:
		return "generating"
	case StageComplete:
		return "complete"
	case StageFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Terminal reports whether no further transitions are allowed.
func (s Stage) Terminal() bool {
	return s == StageComplete || s == StageFailed
}

// MarshalJSON encodes the stage as its string name.
func (s Stage) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Preferences captures the caller's soft constraints for drink selection
// and generation. The pipeline never branches on Mood content; it is passed
// opaquely to the generative stage.
type Preferences struct {
	Mood    string `json:"mood,omitempty"`
	Skill   string `json:"skill,omitempty"`
	Variant string `json:"variant,omitempty"`
}

// StageOutput is the captured outcome of one generation sub-stage:
// either a value or an error string, never both.
type StageOutput struct {
	Value interface{} `json:"value,omitempty"`
	Err   string      `json:"error,omitempty"`
}

// PipelineState tracks a single pipeline run inside a session.
type PipelineState struct {
	Stage        Stage                  `json:"stage"`
	CandidateIDs []string               `json:"candidate_ids,omitempty"`
	SelectedID   string                 `json:"selected_id,omitempty"`
	Outputs      map[string]StageOutput `json:"outputs,omitempty"`
	Err          string                 `json:"error,omitempty"`
}

// Advance moves the state to the given stage. It returns an error when the
// transition would move backwards or leave a terminal stage; stage
// transitions are not merge-safe, so a violation here means a logic bug.
func (p *PipelineState) Advance(to Stage) error {
	if p.Stage.Terminal() {
		return fmt.Errorf("stage %s is terminal", p.Stage)
	}
	if to != StageFailed && to <= p.Stage {
		return fmt.Errorf("stage cannot move from %s to %s", p.Stage, to)
	}
	p.Stage = to
	return nil
}

// Fail marks the run as failed with the given error. Failed is terminal.
func (p *PipelineState) Fail(err error) {
	p.Stage = StageFailed
	p.Err = err.Error()
}

// Session is one user's cabinet, preferences and pipeline state.
type Session struct {
	ID           string        `json:"id"`
	CreatedAt    time.Time     `json:"created_at"`
	LastActiveAt time.Time     `json:"last_active_at"`
	Resources    []string      `json:"resources"`
	Preferences  Preferences   `json:"preferences"`
	RejectedIDs  []string      `json:"rejected_ids,omitempty"`
	MadeIDs      []string      `json:"made_ids,omitempty"`
	Pipeline     PipelineState `json:"pipeline"`

	// inflight guards against concurrent pipeline runs on this session.
	// Managed exclusively by Store.AcquireRun / Store.ReleaseRun.
	inflight bool
}

// Rejected returns the rejected ids as a set for candidate exclusion.
func (s *Session) Rejected() map[string]struct{} {
	set := make(map[string]struct{}, len(s.RejectedIDs))
	for _, id := range s.RejectedIDs {
		set[id] = struct{}{}
	}
	return set
}

// Reject appends an item id to the rejected set. The set grows
// monotonically; duplicates are ignored.
func (s *Session) Reject(itemID string) {
	for _, id := range s.RejectedIDs {
		if id == itemID {
			return
		}
	}
	s.RejectedIDs = append(s.RejectedIDs, itemID)
}

// clone returns a deep copy safe to hand outside the store's lock.
func (s *Session) clone() *Session {
	out := *s
	out.Resources = append([]string(nil), s.Resources...)
	out.RejectedIDs = append([]string(nil), s.RejectedIDs...)
	out.MadeIDs = append([]string(nil), s.MadeIDs...)
	out.Pipeline.CandidateIDs = append([]string(nil), s.Pipeline.CandidateIDs...)
	if s.Pipeline.Outputs != nil {
		out.Pipeline.Outputs = make(map[string]StageOutput, len(s.Pipeline.Outputs))
		for k, v := range s.Pipeline.Outputs {
			out.Pipeline.Outputs[k] = v
		}
	}
	return &out
}
