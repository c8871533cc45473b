// Cocktail Cache - AI Bartender and Cabinet Analytics
// Copyright 2026 darth-dodo
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/darth-dodo/cocktail-cache

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestRunSubStages_AllSettle(t *testing.T) {
	stages := []subStage{
		{
			name:    "primary",
			primary: true,
			run: func(context.Context) (interface{}, error) {
				return "primary-value", nil
			},
		},
		{
			name: "secondary",
			run: func(context.Context) (interface{}, error) {
				return "secondary-value", nil
			},
		},
	}

	results := runSubStages(context.Background(), stages)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	// Results keep the dispatch order regardless of completion order.
	if results[0].name != "primary" || results[0].value != "primary-value" || !results[0].primary {
		t.Errorf("results[0] = %+v, want the primary outcome", results[0])
	}
	if results[1].name != "secondary" || results[1].value != "secondary-value" || results[1].primary {
		t.Errorf("results[1] = %+v, want the secondary outcome", results[1])
	}
}

func TestRunSubStages_FailuresAreIndependent(t *testing.T) {
	boom := fmt.Errorf("boom")
	stages := []subStage{
		{
			name:    "failing",
			primary: true,
			run: func(context.Context) (interface{}, error) {
				return nil, boom
			},
		},
		{
			name: "succeeding",
			run: func(context.Context) (interface{}, error) {
				return 42, nil
			},
		},
	}

	results := runSubStages(context.Background(), stages)
	if !errors.Is(results[0].err, boom) {
		t.Errorf("failing stage err = %v, want boom", results[0].err)
	}
	if results[1].err != nil || results[1].value != 42 {
		t.Errorf("succeeding stage = %+v, one failure must not taint the other", results[1])
	}
}

func TestRunSubStages_DeadlineDiscardsLateResults(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	stages := []subStage{
		{
			name:    "fast",
			primary: true,
			run: func(context.Context) (interface{}, error) {
				return "done", nil
			},
		},
		{
			// Ignores cancellation and outlives the phase; its late
			// result lands in the buffered channel and is dropped.
			name: "slow",
			run: func(context.Context) (interface{}, error) {
				time.Sleep(200 * time.Millisecond)
				return "late", nil
			},
		},
	}

	start := time.Now()
	results := runSubStages(ctx, stages)
	elapsed := time.Since(start)

	if elapsed >= 200*time.Millisecond {
		t.Errorf("runSubStages took %v, want return at the deadline", elapsed)
	}
	if results[0].err != nil || results[0].value != "done" {
		t.Errorf("fast stage = %+v, want its settled value", results[0])
	}
	if results[1].err == nil || !errors.Is(results[1].err, context.DeadlineExceeded) {
		t.Errorf("slow stage err = %v, want the phase deadline error", results[1].err)
	}
	if results[1].value != nil {
		t.Errorf("slow stage value = %v, late results must be discarded", results[1].value)
	}
}

func TestRunSubStages_Empty(t *testing.T) {
	if results := runSubStages(context.Background(), nil); len(results) != 0 {
		t.Errorf("runSubStages(nil) = %v, want empty", results)
	}
}
