// Cocktail Cache - AI Bartender and Cabinet Analytics
// Copyright 2026 darth-dodo
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/darth-dodo/cocktail-cache

package pipeline

import (
	"context"
	"fmt"
)

// subStage is one independent unit of the generation phase. Sub-stages must
// be safe to cancel mid-flight: no partial external side effects that need
// rolling back.
type subStage struct {
	name    string
	primary bool
	run     func(ctx context.Context) (interface{}, error)
}

// subStageResult captures one sub-stage's outcome: value or error, never
// propagated across sub-stages.
type subStageResult struct {
	name    string
	primary bool
	value   interface{}
	err     error
}

// runSubStages dispatches all sub-stages concurrently under the phase
// context and collects each outcome independently. One sub-stage's failure
// never aborts collection of another's result.
//
// When the phase deadline expires, sub-stages that have not settled are
// recorded with the context error; their goroutines unwind on their own and
// late results are discarded on arrival (the result channel is buffered, so
// nothing leaks).
func runSubStages(phaseCtx context.Context, stages []subStage) []subStageResult {
	type indexed struct {
		idx    int
		result subStageResult
	}

	resCh := make(chan indexed, len(stages))
	for i, stage := range stages {
		go func(idx int, st subStage) {
			value, err := st.run(phaseCtx)
			resCh <- indexed{idx: idx, result: subStageResult{
				name:    st.name,
				primary: st.primary,
				value:   value,
				err:     err,
			}}
		}(i, stage)
	}

	results := make([]subStageResult, len(stages))
	settled := make([]bool, len(stages))

	for range stages {
		select {
		case r := <-resCh:
			results[r.idx] = r.result
			settled[r.idx] = true

		case <-phaseCtx.Done():
			for i, stage := range stages {
				if !settled[i] {
					results[i] = subStageResult{
						name:    stage.name,
						primary: stage.primary,
						err:     fmt.Errorf("generation phase deadline exceeded: %w", phaseCtx.Err()),
					}
				}
			}
			return results
		}
	}

	return results
}
