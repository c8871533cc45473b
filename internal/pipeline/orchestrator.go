// Cocktail Cache - AI Bartender and Cabinet Analytics
// Copyright 2026 darth-dodo
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/darth-dodo/cocktail-cache

// Package pipeline implements the recommendation pipeline orchestrator.
//
// A run walks the session through a forward-only state machine:
//
//	received_input -> analyzed -> selected -> generating -> complete
//
// with failed as the terminal error state. The deterministic phases
// (matching, ranking, selection) never suspend; suspension happens only at
// calls into the generative capability, which are dispatched concurrently
// by the coordinator under a shared deadline. All session mutation flows
// through the session store's Update, and the store's run guard keeps at
// most one pipeline in flight per session.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/darth-dodo/cocktail-cache/internal/cache"
	"github.com/darth-dodo/cocktail-cache/internal/catalog"
	"github.com/darth-dodo/cocktail-cache/internal/generate"
	"github.com/darth-dodo/cocktail-cache/internal/logging"
	"github.com/darth-dodo/cocktail-cache/internal/matching"
	"github.com/darth-dodo/cocktail-cache/internal/metrics"
	"github.com/darth-dodo/cocktail-cache/internal/ratelimit"
	"github.com/darth-dodo/cocktail-cache/internal/session"
)

// Sub-stage names used as keys in PipelineState.Outputs.
const (
	subStageRecipe   = "recipe"
	subStageShopping = "shopping"
)

// Continue actions accepted by the pipeline API.
const (
	ActionAnother = "another"
	ActionMade    = "made"
)

// Generation modes. Full runs the recipe and shopping sub-stages in
// parallel; fast runs the recipe sub-stage alone. The state machine shape
// is identical in both.
const (
	ModeFull = "full"
	ModeFast = "fast"
)

// Config tunes the orchestrator.
type Config struct {
	// Mode selects full or fast generation. Default: full.
	Mode string

	// PhaseTimeout bounds the whole generation phase. Default: 30s.
	PhaseTimeout time.Duration

	// AllowEmptyCabinet permits starting a pipeline with no resources.
	// The run then fails at the analysis stage with zero candidates
	// rather than at validation, which lets callers use the ranking
	// output as a starter-kit recommender.
	AllowEmptyCabinet bool

	// CacheSize and CacheTTL size the recipe cache. Zero values take the
	// cache package defaults. Recipes are cached only for mood-free
	// requests; a mood personalizes the output beyond reuse.
	CacheSize int
	CacheTTL  time.Duration
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch c.Mode {
	case "", ModeFull, ModeFast:
	default:
		return fmt.Errorf("unknown generation mode %q", c.Mode)
	}
	if c.PhaseTimeout < 0 {
		return fmt.Errorf("phase timeout must not be negative")
	}
	return nil
}

// Orchestrator sequences pipeline runs over the shared catalog, session
// store, rate limiter and generative capability.
type Orchestrator struct {
	catalog *catalog.Catalog
	store   *session.Store
	gen     generate.Generator
	limiter *ratelimit.Limiter
	recipes *cache.LRU[*generate.RecipeResult]
	cfg     Config
	logger  zerolog.Logger
}

// New creates an orchestrator.
func New(cat *catalog.Catalog, store *session.Store, gen generate.Generator, limiter *ratelimit.Limiter, cfg Config, logger zerolog.Logger) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeFull
	}
	if cfg.PhaseTimeout == 0 {
		cfg.PhaseTimeout = 30 * time.Second
	}

	return &Orchestrator{
		catalog: cat,
		store:   store,
		gen:     gen,
		limiter: limiter,
		recipes: cache.NewLRU[*generate.RecipeResult](cfg.CacheSize, cfg.CacheTTL),
		cfg:     cfg,
		logger:  logger.With().Str("component", "pipeline").Logger(),
	}, nil
}

// RunResult is the caller-facing outcome of a completed pipeline run.
type RunResult struct {
	SessionID    string                   `json:"session_id"`
	Stage        session.Stage            `json:"stage"`
	Item         *catalog.Item            `json:"item,omitempty"`
	Recipe       *generate.RecipeResult   `json:"recipe,omitempty"`
	Shopping     *generate.ShoppingResult `json:"shopping,omitempty"`
	CandidateIDs []string                 `json:"candidate_ids,omitempty"`
	Ranked       []matching.UnlockScore   `json:"ranked_missing,omitempty"`
}

// SessionSummary is the read-only session view served by GetSession.
type SessionSummary struct {
	ID           string              `json:"id"`
	CreatedAt    time.Time           `json:"created_at"`
	LastActiveAt time.Time           `json:"last_active_at"`
	Resources    []string            `json:"resources"`
	Preferences  session.Preferences `json:"preferences"`
	RejectedIDs  []string            `json:"rejected_ids,omitempty"`
	MadeIDs      []string            `json:"made_ids,omitempty"`
	Stage        session.Stage       `json:"stage"`
	SelectedID   string              `json:"selected_id,omitempty"`
	CandidateIDs []string            `json:"candidate_ids,omitempty"`
	Err          string              `json:"error,omitempty"`
}

// Start creates a session for the cabinet and runs the pipeline. This is an
// expensive operation: it waits on the global generation quota before the
// run begins.
func (o *Orchestrator) Start(ctx context.Context, resources []string, prefs session.Preferences) (*RunResult, error) {
	sess := o.store.Create(resources, prefs)
	ctx = logging.ContextWithSessionID(ctx, sess.ID)

	if err := o.store.AcquireRun(sess.ID); err != nil {
		return nil, o.mapStoreErr(err)
	}
	defer o.store.ReleaseRun(sess.ID)

	if err := o.limiter.Wait(ctx, ratelimit.TierExpensive); err != nil {
		return nil, err
	}

	return o.run(ctx, sess.ID)
}

// Continue resumes a session. ActionAnother rejects the previously selected
// drink and reruns the pipeline from scratch; ActionMade records the drink
// as made without any generation.
func (o *Orchestrator) Continue(ctx context.Context, sessionID, action, itemID string) (*RunResult, error) {
	ctx = logging.ContextWithSessionID(ctx, sessionID)

	switch action {
	case ActionAnother:
		return o.tryAnother(ctx, sessionID)
	case ActionMade:
		return o.markMade(ctx, sessionID, itemID)
	default:
		return nil, &ValidationError{Reason: fmt.Sprintf("unknown action %q", action)}
	}
}

// tryAnother restarts the pipeline with the previous selection rejected.
// The rejected set grows monotonically, so the same drink is never
// re-selected within a session.
func (o *Orchestrator) tryAnother(ctx context.Context, sessionID string) (*RunResult, error) {
	if err := o.store.AcquireRun(sessionID); err != nil {
		return nil, o.mapStoreErr(err)
	}
	defer o.store.ReleaseRun(sessionID)

	err := o.store.Update(sessionID, func(sess *session.Session) error {
		if sess.Pipeline.SelectedID != "" {
			sess.Reject(sess.Pipeline.SelectedID)
		}
		sess.Pipeline = session.PipelineState{Stage: session.StageReceivedInput}
		return nil
	})
	if err != nil {
		return nil, o.mapStoreErr(err)
	}

	if err := o.limiter.Wait(ctx, ratelimit.TierExpensive); err != nil {
		return nil, err
	}

	return o.run(ctx, sessionID)
}

// markMade records a drink as made. Pure bookkeeping: no generation, no
// quota draw.
func (o *Orchestrator) markMade(ctx context.Context, sessionID, itemID string) (*RunResult, error) {
	if itemID != "" {
		if _, ok := o.catalog.Get(itemID); !ok {
			return nil, &NotFoundError{What: fmt.Sprintf("item %q", itemID)}
		}
	}

	var made string
	err := o.store.Update(sessionID, func(sess *session.Session) error {
		made = itemID
		if made == "" {
			made = sess.Pipeline.SelectedID
		}
		if made == "" {
			return &ValidationError{Reason: "no item to mark as made"}
		}
		sess.MadeIDs = append(sess.MadeIDs, made)
		return nil
	})
	if err != nil {
		return nil, o.mapStoreErr(err)
	}

	logging.Ctx(ctx).Info().Str("item", made).Msg("drink marked as made")

	sess, err := o.store.Get(sessionID)
	if err != nil {
		return nil, o.mapStoreErr(err)
	}
	return o.buildResult(sess), nil
}

// GetSession returns a summary of the session. Cheap and read-only; not
// routed through the rate limiter.
func (o *Orchestrator) GetSession(ctx context.Context, sessionID string) (*SessionSummary, error) {
	sess, err := o.store.Get(sessionID)
	if err != nil {
		return nil, o.mapStoreErr(err)
	}

	return &SessionSummary{
		ID:           sess.ID,
		CreatedAt:    sess.CreatedAt,
		LastActiveAt: sess.LastActiveAt,
		Resources:    sess.Resources,
		Preferences:  sess.Preferences,
		RejectedIDs:  sess.RejectedIDs,
		MadeIDs:      sess.MadeIDs,
		Stage:        sess.Pipeline.Stage,
		SelectedID:   sess.Pipeline.SelectedID,
		CandidateIDs: sess.Pipeline.CandidateIDs,
		Err:          sess.Pipeline.Err,
	}, nil
}

// EndSession deletes the session. Idempotent: ending an unknown or already
// swept session still acknowledges.
func (o *Orchestrator) EndSession(ctx context.Context, sessionID string) error {
	o.store.Delete(sessionID)
	logging.Ctx(ctx).Debug().Str("session_id", sessionID).Msg("session ended")
	return nil
}

// run executes the pipeline state machine for the session. The caller must
// hold the session's run slot.
func (o *Orchestrator) run(ctx context.Context, sessionID string) (*RunResult, error) {
	logger := logging.Ctx(ctx)

	sess, err := o.store.Get(sessionID)
	if err != nil {
		return nil, o.mapStoreErr(err)
	}

	// Validate input.
	owned := matching.NewResourceSet(sess.Resources...)
	if len(owned) == 0 && !o.cfg.AllowEmptyCabinet {
		verr := &ValidationError{Reason: "cabinet is empty"}
		return nil, o.fail(ctx, sessionID, verr)
	}

	// Analyze: feasibility, variant filter, rejection exclusion, ranking.
	analyzeStart := time.Now()
	items := o.catalog.Items()
	candidates := matching.Candidates(items, owned)
	candidates = matching.FilterVariant(candidates, sess.Preferences.Variant)
	available := matching.ExcludeIDs(candidates, sess.Rejected())
	ranked := matching.RankMissing(items, owned)
	metrics.PipelineStageDuration.WithLabelValues("analyze").Observe(time.Since(analyzeStart).Seconds())

	candidateIDs := make([]string, len(available))
	for i, item := range available {
		candidateIDs[i] = item.ID
	}

	err = o.store.Update(sessionID, func(sess *session.Session) error {
		sess.Pipeline.CandidateIDs = candidateIDs
		return sess.Pipeline.Advance(session.StageAnalyzed)
	})
	if err != nil {
		return nil, o.mapStoreErr(err)
	}

	logger.Debug().
		Int("candidates", len(available)).
		Int("ranked_missing", len(ranked)).
		Msg("cabinet analyzed")

	if len(available) == 0 {
		nferr := &NotFoundError{What: "no feasible drinks for this cabinet"}
		return nil, o.fail(ctx, sessionID, nferr)
	}

	// Select: highest-ranked candidate not rejected; the candidate list is
	// already in catalog order, which is the tie-break.
	selected := available[0]
	err = o.store.Update(sessionID, func(sess *session.Session) error {
		sess.Pipeline.SelectedID = selected.ID
		return sess.Pipeline.Advance(session.StageSelected)
	})
	if err != nil {
		return nil, o.mapStoreErr(err)
	}

	logger.Info().Str("item", selected.ID).Msg("drink selected")

	// Generate.
	err = o.store.Update(sessionID, func(sess *session.Session) error {
		return sess.Pipeline.Advance(session.StageGenerating)
	})
	if err != nil {
		return nil, o.mapStoreErr(err)
	}

	genStart := time.Now()
	recipe, shopping, genErr := o.runGeneration(ctx, sess, selected, ranked)
	metrics.PipelineStageDuration.WithLabelValues("generate").Observe(time.Since(genStart).Seconds())

	if genErr != nil {
		return nil, o.fail(ctx, sessionID, genErr)
	}

	// Merge and complete.
	err = o.store.Update(sessionID, func(sess *session.Session) error {
		sess.Pipeline.Outputs = map[string]session.StageOutput{
			subStageRecipe: {Value: recipe},
		}
		if shopping != nil {
			sess.Pipeline.Outputs[subStageShopping] = session.StageOutput{Value: shopping}
		}
		return sess.Pipeline.Advance(session.StageComplete)
	})
	if err != nil {
		return nil, o.mapStoreErr(err)
	}

	metrics.PipelineRunsTotal.WithLabelValues("complete").Inc()
	logger.Info().Str("item", selected.ID).Msg("pipeline complete")

	return &RunResult{
		SessionID:    sessionID,
		Stage:        session.StageComplete,
		Item:         &selected,
		Recipe:       recipe,
		Shopping:     shopping,
		CandidateIDs: candidateIDs,
		Ranked:       ranked,
	}, nil
}

// runGeneration dispatches the generation sub-stages through the parallel
// coordinator and applies the primary/secondary failure policy: a primary
// failure fails the phase, a secondary failure is logged and its field left
// empty.
func (o *Orchestrator) runGeneration(ctx context.Context, sess *session.Session, selected catalog.Item, ranked []matching.UnlockScore) (*generate.RecipeResult, *generate.ShoppingResult, error) {
	logger := logging.Ctx(ctx)

	// Mood-free recipes are reusable across sessions via the cache.
	cacheKey := ""
	if sess.Preferences.Mood == "" {
		cacheKey = selected.ID + "|" + sess.Preferences.Skill
	}

	stages := []subStage{{
		name:    subStageRecipe,
		primary: true,
		run: func(ctx context.Context) (interface{}, error) {
			if cacheKey != "" {
				if cached, ok := o.recipes.Get(cacheKey); ok {
					metrics.RecipeCacheTotal.WithLabelValues("hit").Inc()
					return cached, nil
				}
				metrics.RecipeCacheTotal.WithLabelValues("miss").Inc()
			}

			recipe, err := o.gen.Recipe(ctx, generate.RecipeRequest{
				ItemID:            selected.ID,
				ItemName:          selected.Name,
				RequiredResources: selected.RequiredResources,
				Instructions:      selected.Instructions,
				Mood:              sess.Preferences.Mood,
				Skill:             sess.Preferences.Skill,
			})
			if err == nil && cacheKey != "" {
				o.recipes.Add(cacheKey, recipe)
			}
			return recipe, err
		},
	}}

	// The shopping sub-stage depends only on the cabinet, so it runs
	// concurrently with the recipe. Skipped in fast mode and when the
	// cabinet already covers every drink.
	if o.cfg.Mode == ModeFull && len(ranked) > 0 {
		hints := make([]generate.UnlockHint, len(ranked))
		for i, score := range ranked {
			hints[i] = generate.UnlockHint{
				Resource:      score.ResourceID,
				Unlocks:       score.Unlocks,
				UnlockedItems: score.UnlockedItemIDs,
			}
		}
		owned := append([]string(nil), sess.Resources...)
		stages = append(stages, subStage{
			name: subStageShopping,
			run: func(ctx context.Context) (interface{}, error) {
				return o.gen.ShoppingSuggestion(ctx, generate.ShoppingRequest{
					Owned:  owned,
					Ranked: hints,
				})
			},
		})
	}

	phaseCtx, cancel := context.WithTimeout(ctx, o.cfg.PhaseTimeout)
	defer cancel()

	var recipe *generate.RecipeResult
	var shopping *generate.ShoppingResult

	for _, result := range runSubStages(phaseCtx, stages) {
		if result.err != nil {
			if result.primary {
				return nil, nil, &generate.GenerationError{SubStage: result.name, Cause: result.err}
			}
			// Secondary failures never surface to the caller.
			logger.Warn().
				Str("substage", result.name).
				Err(result.err).
				Msg("secondary generation sub-stage failed")
			continue
		}

		switch result.name {
		case subStageRecipe:
			recipe = result.value.(*generate.RecipeResult)
		case subStageShopping:
			shopping = result.value.(*generate.ShoppingResult)
		}
	}

	return recipe, shopping, nil
}

// fail records the terminal failure on the session and returns the error.
// Every failure is logged with the session id and the stage it occurred at.
func (o *Orchestrator) fail(ctx context.Context, sessionID string, cause error) error {
	var stage session.Stage
	err := o.store.Update(sessionID, func(sess *session.Session) error {
		stage = sess.Pipeline.Stage
		sess.Pipeline.Fail(cause)
		return nil
	})
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		logging.Ctx(ctx).Error().Err(err).Msg("failed to record pipeline failure")
	}

	metrics.PipelineRunsTotal.WithLabelValues("failed").Inc()
	logging.Ctx(ctx).Warn().
		Stringer("stage", stage).
		Err(cause).
		Msg("pipeline failed")

	return cause
}

// buildResult assembles a RunResult from stored session state, recovering
// typed outputs when present.
func (o *Orchestrator) buildResult(sess *session.Session) *RunResult {
	result := &RunResult{
		SessionID:    sess.ID,
		Stage:        sess.Pipeline.Stage,
		CandidateIDs: sess.Pipeline.CandidateIDs,
	}

	if sess.Pipeline.SelectedID != "" {
		if item, ok := o.catalog.Get(sess.Pipeline.SelectedID); ok {
			result.Item = &item
		}
	}
	if out, ok := sess.Pipeline.Outputs[subStageRecipe]; ok {
		if recipe, ok := out.Value.(*generate.RecipeResult); ok {
			result.Recipe = recipe
		}
	}
	if out, ok := sess.Pipeline.Outputs[subStageShopping]; ok {
		if shopping, ok := out.Value.(*generate.ShoppingResult); ok {
			result.Shopping = shopping
		}
	}

	return result
}

// mapStoreErr translates store sentinels into the pipeline error taxonomy.
// Store conflicts pass through unchanged; they already say what happened.
func (o *Orchestrator) mapStoreErr(err error) error {
	if errors.Is(err, session.ErrNotFound) {
		return &NotFoundError{What: "session"}
	}
	return err
}
