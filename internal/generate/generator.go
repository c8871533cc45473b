// Cocktail Cache - AI Bartender and Cabinet Analytics
// Copyright 2026 darth-dodo
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/darth-dodo/cocktail-cache

// Package generate adapts the opaque generative text capability behind a
// typed interface.
//
// The capability is treated as a black box that returns either a
// schema-valid result or an error, never partially-valid data: every
// implementation decodes and validates its output before returning it, and
// any shortfall is reported as a GenerationError.
package generate

import "context"

// RecipeRequest is the structured input for the primary sub-stage: an
// enriched recipe for the selected drink.
type RecipeRequest struct {
	ItemID            string
	ItemName          string
	RequiredResources []string
	Instructions      string
	Mood              string
	Skill             string
}

// RecipeIngredient is one measured ingredient line of a generated recipe.
type RecipeIngredient struct {
	Resource string `json:"resource" validate:"required"`
	Amount   string `json:"amount" validate:"required"`
}

// RecipeResult is the schema for the primary sub-stage's output.
type RecipeResult struct {
	ItemID      string             `json:"item_id"`
	Name        string             `json:"name" validate:"required"`
	Ingredients []RecipeIngredient `json:"ingredients" validate:"required,min=1,dive"`
	Steps       []string           `json:"steps" validate:"required,min=1,dive,required"`
	Glassware   string             `json:"glassware,omitempty"`
	Garnish     string             `json:"garnish,omitempty"`
	Notes       string             `json:"notes,omitempty"`
}

// UnlockHint carries the deterministic ranking of a missing resource into
// the shopping sub-stage, so the generated suggestion stays grounded in the
// matching engine's numbers.
type UnlockHint struct {
	Resource      string   `json:"resource"`
	Unlocks       int      `json:"unlocks"`
	UnlockedItems []string `json:"unlocked_items"`
}

// ShoppingRequest is the structured input for the secondary sub-stage: a
// purchase suggestion computed from the cabinet alone.
type ShoppingRequest struct {
	Owned  []string
	Ranked []UnlockHint
}

// ShoppingResult is the schema for the secondary sub-stage's output.
type ShoppingResult struct {
	Resource      string   `json:"resource" validate:"required"`
	Reason        string   `json:"reason" validate:"required"`
	UnlockedItems []string `json:"unlocked_items,omitempty"`
}

// Generator is the boundary contract for the generative capability. Both
// calls may be slow and may fail; callers bound them with a context
// deadline and must tolerate cancellation.
type Generator interface {
	Recipe(ctx context.Context, req RecipeRequest) (*RecipeResult, error)
	ShoppingSuggestion(ctx context.Context, req ShoppingRequest) (*ShoppingResult, error)
}
