// Cocktail Cache - AI Bartender and Cabinet Analytics
// Copyright 2026 darth-dodo
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/darth-dodo/cocktail-cache

package generate

import (
	"context"
	"fmt"
	"strings"
)

// StaticGenerator produces deterministic templated output without calling
// any external capability. It backs the "static" provider for offline
// development and is the workhorse generator in tests.
type StaticGenerator struct{}

// NewStaticGenerator creates a static generator.
func NewStaticGenerator() *StaticGenerator {
	return &StaticGenerator{}
}

// Recipe implements Generator with a fixed per-item template.
func (g *StaticGenerator) Recipe(ctx context.Context, req RecipeRequest) (*RecipeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, newError("recipe", err)
	}

	ingredients := make([]RecipeIngredient, len(req.RequiredResources))
	for i, resource := range req.RequiredResources {
		ingredients[i] = RecipeIngredient{Resource: resource, Amount: "to taste"}
	}

	steps := []string{
		fmt.Sprintf("Combine %s.", strings.Join(req.RequiredResources, ", ")),
		"Chill thoroughly and serve.",
	}
	if req.Instructions != "" {
		steps = []string{req.Instructions}
	}

	return &RecipeResult{
		ItemID:      req.ItemID,
		Name:        req.ItemName,
		Ingredients: ingredients,
		Steps:       steps,
		Notes:       "Static recipe; configure a generation provider for enriched output.",
	}, nil
}

// ShoppingSuggestion implements Generator by echoing the top-ranked hint.
func (g *StaticGenerator) ShoppingSuggestion(ctx context.Context, req ShoppingRequest) (*ShoppingResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, newError("shopping", err)
	}
	if len(req.Ranked) == 0 {
		return nil, newError("shopping", fmt.Errorf("no ranked resources to suggest"))
	}

	top := req.Ranked[0]
	return &ShoppingResult{
		Resource:      top.Resource,
		Reason:        fmt.Sprintf("Unlocks %d more drinks from your cabinet.", top.Unlocks),
		UnlockedItems: top.UnlockedItems,
	}, nil
}
