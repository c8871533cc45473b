// Cocktail Cache - AI Bartender and Cabinet Analytics
// Copyright 2026 darth-dodo
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/darth-dodo/cocktail-cache

package generate

import (
	"context"
	"errors"
	"testing"
)

func TestStaticGenerator_Recipe(t *testing.T) {
	gen := NewStaticGenerator()

	req := RecipeRequest{
		ItemID:            "manhattan",
		ItemName:          "Manhattan",
		RequiredResources: []string{"bourbon", "sweet-vermouth", "angostura"},
		Skill:             "beginner",
	}
	result, err := gen.Recipe(context.Background(), req)
	if err != nil {
		t.Fatalf("Recipe() error: %v", err)
	}
	if result.ItemID != "manhattan" || result.Name != "Manhattan" {
		t.Errorf("result identity = %s/%s, want manhattan/Manhattan", result.ItemID, result.Name)
	}
	if len(result.Ingredients) != 3 {
		t.Errorf("got %d ingredients, want one per required resource", len(result.Ingredients))
	}
	if len(result.Steps) == 0 {
		t.Error("recipe has no steps")
	}

	// Deterministic: the same request yields the same recipe.
	again, err := gen.Recipe(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if again.Steps[0] != result.Steps[0] || len(again.Ingredients) != len(result.Ingredients) {
		t.Error("static generator output is not deterministic")
	}
}

func TestStaticGenerator_RecipeUsesCanonicalInstructions(t *testing.T) {
	gen := NewStaticGenerator()
	result, err := gen.Recipe(context.Background(), RecipeRequest{
		ItemID:            "negroni",
		ItemName:          "Negroni",
		RequiredResources: []string{"gin", "sweet-vermouth", "campari"},
		Instructions:      "Stir over ice, strain, orange twist.",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Steps) != 1 || result.Steps[0] != "Stir over ice, strain, orange twist." {
		t.Errorf("Steps = %v, want the canonical build line", result.Steps)
	}
}

func TestStaticGenerator_Shopping(t *testing.T) {
	gen := NewStaticGenerator()

	result, err := gen.ShoppingSuggestion(context.Background(), ShoppingRequest{
		Owned: []string{"bourbon", "sweet-vermouth"},
		Ranked: []UnlockHint{
			{Resource: "angostura", Unlocks: 2, UnlockedItems: []string{"manhattan", "old-fashioned"}},
			{Resource: "gin", Unlocks: 1, UnlockedItems: []string{"negroni"}},
		},
	})
	if err != nil {
		t.Fatalf("ShoppingSuggestion() error: %v", err)
	}
	if result.Resource != "angostura" {
		t.Errorf("suggested %q, want the top-ranked resource", result.Resource)
	}
	if len(result.UnlockedItems) != 2 {
		t.Errorf("UnlockedItems = %v, want the hint's items", result.UnlockedItems)
	}
}

func TestStaticGenerator_ShoppingEmptyRanking(t *testing.T) {
	gen := NewStaticGenerator()

	_, err := gen.ShoppingSuggestion(context.Background(), ShoppingRequest{Owned: []string{"gin"}})
	if !errors.Is(err, ErrGeneration) {
		t.Errorf("error = %v, want ErrGeneration", err)
	}
	var genErr *GenerationError
	if !errors.As(err, &genErr) || genErr.SubStage != "shopping" {
		t.Errorf("error = %v, want GenerationError for shopping sub-stage", err)
	}
}

func TestStaticGenerator_CanceledContext(t *testing.T) {
	gen := NewStaticGenerator()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := gen.Recipe(ctx, RecipeRequest{ItemID: "x"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Recipe(canceled) error = %v, want context.Canceled", err)
	}
	if _, err := gen.ShoppingSuggestion(ctx, ShoppingRequest{}); !errors.Is(err, context.Canceled) {
		t.Errorf("ShoppingSuggestion(canceled) error = %v, want context.Canceled", err)
	}
}
