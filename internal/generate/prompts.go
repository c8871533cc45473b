// Cocktail Cache - AI Bartender and Cabinet Analytics
// Copyright 2026 darth-dodo
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/darth-dodo/cocktail-cache

package generate

import (
	"fmt"
	"strings"
)

// recipePrompt renders the user prompt for the recipe sub-stage. The reply
// must be a single JSON object matching RecipeResult.
func recipePrompt(req RecipeRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Produce a recipe for the cocktail %q.\n", req.ItemName)
	fmt.Fprintf(&b, "Ingredients to use: %s.\n", strings.Join(req.RequiredResources, ", "))
	if req.Instructions != "" {
		fmt.Fprintf(&b, "Canonical build: %s\n", req.Instructions)
	}
	if req.Mood != "" {
		fmt.Fprintf(&b, "The drinker's mood: %s\n", req.Mood)
	}
	if req.Skill != "" {
		fmt.Fprintf(&b, "Write for a %s home bartender.\n", req.Skill)
	}

	b.WriteString(`Reply with only a JSON object, no prose, in this shape:
{"name": string, "ingredients": [{"resource": string, "amount": string}], "steps": [string], "glassware": string, "garnish": string, "notes": string}`)

	return b.String()
}

// shoppingPrompt renders the user prompt for the shopping sub-stage. The
// deterministic unlock ranking is included so the suggestion stays grounded
// in the matching engine's numbers rather than the model's imagination.
func shoppingPrompt(req ShoppingRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "A home bartender owns: %s.\n", strings.Join(req.Owned, ", "))
	b.WriteString("Ranked next purchases by how many new cocktails each unlocks:\n")
	for _, hint := range req.Ranked {
		fmt.Fprintf(&b, "- %s unlocks %d: %s\n",
			hint.Resource, hint.Unlocks, strings.Join(hint.UnlockedItems, ", "))
	}
	b.WriteString(`Recommend exactly one bottle from the ranked list above.
Reply with only a JSON object, no prose, in this shape:
{"resource": string, "reason": string, "unlocked_items": [string]}`)

	return b.String()
}

// DefaultPersona is the default system prompt for the generative stage.
// Deployments override it via configuration; the pipeline treats it as
// opaque data.
const DefaultPersona = "You are a knowledgeable, concise bar director. " +
	"You answer with strict JSON matching the requested shape and never add commentary."
