// Cocktail Cache - AI Bartender and Cabinet Analytics
// Copyright 2026 darth-dodo
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/darth-dodo/cocktail-cache

package generate

import (
	"strings"
	"testing"
)

func TestDecodeStrict_Recipe(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr string
	}{
		{
			name: "clean json object",
			text: `{"name": "Negroni", "ingredients": [{"resource": "gin", "amount": "30 ml"}], "steps": ["Stir."]}`,
		},
		{
			name: "json wrapped in prose",
			text: "Here is your recipe:\n```json\n" +
				`{"name": "Negroni", "ingredients": [{"resource": "gin", "amount": "30 ml"}], "steps": ["Stir."]}` +
				"\n```\nEnjoy!",
		},
		{
			name:    "no json object",
			text:    "Sorry, I cannot help with that.",
			wantErr: "no JSON object",
		},
		{
			name:    "malformed json",
			text:    `{"name": "Negroni", "ingredients": [`,
			wantErr: "no JSON object",
		},
		{
			name:    "truncated object",
			text:    `{"name": "Negroni", "ingredients": [}`,
			wantErr: "parse response",
		},
		{
			name:    "missing required name",
			text:    `{"ingredients": [{"resource": "gin", "amount": "30 ml"}], "steps": ["Stir."]}`,
			wantErr: "schema-invalid",
		},
		{
			name:    "empty ingredients",
			text:    `{"name": "Negroni", "ingredients": [], "steps": ["Stir."]}`,
			wantErr: "schema-invalid",
		},
		{
			name:    "ingredient missing amount",
			text:    `{"name": "Negroni", "ingredients": [{"resource": "gin"}], "steps": ["Stir."]}`,
			wantErr: "schema-invalid",
		},
		{
			name:    "empty steps",
			text:    `{"name": "Negroni", "ingredients": [{"resource": "gin", "amount": "30 ml"}], "steps": []}`,
			wantErr: "schema-invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var result RecipeResult
			err := decodeStrict(tt.text, &result)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("decodeStrict() error: %v", err)
				}
				if result.Name != "Negroni" {
					t.Errorf("Name = %q, want Negroni", result.Name)
				}
				return
			}
			if err == nil {
				t.Fatal("decodeStrict() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestDecodeStrict_Shopping(t *testing.T) {
	var result ShoppingResult
	err := decodeStrict(`{"resource": "campari", "reason": "Opens up the bitter classics."}`, &result)
	if err != nil {
		t.Fatalf("decodeStrict() error: %v", err)
	}
	if result.Resource != "campari" {
		t.Errorf("Resource = %q, want campari", result.Resource)
	}

	if err := decodeStrict(`{"resource": "campari"}`, &ShoppingResult{}); err == nil {
		t.Error("decodeStrict() accepted a suggestion without a reason")
	}
}

func TestNewClaudeGenerator_RequiresAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	if _, err := NewClaudeGenerator(ClaudeConfig{}); err == nil {
		t.Error("NewClaudeGenerator() without key succeeded, want error")
	}

	t.Setenv("ANTHROPIC_API_KEY", "test-key-from-env")
	if _, err := NewClaudeGenerator(ClaudeConfig{}); err != nil {
		t.Errorf("NewClaudeGenerator() with env key error: %v", err)
	}
}
