// Cocktail Cache - AI Bartender and Cabinet Analytics
// Copyright 2026 darth-dodo
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/darth-dodo/cocktail-cache

package matching

import (
	"testing"

	"github.com/darth-dodo/cocktail-cache/internal/catalog"
)

// testItems builds a small catalog mirroring classic cocktail structure:
// overlapping requirements so single resources unlock multiple drinks.
func testItems() []catalog.Item {
	return []catalog.Item{
		{ID: "manhattan", Name: "Manhattan", RequiredResources: []string{"bourbon", "sweet-vermouth", "angostura"}},
		{ID: "negroni", Name: "Negroni", RequiredResources: []string{"gin", "sweet-vermouth", "campari"}},
		{ID: "old-fashioned", Name: "Old Fashioned", RequiredResources: []string{"bourbon", "angostura", "sugar"}},
		{ID: "gin-tonic", Name: "Gin and Tonic", RequiredResources: []string{"gin", "tonic-water"}},
		{ID: "virgin-mojito", Name: "Virgin Mojito", RequiredResources: []string{"mint", "lime", "soda-water"}, IsAlternateVariant: true},
	}
}

func TestIsCandidate(t *testing.T) {
	items := testItems()
	manhattan := items[0]

	tests := []struct {
		name  string
		owned []string
		want  bool
	}{
		{"all resources owned", []string{"bourbon", "sweet-vermouth", "angostura"}, true},
		{"superset owned", []string{"bourbon", "sweet-vermouth", "angostura", "gin"}, true},
		{"one missing", []string{"bourbon", "sweet-vermouth"}, false},
		{"nothing owned", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsCandidate(manhattan, NewResourceSet(tt.owned...))
			if got != tt.want {
				t.Errorf("IsCandidate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCandidates(t *testing.T) {
	items := testItems()

	tests := []struct {
		name    string
		owned   []string
		wantIDs []string
	}{
		{
			name:    "empty cabinet yields nothing",
			owned:   nil,
			wantIDs: []string{},
		},
		{
			name:    "manhattan cabinet",
			owned:   []string{"bourbon", "sweet-vermouth", "angostura"},
			wantIDs: []string{"manhattan"},
		},
		{
			name:    "manhattan plus sugar also covers old fashioned",
			owned:   []string{"bourbon", "sweet-vermouth", "angostura", "sugar"},
			wantIDs: []string{"manhattan", "old-fashioned"},
		},
		{
			name:    "unrelated resources yield nothing",
			owned:   []string{"rum", "coconut-cream"},
			wantIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Candidates(items, NewResourceSet(tt.owned...))
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("Candidates() returned %d items, want %d", len(got), len(tt.wantIDs))
			}
			for i, want := range tt.wantIDs {
				if got[i].ID != want {
					t.Errorf("Candidates()[%d] = %q, want %q (catalog order)", i, got[i].ID, want)
				}
			}
		})
	}
}

func TestFilterVariant(t *testing.T) {
	items := testItems()

	standard := FilterVariant(items, "standard")
	for _, item := range standard {
		if item.IsAlternateVariant {
			t.Errorf("standard filter kept alternate item %q", item.ID)
		}
	}
	if len(standard) != 4 {
		t.Errorf("standard filter kept %d items, want 4", len(standard))
	}

	alternate := FilterVariant(items, "alternate")
	if len(alternate) != 1 || alternate[0].ID != "virgin-mojito" {
		t.Errorf("alternate filter = %v, want [virgin-mojito]", alternate)
	}

	all := FilterVariant(items, "")
	if len(all) != len(items) {
		t.Errorf("empty variant filter kept %d items, want %d", len(all), len(items))
	}
}

func TestExcludeIDs(t *testing.T) {
	items := testItems()

	got := ExcludeIDs(items, map[string]struct{}{"manhattan": {}, "gin-tonic": {}})
	if len(got) != 3 {
		t.Fatalf("ExcludeIDs() returned %d items, want 3", len(got))
	}
	for _, item := range got {
		if item.ID == "manhattan" || item.ID == "gin-tonic" {
			t.Errorf("ExcludeIDs() kept rejected item %q", item.ID)
		}
	}

	// Empty rejection set passes items through untouched.
	if got := ExcludeIDs(items, nil); len(got) != len(items) {
		t.Errorf("ExcludeIDs(nil) returned %d items, want %d", len(got), len(items))
	}
}

func TestRankMissing(t *testing.T) {
	items := testItems()

	// Owning bourbon, sweet-vermouth and sugar leaves:
	//   manhattan missing only angostura
	//   old-fashioned missing only angostura
	//   negroni missing gin and campari (two gaps, counts nowhere)
	//   gin-tonic missing gin and tonic-water (two gaps)
	//   virgin-mojito missing three
	owned := NewResourceSet("bourbon", "sweet-vermouth", "sugar")
	scores := RankMissing(items, owned)

	if len(scores) != 1 {
		t.Fatalf("RankMissing() returned %d scores, want 1: %v", len(scores), scores)
	}
	if scores[0].ResourceID != "angostura" || scores[0].Unlocks != 2 {
		t.Errorf("top score = %+v, want angostura with 2 unlocks", scores[0])
	}
	if len(scores[0].UnlockedItemIDs) != scores[0].Unlocks {
		t.Errorf("UnlockedItemIDs length %d != Unlocks %d", len(scores[0].UnlockedItemIDs), scores[0].Unlocks)
	}
}

func TestRankMissing_TieBreakLexicographic(t *testing.T) {
	items := []catalog.Item{
		{ID: "drink-a", RequiredResources: []string{"base", "zeta"}},
		{ID: "drink-b", RequiredResources: []string{"base", "alpha"}},
	}
	scores := RankMissing(items, NewResourceSet("base"))

	if len(scores) != 2 {
		t.Fatalf("RankMissing() returned %d scores, want 2", len(scores))
	}
	if scores[0].ResourceID != "alpha" || scores[1].ResourceID != "zeta" {
		t.Errorf("tie-break order = [%s, %s], want [alpha, zeta]", scores[0].ResourceID, scores[1].ResourceID)
	}
}

func TestRankMissing_EmptyWhenAllFeasible(t *testing.T) {
	items := testItems()
	owned := NewResourceSet(
		"bourbon", "sweet-vermouth", "angostura", "gin", "campari",
		"sugar", "tonic-water", "mint", "lime", "soda-water",
	)
	if scores := RankMissing(items, owned); len(scores) != 0 {
		t.Errorf("RankMissing() with full cabinet = %v, want empty", scores)
	}
}

// TestRankMissing_MarginalGainProperty checks that each score equals the
// actual candidate-count delta from adding that one resource.
func TestRankMissing_MarginalGainProperty(t *testing.T) {
	items := testItems()

	cabinets := [][]string{
		nil,
		{"bourbon"},
		{"bourbon", "angostura"},
		{"bourbon", "sweet-vermouth", "sugar"},
		{"gin", "sweet-vermouth"},
		{"mint", "lime"},
	}

	for _, cabinet := range cabinets {
		owned := NewResourceSet(cabinet...)
		base := len(Candidates(items, owned))

		for _, score := range RankMissing(items, owned) {
			gained := len(Candidates(items, owned.With(score.ResourceID))) - base
			if gained != score.Unlocks {
				t.Errorf("cabinet %v: resource %q scored %d unlocks, actual gain %d",
					cabinet, score.ResourceID, score.Unlocks, gained)
			}
		}
	}
}

func TestResourceSet(t *testing.T) {
	set := NewResourceSet("gin", "lime", "gin")

	if len(set) != 2 {
		t.Errorf("duplicate ids should collapse, got len %d", len(set))
	}
	if !set.Has("gin") || set.Has("rum") {
		t.Error("Has() gave wrong membership")
	}

	grown := set.With("rum")
	if set.Has("rum") {
		t.Error("With() mutated the receiver")
	}
	if !grown.Has("rum") || !grown.Has("gin") {
		t.Error("With() result missing expected members")
	}

	ids := grown.IDs()
	want := []string{"gin", "lime", "rum"}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("IDs() = %v, want %v", ids, want)
			break
		}
	}
}
