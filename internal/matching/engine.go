// Cocktail Cache - AI Bartender and Cabinet Analytics
// Copyright 2026 darth-dodo
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/darth-dodo/cocktail-cache

// Package matching implements the deterministic feasibility and ranking
// engine over the drink catalog.
//
// Everything in this package is pure computation: no I/O, no suspension, no
// shared state. That makes it safe to call from any concurrency context
// without synchronization. Exclusion of rejected items happens at the call
// site, not here, so the engine stays reusable for plain "what can I make"
// queries.
package matching

import (
	"sort"

	"github.com/darth-dodo/cocktail-cache/internal/catalog"
)

// ResourceSet is the set of resource ids a user currently owns.
// It is passed by value semantics: mutating helpers return copies.
type ResourceSet map[string]struct{}

// NewResourceSet builds a ResourceSet from a list of resource ids.
// Duplicates collapse.
func NewResourceSet(ids ...string) ResourceSet {
	set := make(ResourceSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Has reports whether the set contains the resource.
func (r ResourceSet) Has(id string) bool {
	_, ok := r[id]
	return ok
}

// With returns a copy of the set with the resource added. The receiver is
// never mutated, which keeps concurrent pipeline stages safe.
func (r ResourceSet) With(id string) ResourceSet {
	out := make(ResourceSet, len(r)+1)
	for k := range r {
		out[k] = struct{}{}
	}
	out[id] = struct{}{}
	return out
}

// Clone returns an independent copy of the set.
func (r ResourceSet) Clone() ResourceSet {
	out := make(ResourceSet, len(r))
	for k := range r {
		out[k] = struct{}{}
	}
	return out
}

// IDs returns the resource ids in lexicographic order.
func (r ResourceSet) IDs() []string {
	out := make([]string, 0, len(r))
	for k := range r {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// UnlockScore ranks a single missing resource by marginal value: how many
// additional drinks become feasible if just this resource is added.
type UnlockScore struct {
	ResourceID      string   `json:"resource_id"`
	Unlocks         int      `json:"unlocks"`
	UnlockedItemIDs []string `json:"unlocked_item_ids"`
}

// IsCandidate reports whether every required resource of the item is owned.
func IsCandidate(item catalog.Item, owned ResourceSet) bool {
	for _, required := range item.RequiredResources {
		if !owned.Has(required) {
			return false
		}
	}
	return true
}

// Candidates returns the items whose requirements are fully covered by the
// owned set, in catalog order. An empty owned set yields zero candidates.
func Candidates(items []catalog.Item, owned ResourceSet) []catalog.Item {
	out := make([]catalog.Item, 0, len(items))
	for _, item := range items {
		if IsCandidate(item, owned) {
			out = append(out, item)
		}
	}
	return out
}

// FilterVariant narrows candidates by the caller's variant preference:
// "standard" keeps only regular drinks, "alternate" keeps only alternate
// variants (e.g. non-alcoholic), anything else keeps all.
func FilterVariant(items []catalog.Item, variant string) []catalog.Item {
	switch variant {
	case "standard", "alternate":
	default:
		return items
	}

	wantAlternate := variant == "alternate"
	out := make([]catalog.Item, 0, len(items))
	for _, item := range items {
		if item.IsAlternateVariant == wantAlternate {
			out = append(out, item)
		}
	}
	return out
}

// ExcludeIDs returns the items whose ids are not in the rejected set,
// preserving order.
func ExcludeIDs(items []catalog.Item, rejected map[string]struct{}) []catalog.Item {
	if len(rejected) == 0 {
		return items
	}
	out := make([]catalog.Item, 0, len(items))
	for _, item := range items {
		if _, ok := rejected[item.ID]; !ok {
			out = append(out, item)
		}
	}
	return out
}

// RankMissing scores every not-owned resource that appears in at least one
// non-candidate item's requirements by its marginal unlock count: the number
// of items that become candidates if that single resource were added.
//
// Resources unlocking nothing are omitted. Ordering is deterministic: higher
// unlock count first, lexicographic resource id on ties. The invariant
// len(UnlockedItemIDs) == Unlocks holds for every entry.
func RankMissing(items []catalog.Item, owned ResourceSet) []UnlockScore {
	unlocked := make(map[string][]string)

	for _, item := range items {
		if IsCandidate(item, owned) {
			continue
		}
		// A resource unlocks this item only when it is the single
		// missing requirement.
		missing := missingResources(item, owned)
		if len(missing) == 1 {
			unlocked[missing[0]] = append(unlocked[missing[0]], item.ID)
		}
	}

	scores := make([]UnlockScore, 0, len(unlocked))
	for resource, itemIDs := range unlocked {
		scores = append(scores, UnlockScore{
			ResourceID:      resource,
			Unlocks:         len(itemIDs),
			UnlockedItemIDs: itemIDs,
		})
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Unlocks != scores[j].Unlocks {
			return scores[i].Unlocks > scores[j].Unlocks
		}
		return scores[i].ResourceID < scores[j].ResourceID
	})

	return scores
}

// missingResources returns the item's requirements not covered by owned.
func missingResources(item catalog.Item, owned ResourceSet) []string {
	var missing []string
	for _, required := range item.RequiredResources {
		if !owned.Has(required) {
			missing = append(missing, required)
		}
	}
	return missing
}
