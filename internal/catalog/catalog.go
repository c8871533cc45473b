// Cocktail Cache - AI Bartender and Cabinet Analytics
// Copyright 2026 darth-dodo
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/darth-dodo/cocktail-cache

// Package catalog loads and serves the read-only drink catalog.
//
// The catalog is loaded once at startup, validated, and shared read-only by
// all sessions. A default catalog ships embedded in the binary; an override
// file can be supplied via configuration.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/darth-dodo/cocktail-cache/internal/validation"
)

//go:embed data/catalog.json
var embeddedCatalog []byte

// Item is a single catalog entry. Items are immutable after load.
type Item struct {
	ID                 string   `json:"id" validate:"required,resource_id"`
	Name               string   `json:"name" validate:"required"`
	RequiredResources  []string `json:"required_resources" validate:"required,min=1,dive,resource_id"`
	Tags               []string `json:"tags,omitempty"`
	Difficulty         string   `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	IsAlternateVariant bool     `json:"is_alternate_variant,omitempty"`

	// Instructions is a short canonical build line handed to the
	// generative stage as grounding; never shown raw to callers.
	Instructions string `json:"instructions,omitempty"`
}

// Catalog is the validated, ordered set of items. Item order in the source
// file is catalog order, which the pipeline uses as the selection tie-break.
type Catalog struct {
	items []Item
	byID  map[string]int
}

// Load reads and validates a catalog. With an empty path the embedded
// default catalog is used. Any malformed item fails the whole load: a
// catalog error at startup is fatal, not something to limp past.
func Load(path string) (*Catalog, error) {
	raw := embeddedCatalog
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog file %s: %w", path, err)
		}
		raw = data
	}

	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}

	byID := make(map[string]int, len(items))
	for i, item := range items {
		// An item with no requirements would be a candidate for every
		// cabinet, which signals malformed source data.
		if verr := validation.ValidateStruct(&item); verr != nil {
			return nil, fmt.Errorf("catalog item %q: %s", item.ID, verr.Error())
		}
		if _, dup := byID[item.ID]; dup {
			return nil, fmt.Errorf("catalog item %q: duplicate id", item.ID)
		}
		if seen := duplicateResource(item.RequiredResources); seen != "" {
			return nil, fmt.Errorf("catalog item %q: duplicate resource %q", item.ID, seen)
		}
		byID[item.ID] = i
	}

	return &Catalog{items: items, byID: byID}, nil
}

// duplicateResource returns the first repeated id in the list, or "".
func duplicateResource(resources []string) string {
	seen := make(map[string]struct{}, len(resources))
	for _, r := range resources {
		if _, ok := seen[r]; ok {
			return r
		}
		seen[r] = struct{}{}
	}
	return ""
}

// Items returns all items in catalog order. Callers must not mutate the
// returned slice.
func (c *Catalog) Items() []Item {
	return c.items
}

// Get returns the item with the given id.
func (c *Catalog) Get(id string) (Item, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Item{}, false
	}
	return c.items[i], true
}

// Len returns the number of items.
func (c *Catalog) Len() int {
	return len(c.items)
}

// Resources returns the set of all resource ids referenced by any item.
func (c *Catalog) Resources() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, item := range c.items {
		for _, r := range item.RequiredResources {
			if _, ok := seen[r]; !ok {
				seen[r] = struct{}{}
				out = append(out, r)
			}
		}
	}
	return out
}
