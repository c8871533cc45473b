// Cocktail Cache - AI Bartender and Cabinet Analytics
// Copyright 2026 darth-dodo
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/darth-dodo/cocktail-cache

// Package api provides the HTTP surface for Cocktail Cache: pipeline
// start/continue, session inspection, health probes and metrics, routed
// with Chi and hardened with the go-chi middleware ecosystem.
package api
