// Cocktail Cache - AI Bartender and Cabinet Analytics
// Copyright 2026 darth-dodo
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/darth-dodo/cocktail-cache

// Package supervisor builds the suture/v4 supervision tree that keeps the
// HTTP server and background maintenance services running with automatic
// restart and failure isolation.
package supervisor
