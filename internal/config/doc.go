// Cocktail Cache - AI Bartender and Cabinet Analytics
// Copyright 2026 darth-dodo
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/darth-dodo/cocktail-cache

// Package config provides layered application configuration built on
// Koanf v2: struct defaults, then an optional YAML file, then environment
// variables. The loaded Config is immutable and validated before use.
package config
