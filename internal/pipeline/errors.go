// Cocktail Cache - AI Bartender and Cabinet Analytics
// Copyright 2026 darth-dodo
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/darth-dodo/cocktail-cache

package pipeline

import "fmt"

// ValidationError indicates malformed or empty required input. It is raised
// synchronously before the pipeline starts and is never retried internally.
type ValidationError struct {
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

// NotFoundError indicates an unknown session, an unknown item, or zero
// feasible candidates. It is recoverable by the caller: start fresh or
// adjust the cabinet.
type NotFoundError struct {
	What string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s", e.What)
}
