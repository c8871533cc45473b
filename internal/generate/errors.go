// Cocktail Cache - AI Bartender and Cabinet Analytics
// Copyright 2026 darth-dodo
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/darth-dodo/cocktail-cache

package generate

import (
	"errors"
	"fmt"
)

// ErrGeneration is the sentinel all generation failures wrap, so callers
// can classify with errors.Is regardless of the concrete cause (transport
// error, timeout, open circuit breaker, schema-invalid output).
var ErrGeneration = errors.New("generation failed")

// GenerationError records which sub-stage failed and why.
type GenerationError struct {
	SubStage string
	Cause    error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation sub-stage %s: %v", e.SubStage, e.Cause)
}

// Unwrap exposes the underlying cause.
func (e *GenerationError) Unwrap() error { return e.Cause }

// Is matches the ErrGeneration sentinel.
func (e *GenerationError) Is(target error) bool { return target == ErrGeneration }

// newError wraps a cause as a GenerationError for the given sub-stage.
func newError(subStage string, cause error) error {
	return &GenerationError{SubStage: subStage, Cause: cause}
}
