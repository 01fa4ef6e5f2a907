// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Errors a caller can correct by changing its input. Storage failures are
// never one of these; they are wrapped and surfaced as-is.
var (
	ErrDuplicateSlug    = errors.New("duplicate slug")
	ErrInvalidParent    = errors.New("invalid parent")
	ErrNotFound         = errors.New("category not found")
	ErrTargetNotFound   = errors.New("reorder target not found")
	ErrCycleRejected    = errors.New("move would create a cycle")
	ErrValidationFailed = errors.New("validation failed")
)

// SlugConflictError reports which category already owns a slug.
type SlugConflictError struct {
	Slug     string
	Conflict *Category
}

func (e *SlugConflictError) Error() string {
	if e.Conflict != nil {
		return fmt.Sprintf("slug %q is already used by category %q", e.Slug, e.Conflict.Name)
	}
	return fmt.Sprintf("slug %q is already in use", e.Slug)
}

func (e *SlugConflictError) Unwrap() error { return ErrDuplicateSlug }

// ValidationError maps field names to human-readable problems.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }
