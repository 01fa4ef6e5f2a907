// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"

	"github.com/google/uuid"

	"catalogadmin/internal/models"
	"catalogadmin/internal/slug"
)

// CheckSlug reports whether candidate is free, ignoring excludeID (the
// category being edited). The answer is point-in-time: create and update
// check again under their own write. Callers are expected to debounce.
func (s *Service) CheckSlug(ctx context.Context, candidate string, excludeID *uuid.UUID) (*models.SlugCheck, error) {
	fe := fieldErrors{}
	candidate = cleanSlug(fe, candidate)
	if err := fe.err(); err != nil {
		return nil, err
	}

	owner, err := s.repo.SlugOwner(ctx, candidate, excludeID)
	if err != nil {
		return nil, err
	}
	return &models.SlugCheck{Slug: candidate, Available: owner == nil, Conflict: owner}, nil
}

// SuggestSlug normalizes base and returns it, or the first free variant
// with a numeric suffix, ignoring excludeID.
func (s *Service) SuggestSlug(ctx context.Context, base string, excludeID *uuid.UUID) (string, error) {
	b := slug.Generate(base)
	if b == "" {
		return "", models.NewValidationError("base", "must contain at least one letter or digit")
	}

	existing, err := s.repo.SlugsWithPrefix(ctx, slug.Stem(b), excludeID)
	if err != nil {
		return "", err
	}
	taken := make(map[string]bool, len(existing))
	for _, v := range existing {
		taken[v] = true
	}
	return slug.Unique(b, func(c string) bool { return taken[c] })
}
