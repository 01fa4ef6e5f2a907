// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"catalogadmin/internal/models"
	"catalogadmin/internal/slug"
)

// Field limits, in runes.
const (
	MaxNameLength        = 200
	MaxSlugLength        = slug.MaxLength
	MaxDescriptionLength = 2000
)

// fieldErrors collects per-field problems into a ValidationError.
type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, ok := f[field]; !ok {
		f[field] = msg
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &models.ValidationError{Fields: f}
}

// cleanName trims a name and checks it is present and short enough.
func cleanName(fe fieldErrors, name string) string {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		fe.add("name", "is required")
	case utf8.RuneCountInString(name) > MaxNameLength:
		fe.add("name", fmt.Sprintf("must be at most %d characters", MaxNameLength))
	}
	return name
}

// cleanSlug lowercases a slug and checks its shape.
func cleanSlug(fe fieldErrors, s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		fe.add("slug", "is required")
	case utf8.RuneCountInString(s) > MaxSlugLength:
		fe.add("slug", fmt.Sprintf("must be at most %d characters", MaxSlugLength))
	case !slug.Valid(s):
		fe.add("slug", "may only contain lowercase letters, digits and single hyphens")
	}
	return s
}

func checkDescription(fe fieldErrors, d string) {
	if utf8.RuneCountInString(d) > MaxDescriptionLength {
		fe.add("description", fmt.Sprintf("must be at most %d characters", MaxDescriptionLength))
	}
}

func checkProductCount(fe fieldErrors, n int) {
	if n < 0 {
		fe.add("product_count", "must not be negative")
	}
}
