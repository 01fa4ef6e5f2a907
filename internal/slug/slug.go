// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug turns category names into URL-safe slugs and finds free
// variants of a slug by appending a numeric suffix.
package slug

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

const (
	// MaxLength is the longest slug Unique returns.
	MaxLength = 200

	// MaxAttempts bounds the suffix search in Unique.
	MaxAttempts = 10_000

	// maxSuffixDigits is the longest numeric suffix Unique keeps counting
	// from. Longer digit runs stay part of the stem.
	maxSuffixDigits = 9

	// maxSuffixLen is the longest suffix Unique appends: a hyphen and
	// 999999999+MaxAttempts.
	maxSuffixLen = 1 + maxSuffixDigits + 1
)

// ErrExhausted is returned when no free suffix was found within MaxAttempts.
var ErrExhausted = errors.New("slug: no free suffix found")

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, whitespace, or hyphen.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespace      = regexp.MustCompile(`\s+`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
	valid           = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	numericSuffix   = regexp.MustCompile(`^(.*)-([0-9]+)$`)
)

// Generate creates a URL-friendly slug from the given string.
// Example: "Men's Shoes & Boots" → "mens-shoes-boots"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = whitespace.ReplaceAllString(result, "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// Valid reports whether s is already a well-formed slug. Upper-case input
// is accepted since uniqueness is compared case-insensitively.
func Valid(s string) bool {
	return valid.MatchString(strings.ToLower(s))
}

// Unique returns base if taken reports it free, otherwise the first of
// base-2, base-3, ... that is free. A base that already ends in a numeric
// suffix keeps counting from that suffix ("shoes-4" → "shoes-5"). Results
// never exceed MaxLength; the stem is cut to make room for the suffix.
func Unique(base string, taken func(string) bool) (string, error) {
	base = truncate(base, MaxLength)
	if !taken(base) {
		return base, nil
	}

	stem, n := split(base)

	for i := 1; i <= MaxAttempts; i++ {
		suffix := "-" + strconv.Itoa(n+i)
		candidate := truncate(stem, MaxLength-len(suffix)) + suffix
		if !taken(candidate) {
			return candidate, nil
		}
	}
	return "", ErrExhausted
}

// Stem returns the prefix shared by every candidate Unique tries for base:
// base without a trailing numeric suffix, cut to leave room for the longest
// suffix.
func Stem(base string) string {
	stem, _ := split(truncate(base, MaxLength))
	return truncate(stem, MaxLength-maxSuffixLen)
}

func split(base string) (string, int) {
	if m := numericSuffix.FindStringSubmatch(base); m != nil && len(m[2]) <= maxSuffixDigits {
		if v, err := strconv.Atoi(m[2]); err == nil {
			return m[1], v
		}
	}
	return base, 1
}

// truncate cuts s to at most n bytes without leaving a trailing hyphen.
// Slugs are ASCII, so bytes and characters agree.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimRight(s[:n], "-")
}
