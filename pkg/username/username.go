// Copyright (c) 2026 VidTube. All rights reserved.
// Author: arjun.mehra.dev@gmail.com

// Package username canonicalizes account handles for case-insensitive matching.
//
// # Usage
//
// Usernames are unique case-insensitively: "Alice" and "alice" are the same
// account. Every write and every lookup must go through [Canonical] so that
// the uniqueness check, the stored value, and the query key always agree.
package username

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Canonical converts a raw handle into its canonical stored form.
//
// # Transformation Pipeline
//
// 1. Trims surrounding whitespace.
// 2. Normalizes to NFKC (folds compatibility variants: ﬁ → fi, ① → 1).
// 3. Converts to lowercase.
func Canonical(raw string) string {
	trimmed := strings.TrimSpace(raw)

	normalized, _, err := transform.String(norm.NFKC, trimmed)
	if err != nil {
		// Malformed input falls back to the trimmed original; the validator
		// rejects anything outside the allowed character set afterwards.
		normalized = trimmed
	}

	return strings.ToLower(normalized)
}

// CanonicalEmail lowercases and trims an email address for uniqueness checks.
//
// Emails are matched case-insensitively as a whole; no Unicode folding is
// applied because the local part is stored as entered.
func CanonicalEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// IsBlank reports whether the raw handle contains no printable characters.
func IsBlank(raw string) bool {
	return strings.IndexFunc(raw, func(r rune) bool {
		return !unicode.IsSpace(r)
	}) == -1
}
