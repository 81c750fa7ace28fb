// Package sanitize strips markup from user supplied free text.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text removes every HTML element from s and trims surrounding whitespace.
// Entities escaped by the policy are decoded again so "Tom & Jerry" survives as typed.
func Text(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// OptionalText applies Text to a non-nil pointer. An input that sanitizes to
// the empty string becomes nil.
func OptionalText(s *string) *string {
	if s == nil {
		return nil
	}
	out := Text(*s)
	if out == "" {
		return nil
	}
	return &out
}
